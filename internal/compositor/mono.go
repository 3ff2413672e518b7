package compositor

import (
	"fmt"
	"image/color"

	"voxel-station/internal/raster"
)

var clearColor = color.NRGBA{}

// RenderMono renders the background, the left camera and the UI cameras
// straight into dst. Camera targets are left unbound afterwards.
func RenderMono(cams CameraSet, dst *raster.FrameBuffer) error {
	if dst == nil {
		return fmt.Errorf("compositor: render mono: invalid output: %w", ErrResourceUnavailable)
	}
	dst.Clear(clearColor)
	if cams.Background != nil {
		cams.Background.SetTarget(dst)
		err := cams.Background.Render()
		cams.Background.SetTarget(nil)
		if err != nil {
			return fmt.Errorf("compositor: render mono background: %w", err)
		}
	}
	if cams.Left == nil {
		return fmt.Errorf("compositor: render mono: no camera: %w", ErrResourceUnavailable)
	}
	cams.Left.SetTarget(dst)
	err := cams.Left.Render()
	cams.Left.SetTarget(nil)
	if err != nil {
		return fmt.Errorf("compositor: render mono: %w", err)
	}
	for _, ui := range cams.UI {
		if ui == nil {
			continue
		}
		ui.SetTarget(dst)
		err := ui.Render()
		ui.SetTarget(nil)
		if err != nil {
			return fmt.Errorf("compositor: render mono ui: %w", err)
		}
	}
	return nil
}
