package raster

import (
	"fmt"
	"image"
	"image/color"

	"golang.org/x/image/draw"

	"voxel-station/internal/postprocess"
)

// PlateMode selects how a PlateCamera combines its image with the target.
type PlateMode int

const (
	// PlateFill replaces the target with the image, cropped to cover it.
	PlateFill PlateMode = iota
	// PlateOverlay alpha-blends the image, stretched to the target, on top.
	PlateOverlay
)

// PlateCamera draws a 2D image: a background plate behind the eye views or a
// UI overlay in front of them. It never touches depth.
type PlateCamera struct {
	name    string
	mode    PlateMode
	image   *image.NRGBA
	fill    color.NRGBA
	target  *FrameBuffer
	enabled bool

	// scaled caches the image resampled to the last target size.
	scaled *image.NRGBA
}

func NewPlateCamera(name string, mode PlateMode, img *image.NRGBA, fill color.NRGBA) *PlateCamera {
	return &PlateCamera{name: name, mode: mode, image: img, fill: fill, enabled: true}
}

func (p *PlateCamera) Name() string { return p.name }

func (p *PlateCamera) Enabled() bool            { return p.enabled }
func (p *PlateCamera) SetEnabled(on bool)       { p.enabled = on }
func (p *PlateCamera) Target() *FrameBuffer     { return p.target }
func (p *PlateCamera) SetTarget(t *FrameBuffer) { p.target = t }

// SetImage swaps the plate image.
func (p *PlateCamera) SetImage(img *image.NRGBA) {
	p.image = img
	p.scaled = nil
}

func (p *PlateCamera) Render() error {
	fb := p.target
	if fb == nil {
		return fmt.Errorf("raster: render %s: %w", p.name, ErrNoTarget)
	}
	if p.image == nil {
		if p.mode == PlateFill {
			fb.Clear(p.fill)
		}
		return nil
	}

	if p.scaled == nil || p.scaled.Rect.Dx() != fb.Width || p.scaled.Rect.Dy() != fb.Height {
		p.scaled = image.NewNRGBA(fb.Bounds())
		src := p.image.Bounds()
		if p.mode == PlateFill {
			src = postprocess.CoverRect(src, fb.Width, fb.Height)
		}
		postprocess.ScaleInto(p.scaled, p.scaled.Rect, p.image, src)
	}

	dst := fb.Image()
	switch p.mode {
	case PlateFill:
		fb.Clear(p.fill)
		draw.Draw(dst, dst.Rect, p.scaled, image.Point{}, draw.Over)
	case PlateOverlay:
		draw.Draw(dst, dst.Rect, p.scaled, image.Point{}, draw.Over)
	}
	return nil
}
