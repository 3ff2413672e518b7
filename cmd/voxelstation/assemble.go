package main

import (
	"fmt"
	"image/color"
	"time"

	"voxel-station/internal/capture"
	"voxel-station/internal/compositor"
	"voxel-station/internal/config"
	"voxel-station/internal/guides"
	"voxel-station/internal/mathutil"
	"voxel-station/internal/raster"
	"voxel-station/internal/rig"
	"voxel-station/internal/station"
	"voxel-station/internal/texture"
	"voxel-station/internal/tracking"
)

var clearColor = color.NRGBA{16, 16, 24, 255}

// plate keeps the background camera in step with its file on disk.
type plate struct {
	cam     *raster.PlateCamera
	cache   *texture.Cache
	path    string
	checked time.Time
}

func (p *plate) refresh() {
	if time.Since(p.checked) < time.Second {
		return
	}
	p.checked = time.Now()
	if img, err := p.cache.Get(p.path); err == nil {
		p.cam.SetImage(img)
	}
}

// assemble builds the scene, cameras, compositor, rig and station.
func assemble(cfg config.Config, recv *tracking.Receiver, cmd tracking.Commander, sink *capture.Sink) (*station.Station, *plate, error) {
	rigCfg, err := cfg.Rig()
	if err != nil {
		return nil, nil, err
	}
	screen, err := cfg.Screen()
	if err != nil {
		return nil, nil, err
	}

	var bg *plate
	if cfg.Background != "" {
		cache := texture.NewCache()
		img, err := cache.Get(cfg.Background)
		if err != nil {
			return nil, nil, fmt.Errorf("background: %w", err)
		}
		bg = &plate{
			cam:     raster.NewPlateCamera("background", raster.PlateFill, img, clearColor),
			cache:   cache,
			path:    cfg.Background,
			checked: time.Now(),
		}
	}

	scene := raster.NewScene()
	var ctrl *rig.Controller
	eyeOpts := func(name string) raster.CameraOptions {
		opts := raster.CameraOptions{
			Name:       name,
			Intrinsics: rigCfg.Intrinsics,
			Parent:     func() mathutil.Transform { return ctrl.RigTransform() },
			Clear:      raster.ClearSolid,
			Background: clearColor,
		}
		if bg != nil {
			opts.Clear = raster.ClearDepth
		}
		return opts
	}
	left := raster.NewSceneCamera(scene, eyeOpts("left"))
	right := raster.NewSceneCamera(scene, eyeOpts("right"))

	var sync compositor.SyncSink
	if sink != nil {
		sync = sink
	}
	comp := compositor.New(compositor.Config{
		Allocator: &raster.HeapAllocator{},
		Material:  compositor.DefaultMaterial(),
		Sync:      sync,
	})

	cams := rig.Cameras{Left: left, Right: right}
	if bg != nil {
		cams.Background = bg.cam
	}
	ctrl = rig.New(comp, cams, rigCfg)

	// The zero-parallax plane is the only target in the scene.
	st := station.New(recv, cmd, ctrl, scene, station.Config{
		Screen:           screen,
		TrackerOffset:    mathutil.Vec3{cfg.TrackerOffsetX, cfg.TrackerOffsetY, 0},
		AutoActiveStereo: cfg.AutoActive(),
		StylusLength:     cfg.StylusLength,
		StylusWidth:      cfg.StylusWidth,
		Guides:           guides.DefaultOptions(),
		OutputWidth:      cfg.OutputWidth * cfg.Supersample,
		Raycast:          guides.RaycastScreen,
	})
	return st, bg, nil
}
