// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package renderer drives a device frame by frame: command lists are
// recorded, possibly in parallel, sorted, queued and flushed to the
// device in submission order.
package renderer

import (
	"context"
	"errors"
	"fmt"

	glm "github.com/go-gl/mathgl/mgl32"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/devblok/korender/command"
	"github.com/devblok/korender/device"
)

// ErrNoDevice is returned when a renderer is created without a device.
var ErrNoDevice = errors.New("renderer: no device")

// Option configures a Renderer.
type Option func(*Renderer)

// WithLogger sets the logger used for diagnostics.
func WithLogger(logger *log.Entry) Option {
	return func(r *Renderer) { r.log = logger }
}

// Renderer describes the rendering machinery.
// It's created only with internal values set,
// it needs to be initialised with Initialize before use.
type Renderer struct {
	cfg Configuration
	dev device.Device
	log *log.Entry

	queue      command.Queue
	view       glm.Mat4
	projection glm.Mat4
	width      int
	height     int
	frames     uint64
}

// New creates a renderer drawing with dev.
func New(cfg Configuration, dev device.Device, opts ...Option) (*Renderer, error) {
	if dev == nil {
		return nil, ErrNoDevice
	}
	r := &Renderer{
		cfg:        cfg,
		dev:        dev,
		log:        log.WithField("component", "renderer"),
		view:       glm.Ident4(),
		projection: glm.Ident4(),
		width:      int(cfg.ScreenWidth),
		height:     int(cfg.ScreenHeight),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Initialize binds the device to window.
func (r *Renderer) Initialize(window device.Window) error {
	if err := r.dev.Initialize(window); err != nil {
		return fmt.Errorf("renderer.Initialize(): %w", err)
	}
	if w, h := window.Size(); w > 0 && h > 0 {
		r.width, r.height = w, h
	}
	info := r.dev.Info()
	r.log.WithFields(log.Fields{"device": info.Name, "width": r.width, "height": r.height}).Info("renderer initialized")
	return nil
}

// Device returns the device the renderer draws with.
func (r *Renderer) Device() device.Device { return r.dev }

// SetCamera sets the matrices used for the following frames.
func (r *Renderer) SetCamera(view, projection glm.Mat4) {
	r.view, r.projection = view, projection
}

// Camera returns the view and projection matrices.
func (r *Renderer) Camera() (view, projection glm.Mat4) {
	return r.view, r.projection
}

// ViewProjection returns projection * view.
func (r *Renderer) ViewProjection() glm.Mat4 {
	return r.projection.Mul4(r.view)
}

// Resize changes the viewport size used by following frames.
func (r *Renderer) Resize(width, height int) {
	r.width, r.height = width, height
}

// BeginCommand starts recording into list.
func (r *Renderer) BeginCommand(list *command.List) {
	list.Begin()
}

// EndCommand ends recording and sorts list.
func (r *Renderer) EndCommand(list *command.List) {
	list.End()
	list.Sort()
}

// Submit queues an ended list for the next Flush.
func (r *Renderer) Submit(list *command.List) {
	r.queue.Submit(list)
}

// Record records n lists in parallel, calling fn for each, and submits
// them in index order once all succeeded. The context is checked before
// each list is recorded.
func (r *Renderer) Record(ctx context.Context, n int, fn func(ctx context.Context, i int, list *command.List) error) error {
	lists := make([]*command.List, n)
	g, ctx := errgroup.WithContext(ctx)
	if r.cfg.Workers > 0 {
		g.SetLimit(r.cfg.Workers)
	}
	for i := 0; i < n; i++ {
		i := i
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			list := command.NewList()
			r.BeginCommand(list)
			if err := fn(ctx, i, list); err != nil {
				return err
			}
			r.EndCommand(list)
			lists[i] = list
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("renderer.Record(): %w", err)
	}
	for _, list := range lists {
		r.Submit(list)
	}
	return nil
}

// Pending returns the number of draws waiting for Flush.
func (r *Renderer) Pending() int {
	return r.queue.TotalDrawCalls()
}

// Flush executes a frame: clear, viewport and camera, then every
// queued list in submission order, and presents it when the device
// can. Must be called on the device thread.
func (r *Renderer) Flush() (device.Stats, error) {
	prologue := command.NewList()
	prologue.Clear(glm.Vec4(r.cfg.ClearColor), 1)
	prologue.SetViewport(0, 0, float32(r.width), float32(r.height))
	prologue.SetCamera(r.view, r.projection)
	prologue.End()

	lists := r.queue.Drain()
	stats, err := r.dev.ExecuteCommandList(prologue)
	if err != nil {
		return stats, fmt.Errorf("renderer.Flush(): %w", err)
	}
	for _, list := range lists {
		s, err := r.dev.ExecuteCommandList(list)
		stats.Add(s)
		if err != nil {
			return stats, fmt.Errorf("renderer.Flush(): %w", err)
		}
	}
	if p, ok := r.dev.(device.Presenter); ok {
		if err := p.Present(); err != nil {
			return stats, fmt.Errorf("renderer.Flush(): %w", err)
		}
	}
	r.frames++
	if stats.Skipped > 0 {
		r.log.WithField("skipped", stats.Skipped).Debug("draws referenced unloaded resources")
	}
	return stats, nil
}

// Frames returns the number of flushed frames.
func (r *Renderer) Frames() uint64 { return r.frames }

// Destroy releases the device.
func (r *Renderer) Destroy() {
	r.queue.Drain()
	r.dev.Destroy()
}
