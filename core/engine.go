// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package core

import (
	"fmt"
	"io/fs"

	log "github.com/sirupsen/logrus"

	"github.com/devblok/korender/core/renderer"
	"github.com/devblok/korender/device"
	"github.com/devblok/korender/resource/loader"
	"github.com/devblok/korender/resource/manager"
)

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithAssets serves assets from fsys instead of the configured
// directory and archive.
func WithAssets(fsys fs.FS) EngineOption {
	return func(e *Engine) { e.assets = fsys }
}

// Engine wires the configured device, resource manager and renderer.
// Backends register themselves on import, the program picks them with a
// blank import.
type Engine struct {
	Config   Configuration
	Device   device.Device
	Manager  *manager.Manager
	Renderer *renderer.Renderer
	Time     *Time

	log     *log.Entry
	assets  fs.FS
	archive *loader.Archive
}

// NewEngine builds an engine from cfg. Nothing touches the window until
// Start.
func NewEngine(cfg Configuration, opts ...EngineOption) (*Engine, error) {
	if err := cfg.Log.ApplyLogging(); err != nil {
		return nil, fmt.Errorf("core.NewEngine(): %w", err)
	}
	e := &Engine{
		Config: cfg,
		log:    log.WithField("component", "engine"),
	}
	for _, opt := range opts {
		opt(e)
	}

	if e.assets == nil {
		systems := []fs.FS{}
		if cfg.Assets.Archive != "" {
			ar, err := loader.OpenArchive(cfg.Assets.Archive)
			if err != nil {
				return nil, fmt.Errorf("core.NewEngine(): %w", err)
			}
			e.archive = ar
			systems = append(systems, ar)
			e.log.WithFields(log.Fields{"archive": cfg.Assets.Archive, "author": ar.Header().Author}).Info("asset archive mapped")
		}
		systems = append(systems, loader.Dir(cfg.Assets.Root))
		e.assets = loader.Overlay(systems...)
	}

	dev, err := device.New(device.BackendAPI(cfg.Renderer.Backend), log.WithField("backend", cfg.Renderer.Backend))
	if err != nil {
		e.closeArchive()
		return nil, fmt.Errorf("core.NewEngine(): %w", err)
	}
	e.Device = dev

	e.Renderer, err = renderer.New(cfg.Renderer, dev, renderer.WithLogger(log.WithField("component", "renderer")))
	if err != nil {
		e.closeArchive()
		return nil, fmt.Errorf("core.NewEngine(): %w", err)
	}
	ld := loader.New(e.assets, loader.WithLogger(log.WithField("component", "loader")))
	e.Manager = manager.New(dev, ld, manager.WithLogger(log.WithField("component", "manager")))
	return e, nil
}

// Assets returns the file system assets are read from.
func (e *Engine) Assets() fs.FS { return e.assets }

// Start initialises the device on window, creates the builtin resources
// and starts the frame tickers.
func (e *Engine) Start(window device.Window) error {
	if err := e.Renderer.Initialize(window); err != nil {
		return fmt.Errorf("core.Start(): %w", err)
	}
	if err := e.Manager.Initialize(); err != nil {
		return fmt.Errorf("core.Start(): %w", err)
	}
	e.Time = NewTime(e.Config.Time)
	return nil
}

// Close releases everything in reverse order of creation.
func (e *Engine) Close() {
	if e.Time != nil {
		e.Time.Stop()
	}
	e.Manager.Shutdown()
	e.Renderer.Destroy()
	e.closeArchive()
}

func (e *Engine) closeArchive() {
	if e.archive == nil {
		return
	}
	if err := e.archive.Close(); err != nil {
		e.log.WithError(err).Warn("closing asset archive")
	}
	e.archive = nil
}
