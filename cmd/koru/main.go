// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package main

import (
	"flag"
	"runtime"

	glm "github.com/go-gl/mathgl/mgl32"
	log "github.com/sirupsen/logrus"
	"github.com/veandco/go-sdl2/sdl"

	"github.com/devblok/korender/command"
	"github.com/devblok/korender/core"
	"github.com/devblok/korender/core/renderer"
	"github.com/devblok/korender/device"
	"github.com/devblok/korender/device/sdlr"
)

func init() {
	runtime.LockOSThread()
}

var configPath = flag.String("config", "koru.toml", "Configuration file")

func main() {
	flag.Parse()

	configuration, err := core.LoadConfiguration(*configPath)
	if err != nil {
		log.Fatal(err)
	}
	configuration.Renderer.Backend = string(device.SDL)

	if err := sdl.Init(sdl.INIT_VIDEO | sdl.INIT_EVENTS); err != nil {
		log.Fatal(err)
	}
	defer sdl.Quit()

	window, err := sdlr.NewWindow("Koru3D", int(configuration.Renderer.ScreenWidth), int(configuration.Renderer.ScreenHeight))
	if err != nil {
		log.Fatal(err)
	}
	defer window.Destroy()

	engine, err := core.NewEngine(configuration)
	if err != nil {
		log.Fatal(err)
	}
	if err := engine.Start(window); err != nil {
		log.Fatal(err)
	}
	defer engine.Close()

	meshes := flag.Args()
	if len(meshes) == 0 {
		meshes = []string{""}
	}
	var scene []*renderer.Drawable
	for i, m := range meshes {
		d := renderer.NewDrawable(engine.Manager, m)
		if d == nil {
			log.WithField("mesh", m).Warn("mesh not available")
			continue
		}
		d.SetTransform(glm.Translate3D(float32(i)*2.5-float32(len(meshes)-1)*1.25, 0, 0))
		scene = append(scene, d)
	}
	defer func() {
		for _, d := range scene {
			d.Release()
		}
	}()

	width, height := window.Size()
	engine.Renderer.SetCamera(
		glm.LookAtV(glm.Vec3{0, 1.5, 5}, glm.Vec3{}, glm.Vec3{0, 1, 0}),
		glm.Perspective(glm.DegToRad(60), float32(width)/float32(height), 0.1, 100),
	)

	time := engine.Time
	var angle float32

EventLoop:
	for {
		select {
		case <-time.EventTicker().C:
			for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
				switch et := event.(type) {
				case *sdl.KeyboardEvent:
					if et.Keysym.Sym == sdl.K_ESCAPE {
						break EventLoop
					}
				case *sdl.WindowEvent:
					if et.Event == sdl.WINDOWEVENT_RESIZED {
						w, h := int(et.Data1), int(et.Data2)
						engine.Renderer.Resize(w, h)
						view, _ := engine.Renderer.Camera()
						engine.Renderer.SetCamera(view, glm.Perspective(glm.DegToRad(60), float32(w)/float32(h), 0.1, 100))
					}
				case *sdl.QuitEvent:
					break EventLoop
				}
			}
		case <-time.FpsTicker().C:
			angle += float32(time.Tick().Seconds())
			if err := frame(engine, scene, angle); err != nil {
				log.WithError(err).Error("frame failed")
				break EventLoop
			}
		}
	}
	log.WithField("frames", engine.Renderer.Frames()).Info("event loop exited")
}

func frame(engine *core.Engine, scene []*renderer.Drawable, angle float32) error {
	viewProjection := engine.Renderer.ViewProjection()
	rotation := glm.HomogRotate3DY(angle)
	list := command.NewList()
	engine.Renderer.BeginCommand(list)
	for _, d := range scene {
		t := d.Transform()
		d.SetTransform(glm.Translate3D(t[12], t[13], t[14]).Mul4(rotation))
		d.Record(list, viewProjection)
	}
	engine.Renderer.EndCommand(list)
	engine.Renderer.Submit(list)
	_, err := engine.Renderer.Flush()
	return err
}
