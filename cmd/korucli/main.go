// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/devblok/korender/command"
	"github.com/devblok/korender/core"
	"github.com/devblok/korender/core/renderer"
	"github.com/devblok/korender/device"
	_ "github.com/devblok/korender/device/headless"
	"github.com/devblok/korender/resource"
	"github.com/devblok/korender/resource/manager"
)

var (
	configPath = flag.String("config", "koru.toml", "Configuration file")
	frames     = flag.Int("frames", 1, "Frames to render with the loaded meshes")
)

// Report is printed as JSON.
type Report struct {
	Backends  []device.BackendAPI `json:"backends"`
	Device    device.Info         `json:"device"`
	Resources []ResourceInfo      `json:"resources"`
	Cache     manager.Stats       `json:"cache"`
	Frames    []device.Stats      `json:"frames"`
	Errors    []string            `json:"errors,omitempty"`
}

// ResourceInfo describes one cached resource.
type ResourceInfo struct {
	Type     string `json:"type"`
	Name     string `json:"name"`
	ID       uint64 `json:"id"`
	Valid    bool   `json:"valid"`
	RefCount int32  `json:"refCount"`
}

func main() {
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: korucli [flags] type:file ...\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	cfg, err := core.LoadConfiguration(*configPath)
	if err != nil {
		log.Fatal(err)
	}
	cfg.Renderer.Backend = string(device.Headless)
	// Keep stdout clean for the report.
	log.SetOutput(os.Stderr)

	e, err := core.NewEngine(cfg)
	if err != nil {
		log.Fatal(err)
	}
	if err := e.Start(device.OffscreenWindow{Width: int(cfg.Renderer.ScreenWidth), Height: int(cfg.Renderer.ScreenHeight)}); err != nil {
		log.Fatal(err)
	}
	defer e.Close()

	report, err := inspect(e, flag.Args(), *frames)
	if err != nil {
		log.Fatal(err)
	}
	if err := writeReport(os.Stdout, report); err != nil {
		log.Fatal(err)
	}
}

// inspect loads every "type:file" argument, renders frames with the
// loaded meshes and reports the cache state.
func inspect(e *core.Engine, args []string, frames int) (Report, error) {
	report := Report{
		Backends: device.Backends(),
		Device:   e.Device.Info(),
	}

	var drawables []*renderer.Drawable
	defer func() {
		for _, d := range drawables {
			d.Release()
		}
	}()
	for _, arg := range args {
		typeName, file, ok := strings.Cut(arg, ":")
		t, known := resource.ParseType(typeName)
		if !ok || !known {
			return report, fmt.Errorf("%q: expected type:file with type one of mesh, material, shader, texture", arg)
		}
		if t == resource.MeshType {
			if d := renderer.NewDrawable(e.Manager, file); d != nil {
				drawables = append(drawables, d)
			}
			continue
		}
		res, err := e.Manager.LoadResource(t, file)
		if err != nil {
			report.Errors = append(report.Errors, err.Error())
			continue
		}
		defer e.Manager.Release(res.ID())
	}

	for i := 0; i < frames; i++ {
		err := e.Renderer.Record(context.Background(), len(drawables), func(_ context.Context, i int, list *command.List) error {
			drawables[i].Record(list, e.Renderer.ViewProjection())
			return nil
		})
		if err != nil {
			return report, err
		}
		stats, err := e.Renderer.Flush()
		if err != nil {
			return report, err
		}
		report.Frames = append(report.Frames, stats)
	}

	for _, t := range resource.Types {
		for _, res := range e.Manager.List(t) {
			report.Resources = append(report.Resources, ResourceInfo{
				Type:     t.String(),
				Name:     res.Name(),
				ID:       uint64(res.ID()),
				Valid:    res.Valid(),
				RefCount: res.RefCount(),
			})
		}
	}
	report.Cache = e.Manager.Stats()
	return report, nil
}

func writeReport(w io.Writer, report Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}
