// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package renderer

// Configuration describes the renderer configuration
type Configuration struct {
	// Backend names the device backend to render with
	Backend string `toml:"backend"`

	ScreenWidth  uint32 `toml:"screen_width"`
	ScreenHeight uint32 `toml:"screen_height"`

	// ClearColor is the RGBA colour frames start from
	ClearColor [4]float32 `toml:"clear_color"`

	// Workers bounds parallel command recording, 0 means unbounded
	Workers int `toml:"workers"`
}

// DefaultConfiguration returns a headless 1280x720 setup.
func DefaultConfiguration() Configuration {
	return Configuration{
		Backend:      "headless",
		ScreenWidth:  1280,
		ScreenHeight: 720,
		ClearColor:   [4]float32{0.1, 0.1, 0.12, 1},
	}
}
