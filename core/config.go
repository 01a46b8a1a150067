// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package core

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	"github.com/gobuffalo/envy"
	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
	log "github.com/sirupsen/logrus"

	"github.com/devblok/korender/core/renderer"
)

// Environment variables overriding the configuration file.
const (
	EnvAssetRoot    = "KORU_ASSET_ROOT"
	EnvAssetArchive = "KORU_ASSET_ARCHIVE"
	EnvBackend      = "KORU_BACKEND"
	EnvFps          = "KORU_FPS"
	EnvLogLevel     = "KORU_LOG_LEVEL"
)

// Configuration defines a global engine configuration setting
type Configuration struct {
	Time     TimeConfiguration      `toml:"time"`
	Renderer renderer.Configuration `toml:"renderer"`
	Assets   AssetConfiguration     `toml:"assets"`
	Log      LogConfiguration       `toml:"log"`
}

// TimeConfiguration is used to configure time services
type TimeConfiguration struct {
	// FramesPerSecond caps frames per second that is put out
	// To unlimit, set to 0
	FramesPerSecond int `toml:"fps"`

	// EventPollDelay is the window event polling interval in milliseconds
	EventPollDelay int `toml:"event_poll_delay"`
}

// AssetConfiguration tells where assets are read from. When Archive is
// set its entries shadow files under Root.
type AssetConfiguration struct {
	Root    string `toml:"root"`
	Archive string `toml:"archive"`
}

// LogConfiguration sets up logrus.
type LogConfiguration struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // text or json
}

// DefaultConfiguration returns the settings used when nothing is configured.
func DefaultConfiguration() Configuration {
	return Configuration{
		Time: TimeConfiguration{
			FramesPerSecond: 60,
			EventPollDelay:  10,
		},
		Renderer: renderer.DefaultConfiguration(),
		Assets:   AssetConfiguration{Root: "assets"},
		Log:      LogConfiguration{Level: "info", Format: "text"},
	}
}

// LoadConfiguration reads a .env file next to path, the TOML file at
// path and finally the KORU_* environment variables. Missing files are
// not an error, an empty path skips the TOML file.
func LoadConfiguration(path string) (Configuration, error) {
	cfg := DefaultConfiguration()

	dotenv := ".env"
	if path != "" {
		dotenv = filepath.Join(filepath.Dir(path), ".env")
	}
	if err := godotenv.Load(dotenv); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return cfg, fmt.Errorf("core.LoadConfiguration(): %w", err)
	}
	envy.Reload()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return cfg, fmt.Errorf("core.LoadConfiguration(): %w", err)
		default:
			if err := toml.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("core.LoadConfiguration(): %s: %w", path, err)
			}
		}
	}

	if err := cfg.applyEnvironment(); err != nil {
		return cfg, fmt.Errorf("core.LoadConfiguration(): %w", err)
	}
	return cfg, nil
}

func (c *Configuration) applyEnvironment() error {
	c.Assets.Root = envy.Get(EnvAssetRoot, c.Assets.Root)
	c.Assets.Archive = envy.Get(EnvAssetArchive, c.Assets.Archive)
	c.Renderer.Backend = envy.Get(EnvBackend, c.Renderer.Backend)
	c.Log.Level = envy.Get(EnvLogLevel, c.Log.Level)
	if fps := envy.Get(EnvFps, ""); fps != "" {
		n, err := strconv.Atoi(fps)
		if err != nil || n < 0 {
			return fmt.Errorf("%s: invalid frame rate %q", EnvFps, fps)
		}
		c.Time.FramesPerSecond = n
	}
	return nil
}

// ApplyLogging configures the standard logrus logger.
func (c LogConfiguration) ApplyLogging() error {
	if c.Level != "" {
		level, err := log.ParseLevel(c.Level)
		if err != nil {
			return err
		}
		log.SetLevel(level)
	}
	switch c.Format {
	case "", "text":
		log.SetFormatter(&log.TextFormatter{})
	case "json":
		log.SetFormatter(&log.JSONFormatter{})
	default:
		return fmt.Errorf("unknown log format %q", c.Format)
	}
	return nil
}
