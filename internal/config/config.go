// Package config loads the sceneboard TOML configuration.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/pelletier/go-toml/v2"
	log "github.com/sirupsen/logrus"
)

type Canvas struct {
	Width      float64 `toml:"width"`
	Height     float64 `toml:"height"`
	Background string  `toml:"background"`
}

type Editor struct {
	HistoryLimit int    `toml:"history_limit"`
	ClipboardKey string `toml:"clipboard_key"`
}

type Server struct {
	Addr        string `toml:"addr"`
	Advertise   bool   `toml:"advertise"`
	StoreDir    string `toml:"store_dir"`
	ServiceName string `toml:"service_name"`
}

type Log struct {
	Level string `toml:"level"`
}

type Config struct {
	Canvas Canvas `toml:"canvas"`
	Editor Editor `toml:"editor"`
	Server Server `toml:"server"`
	Log    Log    `toml:"log"`
}

func Default() Config {
	return Config{
		Canvas: Canvas{Width: 800, Height: 600, Background: "#ffffff"},
		Editor: Editor{ClipboardKey: "sceneboard.clipboard"},
		Server: Server{Addr: ":8888", Advertise: true, ServiceName: "_sceneboard._tcp"},
		Log:    Log{Level: "info"},
	}
}

// Load reads path over the defaults. A missing file, or an empty path, yields
// the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		log.WithField("path", path).Debug("no config file, using defaults")
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("config: %w", err)
	}
	return Parse(data)
}

// Parse decodes TOML over the defaults. Unknown keys are rejected.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return Default(), fmt.Errorf("config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Default(), err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.Canvas.Width <= 0 || c.Canvas.Height <= 0 {
		return fmt.Errorf("config: canvas size %gx%g must be positive", c.Canvas.Width, c.Canvas.Height)
	}
	if c.Editor.HistoryLimit < 0 {
		return fmt.Errorf("config: history_limit %d must not be negative", c.Editor.HistoryLimit)
	}
	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// Encode renders c as TOML, as written by `sceneboard config`.
func (c Config) Encode() ([]byte, error) {
	return toml.Marshal(c)
}
