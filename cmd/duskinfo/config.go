// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/gogpu/gputypes"
)

// config is the duskinfo configuration file.
//
//	backend = "soft"
//	log_level = "debug"
//	toggles = ["skip_validation"]
//
//	[dump]
//	width = 64
//	height = 64
//	clear = [0.2, 0.4, 0.8, 1.0]
type config struct {
	// Backend names a registered backend. Empty selects the default.
	Backend  string   `toml:"backend"`
	LogLevel string   `toml:"log_level"`
	Toggles  []string `toml:"toggles"`
	Dump     dump     `toml:"dump"`
}

type dump struct {
	Width  uint32     `toml:"width"`
	Height uint32     `toml:"height"`
	Clear  [4]float64 `toml:"clear"`
}

func defaultConfig() *config {
	return &config{
		LogLevel: "info",
		Dump: dump{
			Width:  64,
			Height: 64,
			Clear:  [4]float64{0.2, 0.4, 0.8, 1},
		},
	}
}

// loadConfig reads path over the defaults. A missing file leaves the
// defaults in place. Unknown keys are an error.
func loadConfig(path string) (*config, error) {
	cfg := defaultConfig()
	if path == "" {
		return cfg, nil
	}
	md, err := toml.DecodeFile(path, cfg)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("read config %s: unknown keys %s", path, strings.Join(keys, ", "))
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	return cfg, nil
}

func (c *config) validate() error {
	if c.Dump.Width == 0 || c.Dump.Height == 0 {
		return fmt.Errorf("dump size %dx%d is empty", c.Dump.Width, c.Dump.Height)
	}
	if _, err := c.level(); err != nil {
		return err
	}
	return nil
}

func (c *config) level() (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("log_level: %w", err)
	}
	return l, nil
}

func (d dump) color() gputypes.Color {
	return gputypes.Color{R: d.Clear[0], G: d.Clear[1], B: d.Clear[2], A: d.Clear[3]}
}
