// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

// Package config loads sakuractl device profiles from TOML files.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/YukiHonma/sakura/pkg/fets"
	"github.com/YukiHonma/sakura/pkg/transport"
)

// Config is one bus: how to reach it and which modules sit on it
type Config struct {
	Connection ConnectionConfig `toml:"connection"`
	FETs       []FETConfig      `toml:"fet"`
	Chassis    ChassisConfig    `toml:"chassis"`
	Monitor    MonitorConfig    `toml:"monitor"`
}

// ConnectionConfig selects the serial port or WebSocket bridge. Port and
// URL are mutually exclusive.
type ConnectionConfig struct {
	Port        string   `toml:"port"`
	Baud        int      `toml:"baud"`
	Poll        Duration `toml:"poll"`
	URL         string   `toml:"url"`
	Username    string   `toml:"username"`
	NoSSLVerify bool     `toml:"no_ssl_verify"`
}

// FETConfig describes one FET module. Leaving Output empty selects module
// style; setting it binds the instance to fixed ports.
type FETConfig struct {
	Name    string `toml:"name"`
	Address int    `toml:"address"`
	Output  string `toml:"output"`
	Input   string `toml:"input"`
}

// ChassisConfig marks whether a chassis controller shares the bus
type ChassisConfig struct {
	Enabled bool `toml:"enabled"`
}

// MonitorConfig holds monitor defaults: polling period and capture file
type MonitorConfig struct {
	Period Duration `toml:"period"`
	Record string   `toml:"record"`
}

// Duration is a time.Duration written as a string ("10ms") in TOML
type Duration struct {
	time.Duration
}

// UnmarshalText parses a time.ParseDuration string
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText writes the duration in time.Duration.String form
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Default returns the configuration used without a profile file
func Default() Config {
	return Config{
		Connection: ConnectionConfig{
			Baud: transport.DefaultBaudRate,
			Poll: Duration{transport.DefaultPollTimeout},
		},
		Monitor: MonitorConfig{
			Period: Duration{10 * time.Millisecond},
		},
	}
}

// Load reads a profile, fills defaults and validates it
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	if _, err := toml.Decode(string(data), &cfg); err != nil {
		return Config{}, fmt.Errorf("parse %s: %w", path, err)
	}
	applyDefaults(&cfg)
	if err := Validate(cfg); err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Connection.Baud == 0 {
		cfg.Connection.Baud = transport.DefaultBaudRate
	}
	if cfg.Connection.Poll.Duration == 0 {
		cfg.Connection.Poll.Duration = transport.DefaultPollTimeout
	}
	if cfg.Monitor.Period.Duration == 0 {
		cfg.Monitor.Period.Duration = 10 * time.Millisecond
	}
	for i := range cfg.FETs {
		if cfg.FETs[i].Address == 0 {
			cfg.FETs[i].Address = fets.DefaultAddress
		}
		if cfg.FETs[i].Name == "" {
			cfg.FETs[i].Name = fmt.Sprintf("fet%d", i)
		}
	}
}

// Validate rejects profiles the bus cannot run, including a mix of
// module-style and bound-port FET entries.
func Validate(cfg Config) error {
	if cfg.Connection.Port != "" && cfg.Connection.URL != "" {
		return fmt.Errorf("connection: port and url are mutually exclusive")
	}
	if cfg.Connection.Baud <= 0 {
		return fmt.Errorf("connection: invalid baud %d", cfg.Connection.Baud)
	}

	names := make(map[string]bool)
	bound, module := 0, 0
	for _, f := range cfg.FETs {
		if names[f.Name] {
			return fmt.Errorf("fet %q: duplicate name", f.Name)
		}
		names[f.Name] = true

		if f.Address < 0 || f.Address > 0xFF {
			return fmt.Errorf("fet %q: address 0x%X does not fit in a byte", f.Name, f.Address)
		}
		out, in, err := f.Ports()
		if err != nil {
			return fmt.Errorf("fet %q: %w", f.Name, err)
		}
		if out != fets.None && !out.IsOutput() {
			return fmt.Errorf("fet %q: %v is not an output port", f.Name, out)
		}
		if in != fets.None && !in.IsInput() {
			return fmt.Errorf("fet %q: %v is not an input port", f.Name, in)
		}
		if out == fets.None {
			module++
		} else {
			bound++
		}
	}
	if bound > 0 && module > 0 {
		return fmt.Errorf("fet entries mix module style (%d) and bound ports (%d)", module, bound)
	}
	return nil
}

// Ports parses the configured port names
func (f FETConfig) Ports() (output, input fets.Port, err error) {
	if output, err = fets.ParsePort(f.Output); err != nil {
		return fets.None, fets.None, err
	}
	if input, err = fets.ParsePort(f.Input); err != nil {
		return fets.None, fets.None, err
	}
	return output, input, nil
}

// FET returns the entry with the given name (case-insensitive)
func (c Config) FET(name string) (FETConfig, bool) {
	for _, f := range c.FETs {
		if strings.EqualFold(f.Name, name) {
			return f, true
		}
	}
	return FETConfig{}, false
}
