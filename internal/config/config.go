// Package config loads server settings from an HCL file with environment
// overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/ilyakaznacheev/cleanenv"
)

// Config is the complete process configuration.
type Config struct {
	Server  ServerSettings
	Session SessionSettings
}

// file mirrors Config with optional blocks.
type file struct {
	Server  *ServerSettings  `hcl:"server,block"`
	Session *SessionSettings `hcl:"session,block"`
}

// ServerSettings contains HTTP and logging settings.
type ServerSettings struct {
	Address   string `hcl:"address,optional" env:"TICTACTOE_ADDRESS"`
	LogLevel  string `hcl:"log_level,optional" env:"TICTACTOE_LOG_LEVEL"`
	LogFormat string `hcl:"log_format,optional" env:"TICTACTOE_LOG_FORMAT"`
}

// SessionSettings controls game lifetime and live updates. Durations use
// time.ParseDuration syntax.
type SessionSettings struct {
	TTL           string `hcl:"ttl,optional" env:"TICTACTOE_SESSION_TTL"`
	SweepInterval string `hcl:"sweep_interval,optional" env:"TICTACTOE_SWEEP_INTERVAL"`
	Heartbeat     string `hcl:"heartbeat,optional" env:"TICTACTOE_HEARTBEAT"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Server: ServerSettings{
			Address:   ":8080",
			LogLevel:  "info",
			LogFormat: "text",
		},
		Session: SessionSettings{
			TTL:           "30m",
			SweepInterval: "1m",
			Heartbeat:     "15s",
		},
	}
}

// Load reads filename, falling back to defaults when it does not exist,
// then applies environment overrides.
func Load(filename string) (*Config, error) {
	cfg := Default()
	if filename != "" {
		src, err := os.ReadFile(filename)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("read config: %w", err)
		default:
			if cfg, err = Parse(src, filename); err != nil {
				return nil, err
			}
		}
	}
	if err := cleanenv.ReadEnv(cfg); err != nil {
		return nil, fmt.Errorf("environment overrides: %w", err)
	}
	return cfg, nil
}

// Parse decodes HCL source and fills unset values with defaults.
func Parse(src []byte, filename string) (*Config, error) {
	parser := hclparse.NewParser()
	f, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}

	var raw file
	diags = gohcl.DecodeBody(f.Body, nil, &raw)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}
	cfg := &Config{}
	if raw.Server != nil {
		cfg.Server = *raw.Server
	}
	if raw.Session != nil {
		cfg.Session = *raw.Session
	}
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	def := Default()
	if c.Server.Address == "" {
		c.Server.Address = def.Server.Address
	}
	if c.Server.LogLevel == "" {
		c.Server.LogLevel = def.Server.LogLevel
	}
	if c.Server.LogFormat == "" {
		c.Server.LogFormat = def.Server.LogFormat
	}
	if c.Session.TTL == "" {
		c.Session.TTL = def.Session.TTL
	}
	if c.Session.SweepInterval == "" {
		c.Session.SweepInterval = def.Session.SweepInterval
	}
	if c.Session.Heartbeat == "" {
		c.Session.Heartbeat = def.Session.Heartbeat
	}
}

// Validate checks levels, formats and durations.
func (c *Config) Validate() error {
	if c.Server.Address == "" {
		return errors.New("server address is required")
	}
	if _, err := log.ParseLevel(c.Server.LogLevel); err != nil {
		return fmt.Errorf("server log_level: %w", err)
	}
	switch c.Server.LogFormat {
	case "text", "json", "logfmt":
	default:
		return fmt.Errorf("server log_format %q: want text, json or logfmt", c.Server.LogFormat)
	}
	for name, v := range map[string]string{
		"ttl":            c.Session.TTL,
		"sweep_interval": c.Session.SweepInterval,
		"heartbeat":      c.Session.Heartbeat,
	} {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("session %s: %w", name, err)
		}
		if d <= 0 {
			return fmt.Errorf("session %s must be positive", name)
		}
	}
	return nil
}

// TTL returns the parsed idle lifetime of a game. Call Validate first.
func (c *Config) TTL() time.Duration { return mustDuration(c.Session.TTL) }

// SweepInterval returns the parsed janitor interval.
func (c *Config) SweepInterval() time.Duration { return mustDuration(c.Session.SweepInterval) }

// Heartbeat returns the parsed SSE heartbeat interval.
func (c *Config) Heartbeat() time.Duration { return mustDuration(c.Session.Heartbeat) }

func mustDuration(s string) time.Duration {
	d, _ := time.ParseDuration(s)
	return d
}
