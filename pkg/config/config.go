// Package config holds the CLI settings for reaching a sensor and the build metadata
// injected at link time.
package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// set with -ldflags by the dev tool
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

const (
	AdapterMCP2221 = "mcp2221"
	AdapterGeneric = "generic"
	AdapterNanoPi  = "nanopi"
)

var ErrUnknownAdapter = errors.New("unknown adapter")

type Config struct {
	Adapter    string `yaml:"adapter"`
	Device     string `yaml:"device"`
	Bus        int    `yaml:"bus"`
	Address    int    `yaml:"address"`
	SpeedKHz   int    `yaml:"speed_khz"`
	Resolution int    `yaml:"resolution"`
}

func Default() Config {
	return Config{
		Adapter:  AdapterMCP2221,
		Device:   "/dev/i2c-1",
		Bus:      -1,
		Address:  0x36,
		SpeedKHz: 100,
	}
}

// Load reads a YAML file on top of the defaults. An empty path returns the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("could not read config file: %w", err)
	}
	err = yaml.Unmarshal(data, &cfg)
	if err != nil {
		return cfg, fmt.Errorf("could not parse config file %s: %w", path, err)
	}
	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	switch c.Adapter {
	case AdapterMCP2221, AdapterGeneric, AdapterNanoPi:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownAdapter, c.Adapter)
	}
	if c.Address < 0 || c.Address > 0x7F {
		return fmt.Errorf("address %#x is not a 7-bit address", c.Address)
	}
	if c.SpeedKHz <= 0 {
		return fmt.Errorf("invalid bus speed: %d kHz", c.SpeedKHz)
	}
	return nil
}
