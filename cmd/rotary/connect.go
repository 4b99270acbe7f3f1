package main

import (
	"fmt"
	"log/slog"
	"strconv"

	"github.com/urfave/cli/v2"
	"gobot.io/x/gobot/v2/platforms/friendlyelec/nanopi"
	"periph.io/x/conn/v3/physic"

	"github.com/mklimuk/rotary"
	"github.com/mklimuk/rotary/adapter"
	"github.com/mklimuk/rotary/cmd/rotary/console"
	"github.com/mklimuk/rotary/i2c"
	"github.com/mklimuk/rotary/pkg/config"
	"github.com/mklimuk/rotary/position"
)

// loadConfig reads the config file and applies explicitly set global flags on top.
func loadConfig(c *cli.Context) (config.Config, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return cfg, err
	}
	if c.IsSet("adapter") {
		cfg.Adapter = c.String("adapter")
	}
	if c.IsSet("device") {
		cfg.Device = c.String("device")
	}
	if c.IsSet("bus") {
		cfg.Bus = c.Int("bus")
	}
	if c.IsSet("address") {
		addr, err := strconv.ParseUint(c.String("address"), 0, 8)
		if err != nil {
			return cfg, fmt.Errorf("invalid address %q: %w", c.String("address"), err)
		}
		cfg.Address = int(addr)
	}
	return cfg, cfg.Validate()
}

func openBus(c *cli.Context, cfg config.Config) (rotary.I2CBus, func(), error) {
	switch cfg.Adapter {
	case config.AdapterMCP2221:
		ad := adapter.NewMCP2221(adapter.WithDeviceIndex(c.Int("index")))
		if err := ad.Init(); err != nil {
			return nil, nil, err
		}
		return ad, func() {}, nil
	case config.AdapterGeneric:
		bus, err := i2c.NewGenericBus(cfg.Device)
		if err != nil {
			return nil, nil, err
		}
		if err := bus.SetSpeed(physic.Frequency(cfg.SpeedKHz) * physic.KiloHertz); err != nil {
			slog.Warn("could not set bus speed", "speed_khz", cfg.SpeedKHz, "error", err)
		}
		return bus, func() {
			if err := bus.Close(); err != nil {
				slog.Error("error closing bus", "error", err)
			}
		}, nil
	case config.AdapterNanoPi:
		npi := nanopi.NewNeoAdaptor()
		if err := npi.I2cBusAdaptor.Connect(); err != nil {
			return nil, nil, fmt.Errorf("adaptor connect error: %w", err)
		}
		return i2c.NewGobotBus(npi, cfg.Bus), func() {
			if err := npi.I2cBusAdaptor.Finalize(); err != nil {
				slog.Error("error finalizing adaptor", "error", err)
			}
		}, nil
	}
	return nil, nil, fmt.Errorf("%w: %q", config.ErrUnknownAdapter, cfg.Adapter)
}

type session struct {
	cfg    config.Config
	sensor *position.AS560x
	close  func()
}

// connect opens the configured bus and binds the sensor to it.
func connect(c *cli.Context) (*session, error) {
	cfg, err := loadConfig(c)
	if err != nil {
		return nil, console.Exit(2, "configuration error: %s", console.Red(err))
	}
	bus, closer, err := openBus(c, cfg)
	if err != nil {
		return nil, console.Exit(1, "adapter initialization error: %s", console.Red(err))
	}
	slog.Debug("bus ready", "adapter", cfg.Adapter, "address", fmt.Sprintf("%#x", cfg.Address))
	return &session{
		cfg:    cfg,
		sensor: position.NewAS560x(i2c.NewWire(bus), position.WithAddress(byte(cfg.Address))),
		close:  closer,
	}, nil
}
