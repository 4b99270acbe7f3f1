package main

import (
	"context"
	"fmt"
	"time"

	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"

	"github.com/mklimuk/rotary/cmd/rotary/console"
	"github.com/mklimuk/rotary/position"
)

type sensorSettings struct {
	Address       string          `yaml:"address"`
	ZeroPosition  uint16          `yaml:"zero_position"`
	Config        string          `yaml:"conf"`
	Resolution    int             `yaml:"resolution"`
	PushThreshold byte            `yaml:"push_threshold"`
	BurnCount     byte            `yaml:"burn_count"`
	Status        position.Status `yaml:"status"`
}

func readSettings(ctx context.Context, sensor *position.AS560x) (*sensorSettings, error) {
	var err error
	res := &sensorSettings{Address: fmt.Sprintf("%#x", sensor.Address())}
	if res.ZeroPosition, err = sensor.GetZeroPosition(ctx); err != nil {
		return nil, fmt.Errorf("could not read zero position: %w", err)
	}
	conf, err := sensor.GetConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("could not read conf: %w", err)
	}
	res.Config = fmt.Sprintf("%#04x", conf)
	if res.Resolution, err = sensor.GetResolution(ctx); err != nil {
		return nil, err
	}
	if res.PushThreshold, err = sensor.GetPushThreshold(ctx); err != nil {
		return nil, fmt.Errorf("could not read push threshold: %w", err)
	}
	if res.BurnCount, err = sensor.GetBurnCount(ctx); err != nil {
		return nil, fmt.Errorf("could not read burn count: %w", err)
	}
	if res.Status, err = sensor.GetStatus(ctx); err != nil {
		return nil, fmt.Errorf("could not read status: %w", err)
	}
	return res, nil
}

var settingsCmd = cli.Command{
	Name:  "settings",
	Usage: "dump sensor configuration registers as YAML",
	Action: func(c *cli.Context) error {
		s, err := connect(c)
		if err != nil {
			return err
		}
		defer s.close()
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		settings, err := readSettings(ctx, s.sensor)
		if err != nil {
			return console.Fail(1, "sensor communication error", err)
		}
		enc := yaml.NewEncoder(console.Writer())
		defer func() { _ = enc.Close() }()
		if err := enc.Encode(settings); err != nil {
			return console.Fail(1, "encoding error", err)
		}
		return nil
	},
}
