package main

import (
	"context"
	"strconv"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/mklimuk/rotary/cmd/rotary/console"
	"github.com/mklimuk/rotary/position"
)

var resolutionCmd = cli.Command{
	Name:    "resolution",
	Aliases: []string{"res"},
	Usage:   "read or set angle steps per revolution",
	Subcommands: []*cli.Command{
		&resolutionGetCmd,
		&resolutionSetCmd,
	},
}

var resolutionGetCmd = cli.Command{
	Name: "get",
	Action: func(c *cli.Context) error {
		s, err := connect(c)
		if err != nil {
			return err
		}
		defer s.close()
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		steps, err := s.sensor.GetResolution(ctx)
		if err != nil {
			return console.Fail(1, "error reading resolution", err)
		}
		console.Printf("%s steps\n", console.White(steps))
		return nil
	},
}

var resolutionSetCmd = cli.Command{
	Name:      "set",
	ArgsUsage: "[steps]",
	Usage:     "set steps (8-2048, rounded up to a power of two); defaults to the configured resolution",
	Action: func(c *cli.Context) error {
		s, err := connect(c)
		if err != nil {
			return err
		}
		defer s.close()

		steps := s.cfg.Resolution
		if c.NArg() > 0 {
			steps, err = strconv.Atoi(c.Args().First())
			if err != nil {
				return console.Exit(2, "invalid steps %q: %v", c.Args().First(), err)
			}
		}
		if steps <= 0 {
			return console.Exit(2, "no resolution given and none configured")
		}
		if steps < position.MinResolution || steps > position.MaxResolution {
			console.Warnf("%d steps out of range, clamping to %d-%d", steps, position.MinResolution, position.MaxResolution)
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		err = s.sensor.SetResolution(ctx, steps)
		if err != nil {
			return console.Fail(1, "error setting resolution", err)
		}
		console.Printf("resolution set to %s steps (code %d)\n", console.White(position.MinResolution<<position.ResolutionCode(steps)), position.ResolutionCode(steps))
		return nil
	},
}
