package main

import (
	"context"
	"fmt"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/mklimuk/rotary/cmd/rotary/console"
)

var zeroCmd = cli.Command{
	Name:  "zero",
	Usage: "set the zero position (volatile, no burn)",
	Flags: []cli.Flag{
		&cli.IntFlag{Name: "raw", Usage: "raw angle to use instead of the current position"},
		&cli.BoolFlag{Name: "yes", Aliases: []string{"y"}, Usage: "do not ask for confirmation"},
	},
	Action: func(c *cli.Context) error {
		s, err := connect(c)
		if err != nil {
			return err
		}
		defer s.close()
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if !c.IsSet("raw") && c.Bool("yes") {
			raw, err := s.sensor.SetZeroPositionHere(ctx)
			if err != nil {
				return console.Fail(1, "error setting zero position", err)
			}
			console.PInfof(console.PictoPin, "zero position set to %s", console.White(raw))
			return nil
		}

		var raw uint16
		if c.IsSet("raw") {
			v := c.Int("raw")
			if v < 0 || v > 4095 {
				return console.Exit(2, "raw angle out of range (0-4095): %d", v)
			}
			raw = uint16(v)
		} else {
			raw, err = s.sensor.GetRawAngle(ctx)
			if err != nil {
				return console.Fail(1, "error reading raw angle", err)
			}
		}
		if !c.Bool("yes") {
			ok, err := console.Confirm(fmt.Sprintf("set zero position to raw angle %d?", raw))
			if err != nil {
				return console.Fail(1, "prompt error", err)
			}
			if !ok {
				console.PInfof(console.PictoStop, "aborted")
				return nil
			}
		}
		// the prompt may have taken a while
		ctx, cancel = context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		err = s.sensor.SetZeroPosition(ctx, raw)
		if err != nil {
			return console.Fail(1, "error setting zero position", err)
		}
		console.PInfof(console.PictoPin, "zero position set to %s", console.White(raw))
		return nil
	},
}
