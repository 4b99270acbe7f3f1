package main

import (
	"context"
	"os"
	"os/signal"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/mklimuk/rotary/cmd/rotary/console"
)

var angleCmd = cli.Command{
	Name:    "angle",
	Aliases: []string{"rd"},
	Usage:   "read the zero-adjusted (or raw) angle",
	Flags: []cli.Flag{
		&cli.BoolFlag{Name: "raw", Usage: "read the raw angle instead"},
		&cli.BoolFlag{Name: "watch", Aliases: []string{"w"}, Usage: "keep reading until interrupted"},
		&cli.DurationFlag{Name: "interval", Value: 200 * time.Millisecond},
	},
	Action: func(c *cli.Context) error {
		s, err := connect(c)
		if err != nil {
			return err
		}
		defer s.close()
		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
		defer cancel()

		read := s.sensor.GetAngle
		if c.Bool("raw") {
			read = s.sensor.GetRawAngle
		}
		if !c.Bool("watch") {
			angle, err := read(ctx)
			if err != nil {
				return console.Fail(1, "error getting angle read", err)
			}
			console.PInfof(console.PictoAngle, "%s", console.White(angle))
			return nil
		}

		ticker := time.NewTicker(c.Duration("interval"))
		defer ticker.Stop()
		var last uint16
		first := true
		for {
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
			}
			angle, err := read(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return nil
				}
				console.Errorf("error getting angle read: %s", console.Red(err))
				continue
			}
			if first || angle != last {
				console.PInfof(console.PictoAngle, "%s", console.White(angle))
			}
			first = false
			last = angle
		}
	},
}
