package main

import (
	"context"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/mklimuk/rotary/cmd/rotary/console"
)

var magnetCmd = cli.Command{
	Name:  "magnet",
	Usage: "show magnet detection, field magnitude and gain",
	Action: func(c *cli.Context) error {
		s, err := connect(c)
		if err != nil {
			return err
		}
		defer s.close()
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		status, err := s.sensor.GetStatus(ctx)
		if err != nil {
			return console.Fail(1, "error reading status", err)
		}
		magnitude, err := s.sensor.GetMagnitude(ctx)
		if err != nil {
			return console.Fail(1, "error reading magnitude", err)
		}
		gain, err := s.sensor.GetGain(ctx)
		if err != nil {
			return console.Fail(1, "error reading gain", err)
		}
		console.PInfof(console.PictoMagnet, "detected:   %s", console.Flag(status.MagnetDetected, true))
		console.PInfof(console.PictoMagnet, "too weak:   %s", console.Flag(status.TooWeak, false))
		console.PInfof(console.PictoMagnet, "too strong: %s", console.Flag(status.TooStrong, false))
		console.PInfof(console.PictoMagnet, "magnitude:  %s", console.White(magnitude))
		console.PInfof(console.PictoMagnet, "gain:       %s", console.White(gain))
		return nil
	},
}
