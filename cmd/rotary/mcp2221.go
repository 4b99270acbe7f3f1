package main

import (
	"context"
	"time"

	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"

	"github.com/mklimuk/rotary/adapter"
	"github.com/mklimuk/rotary/cmd/rotary/console"
)

var mcp2221Cmd = cli.Command{
	Name:  "mcp2221",
	Usage: "USB bridge diagnostics",
	Subcommands: cli.Commands{
		&mcp2221StatusCmd,
		&mcp2221ReleaseCmd,
		&mcp2221GPIOCmd,
	},
}

func mcp2221Action(query func(ctx context.Context, a *adapter.MCP2221) (interface{}, error)) cli.ActionFunc {
	return func(c *cli.Context) error {
		a := adapter.NewMCP2221(adapter.WithDeviceIndex(c.Int("index")))
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		res, err := query(ctx, a)
		if err != nil {
			return console.Fail(1, "adapter communication error", err)
		}
		enc := yaml.NewEncoder(console.Writer())
		defer func() { _ = enc.Close() }()
		if err := enc.Encode(res); err != nil {
			return console.Fail(1, "encoding error", err)
		}
		return nil
	}
}

var mcp2221StatusCmd = cli.Command{
	Name: "status",
	Action: mcp2221Action(func(ctx context.Context, a *adapter.MCP2221) (interface{}, error) {
		return a.Status(ctx)
	}),
}

var mcp2221ReleaseCmd = cli.Command{
	Name:  "release",
	Usage: "cancel a stuck transfer and free the bus",
	Action: mcp2221Action(func(ctx context.Context, a *adapter.MCP2221) (interface{}, error) {
		return a.ReleaseBus(ctx)
	}),
}

// the sensor's A, B and PUSH outputs can be wired to GP pins
var mcp2221GPIOCmd = cli.Command{
	Name:  "gpio",
	Usage: "read GP pin levels",
	Action: mcp2221Action(func(ctx context.Context, a *adapter.MCP2221) (interface{}, error) {
		return a.ReadGPIO(ctx)
	}),
}
