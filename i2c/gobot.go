package i2c

import (
	"context"
	"fmt"

	"github.com/mklimuk/rotary"
	gobot "gobot.io/x/gobot/v2/drivers/i2c"
)

var _ rotary.I2CBus = &GobotBus{}
var _ rotary.Transactor = &GobotBus{}

// GobotBus talks to devices through a gobot I2C connector (e.g. a NanoPi adaptor).
// Connections are looked up per address; the adaptor caches them.
type GobotBus struct {
	connector gobot.Connector
	busNr     int
}

// NewGobotBus creates a bus on the connected adaptor. A negative bus number selects the
// adaptor's default bus.
func NewGobotBus(connector gobot.Connector, busNr int) *GobotBus {
	if busNr < 0 {
		busNr = connector.DefaultI2cBus()
	}
	return &GobotBus{connector: connector, busNr: busNr}
}

func (b *GobotBus) connection(address byte) (gobot.Connection, error) {
	conn, err := b.connector.GetI2cConnection(int(address), b.busNr)
	if err != nil {
		return nil, fmt.Errorf("could not get connection to %x on bus %d: %w", address, b.busNr, err)
	}
	return conn, nil
}

func (b *GobotBus) ReadFromAddr(ctx context.Context, address byte, buffer []byte) error {
	conn, err := b.connection(address)
	if err != nil {
		return err
	}
	if _, err := conn.Read(buffer); err != nil {
		return fmt.Errorf("could not read from i2c bus %x: %w", address, err)
	}
	return nil
}

func (b *GobotBus) WriteToAddr(ctx context.Context, address byte, buffer []byte) error {
	conn, err := b.connection(address)
	if err != nil {
		return err
	}
	if err := conn.WriteBytes(buffer); err != nil {
		return fmt.Errorf("could not write to i2c bus %x: %w", address, err)
	}
	return nil
}

// Tx supports the register read pattern only: a single register byte followed by a
// block read, which gobot performs with a repeated START.
func (b *GobotBus) Tx(ctx context.Context, address byte, w, r []byte) error {
	if len(w) != 1 || len(r) == 0 {
		if len(w) > 0 {
			if err := b.WriteToAddr(ctx, address, w); err != nil {
				return err
			}
		}
		if len(r) == 0 {
			return nil
		}
		return b.ReadFromAddr(ctx, address, r)
	}
	conn, err := b.connection(address)
	if err != nil {
		return err
	}
	if err := conn.ReadBlockData(w[0], r); err != nil {
		return fmt.Errorf("could not read register %#x from %x: %w", w[0], address, err)
	}
	return nil
}

func (b *GobotBus) Release(ctx context.Context) error {
	return nil
}
