package main

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/mklimuk/rotary/i2c"
	"github.com/mklimuk/rotary/position"
)

// registerBus answers reads from a flat register file with auto-increment
type registerBus struct {
	regs    [256]byte
	pointer byte
}

func (b *registerBus) WriteToAddr(ctx context.Context, address byte, buffer []byte) error {
	if len(buffer) == 0 {
		return nil
	}
	b.pointer = buffer[0]
	for _, v := range buffer[1:] {
		b.regs[b.pointer] = v
		b.pointer++
	}
	return nil
}

func (b *registerBus) ReadFromAddr(ctx context.Context, address byte, buffer []byte) error {
	for i := range buffer {
		buffer[i] = b.regs[b.pointer]
		b.pointer++
	}
	return nil
}

func (b *registerBus) Release(ctx context.Context) error {
	return nil
}

func TestReadSettings(t *testing.T) {
	bus := &registerBus{}
	bus.regs[position.RegZMCO] = 0x01
	bus.regs[position.RegZPos] = 0x02
	bus.regs[position.RegZPos+1] = 0x9A
	bus.regs[position.RegConf] = 0x00
	bus.regs[position.RegConf+1] = 0x10
	bus.regs[position.RegABN] = 0x06
	bus.regs[position.RegPushThr] = 0x40
	bus.regs[position.RegStatus] = 0x28

	sensor := position.NewAS560x(i2c.NewWire(bus))
	settings, err := readSettings(context.Background(), sensor)
	require.NoError(t, err)

	assert.Equal(t, "0x36", settings.Address)
	assert.Equal(t, uint16(0x029A), settings.ZeroPosition)
	assert.Equal(t, "0x0010", settings.Config)
	assert.Equal(t, 512, settings.Resolution)
	assert.Equal(t, byte(0x40), settings.PushThreshold)
	assert.Equal(t, byte(1), settings.BurnCount)
	assert.Equal(t, position.Status{MagnetDetected: true, TooStrong: true}, settings.Status)

	out, err := yaml.Marshal(settings)
	require.NoError(t, err)
	assert.Contains(t, string(out), "zero_position: 666")
	assert.Contains(t, string(out), "resolution: 512")
}
