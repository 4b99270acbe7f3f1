package i2c

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mklimuk/rotary"
)

var ErrNoData = errors.New("wire: no data available in response buffer")
var ErrNoTransmission = errors.New("wire: no transmission in progress")

const wireBufferSize = 32

var _ rotary.Wire = &Wire{}

// Wire exposes an addressable bus as a begin/write/end/request/read channel.
//
// A transmission ended without STOP stays pending and is sent together with the next
// RequestFrom as a single repeated START transaction when the bus implements
// rotary.Transactor. Other buses get a plain write followed by a read.
//
// Wire is not safe for concurrent use.
type Wire struct {
	bus      rotary.I2CBus
	tx       rotary.Transactor
	address  byte
	active   bool
	out      []byte
	pending  []byte
	pendAddr byte
	in       []byte
	pos      int
}

func NewWire(bus rotary.I2CBus) *Wire {
	w := &Wire{bus: bus}
	if tx, ok := bus.(rotary.Transactor); ok {
		w.tx = tx
	}
	return w
}

func (w *Wire) BeginTransmission(address byte) {
	w.address = address
	w.active = true
	w.out = make([]byte, 0, wireBufferSize)
}

func (w *Wire) WriteByte(value byte) error {
	if !w.active {
		return ErrNoTransmission
	}
	if len(w.out) >= wireBufferSize {
		return fmt.Errorf("wire: transmit buffer full (%d bytes)", wireBufferSize)
	}
	w.out = append(w.out, value)
	return nil
}

func (w *Wire) EndTransmission(ctx context.Context, stop bool) error {
	if !w.active {
		return ErrNoTransmission
	}
	w.active = false
	// an earlier unterminated transmission is not followed by a read anymore
	if err := w.flushPending(ctx); err != nil {
		return err
	}
	if !stop {
		w.pending = w.out
		w.pendAddr = w.address
		return nil
	}
	slog.Debug("i2c write", "addr", fmt.Sprintf("%#x", w.address), "data", hex.EncodeToString(w.out))
	err := w.bus.WriteToAddr(ctx, w.address, w.out)
	if err != nil {
		return fmt.Errorf("wire: write to %#x failed: %w", w.address, err)
	}
	return nil
}

// RequestFrom reads count bytes from the device. Bytes left by a transmission ended
// without STOP to the same address are written first within the same transaction.
// The stop flag is honored by the underlying bus, which always terminates with STOP.
func (w *Wire) RequestFrom(ctx context.Context, address byte, count int, stop bool) (int, error) {
	w.in = nil
	w.pos = 0
	if w.pendAddr != address {
		if err := w.flushPending(ctx); err != nil {
			return 0, err
		}
	}
	if count <= 0 {
		// nothing to read, the register pointer write still has to reach the device
		if err := w.flushPending(ctx); err != nil {
			return 0, err
		}
		return 0, nil
	}
	buf := make([]byte, count)
	var err error
	switch {
	case len(w.pending) > 0 && w.tx != nil:
		slog.Debug("i2c tx", "addr", fmt.Sprintf("%#x", address), "write", hex.EncodeToString(w.pending), "read", count)
		err = w.tx.Tx(ctx, address, w.pending, buf)
	case len(w.pending) > 0:
		slog.Debug("i2c write", "addr", fmt.Sprintf("%#x", address), "data", hex.EncodeToString(w.pending))
		err = w.bus.WriteToAddr(ctx, address, w.pending)
		if err == nil {
			err = w.bus.ReadFromAddr(ctx, address, buf)
		}
	default:
		err = w.bus.ReadFromAddr(ctx, address, buf)
	}
	w.pending = nil
	if err != nil {
		return 0, fmt.Errorf("wire: read from %#x failed: %w", address, err)
	}
	slog.Debug("i2c read", "addr", fmt.Sprintf("%#x", address), "data", hex.EncodeToString(buf))
	w.in = buf
	return len(buf), nil
}

func (w *Wire) ReadByte() (byte, error) {
	if w.pos >= len(w.in) {
		return 0, ErrNoData
	}
	b := w.in[w.pos]
	w.pos++
	return b, nil
}

// Available returns the number of response bytes not consumed yet.
func (w *Wire) Available() int {
	return len(w.in) - w.pos
}

func (w *Wire) flushPending(ctx context.Context) error {
	if len(w.pending) == 0 {
		return nil
	}
	data := w.pending
	w.pending = nil
	err := w.bus.WriteToAddr(ctx, w.pendAddr, data)
	if err != nil {
		return fmt.Errorf("wire: write to %#x failed: %w", w.pendAddr, err)
	}
	return nil
}
