package rotary

import (
	"context"
	"fmt"
)

var ErrBusBusy = fmt.Errorf("I2C engine is busy (command not completed)")

type AddressableReader interface {
	ReadFromAddr(ctx context.Context, address byte, buffer []byte) error
}

type AddressableWriter interface {
	WriteToAddr(ctx context.Context, address byte, buffer []byte) error
	Release(ctx context.Context) error
}

type I2CBus interface {
	AddressableReader
	AddressableWriter
}

// Transactor is implemented by buses able to write and read within a single
// transaction, using a repeated START instead of a STOP between the two phases.
type Transactor interface {
	Tx(ctx context.Context, address byte, w, r []byte) error
}

// Wire is a master-side two-wire channel in the begin/write/end/request/read style.
//
// Bytes written after BeginTransmission are queued until EndTransmission. When stop is
// false the bus is kept for an immediately following RequestFrom (repeated START).
// ReadByte consumes the response of the most recent RequestFrom, in order.
type Wire interface {
	BeginTransmission(address byte)
	WriteByte(value byte) error
	EndTransmission(ctx context.Context, stop bool) error
	RequestFrom(ctx context.Context, address byte, count int, stop bool) (int, error)
	ReadByte() (byte, error)
}
