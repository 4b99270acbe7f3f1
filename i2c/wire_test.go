package i2c

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/mklimuk/rotary"
)

// MockI2CBus is a mock implementation of rotary.I2CBus using testify/mock
type MockI2CBus struct {
	mock.Mock
}

func (m *MockI2CBus) WriteToAddr(ctx context.Context, address byte, buffer []byte) error {
	args := m.Called(ctx, address, buffer)
	return args.Error(0)
}

func (m *MockI2CBus) ReadFromAddr(ctx context.Context, address byte, buffer []byte) error {
	args := m.Called(ctx, address, buffer)
	if data, ok := args.Get(0).([]byte); ok && len(data) <= len(buffer) {
		copy(buffer, data)
	}
	return args.Error(1)
}

func (m *MockI2CBus) Release(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// MockTxBus additionally supports repeated START transactions
type MockTxBus struct {
	MockI2CBus
}

func (m *MockTxBus) Tx(ctx context.Context, address byte, w, r []byte) error {
	args := m.Called(ctx, address, w, r)
	if data, ok := args.Get(0).([]byte); ok && len(data) <= len(r) {
		copy(r, data)
	}
	return args.Error(1)
}

var _ rotary.Transactor = &MockTxBus{}

func TestWire_RepeatedStartRead(t *testing.T) {
	bus := new(MockTxBus)
	bus.Test(t)
	bus.On("Tx", mock.Anything, byte(0x36), []byte{0x0E}, mock.Anything).Return([]byte{0x0A, 0xF3}, nil).Once()

	w := NewWire(bus)
	ctx := context.Background()
	w.BeginTransmission(0x36)
	require.NoError(t, w.WriteByte(0x0E))
	require.NoError(t, w.EndTransmission(ctx, false))
	n, err := w.RequestFrom(ctx, 0x36, 2, true)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, 2, w.Available())

	high, err := w.ReadByte()
	require.NoError(t, err)
	low, err := w.ReadByte()
	require.NoError(t, err)
	assert.Equal(t, byte(0x0A), high)
	assert.Equal(t, byte(0xF3), low)

	_, err = w.ReadByte()
	assert.ErrorIs(t, err, ErrNoData)
	bus.AssertExpectations(t)
	bus.AssertNotCalled(t, "WriteToAddr", mock.Anything, mock.Anything, mock.Anything)
}

func TestWire_WriteThenReadWithoutTransactor(t *testing.T) {
	bus := new(MockI2CBus)
	bus.Test(t)
	mock.InOrder(
		bus.On("WriteToAddr", mock.Anything, byte(0x36), []byte{0x0B}).Return(nil).Once(),
		bus.On("ReadFromAddr", mock.Anything, byte(0x36), mock.Anything).Return([]byte{0x20}, nil).Once(),
	)

	w := NewWire(bus)
	ctx := context.Background()
	w.BeginTransmission(0x36)
	require.NoError(t, w.WriteByte(0x0B))
	require.NoError(t, w.EndTransmission(ctx, false))
	_, err := w.RequestFrom(ctx, 0x36, 1, true)
	require.NoError(t, err)
	b, err := w.ReadByte()
	require.NoError(t, err)
	assert.Equal(t, byte(0x20), b)
	bus.AssertExpectations(t)
}

func TestWire_WriteWithStop(t *testing.T) {
	bus := new(MockTxBus)
	bus.Test(t)
	bus.On("WriteToAddr", mock.Anything, byte(0x36), []byte{0x09, 0x07}).Return(nil).Once()

	w := NewWire(bus)
	w.BeginTransmission(0x36)
	require.NoError(t, w.WriteByte(0x09))
	require.NoError(t, w.WriteByte(0x07))
	require.NoError(t, w.EndTransmission(context.Background(), true))
	bus.AssertExpectations(t)
	bus.AssertNotCalled(t, "Tx", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestWire_PendingFlushedOnNewTransmission(t *testing.T) {
	bus := new(MockTxBus)
	bus.Test(t)
	mock.InOrder(
		bus.On("WriteToAddr", mock.Anything, byte(0x36), []byte{0x0C}).Return(nil).Once(),
		bus.On("WriteToAddr", mock.Anything, byte(0x36), []byte{0x01, 0x02}).Return(nil).Once(),
	)

	w := NewWire(bus)
	ctx := context.Background()
	w.BeginTransmission(0x36)
	require.NoError(t, w.WriteByte(0x0C))
	require.NoError(t, w.EndTransmission(ctx, false))
	w.BeginTransmission(0x36)
	require.NoError(t, w.WriteByte(0x01))
	require.NoError(t, w.WriteByte(0x02))
	require.NoError(t, w.EndTransmission(ctx, true))
	bus.AssertExpectations(t)
}

func TestWire_RequestFromOtherAddressFlushesPending(t *testing.T) {
	bus := new(MockTxBus)
	bus.Test(t)
	mock.InOrder(
		bus.On("WriteToAddr", mock.Anything, byte(0x36), []byte{0x0C}).Return(nil).Once(),
		bus.On("ReadFromAddr", mock.Anything, byte(0x40), mock.Anything).Return([]byte{0x55}, nil).Once(),
	)

	w := NewWire(bus)
	ctx := context.Background()
	w.BeginTransmission(0x36)
	require.NoError(t, w.WriteByte(0x0C))
	require.NoError(t, w.EndTransmission(ctx, false))
	_, err := w.RequestFrom(ctx, 0x40, 1, true)
	require.NoError(t, err)
	b, err := w.ReadByte()
	require.NoError(t, err)
	assert.Equal(t, byte(0x55), b)
	bus.AssertExpectations(t)
}

func TestWire_Errors(t *testing.T) {
	ctx := context.Background()

	t.Run("write outside transmission", func(t *testing.T) {
		w := NewWire(new(MockI2CBus))
		assert.ErrorIs(t, w.WriteByte(0x01), ErrNoTransmission)
		assert.ErrorIs(t, w.EndTransmission(ctx, true), ErrNoTransmission)
	})

	t.Run("buffer full", func(t *testing.T) {
		w := NewWire(new(MockI2CBus))
		w.BeginTransmission(0x36)
		for i := 0; i < wireBufferSize; i++ {
			require.NoError(t, w.WriteByte(byte(i)))
		}
		assert.Error(t, w.WriteByte(0xFF))
	})

	t.Run("bus error is wrapped", func(t *testing.T) {
		bus := new(MockTxBus)
		bus.Test(t)
		bus.On("Tx", mock.Anything, byte(0x36), mock.Anything, mock.Anything).Return(nil, rotary.ErrBusBusy).Once()
		w := NewWire(bus)
		w.BeginTransmission(0x36)
		require.NoError(t, w.WriteByte(0x0E))
		require.NoError(t, w.EndTransmission(ctx, false))
		n, err := w.RequestFrom(ctx, 0x36, 2, true)
		assert.Zero(t, n)
		assert.True(t, errors.Is(err, rotary.ErrBusBusy))
		_, err = w.ReadByte()
		assert.ErrorIs(t, err, ErrNoData)
	})
}

func TestWire_EmptyRequestFlushesPending(t *testing.T) {
	bus := new(MockTxBus)
	bus.Test(t)
	mock.InOrder(
		bus.On("WriteToAddr", mock.Anything, byte(0x36), []byte{0x0C}).Return(nil).Once(),
		bus.On("ReadFromAddr", mock.Anything, byte(0x36), mock.Anything).Return([]byte{0x05}, nil).Once(),
	)

	w := NewWire(bus)
	ctx := context.Background()
	w.BeginTransmission(0x36)
	require.NoError(t, w.WriteByte(0x0C))
	require.NoError(t, w.EndTransmission(ctx, false))
	n, err := w.RequestFrom(ctx, 0x36, 0, true)
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	// the next read carries no stale register pointer
	_, err = w.RequestFrom(ctx, 0x36, 1, true)
	require.NoError(t, err)
	b, err := w.ReadByte()
	require.NoError(t, err)
	assert.Equal(t, byte(0x05), b)
	bus.AssertExpectations(t)
	bus.AssertNotCalled(t, "Tx", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}
