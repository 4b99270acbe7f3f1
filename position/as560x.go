package position

import (
	"context"
	"fmt"

	"github.com/mklimuk/rotary"
)

const AS560xDefaultAddress = 0x36

// ByteRegister is the address of a single byte register.
type ByteRegister byte

// WordRegister is the address of the high byte of a two byte register.
// The low byte lives at the next address.
type WordRegister byte

const (
	RegZMCO    ByteRegister = 0x00
	RegABN     ByteRegister = 0x09
	RegPushThr ByteRegister = 0x0A
	RegStatus  ByteRegister = 0x0B
	RegAGC     ByteRegister = 0x1A
	RegBurn    ByteRegister = 0xFF
)

const (
	RegZPos      WordRegister = 0x01
	RegConf      WordRegister = 0x03
	RegRawAngle  WordRegister = 0x0C
	RegAngle     WordRegister = 0x0E
	RegMagnitude WordRegister = 0x1B
)

// STATUS register bits
const (
	statusMagnetHigh     = 0x08 // MH
	statusMagnetLow      = 0x10 // ML
	statusMagnetDetected = 0x20 // MD
)

const (
	MinResolution = 8
	MaxResolution = 2048
)

// AS560x represents the ams AS5600/AS5601 12-bit magnetic rotary position sensor.
// See: https://ams.com/documents/20143/36005/AS5601_DS000395_3-00.pdf
//
// Usage: instantiate with NewAS560x on an initialized rotary.Wire, then call GetAngle(ctx).
//
// The driver holds no state besides the device address and does not lock. Calls sharing
// a transport must not be interleaved.
type AS560x struct {
	transport rotary.Wire
	address   byte
}

type AS560xConfig struct {
	Address byte
}

type AS560xConfigOption func(*AS560xConfig)

func WithAddress(address byte) AS560xConfigOption {
	return func(c *AS560xConfig) {
		c.Address = address
	}
}

// NewAS560x creates a new sensor connector on the given wire. The wire is not owned by
// the sensor and must be ready for use.
func NewAS560x(wire rotary.Wire, opts ...AS560xConfigOption) *AS560x {
	config := &AS560xConfig{
		Address: AS560xDefaultAddress,
	}
	for _, opt := range opts {
		opt(config)
	}
	return &AS560x{transport: wire, address: config.Address}
}

func (s *AS560x) Address() byte {
	return s.address
}

// SetAddress changes the 7-bit address targeted by subsequent calls.
func (s *AS560x) SetAddress(address byte) {
	s.address = address
}

// ReadRegister reads one byte register. The register pointer write ends without STOP so
// the read follows with a repeated START.
func (s *AS560x) ReadRegister(ctx context.Context, reg ByteRegister) (byte, error) {
	return s.readByte(ctx, byte(reg))
}

// ReadWord reads a word register as two separate byte reads, high byte first.
// The device may update the register between the reads, so the result can be torn.
// Use ReadWordAtomic for measurements.
func (s *AS560x) ReadWord(ctx context.Context, reg WordRegister) (uint16, error) {
	high, err := s.readByte(ctx, byte(reg))
	if err != nil {
		return 0, fmt.Errorf("as560x: could not read high byte of %#x: %w", byte(reg), err)
	}
	low, err := s.readByte(ctx, byte(reg)+1)
	if err != nil {
		return 0, fmt.Errorf("as560x: could not read low byte of %#x: %w", byte(reg), err)
	}
	return uint16(high)<<8 | uint16(low), nil
}

// ReadWordAtomic reads both bytes of a word register in one burst, so they come from
// the same sample.
func (s *AS560x) ReadWordAtomic(ctx context.Context, reg WordRegister) (uint16, error) {
	if err := s.pointTo(ctx, byte(reg)); err != nil {
		return 0, err
	}
	// the returned count is not checked, short responses surface from ReadByte
	_, err := s.transport.RequestFrom(ctx, s.address, 2, true)
	if err != nil {
		return 0, fmt.Errorf("as560x: could not request word %#x: %w", byte(reg), err)
	}
	high, err := s.transport.ReadByte()
	if err != nil {
		return 0, fmt.Errorf("as560x: could not read high byte of %#x: %w", byte(reg), err)
	}
	low, err := s.transport.ReadByte()
	if err != nil {
		return 0, fmt.Errorf("as560x: could not read low byte of %#x: %w", byte(reg), err)
	}
	return uint16(high)<<8 | uint16(low), nil
}

// WriteRegister writes one byte register. There is no verification read.
func (s *AS560x) WriteRegister(ctx context.Context, reg ByteRegister, value byte) error {
	return s.writeByte(ctx, byte(reg), value)
}

// WriteWord writes a word register as two byte writes, high byte first.
func (s *AS560x) WriteWord(ctx context.Context, reg WordRegister, value uint16) error {
	err := s.writeByte(ctx, byte(reg), byte(value>>8))
	if err != nil {
		return err
	}
	return s.writeByte(ctx, byte(reg)+1, byte(value))
}

func (s *AS560x) readByte(ctx context.Context, addr byte) (byte, error) {
	if err := s.pointTo(ctx, addr); err != nil {
		return 0, err
	}
	_, err := s.transport.RequestFrom(ctx, s.address, 1, true)
	if err != nil {
		return 0, fmt.Errorf("as560x: could not request register %#x: %w", addr, err)
	}
	value, err := s.transport.ReadByte()
	if err != nil {
		return 0, fmt.Errorf("as560x: could not read register %#x: %w", addr, err)
	}
	return value, nil
}

// pointTo sets the register pointer and keeps the bus (no STOP).
func (s *AS560x) pointTo(ctx context.Context, addr byte) error {
	s.transport.BeginTransmission(s.address)
	if err := s.transport.WriteByte(addr); err != nil {
		return fmt.Errorf("as560x: could not queue register address %#x: %w", addr, err)
	}
	if err := s.transport.EndTransmission(ctx, false); err != nil {
		return fmt.Errorf("as560x: could not set register pointer %#x: %w", addr, err)
	}
	return nil
}

func (s *AS560x) writeByte(ctx context.Context, addr, value byte) error {
	s.transport.BeginTransmission(s.address)
	if err := s.transport.WriteByte(addr); err != nil {
		return fmt.Errorf("as560x: could not queue register address %#x: %w", addr, err)
	}
	if err := s.transport.WriteByte(value); err != nil {
		return fmt.Errorf("as560x: could not queue value for %#x: %w", addr, err)
	}
	if err := s.transport.EndTransmission(ctx, true); err != nil {
		return fmt.Errorf("as560x: could not write register %#x: %w", addr, err)
	}
	return nil
}

// MagnetDetected reports whether the field is strong enough for a measurement (MD bit).
func (s *AS560x) MagnetDetected(ctx context.Context) (bool, error) {
	status, err := s.ReadRegister(ctx, RegStatus)
	if err != nil {
		return false, err
	}
	return status&statusMagnetDetected != 0, nil
}

// GetMagnitude returns the 12-bit CORDIC magnitude of the magnetic field.
func (s *AS560x) GetMagnitude(ctx context.Context) (uint16, error) {
	return s.ReadWordAtomic(ctx, RegMagnitude)
}

// GetGain returns the automatic gain control value (0 for the strongest field, 255 for the weakest).
func (s *AS560x) GetGain(ctx context.Context) (byte, error) {
	return s.ReadRegister(ctx, RegAGC)
}

// GetRawAngle returns the unscaled and unmodified 12-bit angle.
func (s *AS560x) GetRawAngle(ctx context.Context) (uint16, error) {
	return s.ReadWordAtomic(ctx, RegRawAngle)
}

// GetAngle returns the filtered 12-bit angle adjusted by the zero position.
func (s *AS560x) GetAngle(ctx context.Context) (uint16, error) {
	return s.ReadWordAtomic(ctx, RegAngle)
}

// SetZeroPosition makes the given raw angle read as 0.
func (s *AS560x) SetZeroPosition(ctx context.Context, rawAngle uint16) error {
	err := s.WriteWord(ctx, RegZPos, rawAngle)
	if err != nil {
		return fmt.Errorf("as560x: could not set zero position: %w", err)
	}
	return nil
}

// SetZeroPositionHere makes the current magnet position read as 0 and returns the raw
// angle that was used. Rotation between the read and the write is not accounted for.
func (s *AS560x) SetZeroPositionHere(ctx context.Context) (uint16, error) {
	raw, err := s.GetRawAngle(ctx)
	if err != nil {
		return 0, fmt.Errorf("as560x: could not read current position: %w", err)
	}
	return raw, s.SetZeroPosition(ctx, raw)
}

// SetResolution sets the number of angle steps per revolution. Values are coerced to a
// power of two between 8 and 2048.
func (s *AS560x) SetResolution(ctx context.Context, angleSteps int) error {
	err := s.WriteRegister(ctx, RegABN, ResolutionCode(angleSteps))
	if err != nil {
		return fmt.Errorf("as560x: could not set resolution: %w", err)
	}
	return nil
}

// ResolutionCode encodes angle steps into the ABN register value: the exponent of the
// smallest power of two not below angleSteps, rebased so that 8 steps is code 0.
func ResolutionCode(angleSteps int) byte {
	angleSteps = min(max(angleSteps, MinResolution), MaxResolution)
	power := 0
	for 1<<power < angleSteps {
		power++
	}
	return byte(power - 3)
}
