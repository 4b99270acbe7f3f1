package position

import (
	"context"
)

// AngleSensor is implemented by AS560x and MockAngleSensor.
type AngleSensor interface {
	GetAngle(ctx context.Context) (uint16, error)
	GetRawAngle(ctx context.Context) (uint16, error)
	MagnetDetected(ctx context.Context) (bool, error)
}

var _ AngleSensor = &AS560x{}
var _ AngleSensor = &MockAngleSensor{}

// AngleBehaviorFunc defines the function signature for angle sensor behavior.
// It returns the raw 12-bit angle or an error.
type AngleBehaviorFunc func(ctx context.Context) (uint16, error)

// MockAngleSensor is a mock implementation of a rotary position sensor that uses a behavior
// function to produce results without requiring any hardware.
// Zero position is applied the same way the device applies it, modulo 4096.
type MockAngleSensor struct {
	behavior AngleBehaviorFunc
	zero     uint16
}

// NewMockAngleSensor creates a new mock angle sensor with the given behavior function.
//
// Example usage:
//
//	// Rotating shaft
//	pos := uint16(0)
//	sensor := NewMockAngleSensor(func(ctx context.Context) (uint16, error) {
//		pos = (pos + 16) % 4096
//		return pos, nil
//	})
//
//	// Missing magnet
//	sensor := NewMockAngleSensor(func(ctx context.Context) (uint16, error) {
//		return 0, fmt.Errorf("magnet not detected")
//	})
func NewMockAngleSensor(behavior AngleBehaviorFunc) *MockAngleSensor {
	return &MockAngleSensor{behavior: behavior}
}

// GetRawAngle returns the value produced by the behavior function.
func (m *MockAngleSensor) GetRawAngle(ctx context.Context) (uint16, error) {
	return m.behavior(ctx)
}

// GetAngle returns the behavior value shifted by the zero position.
func (m *MockAngleSensor) GetAngle(ctx context.Context) (uint16, error) {
	raw, err := m.behavior(ctx)
	if err != nil {
		return 0, err
	}
	return (raw + 4096 - m.zero%4096) % 4096, nil
}

// MagnetDetected reports false whenever the behavior function fails.
func (m *MockAngleSensor) MagnetDetected(ctx context.Context) (bool, error) {
	_, err := m.behavior(ctx)
	return err == nil, nil
}

func (m *MockAngleSensor) SetZeroPosition(ctx context.Context, rawAngle uint16) error {
	m.zero = rawAngle
	return nil
}
