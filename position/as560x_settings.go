package position

import (
	"context"
	"fmt"
)

// Status is the decoded STATUS register.
type Status struct {
	MagnetDetected bool `yaml:"magnet_detected"`
	TooWeak        bool `yaml:"too_weak"`
	TooStrong      bool `yaml:"too_strong"`
}

func decodeStatus(status byte) Status {
	return Status{
		MagnetDetected: status&statusMagnetDetected != 0,
		TooWeak:        status&statusMagnetLow != 0,
		TooStrong:      status&statusMagnetHigh != 0,
	}
}

func (s *AS560x) GetStatus(ctx context.Context) (Status, error) {
	status, err := s.ReadRegister(ctx, RegStatus)
	if err != nil {
		return Status{}, err
	}
	return decodeStatus(status), nil
}

// GetResolution returns the configured number of angle steps per revolution.
// Codes above 8 are treated by the device as 2048 steps.
func (s *AS560x) GetResolution(ctx context.Context) (int, error) {
	abn, err := s.ReadRegister(ctx, RegABN)
	if err != nil {
		return 0, fmt.Errorf("as560x: could not read resolution: %w", err)
	}
	return resolutionSteps(abn), nil
}

func resolutionSteps(abn byte) int {
	code := abn & 0x0F
	if code > 8 {
		code = 8
	}
	return MinResolution << code
}

// GetZeroPosition reads back the zero position. Configuration registers only change on
// writes, so the split read is sufficient.
func (s *AS560x) GetZeroPosition(ctx context.Context) (uint16, error) {
	return s.ReadWord(ctx, RegZPos)
}

// GetConfig returns the CONF word (power mode, hysteresis, slow filter, fast filter
// threshold and watchdog bits).
func (s *AS560x) GetConfig(ctx context.Context) (uint16, error) {
	return s.ReadWord(ctx, RegConf)
}

func (s *AS560x) SetConfig(ctx context.Context, conf uint16) error {
	err := s.WriteWord(ctx, RegConf, conf)
	if err != nil {
		return fmt.Errorf("as560x: could not write config: %w", err)
	}
	return nil
}

// GetPushThreshold returns the push-button detection threshold.
func (s *AS560x) GetPushThreshold(ctx context.Context) (byte, error) {
	return s.ReadRegister(ctx, RegPushThr)
}

func (s *AS560x) SetPushThreshold(ctx context.Context, threshold byte) error {
	return s.WriteRegister(ctx, RegPushThr, threshold)
}

// GetBurnCount returns how many times the zero position has been permanently programmed (0-3).
func (s *AS560x) GetBurnCount(ctx context.Context) (byte, error) {
	zmco, err := s.ReadRegister(ctx, RegZMCO)
	if err != nil {
		return 0, err
	}
	return zmco & 0x03, nil
}
