package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "rotary.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, 0x36, cfg.Address)
}

func TestLoad_File(t *testing.T) {
	path := writeConfig(t, `
adapter: generic
device: /dev/i2c-0
address: 0x40
resolution: 1024
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, AdapterGeneric, cfg.Adapter)
	assert.Equal(t, "/dev/i2c-0", cfg.Device)
	assert.Equal(t, 0x40, cfg.Address)
	assert.Equal(t, 1024, cfg.Resolution)
	// untouched keys keep defaults
	assert.Equal(t, 100, cfg.SpeedKHz)
	assert.Equal(t, -1, cfg.Bus)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		target  error
	}{
		{"unknown adapter", "adapter: ftdi\n", ErrUnknownAdapter},
		{"address too big", "address: 0x80\n", nil},
		{"bad speed", "speed_khz: 0\n", nil},
		{"malformed", "adapter: [\n", nil},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, test.content))
			require.Error(t, err)
			if test.target != nil {
				assert.ErrorIs(t, err, test.target)
			}
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
