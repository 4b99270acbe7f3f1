package adapter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMCP2221_BufferToStatus(t *testing.T) {
	buf := make([]byte, reportSize)
	buf[9], buf[10] = 0x02, 0x01
	buf[11], buf[12] = 0x01, 0x00
	buf[13] = 3
	buf[14] = 0x76
	buf[15] = 0x0A
	buf[16], buf[17] = 0x6C, 0x00
	buf[25] = 1

	status := bufferToStatus(buf)
	assert.Equal(t, uint16(0x0102), status.LastWriteRequestedSize)
	assert.Equal(t, uint16(1), status.LastWriteSentSize)
	assert.Equal(t, 3, status.I2CDataBufferCounter)
	assert.Equal(t, 0x76, status.I2CSpeedDivider)
	assert.Equal(t, 10, status.I2CTimeout)
	assert.Equal(t, "6c00", status.CurrentAddress)
	assert.Equal(t, 1, status.ReadPending)
}

func TestMCP2221_DecodeGPIO(t *testing.T) {
	resp := make([]byte, reportSize)
	resp[0] = cmdGetGPIOValues
	resp[2], resp[3] = 0x01, 0x01 // GP0 input high
	resp[4], resp[5] = 0x00, 0x01 // GP1 input low
	resp[6], resp[7] = 0xEE, 0xEE // GP2 dedicated function
	resp[8], resp[9] = 0x01, 0x00 // GP3 output high

	values := decodeGPIO(resp)
	require.NotNil(t, values.GP0)
	assert.True(t, *values.GP0)
	require.NotNil(t, values.GP1)
	assert.False(t, *values.GP1)
	assert.Nil(t, values.GP2)
	require.NotNil(t, values.GP3)
	assert.True(t, *values.GP3)
}

func TestMCP2221_Options(t *testing.T) {
	d := NewMCP2221(WithDeviceIndex(2), WithResponseWait(0))
	assert.Equal(t, 2, d.index)
	assert.Zero(t, d.responseWait)
	assert.Len(t, d.request, reportSize)
	assert.Equal(t, -1, NewMCP2221().index)
}
