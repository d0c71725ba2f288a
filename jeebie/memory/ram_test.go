package memory

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRAM_WorkRAMReadWriteRoundTrip(t *testing.T) {
	ram := NewRAM()
	ram.Write(0xC000, 0x12)
	ram.Write(0xDFFF, 0x34)

	assert.Equal(t, uint8(0x12), ram.Read(0xC000))
	assert.Equal(t, uint8(0x34), ram.Read(0xDFFF))
}

func TestRAM_U16RoundTrip(t *testing.T) {
	ram := NewRAM()
	const addr = 0xC100
	const value = 0xBEEF

	ram.Write(addr, uint8(value))
	ram.Write(addr+1, uint8(value>>8))

	got := uint16(ram.Read(addr)) | uint16(ram.Read(addr+1))<<8
	assert.Equal(t, uint16(value), got)
}

func TestRAM_EchoAliasesWorkRAM(t *testing.T) {
	ram := NewRAM()
	ram.Write(0xC000, 0x99)
	assert.Equal(t, uint8(0x99), ram.Read(0xE000))

	ram.Write(0xE010, 0x55)
	assert.Equal(t, uint8(0x55), ram.Read(0xC010))
}

func TestRAM_EchoIsAsymmetric(t *testing.T) {
	ram := NewRAM()
	ram.Write(0xDE00, 0x42) // within the last 512 bytes of work RAM, no echo alias

	for addr := uint16(0xFD00); addr <= 0xFDFF; addr++ {
		assert.NotEqual(t, uint8(0x42), ram.Read(addr), "0x%x should not alias 0xDE00", addr)
	}
}

func TestRAM_HighRAMReadWrite(t *testing.T) {
	ram := NewRAM()
	ram.Write(0xFF80, 0x01)
	ram.Write(0xFFFE, 0x02)

	assert.Equal(t, uint8(0x01), ram.Read(0xFF80))
	assert.Equal(t, uint8(0x02), ram.Read(0xFFFE))
}

func TestRAM_OutOfRangePanics(t *testing.T) {
	ram := NewRAM()
	assert.Panics(t, func() { ram.Read(0x0000) })
	assert.Panics(t, func() { ram.Write(0xFFFF, 0) })
}
