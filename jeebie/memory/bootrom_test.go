package memory

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBootROM_ReadsLoadedBytes(t *testing.T) {
	data := make([]byte, BootROMSize)
	data[0] = 0x31
	data[BootROMSize-1] = 0xE0

	rom := NewBootROM(data)

	assert.Equal(t, uint8(0x31), rom.Read(0))
	assert.Equal(t, uint8(0xE0), rom.Read(BootROMSize-1))
}

func TestBootROM_WrongSizePanics(t *testing.T) {
	assert.Panics(t, func() { NewBootROM(make([]byte, 100)) })
}
