package jeebie

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/valerio/go-jeebie/jeebie/interrupt"
	"github.com/valerio/go-jeebie/jeebie/memory"
)

func TestBus_WRAMRoundTrip(t *testing.T) {
	bus := NewBus()
	bus.WriteU16(0, 0xC100, 0xBEEF)
	assert.Equal(t, uint16(0xBEEF), bus.ReadU16(0, 0xC100))
}

func TestBus_BootROMShadowsCartridgeUntilUnmapped(t *testing.T) {
	bootrom := make([]byte, memory.BootROMSize)
	bootrom[0] = 0x31

	data := make([]byte, 0x8000)
	data[0] = 0x00 // NOP, distinct from the bootrom's first byte

	bus := NewBusWithBootROM(bootrom, memory.NewCartridgeWithData(data))

	assert.Equal(t, uint8(0x31), bus.Read(0, 0x0000))

	bus.Write(0, 0xFF50, 0x01) // unmap

	assert.Equal(t, uint8(0x00), bus.Read(0, 0x0000), "must read cartridge bytes after unmap")
}

func TestBus_OAMDMA(t *testing.T) {
	bus := NewBus()
	for i := uint16(0); i < 160; i++ {
		bus.Write(0, 0xC000+i, uint8(i))
	}

	bus.Write(0, 0xFF46, 0xC0)

	assert.Equal(t, uint8(0xC0), bus.Read(0, 0xFF46))
	for i := uint16(0); i < 160; i++ {
		assert.Equal(t, uint8(i), bus.Read(0, 0xFE00+i), "OAM byte %d must match source", i)
	}
}

func TestBus_IFWriteRoutesToOwningPeripherals(t *testing.T) {
	bus := NewBus()
	bus.Write(0, 0xFF0F, uint8(interrupt.Timer.AsMask()))

	assert.True(t, bus.Pending(0).IsSet(interrupt.Timer))
}

func TestBus_IERegisterReadWrite(t *testing.T) {
	bus := NewBus()
	bus.Write(0, 0xFFFF, uint8(interrupt.VBlank.AsMask().Or(interrupt.Joypad.AsMask())))

	ie := bus.InterruptEnable()
	assert.True(t, ie.IsSet(interrupt.VBlank))
	assert.True(t, ie.IsSet(interrupt.Joypad))
	assert.False(t, ie.IsSet(interrupt.Timer))
}

func TestBus_JoypadButtonPressReflectedOnBus(t *testing.T) {
	bus := NewBus()
	bus.Joypad().SetPressed(memory.ButtonA, true)
	bus.Write(0, 0xFF00, 0x10) // select action buttons

	assert.Zero(t, bus.Read(0, 0xFF00)&0x01, "A pressed must read low through the bus")
}

func TestBus_CartridgeBankZeroReadsAsBankOne(t *testing.T) {
	data := make([]byte, 0x4000*4)
	data[0x4000] = 0x7A // first byte of bank 1

	bus := NewBusWithBootROM(make([]byte, memory.BootROMSize), memory.NewCartridgeWithData(data))
	bus.Write(0, 0x2000, 0x00) // write 0 to the bank register

	assert.Equal(t, uint8(0x7A), bus.Read(0, 0x4000))
}
