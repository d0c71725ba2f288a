package memory

import "log/slog"

const (
	titleAddress = 0x134
	titleLength  = 16

	romBankSize = 0x4000
	ramBankSize = 0x2000

	defaultRAMSize = 32 * 1024
)

// Cartridge models a single simplified banking scheme covering the common
// ROM+RAM MBC shape: one enable latch gates external RAM, a 7-bit register
// selects the ROM bank mapped at 0x4000-0x7FFF (bank 0 reads as bank 1, the
// one universal MBC quirk every real cartridge respects), and a 2-bit
// register selects the RAM bank mapped at 0xA000-0xBFFF. Real-time-clock
// registers and the other MBC variants (pure ROM banking without RAM,
// multi-rom-bank RAM-disabled modes, etc.) are out of scope.
type Cartridge struct {
	rom []byte
	ram []byte

	title string

	ramEnabled bool
	romBank    uint8
	ramBank    uint8
}

// NewCartridge returns an empty cartridge with no ROM loaded, useful for
// powering on the emulator without inserting a game.
func NewCartridge() *Cartridge {
	return &Cartridge{
		rom: make([]byte, romBankSize*2),
		ram: make([]byte, defaultRAMSize),
	}
}

// NewCartridgeWithData loads a ROM image, sizing external RAM to the
// default capacity regardless of what the header declares (RTC-bearing and
// oversized-RAM cartridge types are not modeled).
func NewCartridgeWithData(data []byte) *Cartridge {
	cart := &Cartridge{
		rom: make([]byte, len(data)),
		ram: make([]byte, defaultRAMSize),
	}
	copy(cart.rom, data)

	if len(data) > titleAddress+titleLength {
		cart.title = cleanGameboyTitle(data[titleAddress : titleAddress+titleLength])
	}

	return cart
}

// Title returns the cartridge's cleaned header title, or "" if none was set.
func (c *Cartridge) Title() string { return c.title }

// Read reads a byte from ROM (0x0000-0x7FFF, bank-aware above 0x4000) or
// external RAM (0xA000-0xBFFF, 0xFF when disabled or absent).
func (c *Cartridge) Read(address uint16) uint8 {
	switch {
	case address < 0x4000:
		return c.readROM(0, address)
	case address < 0x8000:
		return c.readROM(c.effectiveROMBank(), address-0x4000)
	case address >= 0xA000 && address < 0xC000:
		return c.readRAM(address - 0xA000)
	default:
		panic("memory: cartridge read out of range")
	}
}

// Write routes a byte write to the RAM-enable latch (0x0000-0x1FFF), the ROM
// bank register (0x2000-0x3FFF), the RAM bank register (0x4000-0x5FFF), or
// external RAM itself (0xA000-0xBFFF). Writes to 0x6000-0x7FFF would select
// an MBC3 RTC/RAM banking mode on real hardware; that distinction isn't
// modeled here, so such writes are logged and ignored.
func (c *Cartridge) Write(address uint16, value uint8) {
	switch {
	case address < 0x2000:
		switch value {
		case 0x0A:
			c.ramEnabled = true
		case 0x00:
			c.ramEnabled = false
		default:
			slog.Info("cartridge: ignoring unrecognized RAM-enable value", "value", value)
		}
	case address < 0x4000:
		c.romBank = value & 0x7F
	case address < 0x6000:
		if value < 4 {
			c.ramBank = value
		} else {
			slog.Warn("cartridge: RTC register select not implemented", "value", value)
		}
	case address < 0x8000:
		slog.Warn("cartridge: RTC/banking-mode select not implemented", "address", address, "value", value)
	case address >= 0xA000 && address < 0xC000:
		c.writeRAM(address-0xA000, value)
	default:
		panic("memory: cartridge write out of range")
	}
}

// effectiveROMBank applies the universal "bank 0 reads as bank 1" coercion:
// a raw register value of 0 would otherwise shadow the fixed bank.
func (c *Cartridge) effectiveROMBank() uint8 {
	if c.romBank == 0 {
		return 1
	}
	return c.romBank
}

func (c *Cartridge) readROM(bank uint8, offset uint16) uint8 {
	index := int(bank)*romBankSize + int(offset)
	if index >= len(c.rom) {
		return 0xFF
	}
	return c.rom[index]
}

func (c *Cartridge) readRAM(offset uint16) uint8 {
	if !c.ramEnabled {
		return 0xFF
	}
	index := int(c.ramBank)*ramBankSize + int(offset)
	if index >= len(c.ram) {
		return 0xFF
	}
	return c.ram[index]
}

func (c *Cartridge) writeRAM(offset uint16, value uint8) {
	if !c.ramEnabled {
		slog.Info("cartridge: dropping write to disabled RAM", "offset", offset, "value", value)
		return
	}
	index := int(c.ramBank)*ramBankSize + int(offset)
	if index >= len(c.ram) {
		return
	}
	c.ram[index] = value
}
