package memory

// BootROMSize is the fixed size of the DMG boot ROM.
const BootROMSize = 256

// BootROM is the 256-byte power-on program mapped over the first 256 bytes
// of ROM until the running program disables it via the 0xFF50 register.
type BootROM struct {
	data [BootROMSize]byte
}

// NewBootROM validates and wraps a boot ROM image. The image must be
// exactly BootROMSize bytes; this is a construction-time invariant, not a
// recoverable runtime condition, so a mismatch panics.
func NewBootROM(data []byte) *BootROM {
	if len(data) != BootROMSize {
		panic("memory: boot ROM must be exactly 256 bytes")
	}
	b := &BootROM{}
	copy(b.data[:], data)
	return b
}

// Read returns the byte at the given offset into the boot ROM.
func (b *BootROM) Read(address uint16) uint8 {
	return b.data[address]
}
