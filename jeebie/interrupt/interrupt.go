// Package interrupt defines the shared interrupt vocabulary used by the CPU
// and every peripheral capable of raising one: the mask type, the fixed
// priority order, and the small capability interface (Source) each
// peripheral and the bus itself implement.
package interrupt

// NeverPending is the NextPending sentinel a Source returns when it has no
// future cycle at which its pending set could grow.
const NeverPending = ^uint64(0)

// Kind identifies one of the five DMG interrupt lines, in priority order
// (VBlank highest).
type Kind uint8

const (
	VBlank Kind = iota
	LCD
	Timer
	Serial
	Joypad
)

// VectorAddress returns the fixed dispatch address for this interrupt.
func (k Kind) VectorAddress() uint16 {
	switch k {
	case VBlank:
		return 0x0040
	case LCD:
		return 0x0048
	case Timer:
		return 0x0050
	case Serial:
		return 0x0058
	case Joypad:
		return 0x0060
	default:
		panic("interrupt: invalid kind")
	}
}

// AsMask returns the single-bit mask for this interrupt.
func (k Kind) AsMask() Mask {
	return Mask(1 << uint8(k))
}

// Mask is a 5-bit set over {VBlank, LCD, Timer, Serial, Joypad}. The high
// three bits beyond that range are never meaningfully set; MaskFromByte
// enforces this on ingestion from a bus write.
type Mask uint8

// MaskFromByte masks an incoming register write down to the 5 defined bits.
func MaskFromByte(b uint8) Mask {
	return Mask(b & 0b0001_1111)
}

// Byte returns the mask's bit pattern with no additional forcing of the
// unused high bits; IF/IE read back exactly what was last asserted.
func (m Mask) Byte() uint8 {
	return uint8(m)
}

// Set asserts the bit for the given interrupt.
func (m *Mask) Set(k Kind) {
	*m |= k.AsMask()
}

// Clear deasserts the bit for the given interrupt.
func (m *Mask) Clear(k Kind) {
	*m &^= k.AsMask()
}

// IsSet reports whether the given interrupt's bit is asserted.
func (m Mask) IsSet(k Kind) bool {
	return m&k.AsMask() != 0
}

// And restricts m to the bits also present in other.
func (m Mask) And(other Mask) Mask {
	return m & other
}

// Or merges the bits of m and other.
func (m Mask) Or(other Mask) Mask {
	return m | other
}

// HighestPriority returns the highest-priority asserted interrupt and true,
// or (0, false) if the mask is empty. Priority order is VBlank > LCD > Timer
// > Serial > Joypad.
func (m Mask) HighestPriority() (Kind, bool) {
	for _, k := range [...]Kind{VBlank, LCD, Timer, Serial, Joypad} {
		if m.IsSet(k) {
			return k, true
		}
	}
	return 0, false
}

// Source is the capability every interrupt-raising peripheral and the bus
// aggregator implement. The set is closed: VBlank/LCD (Video), Timer,
// Serial, and Joypad are the only producers.
type Source interface {
	// Pending reports which of this source's assigned bits would be
	// asserted by the given cycle.
	Pending(cycle uint64) Mask
	// SetPending acknowledges/clears this source's assigned bits
	// according to mask; bits outside its assignment are ignored.
	SetPending(cycle uint64, mask Mask)
	// NextPending returns the earliest future cycle at which this
	// source's pending set may grow, or math.MaxUint64 if none.
	NextPending(cycle uint64) uint64
}
