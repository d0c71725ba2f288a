package memory

import (
	"sync"

	"github.com/valerio/go-jeebie/jeebie/interrupt"
)

// Button identifies one of the 8 physical DMG inputs.
type Button uint8

const (
	ButtonA Button = iota
	ButtonB
	ButtonSelect
	ButtonStart
	ButtonRight
	ButtonLeft
	ButtonUp
	ButtonDown
)

// Joypad models the P1/JOYP register (0xFF00). Bits 4-5 select which of the
// two button groups (directions, actions) are readable on the low nibble;
// a held button reads as 0. Real hardware wires the two groups through
// separate input lines, so selecting neither returns 0x0F (nothing pulled
// low) and selecting both is a genuinely ambiguous configuration no game
// relies on — this returns the hardcoded 0x0F the reference model uses
// rather than ANDing the two groups together.
type Joypad struct {
	mu      sync.Mutex // guards buttons, which a frontend's input goroutine updates
	buttons uint8      // bit set = pressed, indexed by Button

	selectDpad   bool
	selectAction bool
}

// NewJoypad returns a joypad with nothing selected and nothing pressed.
func NewJoypad() *Joypad {
	return &Joypad{}
}

// SetPressed updates the physical state of one button.
func (j *Joypad) SetPressed(b Button, pressed bool) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if pressed {
		j.buttons |= 1 << uint8(b)
	} else {
		j.buttons &^= 1 << uint8(b)
	}
}

// Read returns the P1 register's current value.
func (j *Joypad) Read() uint8 {
	j.mu.Lock()
	defer j.mu.Unlock()
	selectBits := uint8(0x30)
	if j.selectDpad {
		selectBits &^= 0x10
	}
	if j.selectAction {
		selectBits &^= 0x20
	}

	switch {
	case j.selectDpad && j.selectAction:
		return selectBits | 0x0F
	case j.selectDpad:
		return selectBits | j.groupNibble(ButtonRight, ButtonLeft, ButtonUp, ButtonDown)
	case j.selectAction:
		return selectBits | j.groupNibble(ButtonA, ButtonB, ButtonSelect, ButtonStart)
	default:
		return selectBits | 0x0F
	}
}

// Write sets the P1 select bits (bits 4-5 only; bits 0-3 are read-only from
// software's perspective).
func (j *Joypad) Write(value uint8) {
	j.selectDpad = value&0x10 == 0
	j.selectAction = value&0x20 == 0
}

func (j *Joypad) groupNibble(bit0, bit1, bit2, bit3 Button) uint8 {
	nibble := uint8(0x0F)
	if j.buttons&(1<<uint8(bit0)) != 0 {
		nibble &^= 0x01
	}
	if j.buttons&(1<<uint8(bit1)) != 0 {
		nibble &^= 0x02
	}
	if j.buttons&(1<<uint8(bit2)) != 0 {
		nibble &^= 0x04
	}
	if j.buttons&(1<<uint8(bit3)) != 0 {
		nibble &^= 0x08
	}
	return nibble
}

// Pending always reports empty: button presses don't raise interrupts in
// this model, matching the reference implementation's simplification.
func (j *Joypad) Pending(cycle uint64) interrupt.Mask { return 0 }

// SetPending is a no-op; the joypad never has a pending bit to acknowledge.
func (j *Joypad) SetPending(cycle uint64, mask interrupt.Mask) {}

// NextPending always reports no future event, since no edge-triggered
// interrupt logic is modeled.
func (j *Joypad) NextPending(cycle uint64) uint64 { return interrupt.NeverPending }
