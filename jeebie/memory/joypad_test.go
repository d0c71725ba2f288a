package memory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/valerio/go-jeebie/jeebie/interrupt"
)

func TestJoypad_NoGroupSelected(t *testing.T) {
	j := NewJoypad()
	j.SetPressed(ButtonA, true)

	assert.Equal(t, uint8(0x3F), j.Read())
}

func TestJoypad_ActionGroupSelected(t *testing.T) {
	j := NewJoypad()
	j.Write(0x10) // bit 4 set selects action group (active-low select lines)
	j.SetPressed(ButtonA, true)
	j.SetPressed(ButtonStart, true)

	got := j.Read()
	assert.Zero(t, got&0x01, "A pressed must read low")
	assert.NotZero(t, got&0x02, "B not pressed must read high")
	assert.Zero(t, got&0x08, "Start pressed must read low")
}

func TestJoypad_DpadGroupSelected(t *testing.T) {
	j := NewJoypad()
	j.Write(0x20) // select dpad group
	j.SetPressed(ButtonUp, true)

	got := j.Read()
	assert.Zero(t, got&0x04, "Up pressed must read low")
	assert.NotZero(t, got&0x01, "Right not pressed must read high")
}

func TestJoypad_BothGroupsSelectedReturnsHardcodedNibble(t *testing.T) {
	j := NewJoypad()
	j.Write(0x00) // both select bits low: both groups selected
	j.SetPressed(ButtonA, true)
	j.SetPressed(ButtonDown, true)

	assert.Equal(t, uint8(0x0F), j.Read()&0x0F, "both-selected read must be the hardcoded nibble, not an AND of groups")
}

func TestJoypad_InterruptSourceIsAlwaysEmpty(t *testing.T) {
	j := NewJoypad()
	assert.Zero(t, j.Pending(0))
	assert.Equal(t, interrupt.NeverPending, j.NextPending(0))
}
