package memory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/valerio/go-jeebie/jeebie/interrupt"
)

func TestTimer_DIVIsPureFunctionOfCycle(t *testing.T) {
	timer := NewTimer()
	assert.Equal(t, uint8(0), timer.DIV(0))
	assert.Equal(t, uint8(1), timer.DIV(256))
	assert.Equal(t, uint8(2), timer.DIV(512))
}

func TestTimer_ResetDIVRebasesCounter(t *testing.T) {
	timer := NewTimer()
	timer.ResetDIV(1000)
	assert.Equal(t, uint8(0), timer.DIV(1000))
}

func TestTimer_TIMADoesNotTickWhenDisabled(t *testing.T) {
	timer := NewTimer()
	timer.WriteTAC(0, 0x00) // disabled
	assert.Equal(t, uint8(0), timer.ReadTIMA(100000))
}

func TestTimer_TIMATicksAtConfiguredRate(t *testing.T) {
	timer := NewTimer()
	timer.WriteTAC(0, 0x05) // enabled, clock select 01 -> every 16 cycles

	assert.Equal(t, uint8(1), timer.ReadTIMA(16))
	assert.Equal(t, uint8(10), timer.ReadTIMA(160))
}

func TestTimer_OverflowReloadsFromTMAAndRaisesInterrupt(t *testing.T) {
	timer := NewTimer()
	timer.WriteTMA(0x10)
	timer.WriteTAC(0, 0x05) // enabled, every 16 cycles
	timer.WriteTIMA(0, 0xFE)

	// Two ticks (32 cycles) to overflow from 0xFE -> 0xFF -> 0x00(+reload).
	mask := timer.Pending(32)
	assert.True(t, mask.IsSet(interrupt.Timer))
	assert.Equal(t, uint8(0x10), timer.ReadTIMA(32))
}

func TestTimer_SetPendingAcknowledgesOverflow(t *testing.T) {
	timer := NewTimer()
	timer.WriteTAC(0, 0x05)
	timer.WriteTIMA(0, 0xFF)

	assert.True(t, timer.Pending(16).IsSet(interrupt.Timer))
	timer.SetPending(16, 0) // new state has the Timer bit cleared: acknowledge
	assert.False(t, timer.Pending(16).IsSet(interrupt.Timer))
}

func TestTimer_SetPendingPreservesBitWhenStillAsserted(t *testing.T) {
	timer := NewTimer()
	timer.WriteTAC(0, 0x05)
	timer.WriteTIMA(0, 0xFF)
	timer.Pending(16) // latch the overflow

	timer.SetPending(16, interrupt.Timer.AsMask()) // new state still has the bit set
	assert.True(t, timer.Pending(16).IsSet(interrupt.Timer))
}

func TestTimer_TACReadForcesUnusedBitsHigh(t *testing.T) {
	timer := NewTimer()
	timer.WriteTAC(0, 0x05)
	assert.Equal(t, uint8(0x05|0xF8), timer.ReadTAC())
}
