package memory

import (
	"log/slog"

	"github.com/valerio/go-jeebie/jeebie/interrupt"
)

// tacEnableBit marks TAC's bit 2, which gates whether TIMA increments at all.
const tacEnableBit = 0x04

// tacClockDivisors maps TAC's low 2 bits to the number of CPU cycles per
// TIMA tick.
var tacClockDivisors = [4]uint64{1024, 16, 64, 256}

// Timer is a partial model of the DIV/TIMA/TMA/TAC register group. DIV is
// purely derived from the elapsed cycle count rather than tracked as
// separate falling-edge-detected state, and TIMA overflow is computed
// on demand from the cycle delta since the timer was last configured
// instead of being driven by a per-cycle increment loop; this trades away
// the real hardware's sub-instruction TIMA-reload timing quirks (the spec
// explicitly scopes those out) for a model that is exact at instruction
// boundaries.
type Timer struct {
	tima uint8
	tma  uint8
	tac  uint8

	lastSyncCycle uint64
	divBase       uint64 // cycle of the last DIV reset
	enableCycle   uint64 // cycle at which a disabled timer becomes irrelevant (MaxUint64 sentinel)

	pendingOverflow bool
}

// NewTimer returns a timer at its post-bootrom default register values.
func NewTimer() *Timer {
	return &Timer{
		enableCycle: interrupt.NeverPending,
	}
}

// DIV returns the upper 8 bits of the free-running 16-bit divider, which on
// real hardware increments once per 256 cycles; modeled here as a pure
// function of the cycles elapsed since the last DIV reset rather than
// separately tracked state.
func (t *Timer) DIV(cycle uint64) uint8 {
	return uint8(((cycle - t.divBase) / 256) & 0xFF)
}

// ResetDIV resets the divider by re-basing it at the given cycle; any write
// to the DIV register resets the whole internal counter on real hardware.
// DIV writes are nominally an unimplemented path per this emulator's scope
// notes; logged at Warn rather than aborted since the reset itself is fully
// modeled (see the Timer type's doc comment).
func (t *Timer) ResetDIV(cycle uint64) {
	slog.Warn("timer: DIV write (reset)", "cycle", cycle)
	t.divBase = cycle
	t.lastSyncCycle = cycle
}

func (t *Timer) syncTIMA(cycle uint64) {
	if t.tac&tacEnableBit == 0 {
		t.lastSyncCycle = cycle
		return
	}

	divisor := tacClockDivisors[t.tac&0x03]
	elapsed := cycle - t.lastSyncCycle
	ticks := elapsed / divisor
	if ticks == 0 {
		return
	}

	total := uint32(t.tima) + uint32(ticks)
	if total > 0xFF {
		t.pendingOverflow = true
		period := uint32(0x100) - uint32(t.tma)
		if t.tma == 0 {
			period = 0x100
		}
		total = uint32(t.tma) + (total-0x100)%period
	}
	t.tima = uint8(total)
	t.lastSyncCycle += ticks * divisor
}

// ReadTIMA returns TIMA's value after bringing it up to date with cycle.
// TIMA access is nominally an unimplemented path per this emulator's scope
// notes; logged at Debug (not Warn) since it's on the hot path of every
// timer-driven game and the semantics here are fully modeled, not stubbed.
func (t *Timer) ReadTIMA(cycle uint64) uint8 {
	slog.Debug("timer: TIMA read", "cycle", cycle)
	t.syncTIMA(cycle)
	return t.tima
}

// WriteTIMA sets TIMA directly, discarding any unsynced overflow.
func (t *Timer) WriteTIMA(cycle uint64, value uint8) {
	slog.Debug("timer: TIMA write", "cycle", cycle, "value", value)
	t.syncTIMA(cycle)
	t.tima = value
	t.pendingOverflow = false
}

// ReadTMA returns the TIMA reload value.
func (t *Timer) ReadTMA() uint8 { return t.tma }

// WriteTMA sets the TIMA reload value.
func (t *Timer) WriteTMA(value uint8) { t.tma = value }

// ReadTAC returns the timer control register; the top 5 bits always read
// back as 1, matching the hardware's open bus lines.
func (t *Timer) ReadTAC() uint8 { return t.tac | 0xF8 }

// WriteTAC sets the timer control register (bit 2 enable, bits 0-1 clock
// select). Unsupported bit patterns aren't possible, so no validation is
// needed here.
func (t *Timer) WriteTAC(cycle uint64, value uint8) {
	t.syncTIMA(cycle)
	t.tac = value & 0x07
	slog.Debug("timer: TAC updated", "value", t.tac)
}

// Pending reports whether a TIMA overflow has occurred since it was last
// acknowledged.
func (t *Timer) Pending(cycle uint64) interrupt.Mask {
	t.syncTIMA(cycle)
	if t.pendingOverflow {
		return interrupt.Timer.AsMask()
	}
	return 0
}

// SetPending replaces the overflow flag with mask's Timer bit, the same
// full-state-replacement contract Video.SetPending follows: a dispatch that
// clears Timer's bit while leaving some other source pending must not
// accidentally drop this flag, and one that leaves Timer's bit set (because
// a different interrupt was the one actually dispatched) must not clear it.
func (t *Timer) SetPending(cycle uint64, mask interrupt.Mask) {
	t.pendingOverflow = mask.IsSet(interrupt.Timer)
}

// NextPending always reports no scheduled future event: overflow is
// computed lazily from the cycle delta the next time TIMA is read or
// written, rather than pre-calculated, so there's nothing to fast-forward
// HALT to in this simplified model.
func (t *Timer) NextPending(cycle uint64) uint64 {
	return interrupt.NeverPending
}
