// Package serial models the SB/SC link-cable registers. No link partner is
// ever connected, so every transfer "completes" on its own after a fixed
// cycle delay and shifts in 0xFF, exactly as real hardware does when the
// cable is unplugged.
package serial

import (
	"log/slog"

	"github.com/valerio/go-jeebie/jeebie/interrupt"
)

const (
	addrSB = 0xFF01
	addrSC = 0xFF02

	// transferCycles approximates the ~8192 Hz internal clock's time to
	// shift one byte (8 bits at 512 cycles/bit).
	transferCycles = 4096
)

// Serial is the SB/SC register pair and its transfer-completion timer.
type Serial struct {
	sb, sc uint8

	transferActive bool
	completeCycle  uint64
	pendingIRQ     bool
}

// New returns a serial port with both registers at their post-bootrom
// default of 0.
func New() *Serial {
	return &Serial{}
}

// Read returns SB or SC; SC's unused bits read back as 1.
func (s *Serial) Read(address uint16) uint8 {
	switch address {
	case addrSB:
		return s.sb
	case addrSC:
		return s.sc | 0x7E
	default:
		panic("serial: invalid read address")
	}
}

// Write sets SB or SC. A write to SC with both the transfer-start and
// internal-clock bits set begins a transfer, unless one is already running.
func (s *Serial) Write(cycle uint64, address uint16, value uint8) {
	switch address {
	case addrSB:
		s.sb = value
	case addrSC:
		s.sc = value & 0x81
		s.maybeStartTransfer(cycle)
	default:
		panic("serial: invalid write address")
	}
}

func (s *Serial) maybeStartTransfer(cycle uint64) {
	if s.transferActive {
		return
	}
	if s.sc&0x81 != 0x81 {
		return
	}
	slog.Debug("serial: transfer started", "byte", s.sb)
	s.transferActive = true
	s.completeCycle = cycle + transferCycles
}

func (s *Serial) finishTransfer() {
	slog.Debug("serial: transfer complete, no link partner")
	s.sb = 0xFF
	s.sc &^= 0x80
	s.transferActive = false
	s.pendingIRQ = true
}

// Pending brings any in-flight transfer up to date with cycle and reports
// the Serial bit if a transfer has just completed or one already has and
// hasn't been acknowledged yet.
func (s *Serial) Pending(cycle uint64) interrupt.Mask {
	if s.transferActive && cycle >= s.completeCycle {
		s.finishTransfer()
	}
	if s.pendingIRQ {
		return interrupt.Serial.AsMask()
	}
	return 0
}

// SetPending replaces pendingIRQ with mask's Serial bit, the same
// full-state-replacement contract Video.SetPending follows.
func (s *Serial) SetPending(cycle uint64, mask interrupt.Mask) {
	s.pendingIRQ = mask.IsSet(interrupt.Serial)
}

// NextPending returns the cycle the in-flight transfer will complete at, or
// NeverPending if nothing is running.
func (s *Serial) NextPending(cycle uint64) uint64 {
	if s.transferActive {
		return s.completeCycle
	}
	return interrupt.NeverPending
}
