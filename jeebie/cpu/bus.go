package cpu

import "github.com/valerio/go-jeebie/jeebie/interrupt"

// Bus is everything the CPU needs from the memory map multiplexer: byte and
// word access stamped with the current cycle, plus the aggregated interrupt
// capability used for dispatch and HALT fast-forwarding.
type Bus interface {
	Read(cycle uint64, addr uint16) uint8
	Write(cycle uint64, addr uint16, value uint8)
	ReadU16(cycle uint64, addr uint16) uint16
	WriteU16(cycle uint64, addr uint16, value uint16)

	// InterruptEnable returns the IE register's current mask, gating which
	// pending interrupts are eligible for dispatch.
	InterruptEnable() interrupt.Mask

	interrupt.Source
}
