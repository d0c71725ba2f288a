package serial

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/valerio/go-jeebie/jeebie/interrupt"
)

func TestSerial_SBReadWrite(t *testing.T) {
	s := New()
	s.Write(0, addrSB, 0x42)
	assert.Equal(t, uint8(0x42), s.Read(addrSB))
}

func TestSerial_SCUnusedBitsReadHigh(t *testing.T) {
	s := New()
	s.Write(0, addrSC, 0x00)
	assert.Equal(t, uint8(0x7E), s.Read(addrSC))
}

func TestSerial_TransferCompletesAndRaisesInterrupt(t *testing.T) {
	s := New()
	s.Write(0, addrSB, 0x55)
	s.Write(0, addrSC, 0x81) // start + internal clock

	assert.False(t, s.Pending(transferCycles-1).IsSet(interrupt.Serial), "must not complete early")
	assert.True(t, s.Pending(transferCycles).IsSet(interrupt.Serial))
	assert.Equal(t, uint8(0xFF), s.Read(addrSB), "no link partner: SB shifts in 0xFF")
	assert.Zero(t, s.Read(addrSC)&0x80, "transfer-start bit must clear on completion")
}

func TestSerial_SetPendingAcknowledges(t *testing.T) {
	s := New()
	s.Write(0, addrSC, 0x81)
	require := assert.New(t)
	require.True(s.Pending(transferCycles).IsSet(interrupt.Serial))

	s.SetPending(transferCycles, 0) // new state has the Serial bit cleared: acknowledge
	require.False(s.Pending(transferCycles).IsSet(interrupt.Serial))
}

func TestSerial_NextPendingTracksInFlightTransfer(t *testing.T) {
	s := New()
	assert.Equal(t, interrupt.NeverPending, s.NextPending(0))

	s.Write(0, addrSC, 0x81)
	assert.Equal(t, uint64(transferCycles), s.NextPending(0))
}

func TestSerial_WithoutClockBitDoesNotStartTransfer(t *testing.T) {
	s := New()
	s.Write(0, addrSC, 0x80) // start bit without internal-clock bit
	assert.Equal(t, interrupt.NeverPending, s.NextPending(0))
}
