package jeebie

import (
	"github.com/valerio/go-jeebie/jeebie/audio"
	"github.com/valerio/go-jeebie/jeebie/interrupt"
	"github.com/valerio/go-jeebie/jeebie/memory"
	"github.com/valerio/go-jeebie/jeebie/serial"
	"github.com/valerio/go-jeebie/jeebie/video"
)

// Bus is the address-space multiplexer: it owns every peripheral and
// routes each access to the right one by address range, stamping the
// current cycle on accesses that need it (video, timer, serial). It also
// aggregates the four interrupt-raising peripherals into a single
// interrupt.Source the CPU can poll.
type Bus struct {
	bootrom       *memory.BootROM
	bootromMapped bool

	cartridge *memory.Cartridge
	video     *video.Video
	ram       *memory.RAM
	joypad    *memory.Joypad
	serial    *serial.Serial
	timer     *memory.Timer
	audio     *audio.APU

	dmaRegister uint8
	ieRegister  interrupt.Mask
}

// NewBus returns a bus with no boot ROM mapped and an empty cartridge
// slotted in.
func NewBus() *Bus {
	return &Bus{
		cartridge: memory.NewCartridge(),
		video:     video.New(),
		ram:       memory.NewRAM(),
		joypad:    memory.NewJoypad(),
		serial:    serial.New(),
		timer:     memory.NewTimer(),
		audio:     audio.New(),
	}
}

// NewBusWithBootROM returns a bus with the given boot ROM mapped over
// 0x0000-0x00FF until software unmaps it by writing a nonzero value to
// 0xFF50, and the given cartridge mapped everywhere else.
func NewBusWithBootROM(bootrom []byte, cartridge *memory.Cartridge) *Bus {
	b := NewBus()
	b.bootrom = memory.NewBootROM(bootrom)
	b.bootromMapped = true
	if cartridge != nil {
		b.cartridge = cartridge
	}
	return b
}

// Joypad returns the bus's joypad, so frontends can push button state.
func (b *Bus) Joypad() *memory.Joypad { return b.joypad }

// InterruptEnable returns the IE register's mask.
func (b *Bus) InterruptEnable() interrupt.Mask { return b.ieRegister }

// Framebuffer renders the video peripheral up through cycle and returns
// the resulting 2-bit-per-pixel grid.
func (b *Bus) Framebuffer(cycle uint64) []uint8 {
	return b.video.Framebuffer(cycle)
}

// Read returns the byte at addr as seen at the given cycle.
func (b *Bus) Read(cycle uint64, addr uint16) uint8 {
	switch {
	case addr <= 0x00FF && b.bootromMapped:
		return b.bootrom.Read(addr)
	case addr <= 0x7FFF:
		return b.cartridge.Read(addr)
	case addr <= 0x9FFF:
		return b.video.Read(cycle, addr)
	case addr <= 0xBFFF:
		return b.cartridge.Read(addr)
	case addr <= 0xFDFF:
		return b.ram.Read(addr)
	case addr <= 0xFE9F:
		return b.video.Read(cycle, addr)
	case addr <= 0xFEFF:
		return 0
	case addr == 0xFF00:
		return b.joypad.Read()
	case addr <= 0xFF02:
		return b.serial.Read(addr)
	case addr == 0xFF03:
		return 0
	case addr <= 0xFF07:
		return b.timerRead(cycle, addr)
	case addr <= 0xFF0E:
		return 0
	case addr == 0xFF0F:
		return b.Pending(cycle).Byte()
	case addr <= 0xFF3F:
		return b.audio.Read(addr)
	case addr <= 0xFF45:
		return b.video.Read(cycle, addr)
	case addr == 0xFF46:
		return b.dmaRegister
	case addr <= 0xFF4B:
		return b.video.Read(cycle, addr)
	case addr <= 0xFF4F:
		return 0
	case addr == 0xFF50:
		return boolByte(b.bootromMapped)
	case addr <= 0xFF7F:
		return 0
	case addr <= 0xFFFE:
		return b.ram.Read(addr)
	default: // 0xFFFF
		return b.ieRegister.Byte()
	}
}

// Write applies a byte write to addr as seen at the given cycle.
func (b *Bus) Write(cycle uint64, addr uint16, value uint8) {
	switch {
	case addr <= 0x00FF && b.bootromMapped:
		return
	case addr <= 0x7FFF:
		b.cartridge.Write(addr, value)
	case addr <= 0x9FFF:
		b.video.Write(cycle, addr, value)
	case addr <= 0xBFFF:
		b.cartridge.Write(addr, value)
	case addr <= 0xFDFF:
		b.ram.Write(addr, value)
	case addr <= 0xFE9F:
		b.video.Write(cycle, addr, value)
	case addr <= 0xFEFF:
		return
	case addr == 0xFF00:
		b.joypad.Write(value)
	case addr <= 0xFF02:
		b.serial.Write(cycle, addr, value)
	case addr == 0xFF03:
		return
	case addr <= 0xFF07:
		b.timerWrite(cycle, addr, value)
	case addr <= 0xFF0E:
		return
	case addr == 0xFF0F:
		b.SetPending(cycle, interrupt.MaskFromByte(value))
	case addr <= 0xFF3F:
		b.audio.Write(addr, value)
	case addr <= 0xFF45:
		b.video.Write(cycle, addr, value)
	case addr == 0xFF46:
		b.runOamDMA(cycle, value)
	case addr <= 0xFF4B:
		b.video.Write(cycle, addr, value)
	case addr <= 0xFF4F:
		return
	case addr == 0xFF50:
		// One-way latch: once unmapped, the boot ROM never comes back.
		if value != 0 {
			b.bootromMapped = false
		}
	case addr <= 0xFF7F:
		return
	case addr <= 0xFFFE:
		b.ram.Write(addr, value)
	default: // 0xFFFF
		b.ieRegister = interrupt.MaskFromByte(value)
	}
}

// runOamDMA copies 160 bytes from (value<<8) to OAM. Each byte transfer is
// stamped with its own "virtual cycle" (cycle + idx*4), so video register
// reads mid-transfer see the timing a real byte-by-byte DMA would produce,
// even though the whole operation resolves within one bus call rather than
// being spread across the 160 M-cycles real hardware takes.
func (b *Bus) runOamDMA(cycle uint64, value uint8) {
	for idx := uint16(0); idx < 160; idx++ {
		virtualCycle := cycle + uint64(idx)*4
		srcAddr := uint16(value)<<8 | idx
		dstAddr := 0xFE00 | idx

		v := b.Read(virtualCycle, srcAddr)
		b.Write(virtualCycle, dstAddr, v)
	}
	b.dmaRegister = value
}

func (b *Bus) timerRead(cycle uint64, addr uint16) uint8 {
	switch addr {
	case 0xFF04:
		return b.timer.DIV(cycle)
	case 0xFF05:
		return b.timer.ReadTIMA(cycle)
	case 0xFF06:
		return b.timer.ReadTMA()
	case 0xFF07:
		return b.timer.ReadTAC()
	}
	panic("bus: address not in timer range")
}

func (b *Bus) timerWrite(cycle uint64, addr uint16, value uint8) {
	switch addr {
	case 0xFF04:
		b.timer.ResetDIV(cycle)
	case 0xFF05:
		b.timer.WriteTIMA(cycle, value)
	case 0xFF06:
		b.timer.WriteTMA(value)
	case 0xFF07:
		b.timer.WriteTAC(cycle, value)
	default:
		panic("bus: address not in timer range")
	}
}

// ReadU16 reads a little-endian word spanning addr and addr+1.
func (b *Bus) ReadU16(cycle uint64, addr uint16) uint16 {
	low := b.Read(cycle, addr)
	high := b.Read(cycle, addr+1)
	return uint16(high)<<8 | uint16(low)
}

// WriteU16 writes a little-endian word spanning addr and addr+1.
func (b *Bus) WriteU16(cycle uint64, addr uint16, value uint16) {
	b.Write(cycle, addr, uint8(value))
	b.Write(cycle, addr+1, uint8(value>>8))
}

// Pending restricts each peripheral's reported bits to the interrupt(s) it
// is actually responsible for before ORing them together, so a peripheral
// bug can't leak bits it doesn't own.
func (b *Bus) Pending(cycle uint64) interrupt.Mask {
	videoBits := interrupt.VBlank.AsMask().Or(interrupt.LCD.AsMask())
	return b.video.Pending(cycle).And(videoBits).
		Or(b.timer.Pending(cycle).And(interrupt.Timer.AsMask())).
		Or(b.serial.Pending(cycle).And(interrupt.Serial.AsMask())).
		Or(b.joypad.Pending(cycle).And(interrupt.Joypad.AsMask()))
}

// SetPending routes each bit of mask to the peripheral that owns it.
func (b *Bus) SetPending(cycle uint64, mask interrupt.Mask) {
	videoBits := interrupt.VBlank.AsMask().Or(interrupt.LCD.AsMask())
	b.video.SetPending(cycle, mask.And(videoBits))
	b.timer.SetPending(cycle, mask.And(interrupt.Timer.AsMask()))
	b.serial.SetPending(cycle, mask.And(interrupt.Serial.AsMask()))
	b.joypad.SetPending(cycle, mask.And(interrupt.Joypad.AsMask()))
}

// NextPending returns the earliest cycle at which any peripheral's pending
// set may grow.
func (b *Bus) NextPending(cycle uint64) uint64 {
	next := b.video.NextPending(cycle)
	if n := b.timer.NextPending(cycle); n < next {
		next = n
	}
	if n := b.serial.NextPending(cycle); n < next {
		next = n
	}
	if n := b.joypad.NextPending(cycle); n < next {
		next = n
	}
	return next
}

func boolByte(v bool) uint8 {
	if v {
		return 1
	}
	return 0
}
