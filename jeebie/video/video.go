// Package video implements the on-demand scanline renderer: rather than
// drawing a line every 456 cycles as hardware does, it tracks a render
// watermark and catches up to the current cycle only when the framebuffer
// is queried or a VRAM, OAM or register write arrives. Register reads (LY,
// STAT) and interrupt queries are computed directly from the cycle and do
// not advance the watermark.
package video

import "github.com/valerio/go-jeebie/jeebie/interrupt"

const (
	oamSlots       = 40
	cyclesPerLine  = 456
	cyclesPerFrame = 70224
	vramBase       = 0x8000
	bgWinAltBase   = 0x8800

	vramSize = 8192
	oamSize  = oamSlots * 4
)

// Mode is the PPU's current scanline phase. Discriminant order matches
// what STAT's low 2 bits report (HBlank=0, VBlank=1, Drawing=2, OamScan=3) —
// this is not the textbook 0=HBlank,1=VBlank,2=OAM,3=Drawing numbering some
// references use, but it is the order this model's STAT reads actually
// produce and must be preserved exactly.
type Mode uint8

const (
	ModeHBlank Mode = iota
	ModeVBlank
	ModeDrawing
	ModeOamScan
)

// lcdc wraps the LCDC register's individual bit fields.
type lcdc uint8

func (l lcdc) bit(n uint8) bool { return uint8(l)&(1<<n) != 0 }

func (l lcdc) lcdEnable() bool          { return l.bit(7) }
func (l lcdc) windowTileMapBase() uint16 {
	if l.bit(6) {
		return 0x9C00
	}
	return 0x9800
}
func (l lcdc) windowEnable() bool { return l.bit(5) }
func (l lcdc) bgWinTileBase() uint16 {
	if l.bit(4) {
		return 0x8000
	}
	return 0x8800
}
func (l lcdc) backgroundTileMapBase() uint16 {
	if l.bit(3) {
		return 0x9C00
	}
	return 0x9800
}
func (l lcdc) objSize() uint8 {
	if l.bit(2) {
		return 16
	}
	return 8
}
func (l lcdc) objEnable() bool  { return l.bit(1) }
func (l lcdc) bgWinEnable() bool { return l.bit(0) }

type oamEntry struct {
	y, x, idx, flags uint8
}

func (o oamEntry) belowBG() bool { return o.flags&0b1000_0000 != 0 }
func (o oamEntry) flipY() bool   { return o.flags&0b0100_0000 != 0 }
func (o oamEntry) flipX() bool   { return o.flags&0b0010_0000 != 0 }
func (o oamEntry) obp1() bool    { return o.flags&0b0001_0000 != 0 }

// Video is the PPU: VRAM, OAM, the LCD register file, and the lazily
// updated framebuffer.
type Video struct {
	framebuffer [160 * 144]uint8
	enableCycle uint64
	renderCycle uint64

	lcdc lcdc
	scy  uint8
	scx  uint8
	lyc  uint8
	bgp  uint8
	obp0 uint8
	obp1 uint8
	wy   uint8
	wx   uint8

	vram [vramSize]uint8
	oam  [oamSize]uint8

	irqVBlankPending      bool
	irqStatPending        bool
	irqAcknowledgeCycle   uint64
}

// New returns a Video with the LCD on and enabled from cycle 0, matching
// the state execution starts from after the boot ROM hands off.
func New() *Video {
	return &Video{
		lcdc: lcdc(0b1000_0000),
	}
}

// Framebuffer renders up through cycle and returns the resulting 160x144
// grid of 2-bit color indices.
func (v *Video) Framebuffer(cycle uint64) []uint8 {
	v.renderUntil(cycle)
	return v.framebuffer[:]
}

func (v *Video) cycleInFrame(cycle uint64) uint64 {
	elapsed := uint64(0)
	if cycle > v.enableCycle {
		elapsed = cycle - v.enableCycle
	}
	return elapsed % cyclesPerFrame
}

func (v *Video) frame(cycle uint64) uint64 {
	elapsed := uint64(0)
	if cycle > v.enableCycle {
		elapsed = cycle - v.enableCycle
	}
	return elapsed / cyclesPerFrame
}

func (v *Video) cycleInLine(cycle uint64) uint64 {
	return v.cycleInFrame(cycle) % cyclesPerLine
}

func (v *Video) line(cycle uint64) uint8 {
	return uint8(v.cycleInFrame(cycle) / cyclesPerLine)
}

func (v *Video) mode(cycle uint64) Mode {
	cycleInLine := v.cycleInLine(cycle)
	line := v.line(cycle)

	switch {
	case line >= 144:
		return ModeVBlank
	case cycleInLine >= 252:
		return ModeHBlank
	case cycleInLine >= 80:
		return ModeDrawing
	default:
		return ModeOamScan
	}
}

func (v *Video) oamEntry(idx uint8) oamEntry {
	base := int(idx) * 4
	return oamEntry{
		y:     v.oam[base],
		x:     v.oam[base+1],
		idx:   v.oam[base+2],
		flags: v.oam[base+3],
	}
}

func (v *Video) vramRead(addr uint16) uint8 {
	return v.vram[addr-vramBase]
}

// getBGWinTileRow fetches a background/window tile's two bitplane bytes for
// one row. The 0x8000 tile data base indexes 0-255 directly; the 0x8800
// base instead indexes -128..127 relative to tile 0 at 0x9000, so the same
// raw index byte addresses a different tile depending on which base LCDC
// selects.
func (v *Video) getBGWinTileRow(idx uint8, row uint8) (uint8, uint8) {
	base := v.lcdc.bgWinTileBase()

	var addr uint16
	switch base {
	case vramBase:
		addr = base + uint16(idx)*16 + uint16(row)*2
	case bgWinAltBase:
		signed := int16(int8(idx))
		addr = uint16(int32(0x9000)+int32(signed)*16) + uint16(row)*2
	default:
		panic("video: impossible tile data base")
	}

	return v.vramRead(addr), v.vramRead(addr + 1)
}

// getObjTileRow fetches a sprite tile's row; object tile indices are always
// unsigned against the fixed 0x8000 base regardless of LCDC.
func (v *Video) getObjTileRow(idx uint8, row uint8) (uint8, uint8) {
	addr := 0x8000 + uint16(idx)*16 + uint16(row)*2
	return v.vramRead(addr), v.vramRead(addr + 1)
}

func (v *Video) drawBackgroundLine() {
	lcdY := v.line(v.renderCycle)
	tileMapBase := v.lcdc.backgroundTileMapBase()

	scrolledY := lcdY + v.scy
	tileY := scrolledY / 8
	inTileY := scrolledY % 8

	for lcdX := uint16(0); lcdX < 160; lcdX++ {
		scrolledX := uint8(lcdX) + v.scx
		tileX := scrolledX / 8
		inTileX := scrolledX % 8

		tileMapAddr := uint16(tileY)*32 + uint16(tileX)
		tileDataIdx := v.vramRead(tileMapBase + tileMapAddr)

		tileDataL, tileDataH := v.getBGWinTileRow(tileDataIdx, inTileY)

		bitL := tileDataL<<inTileX&0b1000_0000 != 0
		bitH := tileDataH<<inTileX&0b1000_0000 != 0

		palIdx := boolBit(bitH)<<1 | boolBit(bitL)
		val := (v.bgp >> (palIdx * 2)) & 0b11

		v.framebuffer[uint16(lcdY)*160+lcdX] = val
	}
}

func (v *Video) drawWindowLine() {
	lcdY := v.line(v.renderCycle)
	tileMapBase := v.lcdc.windowTileMapBase()

	windowY := int16(lcdY) - int16(v.wy)
	if windowY < 0 {
		return
	}

	wy := uint8(windowY)
	tileY := wy / 8
	inTileY := wy % 8

	for lcdX := uint8(0); lcdX < 160; lcdX++ {
		windowX := int16(lcdX) - int16(v.wx) + 7
		if windowX < 0 {
			continue
		}

		wx := uint8(windowX)
		tileX := wx / 8
		inTileX := wx % 8

		tileMapAddr := uint16(tileY)*32 + uint16(tileX)
		tileDataIdx := v.vramRead(tileMapBase + tileMapAddr)

		tileDataL, tileDataH := v.getBGWinTileRow(tileDataIdx, inTileY)

		bitL := tileDataL<<inTileX&0b1000_0000 != 0
		bitH := tileDataH<<inTileX&0b1000_0000 != 0

		palIdx := boolBit(bitH)<<1 | boolBit(bitL)
		val := (v.bgp >> (palIdx * 2)) & 0b11

		v.framebuffer[uint16(lcdY)*160+uint16(lcdX)] = val
	}
}

func (v *Video) drawObjLine() {
	if v.lcdc.objSize() != 8 {
		panic("video: 8x16 objects are not implemented")
	}

	lcdY := v.line(v.renderCycle)

	for i := uint8(0); i < oamSlots; i++ {
		obj := v.oamEntry(i)

		inObjY := int16(lcdY) - int16(obj.y) + 16
		if inObjY < 0 || inObjY >= 8 {
			continue
		}

		objY := uint8(inObjY)
		if obj.flipY() {
			objY = 7 - objY
		}

		tileDataL, tileDataH := v.getObjTileRow(obj.idx, objY)

		var pal uint8
		if obj.obp1() {
			pal = v.obp1
		} else {
			pal = v.obp0
		}

		for inObjX := int16(0); inObjX < 8; inObjX++ {
			lcdX := inObjX + int16(obj.x) - 8
			if lcdX < 0 || lcdX >= 160 {
				continue
			}

			objX := uint8(inObjX)
			if obj.flipX() {
				objX = 7 - objX
			}

			bitL := tileDataL<<objX&0b1000_0000 != 0
			bitH := tileDataH<<objX&0b1000_0000 != 0
			palIdx := boolBit(bitH)<<1 | boolBit(bitL)

			if palIdx == 0 {
				continue
			}

			val := (pal >> (palIdx * 2)) & 0b11
			idx := uint16(lcdY)*160 + uint16(lcdX)

			// Object-to-object priority (lower OAM index wins on overlap) is
			// not modeled: a later-drawn overlapping object simply replaces
			// whatever an earlier one left behind.
			bgRecessive := v.framebuffer[idx] == v.bgp&0b11
			if !obj.belowBG() || bgRecessive {
				v.framebuffer[idx] = val
			}
		}
	}
}

func (v *Video) drawLine() {
	if v.lcdc.bgWinEnable() {
		v.drawBackgroundLine()
		if v.lcdc.windowEnable() {
			v.drawWindowLine()
		}
	}

	if v.lcdc.objEnable() {
		v.drawObjLine()
	}
}

// renderUntil draws every scanline that ends at or before cycle, advancing
// the render watermark one full line at a time. After the last visible line
// (143) it jumps 11 lines ahead, skipping the 10-line VBlank period entirely
// since nothing is drawn during it.
func (v *Video) renderUntil(cycle uint64) {
	for v.renderCycle+cyclesPerLine <= cycle {
		if v.cycleInLine(v.renderCycle) != 0 {
			panic("video: render watermark misaligned with line boundary")
		}
		if v.line(v.renderCycle) >= 144 {
			panic("video: render watermark inside vblank")
		}

		v.drawLine()

		if v.line(v.renderCycle)+1 == 144 {
			v.renderCycle += 11 * cyclesPerLine
		} else {
			v.renderCycle += cyclesPerLine
		}
	}
}

// Read returns the byte at a VRAM, OAM, or LCD-register address. Reading
// 0xFF46 (DMA) is a programming error at this layer — OAM DMA is handled
// exclusively by the bus.
func (v *Video) Read(cycle uint64, addr uint16) uint8 {
	switch {
	case addr >= 0x8000 && addr <= 0x9FFF:
		return v.vram[addr-0x8000]
	case addr >= 0xFE00 && addr <= 0xFE9F:
		return v.oam[addr-0xFE00]
	}

	switch addr {
	case 0xFF40:
		return uint8(v.lcdc)
	case 0xFF41:
		lym := v.lyc == v.line(cycle)
		return boolBit(lym)<<2 | uint8(v.mode(cycle))
	case 0xFF42:
		return v.scy
	case 0xFF43:
		return v.scx
	case 0xFF44:
		return v.line(cycle)
	case 0xFF45:
		return v.lyc
	case 0xFF46:
		panic("video: OAM DMA should be handled at the bus level")
	case 0xFF47:
		return v.bgp
	case 0xFF48:
		return v.obp0
	case 0xFF49:
		return v.obp1
	case 0xFF4A:
		return v.wy
	case 0xFF4B:
		return v.wx
	default:
		panic("video: address not in video range")
	}
}

// Write applies a register or VRAM/OAM write. Register writes first render
// up through cycle using the OLD register values, then apply the new
// value — getting this order backwards would retroactively change already
// "drawn" lines.
func (v *Video) Write(cycle uint64, addr uint16, val uint8) {
	v.renderUntil(cycle)

	switch {
	case addr >= 0x8000 && addr <= 0x9FFF:
		v.vram[addr-0x8000] = val
		return
	case addr >= 0xFE00 && addr <= 0xFE9F:
		v.oam[addr-0xFE00] = val
		return
	}

	switch addr {
	case 0xFF40:
		enPre := v.lcdc.lcdEnable()
		v.lcdc = lcdc(val)
		enPost := v.lcdc.lcdEnable()

		if !enPre && enPost {
			v.enableCycle = cycle
			v.renderCycle = cycle
		}
		if enPre && !enPost {
			v.enableCycle = interrupt.NeverPending
			v.renderCycle = interrupt.NeverPending
		}
	case 0xFF41:
		if val != 0 {
			panic("video: writing a nonzero STAT value is not implemented")
		}
	case 0xFF42:
		v.scy = val
	case 0xFF43:
		v.scx = val
	case 0xFF44:
		// LY is read-only; writes are silently ignored.
	case 0xFF45:
		v.lyc = val
	case 0xFF46:
		panic("video: OAM DMA should be handled at the bus level")
	case 0xFF47:
		v.bgp = val
	case 0xFF48:
		v.obp0 = val
	case 0xFF49:
		v.obp1 = val
	case 0xFF4A:
		v.wy = val
	case 0xFF4B:
		v.wx = val
	default:
		panic("video: address not in video range")
	}
}

// Pending reports VBlank if it's latched or the current cycle has entered
// an unacknowledged VBlank period, and LCD (STAT) if latched. STAT
// conditions beyond acknowledgment (LYC match, mode-change interrupts) are
// not generated by this model — software must poll STAT instead.
func (v *Video) Pending(cycle uint64) interrupt.Mask {
	var mask interrupt.Mask

	if v.irqVBlankPending || cycle >= v.NextPending(cycle) {
		mask.Set(interrupt.VBlank)
	}
	if v.irqStatPending {
		mask.Set(interrupt.LCD)
	}

	return mask
}

// SetPending latches/clears VBlank and LCD and, when VBlank is cleared,
// records the acknowledgment cycle so the same frame's VBlank isn't
// re-reported.
func (v *Video) SetPending(cycle uint64, mask interrupt.Mask) {
	v.irqVBlankPending = mask.IsSet(interrupt.VBlank)
	v.irqStatPending = mask.IsSet(interrupt.LCD)

	if !v.irqVBlankPending {
		v.irqAcknowledgeCycle = cycle
	}
}

// NextPending returns the earliest cycle at which VBlank would next be
// asserted: immediately if the LCD is already in an unacknowledged VBlank,
// otherwise the cycle the next VBlank period begins. Returns NeverPending
// while the LCD is disabled.
func (v *Video) NextPending(cycle uint64) uint64 {
	if v.enableCycle == interrupt.NeverPending {
		return interrupt.NeverPending
	}

	inVBlank := v.mode(cycle) == ModeVBlank
	vblankAcknowledged := v.frame(cycle) == v.frame(v.irqAcknowledgeCycle)

	if inVBlank && !vblankAcknowledged {
		return cycle
	}

	const vblankInFrame = 144 * cyclesPerLine
	const vblankInNextFrame = vblankInFrame + cyclesPerFrame

	cyclesTillVBlank := vblankInNextFrame - v.cycleInFrame(cycle)
	wrapped := cyclesTillVBlank % cyclesPerFrame
	if wrapped == 0 {
		// On the first cycle of an acknowledged VBlank: the next one is a
		// full frame away.
		wrapped = cyclesPerFrame
	}

	return cycle + wrapped
}

func boolBit(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}
