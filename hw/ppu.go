package hw

import (
	"image"
	"image/color"

	"nestor/emu/log"
	"nestor/hw/hwio"
)

const (
	NumScanlines    = 262 // Number of scanlines per frame.
	NumCycles       = 341 // Number of PPU cycles (dots) per scanline.
	preRenderLine   = 261 // Index of the pre-render scanline.
	renderScanlines = 240 // Number of visible scanlines.
	renderDots      = 256 // Visible dots per scanline.

	// One PPU dot costs 4 master clock units: the PPU runs at 3x the CPU
	// clock, and the CPU spends 12 master clock units per cycle.
	masterClockPerDot = 4

	dotsPerOpenBusDecay = 1789000 / 3
)

const (
	// PPUCTRL bits
	// $2000

	// Nametable selection mask
	// (0 = $2000; 1 = $2400; 2 = $2800; 3 = $2C00)
	ntselect = 0b11

	// VRAM address increment per CPU read/write of PPUDATA
	// (0: +1 i.e. horizontal; 1: +32 i.e. vertical)
	vramIncr = 2

	// Sprite pattern table address for 8x8 sprites
	// (0: $0000; 1: $1000; ignored in 8x16 mode)
	spriteAddr = 3

	// Background pattern table address (0: $0000; 1: $1000)
	backgroundAddr = 4

	// Sprite size (0: 8x8 pixels; 1: 8x16 pixels – see byte 1 of OAM)
	spriteSize = 5

	// PPU master/slave select
	// (0: read backdrop from EXT pins; 1: output color on EXT pins)
	ppuMasterSlave = 6

	// Generate an NMI at the start of the
	// vertical blanking interval (0: off; 1: on)
	nmi = 7
)

const (
	// PPUMASK bits
	// $2001

	// Greyscale
	// (0: normal color, 1: produce a greyscale display)
	greyscale = 0

	// Show background in leftmost 8 pixels of screen
	// 1: Show, 0: Hide
	leftmostBg = 1

	// Show sprites in leftmost 8 pixels of screen
	// 1: Show, 0: Hide
	leftmostSprites = 2

	// Show background
	showBg = 3

	// Show sprites
	showSprites = 4

	// Emphasize red
	highlightRed = 5

	// Emphasize green
	highlightGreen = 6

	// Emphasize blue
	highlightBlue = 7
)

const (
	// PPUSTATUS bits
	// $2002

	// Returns stale PPU bus contents.
	openbusMask = 0b11111

	// Sprite overflow. The intent was for this flag to be set
	// whenever more than eight sprites appear on a scanline, but a
	// hardware bug causes the actual behavior to be more complicated
	// and generate false positives as well as false negatives; see
	// PPU sprite evaluation. This flag is set during sprite
	// evaluation and cleared at dot 1 (the second dot) of the
	// pre-render line.
	spriteOverflow = 5

	// Sprite 0 Hit.  Set when a nonzero pixel of sprite 0 overlaps
	// a nonzero background pixel; cleared at dot 1 of the pre-render
	// line.  Used for raster timing.
	sprite0Hit = 6

	// Vertical blank has started (0: not in vblank; 1: in vblank).
	// Set at dot 1 of line 241 (the line *after* the post-render
	// line); cleared after reading $2002 and at dot 1 of the
	// pre-render line.
	vblank = 7
)

// tileEntry is one slot of the background pipeline: the 2-bit color index
// into the current palette, and which of the 4 background palettes applies.
type tileEntry struct {
	index   uint8
	palette uint8
}

// spritePixel is the resolved sprite pixel, if any, at an x-coordinate on
// the scanline currently being drawn.
type spritePixel struct {
	present  bool
	objIndex int
	color    uint8
}

type PPU struct {
	Bus *hwio.Table // PPU bus
	CPU *CPU

	Cycle    int // Current dot in scanline [0, NumCycles)
	Scanline int // Current scanline [0, NumScanlines). 261 is pre-render.

	//	$0000-$0FFF	$1000	Pattern table 0
	//	$1000-$1FFF	$1000	Pattern table 1
	PatternTables hwio.Mem `hwio:"offset=0x0000,size=0x2000,wcb"`

	// Nametables holds the 2 physical 1KB nametable pages. Mappers wire
	// these (and their mirrors) onto the bus at $2000-$3EFF per the
	// cartridge's mirroring mode; see mappers.setNTMirroring.
	Nametables [0x800]uint8

	paletteRAM [0x20]uint8
	OAM        [256]uint8

	// CPU-exposed memory-mapped PPU registers
	// mapped from $2000 to $2007, mirrored up to $3fff
	PPUCTRL   hwio.Reg8 `hwio:"bank=1,offset=0x0,writeonly,wcb"`
	PPUMASK   hwio.Reg8 `hwio:"bank=1,offset=0x1,writeonly,wcb"`
	PPUSTATUS hwio.Reg8 `hwio:"bank=1,offset=0x2,readonly,rcb"`
	OAMADDR   hwio.Reg8 `hwio:"bank=1,offset=0x3,writeonly,wcb"`
	OAMDATA   hwio.Reg8 `hwio:"bank=1,offset=0x4,rcb,wcb"`
	PPUSCROLL hwio.Reg8 `hwio:"bank=1,offset=0x5,writeonly,wcb"`
	PPUADDR   hwio.Reg8 `hwio:"bank=1,offset=0x6,writeonly,wcb"`
	PPUDATA   hwio.Reg8 `hwio:"bank=1,offset=0x7,rcb,wcb,"`

	screen image.RGBA

	// VRAM read/write
	vramAddr    uint16
	vramTmp     uint16
	finex       uint8
	writeLatch  bool
	ppuDataRbuf uint8

	// Open bus decay, enough to satisfy games that peek at the unused bits
	// of PPUSTATUS/PPUDATA.
	openBus     uint8
	openBusDots uint32
	statusDots  uint32

	// Background pixel pipeline: a sliding window of 16 upcoming pixels. The
	// front 8 are output this scanline; the back 8 are being fetched for the
	// tile after that.
	tileBuffer [16]tileEntry

	// Sprites resolved to be visible on the scanline currently being drawn,
	// indexed by screen x.
	scanlineSprites [256]spritePixel

	masterClock uint64

	// a12Line mirrors the PPU bus's address line 12. Mappers like MMC3 clock
	// a scanline IRQ counter off its low-to-high transitions, which happen
	// naturally as background/sprite pattern-table fetches cross $1000.
	a12Line   bool
	onA12Rise func()
}

// SetA12Callback registers a mapper's observer for A12 rising edges on the
// PPU bus. Used by scanline-counting mappers (MMC3 and its variants) to
// drive their IRQ counter.
func (p *PPU) SetA12Callback(cb func()) {
	p.onA12Rise = cb
}

// readVRAM performs a PPU bus read and tracks the resulting state of address
// line 12, notifying onA12Rise on a low-to-high transition.
func (p *PPU) readVRAM(addr uint16) uint8 {
	a12 := addr&0x1000 != 0
	if a12 && !p.a12Line && p.onA12Rise != nil {
		p.onA12Rise()
	}
	p.a12Line = a12
	return p.Bus.Read8(addr)
}

func NewPPU() *PPU {
	return &PPU{
		Bus: hwio.NewTable("ppu"),
	}
}

func (p *PPU) Output() *image.RGBA {
	return &p.screen
}

// CreateScreen allocates the RGBA backing buffer for Output. Headless uses
// (tests, state-only playback) can skip this; setPixel silently no-ops
// when it hasn't been called.
func (p *PPU) CreateScreen() {
	p.screen = *image.NewRGBA(image.Rect(0, 0, renderDots, renderScanlines))
}

func (p *PPU) InitBus() {
	hwio.MustInitRegs(p)
	p.Bus.MapBank(0x0000, p, 0)
}

func (p *PPU) Reset() {
	p.Scanline = 0
	p.Cycle = 0
	p.writeLatch = false
	p.vramAddr = 0
	p.vramTmp = 0
	p.finex = 0
	p.openBus = 0
	p.openBusDots = 0
	p.statusDots = 0
	p.masterClock = 0
	p.PPUSTATUS.Value = 0
}

// Run catches the PPU up to the given CPU master clock value, ticking it dot
// by dot.
func (p *PPU) Run(masterClock uint64) {
	if masterClock <= p.masterClock {
		return
	}
	dots := (masterClock - p.masterClock) / masterClockPerDot
	p.masterClock += dots * masterClockPerDot

	for range dots {
		p.tick()
	}
}

func (p *PPU) renderingEnabled() bool {
	return p.PPUMASK.Value&(1<<showBg) != 0 || p.PPUMASK.Value&(1<<showSprites) != 0
}

// canAccessVRAM reports whether the CPU can read/write VRAM through PPUDATA
// without disturbing the render pipeline's own VRAM address bumps.
func (p *PPU) canAccessVRAM() bool {
	return p.inVBlank() || !p.renderingEnabled()
}

func (p *PPU) inVBlank() bool {
	return p.Scanline >= renderScanlines+1
}

func (p *PPU) tick() {
	p.openBusDots++
	if p.openBusDots >= dotsPerOpenBusDecay && p.openBus != 0 {
		p.openBus = 0
	}
	p.statusDots++

	if p.Cycle == NumCycles-1 {
		p.Cycle = 0
		if p.Scanline == NumScanlines-1 {
			p.Scanline = 0
		} else {
			p.Scanline++
		}
	} else {
		p.Cycle++
	}

	p.setOutput()

	if p.renderingEnabled() {
		if p.Cycle == 280 && p.Scanline == preRenderLine {
			// Copy the vertical component from t to v.
			p.vramAddr = (p.vramAddr & 0x041F) | (p.vramTmp &^ 0x041F)
		}

		if p.Scanline < renderScanlines || p.Scanline == preRenderLine {
			if p.Cycle == 264 {
				p.refreshScanlineSprites()
			}
			switch {
			case p.Cycle < 256 && p.Cycle%8 == 7:
				p.readTileToBuffer()
				p.coarseXInc()
			case p.Cycle == 328 || p.Cycle == 336:
				p.readTileToBuffer()
				p.coarseXInc()
			}
		}

		if p.Cycle == 256 {
			p.fineYInc()
			// Copy the horizontal nametable bit and coarse X from t to v.
			p.vramAddr = (p.vramAddr &^ 0x41F) | (p.vramTmp & 0x41F)
		}
	}

	if p.Cycle == 1 && p.Scanline == renderScanlines+1 {
		p.PPUSTATUS.Value |= 1 << vblank
		if p.statusDots > 3 && p.PPUCTRL.Value&(1<<nmi) != 0 {
			p.CPU.setNMIflag()
		}
	} else if p.Cycle == 1 && p.Scanline == preRenderLine {
		const mask = 1<<vblank | 1<<sprite0Hit | 1<<spriteOverflow
		p.PPUSTATUS.Value &^= mask
	}
}

// setOutput composites the pixel at the current dot (if visible) from the
// background pipeline and resolved sprites, then shifts the pipeline.
func (p *PPU) setOutput() {
	if p.Cycle < renderDots && p.Scanline < renderScanlines {
		var out uint8
		haveBg := false

		if p.PPUMASK.Value&(1<<showBg) != 0 && !(p.Cycle < 8 && p.PPUMASK.Value&(1<<leftmostBg) == 0) {
			t := p.tileBuffer[p.finex]
			if t.index != 0 {
				out = p.readPalette(4*int(t.palette) + int(t.index))
				haveBg = true
			}
		}

		if p.PPUMASK.Value&(1<<showSprites) != 0 && !(p.Cycle < 8 && p.PPUMASK.Value&(1<<leftmostSprites) == 0) {
			if sp := p.scanlineSprites[p.Cycle]; sp.present {
				if p.PPUSTATUS.Value&(1<<sprite0Hit) == 0 && sp.objIndex == 0 && haveBg &&
					p.Cycle < 255 {
					p.PPUSTATUS.Value |= 1 << sprite0Hit
				}

				// Attribute byte 2 bit 5: priority, 0 means sprite in front.
				behindBg := p.OAM[4*sp.objIndex+2]&0x20 != 0
				if !behindBg || !haveBg {
					out = sp.color
					haveBg = true
				}
			}
		}

		if !haveBg {
			out = p.readPalette(0)
		}
		p.setPixel(p.Cycle, p.Scanline, out)
	}

	if p.Cycle < 337 {
		copy(p.tileBuffer[0:], p.tileBuffer[1:])
		p.tileBuffer[len(p.tileBuffer)-1] = tileEntry{}
	}
}

func (p *PPU) setPixel(x, y int, hv uint8) {
	if p.screen.Pix == nil {
		return
	}
	p.screen.Set(x, y, nesPalette[hv&0x3F])
}

// readTileToBuffer fetches one background tile's nametable byte, attribute
// byte and 2 pattern-table planes, and appends the 8 resulting pixels to the
// back of the tile pipeline.
func (p *PPU) readTileToBuffer() {
	ntAddr := 0x2000 + (p.vramAddr & 0x0FFF)
	ntNum := p.readVRAM(ntAddr)

	atAddr := 0x23C0 + (p.vramAddr & 0x0C00) + ((p.vramAddr >> 4) & 0x38) + ((p.vramAddr >> 2) & 0x07)
	atByte := p.readVRAM(atAddr)
	atShift := ((p.vramAddr & 0x40) >> 4) + (p.vramAddr & 0x02)
	paletteIndex := (atByte >> atShift) & 0x03

	fineY := (p.vramAddr & 0x7000) >> 12
	base := p.backgroundPatternAddr() + uint16(ntNum)*16
	tileLow := p.readVRAM(base + fineY)
	tileHigh := p.readVRAM(base+8+fineY) << 1

	var next [16]tileEntry
	copy(next[:8], p.tileBuffer[:8])
	for i := range 8 {
		bit := uint(7 - i)
		idx := ((tileLow >> bit) & 0x01) | ((tileHigh >> bit) & 0x02)
		next[8+i] = tileEntry{index: idx, palette: paletteIndex}
	}
	p.tileBuffer = next
}

func (p *PPU) coarseXInc() {
	if p.vramAddr&0x1F == 0x1F {
		p.vramAddr ^= 0x41F
	} else {
		p.vramAddr++
	}
}

func (p *PPU) fineYInc() {
	switch {
	case p.vramAddr&0x7000 != 0x7000:
		p.vramAddr += 0x1000
	case p.vramAddr&0x3E0 == 0x3A0:
		// Coarse Y wraps at 30, not 32: flip the vertical nametable.
		p.vramAddr ^= 0x800 + 0x3A0 + 0x7000
	case p.vramAddr&0x3E0 == 0x3E0:
		p.vramAddr ^= 0x7000 | 0x3E0
	default:
		p.vramAddr = p.vramAddr - 0x7000 + 0x20
	}
}

// refreshScanlineSprites evaluates which of the 64 OAM sprites are visible on
// the scanline about to be drawn, fetches their pattern data, and populates
// scanlineSprites. Reproduces the hardware's sprite-overflow quirk: the flag
// depends on a diagonal read of OAM past the 8th in-range sprite, rather
// than on a correct count.
func (p *PPU) refreshScanlineSprites() {
	for i := range p.scanlineSprites {
		p.scanlineSprites[i] = spritePixel{}
	}

	if p.Scanline >= renderScanlines {
		return
	}

	spriteHeight := 8
	if p.is8x16Sprites() {
		spriteHeight = 16
	}

	var objs []int
	for i := range 64 {
		y := int(p.OAM[4*i])
		if y <= p.Scanline && p.Scanline < y+spriteHeight {
			objs = append(objs, i)
		}
	}

	if len(objs) > 8 {
		n := uint8(0)
		for obj := 8; obj < len(objs); obj++ {
			n++
			idx := objs[obj]
			y := uint8(p.Scanline) - n
			if p.OAM[4*idx] == y {
				p.PPUSTATUS.Value |= 1 << spriteOverflow
			}
		}
	}

	limit := min(len(objs), 8)
	for _, i := range objs[:limit] {
		obj := p.OAM[4*i : 4*i+4]
		flipHor := obj[2]&0x40 != 0
		flipVert := obj[2]&0x80 != 0
		paletteIndex := 16 + 4*int(obj[2]&0x03)

		yOff := p.Scanline - int(obj[0])
		if flipVert {
			yOff = spriteHeight - 1 - yOff
		}

		var tileLow, tileHigh uint8
		if p.is8x16Sprites() {
			tileAddr := uint16(0x1000*(obj[1]&0x01)) + 16*uint16(obj[1]&0xFE)
			if yOff > 7 {
				tileAddr += uint16(16 + yOff%8)
			} else {
				tileAddr += uint16(yOff)
			}
			tileLow = p.readVRAM(tileAddr)
			tileHigh = p.readVRAM(tileAddr + 8)
		} else {
			tileAddr := p.spritePatternAddr() + 16*uint16(obj[1]) + uint16(yOff)
			tileLow = p.readVRAM(tileAddr)
			tileHigh = p.readVRAM(tileAddr + 8)
		}
		tileHigh <<= 1

		for j := range 8 {
			pixelIndex := (tileLow & 0x01) | (tileHigh & 0x02)
			var x int
			if flipHor {
				x = int(obj[3]) + j
			} else {
				x = int(obj[3]) + 7 - j
			}
			if pixelIndex != 0 && x < 256 && !p.scanlineSprites[x].present {
				p.scanlineSprites[x] = spritePixel{
					present:  true,
					objIndex: i,
					color:    p.readPalette(paletteIndex + int(pixelIndex)),
				}
			}
			tileLow >>= 1
			tileHigh >>= 1
		}
	}

	// Dummy pattern-table fetches for the unused sprite slots. Mappers like
	// MMC3 watch A12 transitions on these to drive their IRQ counter.
	for range 8 - limit {
		if p.is8x16Sprites() {
			p.readVRAM(0x10FE)
		} else {
			p.readVRAM(p.spritePatternAddr() + 0xFF)
		}
	}
}

func (p *PPU) is8x16Sprites() bool { return p.PPUCTRL.Value&(1<<spriteSize) != 0 }

func (p *PPU) spritePatternAddr() uint16 {
	if p.PPUCTRL.Value&(1<<spriteAddr) != 0 {
		return 0x1000
	}
	return 0x0000
}

func (p *PPU) backgroundPatternAddr() uint16 {
	if p.PPUCTRL.Value&(1<<backgroundAddr) != 0 {
		return 0x1000
	}
	return 0x0000
}

// readPalette returns the color index ($00-$3F) stored at the given palette
// RAM entry, applying the hardware's backdrop-color aliasing: entries
// $10/$14/$18/$1C mirror $00/$04/$08/$0C.
func (p *PPU) readPalette(index int) uint8 {
	addr := index & 0x1F
	if index%4 == 0 {
		addr &= 0x0F
	}
	return p.paletteRAM[addr]
}

func (p *PPU) WritePATTERNTABLES(addr uint16, n int) {
	log.ModPPU.DebugZ("Write to PATTERNTABLES").
		Hex8("val", p.PatternTables.Data[addr]).
		Hex16("addr", addr).
		End()
}

// PPUCTRL: $2000
func (p *PPU) WritePPUCTRL(old, val uint8) {
	log.ModPPU.DebugZ("Write to PPUCTRL").Hex8("val", val).End()

	nmiWasOn := old&(1<<nmi) != 0
	nmiNowOn := val&(1<<nmi) != 0

	// By toggling the nmi bit (bit 7 of PPUCTRL) during vblank without
	// reading PPUSTATUS, a program can cause /nmi to be pulled low multiple
	// times, causing multiple NMIs to be generated.
	if !nmiWasOn && nmiNowOn && p.PPUSTATUS.Value&(1<<vblank) != 0 {
		p.CPU.setNMIflag()
	} else if nmiWasOn && !nmiNowOn {
		p.CPU.clearNMIflag()
	}

	// Transfer the nametable bits.
	p.vramTmp &^= ntselect << 10
	p.vramTmp |= (uint16(val) & ntselect) << 10

	p.openBus = val
	p.openBusDots = 0
}

// PPUMASK: $2001
func (p *PPU) WritePPUMASK(old, val uint8) {
	log.ModPPU.DebugZ("Write to PPUMASK").Hex8("val", val).End()
	p.openBus = val
	p.openBusDots = 0
}

// PPUSTATUS: $2002
func (ppu *PPU) ReadPPUSTATUS(val uint8) uint8 {
	ret := (val & 0xE0) | (ppu.openBus & openbusMask)

	ppu.writeLatch = false
	ppu.statusDots = 0
	ppu.PPUSTATUS.Value &^= 1 << vblank
	ppu.CPU.clearNMIflag()

	return ret
}

// OAMADDR: $2003
func (p *PPU) WriteOAMADDR(_, val uint8) {
	p.OAMADDR.Value = val
	p.openBus = val
	p.openBusDots = 0
}

// OAMDATA: $2004
func (p *PPU) ReadOAMDATA(_ uint8) uint8 {
	v := p.OAM[p.OAMADDR.Value]
	if p.OAMADDR.Value%4 == 2 {
		v &= 0xE3
	}
	p.openBus = v
	return v
}

func (p *PPU) WriteOAMDATA(_, val uint8) {
	p.OAM[p.OAMADDR.Value] = val
	p.OAMADDR.Value++
	p.openBus = val
	p.openBusDots = 0
}

// PPUSCROLL: $2005
func (p *PPU) WritePPUSCROLL(old, val uint8) {
	log.ModPPU.DebugZ("Write to PPUSCROLL").Hex8("val", val).End()

	if !p.writeLatch { // first write
		p.finex = val & 0b111
		p.vramTmp &^= 0b1_1111
		p.vramTmp |= uint16(val >> 3)
	} else { // second write
		p.vramTmp &^= 0b0111_0011_1110_0000
		p.vramTmp |= uint16(val&0b111) << 12
		p.vramTmp |= uint16(val&0b1111_1000) << 2
	}

	p.writeLatch = !p.writeLatch
	p.openBus = val
	p.openBusDots = 0
}

// To read/write VRAM from CPU, PPUADDR is set to the address of the operation.
// It's a 16-bit register so 2 writes are necessary.
// PPUADDR: $2006
func (p *PPU) WritePPUADDR(old, val uint8) {
	if !p.writeLatch { //first write
		p.vramTmp &^= 0b11_1111_0000_0000
		p.vramTmp |= uint16(val&0b11_1111) << 8
		p.vramTmp &^= 1 << 14 // clear z bit
	} else { // second write
		p.vramTmp &^= 0xff
		p.vramTmp |= uint16(val)
		p.vramAddr = p.vramTmp
	}

	p.writeLatch = !p.writeLatch
	p.openBus = val
	p.openBusDots = 0
}

// PPUDATA: $2007
func (p *PPU) ReadPPUDATA(_ uint8) uint8 {
	addr := p.vramAddr & 0x3FFF

	var val uint8
	switch {
	case addr < 0x3F00:
		// Reading VRAM is too slow so the actual data is returned on the
		// *next* read; this one just returns what's already buffered.
		data := p.ppuDataRbuf
		p.ppuDataRbuf = p.readVRAM(addr)
		val = data
	default: // $3F00-$3FFF
		// Reading palette data is immediate.
		val = (p.openBus & 0xC0) | (p.readPalette(int(addr) & 0x1F))
		// The read buffer is still updated, from the mirrored nametable byte.
		p.ppuDataRbuf = p.readVRAM(addr - 0x1000)
	}

	if p.canAccessVRAM() {
		p.incVRAMaddr()
	} else {
		p.coarseXInc()
		p.fineYInc()
	}

	p.openBus = val
	log.ModPPU.DebugZ("VRAM read").
		Hex16("addr", p.vramAddr).
		Hex8("val", val).
		End()
	return val
}

// PPUDATA: $2007
func (p *PPU) WritePPUDATA(old, val uint8) {
	addr := p.vramAddr & 0x3FFF
	if addr >= 0x3F00 {
		idx := addr & 0x1F
		if idx%4 == 0 {
			idx &= 0x0F
		}
		p.paletteRAM[idx] = val
	} else {
		p.Bus.Write8(addr, val)
	}

	if p.canAccessVRAM() {
		p.incVRAMaddr()
	} else {
		p.coarseXInc()
		p.fineYInc()
	}

	p.openBus = val
	p.openBusDots = 0
	log.ModPPU.DebugZ("VRAM write").
		Hex16("addr", p.vramAddr).
		Hex8("val", val).
		End()
}

// After each i/o on PPUDATA, the VRAM address is bumped by 1 or 32.
func (p *PPU) incVRAMaddr() {
	incr := uint16(1)
	if p.PPUCTRL.Value&(1<<vramIncr) != 0 {
		incr = 32
	}
	p.vramAddr = (p.vramAddr + incr) & 0x7fff
}

// nesPalette is the standard 64-color NTSC NES palette, indexed by the 6-bit
// color byte read out of palette RAM.
var nesPalette = [64]color.RGBA{
	rgb(0x7C7C7C), rgb(0x0000FC), rgb(0x0000BC), rgb(0x4428BC),
	rgb(0x940084), rgb(0xA80020), rgb(0xA81000), rgb(0x881400),
	rgb(0x503000), rgb(0x007800), rgb(0x006800), rgb(0x005800),
	rgb(0x004058), rgb(0x000000), rgb(0x000000), rgb(0x000000),
	rgb(0xBCBCBC), rgb(0x0078F8), rgb(0x0058F8), rgb(0x6844FC),
	rgb(0xD800CC), rgb(0xE40058), rgb(0xF83800), rgb(0xE45C10),
	rgb(0xAC7C00), rgb(0x00B800), rgb(0x00A800), rgb(0x00A844),
	rgb(0x008888), rgb(0x000000), rgb(0x000000), rgb(0x000000),
	rgb(0xF8F8F8), rgb(0x3CBCFC), rgb(0x6888FC), rgb(0x9878F8),
	rgb(0xF878F8), rgb(0xF85898), rgb(0xF87858), rgb(0xFCA044),
	rgb(0xF8B800), rgb(0xB8F818), rgb(0x58D854), rgb(0x58F898),
	rgb(0x00E8D8), rgb(0x787878), rgb(0x000000), rgb(0x000000),
	rgb(0xFCFCFC), rgb(0xA4E4FC), rgb(0xB8B8F8), rgb(0xD8B8F8),
	rgb(0xF8B8F8), rgb(0xF8A4C0), rgb(0xF0D0B0), rgb(0xFCE0A8),
	rgb(0xF8D878), rgb(0xD8F878), rgb(0xB8F8B8), rgb(0xB8F8D8),
	rgb(0x00FCFC), rgb(0xF8D8F8), rgb(0x000000), rgb(0x000000),
}

func rgb(c uint32) color.RGBA {
	return color.RGBA{R: uint8(c >> 16), G: uint8(c >> 8), B: uint8(c), A: 0xFF}
}
