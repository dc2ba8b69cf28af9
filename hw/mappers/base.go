package mappers

import (
	"fmt"

	"nestor/hw"
	"nestor/hw/hwio"
	"nestor/ines"
)

type base struct {
	desc MapperDesc

	rom *ines.Rom
	cpu *hw.CPU
	ppu *hw.PPU

	writeCb func(addr uint16, val uint8)

	prgDevice hwio.Device
	prgMode32 bool
	prgBank0  uint32 // CPU $8000-$BFFF in 16KB mode, or the whole 32KB window
	prgBank1  uint32 // CPU $C000-$FFFF in 16KB mode
}

func ispow2(n int) bool {
	return n&(n-1) == 0
}

func u8tob(v uint8) bool {
	return v != 0
}

func newbase(desc MapperDesc, rom *ines.Rom, cpu *hw.CPU, ppu *hw.PPU) (*base, error) {
	if !ispow2(len(rom.PRGROM)) {
		return nil, fmt.Errorf("only support PRGROM with power of 2 size, got %d", len(rom.PRGROM))
	}

	return &base{desc: desc, rom: rom, cpu: cpu, ppu: ppu}, nil
}

func (b *base) load() error {
	return b.desc.Load(b)
}

func copyCHRROM(ppu *hw.PPU, rom *ines.Rom, bank uint32) {
	// Copy CHRROM bank to PPU memory.
	// CHRROM is 8KB in size
	start := bank * 0x2000
	end := start + 0x2000
	copy(ppu.PatternTables.Data, rom.CHRROM[start:end])
}

func (b *base) setNTMirroring(m ines.NTMirroring) {
	// Unmap all nametables
	b.ppu.Bus.Unmap(0x2000, 0x3EFF)

	A := b.ppu.Nametables[:0x400]
	B := b.ppu.Nametables[0x400:0x800]

	var nt1, nt2, nt3, nt4 []byte

	switch m {
	case ines.HorzMirroring:
		nt1, nt2 = A, A
		nt3, nt4 = B, B
	case ines.VertMirroring:
		nt1, nt2 = A, B
		nt3, nt4 = A, B
	case ines.OnlyAScreen:
		nt1, nt2 = A, A
		nt3, nt4 = A, A
	case ines.OnlyBScreen:
		nt1, nt2 = B, B
		nt3, nt4 = B, B
	default:
		panic(fmt.Sprintf("unsupported mirroring %d", m))
	}

	// Map nametables
	b.ppu.Bus.MapMemorySlice(0x2000, 0x23FF, nt1, false)
	b.ppu.Bus.MapMemorySlice(0x2400, 0x27FF, nt2, false)
	b.ppu.Bus.MapMemorySlice(0x2800, 0x2BFF, nt3, false)
	b.ppu.Bus.MapMemorySlice(0x2C00, 0x2FFF, nt4, false)

	// Mirrors
	b.ppu.Bus.MapMemorySlice(0x3000, 0x33FF, nt1, false)
	b.ppu.Bus.MapMemorySlice(0x3400, 0x37FF, nt2, false)
	b.ppu.Bus.MapMemorySlice(0x3800, 0x3BFF, nt3, false)
	b.ppu.Bus.MapMemorySlice(0x3C00, 0x3EFF, nt4, false)
}

// init wires up CPU $8000-$FFFF as a single device: reads are served from
// whichever PRG ROM page(s) are currently selected, and writes go to writeCb
// so the mapper can treat them as bank-select registers. Mappers that need a
// swappable PRG window (MMC1, UxROM, AxROM and similar) use this instead of a
// static hwio.Mem, since on real cartridges the ROM address range doubles as
// the bank-select register range.
func (b *base) init(writeCb func(addr uint16, val uint8)) {
	b.writeCb = writeCb
	b.prgDevice = hwio.Device{
		Name:    "PRGROM",
		Size:    0x8000,
		ReadCb:  b.readPRG,
		PeekCb:  b.readPRG,
		WriteCb: writeCb,
	}
	b.cpu.Bus.MapDevice(0x8000, &b.prgDevice)
}

func (b *base) readPRG(addr uint16) uint8 {
	off := addr - 0x8000
	if b.prgMode32 {
		start := b.prgPage(b.prgBank0, 0x8000)
		return b.rom.PRGROM[start+uint32(off)]
	}
	if off < 0x4000 {
		start := b.prgPage(b.prgBank0, 0x4000)
		return b.rom.PRGROM[start+uint32(off)]
	}
	start := b.prgPage(b.prgBank1, 0x4000)
	return b.rom.PRGROM[start+uint32(off-0x4000)]
}

// prgPage resolves a bank index (negative meaning "pageSize from the end")
// into a byte offset into rom.PRGROM.
func (b *base) prgPage(page uint32, pageSize uint32) uint32 {
	pages := uint32(len(b.rom.PRGROM)) / pageSize
	n := int32(page)
	if n < 0 {
		n += int32(pages)
	}
	return uint32(n) * pageSize
}

// selectPRGPage32KB maps the entire CPU $8000-$FFFF window to one 32KB PRG
// page. page may be negative to count from the last page.
func (b *base) selectPRGPage32KB(page int) {
	b.prgMode32 = true
	b.prgBank0 = uint32(int32(page))
}

// selectPRGPage16KB maps one 16KB PRG page into CPU slot 0 ($8000-$BFFF) or
// slot 1 ($C000-$FFFF). page may be negative to count from the last page.
func (b *base) selectPRGPage16KB(slot, page int) {
	b.prgMode32 = false
	if slot == 0 {
		b.prgBank0 = uint32(int32(page))
	} else {
		b.prgBank1 = uint32(int32(page))
	}
}

// selectCHRROMPage8KB copies an 8KB CHR ROM page into the whole PPU pattern
// table area.
func (b *base) selectCHRROMPage8KB(page int) {
	copyCHRROM(b.ppu, b.rom, uint32(page))
}

// selectCHRPage8KB is an alias for selectCHRROMPage8KB.
func (b *base) selectCHRPage8KB(page int) {
	b.selectCHRROMPage8KB(page)
}

// selectCHRROMPage4KB copies a 4KB CHR ROM page into pattern table half
// (0: $0000-$0FFF, 1: $1000-$1FFF).
func (b *base) selectCHRROMPage4KB(half, page int) {
	start := uint32(page) * 0x1000
	end := start + 0x1000
	dst := b.ppu.PatternTables.Data[half*0x1000 : half*0x1000+0x1000]
	copy(dst, b.rom.CHRROM[start:end])
}
