package mappers

import (
	"nestor/ines"
)

var AxROM = MapperDesc{
	Name:         "AxROM",
	Load:         loadAxROM,
	PRGROMbanksz: 0x8000,
}

// axrom is mapper 7: a single 32KB swappable PRG window plus a single-screen
// nametable select, no CHR banking (CHR is always fixed 8KB).
type axrom struct {
	*base

	mirror       ines.NTMirroring
	bank         uint32
	busConflicts bool
}

// 7  bit  0
// ---- ----
// xxxM xPPP
//    |  |||
//    |  +++- Select 32 KB PRG ROM bank for CPU $8000-$FFFF
//    +------ Select 1 KB VRAM page for all 4 nametables
func (m *axrom) WritePRGROM(addr uint16, val uint8) {
	if m.busConflicts {
		val &= m.cpu.Bus.Peek8(addr)
	}

	if bank := uint32(val & 0x07); bank != m.bank {
		m.bank = bank
		m.selectPRGPage32KB(int(m.bank))
	}

	mirror := ines.OnlyAScreen
	if val&0x10 != 0 {
		mirror = ines.OnlyBScreen
	}
	if mirror != m.mirror {
		m.mirror = mirror
		m.setNTMirroring(m.mirror)
		modMapper.DebugZ("select NT mirroring").String("mapper", m.desc.Name).Stringer("new", m.mirror).End()
	}
}

func loadAxROM(b *base) error {
	m := &axrom{
		base:         b,
		busConflicts: b.rom.SubMapper() == 2,
	}
	b.init(m.WritePRGROM)
	b.selectCHRROMPage8KB(0)
	b.selectPRGPage32KB(0)
	return nil

	// TODO: load and map PRG-RAM if present in cartridge.
	// TODO: load and map CHR-RAM if present in cartridge.
}
