package mappers

import (
	"nestor/hw/hwdefs"
	"nestor/hw/hwio"
	"nestor/ines"
)

var MMC3 = MapperDesc{
	Name:         "MMC3",
	Load:         loadMMC3,
	PRGROMbanksz: 0x2000,
	CHRROMbanksz: 0x0400,
}

// mmc3 implements the TxROM family (mapper 4): 8KB-granularity PRG banking
// across two swappable + two fixed windows, 1/2KB-granularity CHR banking,
// and a scanline counter clocked by the PPU's A12 address line that drives a
// one-shot IRQ.
type mmc3 struct {
	*base

	PRGRAM hwio.Mem    `hwio:"offset=0x6000,size=0x2000"`
	PRGROM hwio.Device `hwio:"offset=0x8000,size=0x8000,rcb,wcb"`

	bankSelect uint8
	prgBanks   [2]uint32
	chrBanks   [6]uint32
	prgMode    uint8 // bit 6 of $8000: swaps which 8KB window is fixed
	chrMode    uint8 // bit 7 of $8000: swaps 1KB/2KB bank inversion

	fourScreen bool

	irqLatch   uint8
	irqCounter uint8
	irqReload  bool
	irqEnabled bool
}

func (m *mmc3) ReadPRGROM(addr uint16) uint8 {
	off := addr - 0x8000
	bank := m.prgBank(off / 0x2000)
	return m.rom.PRGROM[bank*0x2000+uint32(off%0x2000)]
}

// prgBank resolves one of the four 8KB CPU windows ($8000, $A000, $C000,
// $E000) to a PRG ROM bank number. $E000 is always fixed to the last bank;
// the other fixed slot (either $8000 or $C000, picked by prgMode) is pinned
// to the second-to-last bank.
func (m *mmc3) prgBank(slot uint16) uint32 {
	last := uint32(len(m.rom.PRGROM)/0x2000) - 1
	switch slot {
	case 0:
		if m.prgMode == 0 {
			return m.prgBanks[0]
		}
		return last - 1
	case 1:
		return m.prgBanks[1]
	case 2:
		if m.prgMode == 0 {
			return last - 1
		}
		return m.prgBanks[0]
	default:
		return last
	}
}

func (m *mmc3) WritePRGROM(addr uint16, val uint8) {
	switch {
	case addr < 0xA000:
		if addr%2 == 0 {
			m.bankSelect = val & 0x07
			m.prgMode = (val >> 6) & 0x01
			m.chrMode = (val >> 7) & 0x01
		} else {
			m.writeBankData(val)
		}
	case addr < 0xC000:
		if addr%2 == 0 {
			if !m.fourScreen {
				if val&0x01 == 0 {
					m.setNTMirroring(ines.VertMirroring)
				} else {
					m.setNTMirroring(ines.HorzMirroring)
				}
			}
		}
		// odd: PRG-RAM enable/write-protect, not modeled (PRG-RAM is always
		// readable/writable here).
	case addr < 0xE000:
		if addr%2 == 0 {
			m.irqLatch = val
		} else {
			m.irqReload = true
		}
	default:
		if addr%2 == 0 {
			m.irqEnabled = false
			m.cpu.ClearIRQSource(hwdefs.Mapper)
		} else {
			m.irqEnabled = true
		}
	}
}

func (m *mmc3) writeBankData(val uint8) {
	switch {
	case m.bankSelect < 6:
		m.chrBanks[m.bankSelect] = uint32(val)
		m.remapCHR()
	case m.bankSelect == 6:
		m.prgBanks[0] = uint32(val & 0x3F)
	default: // 7
		m.prgBanks[1] = uint32(val & 0x3F)
	}
}

// remapCHR recopies the PPU's 8KB pattern-table area from the current bank
// selection. CHR is ROM-only for every cartridge this mapper supports, so
// bank switches just re-copy into the PPU's pattern tables rather than
// remapping the bus.
//
// chrMode 0 lays out two 2KB banks at $0000/$0800 and four 1KB banks at
// $1000-$1FFF; chrMode 1 swaps which half gets the 2KB banks.
func (m *mmc3) remapCHR() {
	twoKB := [2]uint32{m.chrBanks[0] &^ 1, m.chrBanks[1] &^ 1}
	oneKB := [4]uint32{m.chrBanks[2], m.chrBanks[3], m.chrBanks[4], m.chrBanks[5]}

	copy2KB := func(ppuOff uint32, bank uint32) {
		start := bank * 0x0400
		copy(m.ppu.PatternTables.Data[ppuOff:ppuOff+0x0800], m.rom.CHRROM[start:start+0x0800])
	}
	copy1KB := func(ppuOff uint32, bank uint32) {
		start := bank * 0x0400
		copy(m.ppu.PatternTables.Data[ppuOff:ppuOff+0x0400], m.rom.CHRROM[start:start+0x0400])
	}

	var lowHalf, highHalf uint32 = 0x0000, 0x1000
	if m.chrMode != 0 {
		lowHalf, highHalf = highHalf, lowHalf
	}
	copy2KB(lowHalf, twoKB[0])
	copy2KB(lowHalf+0x0800, twoKB[1])
	for i, bank := range oneKB {
		copy1KB(highHalf+uint32(i)*0x0400, bank)
	}
}

// onA12Rise is called by the PPU whenever its bus address line 12 transitions
// low to high. Real cartridges filter short dips to avoid re-triggering
// during a single rendering cycle; this mapper follows the reference
// implementation's simpler edge-count model.
func (m *mmc3) onA12Rise() {
	if m.irqCounter == 0 || m.irqReload {
		m.irqCounter = m.irqLatch
		m.irqReload = false
	} else {
		m.irqCounter--
	}
	if m.irqCounter == 0 && m.irqEnabled {
		m.cpu.SetIRQSource(hwdefs.Mapper)
	}
}

func loadMMC3(b *base) error {
	m := &mmc3{base: b, fourScreen: b.rom.Mirroring() == ines.FourScreen}
	hwio.MustInitRegs(m)
	b.cpu.Bus.MapBank(0x0000, m, 0)

	b.setNTMirroring(b.rom.Mirroring())
	m.prgBanks[1] = 1
	m.remapCHR()
	b.ppu.SetA12Callback(m.onA12Rise)
	return nil
}
