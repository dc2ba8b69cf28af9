package mappers

import (
	"nestor/ines"
)

var MMC1 = MapperDesc{
	Name: "MMC1",
	Load: loadMMC1,
}

// serialLoader is MMC1's bit-at-a-time register load path: the cartridge
// only exposes a single write-only shift register over the whole $8000-$FFFF
// range, and it takes 5 consecutive CPU writes to fill one internal
// register.
type serialLoader struct {
	bits  uint8
	count uint8
}

func (s *serialLoader) clear() {
	s.bits = 0
	s.count = 0
}

// push shifts in the write's low bit. Once the fifth bit has arrived it
// returns the assembled value and ok=true, and the loader is ready for the
// next register.
func (s *serialLoader) push(val uint8) (v uint8, ok bool) {
	s.bits = (s.bits >> 1) | (val&0x01)<<4
	s.count++
	if s.count < 5 {
		return 0, false
	}
	v = s.bits
	s.clear()
	return v, true
}

type mmc1 struct {
	*base

	lastWriteCycle int64
	loader         serialLoader

	prgMode    uint8
	chrMode    uint8
	mirrorMode uint8

	chrBank0 uint32
	chrBank1 uint32

	wramDisabled bool // TODO: unused for now
	prgBank      uint32
}

func (m *mmc1) WritePRGROM(addr uint16, val uint8) {
	cycle := m.cpu.CurrentCycle()
	defer func() { m.lastWriteCycle = m.cpu.CurrentCycle() }()

	// Consecutive-cycle writes (as a single RMW instruction would produce)
	// are ignored; only the bus write that actually lands is seen.
	if cycle-m.lastWriteCycle < 2 && val&0x80 == 0 {
		return
	}

	if val&0x80 != 0 {
		// Reset: discard whatever's been shifted in so far and force PRG
		// mode back to 16KB/$8000-swappable. Every other register is left
		// untouched.
		m.loader.clear()
		m.prgMode = 0b11
		m.remap()
		return
	}

	if reg, ready := m.loader.push(val); ready {
		m.writeRegister(addr, reg)
		m.remap()
	}
}

func (m *mmc1) writeRegister(addr uint16, val uint8) {
	switch (addr >> 13) & 0x03 {
	case 0:
		m.writeCTRL(val)
	case 1:
		m.writeCHR0(val)
	case 2:
		m.writeCHR1(val)
	case 3:
		m.writePRG(val)
	}
}

func (m *mmc1) writeCTRL(val uint8) {
	m.chrMode = (val >> 4) & 0x01
	m.prgMode = (val >> 2) & 0x03

	prev := m.mirrorMode
	m.mirrorMode = val & 0x03
	if prev != m.mirrorMode {
		switch m.mirrorMode {
		case 0:
			m.setNTMirroring(ines.OnlyAScreen)
		case 1:
			m.setNTMirroring(ines.OnlyBScreen)
		case 2:
			m.setNTMirroring(ines.VertMirroring)
		case 3:
			m.setNTMirroring(ines.HorzMirroring)
		}
	}

	modMapper.DebugZ("write MMC1 CTRL").String("mapper", m.desc.Name).
		Uint8("val", val).
		Uint8("prgmode", m.prgMode).
		Uint8("chrmode", m.chrMode).
		End()
}

func (m *mmc1) writeCHR0(val uint8) {
	m.chrBank0 = uint32(val & 0x1F) // TODO: adjust mask if CHRROM is larger
	modMapper.DebugZ("write MMC1 CHR0").String("mapper", m.desc.Name).Uint8("val", val).End()
}

func (m *mmc1) writeCHR1(val uint8) {
	m.chrBank1 = uint32(val & 0x1F) // TODO: adjust mask if CHRROM is larger
	modMapper.DebugZ("write MMC1 CHR1").String("mapper", m.desc.Name).Uint8("val", val).End()
}

func (m *mmc1) writePRG(val uint8) {
	// $E000-$FFFF: [...W PPPP] — W = WRAM disable (0=enabled, 1=disabled),
	// P = PRG bank.
	m.wramDisabled = val&0x10 != 0
	m.prgBank = uint32(val & 0x0F)
	if m.wramDisabled {
		panic("disable WRAM not implemented")
	}

	modMapper.DebugZ("write MMC1 PRG").String("mapper", m.desc.Name).Uint8("val", val).End()
}

func (m *mmc1) remap() {
	switch m.prgMode {
	case 0, 1:
		// Low bit of the bank number is ignored in 32KB mode.
		m.selectPRGPage32KB(int(m.prgBank >> 1))
	case 2:
		m.selectPRGPage16KB(0, 0)
		m.selectPRGPage16KB(1, int(m.prgBank))
	case 3:
		m.selectPRGPage16KB(0, int(m.prgBank))
		m.selectPRGPage16KB(1, -1)
	}

	switch m.chrMode {
	case 0:
		// Low bit of the 4KB bank number is ignored in 8KB mode.
		m.selectCHRROMPage8KB(int(m.chrBank0 >> 1))
	case 1:
		m.selectCHRROMPage4KB(0, int(m.chrBank0))
		m.selectCHRROMPage4KB(1, int(m.chrBank1))
	}
}

func loadMMC1(b *base) error {
	m := &mmc1{base: b}
	b.init(m.WritePRGROM)
	b.setNTMirroring(ines.OnlyAScreen)

	// On powerup bits 2,3 of $8000 are set: $8000 is bank 0 and $C000 is the
	// last bank, which SEROM/SHROM/SH1ROM (no PRG banking support) rely on.
	m.writeRegister(0x8000, 0x0C)
	m.writeRegister(0xA000, 0)
	m.writeRegister(0xC000, 0)
	m.writeRegister(0xE000, 0) // TODO: WRAM disable defaults to enabled for MMC1B only
	m.wramDisabled = true      // TODO: always enabled on MMC1A
	m.remap()
	return nil
}
