package ines

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

func buildHeader(prgUnits, chrUnits, b6, b7 byte) []byte {
	h := make([]byte, 16)
	copy(h, Magic)
	h[4] = prgUnits
	h[5] = chrUnits
	h[6] = b6
	h[7] = b7
	return h
}

func TestReadRomNROM(t *testing.T) {
	hdr := buildHeader(1, 1, 0x01, 0x00) // vertical mirroring, mapper 0
	prg := bytes.Repeat([]byte{0xEA}, 16384)
	chr := bytes.Repeat([]byte{0x00}, 8192)

	buf := append(append(append([]byte{}, hdr...), prg...), chr...)
	rom, err := ReadRom(bytes.NewReader(buf))
	if err != nil {
		t.Fatal(err)
	}
	if rom.Mapper() != 0 {
		t.Fatalf("mapper = %d, want 0", rom.Mapper())
	}
	if rom.Mirroring() != VertMirroring {
		t.Fatalf("mirroring = %v, want vertical", rom.Mirroring())
	}
	if len(rom.PRGROM) != 16384 {
		t.Fatalf("PRGROM len = %d", len(rom.PRGROM))
	}
	if len(rom.CHRROM) != 8192 {
		t.Fatalf("CHRROM len = %d", len(rom.CHRROM))
	}
	if rom.HasCHRRAM() {
		t.Fatal("should not report CHR RAM")
	}
}

func TestReadRomCHRRAM(t *testing.T) {
	hdr := buildHeader(1, 0, 0x00, 0x00)
	prg := bytes.Repeat([]byte{0xEA}, 16384)
	buf := append(append([]byte{}, hdr...), prg...)

	rom, err := ReadRom(bytes.NewReader(buf))
	if err != nil {
		t.Fatal(err)
	}
	if !rom.HasCHRRAM() {
		t.Fatal("expected CHR RAM cartridge")
	}
}

func TestMapperNumberCombinesBothNibbles(t *testing.T) {
	// mapper 4 (MMC3): byte6 high nibble = 0x4, byte7 high nibble = 0x0
	hdr := buildHeader(1, 1, 0x40, 0x00)
	prg := bytes.Repeat([]byte{0xEA}, 16384)
	chr := bytes.Repeat([]byte{0x00}, 8192)
	buf := append(append(append([]byte{}, hdr...), prg...), chr...)

	rom, err := ReadRom(bytes.NewReader(buf))
	if err != nil {
		t.Fatal(err)
	}
	if rom.Mapper() != 4 {
		t.Fatalf("mapper = %d, want 4", rom.Mapper())
	}
}

func TestBadMagic(t *testing.T) {
	buf := buildHeader(1, 1, 0, 0)
	buf[0] = 'X'
	if _, err := ReadRom(bytes.NewReader(buf)); err == nil {
		t.Fatal("expected BadFormat error")
	} else if _, ok := err.(*BadFormat); !ok {
		t.Fatalf("expected *BadFormat, got %T", err)
	}
}

func TestTruncatedPRG(t *testing.T) {
	hdr := buildHeader(2, 0, 0, 0)
	buf := append([]byte{}, hdr...)
	buf = append(buf, make([]byte, 100)...) // much less than 32KiB
	if _, err := ReadRom(bytes.NewReader(buf)); err == nil {
		t.Fatal("expected truncated PRG error")
	}
}

// TestRomOpenFromTestdata exercises the real nes-test-roms corpus when it is
// present under testdata/; it skips gracefully otherwise so the suite stays
// runnable offline.
func TestRomOpenFromTestdata(t *testing.T) {
	dir := filepath.Join("..", "testdata", "nes-test-roms", "instr_test-v5", "rom_singles")
	path := filepath.Join(dir, "01-basics.nes")
	if _, err := os.Stat(path); err != nil {
		t.Skip("nes-test-roms corpus not present, skipping")
	}

	rom, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(rom.PRGROM) == 0 {
		t.Fatal("expected non-empty PRG ROM")
	}
}
