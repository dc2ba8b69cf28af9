package hwio

// addrSpace is a flat, full-width map of the 64 KiB address space to the
// BankIO8 mapped at each byte. A plain array beats a sparse tree here: the
// whole space is a fixed 64K entries, lookups are the hottest path in the
// emulator (every CPU and PPU memory access goes through one), and an array
// index is as fast as dispatch gets.
type addrSpace struct {
	entries [0x10000]any
}

// InsertRange maps io at every address in [begin, end] inclusive.
func (s *addrSpace) InsertRange(begin, end uint16, io any) error {
	for addr := uint32(begin); addr <= uint32(end); addr++ {
		s.entries[addr] = io
	}
	return nil
}

// RemoveRange unmaps every address in [begin, end] inclusive.
func (s *addrSpace) RemoveRange(begin, end uint16) {
	for addr := uint32(begin); addr <= uint32(end); addr++ {
		s.entries[addr] = nil
	}
}

func (s *addrSpace) Search(addr uint16) any {
	return s.entries[addr]
}
