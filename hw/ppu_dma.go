package hw

import (
	"nestor/emu/log"
	"nestor/hw/hwio"
)

// PPUDMA handles the DMA transfer of sprite attributes from CPU memory to
// PPU OAM, triggered by a write to $4014.
type PPUDMA struct {
	cpu *CPU

	page       uint8
	addr       uint8
	data       uint8
	inProgress bool

	OAMDMA hwio.Reg8 `hwio:"offset=0x00,writeonly,wcb"`

	// Since DMA can only be started on an even CPU cycle, we use a dummy
	// cycle to align the transfer with an even cycle.
	dummy bool
}

func (dma *PPUDMA) InitBus(cpu *CPU) {
	hwio.MustInitRegs(dma)
	dma.cpu = cpu
	dma.reset()
}

func (dma *PPUDMA) reset() {
	dma.page = 0x00
	dma.addr = 0x00
	dma.data = 0x00
	dma.dummy = true
	dma.inProgress = false
}

func (dma *PPUDMA) WriteOAMDMA(_, val uint8) {
	log.ModDMA.InfoZ("Write to OAMDMA reg").Hex8("val", val).End()
	dma.page = val
	dma.addr = 0x00
	dma.inProgress = true
}

func (dma *PPUDMA) process() {
	if !dma.inProgress {
		return
	}

	cpuTicks := dma.cpu.Cycles

	const (
		even = 0
		odd  = 1
	)

	// The first cycle is always idle. On odd cycle count we add an extra
	// idle cycle.
	if dma.dummy {
		if cpuTicks%2 == odd {
			dma.dummy = false
			log.ModDMA.InfoZ("Begin PPU DMA transfer").
				Hex8("page", dma.page).
				Int64("ticks", cpuTicks).
				End()
		}
		return
	}

	switch cpuTicks % 2 {
	case even:
		// Read from CPU bus.
		addr := uint16(dma.page)<<8 | uint16(dma.addr)
		dma.data = dma.cpu.Bus.Read8(addr)

	case odd:
		// Write to PPU OAM.
		dma.cpu.PPU.OAM[dma.addr] = dma.data
		dma.addr++
		// When this wraps around we know that 256 bytes have been written.
		if dma.addr == 0x00 {
			log.ModDMA.InfoZ("Ending PPU DMA transfer").
				Hex8("page", dma.page).
				Int64("ticks", cpuTicks).
				End()
			dma.inProgress = false
			dma.dummy = true
		}
	}
}
