package apu

import "nestor/hw/hwdefs"

type Channel uint8

const (
	Square1 Channel = iota
	Square2
	Triangle
	Noise
	DPCM
)

type mixer interface {
	AddDelta(ch Channel, time uint32, delta int16)
}

type apu interface {
	SetNeedToRun()
	Run()
}

// cpu is the subset of the CPU that the APU and its channels need: interrupt
// line control, the DMC's bus-stealing transfers and the current cycle
// parity used by several timing quirks.
type cpu interface {
	SetIRQSource(src hwdefs.IRQSource)
	ClearIRQSource(src hwdefs.IRQSource)
	HasIRQSource(src hwdefs.IRQSource) bool
	CurrentCycle() int64
	StartDMCTransfer()
	StopDMCTransfer()
}

// FrameType identifies what kind of clock, if any, the frame counter's
// sequencer produces on a given step.
type FrameType uint8

const (
	NoFrame FrameType = iota
	QuarterFrame
	HalfFrame
)
