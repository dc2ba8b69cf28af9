package apu

import (
	"nestor/emu/log"
	"nestor/hw/hwio"
	"nestor/hw/snapshot"
)

var triangleSequence = [32]int8{
	15, 14, 13, 12, 11, 10, 9, 8,
	7, 6, 5, 4, 3, 2, 1, 0,
	0, 1, 2, 3, 4, 5, 6, 7,
	8, 9, 10, 11, 12, 13, 14, 15,
}

// linearCounter is the triangle channel's second length-limiting gate,
// separate from the shared lengthCounter: it reloads from a latch written to
// $4008 whenever its control flag is set, or once after a $400B write, and
// otherwise just counts down once per quarter frame.
type linearCounter struct {
	value   uint8
	reload  uint8
	control bool
	pending bool
}

func (lc *linearCounter) load(regValue uint8) {
	lc.control = regValue&0x80 != 0
	lc.reload = regValue & 0x7F
}

func (lc *linearCounter) requestReload() {
	lc.pending = true
}

func (lc *linearCounter) tick() {
	if lc.pending {
		lc.value = lc.reload
	} else if lc.value > 0 {
		lc.value--
	}
	if !lc.control {
		lc.pending = false
	}
}

func (lc *linearCounter) nonZero() bool {
	return lc.value > 0
}

// The triangleChannel contains the following: Timer, 32-step sequencer, Length
// Counter, Linear Counter, 4-bit DAC.
//
//	+---------+    +---------+
//	|LinearCtr|    | Length  |
//	+---------+    +---------+
//	     |              |
//	     v              v
//	+---------+        |\             |\         +---------+    +---------+
//	|  Timer  |------->| >----------->| >------->|Sequencer|--->|   DAC   |
//	+---------+        |/             |/         +---------+    +---------+
type triangleChannel struct {
	apu        *APU
	lenCounter lengthCounter
	linear     linearCounter
	timer      timer

	step uint8 // current index into triangleSequence

	Linear hwio.Reg8 `hwio:"offset=0x08,wcb"`
	Unused hwio.Reg8 `hwio:"offset=0x09,wcb"`
	Timer  hwio.Reg8 `hwio:"offset=0x0A,wcb"`
	Length hwio.Reg8 `hwio:"offset=0x0B,wcb"`
}

func newTriangleChannel(apu *APU, mixer *Mixer) triangleChannel {
	return triangleChannel{
		apu: apu,
		lenCounter: lengthCounter{
			channel: Triangle,
			apu:     apu,
		},
		timer: timer{
			Channel: Triangle,
			mixer:   mixer,
		},
	}
}

func (tc *triangleChannel) run(targetCycle uint32) {
	for tc.timer.run(targetCycle) {
		// The sequencer only advances while both the linear counter and the
		// shared length counter are nonzero.
		if tc.lenCounter.status() && tc.linear.nonZero() {
			tc.step = (tc.step + 1) & 0x1F

			// A period under 2 is ultrasonic; the output is left at its
			// previous level, which avoids the audible "pop" that would
			// otherwise come through the mixer.
			if tc.timer.period >= 2 {
				tc.timer.addOutput(triangleSequence[tc.step])
			}
		}
	}
}

func (tc *triangleChannel) reset(soft bool) {
	tc.timer.reset(soft)
	tc.lenCounter.reset(soft)
	tc.linear = linearCounter{}
	tc.step = 0
}

func (tc *triangleChannel) WriteLINEAR(_, val uint8) {
	tc.apu.Run()
	tc.linear.load(val)
	tc.lenCounter.init(tc.linear.control)

	log.ModSound.InfoZ("write triangle linear").
		Uint8("reg", val).
		Bool("ctrl", tc.linear.control).
		Uint8("reload", tc.linear.reload).
		End()
}

func (tc *triangleChannel) WriteUNUSED(_, _ uint8) {
	tc.apu.Run()
}

func (tc *triangleChannel) WriteTIMER(_, val uint8) {
	tc.apu.Run()
	tc.timer.period = (tc.timer.period & 0xFF00) | uint16(val)

	log.ModSound.InfoZ("write triangle timer").
		Uint8("reg", val).
		Uint16("period", tc.timer.period).
		End()
}

func (tc *triangleChannel) WriteLENGTH(_, val uint8) {
	tc.apu.Run()

	tc.lenCounter.load(val >> 3)
	tc.timer.period = (tc.timer.period & 0xFF) | (uint16(val&0x07) << 8)

	// Side effect of any $400B write: the linear counter reloads on its
	// next tick regardless of the control flag.
	tc.linear.requestReload()

	log.ModSound.InfoZ("write triangle length").
		Uint8("reg", val).
		Uint16("period", tc.timer.period).
		Uint8("length", val>>3).
		End()
}

func (tc *triangleChannel) tickLinearCounter() {
	tc.linear.tick()
}

func (tc *triangleChannel) tickLengthCounter() {
	tc.lenCounter.tick()
}

func (tc *triangleChannel) reloadLengthCounter() {
	tc.lenCounter.reload()
}

func (tc *triangleChannel) endFrame() {
	tc.timer.endFrame()
}

func (tc *triangleChannel) setEnabled(enabled bool) {
	tc.lenCounter.setEnabled(enabled)
}

func (tc *triangleChannel) status() bool {
	return tc.lenCounter.status()
}

func (tc *triangleChannel) output() uint8 {
	return uint8(tc.timer.lastOutput)
}

func (tc *triangleChannel) saveState(state *snapshot.APUTriangle) {
	tc.lenCounter.saveState(&state.LengthCounter)
	tc.timer.saveState(&state.Timer)
	state.LinearCounter = tc.linear.value
	state.LinearCounterReload = tc.linear.reload
	state.LinearReload = tc.linear.pending
	state.LinearCtrl = tc.linear.control
	state.Pos = tc.step
}

func (tc *triangleChannel) setState(state *snapshot.APUTriangle) {
	tc.lenCounter.setState(&state.LengthCounter)
	tc.timer.setState(&state.Timer)
	tc.linear.value = state.LinearCounter
	tc.linear.reload = state.LinearCounterReload
	tc.linear.pending = state.LinearReload
	tc.linear.control = state.LinearCtrl
	tc.step = state.Pos
}
