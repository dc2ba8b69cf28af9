package apu

import (
	"nestor/emu/log"
	"nestor/hw/hwio"
	"nestor/hw/snapshot"
)

// duty cycle sequences for the square channels. Each is an 8-step loop the
// sequencer walks backwards through; a 1 means the DAC sees the channel's
// current volume for that step, a 0 means silence.
var squareDuty = [4][8]uint8{
	{0, 0, 0, 0, 0, 0, 0, 1},
	{0, 0, 0, 0, 0, 0, 1, 1},
	{0, 0, 0, 0, 1, 1, 1, 1},
	{1, 1, 1, 1, 1, 1, 0, 0},
}

// sweepUnit periodically nudges a square channel's period up or down,
// silencing the channel outright once the target period over/underflows.
// Pulse channel 1 has a one's-complement quirk in the negate direction that
// pulse channel 2 doesn't: see onChannel1.
type sweepUnit struct {
	onChannel1 bool

	enabled      bool
	negate       bool
	shift        uint8
	period       uint8 // divider reload value, i.e. P+1 from the register
	divider      uint8
	pendingLoad  bool // reload flag, set whenever $4001/$4005 is written
	targetPeriod uint32
}

func (sw *sweepUnit) load(regValue uint8, currentPeriod uint16) {
	sw.enabled = regValue&0x80 != 0
	sw.negate = regValue&0x08 != 0
	sw.period = (regValue&0x70)>>4 + 1
	sw.shift = regValue & 0x07
	sw.retarget(currentPeriod)
	sw.pendingLoad = true
}

// retarget recomputes where the next sweep application would move the
// period to, without actually moving it; callers use the result to decide
// whether the channel should currently be muted.
func (sw *sweepUnit) retarget(currentPeriod uint16) {
	delta := currentPeriod >> sw.shift
	if !sw.negate {
		sw.targetPeriod = uint32(currentPeriod + delta)
		return
	}
	sw.targetPeriod = uint32(currentPeriod - delta)
	if sw.onChannel1 {
		// Channel 1 subtracts one extra: its adder takes the one's
		// complement of the shifted value rather than the two's complement
		// channel 2 uses.
		sw.targetPeriod--
	}
}

// overflowing reports whether applying the sweep right now would push the
// period out of range, which on real hardware silences the channel even
// when the sweep unit itself is disabled.
func (sw *sweepUnit) overflowing() bool {
	return !sw.negate && sw.targetPeriod > 0x7FF
}

// tick runs the divider for one half-frame and reports whether the caller
// should apply targetPeriod as the channel's new period.
func (sw *sweepUnit) tick(currentPeriod uint16) bool {
	apply := false
	sw.divider--
	if sw.divider == 0 {
		if sw.shift > 0 && sw.enabled && currentPeriod >= 8 && sw.targetPeriod <= 0x7FF {
			apply = true
		}
		sw.divider = sw.period
	}
	if sw.pendingLoad {
		sw.divider = sw.period
		sw.pendingLoad = false
	}
	return apply
}

func (sw *sweepUnit) reset() {
	*sw = sweepUnit{onChannel1: sw.onChannel1}
}

// There are two square channels beginning at registers $4000 and $4004. Each
// contains the following: Envelope Generator, Sweep Unit, Timer with
// divide-by-two on the output, 8-step sequencer, Length Counter.
//
//	               +---------+    +---------+
//	               |  Sweep  |--->|Timer / 2|
//	               +---------+    +---------+
//	                    |              |
//	                    |              v
//	                    |         +---------+    +---------+
//	                    |         |Sequencer|    | Length  |
//	                    |         +---------+    +---------+
//	                    |              |              |
//	                    v              v              v
//	+---------+        |\             |\             |\          +---------+
//	|Envelope |------->| >----------->| >----------->| >-------->|   DAC   |
//	+---------+        |/             |/             |/          +---------+
type squareChannel struct {
	apu      *APU
	envelope envelope
	timer    timer
	sweep    sweepUnit

	period  uint16
	duty    uint8
	dutyPos uint8

	Duty   hwio.Reg8 `hwio:"offset=0x00,wcb"`
	Sweep  hwio.Reg8 `hwio:"offset=0x01,wcb"`
	Timer  hwio.Reg8 `hwio:"offset=0x02,wcb"`
	Length hwio.Reg8 `hwio:"offset=0x03,wcb"`
}

func newSquareChannel(apu *APU, mixer *Mixer, channel Channel, isChannel1 bool) squareChannel {
	return squareChannel{
		apu: apu,
		envelope: envelope{
			lenCounter: lengthCounter{
				channel: channel,
				apu:     apu,
			},
		},
		timer: timer{
			Channel: channel,
			mixer:   mixer,
		},
		sweep: sweepUnit{onChannel1: isChannel1},
	}
}

func (sc *squareChannel) WriteDUTY(_, val uint8) {
	sc.apu.Run()

	sc.envelope.init(val)
	sc.duty = val >> 6

	log.ModSound.InfoZ("write pulse duty").
		Uint8("reg", val).
		Uint8("duty", sc.duty).
		End()
}

func (sc *squareChannel) WriteSWEEP(_, val uint8) {
	sc.apu.Run()
	sc.sweep.load(val, sc.period)

	log.ModSound.InfoZ("write pulse sweep").
		Uint8("reg", val).
		End()
}

func (sc *squareChannel) WriteTIMER(_, val uint8) {
	sc.apu.Run()
	sc.setPeriod((sc.period & 0x0700) | uint16(val))

	log.ModSound.InfoZ("write pulse timer").
		Uint8("reg", val).
		Uint16("period", sc.period).
		End()
}

func (sc *squareChannel) WriteLENGTH(_, val uint8) {
	sc.apu.Run()

	sc.envelope.lenCounter.load(val >> 3)
	sc.setPeriod((sc.period & 0xFF) | (uint16(val&0x07) << 8))

	// The sequencer restarts at the first step of the current duty cycle,
	// and the envelope restarts too.
	sc.dutyPos = 0
	sc.envelope.restart()

	log.ModSound.InfoZ("write pulse length").
		Uint8("reg", val).
		Uint8("env len", val>>3).
		Uint16("period", sc.period).
		End()
}

// setPeriod updates the 11-bit channel period and keeps the timer (which
// ticks at half the rate, hence *2+1) and the sweep unit's target in sync.
func (sc *squareChannel) setPeriod(newPeriod uint16) {
	sc.period = newPeriod
	sc.timer.period = sc.period*2 + 1
	sc.sweep.retarget(sc.period)
}

func (sc *squareChannel) isMuted() bool {
	// A period under 8 is inaudible on real hardware and silences the
	// channel outright, same as an out-of-range sweep target.
	return sc.period < 8 || sc.sweep.overflowing()
}

func (sc *squareChannel) updateOutput() {
	if sc.isMuted() {
		sc.timer.addOutput(0)
		return
	}
	out := squareDuty[sc.duty][sc.dutyPos] * uint8(sc.envelope.volume())
	sc.timer.addOutput(int8(out))
}

func (sc *squareChannel) run(targetCycle uint32) {
	for sc.timer.run(targetCycle) {
		sc.dutyPos = (sc.dutyPos - 1) & 0x07
		sc.updateOutput()
	}
}

func (sc *squareChannel) reset(soft bool) {
	sc.envelope.reset(soft)
	sc.timer.reset(soft)
	sc.sweep.reset()

	sc.duty = 0
	sc.dutyPos = 0
	sc.period = 0
}

func (sc *squareChannel) tickSweep() {
	if sc.sweep.tick(sc.period) {
		sc.setPeriod(uint16(sc.sweep.targetPeriod))
	}
}

func (sc *squareChannel) tickEnvelope() {
	sc.envelope.tick()
}

func (sc *squareChannel) tickLengthCounter() {
	sc.envelope.lenCounter.tick()
}

func (sc *squareChannel) reloadLengthCounter() {
	sc.envelope.lenCounter.reload()
}

func (sc *squareChannel) endFrame() {
	sc.timer.endFrame()
}

func (sc *squareChannel) setEnabled(enabled bool) {
	sc.envelope.lenCounter.setEnabled(enabled)
}

func (sc *squareChannel) status() bool {
	return sc.envelope.lenCounter.status()
}

func (sc *squareChannel) output() uint8 {
	return uint8(sc.timer.lastOutput)
}

func (sc *squareChannel) saveState(state *snapshot.APUSquare) {
	state.SweepTargetPeriod = sc.sweep.targetPeriod
	state.RealPeriod = sc.period
	sc.timer.saveState(&state.Timer)
	sc.envelope.saveState(&state.Envelope)
	state.SweepEnabled = sc.sweep.enabled
	state.SweepPeriod = sc.sweep.period
	state.SweepNegate = sc.sweep.negate
	state.SweepShift = sc.sweep.shift
	state.SweepDivider = sc.sweep.divider
	state.ReloadSweep = sc.sweep.pendingLoad
	state.Duty = sc.duty
	state.DutyPos = sc.dutyPos
}

func (sc *squareChannel) setState(state *snapshot.APUSquare) {
	sc.sweep.targetPeriod = state.SweepTargetPeriod
	sc.period = state.RealPeriod
	sc.timer.setState(&state.Timer)
	sc.envelope.setState(&state.Envelope)
	sc.sweep.enabled = state.SweepEnabled
	sc.sweep.period = state.SweepPeriod
	sc.sweep.negate = state.SweepNegate
	sc.sweep.shift = state.SweepShift
	sc.sweep.divider = state.SweepDivider
	sc.sweep.pendingLoad = state.ReloadSweep
	sc.duty = state.Duty
	sc.dutyPos = state.DutyPos
}
