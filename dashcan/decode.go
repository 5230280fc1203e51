package dashcan

import (
	"math"

	"github.com/brutella/can"
	"github.com/jd3nn1s/dash/bitfield"
	"github.com/jd3nn1s/dash/telemetry"
	log "github.com/sirupsen/logrus"
)

type frameHandler func(d *Decoder, data []byte)

// Decoder writes the signals of known frames into a register set. Every
// handler checks the payload length per field, so a short frame updates the
// fields it carries and leaves the rest alone.
type Decoder struct {
	regs        *telemetry.Registers
	lock        *LockTracker
	sootDivisor float64
	handlers    map[uint32]frameHandler
}

type DecoderOption func(d *Decoder)

// WithSootDivisor overrides DefaultSootDivisor.
func WithSootDivisor(div float64) DecoderOption {
	return func(d *Decoder) {
		if div > 0 {
			d.sootDivisor = div
		}
	}
}

func NewDecoder(regs *telemetry.Registers, opts ...DecoderOption) *Decoder {
	d := &Decoder{
		regs:        regs,
		lock:        NewLockTracker(),
		sootDivisor: DefaultSootDivisor,
		handlers: map[uint32]frameHandler{
			FrameSpeed:      decodeSpeed,
			FrameRPMPedal:   decodeRPMPedal,
			FrameTransTemp:  decodeTransTemp,
			FrameGearLock:   decodeGearLock,
			FrameBattV:      decodeBattV,
			FrameCoolantEtc: decodeCoolantEtc,
			FrameTorque:     decodeTorque,
			FrameSoot:       decodeSoot,
			FrameRegenEGT2:  decodeRegenEGT2,
			FrameEGT1:       decodeEGT1,
			FrameBoost:      decodeBoost,
			FrameManifoldT:  decodeManifoldTurboOut,
			FrameLambda:     decodeLambda,
			FrameActuator:   decodeActuator,
			FrameHeadlights: decodeHeadlights,
		},
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// LockTracker exposes the tracker so it can be reset with the registers.
func (d *Decoder) LockTracker() *LockTracker {
	return d.lock
}

// Handles reports whether id is a frame the decoder understands.
func (d *Decoder) Handles(id uint32) bool {
	_, ok := d.handlers[id]
	return ok
}

// Decode applies one frame. Unknown identifiers are ignored.
func (d *Decoder) Decode(frame can.Frame) {
	fn, ok := d.handlers[frame.ID]
	if !ok {
		return
	}
	n := int(frame.Length)
	if n > len(frame.Data) {
		n = len(frame.Data)
	}
	log.WithField("canID", frame.ID).
		WithField("length", frame.Length).
		Debug("decoding canbus frame")
	fn(d, frame.Data[:n])
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func decodeSpeed(d *Decoder, data []byte) {
	if raw, ok := bitfield.BE16(data, 1); ok {
		d.regs.Set(telemetry.Speed, float64(raw)/64)
	}
}

func decodeRPMPedal(d *Decoder, data []byte) {
	if raw, ok := bitfield.BE16(data, 0); ok {
		d.regs.Set(telemetry.RPM, float64(raw)/8)
	}
	if len(data) >= 3 {
		d.regs.Set(telemetry.Pedal, float64(data[2])/2.5)
	}
	if len(data) >= 5 {
		d.regs.Set(telemetry.TorqueDemand, float64(data[4])/2.55)
	}
}

func decodeTransTemp(d *Decoder, data []byte) {
	if len(data) >= 3 {
		d.regs.Set(telemetry.Trans1, float64(data[2])-tempOffset)
	}
	if len(data) >= 4 {
		d.regs.Set(telemetry.Trans2, float64(data[3])-tempOffset)
	}
}

func decodeGearLock(d *Decoder, data []byte) {
	if len(data) >= 2 {
		state, locked := d.lock.Update(data[1])
		d.regs.Lock = state
		d.regs.Locked = locked
		d.regs.Set(telemetry.Lockup, boolValue(locked))
	}
	if len(data) >= 3 {
		d.regs.Set(telemetry.Gear, float64(GearFromCode(data[2])))
	}
	if len(data) >= 1 {
		d.regs.TargetGear = GearFromCode(data[0])
	}
}

func decodeBattV(d *Decoder, data []byte) {
	if len(data) >= 1 {
		d.regs.Set(telemetry.BattV, float64(data[0])*0.1)
	}
}

func decodeCoolantEtc(d *Decoder, data []byte) {
	if len(data) >= 1 {
		d.regs.Set(telemetry.Coolant, float64(data[0])-tempOffset)
	}
	if len(data) >= 2 {
		d.regs.Set(telemetry.IntakeTemp, float64(data[1])-tempOffset)
	}
	if len(data) >= 3 {
		d.regs.Set(telemetry.FuelTemp, float64(data[2])-tempOffset)
	}
}

func decodeTorque(d *Decoder, data []byte) {
	raw, ok := bitfield.BE16(data, 0)
	if !ok {
		return
	}
	nm := torqueScale * (float64(raw) - torqueOffset)
	if nm < minTorqueNm {
		nm = minTorqueNm
	}
	d.regs.Set(telemetry.Torque, nm)
}

func decodeSoot(d *Decoder, data []byte) {
	if raw, ok := bitfield.BE16(data, 4); ok {
		d.regs.Set(telemetry.Soot, clamp(float64(raw)/d.sootDivisor, 0, 100))
	}
}

func decodeRegenEGT2(d *Decoder, data []byte) {
	if len(data) >= 1 {
		d.regs.Set(telemetry.EGT2, float64(data[0])*10)
	}
	if len(data) >= 7 {
		raw, _ := bitfield.BE16(data, 5)
		if raw == 0 {
			d.regs.RegenPct = 0
		} else {
			d.regs.RegenPct = clamp(float64(raw)*100/regenRawMax, 0, 100)
		}
	}
}

// EGT1 is a 10 bit magnitude: the low two bits of byte 4 are the high bits,
// byte 5 the low byte.
func decodeEGT1(d *Decoder, data []byte) {
	hi, ok := bitfield.Uint(data, 4*8, 2)
	if !ok {
		return
	}
	lo, ok := bitfield.Uint(data, 5*8, 8)
	if !ok {
		return
	}
	d.regs.Set(telemetry.EGT1, float64(hi<<8|lo))
}

func decodeBoost(d *Decoder, data []byte) {
	if len(data) >= 4 {
		abs := float64(data[3]) * 2
		d.regs.Set(telemetry.Boost, clamp(abs-atmosphereKPa, 0, maxBoostKPa))
	}
}

func decodeManifoldTurboOut(d *Decoder, data []byte) {
	if len(data) >= 2 {
		d.regs.Set(telemetry.TurboOut, float64(data[1])-tempOffset)
	}
	if len(data) >= 8 {
		d.regs.Set(telemetry.Manifold, float64(data[7])-tempOffset)
	}
}

func decodeLambda(d *Decoder, data []byte) {
	if raw, ok := bitfield.BE16(data, 1); ok {
		d.regs.Set(telemetry.Lambda, float64(raw)/1000)
	}
}

func decodeActuator(d *Decoder, data []byte) {
	if len(data) >= 4 {
		d.regs.Set(telemetry.Actuator, float64(data[3]))
	}
}

func decodeHeadlights(d *Decoder, data []byte) {
	if len(data) >= 2 {
		d.regs.Set(telemetry.Headlights, boolValue(data[1] == headlightsOnCode))
	}
}

func boolValue(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
