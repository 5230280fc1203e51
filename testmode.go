package dash

import (
	"context"
	"time"

	"github.com/brutella/can"
	"github.com/jd3nn1s/dash/dashcan"
	"github.com/jd3nn1s/dash/telemetry"
)

func testFrame(id uint32, data ...byte) can.Frame {
	f := can.Frame{ID: id, Length: uint8(len(data))}
	copy(f.Data[:], data)
	return f
}

func be16(v float64) (byte, byte) {
	raw := uint16(v)
	return byte(raw >> 8), byte(raw)
}

// sweep walks v between lo and hi by step, reversing at either end.
type sweep struct {
	v, lo, hi, step float64
	down            bool
}

func (s *sweep) next() float64 {
	if s.down {
		s.v -= s.step
	} else {
		s.v += s.step
	}
	if s.v >= s.hi {
		s.v = s.hi
		s.down = true
	} else if s.v <= s.lo {
		s.v = s.lo
		s.down = false
	}
	return s.v
}

func (d *Dash) sendFrame(ctx context.Context, f can.Frame) bool {
	select {
	case d.frames <- f:
		return true
	case <-ctx.Done():
		return false
	}
}

func (d *Dash) runTestMode(ctx context.Context) {
	go func() {
		speed := sweep{lo: 0, hi: 130, step: 0.5}
		rpm := sweep{lo: 750, hi: 4200, step: 25}
		ticker := time.NewTicker(time.Millisecond * 20)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
			case <-ctx.Done():
				return
			}
			hi, lo := be16(speed.next() * 64)
			if !d.sendFrame(ctx, testFrame(dashcan.FrameSpeed, 0, hi, lo)) {
				return
			}
			hi, lo = be16(rpm.next() * 8)
			if !d.sendFrame(ctx, testFrame(dashcan.FrameRPMPedal, hi, lo, 100, 0, 128)) {
				return
			}
		}
	}()

	go func() {
		coolant := sweep{v: 60, lo: 60, hi: 115, step: 1}
		soot := sweep{lo: 0, hi: 100, step: 2}
		boost := sweep{v: 101, lo: 101, hi: 300, step: 10}
		gear := 0
		ticker := time.NewTicker(time.Millisecond * 250)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
			case <-ctx.Done():
				return
			}
			sootHi, sootLo := be16(soot.next() * dashcan.DefaultSootDivisor)
			gear = (gear + 1) % 6
			frames := []can.Frame{
				testFrame(dashcan.FrameCoolantEtc, byte(coolant.next()+40), 65, 70),
				testFrame(dashcan.FrameTransTemp, 0, 0, 120, 115),
				testFrame(dashcan.FrameSoot, 0, 0, 0, 0, sootHi, sootLo),
				testFrame(dashcan.FrameBoost, 0, 0, 0, byte(boost.next()/2)),
				testFrame(dashcan.FrameBattV, 138),
				testFrame(dashcan.FrameEGT1, 0, 0, 0, 0, 0x02, 0x58),
				testFrame(dashcan.FrameGearLock, byte(127+gear), 0x0C, byte(126+gear)),
			}
			for _, f := range frames {
				if !d.sendFrame(ctx, f) {
					return
				}
			}
		}
	}()

	go func() {
		soc := sweep{v: 100, lo: 20, hi: 100, step: 0.5}
		ticker := time.NewTicker(time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
			case <-ctx.Done():
				return
			}
			u := telemetry.Update{
				Group: telemetry.GroupBattery,
				Values: map[telemetry.Channel]float64{
					telemetry.BattSOC:     soc.next(),
					telemetry.BattCurrent: -4.5,
					telemetry.BattV2:      13.1,
				},
				At: time.Now(),
			}
			select {
			case d.updates <- u:
			case <-ctx.Done():
				return
			}
		}
	}()
}
