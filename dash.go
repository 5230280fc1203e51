// Package dash runs the instrument cluster: it collects bus frames and radio
// readings, renders the main screen and forwards every snapshot.
package dash

import (
	"context"
	"time"

	"github.com/brutella/can"
	"github.com/jd3nn1s/dash/config"
	"github.com/jd3nn1s/dash/dashcan"
	"github.com/jd3nn1s/dash/render"
	"github.com/jd3nn1s/dash/telemetry"
	"github.com/jd3nn1s/dash/victron"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

const (
	frameBufferSize  = 256
	updateBufferSize = 16

	// TickInterval is the render rate.
	TickInterval = time.Second / 60
	// BlinkInterval is the half period of the warning outline blink.
	BlinkInterval = 500 * time.Millisecond
)

type Dash struct {
	frames  chan can.Frame
	updates chan telemetry.Update

	regs     *telemetry.Registers
	readings telemetry.Readings
	snapshot telemetry.Snapshot
	decoder  *dashcan.Decoder
	regen    *dashcan.RegenTracker

	canDevice    string
	radio        *victron.Decoder
	radioEnabled bool
	radioConnect ScannerConnect
	staleAfter   time.Duration

	canvas     render.Canvas
	engine     *render.Engine
	layouts    []render.Layout
	screen     int
	needStatic bool

	forwarders []Forwarder
	testMode   bool

	// set by Start
	ctx          context.Context
	radioRunning bool
}

// NewDash builds a cluster from a validated configuration.
func NewDash(cfg config.Config, canvas render.Canvas) (*Dash, error) {
	sys, err := cfg.UnitSystem()
	if err != nil {
		return nil, err
	}
	layouts, err := cfg.Layouts()
	if err != nil {
		return nil, err
	}
	warn, err := cfg.Thresholds()
	if err != nil {
		return nil, err
	}
	peers, err := cfg.Peers()
	if err != nil {
		return nil, err
	}

	regs := telemetry.NewRegisters()
	d := &Dash{
		frames:       make(chan can.Frame, frameBufferSize),
		updates:      make(chan telemetry.Update, updateBufferSize),
		regs:         regs,
		readings:     telemetry.NewReadings(),
		snapshot:     telemetry.NewSnapshot(),
		decoder:      dashcan.NewDecoder(regs, dashcan.WithSootDivisor(cfg.CAN.SootDivisor)),
		regen:        dashcan.NewRegenTracker(),
		canDevice:    cfg.CAN.Device,
		radio:        victron.NewDecoder(peers),
		radioEnabled: cfg.Victron.Enabled,
		staleAfter:   cfg.StaleAfter(),
		canvas:       canvas,
		engine:       render.NewEngine(canvas, sys, warn),
		layouts:      layouts,
		needStatic:   true,
	}
	if err := d.SetScreen(cfg.Screen); err != nil {
		return nil, err
	}
	return d, nil
}

func (d *Dash) AddForwarder(fwd Forwarder) {
	d.forwarders = append(d.forwarders, fwd)
}

// SetTestMode replaces the bus and the radio with generated data.
func (d *Dash) SetTestMode(enabled bool) {
	d.testMode = enabled
}

// SetScanner sets how the radio adapter is opened.
func (d *Dash) SetScanner(connect ScannerConnect) {
	d.radioConnect = connect
}

// SetRadioEnabled turns radio readings on or off. Turning them off clears
// every reading on the next tick. Turning them on after Start launches the
// scanner if it is not running yet.
func (d *Dash) SetRadioEnabled(enabled bool) {
	d.radioEnabled = enabled
	if enabled && d.ctx != nil && !d.testMode {
		d.startRadio()
	}
}

// SetScreen selects the active layout. The screen is redrawn in full on the
// next tick.
func (d *Dash) SetScreen(i int) error {
	if i < 0 || i >= len(d.layouts) {
		return errors.Errorf("screen %d out of range", i)
	}
	d.screen = i
	d.needStatic = true
	return nil
}

// NextScreen cycles to the following layout.
func (d *Dash) NextScreen() {
	_ = d.SetScreen((d.screen + 1) % len(d.layouts))
}

func (d *Dash) Screen() int {
	return d.screen
}

// Snapshot is the state rendered by the last tick.
func (d *Dash) Snapshot() *telemetry.Snapshot {
	return &d.snapshot
}

func (d *Dash) Title() string {
	return d.engine.Title()
}

// Start launches the frame and radio producers. They stop with ctx.
func (d *Dash) Start(ctx context.Context) {
	d.ctx = ctx
	if d.testMode {
		d.runTestMode(ctx)
		return
	}
	go runCAN(ctx, d.canDevice, d.frames)
	if d.radioEnabled {
		d.startRadio()
	}
}

// startRadio launches the scanner once. Disabling the radio later leaves it
// running, the readings are dropped by the sweep instead.
func (d *Dash) startRadio() {
	if d.radioRunning {
		return
	}
	d.radioRunning = true
	go runRadio(d.ctx, &radio{
		connect:  d.radioConnect,
		decode:   d.radio.Decode,
		sendChan: d.updates,
	})
}

// Run ticks at TickInterval until ctx is cancelled.
func (d *Dash) Run(ctx context.Context) error {
	ticker := time.NewTicker(TickInterval)
	defer ticker.Stop()
	for {
		select {
		case now := <-ticker.C:
			d.Tick(now)
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Tick consumes pending frames and radio updates, renders one frame and
// forwards the resulting snapshot.
func (d *Dash) Tick(now time.Time) {
	d.CheckChannels()
	d.readings.Sweep(now, d.staleAfter, d.radioEnabled)
	regen := d.regen.Update(d.regs.RegenPct, now)

	d.snapshot.Registers = *d.regs
	d.snapshot.Readings = d.readings

	layout := d.layouts[d.screen]
	if d.needStatic {
		d.engine.RenderStatic(layout)
		d.needStatic = false
	}
	d.engine.Render(render.Frame{
		Snapshot: &d.snapshot,
		Layout:   layout,
		Regen:    regen,
		BlinkOn:  blinkOn(now),
		Now:      now,
	})
	if p, ok := d.canvas.(presenter); ok {
		if err := p.Present(); err != nil {
			log.WithField("err", err).Warn("unable to present frame")
		}
	}

	for _, fwd := range d.forwarders {
		if err := fwd.Forward(&d.snapshot); err != nil {
			log.WithField("err", err).Error("unable to forward telemetry")
		}
	}
}

// CheckChannels drains at most one buffer's worth of frames and updates.
// It reports whether anything was applied.
func (d *Dash) CheckChannels() (changed bool) {
	for i := 0; i < frameBufferSize; i++ {
		select {
		case frame := <-d.frames:
			d.decoder.Decode(frame)
			changed = true
			continue
		default:
		}
		break
	}
	for i := 0; i < updateBufferSize; i++ {
		select {
		case u := <-d.updates:
			d.readings.Apply(u)
			changed = true
			continue
		default:
		}
		break
	}
	return changed
}

func blinkOn(now time.Time) bool {
	return (now.UnixMilli()/BlinkInterval.Milliseconds())%2 == 0
}
