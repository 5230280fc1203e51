package render

import (
	"image/color"
	"math"
	"testing"
	"time"

	"github.com/jd3nn1s/dash/telemetry"
	"github.com/jd3nn1s/dash/units"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type drawOp struct {
	kind string
	r    Rect
	x, y int16
	text string
	c    color.RGBA
}

type recorder struct {
	ops []drawOp
}

func (r *recorder) Clear(rect Rect, c color.RGBA) {
	r.ops = append(r.ops, drawOp{kind: "clear", r: rect, c: c})
}

func (r *recorder) Fill(rect Rect, c color.RGBA) {
	r.ops = append(r.ops, drawOp{kind: "fill", r: rect, c: c})
}

func (r *recorder) Text(x, y int16, f Font, s string, c color.RGBA) {
	r.ops = append(r.ops, drawOp{kind: "text", x: x, y: y, text: s, c: c})
}

func (r *recorder) TextWidth(f Font, s string) int16 {
	return int16(len(s) * 6)
}

func (r *recorder) reset() {
	r.ops = nil
}

// textsIn returns the strings drawn inside area.
func (r *recorder) textsIn(area Rect) []string {
	var out []string
	for _, op := range r.ops {
		if op.kind == "text" && area.Contains(Rect{X: op.x, Y: op.y}) {
			out = append(out, op.text)
		}
	}
	return out
}

var (
	appBar    = Rect{W: ScreenW, H: AppBarH + 1}
	testStart = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
)

type fixture struct {
	engine *Engine
	canvas *recorder
	snap   *telemetry.Snapshot
	frame  Frame
	warn   Thresholds
}

func newFixture() *fixture {
	snap := telemetry.NewSnapshot()
	snap.Registers.Set(telemetry.Coolant, 90)
	snap.Registers.Set(telemetry.Boost, 100)
	snap.Registers.Set(telemetry.Soot, 50)
	snap.Registers.Set(telemetry.Gear, 3)
	snap.Registers.TargetGear = 3

	rec := &recorder{}
	fx := &fixture{
		engine: NewEngine(rec, units.Metric(), Thresholds{}),
		canvas: rec,
		snap:   &snap,
	}
	fx.frame = Frame{
		Snapshot: fx.snap,
		Layout: Layout{
			Cells: [CellCount]telemetry.Channel{telemetry.Coolant, telemetry.Gear, telemetry.Lockup, telemetry.Boost},
			Bar:   telemetry.Soot,
		},
		BlinkOn: true,
		Now:     testStart,
	}
	fx.engine.RenderStatic(fx.frame.Layout)
	fx.engine.Render(fx.frame)
	rec.reset()
	return fx
}

func (fx *fixture) setWarn(ch telemetry.Channel, th Threshold) {
	fx.warn[ch] = th
	fx.engine.SetThresholds(fx.warn)
}

func (fx *fixture) render() {
	fx.canvas.reset()
	fx.engine.Render(fx.frame)
}

func TestStaticThenFirstRenderDrawsValues(t *testing.T) {
	rec := &recorder{}
	fx := newFixture()
	fx.engine = NewEngine(rec, units.Metric(), Thresholds{})
	fx.canvas = rec

	fx.engine.RenderStatic(fx.frame.Layout)
	assert.Equal(t, []string{"Coolant"}, rec.textsIn(CellRect(0)))
	assert.Equal(t, []string{"Boost"}, rec.textsIn(CellRect(3)))

	fx.render()
	assert.Equal(t, []string{"90", "C"}, rec.textsIn(CellRect(0)))
	assert.Equal(t, []string{"3"}, rec.textsIn(CellRect(1)))
	assert.Equal(t, []string{"--"}, rec.textsIn(CellRect(2)))
	assert.Equal(t, []string{"100", "kPa"}, rec.textsIn(CellRect(3)))
	assert.Equal(t, "Soot", fx.engine.Title())
}

func TestRepeatTickIsQuiet(t *testing.T) {
	fx := newFixture()
	fx.render()
	assert.Empty(t, fx.canvas.ops)

	// below display resolution
	fx.snap.Registers.Set(telemetry.Coolant, 90.2)
	fx.render()
	assert.Empty(t, fx.canvas.ops)
}

func TestValueChangeRedrawsOnlyThatCell(t *testing.T) {
	fx := newFixture()
	fx.snap.Registers.Set(telemetry.Coolant, 95)
	fx.render()

	assert.Equal(t, []string{"95", "C"}, fx.canvas.textsIn(CellRect(0)))
	for _, op := range fx.canvas.ops {
		assert.True(t, CellRect(0).Contains(op.r) || op.kind == "text", "%+v", op)
	}
}

func TestWarnLevelChangeRedrawsOutlineOnly(t *testing.T) {
	fx := newFixture()
	fx.setWarn(telemetry.Coolant, Threshold{Mode: WarnHigh, Warn: 80, Crit: 100})
	fx.render()

	var outline int
	for _, op := range fx.canvas.ops {
		if appBar.Contains(op.r) && op.kind != "text" {
			continue
		}
		if op.kind == "text" {
			assert.True(t, appBar.Contains(Rect{X: op.x, Y: op.y}), "%+v", op)
			continue
		}
		require.Equal(t, "fill", op.kind)
		assert.True(t, CellRect(0).Contains(op.r))
		assert.Equal(t, DefaultPalette.Warn, op.c)
		outline++
	}
	assert.Equal(t, 4, outline)
	assert.Empty(t, fx.canvas.textsIn(CellRect(0)))
	assert.Equal(t, "WARNING: Coolant 90 C", fx.engine.Title())
}

func TestCellChannelChangeKeepsWarnOutline(t *testing.T) {
	fx := newFixture()
	fx.setWarn(telemetry.Coolant, Threshold{Mode: WarnHigh, Warn: 80, Crit: 100})
	fx.setWarn(telemetry.Soot, Threshold{Mode: WarnHigh, Warn: 40, Crit: 60})
	fx.render()

	// same warning level on the new channel, blink stays on
	fx.frame.Layout.Cells[0] = telemetry.Soot
	fx.render()

	var outline int
	for _, op := range fx.canvas.ops {
		if op.kind == "fill" && op.c == DefaultPalette.Warn && CellRect(0).Contains(op.r) {
			outline++
		}
	}
	assert.Equal(t, 4, outline)
	assert.Equal(t, []string{"Soot", "50", "%"}, fx.canvas.textsIn(CellRect(0)))
}

func TestBlinkToggleRestoresFrames(t *testing.T) {
	fx := newFixture()
	fx.setWarn(telemetry.Boost, Threshold{Mode: WarnHigh, Warn: 50, Crit: 80})
	fx.render()

	fx.frame.BlinkOn = false
	fx.render()
	assert.Empty(t, fx.canvas.textsIn(CellRect(3)))
	var crit int
	for _, op := range fx.canvas.ops {
		if op.c == DefaultPalette.Crit {
			crit++
		}
	}
	assert.Zero(t, crit)

	fx.frame.BlinkOn = true
	fx.render()
	for _, op := range fx.canvas.ops {
		if op.c == DefaultPalette.Crit {
			crit++
			assert.True(t, CellRect(3).Contains(op.r))
		}
	}
	assert.Equal(t, 4, crit)
}

func TestBarDelta(t *testing.T) {
	fx := newFixture()
	in := barInner()
	require.Equal(t, int16(148), fx.engine.bar.fillW)

	fx.snap.Registers.Set(telemetry.Soot, 75)
	fx.render()
	assert.Equal(t, []drawOp{{
		kind: "fill",
		r:    Rect{X: in.X + 148, Y: in.Y, W: 222 - 148, H: in.H},
		c:    DefaultPalette.BarFill,
	}}, fx.canvas.ops)

	fx.snap.Registers.Set(telemetry.Soot, 25)
	fx.render()
	assert.Equal(t, []drawOp{{
		kind: "fill",
		r:    Rect{X: in.X + 74, Y: in.Y, W: 222 - 74, H: in.H},
		c:    DefaultPalette.Card,
	}}, fx.canvas.ops)
}

func TestBarColorChangeRepaintsFill(t *testing.T) {
	fx := newFixture()
	in := barInner()
	fx.setWarn(telemetry.Soot, Threshold{Mode: WarnHigh, Warn: 60, Crit: 90})
	fx.snap.Registers.Set(telemetry.Soot, 70)
	fx.render()

	var bar []drawOp
	for _, op := range fx.canvas.ops {
		if in.Contains(op.r) {
			bar = append(bar, op)
		}
	}
	assert.Equal(t, []drawOp{
		{kind: "fill", r: Rect{X: in.X + 148, Y: in.Y, W: 207 - 148, H: in.H}, c: DefaultPalette.Warn},
		{kind: "fill", r: Rect{X: in.X, Y: in.Y, W: 207, H: in.H}, c: DefaultPalette.Warn},
	}, bar)
}

func TestBarChannelChangeRedrawsFully(t *testing.T) {
	fx := newFixture()
	fx.frame.Layout.Bar = telemetry.Boost
	fx.render()

	assert.Contains(t, fx.canvas.ops, drawOp{kind: "fill", r: barInner(), c: DefaultPalette.Card})
	assert.Equal(t, "Boost", fx.engine.Title())
	assert.Equal(t, BarFillWidth(100, 0, 250, barInner().W), fx.engine.bar.fillW)
}

func TestBarUnavailableIsEmpty(t *testing.T) {
	fx := newFixture()
	fx.snap.Registers.Set(telemetry.Soot, telemetry.Unavailable)
	fx.render()
	assert.Equal(t, int16(0), fx.engine.bar.fillW)
}

func TestGearRedrawsOnTargetChange(t *testing.T) {
	fx := newFixture()
	fx.snap.Registers.TargetGear = 4
	fx.render()
	assert.Equal(t, []string{"3>4"}, fx.canvas.textsIn(CellRect(1)))

	fx.snap.Registers.Set(telemetry.Gear, 4)
	fx.render()
	assert.Equal(t, []string{"4"}, fx.canvas.textsIn(CellRect(1)))

	fx.render()
	assert.Empty(t, fx.canvas.ops)

	fx.snap.Registers.Set(telemetry.Gear, -3)
	fx.snap.Registers.TargetGear = -3
	fx.render()
	assert.Equal(t, []string{"P"}, fx.canvas.textsIn(CellRect(1)))
}

func TestLockCell(t *testing.T) {
	fx := newFixture()
	fx.snap.Registers.Set(telemetry.Lockup, 1)
	fx.snap.Registers.Lock = telemetry.LockFull
	fx.render()

	var found bool
	for _, op := range fx.canvas.ops {
		if op.kind == "text" && op.text == telemetry.LockFull.String() {
			found = true
			assert.Equal(t, DefaultPalette.OK, op.c)
		}
	}
	assert.True(t, found)

	fx.snap.Registers.Set(telemetry.Lockup, 0)
	fx.snap.Registers.Lock = telemetry.LockReleasing
	fx.render()
	assert.Equal(t, []string{telemetry.LockReleasing.String()}, fx.canvas.textsIn(CellRect(2)))
}

func TestCellChannelChangeRedrawsLabel(t *testing.T) {
	fx := newFixture()
	fx.snap.Registers.Set(telemetry.RPM, 2100)
	fx.frame.Layout.Cells[3] = telemetry.RPM
	fx.render()
	assert.Equal(t, []string{"RPM", "2100", "rpm"}, fx.canvas.textsIn(CellRect(3)))
}

func TestUnavailableRendersDashes(t *testing.T) {
	fx := newFixture()
	fx.snap.Registers.Set(telemetry.Coolant, math.NaN())
	fx.render()
	assert.Equal(t, []string{"--"}, fx.canvas.textsIn(CellRect(0)))
}

func TestBannerRotation(t *testing.T) {
	fx := newFixture()
	fx.setWarn(telemetry.Coolant, Threshold{Mode: WarnHigh, Warn: 100, Crit: 110})
	fx.setWarn(telemetry.EGT1, Threshold{Mode: WarnHigh, Warn: 600, Crit: 700})
	fx.setWarn(telemetry.IntakeTemp, Threshold{Mode: WarnHigh, Warn: 50, Crit: 70})
	fx.snap.Registers.Set(telemetry.Coolant, 115)
	fx.snap.Registers.Set(telemetry.EGT1, 650)

	at := func(ms int) {
		fx.frame.Now = testStart.Add(time.Duration(ms) * time.Millisecond)
		fx.render()
	}

	at(0)
	assert.Equal(t, "WARNING: Coolant 115 C", fx.engine.Title())

	at(1000)
	assert.Equal(t, "WARNING: Coolant 115 C", fx.engine.Title())
	assert.Empty(t, fx.canvas.textsIn(appBar))

	at(1500)
	assert.Equal(t, "WARNING: EGT 1 650 C", fx.engine.Title())

	// set changes: back to the first entry at once
	fx.snap.Registers.Set(telemetry.IntakeTemp, 60)
	at(1600)
	assert.Equal(t, "WARNING: Coolant 115 C", fx.engine.Title())

	at(2000)
	assert.Equal(t, "WARNING: Coolant 115 C", fx.engine.Title())

	at(3100)
	assert.Equal(t, "WARNING: EGT 1 650 C", fx.engine.Title())

	at(4600)
	assert.Equal(t, "WARNING: Intake 60 C", fx.engine.Title())

	at(6100)
	assert.Equal(t, "WARNING: Coolant 115 C", fx.engine.Title())
}

func TestBannerColors(t *testing.T) {
	fx := newFixture()
	fx.setWarn(telemetry.Coolant, Threshold{Mode: WarnHigh, Warn: 80, Crit: 85})
	fx.render()
	for _, op := range fx.canvas.ops {
		if op.kind == "text" && appBar.Contains(Rect{X: op.x, Y: op.y}) {
			assert.Equal(t, DefaultPalette.Crit, op.c)
		}
	}
}

func TestRegenBanner(t *testing.T) {
	fx := newFixture()
	fx.frame.Regen = telemetry.RegenActive
	fx.render()
	assert.Equal(t, "REGEN ACTIVE", fx.engine.Title())

	fx.frame.Regen = telemetry.RegenPaused
	fx.render()
	assert.Equal(t, "REGEN INCOMPLETE", fx.engine.Title())

	fx.frame.Regen = telemetry.RegenIdle
	fx.render()
	assert.Equal(t, "Soot", fx.engine.Title())

	// warnings win over regen
	fx.frame.Regen = telemetry.RegenActive
	fx.setWarn(telemetry.Boost, Threshold{Mode: WarnHigh, Warn: 50, Crit: 200})
	fx.render()
	assert.Equal(t, "WARNING: Boost 100 kPa", fx.engine.Title())
}

func TestRenderStaticResetsCache(t *testing.T) {
	fx := newFixture()
	fx.engine.RenderStatic(fx.frame.Layout)
	fx.render()
	assert.Equal(t, []string{"90", "C"}, fx.canvas.textsIn(CellRect(0)))
	assert.Equal(t, "Soot", fx.engine.Title())
	assert.Contains(t, fx.canvas.ops, drawOp{kind: "fill", r: barInner(), c: DefaultPalette.Card})
}

func TestThresholdLevel(t *testing.T) {
	high := Threshold{Mode: WarnHigh, Warn: 100, Crit: 110}
	low := Threshold{Mode: WarnLow, Warn: 12, Crit: 11.5}

	tests := []struct {
		th   Threshold
		v    float64
		want Level
	}{
		{high, 99, LevelNone},
		{high, 100, LevelLow},
		{high, 110, LevelHigh},
		{high, math.NaN(), LevelNone},
		{low, 12.5, LevelNone},
		{low, 12, LevelLow},
		{low, 11, LevelHigh},
		{Threshold{Warn: 1, Crit: 2}, 5, LevelNone},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.th.Level(tt.v), "%+v %v", tt.th, tt.v)
	}
}

func TestFormatting(t *testing.T) {
	assert.Equal(t, "--", FormatValue(math.NaN(), 1))
	assert.Equal(t, "13.20", FormatValue(13.2, 2))
	assert.Equal(t, int64(1320), ValueKey(13.2, 2))
	assert.NotEqual(t, int64(keyNever), ValueKey(math.NaN(), 0))

	assert.Equal(t, "N", ShiftText(-1, 2))
	assert.Equal(t, "--", ShiftText(0, 0))
	assert.Equal(t, "2>3", ShiftText(2, 3))
	assert.Equal(t, "R", GearText(-2))

	w, err := ParseWarnMode("LOW")
	require.NoError(t, err)
	assert.Equal(t, WarnLow, w)
	_, err = ParseWarnMode("sideways")
	assert.Error(t, err)
}
