package render

import (
	"image/color"
	"time"

	"github.com/jd3nn1s/dash/telemetry"
	"github.com/jd3nn1s/dash/units"
	log "github.com/sirupsen/logrus"
)

const CellCount = 4

// BannerInterval is how long each warning stays in the title bar.
const BannerInterval = 1500 * time.Millisecond

// Layout assigns channels to the four cells and the bar.
type Layout struct {
	Cells [CellCount]telemetry.Channel
	Bar   telemetry.Channel
}

// Frame is everything one render tick looks at.
type Frame struct {
	Snapshot *telemetry.Snapshot
	Layout   Layout
	Regen    telemetry.RegenState
	BlinkOn  bool
	Now      time.Time
}

type cellCache struct {
	ch     telemetry.Channel
	key    int64
	target int
	level  Level
}

type barCache struct {
	ch    telemetry.Channel
	fillW int16
	color color.RGBA
}

type banner struct {
	sig   warnSet
	index int
	last  time.Time
}

type title struct {
	text  string
	color color.RGBA
}

// Engine draws the main screen differentially. It is not safe for
// concurrent use.
type Engine struct {
	canvas  Canvas
	units   units.System
	warn    Thresholds
	palette Palette

	cells     [CellCount]cellCache
	bar       barCache
	banner    banner
	title     title
	lastBlink bool
}

func NewEngine(canvas Canvas, sys units.System, warn Thresholds) *Engine {
	e := &Engine{
		canvas:    canvas,
		units:     sys,
		warn:      warn,
		palette:   DefaultPalette,
		lastBlink: true,
	}
	e.resetCache()
	return e
}

// SetPalette changes colors. A static redraw is needed to apply it.
func (e *Engine) SetPalette(p Palette) {
	e.palette = p
}

// SetUnits changes the unit system. A static redraw is needed to apply it.
func (e *Engine) SetUnits(sys units.System) {
	e.units = sys
}

func (e *Engine) SetThresholds(warn Thresholds) {
	e.warn = warn
}

// Title returns the text currently shown in the title bar.
func (e *Engine) Title() string {
	return e.title.text
}

func (e *Engine) resetCache() {
	for i := range e.cells {
		e.cells[i] = cellCache{ch: telemetry.NoChannel, key: keyNever, target: targetNever}
	}
	e.bar = barCache{ch: telemetry.NoChannel, fillW: -1}
	e.title = title{}
}

// RenderStatic draws the screen background, cell frames, labels and the bar
// frame for layout, and forgets everything that was drawn before.
func (e *Engine) RenderStatic(layout Layout) {
	e.resetCache()
	e.canvas.Clear(Rect{W: ScreenW, H: ScreenH}, e.palette.BG)
	for i, ch := range layout.Cells {
		p := CellRect(i)
		e.canvas.Fill(p, e.palette.Card)
		e.drawCellFrame(p)
		e.drawCellLabel(p, ch)
		e.cells[i].ch = ch
	}
	e.drawBarStatic(layout.Bar)
}

// Render performs one differential tick.
func (e *Engine) Render(f Frame) {
	snap := f.Snapshot
	for i, ch := range f.Layout.Cells {
		e.renderCell(i, ch, snap)
	}
	e.renderBar(f.Layout.Bar, snap)
	e.renderTitle(f)
	e.renderOutlines(f)
}

func (e *Engine) renderCell(i int, ch telemetry.Channel, snap *telemetry.Snapshot) {
	p := CellRect(i)
	c := &e.cells[i]
	if ch != c.ch {
		log.WithField("cell", i).WithField("channel", ch).Debug("cell channel changed")
		e.canvas.Clear(cellLabelRect(p), e.palette.Card)
		e.drawCellLabel(p, ch)
		e.drawCellFrame(p)
		c.ch = ch
		c.key = keyNever
		c.target = targetNever
		c.level = LevelNone
	}

	regs := &snap.Registers
	switch ch {
	case telemetry.Gear:
		gear := gearValue(regs.Get(telemetry.Gear))
		key := ValueKey(regs.Get(telemetry.Gear), 0)
		if key == c.key && regs.TargetGear == c.target {
			return
		}
		e.drawCellText(p, ShiftText(gear, regs.TargetGear), "", e.palette.Text)
		c.key = key
		c.target = regs.TargetGear
		return
	case telemetry.Lockup:
		key := int64(keyUnavailable)
		text := unavailableText
		col := e.palette.Text
		if telemetry.IsAvailable(regs.Get(telemetry.Lockup)) {
			key = int64(regs.Lock)
			text = regs.Lock.String()
			col = e.palette.lockColor(regs.Lock)
		}
		if key == c.key {
			return
		}
		e.drawCellText(p, text, "", col)
		c.key = key
		return
	case telemetry.Headlights:
		v := regs.Get(telemetry.Headlights)
		key := ValueKey(v, 0)
		if key == c.key {
			return
		}
		e.drawCellText(p, onOffText(v), "", e.palette.Text)
		c.key = key
		return
	}

	v := e.units.Display(snap, ch)
	dec := e.units.Decimals(ch)
	key := ValueKey(v, dec)
	if key == c.key {
		return
	}
	e.drawCellText(p, FormatValue(v, dec), e.units.Unit(ch), e.palette.Text)
	c.key = key
}

func (e *Engine) drawCellFrame(p Rect) {
	stroke(e.canvas, p, warnOutlineW, e.palette.Card)
	stroke(e.canvas, p, 1, e.palette.Frame)
}

func (e *Engine) drawCellLabel(p Rect, ch telemetry.Channel) {
	e.canvas.Text(p.X+10, p.Y+18, FontSmall, units.Label(ch), e.palette.Ticks)
}

func (e *Engine) drawCellText(p Rect, text, unit string, col color.RGBA) {
	e.canvas.Clear(cellValueRect(p), e.palette.Card)
	x, y := p.X+10, p.Y+p.H-10
	e.canvas.Text(x, y, FontLarge, text, col)
	if unit != "" {
		w := e.canvas.TextWidth(FontLarge, text)
		e.canvas.Text(x+w+4, y, FontSmall, unit, e.palette.Ticks)
	}
}

func (e *Engine) drawBarStatic(ch telemetry.Channel) {
	e.canvas.Fill(Rect{X: BarX - 2, Y: BarY - 2, W: BarW + 4, H: BarH + 4}, e.palette.Card)
	stroke(e.canvas, Rect{X: BarX, Y: BarY, W: BarW, H: BarH}, 1, e.palette.Frame)
	e.canvas.Clear(Rect{X: 0, Y: BarY - 20, W: ScreenW, H: 18}, e.palette.BG)

	min, max := e.barRange(ch)
	dec := e.units.Decimals(ch)
	ticks := []struct {
		v     float64
		align int
	}{{min, -1}, {(min + max) / 2, 0}, {max, 1}}
	for _, t := range ticks {
		s := FormatValue(t.v, dec)
		w := e.canvas.TextWidth(FontSmall, s)
		x := int16(BarX)
		switch t.align {
		case 0:
			x = BarX + BarW/2 - w/2
		case 1:
			x = BarX + BarW - w - 4
		}
		e.canvas.Text(x, BarY-6, FontSmall, s, e.palette.Ticks)
	}
	e.bar.ch = ch
	e.bar.fillW = -1
}

func (e *Engine) barRange(ch telemetry.Channel) (min, max float64) {
	min, max = e.units.Range(ch)
	if max <= min {
		max = min + 1
	}
	return min, max
}

// BarFillWidth is the filled part of the bar for v within [min, max].
func BarFillWidth(v, min, max float64, innerW int16) int16 {
	t := clamp01((v - min) / (max - min))
	w := int16(t*float64(innerW) + 0.5)
	if w < 0 {
		return 0
	}
	if w > innerW {
		return innerW
	}
	return w
}

func clamp01(v float64) float64 {
	switch {
	case !telemetry.IsAvailable(v) || v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}

func (e *Engine) renderBar(ch telemetry.Channel, snap *telemetry.Snapshot) {
	if ch != e.bar.ch {
		log.WithField("channel", ch).Debug("bar channel changed")
		e.drawBarStatic(ch)
	}

	col := e.palette.levelColor(e.warn.Level(snap, ch), e.palette.BarFill)
	min, max := e.barRange(ch)
	in := barInner()
	fillW := BarFillWidth(e.units.Display(snap, ch), min, max, in.W)

	prev := e.bar.fillW
	switch {
	case prev < 0:
		e.canvas.Fill(in, e.palette.Card)
		if fillW > 0 {
			e.canvas.Fill(Rect{X: in.X, Y: in.Y, W: fillW, H: in.H}, col)
		}
	default:
		if fillW > prev {
			e.canvas.Fill(Rect{X: in.X + prev, Y: in.Y, W: fillW - prev, H: in.H}, col)
		} else if fillW < prev {
			e.canvas.Fill(Rect{X: in.X + fillW, Y: in.Y, W: prev - fillW, H: in.H}, e.palette.Card)
		}
		if col != e.bar.color && fillW > 0 {
			e.canvas.Fill(Rect{X: in.X, Y: in.Y, W: fillW, H: in.H}, col)
		}
	}
	e.bar.fillW = fillW
	e.bar.color = col
}

func (e *Engine) renderTitle(f Frame) {
	high, low, sig := e.warn.collect(f.Snapshot)
	if sig != e.banner.sig {
		e.banner = banner{sig: sig, last: f.Now}
	}

	total := len(high) + len(low)
	if total == 0 {
		switch f.Regen {
		case telemetry.RegenPaused:
			e.setTitle("REGEN INCOMPLETE", e.palette.Text)
		case telemetry.RegenActive:
			e.setTitle("REGEN ACTIVE", e.palette.Text)
		default:
			e.setTitle(units.Label(f.Layout.Bar), e.palette.Text)
		}
		return
	}

	if f.Now.Sub(e.banner.last) >= BannerInterval {
		e.banner.last = f.Now
		e.banner.index++
	}
	i := e.banner.index % total
	ch, lvl := telemetry.NoChannel, LevelHigh
	if i < len(high) {
		ch = high[i]
	} else {
		ch, lvl = low[i-len(high)], LevelLow
	}
	e.setTitle("WARNING: "+units.Label(ch)+" "+e.titleValue(f.Snapshot, ch), e.palette.levelColor(lvl, e.palette.Text))
}

func (e *Engine) titleValue(snap *telemetry.Snapshot, ch telemetry.Channel) string {
	v := e.units.Display(snap, ch)
	if !telemetry.IsAvailable(v) {
		return unavailableText
	}
	s := FormatValue(v, e.units.Decimals(ch))
	if u := e.units.Unit(ch); u != "" {
		s += " " + u
	}
	return s
}

func (e *Engine) setTitle(text string, col color.RGBA) {
	if text == e.title.text && col == e.title.color {
		return
	}
	e.title = title{text: text, color: col}
	e.canvas.Clear(Rect{W: ScreenW, H: AppBarH}, e.palette.Card)
	e.canvas.Fill(Rect{Y: AppBarH, W: ScreenW, H: 1}, e.palette.Accent)
	w := e.canvas.TextWidth(FontLarge, text)
	e.canvas.Text((ScreenW-w)/2, 24, FontLarge, text, col)
}

func (e *Engine) renderOutlines(f Frame) {
	blinkChanged := e.lastBlink != f.BlinkOn
	for i, ch := range f.Layout.Cells {
		lvl := e.warn.Level(f.Snapshot, ch)
		c := &e.cells[i]
		if lvl == c.level && !blinkChanged {
			continue
		}
		p := CellRect(i)
		if lvl > LevelNone && f.BlinkOn {
			stroke(e.canvas, p, warnOutlineW, e.palette.levelColor(lvl, e.palette.Frame))
		} else {
			e.drawCellFrame(p)
		}
		c.level = lvl
	}
	e.lastBlink = f.BlinkOn
}
