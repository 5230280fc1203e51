// Package render keeps a cache of what is on screen and issues the smallest
// set of draw calls needed to bring the display up to date.
package render

import "image/color"

// Rect is a screen rectangle in pixels.
type Rect struct {
	X, Y, W, H int16
}

// Contains reports whether o lies completely inside r.
func (r Rect) Contains(o Rect) bool {
	return o.X >= r.X && o.Y >= r.Y && o.X+o.W <= r.X+r.W && o.Y+o.H <= r.Y+r.H
}

type Font uint8

const (
	FontSmall Font = iota
	FontLarge
)

// Canvas receives draw intents. Text y is the baseline.
type Canvas interface {
	Clear(r Rect, c color.RGBA)
	Fill(r Rect, c color.RGBA)
	Text(x, y int16, f Font, s string, c color.RGBA)
	TextWidth(f Font, s string) int16
}

// Screen geometry for a 320x240 panel.
const (
	ScreenW = 320
	ScreenH = 240

	AppBarH = 34

	CellW   = 152
	CellH   = 70
	cellGap = 8
	gridY   = 40

	BarX = 10
	BarY = 206
	BarW = 300
	BarH = 26

	cellLabelH   = 24
	warnOutlineW = 3
)

// CellRect returns the rectangle of cell i in the 2x2 grid.
func CellRect(i int) Rect {
	col, row := int16(i%2), int16(i/2)
	return Rect{
		X: cellGap + col*(CellW+cellGap),
		Y: gridY + row*(CellH+6),
		W: CellW,
		H: CellH,
	}
}

func cellLabelRect(p Rect) Rect {
	return Rect{X: p.X + 6, Y: p.Y + 4, W: p.W - 12, H: cellLabelH}
}

func cellValueRect(p Rect) Rect {
	return Rect{X: p.X + 6, Y: p.Y + 4 + cellLabelH, W: p.W - 12, H: p.H - 8 - cellLabelH}
}

func barInner() Rect {
	return Rect{X: BarX + 2, Y: BarY + 2, W: BarW - 4, H: BarH - 4}
}

// stroke draws a rectangle outline of width w as four filled strips.
func stroke(c Canvas, r Rect, w int16, col color.RGBA) {
	c.Fill(Rect{X: r.X, Y: r.Y, W: r.W, H: w}, col)
	c.Fill(Rect{X: r.X, Y: r.Y + r.H - w, W: r.W, H: w}, col)
	c.Fill(Rect{X: r.X, Y: r.Y + w, W: w, H: r.H - 2*w}, col)
	c.Fill(Rect{X: r.X + r.W - w, Y: r.Y + w, W: w, H: r.H - 2*w}, col)
}
