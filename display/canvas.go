package display

import (
	"image/color"

	"github.com/jd3nn1s/dash/render"
	log "github.com/sirupsen/logrus"
	"tinygo.org/x/drivers"
	"tinygo.org/x/tinyfont"
	"tinygo.org/x/tinyfont/freesans"
	"tinygo.org/x/tinyfont/proggy"
)

// Target is a display that can also fill rectangles in one call.
type Target interface {
	drivers.Displayer
	FillRectangle(x, y, width, height int16, c color.RGBA) error
}

// Canvas draws render intents onto a Target.
type Canvas struct {
	d     Target
	fonts [2]tinyfont.Fonter
}

func NewCanvas(d Target) *Canvas {
	return &Canvas{
		d: d,
		fonts: [2]tinyfont.Fonter{
			render.FontSmall: &proggy.TinySZ8pt7b,
			render.FontLarge: &freesans.Regular12pt7b,
		},
	}
}

func (c *Canvas) font(f render.Font) tinyfont.Fonter {
	if int(f) >= len(c.fonts) {
		return c.fonts[render.FontSmall]
	}
	return c.fonts[f]
}

func (c *Canvas) Clear(r render.Rect, col color.RGBA) {
	c.Fill(r, col)
}

func (c *Canvas) Fill(r render.Rect, col color.RGBA) {
	if err := c.d.FillRectangle(r.X, r.Y, r.W, r.H, col); err != nil {
		log.WithField("err", err).Debug("fill failed")
	}
}

func (c *Canvas) Text(x, y int16, f render.Font, s string, col color.RGBA) {
	tinyfont.WriteLine(c.d, c.font(f), x, y, s, col)
}

func (c *Canvas) TextWidth(f render.Font, s string) int16 {
	_, outbox := tinyfont.LineWidth(c.font(f), s)
	return int16(outbox)
}

// Present pushes the drawn frame to the panel.
func (c *Canvas) Present() error {
	return c.d.Display()
}
