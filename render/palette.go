package render

import (
	"image/color"

	"github.com/jd3nn1s/dash/telemetry"
)

type Palette struct {
	BG      color.RGBA
	Card    color.RGBA
	Frame   color.RGBA
	Accent  color.RGBA
	Text    color.RGBA
	Ticks   color.RGBA
	BarFill color.RGBA
	Caution color.RGBA
	Warn    color.RGBA
	Crit    color.RGBA
	OK      color.RGBA
}

var DefaultPalette = Palette{
	BG:      color.RGBA{0x00, 0x00, 0x00, 0xff},
	Card:    color.RGBA{0x18, 0x1c, 0x24, 0xff},
	Frame:   color.RGBA{0x46, 0x50, 0x60, 0xff},
	Accent:  color.RGBA{0x00, 0xaa, 0xff, 0xff},
	Text:    color.RGBA{0xeb, 0xeb, 0xeb, 0xff},
	Ticks:   color.RGBA{0x96, 0x96, 0x96, 0xff},
	BarFill: color.RGBA{0x00, 0xc8, 0x78, 0xff},
	Caution: color.RGBA{0xff, 0xdc, 0x00, 0xff},
	Warn:    color.RGBA{0xff, 0x8c, 0x00, 0xff},
	Crit:    color.RGBA{0xe6, 0x1e, 0x1e, 0xff},
	OK:      color.RGBA{0x28, 0xc8, 0x50, 0xff},
}

func (p Palette) levelColor(l Level, fallback color.RGBA) color.RGBA {
	switch l {
	case LevelHigh:
		return p.Crit
	case LevelLow:
		return p.Warn
	}
	return fallback
}

func (p Palette) lockColor(s telemetry.LockState) color.RGBA {
	switch s {
	case telemetry.LockApplying, telemetry.LockReleasing:
		return p.Caution
	case telemetry.LockFlex:
		return p.Accent
	case telemetry.LockFull:
		return p.OK
	}
	return p.Text
}
