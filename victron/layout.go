package victron

import (
	"github.com/jd3nn1s/dash/bitfield"
	"github.com/jd3nn1s/dash/telemetry"
)

// RecordType selects the field layout of a decrypted record.
type RecordType uint8

const (
	RecordSolarCharger   RecordType = 0x01
	RecordBatteryMonitor RecordType = 0x02
	RecordDCDC           RecordType = 0x04
	RecordDCDCCurrent    RecordType = 0x0F
)

// Field is one value inside the decrypted record, addressed in bits.
type Field struct {
	Channel telemetry.Channel
	Offset  uint
	Bits    uint
	Signed  bool
	// physical value = raw / Div
	Div float64
	// NA is the raw pattern meaning "not available". Zero means all ones
	// of the field width.
	NA uint32
}

func (f Field) na() uint32 {
	if f.NA == 0 {
		return bitfield.Mask(f.Bits)
	}
	return f.NA
}

// Value extracts the field from plain. Fields that do not fit or hold the
// NA pattern are unavailable.
func (f Field) Value(plain []byte) float64 {
	raw, ok := bitfield.Uint(plain, f.Offset, f.Bits)
	if !ok || raw == f.na() {
		return telemetry.Unavailable
	}
	div := f.Div
	if div == 0 {
		div = 1
	}
	if f.Signed {
		return float64(bitfield.SignExtend(raw, f.Bits)) / div
	}
	return float64(raw) / div
}

type Layout struct {
	Group  telemetry.Group
	MinLen int
	Fields []Field
}

var layouts = map[RecordType]Layout{
	RecordBatteryMonitor: {
		Group:  telemetry.GroupBattery,
		MinLen: 14,
		Fields: []Field{
			{Channel: telemetry.BattTimeToGo, Offset: 0, Bits: 16, Div: 1},
			{Channel: telemetry.BattV2, Offset: 16, Bits: 16, Signed: true, Div: 100, NA: 0x7FFF},
			{Channel: telemetry.BattCurrent, Offset: 66, Bits: 22, Signed: true, Div: 1000, NA: 0x3FFFFF},
			{Channel: telemetry.BattSOC, Offset: 108, Bits: 10, Div: 10},
		},
	},
	RecordSolarCharger: {
		Group:  telemetry.GroupSolar,
		MinLen: 12,
		Fields: []Field{
			{Channel: telemetry.PVAmps, Offset: 32, Bits: 16, Signed: true, Div: 10, NA: 0x7FFF},
			{Channel: telemetry.PVYield, Offset: 48, Bits: 16, Div: 100},
			{Channel: telemetry.PVWatts, Offset: 64, Bits: 16, Div: 1},
		},
	},
	RecordDCDC: {
		Group:  telemetry.GroupDCDC,
		MinLen: 12,
		Fields: []Field{
			{Channel: telemetry.DCDCInV, Offset: 16, Bits: 16, Div: 100},
			{Channel: telemetry.DCDCOutV, Offset: 32, Bits: 16, Signed: true, Div: 100, NA: 0x7FFF},
		},
	},
	RecordDCDCCurrent: {
		Group:  telemetry.GroupDCDC,
		MinLen: 14,
		Fields: []Field{
			{Channel: telemetry.DCDCOutV, Offset: 16, Bits: 16, Signed: true, Div: 100, NA: 0x7FFF},
			{Channel: telemetry.DCDCOutA, Offset: 32, Bits: 16, Signed: true, Div: 10, NA: 0x7FFF},
			{Channel: telemetry.DCDCInV, Offset: 48, Bits: 16, Div: 100},
		},
	},
}

// LayoutFor returns the layout of a record type.
func LayoutFor(rt RecordType) (Layout, bool) {
	l, ok := layouts[rt]
	return l, ok
}
