package dashcan

// Frame identifiers on the vehicle bus.
const (
	FrameSpeed      uint32 = 0x141
	FrameRPMPedal   uint32 = 0x160
	FrameTransTemp  uint32 = 0x050
	FrameGearLock   uint32 = 0x161
	FrameBattV      uint32 = 0x4A3
	FrameCoolantEtc uint32 = 0x2C0
	FrameTorque     uint32 = 0x150
	FrameSoot       uint32 = 0x4AC
	FrameRegenEGT2  uint32 = 0x4AB
	FrameEGT1       uint32 = 0x4B0
	FrameBoost      uint32 = 0x4A4
	FrameManifoldT  uint32 = 0x4CC
	FrameLambda     uint32 = 0x4B2
	FrameActuator   uint32 = 0x4CD
	FrameHeadlights uint32 = 0x401
)

const (
	// temperatures are sent as physical + 40
	tempOffset = 40.0

	// atmospheric pressure subtracted from absolute boost, kPa
	atmosphereKPa = 101.0
	maxBoostKPa   = 250.0

	torqueOffset = 1696.0
	torqueScale  = 0.5
	minTorqueNm  = -200.0

	regenRawMax = 65535.0

	headlightsOnCode = 0x50

	// DefaultSootDivisor converts the raw soot load to percent. The scale
	// cannot be learned from the bus, so the result is clamped.
	DefaultSootDivisor = 14.1
)

// Gear codes. Park, reverse and neutral map to negative values, drive gears
// to 1..6 and anything else to 0.
const (
	GearPark    = -3
	GearReverse = -2
	GearNeutral = -1
	GearUnknown = 0
)

var gearTable = map[byte]int{
	251: GearPark,
	123: GearReverse,
	125: GearNeutral,
	126: 1,
	127: 2,
	128: 3,
	129: 4,
	130: 5,
	131: 6,
}

// GearFromCode decodes a gear position byte.
func GearFromCode(b byte) int {
	if g, ok := gearTable[b]; ok {
		return g
	}
	return GearUnknown
}
