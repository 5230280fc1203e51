// Package bitfield reads unaligned integer fields out of byte buffers.
//
// Bits are numbered little-endian: bit 0 is the least significant bit of
// buf[0], bit 8 the least significant bit of buf[1] and so on. The first bit
// read becomes the least significant bit of the result.
package bitfield

import "math"

// MaxBits is the widest field Uint can return.
const MaxBits = 32

// Uint reads length bits starting at bit offset. ok is false when the field
// does not fit in buf or length is outside 1..MaxBits.
func Uint(buf []byte, offset, length uint) (v uint32, ok bool) {
	if length == 0 || length > MaxBits {
		return 0, false
	}
	if offset+length > uint(len(buf))*8 {
		return 0, false
	}
	for i := uint(0); i < length; i++ {
		bit := offset + i
		b := (buf[bit/8] >> (bit % 8)) & 0x01
		v |= uint32(b) << i
	}
	return v, true
}

// SignExtend interprets the low bits of v as a two's complement number.
func SignExtend(v uint32, bits uint) int32 {
	if bits == 0 || bits >= 32 {
		return int32(v)
	}
	v &= Mask(bits)
	m := uint32(1) << (bits - 1)
	return int32(v^m) - int32(m)
}

// Mask returns a value with the low bits set.
func Mask(bits uint) uint32 {
	if bits >= 32 {
		return math.MaxUint32
	}
	return uint32(1)<<bits - 1
}

// BE16 reads a big-endian 16 bit value at byte offset off.
func BE16(buf []byte, off int) (uint16, bool) {
	if off < 0 || off+2 > len(buf) {
		return 0, false
	}
	return uint16(buf[off])<<8 | uint16(buf[off+1]), true
}
