// Package tx20 implements the LaCrosse TX20 anemometer datagram. The
// bridge emits readings from the Davis 6410 in this format so hosts
// built for a TX20 can consume them unchanged.
//
// A datagram is 41 bits, transmitted least significant bit first:
//
//	sa  5 bits  start pattern (00100)
//	sb  4 bits  wind direction, inverted
//	sc 12 bits  wind speed in 0.1 m/s units, inverted
//	sd  4 bits  checksum, inverted
//	se  4 bits  wind direction, plain copy
//	sf 12 bits  wind speed, plain copy
//
// The TX20's output stage inverts the first half of the datagram on the
// wire; the plain copies let the receiver verify the link. Encoded
// frames are padded with zero bits to 6 bytes.
package tx20

import "errors"

const (
	// FrameLen is the encoded datagram size in bytes.
	FrameLen = 6

	// startPattern is the sa field, read LSB first.
	startPattern = 0x04

	// MaxSpeed is the largest encodable speed, in 0.1 m/s units.
	MaxSpeed = 0xFFF
)

var (
	ErrShortFrame   = errors.New("tx20: frame too short")
	ErrStartPattern = errors.New("tx20: bad start pattern")
	ErrChecksum     = errors.New("tx20: checksum mismatch")
	ErrCopyMismatch = errors.New("tx20: inverted and plain copies disagree")
)

// Frame is one decoded wind reading.
type Frame struct {
	// Direction is the compass sector, 0=N through 15=NNW.
	Direction uint8

	// Speed is the wind speed in 0.1 m/s units.
	Speed uint16
}

// Checksum returns the 4-bit sum of the direction and speed nibbles.
func (f Frame) Checksum() uint8 {
	sum := uint16(f.Direction&0x0F) + (f.Speed & 0x0F) + ((f.Speed >> 4) & 0x0F) + ((f.Speed >> 8) & 0x0F)
	return uint8(sum & 0x0F)
}

// Encode serializes the frame into its 6-byte wire form.
func (f Frame) Encode() []byte {
	buf := make([]byte, FrameLen)
	dir := uint32(f.Direction & 0x0F)
	speed := uint32(f.Speed & MaxSpeed)
	chk := uint32(f.Checksum())

	pos := putBits(buf, 0, startPattern, 5)
	pos = putBits(buf, pos, ^dir, 4)
	pos = putBits(buf, pos, ^speed, 12)
	pos = putBits(buf, pos, ^chk, 4)
	pos = putBits(buf, pos, dir, 4)
	putBits(buf, pos, speed, 12)
	return buf
}

// Decode parses a 6-byte wire frame, verifying the start pattern, the
// checksum and the plain copies.
func Decode(data []byte) (Frame, error) {
	if len(data) < FrameLen {
		return Frame{}, ErrShortFrame
	}

	sa, pos := getBits(data, 0, 5)
	if sa != startPattern {
		return Frame{}, ErrStartPattern
	}

	sb, pos := getBits(data, pos, 4)
	sc, pos := getBits(data, pos, 12)
	sd, pos := getBits(data, pos, 4)
	se, pos := getBits(data, pos, 4)
	sf, _ := getBits(data, pos, 12)

	f := Frame{
		Direction: uint8(^sb & 0x0F),
		Speed:     uint16(^sc & MaxSpeed),
	}

	if uint32(f.Direction) != se || uint32(f.Speed) != sf {
		return Frame{}, ErrCopyMismatch
	}
	if uint8(^sd&0x0F) != f.Checksum() {
		return Frame{}, ErrChecksum
	}
	return f, nil
}

// SpeedUnits converts a speed in mph to wire units (0.1 m/s), clamped
// to the encodable range.
func SpeedUnits(mph float32) uint16 {
	if mph <= 0 {
		return 0
	}
	// 1 mph = 0.44704 m/s = 4.4704 wire units.
	u := uint32(mph*4.4704 + 0.5)
	if u > MaxSpeed {
		u = MaxSpeed
	}
	return uint16(u)
}

// SpeedMS returns the speed in m/s.
func (f Frame) SpeedMS() float32 {
	return float32(f.Speed) / 10
}

// SpeedMPH returns the speed in mph.
func (f Frame) SpeedMPH() float32 {
	return float32(f.Speed) / 4.4704
}

// putBits writes count bits of v into buf starting at bit offset pos,
// least significant bit first, returning the new offset.
func putBits(buf []byte, pos int, v uint32, count int) int {
	for i := 0; i < count; i++ {
		if v&1 != 0 {
			buf[pos>>3] |= 1 << (pos & 7)
		}
		v >>= 1
		pos++
	}
	return pos
}

// getBits reads count bits from buf starting at bit offset pos,
// least significant bit first.
func getBits(buf []byte, pos int, count int) (uint32, int) {
	var v uint32
	for i := 0; i < count; i++ {
		if buf[pos>>3]&(1<<(pos&7)) != 0 {
			v |= 1 << i
		}
		pos++
	}
	return v, pos
}
