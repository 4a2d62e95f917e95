// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package ltime

import (
	"encoding/binary"
	"fmt"
	"math"
)

// wireWidth is the encoded width, in bytes, of every Time or Interval
// of the given kind. Both supported kinds are 8 bytes wide.
const wireWidth = 8

// Encode returns t as a little-endian fixed-width byte string.
func (t Time) Encode() []byte {
	buf := make([]byte, wireWidth)
	switch t.kind {
	case Integer64:
		binary.LittleEndian.PutUint64(buf, uint64(t.i))
	default:
		binary.LittleEndian.PutUint64(buf, math.Float64bits(t.f))
	}
	return buf
}

// Encode returns d as a little-endian fixed-width byte string.
func (d Interval) Encode() []byte {
	buf := make([]byte, wireWidth)
	switch d.kind {
	case Integer64:
		binary.LittleEndian.PutUint64(buf, uint64(d.i))
	default:
		binary.LittleEndian.PutUint64(buf, math.Float64bits(d.f))
	}
	return buf
}

// DecodeTime is the inverse of Time.Encode. decode(encode(t)) == t for
// all admissible t.
func DecodeTime(k Kind, b []byte) (Time, error) {
	if len(b) != wireWidth {
		return Time{}, fmt.Errorf("%w: want %d bytes, got %d", ErrCouldNotDecode, wireWidth, len(b))
	}
	bits := binary.LittleEndian.Uint64(b)
	switch k {
	case Integer64:
		return Time{kind: k, i: int64(bits)}, nil
	default:
		return Time{kind: k, f: math.Float64frombits(bits)}, nil
	}
}

// DecodeInterval is the inverse of Interval.Encode.
func DecodeInterval(k Kind, b []byte) (Interval, error) {
	if len(b) != wireWidth {
		return Interval{}, fmt.Errorf("%w: want %d bytes, got %d", ErrCouldNotDecode, wireWidth, len(b))
	}
	bits := binary.LittleEndian.Uint64(b)
	switch k {
	case Integer64:
		return Interval{kind: k, i: int64(bits)}, nil
	default:
		return Interval{kind: k, f: math.Float64frombits(bits)}, nil
	}
}
