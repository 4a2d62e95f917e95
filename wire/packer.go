// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package wire implements the transport-level envelope codec: a little-endian length-prefixed framing shared by
// the peer-to-peer and federation-server transports. This is a
// from-scratch little-endian Packer/Unpacker pair, not a big-endian
// one: the byte order is a wire
// contract, not an implementation detail, and this protocol fixes it
// at little-endian.
package wire

import "encoding/binary"

// Packer accumulates a little-endian byte frame. Errors are sticky:
// once Err is set, further Pack* calls are no-ops, mirroring the
// teacher's Packer so callers can chain a sequence of packs and check
// Err once at the end.
type Packer struct {
	Bytes []byte
	Err   error
}

// NewPacker returns a Packer with size bytes of pre-allocated capacity.
func NewPacker(size int) *Packer {
	return &Packer{Bytes: make([]byte, 0, size)}
}

func (p *Packer) PackByte(b byte) {
	if p.Err != nil {
		return
	}
	p.Bytes = append(p.Bytes, b)
}

func (p *Packer) PackBytes(b []byte) {
	if p.Err != nil {
		return
	}
	p.Bytes = append(p.Bytes, b...)
}

// PackUint32 packs v as 4 little-endian bytes.
func (p *Packer) PackUint32(v uint32) {
	if p.Err != nil {
		return
	}
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], v)
	p.Bytes = append(p.Bytes, buf[:]...)
}

// PackUint64 packs v as 8 little-endian bytes.
func (p *Packer) PackUint64(v uint64) {
	if p.Err != nil {
		return
	}
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], v)
	p.Bytes = append(p.Bytes, buf[:]...)
}

// PackVarBytes packs b as a uint32 little-endian length prefix
// followed by b itself.
func (p *Packer) PackVarBytes(b []byte) {
	if p.Err != nil {
		return
	}
	p.PackUint32(uint32(len(b)))
	p.PackBytes(b)
}

// Unpacker reads a little-endian byte frame packed by Packer.
type Unpacker struct {
	Bytes  []byte
	Offset int
	Err    error
}

// NewUnpacker wraps b for sequential little-endian reads.
func NewUnpacker(b []byte) *Unpacker {
	return &Unpacker{Bytes: b}
}

func (u *Unpacker) require(n int) bool {
	if u.Err != nil {
		return false
	}
	if u.Offset+n > len(u.Bytes) {
		u.Err = ErrShortBuffer
		return false
	}
	return true
}

func (u *Unpacker) UnpackByte() byte {
	if !u.require(1) {
		return 0
	}
	b := u.Bytes[u.Offset]
	u.Offset++
	return b
}

func (u *Unpacker) UnpackBytes(n int) []byte {
	if !u.require(n) {
		return nil
	}
	b := u.Bytes[u.Offset : u.Offset+n]
	u.Offset += n
	return b
}

func (u *Unpacker) UnpackUint32() uint32 {
	if !u.require(4) {
		return 0
	}
	v := binary.LittleEndian.Uint32(u.Bytes[u.Offset:])
	u.Offset += 4
	return v
}

func (u *Unpacker) UnpackUint64() uint64 {
	if !u.require(8) {
		return 0
	}
	v := binary.LittleEndian.Uint64(u.Bytes[u.Offset:])
	u.Offset += 8
	return v
}

// UnpackVarBytes reads a uint32 length prefix then that many bytes.
func (u *Unpacker) UnpackVarBytes() []byte {
	n := u.UnpackUint32()
	if u.Err != nil {
		return nil
	}
	return u.UnpackBytes(int(n))
}
