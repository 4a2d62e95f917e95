// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package wire

import (
	"encoding/binary"
	"io"

	safemath "github.com/luxfi/openrti/utils/math"
)

// MessageType tags a Frame's payload so the receiving end (peer-to-peer
// or federation server) can route it without inspecting the payload
// itself.
type MessageType byte

const (
	MsgJoin MessageType = iota
	MsgResign
	MsgPublishInteraction
	MsgUnpublishInteraction
	MsgSubscribeInteraction
	MsgUnsubscribeInteraction
	MsgPublishObjectClass
	MsgUnpublishObjectClass
	MsgSubscribeObjectClass
	MsgUnsubscribeObjectClass
	MsgRegisterObject
	MsgSendInteraction
	MsgUpdateAttributeValues
	MsgDeleteObjectInstance
	MsgRequestAttributeValueUpdate
	MsgRetract
	MsgEnableTimeRegulation
	MsgDisableTimeRegulation
	MsgEnableTimeConstrained
	MsgDisableTimeConstrained
	MsgModifyLookahead
	MsgTimeAdvanceRequest
	MsgTimeAdvanceRequestAvailable
	MsgNextMessageRequest
	MsgNextMessageRequestAvailable
	MsgFlushQueueRequest
	MsgQueryGALT
	MsgQueryLogicalTime
	MsgQueryLITS
	MsgQueryLookahead
	MsgCallback

	// Control-plane messages, sent on a connection that has not (yet)
	// joined any federation execution.
	MsgCreateFederation
	MsgDestroyFederation
	MsgListFederations

	// MsgAck and MsgErr are generic responses: MsgAck's payload is
	// request-specific (often empty), MsgErr's payload is the error
	// string of a sentinel from federation/errors.go or config/errors.go.
	MsgAck
	MsgErr
)

// maxFrameSize bounds a single frame's total encoded size; frames
// larger than this are rejected before any allocation is attempted.
const maxFrameSize = 64 << 20 // 64 MiB

// Frame is one wire message: `{federation_id, message_type, payload_len,
// payload}` with little-endian lengths.
type Frame struct {
	FederationID string
	Type         MessageType
	Payload      []byte
}

// Encode serialises f to bytes. Returns ErrFrameTooLarge if the
// resulting frame would exceed maxFrameSize.
func Encode(f Frame) ([]byte, error) {
	total, err := safemath.Add64(uint64(len(f.FederationID)), uint64(len(f.Payload)))
	if err != nil {
		return nil, err
	}
	if total > maxFrameSize {
		return nil, ErrFrameTooLarge
	}

	p := NewPacker(4 + len(f.FederationID) + 1 + 4 + len(f.Payload))
	p.PackVarBytes([]byte(f.FederationID))
	p.PackByte(byte(f.Type))
	p.PackVarBytes(f.Payload)
	return p.Bytes, p.Err
}

// Decode parses a Frame previously produced by Encode.
func Decode(b []byte) (Frame, error) {
	u := NewUnpacker(b)
	federationID := u.UnpackVarBytes()
	msgType := u.UnpackByte()
	payload := u.UnpackVarBytes()
	if u.Err != nil {
		return Frame{}, u.Err
	}
	return Frame{
		FederationID: string(federationID),
		Type:         MessageType(msgType),
		Payload:      payload,
	}, nil
}

// WriteFrame writes f to w prefixed by its own 4-byte little-endian
// length, the stream framing a peer-to-peer or federation-server
// transport needs on top of Encode/Decode's in-memory codec: a TCP
// connection has no message boundaries of its own, so the length
// prefix is what lets ReadFrame know where one Frame ends and the
// next begins.
func WriteFrame(w io.Writer, f Frame) error {
	encoded, err := Encode(f)
	if err != nil {
		return err
	}
	var length [4]byte
	binary.LittleEndian.PutUint32(length[:], uint32(len(encoded)))
	if _, err := w.Write(length[:]); err != nil {
		return err
	}
	_, err = w.Write(encoded)
	return err
}

// ReadFrame reads one length-prefixed Frame written by WriteFrame.
func ReadFrame(r io.Reader) (Frame, error) {
	var length [4]byte
	if _, err := io.ReadFull(r, length[:]); err != nil {
		return Frame{}, err
	}
	n := binary.LittleEndian.Uint32(length[:])
	if n > maxFrameSize {
		return Frame{}, ErrFrameTooLarge
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return Frame{}, err
	}
	return Decode(buf)
}

// EncodeHandle length-prefix-encodes a uint64 handle the way the wire
// protocol requires for federate/object/attribute/interaction/retraction
// handles: a length-prefixed variable-length byte string rather than
// a fixed 8 bytes, so the wire format is uniform across every handle
// kind.
func EncodeHandle(h uint64) []byte {
	p := NewPacker(12)
	p.PackUint64(h)
	framed := NewPacker(4 + len(p.Bytes))
	framed.PackVarBytes(p.Bytes)
	return framed.Bytes
}

// DecodeHandle reads a handle encoded by EncodeHandle.
func DecodeHandle(b []byte) (uint64, error) {
	u := NewUnpacker(b)
	raw := u.UnpackVarBytes()
	if u.Err != nil {
		return 0, u.Err
	}
	inner := NewUnpacker(raw)
	v := inner.UnpackUint64()
	if inner.Err != nil {
		return 0, inner.Err
	}
	return v, nil
}
