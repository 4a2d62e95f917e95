// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package transport

import (
	"encoding/binary"

	"github.com/luxfi/openrti/federation"
	"github.com/luxfi/openrti/ltime"
	"github.com/luxfi/openrti/version"
	"github.com/luxfi/openrti/wire"
)

// packOrderedTime appends order (as a byte) followed by a presence
// byte and, when present, t's fixed-width encoding — the wire shape
// every send/delete frame uses for its optional logical time.
func packOrderedTime(p *wire.Packer, order federation.Order, t *ltime.Time) {
	p.PackByte(byte(order))
	if t == nil {
		p.PackByte(0)
		return
	}
	p.PackByte(1)
	p.PackBytes(t.Encode())
}

func unpackOrderedTime(u *wire.Unpacker, kind ltime.Kind) (federation.Order, *ltime.Time, error) {
	order := federation.Order(u.UnpackByte())
	present := u.UnpackByte()
	if u.Err != nil {
		return 0, nil, u.Err
	}
	if present == 0 {
		return order, nil, nil
	}
	raw := u.UnpackBytes(8)
	if u.Err != nil {
		return 0, nil, u.Err
	}
	t, err := ltime.DecodeTime(kind, raw)
	if err != nil {
		return 0, nil, err
	}
	return order, &t, nil
}

// encodeJoinRequest/decodeJoinRequest carry the federate's requested
// display name (empty for an anonymous federate) and the connecting
// client's own reported version, so the server can run the same
// major-version compatibility check a local embedder gets for free.
func encodeJoinRequest(name string, client *version.Application) []byte {
	p := wire.NewPacker(8 + len(name) + len(client.Name))
	p.PackVarBytes([]byte(name))
	p.PackVarBytes([]byte(client.Name))
	p.PackUint64(uint64(client.Major))
	p.PackUint64(uint64(client.Minor))
	p.PackUint64(uint64(client.Patch))
	return p.Bytes
}

func decodeJoinRequest(b []byte) (string, *version.Application, error) {
	u := wire.NewUnpacker(b)
	name := u.UnpackVarBytes()
	clientName := u.UnpackVarBytes()
	major := u.UnpackUint64()
	minor := u.UnpackUint64()
	patch := u.UnpackUint64()
	if u.Err != nil {
		return "", nil, u.Err
	}
	client := &version.Application{
		Name:  string(clientName),
		Major: int(major),
		Minor: int(minor),
		Patch: int(patch),
	}
	return string(name), client, nil
}

// encodeHandleAck/decodeHandleAck carry one handle-shaped response,
// e.g. the federate handle a MsgJoin grants or the object handle a
// MsgRegisterObject grants.
func encodeHandleAck(h uint64) []byte {
	return wire.EncodeHandle(h)
}

func decodeHandleAck(b []byte) (uint64, error) {
	return wire.DecodeHandle(b)
}

// encodeClassOp/decodeClassOp carry a single interaction or object
// handle for publish/subscribe/unpublish/unsubscribe requests.
func encodeClassOp(h uint64) []byte { return wire.EncodeHandle(h) }

func decodeClassOp(b []byte) (uint64, error) { return wire.DecodeHandle(b) }

// encodeObjectClassOp/decodeObjectClassOp carry an object class name
// for the same four declaration-management requests, but at the
// object side where classes are named rather than handled.
func encodeObjectClassOp(className string) []byte {
	p := wire.NewPacker(4 + len(className))
	p.PackVarBytes([]byte(className))
	return p.Bytes
}

func decodeObjectClassOp(b []byte) (string, error) {
	u := wire.NewUnpacker(b)
	name := u.UnpackVarBytes()
	return string(name), u.Err
}

// sendRequest is the decoded shape of MsgSendInteraction and
// MsgUpdateAttributeValues: a target handle (interaction class or
// object instance), an opaque payload, and an optional timestamp.
type sendRequest struct {
	Target    uint64
	Payload   []byte
	Order     federation.Order
	Timestamp *ltime.Time
}

func encodeSendRequest(r sendRequest) []byte {
	p := wire.NewPacker(16 + len(r.Payload))
	p.PackBytes(wire.EncodeHandle(r.Target))
	p.PackVarBytes(r.Payload)
	packOrderedTime(p, r.Order, r.Timestamp)
	return p.Bytes
}

func decodeSendRequest(b []byte, kind ltime.Kind) (sendRequest, error) {
	u := wire.NewUnpacker(b)
	targetRaw := u.UnpackVarBytes()
	payload := u.UnpackVarBytes()
	if u.Err != nil {
		return sendRequest{}, u.Err
	}
	target, err := decodeEmbeddedHandle(targetRaw)
	if err != nil {
		return sendRequest{}, err
	}
	order, ts, err := unpackOrderedTime(u, kind)
	if err != nil {
		return sendRequest{}, err
	}
	return sendRequest{Target: target, Payload: payload, Order: order, Timestamp: ts}, nil
}

// decodeEmbeddedHandle reads a handle that was packed with
// wire.EncodeHandle and then embedded via PackBytes inside a larger
// request, rather than standing alone as a message payload: the
// outer UnpackVarBytes call already strips EncodeHandle's own length
// prefix, leaving exactly the 8 little-endian handle bytes.
func decodeEmbeddedHandle(raw []byte) (uint64, error) {
	if len(raw) != 8 {
		return 0, wire.ErrShortBuffer
	}
	return binary.LittleEndian.Uint64(raw), nil
}

// encodeIntervalArg/decodeIntervalArg carry a lookahead value for
// MsgEnableTimeRegulation and MsgModifyLookahead.
func encodeIntervalArg(d ltime.Interval) []byte {
	p := wire.NewPacker(8)
	p.PackBytes(d.Encode())
	return p.Bytes
}

func decodeIntervalArg(b []byte, kind ltime.Kind) (ltime.Interval, error) {
	u := wire.NewUnpacker(b)
	raw := u.UnpackBytes(8)
	if u.Err != nil {
		return ltime.Interval{}, u.Err
	}
	return ltime.DecodeInterval(kind, raw)
}

// encodeTimeArg/decodeTimeArg carry a target time for the five
// advance-request messages.
func encodeTimeArg(t ltime.Time) []byte {
	p := wire.NewPacker(8)
	p.PackBytes(t.Encode())
	return p.Bytes
}

func decodeTimeArg(b []byte, kind ltime.Kind) (ltime.Time, error) {
	u := wire.NewUnpacker(b)
	raw := u.UnpackBytes(8)
	if u.Err != nil {
		return ltime.Time{}, u.Err
	}
	return ltime.DecodeTime(kind, raw)
}

// encodeCreateRequest/decodeCreateRequest carry the federation
// execution name and logical time kind for MsgCreateFederation.
func encodeCreateRequest(name string, kind ltime.Kind) []byte {
	p := wire.NewPacker(8 + len(name))
	p.PackVarBytes([]byte(name))
	p.PackByte(byte(kind))
	return p.Bytes
}

func decodeCreateRequest(b []byte) (string, ltime.Kind, error) {
	u := wire.NewUnpacker(b)
	name := u.UnpackVarBytes()
	kind := u.UnpackByte()
	if u.Err != nil {
		return "", 0, u.Err
	}
	return string(name), ltime.Kind(kind), nil
}

// encodeNameList/decodeNameList carries MsgListFederations' response:
// a count-prefixed sequence of variable-length names.
func encodeNameList(names []string) []byte {
	p := wire.NewPacker(4)
	p.PackUint32(uint32(len(names)))
	for _, n := range names {
		p.PackVarBytes([]byte(n))
	}
	return p.Bytes
}

func decodeNameList(b []byte) ([]string, error) {
	u := wire.NewUnpacker(b)
	n := u.UnpackUint32()
	if u.Err != nil {
		return nil, u.Err
	}
	names := make([]string, 0, n)
	for i := uint32(0); i < n; i++ {
		names = append(names, string(u.UnpackVarBytes()))
	}
	return names, u.Err
}

// deleteRequest is the decoded shape of MsgDeleteObjectInstance.
type deleteRequest struct {
	Object    uint64
	Order     federation.Order
	Timestamp *ltime.Time
}

func encodeDeleteRequest(r deleteRequest) []byte {
	p := wire.NewPacker(16)
	p.PackBytes(wire.EncodeHandle(r.Object))
	packOrderedTime(p, r.Order, r.Timestamp)
	return p.Bytes
}

func decodeDeleteRequest(b []byte, kind ltime.Kind) (deleteRequest, error) {
	u := wire.NewUnpacker(b)
	objRaw := u.UnpackVarBytes()
	if u.Err != nil {
		return deleteRequest{}, u.Err
	}
	obj, err := decodeEmbeddedHandle(objRaw)
	if err != nil {
		return deleteRequest{}, err
	}
	order, ts, err := unpackOrderedTime(u, kind)
	if err != nil {
		return deleteRequest{}, err
	}
	return deleteRequest{Object: obj, Order: order, Timestamp: ts}, nil
}
