// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package transport

import (
	"github.com/luxfi/openrti/federation"
	"github.com/luxfi/openrti/ltime"
	"github.com/luxfi/openrti/wire"
)

// callbackKind is MsgCallback's own sub-opcode: which
// FederateAmbassador method a pushed callback frame invokes.
type callbackKind byte

const (
	cbReflectAttributeValues callbackKind = iota
	cbReceiveInteraction
	cbRemoveObjectInstance
	cbTimeRegulationEnabled
	cbTimeConstrainedEnabled
	cbTimeAdvanceGrant
	cbProvideAttributeValueUpdate
	cbRequestRetractionFailed
)

// encodeCallback serialises one FederateAmbassador invocation into a
// MsgCallback frame payload. handle is the object or interaction
// handle (0 for the plain-time callbacks); ts and hasRetraction follow
// the same optional-field shape as packOrderedTime.
func encodeCallback(kind callbackKind, handle uint64, payload []byte, order, receivedOrder federation.Order, ts *ltime.Time, retraction uint64, hasRetraction bool, t ltime.Time, errMsg string) []byte {
	p := wire.NewPacker(32 + len(payload) + len(errMsg))
	p.PackByte(byte(kind))
	p.PackBytes(wire.EncodeHandle(handle))
	p.PackVarBytes(payload)
	p.PackByte(byte(order))
	p.PackByte(byte(receivedOrder))
	if ts == nil {
		p.PackByte(0)
	} else {
		p.PackByte(1)
		p.PackBytes(ts.Encode())
	}
	p.PackBytes(wire.EncodeHandle(retraction))
	if hasRetraction {
		p.PackByte(1)
	} else {
		p.PackByte(0)
	}
	p.PackBytes(t.Encode())
	p.PackVarBytes([]byte(errMsg))
	return p.Bytes
}

type decodedCallback struct {
	Kind          callbackKind
	Handle        uint64
	Payload       []byte
	Order         federation.Order
	ReceivedOrder federation.Order
	Timestamp     *ltime.Time
	Retraction    uint64
	HasRetraction bool
	Time          ltime.Time
	ErrMsg        string
}

func decodeCallback(b []byte, kind ltime.Kind) (decodedCallback, error) {
	u := wire.NewUnpacker(b)
	cbk := callbackKind(u.UnpackByte())
	handleRaw := u.UnpackVarBytes()
	payload := u.UnpackVarBytes()
	order := federation.Order(u.UnpackByte())
	receivedOrder := federation.Order(u.UnpackByte())
	present := u.UnpackByte()
	var ts *ltime.Time
	if present == 1 {
		raw := u.UnpackBytes(8)
		if u.Err == nil {
			v, err := ltime.DecodeTime(kind, raw)
			if err != nil {
				return decodedCallback{}, err
			}
			ts = &v
		}
	}
	retractionRaw := u.UnpackVarBytes()
	hasRetraction := u.UnpackByte() == 1
	timeRaw := u.UnpackBytes(8)
	errMsg := u.UnpackVarBytes()
	if u.Err != nil {
		return decodedCallback{}, u.Err
	}
	handle, err := decodeEmbeddedHandle(handleRaw)
	if err != nil {
		return decodedCallback{}, err
	}
	retraction, err := decodeEmbeddedHandle(retractionRaw)
	if err != nil {
		return decodedCallback{}, err
	}
	t, err := ltime.DecodeTime(kind, timeRaw)
	if err != nil {
		return decodedCallback{}, err
	}
	return decodedCallback{
		Kind:          cbk,
		Handle:        handle,
		Payload:       payload,
		Order:         order,
		ReceivedOrder: receivedOrder,
		Timestamp:     ts,
		Retraction:    retraction,
		HasRetraction: hasRetraction,
		Time:          t,
		ErrMsg:        string(errMsg),
	}, nil
}
