// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package federationtest

import (
	"sync"

	"github.com/luxfi/openrti/federation"
	"github.com/luxfi/openrti/ltime"
)

// Call records one dispatched FederateAmbassador callback, keeping
// just enough of the argument list for scenario assertions (full
// fidelity checks belong in federationmock's gomock expectations).
type Call struct {
	Kind          string
	Object        federation.ObjectHandle
	Class         federation.InteractionHandle
	Timestamp     *ltime.Time
	SentOrder     federation.Order
	ReceivedOrder federation.Order
}

// RecordingAmbassador implements federation.FederateAmbassador by
// appending every invocation to an in-memory log, for scenario tests
// that assert on delivery order and timing rather than call
// expectations.
type RecordingAmbassador struct {
	mu    sync.Mutex
	calls []Call
}

// NewRecordingAmbassador returns an empty RecordingAmbassador.
func NewRecordingAmbassador() *RecordingAmbassador {
	return &RecordingAmbassador{}
}

func (r *RecordingAmbassador) record(c Call) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, c)
}

// Calls returns a snapshot of every call recorded so far.
func (r *RecordingAmbassador) Calls() []Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Call, len(r.calls))
	copy(out, r.calls)
	return out
}

func (r *RecordingAmbassador) ReflectAttributeValues(object federation.ObjectHandle, _ []byte, sentOrder, receivedOrder federation.Order, timestamp *ltime.Time, _ federation.RetractionHandle, _ bool) {
	r.record(Call{Kind: "ReflectAttributeValues", Object: object, Timestamp: timestamp, SentOrder: sentOrder, ReceivedOrder: receivedOrder})
}

func (r *RecordingAmbassador) ReceiveInteraction(class federation.InteractionHandle, _ []byte, sentOrder, receivedOrder federation.Order, timestamp *ltime.Time, _ federation.RetractionHandle, _ bool) {
	r.record(Call{Kind: "ReceiveInteraction", Class: class, Timestamp: timestamp, SentOrder: sentOrder, ReceivedOrder: receivedOrder})
}

func (r *RecordingAmbassador) RemoveObjectInstance(object federation.ObjectHandle, _, _ federation.Order, timestamp *ltime.Time) {
	r.record(Call{Kind: "RemoveObjectInstance", Object: object, Timestamp: timestamp})
}

func (r *RecordingAmbassador) TimeRegulationEnabled(t ltime.Time) {
	r.record(Call{Kind: "TimeRegulationEnabled", Timestamp: &t})
}

func (r *RecordingAmbassador) TimeConstrainedEnabled(t ltime.Time) {
	r.record(Call{Kind: "TimeConstrainedEnabled", Timestamp: &t})
}

func (r *RecordingAmbassador) TimeAdvanceGrant(t ltime.Time) {
	r.record(Call{Kind: "TimeAdvanceGrant", Timestamp: &t})
}

func (r *RecordingAmbassador) ProvideAttributeValueUpdate(object federation.ObjectHandle) {
	r.record(Call{Kind: "ProvideAttributeValueUpdate", Object: object})
}

func (r *RecordingAmbassador) RequestRetractionFailed(federation.RetractionHandle, error) {
	r.record(Call{Kind: "RequestRetractionFailed"})
}

var _ federation.FederateAmbassador = (*RecordingAmbassador)(nil)
