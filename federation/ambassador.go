// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package federation

import "github.com/luxfi/openrti/ltime"

// FederateAmbassador is the callback sink an application implements
// and registers at join. It replaces the source language's virtual
// FederateAmbassador base class with a single Go
// interface; every callback named in original_source's
// RTI/FederateAmbassador.h that falls within this core's scope has a
// method here.
//
// Methods are invoked only from EvokeCallback/EvokeMultipleCallbacks,
// on the goroutine that calls them. An
// implementation must not call back into the Federation from inside
// one of these methods; doing so returns
// ErrCallNotAllowedFromWithinCallback.
type FederateAmbassador interface {
	// ReflectAttributeValues delivers an object update.
	ReflectAttributeValues(object ObjectHandle, payload []byte, sentOrder, receivedOrder Order, timestamp *ltime.Time, retraction RetractionHandle, hasRetraction bool)

	// ReceiveInteraction delivers an interaction.
	ReceiveInteraction(class InteractionHandle, payload []byte, sentOrder, receivedOrder Order, timestamp *ltime.Time, retraction RetractionHandle, hasRetraction bool)

	// RemoveObjectInstance notifies that an object instance was deleted.
	RemoveObjectInstance(object ObjectHandle, sentOrder, receivedOrder Order, timestamp *ltime.Time)

	// TimeRegulationEnabled completes a prior EnableTimeRegulation call.
	TimeRegulationEnabled(t ltime.Time)

	// TimeConstrainedEnabled completes a prior EnableTimeConstrained call.
	TimeConstrainedEnabled(t ltime.Time)

	// TimeAdvanceGrant completes an outstanding advance request. It is
	// always the last callback of its cycle.
	TimeAdvanceGrant(t ltime.Time)

	// ProvideAttributeValueUpdate asks the owner of object to resend
	// its current attribute values, in response to some other
	// federate's RequestAttributeValueUpdate.
	ProvideAttributeValueUpdate(object ObjectHandle)

	// RequestRetractionFailed notifies the sender that one of its retraction
	// requests could not be honoured.
	RequestRetractionFailed(handle RetractionHandle, err error)
}

// NoOpAmbassador implements FederateAmbassador with methods that do
// nothing, for federates that only care about a subset of callbacks
// or for tests that only assert on the engine's own bookkeeping.
type NoOpAmbassador struct{}

func (NoOpAmbassador) ReflectAttributeValues(ObjectHandle, []byte, Order, Order, *ltime.Time, RetractionHandle, bool) {
}
func (NoOpAmbassador) ReceiveInteraction(InteractionHandle, []byte, Order, Order, *ltime.Time, RetractionHandle, bool) {
}
func (NoOpAmbassador) RemoveObjectInstance(ObjectHandle, Order, Order, *ltime.Time) {}
func (NoOpAmbassador) TimeRegulationEnabled(ltime.Time)                            {}
func (NoOpAmbassador) TimeConstrainedEnabled(ltime.Time)                           {}
func (NoOpAmbassador) TimeAdvanceGrant(ltime.Time)                                 {}
func (NoOpAmbassador) ProvideAttributeValueUpdate(ObjectHandle)                    {}
func (NoOpAmbassador) RequestRetractionFailed(RetractionHandle, error)             {}

var _ FederateAmbassador = NoOpAmbassador{}

// callback is one queued invocation, dispatched in FIFO order by
// EvokeCallback. Grouping every callback kind behind one closure
// keeps the mailbox a single ordered channel instead of N typed ones,
// while still letting each recorded callback type assert ordering
// invariants in tests (see federationtest).
type callback struct {
	kind string
	fn   func(FederateAmbassador)
}
