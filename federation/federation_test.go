// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package federation_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/luxfi/openrti/federation"
	"github.com/luxfi/openrti/federationtest"
	"github.com/luxfi/openrti/ltime"
	"github.com/luxfi/openrti/metrics"
)

func TestJoinAndResign(t *testing.T) {
	f := federationtest.NewFederation(t, ltime.Integer64)
	fed := federationtest.Join(t, f, "alice")
	if err := f.Resign(fed.Handle, federation.NoAction); err != nil {
		t.Fatal(err)
	}
	if _, err := f.QueryLogicalTime(fed.Handle); !errors.Is(err, federation.ErrFederateNotExecutionMember) {
		t.Fatalf("expected ErrFederateNotExecutionMember after resign, got %v", err)
	}
}

// TestSoleRegulatorTARGrantsImmediately checks that a single
// regulating, non-constrained federate requesting TAR must not
// deadlock on its own LBTS contribution.
func TestSoleRegulatorTARGrantsImmediately(t *testing.T) {
	f := federationtest.NewFederation(t, ltime.Integer64)
	fed := federationtest.Regulating(t, f, "alice", ltime.NewInteger64Interval(1))

	if err := f.TimeAdvanceRequest(fed.Handle, ltime.NewInteger64Time(10)); err != nil {
		t.Fatal(err)
	}
	call := fed.DrainOne(t, "TimeAdvanceGrant")
	if call.Timestamp.Compare(ltime.NewInteger64Time(10)) != 0 {
		t.Fatalf("expected grant at 10, got %v", call.Timestamp)
	}
}

// TestConstrainedFederateWaitsForRegulatorLookahead checks that a
// constrained federate's TAR must wait until the regulating
// federate's lookahead-extended contribution clears the requested
// target, then grant exactly at the target.
func TestConstrainedFederateWaitsForRegulatorLookahead(t *testing.T) {
	f := federationtest.NewFederation(t, ltime.Integer64)
	reg := federationtest.Regulating(t, f, "regulator", ltime.NewInteger64Interval(5))
	con := federationtest.Constrained(t, f, "constrained")

	if err := f.TimeAdvanceRequest(con.Handle, ltime.NewInteger64Time(10)); err != nil {
		t.Fatal(err)
	}
	time.Sleep(20 * time.Millisecond)
	for _, c := range con.Amb.Calls() {
		if c.Kind == "TimeAdvanceGrant" {
			t.Fatalf("constrained federate must not be granted before the regulator's contribution clears the target")
		}
	}

	if err := f.TimeAdvanceRequest(reg.Handle, ltime.NewInteger64Time(10)); err != nil {
		t.Fatal(err)
	}
	reg.DrainOne(t, "TimeAdvanceGrant")
	grant := con.DrainOne(t, "TimeAdvanceGrant")
	if grant.Timestamp.Compare(ltime.NewInteger64Time(10)) != 0 {
		t.Fatalf("expected grant exactly at the target 10, got %v", grant.Timestamp)
	}
}

// TestTSOInteractionDeliveredBelowBound checks that a timestamped
// interaction sent by a regulating federate must be delivered to a
// constrained subscriber strictly before that subscriber's TAR bound,
// and never after.
func TestTSOInteractionDeliveredBelowBound(t *testing.T) {
	f := federationtest.NewFederation(t, ltime.Integer64)
	sender := federationtest.Regulating(t, f, "sender", ltime.NewInteger64Interval(1))
	recv := federationtest.Constrained(t, f, "receiver")

	class := federation.InteractionHandle(7)
	if err := f.PublishInteractionClass(sender.Handle, class); err != nil {
		t.Fatal(err)
	}
	if err := f.SubscribeInteractionClass(recv.Handle, class); err != nil {
		t.Fatal(err)
	}

	ts := ltime.NewInteger64Time(5)
	if _, err := f.SendInteraction(sender.Handle, class, []byte("hi"), federation.Timestamp, &ts); err != nil {
		t.Fatal(err)
	}
	if err := f.TimeAdvanceRequest(recv.Handle, ltime.NewInteger64Time(10)); err != nil {
		t.Fatal(err)
	}

	// the regulator must itself advance far enough that its
	// committed+lookahead contribution clears the receiver's target
	// before the receiver's own grant can fire.
	if err := f.TimeAdvanceRequest(sender.Handle, ltime.NewInteger64Time(10)); err != nil {
		t.Fatal(err)
	}
	sender.DrainOne(t, "TimeAdvanceGrant")

	call := recv.DrainOne(t, "ReceiveInteraction")
	if call.Timestamp == nil || call.Timestamp.Compare(ts) != 0 {
		t.Fatalf("expected delivered timestamp 5, got %v", call.Timestamp)
	}
	grant := recv.DrainOne(t, "TimeAdvanceGrant")
	if grant.Timestamp.Compare(ts) < 0 {
		t.Fatalf("the message must have been delivered no later than the grant, got grant=%v", grant.Timestamp)
	}
}

// TestRetractionWithdrawsPendingMessage checks that a retracted
// message must never be delivered, even once the recipient advances
// past its timestamp.
func TestRetractionWithdrawsPendingMessage(t *testing.T) {
	f := federationtest.NewFederation(t, ltime.Integer64)
	sender := federationtest.Regulating(t, f, "sender", ltime.NewInteger64Interval(1))
	recv := federationtest.Constrained(t, f, "receiver")

	class := federation.InteractionHandle(1)
	if err := f.PublishInteractionClass(sender.Handle, class); err != nil {
		t.Fatal(err)
	}
	if err := f.SubscribeInteractionClass(recv.Handle, class); err != nil {
		t.Fatal(err)
	}

	ts := ltime.NewInteger64Time(5)
	rh, err := f.SendInteraction(sender.Handle, class, []byte("retract-me"), federation.Timestamp, &ts)
	if err != nil {
		t.Fatal(err)
	}
	if err := f.Retract(sender.Handle, rh); err != nil {
		t.Fatal(err)
	}

	if err := f.TimeAdvanceRequest(recv.Handle, ltime.NewInteger64Time(10)); err != nil {
		t.Fatal(err)
	}
	if err := f.TimeAdvanceRequest(sender.Handle, ltime.NewInteger64Time(10)); err != nil {
		t.Fatal(err)
	}
	sender.DrainOne(t, "TimeAdvanceGrant")
	recv.DrainOne(t, "TimeAdvanceGrant")
	for _, c := range recv.Amb.Calls() {
		if c.Kind == "ReceiveInteraction" {
			t.Fatalf("a retracted message must never be delivered")
		}
	}
}

// TestRetractionFailsAfterCommitted checks that a retraction
// request made after the sender's committed time has passed the
// message's timestamp must fail.
func TestRetractionFailsAfterCommitted(t *testing.T) {
	f := federationtest.NewFederation(t, ltime.Integer64)
	sender := federationtest.Regulating(t, f, "sender", ltime.NewInteger64Interval(1))

	if err := f.PublishInteractionClass(sender.Handle, federation.InteractionHandle(1)); err != nil {
		t.Fatal(err)
	}
	ts := ltime.NewInteger64Time(1)
	rh, err := f.SendInteraction(sender.Handle, federation.InteractionHandle(1), nil, federation.Timestamp, &ts)
	if err != nil {
		t.Fatal(err)
	}

	if err := f.TimeAdvanceRequest(sender.Handle, ltime.NewInteger64Time(5)); err != nil {
		t.Fatal(err)
	}
	sender.DrainOne(t, "TimeAdvanceGrant")

	if err := f.Retract(sender.Handle, rh); !errors.Is(err, federation.ErrMessageCanNoLongerBeRetracted) {
		t.Fatalf("expected ErrMessageCanNoLongerBeRetracted, got %v", err)
	}
}

// TestFlushQueueRequestDrainsWithoutWaiting checks that FQR must
// deliver everything already queued and grant without waiting on any
// other federate's LBTS contribution.
func TestFlushQueueRequestDrainsWithoutWaiting(t *testing.T) {
	f := federationtest.NewFederation(t, ltime.Integer64)
	sender := federationtest.Regulating(t, f, "sender", ltime.NewInteger64Interval(100))
	recv := federationtest.Constrained(t, f, "receiver")

	class := federation.InteractionHandle(3)
	if err := f.PublishInteractionClass(sender.Handle, class); err != nil {
		t.Fatal(err)
	}
	if err := f.SubscribeInteractionClass(recv.Handle, class); err != nil {
		t.Fatal(err)
	}
	ts := ltime.NewInteger64Time(2)
	if _, err := f.SendInteraction(sender.Handle, class, nil, federation.Timestamp, &ts); err != nil {
		t.Fatal(err)
	}

	if err := f.FlushQueueRequest(recv.Handle, ltime.NewInteger64Time(50)); err != nil {
		t.Fatal(err)
	}
	recv.DrainOne(t, "ReceiveInteraction")
	recv.DrainOne(t, "TimeAdvanceGrant")
}

// TestConcurrentAdvanceConverges drives two federates concurrently
// through repeated TAR cycles using federationtest.RunConcurrent,
// asserting both eventually reach the same target.
func TestConcurrentAdvanceConverges(t *testing.T) {
	f := federationtest.NewFederation(t, ltime.Integer64)
	a := federationtest.Regulating(t, f, "a", ltime.NewInteger64Interval(1))
	b := federationtest.Regulating(t, f, "b", ltime.NewInteger64Interval(1))

	const target = 25
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	actor := func(ctx context.Context, h federation.FederateHandle) error {
		for step := int64(1); step <= target; step++ {
			if err := f.TimeAdvanceRequest(h, ltime.NewInteger64Time(step)); err != nil {
				return err
			}
			if err := federationtest.PumpUntil(ctx, f, h, func() bool {
				t, err := f.QueryLogicalTime(h)
				return err == nil && t.Compare(ltime.NewInteger64Time(step)) >= 0
			}); err != nil {
				return err
			}
		}
		return nil
	}

	err := federationtest.RunConcurrent(ctx, map[federation.FederateHandle]federationtest.Actor{
		a.Handle: actor,
		b.Handle: actor,
	})
	if err != nil {
		t.Fatal(err)
	}

	ta, _ := f.QueryLogicalTime(a.Handle)
	tb, _ := f.QueryLogicalTime(b.Handle)
	if ta.Compare(ltime.NewInteger64Time(target)) != 0 || tb.Compare(ltime.NewInteger64Time(target)) != 0 {
		t.Fatalf("expected both federates to reach %d, got a=%v b=%v", target, ta, tb)
	}
}

// TestAdvanceStateResetsAfterGrant confirms a federate's advance
// track returns to idle after a grant, so a second request can be
// issued right away instead of failing with ErrInTimeAdvancingState.
func TestAdvanceStateResetsAfterGrant(t *testing.T) {
	f := federationtest.NewFederation(t, ltime.Integer64)
	fed := federationtest.Regulating(t, f, "alice", ltime.NewInteger64Interval(1))

	if err := f.TimeAdvanceRequest(fed.Handle, ltime.NewInteger64Time(5)); err != nil {
		t.Fatal(err)
	}
	fed.DrainOne(t, "TimeAdvanceGrant")

	if err := f.TimeAdvanceRequest(fed.Handle, ltime.NewInteger64Time(6)); err != nil {
		t.Fatalf("requesting again after the prior grant must succeed, got %v", err)
	}
}

// TestSecondRequestWhilePendingFails confirms a federate cannot issue
// a second advance request while one is already outstanding.
func TestSecondRequestWhilePendingFails(t *testing.T) {
	f := federationtest.NewFederation(t, ltime.Integer64)
	federationtest.Regulating(t, f, "regulator", ltime.NewInteger64Interval(5))
	con := federationtest.Constrained(t, f, "constrained")

	if err := f.TimeAdvanceRequest(con.Handle, ltime.NewInteger64Time(10)); err != nil {
		t.Fatal(err)
	}
	if err := f.TimeAdvanceRequest(con.Handle, ltime.NewInteger64Time(11)); !errors.Is(err, federation.ErrInTimeAdvancingState) {
		t.Fatalf("expected ErrInTimeAdvancingState, got %v", err)
	}
}

// TestNextMessageRequestGrantsAtMessageTime is scenario S4: NMR must
// grant at the timestamp of the next deliverable message rather than
// at the requested target, whenever that message arrives first. The
// regulator first advances to just below the message's timestamp so
// its own contribution clears the message's position — NMR's grant
// predicate requires LBTS to guarantee no earlier message can still
// arrive, which for a single regulator only holds once it has
// committed to within one lookahead of that timestamp.
func TestNextMessageRequestGrantsAtMessageTime(t *testing.T) {
	f := federationtest.NewFederation(t, ltime.Integer64)
	sender := federationtest.Regulating(t, f, "sender", ltime.NewInteger64Interval(1))
	recv := federationtest.Constrained(t, f, "receiver")

	class := federation.InteractionHandle(4)
	if err := f.PublishInteractionClass(sender.Handle, class); err != nil {
		t.Fatal(err)
	}
	if err := f.SubscribeInteractionClass(recv.Handle, class); err != nil {
		t.Fatal(err)
	}

	if err := f.TimeAdvanceRequest(sender.Handle, ltime.NewInteger64Time(6)); err != nil {
		t.Fatal(err)
	}
	sender.DrainOne(t, "TimeAdvanceGrant")

	ts := ltime.NewInteger64Time(7)
	if _, err := f.SendInteraction(sender.Handle, class, nil, federation.Timestamp, &ts); err != nil {
		t.Fatal(err)
	}

	if err := f.NextMessageRequest(recv.Handle, ltime.NewInteger64Time(100)); err != nil {
		t.Fatal(err)
	}

	recv.DrainOne(t, "ReceiveInteraction")
	grant := recv.DrainOne(t, "TimeAdvanceGrant")
	if grant.Timestamp.Compare(ts) != 0 {
		t.Fatalf("expected NMR to grant at the message time 7, not the requested 100, got %v", grant.Timestamp)
	}
}

// reentrantAmbassador wraps a RecordingAmbassador and, on
// TimeAdvanceGrant, immediately calls back into the federation that
// dispatched it, simulating a federate issuing an API call from
// inside its own callback.
type reentrantAmbassador struct {
	*federationtest.RecordingAmbassador
	f      *federation.Federation
	h      federation.FederateHandle
	result error
}

func (r *reentrantAmbassador) TimeAdvanceGrant(t ltime.Time) {
	r.RecordingAmbassador.TimeAdvanceGrant(t)
	r.result = r.f.EnableTimeRegulation(r.h, ltime.NewInteger64Interval(1))
}

// TestCallFromWithinCallbackIsRejected checks that an API call issued
// from within a FederateAmbassador callback fails with
// ErrCallNotAllowedFromWithinCallback instead of silently succeeding.
func TestCallFromWithinCallbackIsRejected(t *testing.T) {
	f := federationtest.NewFederation(t, ltime.Integer64)
	amb := &reentrantAmbassador{RecordingAmbassador: federationtest.NewRecordingAmbassador(), f: f}
	h, err := f.Join("alice", amb)
	if err != nil {
		t.Fatal(err)
	}
	amb.h = h

	if err := f.EnableTimeRegulation(h, ltime.NewInteger64Interval(1)); err != nil {
		t.Fatal(err)
	}
	for {
		dispatched, err := f.EvokeCallback(h, 10*time.Millisecond)
		if err != nil {
			t.Fatal(err)
		}
		if !dispatched {
			t.Fatal("expected TimeRegulationEnabled to be dispatched")
		}
		found := false
		for _, c := range amb.Calls() {
			if c.Kind == "TimeRegulationEnabled" {
				found = true
			}
		}
		if found {
			break
		}
	}

	if err := f.TimeAdvanceRequest(h, ltime.NewInteger64Time(5)); err != nil {
		t.Fatal(err)
	}
	if _, err := f.EvokeCallback(h, 10*time.Millisecond); err != nil {
		t.Fatal(err)
	}
	if !errors.Is(amb.result, federation.ErrCallNotAllowedFromWithinCallback) {
		t.Fatalf("expected ErrCallNotAllowedFromWithinCallback from within TimeAdvanceGrant, got %v", amb.result)
	}
}

// TestRequestAttributeValueUpdateNotifiesOwner checks that requesting
// an update for an object delivers ProvideAttributeValueUpdate to the
// object's owner, not the requester.
func TestRequestAttributeValueUpdateNotifiesOwner(t *testing.T) {
	f := federationtest.NewFederation(t, ltime.Integer64)
	owner := federationtest.Join(t, f, "owner")
	requester := federationtest.Join(t, f, "requester")

	obj, err := f.RegisterObjectInstance(owner.Handle, "Widget")
	if err != nil {
		t.Fatal(err)
	}
	if err := f.RequestAttributeValueUpdate(requester.Handle, obj); err != nil {
		t.Fatal(err)
	}

	call := owner.DrainOne(t, "ProvideAttributeValueUpdate")
	if call.Object != obj {
		t.Fatalf("expected update request for %v, got %v", obj, call.Object)
	}
	for _, c := range requester.Amb.Calls() {
		if c.Kind == "ProvideAttributeValueUpdate" {
			t.Fatalf("the requester must not receive its own request back")
		}
	}
}

// TestResignDuringAdvanceUnblocksGrant is scenario S6: a regulating
// federate resigning mid-advance must drop out of LBTS immediately,
// letting a constrained requester's pending advance proceed as soon
// as the remaining regulators permit it.
func TestResignDuringAdvanceUnblocksGrant(t *testing.T) {
	f := federationtest.NewFederation(t, ltime.Integer64)
	a := federationtest.Regulating(t, f, "a", ltime.NewInteger64Interval(1))
	c := federationtest.Regulating(t, f, "c", ltime.NewInteger64Interval(1))
	b := federationtest.Constrained(t, f, "b")

	if err := f.TimeAdvanceRequest(b.Handle, ltime.NewInteger64Time(10)); err != nil {
		t.Fatal(err)
	}
	for _, call := range b.Amb.Calls() {
		if call.Kind == "TimeAdvanceGrant" {
			t.Fatalf("b must not be granted while both a and c still gate LBTS below the target")
		}
	}

	if err := f.Resign(c.Handle, federation.NoAction); err != nil {
		t.Fatal(err)
	}
	for _, call := range b.Amb.Calls() {
		if call.Kind == "TimeAdvanceGrant" {
			t.Fatalf("b must still wait on a's contribution after c resigns")
		}
	}

	if err := f.TimeAdvanceRequest(a.Handle, ltime.NewInteger64Time(10)); err != nil {
		t.Fatal(err)
	}
	a.DrainOne(t, "TimeAdvanceGrant")
	b.DrainOne(t, "TimeAdvanceGrant")
}

// TestTSOEntryHeldUntilLBTSClears pins the delivery gate: a queued
// timestamped message must stay queued — even when it sits far below
// the requester's advance target — until LBTS passes its position,
// because an earlier message could still arrive ahead of it.
func TestTSOEntryHeldUntilLBTSClears(t *testing.T) {
	f := federationtest.NewFederation(t, ltime.Integer64)
	sender := federationtest.Regulating(t, f, "sender", ltime.NewInteger64Interval(1))
	recv := federationtest.Constrained(t, f, "receiver")

	class := federation.InteractionHandle(9)
	if err := f.PublishInteractionClass(sender.Handle, class); err != nil {
		t.Fatal(err)
	}
	if err := f.SubscribeInteractionClass(recv.Handle, class); err != nil {
		t.Fatal(err)
	}

	ts := ltime.NewInteger64Time(5)
	if _, err := f.SendInteraction(sender.Handle, class, nil, federation.Timestamp, &ts); err != nil {
		t.Fatal(err)
	}
	if err := f.TimeAdvanceRequest(recv.Handle, ltime.NewInteger64Time(10)); err != nil {
		t.Fatal(err)
	}

	// LBTS is still the sender's (committed=Initial)+1 contribution, below
	// the message's position: nothing may be handed out yet.
	if _, err := f.EvokeCallback(recv.Handle, 20*time.Millisecond); err != nil {
		t.Fatal(err)
	}
	for _, c := range recv.Amb.Calls() {
		if c.Kind == "ReceiveInteraction" {
			t.Fatalf("the message at 5 must stay queued while LBTS is below it")
		}
	}

	if err := f.TimeAdvanceRequest(sender.Handle, ltime.NewInteger64Time(10)); err != nil {
		t.Fatal(err)
	}
	sender.DrainOne(t, "TimeAdvanceGrant")
	recv.DrainOne(t, "ReceiveInteraction")
	recv.DrainOne(t, "TimeAdvanceGrant")
}

// TestTimestampedSendToUnconstrainedReportsReceiveOrder checks the
// degenerate routing rule: a timestamped interaction delivered to a
// federate that is not time-constrained arrives in receive order,
// reported as sentOrder=Timestamp, receivedOrder=Receive, with the
// timestamp still passed through.
func TestTimestampedSendToUnconstrainedReportsReceiveOrder(t *testing.T) {
	f := federationtest.NewFederation(t, ltime.Integer64)
	sender := federationtest.Regulating(t, f, "sender", ltime.NewInteger64Interval(1))
	recv := federationtest.Join(t, f, "receiver")

	class := federation.InteractionHandle(2)
	if err := f.PublishInteractionClass(sender.Handle, class); err != nil {
		t.Fatal(err)
	}
	if err := f.SubscribeInteractionClass(recv.Handle, class); err != nil {
		t.Fatal(err)
	}

	ts := ltime.NewInteger64Time(5)
	if _, err := f.SendInteraction(sender.Handle, class, nil, federation.Timestamp, &ts); err != nil {
		t.Fatal(err)
	}

	call := recv.DrainOne(t, "ReceiveInteraction")
	if call.SentOrder != federation.Timestamp {
		t.Fatalf("expected sentOrder=Timestamp, got %v", call.SentOrder)
	}
	if call.ReceivedOrder != federation.Receive {
		t.Fatalf("expected receivedOrder=Receive for an unconstrained recipient, got %v", call.ReceivedOrder)
	}
	if call.Timestamp == nil || call.Timestamp.Compare(ts) != 0 {
		t.Fatalf("expected the timestamp passed through, got %v", call.Timestamp)
	}
}

// TestRetractAfterDeliveryNotifiesSender checks that retracting a
// message an unconstrained recipient has already received is accepted
// but answered with a RequestRetractionFailed callback to the sender.
func TestRetractAfterDeliveryNotifiesSender(t *testing.T) {
	f := federationtest.NewFederation(t, ltime.Integer64)
	sender := federationtest.Regulating(t, f, "sender", ltime.NewInteger64Interval(1))
	recv := federationtest.Join(t, f, "receiver")

	class := federation.InteractionHandle(6)
	if err := f.PublishInteractionClass(sender.Handle, class); err != nil {
		t.Fatal(err)
	}
	if err := f.SubscribeInteractionClass(recv.Handle, class); err != nil {
		t.Fatal(err)
	}

	ts := ltime.NewInteger64Time(5)
	rh, err := f.SendInteraction(sender.Handle, class, nil, federation.Timestamp, &ts)
	if err != nil {
		t.Fatal(err)
	}
	recv.DrainOne(t, "ReceiveInteraction")

	if err := f.Retract(sender.Handle, rh); err != nil {
		t.Fatalf("retracting a delivered message is accepted, notified asynchronously; got %v", err)
	}
	sender.DrainOne(t, "RequestRetractionFailed")
}

// TestRetractWithoutSubscribersSucceeds checks that a retraction
// handle from a send that reached no subscriber is still a valid
// handle — there is simply nothing to withdraw.
func TestRetractWithoutSubscribersSucceeds(t *testing.T) {
	f := federationtest.NewFederation(t, ltime.Integer64)
	sender := federationtest.Regulating(t, f, "sender", ltime.NewInteger64Interval(1))

	class := federation.InteractionHandle(8)
	if err := f.PublishInteractionClass(sender.Handle, class); err != nil {
		t.Fatal(err)
	}
	ts := ltime.NewInteger64Time(5)
	rh, err := f.SendInteraction(sender.Handle, class, nil, federation.Timestamp, &ts)
	if err != nil {
		t.Fatal(err)
	}
	if err := f.Retract(sender.Handle, rh); err != nil {
		t.Fatalf("expected retraction of an undelivered, unsubscribed send to succeed, got %v", err)
	}
}

// panickingAmbassador panics inside TimeAdvanceGrant, simulating
// application code failing mid-callback.
type panickingAmbassador struct {
	federation.NoOpAmbassador
}

func (panickingAmbassador) TimeAdvanceGrant(ltime.Time) {
	panic("federate application failure")
}

// TestPanickingCallbackIsContained checks that a panic thrown by
// application code inside a callback is caught at the pump boundary:
// the pump keeps working and the federate can keep issuing calls.
func TestPanickingCallbackIsContained(t *testing.T) {
	f := federationtest.NewFederation(t, ltime.Integer64)
	h, err := f.Join("alice", panickingAmbassador{})
	if err != nil {
		t.Fatal(err)
	}
	if err := f.EnableTimeRegulation(h, ltime.NewInteger64Interval(1)); err != nil {
		t.Fatal(err)
	}
	for {
		dispatched, err := f.EvokeCallback(h, 10*time.Millisecond)
		if err != nil {
			t.Fatal(err)
		}
		if !dispatched {
			break
		}
	}

	if err := f.TimeAdvanceRequest(h, ltime.NewInteger64Time(5)); err != nil {
		t.Fatal(err)
	}
	if _, err := f.EvokeCallback(h, 100*time.Millisecond); err != nil {
		t.Fatal(err)
	}

	// The panic must not have left the federate wedged in its
	// in-callback state: a follow-up call still succeeds.
	if err := f.TimeAdvanceRequest(h, ltime.NewInteger64Time(6)); err != nil {
		t.Fatalf("expected the federate to remain usable after a panicking callback, got %v", err)
	}
}

// TestMetricsTrackGrantsAndJoins checks the Prometheus wiring: joins
// and grants move their counters, and the LBTS gauge follows the
// regulator's contribution.
func TestMetricsTrackGrantsAndJoins(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := metrics.NewMetrics(reg)
	if err != nil {
		t.Fatal(err)
	}
	f := federationtest.NewFederationWithMetrics(t, ltime.Integer64, m)
	fed := federationtest.Regulating(t, f, "alice", ltime.NewInteger64Interval(1))

	if got := testutil.ToFloat64(m.FederatesJoined); got != 1 {
		t.Fatalf("expected 1 federate joined, got %v", got)
	}

	if err := f.TimeAdvanceRequest(fed.Handle, ltime.NewInteger64Time(10)); err != nil {
		t.Fatal(err)
	}
	fed.DrainOne(t, "TimeAdvanceGrant")

	if got := testutil.ToFloat64(m.AdvanceGrants); got != 1 {
		t.Fatalf("expected 1 advance grant counted, got %v", got)
	}
	if got := testutil.ToFloat64(m.LBTS); got != 11 {
		t.Fatalf("expected LBTS gauge at committed+lookahead = 11, got %v", got)
	}
}
