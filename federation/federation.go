// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package federation

import (
	"sync"
	"time"

	"github.com/luxfi/log"
	"github.com/luxfi/openrti/ltime"
	"github.com/luxfi/openrti/metrics"
	"github.com/luxfi/openrti/set"
)

// Federation is one running federation execution: the directory (C2),
// every joined federate's queue (C3), the replicated LBTS (C4), and
// the advance-grant state machine (C5), wired together behind the
// federate-facing API. All state mutation is serialised through
// mu, matching the single logical serial queue per federation
// model — there is no finer-grained locking to reason about.
type Federation struct {
	mu  sync.Mutex
	log log.Logger

	name string
	dir  *Directory

	queues      map[FederateHandle]*Queue
	ambassadors map[FederateHandle]FederateAmbassador
	mailbox     map[FederateHandle][]callback

	publishedInteractions   map[FederateHandle]set.Set[InteractionHandle]
	subscribedInteractions  map[InteractionHandle]set.Set[FederateHandle]
	publishedObjectClasses  map[FederateHandle]set.Set[string]
	subscribedObjectClasses map[string]set.Set[FederateHandle]

	objects     map[ObjectHandle]objectRecord
	nextObject  uint64
	retractions map[RetractionHandle]retractionRecord
	nextRetract uint64
	nextSent    uint64

	metrics *metrics.Metrics
}

type objectRecord struct {
	className string
	owner     FederateHandle
}

type retractionRecord struct {
	sender     FederateHandle
	timestamp  ltime.Time
	recipients []FederateHandle
	delivered  bool
}

// NewFederation creates an empty federation execution named name,
// using the given logical time kind.
func NewFederation(name string, kind ltime.Kind, logger log.Logger, m *metrics.Metrics) *Federation {
	if logger == nil {
		logger = log.NewNoOpLogger()
	}
	f := &Federation{
		log:                     logger,
		name:                    name,
		dir:                     NewDirectory(kind),
		queues:                  make(map[FederateHandle]*Queue),
		ambassadors:             make(map[FederateHandle]FederateAmbassador),
		mailbox:                 make(map[FederateHandle][]callback),
		publishedInteractions:   make(map[FederateHandle]set.Set[InteractionHandle]),
		subscribedInteractions:  make(map[InteractionHandle]set.Set[FederateHandle]),
		publishedObjectClasses:  make(map[FederateHandle]set.Set[string]),
		subscribedObjectClasses: make(map[string]set.Set[FederateHandle]),
		objects:                 make(map[ObjectHandle]objectRecord),
		retractions:             make(map[RetractionHandle]retractionRecord),
		metrics:                 m,
	}
	f.dir.onChange = f.recomputeLocked
	return f
}

// Name returns the federation execution's name.
func (f *Federation) Name() string { return f.name }

// Kind returns the logical time representation this execution was
// created with, so a transport can decode wire-encoded times and
// intervals without tracking the kind itself.
func (f *Federation) Kind() ltime.Kind { return f.dir.Kind() }

// Join admits a new federate with amb as its callback sink.
func (f *Federation) Join(name string, amb FederateAmbassador) (FederateHandle, error) {
	if amb == nil {
		amb = NoOpAmbassador{}
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	h, err := f.dir.Join(name)
	if err != nil {
		return 0, err
	}
	f.queues[h] = NewQueue()
	f.ambassadors[h] = amb
	f.publishedInteractions[h] = set.Set[InteractionHandle]{}
	f.publishedObjectClasses[h] = set.Set[string]{}
	f.log.Info("federate joined", "federation", f.name, "federate", h, "name", name)
	if f.metrics != nil {
		f.metrics.FederatesJoined.Inc()
	}
	return h, nil
}

// Resign removes a federate and its queue.
func (f *Federation) Resign(h FederateHandle, action ResignAction) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.requireNotInCallback(h); err != nil {
		return err
	}
	if err := f.dir.Resign(h, action); err != nil {
		return err
	}
	delete(f.queues, h)
	delete(f.ambassadors, h)
	delete(f.mailbox, h)
	for class, subs := range f.subscribedInteractions {
		subs.Remove(h)
		f.subscribedInteractions[class] = subs
	}
	for class, subs := range f.subscribedObjectClasses {
		subs.Remove(h)
		f.subscribedObjectClasses[class] = subs
	}
	f.log.Info("federate resigned", "federation", f.name, "federate", h)
	return nil
}

func (f *Federation) requireNotInCallback(h FederateHandle) error {
	_, err := f.requireCallable(h)
	return err
}

// requireCallable returns h's directory record, after checking both
// that h is still a member and that the call is not reentering from
// within one of h's own callback invocations (invariant 7: any API
// call issued from within a callback fails with
// ErrCallNotAllowedFromWithinCallback rather than silently
// succeeding).
func (f *Federation) requireCallable(h FederateHandle) (*Federate, error) {
	fed, ok := f.dir.Get(h)
	if !ok || fed.Liveness == Gone {
		return nil, ErrFederateNotExecutionMember
	}
	if fed.inCallback {
		return nil, ErrCallNotAllowedFromWithinCallback
	}
	return fed, nil
}

// --- Declaration management ---

// PublishInteractionClass marks class as something h may send.
func (f *Federation) PublishInteractionClass(h FederateHandle, class InteractionHandle) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, err := f.requireCallable(h); err != nil {
		return err
	}
	f.publishedInteractions[h].Add(class)
	return nil
}

// UnpublishInteractionClass reverses PublishInteractionClass.
func (f *Federation) UnpublishInteractionClass(h FederateHandle, class InteractionHandle) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, err := f.requireCallable(h); err != nil {
		return err
	}
	f.publishedInteractions[h].Remove(class)
	return nil
}

// SubscribeInteractionClass marks class as something h wants delivered.
func (f *Federation) SubscribeInteractionClass(h FederateHandle, class InteractionHandle) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, err := f.requireCallable(h); err != nil {
		return err
	}
	s := f.subscribedInteractions[class]
	if s == nil {
		s = make(set.Set[FederateHandle])
	}
	s.Add(h)
	f.subscribedInteractions[class] = s
	return nil
}

// UnsubscribeInteractionClass reverses SubscribeInteractionClass.
func (f *Federation) UnsubscribeInteractionClass(h FederateHandle, class InteractionHandle) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, err := f.requireCallable(h); err != nil {
		return err
	}
	if s, ok := f.subscribedInteractions[class]; ok {
		s.Remove(h)
	}
	return nil
}

// PublishObjectClassAttributes marks className as something h may update.
func (f *Federation) PublishObjectClassAttributes(h FederateHandle, className string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, err := f.requireCallable(h); err != nil {
		return err
	}
	f.publishedObjectClasses[h].Add(className)
	return nil
}

// UnpublishObjectClassAttributes reverses PublishObjectClassAttributes.
func (f *Federation) UnpublishObjectClassAttributes(h FederateHandle, className string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, err := f.requireCallable(h); err != nil {
		return err
	}
	f.publishedObjectClasses[h].Remove(className)
	return nil
}

// SubscribeObjectClassAttributes marks className as something h wants
// updates for.
func (f *Federation) SubscribeObjectClassAttributes(h FederateHandle, className string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, err := f.requireCallable(h); err != nil {
		return err
	}
	s := f.subscribedObjectClasses[className]
	if s == nil {
		s = make(set.Set[FederateHandle])
	}
	s.Add(h)
	f.subscribedObjectClasses[className] = s
	return nil
}

// UnsubscribeObjectClassAttributes reverses SubscribeObjectClassAttributes.
func (f *Federation) UnsubscribeObjectClassAttributes(h FederateHandle, className string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, err := f.requireCallable(h); err != nil {
		return err
	}
	if s, ok := f.subscribedObjectClasses[className]; ok {
		s.Remove(h)
	}
	return nil
}

// RegisterObjectInstance creates a new object instance of className
// owned by h.
func (f *Federation) RegisterObjectInstance(h FederateHandle, className string) (ObjectHandle, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, err := f.requireCallable(h); err != nil {
		return 0, err
	}
	f.nextObject++
	oh := ObjectHandle(f.nextObject)
	f.objects[oh] = objectRecord{className: className, owner: h}
	return oh, nil
}

// DeleteObjectInstance removes obj and notifies its subscribers
//.
func (f *Federation) DeleteObjectInstance(h FederateHandle, obj ObjectHandle, order Order, timestamp *ltime.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, err := f.requireCallable(h); err != nil {
		return err
	}
	rec, ok := f.objects[obj]
	if !ok {
		return ErrObjectInstanceNotKnown
	}
	delete(f.objects, obj)
	env := Envelope{Kind: Delete, Sender: h, Order: order, Object: obj}
	if order == Timestamp {
		if timestamp == nil {
			return ErrInvalidLogicalTime
		}
		env.Timestamp = *timestamp
	}
	f.route(env, f.subscribedObjectClasses[rec.className])
	f.recomputeLocked()
	return nil
}

// RequestAttributeValueUpdate asks obj's owner to resend its current
// attribute values, delivering a ProvideAttributeValueUpdate callback
// to the owner. This core does not model attribute sets, so the
// request always targets every attribute obj carries.
func (f *Federation) RequestAttributeValueUpdate(h FederateHandle, obj ObjectHandle) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, err := f.requireCallable(h); err != nil {
		return err
	}
	rec, ok := f.objects[obj]
	if !ok {
		return ErrObjectInstanceNotKnown
	}
	f.enqueue(rec.owner, "ProvideAttributeValueUpdate", func(a FederateAmbassador) { a.ProvideAttributeValueUpdate(obj) })
	return nil
}

// --- Object/interaction sends ---

// SendInteraction routes a timestamped or receive-order interaction
// from h to every current subscriber of class.
func (f *Federation) SendInteraction(h FederateHandle, class InteractionHandle, payload []byte, order Order, timestamp *ltime.Time) (RetractionHandle, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	fed, err := f.requireCallable(h)
	if err != nil {
		return 0, err
	}
	if !f.publishedInteractions[h].Contains(class) {
		return 0, ErrInteractionClassNotPublished
	}
	env, retraction, err := f.buildEnvelope(fed, Interaction, "", payload, order, timestamp)
	if err != nil {
		return 0, err
	}
	env.InteractionClass = class
	f.route(env, f.subscribedInteractions[class])
	f.recomputeLocked()
	return retraction, nil
}

// UpdateAttributeValues routes an object update from h to obj's
// class subscribers.
func (f *Federation) UpdateAttributeValues(h FederateHandle, obj ObjectHandle, payload []byte, order Order, timestamp *ltime.Time) (RetractionHandle, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	fed, err := f.requireCallable(h)
	if err != nil {
		return 0, err
	}
	rec, ok := f.objects[obj]
	if !ok {
		return 0, ErrObjectInstanceNotKnown
	}
	env, retraction, err := f.buildEnvelope(fed, Update, rec.className, payload, order, timestamp)
	if err != nil {
		return 0, err
	}
	env.Object = obj
	f.route(env, f.subscribedObjectClasses[rec.className])
	f.recomputeLocked()
	return retraction, nil
}

func (f *Federation) buildEnvelope(sender *Federate, kind Kind, className string, payload []byte, order Order, timestamp *ltime.Time) (Envelope, RetractionHandle, error) {
	f.nextSent++
	env := Envelope{
		Kind:      kind,
		ClassName: className,
		Payload:   payload,
		Sender:    sender.Handle,
		SentOrder: f.nextSent,
		Order:     order,
	}
	var retraction RetractionHandle
	if order == Timestamp {
		if timestamp == nil {
			return Envelope{}, 0, ErrInvalidLogicalTime
		}
		if sender.Regulating {
			minAllowed := sender.Committed
			if timestamp.Compare(minAllowed) < 0 {
				return Envelope{}, 0, ErrInvalidLogicalTime
			}
		}
		env.Timestamp = *timestamp
		f.nextRetract++
		retraction = RetractionHandle(f.nextRetract)
		env.Retraction = retraction
		env.HasRetraction = true
		// The record exists from the moment the handle is issued, so a
		// retraction is valid even when the send had no subscribers;
		// route fills in the recipients it actually reaches.
		f.retractions[retraction] = retractionRecord{sender: sender.Handle, timestamp: *timestamp}
	}
	return env, retraction, nil
}

// route delivers env to every federate in subscribers, honouring the
// constrained-vs-not-constrained degeneration rule: a
// timestamped message sent to a non-constrained recipient is enqueued
// as receive-order; its callback reports receivedOrder=Receive and
// still passes the timestamp through.
func (f *Federation) route(env Envelope, subscribers set.Set[FederateHandle]) {
	for recipient := range subscribers {
		if recipient == env.Sender {
			continue
		}
		q, ok := f.queues[recipient]
		if !ok {
			continue
		}
		fed, ok := f.dir.Get(recipient)
		if !ok || fed.Liveness != Alive {
			continue
		}
		if env.HasRetraction {
			rec := f.retractions[env.Retraction]
			rec.recipients = append(rec.recipients, recipient)
			f.retractions[env.Retraction] = rec
		}
		if env.Order == Timestamp && fed.Constrained {
			q.EnqueueTSO(env)
		} else {
			q.EnqueueRO(env)
			// RO predicate: this core treats asynchronous delivery
			// as always enabled, so a receive-order entry (including the
			// degenerate receivedOrder=Receive case of a timestamped send
			// to a non-constrained recipient) is deliverable the moment
			// it is queued rather than held for an advance cycle.
			for _, ready := range q.DrainRO() {
				f.deliver(recipient, ready, Receive)
			}
		}
	}
}

// Retract withdraws a still-pending timestamped message. Precondition:
// the sender's committed time is still strictly before the message's
// timestamp.
func (f *Federation) Retract(sender FederateHandle, h RetractionHandle) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	fed, err := f.requireCallable(sender)
	if err != nil {
		return err
	}
	rec, ok := f.retractions[h]
	if !ok || rec.sender != sender {
		return ErrInvalidMessageRetractionHandle
	}
	if fed.Committed.Compare(rec.timestamp) >= 0 {
		return ErrMessageCanNoLongerBeRetracted
	}
	for _, recipient := range rec.recipients {
		if q, ok := f.queues[recipient]; ok {
			q.Retract(h)
		}
	}
	if rec.delivered {
		// At least one recipient already has the message in hand — a
		// non-constrained recipient takes timestamped sends the moment
		// they are routed, ahead of the sender's own committed time.
		// Still-queued copies were withdrawn above, but the call as a
		// whole could not be honoured; the sender hears about that
		// asynchronously, the same way it hears about its grants.
		f.enqueue(sender, "RequestRetractionFailed", func(a FederateAmbassador) {
			a.RequestRetractionFailed(h, ErrMessageCanNoLongerBeRetracted)
		})
		delete(f.retractions, h)
		return nil
	}
	delete(f.retractions, h)
	if f.metrics != nil {
		f.metrics.Retractions.Inc()
	}
	return nil
}

// --- Time management ---

// EnableTimeRegulation begins the regulation track for h.
func (f *Federation) EnableTimeRegulation(h FederateHandle, lookahead ltime.Interval) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, err := f.requireCallable(h); err != nil {
		return err
	}
	if err := f.dir.SetRegulating(h, lookahead); err != nil {
		return err
	}
	fed, _ := f.dir.Get(h)
	lbts := lbtsExcluding(f.dir.Kind(), f.dir.Snapshot(), h)
	tReg := fed.Committed
	if lbts.T.Compare(tReg) > 0 {
		tReg = lbts.T
	}
	f.enqueue(h, "TimeRegulationEnabled", func(a FederateAmbassador) { a.TimeRegulationEnabled(tReg) })
	f.recomputeLocked()
	return nil
}

// DisableTimeRegulation ends the regulation track for h.
func (f *Federation) DisableTimeRegulation(h FederateHandle) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, err := f.requireCallable(h); err != nil {
		return err
	}
	if err := f.dir.ClearRegulating(h); err != nil {
		return err
	}
	f.recomputeLocked()
	return nil
}

// EnableTimeConstrained begins the constrained track for h, silently
// discarding any already-queued message whose timestamp is at or
// before h's current committed time.
func (f *Federation) EnableTimeConstrained(h FederateHandle) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, err := f.requireCallable(h); err != nil {
		return err
	}
	if err := f.dir.SetConstrained(h); err != nil {
		return err
	}
	fed, _ := f.dir.Get(h)
	if q, ok := f.queues[h]; ok {
		for {
			pos, _, ok := q.PeekTSO()
			if !ok || !pos.Less(ltime.OpenAt(fed.Committed)) {
				break
			}
			q.PopTSO()
		}
	}
	f.enqueue(h, "TimeConstrainedEnabled", func(a FederateAmbassador) { a.TimeConstrainedEnabled(fed.Committed) })
	f.recomputeLocked()
	return nil
}

// DisableTimeConstrained ends the constrained track for h.
func (f *Federation) DisableTimeConstrained(h FederateHandle) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, err := f.requireCallable(h); err != nil {
		return err
	}
	if err := f.dir.ClearConstrained(h); err != nil {
		return err
	}
	f.recomputeLocked()
	return nil
}

// ModifyLookahead changes h's lookahead in place.
func (f *Federation) ModifyLookahead(h FederateHandle, lookahead ltime.Interval) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, err := f.requireCallable(h); err != nil {
		return err
	}
	if err := f.dir.ModifyLookahead(h, lookahead); err != nil {
		return err
	}
	f.recomputeLocked()
	return nil
}

func (f *Federation) requestAdvance(h FederateHandle, mode AdvanceMode, target ltime.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	fed, err := f.requireCallable(h)
	if err != nil {
		return err
	}
	if fed.AdvanceState != AdvanceIdle {
		return ErrInTimeAdvancingState
	}
	if target.Compare(fed.Committed) < 0 {
		return ErrLogicalTimeAlreadyPassed
	}
	fed.AdvanceState = AdvancePending
	fed.AdvanceMode = mode
	fed.AdvanceTarget = target
	f.recomputeLocked()
	return nil
}

// TimeAdvanceRequest requests TAR semantics.
func (f *Federation) TimeAdvanceRequest(h FederateHandle, t ltime.Time) error {
	return f.requestAdvance(h, TAR, t)
}

// TimeAdvanceRequestAvailable requests TARA semantics.
func (f *Federation) TimeAdvanceRequestAvailable(h FederateHandle, t ltime.Time) error {
	return f.requestAdvance(h, TARA, t)
}

// NextMessageRequest requests NMR semantics.
func (f *Federation) NextMessageRequest(h FederateHandle, t ltime.Time) error {
	return f.requestAdvance(h, NMR, t)
}

// NextMessageRequestAvailable requests NMRA semantics.
func (f *Federation) NextMessageRequestAvailable(h FederateHandle, t ltime.Time) error {
	return f.requestAdvance(h, NMRA, t)
}

// FlushQueueRequest requests FQR semantics.
func (f *Federation) FlushQueueRequest(h FederateHandle, t ltime.Time) error {
	return f.requestAdvance(h, FQR, t)
}

// recomputeLocked re-derives LBTS and re-evaluates every federate's
// pending advance request against it. Callers must hold mu. It is the
// single reactive hook driving C4's "recompute on every relevant
// change" requirement.
func (f *Federation) recomputeLocked() {
	kind := f.dir.Kind()
	// CommitTime below fires the directory's onChange hook, re-entering
	// this function before the outer iteration finishes. The re-entrant
	// call may grant other pending federates, so every iteration
	// re-reads the live record instead of trusting the snapshot it
	// started from: a federate the inner call already granted is Idle
	// by the time the outer loop reaches it, and must not be granted a
	// second time.
	for _, snap := range f.dir.Snapshot() {
		live, ok := f.dir.Get(snap.Handle)
		if !ok || live.AdvanceState != AdvancePending {
			continue
		}
		q, ok := f.queues[snap.Handle]
		if !ok {
			continue
		}
		lbts := lbtsExcluding(kind, f.dir.Snapshot(), snap.Handle)
		prior := live.Committed
		decision := EvaluateAdvance(snap.Handle, live.AdvanceMode, live.AdvanceTarget, prior, lbts, q)
		for _, env := range decision.Deliver {
			f.deliver(snap.Handle, env, Timestamp)
		}
		if decision.GrantTime != nil {
			grant := *decision.GrantTime
			live.AdvanceState = AdvanceGranting
			_ = f.dir.CommitTime(snap.Handle, grant)
			live.AdvanceState = AdvanceIdle
			f.enqueue(snap.Handle, "TimeAdvanceGrant", func(a FederateAmbassador) { a.TimeAdvanceGrant(grant) })
			if f.metrics != nil {
				f.metrics.AdvanceGrants.Inc()
				if span, err := grant.Sub(prior); err == nil {
					f.metrics.AdvanceLatency.Observe(intervalFloat(kind, span))
				}
			}
		}
	}
	if f.metrics != nil {
		f.metrics.LBTS.Set(lbtsGauge(kind, f.dir.Snapshot()))
	}
}

func intervalFloat(kind ltime.Kind, d ltime.Interval) float64 {
	if kind == ltime.Integer64 {
		return float64(d.AsInt64())
	}
	return d.AsFloat64()
}

func lbtsGauge(kind ltime.Kind, federates []Federate) float64 {
	pos := ComputeLBTS(kind, federates)
	if pos.T.IsFinal() {
		return float64(1<<62) // representable "unbounded" sentinel for the gauge
	}
	if kind == ltime.Integer64 {
		return float64(pos.T.AsInt64())
	}
	return pos.T.AsFloat64()
}

// deliver appends a callback that hands env to the recipient's
// ambassador. receivedOrder is the order the message was actually
// dequeued under, which differs from env.Order in the degenerate case:
// a timestamped send to a non-constrained recipient drains through the
// RO FIFO and is reported as receivedOrder=Receive, with its timestamp
// still passed through.
func (f *Federation) deliver(recipient FederateHandle, env Envelope, receivedOrder Order) {
	var ts *ltime.Time
	if env.Order == Timestamp {
		t := env.Timestamp
		ts = &t
	}
	if env.HasRetraction {
		if rec, ok := f.retractions[env.Retraction]; ok {
			rec.delivered = true
			f.retractions[env.Retraction] = rec
		}
	}
	switch env.Kind {
	case Interaction:
		f.enqueue(recipient, "ReceiveInteraction", func(a FederateAmbassador) {
			a.ReceiveInteraction(env.InteractionClass, env.Payload, env.Order, receivedOrder, ts, env.Retraction, env.HasRetraction)
		})
	case Delete:
		f.enqueue(recipient, "RemoveObjectInstance", func(a FederateAmbassador) {
			a.RemoveObjectInstance(env.Object, env.Order, receivedOrder, ts)
		})
	default:
		f.enqueue(recipient, "ReflectAttributeValues", func(a FederateAmbassador) {
			a.ReflectAttributeValues(env.Object, env.Payload, env.Order, receivedOrder, ts, env.Retraction, env.HasRetraction)
		})
	}
}

func (f *Federation) enqueue(h FederateHandle, kind string, fn func(FederateAmbassador)) {
	f.mailbox[h] = append(f.mailbox[h], callback{kind: kind, fn: fn})
}

// --- Queries ---

// QueryGALT returns the federation's current LBTS position.
func (f *Federation) QueryGALT() ltime.Position {
	f.mu.Lock()
	defer f.mu.Unlock()
	return ComputeLBTS(f.dir.Kind(), f.dir.Snapshot())
}

// QueryLogicalTime returns h's committed time.
func (f *Federation) QueryLogicalTime(h FederateHandle) (ltime.Time, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	fed, ok := f.dir.Get(h)
	if !ok || fed.Liveness == Gone {
		return ltime.Time{}, ErrFederateNotExecutionMember
	}
	return fed.Committed, nil
}

// QueryLITS returns h's least incoming timestamp: the earliest
// pending TSO position still queued for h, or Final if none.
func (f *Federation) QueryLITS(h FederateHandle) (ltime.Time, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	q, ok := f.queues[h]
	if !ok {
		return ltime.Time{}, ErrFederateNotExecutionMember
	}
	if pos, _, ok := q.PeekTSO(); ok {
		return pos.T, nil
	}
	return ltime.Final(f.dir.Kind()), nil
}

// QueryLookahead returns h's current lookahead.
func (f *Federation) QueryLookahead(h FederateHandle) (ltime.Interval, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	fed, ok := f.dir.Get(h)
	if !ok {
		return ltime.Interval{}, ErrFederateNotExecutionMember
	}
	if !fed.Regulating {
		return ltime.Interval{}, ErrTimeRegulationIsNotEnabled
	}
	return fed.Lookahead, nil
}

// --- Callback pump ---

// EvokeCallback dispatches at most one pending callback to h's
// ambassador, waiting up to maxWait for one to arrive. It reports
// whether a callback was dispatched.
func (f *Federation) EvokeCallback(h FederateHandle, maxWait time.Duration) (bool, error) {
	deadline := time.Now().Add(maxWait)
	for {
		cb, amb, ok := f.popCallback(h)
		if ok {
			f.runCallback(h, amb, cb)
			return true, nil
		}
		if time.Now().After(deadline) {
			return false, nil
		}
		time.Sleep(time.Millisecond)
	}
}

// EvokeMultipleCallbacks dispatches callbacks for at least minWait and
// at most maxWait, returning the count dispatched.
func (f *Federation) EvokeMultipleCallbacks(h FederateHandle, minWait, maxWait time.Duration) (int, error) {
	deadline := time.Now().Add(maxWait)
	minDeadline := time.Now().Add(minWait)
	dispatched := 0
	for time.Now().Before(deadline) {
		cb, amb, ok := f.popCallback(h)
		if !ok {
			if time.Now().After(minDeadline) {
				break
			}
			time.Sleep(time.Millisecond)
			continue
		}
		f.runCallback(h, amb, cb)
		dispatched++
	}
	return dispatched, nil
}

func (f *Federation) popCallback(h FederateHandle) (callback, FederateAmbassador, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	queued := f.mailbox[h]
	if len(queued) == 0 {
		return callback{}, nil, false
	}
	cb := queued[0]
	f.mailbox[h] = queued[1:]
	return cb, f.ambassadors[h], true
}

func (f *Federation) runCallback(h FederateHandle, amb FederateAmbassador, cb callback) {
	if amb == nil {
		return
	}
	f.mu.Lock()
	if fed, ok := f.dir.Get(h); ok {
		fed.inCallback = true
	}
	f.mu.Unlock()

	// A panic out of application code is the FederateInternalError
	// case: logged and contained at this boundary, never allowed to
	// poison core state or take down the pump.
	defer func() {
		if r := recover(); r != nil {
			f.log.Error("federate callback panicked",
				"federation", f.name, "federate", h, "callback", cb.kind, "panic", r)
		}
		f.mu.Lock()
		if fed, ok := f.dir.Get(h); ok {
			fed.inCallback = false
		}
		f.mu.Unlock()
	}()
	cb.fn(amb)
}
