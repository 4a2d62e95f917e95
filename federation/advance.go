// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package federation

import "github.com/luxfi/openrti/ltime"

// AdvanceMode selects which of the five time-advance services
// a pending request is using.
type AdvanceMode uint8

const (
	// TAR is a plain time-advance request: deliver everything before
	// the target (and a message exactly at the target once LBTS has
	// passed it), then grant exactly at the target.
	TAR AdvanceMode = iota
	// TARA is TAR-available: deliver everything at-or-before the
	// target (the target instant itself is open for same-time TSO
	// delivery), then grant at the target.
	TARA
	// NMR is next-message-request: grant at the earliest pending TSO
	// timestamp not after the target, or at the target if the queue
	// holds nothing that soon.
	NMR
	// NMRA is NMR-available, using an open rather than closed bound
	// at ties so a message exactly at the requester's own contribution
	// is still deliverable.
	NMRA
	// FQR is flush-queue-request: deliver whatever is already queued
	// up to the target with no LBTS wait, trading ordering guarantees
	// for forward progress.
	FQR
)

func (m AdvanceMode) String() string {
	switch m {
	case TAR:
		return "TAR"
	case TARA:
		return "TARA"
	case NMR:
		return "NMR"
	case NMRA:
		return "NMRA"
	default:
		return "FQR"
	}
}

// AdvanceTrackState is the per-federate advance track.
type AdvanceTrackState uint8

const (
	AdvanceIdle AdvanceTrackState = iota
	AdvancePending
	AdvanceGranting
)

// AdvanceDecision is the result of one evaluation of a pending advance
// request: zero or more envelopes ready for delivery, in delivery
// order, and — once the request is satisfied — the time to grant at.
type AdvanceDecision struct {
	Deliver   []Envelope
	GrantTime *ltime.Time
}

// EvaluateAdvance re-checks a federate's pending advance request
// against the federation's current state and its own queue, following
// the grant predicate for mode. It is safe to call repeatedly
// as LBTS moves; each call only delivers and grants what has newly
// become available, and mutates q by popping delivered TSO entries.
//
// lbts must already exclude self's own contribution (see
// lbtsExcluding): a federate's pending request is checked against the
// bound formed by every OTHER regulating federate, so a federate that
// is simultaneously the sole regulator and the requester is not stuck
// waiting on itself.
func EvaluateAdvance(self FederateHandle, mode AdvanceMode, target, committed ltime.Time, lbts ltime.Position, q *Queue) AdvanceDecision {
	switch mode {
	case TAR:
		// Delivery bound is (target, open): a zero-lookahead sender's
		// message sitting exactly at the closed position (target,
		// closed) is still within TAR's window (it is only the grant
		// bound that stays at (target, closed)). Whether that message
		// is deliverable yet is decided by the LBTS gate inside
		// evaluateBounded, not by the bound alone.
		return evaluateBounded(target, ltime.OpenAt(target), ltime.Closed(target), lbts, q)
	case TARA:
		return evaluateBounded(target, ltime.OpenAt(target), ltime.OpenAt(target), lbts, q)
	case FQR:
		return evaluateFlush(target, committed, q)
	default:
		return evaluateNextMessage(mode, target, lbts, q)
	}
}

// evaluateBounded implements TAR and TARA: drain every TSO entry
// strictly below both deliverBound and LBTS, then grant at target once
// LBTS has caught up to grantBound and nothing more can arrive below
// it. An entry at or past LBTS stays queued no matter how far below
// the advance bound it sits — some regulating federate may still send
// an earlier message, and handing the entry out now would break
// timestamp-order monotonicity when that earlier message lands.
func evaluateBounded(target ltime.Time, deliverBound, grantBound, lbts ltime.Position, q *Queue) AdvanceDecision {
	var decision AdvanceDecision
	for {
		pos, env, ok := q.PeekTSO()
		if !ok || !pos.Less(deliverBound) || !pos.Less(lbts) {
			break
		}
		q.PopTSO()
		decision.Deliver = append(decision.Deliver, env)
	}
	if lbts.Compare(grantBound) >= 0 {
		t := target
		decision.GrantTime = &t
	}
	return decision
}

// evaluateFlush implements FQR: deliver whatever is already queued
// at or before the target with no LBTS wait, and grant at the latest
// timestamp actually delivered (or the prior committed time if the
// queue had nothing to offer) since an FQR grant promises only that
// everything available up to the target was delivered, not that
// nothing further may arrive before it.
func evaluateFlush(target, committed ltime.Time, q *Queue) AdvanceDecision {
	bound := ltime.OpenAt(target)
	var decision AdvanceDecision
	grant := committed
	for {
		pos, env, ok := q.PeekTSO()
		if !ok || !pos.Less(bound) {
			break
		}
		q.PopTSO()
		decision.Deliver = append(decision.Deliver, env)
		if env.Timestamp.Compare(grant) > 0 {
			grant = env.Timestamp
		}
	}
	decision.GrantTime = &grant
	return decision
}

// evaluateNextMessage implements NMR and NMRA: grant at the earliest
// pending message not after target once LBTS guarantees no earlier
// message can still arrive, otherwise fall back to granting at target
// itself once LBTS clears it.
func evaluateNextMessage(mode AdvanceMode, target ltime.Time, lbts ltime.Position, q *Queue) AdvanceDecision {
	var decision AdvanceDecision
	pos, env, ok := q.PeekTSO()
	if ok && env.Timestamp.Compare(target) <= 0 {
		if lbts.Compare(ltime.Closed(env.Timestamp)) >= 0 {
			for {
				p2, e2, ok2 := q.PeekTSO()
				if !ok2 || p2.Compare(pos) != 0 {
					break
				}
				q.PopTSO()
				decision.Deliver = append(decision.Deliver, e2)
			}
			t := env.Timestamp
			decision.GrantTime = &t
		}
		return decision
	}

	bound := ltime.Closed(target)
	if mode == NMRA {
		bound = ltime.OpenAt(target)
	}
	if lbts.Compare(bound) >= 0 {
		t := target
		decision.GrantTime = &t
	}
	return decision
}
