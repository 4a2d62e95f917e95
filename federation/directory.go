// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package federation

import (
	"fmt"
	"sync"

	"github.com/luxfi/openrti/ltime"
)

// Liveness is a federate's connection state.
type Liveness uint8

const (
	Alive Liveness = iota
	Resigning
	Gone
)

func (l Liveness) String() string {
	switch l {
	case Alive:
		return "alive"
	case Resigning:
		return "resigning"
	default:
		return "gone"
	}
}

// RegulationState is the Disabled/EnablingPending/Enabled/
// DisablingPending track shared by the regulation and constrained
// tracks.
type RegulationState uint8

const (
	Disabled RegulationState = iota
	EnablingPending
	Enabled
	DisablingPending
)

// ResignAction selects what happens to a resigning federate's
// obligations. Ownership transfer and object deletion bookkeeping
// beyond liveness are a different HLA service and out of this core's
// scope; the action is still recorded so callers can observe it.
type ResignAction uint8

const (
	// CancelThenDeleteThenDivest cancels outstanding ownership
	// negotiations, deletes owned object instances, and divests the
	// rest — the action applied to an unreachable federate
	// automatically.
	CancelThenDeleteThenDivest ResignAction = iota
	NoAction
)

// Federate is the per-federate record.
type Federate struct {
	Handle    FederateHandle
	Name      string
	Liveness  Liveness
	Kind      ltime.Kind

	RegulationState RegulationState
	Regulating      bool
	Lookahead       ltime.Interval

	ConstrainedState RegulationState
	Constrained      bool

	Committed ltime.Time

	AdvanceState  AdvanceTrackState
	AdvanceMode   AdvanceMode
	AdvanceTarget ltime.Time

	inCallback bool
}

// Directory is the replicated set of currently joined federates (C2).
// A single federation process owns one Directory; every mutation goes
// through it so that LBTS recomputation (C4) always observes a
// consistent snapshot.
type Directory struct {
	mu       sync.Mutex
	kind     ltime.Kind
	next     uint64
	byHandle map[FederateHandle]*Federate
	byName   map[string]FederateHandle

	// onChange fires after any mutation that can move LBTS or a grant
	// predicate: membership, regulating/constrained flags, lookahead,
	// or committed time.
	onChange func()
}

// NewDirectory returns an empty directory for a federation using the
// given logical time kind.
func NewDirectory(kind ltime.Kind) *Directory {
	return &Directory{
		kind:     kind,
		byHandle: make(map[FederateHandle]*Federate),
		byName:   make(map[string]FederateHandle),
	}
}

func (d *Directory) notify() {
	if d.onChange != nil {
		d.onChange()
	}
}

// Join admits a new federate. Birth invariant: regulating=false,
// constrained=false, committed=Initial.
func (d *Directory) Join(name string) (FederateHandle, error) {
	d.mu.Lock()

	if name != "" {
		if _, exists := d.byName[name]; exists {
			d.mu.Unlock()
			return 0, fmt.Errorf("%w: %q", ErrNameAlreadyInUse, name)
		}
	}

	d.next++
	h := FederateHandle(d.next)
	d.byHandle[h] = &Federate{
		Handle:    h,
		Name:      name,
		Liveness:  Alive,
		Kind:      d.kind,
		Committed: ltime.Initial(d.kind),
	}
	if name != "" {
		d.byName[name] = h
	}
	d.mu.Unlock()
	d.notify()
	return h, nil
}

// Resign transitions a federate alive -> resigning -> gone. Gone
// federates vanish from LBTS immediately.
func (d *Directory) Resign(h FederateHandle, action ResignAction) error {
	d.mu.Lock()

	f, ok := d.byHandle[h]
	if !ok {
		d.mu.Unlock()
		return ErrFederateNotExecutionMember
	}
	if f.inCallback {
		d.mu.Unlock()
		return ErrCallNotAllowedFromWithinCallback
	}
	f.Liveness = Resigning
	// This core does not model ownership transfer; CancelThenDeleteThenDivest
	// is recorded for observers but has no further bookkeeping here.
	_ = action
	f.Liveness = Gone
	f.Regulating = false
	f.Constrained = false
	delete(d.byName, f.Name)
	d.mu.Unlock()
	d.notify()
	return nil
}

// Get returns the federate record for h.
func (d *Directory) Get(h FederateHandle) (*Federate, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	f, ok := d.byHandle[h]
	return f, ok
}

// withFederate runs fn under the directory lock with h's record, then
// notifies observers. Returns ErrFederateNotExecutionMember if h is
// unknown.
func (d *Directory) withFederate(h FederateHandle, fn func(*Federate) error) error {
	d.mu.Lock()
	f, ok := d.byHandle[h]
	if !ok {
		d.mu.Unlock()
		return ErrFederateNotExecutionMember
	}
	err := fn(f)
	d.mu.Unlock()
	if err == nil {
		d.notify()
	}
	return err
}

// SetRegulating begins enabling time regulation for h with the given
// lookahead (>= Zero). The directory is a single replica here, so the
// two-phase "stabilise with all currently-alive federates"
// collapses to: mutate then notify, since the federation serialises
// every mutation through one logical queue per federation.
func (d *Directory) SetRegulating(h FederateHandle, lookahead ltime.Interval) error {
	return d.withFederate(h, func(f *Federate) error {
		if f.Regulating {
			return ErrTimeRegulationAlreadyEnabled
		}
		if f.RegulationState == EnablingPending {
			return ErrRequestForTimeRegulationPending
		}
		if lookahead.Compare(ltime.Zero(lookahead.Kind())) < 0 {
			return ErrInvalidLookahead
		}
		f.RegulationState = EnablingPending
		f.Lookahead = lookahead
		f.Regulating = true
		f.RegulationState = Enabled
		return nil
	})
}

// ClearRegulating disables time regulation for h.
func (d *Directory) ClearRegulating(h FederateHandle) error {
	return d.withFederate(h, func(f *Federate) error {
		if !f.Regulating {
			return ErrTimeRegulationIsNotEnabled
		}
		f.RegulationState = DisablingPending
		f.Regulating = false
		f.RegulationState = Disabled
		return nil
	})
}

// SetConstrained begins enabling time constraint for h.
func (d *Directory) SetConstrained(h FederateHandle) error {
	return d.withFederate(h, func(f *Federate) error {
		if f.Constrained {
			return ErrTimeConstrainedAlreadyEnabled
		}
		if f.ConstrainedState == EnablingPending {
			return ErrRequestForTimeConstrainedPending
		}
		f.ConstrainedState = EnablingPending
		f.Constrained = true
		f.ConstrainedState = Enabled
		return nil
	})
}

// ClearConstrained disables time constraint for h.
func (d *Directory) ClearConstrained(h FederateHandle) error {
	return d.withFederate(h, func(f *Federate) error {
		if !f.Constrained {
			return ErrTimeConstrainedIsNotEnabled
		}
		f.ConstrainedState = DisablingPending
		f.Constrained = false
		f.ConstrainedState = Disabled
		return nil
	})
}

// ModifyLookahead changes h's lookahead without a full
// disable/enable cycle.
func (d *Directory) ModifyLookahead(h FederateHandle, lookahead ltime.Interval) error {
	return d.withFederate(h, func(f *Federate) error {
		if !f.Regulating {
			return ErrTimeRegulationIsNotEnabled
		}
		if lookahead.Compare(ltime.Zero(lookahead.Kind())) < 0 {
			return ErrInvalidLookahead
		}
		f.Lookahead = lookahead
		return nil
	})
}

// CommitTime advances h's committed time. Called internally by the
// advance-grant state machine (C5) once a grant is decided; t must be
// monotone.
func (d *Directory) CommitTime(h FederateHandle, t ltime.Time) error {
	return d.withFederate(h, func(f *Federate) error {
		if t.Compare(f.Committed) < 0 {
			return fmt.Errorf("%w: committed time must be monotone", ErrInvalidLogicalTime)
		}
		f.Committed = t
		return nil
	})
}

// Snapshot returns a stable copy of every federate record, for LBTS
// computation and test assertions. Copies avoid readers racing the
// directory's own lock.
func (d *Directory) Snapshot() []Federate {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]Federate, 0, len(d.byHandle))
	for _, f := range d.byHandle {
		out = append(out, *f)
	}
	return out
}

// Kind returns the federation's logical time kind.
func (d *Directory) Kind() ltime.Kind { return d.kind }
