// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package federation

import "github.com/luxfi/openrti/ltime"

// ComputeLBTS returns the lower bound on time stamp for a federation:
// the minimum, over every alive regulating federate, of
// (committed + lookahead) with the openness rule of
// ltime.ContributionOf. A federation with no regulating
// federates has an unbounded LBTS, (Final, open), so that every
// constrained federate's grant predicate is trivially satisfied —
// including a request targeting Final itself, whose TARA/NMRA bound
// is the same (Final, open) position.
func ComputeLBTS(kind ltime.Kind, federates []Federate) ltime.Position {
	return lbtsExcluding(kind, federates, 0)
}

// lbtsExcluding computes LBTS as ComputeLBTS does, but ignores the
// contribution of the federate named by exclude (FederateHandle zero
// excludes nothing, since handles start at 1). A federate's own
// advance-grant predicate must be evaluated against this
// self-excluding bound rather than the federation-wide LBTS: a
// regulating-and-constrained federate's own pending contribution would
// otherwise hold its LBTS just below its own requested target forever,
// deadlocking any federate that is simultaneously the sole regulator
// and the requester.
func lbtsExcluding(kind ltime.Kind, federates []Federate, exclude FederateHandle) ltime.Position {
	best := ltime.OpenAt(ltime.Final(kind))
	found := false
	for _, f := range federates {
		if f.Liveness != Alive || !f.Regulating || f.Handle == exclude {
			continue
		}
		pos := ltime.ContributionOf(f.Committed, f.Lookahead)
		if !found || pos.Compare(best) < 0 {
			best = pos
			found = true
		}
	}
	return best
}
