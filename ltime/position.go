// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package ltime

// Position is a timestamped position (t, open): a
// time refined by whether the exact instant t is itself available
// ("closed") or only strictly-greater instants are ("open"). This
// refinement is kept outside the Time/Interval algebra and composed
// here so that C1 stays a plain ordered group with saturation.
type Position struct {
	T    Time
	Open bool
}

// Closed returns the position (t, closed): t itself is available.
func Closed(t Time) Position {
	return Position{T: t}
}

// OpenAt returns the position (t, open): only instants strictly
// greater than t are available.
func OpenAt(t Time) Position {
	return Position{T: t, Open: true}
}

// Compare returns -1, 0, or 1 as p is less than, equal to, or greater
// than other, per (t1,o1) < (t2,o2) iff t1<t2, or t1==t2 and o1==closed
// and o2==open.
func (p Position) Compare(other Position) int {
	if c := p.T.Compare(other.T); c != 0 {
		return c
	}
	switch {
	case p.Open == other.Open:
		return 0
	case !p.Open && other.Open:
		return -1
	default:
		return 1
	}
}

// Less reports whether p sorts strictly before other.
func (p Position) Less(other Position) bool {
	return p.Compare(other) < 0
}

// ContributionOf returns the LBTS-style position of committed+lookahead
// for a regulating federate: closed iff lookahead is strictly positive,
// i.e. a zero-lookahead federate may still send exactly at its
// committed time.
func ContributionOf(committed Time, lookahead Interval) Position {
	sum := committed.Add(lookahead)
	zero := Zero(lookahead.Kind())
	if lookahead.Compare(zero) > 0 {
		return Closed(sum)
	}
	return OpenAt(sum)
}

func (p Position) String() string {
	if p.Open {
		return "(" + p.T.String() + ", open)"
	}
	return "(" + p.T.String() + ", closed)"
}
