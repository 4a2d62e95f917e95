// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package federation

import (
	"container/heap"

	"github.com/luxfi/openrti/ltime"
)

// tsoEntry is one not-yet-delivered timestamp-ordered message, keyed
// for ordering by (position, sender, sent-order): equal
// timestamps break ties by ascending sender handle, then ascending
// sent-order counter.
type tsoEntry struct {
	pos   ltime.Position
	env   Envelope
	index int
}

type tsoHeap []*tsoEntry

func (h tsoHeap) Len() int { return len(h) }

func (h tsoHeap) Less(i, j int) bool {
	a, b := h[i], h[j]
	if c := a.pos.Compare(b.pos); c != 0 {
		return c < 0
	}
	if a.env.Sender != b.env.Sender {
		return a.env.Sender < b.env.Sender
	}
	return a.env.SentOrder < b.env.SentOrder
}

func (h tsoHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *tsoHeap) Push(x any) {
	e := x.(*tsoEntry)
	e.index = len(*h)
	*h = append(*h, e)
}

func (h *tsoHeap) Pop() any {
	old := *h
	n := len(old)
	e := old[n-1]
	old[n-1] = nil
	e.index = -1
	*h = old[:n-1]
	return e
}

// Queue is one recipient federate's inbox: a TSO min-heap and an RO
// FIFO, plus the set of retraction handles that must be silently
// dropped on dequeue.
type Queue struct {
	tso       tsoHeap
	ro        []Envelope
	retracted map[RetractionHandle]struct{}
}

// NewQueue returns an empty queue.
func NewQueue() *Queue {
	return &Queue{retracted: make(map[RetractionHandle]struct{})}
}

// EnqueueRO appends a receive-order envelope to the FIFO.
func (q *Queue) EnqueueRO(env Envelope) {
	q.ro = append(q.ro, env)
}

// EnqueueTSO inserts a timestamp-ordered envelope into the heap at
// the closed position (ts, closed): the message is available exactly
// at its own timestamp.
func (q *Queue) EnqueueTSO(env Envelope) {
	heap.Push(&q.tso, &tsoEntry{pos: ltime.Closed(env.Timestamp), env: env})
}

// Retract marks h so that it is dropped, never delivered, the next
// time it would otherwise be dequeued.
func (q *Queue) Retract(h RetractionHandle) {
	q.retracted[h] = struct{}{}
}

func (q *Queue) isRetracted(env Envelope) bool {
	if !env.HasRetraction {
		return false
	}
	_, ok := q.retracted[env.Retraction]
	return ok
}

// discardRetracted permanently drops retracted entries sitting at the
// top of the TSO heap. A retracted message is never delivered, so
// discarding it here (rather than merely skipping it) is safe and
// keeps PeekTSO idempotent.
func (q *Queue) discardRetracted() {
	for len(q.tso) > 0 && q.isRetracted(q.tso[0].env) {
		heap.Pop(&q.tso)
	}
}

// PeekTSO returns the earliest not-retracted TSO entry without
// removing it, or ok=false if the heap is empty.
func (q *Queue) PeekTSO() (pos ltime.Position, env Envelope, ok bool) {
	q.discardRetracted()
	if len(q.tso) == 0 {
		return ltime.Position{}, Envelope{}, false
	}
	top := q.tso[0]
	return top.pos, top.env, true
}

// PopTSO removes and returns the earliest not-retracted TSO entry.
func (q *Queue) PopTSO() (env Envelope, ok bool) {
	q.discardRetracted()
	if len(q.tso) == 0 {
		return Envelope{}, false
	}
	e := heap.Pop(&q.tso).(*tsoEntry)
	return e.env, true
}

// DrainRO removes and returns every currently queued, not-retracted RO
// envelope, in FIFO order. A retracted RO envelope is dropped silently, same as a retracted TSO entry.
func (q *Queue) DrainRO() []Envelope {
	if len(q.ro) == 0 {
		return nil
	}
	out := make([]Envelope, 0, len(q.ro))
	for _, env := range q.ro {
		if q.isRetracted(env) {
			continue
		}
		out = append(out, env)
	}
	q.ro = nil
	return out
}

// HasRO reports whether any receive-order message is queued.
func (q *Queue) HasRO() bool { return len(q.ro) > 0 }

// TSOLen reports the number of not-yet-discarded TSO entries,
// including ones that would be found retracted on the next peek.
func (q *Queue) TSOLen() int { return len(q.tso) }
