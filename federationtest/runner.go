// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package federationtest

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/luxfi/openrti/federation"
)

// Actor is one federate's driving goroutine in a concurrent scenario:
// it issues federation calls against its own handle and pumps its own
// callbacks until ctx is cancelled or it returns an error.
type Actor func(ctx context.Context, h federation.FederateHandle) error

// RunConcurrent runs one Actor per entry of actors concurrently,
// cancelling every remaining actor as soon as one returns a non-nil
// error (golang.org/x/sync/errgroup's standard fan-out/fan-in
// semantics), and returns the first error encountered, if any. It
// exists because advance-grant coordination is inherently about
// multiple federates racing to request and receive advances — a
// sequential driver can't exercise recomputeLocked's reentrant
// fan-out the way concurrent callers do.
func RunConcurrent(parent context.Context, actors map[federation.FederateHandle]Actor) error {
	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	g, ctx := errgroup.WithContext(ctx)
	for h, actor := range actors {
		h, actor := h, actor
		g.Go(func() error {
			return actor(ctx, h)
		})
	}
	return g.Wait()
}

// PumpUntil repeatedly calls f.EvokeCallback for h until ctx is done,
// stopping early once stop returns true. It's the standard drive loop
// an Actor uses to keep its mailbox empty while waiting on some
// condition (a specific TimeAdvanceGrant, a delivered interaction).
func PumpUntil(ctx context.Context, f *federation.Federation, h federation.FederateHandle, stop func() bool) error {
	for {
		if stop() {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if _, err := f.EvokeCallback(h, 10*time.Millisecond); err != nil {
			return err
		}
	}
}
