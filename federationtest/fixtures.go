// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package federationtest provides fixture builders, a recording
// ambassador, and a concurrent scenario runner shared by the
// federation package's tests and by higher-level integration tests.
package federationtest

import (
	"testing"
	"time"

	"github.com/luxfi/log"

	"github.com/luxfi/openrti/federation"
	"github.com/luxfi/openrti/ltime"
	"github.com/luxfi/openrti/metrics"
)

// NewFederation builds an empty federation execution over kind,
// wired to a no-op logger and no metrics (nil), suitable
// for tests that don't care about log output or Prometheus wiring.
func NewFederation(t *testing.T, kind ltime.Kind) *federation.Federation {
	t.Helper()
	return federation.NewFederation(t.Name(), kind, log.NewNoOpLogger(), nil)
}

// NewFederationWithMetrics is NewFederation, but wires in the caller's
// already-registered *metrics.Metrics m so assertions can inspect
// counters and gauges after a scenario runs.
func NewFederationWithMetrics(t *testing.T, kind ltime.Kind, m *metrics.Metrics) *federation.Federation {
	t.Helper()
	return federation.NewFederation(t.Name(), kind, log.NewNoOpLogger(), m)
}

// Federate bundles a joined federate's handle with its recording
// ambassador and the federation it joined, for tests that need to
// both drive the federation and observe what was delivered back.
type Federate struct {
	F      *federation.Federation
	Handle federation.FederateHandle
	Amb    *RecordingAmbassador
}

// DrainOne pumps f's callback queue for this federate until a call of
// kind has been dispatched, failing the test after a short timeout.
// Most federation calls only enqueue a callback; nothing hands it to
// the ambassador until EvokeCallback is actually called, matching the
// real suspension-point model instead of the callback firing
// synchronously on the calling goroutine.
func (fed Federate) DrainOne(t *testing.T, kind string) Call {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for {
		for _, c := range fed.Amb.Calls() {
			if c.Kind == kind {
				return c
			}
		}
		if time.Now().After(deadline) {
			t.Fatalf("federationtest: no %s callback recorded", kind)
		}
		if _, err := fed.F.EvokeCallback(fed.Handle, 10*time.Millisecond); err != nil {
			t.Fatalf("federationtest: EvokeCallback: %v", err)
		}
	}
}

// Join admits a new federate named name into f, registering a
// RecordingAmbassador as its callback sink.
func Join(t *testing.T, f *federation.Federation, name string) Federate {
	t.Helper()
	amb := NewRecordingAmbassador()
	h, err := f.Join(name, amb)
	if err != nil {
		t.Fatalf("federationtest: join %q: %v", name, err)
	}
	return Federate{F: f, Handle: h, Amb: amb}
}

// Regulating joins name, then enables time regulation with the given
// lookahead, draining the TimeRegulationEnabled callback before
// returning so the federate is immediately ready to send.
func Regulating(t *testing.T, f *federation.Federation, name string, lookahead ltime.Interval) Federate {
	t.Helper()
	fed := Join(t, f, name)
	if err := f.EnableTimeRegulation(fed.Handle, lookahead); err != nil {
		t.Fatalf("federationtest: enable regulation for %q: %v", name, err)
	}
	fed.DrainOne(t, "TimeRegulationEnabled")
	return fed
}

// Constrained joins name, then enables time constraint, draining the
// TimeConstrainedEnabled callback before returning.
func Constrained(t *testing.T, f *federation.Federation, name string) Federate {
	t.Helper()
	fed := Join(t, f, name)
	if err := f.EnableTimeConstrained(fed.Handle); err != nil {
		t.Fatalf("federationtest: enable constrained for %q: %v", name, err)
	}
	fed.DrainOne(t, "TimeConstrainedEnabled")
	return fed
}
