// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/luxfi/openrti/utils/wrappers"
)

// Metrics holds the federation-execution counters and gauges exposed
// to the process's prometheus registry. A Registry hands the one
// instance it was given to every Federation it creates.
type Metrics struct {
	Registry prometheus.Registerer

	// FederatesJoined counts successful joinFederationExecution calls.
	FederatesJoined prometheus.Counter
	// AdvanceGrants counts timeAdvanceGrant callbacks emitted across
	// every federate in the execution.
	AdvanceGrants prometheus.Counter
	// Retractions counts successful retract(h) calls.
	Retractions prometheus.Counter
	// LBTS tracks the federation's current lower-bound-on-time-stamp,
	// as the numeric value of the logical time (see federation's
	// lbtsGauge for the encoding of the unbounded/Final case).
	LBTS prometheus.Gauge

	// AdvanceLatency is the logical-time span each grant covers (the
	// grant time minus the federate's prior committed time), one
	// Observer of Averager's shape.
	AdvanceLatency Averager
}

// NewMetrics registers and returns the federation-execution metric
// set under reg. Registration failures are accumulated rather than
// returned individually, matching NewAveragerWithErrs in metric.go, since a
// single bad registration (e.g. a name collision during tests that
// create multiple federations against one registry) should not abort
// construction of the rest.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	errs := &wrappers.Errs{}

	joined := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "openrti_federates_joined_total",
		Help: "Total number of federates that have joined a federation execution.",
	})
	grants := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "openrti_time_advance_grants_total",
		Help: "Total number of timeAdvanceGrant callbacks emitted.",
	})
	retractions := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "openrti_retractions_total",
		Help: "Total number of successful message retractions.",
	})
	lbts := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "openrti_lbts",
		Help: "Current lower bound on time stamp (LBTS) of the federation.",
	})

	errs.Add(reg.Register(joined))
	errs.Add(reg.Register(grants))
	errs.Add(reg.Register(retractions))
	errs.Add(reg.Register(lbts))

	m := &Metrics{
		Registry:        reg,
		FederatesJoined: joined,
		AdvanceGrants:   grants,
		Retractions:     retractions,
		LBTS:            lbts,
		AdvanceLatency:  NewAveragerWithErrs("openrti_time_advance_latency_logical", "logical-time span of advance requests", reg, errs),
	}
	return m, errs.Err()
}

// Register registers an additional prometheus collector against the
// same registry, for callers (e.g. the wire transport) that need to
// expose their own metrics alongside the federation's.
func (m *Metrics) Register(collector prometheus.Collector) error {
	return m.Registry.Register(collector)
}
