// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package federation

import (
	"sync"

	"github.com/luxfi/log"
	"github.com/luxfi/openrti/ltime"
	"github.com/luxfi/openrti/metrics"
)

// Registry is the federation-server process's table of currently
// running federation executions.
type Registry struct {
	mu          sync.Mutex
	log         log.Logger
	metrics     *metrics.Metrics
	federations map[string]*Federation
}

// NewRegistry returns an empty registry.
func NewRegistry(logger log.Logger, m *metrics.Metrics) *Registry {
	if logger == nil {
		logger = log.NewNoOpLogger()
	}
	return &Registry{
		log:         logger,
		metrics:     m,
		federations: make(map[string]*Federation),
	}
}

// Create starts a new, empty federation execution named name. Fails
// ErrAlreadyConnected if one by that name is already running — the
// closest-fit sentinel to "federation execution already exists",
// since creating a second execution under a live name is exactly the
// "already connected to this name" precondition violation.
func (r *Registry) Create(name string, kind ltime.Kind) (*Federation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.federations[name]; exists {
		return nil, ErrAlreadyConnected
	}
	f := NewFederation(name, kind, r.log, r.metrics)
	r.federations[name] = f
	r.log.Info("federation execution created", "name", name, "kind", kind)
	return f, nil
}

// Destroy removes a federation execution. Fails
// ErrFederationNotFound if unknown.
func (r *Registry) Destroy(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.federations[name]; !ok {
		return ErrFederationNotFound
	}
	delete(r.federations, name)
	r.log.Info("federation execution destroyed", "name", name)
	return nil
}

// Get returns the running federation execution named name.
func (r *Registry) Get(name string) (*Federation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	f, ok := r.federations[name]
	if !ok {
		return nil, ErrFederationNotFound
	}
	return f, nil
}

// List returns the names of every currently running execution.
func (r *Registry) List() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	names := make([]string, 0, len(r.federations))
	for name := range r.federations {
		names = append(names, name)
	}
	return names
}
