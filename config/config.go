// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package config parses and validates the options recognised at
// connect/create: the RTI node address, the
// logical time implementation, the callback model, and FOM module
// paths.
package config

import (
	"net"

	"github.com/luxfi/openrti/ltime"
)

// CallbackModel selects how a federate's callbacks are dispatched.
type CallbackModel uint8

const (
	// HLAEvoked requires the federate to pump evokeCallback /
	// evokeMultipleCallbacks itself.
	HLAEvoked CallbackModel = iota
	// HLAImmediate dispatches callbacks from an internal goroutine
	// that repeatedly pumps the same evoke path.
	HLAImmediate
)

func (m CallbackModel) String() string {
	if m == HLAImmediate {
		return "HLA_IMMEDIATE"
	}
	return "HLA_EVOKED"
}

// defaultRTINode is used when rtinode is unset: localhost with an
// ephemeral port.
const defaultRTINode = "localhost:0"

// Config is a validated set of connect/create options.
type Config struct {
	RTINode       string
	LogicalTime   ltime.Kind
	CallbackModel CallbackModel
	FOMPaths      []string
}

// Option configures a Config under New.
type Option func(*Config)

// WithRTINode sets the federation server's host:port.
func WithRTINode(addr string) Option {
	return func(c *Config) { c.RTINode = addr }
}

// WithLogicalTime selects HLAinteger64Time or HLAfloat64Time.
func WithLogicalTime(kind ltime.Kind) Option {
	return func(c *Config) { c.LogicalTime = kind }
}

// WithCallbackModel selects HLA_EVOKED or HLA_IMMEDIATE.
func WithCallbackModel(model CallbackModel) Option {
	return func(c *Config) { c.CallbackModel = model }
}

// WithFOMPaths records one or more FOM module file paths. The core
// treats these as opaque; only their presence as configuration is preserved.
func WithFOMPaths(paths ...string) Option {
	return func(c *Config) { c.FOMPaths = append(c.FOMPaths, paths...) }
}

// New builds a Config from opts, applying defaults and validating the
// result.
func New(opts ...Option) (*Config, error) {
	c := &Config{
		RTINode:     defaultRTINode,
		LogicalTime: ltime.Integer64,
	}
	for _, opt := range opts {
		opt(c)
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Config) validate() error {
	if _, _, err := net.SplitHostPort(c.RTINode); err != nil {
		return ErrInvalidRTINode
	}
	switch c.LogicalTime {
	case ltime.Integer64, ltime.Float64:
	default:
		return ErrInvalidLogicalTimeKind
	}
	switch c.CallbackModel {
	case HLAEvoked, HLAImmediate:
	default:
		return ErrInvalidCallbackModel
	}
	return nil
}
