// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package log

import (
	"github.com/luxfi/log"
)

// NewProductionLogger returns a log.Logger with JSON-encoded output at
// info level: the logger an openrti-server process wants once
// it leaves the no-op logger NewNoOpLogger returns for tests and library
// defaults.
func NewProductionLogger() (log.Logger, error) {
	factory := log.NewFactoryWithConfig(log.Config{
		LogLevel:     log.InfoLevel,
		DisplayLevel: log.InfoLevel,
		LogFormat:    log.JSON,
	})
	return factory.Make("openrti")
}

// NewDevelopmentLogger returns a log.Logger with human-readable console
// output at debug level, for local runs of cmd/openrti-server.
func NewDevelopmentLogger() (log.Logger, error) {
	factory := log.NewFactoryWithConfig(log.Config{
		LogLevel:     log.DebugLevel,
		DisplayLevel: log.DebugLevel,
		LogFormat:    log.Colors,
	})
	return factory.Make("openrti")
}
