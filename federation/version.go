// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package federation

import (
	"fmt"

	"github.com/luxfi/openrti/version"
)

// CheckCompatible verifies that a connecting federate's reported
// client version is compatible with this execution's RTI version
//, before any join is attempted. Major-version equality
// is the compatibility bar (version.Application.Compatible).
func CheckCompatible(client *version.Application) error {
	rti := version.RTIVersion()
	if client == nil {
		return nil
	}
	if !rti.Compatible(client) {
		return fmt.Errorf("%w: RTI is %s, federate is %s", ErrRTIinternalError, rti, client)
	}
	return nil
}
