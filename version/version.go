// Copyright (C) 2020-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package version

import (
	"fmt"
)

// Application represents the version of a peer's application
type Application struct {
	Name  string
	Major int
	Minor int
	Patch int
}

// String returns the string representation of the version, e.g. "openrti-1.0.0".
func (a *Application) String() string {
	return fmt.Sprintf("%s-%d.%d.%d", a.Name, a.Major, a.Minor, a.Patch)
}

// Before returns true if this version is before the provided version
func (a *Application) Before(other *Application) bool {
	if a.Major != other.Major {
		return a.Major < other.Major
	}
	if a.Minor != other.Minor {
		return a.Minor < other.Minor
	}
	return a.Patch < other.Patch
}

// Compare returns:
// -1 if a < other
// 0 if a == other  
// 1 if a > other
func (a *Application) Compare(other *Application) int {
	if a.Major != other.Major {
		if a.Major < other.Major {
			return -1
		}
		return 1
	}
	if a.Minor != other.Minor {
		if a.Minor < other.Minor {
			return -1
		}
		return 1
	}
	if a.Patch != other.Patch {
		if a.Patch < other.Patch {
			return -1
		}
		return 1
	}
	return 0
}

// Compatible returns true if the versions are compatible
func (a *Application) Compatible(other *Application) bool {
	return a.Major == other.Major
}

// NewApplication constructs an Application version.
func NewApplication(name string, major, minor, patch int) *Application {
	return &Application{Name: name, Major: major, Minor: minor, Patch: patch}
}

// RTIVersion is this implementation's own federate-facing protocol
// version, advertised at connect and checked against a joining
// federate's reported client version.
func RTIVersion() *Application {
	return &Application{
		Name:  "openrti",
		Major: 1,
		Minor: 0,
		Patch: 0,
	}
}
