// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package transport

import (
	"crypto/rand"
	"crypto/sha256"

	"github.com/luxfi/ids"
)

// SessionID names one accepted connection for the lifetime of the
// process, the way a consensus network names a peer by ids.NodeID:
// it is the handle the server's connection table, logs, and metrics
// key on, independent of the federate handle a MsgJoin eventually
// grants (a session exists before any federation membership does).
type SessionID = ids.ID

// newSessionID draws 32 random bytes and folds them through sha256
// into an ids.ID, the same "hash arbitrary bytes into a fixed-width
// identifier" idiom the validator set uses for subnet and chain IDs.
func newSessionID() (SessionID, error) {
	var seed [32]byte
	if _, err := rand.Read(seed[:]); err != nil {
		return ids.Empty, err
	}
	sum := sha256.Sum256(seed[:])
	return ids.ToID(sum[:])
}
