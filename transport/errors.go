// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package transport

import "errors"

var (
	// ErrUnknownMessageType is returned when a frame's Type does not
	// match any opcode this transport understands.
	ErrUnknownMessageType = errors.New("transport: unknown message type")
	// ErrNotJoined is returned when a federate operation is sent on a
	// connection that has not completed MsgJoin yet.
	ErrNotJoined = errors.New("transport: connection has not joined a federation")
	// ErrAlreadyJoined is returned when MsgJoin is sent twice on the
	// same connection.
	ErrAlreadyJoined = errors.New("transport: connection already joined a federation")
	// ErrServerClosed is returned by Server.Serve once its context has
	// been cancelled and the listener has shut down.
	ErrServerClosed = errors.New("transport: server closed")
)
