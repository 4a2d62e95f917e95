// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package federation

import "errors"

// Sentinel errors, one per named IEEE-1516 failure mode. The
// federate-facing ambassador boundary returns these directly;
// nothing here is ever translated into a panic.
var (
	// State-precondition.
	ErrFederateNotExecutionMember          = errors.New("federate is not an execution member")
	ErrNameAlreadyInUse                    = errors.New("federate name already in use")
	ErrFederationNotFound                  = errors.New("federation execution not found")
	ErrTimeRegulationAlreadyEnabled        = errors.New("time regulation is already enabled")
	ErrTimeRegulationIsNotEnabled          = errors.New("time regulation is not enabled")
	ErrTimeConstrainedAlreadyEnabled       = errors.New("time constrained is already enabled")
	ErrTimeConstrainedIsNotEnabled         = errors.New("time constrained is not enabled")
	ErrRequestForTimeRegulationPending     = errors.New("a request to enable time regulation is already pending")
	ErrRequestForTimeConstrainedPending    = errors.New("a request to enable time constrained is already pending")
	ErrNoRequestToEnableTimeRegulation     = errors.New("no request to enable time regulation was pending")
	ErrNoRequestToEnableTimeConstrained    = errors.New("no request to enable time constrained was pending")
	ErrInTimeAdvancingState                = errors.New("federate is already advancing time")
	ErrJoinedFederateNotInAdvancingState   = errors.New("joined federate is not in a time-advancing state")

	// Argument-validation.
	ErrInvalidLogicalTime             = errors.New("invalid logical time")
	ErrInvalidLogicalTimeInterval     = errors.New("invalid logical time interval")
	ErrInvalidLookahead               = errors.New("invalid lookahead")
	ErrLogicalTimeAlreadyPassed       = errors.New("logical time already passed")
	ErrInvalidMessageRetractionHandle = errors.New("invalid message retraction handle")
	ErrMessageCanNoLongerBeRetracted  = errors.New("message can no longer be retracted")

	// Object-model / declaration boundary (minimal: the FOM itself is
	// out of scope, but subscription bookkeeping is not).
	ErrInteractionClassNotPublished   = errors.New("interaction class not published")
	ErrInteractionClassNotSubscribed  = errors.New("interaction class not subscribed")
	ErrObjectInstanceNotKnown         = errors.New("object instance not known")

	// Transport/internal.
	ErrNotConnected                     = errors.New("not connected")
	ErrAlreadyConnected                 = errors.New("already connected")
	ErrCallNotAllowedFromWithinCallback = errors.New("call not allowed from within a callback")
	ErrRTIinternalError                 = errors.New("RTI internal error")
)
