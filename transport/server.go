// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package transport implements the federation-server side of the
// wire protocol: a TCP listener that multiplexes the
// create/destroy/list control plane and every joined federate's
// declaration-management, object-management, and time-management
// calls over the wire/frame codec, each accepted connection on its own
// goroutine.
//
// Each connection gets its own goroutine reading requests and
// dispatching them serially into the federation.Federation they name
// (which does its own internal locking), plus one goroutine per
// joined federate pumping EvokeCallback the way the HLA_IMMEDIATE
// callback model does and pushing the results back over the same
// connection as MsgCallback frames. golang.org/x/sync/errgroup
// supervises the accept loop and every connection goroutine; a
// connection's callback pump is a plain goroutine that stops when that
// connection's handler returns and cancels its context.
package transport

import (
	"context"
	"net"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/luxfi/log"
	"github.com/luxfi/openrti/federation"
	"github.com/luxfi/openrti/ltime"
	"github.com/luxfi/openrti/metrics"
	"github.com/luxfi/openrti/wire"
)

// pumpInterval is how often a joined connection's callback pump
// goroutine polls EvokeCallback while idle.
const pumpInterval = 20 * time.Millisecond

// Server accepts connections and dispatches their frames against a
// federation.Registry.
type Server struct {
	log      log.Logger
	metrics  *metrics.Metrics
	registry *federation.Registry

	mu       sync.Mutex
	sessions map[SessionID]net.Conn
}

// NewServer returns a Server dispatching against registry.
func NewServer(registry *federation.Registry, logger log.Logger, m *metrics.Metrics) *Server {
	if logger == nil {
		logger = log.NewNoOpLogger()
	}
	return &Server{
		log:      logger,
		metrics:  m,
		registry: registry,
		sessions: make(map[SessionID]net.Conn),
	}
}

// Serve accepts connections on ln until ctx is cancelled (then
// returning ErrServerClosed), handling each on its own goroutine
// supervised by an errgroup.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		<-ctx.Done()
		return ln.Close()
	})
	g.Go(func() error {
		for {
			conn, err := ln.Accept()
			if err != nil {
				select {
				case <-ctx.Done():
					return ErrServerClosed
				default:
					return err
				}
			}
			g.Go(func() error {
				s.handleConn(ctx, conn)
				return nil
			})
		}
	})
	return g.Wait()
}

type connState struct {
	conn     net.Conn
	writeMu  sync.Mutex
	session  SessionID
	fed      *federation.Federation
	name     string
	handle   federation.FederateHandle
	kind     ltime.Kind
	joined   bool
}

func (s *Server) handleConn(ctx context.Context, conn net.Conn) {
	session, err := newSessionID()
	if err != nil {
		s.log.Error("could not assign session id", "error", err)
		_ = conn.Close()
		return
	}
	cs := &connState{conn: conn, session: session}
	s.mu.Lock()
	s.sessions[session] = conn
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		delete(s.sessions, session)
		s.mu.Unlock()
		_ = conn.Close()
	}()

	s.log.Info("connection accepted", "session", session, "remote", conn.RemoteAddr())

	pumpCtx, cancelPump := context.WithCancel(ctx)
	defer cancelPump()

	for {
		frame, err := wire.ReadFrame(conn)
		if err != nil {
			s.log.Debug("connection closed", "session", session, "error", err)
			return
		}
		if err := s.dispatch(pumpCtx, cs, frame); err != nil {
			s.writeErr(cs, frame, err)
		}
	}
}

func (s *Server) dispatch(ctx context.Context, cs *connState, frame wire.Frame) error {
	switch frame.Type {
	case wire.MsgCreateFederation:
		name, kind, err := decodeCreateRequest(frame.Payload)
		if err != nil {
			return err
		}
		if _, err := s.registry.Create(name, kind); err != nil {
			return err
		}
		s.writeAck(cs, frame, nil)
		return nil
	case wire.MsgDestroyFederation:
		name, err := decodeObjectClassOp(frame.Payload)
		if err != nil {
			return err
		}
		if err := s.registry.Destroy(name); err != nil {
			return err
		}
		s.writeAck(cs, frame, nil)
		return nil
	case wire.MsgListFederations:
		s.writeAck(cs, frame, encodeNameList(s.registry.List()))
		return nil
	case wire.MsgJoin:
		return s.handleJoin(ctx, cs, frame)
	}

	if !cs.joined {
		return ErrNotJoined
	}
	return s.dispatchFederateOp(cs, frame)
}

func (s *Server) handleJoin(ctx context.Context, cs *connState, frame wire.Frame) error {
	if cs.joined {
		return ErrAlreadyJoined
	}
	fed, err := s.registry.Get(frame.FederationID)
	if err != nil {
		return err
	}
	displayName, clientVersion, err := decodeJoinRequest(frame.Payload)
	if err != nil {
		return err
	}
	if err := federation.CheckCompatible(clientVersion); err != nil {
		return err
	}
	amb := &remoteAmbassador{cs: cs, federationID: frame.FederationID, write: s.writePushFrame}
	handle, err := fed.Join(displayName, amb)
	if err != nil {
		return err
	}
	cs.fed = fed
	cs.name = frame.FederationID
	cs.handle = handle
	cs.kind = fed.Kind()
	cs.joined = true

	go s.pump(ctx, cs)

	s.writeAck(cs, frame, encodeHandleAck(uint64(handle)))
	return nil
}

// pump repeatedly drains cs's mailbox through EvokeCallback, matching
// the HLA_IMMEDIATE callback model. Each dispatched callback is written to the wire by the
// remoteAmbassador registered at join.
func (s *Server) pump(ctx context.Context, cs *connState) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}
		dispatched, err := cs.fed.EvokeCallback(cs.handle, pumpInterval)
		if err != nil {
			s.log.Debug("pump stopped", "session", cs.session, "error", err)
			return
		}
		if !dispatched {
			continue
		}
	}
}

func (s *Server) dispatchFederateOp(cs *connState, frame wire.Frame) error {
	fed := cs.fed
	h := cs.handle
	kind := cs.kind

	switch frame.Type {
	case wire.MsgResign:
		action := federation.ResignAction(0)
		if len(frame.Payload) > 0 {
			action = federation.ResignAction(frame.Payload[0])
		}
		if err := fed.Resign(h, action); err != nil {
			return err
		}
		s.writeAck(cs, frame, nil)
	case wire.MsgPublishInteraction:
		class, err := decodeClassOp(frame.Payload)
		if err != nil {
			return err
		}
		if err := fed.PublishInteractionClass(h, federation.InteractionHandle(class)); err != nil {
			return err
		}
		s.writeAck(cs, frame, nil)
	case wire.MsgUnpublishInteraction:
		class, err := decodeClassOp(frame.Payload)
		if err != nil {
			return err
		}
		if err := fed.UnpublishInteractionClass(h, federation.InteractionHandle(class)); err != nil {
			return err
		}
		s.writeAck(cs, frame, nil)
	case wire.MsgSubscribeInteraction:
		class, err := decodeClassOp(frame.Payload)
		if err != nil {
			return err
		}
		if err := fed.SubscribeInteractionClass(h, federation.InteractionHandle(class)); err != nil {
			return err
		}
		s.writeAck(cs, frame, nil)
	case wire.MsgUnsubscribeInteraction:
		class, err := decodeClassOp(frame.Payload)
		if err != nil {
			return err
		}
		if err := fed.UnsubscribeInteractionClass(h, federation.InteractionHandle(class)); err != nil {
			return err
		}
		s.writeAck(cs, frame, nil)
	case wire.MsgPublishObjectClass:
		className, err := decodeObjectClassOp(frame.Payload)
		if err != nil {
			return err
		}
		if err := fed.PublishObjectClassAttributes(h, className); err != nil {
			return err
		}
		s.writeAck(cs, frame, nil)
	case wire.MsgUnpublishObjectClass:
		className, err := decodeObjectClassOp(frame.Payload)
		if err != nil {
			return err
		}
		if err := fed.UnpublishObjectClassAttributes(h, className); err != nil {
			return err
		}
		s.writeAck(cs, frame, nil)
	case wire.MsgSubscribeObjectClass:
		className, err := decodeObjectClassOp(frame.Payload)
		if err != nil {
			return err
		}
		if err := fed.SubscribeObjectClassAttributes(h, className); err != nil {
			return err
		}
		s.writeAck(cs, frame, nil)
	case wire.MsgUnsubscribeObjectClass:
		className, err := decodeObjectClassOp(frame.Payload)
		if err != nil {
			return err
		}
		if err := fed.UnsubscribeObjectClassAttributes(h, className); err != nil {
			return err
		}
		s.writeAck(cs, frame, nil)
	case wire.MsgRegisterObject:
		className, err := decodeObjectClassOp(frame.Payload)
		if err != nil {
			return err
		}
		obj, err := fed.RegisterObjectInstance(h, className)
		if err != nil {
			return err
		}
		s.writeAck(cs, frame, encodeHandleAck(uint64(obj)))
	case wire.MsgDeleteObjectInstance:
		req, err := decodeDeleteRequest(frame.Payload, kind)
		if err != nil {
			return err
		}
		if err := fed.DeleteObjectInstance(h, federation.ObjectHandle(req.Object), req.Order, req.Timestamp); err != nil {
			return err
		}
		s.writeAck(cs, frame, nil)
	case wire.MsgRequestAttributeValueUpdate:
		obj, err := decodeClassOp(frame.Payload)
		if err != nil {
			return err
		}
		if err := fed.RequestAttributeValueUpdate(h, federation.ObjectHandle(obj)); err != nil {
			return err
		}
		s.writeAck(cs, frame, nil)
	case wire.MsgSendInteraction:
		req, err := decodeSendRequest(frame.Payload, kind)
		if err != nil {
			return err
		}
		retraction, err := fed.SendInteraction(h, federation.InteractionHandle(req.Target), req.Payload, req.Order, req.Timestamp)
		if err != nil {
			return err
		}
		s.writeAck(cs, frame, encodeHandleAck(uint64(retraction)))
	case wire.MsgUpdateAttributeValues:
		req, err := decodeSendRequest(frame.Payload, kind)
		if err != nil {
			return err
		}
		retraction, err := fed.UpdateAttributeValues(h, federation.ObjectHandle(req.Target), req.Payload, req.Order, req.Timestamp)
		if err != nil {
			return err
		}
		s.writeAck(cs, frame, encodeHandleAck(uint64(retraction)))
	case wire.MsgRetract:
		retraction, err := decodeClassOp(frame.Payload)
		if err != nil {
			return err
		}
		if err := fed.Retract(h, federation.RetractionHandle(retraction)); err != nil {
			return err
		}
		s.writeAck(cs, frame, nil)
	case wire.MsgEnableTimeRegulation:
		lookahead, err := decodeIntervalArg(frame.Payload, kind)
		if err != nil {
			return err
		}
		if err := fed.EnableTimeRegulation(h, lookahead); err != nil {
			return err
		}
		s.writeAck(cs, frame, nil)
	case wire.MsgDisableTimeRegulation:
		if err := fed.DisableTimeRegulation(h); err != nil {
			return err
		}
		s.writeAck(cs, frame, nil)
	case wire.MsgEnableTimeConstrained:
		if err := fed.EnableTimeConstrained(h); err != nil {
			return err
		}
		s.writeAck(cs, frame, nil)
	case wire.MsgDisableTimeConstrained:
		if err := fed.DisableTimeConstrained(h); err != nil {
			return err
		}
		s.writeAck(cs, frame, nil)
	case wire.MsgModifyLookahead:
		lookahead, err := decodeIntervalArg(frame.Payload, kind)
		if err != nil {
			return err
		}
		if err := fed.ModifyLookahead(h, lookahead); err != nil {
			return err
		}
		s.writeAck(cs, frame, nil)
	case wire.MsgTimeAdvanceRequest:
		return s.dispatchAdvance(cs, frame, fed.TimeAdvanceRequest)
	case wire.MsgTimeAdvanceRequestAvailable:
		return s.dispatchAdvance(cs, frame, fed.TimeAdvanceRequestAvailable)
	case wire.MsgNextMessageRequest:
		return s.dispatchAdvance(cs, frame, fed.NextMessageRequest)
	case wire.MsgNextMessageRequestAvailable:
		return s.dispatchAdvance(cs, frame, fed.NextMessageRequestAvailable)
	case wire.MsgFlushQueueRequest:
		return s.dispatchAdvance(cs, frame, fed.FlushQueueRequest)
	case wire.MsgQueryGALT:
		pos := fed.QueryGALT()
		s.writeAck(cs, frame, encodeTimeArg(pos.T))
	case wire.MsgQueryLogicalTime:
		t, err := fed.QueryLogicalTime(h)
		if err != nil {
			return err
		}
		s.writeAck(cs, frame, encodeTimeArg(t))
	case wire.MsgQueryLITS:
		t, err := fed.QueryLITS(h)
		if err != nil {
			return err
		}
		s.writeAck(cs, frame, encodeTimeArg(t))
	case wire.MsgQueryLookahead:
		d, err := fed.QueryLookahead(h)
		if err != nil {
			return err
		}
		s.writeAck(cs, frame, encodeIntervalArg(d))
	default:
		return ErrUnknownMessageType
	}
	return nil
}

// dispatchAdvance decodes a target time and invokes one of the five
// TimeAdvanceRequest-shaped calls; the grant itself always arrives
// later as a pushed MsgCallback.
func (s *Server) dispatchAdvance(cs *connState, frame wire.Frame, call func(federation.FederateHandle, ltime.Time) error) error {
	target, err := decodeTimeArg(frame.Payload, cs.kind)
	if err != nil {
		return err
	}
	if err := call(cs.handle, target); err != nil {
		return err
	}
	s.writeAck(cs, frame, nil)
	return nil
}

func (s *Server) writeAck(cs *connState, req wire.Frame, payload []byte) {
	s.writeFrame(cs, wire.Frame{FederationID: req.FederationID, Type: wire.MsgAck, Payload: payload})
}

func (s *Server) writeErr(cs *connState, req wire.Frame, err error) {
	s.writeFrame(cs, wire.Frame{FederationID: req.FederationID, Type: wire.MsgErr, Payload: []byte(err.Error())})
}

func (s *Server) writePushFrame(cs *connState, federationID string, payload []byte) {
	s.writeFrame(cs, wire.Frame{FederationID: federationID, Type: wire.MsgCallback, Payload: payload})
}

func (s *Server) writeFrame(cs *connState, f wire.Frame) {
	cs.writeMu.Lock()
	defer cs.writeMu.Unlock()
	if err := wire.WriteFrame(cs.conn, f); err != nil {
		s.log.Debug("write failed", "session", cs.session, "error", err)
	}
}

// remoteAmbassador is the FederateAmbassador registered at Join for a
// networked federate: every callback method serialises its arguments
// into a MsgCallback frame and hands it to write, which the server
// funnels through the connection's writeMu alongside request/response
// frames so the two never interleave mid-frame.
type remoteAmbassador struct {
	cs           *connState
	federationID string
	write        func(cs *connState, federationID string, payload []byte)
}

func (r *remoteAmbassador) ReflectAttributeValues(object federation.ObjectHandle, payload []byte, order, receivedOrder federation.Order, ts *ltime.Time, retraction federation.RetractionHandle, hasRetraction bool) {
	r.write(r.cs, r.federationID, encodeCallback(cbReflectAttributeValues, uint64(object), payload, order, receivedOrder, ts, uint64(retraction), hasRetraction, ltime.Time{}, ""))
}

func (r *remoteAmbassador) ReceiveInteraction(class federation.InteractionHandle, payload []byte, order, receivedOrder federation.Order, ts *ltime.Time, retraction federation.RetractionHandle, hasRetraction bool) {
	r.write(r.cs, r.federationID, encodeCallback(cbReceiveInteraction, uint64(class), payload, order, receivedOrder, ts, uint64(retraction), hasRetraction, ltime.Time{}, ""))
}

func (r *remoteAmbassador) RemoveObjectInstance(object federation.ObjectHandle, order, receivedOrder federation.Order, ts *ltime.Time) {
	r.write(r.cs, r.federationID, encodeCallback(cbRemoveObjectInstance, uint64(object), nil, order, receivedOrder, ts, 0, false, ltime.Time{}, ""))
}

func (r *remoteAmbassador) TimeRegulationEnabled(t ltime.Time) {
	r.write(r.cs, r.federationID, encodeCallback(cbTimeRegulationEnabled, 0, nil, 0, 0, nil, 0, false, t, ""))
}

func (r *remoteAmbassador) TimeConstrainedEnabled(t ltime.Time) {
	r.write(r.cs, r.federationID, encodeCallback(cbTimeConstrainedEnabled, 0, nil, 0, 0, nil, 0, false, t, ""))
}

func (r *remoteAmbassador) TimeAdvanceGrant(t ltime.Time) {
	r.write(r.cs, r.federationID, encodeCallback(cbTimeAdvanceGrant, 0, nil, 0, 0, nil, 0, false, t, ""))
}

func (r *remoteAmbassador) ProvideAttributeValueUpdate(object federation.ObjectHandle) {
	r.write(r.cs, r.federationID, encodeCallback(cbProvideAttributeValueUpdate, uint64(object), nil, 0, 0, nil, 0, false, ltime.Time{}, ""))
}

func (r *remoteAmbassador) RequestRetractionFailed(handle federation.RetractionHandle, err error) {
	r.write(r.cs, r.federationID, encodeCallback(cbRequestRetractionFailed, 0, nil, 0, 0, nil, uint64(handle), true, ltime.Time{}, err.Error()))
}

var _ federation.FederateAmbassador = (*remoteAmbassador)(nil)
