// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package transport

import (
	"context"
	"errors"
	"net"
	"sync"
	"time"

	"github.com/luxfi/log"
	"github.com/luxfi/openrti/federation"
	"github.com/luxfi/openrti/ltime"
	"github.com/luxfi/openrti/version"
	"github.com/luxfi/openrti/wire"
)

// callbackBuffer bounds how many pushed MsgCallback frames a Client
// will hold before EvokeCallback/EvokeMultipleCallbacks drains them.
// A federate that never pumps its callbacks is misusing the API the
// same way one that never calls EvokeCallback against a local
// federation.Federation would be; this is generous enough that a
// reasonably paced federate never blocks the read loop on it.
const callbackBuffer = 4096

// Client is a federate-side handle to a Server: it dials a TCP
// connection, joins a named federation, and exposes the same
// request/response surface as federation.Federation, but carried over
// the wire codec instead of an in-process call.
//
// Every exported method after Join serialises one request and blocks
// for its matching MsgAck/MsgErr response; this mirrors the serial
// per-federate serial queue rather than pipelining requests,
// since the server itself dispatches one connection's frames strictly
// in order. Pushed MsgCallback frames are demultiplexed by a
// background read loop into a bounded mailbox that EvokeCallback and
// EvokeMultipleCallbacks drain, matching EvokeCallback's semantics in
// federation.Federation exactly.
type Client struct {
	conn         net.Conn
	log          log.Logger
	federationID string
	kind         ltime.Kind
	handle       federation.FederateHandle

	callMu  sync.Mutex // serialises request/response round trips
	replyCh chan wire.Frame

	callbacks chan decodedCallback
	readErr   chan error
}

// Dial connects to addr and returns a Client ready to Join a
// federation registered on the server listening there. The connection
// is not associated with any federation until Join succeeds.
func Dial(ctx context.Context, addr string, logger log.Logger) (*Client, error) {
	if logger == nil {
		logger = log.NewNoOpLogger()
	}
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, err
	}
	c := &Client{
		conn:      conn,
		log:       logger,
		replyCh:   make(chan wire.Frame, 1),
		callbacks: make(chan decodedCallback, callbackBuffer),
		readErr:   make(chan error, 1),
	}
	go c.readLoop()
	return c, nil
}

// Close closes the underlying connection.
func (c *Client) Close() error { return c.conn.Close() }

// Handle returns the federate handle granted by the most recent Join.
func (c *Client) Handle() federation.FederateHandle { return c.handle }

func (c *Client) readLoop() {
	for {
		frame, err := wire.ReadFrame(c.conn)
		if err != nil {
			c.readErr <- err
			close(c.callbacks)
			return
		}
		if frame.Type == wire.MsgCallback {
			cb, err := decodeCallback(frame.Payload, c.kind)
			if err != nil {
				c.log.Error("malformed callback frame", "error", err)
				continue
			}
			c.callbacks <- cb
			continue
		}
		c.replyCh <- frame
	}
}

// call sends one request frame and waits for its response, returning
// the response payload or the remote error carried by a MsgErr frame.
func (c *Client) call(federationID string, msgType wire.MessageType, payload []byte) ([]byte, error) {
	c.callMu.Lock()
	defer c.callMu.Unlock()

	frame := wire.Frame{FederationID: federationID, Type: msgType, Payload: payload}
	if err := wire.WriteFrame(c.conn, frame); err != nil {
		return nil, err
	}
	select {
	case resp, ok := <-c.replyCh:
		if !ok {
			return nil, <-c.readErr
		}
		if resp.Type == wire.MsgErr {
			return nil, errors.New(string(resp.Payload))
		}
		return resp.Payload, nil
	case err := <-c.readErr:
		return nil, err
	}
}

// CreateFederation asks the server to create a new federation
// execution over the control-plane connection, before any Join.
func (c *Client) CreateFederation(name string, kind ltime.Kind) error {
	_, err := c.call(name, wire.MsgCreateFederation, encodeCreateRequest(name, kind))
	return err
}

// DestroyFederation asks the server to destroy a federation execution.
func (c *Client) DestroyFederation(name string) error {
	_, err := c.call(name, wire.MsgDestroyFederation, encodeObjectClassOp(name))
	return err
}

// ListFederations returns the names of every federation execution
// currently registered on the server.
func (c *Client) ListFederations() ([]string, error) {
	payload, err := c.call("", wire.MsgListFederations, nil)
	if err != nil {
		return nil, err
	}
	return decodeNameList(payload)
}

// Join joins the named federation execution as a new federate, whose
// display name may be empty. The client's own version is reported
// alongside the name so the server can reject an incompatible build
// before admitting it.
func (c *Client) Join(federationID, name string) (federation.FederateHandle, error) {
	payload, err := c.call(federationID, wire.MsgJoin, encodeJoinRequest(name, version.RTIVersion()))
	if err != nil {
		return 0, err
	}
	handle, err := decodeHandleAck(payload)
	if err != nil {
		return 0, err
	}
	c.federationID = federationID
	c.handle = federation.FederateHandle(handle)
	return c.handle, nil
}

// SetKind fixes the logical time representation used to decode times
// and intervals carried in responses and pushed callbacks. A caller
// that created the federation already knows its kind; one joining an
// existing federation must learn it out of band.
func (c *Client) SetKind(kind ltime.Kind) { c.kind = kind }

func (c *Client) Resign(action federation.ResignAction) error {
	_, err := c.call(c.federationID, wire.MsgResign, []byte{byte(action)})
	return err
}

func (c *Client) PublishInteractionClass(class federation.InteractionHandle) error {
	_, err := c.call(c.federationID, wire.MsgPublishInteraction, encodeClassOp(uint64(class)))
	return err
}

func (c *Client) UnpublishInteractionClass(class federation.InteractionHandle) error {
	_, err := c.call(c.federationID, wire.MsgUnpublishInteraction, encodeClassOp(uint64(class)))
	return err
}

func (c *Client) SubscribeInteractionClass(class federation.InteractionHandle) error {
	_, err := c.call(c.federationID, wire.MsgSubscribeInteraction, encodeClassOp(uint64(class)))
	return err
}

func (c *Client) UnsubscribeInteractionClass(class federation.InteractionHandle) error {
	_, err := c.call(c.federationID, wire.MsgUnsubscribeInteraction, encodeClassOp(uint64(class)))
	return err
}

func (c *Client) PublishObjectClassAttributes(className string) error {
	_, err := c.call(c.federationID, wire.MsgPublishObjectClass, encodeObjectClassOp(className))
	return err
}

func (c *Client) UnpublishObjectClassAttributes(className string) error {
	_, err := c.call(c.federationID, wire.MsgUnpublishObjectClass, encodeObjectClassOp(className))
	return err
}

func (c *Client) SubscribeObjectClassAttributes(className string) error {
	_, err := c.call(c.federationID, wire.MsgSubscribeObjectClass, encodeObjectClassOp(className))
	return err
}

func (c *Client) UnsubscribeObjectClassAttributes(className string) error {
	_, err := c.call(c.federationID, wire.MsgUnsubscribeObjectClass, encodeObjectClassOp(className))
	return err
}

func (c *Client) RegisterObjectInstance(className string) (federation.ObjectHandle, error) {
	payload, err := c.call(c.federationID, wire.MsgRegisterObject, encodeObjectClassOp(className))
	if err != nil {
		return 0, err
	}
	obj, err := decodeHandleAck(payload)
	return federation.ObjectHandle(obj), err
}

func (c *Client) DeleteObjectInstance(obj federation.ObjectHandle, order federation.Order, timestamp *ltime.Time) error {
	_, err := c.call(c.federationID, wire.MsgDeleteObjectInstance, encodeDeleteRequest(deleteRequest{Object: uint64(obj), Order: order, Timestamp: timestamp}))
	return err
}

func (c *Client) RequestAttributeValueUpdate(obj federation.ObjectHandle) error {
	_, err := c.call(c.federationID, wire.MsgRequestAttributeValueUpdate, encodeClassOp(uint64(obj)))
	return err
}

func (c *Client) SendInteraction(class federation.InteractionHandle, payload []byte, order federation.Order, timestamp *ltime.Time) (federation.RetractionHandle, error) {
	resp, err := c.call(c.federationID, wire.MsgSendInteraction, encodeSendRequest(sendRequest{Target: uint64(class), Payload: payload, Order: order, Timestamp: timestamp}))
	if err != nil {
		return 0, err
	}
	retraction, err := decodeHandleAck(resp)
	return federation.RetractionHandle(retraction), err
}

func (c *Client) UpdateAttributeValues(obj federation.ObjectHandle, payload []byte, order federation.Order, timestamp *ltime.Time) (federation.RetractionHandle, error) {
	resp, err := c.call(c.federationID, wire.MsgUpdateAttributeValues, encodeSendRequest(sendRequest{Target: uint64(obj), Payload: payload, Order: order, Timestamp: timestamp}))
	if err != nil {
		return 0, err
	}
	retraction, err := decodeHandleAck(resp)
	return federation.RetractionHandle(retraction), err
}

func (c *Client) Retract(h federation.RetractionHandle) error {
	_, err := c.call(c.federationID, wire.MsgRetract, encodeClassOp(uint64(h)))
	return err
}

func (c *Client) EnableTimeRegulation(lookahead ltime.Interval) error {
	_, err := c.call(c.federationID, wire.MsgEnableTimeRegulation, encodeIntervalArg(lookahead))
	return err
}

func (c *Client) DisableTimeRegulation() error {
	_, err := c.call(c.federationID, wire.MsgDisableTimeRegulation, nil)
	return err
}

func (c *Client) EnableTimeConstrained() error {
	_, err := c.call(c.federationID, wire.MsgEnableTimeConstrained, nil)
	return err
}

func (c *Client) DisableTimeConstrained() error {
	_, err := c.call(c.federationID, wire.MsgDisableTimeConstrained, nil)
	return err
}

func (c *Client) ModifyLookahead(lookahead ltime.Interval) error {
	_, err := c.call(c.federationID, wire.MsgModifyLookahead, encodeIntervalArg(lookahead))
	return err
}

func (c *Client) TimeAdvanceRequest(t ltime.Time) error {
	_, err := c.call(c.federationID, wire.MsgTimeAdvanceRequest, encodeTimeArg(t))
	return err
}

func (c *Client) TimeAdvanceRequestAvailable(t ltime.Time) error {
	_, err := c.call(c.federationID, wire.MsgTimeAdvanceRequestAvailable, encodeTimeArg(t))
	return err
}

func (c *Client) NextMessageRequest(t ltime.Time) error {
	_, err := c.call(c.federationID, wire.MsgNextMessageRequest, encodeTimeArg(t))
	return err
}

func (c *Client) NextMessageRequestAvailable(t ltime.Time) error {
	_, err := c.call(c.federationID, wire.MsgNextMessageRequestAvailable, encodeTimeArg(t))
	return err
}

func (c *Client) FlushQueueRequest(t ltime.Time) error {
	_, err := c.call(c.federationID, wire.MsgFlushQueueRequest, encodeTimeArg(t))
	return err
}

func (c *Client) QueryGALT() (ltime.Time, error) {
	payload, err := c.call(c.federationID, wire.MsgQueryGALT, nil)
	if err != nil {
		return ltime.Time{}, err
	}
	return decodeTimeArg(payload, c.kind)
}

func (c *Client) QueryLogicalTime() (ltime.Time, error) {
	payload, err := c.call(c.federationID, wire.MsgQueryLogicalTime, nil)
	if err != nil {
		return ltime.Time{}, err
	}
	return decodeTimeArg(payload, c.kind)
}

func (c *Client) QueryLITS() (ltime.Time, error) {
	payload, err := c.call(c.federationID, wire.MsgQueryLITS, nil)
	if err != nil {
		return ltime.Time{}, err
	}
	return decodeTimeArg(payload, c.kind)
}

func (c *Client) QueryLookahead() (ltime.Interval, error) {
	payload, err := c.call(c.federationID, wire.MsgQueryLookahead, nil)
	if err != nil {
		return ltime.Interval{}, err
	}
	return decodeIntervalArg(payload, c.kind)
}

// --- Callback pump (mirrors federation.Federation's EvokeCallback) ---

// EvokeCallback dispatches at most one pending callback to amb,
// waiting up to maxWait for one to arrive over the wire. It reports
// whether a callback was dispatched.
func (c *Client) EvokeCallback(amb federation.FederateAmbassador, maxWait time.Duration) (bool, error) {
	select {
	case cb, ok := <-c.callbacks:
		if !ok {
			return false, <-c.readErr
		}
		dispatchCallback(amb, cb)
		return true, nil
	case <-time.After(maxWait):
		return false, nil
	}
}

// EvokeMultipleCallbacks dispatches callbacks for at least minWait and
// at most maxWait, returning the count dispatched.
func (c *Client) EvokeMultipleCallbacks(amb federation.FederateAmbassador, minWait, maxWait time.Duration) (int, error) {
	deadline := time.Now().Add(maxWait)
	minDeadline := time.Now().Add(minWait)
	dispatched := 0
	for time.Now().Before(deadline) {
		select {
		case cb, ok := <-c.callbacks:
			if !ok {
				return dispatched, <-c.readErr
			}
			dispatchCallback(amb, cb)
			dispatched++
		case <-time.After(time.Until(deadline)):
			return dispatched, nil
		}
		if time.Now().After(minDeadline) && len(c.callbacks) == 0 {
			break
		}
	}
	return dispatched, nil
}

// dispatchCallback replays one decoded MsgCallback frame against amb,
// the inverse of remoteAmbassador's encodeCallback calls.
func dispatchCallback(amb federation.FederateAmbassador, cb decodedCallback) {
	switch cb.Kind {
	case cbReflectAttributeValues:
		amb.ReflectAttributeValues(federation.ObjectHandle(cb.Handle), cb.Payload, cb.Order, cb.ReceivedOrder, cb.Timestamp, federation.RetractionHandle(cb.Retraction), cb.HasRetraction)
	case cbReceiveInteraction:
		amb.ReceiveInteraction(federation.InteractionHandle(cb.Handle), cb.Payload, cb.Order, cb.ReceivedOrder, cb.Timestamp, federation.RetractionHandle(cb.Retraction), cb.HasRetraction)
	case cbRemoveObjectInstance:
		amb.RemoveObjectInstance(federation.ObjectHandle(cb.Handle), cb.Order, cb.ReceivedOrder, cb.Timestamp)
	case cbTimeRegulationEnabled:
		amb.TimeRegulationEnabled(cb.Time)
	case cbTimeConstrainedEnabled:
		amb.TimeConstrainedEnabled(cb.Time)
	case cbTimeAdvanceGrant:
		amb.TimeAdvanceGrant(cb.Time)
	case cbProvideAttributeValueUpdate:
		amb.ProvideAttributeValueUpdate(federation.ObjectHandle(cb.Handle))
	case cbRequestRetractionFailed:
		amb.RequestRetractionFailed(federation.RetractionHandle(cb.Retraction), errors.New(cb.ErrMsg))
	}
}
