// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package federationmock provides a gomock-based FederateAmbassador,
// hand-maintained in the shape mockgen would generate for
// federation.FederateAmbassador, following the <pkg>mock naming
// convention used across this codebase's generated mocks.
package federationmock

import (
	"reflect"

	"go.uber.org/mock/gomock"

	"github.com/luxfi/openrti/federation"
	"github.com/luxfi/openrti/ltime"
)

// Ambassador is a mock of federation.FederateAmbassador.
type Ambassador struct {
	ctrl     *gomock.Controller
	recorder *AmbassadorMockRecorder
}

// AmbassadorMockRecorder is the recorder for Ambassador.
type AmbassadorMockRecorder struct {
	mock *Ambassador
}

// NewAmbassador returns a new mock FederateAmbassador.
func NewAmbassador(ctrl *gomock.Controller) *Ambassador {
	mock := &Ambassador{ctrl: ctrl}
	mock.recorder = &AmbassadorMockRecorder{mock}
	return mock
}

// EXPECT returns an object that allows the caller to indicate expected use.
func (m *Ambassador) EXPECT() *AmbassadorMockRecorder {
	return m.recorder
}

func (m *Ambassador) ReflectAttributeValues(object federation.ObjectHandle, payload []byte, sentOrder, receivedOrder federation.Order, timestamp *ltime.Time, retraction federation.RetractionHandle, hasRetraction bool) {
	m.ctrl.T.Helper()
	m.ctrl.Call(m, "ReflectAttributeValues", object, payload, sentOrder, receivedOrder, timestamp, retraction, hasRetraction)
}

func (mr *AmbassadorMockRecorder) ReflectAttributeValues(object, payload, sentOrder, receivedOrder, timestamp, retraction, hasRetraction any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "ReflectAttributeValues", reflect.TypeOf((*Ambassador)(nil).ReflectAttributeValues), object, payload, sentOrder, receivedOrder, timestamp, retraction, hasRetraction)
}

func (m *Ambassador) ReceiveInteraction(class federation.InteractionHandle, payload []byte, sentOrder, receivedOrder federation.Order, timestamp *ltime.Time, retraction federation.RetractionHandle, hasRetraction bool) {
	m.ctrl.T.Helper()
	m.ctrl.Call(m, "ReceiveInteraction", class, payload, sentOrder, receivedOrder, timestamp, retraction, hasRetraction)
}

func (mr *AmbassadorMockRecorder) ReceiveInteraction(class, payload, sentOrder, receivedOrder, timestamp, retraction, hasRetraction any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "ReceiveInteraction", reflect.TypeOf((*Ambassador)(nil).ReceiveInteraction), class, payload, sentOrder, receivedOrder, timestamp, retraction, hasRetraction)
}

func (m *Ambassador) RemoveObjectInstance(object federation.ObjectHandle, sentOrder, receivedOrder federation.Order, timestamp *ltime.Time) {
	m.ctrl.T.Helper()
	m.ctrl.Call(m, "RemoveObjectInstance", object, sentOrder, receivedOrder, timestamp)
}

func (mr *AmbassadorMockRecorder) RemoveObjectInstance(object, sentOrder, receivedOrder, timestamp any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "RemoveObjectInstance", reflect.TypeOf((*Ambassador)(nil).RemoveObjectInstance), object, sentOrder, receivedOrder, timestamp)
}

func (m *Ambassador) TimeRegulationEnabled(t ltime.Time) {
	m.ctrl.T.Helper()
	m.ctrl.Call(m, "TimeRegulationEnabled", t)
}

func (mr *AmbassadorMockRecorder) TimeRegulationEnabled(t any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "TimeRegulationEnabled", reflect.TypeOf((*Ambassador)(nil).TimeRegulationEnabled), t)
}

func (m *Ambassador) TimeConstrainedEnabled(t ltime.Time) {
	m.ctrl.T.Helper()
	m.ctrl.Call(m, "TimeConstrainedEnabled", t)
}

func (mr *AmbassadorMockRecorder) TimeConstrainedEnabled(t any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "TimeConstrainedEnabled", reflect.TypeOf((*Ambassador)(nil).TimeConstrainedEnabled), t)
}

func (m *Ambassador) TimeAdvanceGrant(t ltime.Time) {
	m.ctrl.T.Helper()
	m.ctrl.Call(m, "TimeAdvanceGrant", t)
}

func (mr *AmbassadorMockRecorder) TimeAdvanceGrant(t any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "TimeAdvanceGrant", reflect.TypeOf((*Ambassador)(nil).TimeAdvanceGrant), t)
}

func (m *Ambassador) ProvideAttributeValueUpdate(object federation.ObjectHandle) {
	m.ctrl.T.Helper()
	m.ctrl.Call(m, "ProvideAttributeValueUpdate", object)
}

func (mr *AmbassadorMockRecorder) ProvideAttributeValueUpdate(object any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "ProvideAttributeValueUpdate", reflect.TypeOf((*Ambassador)(nil).ProvideAttributeValueUpdate), object)
}

func (m *Ambassador) RequestRetractionFailed(handle federation.RetractionHandle, err error) {
	m.ctrl.T.Helper()
	m.ctrl.Call(m, "RequestRetractionFailed", handle, err)
}

func (mr *AmbassadorMockRecorder) RequestRetractionFailed(handle, err any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "RequestRetractionFailed", reflect.TypeOf((*Ambassador)(nil).RequestRetractionFailed), handle, err)
}

var _ federation.FederateAmbassador = (*Ambassador)(nil)
