// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package transport

import (
	"testing"

	"github.com/luxfi/openrti/federation"
	"github.com/luxfi/openrti/ltime"
	"github.com/luxfi/openrti/version"
	"github.com/luxfi/openrti/wire"
)

func TestOrderedTimeRoundTrip(t *testing.T) {
	ts := ltime.NewInteger64Time(42)
	p := wire.NewPacker(16)
	packOrderedTime(p, federation.Timestamp, &ts)

	u := wire.NewUnpacker(p.Bytes)
	order, got, err := unpackOrderedTime(u, ltime.Integer64)
	if err != nil {
		t.Fatal(err)
	}
	if order != federation.Timestamp {
		t.Fatalf("expected Timestamp order, got %v", order)
	}
	if got == nil || got.Compare(ts) != 0 {
		t.Fatalf("expected round-tripped time %v, got %v", ts, got)
	}
}

func TestOrderedTimeRoundTripNoTimestamp(t *testing.T) {
	p := wire.NewPacker(16)
	packOrderedTime(p, federation.Receive, nil)

	u := wire.NewUnpacker(p.Bytes)
	order, got, err := unpackOrderedTime(u, ltime.Integer64)
	if err != nil {
		t.Fatal(err)
	}
	if order != federation.Receive {
		t.Fatalf("expected Receive order, got %v", order)
	}
	if got != nil {
		t.Fatalf("expected no timestamp, got %v", got)
	}
}

func TestJoinRequestRoundTrip(t *testing.T) {
	client := &version.Application{Name: "fedctl", Major: 1, Minor: 2, Patch: 3}
	b := encodeJoinRequest("alice", client)

	name, got, err := decodeJoinRequest(b)
	if err != nil {
		t.Fatal(err)
	}
	if name != "alice" {
		t.Fatalf("expected name %q, got %q", "alice", name)
	}
	if got.Name != client.Name || got.Major != client.Major || got.Minor != client.Minor || got.Patch != client.Patch {
		t.Fatalf("expected client %+v, got %+v", client, got)
	}
}

func TestHandleAckRoundTrip(t *testing.T) {
	b := encodeHandleAck(123456789)
	got, err := decodeHandleAck(b)
	if err != nil {
		t.Fatal(err)
	}
	if got != 123456789 {
		t.Fatalf("expected 123456789, got %d", got)
	}
}

func TestSendRequestRoundTrip(t *testing.T) {
	ts := ltime.NewInteger64Time(7)
	want := sendRequest{
		Target:    55,
		Payload:   []byte("hello"),
		Order:     federation.Timestamp,
		Timestamp: &ts,
	}
	b := encodeSendRequest(want)

	got, err := decodeSendRequest(b, ltime.Integer64)
	if err != nil {
		t.Fatal(err)
	}
	if got.Target != want.Target {
		t.Fatalf("expected target %d, got %d", want.Target, got.Target)
	}
	if string(got.Payload) != string(want.Payload) {
		t.Fatalf("expected payload %q, got %q", want.Payload, got.Payload)
	}
	if got.Order != want.Order || got.Timestamp == nil || got.Timestamp.Compare(ts) != 0 {
		t.Fatalf("expected order %v / timestamp %v, got %v / %v", want.Order, ts, got.Order, got.Timestamp)
	}
}

func TestDeleteRequestRoundTrip(t *testing.T) {
	want := deleteRequest{Object: 9, Order: federation.Receive}
	b := encodeDeleteRequest(want)

	got, err := decodeDeleteRequest(b, ltime.Integer64)
	if err != nil {
		t.Fatal(err)
	}
	if got.Object != want.Object || got.Order != want.Order || got.Timestamp != nil {
		t.Fatalf("expected %+v, got %+v", want, got)
	}
}

func TestIntervalArgRoundTrip(t *testing.T) {
	d := ltime.NewInteger64Interval(5)
	b := encodeIntervalArg(d)
	got, err := decodeIntervalArg(b, ltime.Integer64)
	if err != nil {
		t.Fatal(err)
	}
	if got.Compare(d) != 0 {
		t.Fatalf("expected interval %v, got %v", d, got)
	}
}

func TestTimeArgRoundTrip(t *testing.T) {
	tm := ltime.NewInteger64Time(99)
	b := encodeTimeArg(tm)
	got, err := decodeTimeArg(b, ltime.Integer64)
	if err != nil {
		t.Fatal(err)
	}
	if got.Compare(tm) != 0 {
		t.Fatalf("expected time %v, got %v", tm, got)
	}
}

func TestCreateRequestRoundTrip(t *testing.T) {
	b := encodeCreateRequest("shootout", ltime.Float64)
	name, kind, err := decodeCreateRequest(b)
	if err != nil {
		t.Fatal(err)
	}
	if name != "shootout" || kind != ltime.Float64 {
		t.Fatalf("expected (shootout, Float64), got (%s, %v)", name, kind)
	}
}

func TestNameListRoundTrip(t *testing.T) {
	names := []string{"alpha", "beta", "gamma"}
	b := encodeNameList(names)
	got, err := decodeNameList(b)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != len(names) {
		t.Fatalf("expected %d names, got %d", len(names), len(got))
	}
	for i := range names {
		if got[i] != names[i] {
			t.Fatalf("expected name %d to be %q, got %q", i, names[i], got[i])
		}
	}
}

func TestClassOpRoundTrip(t *testing.T) {
	b := encodeClassOp(17)
	got, err := decodeClassOp(b)
	if err != nil {
		t.Fatal(err)
	}
	if got != 17 {
		t.Fatalf("expected 17, got %d", got)
	}
}

func TestObjectClassOpRoundTrip(t *testing.T) {
	b := encodeObjectClassOp("Platform.Aircraft")
	got, err := decodeObjectClassOp(b)
	if err != nil {
		t.Fatal(err)
	}
	if got != "Platform.Aircraft" {
		t.Fatalf("expected %q, got %q", "Platform.Aircraft", got)
	}
}
