package arena

import (
	"bytes"
	"testing"
	"time"

	"github.com/suiarena/arena/pkg/protocol"
)

func TestBroadcastToMatchDeliversToAll(t *testing.T) {
	b := NewBroadcaster(testLogger(), nil)
	m := NewMatch("m1", time.Minute)

	transports := []*fakeTransport{{}, {}, {}}
	for i, tr := range transports {
		s := newSession("0x"+string(rune('a'+i)), tr)
		m.AddSession(s)
	}

	b.BroadcastToMatch(m, protocol.TypeTimeUpdate, protocol.TimeUpdateData{TimeRemaining: 1000})

	var first []byte
	for i, tr := range transports {
		if got := tr.count(t, protocol.TypeTimeUpdate); got != 1 {
			t.Errorf("transport %d received %d messages, want 1", i, got)
			continue
		}
		if first == nil {
			first = tr.msgs[0]
		} else if !bytes.Equal(first, tr.msgs[0]) {
			t.Errorf("transport %d received different bytes; payload must be serialized once", i)
		}
	}
}

func TestBroadcastFailureDoesNotStopFanout(t *testing.T) {
	b := NewBroadcaster(testLogger(), nil)
	m := NewMatch("m1", time.Minute)

	ok1 := &fakeTransport{}
	bad := &fakeTransport{fail: true}
	ok2 := &fakeTransport{}
	m.AddSession(newSession("0xa", ok1))
	m.AddSession(newSession("0xb", bad))
	m.AddSession(newSession("0xc", ok2))

	b.BroadcastToMatch(m, protocol.TypeTimeUpdate, protocol.TimeUpdateData{TimeRemaining: 1000})

	if ok1.count(t, protocol.TypeTimeUpdate) != 1 {
		t.Error("recipient before the failure should still receive the message")
	}
	if ok2.count(t, protocol.TypeTimeUpdate) != 1 {
		t.Error("recipient after the failure should still receive the message")
	}
}

func TestBroadcastSkipsNilTransport(t *testing.T) {
	b := NewBroadcaster(testLogger(), nil)
	m := NewMatch("m1", time.Minute)
	m.AddSession(newSession("0xa", nil))

	// Must not panic.
	b.BroadcastToMatch(m, protocol.TypeTimeUpdate, protocol.TimeUpdateData{TimeRemaining: 1})
}

func TestSendTo(t *testing.T) {
	b := NewBroadcaster(testLogger(), nil)
	tr := &fakeTransport{}
	s := newSession("0xa", tr)

	b.SendTo(s, protocol.TypeError, protocol.ErrorData{Message: "bad"})

	if tr.count(t, protocol.TypeError) != 1 {
		t.Fatal("SendTo should deliver one message")
	}
}
