package transport

import (
	"errors"
	"testing"
	"time"
)

type testMsg struct {
	From string
	Body string
}

func (m testMsg) GetFrom() string { return m.From }

func TestSendAndReceive(t *testing.T) {
	net := NewMemoryNetwork()
	a := net.Endpoint("a")
	b := net.Endpoint("b")

	if err := a.Send("b", testMsg{From: "a", Body: "hello"}); err != nil {
		t.Fatalf("Send: %v", err)
	}
	msg, err := b.ReceiveTimeout(time.Second)
	if err != nil {
		t.Fatalf("Receive: %v", err)
	}
	if got := msg.(testMsg); got.Body != "hello" || got.GetFrom() != "a" {
		t.Fatalf("received %+v", got)
	}
}

func TestSendToUnknownPeer(t *testing.T) {
	net := NewMemoryNetwork()
	a := net.Endpoint("a")
	if err := a.Send("nobody", testMsg{From: "a"}); !errors.Is(err, ErrUnknownPeer) {
		t.Fatalf("Send to unknown peer = %v, want ErrUnknownPeer", err)
	}
}

func TestBroadcastReachesEveryoneIncludingSender(t *testing.T) {
	net := NewMemoryNetwork()
	endpoints := []*MemoryTransport{net.Endpoint("a"), net.Endpoint("b"), net.Endpoint("c")}

	if err := endpoints[0].Broadcast(testMsg{From: "a", Body: "all"}); err != nil {
		t.Fatalf("Broadcast: %v", err)
	}
	for _, ep := range endpoints {
		msg, err := ep.ReceiveTimeout(time.Second)
		if err != nil {
			t.Fatalf("%s: %v", ep.ID(), err)
		}
		if msg.(testMsg).Body != "all" {
			t.Fatalf("%s received %+v", ep.ID(), msg)
		}
	}
}

func TestReceiveTimeout(t *testing.T) {
	net := NewMemoryNetwork()
	a := net.Endpoint("a")
	if _, err := a.ReceiveTimeout(20 * time.Millisecond); !errors.Is(err, ErrTimeout) {
		t.Fatalf("ReceiveTimeout on empty inbox = %v, want ErrTimeout", err)
	}
}

func TestClosedEndpoint(t *testing.T) {
	net := NewMemoryNetwork()
	a := net.Endpoint("a")
	if err := a.Close(); err != nil {
		t.Fatal(err)
	}
	if _, err := a.Receive(); !errors.Is(err, ErrClosed) {
		t.Fatalf("Receive after Close = %v, want ErrClosed", err)
	}
	if err := a.Send("a", testMsg{From: "a"}); !errors.Is(err, ErrClosed) {
		t.Fatalf("Send after Close = %v, want ErrClosed", err)
	}
}

func TestUnreliableDropsEverythingAtRateOne(t *testing.T) {
	net := NewMemoryNetwork()
	net.Unreliable(1.0, 0, 0)
	a := net.Endpoint("a")
	b := net.Endpoint("b")

	for i := 0; i < 20; i++ {
		if err := a.Send("b", testMsg{From: "a"}); err != nil {
			t.Fatal(err)
		}
	}
	if _, err := b.ReceiveTimeout(50 * time.Millisecond); !errors.Is(err, ErrTimeout) {
		t.Fatal("message delivered despite drop rate 1.0")
	}
}

func TestUnreliableDuplicatesAtRateOne(t *testing.T) {
	net := NewMemoryNetwork()
	net.Unreliable(0, 1.0, 0)
	a := net.Endpoint("a")
	b := net.Endpoint("b")

	if err := a.Send("b", testMsg{From: "a", Body: "twice"}); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 2; i++ {
		msg, err := b.ReceiveTimeout(time.Second)
		if err != nil {
			t.Fatalf("copy %d: %v", i+1, err)
		}
		if msg.(testMsg).Body != "twice" {
			t.Fatalf("copy %d: %+v", i+1, msg)
		}
	}
}

func TestUnreliableDelayStillDelivers(t *testing.T) {
	net := NewMemoryNetwork()
	net.Unreliable(0, 0, 10*time.Millisecond)
	a := net.Endpoint("a")
	b := net.Endpoint("b")

	if err := a.Send("b", testMsg{From: "a", Body: "late"}); err != nil {
		t.Fatal(err)
	}
	msg, err := b.ReceiveTimeout(time.Second)
	if err != nil {
		t.Fatalf("delayed message never arrived: %v", err)
	}
	if msg.(testMsg).Body != "late" {
		t.Fatalf("received %+v", msg)
	}
}
