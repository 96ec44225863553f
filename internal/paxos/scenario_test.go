package paxos

import (
	"bytes"
	"testing"
	"time"
)

// The canonical three-acceptor race: P1 gets "X" accepted by a majority,
// then a rival proposer with a higher number completes phase 1 against an
// overlapping majority. The overlap guarantees some promise reports
// (1,p1)="X", so the rival is forced to propose "X" too and no second
// value can ever be chosen.
func TestRivalProposerIsForcedToAdoptChosenValue(t *testing.T) {
	acceptors := map[string]*Acceptor{}
	for _, id := range []string{"a1", "a2", "a3"} {
		a, err := NewAcceptor(id, &memStore{})
		if err != nil {
			t.Fatal(err)
		}
		acceptors[id] = a
	}

	// P1 drives (1,p1)="X" through a1 and a2; its messages to a3 are lost.
	p1Number := ProposalNumber{1, "p1"}
	for _, id := range []string{"a1", "a2"} {
		promise, err := acceptors[id].HandlePrepare(Prepare{ProposalNumber: p1Number, From: "p1"})
		if err != nil || !promise.OK {
			t.Fatalf("%s: prepare: ok=%v err=%v", id, promise.OK, err)
		}
	}
	for _, id := range []string{"a1", "a2"} {
		accepted, err := acceptors[id].HandleAccept(Accept{ProposalNumber: p1Number, Value: []byte("X"), From: "p1"})
		if err != nil || !accepted.OK {
			t.Fatalf("%s: accept: ok=%v err=%v", id, accepted.OK, err)
		}
	}
	// "X" is now chosen, whether or not anyone knows it yet.

	// P2 runs a full round against a1 and a3.
	bus := newScriptedBus()
	p2 := NewProposer("p2", 3, bus)
	p2.PhaseTimeout = 2 * time.Second
	done := proposeAsync(p2, []byte("Y"))

	prepare := bus.nextPrepare(t)
	if !prepare.ProposalNumber.GreaterThan(p1Number) {
		t.Fatalf("rival number %v does not beat %v", prepare.ProposalNumber, p1Number)
	}
	for _, id := range []string{"a1", "a3"} {
		promise, err := acceptors[id].HandlePrepare(prepare)
		if err != nil {
			t.Fatal(err)
		}
		p2.Deliver(promise)
	}

	accept := bus.nextAccept(t)
	if !bytes.Equal(accept.Value, []byte("X")) {
		t.Fatalf("rival proposed %q, must have adopted %q", accept.Value, "X")
	}
	for _, id := range []string{"a1", "a3"} {
		accepted, err := acceptors[id].HandleAccept(accept)
		if err != nil {
			t.Fatal(err)
		}
		p2.Deliver(accepted)
	}
	bus.next(t) // Learn

	result := <-done
	if result.err != nil || !bytes.Equal(result.chosen, []byte("X")) {
		t.Fatalf("rival decided %q, %v; the only choosable value is %q", result.chosen, result.err, "X")
	}

	// A learner fed every positive vote agrees, and on the same value.
	l := NewLearner("l1", 3)
	l.HandleAccepted(Accepted{ProposalNumber: accept.ProposalNumber, OK: true, Value: accept.Value, From: "a1"})
	l.HandleAccepted(Accepted{ProposalNumber: accept.ProposalNumber, OK: true, Value: accept.Value, From: "a3"})
	chosen, ok := l.ChosenValue()
	if !ok || !bytes.Equal(chosen, []byte("X")) {
		t.Fatalf("learner saw %q, %v; want %q", chosen, ok, "X")
	}
}
