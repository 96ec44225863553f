package paxos

import "testing"

func TestProposalNumberOrdering(t *testing.T) {
	cases := []struct {
		name    string
		a, b    ProposalNumber
		greater bool
	}{
		{"higher round wins", ProposalNumber{2, "p1"}, ProposalNumber{1, "p9"}, true},
		{"lower round loses", ProposalNumber{1, "p9"}, ProposalNumber{2, "p1"}, false},
		{"same round tiebreak by id", ProposalNumber{1, "p2"}, ProposalNumber{1, "p1"}, true},
		{"equal is not greater", ProposalNumber{3, "p1"}, ProposalNumber{3, "p1"}, false},
		{"anything beats zero", ProposalNumber{1, "p1"}, ProposalNumber{}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.a.GreaterThan(tc.b); got != tc.greater {
				t.Errorf("%v.GreaterThan(%v) = %v, want %v", tc.a, tc.b, got, tc.greater)
			}
		})
	}
}

func TestProposalNumberTotalOrder(t *testing.T) {
	// No two distinct numbers may compare equal in both directions.
	numbers := []ProposalNumber{
		{}, {1, "p1"}, {1, "p2"}, {2, "p1"}, {2, "p2"}, {3, "p1"},
	}
	for i, a := range numbers {
		for j, b := range numbers {
			if i == j {
				continue
			}
			if !a.GreaterThan(b) && !b.GreaterThan(a) {
				t.Errorf("distinct numbers %v and %v are unordered", a, b)
			}
			if a.GreaterThan(b) && b.GreaterThan(a) {
				t.Errorf("numbers %v and %v are both greater than each other", a, b)
			}
		}
	}
}

func TestProposalNumberNext(t *testing.T) {
	base := ProposalNumber{Round: 7, ProposerID: "p9"}
	next := base.Next("p1")
	if !next.GreaterThan(base) {
		t.Fatalf("Next(%v) = %v, not greater", base, next)
	}
	if next.ProposerID != "p1" {
		t.Fatalf("Next carries wrong proposer id %q", next.ProposerID)
	}
	// The tiebreak must not let a lower proposer id undo the round bump.
	if !next.GreaterThan(ProposalNumber{Round: 7, ProposerID: "p9"}) {
		t.Fatalf("Next from a lower proposer id is not strictly greater")
	}
}

func TestProposalNumberMax(t *testing.T) {
	a := ProposalNumber{2, "p1"}
	b := ProposalNumber{5, "p2"}
	if got := a.Max(b); !got.Equal(b) {
		t.Errorf("Max = %v, want %v", got, b)
	}
	if got := b.Max(a); !got.Equal(b) {
		t.Errorf("Max = %v, want %v", got, b)
	}
}

func TestProposalNumberIsZero(t *testing.T) {
	if !(ProposalNumber{}).IsZero() {
		t.Error("zero value not reported as zero")
	}
	if (ProposalNumber{Round: 1, ProposerID: "p1"}).IsZero() {
		t.Error("real number reported as zero")
	}
}
