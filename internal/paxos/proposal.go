package paxos

import "fmt"

// ProposalNumber identifies one proposal attempt. Numbers are totally
// ordered: by Round first, then by ProposerID as a tiebreaker, so two
// proposers can never mint equal numbers for distinct attempts without any
// coordination between them.
type ProposalNumber struct {
	Round      int64
	ProposerID string
}

// IsZero reports whether p is the zero value, meaning "no proposal".
func (p ProposalNumber) IsZero() bool {
	return p.Round == 0 && p.ProposerID == ""
}

func (p ProposalNumber) Equal(other ProposalNumber) bool {
	return p.Round == other.Round && p.ProposerID == other.ProposerID
}

// GreaterThan reports whether p orders strictly after other.
func (p ProposalNumber) GreaterThan(other ProposalNumber) bool {
	if p.Round != other.Round {
		return p.Round > other.Round
	}
	return p.ProposerID > other.ProposerID
}

// GreaterOrEqual reports whether p orders at or after other.
func (p ProposalNumber) GreaterOrEqual(other ProposalNumber) bool {
	return p.Equal(other) || p.GreaterThan(other)
}

// Next returns the smallest number the given proposer may use that is
// strictly greater than p. Proposers fold every number they observe (their
// own attempts and the HighestPromised carried by nacks) into p before
// calling this, so a retry skips past every round already seen.
func (p ProposalNumber) Next(proposerID string) ProposalNumber {
	return ProposalNumber{Round: p.Round + 1, ProposerID: proposerID}
}

// Max returns the greater of p and other.
func (p ProposalNumber) Max(other ProposalNumber) ProposalNumber {
	if other.GreaterThan(p) {
		return other
	}
	return p
}

func (p ProposalNumber) String() string {
	if p.IsZero() {
		return "none"
	}
	return fmt.Sprintf("(%d,%s)", p.Round, p.ProposerID)
}
