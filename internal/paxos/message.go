package paxos

// The five messages of the protocol. Prepare and Promise make up phase 1,
// Accept and Accepted phase 2, and Learn tells learners that a value has
// been chosen so they can converge without counting votes themselves.
//
// Rejections are not a separate message type: a Promise or Accepted with
// OK=false is a nack, and carries HighestPromised so the rejected proposer
// can skip straight past every round the acceptor has seen.
//
// Values are opaque byte slices. Nothing in the protocol ever looks inside
// one; callers are responsible for encoding whatever they want agreement on.

// Prepare asks acceptors to promise away all proposals below ProposalNumber.
type Prepare struct {
	ProposalNumber ProposalNumber
	From           string
}

func (p Prepare) GetFrom() string { return p.From }

// Promise answers a Prepare. On OK the acceptor has promised not to accept
// anything below ProposalNumber, and AcceptedProposal/AcceptedValue report
// the highest proposal it had already accepted, if any. On !OK the prepare
// was stale and HighestPromised holds the number that beat it.
type Promise struct {
	ProposalNumber   ProposalNumber
	OK               bool
	AcceptedProposal ProposalNumber
	AcceptedValue    []byte
	HighestPromised  ProposalNumber
	From             string
}

func (p Promise) GetFrom() string { return p.From }

// Accept asks acceptors to accept Value at ProposalNumber.
type Accept struct {
	ProposalNumber ProposalNumber
	Value          []byte
	From           string
}

func (a Accept) GetFrom() string { return a.From }

// Accepted answers an Accept. OK means the acceptor recorded the proposal;
// learners count these. On !OK, HighestPromised holds the promise that
// blocked it.
type Accepted struct {
	ProposalNumber  ProposalNumber
	OK              bool
	Value           []byte
	HighestPromised ProposalNumber
	From            string
}

func (a Accepted) GetFrom() string { return a.From }

// Learn announces that Value was chosen at ProposalNumber. Sent by a
// proposer once a quorum has accepted, so learners need not wait to count
// a quorum of Accepted votes themselves.
type Learn struct {
	ProposalNumber ProposalNumber
	Value          []byte
	From           string
}

func (l Learn) GetFrom() string { return l.From }
