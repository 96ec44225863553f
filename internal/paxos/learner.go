package paxos

import "sync"

// Learner discovers the chosen value. It counts positive Accepted votes
// per proposal number and decides once any single proposal has votes from
// a majority of distinct acceptors; it also takes the short path when a
// Learn broadcast arrives from a proposer that already saw its quorum.
//
// A decision is final. Once made it never changes, and all further input
// for this consensus instance is ignored. Two learners can decide at
// different times but never on different values: two quorums always share
// an acceptor, and that acceptor voted for exactly one proposal at any
// number.
type Learner struct {
	id          string
	clusterSize int

	mu        sync.Mutex
	votes     map[ProposalNumber]*QuorumTracker
	values    map[ProposalNumber][]byte
	chosen    []byte
	decided   bool
	callbacks []func(value []byte)
}

func NewLearner(id string, clusterSize int) *Learner {
	return &Learner{
		id:          id,
		clusterSize: clusterSize,
		votes:       make(map[ProposalNumber]*QuorumTracker),
		values:      make(map[ProposalNumber][]byte),
	}
}

func (l *Learner) ID() string { return l.id }

// HandleAccepted records one acceptor's vote. Duplicate deliveries of the
// same vote are no-ops.
func (l *Learner) HandleAccepted(msg Accepted) {
	if !msg.OK {
		return
	}
	l.mu.Lock()
	if l.decided {
		l.mu.Unlock()
		return
	}
	tracker, ok := l.votes[msg.ProposalNumber]
	if !ok {
		tracker = NewQuorumTracker(l.clusterSize)
		l.votes[msg.ProposalNumber] = tracker
		l.values[msg.ProposalNumber] = msg.Value
	}
	tracker.Grant(msg.From)
	if !tracker.Reached() {
		l.mu.Unlock()
		return
	}
	l.decideLocked(l.values[msg.ProposalNumber])
}

// HandleLearn records a decision announced by a proposer.
func (l *Learner) HandleLearn(msg Learn) {
	l.mu.Lock()
	if l.decided {
		l.mu.Unlock()
		return
	}
	l.decideLocked(msg.Value)
}

// decideLocked finalizes the decision and runs the callbacks. It is
// entered with l.mu held and releases it before the callbacks run.
func (l *Learner) decideLocked(value []byte) {
	l.decided = true
	l.chosen = value
	l.votes = nil
	l.values = nil
	callbacks := l.callbacks
	l.callbacks = nil
	l.mu.Unlock()
	for _, fn := range callbacks {
		fn(value)
	}
}

// ChosenValue returns the decided value, if any.
func (l *Learner) ChosenValue() ([]byte, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.chosen, l.decided
}

// OnDecided registers fn to run exactly once when the decision is made.
// If the decision already happened, fn runs immediately.
func (l *Learner) OnDecided(fn func(value []byte)) {
	l.mu.Lock()
	if l.decided {
		value := l.chosen
		l.mu.Unlock()
		fn(value)
		return
	}
	l.callbacks = append(l.callbacks, fn)
	l.mu.Unlock()
}
