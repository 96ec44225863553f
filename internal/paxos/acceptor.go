package paxos

import "sync"

// Storage is the durable record an acceptor writes before it replies.
// Implementations must not return nil from a Save unless the write is
// actually durable; an acceptor that answers from unpersisted state can
// forget a promise across a crash and break agreement.
type Storage interface {
	SavePromised(n ProposalNumber) error
	LoadPromised() (ProposalNumber, error)
	SaveAccepted(n ProposalNumber, value []byte) error
	LoadAccepted() (ProposalNumber, []byte, error)
	Close() error
}

// Acceptor is the voting role. It maintains exactly two pieces of state,
// both persisted: the highest proposal number it has promised, and the
// highest proposal it has accepted. Both only ever move forward.
//
// Handlers are serialized by a mutex; the state transition and its durable
// write happen atomically with respect to other requests.
type Acceptor struct {
	id    string
	store Storage

	mu               sync.Mutex
	highestPromised  ProposalNumber
	acceptedProposal ProposalNumber
	acceptedValue    []byte
}

// NewAcceptor restores an acceptor from its storage, so a restarted
// acceptor keeps every promise it made before the crash.
func NewAcceptor(id string, store Storage) (*Acceptor, error) {
	a := &Acceptor{id: id, store: store}
	var err error
	if a.highestPromised, err = store.LoadPromised(); err != nil {
		return nil, err
	}
	if a.acceptedProposal, a.acceptedValue, err = store.LoadAccepted(); err != nil {
		return nil, err
	}
	return a, nil
}

func (a *Acceptor) ID() string { return a.id }

// HandlePrepare answers a Prepare. A strictly higher number than anything
// promised so far is granted, and the reply reports the highest proposal
// already accepted so the proposer can adopt its value. Anything else is
// nacked with the number that beat it.
//
// A non-nil error means the promise could not be made durable. The caller
// must not send any reply in that case.
func (a *Acceptor) HandlePrepare(msg Prepare) (Promise, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if msg.ProposalNumber.GreaterThan(a.highestPromised) {
		if err := a.store.SavePromised(msg.ProposalNumber); err != nil {
			return Promise{}, err
		}
		a.highestPromised = msg.ProposalNumber
		return Promise{
			ProposalNumber:   msg.ProposalNumber,
			OK:               true,
			AcceptedProposal: a.acceptedProposal,
			AcceptedValue:    a.acceptedValue,
			From:             a.id,
		}, nil
	}
	return Promise{
		ProposalNumber:  msg.ProposalNumber,
		OK:              false,
		HighestPromised: a.highestPromised,
		From:            a.id,
	}, nil
}

// HandleAccept answers an Accept. The proposal is accepted when its number
// is at or above the highest promise; at-or-above rather than strictly
// above, both because a promise at N must allow the accept at N, and
// because an accept may legitimately arrive for a number this acceptor
// never saw a prepare for.
//
// A non-nil error means the acceptance could not be made durable. The
// caller must not send any reply in that case.
func (a *Acceptor) HandleAccept(msg Accept) (Accepted, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if msg.ProposalNumber.GreaterOrEqual(a.highestPromised) {
		if msg.ProposalNumber.GreaterThan(a.highestPromised) {
			if err := a.store.SavePromised(msg.ProposalNumber); err != nil {
				return Accepted{}, err
			}
			a.highestPromised = msg.ProposalNumber
		}
		if err := a.store.SaveAccepted(msg.ProposalNumber, msg.Value); err != nil {
			return Accepted{}, err
		}
		a.acceptedProposal = msg.ProposalNumber
		a.acceptedValue = msg.Value
		return Accepted{
			ProposalNumber: msg.ProposalNumber,
			OK:             true,
			Value:          msg.Value,
			From:           a.id,
		}, nil
	}
	return Accepted{
		ProposalNumber:  msg.ProposalNumber,
		OK:              false,
		HighestPromised: a.highestPromised,
		From:            a.id,
	}, nil
}

// State returns the current promised number and accepted proposal, for
// inspection and tests.
func (a *Acceptor) State() (promised, accepted ProposalNumber, value []byte) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.highestPromised, a.acceptedProposal, a.acceptedValue
}
