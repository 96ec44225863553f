package paxos

import (
	"errors"
	"math/rand"
	"sync"
	"time"

	"github.com/quorum/paxos/internal/transport"
)

var (
	// ErrRejected reports that a quorum became impossible because acceptors
	// promised a higher number elsewhere. Retried internally by Propose.
	ErrRejected = errors.New("paxos: proposal rejected")
	// ErrTimeout reports that a quorum did not respond within the phase
	// timeout. Treated exactly like a rejection.
	ErrTimeout = errors.New("paxos: timed out waiting for quorum")
	// ErrNoDecision is returned by Propose once MaxAttempts is exhausted.
	ErrNoDecision = errors.New("paxos: no decision reached")
)

// Broadcaster is the only slice of the transport a proposer needs.
type Broadcaster interface {
	Broadcast(msg transport.Message) error
}

// Proposer drives proposals through the two phases of the protocol. It
// broadcasts requests and is handed the responses through Deliver by
// whoever runs the receive loop; it never reads from the transport itself.
//
// Proposer state needs no durability. A crashed proposer simply restarts,
// and an abandoned attempt needs no cleanup: its number goes stale and the
// acceptors never notice.
type Proposer struct {
	id          string
	clusterSize int
	bus         Broadcaster

	// PhaseTimeout bounds how long each phase waits for a quorum before the
	// attempt is retried with a higher number.
	PhaseTimeout time.Duration
	// MaxBackoff bounds the randomized sleep between attempts. The jitter
	// keeps two dueling proposers from preempting each other in lockstep.
	MaxBackoff time.Duration
	// MaxAttempts limits how many rounds Propose will try before giving up
	// with ErrNoDecision. Zero means retry until decided.
	MaxAttempts int

	mu      sync.Mutex
	highest ProposalNumber // highest number used or observed so far
	inbox   chan transport.Message
	rng     *rand.Rand
}

func NewProposer(id string, clusterSize int, bus Broadcaster) *Proposer {
	return &Proposer{
		id:           id,
		clusterSize:  clusterSize,
		bus:          bus,
		PhaseTimeout: time.Second,
		MaxBackoff:   100 * time.Millisecond,
		inbox:        make(chan transport.Message, 4*clusterSize+16),
		rng:          rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (p *Proposer) ID() string { return p.id }

// Deliver hands the proposer a response received on its behalf. It never
// blocks; when the inbox is full the message is dropped, which the retry
// logic absorbs like any other loss.
func (p *Proposer) Deliver(msg transport.Message) {
	select {
	case p.inbox <- msg:
	default:
	}
}

// Propose runs the protocol until value (or a value some acceptor already
// accepted, which takes precedence) is chosen, and returns the chosen
// value. It blocks for the duration and serializes concurrent callers.
func (p *Proposer) Propose(value []byte) ([]byte, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for attempt := 0; p.MaxAttempts == 0 || attempt < p.MaxAttempts; attempt++ {
		if attempt > 0 {
			p.backoff()
		}
		p.highest = p.highest.Next(p.id)
		number := p.highest

		chosen, err := p.runPhase1(number, value)
		if err == nil {
			chosen, err = p.runPhase2(number, chosen)
		}
		if err == nil {
			return chosen, nil
		}
		if !errors.Is(err, ErrRejected) && !errors.Is(err, ErrTimeout) {
			return nil, err
		}
	}
	return nil, ErrNoDecision
}

// runPhase1 broadcasts a Prepare and collects promises until a quorum
// grants or the round fails. It returns the value phase 2 must propose:
// the value of the highest proposal any promising acceptor had already
// accepted, or the caller's own value if none had.
func (p *Proposer) runPhase1(number ProposalNumber, value []byte) ([]byte, error) {
	if err := p.bus.Broadcast(Prepare{ProposalNumber: number, From: p.id}); err != nil {
		return nil, err
	}

	tracker := NewQuorumTracker(p.clusterSize)
	deadline := time.NewTimer(p.PhaseTimeout)
	defer deadline.Stop()

	var priorNumber ProposalNumber
	chosen := value
	for {
		select {
		case msg := <-p.inbox:
			promise, ok := msg.(Promise)
			if !ok || !promise.ProposalNumber.Equal(number) {
				continue // stale round or not a phase 1 response
			}
			if !promise.OK {
				p.highest = p.highest.Max(promise.HighestPromised)
				tracker.Reject(promise.From)
				if tracker.Impossible() {
					return nil, ErrRejected
				}
				continue
			}
			if tracker.Grant(promise.From) && !promise.AcceptedProposal.IsZero() &&
				promise.AcceptedProposal.GreaterThan(priorNumber) {
				priorNumber = promise.AcceptedProposal
				chosen = promise.AcceptedValue
			}
			if tracker.Reached() {
				return chosen, nil
			}
		case <-deadline.C:
			return nil, ErrTimeout
		}
	}
}

// runPhase2 broadcasts the Accept and collects votes until a quorum
// accepts, then announces the decision with a Learn broadcast.
func (p *Proposer) runPhase2(number ProposalNumber, value []byte) ([]byte, error) {
	if err := p.bus.Broadcast(Accept{ProposalNumber: number, Value: value, From: p.id}); err != nil {
		return nil, err
	}

	tracker := NewQuorumTracker(p.clusterSize)
	deadline := time.NewTimer(p.PhaseTimeout)
	defer deadline.Stop()

	for {
		select {
		case msg := <-p.inbox:
			accepted, ok := msg.(Accepted)
			if !ok || !accepted.ProposalNumber.Equal(number) {
				continue
			}
			if !accepted.OK {
				p.highest = p.highest.Max(accepted.HighestPromised)
				tracker.Reject(accepted.From)
				if tracker.Impossible() {
					return nil, ErrRejected
				}
				continue
			}
			tracker.Grant(accepted.From)
			if tracker.Reached() {
				p.bus.Broadcast(Learn{ProposalNumber: number, Value: value, From: p.id})
				return value, nil
			}
		case <-deadline.C:
			return nil, ErrTimeout
		}
	}
}

func (p *Proposer) backoff() {
	if p.MaxBackoff <= 0 {
		return
	}
	time.Sleep(time.Duration(p.rng.Int63n(int64(p.MaxBackoff))))
}
