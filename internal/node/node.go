// Package node wires the three protocol roles onto one transport endpoint
// and runs the receive loop that routes messages between them. A Node is
// what driver code talks to: Propose on one side, ChosenValue/OnDecided on
// the other.
package node

import (
	"log"
	"sync"
	"time"

	"github.com/quorum/paxos/internal/paxos"
	"github.com/quorum/paxos/internal/storage"
	"github.com/quorum/paxos/internal/transport"
)

const receivePoll = 50 * time.Millisecond

// Node hosts one acceptor, one learner and one proposer sharing a single
// transport endpoint and identity.
type Node struct {
	id        string
	acceptor  *paxos.Acceptor
	learner   *paxos.Learner
	proposer  *paxos.Proposer
	transport transport.Transport

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	wg      sync.WaitGroup
}

// New restores the acceptor from store and assembles the node.
// clusterSize is the fixed number of acceptors in this consensus instance.
func New(id string, clusterSize int, t transport.Transport, store storage.Storage) (*Node, error) {
	acceptor, err := paxos.NewAcceptor(id, store)
	if err != nil {
		return nil, err
	}
	return &Node{
		id:        id,
		acceptor:  acceptor,
		learner:   paxos.NewLearner(id, clusterSize),
		proposer:  paxos.NewProposer(id, clusterSize, t),
		transport: t,
	}, nil
}

// Start launches the receive loop. Safe to call once per Stop.
func (n *Node) Start() {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.running {
		return
	}
	n.running = true
	n.stopCh = make(chan struct{})
	n.wg.Add(1)
	go n.receiveLoop(n.stopCh)
}

// Stop halts the receive loop and waits for it to exit. The transport is
// left open; the caller owns it.
func (n *Node) Stop() {
	n.mu.Lock()
	if !n.running {
		n.mu.Unlock()
		return
	}
	n.running = false
	close(n.stopCh)
	n.mu.Unlock()
	n.wg.Wait()
}

func (n *Node) receiveLoop(stopCh chan struct{}) {
	defer n.wg.Done()
	for {
		select {
		case <-stopCh:
			return
		default:
		}
		msg, err := n.transport.ReceiveTimeout(receivePoll)
		if err == transport.ErrTimeout {
			continue
		}
		if err != nil {
			log.Printf("[%s] receive: %v", n.id, err)
			return
		}
		n.route(msg)
	}
}

func (n *Node) route(msg transport.Message) {
	switch m := msg.(type) {
	case paxos.Prepare:
		reply, err := n.acceptor.HandlePrepare(m)
		if err != nil {
			// The promise never became durable, so no reply may reflect it.
			log.Printf("[%s] prepare %v: persist failed, withholding reply: %v", n.id, m.ProposalNumber, err)
			return
		}
		n.transport.Send(m.From, reply)

	case paxos.Accept:
		reply, err := n.acceptor.HandleAccept(m)
		if err != nil {
			log.Printf("[%s] accept %v: persist failed, withholding reply: %v", n.id, m.ProposalNumber, err)
			return
		}
		if reply.OK {
			// Votes go to everyone so every learner sees the stream.
			n.transport.Broadcast(reply)
		} else {
			n.transport.Send(m.From, reply)
		}

	case paxos.Promise:
		n.proposer.Deliver(m)

	case paxos.Accepted:
		n.learner.HandleAccepted(m)
		n.proposer.Deliver(m)

	case paxos.Learn:
		n.learner.HandleLearn(m)

	default:
		log.Printf("[%s] dropping message of unknown type %T", n.id, msg)
	}
}

// Propose blocks until value (or whatever earlier value the protocol
// forces instead) is chosen, and returns the chosen value.
func (n *Node) Propose(value []byte) ([]byte, error) {
	return n.proposer.Propose(value)
}

// Proposer exposes the proposer for configuration (timeouts, attempts).
func (n *Node) Proposer() *paxos.Proposer { return n.proposer }

// ChosenValue reports this node's learner outcome.
func (n *Node) ChosenValue() ([]byte, bool) {
	return n.learner.ChosenValue()
}

// OnDecided registers a callback with this node's learner.
func (n *Node) OnDecided(fn func(value []byte)) {
	n.learner.OnDecided(fn)
}

func (n *Node) ID() string { return n.id }
