// Package storage persists acceptor state. An acceptor's two fields, the
// highest promised number and the highest accepted proposal, must survive
// a crash: the protocol is only safe because a restarted acceptor still
// honors every promise it made. A Save must therefore be durable before it
// returns nil; the acceptor refuses to reply otherwise.
package storage

import "github.com/quorum/paxos/internal/paxos"

// Storage is the durable backend behind one acceptor. Implementations
// satisfy paxos.Storage.
type Storage interface {
	SavePromised(n paxos.ProposalNumber) error
	LoadPromised() (paxos.ProposalNumber, error)
	SaveAccepted(n paxos.ProposalNumber, value []byte) error
	LoadAccepted() (paxos.ProposalNumber, []byte, error)
	Close() error
}
