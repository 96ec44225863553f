// Package paxos implements the single-decree Paxos protocol: the proposer,
// acceptor and learner roles, proposal-number ordering, and the quorum
// arithmetic that ties them together.
//
// The package is transport- and storage-agnostic. Proposers send through a
// Broadcaster and receive responses through Deliver; acceptors persist
// through a Storage before ever replying. How messages actually travel and
// how state actually reaches disk belongs to the caller (see the transport
// and storage packages for the in-process implementations used by the node
// package and the tests).
//
// The guarantee is safety, not liveness: however many proposers race, and
// however the network loses, duplicates or reorders messages, at most one
// value is ever chosen. A single proposer on a reachable majority always
// terminates; dueling proposers are damped with randomized backoff but can
// in principle preempt each other forever.
package paxos
