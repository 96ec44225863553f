package storage

import (
	"sync"

	"github.com/quorum/paxos/internal/paxos"
)

// MemoryStorage keeps acceptor state in process memory. It survives an
// acceptor being rebuilt over it, which is all the crash-restart tests
// need; it obviously does not survive the process.
type MemoryStorage struct {
	mu               sync.RWMutex
	highestPromised  paxos.ProposalNumber
	acceptedProposal paxos.ProposalNumber
	acceptedValue    []byte
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{}
}

func (m *MemoryStorage) SavePromised(n paxos.ProposalNumber) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.highestPromised = n
	return nil
}

func (m *MemoryStorage) LoadPromised() (paxos.ProposalNumber, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.highestPromised, nil
}

func (m *MemoryStorage) SaveAccepted(n paxos.ProposalNumber, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.acceptedProposal = n
	m.acceptedValue = append([]byte(nil), value...)
	return nil
}

func (m *MemoryStorage) LoadAccepted() (paxos.ProposalNumber, []byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.acceptedProposal, append([]byte(nil), m.acceptedValue...), nil
}

func (m *MemoryStorage) Close() error {
	return nil
}
