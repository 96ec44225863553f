package storage

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"

	"github.com/quorum/paxos/internal/paxos"
)

type fileState struct {
	Promised         paxos.ProposalNumber `json:"promised"`
	AcceptedProposal paxos.ProposalNumber `json:"accepted_proposal"`
	AcceptedValue    []byte               `json:"accepted_value,omitempty"`
}

// FileStorage persists acceptor state as a JSON file. Every save writes a
// temp file in the same directory, fsyncs it and renames it over the old
// one, so the file on disk is always a complete state from some point in
// time, never a torn write.
type FileStorage struct {
	mu    sync.Mutex
	path  string
	state fileState
}

// NewFileStorage opens or creates the state file at path. Existing state
// is loaded, which is what lets a crashed acceptor come back remembering
// its promises.
func NewFileStorage(path string) (*FileStorage, error) {
	s := &FileStorage{path: path}
	raw, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(raw, &s.state); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *FileStorage) SavePromised(n paxos.ProposalNumber) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev := s.state.Promised
	s.state.Promised = n
	if err := s.write(); err != nil {
		s.state.Promised = prev
		return err
	}
	return nil
}

func (s *FileStorage) LoadPromised() (paxos.ProposalNumber, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Promised, nil
}

func (s *FileStorage) SaveAccepted(n paxos.ProposalNumber, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	prevN, prevV := s.state.AcceptedProposal, s.state.AcceptedValue
	s.state.AcceptedProposal = n
	s.state.AcceptedValue = append([]byte(nil), value...)
	if err := s.write(); err != nil {
		s.state.AcceptedProposal, s.state.AcceptedValue = prevN, prevV
		return err
	}
	return nil
}

func (s *FileStorage) LoadAccepted() (paxos.ProposalNumber, []byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.AcceptedProposal, append([]byte(nil), s.state.AcceptedValue...), nil
}

func (s *FileStorage) Close() error {
	return nil
}

// write is called with s.mu held.
func (s *FileStorage) write() error {
	raw, err := json.Marshal(s.state)
	if err != nil {
		return err
	}
	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), s.path)
}
