package paxos

// QuorumTracker counts grant/reject responses from distinct acceptors
// against a fixed cluster size and answers the two questions both the
// proposer and the learner ask: has a majority granted, and has a majority
// become unreachable. Only the first response from each acceptor counts,
// which makes duplicate delivery a no-op.
//
// Any two majorities of the same cluster intersect, which is the whole
// safety argument of the protocol; this type is where "majority" is
// defined, once, for everyone.
type QuorumTracker struct {
	clusterSize int
	granted     map[string]bool
	rejected    map[string]bool
}

func NewQuorumTracker(clusterSize int) *QuorumTracker {
	return &QuorumTracker{
		clusterSize: clusterSize,
		granted:     make(map[string]bool),
		rejected:    make(map[string]bool),
	}
}

// Grant records a positive response from the acceptor with the given id.
// It reports whether the response counted (false for duplicates and for
// acceptors that already responded).
func (q *QuorumTracker) Grant(id string) bool {
	if q.granted[id] || q.rejected[id] {
		return false
	}
	q.granted[id] = true
	return true
}

// Reject records a negative response from the acceptor with the given id.
func (q *QuorumTracker) Reject(id string) bool {
	if q.granted[id] || q.rejected[id] {
		return false
	}
	q.rejected[id] = true
	return true
}

// Majority returns the number of acceptors that constitutes a quorum.
func (q *QuorumTracker) Majority() int {
	return q.clusterSize/2 + 1
}

// Reached reports whether a majority of distinct acceptors has granted.
func (q *QuorumTracker) Reached() bool {
	return len(q.granted) >= q.Majority()
}

// Impossible reports whether so many acceptors have rejected that the ones
// remaining could no longer form a majority even if they all granted.
func (q *QuorumTracker) Impossible() bool {
	return q.clusterSize-len(q.rejected) < q.Majority()
}

// Granted returns how many distinct acceptors have granted so far.
func (q *QuorumTracker) Granted() int {
	return len(q.granted)
}
