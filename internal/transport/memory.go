package transport

import (
	"math/rand"
	"sync"
	"time"
)

// MemoryNetwork connects endpoints within one process through buffered
// channels. By default delivery is reliable and ordered; Unreliable turns
// on independent per-message drop, duplication and delay, which is how the
// tests and the demo subject the protocol to the conditions it exists for.
type MemoryNetwork struct {
	mu        sync.RWMutex
	endpoints map[string]*MemoryTransport

	rngMu    sync.Mutex
	rng      *rand.Rand
	dropRate float64
	dupRate  float64
	maxDelay time.Duration
}

func NewMemoryNetwork() *MemoryNetwork {
	return &MemoryNetwork{
		endpoints: make(map[string]*MemoryTransport),
		rng:       rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Unreliable makes every subsequent delivery independently dropped with
// probability dropRate, duplicated with probability dupRate, and delayed
// by a uniform random duration up to maxDelay.
func (n *MemoryNetwork) Unreliable(dropRate, dupRate float64, maxDelay time.Duration) {
	n.rngMu.Lock()
	defer n.rngMu.Unlock()
	n.dropRate = dropRate
	n.dupRate = dupRate
	n.maxDelay = maxDelay
}

// Seed makes the unreliable behavior reproducible.
func (n *MemoryNetwork) Seed(seed int64) {
	n.rngMu.Lock()
	defer n.rngMu.Unlock()
	n.rng = rand.New(rand.NewSource(seed))
}

// Endpoint registers id on the network and returns its transport.
// Registering an id twice replaces the previous endpoint.
func (n *MemoryNetwork) Endpoint(id string) *MemoryTransport {
	ep := &MemoryTransport{
		id:     id,
		net:    n,
		inbox:  make(chan Message, 256),
		closed: make(chan struct{}),
	}
	n.mu.Lock()
	n.endpoints[id] = ep
	n.mu.Unlock()
	return ep
}

func (n *MemoryNetwork) remove(id string, ep *MemoryTransport) {
	n.mu.Lock()
	if n.endpoints[id] == ep {
		delete(n.endpoints, id)
	}
	n.mu.Unlock()
}

func (n *MemoryNetwork) deliver(to string, msg Message) error {
	n.mu.RLock()
	ep, ok := n.endpoints[to]
	n.mu.RUnlock()
	if !ok {
		return ErrUnknownPeer
	}

	copies := 1
	var delay time.Duration
	n.rngMu.Lock()
	if n.dropRate > 0 && n.rng.Float64() < n.dropRate {
		copies = 0
	} else if n.dupRate > 0 && n.rng.Float64() < n.dupRate {
		copies = 2
	}
	if n.maxDelay > 0 {
		delay = time.Duration(n.rng.Int63n(int64(n.maxDelay) + 1))
	}
	n.rngMu.Unlock()

	for i := 0; i < copies; i++ {
		if delay > 0 {
			go func() {
				time.Sleep(delay)
				ep.enqueue(msg)
			}()
		} else {
			ep.enqueue(msg)
		}
	}
	return nil
}

// MemoryTransport is one endpoint on a MemoryNetwork.
type MemoryTransport struct {
	id     string
	net    *MemoryNetwork
	inbox  chan Message
	closed chan struct{}
	once   sync.Once
}

func (t *MemoryTransport) ID() string { return t.id }

// enqueue drops the message when the inbox is full or the endpoint is
// closed. Loss is within the transport's contract either way.
func (t *MemoryTransport) enqueue(msg Message) {
	select {
	case <-t.closed:
	case t.inbox <- msg:
	default:
	}
}

func (t *MemoryTransport) Send(to string, msg Message) error {
	select {
	case <-t.closed:
		return ErrClosed
	default:
	}
	return t.net.deliver(to, msg)
}

func (t *MemoryTransport) Broadcast(msg Message) error {
	select {
	case <-t.closed:
		return ErrClosed
	default:
	}
	t.net.mu.RLock()
	ids := make([]string, 0, len(t.net.endpoints))
	for id := range t.net.endpoints {
		ids = append(ids, id)
	}
	t.net.mu.RUnlock()
	for _, id := range ids {
		t.net.deliver(id, msg)
	}
	return nil
}

func (t *MemoryTransport) Receive() (Message, error) {
	select {
	case msg := <-t.inbox:
		return msg, nil
	case <-t.closed:
		return nil, ErrClosed
	}
}

func (t *MemoryTransport) ReceiveTimeout(d time.Duration) (Message, error) {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case msg := <-t.inbox:
		return msg, nil
	case <-t.closed:
		return nil, ErrClosed
	case <-timer.C:
		return nil, ErrTimeout
	}
}

func (t *MemoryTransport) Close() error {
	t.once.Do(func() {
		close(t.closed)
		t.net.remove(t.id, t)
	})
	return nil
}
