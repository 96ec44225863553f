// Command demo runs a small Paxos cluster in one process, races two
// proposers against each other over an optionally lossy network, and
// prints what every learner decided. However the flags are set, the
// learners must all print the same value; the run fails loudly otherwise.
//
// Example:
//
//	demo -nodes 5 -value alpha -rival beta -drop 0.2 -dup 0.1 -delay 5ms
package main

import (
	"bytes"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/quorum/paxos/internal/node"
	"github.com/quorum/paxos/internal/storage"
	"github.com/quorum/paxos/internal/transport"
)

func main() {
	var (
		nodes   = flag.Int("nodes", 5, "number of nodes in the cluster")
		value   = flag.String("value", "alpha", "value proposed by the first node")
		rival   = flag.String("rival", "", "value proposed concurrently by the last node (empty for none)")
		drop    = flag.Float64("drop", 0, "probability each message is dropped")
		dup     = flag.Float64("dup", 0, "probability each message is duplicated")
		delay   = flag.Duration("delay", 0, "upper bound on random per-message delay")
		timeout = flag.Duration("timeout", 30*time.Second, "how long to wait for every learner")
	)
	flag.Parse()
	log.SetFlags(log.Ltime | log.Lmicroseconds)

	net := transport.NewMemoryNetwork()
	net.Unreliable(*drop, *dup, *delay)

	cluster := make([]*node.Node, 0, *nodes)
	for i := 0; i < *nodes; i++ {
		id := fmt.Sprintf("node%d", i+1)
		n, err := node.New(id, *nodes, net.Endpoint(id), storage.NewMemoryStorage())
		if err != nil {
			log.Fatalf("%s: %v", id, err)
		}
		n.Proposer().PhaseTimeout = 500 * time.Millisecond
		n.Start()
		defer n.Stop()
		cluster = append(cluster, n)
	}

	type outcome struct {
		id     string
		chosen []byte
		err    error
	}
	results := make(chan outcome, 2)
	propose := func(n *node.Node, v string) {
		chosen, err := n.Propose([]byte(v))
		results <- outcome{n.ID(), chosen, err}
	}

	proposals := 1
	go propose(cluster[0], *value)
	if *rival != "" && *nodes > 1 {
		proposals = 2
		go propose(cluster[len(cluster)-1], *rival)
	}

	for i := 0; i < proposals; i++ {
		r := <-results
		if r.err != nil {
			log.Fatalf("%s: propose: %v", r.id, r.err)
		}
		log.Printf("%s: proposal finished, chosen value %q", r.id, r.chosen)
	}

	// Every learner has to converge; give stragglers until the deadline.
	deadline := time.Now().Add(*timeout)
	var agreed []byte
	for _, n := range cluster {
		for {
			if chosen, ok := n.ChosenValue(); ok {
				log.Printf("%s: learned %q", n.ID(), chosen)
				if agreed == nil {
					agreed = chosen
				} else if !bytes.Equal(agreed, chosen) {
					log.Fatalf("learners disagree: %q vs %q", agreed, chosen)
				}
				break
			}
			if time.Now().After(deadline) {
				log.Fatalf("%s: no decision before deadline", n.ID())
			}
			time.Sleep(20 * time.Millisecond)
		}
	}
	fmt.Printf("cluster of %d decided on %q\n", *nodes, agreed)
}
