package netsync

import "sync"

// broadcaster is a close-and-replace channel, the idiomatic Go stand-in
// for a pthread_cond_t: wait() returns a channel that closes the next
// time signal() is called, waking every current waiter at once.
type broadcaster struct {
	mu sync.Mutex
	ch chan struct{}
}

func newBroadcaster() *broadcaster {
	return &broadcaster{ch: make(chan struct{})}
}

func (b *broadcaster) wait() <-chan struct{} {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.ch
}

func (b *broadcaster) signal() {
	b.mu.Lock()
	close(b.ch)
	b.ch = make(chan struct{})
	b.mu.Unlock()
}
