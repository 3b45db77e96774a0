package live

import "sync"

// subscriberBuffer is how many messages a slow client may fall behind
// before messages are dropped for it.
const subscriberBuffer = 64

// broadcaster fans out messages to every connected client.
type broadcaster struct {
	mu      sync.Mutex
	subs    map[chan Message]struct{}
	closed  bool
	dropped uint64
}

func newBroadcaster() *broadcaster {
	return &broadcaster{subs: make(map[chan Message]struct{})}
}

// subscribe adds a client. The channel is closed when the broadcaster closes.
func (b *broadcaster) subscribe() chan Message {
	b.mu.Lock()
	defer b.mu.Unlock()
	ch := make(chan Message, subscriberBuffer)
	if b.closed {
		close(ch)
		return ch
	}
	b.subs[ch] = struct{}{}
	return ch
}

func (b *broadcaster) unsubscribe(ch chan Message) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.subs[ch]; ok {
		delete(b.subs, ch)
		close(ch)
	}
}

// send never blocks; slow clients miss messages.
func (b *broadcaster) send(msg Message) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	for ch := range b.subs {
		select {
		case ch <- msg:
		default:
			b.dropped++
		}
	}
}

func (b *broadcaster) count() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}

func (b *broadcaster) close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for ch := range b.subs {
		close(ch)
	}
	b.subs = nil
}
