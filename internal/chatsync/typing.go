package chatsync

import (
	"log"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// TypingSender emits typing signals to the chat service.
type TypingSender interface {
	SendTypingStart(receiverID, receiverType string) error
	SendTypingStop(receiverID, receiverType string) error
}

// TypingNotifier debounces the admin's outgoing typing signals. The sender
// side owns the timeout: a typing_start is emitted immediately and a
// typing_stop is scheduled after the debounce window, with any newer signal
// for the same peer replacing the pending stop. A per-peer rate limiter keeps
// keystroke-driven callers from flooding the socket with start frames.
type TypingNotifier struct {
	mu       sync.Mutex
	sender   TypingSender
	debounce time.Duration
	timers   map[string]*time.Timer
	gens     map[string]uint64
	limiters map[string]*rate.Limiter
}

func NewTypingNotifier(sender TypingSender, debounce time.Duration) *TypingNotifier {
	return &TypingNotifier{
		sender:   sender,
		debounce: debounce,
		timers:   make(map[string]*time.Timer),
		gens:     make(map[string]uint64),
		limiters: make(map[string]*rate.Limiter),
	}
}

// Signal records typing activity toward one peer. The stop timer is keyed by
// peer identity plus type, so signals to different peers never interfere and
// a repeated signal replaces the previous pending stop.
func (n *TypingNotifier) Signal(receiverID, receiverType string) {
	if receiverID == "" {
		return
	}
	key := receiverType + ":" + receiverID

	n.mu.Lock()
	limiter, ok := n.limiters[key]
	if !ok {
		limiter = rate.NewLimiter(rate.Every(n.debounce), 1)
		n.limiters[key] = limiter
	}
	emitStart := limiter.Allow()
	n.armLocked(key, receiverID, receiverType)
	n.mu.Unlock()

	if emitStart {
		if err := n.sender.SendTypingStart(receiverID, receiverType); err != nil {
			log.Printf("WARNING: typing_start for %s failed: %v", receiverID, err)
		}
	}
}

// armLocked replaces the peer's pending stop timer. Requires n.mu held. The
// generation check keeps a superseded timer's callback silent: a timer that
// fires concurrently with a newer Signal parks on the mutex, and by the time
// it runs the generation has moved on.
func (n *TypingNotifier) armLocked(key, receiverID, receiverType string) {
	if timer, ok := n.timers[key]; ok {
		timer.Stop()
	}
	n.gens[key]++
	gen := n.gens[key]
	n.timers[key] = time.AfterFunc(n.debounce, func() {
		n.mu.Lock()
		if n.gens[key] != gen {
			n.mu.Unlock()
			return
		}
		delete(n.timers, key)
		n.mu.Unlock()
		if err := n.sender.SendTypingStop(receiverID, receiverType); err != nil {
			log.Printf("WARNING: typing_stop for %s failed: %v", receiverID, err)
		}
	})
}

// Flush cancels the pending stop for one peer and emits it right away, used
// when the admin sends the message they were typing.
func (n *TypingNotifier) Flush(receiverID, receiverType string) {
	key := receiverType + ":" + receiverID

	n.mu.Lock()
	timer, pending := n.timers[key]
	if pending {
		timer.Stop()
		delete(n.timers, key)
		n.gens[key]++
	}
	n.mu.Unlock()

	if pending {
		if err := n.sender.SendTypingStop(receiverID, receiverType); err != nil {
			log.Printf("WARNING: typing_stop for %s failed: %v", receiverID, err)
		}
	}
}

// StopAll cancels every pending stop timer without emitting, used on
// disconnect when the socket is gone anyway.
func (n *TypingNotifier) StopAll() {
	n.mu.Lock()
	defer n.mu.Unlock()
	for key, timer := range n.timers {
		timer.Stop()
		delete(n.timers, key)
		n.gens[key]++
	}
}
