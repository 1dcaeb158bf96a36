package chatsync

import "sync"

// PresenceTracker holds the set of identities currently online and the set
// currently typing at the admin. Both sets are driven entirely by push
// events; nothing is persisted, and the online set is rebuilt after a
// reconnect via the explicit get_online_users query.
type PresenceTracker struct {
	mu     sync.RWMutex
	online map[string]struct{}
	typing map[string]struct{}
}

func NewPresenceTracker() *PresenceTracker {
	return &PresenceTracker{
		online: make(map[string]struct{}),
		typing: make(map[string]struct{}),
	}
}

func (p *PresenceTracker) SetOnline(id string) {
	if id == "" {
		return
	}
	p.mu.Lock()
	p.online[id] = struct{}{}
	p.mu.Unlock()
}

func (p *PresenceTracker) SetOffline(id string) {
	p.mu.Lock()
	delete(p.online, id)
	delete(p.typing, id)
	p.mu.Unlock()
}

// ReplaceOnline swaps the whole online set, used when the server answers
// get_online_users with the full list.
func (p *PresenceTracker) ReplaceOnline(ids []string) {
	p.mu.Lock()
	p.online = make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if id != "" {
			p.online[id] = struct{}{}
		}
	}
	p.mu.Unlock()
}

func (p *PresenceTracker) SetTyping(id string, isTyping bool) {
	if id == "" {
		return
	}
	p.mu.Lock()
	if isTyping {
		p.typing[id] = struct{}{}
	} else {
		delete(p.typing, id)
	}
	p.mu.Unlock()
}

func (p *PresenceTracker) IsOnline(id string) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	_, ok := p.online[id]
	return ok
}

func (p *PresenceTracker) IsTyping(id string) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	_, ok := p.typing[id]
	return ok
}

// OnlineIDs returns the current online set as a slice.
func (p *PresenceTracker) OnlineIDs() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	ids := make([]string, 0, len(p.online))
	for id := range p.online {
		ids = append(ids, id)
	}
	return ids
}

// TypingIDs returns the identities currently typing.
func (p *PresenceTracker) TypingIDs() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	ids := make([]string, 0, len(p.typing))
	for id := range p.typing {
		ids = append(ids, id)
	}
	return ids
}
