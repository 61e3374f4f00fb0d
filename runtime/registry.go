// Package runtime hosts the chat core: presence, room membership, the
// session lifecycle and event fan-out. It orchestrates the system
// without containing transport or UI logic.
package runtime

import (
	"sync"
	"unicode/utf8"

	"campus-chat/domain"
	"campus-chat/errors"
)

// Registry is the single source of truth for "who is online". It keeps
// the connection->nickname mapping and its inverse, updated together
// under one lock so that no two concurrent joins can win the same
// nickname.
type Registry struct {
	mu     sync.RWMutex
	byConn map[domain.ConnID]string
	byNick map[string]domain.ConnID
	order  []domain.ConnID // insertion order, for stable presence lists
}

func NewRegistry() *Registry {
	return &Registry{
		byConn: make(map[domain.ConnID]string),
		byNick: make(map[string]domain.ConnID),
	}
}

// Register claims a nickname for a connection. It fails when the
// nickname is empty, longer than domain.MaxNicknameLen runes, already
// held by a different live connection, or when the connection already
// holds a nickname. The whole check-and-claim is atomic.
func (r *Registry) Register(conn domain.ConnID, nickname string) error {
	if nickname == "" {
		return errors.ErrNicknameEmpty
	}
	if utf8.RuneCountInString(nickname) > domain.MaxNicknameLen {
		return errors.ErrNicknameTooLong
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if holder, ok := r.byNick[nickname]; ok && holder != conn {
		return errors.ErrNicknameTaken
	}
	if _, ok := r.byConn[conn]; ok {
		return errors.ErrAlreadyJoined
	}

	r.byConn[conn] = nickname
	r.byNick[nickname] = conn
	r.order = append(r.order, conn)
	return nil
}

// Unregister removes a connection's entry if present. It is idempotent:
// removing an already-removed connection returns ("", false) and is not
// an error.
func (r *Registry) Unregister(conn domain.ConnID) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	nickname, ok := r.byConn[conn]
	if !ok {
		return "", false
	}

	delete(r.byConn, conn)
	delete(r.byNick, nickname)
	for i, c := range r.order {
		if c == conn {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nickname, true
}

// Lookup resolves a connection to its nickname.
func (r *Registry) Lookup(conn domain.ConnID) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	nickname, ok := r.byConn[conn]
	return nickname, ok
}

// Nicknames lists the online nicknames in the order they joined.
func (r *Registry) Nicknames() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]string, 0, len(r.order))
	for _, conn := range r.order {
		out = append(out, r.byConn[conn])
	}
	return out
}

// Count returns the number of live participants.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byConn)
}
