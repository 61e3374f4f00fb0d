// Package domain contains core concepts of the chat system.
// This file defines Participant entities and related invariants.
// No runtime, network, or UI logic should be added here.
package domain

import "time"

// MaxNicknameLen bounds the user-chosen display name, counted in runes.
const MaxNicknameLen = 20

// MaxMessageLen bounds a single chat message, counted in runes after
// trimming surrounding whitespace.
const MaxMessageLen = 500

// Participant binds a live connection to its nickname. The nickname is
// immutable for the life of the session: a participant is created on a
// successful join and removed on logout or disconnect, never mutated.
type Participant struct {
	Conn     ConnID
	Nickname string
	JoinedAt time.Time
}
