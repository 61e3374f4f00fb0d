// Package domain contains core concepts of the chat system.
// This file defines Connection identifiers and related invariants.
// No runtime, network, or UI logic should be added here.
package domain

import "github.com/google/uuid"

// ConnID is the transport-level handle for one client session.
// The transport owns the underlying socket; the core only references it.
type ConnID string

func NewConnID() ConnID {
	return ConnID(uuid.NewString())
}
