package runtime

import (
	"sync"

	"campus-chat/domain"
)

type memberSet map[domain.ConnID]struct{}

// Rooms tracks which connections belong to which broadcast scope. A
// connection belongs to at most one room at a time; joining a second
// room moves it. Rooms never cross-talk.
type Rooms struct {
	mu      sync.RWMutex
	members map[domain.RoomID]memberSet
	roomOf  map[domain.ConnID]domain.RoomID
}

func NewRooms() *Rooms {
	return &Rooms{
		members: make(map[domain.RoomID]memberSet),
		roomOf:  make(map[domain.ConnID]domain.RoomID),
	}
}

// Join adds a connection to a room. A no-op when it is already a
// member; when the connection sits in another room it leaves it first.
func (r *Rooms) Join(roomID domain.RoomID, conn domain.ConnID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if current, ok := r.roomOf[conn]; ok {
		if current == roomID {
			return
		}
		r.remove(current, conn)
	}

	if _, ok := r.members[roomID]; !ok {
		r.members[roomID] = make(memberSet)
	}
	r.members[roomID][conn] = struct{}{}
	r.roomOf[conn] = roomID
}

// Leave removes the membership. Idempotent: leaving a room the
// connection is not in does nothing.
func (r *Rooms) Leave(roomID domain.RoomID, conn domain.ConnID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if current, ok := r.roomOf[conn]; !ok || current != roomID {
		return
	}
	r.remove(roomID, conn)
	delete(r.roomOf, conn)
}

// remove must run under the write lock. Empty member sets are dropped
// so idle rooms do not accumulate.
func (r *Rooms) remove(roomID domain.RoomID, conn domain.ConnID) {
	if set, ok := r.members[roomID]; ok {
		delete(set, conn)
		if len(set) == 0 {
			delete(r.members, roomID)
		}
	}
}

// Members returns the current member connections of a room. The slice
// is a copy; order is unspecified.
func (r *Rooms) Members(roomID domain.RoomID) []domain.ConnID {
	r.mu.RLock()
	defer r.mu.RUnlock()

	set, ok := r.members[roomID]
	if !ok {
		return nil
	}
	out := make([]domain.ConnID, 0, len(set))
	for conn := range set {
		out = append(out, conn)
	}
	return out
}

// RoomOf reports the room a connection currently belongs to.
func (r *Rooms) RoomOf(conn domain.ConnID) (domain.RoomID, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	roomID, ok := r.roomOf[conn]
	return roomID, ok
}
