package domain

// RoomID names a broadcast scope. A connection belongs to at most one
// room at a time.
type RoomID string

// DefaultRoom is the single room the chat UI joins. The registry itself
// supports any number of independent rooms.
const DefaultRoom RoomID = "chat_room"
