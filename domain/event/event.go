// Package event defines the outbound notifications the chat core emits.
// Every event carries a recipient-selection policy; payloads are
// fire-and-forget and never persisted.
package event

import "time"

// Audience selects which connections of a room receive an event.
type Audience int

const (
	// Self delivers to the originating connection only.
	Self Audience = iota
	// RoomExceptSelf delivers to every room member but the originator.
	RoomExceptSelf
	// Room delivers to every member of the room, originator included.
	Room
)

// Outbound is a typed notification produced by the session lifecycle or
// the broadcast dispatcher. Name is the wire event name.
type Outbound interface {
	Name() string
	Audience() Audience
}

// JoinSucceeded confirms a join to the joining connection. It carries a
// snapshot of the presence list taken atomically with the join itself.
type JoinSucceeded struct {
	Nickname    string    `json:"nickname"`
	At          time.Time `json:"timestamp"`
	OnlineCount int       `json:"online_count"`
	Users       []string  `json:"users"`
}

func (JoinSucceeded) Name() string       { return "join_success" }
func (JoinSucceeded) Audience() Audience { return Self }

// UserJoined announces a newcomer to the rest of the room.
type UserJoined struct {
	Nickname    string    `json:"nickname"`
	At          time.Time `json:"timestamp"`
	OnlineCount int       `json:"online_count"`
}

func (UserJoined) Name() string       { return "user_joined" }
func (UserJoined) Audience() Audience { return RoomExceptSelf }

// UserLeft announces a departure to the rest of the room. It is emitted
// exactly once per session, whether the trigger was an explicit logout
// or the underlying disconnect.
type UserLeft struct {
	Nickname    string    `json:"nickname"`
	At          time.Time `json:"timestamp"`
	OnlineCount int       `json:"online_count"`
}

func (UserLeft) Name() string       { return "user_left" }
func (UserLeft) Audience() Audience { return RoomExceptSelf }

// NewMessage carries chat content to the whole room. Command traffic is
// tagged through CommandType and fills the matching optional fields.
type NewMessage struct {
	Nickname    string    `json:"nickname"`
	Message     string    `json:"message"`
	At          time.Time `json:"timestamp"`
	IsCommand   bool      `json:"is_command"`
	CommandType string    `json:"command_type,omitempty"`
	MovieURL    string    `json:"movie_url,omitempty"`
	Question    string    `json:"question,omitempty"`
	Reply       string    `json:"reply,omitempty"`
}

func (NewMessage) Name() string       { return "new_message" }
func (NewMessage) Audience() Audience { return Room }

// ErrorNotice reports a rejected action to the originating connection.
// It never terminates the connection.
type ErrorNotice struct {
	Message string `json:"message"`
}

func (ErrorNotice) Name() string       { return "error" }
func (ErrorNotice) Audience() Audience { return Self }
