package runtime

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"campus-chat/command"
	"campus-chat/contract"
	"campus-chat/domain"
	"campus-chat/domain/event"
	"campus-chat/errors"
	"campus-chat/observability"
)

// State of one connection inside the session lifecycle.
type State int

const (
	// StateConnected means the transport is open but no nickname is held.
	StateConnected State = iota
	// StateActive means registered in presence and joined to a room.
	StateActive
	// StateTerminated means logged out or disconnected. Terminal: it is
	// the single source of truth for "already left", which is what keeps
	// a logout followed by the underlying disconnect from broadcasting
	// UserLeft twice.
	StateTerminated
)

type session struct {
	state    State
	nickname string
	room     domain.RoomID
}

// Coordinator drives every connection through Connected -> Active ->
// Terminated, updating the presence registry and room membership and
// emitting the resulting notifications.
//
// All state mutations happen under one mutex per connection-affecting
// operation; recipient sets and presence snapshots are taken inside
// that critical section. Malformed client input is the normal case
// here: every rejection is a local ErrorNotice, never fatal.
type Coordinator struct {
	mu         sync.Mutex
	log        *slog.Logger
	presence   *Registry
	rooms      *Rooms
	dispatcher contract.IDispatcher
	classifier *command.Classifier
	censor     func(string) string
	monitoring *observability.MonitoringManager
	sessions   map[domain.ConnID]*session
	now        func() time.Time
}

// NewCoordinator wires the chat core together. censor sanitizes plain
// message text before broadcast; pass the identity function to disable
// moderation.
func NewCoordinator(log *slog.Logger, presence *Registry, rooms *Rooms,
	dispatcher contract.IDispatcher, classifier *command.Classifier,
	censor func(string) string, monitoring *observability.MonitoringManager) *Coordinator {
	if censor == nil {
		censor = func(s string) string { return s }
	}
	return &Coordinator{
		log:        log,
		presence:   presence,
		rooms:      rooms,
		dispatcher: dispatcher,
		classifier: classifier,
		censor:     censor,
		monitoring: monitoring,
		sessions:   make(map[domain.ConnID]*session),
		now:        time.Now,
	}
}

// Connect records a fresh transport connection and attaches its sink.
// No registry change happens until the client joins.
func (c *Coordinator) Connect(conn domain.ConnID, sink contract.EventSink) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.sessions[conn] = &session{state: StateConnected}
	c.dispatcher.Attach(conn, sink)
	c.log.Debug("Client connected", "conn", conn)
}

// Join claims a nickname and enters the default room. Valid only from
// Connected; re-issuing a join while Active is rejected without a state
// change.
func (c *Coordinator) Join(conn domain.ConnID, nickname string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	s, ok := c.sessions[conn]
	if !ok || s.state == StateTerminated {
		c.reject(conn, errors.ErrSessionClosed.Error())
		return
	}
	if s.state == StateActive {
		c.reject(conn, errors.ErrAlreadyJoined.Error())
		return
	}

	if err := c.presence.Register(conn, nickname); err != nil {
		c.reject(conn, err.Error())
		return
	}

	c.rooms.Join(domain.DefaultRoom, conn)
	s.state = StateActive
	s.nickname = nickname
	s.room = domain.DefaultRoom

	at := c.now()
	count := c.presence.Count()
	users := c.presence.Nicknames()
	c.monitoring.SetPresence(users)

	// Self first, then the room: the joiner must see its own snapshot
	// before anyone reacts to it.
	c.emit(event.JoinSucceeded{
		Nickname: nickname, At: at, OnlineCount: count, Users: users,
	}, s.room, conn)
	c.emit(event.UserJoined{
		Nickname: nickname, At: at, OnlineCount: count,
	}, s.room, conn)

	c.log.Info("Participant joined", "nickname", nickname, "online", count)
}

// Message classifies inbound text and broadcasts the outcome. Valid
// only from Active.
func (c *Coordinator) Message(conn domain.ConnID, text string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	s, ok := c.sessions[conn]
	if !ok || s.state != StateActive {
		c.reject(conn, errors.ErrNotJoined.Error())
		return
	}

	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		c.reject(conn, errors.ErrMessageEmpty.Error())
		return
	}
	if utf8.RuneCountInString(trimmed) > domain.MaxMessageLen {
		c.reject(conn, errors.ErrMessageTooLong.Error())
		return
	}

	c.monitoring.AddMessage()
	at := c.now()

	switch res := c.classifier.Classify(trimmed).(type) {
	case command.Plain:
		c.emit(event.NewMessage{
			Nickname: s.nickname, Message: c.censor(res.Text), At: at,
		}, s.room, conn)
	case command.MovieShare:
		c.emit(event.NewMessage{
			Nickname: s.nickname, Message: trimmed, At: at,
			IsCommand: true, CommandType: "movie", MovieURL: res.URL,
		}, s.room, conn)
	case command.AssistantQA:
		c.emit(event.NewMessage{
			Nickname: s.nickname, Message: trimmed, At: at,
			IsCommand: true, CommandType: "assistant",
			Question: res.Question, Reply: res.Answer,
		}, s.room, conn)
	case command.Unknown:
		c.reject(conn, fmt.Sprintf("unknown command %s, available commands: %s",
			res.Token, strings.Join(res.Known, ", ")))
	case command.Invalid:
		c.reject(conn, res.Reason)
	}
}

// Logout ends the session explicitly. The transport may stay open; the
// session itself is terminated.
func (c *Coordinator) Logout(conn domain.ConnID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.terminate(conn)
}

// Disconnect handles the transport closing underneath a session. Safe
// to call after Logout: the Terminated state swallows the duplicate.
func (c *Coordinator) Disconnect(conn domain.ConnID) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.terminate(conn)
	c.dispatcher.Detach(conn)
	delete(c.sessions, conn)
}

// States reports how many sessions sit in each lifecycle state.
func (c *Coordinator) States() map[State]int {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make(map[State]int)
	for _, s := range c.sessions {
		out[s.state]++
	}
	return out
}

// terminate moves a session to Terminated, emitting exactly one
// UserLeft when (and only when) the session was Active. Must run under
// the coordinator mutex.
func (c *Coordinator) terminate(conn domain.ConnID) {
	s, ok := c.sessions[conn]
	if !ok || s.state == StateTerminated {
		return
	}

	wasActive := s.state == StateActive
	s.state = StateTerminated

	if !wasActive {
		return
	}

	nickname, _ := c.presence.Unregister(conn)
	room := s.room
	c.rooms.Leave(room, conn)
	c.monitoring.SetPresence(c.presence.Nicknames())

	c.emit(event.UserLeft{
		Nickname:    nickname,
		At:          c.now(),
		OnlineCount: c.presence.Count(),
	}, room, conn)

	c.log.Info("Participant left", "nickname", nickname, "online", c.presence.Count())
}

// reject notifies only the originating connection. Must run under the
// coordinator mutex.
func (c *Coordinator) reject(conn domain.ConnID, message string) {
	c.monitoring.AddRejection()
	c.emit(event.ErrorNotice{Message: message}, "", conn)
}

// emit resolves the event's audience against the room membership and
// hands the result to the dispatcher. Must run under the coordinator
// mutex so the recipient snapshot is atomic with the state change that
// produced the event.
func (c *Coordinator) emit(e event.Outbound, roomID domain.RoomID, origin domain.ConnID) {
	var targets []domain.ConnID
	switch e.Audience() {
	case event.Self:
		targets = []domain.ConnID{origin}
	case event.RoomExceptSelf:
		targets = c.membersExcept(roomID, origin)
	case event.Room:
		targets = c.rooms.Members(roomID)
	}
	c.dispatcher.Dispatch(e, targets)
}

// membersExcept snapshots a room's members minus one connection. Must
// run under the coordinator mutex.
func (c *Coordinator) membersExcept(roomID domain.RoomID, skip domain.ConnID) []domain.ConnID {
	members := c.rooms.Members(roomID)
	out := members[:0]
	for _, m := range members {
		if m != skip {
			out = append(out, m)
		}
	}
	return out
}
