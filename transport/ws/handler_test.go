package ws

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"

	"campus-chat/command"
	"campus-chat/observability"
	"campus-chat/runtime"
)

type wsFixture struct {
	server *httptest.Server
	cancel func()
}

func newWSFixture(t *testing.T) wsFixture {
	t.Helper()
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	monitoring := observability.NewMonitoringManager(log)
	dispatcher := runtime.NewDispatcher(log, monitoring, 64, time.Second)
	coordinator := runtime.NewCoordinator(log, runtime.NewRegistry(), runtime.NewRooms(),
		dispatcher, command.NewClassifier(command.DefaultHandlers()...), nil, monitoring)

	ctx, cancel := context.WithCancel(context.Background())
	go func() { _ = dispatcher.Run(ctx) }()

	server := httptest.NewServer(NewHandler(coordinator, log, 32))
	return wsFixture{server: server, cancel: func() {
		cancel()
		server.Close()
	}}
}

func (f wsFixture) dial(t *testing.T) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(f.server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	return conn
}

func send(t *testing.T, conn *websocket.Conn, event string, data any) {
	t.Helper()
	raw, err := json.Marshal(data)
	require.NoError(t, err)
	require.NoError(t, conn.WriteJSON(Envelope{Event: event, Data: raw}))
}

// readEvent reads frames until one with the wanted name arrives.
func readEvent(t *testing.T, conn *websocket.Conn, want string) map[string]any {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	require.NoError(t, conn.SetReadDeadline(deadline))
	for {
		var env Envelope
		require.NoError(t, conn.ReadJSON(&env))
		if env.Event != want {
			continue
		}
		var data map[string]any
		require.NoError(t, json.Unmarshal(env.Data, &data))
		return data
	}
}

func TestClient_OutboundQueue_FollowsConfiguredSize(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)

	// Given an explicit per-connection queue size
	c := NewClient(nil, nil, log, 7)
	req.Equal(7, cap(c.send))

	// Given no size, the default applies
	c = NewClient(nil, nil, log, 0)
	req.Equal(defaultSendBuffer, cap(c.send))
}

func TestSession_Join_And_Broadcast(t *testing.T) {
	req := require.New(t)
	f := newWSFixture(t)
	defer f.cancel()

	// Given: alice is in the room
	alice := f.dial(t)
	defer alice.Close()
	send(t, alice, EventJoin, map[string]string{"nickname": "alice"})

	data := readEvent(t, alice, "join_success")
	req.Equal("alice", data["nickname"])
	req.Equal(float64(1), data["online_count"])

	// When: bob joins
	bob := f.dial(t)
	defer bob.Close()
	send(t, bob, EventJoin, map[string]string{"nickname": "bob"})

	// Then: alice sees bob arrive, bob gets the presence snapshot
	joined := readEvent(t, alice, "user_joined")
	req.Equal("bob", joined["nickname"])

	snapshot := readEvent(t, bob, "join_success")
	req.Equal(float64(2), snapshot["online_count"])

	// And: a message from bob reaches both of them
	send(t, bob, EventSendMessage, map[string]string{"message": "hello room"})

	fromBob := readEvent(t, alice, "new_message")
	req.Equal("bob", fromBob["nickname"])
	req.Equal("hello room", fromBob["message"])
	req.Equal(false, fromBob["is_command"])

	echo := readEvent(t, bob, "new_message")
	req.Equal("hello room", echo["message"])
}

func TestSession_Duplicate_Nickname_Gets_Error(t *testing.T) {
	req := require.New(t)
	f := newWSFixture(t)
	defer f.cancel()

	alice := f.dial(t)
	defer alice.Close()
	send(t, alice, EventJoin, map[string]string{"nickname": "alice"})
	readEvent(t, alice, "join_success")

	impostor := f.dial(t)
	defer impostor.Close()
	send(t, impostor, EventJoin, map[string]string{"nickname": "alice"})

	data := readEvent(t, impostor, "error")
	req.Contains(fmt.Sprint(data["message"]), "already in use")

	// The rejected client can retry with a free nickname
	send(t, impostor, EventJoin, map[string]string{"nickname": "bob"})
	readEvent(t, impostor, "join_success")
}

func TestSession_Movie_Command_Over_Socket(t *testing.T) {
	req := require.New(t)
	f := newWSFixture(t)
	defer f.cancel()

	alice := f.dial(t)
	defer alice.Close()
	send(t, alice, EventJoin, map[string]string{"nickname": "alice"})
	readEvent(t, alice, "join_success")

	send(t, alice, EventSendMessage, map[string]string{"message": "@movie https://movies.example.com/matrix"})

	data := readEvent(t, alice, "new_message")
	req.Equal(true, data["is_command"])
	req.Equal("movie", data["command_type"])
	req.Equal("https://movies.example.com/matrix", data["movie_url"])
}

func TestSession_Logout_Broadcasts_Single_Leave(t *testing.T) {
	req := require.New(t)
	f := newWSFixture(t)
	defer f.cancel()

	alice := f.dial(t)
	defer alice.Close()
	send(t, alice, EventJoin, map[string]string{"nickname": "alice"})
	readEvent(t, alice, "join_success")

	bob := f.dial(t)
	send(t, bob, EventJoin, map[string]string{"nickname": "bob"})
	readEvent(t, bob, "join_success")
	readEvent(t, alice, "user_joined")

	// When: bob logs out and then drops the socket
	send(t, bob, EventLogout, map[string]string{})
	_ = bob.Close()

	// Then: alice sees exactly one user_left
	left := readEvent(t, alice, "user_left")
	req.Equal("bob", left["nickname"])
	req.Equal(float64(1), left["online_count"])

	// No second leave arrives within the grace window
	req.NoError(alice.SetReadDeadline(time.Now().Add(500 * time.Millisecond)))
	var env Envelope
	for {
		if err := alice.ReadJSON(&env); err != nil {
			break
		}
		req.NotEqual("user_left", env.Event, "Disconnect after logout must not leave twice")
	}
}
