package ws

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"campus-chat/domain/event"
)

func TestEncode_NewMessage_Wire_Shape(t *testing.T) {
	req := require.New(t)
	at := time.Date(2026, 3, 14, 15, 9, 26, 0, time.UTC)

	frame, err := Encode(event.NewMessage{
		Nickname:    "alice",
		Message:     "@movie http://x.com/v.mp4",
		At:          at,
		IsCommand:   true,
		CommandType: "movie",
		MovieURL:    "http://x.com/v.mp4",
	})
	req.NoError(err)

	var env Envelope
	req.NoError(json.Unmarshal(frame, &env))
	req.Equal("new_message", env.Event)

	var data map[string]any
	req.NoError(json.Unmarshal(env.Data, &data))
	req.Equal("alice", data["nickname"])
	req.Equal(true, data["is_command"])
	req.Equal("movie", data["command_type"])
	req.Equal("http://x.com/v.mp4", data["movie_url"])
	// Optional assistant fields stay absent for movie shares
	req.NotContains(data, "question")
	req.NotContains(data, "reply")
}

func TestEncode_Plain_Message_Omits_Command_Fields(t *testing.T) {
	req := require.New(t)

	frame, err := Encode(event.NewMessage{Nickname: "bob", Message: "hi"})
	req.NoError(err)

	var env Envelope
	req.NoError(json.Unmarshal(frame, &env))

	var data map[string]any
	req.NoError(json.Unmarshal(env.Data, &data))
	req.Equal(false, data["is_command"])
	req.NotContains(data, "command_type")
	req.NotContains(data, "movie_url")
}

func TestDecode_Inbound_Join(t *testing.T) {
	req := require.New(t)

	env, err := Decode([]byte(`{"event":"join","data":{"nickname":"alice"}}`))
	req.NoError(err)
	req.Equal(EventJoin, env.Event)

	var p joinPayload
	req.NoError(json.Unmarshal(env.Data, &p))
	req.Equal("alice", p.Nickname)
}

func TestDecode_Malformed_Frame_Fails(t *testing.T) {
	req := require.New(t)

	_, err := Decode([]byte(`not json at all`))
	req.Error(err)
}

func TestEncode_JoinSucceeded_Carries_Presence_Snapshot(t *testing.T) {
	req := require.New(t)

	frame, err := Encode(event.JoinSucceeded{
		Nickname:    "bob",
		OnlineCount: 2,
		Users:       []string{"alice", "bob"},
	})
	req.NoError(err)

	var env Envelope
	req.NoError(json.Unmarshal(frame, &env))
	req.Equal("join_success", env.Event)

	var data struct {
		OnlineCount int      `json:"online_count"`
		Users       []string `json:"users"`
	}
	req.NoError(json.Unmarshal(env.Data, &data))
	req.Equal(2, data.OnlineCount)
	req.Equal([]string{"alice", "bob"}, data.Users)
}
