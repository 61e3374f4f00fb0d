package internal

import (
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestCharacterRune(t *testing.T) {
	req := require.New(t)

	r, err := CharacterRune("*")
	req.NoError(err)
	req.Equal('*', r)

	// Multi-byte characters still count as one rune
	r, err = CharacterRune("星")
	req.NoError(err)
	req.Equal('星', r)

	_, err = CharacterRune("")
	req.Error(err)

	_, err = CharacterRune("**")
	req.Error(err)
}

func TestDefaultMapper_Result_Key(t *testing.T) {
	req := require.New(t)
	id := uuid.NewString()
	at := time.Date(2026, 3, 14, 15, 9, 26, 0, time.Local)
	key := fmt.Sprintf("result:matrix:%019d:%s", at.UnixNano(), id)
	value, _ := json.Marshal(map[string]string{"title": "The Matrix", "url": "https://movies.example.com/matrix"})

	row := DefaultMapper(key, value)

	req.Equal("RESULT", row.Type)
	req.Equal("matrix", row.Namespace)
	req.Equal("15:09:26", row.Timestamp)
	req.Equal(id[:8], row.EntityID)
	req.Contains(row.Detail, "The Matrix")
}

func TestDefaultMapper_User_Key(t *testing.T) {
	req := require.New(t)

	row := DefaultMapper("user:alice", []byte(`{}`))

	req.Equal("USER", row.Type)
	req.Equal("accounts", row.Namespace)
	req.Equal("alice", row.EntityID)
}

func TestDefaultMapper_Unknown_Key(t *testing.T) {
	req := require.New(t)

	row := DefaultMapper("whatever", []byte("abc"))

	req.Equal("RAW", row.Type)
	req.Contains(row.Detail, "3 bytes")
}
