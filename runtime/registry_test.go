package runtime

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"campus-chat/domain"
	"campus-chat/errors"
)

func TestRegistry_Register_One_Participant(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	conn := domain.NewConnID()

	// Given no user is connected
	req.Zero(registry.Count())

	// When a participant registers
	req.NoError(registry.Register(conn, "alice"))

	// Then
	req.Equal(1, registry.Count())
	nickname, ok := registry.Lookup(conn)
	req.True(ok)
	req.Equal("alice", nickname)
	req.Equal([]string{"alice"}, registry.Nicknames())
}

func TestRegistry_Register_Duplicate_Nickname_Rejected(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()

	req.NoError(registry.Register(domain.NewConnID(), "alice"))

	err := registry.Register(domain.NewConnID(), "alice")
	req.ErrorIs(err, errors.ErrNicknameTaken)
	req.Equal(1, registry.Count())
}

func TestRegistry_Register_Validates_Nickname(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()

	req.ErrorIs(registry.Register(domain.NewConnID(), ""), errors.ErrNicknameEmpty)

	tooLong := "abcdefghijklmnopqrstu" // 21 runes
	req.ErrorIs(registry.Register(domain.NewConnID(), tooLong), errors.ErrNicknameTooLong)

	// Exactly at the limit is fine, multibyte runes count as one
	req.NoError(registry.Register(domain.NewConnID(), "四川农业大学的小农同学一二三四五六七八"))
}

func TestRegistry_Register_Second_Nickname_Same_Conn_Rejected(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	conn := domain.NewConnID()

	req.NoError(registry.Register(conn, "alice"))
	req.ErrorIs(registry.Register(conn, "alice2"), errors.ErrAlreadyJoined)
}

func TestRegistry_Unregister_Is_Idempotent(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	conn := domain.NewConnID()
	req.NoError(registry.Register(conn, "alice"))

	nickname, ok := registry.Unregister(conn)
	req.True(ok)
	req.Equal("alice", nickname)

	// Second removal is a no-op, not an error
	nickname, ok = registry.Unregister(conn)
	req.False(ok)
	req.Empty(nickname)
	req.Zero(registry.Count())

	// The nickname is free again
	req.NoError(registry.Register(domain.NewConnID(), "alice"))
}

func TestRegistry_Nicknames_Keep_Insertion_Order(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()

	conns := make([]domain.ConnID, 5)
	for i := range conns {
		conns[i] = domain.NewConnID()
		req.NoError(registry.Register(conns[i], fmt.Sprintf("user_%d", i)))
	}

	req.Equal([]string{"user_0", "user_1", "user_2", "user_3", "user_4"}, registry.Nicknames())

	// Removing from the middle keeps the rest ordered
	registry.Unregister(conns[2])
	req.Equal([]string{"user_0", "user_1", "user_3", "user_4"}, registry.Nicknames())
}

func TestRegistry_Concurrent_Register_Same_Nickname_One_Winner(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()

	const attempts = 50
	var wg sync.WaitGroup
	winners := make(chan domain.ConnID, attempts)

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			conn := domain.NewConnID()
			if err := registry.Register(conn, "alice"); err == nil {
				winners <- conn
			}
		}()
	}
	wg.Wait()
	close(winners)

	var count int
	for range winners {
		count++
	}
	req.Equal(1, count)
	req.Equal(1, registry.Count())
}
