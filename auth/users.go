//go:generate go run go.uber.org/mock/mockgen -source=users.go -destination=../mocks/mock_user_repository.go -package=mocks
package auth

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgraph-io/badger/v4"

	"campus-chat/errors"
)

type IUserRepository interface {
	Store(user User) error
	Get(username string) (User, error)
}

// User is the on-disk account record. Only the Argon2id hash is stored,
// never the password itself.
type User struct {
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"password_hash"`
	CreatedAt    time.Time `json:"created_at"`
}

type UserRepository struct {
	db  *badger.DB
	log *slog.Logger
}

func NewUserRepository(db *badger.DB, log *slog.Logger) UserRepository {
	return UserRepository{db: db, log: log}
}

func userKey(username string) []byte {
	return []byte(fmt.Sprintf("user:%s", username))
}

// Store persists an account. It fails with ErrUserExists if the username
// is already taken, inside a single transaction so two concurrent
// registrations cannot both win.
func (u UserRepository) Store(user User) error {
	bytes, err := json.Marshal(user)
	if err != nil {
		return err
	}
	return u.db.Update(func(txn *badger.Txn) error {
		key := userKey(user.Username)
		_, err := txn.Get(key)
		switch {
		case err == nil:
			return errors.ErrUserExists
		case !stderrors.Is(err, badger.ErrKeyNotFound):
			return err
		}
		return txn.Set(key, bytes)
	})
}

// Get retrieves an account by username.
func (u UserRepository) Get(username string) (User, error) {
	var bytes []byte
	err := u.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(userKey(username))
		if err != nil {
			return err
		}
		bytes, err = item.ValueCopy(nil)
		return err
	})
	if stderrors.Is(err, badger.ErrKeyNotFound) {
		return User{}, errors.ErrBadCredentials
	}
	if err != nil {
		return User{}, err
	}

	var user User
	if err := json.Unmarshal(bytes, &user); err != nil {
		return User{}, err
	}
	return user, nil
}
