package auth

import (
	"log/slog"
	"time"

	"campus-chat/errors"
)

// Service ties account storage, password hashing and token issuance together.
type Service struct {
	users  IUserRepository
	tokens TokenManager
	log    *slog.Logger
	now    func() time.Time
}

func NewService(users IUserRepository, tokens TokenManager, log *slog.Logger) *Service {
	return &Service{users: users, tokens: tokens, log: log, now: time.Now}
}

// Register validates the request, hashes the password and stores the account.
func (s *Service) Register(req RegisterRequest) error {
	if err := ValidateRegister(req); err != nil {
		return err
	}

	hash, err := HashPassword(req.Password)
	if err != nil {
		return err
	}

	user := User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hash,
		CreatedAt:    s.now().UTC(),
	}
	if err := s.users.Store(user); err != nil {
		return err
	}

	s.log.Info("account created", slog.String("username", req.Username))
	return nil
}

// Login checks the credentials and returns a signed token.
// Bad username and bad password are indistinguishable to the caller.
func (s *Service) Login(req LoginRequest) (string, error) {
	if err := ValidateLogin(req); err != nil {
		return "", err
	}

	user, err := s.users.Get(req.Username)
	if err != nil {
		return "", err
	}

	match, err := ComparePassword(req.Password, user.PasswordHash)
	if err != nil {
		return "", err
	}
	if !match {
		return "", errors.ErrBadCredentials
	}

	return s.tokens.Generate(user.Username)
}
