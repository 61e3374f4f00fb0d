package errors

import "fmt"

var (
	ErrWorkerPanic     = fmt.Errorf("worker panic")
	ErrEmptyWords      = fmt.Errorf("no words have been found")
	ErrNicknameEmpty   = fmt.Errorf("nickname is empty")
	ErrNicknameTooLong = fmt.Errorf("nickname exceeds maximum length")
	ErrNicknameTaken   = fmt.Errorf("nickname already in use")
	ErrAlreadyJoined   = fmt.Errorf("already joined")
	ErrNotJoined       = fmt.Errorf("not joined")
	ErrSessionClosed   = fmt.Errorf("session terminated")
	ErrMessageEmpty    = fmt.Errorf("message is empty")
	ErrMessageTooLong  = fmt.Errorf("message exceeds maximum length")
	ErrUserExists      = fmt.Errorf("username already registered")
	ErrBadCredentials  = fmt.Errorf("invalid username or password")
	ErrInvalidPassword = fmt.Errorf("password does not meet complexity rules")
	ErrNotHTML         = fmt.Errorf("response is not an html page")
)
