package command

import (
	"fmt"
	"regexp"
	"strings"
)

// moviePattern accepts a permissive URL shape: optional scheme, a host,
// an optional port, and an optional path. Anything with spaces fails.
var moviePattern = regexp.MustCompile(`^(https?://)?[a-zA-Z0-9.-]+(:[0-9]+)?(/\S*)?$`)

// MovieHandler turns "@movie <url>" into a MovieShare result.
type MovieHandler struct {
	token string
}

// NewMovieHandler registers the movie command under the given token,
// so the Chinese alias can share the same implementation.
func NewMovieHandler(token string) MovieHandler {
	return MovieHandler{token: token}
}

func (h MovieHandler) Token() string { return h.token }

func (h MovieHandler) Validate(args string) error {
	url := strings.TrimSpace(args)
	if url == "" || !moviePattern.MatchString(url) {
		return fmt.Errorf("usage: %s <url>", h.token)
	}
	return nil
}

func (h MovieHandler) Execute(args string) Result {
	return MovieShare{URL: strings.TrimSpace(args)}
}
