package internal

import (
	"fmt"
	"time"
)

type Config struct {
	Host string `env:"HOST,required=true"`
	Port int    `env:"PORT,required=true"`

	BufferSize           int           `env:"BUFFER_SIZE,required=true"`
	ConnectionBufferSize int           `env:"CONNECTION_BUFFER_SIZE,required=true"`
	SinkTimeout          time.Duration `env:"SINK_TIMEOUT,required=true"`
	HeartbeatInterval    time.Duration `env:"HEARTBEAT_INTERVAL,required=true"`
	RestartInterval      time.Duration `env:"RESTART_INTERVAL,required=true"`

	CharReplacement string `env:"CHARACTER_REPLACEMENT,required=true"`

	AuthTokenDuration time.Duration `env:"AUTH_TOKEN_DURATION,required=true"`
	AuthTokenSecret   string        `env:"AUTH_TOKEN_SECRET,required=true"`

	BadgerFilepath string `env:"BADGER_FILEPATH,required=true"`
	BlugeFilepath  string `env:"BLUGE_FILEPATH,required=true"`
	LimitResults   *int   `env:"LIMIT_RESULTS"`
	SearchPageSize int    `env:"SEARCH_PAGE_SIZE,required=true"`

	SpiderBaseURL string `env:"SPIDER_BASE_URL,required=true"`

	ServerName string `env:"SERVER_NAME,required=true"`

	LogLevel  string `env:"LOG_LEVEL,required=true"`
	DebugPort *int   `env:"DEBUG_PORT"`
}

func CharacterRune(str string) (rune, error) {
	r := []rune(str)
	if len(r) != 1 {
		return 0, fmt.Errorf(
			"CHARACTER_REPLACEMENT must be a single character, got %q",
			str,
		)
	}
	return r[0], nil
}
