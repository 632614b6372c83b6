package main

import (
	"time"

	"chat-hub/errors"
)

type Config struct {
	EventBufferSize    int           `env:"EVENT_BUFFER_SIZE,default=1024"`
	MailboxCapacity    int           `env:"MAILBOX_CAPACITY,default=256"`
	RestartInterval    time.Duration `env:"RESTART_INTERVAL,default=200ms"`
	CensoredCharacter  string        `env:"CENSORED_CHARACTER,default=*"`
	LogLevel           string        `env:"LOG_LEVEL,default=info"`
	MetricsLogInterval time.Duration `env:"METRICS_LOG_INTERVAL,default=30s"`
}

// CharacterRune validates that the replacement is exactly one character.
func CharacterRune(str string) (rune, error) {
	r := []rune(str)
	if len(r) != 1 {
		return 0, errors.ErrInvalidCharacter
	}
	return r[0], nil
}
