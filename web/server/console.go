package server

import (
	"time"

	"github.com/rs/zerolog"
)

// ConsoleMessage represents a console message with timestamp
type ConsoleMessage struct {
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
	Level     string    `json:"level"`
}

// consoleHook mirrors log messages of a render to its event stream
type consoleHook struct {
	stream *eventStream
}

func newConsoleHook(stream *eventStream) consoleHook {
	return consoleHook{stream: stream}
}

// Run implements zerolog.Hook. Messages that cannot be delivered are dropped.
func (h consoleHook) Run(e *zerolog.Event, level zerolog.Level, message string) {
	if message == "" {
		return
	}
	_ = h.stream.Send("console", ConsoleMessage{
		Message:   message,
		Timestamp: time.Now(),
		Level:     level.String(),
	})
}
