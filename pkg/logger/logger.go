// Package logger builds the zerolog logger shared by the API and the worker.
package logger

import (
	"io"
	"os"

	"github.com/rs/zerolog"
	zpkgerrors "github.com/rs/zerolog/pkgerrors"
)

// Errors built with github.com/pkg/errors carry the stack of their origin;
// .Stack() on an event renders it. Other errors log without a stack.
func init() {
	zerolog.ErrorStackMarshaler = zpkgerrors.MarshalStack
}

// New returns a JSON logger on stdout tagged with the service name.
func New(serviceName, level string) zerolog.Logger {
	return NewWithWriter(os.Stdout, serviceName, level)
}

func NewWithWriter(w io.Writer, serviceName, level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}

	return zerolog.New(w).Level(lvl).With().
		Str("service", serviceName).
		Timestamp().
		Logger()
}
