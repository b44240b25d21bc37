// Package session adapts operating-system session notifications (lock,
// unlock, logoff, shutdown, remote connects) into calls on a Handler.
//
// Raw platform codes are translated to the closed reason sets in package
// events here, at the boundary, so consumers never see platform values.
package session

import (
	"context"
	"errors"
	"runtime"

	"github.com/Veraticus/presenced/pkg/events"
	"github.com/rs/zerolog"
)

// ErrUnsupported is returned by NewSignalSource when no native source exists
// for the current GOOS.
var ErrUnsupported = errors.New("session signals not supported on " + runtime.GOOS)

// ErrAlreadyStarted is returned when Start is called on a running source.
var ErrAlreadyStarted = errors.New("session signal source already started")

// Handler receives translated session signals. Implementations may be called
// from any goroutine.
type Handler interface {
	OnLock()
	OnUnlock()
	OnSessionEnd(reason events.SessionEndReason)
	OnSessionChanged(reason events.SessionChangeReason)
}

// SignalSource delivers session signals to a Handler between Start and Stop.
type SignalSource interface {
	Start(ctx context.Context, h Handler) error
	Stop() error
}

// NewSignalSource returns the native signal source for this platform, or
// ErrUnsupported.
func NewSignalSource(logger zerolog.Logger) (SignalSource, error) {
	return newPlatformSource(logger.With().Str("component", "session").Logger())
}
