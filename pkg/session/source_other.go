//go:build !linux

package session

import "github.com/rs/zerolog"

// newPlatformSource reports that no native source exists on this platform.
func newPlatformSource(_ zerolog.Logger) (SignalSource, error) {
	return nil, ErrUnsupported
}
