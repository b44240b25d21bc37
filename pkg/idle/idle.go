// Package idle measures how long the user has been away from the keyboard.
//
// A Source reports raw idle time from one mechanism (a compositor D-Bus call,
// ioreg, GetLastInputInfo, tmux client activity, host-fed activity). Sources
// are tried in order by a Chain, and a ThresholdProbe turns the winning sample
// into the idle/active decision the presence tracker polls.
package idle

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// ErrUnsupported is returned by a source that cannot work in the current
// environment.
var ErrUnsupported = errors.New("idle: source unsupported in this environment")

// commandTimeout bounds every external idle query.
const commandTimeout = 2 * time.Second

// Source reports the time since the last user input.
type Source interface {
	Name() string
	IdleTime() (time.Duration, error)
}

// cmdExecutor runs an external command and returns its stdout.
type cmdExecutor func(name string, args ...string) ([]byte, error)

// defaultCmdExecutor executes a command and returns its output.
func defaultCmdExecutor(name string, args ...string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()
	return exec.CommandContext(ctx, name, args...).Output()
}

// Chain tries its sources in order and reports the first successful sample.
type Chain struct {
	mu      sync.Mutex
	sources []Source
	closers []io.Closer
	active  string
	log     zerolog.Logger
}

var _ Source = (*Chain)(nil)

// NewChain creates a chain over sources.
func NewChain(log zerolog.Logger, sources ...Source) *Chain {
	return &Chain{
		sources: sources,
		log:     log.With().Str("component", "idle").Logger(),
	}
}

// Name implements Source.
func (c *Chain) Name() string {
	return "chain"
}

// Sources returns the names of the chained sources in order.
func (c *Chain) Sources() []string {
	names := make([]string, 0, len(c.sources))
	for _, s := range c.sources {
		names = append(names, s.Name())
	}
	return names
}

// IdleTime implements Source.
func (c *Chain) IdleTime() (time.Duration, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var errs []error
	for _, s := range c.sources {
		d, err := s.IdleTime()
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", s.Name(), err))
			continue
		}
		if c.active != s.Name() {
			c.log.Debug().Str("source", s.Name()).Msg("idle source selected")
			c.active = s.Name()
		}
		return d, nil
	}

	if len(errs) == 0 {
		return 0, fmt.Errorf("%w: no idle sources configured", ErrUnsupported)
	}
	return 0, errors.Join(errs...)
}

// Close releases resources held on behalf of the chained sources.
func (c *Chain) Close() error {
	c.mu.Lock()
	closers := c.closers
	c.closers = nil
	c.mu.Unlock()

	var errs []error
	for _, cl := range closers {
		if err := cl.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (c *Chain) closeWith(cl io.Closer) {
	c.closers = append(c.closers, cl)
}
