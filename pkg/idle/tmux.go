package idle

import (
	"bytes"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// TmuxSource reports idle time from the most recent client activity in a
// tmux session.
type TmuxSource struct {
	sessionName string
	cmdExecutor cmdExecutor
	now         func() time.Time
}

var _ Source = (*TmuxSource)(nil)

// NewTmuxSource creates a tmux source. If sessionName is empty the current
// session is looked up on every query.
func NewTmuxSource(sessionName string) *TmuxSource {
	return &TmuxSource{
		sessionName: sessionName,
		cmdExecutor: defaultCmdExecutor,
		now:         time.Now,
	}
}

// Name implements Source.
func (s *TmuxSource) Name() string {
	return "tmux"
}

// IdleTime implements Source.
func (s *TmuxSource) IdleTime() (time.Duration, error) {
	if !s.isInTmux() {
		return 0, fmt.Errorf("%w: not in a tmux session", ErrUnsupported)
	}

	sessionName := s.sessionName
	if sessionName == "" {
		name, err := s.getCurrentSessionName()
		if err != nil {
			return 0, fmt.Errorf("failed to get current session name: %w", err)
		}
		sessionName = name
	}

	idleTime, err := s.getSessionIdleTime(sessionName)
	if err != nil {
		return 0, fmt.Errorf("failed to get session idle time: %w", err)
	}
	return idleTime, nil
}

// isInTmux checks the TMUX environment variable.
func (s *TmuxSource) isInTmux() bool {
	return os.Getenv("TMUX") != ""
}

// getCurrentSessionName gets the name of the current tmux session.
func (s *TmuxSource) getCurrentSessionName() (string, error) {
	output, err := s.cmdExecutor("tmux", "display-message", "-p", "#{session_name}")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(output)), nil
}

// getSessionIdleTime gets the minimum idle time across all clients in a session.
func (s *TmuxSource) getSessionIdleTime(sessionName string) (time.Duration, error) {
	output, err := s.cmdExecutor("tmux", "list-clients", "-t", sessionName, "-F", "#{client_activity}")
	if err != nil {
		return 0, err
	}

	var mostRecent time.Time
	for _, line := range bytes.Split(bytes.TrimSpace(output), []byte("\n")) {
		if len(line) == 0 {
			continue
		}

		// client_activity is seconds since epoch
		secs, err := strconv.ParseInt(string(line), 10, 64)
		if err != nil {
			continue
		}

		activity := time.Unix(secs, 0)
		if mostRecent.IsZero() || activity.After(mostRecent) {
			mostRecent = activity
		}
	}

	if mostRecent.IsZero() {
		return 0, fmt.Errorf("no client activity for session %s", sessionName)
	}

	idleTime := s.now().Sub(mostRecent)
	if idleTime < 0 {
		// Clock skew
		idleTime = 0
	}
	return idleTime, nil
}

// IsAvailable checks that we are inside tmux and the tmux binary runs.
func (s *TmuxSource) IsAvailable() bool {
	if !s.isInTmux() {
		return false
	}
	_, err := s.cmdExecutor("tmux", "-V")
	return err == nil
}
