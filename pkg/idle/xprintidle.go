package idle

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// XprintidleSource asks the X server for idle time through xprintidle.
type XprintidleSource struct {
	cmdExecutor cmdExecutor
}

var _ Source = (*XprintidleSource)(nil)

// NewXprintidleSource creates an xprintidle-backed source.
func NewXprintidleSource() *XprintidleSource {
	return &XprintidleSource{cmdExecutor: defaultCmdExecutor}
}

// Name implements Source.
func (s *XprintidleSource) Name() string {
	return "xprintidle"
}

// IdleTime implements Source.
func (s *XprintidleSource) IdleTime() (time.Duration, error) {
	if os.Getenv("DISPLAY") == "" {
		return 0, fmt.Errorf("%w: DISPLAY is not set", ErrUnsupported)
	}

	output, err := s.cmdExecutor("xprintidle")
	if err != nil {
		return 0, fmt.Errorf("failed to execute xprintidle: %w", err)
	}

	ms, err := strconv.ParseUint(strings.TrimSpace(string(output)), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse xprintidle output: %w", err)
	}
	return time.Duration(ms) * time.Millisecond, nil
}
