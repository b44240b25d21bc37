package idle

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// IoregSource reads HIDIdleTime from the IOHIDSystem registry entry on macOS.
type IoregSource struct {
	cmdExecutor cmdExecutor
}

var _ Source = (*IoregSource)(nil)

// NewIoregSource creates an ioreg-backed source.
func NewIoregSource() *IoregSource {
	return &IoregSource{cmdExecutor: defaultCmdExecutor}
}

// Name implements Source.
func (s *IoregSource) Name() string {
	return "ioreg"
}

// IdleTime implements Source.
func (s *IoregSource) IdleTime() (time.Duration, error) {
	output, err := s.cmdExecutor("ioreg", "-c", "IOHIDSystem", "-d", "4")
	if err != nil {
		return 0, fmt.Errorf("failed to execute ioreg: %w", err)
	}

	idleNanos, err := parseHIDIdleTime(output)
	if err != nil {
		return 0, fmt.Errorf("failed to parse HIDIdleTime: %w", err)
	}
	return time.Duration(idleNanos), nil
}

// parseHIDIdleTime extracts the nanosecond value from a line of the form
// "HIDIdleTime" = 123456789.
func parseHIDIdleTime(output []byte) (int64, error) {
	for _, line := range bytes.Split(output, []byte("\n")) {
		lineStr := string(bytes.TrimSpace(line))
		if !strings.Contains(lineStr, "HIDIdleTime") {
			continue
		}

		parts := strings.Split(lineStr, "=")
		if len(parts) != 2 {
			continue
		}

		valueStr := strings.TrimSpace(strings.Trim(strings.TrimSpace(parts[1]), "\""))
		value, err := strconv.ParseInt(valueStr, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("failed to parse idle time value: %w", err)
		}
		return value, nil
	}

	return 0, fmt.Errorf("HIDIdleTime not found in ioreg output")
}
