package idle

import (
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	idle time.Duration
	err  error
}

// scriptedSource replays samples in order and repeats the last one.
type scriptedSource struct {
	name    string
	samples []sample
	calls   int
}

func (s *scriptedSource) Name() string {
	if s.name == "" {
		return "scripted"
	}
	return s.name
}

func (s *scriptedSource) IdleTime() (time.Duration, error) {
	i := s.calls
	if i >= len(s.samples) {
		i = len(s.samples) - 1
	}
	s.calls++
	return s.samples[i].idle, s.samples[i].err
}

func TestThresholdProbe_IsIdle(t *testing.T) {
	tests := []struct {
		name      string
		idle      time.Duration
		threshold time.Duration
		expected  bool
	}{
		{name: "below threshold", idle: 30 * time.Second, threshold: time.Minute, expected: false},
		{name: "at threshold", idle: time.Minute, threshold: time.Minute, expected: true},
		{name: "above threshold", idle: 2 * time.Minute, threshold: time.Minute, expected: true},
		{name: "zero threshold", idle: 0, threshold: 0, expected: true},
		{name: "negative threshold", idle: 0, threshold: -time.Second, expected: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := &scriptedSource{samples: []sample{{idle: tt.idle}}}
			probe := NewProbe(tt.threshold, src, zerolog.Nop())

			assert.Equal(t, tt.expected, probe.IsIdle())
			assert.Equal(t, tt.idle, probe.ElapsedTime())
		})
	}
}

func TestThresholdProbe_ReusesLastGoodSample(t *testing.T) {
	boom := errors.New("bus went away")
	src := &scriptedSource{samples: []sample{
		{idle: 90 * time.Second},
		{err: boom},
		{err: boom},
		{idle: 5 * time.Second},
	}}
	probe := NewProbe(time.Minute, src, zerolog.Nop())
	probe.SetSampleAge(0)

	assert.True(t, probe.IsIdle())
	assert.True(t, probe.IsIdle(), "failed query must not flip to active")
	assert.Equal(t, 90*time.Second, probe.ElapsedTime())
	assert.False(t, probe.IsIdle())
	assert.Equal(t, 4, src.calls)
}

func TestThresholdProbe_FailureBeforeFirstSample(t *testing.T) {
	src := &scriptedSource{samples: []sample{{err: errors.New("unavailable")}}}
	probe := NewProbe(time.Minute, src, zerolog.Nop())

	assert.False(t, probe.IsIdle())
	assert.Equal(t, time.Duration(0), probe.ElapsedTime())
}

func TestThresholdProbe_ClampsNegativeSamples(t *testing.T) {
	src := &scriptedSource{samples: []sample{{idle: -time.Second}}}
	probe := NewProbe(time.Minute, src, zerolog.Nop())

	require.Equal(t, time.Minute, probe.Threshold())
	assert.Equal(t, time.Duration(0), probe.ElapsedTime())
}

func TestThresholdProbe_SharesOneReadingPerPoll(t *testing.T) {
	src := &scriptedSource{samples: []sample{
		{idle: 2 * time.Minute},
		{idle: 100 * time.Millisecond},
	}}
	probe := NewProbe(time.Minute, src, zerolog.Nop())
	probe.SetSampleAge(500 * time.Millisecond)

	now := time.Unix(1_700_000_000, 0)
	probe.now = func() time.Time { return now }

	// One poll: both answers come from the same reading even though the
	// user moved in between.
	assert.True(t, probe.IsIdle())
	assert.Equal(t, 2*time.Minute, probe.ElapsedTime())
	assert.Equal(t, 1, src.calls)

	now = now.Add(499 * time.Millisecond)
	assert.True(t, probe.IsIdle())
	assert.Equal(t, 1, src.calls)

	// Next poll reads again.
	now = now.Add(time.Millisecond)
	assert.False(t, probe.IsIdle())
	assert.Equal(t, 100*time.Millisecond, probe.ElapsedTime())
	assert.Equal(t, 2, src.calls)
}

func TestThresholdProbe_FailedReadingIsShared(t *testing.T) {
	src := &scriptedSource{samples: []sample{
		{idle: 90 * time.Second},
		{err: errors.New("xprintidle: exit status 1")},
	}}
	probe := NewProbe(time.Minute, src, zerolog.Nop())

	now := time.Unix(1_700_000_000, 0)
	probe.now = func() time.Time { return now }

	require.True(t, probe.IsIdle())

	now = now.Add(time.Second)
	assert.True(t, probe.IsIdle())
	assert.Equal(t, 90*time.Second, probe.ElapsedTime())
	assert.Equal(t, 2, src.calls, "a failing source is queried once per poll")
}
