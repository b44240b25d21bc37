package idle

import (
	"sync"
	"time"

	"github.com/Veraticus/presenced/pkg/interfaces"
	"github.com/rs/zerolog"
)

// DefaultThreshold is the idle time after which the user counts as away.
const DefaultThreshold = time.Minute

// DefaultSampleAge is how long one source reading answers both IsIdle and
// ElapsedTime.
const DefaultSampleAge = 250 * time.Millisecond

// ThresholdProbe is an interfaces.IdleProbe backed by a Source. When the
// source fails, the last good sample is reused so a flaky query cannot
// report a spurious return to activity. A reading younger than the sample
// age is shared between calls, so one poll queries the source once and
// IsIdle agrees with ElapsedTime.
type ThresholdProbe struct {
	mu        sync.Mutex
	source    Source
	threshold time.Duration
	maxAge    time.Duration
	now       func() time.Time
	log       zerolog.Logger

	last      time.Duration
	sampledAt time.Time
	sampled   bool
	failed    bool
}

var _ interfaces.IdleProbe = (*ThresholdProbe)(nil)

// NewProbe creates a probe that reports idle once source exceeds threshold.
// A negative threshold is treated as zero.
func NewProbe(threshold time.Duration, source Source, log zerolog.Logger) *ThresholdProbe {
	if threshold < 0 {
		threshold = 0
	}
	return &ThresholdProbe{
		source:    source,
		threshold: threshold,
		maxAge:    DefaultSampleAge,
		now:       time.Now,
		log:       log.With().Str("component", "idle").Logger(),
	}
}

// SetSampleAge sets how long a reading is reused. Zero or less queries the
// source on every call.
func (p *ThresholdProbe) SetSampleAge(d time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.maxAge = d
}

// Threshold returns the configured idle threshold.
func (p *ThresholdProbe) Threshold() time.Duration {
	return p.threshold
}

// IsIdle implements interfaces.IdleProbe.
func (p *ThresholdProbe) IsIdle() bool {
	return p.sample() >= p.threshold
}

// ElapsedTime implements interfaces.IdleProbe.
func (p *ThresholdProbe) ElapsedTime() time.Duration {
	return p.sample()
}

func (p *ThresholdProbe) sample() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()

	now := p.now()
	if p.sampled && p.maxAge > 0 && now.Sub(p.sampledAt) < p.maxAge {
		return p.last
	}
	p.sampled = true
	p.sampledAt = now

	d, err := p.source.IdleTime()
	if err != nil {
		if !p.failed {
			p.log.Debug().Err(err).Dur("reused", p.last).Msg("idle query failed, reusing last sample")
			p.failed = true
		}
		return p.last
	}
	if p.failed {
		p.log.Debug().Msg("idle query recovered")
		p.failed = false
	}
	if d < 0 {
		d = 0
	}
	p.last = d
	return d
}
