package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/Veraticus/presenced/pkg/config"
	"github.com/Veraticus/presenced/pkg/events"
	"github.com/Veraticus/presenced/pkg/idle"
	"github.com/Veraticus/presenced/pkg/interfaces"
	"github.com/Veraticus/presenced/pkg/notification"
	"github.com/Veraticus/presenced/pkg/presence"
	"github.com/Veraticus/presenced/pkg/session"
	"github.com/Veraticus/presenced/pkg/timer"
	"github.com/rs/zerolog"
)

// Dependencies holds all the dependencies for the application
type Dependencies struct {
	Config *config.Config
	Logger zerolog.Logger

	Loop     *timer.Loop
	Bus      *events.Bus
	Clock    interfaces.Clock
	Activity *idle.ActivityTracker
	Source   idle.Source
	Probe    interfaces.IdleProbe
	Tracker  *presence.Tracker

	// Signals is the native session source; Relay is used when there is none
	// or it fails to start.
	Signals session.SignalSource
	Relay   *session.Relay

	Forwarder *notification.Forwarder
	Output    *EventWriter

	closers []func() error
}

// NewDependencies creates all dependencies with the given configuration.
// Events are written to out as JSON lines. With notify set to stdout,
// forwarded notifications are printed to notifyOut.
func NewDependencies(cfg *config.Config, log zerolog.Logger, out, notifyOut io.Writer) (*Dependencies, error) {
	deps := &Dependencies{
		Config: cfg,
		Logger: log,
		Loop:   timer.NewLoop(timer.DefaultQueueSize),
		Bus:    events.NewBus(),
		Clock:  idle.NewClock(),
		Relay:  session.NewRelay(),
	}

	deps.Activity = idle.NewActivityTracker()
	chain := idle.NewPlatformSource(log, deps.Activity)
	deps.Source = chain
	deps.closers = append(deps.closers, chain.Close)
	probe := idle.NewProbe(cfg.IdleThreshold, chain, log)
	probe.SetSampleAge(cfg.PollInterval / 2)
	deps.Probe = probe

	if err := deps.wire(); err != nil {
		deps.Close()
		return nil, err
	}

	signals, err := session.NewSignalSource(log)
	switch {
	case errors.Is(err, session.ErrUnsupported):
		log.Info().Msg("no native session signals on this platform, using relay")
		deps.Signals = deps.Relay
	case err != nil:
		deps.Close()
		return nil, fmt.Errorf("failed to create session signal source: %w", err)
	default:
		deps.Signals = signals
	}

	// An unlock is user input; it keeps the activity fallback honest on hosts
	// with no native idle source.
	deps.Bus.Subscribe(events.TopicSystem, events.TypeSessionChanged, func(e events.Event) {
		if p, ok := e.Payload.(events.SessionChanged); ok && p.Reason == events.SessionChangeUnlock {
			deps.Activity.UpdateActivity()
		}
	})

	deps.Output = NewEventWriter(out, log)
	deps.Output.Attach(deps.Bus)

	if cfg.Forwarding() {
		var limiter interfaces.RateLimiter
		if cfg.RateLimit.MaxMessages > 0 {
			limiter = notification.NewWindowRateLimiter(cfg.RateLimit.MaxMessages, cfg.RateLimit.Window)
		}
		deps.Forwarder = notification.NewForwarder(notification.ForwarderConfig{
			Types:      cfg.ForwardTypes(),
			Heartbeats: cfg.ForwardHeartbeats,
		}, newNotifier(cfg, notifyOut), limiter, log)
		deps.Forwarder.Attach(deps.Bus)
		deps.closers = append(deps.closers, deps.Forwarder.Close)
	}

	return deps, nil
}

func newNotifier(cfg *config.Config, notifyOut io.Writer) notification.Notifier {
	if cfg.Notify == config.NotifyStdout {
		return notification.NewStdoutNotifier(notifyOut)
	}
	return notification.NewNtfyClient(cfg.NtfyServer, cfg.NtfyTopic)
}

// wire builds the tracker on the loop from the probe and clock already set.
func (d *Dependencies) wire() error {
	tracker, err := presence.New(presence.Config{
		PollInterval:    d.Config.PollInterval,
		SustainInterval: d.Config.EffectiveSustainInterval(),
	}, presence.Deps{
		Probe:     d.Probe,
		Clock:     d.Clock,
		Scheduler: d.Loop,
		Publisher: d.Bus,
		Logger:    d.Logger,
	})
	if err != nil {
		return fmt.Errorf("failed to create presence tracker: %w", err)
	}
	d.Tracker = tracker
	return nil
}

// Close cleans up all dependencies
func (d *Dependencies) Close() {
	for i := len(d.closers) - 1; i >= 0; i-- {
		if err := d.closers[i](); err != nil {
			d.Logger.Debug().Err(err).Msg("cleanup failed")
		}
	}
	d.closers = nil
}

// Application represents the main application
type Application struct {
	deps *Dependencies
}

// NewApplication creates a new application with the given dependencies
func NewApplication(deps *Dependencies) *Application {
	return &Application{deps: deps}
}

// Run starts the tracker and session signals and drives the event loop until
// ctx is cancelled. Cancellation is a clean shutdown and returns nil.
func (a *Application) Run(ctx context.Context) error {
	d := a.deps
	log := d.Logger

	if err := d.Loop.Post(d.Tracker.Start); err != nil {
		return err
	}

	signals := d.Signals
	dispatcher := presence.NewDispatcher(d.Tracker, d.Loop)
	if err := signals.Start(ctx, dispatcher); err != nil {
		if signals == session.SignalSource(d.Relay) {
			return fmt.Errorf("failed to start session relay: %w", err)
		}
		log.Warn().Err(err).Msg("session signals unavailable, lock detection disabled")
		signals = d.Relay
		if err := signals.Start(ctx, dispatcher); err != nil {
			return fmt.Errorf("failed to start session relay: %w", err)
		}
	}
	defer func() {
		if err := signals.Stop(); err != nil {
			log.Debug().Err(err).Msg("failed to stop session signals")
		}
	}()

	log.Info().
		Dur("poll_interval", d.Config.PollInterval).
		Dur("idle_threshold", d.Config.IdleThreshold).
		Bool("forwarding", d.Forwarder != nil).
		Msg("presenced running")

	err := d.Loop.Run(ctx)
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		log.Info().Msg("presenced stopping")
		return nil
	}
	return err
}
