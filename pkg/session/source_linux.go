//go:build linux

package session

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/Veraticus/presenced/pkg/events"
	"github.com/godbus/dbus/v5"
	"github.com/rs/zerolog"
)

const (
	logindDest         = "org.freedesktop.login1"
	logindPath         = dbus.ObjectPath("/org/freedesktop/login1")
	logindManagerIface = "org.freedesktop.login1.Manager"
	logindSessionIface = "org.freedesktop.login1.Session"
	screenSaverIface   = "org.freedesktop.ScreenSaver"
)

// logindSource delivers logind and screensaver signals. Lock state is
// de-duplicated across both buses so one lock yields one handler call.
type logindSource struct {
	log zerolog.Logger

	mu          sync.Mutex
	running     bool
	system      *dbus.Conn
	sessionBus  *dbus.Conn
	sessionPath dbus.ObjectPath
	sessionID   string
	signals     chan *dbus.Signal
	cancel      context.CancelFunc
	done        chan struct{}

	handler   Handler
	locked    bool
	lockKnown bool
}

// newPlatformSource creates the logind-backed source.
func newPlatformSource(logger zerolog.Logger) (SignalSource, error) {
	return &logindSource{log: logger}, nil
}

// Start connects to the system bus and, when available, the session bus.
func (s *logindSource) Start(ctx context.Context, h Handler) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return ErrAlreadyStarted
	}

	system, err := dbus.ConnectSystemBus()
	if err != nil {
		return fmt.Errorf("connect system bus: %w", err)
	}

	path, id, err := lookupSession(system)
	if err != nil {
		_ = system.Close()
		return err
	}

	matches := [][]dbus.MatchOption{
		{dbus.WithMatchObjectPath(path), dbus.WithMatchInterface(logindSessionIface)},
		{dbus.WithMatchInterface(logindManagerIface), dbus.WithMatchMember("PrepareForShutdown")},
		{dbus.WithMatchInterface(logindManagerIface), dbus.WithMatchMember("SessionRemoved")},
	}
	for _, match := range matches {
		if err := system.AddMatchSignal(match...); err != nil {
			_ = system.Close()
			return fmt.Errorf("subscribe logind signals: %w", err)
		}
	}

	s.signals = make(chan *dbus.Signal, 16)
	system.Signal(s.signals)
	s.system = system
	s.sessionPath = path
	s.sessionID = id

	if sessionBus, err := dbus.ConnectSessionBus(); err != nil {
		s.log.Warn().Err(err).Msg("session bus unavailable, screensaver lock signals disabled")
	} else if err := sessionBus.AddMatchSignal(
		dbus.WithMatchInterface(screenSaverIface),
		dbus.WithMatchMember("ActiveChanged"),
	); err != nil {
		s.log.Warn().Err(err).Msg("subscribe screensaver signals failed")
		_ = sessionBus.Close()
	} else {
		sessionBus.Signal(s.signals)
		s.sessionBus = sessionBus
	}

	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.done = make(chan struct{})
	s.handler = h
	s.lockKnown = false
	s.running = true

	go s.run(runCtx, s.signals, s.done)

	s.log.Info().
		Str("session_id", id).
		Str("session_path", string(path)).
		Bool("screensaver", s.sessionBus != nil).
		Msg("logind signal source started")
	return nil
}

// Stop disconnects from both buses and waits for the dispatch goroutine.
func (s *logindSource) Stop() error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	s.cancel()
	done := s.done
	system, sessionBus, signals := s.system, s.sessionBus, s.signals
	s.system, s.sessionBus = nil, nil
	s.mu.Unlock()

	<-done

	system.RemoveSignal(signals)
	err := system.Close()
	if sessionBus != nil {
		sessionBus.RemoveSignal(signals)
		if closeErr := sessionBus.Close(); err == nil {
			err = closeErr
		}
	}
	s.log.Info().Msg("logind signal source stopped")
	return err
}

func (s *logindSource) run(ctx context.Context, signals <-chan *dbus.Signal, done chan<- struct{}) {
	defer close(done)
	for {
		select {
		case <-ctx.Done():
			return
		case sig, ok := <-signals:
			if !ok {
				return
			}
			s.handleSignal(sig)
		}
	}
}

// handleSignal dispatches one bus signal to the handler.
func (s *logindSource) handleSignal(sig *dbus.Signal) {
	if sig == nil {
		return
	}

	s.mu.Lock()
	h := s.handler
	sessionPath, sessionID := s.sessionPath, s.sessionID
	s.mu.Unlock()
	if h == nil {
		return
	}

	iface, member := splitSignalName(sig.Name)
	switch iface {
	case logindSessionIface:
		if sig.Path != sessionPath {
			return
		}
		reason := ReasonFromLogindMember(member)
		switch reason {
		case events.SessionChangeLock, events.SessionChangeUnlock:
			if s.setLocked(reason == events.SessionChangeLock) {
				h.OnSessionChanged(reason)
			}
		}
	case logindManagerIface:
		switch member {
		case "PrepareForShutdown":
			if start, ok := firstBool(sig.Body); ok && start {
				h.OnSessionEnd(events.SessionEndRestartOrShutdown)
			}
		case "SessionRemoved":
			if len(sig.Body) > 0 {
				if id, ok := sig.Body[0].(string); ok && id == sessionID {
					h.OnSessionEnd(events.SessionEndLogoff)
				}
			}
		}
	case screenSaverIface:
		if member != "ActiveChanged" {
			return
		}
		active, ok := firstBool(sig.Body)
		if !ok || !s.setLocked(active) {
			return
		}
		// Desktop lockers announce through ScreenSaver; publish them the same
		// way as logind so subscribers see the change either way.
		if active {
			h.OnSessionChanged(events.SessionChangeLock)
		} else {
			h.OnSessionChanged(events.SessionChangeUnlock)
		}
	default:
		s.log.Debug().Str("signal", sig.Name).Msg("ignoring unexpected signal")
	}
}

// setLocked records the lock state and reports whether it changed.
func (s *logindSource) setLocked(locked bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lockKnown && s.locked == locked {
		return false
	}
	s.locked = locked
	s.lockKnown = true
	return true
}

// lookupSession resolves the logind session this process belongs to.
func lookupSession(conn *dbus.Conn) (dbus.ObjectPath, string, error) {
	manager := conn.Object(logindDest, logindPath)

	var path dbus.ObjectPath
	var err error
	if id := os.Getenv("XDG_SESSION_ID"); id != "" {
		err = manager.Call(logindManagerIface+".GetSession", 0, id).Store(&path)
	} else {
		err = manager.Call(logindManagerIface+".GetSessionByPID", 0, uint32(os.Getpid())).Store(&path)
	}
	if err != nil {
		return "", "", fmt.Errorf("resolve logind session: %w", err)
	}

	variant, err := conn.Object(logindDest, path).GetProperty(logindSessionIface + ".Id")
	if err != nil {
		return "", "", fmt.Errorf("read logind session id: %w", err)
	}
	id, ok := variant.Value().(string)
	if !ok {
		return "", "", fmt.Errorf("read logind session id: unexpected type %T", variant.Value())
	}
	return path, id, nil
}

func splitSignalName(name string) (iface, member string) {
	i := strings.LastIndex(name, ".")
	if i < 0 {
		return "", name
	}
	return name[:i], name[i+1:]
}

func firstBool(body []interface{}) (bool, bool) {
	if len(body) == 0 {
		return false, false
	}
	v, ok := body[0].(bool)
	return v, ok
}
