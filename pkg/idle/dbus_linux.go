//go:build linux

package idle

import (
	"fmt"
	"time"

	"github.com/godbus/dbus/v5"
)

const (
	mutterDest   = "org.gnome.Mutter.IdleMonitor"
	mutterPath   = dbus.ObjectPath("/org/gnome/Mutter/IdleMonitor/Core")
	mutterMethod = "org.gnome.Mutter.IdleMonitor.GetIdletime"

	screenSaverDest   = "org.freedesktop.ScreenSaver"
	screenSaverPath   = dbus.ObjectPath("/org/freedesktop/ScreenSaver")
	screenSaverMethod = "org.freedesktop.ScreenSaver.GetSessionIdleTime"
)

// busCall invokes a no-argument method and stores its single reply in out.
type busCall func(dest string, path dbus.ObjectPath, method string, out any) error

func connCall(conn *dbus.Conn) busCall {
	return func(dest string, path dbus.ObjectPath, method string, out any) error {
		return conn.Object(dest, path).Call(method, 0).Store(out)
	}
}

// MutterSource queries the GNOME Shell idle monitor, which works on both
// Wayland and X11 sessions.
type MutterSource struct {
	call busCall
}

var _ Source = (*MutterSource)(nil)

// NewMutterSource creates a source on the given session bus connection.
func NewMutterSource(conn *dbus.Conn) *MutterSource {
	return &MutterSource{call: connCall(conn)}
}

// Name implements Source.
func (s *MutterSource) Name() string {
	return "mutter"
}

// IdleTime implements Source.
func (s *MutterSource) IdleTime() (time.Duration, error) {
	var ms uint64
	if err := s.call(mutterDest, mutterPath, mutterMethod, &ms); err != nil {
		return 0, fmt.Errorf("mutter idle monitor: %w", err)
	}
	return time.Duration(ms) * time.Millisecond, nil
}

// ScreenSaverSource queries the freedesktop ScreenSaver service exposed by
// KDE and other desktops. It has one second resolution.
type ScreenSaverSource struct {
	call busCall
}

var _ Source = (*ScreenSaverSource)(nil)

// NewScreenSaverSource creates a source on the given session bus connection.
func NewScreenSaverSource(conn *dbus.Conn) *ScreenSaverSource {
	return &ScreenSaverSource{call: connCall(conn)}
}

// Name implements Source.
func (s *ScreenSaverSource) Name() string {
	return "screensaver"
}

// IdleTime implements Source.
func (s *ScreenSaverSource) IdleTime() (time.Duration, error) {
	var secs uint32
	if err := s.call(screenSaverDest, screenSaverPath, screenSaverMethod, &secs); err != nil {
		return 0, fmt.Errorf("screensaver idle time: %w", err)
	}
	return time.Duration(secs) * time.Second, nil
}
