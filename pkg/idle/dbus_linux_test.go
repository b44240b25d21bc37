//go:build linux

package idle

import (
	"errors"
	"testing"
	"time"

	"github.com/godbus/dbus/v5"
)

func TestMutterSource_IdleTime(t *testing.T) {
	tests := []struct {
		name        string
		reply       uint64
		err         error
		expected    time.Duration
		expectError bool
	}{
		{name: "Milliseconds", reply: 2500, expected: 2500 * time.Millisecond},
		{name: "Service missing", err: errors.New("org.freedesktop.DBus.Error.ServiceUnknown"), expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			source := &MutterSource{
				call: func(dest string, path dbus.ObjectPath, method string, out any) error {
					if dest != mutterDest || path != mutterPath || method != mutterMethod {
						t.Errorf("unexpected call %s %s %s", dest, path, method)
					}
					if tt.err != nil {
						return tt.err
					}
					*(out.(*uint64)) = tt.reply
					return nil
				},
			}

			idle, err := source.IdleTime()

			if (err != nil) != tt.expectError {
				t.Errorf("IdleTime() error = %v, expectError %v", err, tt.expectError)
			}

			if idle != tt.expected {
				t.Errorf("IdleTime() = %v, want %v", idle, tt.expected)
			}
		})
	}
}

func TestScreenSaverSource_IdleTime(t *testing.T) {
	tests := []struct {
		name        string
		reply       uint32
		err         error
		expected    time.Duration
		expectError bool
	}{
		{name: "Seconds", reply: 75, expected: 75 * time.Second},
		{name: "Not implemented", err: errors.New("org.freedesktop.DBus.Error.NotSupported"), expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			source := &ScreenSaverSource{
				call: func(dest string, path dbus.ObjectPath, method string, out any) error {
					if dest != screenSaverDest || path != screenSaverPath || method != screenSaverMethod {
						t.Errorf("unexpected call %s %s %s", dest, path, method)
					}
					if tt.err != nil {
						return tt.err
					}
					*(out.(*uint32)) = tt.reply
					return nil
				},
			}

			idle, err := source.IdleTime()

			if (err != nil) != tt.expectError {
				t.Errorf("IdleTime() error = %v, expectError %v", err, tt.expectError)
			}

			if idle != tt.expected {
				t.Errorf("IdleTime() = %v, want %v", idle, tt.expected)
			}
		})
	}
}
