package session

import "github.com/Veraticus/presenced/pkg/events"

// WM_WTSSESSION_CHANGE wParam values.
const (
	wtsRemoteConnect    = 0x3
	wtsRemoteDisconnect = 0x4
	wtsSessionLock      = 0x7
	wtsSessionUnlock    = 0x8
)

// WM_ENDSESSION lParam flags.
const endSessionLogoff = 0x80000000

// ReasonFromWTSCode translates a Windows session-change code.
func ReasonFromWTSCode(code uint32) events.SessionChangeReason {
	switch code {
	case wtsRemoteConnect:
		return events.SessionChangeRemoteConnect
	case wtsRemoteDisconnect:
		return events.SessionChangeRemoteDisconnect
	case wtsSessionLock:
		return events.SessionChangeLock
	case wtsSessionUnlock:
		return events.SessionChangeUnlock
	default:
		return events.SessionChangeUnknown
	}
}

// EndReasonFromLParam translates a Windows end-session lParam.
func EndReasonFromLParam(lparam uint32) events.SessionEndReason {
	switch {
	case lparam&endSessionLogoff != 0:
		return events.SessionEndLogoff
	case lparam == 0:
		return events.SessionEndRestartOrShutdown
	default:
		return events.SessionEndUnknown
	}
}

// ReasonFromLogindMember translates an org.freedesktop.login1.Session signal
// member name.
func ReasonFromLogindMember(member string) events.SessionChangeReason {
	switch member {
	case "Lock":
		return events.SessionChangeLock
	case "Unlock":
		return events.SessionChangeUnlock
	default:
		return events.SessionChangeUnknown
	}
}
