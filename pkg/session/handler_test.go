package session

import (
	"sync"

	"github.com/Veraticus/presenced/pkg/events"
)

// recordingHandler captures handler calls as strings.
type recordingHandler struct {
	mu    sync.Mutex
	calls []string
}

func (h *recordingHandler) record(s string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.calls = append(h.calls, s)
}

func (h *recordingHandler) OnLock()   { h.record("lock") }
func (h *recordingHandler) OnUnlock() { h.record("unlock") }

func (h *recordingHandler) OnSessionEnd(reason events.SessionEndReason) {
	h.record("end:" + string(reason))
}

func (h *recordingHandler) OnSessionChanged(reason events.SessionChangeReason) {
	h.record("changed:" + string(reason))
}

func (h *recordingHandler) Calls() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.calls...)
}
