package notification

import (
	"fmt"
	"io"
	"strings"
)

// StdoutNotifier writes notifications as text lines. presenced uses it when
// notify is set to stdout, pointed at stderr so the JSON event stream on
// stdout stays clean.
type StdoutNotifier struct {
	w io.Writer
}

// NewStdoutNotifier creates a notifier writing to w.
func NewStdoutNotifier(w io.Writer) *StdoutNotifier {
	return &StdoutNotifier{w: w}
}

// Send prints the notification.
func (n *StdoutNotifier) Send(notification Notification) error {
	line := fmt.Sprintf("[NOTIFICATION] %s: %s", notification.Title, notification.Message)
	if len(notification.Tags) > 0 {
		line += " [" + strings.Join(notification.Tags, ",") + "]"
	}
	_, err := fmt.Fprintln(n.w, line)
	return err
}
