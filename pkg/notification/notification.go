// Package notification forwards presence events to people.
package notification

import "time"

// Priority values understood by ntfy.
const (
	PriorityMin     = 1
	PriorityLow     = 2
	PriorityDefault = 3
	PriorityHigh    = 4
	PriorityMax     = 5
)

// Notification represents a notification to be sent.
type Notification struct {
	Title    string
	Message  string
	Time     time.Time
	Tags     []string
	Priority int
}

// Notifier sends notifications.
type Notifier interface {
	Send(notification Notification) error
}
