// Package notify is the local in-app notification boundary. It is a strictly
// one-way side channel: the controller invokes it only after state changes
// are durably committed and never consults the outcome.
package notify

import "log"

// Emitter surfaces an alert to the current user.
type Emitter interface {
	Show(title, body, kind string, data map[string]any)
}

// LogEmitter writes alerts to the process log. The mobile shell swaps in a
// platform-backed emitter; the controller cannot tell the difference.
type LogEmitter struct{}

// NewLogEmitter constructs a LogEmitter.
func NewLogEmitter() *LogEmitter {
	return &LogEmitter{}
}

// Show logs the alert.
func (e *LogEmitter) Show(title, body, kind string, data map[string]any) {
	log.Printf("local notification kind=%s title=%q body=%q data=%v", kind, title, body, data)
}

// NoopEmitter discards alerts.
type NoopEmitter struct{}

func (NoopEmitter) Show(title, body, kind string, data map[string]any) {}
