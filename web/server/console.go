package server

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/df07/glcompute-raytracer/pkg/core"
)

// ConsoleMessage represents a console message with timestamp
type ConsoleMessage struct {
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
	Level     string    `json:"level"` // "info", "warning", "error"
}

// WebLogger is a slog.Handler that forwards records to a render's console
// channel and mirrors them to the server log
type WebLogger struct {
	renderID    string
	consoleChan chan<- ConsoleMessage
	attrs       []slog.Attr
}

// NewWebLogger creates a new web logger for a specific render
func NewWebLogger(renderID string, consoleChan chan<- ConsoleMessage) *WebLogger {
	return &WebLogger{
		renderID:    renderID,
		consoleChan: consoleChan,
	}
}

// Enabled drops debug records; the browser console only shows progress
func (wl *WebLogger) Enabled(_ context.Context, level slog.Level) bool {
	return level >= slog.LevelInfo
}

// Handle formats the record as "message key=value ..." and sends it without blocking
func (wl *WebLogger) Handle(ctx context.Context, r slog.Record) error {
	attrs := make([]slog.Attr, 0, len(wl.attrs)+r.NumAttrs())
	attrs = append(attrs, wl.attrs...)
	r.Attrs(func(a slog.Attr) bool {
		attrs = append(attrs, a)
		return true
	})

	var b strings.Builder
	b.WriteString(r.Message)
	for _, a := range attrs {
		fmt.Fprintf(&b, " %s=%v", a.Key, a.Value)
	}

	core.Logger().LogAttrs(ctx, r.Level, r.Message, append(attrs, slog.String("render", wl.renderID))...)

	if wl.consoleChan == nil {
		return nil
	}

	timestamp := r.Time
	if timestamp.IsZero() {
		timestamp = time.Now()
	}

	select {
	case wl.consoleChan <- ConsoleMessage{Message: b.String(), Timestamp: timestamp, Level: consoleLevel(r.Level)}:
	default:
		// Channel full, skip (don't block)
	}
	return nil
}

// WithAttrs returns a handler that prefixes every record with attrs
func (wl *WebLogger) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := *wl
	next.attrs = append(append([]slog.Attr{}, wl.attrs...), attrs...)
	return &next
}

// WithGroup is a no-op: console lines are flat
func (wl *WebLogger) WithGroup(string) slog.Handler {
	return wl
}

func consoleLevel(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return "error"
	case level >= slog.LevelWarn:
		return "warning"
	default:
		return "info"
	}
}
