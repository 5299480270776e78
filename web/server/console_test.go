package server

import (
	"encoding/json"
	"log/slog"
	"testing"
	"time"
)

func TestWebLogger_BasicLogging(t *testing.T) {
	messageChan := make(chan ConsoleMessage, 10)
	logger := slog.New(NewWebLogger("test-render-123", messageChan))

	logger.Info("pass completed", "pass", 3)

	select {
	case msg := <-messageChan:
		if msg.Message != "pass completed pass=3" {
			t.Errorf("Expected message 'pass completed pass=3', got '%s'", msg.Message)
		}
		if msg.Level != "info" {
			t.Errorf("Expected level 'info', got '%s'", msg.Level)
		}
		if time.Since(msg.Timestamp) > time.Second {
			t.Errorf("Timestamp seems too old: %v", msg.Timestamp)
		}
	case <-time.After(100 * time.Millisecond):
		t.Error("Timeout waiting for console message")
	}
}

func TestWebLogger_Levels(t *testing.T) {
	messageChan := make(chan ConsoleMessage, 10)
	logger := slog.New(NewWebLogger("test-render-levels", messageChan))

	logger.Debug("hidden")
	logger.Warn("slow")
	logger.Error("failed")

	expected := []string{"warning", "error"}
	for i, level := range expected {
		select {
		case msg := <-messageChan:
			if msg.Level != level {
				t.Errorf("Message %d: expected level '%s', got '%s'", i, level, msg.Level)
			}
		case <-time.After(100 * time.Millisecond):
			t.Fatalf("Timeout waiting for message %d", i+1)
		}
	}

	select {
	case msg := <-messageChan:
		t.Errorf("Debug record should be dropped, got '%s'", msg.Message)
	default:
	}
}

func TestWebLogger_WithAttrs(t *testing.T) {
	messageChan := make(chan ConsoleMessage, 10)
	logger := slog.New(NewWebLogger("test-render-attrs", messageChan)).With("scene", "default")

	logger.Info("render started", "width", 512)

	msg := <-messageChan
	expected := "render started scene=default width=512"
	if msg.Message != expected {
		t.Errorf("Expected '%s', got '%s'", expected, msg.Message)
	}
}

func TestWebLogger_ChannelFull(t *testing.T) {
	messageChan := make(chan ConsoleMessage, 1)
	logger := slog.New(NewWebLogger("test-render-789", messageChan))

	// Later messages must not block once the channel is full
	logger.Info("Message 1")
	logger.Info("Message 2")
	logger.Info("Message 3")

	msg := <-messageChan
	if msg.Message != "Message 1" {
		t.Errorf("Expected first message to be kept, got '%s'", msg.Message)
	}
}

func TestWebLogger_NilChannel(t *testing.T) {
	logger := slog.New(NewWebLogger("test-render-nil", nil))

	// This should not panic
	logger.Info("Test message with nil channel")
}

func TestConsoleMessage_JSON(t *testing.T) {
	msg := ConsoleMessage{Message: "Test message", Timestamp: time.Unix(0, 0).UTC(), Level: "info"}

	data, err := json.Marshal(msg)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	expected := `{"message":"Test message","timestamp":"1970-01-01T00:00:00Z","level":"info"}`
	if string(data) != expected {
		t.Errorf("Expected %s, got %s", expected, data)
	}
}
