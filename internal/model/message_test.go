// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"strings"
	"testing"
	"time"
)

func TestNewUserMessage(t *testing.T) {
	msg := NewUserMessage("hello")

	if msg.Role != RoleUser {
		t.Errorf("expected role %q, got %q", RoleUser, msg.Role)
	}
	if msg.Content != "hello" {
		t.Errorf("expected content %q, got %q", "hello", msg.Content)
	}
	if msg.IsStreaming {
		t.Error("user message should not be streaming")
	}
	if !strings.HasPrefix(msg.ID, "msg_") {
		t.Errorf("expected msg_ prefix, got %q", msg.ID)
	}
	if msg.Timestamp.IsZero() {
		t.Error("timestamp should be set")
	}
}

func TestNewAssistantMessage(t *testing.T) {
	msg := NewAssistantMessage()

	if msg.Role != RoleAssistant {
		t.Errorf("expected role %q, got %q", RoleAssistant, msg.Role)
	}
	if !msg.IsStreaming {
		t.Error("new assistant message should be streaming")
	}
	if !msg.IsEmpty() {
		t.Error("new assistant message should be empty")
	}
}

func TestMessageIDUniqueness(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		msg := NewUserMessage("x")
		if seen[msg.ID] {
			t.Fatalf("duplicate ID generated: %s", msg.ID)
		}
		seen[msg.ID] = true
	}
}

func TestAppendToken(t *testing.T) {
	msg := NewAssistantMessage()

	msg.AppendToken("Hello")
	msg.AppendToken(", ")
	msg.AppendToken("world")

	if got := msg.GetDisplayContent(); got != "Hello, world" {
		t.Errorf("expected %q, got %q", "Hello, world", got)
	}
	// Content stays empty until finalized.
	if msg.Content != "" {
		t.Errorf("Content should be empty while streaming, got %q", msg.Content)
	}
}

func TestAppendTokenAfterFinalize(t *testing.T) {
	msg := NewAssistantMessage()
	msg.AppendToken("done")
	msg.FinalizeStream(nil)

	msg.AppendToken(" more")

	if got := msg.GetDisplayContent(); got != "done" {
		t.Errorf("append after finalize should be ignored, got %q", got)
	}
}

func TestFinalizeStream(t *testing.T) {
	msg := NewAssistantMessage()
	msg.AppendToken("final answer")

	stats := NewStatistics()
	stats.RecordFirstToken()
	stats.Finalize()
	msg.FinalizeStream(stats)

	if msg.IsStreaming {
		t.Error("message should not be streaming after finalize")
	}
	if msg.Content != "final answer" {
		t.Errorf("expected content %q, got %q", "final answer", msg.Content)
	}
	if msg.TotalDuration == 0 {
		t.Error("expected total duration to be recorded")
	}
}

func TestFinalizeStreamIdempotent(t *testing.T) {
	msg := NewAssistantMessage()
	msg.AppendToken("once")
	msg.FinalizeStream(nil)

	// Second finalize must not clobber content.
	msg.FinalizeStream(nil)

	if msg.Content != "once" {
		t.Errorf("expected content %q, got %q", "once", msg.Content)
	}
}

func TestPreview(t *testing.T) {
	tests := []struct {
		name    string
		content string
		maxLen  int
		want    string
	}{
		{"short content", "hello", 10, "hello"},
		{"exact length", "hello", 5, "hello"},
		{"truncated", "hello world", 8, "hello..."},
		{"unicode safe", "héllo wörld", 8, "héllo..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := NewUserMessage(tt.content)
			if got := msg.Preview(tt.maxLen); got != tt.want {
				t.Errorf("Preview(%d) = %q, want %q", tt.maxLen, got, tt.want)
			}
		})
	}
}

func TestStatistics(t *testing.T) {
	stats := NewStatistics()
	time.Sleep(time.Millisecond)
	stats.RecordFirstToken()
	first := stats.FirstTokenTime

	// A second first-token record must not move the mark.
	stats.RecordFirstToken()
	if !stats.FirstTokenTime.Equal(first) {
		t.Error("RecordFirstToken should only record once")
	}

	stats.Finalize()
	if stats.TTFT <= 0 {
		t.Errorf("expected positive TTFT, got %v", stats.TTFT)
	}
	if stats.TotalDuration < stats.TTFT {
		t.Errorf("total duration %v should be >= TTFT %v", stats.TotalDuration, stats.TTFT)
	}
}

func TestRoleDisplayName(t *testing.T) {
	if got := RoleUser.DisplayName(); got != "You" {
		t.Errorf("expected %q, got %q", "You", got)
	}
	if got := RoleAssistant.DisplayName(); got != "Assistant" {
		t.Errorf("expected %q, got %q", "Assistant", got)
	}
}
