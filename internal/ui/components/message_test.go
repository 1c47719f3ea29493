// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"
	"testing"

	"github.com/jeranaias/tickerchat/internal/model"
	"github.com/jeranaias/tickerchat/internal/ui/styles"
)

func TestWordWrap(t *testing.T) {
	tests := []struct {
		name  string
		input string
		width int
		check func(t *testing.T, out string)
	}{
		{
			name:  "short line unchanged",
			input: "hello world",
			width: 40,
			check: func(t *testing.T, out string) {
				if out != "hello world" {
					t.Errorf("expected unchanged, got %q", out)
				}
			},
		},
		{
			name:  "long line wrapped",
			input: "one two three four five six seven",
			width: 10,
			check: func(t *testing.T, out string) {
				for _, line := range strings.Split(out, "\n") {
					if len(line) > 10 {
						t.Errorf("line %q exceeds width", line)
					}
				}
			},
		},
		{
			name:  "existing newlines preserved",
			input: "first\nsecond",
			width: 40,
			check: func(t *testing.T, out string) {
				if !strings.Contains(out, "first\n") {
					t.Errorf("newline lost in %q", out)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, wordWrap(tt.input, tt.width))
		})
	}
}

func TestMessageBubbleUserContent(t *testing.T) {
	theme := styles.NewTheme()
	msg := model.NewUserMessage("what is the trend?")

	bubble := NewMessageBubble(msg, theme)
	bubble.SetWidth(80)
	out := bubble.View()

	if !strings.Contains(out, "what is the trend?") {
		t.Error("bubble should contain message content")
	}
	if !strings.Contains(out, "you") {
		t.Error("user bubble should carry the role label")
	}
}

func TestMessageBubbleRevealOverride(t *testing.T) {
	theme := styles.NewTheme()
	msg := model.NewAssistantMessage()
	msg.AppendToken("full answer text")

	partial := "full ans"
	bubble := NewMessageBubble(msg, theme)
	bubble.SetWidth(80)
	bubble.RevealOverride = &partial
	out := bubble.View()

	if !strings.Contains(out, "full ans") {
		t.Error("bubble should show revealed prefix")
	}
	if strings.Contains(out, "full answer text") {
		t.Error("bubble should not show unrevealed content")
	}
}

func TestMessageBubbleCaret(t *testing.T) {
	theme := styles.NewTheme()
	msg := model.NewAssistantMessage()
	msg.AppendToken("typing")

	bubble := NewMessageBubble(msg, theme)
	bubble.SetWidth(80)
	bubble.ShowCaret = true
	out := bubble.View()

	if !strings.Contains(out, styles.StreamCaret) {
		t.Error("streaming bubble should show the caret")
	}

	bubble.ShowCaret = false
	out = bubble.View()
	if strings.Contains(out, styles.StreamCaret) {
		t.Error("caret should disappear when reveal is done")
	}
}

func TestMessageListEmptyState(t *testing.T) {
	theme := styles.NewTheme()
	list := NewMessageList(theme)
	list.SetWidth(80)

	out := list.View()
	if !strings.Contains(out, "No messages yet") {
		t.Error("empty transcript should show the empty state")
	}
}

func TestMessageListRendersAllMessages(t *testing.T) {
	theme := styles.NewTheme()
	list := NewMessageList(theme)
	list.SetWidth(80)

	user := model.NewUserMessage("question")
	assistant := model.NewAssistantMessage()
	assistant.AppendToken("answer")
	assistant.FinalizeStream(nil)

	list.SetMessages([]*model.Message{user, assistant})
	out := list.View()

	if !strings.Contains(out, "question") || !strings.Contains(out, "answer") {
		t.Error("transcript should contain both turns")
	}
}
