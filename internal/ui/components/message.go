// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides the visual UI components for the tickerchat TUI.
package components

import (
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/tickerchat/internal/model"
	"github.com/jeranaias/tickerchat/internal/ui/styles"
	"github.com/jeranaias/tickerchat/internal/util"
)

// =============================================================================
// MESSAGE BUBBLE COMPONENT
// =============================================================================

// MessageBubble renders one chat turn as a styled bubble.
type MessageBubble struct {
	Message       *model.Message
	Width         int
	ShowTimestamp bool
	ShowTimings   bool

	// RevealOverride, when non-nil, replaces the message content. The
	// typewriter uses it to show only the revealed prefix.
	RevealOverride *string
	// ShowCaret appends the reveal caret after the content.
	ShowCaret bool

	theme *styles.Theme
}

// NewMessageBubble creates a new MessageBubble.
func NewMessageBubble(msg *model.Message, theme *styles.Theme) *MessageBubble {
	if msg == nil {
		msg = &model.Message{Role: model.RoleAssistant}
	}
	return &MessageBubble{
		Message:       msg,
		Width:         80,
		ShowTimestamp: true,
		ShowTimings:   true,
		theme:         theme,
	}
}

// SetWidth sets the bubble width.
func (b *MessageBubble) SetWidth(width int) {
	b.Width = width
}

// View renders the message bubble.
func (b *MessageBubble) View() string {
	switch b.Message.Role {
	case model.RoleUser:
		return b.renderUserBubble()
	default:
		return b.renderAssistantBubble()
	}
}

// content returns the text to show, honoring the reveal override.
func (b *MessageBubble) content() string {
	if b.RevealOverride != nil {
		return *b.RevealOverride
	}
	return b.Message.GetDisplayContent()
}

// ==========================================================================
// USER BUBBLE - Blue tones, right-aligned feel
// ==========================================================================

func (b *MessageBubble) renderUserBubble() string {
	content := b.content()
	if content == "" {
		content = "..."
	}

	maxContentWidth := b.Width - 12
	if maxContentWidth < 20 {
		maxContentWidth = 20
	}
	wrapped := wordWrap(content, maxContentWidth)
	contentWidth := minInt(maxLineWidth(wrapped)+4, b.Width-8)

	bubbleStyle := lipgloss.NewStyle().
		Foreground(styles.UserBubbleFg).
		Background(styles.UserBubbleBg).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(styles.UserBubbleBorder).
		Padding(0, 2).
		Width(contentWidth)

	bubble := bubbleStyle.Render(wrapped)

	roleStyle := lipgloss.NewStyle().
		Foreground(styles.TextMuted).
		Italic(true)
	header := roleStyle.Render("you")
	if b.ShowTimestamp {
		if ts := b.renderTimestamp(); ts != "" {
			header += " " + ts
		}
	}

	// Right-align with a computed left margin.
	leftMargin := b.Width - contentWidth - 4
	if leftMargin < 0 {
		leftMargin = 0
	}
	marginStyle := lipgloss.NewStyle().MarginLeft(leftMargin)

	return lipgloss.JoinVertical(lipgloss.Right,
		marginStyle.Render(header),
		marginStyle.Render(bubble),
	)
}

// ==========================================================================
// ASSISTANT BUBBLE - Purple tones, left-aligned
// ==========================================================================

func (b *MessageBubble) renderAssistantBubble() string {
	content := b.content()
	if b.ShowCaret {
		content += b.theme.Caret.Render(styles.StreamCaret)
	}
	if content == "" {
		content = "..."
	}

	maxContentWidth := b.Width - 12
	if maxContentWidth < 20 {
		maxContentWidth = 20
	}
	wrapped := wordWrap(content, maxContentWidth)
	contentWidth := minInt(maxLineWidth(wrapped)+4, b.Width-8)

	bubbleStyle := lipgloss.NewStyle().
		Foreground(styles.AssistantBubbleFg).
		Background(styles.AssistantBubbleBg).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(styles.AssistantBubbleBorder).
		Padding(0, 2).
		Width(contentWidth).
		MarginRight(4)

	bubble := bubbleStyle.Render(wrapped)

	roleStyle := lipgloss.NewStyle().
		Foreground(styles.TextMuted).
		Italic(true)
	header := roleStyle.Render("assistant")
	if b.ShowTimestamp {
		if ts := b.renderTimestamp(); ts != "" {
			header += " " + ts
		}
	}

	result := lipgloss.JoinVertical(lipgloss.Left, header, bubble)

	if b.ShowTimings && !b.Message.IsStreaming && b.Message.TotalDuration > 0 {
		result = lipgloss.JoinVertical(lipgloss.Left, result, b.renderTimings())
	}
	return result
}

// ==========================================================================
// HELPER METHODS
// ==========================================================================

func (b *MessageBubble) renderTimestamp() string {
	ts := b.Message.Timestamp
	if ts.IsZero() {
		return ""
	}

	var formatted string
	now := time.Now()
	if ts.Year() == now.Year() && ts.YearDay() == now.YearDay() {
		formatted = ts.Format("3:04 PM")
	} else {
		formatted = ts.Format("Jan 2, 3:04 PM")
	}

	return lipgloss.NewStyle().
		Foreground(styles.TextMuted).
		Italic(true).
		Render(formatted)
}

// renderTimings shows response timing under a completed assistant message.
func (b *MessageBubble) renderTimings() string {
	parts := []string{b.Message.TotalDuration.Round(100 * time.Millisecond).String()}
	if b.Message.TTFT > 0 {
		parts = append(parts, "first token "+b.Message.TTFT.Round(time.Millisecond).String())
	}

	return lipgloss.NewStyle().
		Foreground(styles.TextMuted).
		PaddingLeft(2).
		Render(strings.Join(parts, " | "))
}

// ==========================================================================
// UTILITY FUNCTIONS
// ==========================================================================

// wordWrap wraps text to fit within the specified display width.
func wordWrap(text string, width int) string {
	if width <= 0 {
		return text
	}

	var result strings.Builder
	for lineIdx, line := range strings.Split(text, "\n") {
		if lineIdx > 0 {
			result.WriteString("\n")
		}

		words := strings.Fields(line)
		if len(words) == 0 {
			continue
		}

		currentLine := words[0]
		for _, word := range words[1:] {
			if util.StringWidth(currentLine)+1+util.StringWidth(word) <= width {
				currentLine += " " + word
			} else {
				result.WriteString(currentLine)
				result.WriteString("\n")
				currentLine = word
			}
		}
		result.WriteString(currentLine)
	}

	return result.String()
}

// maxLineWidth returns the display width of the widest line.
func maxLineWidth(text string) int {
	maxWidth := 0
	for _, line := range strings.Split(text, "\n") {
		if w := util.StringWidth(line); w > maxWidth {
			maxWidth = w
		}
	}
	return maxWidth
}

// minInt returns the minimum of two integers.
func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// =============================================================================
// MESSAGE LIST COMPONENT
// =============================================================================

// MessageList renders a transcript of message bubbles.
type MessageList struct {
	Messages    []*model.Message
	Width       int
	ShowTimings bool

	// Typewriter state for the last message
	RevealOverride *string
	ShowCaret      bool

	theme *styles.Theme
}

// NewMessageList creates a new MessageList.
func NewMessageList(theme *styles.Theme) *MessageList {
	return &MessageList{
		Width:       80,
		ShowTimings: true,
		theme:       theme,
	}
}

// SetMessages sets the messages to display.
func (ml *MessageList) SetMessages(messages []*model.Message) {
	ml.Messages = messages
}

// SetWidth sets the list width.
func (ml *MessageList) SetWidth(width int) {
	ml.Width = width
}

// View renders all messages.
func (ml *MessageList) View() string {
	if len(ml.Messages) == 0 {
		emptyStyle := lipgloss.NewStyle().
			Foreground(styles.TextMuted).
			Italic(true).
			Width(ml.Width).
			Align(lipgloss.Center).
			Padding(2, 0)
		return emptyStyle.Render("No messages yet. Ask about this ticker!")
	}

	var bubbles []string
	for i, msg := range ml.Messages {
		bubble := NewMessageBubble(msg, ml.theme)
		bubble.SetWidth(ml.Width)
		bubble.ShowTimings = ml.ShowTimings
		if i == len(ml.Messages)-1 && msg.Role == model.RoleAssistant {
			bubble.RevealOverride = ml.RevealOverride
			bubble.ShowCaret = ml.ShowCaret
		}
		bubbles = append(bubbles, bubble.View())
	}

	return strings.Join(bubbles, "\n")
}
