// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"
	"testing"

	"github.com/jeranaias/tickerchat/internal/ui/styles"
)

func longContent(lines int) string {
	var sb strings.Builder
	for i := 0; i < lines; i++ {
		sb.WriteString("line of transcript content\n")
	}
	return sb.String()
}

func TestViewportAutoScrollFollowsNewContent(t *testing.T) {
	cv := NewChatViewport(styles.NewTheme())
	cv.SetSize(80, 10)

	cv.SetContent(longContent(50), true)

	if !cv.AutoScroll() {
		t.Error("auto-scroll should be engaged by default")
	}
	if !cv.AtBottom() {
		t.Error("viewport should follow output to the bottom")
	}
}

func TestViewportScrollUpDisengagesAutoScroll(t *testing.T) {
	cv := NewChatViewport(styles.NewTheme())
	cv.SetSize(80, 10)
	cv.SetContent(longContent(50), true)

	cv.ScrollUp(5)
	if cv.AutoScroll() {
		t.Error("scrolling up should disengage auto-scroll")
	}

	// New content must not yank the view down.
	cv.SetContent(longContent(60), true)
	if cv.AtBottom() {
		t.Error("view should stay put while reading history")
	}
}

func TestViewportSmallScrollUpKeepsAutoScroll(t *testing.T) {
	cv := NewChatViewport(styles.NewTheme())
	cv.SetSize(80, 10)
	cv.SetContent(longContent(50), true)

	// A one-line nudge is within the slack and must keep following output.
	cv.ScrollUp(1)
	if !cv.AutoScroll() {
		t.Error("a small scroll-up should not disengage auto-scroll")
	}

	cv.SetContent(longContent(60), true)
	if !cv.AtBottom() {
		t.Error("view should snap back to the bottom while auto-scroll holds")
	}

	// Scrolling past the slack hands control to the user.
	cv.ScrollUp(scrollSlack + 1)
	if cv.AutoScroll() {
		t.Error("scrolling past the slack should disengage auto-scroll")
	}
}

func TestViewportScrollToBottomReengages(t *testing.T) {
	cv := NewChatViewport(styles.NewTheme())
	cv.SetSize(80, 10)
	cv.SetContent(longContent(50), true)

	cv.ScrollUp(10)
	cv.NoteNewMessage()
	cv.NoteNewMessage()
	if cv.PendingMessages() != 2 {
		t.Errorf("expected 2 pending messages, got %d", cv.PendingMessages())
	}

	cv.ScrollToBottom()
	if !cv.AutoScroll() {
		t.Error("scroll to bottom should re-engage auto-scroll")
	}
	if cv.PendingMessages() != 0 {
		t.Error("catch-up count should reset at bottom")
	}
}

func TestViewportNoteNewMessageIgnoredAtBottom(t *testing.T) {
	cv := NewChatViewport(styles.NewTheme())
	cv.SetSize(80, 10)
	cv.SetContent(longContent(50), true)

	cv.NoteNewMessage()
	if cv.PendingMessages() != 0 {
		t.Error("messages arriving at the bottom are already seen")
	}
}

func TestViewportCatchUpPillRendered(t *testing.T) {
	cv := NewChatViewport(styles.NewTheme())
	cv.SetSize(80, 10)
	cv.SetContent(longContent(50), true)

	cv.ScrollToTop()
	cv.NoteNewMessage()

	out := cv.View()
	if !strings.Contains(out, "1 new message") {
		t.Errorf("expected catch-up pill in view, got %q", out)
	}
}

func TestWrapContentForViewport(t *testing.T) {
	wrapped := wrapContentForViewport(strings.Repeat("x", 100), 20)
	for _, line := range strings.Split(wrapped, "\n") {
		if len(line) > 20 {
			t.Errorf("line %q exceeds width", line)
		}
	}

	// Wide characters count as two columns.
	wrapped = wrapContentForViewport(strings.Repeat("日", 30), 20)
	for _, line := range strings.Split(wrapped, "\n") {
		if len([]rune(line)) > 10 {
			t.Errorf("CJK line %q exceeds display width", line)
		}
	}
}
