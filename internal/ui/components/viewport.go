// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides the visual UI components for the tickerchat TUI.
package components

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/jeranaias/tickerchat/internal/ui/styles"
)

// =============================================================================
// CHAT VIEWPORT COMPONENT - Scrollable chat area with indicators
// =============================================================================

// ChatViewport is a scrollable transcript area with auto-scroll tracking.
//
// While the user is reading history (scrolled up), new content does not
// yank the view to the bottom; instead a catch-up pill counts the turns
// that arrived. Scrolling back to the bottom re-engages auto-scroll and
// clears the pill.
type ChatViewport struct {
	viewport viewport.Model
	width    int
	height   int
	ready    bool
	theme    *styles.Theme

	autoScroll bool
	// pendingMessages counts turns that arrived while scrolled up.
	pendingMessages int

	scrollY    int
	maxScrollY int
}

// NewChatViewport creates a new ChatViewport.
func NewChatViewport(theme *styles.Theme) *ChatViewport {
	vp := viewport.New(80, 20)
	vp.Style = lipgloss.NewStyle()

	return &ChatViewport{
		viewport:   vp,
		width:      80,
		height:     20,
		autoScroll: true,
		theme:      theme,
	}
}

// SetSize updates the viewport dimensions.
func (cv *ChatViewport) SetSize(width, height int) {
	cv.width = width
	cv.height = height
	cv.viewport.Width = width
	cv.viewport.Height = height
	cv.ready = true
}

// SetContent replaces the rendered transcript. followOutput should be
// true when the update may carry new content the user has not seen.
func (cv *ChatViewport) SetContent(content string, followOutput bool) {
	wrapped := wrapContentForViewport(content, cv.width-2)
	cv.viewport.SetContent(wrapped)

	lines := strings.Count(wrapped, "\n") + 1
	cv.maxScrollY = maxInt0(0, lines-cv.height)
	cv.scrollY = cv.viewport.YOffset
	if cv.scrollY > cv.maxScrollY {
		cv.scrollY = cv.maxScrollY
	}

	if followOutput && cv.autoScroll {
		cv.ScrollToBottom()
	}
}

// NoteNewMessage records a turn arriving while the user reads history.
// No-op when auto-scroll is engaged.
func (cv *ChatViewport) NoteNewMessage() {
	if !cv.autoScroll {
		cv.pendingMessages++
	}
}

// PendingMessages returns the catch-up count.
func (cv *ChatViewport) PendingMessages() int {
	return cv.pendingMessages
}

// AutoScroll reports whether the view follows new output.
func (cv *ChatViewport) AutoScroll() bool {
	return cv.autoScroll
}

// ScrollToBottom scrolls to the bottom and re-engages auto-scroll.
func (cv *ChatViewport) ScrollToBottom() {
	cv.viewport.GotoBottom()
	cv.scrollY = cv.maxScrollY
	cv.autoScroll = true
	cv.pendingMessages = 0
}

// ScrollToTop scrolls to the top. The user took control, so auto-scroll
// disengages.
func (cv *ChatViewport) ScrollToTop() {
	cv.viewport.GotoTop()
	cv.scrollY = 0
	cv.autoScroll = false
}

// scrollSlack is how far above the bottom the view may sit while still
// counted as following output. A nudge of a line or two should not stop
// the transcript from tracking a live stream.
const scrollSlack = 2

// ScrollUp scrolls up by the specified number of lines. Auto-scroll stays
// engaged while the offset from the bottom is within scrollSlack.
func (cv *ChatViewport) ScrollUp(lines int) {
	cv.scrollY = maxInt0(0, cv.scrollY-lines)
	cv.viewport.SetYOffset(cv.scrollY)

	if cv.maxScrollY-cv.scrollY > scrollSlack {
		cv.autoScroll = false
	}
}

// ScrollDown scrolls down by the specified number of lines. Reaching the
// bottom re-engages auto-scroll.
func (cv *ChatViewport) ScrollDown(lines int) {
	cv.scrollY = minInt(cv.maxScrollY, cv.scrollY+lines)
	cv.viewport.SetYOffset(cv.scrollY)

	if cv.scrollY >= cv.maxScrollY {
		cv.autoScroll = true
		cv.pendingMessages = 0
	}
}

// PageUp scrolls up by one page.
func (cv *ChatViewport) PageUp() {
	cv.ScrollUp(cv.height)
}

// PageDown scrolls down by one page.
func (cv *ChatViewport) PageDown() {
	cv.ScrollDown(cv.height)
}

// AtTop returns true if the viewport is at the top.
func (cv *ChatViewport) AtTop() bool {
	return cv.viewport.AtTop()
}

// AtBottom returns true if the viewport is at the bottom.
func (cv *ChatViewport) AtBottom() bool {
	return cv.viewport.AtBottom()
}

// Update handles key and mouse scrolling.
func (cv *ChatViewport) Update(msg tea.Msg) (*ChatViewport, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "pgup":
			cv.PageUp()
			return cv, nil
		case "pgdn", "pgdown":
			cv.PageDown()
			return cv, nil
		case "home":
			cv.ScrollToTop()
			return cv, nil
		case "end":
			cv.ScrollToBottom()
			return cv, nil
		}

	case tea.MouseMsg:
		switch msg.Type {
		case tea.MouseWheelUp:
			cv.ScrollUp(3)
			return cv, nil
		case tea.MouseWheelDown:
			cv.ScrollDown(3)
			return cv, nil
		}
	}

	cv.viewport, cmd = cv.viewport.Update(msg)
	cv.scrollY = cv.viewport.YOffset
	return cv, cmd
}

// View renders the viewport with scroll indicators.
func (cv *ChatViewport) View() string {
	if !cv.ready {
		return ""
	}

	var result strings.Builder

	if top := cv.renderTopIndicator(); top != "" {
		result.WriteString(top)
		result.WriteString("\n")
	}

	result.WriteString(cv.viewport.View())

	if bottom := cv.renderBottomIndicator(); bottom != "" {
		result.WriteString("\n")
		result.WriteString(bottom)
	}

	return result.String()
}

// ==========================================================================
// SCROLL INDICATORS
// ==========================================================================

// renderTopIndicator renders the "more above" indicator.
func (cv *ChatViewport) renderTopIndicator() string {
	if cv.AtTop() {
		return ""
	}

	line := lipgloss.NewStyle().Foreground(styles.Cyan).Render("^") + " " +
		cv.theme.ScrollIndicator.Italic(true).Render("scroll up for more") + " " +
		lipgloss.NewStyle().Foreground(styles.Cyan).Render("^")

	return lipgloss.NewStyle().
		Width(cv.width).
		Align(lipgloss.Center).
		Render(line)
}

// renderBottomIndicator renders the catch-up pill or the "more below"
// indicator.
func (cv *ChatViewport) renderBottomIndicator() string {
	if cv.AtBottom() {
		return ""
	}

	var line string
	if cv.pendingMessages > 0 {
		label := strconv.Itoa(cv.pendingMessages) + " new message"
		if cv.pendingMessages > 1 {
			label += "s"
		}
		line = cv.theme.NewMessagesPill.Render("v "+label+" - End to catch up")
	} else {
		line = lipgloss.NewStyle().Foreground(styles.Cyan).Render("v") + " " +
			cv.theme.ScrollIndicator.Italic(true).Render("scroll down for more") + " " +
			lipgloss.NewStyle().Foreground(styles.Cyan).Render("v")
	}

	return lipgloss.NewStyle().
		Width(cv.width).
		Align(lipgloss.Center).
		Render(line)
}

// =============================================================================
// CONTENT WRAPPING WITH RUNEWIDTH SUPPORT
// =============================================================================

// wrapContentForViewport wraps content to fit within the specified width,
// using go-runewidth so wide (CJK) characters count as two columns.
func wrapContentForViewport(content string, width int) string {
	if width <= 0 {
		return content
	}

	var wrapped strings.Builder
	for _, line := range strings.Split(content, "\n") {
		if wrapped.Len() > 0 {
			wrapped.WriteByte('\n')
		}
		if runewidth.StringWidth(line) <= width {
			wrapped.WriteString(line)
			continue
		}
		wrapped.WriteString(hardWrap(line, width))
	}

	return wrapped.String()
}

// hardWrap breaks a single overlong line at display-width boundaries.
func hardWrap(line string, width int) string {
	var result strings.Builder
	var current strings.Builder
	currentWidth := 0

	for _, r := range line {
		w := runewidth.RuneWidth(r)
		if currentWidth+w > width {
			if result.Len() > 0 {
				result.WriteByte('\n')
			}
			result.WriteString(current.String())
			current.Reset()
			currentWidth = 0
		}
		current.WriteRune(r)
		currentWidth += w
	}

	if current.Len() > 0 {
		if result.Len() > 0 {
			result.WriteByte('\n')
		}
		result.WriteString(current.String())
	}

	return result.String()
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// maxInt0 returns the maximum of two integers.
func maxInt0(a, b int) int {
	if a > b {
		return a
	}
	return b
}
