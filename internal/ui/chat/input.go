// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the chat view component for the TUI.
package chat

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/tickerchat/internal/ui/styles"
)

// =============================================================================
// COMPOSER
// =============================================================================

// Composer is the multi-line message input.
type Composer struct {
	textarea textarea.Model
	theme    *styles.Theme
	width    int
}

// NewComposer creates a focused composer.
func NewComposer(theme *styles.Theme) *Composer {
	ta := textarea.New()
	ta.Placeholder = "Ask about this ticker..."
	ta.Prompt = "> "
	ta.SetHeight(3)
	ta.CharLimit = 4000
	ta.ShowLineNumbers = false
	ta.Focus()

	return &Composer{
		textarea: ta,
		theme:    theme,
	}
}

// SetWidth resizes the textarea.
func (c *Composer) SetWidth(width int) {
	c.width = width
	c.textarea.SetWidth(width - 2)
}

// SetPlaceholder updates the hint text for the current ticker.
func (c *Composer) SetPlaceholder(ticker string) {
	if ticker == "" {
		c.textarea.Placeholder = "Ask about this ticker..."
		return
	}
	c.textarea.Placeholder = fmt.Sprintf("Ask about %s...", ticker)
}

// Focus gives the textarea keyboard focus.
func (c *Composer) Focus() tea.Cmd {
	return c.textarea.Focus()
}

// Blur removes keyboard focus.
func (c *Composer) Blur() {
	c.textarea.Blur()
}

// Focused reports whether the textarea has focus.
func (c *Composer) Focused() bool {
	return c.textarea.Focused()
}

// Value returns the trimmed text the user typed.
func (c *Composer) Value() string {
	return strings.TrimSpace(c.textarea.Value())
}

// Reset clears the typed text.
func (c *Composer) Reset() {
	c.textarea.Reset()
}

// InsertNewline adds a line break at the cursor.
func (c *Composer) InsertNewline() {
	c.textarea.InsertString("\n")
}

// Update forwards messages to the textarea.
func (c *Composer) Update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	c.textarea, cmd = c.textarea.Update(msg)
	return cmd
}

// View renders the composer.
func (c *Composer) View() string {
	return c.theme.InputContainer.Render(c.textarea.View())
}
