// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides the visual UI components for the tickerchat TUI.
package components

import (
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/tickerchat/internal/gateway"
	"github.com/jeranaias/tickerchat/internal/ui/styles"
)

// =============================================================================
// ERROR DISPLAY MODEL
// =============================================================================

// ErrorDisplay is a styled error message component.
type ErrorDisplay struct {
	title       string
	message     string
	suggestions []string

	dismissible bool
	visible     bool
	createdAt   time.Time

	width int
}

// NewError creates an error display with title and message.
func NewError(title, message string) ErrorDisplay {
	return ErrorDisplay{
		title:       title,
		message:     message,
		dismissible: true,
		visible:     true,
		createdAt:   time.Now(),
	}
}

// NewErrorWithSuggestions creates an error with helpful suggestions.
func NewErrorWithSuggestions(title, message string, suggestions []string) ErrorDisplay {
	e := NewError(title, message)
	e.suggestions = suggestions
	return e
}

// NewStreamError classifies a gateway failure into a user-facing error
// with recovery suggestions.
func NewStreamError(err error) ErrorDisplay {
	switch {
	case gateway.IsRateLimited(err):
		return NewErrorWithSuggestions(
			"Slow Down",
			"The gateway rejected the request because of rate limiting.",
			[]string{
				"Wait a few seconds before asking again",
				"Long questions count the same as short ones",
			},
		)
	case gateway.IsQuotaExceeded(err):
		return NewErrorWithSuggestions(
			"Quota Exceeded",
			"Your usage allowance for this period is used up.",
			[]string{
				"Check your plan on the account page",
				"Quota resets at the start of the billing period",
			},
		)
	case gateway.IsTimeout(err):
		return NewErrorWithSuggestions(
			"Request Timed Out",
			"The gateway took too long to answer.",
			[]string{
				"Try again; the service may be under load",
				"Try a shorter or simpler question",
			},
		)
	case gateway.IsUnavailable(err):
		return NewErrorWithSuggestions(
			"Gateway Unreachable",
			"Could not connect to the chat gateway.",
			[]string{
				"Check your network connection",
				"Verify gateway.base_url in ~/.tickerchat/config.toml",
			},
		)
	default:
		return NewError("Request Failed", err.Error())
	}
}

// =============================================================================
// STATE
// =============================================================================

// SetWidth sets the display width.
func (e *ErrorDisplay) SetWidth(width int) {
	e.width = width
}

// IsVisible returns whether the error is visible.
func (e *ErrorDisplay) IsVisible() bool {
	return e.visible
}

// Dismiss hides the error.
func (e *ErrorDisplay) Dismiss() {
	e.visible = false
}

// Title returns the error title.
func (e *ErrorDisplay) Title() string {
	return e.title
}

// =============================================================================
// RENDERING
// =============================================================================

// View renders the error box.
func (e *ErrorDisplay) View(theme *styles.Theme) string {
	if !e.visible {
		return ""
	}

	var body strings.Builder
	body.WriteString(theme.ErrorTitle.Render(styles.StatusIndicators.Error + " " + e.title))
	body.WriteString("\n\n")
	body.WriteString(theme.ErrorMessage.Render(e.message))

	if len(e.suggestions) > 0 {
		body.WriteString("\n")
		for _, s := range e.suggestions {
			body.WriteString("\n")
			body.WriteString(theme.ErrorSuggestion.Render("  - " + s))
		}
	}

	if e.dismissible {
		body.WriteString("\n\n")
		body.WriteString(theme.ShortcutDesc.Render("press esc to dismiss"))
	}

	box := theme.ErrorBox
	if e.width > 0 {
		box = box.Width(minInt(e.width-4, 72))
	}
	return box.Render(body.String())
}

// =============================================================================
// INLINE ERROR
// =============================================================================

// InlineError renders a one-line error for the status area.
func InlineError(message string) string {
	return lipgloss.NewStyle().
		Foreground(styles.Rose).
		Bold(true).
		Render(styles.StatusIndicators.Error + " " + message)
}
