// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the chat view component for the TUI.
package chat

import (
	"errors"
	"fmt"

	"github.com/jeranaias/tickerchat/internal/session"
	"github.com/jeranaias/tickerchat/internal/ui/components"
)

// =============================================================================
// ERROR DISPLAY HELPERS
// =============================================================================

// newStreamErrorDisplay builds the error box for a failed stream.
func newStreamErrorDisplay(err error) components.ErrorDisplay {
	return components.NewStreamError(err)
}

// newSessionError maps session store errors to user-facing messages.
func newSessionError(err error) components.ErrorDisplay {
	switch {
	case errors.Is(err, session.ErrNotOpen):
		return components.NewErrorWithSuggestions(
			"No Ticker Open",
			"Open a ticker before sending a message.",
			[]string{"Press ctrl+t and enter a symbol like AAPL"},
		)
	case errors.Is(err, session.ErrBadTicker):
		return components.NewErrorWithSuggestions(
			"Invalid Ticker",
			"That does not look like a ticker symbol.",
			[]string{"Use letters, digits, dots, or dashes, e.g. BRK.B"},
		)
	case errors.Is(err, session.ErrEmptyMessage):
		return components.NewError("Empty Message", "Type something first.")
	default:
		return components.NewError("Session Error", err.Error())
	}
}

// newGatewayDownError is shown when the startup health check fails.
func newGatewayDownError() components.ErrorDisplay {
	return components.NewErrorWithSuggestions(
		"Gateway Unreachable",
		"Could not reach the analysis gateway.",
		[]string{
			"Check that the gateway is running",
			"Verify gateway.base_url in the config file",
		},
	)
}

// deepAnalysisPrompt is the canned prompt sent for a deep analysis run.
func deepAnalysisPrompt(ticker string) string {
	return fmt.Sprintf(
		"Provide a deep analysis of %s covering technical indicators, recent news, and overall outlook.",
		ticker,
	)
}
