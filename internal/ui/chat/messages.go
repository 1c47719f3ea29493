// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the chat view component for the TUI.
//
// This file defines all Bubble Tea message types used by the chat interface.
// Messages are organized into the following categories:
//   - Streaming: Stream start, token delivery, completion, and errors
//   - Gateway: Model catalog loading and model switching
//   - Typewriter: Reveal animation ticks
//   - Session: Ticker open and conversation reset
//   - UI State: Error dismissal
//
// All message types follow Bubble Tea conventions and are immutable.
// Streaming messages carry the session generation they belong to so that
// late deliveries from an abandoned stream can be dropped.
package chat

import (
	"time"

	"github.com/jeranaias/tickerchat/internal/gateway"
)

// =============================================================================
// STREAMING MESSAGES
// =============================================================================

// StreamStartMsg signals that a gateway stream has been dispatched.
type StreamStartMsg struct {
	Gen       uint64
	StartTime time.Time
}

// StreamTokenMsg delivers a new token from the stream.
type StreamTokenMsg struct {
	Gen   uint64
	Token string
}

// StreamCompleteMsg signals that streaming finished cleanly.
type StreamCompleteMsg struct {
	Gen uint64
}

// StreamErrorMsg signals an error during streaming.
type StreamErrorMsg struct {
	Gen   uint64
	Error error
}

// NewStreamStartMsg creates a StreamStartMsg with the current timestamp.
func NewStreamStartMsg(gen uint64) StreamStartMsg {
	return StreamStartMsg{Gen: gen, StartTime: time.Now()}
}

// =============================================================================
// GATEWAY MESSAGES
// =============================================================================

// ModelsLoadedMsg delivers the gateway's model catalog.
type ModelsLoadedMsg struct {
	Models []gateway.ModelInfo
	Error  error
}

// ModelSelectedMsg confirms a model switch.
type ModelSelectedMsg struct {
	ModelID string
}

// GatewayStatusMsg reports gateway reachability.
type GatewayStatusMsg struct {
	Reachable bool
	Error     error
}

// =============================================================================
// TYPEWRITER MESSAGES
// =============================================================================

// TypewriterTickMsg advances the reveal animation by one step.
// Ticks from a superseded animation carry a stale sequence number
// and are ignored.
type TypewriterTickMsg struct {
	Seq  uint64
	Time time.Time
}

// =============================================================================
// SESSION MESSAGES
// =============================================================================

// OpenTickerMsg requests opening a chat session for a ticker symbol.
type OpenTickerMsg struct {
	Ticker string
}

// ClearConversationMsg wipes the transcript and abandons any stream.
type ClearConversationMsg struct{}

// =============================================================================
// UI STATE MESSAGES
// =============================================================================

// ErrorDismissMsg dismisses the current error display.
type ErrorDismissMsg struct{}
