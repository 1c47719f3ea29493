// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package gateway provides the HTTP client for the chat gateway API.
package gateway

// =============================================================================
// REQUEST TYPES
// =============================================================================

// ChatRequest is the payload for a streaming chat turn.
type ChatRequest struct {
	Message          string `json:"message"`
	QueryType        string `json:"query_type"`
	PromptTemplateID string `json:"prompt_template_id"`
	Ticker           string `json:"ticker"`
	SessionID        string `json:"session_id"`
	ModelID          string `json:"model_id,omitempty"`
}

// DeepAnalysisRequest is the payload for a deep analysis turn.
type DeepAnalysisRequest struct {
	Prompt    string `json:"prompt"`
	SessionID string `json:"session_id"`
	ModelID   string `json:"model_id,omitempty"`
}

// SaveModelRequest persists the user's model selection server-side.
type SaveModelRequest struct {
	SessionID string `json:"session_id"`
	Model     string `json:"model"`
}

// =============================================================================
// RESPONSE TYPES
// =============================================================================

// ModelInfo describes one model offered by the gateway.
type ModelInfo struct {
	ID       string  `json:"id"`
	Ctx      int     `json:"ctx"`
	PriceIn  float64 `json:"price_in"`
	PriceOut float64 `json:"price_out"`
	Strength string  `json:"strength"`
	UXHint   string  `json:"ux_hint"`
	Notes    string  `json:"notes"`
}

// gatewayError is the error body some endpoints return.
type gatewayError struct {
	Detail string `json:"detail"`
	Error  string `json:"error"`
}

// message returns whichever error field the gateway populated.
func (e gatewayError) message() string {
	if e.Detail != "" {
		return e.Detail
	}
	return e.Error
}

// =============================================================================
// STREAM WIRE TYPES
// =============================================================================

// streamEvent is the JSON payload carried in one stream frame.
type streamEvent struct {
	Type  string `json:"type"`
	Token string `json:"token"`
}

// StreamChunk is one decoded unit of a response stream.
type StreamChunk struct {
	// Token is the text delta carried by this chunk.
	Token string
	// Done is true for the terminal chunk.
	Done bool
	// Error is set when the stream failed mid-flight.
	Error error
}
