// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the chat view component for the TUI.
//
// This file implements the stream runner, the bridge between the gateway's
// blocking stream API and the Bubble Tea event loop. Each request runs in
// its own goroutine and delivers generation-tagged messages through
// Program.Send, so the Update loop stays single-threaded.
package chat

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/jeranaias/tickerchat/internal/gateway"
	"github.com/jeranaias/tickerchat/internal/logging"
)

// =============================================================================
// STREAM RUNNER
// =============================================================================

// Sender delivers messages into a running Bubble Tea program.
// *tea.Program satisfies this interface.
type Sender interface {
	Send(tea.Msg)
}

// StreamRunner dispatches gateway streams in the background.
//
// The sender is attached after the Bubble Tea program is constructed, which
// happens after the model that holds this runner. Runs requested before a
// sender is attached are dropped, which only occurs during startup before
// the event loop exists.
type StreamRunner struct {
	client *gateway.Client
	sender Sender
}

// NewStreamRunner creates a runner for the given gateway client.
func NewStreamRunner(client *gateway.Client) *StreamRunner {
	return &StreamRunner{client: client}
}

// AttachSender wires the running program into the runner.
func (r *StreamRunner) AttachSender(s Sender) {
	r.sender = s
}

// RunChat streams a chat request in the background. Every delivered message
// carries gen so the session store can drop output from abandoned streams.
func (r *StreamRunner) RunChat(gen uint64, req gateway.ChatRequest) {
	if r.sender == nil {
		return
	}
	go func() {
		defer logging.Duration("chat_stream")()
		r.sender.Send(NewStreamStartMsg(gen))
		err := r.client.ChatStream(context.Background(), req, r.callback(gen))
		if err != nil {
			logging.L().Warn("chat stream failed",
				zap.String("ticker", req.Ticker),
				zap.Error(err))
			r.sender.Send(StreamErrorMsg{Gen: gen, Error: err})
		}
	}()
}

// RunDeep streams a deep analysis request in the background.
func (r *StreamRunner) RunDeep(gen uint64, ticker string, req gateway.DeepAnalysisRequest) {
	if r.sender == nil {
		return
	}
	go func() {
		defer logging.Duration("deep_analysis_stream")()
		r.sender.Send(NewStreamStartMsg(gen))
		err := r.client.DeepAnalysisStream(context.Background(), ticker, req, r.callback(gen))
		if err != nil {
			logging.L().Warn("deep analysis stream failed",
				zap.String("ticker", ticker),
				zap.Error(err))
			r.sender.Send(StreamErrorMsg{Gen: gen, Error: err})
		}
	}()
}

func (r *StreamRunner) callback(gen uint64) gateway.StreamCallback {
	return func(chunk gateway.StreamChunk) {
		switch {
		case chunk.Error != nil:
			r.sender.Send(StreamErrorMsg{Gen: gen, Error: chunk.Error})
		case chunk.Done:
			r.sender.Send(StreamCompleteMsg{Gen: gen})
		case chunk.Token != "":
			r.sender.Send(StreamTokenMsg{Gen: gen, Token: chunk.Token})
		}
	}
}
