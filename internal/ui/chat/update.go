// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the chat view component for the TUI.
package chat

import (
	"errors"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/jeranaias/tickerchat/internal/config"
	"github.com/jeranaias/tickerchat/internal/gateway"
	"github.com/jeranaias/tickerchat/internal/logging"
	"github.com/jeranaias/tickerchat/internal/session"
)

// =============================================================================
// UPDATE
// =============================================================================

// Update handles all incoming messages for the chat view.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleResize(msg), nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd

	case StreamStartMsg:
		return m, m.spinnerTickCmd()

	case StreamTokenMsg:
		return m.handleStreamToken(msg)

	case StreamCompleteMsg:
		return m.handleStreamComplete(msg)

	case StreamErrorMsg:
		return m.handleStreamError(msg)

	case TypewriterTickMsg:
		cmd := m.typewriter.Tick(msg)
		m.refreshTranscript()
		return m, cmd

	case spinner.TickMsg:
		if m.store.Phase() != session.PhaseLoading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case ModelsLoadedMsg:
		return m.handleModelsLoaded(msg)

	case ModelSelectedMsg:
		logging.L().Debug("model selection saved", zap.String("model", msg.ModelID))
		return m, nil

	case GatewayStatusMsg:
		m.gatewayKnown = true
		m.gatewayUp = msg.Reachable
		if !msg.Reachable {
			m.errDisplay = newGatewayDownError()
			m.errDisplay.SetWidth(m.width)
		}
		return m, nil

	case OpenTickerMsg:
		return m.openTicker(msg.Ticker)

	case ClearConversationMsg:
		return m.clearConversation()

	case ErrorDismissMsg:
		m.errDisplay.Dismiss()
		return m, nil
	}

	return m, nil
}

// =============================================================================
// RESIZE
// =============================================================================

func (m Model) handleResize(msg tea.WindowSizeMsg) Model {
	m.width = msg.Width
	m.height = msg.Height
	m.theme.SetSize(msg.Width, msg.Height)
	m.composer.SetWidth(msg.Width)
	m.errDisplay.SetWidth(msg.Width)
	m.messageList.SetWidth(msg.Width - 2)
	m.viewport.SetSize(msg.Width, m.transcriptHeight())
	m.refreshTranscript()
	return m
}

// =============================================================================
// KEY HANDLING
// =============================================================================

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keyMap.Quit) {
		return m, tea.Quit
	}

	// An open prompt overlay captures all keys.
	if m.prompt != promptNone {
		return m.handlePromptKey(msg)
	}

	// Escape dismisses a visible error before it closes the chat.
	if key.Matches(msg, m.keyMap.Close) {
		if m.errDisplay.IsVisible() {
			m.errDisplay.Dismiss()
			m.store.ClearError()
			return m, nil
		}
		m.store.Close()
		return m, tea.Quit
	}

	switch {
	case key.Matches(msg, m.keyMap.Submit):
		return m.submit()

	case key.Matches(msg, m.keyMap.Newline):
		m.composer.InsertNewline()
		return m, nil

	case key.Matches(msg, m.keyMap.QuickOpen):
		return m.openTicker(config.Global().Chat.DefaultTicker)

	case key.Matches(msg, m.keyMap.OpenTicker):
		return m.openPrompt(promptTicker)

	case key.Matches(msg, m.keyMap.DeepAnalysis):
		return m.startDeepAnalysis()

	case key.Matches(msg, m.keyMap.ClearChat):
		return m.clearConversation()

	case key.Matches(msg, m.keyMap.CycleModel):
		return m.cycleModel()

	case key.Matches(msg, m.keyMap.WebSearch):
		// Alternate submit: same draft, tagged for web search.
		if text := m.composer.Value(); text != "" {
			return m.sendMessage("[search] " + text)
		}
		return m, nil

	case key.Matches(msg, m.keyMap.FileRef):
		return m.openPrompt(promptFile)

	case key.Matches(msg, m.keyMap.PageUp):
		m.viewport.PageUp()
		return m, nil

	case key.Matches(msg, m.keyMap.PageDown):
		m.viewport.PageDown()
		return m, nil

	case key.Matches(msg, m.keyMap.GoToTop):
		m.viewport.ScrollToTop()
		return m, nil

	case key.Matches(msg, m.keyMap.GoToBottom):
		m.viewport.ScrollToBottom()
		return m, nil
	}

	return m, m.composer.Update(msg)
}

func (m Model) openPrompt(kind promptKind) (tea.Model, tea.Cmd) {
	m.prompt = kind
	m.promptInput.Reset()
	switch kind {
	case promptTicker:
		m.promptInput.Prompt = "open: "
		m.promptInput.Placeholder = "ticker symbol"
	case promptFile:
		m.promptInput.Prompt = "file: "
		m.promptInput.Placeholder = "path to reference"
	}
	return m, m.promptInput.Focus()
}

func (m Model) handlePromptKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		kind := m.prompt
		value := strings.TrimSpace(m.promptInput.Value())
		m.prompt = promptNone
		m.promptInput.Blur()
		if value == "" {
			return m, nil
		}
		switch kind {
		case promptTicker:
			return m.openTicker(value)
		case promptFile:
			// Only the basename travels; there is no upload.
			return m.sendMessage("[file] " + filepath.Base(value))
		}
		return m, nil

	case tea.KeyEsc:
		m.prompt = promptNone
		m.promptInput.Blur()
		return m, nil
	}

	var cmd tea.Cmd
	m.promptInput, cmd = m.promptInput.Update(msg)
	return m, cmd
}

// =============================================================================
// SESSION ACTIONS
// =============================================================================

func (m Model) submit() (tea.Model, tea.Cmd) {
	return m.sendMessage(m.composer.Value())
}

// sendMessage runs the full send path for an outbound message: model tag,
// session intent, transcript refresh, and stream dispatch.
func (m Model) sendMessage(text string) (tea.Model, tea.Cmd) {
	if text == "" {
		return m, nil
	}
	text = m.outboundText(text)

	gen, sent, err := m.store.BeginSend(text)
	if err != nil {
		if errors.Is(err, session.ErrBusy) {
			// A response is already in flight. Keep the draft.
			return m, nil
		}
		m.errDisplay = newSessionError(err)
		m.errDisplay.SetWidth(m.width)
		return m, nil
	}
	logging.L().Debug("message sent",
		zap.Uint64("gen", gen),
		zap.String("preview", sent.Preview(60)))

	m.composer.Reset()
	m.typewriter.Reset()
	m.viewport.NoteNewMessage()
	m.refreshTranscript()

	qt := gateway.ClassifyQuery(text)
	m.runner.RunChat(gen, gateway.ChatRequest{
		Message:          text,
		QueryType:        string(qt),
		PromptTemplateID: qt.TemplateID(),
		Ticker:           m.store.Ticker(),
		SessionID:        m.store.SessionID(),
		ModelID:          m.store.ModelID(),
	})
	return m, m.spinnerTickCmd()
}

func (m Model) startDeepAnalysis() (tea.Model, tea.Cmd) {
	gen, err := m.store.BeginDeepAnalysis()
	if err != nil {
		if errors.Is(err, session.ErrBusy) {
			return m, nil
		}
		m.errDisplay = newSessionError(err)
		m.errDisplay.SetWidth(m.width)
		return m, nil
	}

	m.typewriter.Reset()
	m.refreshTranscript()
	m.runner.RunDeep(gen, m.store.Ticker(), gateway.DeepAnalysisRequest{
		Prompt:    deepAnalysisPrompt(m.store.Ticker()),
		SessionID: m.store.SessionID(),
		ModelID:   m.store.ModelID(),
	})
	return m, m.spinnerTickCmd()
}

func (m Model) openTicker(ticker string) (tea.Model, tea.Cmd) {
	cleared, err := m.store.Open(ticker)
	if err != nil {
		m.errDisplay = newSessionError(err)
		m.errDisplay.SetWidth(m.width)
		return m, nil
	}
	if cleared {
		m.typewriter.Reset()
	}
	m.composer.SetPlaceholder(m.store.Ticker())
	m.refreshTranscript()
	return m, m.composer.Focus()
}

func (m Model) clearConversation() (tea.Model, tea.Cmd) {
	m.store.Clear()
	m.typewriter.Reset()
	m.errDisplay.Dismiss()
	m.refreshTranscript()
	return m, nil
}

func (m Model) cycleModel() (tea.Model, tea.Cmd) {
	if len(m.models) == 0 {
		return m, nil
	}
	m.modelIndex = (m.modelIndex + 1) % len(m.models)
	id := m.models[m.modelIndex].ID
	m.store.SetModelID(id)
	return m, m.saveModelCmd(id)
}

// =============================================================================
// STREAM HANDLING
// =============================================================================

func (m Model) handleStreamToken(msg StreamTokenMsg) (tea.Model, tea.Cmd) {
	if !m.store.AppendDelta(msg.Gen, msg.Token) {
		return m, nil
	}

	wasIdle := !m.typewriter.Revealing()
	m.typewriter.SetTarget(m.streamingContent())

	var cmd tea.Cmd
	if !m.typewriter.Active() {
		cmd = m.typewriter.Start()
	} else if wasIdle {
		cmd = m.typewriter.Resume()
	}

	m.refreshTranscript()
	return m, cmd
}

func (m Model) handleStreamComplete(msg StreamCompleteMsg) (tea.Model, tea.Cmd) {
	final, ok := m.store.CompleteStream(msg.Gen)
	if !ok {
		return m, nil
	}
	m.typewriter.Finish()
	if final != nil {
		logging.L().Debug("stream complete",
			zap.Uint64("gen", msg.Gen),
			zap.Int("content_runes", final.ContentLen()))
		m.viewport.NoteNewMessage()
	}
	m.refreshTranscript()
	return m, nil
}

func (m Model) handleStreamError(msg StreamErrorMsg) (tea.Model, tea.Cmd) {
	if !m.store.FailStream(msg.Gen, msg.Error) {
		return m, nil
	}
	m.typewriter.Finish()
	m.errDisplay = newStreamErrorDisplay(msg.Error)
	m.errDisplay.SetWidth(m.width)
	m.refreshTranscript()
	return m, nil
}

// =============================================================================
// MODEL CATALOG
// =============================================================================

func (m Model) handleModelsLoaded(msg ModelsLoadedMsg) (tea.Model, tea.Cmd) {
	if msg.Error != nil {
		logging.L().Warn("model catalog load failed", zap.Error(msg.Error))
		return m, nil
	}
	m.models = msg.Models
	if len(m.models) == 0 {
		return m, nil
	}

	// Align the cursor with any previously selected model.
	if current := m.store.ModelID(); current != "" {
		for i, mi := range m.models {
			if mi.ID == current {
				m.modelIndex = i
				return m, nil
			}
		}
	}

	// Nothing selected yet. Adopt the catalog's first entry and persist
	// the choice exactly once.
	m.modelIndex = 0
	id := m.models[0].ID
	m.store.SetModelID(id)
	return m, m.saveModelCmd(id)
}
