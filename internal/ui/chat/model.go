// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the chat view component for the TUI.
package chat

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/tickerchat/internal/config"
	"github.com/jeranaias/tickerchat/internal/gateway"
	"github.com/jeranaias/tickerchat/internal/model"
	"github.com/jeranaias/tickerchat/internal/session"
	"github.com/jeranaias/tickerchat/internal/ui/components"
	"github.com/jeranaias/tickerchat/internal/ui/styles"
)

// =============================================================================
// CHAT MODEL
// =============================================================================

// promptKind selects what the one-line prompt overlay is asking for.
type promptKind int

const (
	promptNone   promptKind = iota
	promptTicker            // ctrl+t, asks for a ticker symbol
	promptFile              // ctrl+o, asks for a file path
)

// Model is the Bubble Tea model for the chat view.
type Model struct {
	// Styling
	theme *styles.Theme

	// Dimensions
	width  int
	height int

	// Session state and gateway access
	store  *session.Store
	client *gateway.Client
	runner *StreamRunner

	// UI components
	viewport    *components.ChatViewport
	messageList *components.MessageList
	composer    *Composer
	spinner     spinner.Model

	// Typewriter reveal for the streaming assistant message
	typewriter *Typewriter

	// Key bindings
	keyMap KeyMap

	// Model catalog
	models     []gateway.ModelInfo
	modelIndex int

	// Error state
	errDisplay components.ErrorDisplay

	// One-line prompt overlay for ticker switch and file reference
	prompt      promptKind
	promptInput textinput.Model

	// Gateway reachability
	gatewayUp    bool
	gatewayKnown bool
}

// New creates the chat model. The runner's sender must be attached once the
// Bubble Tea program exists.
func New(store *session.Store, client *gateway.Client, runner *StreamRunner) Model {
	theme := styles.NewTheme()
	cfg := config.Global()

	sp := spinner.New()
	sp.Spinner = spinner.Spinner{
		Frames: styles.DotSpinner.Frames,
		FPS:    styles.DotSpinner.FPS,
	}
	sp.Style = theme.Spinner

	ti := textinput.New()
	ti.CharLimit = 256

	interval := time.Duration(cfg.Chat.TypingIntervalMs) * time.Millisecond

	m := Model{
		theme:       theme,
		store:       store,
		client:      client,
		runner:      runner,
		viewport:    components.NewChatViewport(theme),
		messageList: components.NewMessageList(theme),
		composer:    NewComposer(theme),
		spinner:     sp,
		typewriter:  NewTypewriter(interval),
		keyMap:      DefaultKeyMap(),
		promptInput: ti,
	}
	m.messageList.ShowTimings = cfg.UI.ShowTimings
	m.composer.SetPlaceholder(store.Ticker())
	return m
}

// Init requests the model catalog and a gateway health check.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.loadModelsCmd(),
		m.checkGatewayCmd(),
		m.composer.Focus(),
	)
}

// =============================================================================
// COMMANDS
// =============================================================================

func (m Model) loadModelsCmd() tea.Cmd {
	client := m.client
	return func() tea.Msg {
		ctx, cancel := contextWithTimeout()
		defer cancel()
		models, err := client.ListModels(ctx)
		return ModelsLoadedMsg{Models: models, Error: err}
	}
}

func (m Model) checkGatewayCmd() tea.Cmd {
	client := m.client
	return func() tea.Msg {
		ctx, cancel := contextWithTimeout()
		defer cancel()
		err := client.CheckReachable(ctx)
		return GatewayStatusMsg{Reachable: err == nil, Error: err}
	}
}

func (m Model) saveModelCmd(modelID string) tea.Cmd {
	client := m.client
	sessionID := m.store.SessionID()
	return func() tea.Msg {
		ctx, cancel := contextWithTimeout()
		defer cancel()
		client.SaveModelSelection(ctx, sessionID, modelID)
		return ModelSelectedMsg{ModelID: modelID}
	}
}

func (m Model) spinnerTickCmd() tea.Cmd {
	return m.spinner.Tick
}

// contextWithTimeout bounds one-shot gateway calls made from commands.
// Streaming requests manage their own deadlines inside the client.
func contextWithTimeout() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 10*time.Second)
}

// =============================================================================
// TRANSCRIPT RENDERING
// =============================================================================

// streamingContent returns the accumulated content of the in-flight
// assistant message, or "" when nothing is streaming.
func (m *Model) streamingContent() string {
	msgs := m.store.Messages()
	if len(msgs) == 0 {
		return ""
	}
	last := msgs[len(msgs)-1]
	if last.Role != model.RoleAssistant || !last.IsStreaming {
		return ""
	}
	return last.GetDisplayContent()
}

// refreshTranscript re-renders the message list into the viewport.
// During streaming the last assistant bubble shows the typewriter's
// revealed prefix with a caret instead of the full content.
func (m *Model) refreshTranscript() {
	m.messageList.SetMessages(m.store.Messages())

	if m.store.Phase() == session.PhaseStreaming {
		revealed := m.typewriter.Revealed()
		m.messageList.RevealOverride = &revealed
		m.messageList.ShowCaret = true
	} else {
		m.messageList.RevealOverride = nil
		m.messageList.ShowCaret = false
	}

	m.viewport.SetContent(m.messageList.View(), true)
}

// selectedModel returns the model catalog entry currently in use.
func (m *Model) selectedModel() (gateway.ModelInfo, bool) {
	if len(m.models) == 0 || m.modelIndex >= len(m.models) {
		return gateway.ModelInfo{}, false
	}
	return m.models[m.modelIndex], true
}

// outboundText tags a message with the explicit model choice when the
// selection differs from the catalog default.
func (m *Model) outboundText(text string) string {
	if mi, ok := m.selectedModel(); ok && m.modelIndex != 0 {
		return fmt.Sprintf("[model:%s] %s", mi.ID, text)
	}
	return text
}

// transcriptHeight is the viewport height after the header, composer,
// and status bar take their rows.
func (m *Model) transcriptHeight() int {
	reserved := 2 // header
	reserved += lipgloss.Height(m.composer.View())
	reserved += 1 // status bar
	if m.errDisplay.IsVisible() {
		reserved += lipgloss.Height(m.errDisplay.View(m.theme))
	}
	h := m.height - reserved
	if h < 3 {
		h = 3
	}
	return h
}
