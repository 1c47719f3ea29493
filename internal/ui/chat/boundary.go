// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the chat view component for the TUI.
//
// This file implements the crash boundary around the chat model. A panic
// inside Update or View is caught, logged with its stack, and replaced by
// a recovery screen instead of tearing down the terminal. The user can
// remount a fresh chat view or quit.
package chat

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/jeranaias/tickerchat/internal/config"
	"github.com/jeranaias/tickerchat/internal/logging"
	"github.com/jeranaias/tickerchat/internal/ui/styles"
)

// =============================================================================
// CRASH BOUNDARY
// =============================================================================

// crashState is shared between the boundary's value copies so that a panic
// caught in View, which cannot return a new model, is still visible to the
// next Update.
type crashState struct {
	crashed bool
	detail  string
	reload  bool
}

// Boundary wraps the chat model and absorbs panics from its Update and
// View paths. On crash it renders a recovery screen offering remount or
// quit. Remount builds a fresh inner model from the factory, dropping all
// view state but keeping the process alive.
type Boundary struct {
	inner   tea.Model
	factory func() tea.Model
	state   *crashState
	theme   *styles.Theme
	width   int
	height  int
}

// NewBoundary wraps the model produced by factory.
func NewBoundary(factory func() tea.Model) Boundary {
	return Boundary{
		inner:   factory(),
		factory: factory,
		state:   &crashState{},
		theme:   styles.NewTheme(),
	}
}

// Init initializes the wrapped model.
func (b Boundary) Init() tea.Cmd {
	defer b.recover("init")
	return b.inner.Init()
}

// Update delegates to the wrapped model unless it has crashed, in which
// case only the recovery keys are handled.
func (b Boundary) Update(msg tea.Msg) (model tea.Model, cmd tea.Cmd) {
	if ws, ok := msg.(tea.WindowSizeMsg); ok {
		b.width = ws.Width
		b.height = ws.Height
	}

	if b.state.crashed {
		return b.updateCrashed(msg)
	}

	defer func() {
		if r := recover(); r != nil {
			b.capture("update", r)
			model = b
			cmd = nil
		}
	}()

	inner, cmd := b.inner.Update(msg)
	b.inner = inner
	return b, cmd
}

// View renders the wrapped model, or the recovery screen after a crash.
func (b Boundary) View() (out string) {
	if b.state.crashed {
		return b.renderCrash()
	}

	defer func() {
		if r := recover(); r != nil {
			b.capture("view", r)
			out = b.renderCrash()
		}
	}()

	return b.inner.View()
}

func (b Boundary) updateCrashed(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return b, nil
	}

	switch keyMsg.String() {
	case "r":
		b.inner = b.factory()
		b.state.crashed = false
		b.state.detail = ""
		cmds := []tea.Cmd{b.inner.Init()}
		if b.width > 0 {
			// Replay the last known size so the fresh model lays out
			// without waiting for a resize.
			inner, cmd := b.inner.Update(tea.WindowSizeMsg{Width: b.width, Height: b.height})
			b.inner = inner
			cmds = append(cmds, cmd)
		}
		return b, tea.Batch(cmds...)

	case "R":
		// Full restart. The program exits and main builds everything anew.
		b.state.reload = true
		return b, tea.Quit

	case "q", "ctrl+c", "esc":
		return b, tea.Quit
	}

	return b, nil
}

// ReloadRequested reports whether the user asked for a full restart from
// the crash screen. Checked by main after the program exits.
func (b Boundary) ReloadRequested() bool {
	return b.state.reload
}

func (b Boundary) capture(where string, r any) {
	b.state.crashed = true
	b.state.detail = fmt.Sprintf("%v", r)
	logging.L().Error("chat view panicked",
		zap.String("where", where),
		zap.Any("panic", r),
		zap.Stack("stack"))
}

func (b Boundary) renderCrash() string {
	var sb strings.Builder
	sb.WriteString(b.theme.ErrorTitle.Render("Something went wrong"))
	sb.WriteString("\n\n")
	sb.WriteString(b.theme.ErrorMessage.Render("The chat view hit an internal error and was stopped."))
	if b.state.detail != "" && config.Global().Log.Debug {
		sb.WriteString("\n")
		sb.WriteString(b.theme.ErrorMessage.Render(b.state.detail))
	}
	sb.WriteString("\n\n")
	sb.WriteString(b.theme.ErrorSuggestion.Render("r to reload the chat, R to restart, q to quit"))
	return b.theme.ErrorBox.Render(sb.String())
}

// recover is the guard for paths that cannot return a model, such as Init.
func (b Boundary) recover(where string) {
	if r := recover(); r != nil {
		b.capture(where, r)
	}
}
