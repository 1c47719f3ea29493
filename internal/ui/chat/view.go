// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the chat view component for the TUI.
package chat

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/tickerchat/internal/session"
	"github.com/jeranaias/tickerchat/internal/util"
)

// =============================================================================
// VIEW
// =============================================================================

// View renders the full chat screen.
func (m Model) View() string {
	if m.width == 0 {
		return "starting..."
	}

	var sections []string
	sections = append(sections, m.renderHeader())
	sections = append(sections, m.viewport.View())

	if m.store.Phase() == session.PhaseLoading {
		sections = append(sections, m.renderThinking())
	}

	if m.errDisplay.IsVisible() {
		sections = append(sections, m.errDisplay.View(m.theme))
	}

	if m.prompt != promptNone {
		sections = append(sections, m.theme.InputContainer.Render(m.promptInput.View()))
	} else {
		sections = append(sections, m.composer.View())
	}

	sections = append(sections, m.renderStatusBar())

	return m.theme.App.Render(strings.Join(sections, "\n"))
}

// renderHeader shows the brand, the open ticker, and the active model.
func (m Model) renderHeader() string {
	brand := m.theme.HeaderBrand.Render("tickerchat")

	ticker := "no ticker"
	if m.store.IsOpen() {
		ticker = m.store.Ticker()
	}
	tickerPart := m.theme.HeaderTicker.Render(util.TruncateWidth(ticker, 12))

	var modelPart string
	if mi, ok := m.selectedModel(); ok {
		label := mi.ID
		if mi.UXHint != "" {
			label = fmt.Sprintf("%s (%s)", mi.ID, mi.UXHint)
		}
		// Long model IDs must not push the badge off a narrow terminal.
		modelPart = m.theme.ModelBadge.Render(util.TruncateWidth(label, m.width/3))
	}

	left := lipgloss.JoinHorizontal(lipgloss.Center, brand, "  ", tickerPart)
	if modelPart == "" {
		return m.theme.Header.Width(m.width).Render(left)
	}

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(modelPart) - 2
	if gap < 1 {
		gap = 1
	}
	return m.theme.Header.Width(m.width).Render(
		left + strings.Repeat(" ", gap) + modelPart,
	)
}

// renderThinking is the waiting row shown between send and first token.
func (m Model) renderThinking() string {
	return lipgloss.JoinHorizontal(
		lipgloss.Center,
		m.spinner.View(),
		" ",
		m.theme.ThinkingText.Render("AI is thinking..."),
	)
}

// renderStatusBar shows key hints and stream state.
func (m Model) renderStatusBar() string {
	var hints []string
	for _, b := range m.keyMap.ShortHelp() {
		hints = append(hints,
			m.theme.ShortcutKey.Render(b.Help().Key)+
				" "+
				m.theme.ShortcutDesc.Render(b.Help().Desc))
	}
	left := strings.Join(hints, "  ")

	var right string
	switch m.store.Phase() {
	case session.PhaseLoading:
		right = "waiting"
	case session.PhaseStreaming:
		right = "streaming"
	default:
		if m.gatewayKnown && !m.gatewayUp {
			right = "gateway offline"
		}
	}

	if right != "" {
		gap := m.width - lipgloss.Width(left) - lipgloss.Width(right) - 2
		if gap < 1 {
			gap = 1
		}
		left += strings.Repeat(" ", gap) + right
	}

	return m.theme.StatusBar.Width(m.width).Render(left)
}
