// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the chat view component for the TUI.
//
// This file implements the typewriter reveal animation. Tokens arrive from
// the gateway faster than a human reads, so the transcript shows a growing
// prefix of the accumulated response, advanced one rune per tick. The full
// content is always stored on the session message; only the display lags.
package chat

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/tickerchat/internal/ui/styles"
)

// =============================================================================
// TYPEWRITER
// =============================================================================

// Typewriter animates the reveal of streamed assistant content.
//
// Each Start bumps a sequence number and ticks carry the sequence they were
// scheduled under, so ticks from a superseded animation are ignored instead
// of double-advancing the reveal. The reveal position is monotonic for a
// given target and never exceeds the target length.
type Typewriter struct {
	target   []rune
	revealed int
	seq      uint64
	active   bool
	interval time.Duration
}

// NewTypewriter creates a typewriter with the given per-rune interval.
// A non-positive interval falls back to the default reveal speed.
func NewTypewriter(interval time.Duration) *Typewriter {
	if interval <= 0 {
		interval = styles.DefaultTypingInterval
	}
	return &Typewriter{interval: interval}
}

// SetTarget replaces the content being revealed. The reveal position is
// preserved when the new target extends the old one, which is the normal
// case during streaming. A shorter target means the transcript was reset,
// so the position is clamped.
func (tw *Typewriter) SetTarget(content string) {
	tw.target = []rune(content)
	if tw.revealed > len(tw.target) {
		tw.revealed = len(tw.target)
	}
}

// Start begins a new reveal animation and returns its first tick command.
// Any previously scheduled ticks become stale.
func (tw *Typewriter) Start() tea.Cmd {
	tw.seq++
	tw.active = true
	return tw.tickCmd()
}

// Stop halts the animation without changing the reveal position.
func (tw *Typewriter) Stop() {
	tw.active = false
}

// Reset clears the target and reveal position for a fresh response.
func (tw *Typewriter) Reset() {
	tw.target = nil
	tw.revealed = 0
	tw.active = false
}

// Finish snaps the reveal to the full target. Used when a stream completes
// or fails so the final content is never left half-shown.
func (tw *Typewriter) Finish() {
	tw.revealed = len(tw.target)
	tw.active = false
}

// Tick advances the reveal by one rune and schedules the next tick.
// Returns nil for stale or inactive ticks, and stops scheduling once the
// whole target is revealed.
func (tw *Typewriter) Tick(msg TypewriterTickMsg) tea.Cmd {
	if !tw.active || msg.Seq != tw.seq {
		return nil
	}
	if tw.revealed < len(tw.target) {
		tw.revealed++
	}
	if tw.revealed >= len(tw.target) {
		// Caught up. Keep the animation armed so more tokens resume it,
		// but do not burn ticks on an empty backlog.
		return nil
	}
	return tw.tickCmd()
}

// Resume restarts ticking after new content arrived while the animation
// was caught up. Returns nil when there is nothing left to reveal.
func (tw *Typewriter) Resume() tea.Cmd {
	if !tw.active || tw.revealed >= len(tw.target) {
		return nil
	}
	tw.seq++
	return tw.tickCmd()
}

// Revealed returns the currently visible prefix of the target.
func (tw *Typewriter) Revealed() string {
	return string(tw.target[:tw.revealed])
}

// Revealing reports whether the animation still has content to show.
func (tw *Typewriter) Revealing() bool {
	return tw.active && tw.revealed < len(tw.target)
}

// Active reports whether the animation is armed.
func (tw *Typewriter) Active() bool {
	return tw.active
}

func (tw *Typewriter) tickCmd() tea.Cmd {
	seq := tw.seq
	return tea.Tick(tw.interval, func(t time.Time) tea.Msg {
		return TypewriterTickMsg{Seq: seq, Time: t}
	})
}
