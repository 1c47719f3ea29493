// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package styles provides the visual styling system for the tickerchat TUI.
package styles

import "time"

// =============================================================================
// SPINNER CONFIGURATION
// =============================================================================

// SpinnerConfig defines frames and timing for an animated spinner.
type SpinnerConfig struct {
	Frames []string
	FPS    time.Duration
}

// DotSpinner is the braille spinner used for the thinking indicator.
var DotSpinner = SpinnerConfig{
	Frames: []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"},
	FPS:    80 * time.Millisecond,
}

// ASCIISpinner is the fallback for terminals without Unicode support.
var ASCIISpinner = SpinnerConfig{
	Frames: []string{"|", "/", "-", "\\"},
	FPS:    120 * time.Millisecond,
}

// =============================================================================
// TYPEWRITER CONFIGURATION
// =============================================================================

// StreamCaret is the cursor shown at the end of text that is still
// being revealed.
const StreamCaret = "▌"

// DefaultTypingInterval is the reveal rate when the config does not
// specify one.
const DefaultTypingInterval = 30 * time.Millisecond
