// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"errors"
	"strings"
	"testing"

	"github.com/jeranaias/tickerchat/internal/gateway"
	"github.com/jeranaias/tickerchat/internal/ui/styles"
)

func TestNewStreamErrorClassification(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		wantTitle string
	}{
		{"rate limited", gateway.ErrRateLimited, "Slow Down"},
		{"quota", gateway.ErrQuotaExceeded, "Quota Exceeded"},
		{"timeout", gateway.ErrTimeout, "Request Timed Out"},
		{"unreachable", gateway.ErrUnavailable, "Gateway Unreachable"},
		{"generic", errors.New("something odd"), "Request Failed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			display := NewStreamError(tt.err)
			if display.Title() != tt.wantTitle {
				t.Errorf("expected title %q, got %q", tt.wantTitle, display.Title())
			}
			if !display.IsVisible() {
				t.Error("new error should be visible")
			}
		})
	}
}

func TestErrorDisplayDismiss(t *testing.T) {
	display := NewError("Oops", "it broke")
	display.Dismiss()

	if display.IsVisible() {
		t.Error("dismissed error should not be visible")
	}
	if out := display.View(styles.NewTheme()); out != "" {
		t.Errorf("dismissed error should render nothing, got %q", out)
	}
}

func TestErrorDisplayViewIncludesSuggestions(t *testing.T) {
	display := NewErrorWithSuggestions("Broken", "details here", []string{"try this", "or that"})
	display.SetWidth(80)

	out := display.View(styles.NewTheme())
	for _, want := range []string{"Broken", "details here", "try this", "or that"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in rendered error", want)
		}
	}
}

func TestInlineError(t *testing.T) {
	out := InlineError("stream failed")
	if !strings.Contains(out, "stream failed") {
		t.Errorf("expected message in %q", out)
	}
}
