// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"testing"
	"time"
)

func TestTypewriterRevealsOneRunePerTick(t *testing.T) {
	tw := NewTypewriter(time.Millisecond)
	tw.SetTarget("abc")
	cmd := tw.Start()
	if cmd == nil {
		t.Fatal("Start should schedule a tick")
	}

	for i := 1; i <= 3; i++ {
		tw.Tick(TypewriterTickMsg{Seq: tw.seq})
		if got := tw.Revealed(); len([]rune(got)) != i {
			t.Errorf("after tick %d: revealed %q", i, got)
		}
	}
}

func TestTypewriterStaleTickIgnored(t *testing.T) {
	tw := NewTypewriter(time.Millisecond)
	tw.SetTarget("hello")
	tw.Start()
	stale := tw.seq
	tw.Start() // supersedes

	if cmd := tw.Tick(TypewriterTickMsg{Seq: stale}); cmd != nil {
		t.Error("stale tick should not reschedule")
	}
	if tw.Revealed() != "" {
		t.Errorf("stale tick advanced reveal to %q", tw.Revealed())
	}
}

func TestTypewriterTargetGrowthPreservesPosition(t *testing.T) {
	tw := NewTypewriter(time.Millisecond)
	tw.SetTarget("ab")
	tw.Start()
	tw.Tick(TypewriterTickMsg{Seq: tw.seq})
	tw.Tick(TypewriterTickMsg{Seq: tw.seq})

	if tw.Revealing() {
		t.Error("should be caught up")
	}

	tw.SetTarget("abcd")
	if !tw.Revealing() {
		t.Error("new content should leave backlog to reveal")
	}
	if cmd := tw.Resume(); cmd == nil {
		t.Error("Resume should reschedule with backlog present")
	}
	tw.Tick(TypewriterTickMsg{Seq: tw.seq})
	if got := tw.Revealed(); got != "abc" {
		t.Errorf("Revealed() = %q, want %q", got, "abc")
	}
}

func TestTypewriterFinishSnapsToFull(t *testing.T) {
	tw := NewTypewriter(time.Millisecond)
	tw.SetTarget("full response text")
	tw.Start()
	tw.Tick(TypewriterTickMsg{Seq: tw.seq})

	tw.Finish()
	if got := tw.Revealed(); got != "full response text" {
		t.Errorf("Revealed() = %q after Finish", got)
	}
	if tw.Revealing() || tw.Active() {
		t.Error("Finish should deactivate the animation")
	}
}

func TestTypewriterReset(t *testing.T) {
	tw := NewTypewriter(time.Millisecond)
	tw.SetTarget("abc")
	tw.Start()
	tw.Tick(TypewriterTickMsg{Seq: tw.seq})

	tw.Reset()
	if tw.Revealed() != "" {
		t.Errorf("Revealed() = %q after Reset", tw.Revealed())
	}
	if tw.Active() {
		t.Error("Reset should deactivate")
	}
}

func TestTypewriterShrunkTargetClamped(t *testing.T) {
	tw := NewTypewriter(time.Millisecond)
	tw.SetTarget("abcdef")
	tw.Start()
	for i := 0; i < 5; i++ {
		tw.Tick(TypewriterTickMsg{Seq: tw.seq})
	}

	tw.SetTarget("ab")
	if got := tw.Revealed(); got != "ab" {
		t.Errorf("Revealed() = %q, want clamp to %q", got, "ab")
	}
}

func TestTypewriterUnicode(t *testing.T) {
	tw := NewTypewriter(time.Millisecond)
	tw.SetTarget("日本語")
	tw.Start()
	tw.Tick(TypewriterTickMsg{Seq: tw.seq})
	if got := tw.Revealed(); got != "日" {
		t.Errorf("Revealed() = %q, want one full rune", got)
	}
}

func TestTypewriterDefaultInterval(t *testing.T) {
	tw := NewTypewriter(0)
	if tw.interval <= 0 {
		t.Error("non-positive interval should fall back to default")
	}
}
