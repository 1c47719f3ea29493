// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session holds the chat session state machine.
package session

import (
	"errors"
	"strings"
	"sync"

	"github.com/jeranaias/tickerchat/internal/model"
	"github.com/jeranaias/tickerchat/internal/util"
)

// =============================================================================
// PHASE TYPE
// =============================================================================

// Phase is the request lifecycle state of the session.
type Phase int

const (
	// PhaseIdle means no request is in flight.
	PhaseIdle Phase = iota
	// PhaseLoading means a request was sent but no delta has arrived yet.
	PhaseLoading
	// PhaseStreaming means deltas are arriving for the current turn.
	PhaseStreaming
)

// String returns the phase name.
func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseLoading:
		return "loading"
	case PhaseStreaming:
		return "streaming"
	default:
		return "unknown"
	}
}

// =============================================================================
// ERRORS
// =============================================================================

var (
	// ErrNotOpen is returned when sending without an open session.
	ErrNotOpen = errors.New("session: no open session")
	// ErrBusy is returned when a request is already in flight.
	ErrBusy = errors.New("session: request already in flight")
	// ErrEmptyMessage is returned for blank input.
	ErrEmptyMessage = errors.New("session: empty message")
	// ErrBadTicker is returned for input that is not a valid symbol.
	ErrBadTicker = errors.New("session: invalid ticker symbol")
)

// =============================================================================
// SESSION STORE
// =============================================================================

// Store owns all chat session state: the active ticker, the message
// history, and the lifecycle of the in-flight turn.
//
// Every in-flight turn carries a generation number. Clearing the session
// or switching tickers bumps the generation, so deltas from a superseded
// stream are recognized and dropped instead of landing in the new
// transcript.
//
// All methods are safe for concurrent use; in practice mutation happens on
// the UI event loop while stream goroutines only read identifiers.
type Store struct {
	mu sync.Mutex

	// Identity
	sessionID string
	modelID   string

	// Session state
	ticker string
	open   bool

	// Transcript
	messages     []*model.Message
	historyLimit int

	// In-flight turn
	phase      Phase
	current    *model.Message
	stats      *model.Statistics
	generation uint64
	lastErr    error
}

// NewStore creates a session store. sessionID is the persistent client
// identity sent with every request. historyLimit caps the transcript
// length (0 = unlimited).
func NewStore(sessionID string, historyLimit int) *Store {
	return &Store{
		sessionID:    sessionID,
		historyLimit: historyLimit,
	}
}

// =============================================================================
// ACCESSORS
// =============================================================================

// SessionID returns the persistent client session identity.
func (s *Store) SessionID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sessionID
}

// Ticker returns the active symbol, or "" when no session is open.
func (s *Store) Ticker() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ticker
}

// IsOpen reports whether a session is open.
func (s *Store) IsOpen() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.open
}

// Phase returns the current request lifecycle phase.
func (s *Store) Phase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

// IsBusy reports whether a request is in flight.
func (s *Store) IsBusy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase != PhaseIdle
}

// Messages returns a snapshot of the transcript. The returned slice is a
// copy; the messages themselves are shared.
func (s *Store) Messages() []*model.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*model.Message, len(s.messages))
	copy(out, s.messages)
	return out
}

// MessageCount returns the transcript length.
func (s *Store) MessageCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.messages)
}

// ModelID returns the selected model, or "" before selection.
func (s *Store) ModelID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.modelID
}

// SetModelID records the selected model for subsequent requests.
func (s *Store) SetModelID(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.modelID = id
}

// Generation returns the current stream generation.
func (s *Store) Generation() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generation
}

// LastError returns the most recent stream failure, or nil.
func (s *Store) LastError() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// ClearError discards the recorded stream failure.
func (s *Store) ClearError() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastErr = nil
}

// =============================================================================
// SESSION LIFECYCLE
// =============================================================================

// Open opens a session for ticker. Reopening the same symbol preserves the
// transcript; switching symbols starts fresh and abandons any in-flight
// stream. Returns whether the transcript was cleared.
func (s *Store) Open(ticker string) (cleared bool, err error) {
	sym := util.NormalizeTicker(ticker)
	if sym == "" {
		return false, ErrBadTicker
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.open && s.ticker == sym {
		return false, nil
	}

	switched := s.ticker != "" && s.ticker != sym
	s.ticker = sym
	s.open = true
	if switched {
		s.resetLocked()
		return true, nil
	}
	return false, nil
}

// Close hides the session without discarding it. The transcript survives
// and an in-flight stream keeps accumulating in the background.
func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.open = false
}

// Clear wipes the transcript and abandons any in-flight stream. The
// session stays open on the same ticker.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resetLocked()
}

// resetLocked wipes transcript and in-flight state. Caller holds the lock.
func (s *Store) resetLocked() {
	s.messages = nil
	s.current = nil
	s.stats = nil
	s.phase = PhaseIdle
	s.lastErr = nil
	s.generation++ // in-flight deltas become stale
}

// =============================================================================
// TURN LIFECYCLE
// =============================================================================

// BeginSend appends a user message and moves the session into the loading
// phase. Returns the generation that the resulting stream must carry.
func (s *Store) BeginSend(text string) (gen uint64, msg *model.Message, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.open {
		return 0, nil, ErrNotOpen
	}
	if s.phase != PhaseIdle {
		return 0, nil, ErrBusy
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return 0, nil, ErrEmptyMessage
	}

	msg = model.NewUserMessage(text)
	s.messages = append(s.messages, msg)
	s.trimLocked()

	s.phase = PhaseLoading
	s.current = nil
	s.stats = model.NewStatistics()
	s.lastErr = nil
	s.generation++
	return s.generation, msg, nil
}

// BeginDeepAnalysis starts a turn without echoing the prompt as a user
// message. Subject to the same busy guard as BeginSend.
func (s *Store) BeginDeepAnalysis() (gen uint64, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.open {
		return 0, ErrNotOpen
	}
	if s.phase != PhaseIdle {
		return 0, ErrBusy
	}

	s.phase = PhaseLoading
	s.current = nil
	s.stats = model.NewStatistics()
	s.lastErr = nil
	s.generation++
	return s.generation, nil
}

// AppendDelta applies one streamed token for generation gen. The assistant
// message is created lazily on the first delta, which also moves the
// session from loading to streaming. Stale or out-of-phase deltas are
// dropped; the return value reports whether anything changed.
func (s *Store) AppendDelta(gen uint64, token string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.generation || s.phase == PhaseIdle {
		return false
	}

	if s.current == nil {
		s.current = model.NewAssistantMessage()
		s.messages = append(s.messages, s.current)
		s.phase = PhaseStreaming
		if s.stats != nil {
			s.stats.RecordFirstToken()
		}
	}
	s.current.AppendToken(token)
	return true
}

// CompleteStream finishes the turn for generation gen. The streaming
// message is frozen and the session returns to idle. Returns the finalized
// message (nil if the stream produced no tokens) and whether the
// completion applied.
func (s *Store) CompleteStream(gen uint64) (*model.Message, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.generation || s.phase == PhaseIdle {
		return nil, false
	}

	done := s.current
	if s.stats != nil {
		s.stats.Finalize()
	}
	if done != nil {
		done.FinalizeStream(s.stats)
	}

	s.current = nil
	s.stats = nil
	s.phase = PhaseIdle
	s.trimLocked()
	return done, true
}

// FailStream aborts the turn for generation gen, keeping any partial
// content already streamed. Returns whether the failure applied.
func (s *Store) FailStream(gen uint64, cause error) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.generation || s.phase == PhaseIdle {
		return false
	}

	if s.current != nil {
		if s.stats != nil {
			s.stats.Finalize()
		}
		s.current.FinalizeStream(s.stats)
		if s.current.IsEmpty() {
			// Drop the empty placeholder rather than show a blank bubble.
			s.messages = s.messages[:len(s.messages)-1]
		}
	}

	s.current = nil
	s.stats = nil
	s.phase = PhaseIdle
	s.lastErr = cause
	return true
}

// trimLocked enforces the history limit. Caller holds the lock.
func (s *Store) trimLocked() {
	if s.historyLimit <= 0 || len(s.messages) <= s.historyLimit {
		return
	}
	excess := len(s.messages) - s.historyLimit
	s.messages = append([]*model.Message(nil), s.messages[excess:]...)
}
