// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func testClient(baseURL string) *Client {
	cfg := DefaultConfig()
	cfg.BaseURL = baseURL
	cfg.RequestsPerSecond = 0 // no throttling in tests
	cfg.MaxRetries = 1
	return NewClientWithConfig(cfg)
}

func TestChatStream(t *testing.T) {
	var gotPath string
	var gotReq ChatRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		json.NewDecoder(r.Body).Decode(&gotReq)

		w.Header().Set("Content-Type", "text/event-stream")
		w.Write([]byte("data: {\"type\":\"token\",\"token\":\"The \"}\n"))
		w.Write([]byte("data: {\"type\":\"token\",\"token\":\"answer\"}\n"))
		w.Write([]byte("data: [DONE]\n"))
	}))
	defer server.Close()

	client := testClient(server.URL)

	var tokens []string
	var done bool
	err := client.ChatStream(context.Background(), ChatRequest{
		Message:          "what is the RSI?",
		QueryType:        string(QueryIndicator),
		PromptTemplateID: QueryIndicator.TemplateID(),
		Ticker:           "AAPL",
		SessionID:        "sess-1",
		ModelID:          "gpt-4o-mini",
	}, func(chunk StreamChunk) {
		if chunk.Done {
			done = true
			return
		}
		tokens = append(tokens, chunk.Token)
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if gotPath != "/api/v1/stock/chat/AAPL" {
		t.Errorf("unexpected path %q", gotPath)
	}
	if gotReq.SessionID != "sess-1" || gotReq.ModelID != "gpt-4o-mini" {
		t.Errorf("request not forwarded: %+v", gotReq)
	}
	if strings.Join(tokens, "") != "The answer" {
		t.Errorf("expected joined tokens %q, got %q", "The answer", strings.Join(tokens, ""))
	}
	if !done {
		t.Error("expected done chunk")
	}
}

func TestDeepAnalysisStreamPath(t *testing.T) {
	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Write([]byte("data: [DONE]\n"))
	}))
	defer server.Close()

	client := testClient(server.URL)
	err := client.DeepAnalysisStream(context.Background(), "TSLA", DeepAnalysisRequest{
		Prompt:    "full analysis",
		SessionID: "sess-1",
	}, func(StreamChunk) {})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if gotPath != "/api/v1/stock/chat/TSLA/deep" {
		t.Errorf("unexpected path %q", gotPath)
	}
}

func TestStreamStatusErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		check  func(error) bool
	}{
		{"rate limited", http.StatusTooManyRequests, IsRateLimited},
		{"quota forbidden", http.StatusForbidden, IsQuotaExceeded},
		{"quota payment", http.StatusPaymentRequired, IsQuotaExceeded},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))
			defer server.Close()

			client := testClient(server.URL)
			err := client.ChatStream(context.Background(), ChatRequest{Ticker: "AAPL"}, func(StreamChunk) {})
			if err == nil {
				t.Fatal("expected error")
			}
			if !tt.check(err) {
				t.Errorf("error %v not classified correctly", err)
			}
		})
	}
}

func TestStreamErrorDetail(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"detail":"unknown ticker"}`))
	}))
	defer server.Close()

	client := testClient(server.URL)
	err := client.ChatStream(context.Background(), ChatRequest{Ticker: "ZZZZ"}, func(StreamChunk) {})
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "unknown ticker") {
		t.Errorf("expected gateway detail in error, got %v", err)
	}
}

func TestStreamUnreachable(t *testing.T) {
	client := testClient("http://127.0.0.1:1") // nothing listens here

	err := client.ChatStream(context.Background(), ChatRequest{Ticker: "AAPL"}, func(StreamChunk) {})
	if !IsUnavailable(err) && !IsTimeout(err) {
		t.Errorf("expected unavailable or timeout, got %v", err)
	}
}

func TestListModels(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if r.URL.Path != "/api/v1/ai/models" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		json.NewEncoder(w).Encode([]ModelInfo{
			{ID: "gpt-4o-mini", Ctx: 128000, Strength: "fast", UXHint: "default"},
			{ID: "gpt-4o", Ctx: 128000, Strength: "deep"},
		})
	}))
	defer server.Close()

	client := testClient(server.URL)

	models, err := client.ListModels(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(models) != 2 {
		t.Fatalf("expected 2 models, got %d", len(models))
	}
	if models[0].ID != "gpt-4o-mini" {
		t.Errorf("unexpected first model %q", models[0].ID)
	}

	// Second call is served from the cache.
	_, err = client.ListModels(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 1 {
		t.Errorf("expected 1 upstream call, got %d", calls)
	}
}

func TestSaveModelSelection(t *testing.T) {
	var gotReq SaveModelRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/config/model" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		json.NewDecoder(r.Body).Decode(&gotReq)
	}))
	defer server.Close()

	client := testClient(server.URL)
	client.SaveModelSelection(context.Background(), "sess-1", "gpt-4o")

	if gotReq.SessionID != "sess-1" || gotReq.Model != "gpt-4o" {
		t.Errorf("selection not forwarded: %+v", gotReq)
	}
}

func TestSaveModelSelectionSwallowsFailure(t *testing.T) {
	client := testClient("http://127.0.0.1:1")
	// Must not panic or block.
	client.SaveModelSelection(context.Background(), "sess-1", "gpt-4o")
}

func TestConfigDefaultsFilledIn(t *testing.T) {
	client := NewClientWithConfig(&ClientConfig{BaseURL: "http://example.com"})
	cfg := client.Config()

	if cfg.Timeout == 0 || cfg.StreamTimeout == 0 || cfg.MaxRetries == 0 {
		t.Errorf("zero values should be defaulted: %+v", cfg)
	}
}
