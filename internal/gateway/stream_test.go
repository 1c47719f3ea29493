// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package gateway

import (
	"context"
	"io"
	"strings"
	"testing"
	"testing/iotest"
)

func collect(t *testing.T, input string) ([]StreamChunk, error) {
	t.Helper()
	reader := NewStreamReader(strings.NewReader(input))
	var chunks []StreamChunk
	err := reader.Process(context.Background(), func(c StreamChunk) {
		chunks = append(chunks, c)
	})
	return chunks, err
}

func TestStreamReaderTokenFrames(t *testing.T) {
	input := "data: {\"type\":\"token\",\"token\":\"Hello\"}\n" +
		"data: {\"type\":\"token\",\"token\":\", world\"}\n" +
		"data: [DONE]\n"

	chunks, err := collect(t, input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(chunks) != 3 {
		t.Fatalf("expected 3 chunks, got %d", len(chunks))
	}
	if chunks[0].Token != "Hello" {
		t.Errorf("expected first token %q, got %q", "Hello", chunks[0].Token)
	}
	if chunks[1].Token != ", world" {
		t.Errorf("expected second token %q, got %q", ", world", chunks[1].Token)
	}
	if !chunks[2].Done {
		t.Error("expected final chunk to be done")
	}
}

func TestStreamReaderEndEvent(t *testing.T) {
	input := "data: {\"type\":\"token\",\"token\":\"x\"}\n" +
		"data: {\"type\":\"end\"}\n"

	chunks, err := collect(t, input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !chunks[len(chunks)-1].Done {
		t.Error("end event should produce a done chunk")
	}
}

func TestStreamReaderRawTextFallback(t *testing.T) {
	input := "data: plain text token\ndata: [DONE]\n"

	chunks, err := collect(t, input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if chunks[0].Token != "plain text token" {
		t.Errorf("expected raw fallback token, got %q", chunks[0].Token)
	}
}

// chunkedReader delivers a fixed script of read sizes, splitting frames at
// arbitrary byte boundaries.
type chunkedReader struct {
	data  []byte
	sizes []int
	pos   int
	call  int
}

func (r *chunkedReader) Read(p []byte) (int, error) {
	if r.pos >= len(r.data) {
		return 0, io.EOF
	}
	n := r.sizes[r.call%len(r.sizes)]
	r.call++
	if n > len(r.data)-r.pos {
		n = len(r.data) - r.pos
	}
	if n > len(p) {
		n = len(p)
	}
	copy(p, r.data[r.pos:r.pos+n])
	r.pos += n
	return n, nil
}

func TestStreamReaderChunkBoundariesDoNotChangeContent(t *testing.T) {
	input := "data: {\"type\":\"token\",\"token\":\"The P/E \"}\n" +
		"data: {\"type\":\"token\",\"token\":\"ratio is \"}\n" +
		"data: {\"type\":\"token\",\"token\":\"28.4\"}\n" +
		"data: [DONE]\n"
	want := "The P/E ratio is 28.4"

	// Splits chosen to land mid-prefix, mid-JSON, and mid-token.
	readers := map[string]io.Reader{
		"one byte at a time": iotest.OneByteReader(strings.NewReader(input)),
		"awkward splits":     &chunkedReader{data: []byte(input), sizes: []int{3, 7, 1, 13}},
		"single read":        strings.NewReader(input),
	}

	for name, r := range readers {
		t.Run(name, func(t *testing.T) {
			sr := NewStreamReader(r)
			var tokens []string
			var done bool
			err := sr.Process(context.Background(), func(c StreamChunk) {
				if c.Done {
					done = true
					return
				}
				tokens = append(tokens, c.Token)
			})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got := strings.Join(tokens, ""); got != want {
				t.Errorf("joined tokens = %q, want %q", got, want)
			}
			if !done {
				t.Error("expected a done chunk")
			}
			if sr.Accumulated() != want {
				t.Errorf("accumulator = %q, want %q", sr.Accumulated(), want)
			}
		})
	}
}

func TestStreamReaderIgnoresNoise(t *testing.T) {
	input := "\n" +
		": keepalive comment\n" +
		"event: something\n" +
		"data: {\"type\":\"token\",\"token\":\"ok\"}\n" +
		"data: {\"type\":\"unknown\"}\n" +
		"data: [DONE]\n"

	chunks, err := collect(t, input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks (token + done), got %d", len(chunks))
	}
	if chunks[0].Token != "ok" {
		t.Errorf("expected token %q, got %q", "ok", chunks[0].Token)
	}
}

func TestStreamReaderCRLF(t *testing.T) {
	input := "data: {\"type\":\"token\",\"token\":\"win\"}\r\ndata: [DONE]\r\n"

	chunks, err := collect(t, input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if chunks[0].Token != "win" {
		t.Errorf("CRLF line endings should be handled, got %q", chunks[0].Token)
	}
}

func TestStreamReaderEOFWithoutTerminator(t *testing.T) {
	input := "data: {\"type\":\"token\",\"token\":\"partial\"}\n"

	chunks, err := collect(t, input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// A synthetic done chunk closes the turn.
	if !chunks[len(chunks)-1].Done {
		t.Error("expected synthetic done chunk after EOF")
	}
}

func TestStreamReaderAccumulator(t *testing.T) {
	input := "data: {\"type\":\"token\",\"token\":\"a\"}\n" +
		"data: {\"type\":\"token\",\"token\":\"b\"}\n" +
		"data: [DONE]\n"

	reader := NewStreamReader(strings.NewReader(input))
	err := reader.Process(context.Background(), func(StreamChunk) {})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := reader.Accumulated(); got != "ab" {
		t.Errorf("expected accumulated %q, got %q", "ab", got)
	}
	if got := reader.TokenCount(); got != 2 {
		t.Errorf("expected 2 tokens, got %d", got)
	}
}

func TestStreamReaderContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	reader := NewStreamReader(strings.NewReader("data: {\"type\":\"token\",\"token\":\"x\"}\n"))
	err := reader.Process(ctx, func(StreamChunk) {
		t.Error("callback should not fire after cancellation")
	})
	if err == nil {
		t.Error("expected context error")
	}
}

func TestStreamReaderEmptyStream(t *testing.T) {
	chunks, err := collect(t, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Even an empty body yields a synthetic done.
	if len(chunks) != 1 || !chunks[0].Done {
		t.Errorf("expected single done chunk, got %+v", chunks)
	}
}
