// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package gateway provides the HTTP client for the chat gateway API.
package gateway

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"strings"
)

// =============================================================================
// STREAM READER
// =============================================================================

// doneMarker terminates a response stream.
const doneMarker = "[DONE]"

// dataPrefix marks a payload-bearing frame.
var dataPrefix = []byte("data: ")

// StreamReader decodes the gateway's line-framed response stream.
//
// Each frame is one line of the form "data: <payload>". The payload is
// either the terminator "[DONE]" or a JSON event carrying a token. Frames
// whose payload is not valid JSON are treated as raw token text, which
// keeps older gateway builds working. Lines without the data prefix are
// ignored.
type StreamReader struct {
	reader *bufio.Reader
	// PERFORMANCE: strings.Builder avoids quadratic allocations
	accumulator strings.Builder
	tokenCount  int
	done        bool
}

// NewStreamReader creates a stream reader from an io.Reader.
func NewStreamReader(r io.Reader) *StreamReader {
	return &StreamReader{
		reader: bufio.NewReader(r),
	}
}

// Process reads the stream and calls the callback for each chunk.
// Blocks until the stream is complete or the context is cancelled.
func (s *StreamReader) Process(ctx context.Context, callback StreamCallback) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
			chunk, err := s.readChunk()
			if err != nil {
				if err == io.EOF {
					// Server closed without the terminator. Treat as done
					// so partial answers still finalize.
					if !s.done {
						callback(StreamChunk{Done: true})
					}
					return nil
				}
				return err
			}

			if chunk != nil {
				callback(*chunk)
				if chunk.Done {
					s.done = true
					return nil
				}
			}
		}
	}
}

// readChunk reads and decodes a single frame from the stream.
func (s *StreamReader) readChunk() (*StreamChunk, error) {
	line, err := s.reader.ReadBytes('\n')
	if err != nil {
		if err == io.EOF && len(line) == 0 {
			return nil, io.EOF
		}
		// A partial line without a trailing newline is not a complete
		// frame; the token inside may be truncated. Defer it.
		if err == io.EOF {
			return nil, io.EOF
		}
		return nil, err
	}

	line = bytes.TrimRight(line, "\r\n")

	// Skip blank keepalive lines and frames without the data prefix.
	if len(line) == 0 || !bytes.HasPrefix(line, dataPrefix) {
		return nil, nil
	}

	payload := line[len(dataPrefix):]
	if string(payload) == doneMarker {
		return &StreamChunk{Done: true}, nil
	}

	var event streamEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		// Raw text fallback.
		s.accumulate(string(payload))
		return &StreamChunk{Token: string(payload)}, nil
	}

	switch event.Type {
	case "token":
		if event.Token == "" {
			return nil, nil
		}
		s.accumulate(event.Token)
		return &StreamChunk{Token: event.Token}, nil
	case "end":
		return &StreamChunk{Done: true}, nil
	default:
		// Unknown event types are skipped, not fatal.
		return nil, nil
	}
}

func (s *StreamReader) accumulate(token string) {
	s.accumulator.WriteString(token)
	s.tokenCount++
}

// Accumulated returns all content received so far.
func (s *StreamReader) Accumulated() string {
	return s.accumulator.String()
}

// TokenCount returns the number of tokens received.
func (s *StreamReader) TokenCount() int {
	return s.tokenCount
}
