// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadOrCreateIDCreatesAndPersists(t *testing.T) {
	dir := t.TempDir()

	id, err := LoadOrCreateID(dir)
	require.NoError(t, err)
	_, err = uuid.Parse(id)
	assert.NoError(t, err, "identity should be a valid UUID")

	// Second call returns the same identity.
	again, err := LoadOrCreateID(dir)
	require.NoError(t, err)
	assert.Equal(t, id, again)
}

func TestLoadOrCreateIDReplacesCorruptFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "session_id")
	require.NoError(t, os.WriteFile(path, []byte("not-a-uuid\n"), 0o600))

	id, err := LoadOrCreateID(dir)
	require.NoError(t, err)
	_, err = uuid.Parse(id)
	assert.NoError(t, err)
	assert.NotEqual(t, "not-a-uuid", id)
}
