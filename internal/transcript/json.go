// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package transcript

import (
	"encoding/json"
	"fmt"
)

// =============================================================================
// JSON WRITER
// =============================================================================

// JSONWriter renders sessions to JSON.
// NOTE: JSON output is always the complete session structure, so a
// rendered transcript can be read back with Load.
type JSONWriter struct{}

// Render converts a session to indented JSON.
func (w *JSONWriter) Render(s *Session) ([]byte, error) {
	if s == nil {
		return nil, fmt.Errorf("session is nil")
	}
	return json.MarshalIndent(s, "", "  ")
}

// FileExtension returns the file extension for JSON.
func (w *JSONWriter) FileExtension() string {
	return ".json"
}

// Load parses a JSON transcript back into a session.
func Load(data []byte) (*Session, error) {
	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to parse transcript: %w", err)
	}
	return &s, nil
}
