// Copyright (C) 2025 Kodiak Systems (engineering@kodiaksystems.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package agent

import (
	"bufio"
	"encoding/json"
	"io"
	"log/slog"
	"strings"
)

// sseMaxLineBytes bounds a single SSE line. Agent step-events can carry
// whole reports inline, so this is well above bufio's 64KiB default.
const sseMaxLineBytes = 4 * 1024 * 1024

// readSSE parses a server-sent event stream into raw step-event messages.
//
// Description:
//
//	Only "data:" lines carry payload; everything else (comments, event
//	names, blank delimiters) is ignored. A data line whose payload is not
//	valid JSON is skipped with a warning. The special "[DONE]" payload
//	ends the stream.
func readSSE(r io.Reader) ([]json.RawMessage, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), sseMaxLineBytes)

	var msgs []json.RawMessage
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "data:") {
			continue
		}
		payload := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		if payload == "" {
			continue
		}
		if payload == "[DONE]" {
			break
		}
		if !json.Valid([]byte(payload)) {
			slog.Warn("Skipping malformed SSE data line",
				slog.Int("length", len(payload)))
			continue
		}
		msgs = append(msgs, json.RawMessage(payload))
	}
	if err := scanner.Err(); err != nil {
		return msgs, err
	}
	return msgs, nil
}
