package utils

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// SetupStreamHeaders prepares a response for newline-delimited JSON
// streaming. The charset matters: the client keys its incremental parser
// off this exact content type.
func SetupStreamHeaders(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
}

// WriteJSONLine marshals payload, writes it followed by a newline, and
// flushes when the writer supports it so each chunk reaches the client
// immediately.
func WriteJSONLine(w io.Writer, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal ndjson payload: %w", err)
	}

	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("write ndjson payload: %w", err)
	}
	if _, err := w.Write([]byte("\n")); err != nil {
		return fmt.Errorf("write ndjson terminator: %w", err)
	}

	if flusher, ok := w.(http.Flusher); ok {
		flusher.Flush()
	}
	return nil
}
