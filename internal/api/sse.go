package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

const (
	sseDone        = "[DONE]"
	sseErrorPrefix = "[ERROR] "
)

// sseWriter frames text as server-sent events. Every frame is a single
// "data:" line; newlines inside a fragment are escaped.
type sseWriter struct {
	w   http.ResponseWriter
	rc  *http.ResponseController
	err error
}

func newSSEWriter(w http.ResponseWriter) *sseWriter {
	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	return &sseWriter{w: w, rc: http.NewResponseController(w)}
}

func (s *sseWriter) frame(data string) error {
	if s.err != nil {
		return s.err
	}
	if _, err := fmt.Fprintf(s.w, "data: %s\n\n", data); err != nil {
		s.err = err
		return err
	}
	if err := s.rc.Flush(); err != nil && !errors.Is(err, http.ErrNotSupported) {
		s.err = err
		return err
	}
	return nil
}

// Fragment writes one piece of the reply.
func (s *sseWriter) Fragment(text string) error {
	return s.frame(strings.ReplaceAll(text, "\n", `\n`))
}

// Error writes an in-band error frame.
func (s *sseWriter) Error(message string) error {
	return s.frame(sseErrorPrefix + strings.ReplaceAll(message, "\n", `\n`))
}

// Done writes the terminal frame. It is attempted even after a failed write.
func (s *sseWriter) Done() {
	s.err = nil
	_ = s.frame(sseDone)
}

// Failed reports whether a write to the client has failed.
func (s *sseWriter) Failed() bool {
	return s.err != nil
}
