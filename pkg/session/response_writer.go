package session

import (
	"net/http"
	"sync"
)

// responseWriter runs a hook exactly once before the response headers are
// sent, or when the handler returns without writing anything.
type responseWriter struct {
	http.ResponseWriter
	beforeHeaders func()
	once          sync.Once
}

func newResponseWriter(w http.ResponseWriter, beforeHeaders func()) *responseWriter {
	return &responseWriter{ResponseWriter: w, beforeHeaders: beforeHeaders}
}

func (w *responseWriter) commit() {
	w.once.Do(w.beforeHeaders)
}

func (w *responseWriter) WriteHeader(status int) {
	w.commit()
	w.ResponseWriter.WriteHeader(status)
}

func (w *responseWriter) Write(b []byte) (int, error) {
	w.commit()
	return w.ResponseWriter.Write(b)
}

// Flush implements http.Flusher if the underlying ResponseWriter supports it.
func (w *responseWriter) Flush() {
	w.commit()
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (w *responseWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}
