package router

import (
	"bytes"
	"net/http"
)

// responseRecorder remembers what a handler wrote. When capture is set it
// keeps up to maxLoggedBodyBytes of the body for the access log.
type responseRecorder struct {
	http.ResponseWriter

	status  int
	written int
	err     error

	capture   bool
	body      bytes.Buffer
	truncated bool
}

func newResponseRecorder(w http.ResponseWriter, capture bool) *responseRecorder {
	return &responseRecorder{ResponseWriter: w, capture: capture}
}

func (w *responseRecorder) WriteHeader(code int) {
	if w.status == 0 {
		w.status = code
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *responseRecorder) Write(p []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}

	if w.capture && !w.truncated {
		room := maxLoggedBodyBytes - w.body.Len()
		if len(p) > room {
			w.body.Write(p[:max(room, 0)])
			w.truncated = true
		} else {
			w.body.Write(p)
		}
	}

	n, err := w.ResponseWriter.Write(p)
	w.written += n
	return n, err
}

// SetError is called by the endpoint adapter with the handler's error.
func (w *responseRecorder) SetError(err error) {
	w.err = err
	if inner, ok := w.ResponseWriter.(interface{ SetError(error) }); ok {
		inner.SetError(err)
	}
}

func (w *responseRecorder) Status() int {
	if w.status == 0 {
		return http.StatusOK
	}
	return w.status
}

func (w *responseRecorder) Flush() {
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (w *responseRecorder) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}
