package errors

import (
	"fmt"
	"io"
	"os"
	"sync"
)

// LogHandler is a Handler that logs errors to stderr.
type LogHandler struct {
	// Verbose enables detailed output including stack traces.
	Verbose bool
	// Out overrides the destination. Defaults to os.Stderr.
	Out io.Writer

	mu sync.Mutex
}

func (h *LogHandler) out() io.Writer {
	if h.Out != nil {
		return h.Out
	}
	return os.Stderr
}

// HandleError logs an Error.
func (h *LogHandler) HandleError(err *Error) {
	if err == nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	w := h.out()
	if h.Verbose {
		fmt.Fprintf(w, "[lazynode error] %s [%s]", err.Op, err.Kind)
		if err.Key != "" {
			fmt.Fprintf(w, " key=%s", err.Key)
		}
		fmt.Fprintf(w, ": %v\n", err.Err)
		if err.StackTrace != "" {
			fmt.Fprintf(w, "Stack trace:\n%s\n", err.StackTrace)
		}
	} else {
		fmt.Fprintf(w, "[lazynode error] %s: %v\n", err.Op, err.Err)
	}
}

// HandlePanic logs a PanicError.
func (h *LogHandler) HandlePanic(err *PanicError) {
	if err == nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	w := h.out()
	if err.Op != "" {
		fmt.Fprintf(w, "[lazynode panic] %s: %v\n", err.Op, err.Value)
	} else {
		fmt.Fprintf(w, "[lazynode panic] %v\n", err.Value)
	}
	if h.Verbose && err.StackTrace != "" {
		fmt.Fprintf(w, "Stack trace:\n%s\n", err.StackTrace)
	}
}
