package errors

import (
	"fmt"
	"runtime"
	"strings"
	"sync"
	"time"
)

var (
	// DefaultHandler receives every reported error and recovered panic.
	// Replace it with SetHandler.
	DefaultHandler Handler = &LogHandler{}

	handlerMu sync.RWMutex
)

// SetHandler installs h as the global handler. A nil h restores a
// non-verbose LogHandler.
func SetHandler(h Handler) {
	if h == nil {
		h = &LogHandler{}
	}
	handlerMu.Lock()
	DefaultHandler = h
	handlerMu.Unlock()
}

func currentHandler() Handler {
	handlerMu.RLock()
	defer handlerMu.RUnlock()
	return DefaultHandler
}

// Report hands err to the global handler, stamping it if needed.
func Report(err *Error) {
	if err == nil {
		return
	}
	stamp(&err.Timestamp)
	currentHandler().HandleError(err)
}

// ReportPanic hands a recovered panic to the global handler.
func ReportPanic(err *PanicError) {
	if err == nil {
		return
	}
	stamp(&err.Timestamp)
	currentHandler().HandlePanic(err)
}

func stamp(t *time.Time) {
	if t.IsZero() {
		*t = time.Now()
	}
}

// Recover reports a panic in progress. It must be deferred directly:
//
//	defer errors.Recover("collection.OperationQueue")
func Recover(op string) {
	if r := recover(); r != nil {
		ReportPanic(&PanicError{Op: op, Value: r, StackTrace: CaptureStack()})
	}
}

// Guard runs fn, reporting a panic instead of propagating it.
// It returns false if fn panicked.
func Guard(op string, fn func()) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			ReportPanic(&PanicError{Op: op, Value: r, StackTrace: CaptureStack()})
			ok = false
		}
	}()
	fn()
	return true
}

// CaptureStack formats the caller's stack, one "function\n\tfile:line"
// entry per frame, skipping runtime frames.
func CaptureStack() string {
	pcs := make([]uintptr, 32)
	pcs = pcs[:runtime.Callers(2, pcs)]
	if len(pcs) == 0 {
		return ""
	}

	var sb strings.Builder
	frames := runtime.CallersFrames(pcs)
	for {
		frame, more := frames.Next()
		if !strings.HasPrefix(frame.Function, "runtime.") {
			fmt.Fprintf(&sb, "%s\n\t%s:%d\n", frame.Function, frame.File, frame.Line)
		}
		if !more {
			return sb.String()
		}
	}
}
