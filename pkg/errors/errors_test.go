package errors

import (
	"bytes"
	stderrors "errors"
	"strings"
	"testing"
	"time"
)

func TestErrorString(t *testing.T) {
	err := &Error{
		Op:   "collection.ReallocOperation",
		Kind: KindAlloc,
		Err:  stderrors.New("factory returned no node"),
	}
	want := "collection.ReallocOperation [alloc]: factory returned no node"
	if got := err.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestErrorWithKey(t *testing.T) {
	err := &Error{
		Op:   "mapping.Resolve",
		Kind: KindLayout,
		Key:  "icon",
		Err:  stderrors.New("boom"),
	}
	if got := err.Error(); !strings.Contains(got, "key=icon") {
		t.Errorf("error string %q should contain %q", got, "key=icon")
	}
}

func TestErrorUnwrap(t *testing.T) {
	inner := stderrors.New("inner")
	err := &Error{Op: "op", Err: inner}
	if !stderrors.Is(err, inner) {
		t.Error("errors.Is should find the wrapped error")
	}
}

func TestErrorKindString(t *testing.T) {
	tests := []struct {
		kind ErrorKind
		want string
	}{
		{KindUnknown, "unknown"},
		{KindLayout, "layout"},
		{KindAlloc, "alloc"},
		{KindConfig, "config"},
		{KindPanic, "panic"},
	}
	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.want {
			t.Errorf("ErrorKind(%d).String() = %q, want %q", tt.kind, got, tt.want)
		}
	}
}

func TestPanicErrorString(t *testing.T) {
	err := &PanicError{Value: "test panic", Timestamp: time.Now()}
	if got, want := err.Error(), "panic: test panic"; got != want {
		t.Errorf("PanicError.Error() = %q, want %q", got, want)
	}

	err.Op = "collection.Element.Node"
	if got, want := err.Error(), "panic in collection.Element.Node: test panic"; got != want {
		t.Errorf("PanicError.Error() = %q, want %q", got, want)
	}
}

func TestReport(t *testing.T) {
	var captured *Error
	handler := &testHandler{onError: func(err *Error) { captured = err }}

	oldHandler := DefaultHandler
	SetHandler(handler)
	defer SetHandler(oldHandler)

	Report(&Error{Op: "test.op", Kind: KindConfig, Err: stderrors.New("bad")})

	if captured == nil {
		t.Fatal("expected error to be captured")
	}
	if captured.Op != "test.op" {
		t.Errorf("Op = %q, want %q", captured.Op, "test.op")
	}
	if captured.Timestamp.IsZero() {
		t.Error("expected Timestamp to be set")
	}
}

func TestReportNil(t *testing.T) {
	called := false
	handler := &testHandler{
		onError: func(*Error) { called = true },
		onPanic: func(*PanicError) { called = true },
	}
	oldHandler := DefaultHandler
	SetHandler(handler)
	defer SetHandler(oldHandler)

	Report(nil)
	ReportPanic(nil)
	if called {
		t.Error("nil errors should not reach the handler")
	}
}

func TestRecover(t *testing.T) {
	var captured *PanicError
	handler := &testHandler{onPanic: func(err *PanicError) { captured = err }}

	oldHandler := DefaultHandler
	SetHandler(handler)
	defer SetHandler(oldHandler)

	func() {
		defer Recover("test.recover")
		panic("intentional test panic")
	}()

	if captured == nil {
		t.Fatal("expected panic to be recovered and captured")
	}
	if captured.Value != "intentional test panic" {
		t.Errorf("Value = %v, want %q", captured.Value, "intentional test panic")
	}
	if captured.Op != "test.recover" {
		t.Errorf("Op = %q, want %q", captured.Op, "test.recover")
	}
	if captured.StackTrace == "" {
		t.Error("expected a stack trace")
	}
}

func TestGuard(t *testing.T) {
	var panics int
	handler := &testHandler{onPanic: func(*PanicError) { panics++ }}
	oldHandler := DefaultHandler
	SetHandler(handler)
	defer SetHandler(oldHandler)

	if ok := Guard("test.guard", func() {}); !ok {
		t.Error("Guard should report success when fn returns normally")
	}
	if ok := Guard("test.guard", func() { panic("x") }); ok {
		t.Error("Guard should report failure when fn panics")
	}
	if panics != 1 {
		t.Errorf("panics reported = %d, want 1", panics)
	}
}

func TestCaptureStack(t *testing.T) {
	stack := CaptureStack()
	if stack == "" {
		t.Fatal("expected non-empty stack trace")
	}
	if !strings.Contains(stack, "TestCaptureStack") {
		t.Errorf("stack trace should contain the calling test, got: %s", stack)
	}
}

func TestSetHandlerNil(t *testing.T) {
	oldHandler := DefaultHandler
	defer SetHandler(oldHandler)

	SetHandler(nil)
	if _, ok := DefaultHandler.(*LogHandler); !ok {
		t.Errorf("SetHandler(nil) should set LogHandler, got %T", DefaultHandler)
	}
}

func TestLogHandler(t *testing.T) {
	var buf bytes.Buffer
	h := &LogHandler{Verbose: true, Out: &buf}
	h.HandleError(&Error{Op: "view.ApplyLayout", Kind: KindLayout, Key: "title", Err: stderrors.New("no frame"), StackTrace: "frames"})
	h.HandlePanic(&PanicError{Op: "collection.Element.Node", Value: "bad"})

	out := buf.String()
	for _, want := range []string{"[lazynode error] view.ApplyLayout [layout]", "key=title", "Stack trace:", "[lazynode panic] collection.Element.Node: bad"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q:\n%s", want, out)
		}
	}
}

type testHandler struct {
	onError func(*Error)
	onPanic func(*PanicError)
}

func (h *testHandler) HandleError(err *Error) {
	if h.onError != nil {
		h.onError(err)
	}
}

func (h *testHandler) HandlePanic(err *PanicError) {
	if h.onPanic != nil {
		h.onPanic(err)
	}
}

func TestGuard_StackTrace(t *testing.T) {
	var captured *PanicError
	handler := &testHandler{onPanic: func(err *PanicError) { captured = err }}

	oldHandler := DefaultHandler
	SetHandler(handler)
	defer SetHandler(oldHandler)

	if Guard("test.stack", func() { panic("stack") }) {
		t.Fatal("Guard() = true for a panicking function")
	}
	if captured == nil {
		t.Fatal("panic not reported")
	}
	if !strings.Contains(captured.StackTrace, "TestGuard_StackTrace") {
		t.Errorf("stack trace missing the panicking test:\n%s", captured.StackTrace)
	}
	if strings.Contains(captured.StackTrace, "runtime.gopanic") {
		t.Errorf("stack trace should skip runtime frames:\n%s", captured.StackTrace)
	}
}
