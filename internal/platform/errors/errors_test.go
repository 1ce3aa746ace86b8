package errors

import (
	"fmt"
	"io/fs"
	"strings"
	"testing"

	"ingestrouter/internal/testutil"
)

type categorized struct{}

func (categorized) Error() string    { return "categorized" }
func (categorized) Category() string { return "CustomCategory" }

func TestWrap(t *testing.T) {
	t.Run("wraps error with context", func(t *testing.T) {
		baseErr := New("base error")
		wrapped := Wrap(baseErr, "additional context")

		testutil.AssertNotNil(t, wrapped, "wrapped error should not be nil")
		testutil.AssertTrue(t, Is(wrapped, baseErr), "should be able to unwrap to base error")
		testutil.AssertEqual(t, wrapped.Error(), "additional context: base error", "error message should include context")
	})

	t.Run("returns nil when wrapping nil", func(t *testing.T) {
		testutil.AssertTrue(t, Wrap(nil, "context") == nil, "wrapping nil should return nil")
		testutil.AssertTrue(t, Wrapf(nil, "context %s", "x") == nil, "wrapping nil should return nil")
		testutil.AssertTrue(t, WithStack(nil) == nil, "stacking nil should return nil")
	})

	t.Run("multiple wraps preserve chain", func(t *testing.T) {
		baseErr := New("base")
		wrapped := Wrap(Wrap(baseErr, "layer 1"), "layer 2")

		testutil.AssertTrue(t, Is(wrapped, baseErr), "should unwrap to base error")
		testutil.AssertEqual(t, wrapped.Error(), "layer 2: layer 1: base", "should show full chain")
	})

	t.Run("formatted context", func(t *testing.T) {
		wrapped := Wrapf(ErrNotFound, "fetch %s", "s3://bucket/key")
		testutil.AssertEqual(t, wrapped.Error(), "fetch s3://bucket/key: resource not found", "formatted message")
		testutil.AssertTrue(t, IsNotFound(wrapped), "sentinel should survive wrapping")
	})
}

func TestWithStack(t *testing.T) {
	base := New("boom")
	err := WithStack(base)

	testutil.AssertEqual(t, err.Error(), "boom", "message should be unchanged")
	testutil.AssertTrue(t, Is(err, base), "cause should be reachable")

	trace := StackTrace(err)
	testutil.AssertTrue(t, len(trace) > 0, "stack should be captured")
	testutil.AssertTrue(t, strings.Contains(trace[0], "TestWithStack"), "first frame should be the caller")
}

func TestStackTrace_DeepestFrameWins(t *testing.T) {
	inner := func() error { return Wrap(ErrInvalidInput, "inner") }
	err := Wrap(inner(), "outer")

	trace := StackTrace(err)
	testutil.AssertTrue(t, len(trace) > 0, "stack should be captured")
	testutil.AssertTrue(t, strings.Contains(trace[0], "func1"), "innermost capture should be reported")
}

func TestStackTrace_NoStack(t *testing.T) {
	testutil.AssertTrue(t, StackTrace(New("plain")) == nil, "plain errors carry no stack")
	testutil.AssertTrue(t, StackTrace(nil) == nil, "nil has no stack")
}

func TestTypeName(t *testing.T) {
	pathErr := &fs.PathError{Op: "open", Path: "/missing", Err: fs.ErrNotExist}

	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"plain", New("x"), "*errors.errorString"},
		{"path error", pathErr, "*fs.PathError"},
		{"wrapped path error", Wrap(pathErr, "read input"), "*fs.PathError"},
		{"fmt wrapped", fmt.Errorf("ctx: %w", pathErr), "*fs.PathError"},
		{"categorized", Wrap(categorized{}, "ctx"), "CustomCategory"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			testutil.AssertEqual(t, TypeName(tt.err), tt.want, "type name")
		})
	}
}

func TestJoin(t *testing.T) {
	err := Join(ErrMissingConfig, nil, ErrInvalidConfig)
	testutil.AssertTrue(t, Is(err, ErrMissingConfig), "joined error should match first")
	testutil.AssertTrue(t, IsInvalidConfig(err), "joined error should match second")
	testutil.AssertTrue(t, Join(nil, nil) == nil, "joining nils returns nil")
}

func TestAs(t *testing.T) {
	var pathErr *fs.PathError
	err := Wrap(&fs.PathError{Op: "stat", Path: "p", Err: fs.ErrNotExist}, "ctx")
	testutil.AssertTrue(t, As(err, &pathErr), "As should find path error")
	testutil.AssertEqual(t, pathErr.Op, "stat", "As should populate target")
}
