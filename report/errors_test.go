package report

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	errorslib "github.com/goliatone/go-errors"
)

func TestKindFromError(t *testing.T) {
	tests := []struct {
		err  error
		want ErrorKind
	}{
		{err: nil, want: ""},
		{err: NewError(KindAssembly, "bad", nil), want: KindAssembly},
		{err: fmt.Errorf("wrapped: %w", PageError(KindRasterization, 2, "bad", nil)), want: KindRasterization},
		{err: context.Canceled, want: KindCanceled},
		{err: NewError(KindRasterization, "interrupted", context.DeadlineExceeded), want: KindTimeout},
		{err: errors.New("boom"), want: KindInternal},
	}
	for _, tc := range tests {
		if got := KindFromError(tc.err); got != tc.want {
			t.Fatalf("KindFromError(%v): expected %q, got %q", tc.err, tc.want, got)
		}
	}
}

func TestPageErrorMessage(t *testing.T) {
	err := PageError(KindRasterization, 3, "page could not be rendered", errors.New("chart init"))
	if got := err.Error(); got != "page 3: page could not be rendered: chart init" {
		t.Fatalf("unexpected message: %q", got)
	}
	idx, ok := PageIndexFromError(fmt.Errorf("outer: %w", err))
	if !ok || idx != 3 {
		t.Fatalf("expected page 3, got %d (%v)", idx, ok)
	}
	if _, ok := PageIndexFromError(NewError(KindAssembly, "x", nil)); ok {
		t.Fatalf("expected no page index")
	}
}

func TestAsGoError(t *testing.T) {
	if AsGoError(nil) != nil {
		t.Fatalf("expected nil")
	}

	ge := AsGoError(NewError(KindInvalidInput, "risk count must not be negative", nil))
	if ge.Category != errorslib.CategoryValidation {
		t.Fatalf("expected validation category, got %v", ge.Category)
	}
	if ge.TextCode != "INVALID_INPUT" {
		t.Fatalf("expected INVALID_INPUT, got %q", ge.TextCode)
	}

	ge = AsGoError(PageError(KindRasterization, 1, "page could not be rendered", nil))
	if ge.TextCode != "RASTERIZATION_FAILED" {
		t.Fatalf("expected RASTERIZATION_FAILED, got %q", ge.TextCode)
	}
	if !strings.Contains(ge.Error(), "page 1:") {
		t.Fatalf("expected page prefix, got %q", ge.Error())
	}

	original := errorslib.New("kept", errorslib.CategoryInternal)
	if AsGoError(original) != original {
		t.Fatalf("expected go-errors error to pass through")
	}
}
