package report

import (
	"context"
	"errors"
	"fmt"

	errorslib "github.com/goliatone/go-errors"
)

// ErrorKind defines report pipeline error kinds.
type ErrorKind string

const (
	KindInvalidInput  ErrorKind = "invalid_input"
	KindRasterization ErrorKind = "rasterization"
	KindAssembly      ErrorKind = "assembly"
	KindDelivery      ErrorKind = "delivery"
	KindNotFound      ErrorKind = "not_found"
	KindTimeout       ErrorKind = "timeout"
	KindCanceled      ErrorKind = "canceled"
	KindInternal      ErrorKind = "internal"
)

// noPage marks errors that are not tied to a page.
const noPage = -1

// ReportError wraps errors with a kind and, for page failures, the page index.
type ReportError struct {
	Kind      ErrorKind
	Msg       string
	PageIndex int
	Err       error
}

func (e *ReportError) Error() string {
	msg := e.Msg
	if e.PageIndex >= 0 {
		msg = fmt.Sprintf("page %d: %s", e.PageIndex, msg)
	}
	if e.Err == nil {
		return msg
	}
	return msg + ": " + e.Err.Error()
}

func (e *ReportError) Unwrap() error {
	return e.Err
}

// NewError creates a new report error.
func NewError(kind ErrorKind, msg string, err error) *ReportError {
	return &ReportError{Kind: kind, Msg: msg, PageIndex: noPage, Err: err}
}

// PageError creates an error attributed to a single page.
func PageError(kind ErrorKind, pageIndex int, msg string, err error) *ReportError {
	return &ReportError{Kind: kind, Msg: msg, PageIndex: pageIndex, Err: err}
}

// KindFromError maps an error to its report error kind.
func KindFromError(err error) ErrorKind {
	if err == nil {
		return ""
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}
	if errors.Is(err, context.Canceled) {
		return KindCanceled
	}

	var reportErr *ReportError
	if errors.As(err, &reportErr) {
		return reportErr.Kind
	}

	return KindInternal
}

// PageIndexFromError returns the failing page index, if the error carries one.
func PageIndexFromError(err error) (int, bool) {
	var reportErr *ReportError
	if errors.As(err, &reportErr) && reportErr.PageIndex >= 0 {
		return reportErr.PageIndex, true
	}
	return 0, false
}

// AsGoError maps an error into a go-errors error.
func AsGoError(err error) *errorslib.Error {
	if err == nil {
		return nil
	}

	var ge *errorslib.Error
	if errors.As(err, &ge) {
		return ge
	}

	kind := KindFromError(err)
	msg := err.Error()

	var reportErr *ReportError
	if errors.As(err, &reportErr) && reportErr.Msg != "" {
		msg = reportErr.Msg
		if reportErr.PageIndex >= 0 {
			msg = fmt.Sprintf("page %d: %s", reportErr.PageIndex, msg)
		}
	}

	switch kind {
	case KindInvalidInput:
		return errorslib.New(msg, errorslib.CategoryValidation).WithTextCode("INVALID_INPUT")
	case KindNotFound:
		return errorslib.New(msg, errorslib.CategoryNotFound).WithTextCode("NOT_FOUND")
	case KindRasterization:
		return errorslib.New(msg, errorslib.CategoryOperation).WithTextCode("RASTERIZATION_FAILED")
	case KindAssembly:
		return errorslib.New(msg, errorslib.CategoryOperation).WithTextCode("ASSEMBLY_FAILED")
	case KindDelivery:
		return errorslib.New(msg, errorslib.CategoryOperation).WithTextCode("DELIVERY_FAILED")
	case KindTimeout:
		return errorslib.New(msg, errorslib.CategoryOperation).WithTextCode("TIMEOUT")
	case KindCanceled:
		return errorslib.New(msg, errorslib.CategoryOperation).WithTextCode("CANCELED")
	default:
		return errorslib.New(msg, errorslib.CategoryInternal).WithTextCode("INTERNAL")
	}
}
