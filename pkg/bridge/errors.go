package bridge

import (
	"context"
	"fmt"
	"io/fs"
	"syscall"

	"connectrpc.com/connect"
	"github.com/pkg/errors"
)

// Kind classifies a failure so the UI can react without parsing messages.
type Kind string

const (
	KindNotFound      Kind = "not_found"
	KindPermission    Kind = "permission"
	KindIO            Kind = "io"
	KindCollision     Kind = "collision"
	KindInvalidTarget Kind = "invalid_target"
	KindPicker        Kind = "picker"
)

// ErrorKindHeader carries the Kind next to a connect error.
const ErrorKindHeader = "Folio-Error-Kind"

var kindCodes = map[Kind]connect.Code{
	KindNotFound:      connect.CodeNotFound,
	KindPermission:    connect.CodePermissionDenied,
	KindIO:            connect.CodeInternal,
	KindCollision:     connect.CodeAlreadyExists,
	KindInvalidTarget: connect.CodeInvalidArgument,
	KindPicker:        connect.CodeUnavailable,
}

// Code returns the connect code the kind travels as.
func (k Kind) Code() connect.Code {
	if c, ok := kindCodes[k]; ok {
		return c
	}
	return connect.CodeInternal
}

// KindFromCode maps a connect code back to a kind. Codes without a
// dedicated kind are reported as io failures.
func KindFromCode(code connect.Code) Kind {
	for k, c := range kindCodes {
		if c == code {
			return k
		}
	}
	return KindIO
}

// Error is a failed bridge operation.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	switch {
	case e.Err == nil:
		return e.Msg
	case e.Msg == "":
		return e.Err.Error()
	default:
		return e.Msg + ": " + e.Err.Error()
	}
}

func (e *Error) Unwrap() error { return e.Err }

func newError(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

func NotFound(format string, args ...any) *Error {
	return newError(KindNotFound, format, args...)
}

func Permission(format string, args ...any) *Error {
	return newError(KindPermission, format, args...)
}

func Collision(format string, args ...any) *Error {
	return newError(KindCollision, format, args...)
}

func InvalidTarget(format string, args ...any) *Error {
	return newError(KindInvalidTarget, format, args...)
}

// PickerFailed wraps an error from the folder picker.
func PickerFailed(err error) *Error {
	return &Error{Kind: KindPicker, Msg: "folder picker unavailable", Err: err}
}

// FromOS classifies a filesystem error. The message names the operation.
func FromOS(op string, err error) *Error {
	var be *Error
	if errors.As(err, &be) {
		return be
	}
	wrapped := errors.Wrap(err, op)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return &Error{Kind: KindNotFound, Err: wrapped}
	case errors.Is(err, fs.ErrPermission):
		return &Error{Kind: KindPermission, Err: wrapped}
	case errors.Is(err, fs.ErrExist), errors.Is(err, syscall.ENOTEMPTY):
		return &Error{Kind: KindCollision, Err: wrapped}
	case errors.Is(err, syscall.ENOTDIR), errors.Is(err, syscall.EISDIR),
		errors.Is(err, syscall.EINVAL), errors.Is(err, syscall.ENAMETOOLONG):
		return &Error{Kind: KindInvalidTarget, Err: wrapped}
	default:
		return &Error{Kind: KindIO, Err: wrapped}
	}
}

// KindOf reports the kind of err, or io for errors outside the taxonomy.
func KindOf(err error) Kind {
	var be *Error
	if errors.As(err, &be) {
		return be.Kind
	}
	var ce *connect.Error
	if errors.As(err, &ce) {
		if k := ce.Meta().Get(ErrorKindHeader); k != "" {
			return Kind(k)
		}
		return KindFromCode(ce.Code())
	}
	return KindIO
}

// ConnectError converts err into the error a handler returns.
func ConnectError(err error) *connect.Error {
	if err == nil {
		return nil
	}
	var ce *connect.Error
	if errors.As(err, &ce) {
		return ce
	}
	if errors.Is(err, context.Canceled) {
		return connect.NewError(connect.CodeCanceled, err)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return connect.NewError(connect.CodeDeadlineExceeded, err)
	}
	kind := KindOf(err)
	ce = connect.NewError(kind.Code(), errors.New(err.Error()))
	ce.Meta().Set(ErrorKindHeader, string(kind))
	return ce
}

// FromConnectError rebuilds an *Error from a connect error received by a
// client. Other errors are returned unchanged.
func FromConnectError(err error) error {
	var ce *connect.Error
	if !errors.As(err, &ce) {
		return err
	}
	switch ce.Code() {
	case connect.CodeCanceled:
		return errors.Wrap(context.Canceled, ce.Message())
	case connect.CodeDeadlineExceeded:
		return errors.Wrap(context.DeadlineExceeded, ce.Message())
	}
	kind := Kind(ce.Meta().Get(ErrorKindHeader))
	if _, ok := kindCodes[kind]; !ok {
		kind = KindFromCode(ce.Code())
	}
	return &Error{Kind: kind, Msg: ce.Message()}
}
