package api

import (
	"errors"
	"fmt"

	pkgerrors "github.com/pkg/errors"

	"github.com/strix-project/strix/pkg/drivers"
)

type apiError interface {
	Error() string
	Code() int
	Message() string
}

type baseError struct {
	Err  error
	Msg  string
	Code int
}

func (x *baseError) Message() string {
	if x.Msg != "" {
		return x.Msg
	}

	return x.Err.Error()
}

type userError struct{ baseError }

func (x *userError) Error() string { return "UserError: " + x.Msg + "\n" + x.Err.Error() }
func (x *userError) Code() int {
	if x.baseError.Code > 0 {
		return x.baseError.Code
	}
	return 400
}

func wrapUserError(err error, code int, msg string) apiError {
	return &userError{
		baseError: baseError{
			Err:  pkgerrors.Wrap(err, msg),
			Code: code,
		},
	}
}

func newUserErrorf(code int, msg string, args ...interface{}) apiError {
	return &userError{
		baseError: baseError{
			Msg:  fmt.Sprintf(msg, args...),
			Code: code,
		},
	}
}

type systemError struct{ baseError }

func (x *systemError) Error() string { return "SystemError: " + x.Msg + "\n" + x.Err.Error() }
func (x *systemError) Code() int {
	if x.baseError.Code > 0 {
		return x.baseError.Code
	}
	return 500
}

func wrapSystemError(err error, code int, msg string) apiError {
	return &systemError{
		baseError: baseError{
			Err:  pkgerrors.Wrap(err, msg),
			Code: code,
		},
	}
}

// wrapDriverError maps the driver error taxonomy to response codes:
// caller mistakes become 4xx, backend failures become 5xx.
func wrapDriverError(err error) apiError {
	var userInput *drivers.UserInputError
	var missing *drivers.MissingArgumentError
	var connErr *drivers.ConnectionError

	switch {
	case errors.As(err, &userInput) || errors.As(err, &missing):
		return wrapUserError(err, 400, "Invalid connection parameters")
	case errors.Is(err, drivers.ErrNotSupported):
		return wrapUserError(err, 400, "Operation is not supported by the configured driver")
	case errors.As(err, &connErr):
		return wrapSystemError(err, 502, "Backend connection failed")
	case errors.Is(err, drivers.ErrNotConnected):
		return wrapSystemError(err, 500, "Driver is not connected")
	default:
		return wrapSystemError(err, 500, "Query execution failed")
	}
}
