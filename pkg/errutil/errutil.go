package errutil

import (
	"errors"
	"net/http"
)

// HttpError pairs an error with the HTTP status code it should surface as.
type HttpError struct {
	code int
	err  error
}

func (e *HttpError) Error() string {
	return e.err.Error()
}

func (e *HttpError) Code() int {
	return e.code
}

func (e *HttpError) Unwrap() error {
	return e.err
}

func NewHttpError(code int, err error) *HttpError {
	return &HttpError{
		code: code,
		err:  err,
	}
}

func BadRequestError(err error) error {
	return NewHttpError(http.StatusBadRequest, err)
}

func ValidationError(err error) error {
	return NewHttpError(http.StatusBadRequest, err)
}

func UnauthorizedError(err error) error {
	return NewHttpError(http.StatusUnauthorized, err)
}

func ForbiddenError(err error) error {
	return NewHttpError(http.StatusForbidden, err)
}

func NotFoundError(err error) error {
	return NewHttpError(http.StatusNotFound, err)
}

func ConflictError(err error) error {
	return NewHttpError(http.StatusConflict, err)
}

func InternalServerError(err error) error {
	return NewHttpError(http.StatusInternalServerError, err)
}

// UpstreamError carries the status code reported by an external API.
// Codes outside the valid HTTP range fall back to 502.
func UpstreamError(code int, err error) error {
	if code < 400 || code > 599 {
		code = http.StatusBadGateway
	}
	return NewHttpError(code, err)
}

// ParseHttpError maps an error to the (code, message) pair written to the
// client. A nil error is a 200 with no message.
func ParseHttpError(err error) (int, string) {
	if err == nil {
		return http.StatusOK, ""
	}

	httpErr := new(HttpError)
	if errors.As(err, &httpErr) {
		return httpErr.Code(), httpErr.Error()
	}

	return http.StatusInternalServerError, err.Error()
}
