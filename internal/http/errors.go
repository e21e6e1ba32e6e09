package http

import (
	"errors"

	"tractorlog/internal/core"
	applog "tractorlog/internal/log"
)

// errorType buckets err for the error_type log field.
func errorType(err error) string {
	var verr *core.ValidationError
	switch {
	case errors.As(err, &verr):
		return applog.ErrorTypeValidation
	case errors.Is(err, core.ErrAuth):
		return applog.ErrorTypeAuth
	case errors.Is(err, core.ErrStoreUnavailable), errors.Is(err, core.ErrIOFailure):
		return applog.ErrorTypeStorage
	case errors.Is(err, core.ErrRender):
		return applog.ErrorTypeRender
	default:
		return applog.ErrorTypeInternal
	}
}
