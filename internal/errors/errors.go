package errors

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/ZanzyTHEbar/errbuilder-go"
)

// ErrorCategory defines the type of error for proper handling
type ErrorCategory string

const (
	// CategoryValidation covers malformed or out-of-domain answers. Rejected
	// and re-requested, never silently coerced.
	CategoryValidation ErrorCategory = "validation"
	// CategoryConfiguration covers programming/configuration errors such as
	// an exhausted question pool or a degenerate taxonomy. Fatal to the
	// current session, not retried.
	CategoryConfiguration ErrorCategory = "configuration"
	// CategoryExternalAPI covers failures of the narrative inference
	// service. Recovered locally; never invalidates a computed result.
	CategoryExternalAPI ErrorCategory = "external_api"
	CategoryRateLimit   ErrorCategory = "rate_limit"
	CategoryInternal    ErrorCategory = "internal"
)

// AppError wraps an errbuilder error with category and transport context
type AppError struct {
	*errbuilder.ErrBuilder
	Category   ErrorCategory `json:"category"`
	HTTPStatus int           `json:"http_status"`
	Timestamp  time.Time     `json:"timestamp"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	codeStr := "INTERNAL_ERROR"
	switch e.ErrBuilder.ErrCode() {
	case errbuilder.CodeInvalidArgument:
		codeStr = "INVALID_RESPONSE"
	case errbuilder.CodeFailedPrecondition:
		codeStr = "CONFIGURATION_ERROR"
	case errbuilder.CodeUnavailable:
		codeStr = "EXTERNAL_API_ERROR"
	case errbuilder.CodeResourceExhausted:
		codeStr = "RATE_LIMIT_EXCEEDED"
	}
	return fmt.Sprintf("[%s] %s", codeStr, e.ErrBuilder.Msg)
}

// Unwrap returns the underlying cause
func (e *AppError) Unwrap() error {
	return e.ErrBuilder.Unwrap()
}

// NewAppError creates an AppError from an errbuilder with category context
func NewAppError(builder *errbuilder.ErrBuilder, category ErrorCategory, httpStatus int) *AppError {
	return &AppError{
		ErrBuilder: builder,
		Category:   category,
		HTTPStatus: httpStatus,
		Timestamp:  time.Now(),
	}
}

// NewInvalidResponseError flags an answer whose value is outside its
// question's domain, or that references the wrong question.
func NewInvalidResponseError(message string) *AppError {
	builder := errbuilder.New().
		WithCode(errbuilder.CodeInvalidArgument).
		WithMsg(message)
	return NewAppError(builder, CategoryValidation, http.StatusBadRequest)
}

// NewEmptyPoolError flags a selection attempt against an exhausted question
// pool. This is a configuration error, fatal to the session.
func NewEmptyPoolError(message string) *AppError {
	builder := errbuilder.New().
		WithCode(errbuilder.CodeFailedPrecondition).
		WithMsg(message)
	return NewAppError(builder, CategoryConfiguration, http.StatusInternalServerError)
}

// NewDegenerateTaxonomyError flags a category set the classifier cannot
// score: empty, or all-zero weight vectors (softmax would be undefined).
func NewDegenerateTaxonomyError(message string) *AppError {
	builder := errbuilder.New().
		WithCode(errbuilder.CodeFailedPrecondition).
		WithMsg(message)
	return NewAppError(builder, CategoryConfiguration, http.StatusInternalServerError)
}

// NewConfigError creates a generic configuration error
func NewConfigError(message string, cause error) *AppError {
	builder := errbuilder.New().
		WithCode(errbuilder.CodeFailedPrecondition).
		WithMsg(message)
	if cause != nil {
		builder = builder.WithCause(cause)
	}
	return NewAppError(builder, CategoryConfiguration, http.StatusInternalServerError)
}

// NewExternalAPIError creates an error for a failed narrative service call
func NewExternalAPIError(apiName string, cause error) *AppError {
	errorMap := errbuilder.ErrorMap{}
	errorMap.Set("api_name", errors.New(apiName))

	builder := errbuilder.New().
		WithCode(errbuilder.CodeUnavailable).
		WithMsg(fmt.Sprintf("%s API error", apiName)).
		WithDetails(errbuilder.NewErrDetails(errorMap))
	if cause != nil {
		builder = builder.WithCause(cause)
	}
	return NewAppError(builder, CategoryExternalAPI, http.StatusBadGateway)
}

// NewRateLimitError creates a rate limit error
func NewRateLimitError(retryAfter string) *AppError {
	errorMap := errbuilder.ErrorMap{}
	errorMap.Set("retry_after", errors.New(retryAfter))

	builder := errbuilder.New().
		WithCode(errbuilder.CodeResourceExhausted).
		WithMsg("Rate limit exceeded").
		WithDetails(errbuilder.NewErrDetails(errorMap))
	return NewAppError(builder, CategoryRateLimit, http.StatusTooManyRequests)
}

// NewInternalError creates an internal error
func NewInternalError(message string, cause error) *AppError {
	builder := errbuilder.New().
		WithCode(errbuilder.CodeInternal).
		WithMsg(message)
	if cause != nil {
		builder = builder.WithCause(cause)
	}
	return NewAppError(builder, CategoryInternal, http.StatusInternalServerError)
}

// ToAppError converts any error to an AppError
func ToAppError(err error) *AppError {
	if err == nil {
		return nil
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	if ebErr, ok := err.(*errbuilder.ErrBuilder); ok {
		return NewAppError(ebErr, CategoryInternal, http.StatusInternalServerError)
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return NewExternalAPIError("upstream", err)
	}
	return NewInternalError("An unexpected error occurred", err)
}

// IsCategory reports whether an error carries the given category
func IsCategory(err error, category ErrorCategory) bool {
	var appErr *AppError
	if !errors.As(err, &appErr) {
		return false
	}
	return appErr.Category == category
}

// IsInvalidResponse reports whether an error is a rejected answer
func IsInvalidResponse(err error) bool { return IsCategory(err, CategoryValidation) }

// IsRetryableError checks if an error should trigger a retry. Only external
// service failures are worth retrying; validation and configuration errors
// never are.
func IsRetryableError(err error) bool {
	appErr := ToAppError(err)
	switch appErr.Category {
	case CategoryExternalAPI, CategoryRateLimit:
		return true
	default:
		return false
	}
}
