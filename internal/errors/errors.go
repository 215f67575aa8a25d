// Package errors provides the error types used by the adg client.
package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for common cases
var (
	ErrInvalidExtension = errors.New("unsupported file extension")
	ErrNoAttachment     = errors.New("no file attached")
	ErrEmptyQuestion    = errors.New("question is empty")
	ErrRequestInFlight  = errors.New("a request is already in flight")
)

// InvalidAttachmentError reports a file that failed extension validation.
// The previous attachment, if any, is untouched when this is returned.
type InvalidAttachmentError struct {
	Name string
}

func (e *InvalidAttachmentError) Error() string {
	return fmt.Sprintf("invalid attachment %q: only .csv and .zip files are accepted", e.Name)
}

// Is allows comparison with the ErrInvalidExtension sentinel
func (e *InvalidAttachmentError) Is(target error) bool {
	if target == ErrInvalidExtension {
		return true
	}
	_, ok := target.(*InvalidAttachmentError)
	return ok
}

// NewInvalidAttachmentError creates a new InvalidAttachmentError
func NewInvalidAttachmentError(name string) *InvalidAttachmentError {
	return &InvalidAttachmentError{Name: name}
}

// TransportError represents a failed exchange with the analysis endpoint:
// either a non-success status or a network-level failure (StatusCode 0).
type TransportError struct {
	StatusCode int
	Message    string
	Endpoint   string
}

func (e *TransportError) Error() string {
	if e.StatusCode > 0 {
		if e.Message != "" {
			return fmt.Sprintf("analysis request failed [%d]: %s", e.StatusCode, e.Message)
		}
		return fmt.Sprintf("analysis request failed with status %d", e.StatusCode)
	}
	return fmt.Sprintf("analysis request failed: %s", e.Message)
}

// NewTransportError creates a new TransportError
func NewTransportError(statusCode int, endpoint, message string) *TransportError {
	return &TransportError{
		StatusCode: statusCode,
		Endpoint:   endpoint,
		Message:    message,
	}
}

// ApplicationError represents a structured `error` field reported by the
// analysis backend inside an otherwise successful response.
type ApplicationError struct {
	Message string
}

func (e *ApplicationError) Error() string {
	if e.Message == "" {
		return "the analysis backend reported an error"
	}
	return e.Message
}

// NewApplicationError creates a new ApplicationError
func NewApplicationError(message string) *ApplicationError {
	return &ApplicationError{Message: message}
}

// ChartError represents a failure to fetch or store a generated chart image.
// It only fails the image slot of its entry, never the surrounding text.
type ChartError struct {
	URL     string
	Message string
}

func (e *ChartError) Error() string {
	return fmt.Sprintf("chart download failed: %s", e.Message)
}

// NewChartError creates a new ChartError
func NewChartError(url, message string) *ChartError {
	return &ChartError{URL: url, Message: message}
}

// GetHTTPStatus extracts the HTTP status code from a TransportError in the
// chain, or 0 when none is present.
func GetHTTPStatus(err error) int {
	var te *TransportError
	if errors.As(err, &te) {
		return te.StatusCode
	}
	return 0
}

// IsTransportError reports whether err is (or wraps) a TransportError.
func IsTransportError(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}

// IsApplicationError reports whether err is (or wraps) an ApplicationError.
func IsApplicationError(err error) bool {
	var ae *ApplicationError
	return errors.As(err, &ae)
}

// IsChartError reports whether err is (or wraps) a ChartError.
func IsChartError(err error) bool {
	var ce *ChartError
	return errors.As(err, &ce)
}

// UserMessage converts err into the message shown in the transcript. The
// structured backend message wins over the generic status text.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}

	var ae *ApplicationError
	if errors.As(err, &ae) {
		return ae.Error()
	}

	var te *TransportError
	if errors.As(err, &te) {
		return te.Error()
	}

	return err.Error()
}
