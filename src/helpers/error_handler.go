package helpers

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"spread-observer/src/logger"
	"spread-observer/src/models"
)

// -----------------------------------------------------------------------------
// Custom Error Types
// -----------------------------------------------------------------------------

type SpreadObserverError struct {
	Message string
	Cause   error
}

func (e *SpreadObserverError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *SpreadObserverError) Unwrap() error {
	return e.Cause
}

// Distinct error kinds, matched with errors.As.
type ConfigurationError struct{ SpreadObserverError }
type NetworkError struct{ SpreadObserverError }
type DataSourceError struct{ SpreadObserverError }
type DatabaseError struct{ SpreadObserverError }
type ValidationError struct{ SpreadObserverError }

// -----------------------------------------------------------------------------

func NewNetworkError(msg string, cause error) error {
	return &NetworkError{SpreadObserverError{Message: msg, Cause: cause}}
}

func NewDataSourceError(msg string, cause error) error {
	return &DataSourceError{SpreadObserverError{Message: msg, Cause: cause}}
}

func NewDatabaseError(msg string, cause error) error {
	return &DatabaseError{SpreadObserverError{Message: msg, Cause: cause}}
}

func NewValidationError(msg string) error {
	return &ValidationError{SpreadObserverError{Message: msg}}
}

func NewConfigurationError(msg string, cause error) error {
	return &ConfigurationError{SpreadObserverError{Message: msg, Cause: cause}}
}

// -----------------------------------------------------------------------------

// Kind names the category of err for diagnostics.
func Kind(err error) string {
	var netErr *NetworkError
	var srcErr *DataSourceError
	var dbErr *DatabaseError
	var valErr *ValidationError
	var cfgErr *ConfigurationError

	switch {
	case errors.As(err, &netErr):
		return "network"
	case errors.As(err, &srcErr):
		return "payload"
	case errors.As(err, &dbErr):
		return "database"
	case errors.As(err, &valErr):
		return "validation"
	case errors.As(err, &cfgErr):
		return "configuration"
	default:
		return "unknown"
	}
}

// -----------------------------------------------------------------------------

// Degrade turns an upstream error into the status attached to an empty result.
func Degrade(feed string, err error) models.MFetchStatus {
	if err == nil {
		return models.StatusOK
	}
	return models.MFetchStatus{
		Degraded: true,
		Reason:   fmt.Sprintf("%s: %s: %v", feed, Kind(err), err),
	}
}

// -----------------------------------------------------------------------------
// Error Handler
// -----------------------------------------------------------------------------

type ErrorHandler struct {
	Logger     *logger.Logger
	ErrorCount int
	BaseDelay  time.Duration
}

func NewErrorHandler(log *logger.Logger) *ErrorHandler {
	return &ErrorHandler{
		Logger:    log,
		BaseDelay: time.Second,
	}
}

// -----------------------------------------------------------------------------

func (e *ErrorHandler) ResetErrorCount() {
	e.ErrorCount = 0
}

// -----------------------------------------------------------------------------

// ExecuteWithRetry runs fn up to maxRetries times with exponential backoff and
// categorizes the final error by operation name.
func (e *ErrorHandler) ExecuteWithRetry(operation string, fn func() error, maxRetries int) error {
	if maxRetries < 1 {
		maxRetries = 1
	}

	for attempt := 0; attempt < maxRetries; attempt++ {
		err := fn()
		if err == nil {
			if e.ErrorCount > 0 {
				e.ErrorCount--
			}
			return nil
		}

		if attempt == maxRetries-1 {
			e.ErrorCount++
			e.Logger.Error("%s failed (attempt %d/%d): %v", operation, attempt+1, maxRetries, err)

			msg := fmt.Sprintf("%s failed", operation)
			lowerOp := strings.ToLower(operation)
			switch {
			case strings.Contains(lowerOp, "network") || strings.Contains(lowerOp, "fetch"):
				return NewNetworkError(msg, err)
			case strings.Contains(lowerOp, "database") || strings.Contains(lowerOp, "save"):
				return NewDatabaseError(msg, err)
			default:
				return &SpreadObserverError{Message: msg, Cause: err}
			}
		}

		e.Logger.Warning("%s failed (attempt %d/%d): %v", operation, attempt+1, maxRetries, err)
		time.Sleep(e.BaseDelay * time.Duration(1<<attempt))
	}

	return &SpreadObserverError{Message: fmt.Sprintf("%s failed after %d attempts", operation, maxRetries)}
}

// -----------------------------------------------------------------------------

func (e *ErrorHandler) Handle(err error, context string) {
	if err != nil {
		e.Logger.Error("Error in %s: %v", context, err)
	}
}
