package errors

import (
	"fmt"
	"time"
)

// ErrorType represents the type of error
type ErrorType string

const (
	// ErrorTypeBrowser represents browser session startup failures
	ErrorTypeBrowser ErrorType = "browser"
	// ErrorTypeNavigation represents page navigation failures
	ErrorTypeNavigation ErrorType = "navigation"
	// ErrorTypeNetwork represents plain HTTP fetch failures
	ErrorTypeNetwork ErrorType = "network"
	// ErrorTypeParsing represents payload or DOM parsing errors
	ErrorTypeParsing ErrorType = "parsing"
	// ErrorTypeRateLimit represents rate limiting errors
	ErrorTypeRateLimit ErrorType = "rate_limit"
	// ErrorTypePublisher represents publisher-related errors
	ErrorTypePublisher ErrorType = "publisher"
	// ErrorTypeExport represents output writing errors
	ErrorTypeExport ErrorType = "export"
	// ErrorTypeConfiguration represents configuration errors
	ErrorTypeConfiguration ErrorType = "configuration"
)

// ScrapeError represents a pipeline-specific error tied to one storefront
type ScrapeError struct {
	Type    ErrorType
	Store   string
	Message string
	Err     error
	Time    time.Time
}

// Error implements the error interface
func (e *ScrapeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %s - %v", e.Type, e.Store, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Type, e.Store, e.Message)
}

// Unwrap returns the underlying error
func (e *ScrapeError) Unwrap() error {
	return e.Err
}

// Fatal reports whether the error should abort the whole run. Only a failed
// browser startup and a broken configuration qualify; everything else is
// scoped to a single store.
func (e *ScrapeError) Fatal() bool {
	switch e.Type {
	case ErrorTypeBrowser, ErrorTypeConfiguration:
		return true
	default:
		return false
	}
}

// New creates a new ScrapeError
func New(errType ErrorType, store, message string, err error) *ScrapeError {
	return &ScrapeError{
		Type:    errType,
		Store:   store,
		Message: message,
		Err:     err,
		Time:    time.Now(),
	}
}

// NewBrowser creates a new browser startup error
func NewBrowser(message string, err error) *ScrapeError {
	return New(ErrorTypeBrowser, "", message, err)
}

// NewNavigation creates a new navigation error
func NewNavigation(store, message string, err error) *ScrapeError {
	return New(ErrorTypeNavigation, store, message, err)
}

// NewNetwork creates a new network error
func NewNetwork(store, message string, err error) *ScrapeError {
	return New(ErrorTypeNetwork, store, message, err)
}

// NewParsing creates a new parsing error
func NewParsing(store, message string, err error) *ScrapeError {
	return New(ErrorTypeParsing, store, message, err)
}

// NewRateLimit creates a new rate limit error
func NewRateLimit(store string, duration time.Duration) *ScrapeError {
	message := fmt.Sprintf("rate limited for %v", duration)
	return New(ErrorTypeRateLimit, store, message, nil)
}

// NewPublisher creates a new publisher error
func NewPublisher(store, message string, err error) *ScrapeError {
	return New(ErrorTypePublisher, store, message, err)
}

// NewExport creates a new export error
func NewExport(message string, err error) *ScrapeError {
	return New(ErrorTypeExport, "", message, err)
}

// NewConfiguration creates a new configuration error
func NewConfiguration(message string, err error) *ScrapeError {
	return New(ErrorTypeConfiguration, "", message, err)
}
