package datasource

import (
	"errors"
	"fmt"
)

// DataSourceError represents errors that can occur during data source operations
type DataSourceError struct {
	Source  string
	Op      string
	Err     error
	Code    string
	Message string
}

func (e *DataSourceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("datasource.%s [%s]: %s: %v", e.Op, e.Source, e.Message, e.Err)
	}
	return fmt.Sprintf("datasource.%s [%s]: %s", e.Op, e.Source, e.Message)
}

func (e *DataSourceError) Unwrap() error {
	return e.Err
}

// Common error codes
const (
	ErrCodeNotFound          = "NotFound"
	ErrCodeInvalidSource     = "InvalidSource"
	ErrCodeAccessDenied      = "AccessDenied"
	ErrCodeInvalidFormat     = "InvalidFormat"
	ErrCodeRateLimitExceeded = "RateLimitExceeded"
	ErrCodeInternal          = "Internal"
	ErrCodeMissingDependency = "MissingDependency"
	ErrCodeTypeMismatch      = "TypeMismatch"
	ErrCodeInvalidConfig     = "InvalidConfig"
)

// NewDataSourceError creates a new DataSourceError
func NewDataSourceError(source, op string, err error, code, message string) *DataSourceError {
	return &DataSourceError{
		Source:  source,
		Op:      op,
		Err:     err,
		Code:    code,
		Message: message,
	}
}

// IsCode reports whether err is a DataSourceError with the given code
func IsCode(err error, code string) bool {
	var dsErr *DataSourceError
	if errors.As(err, &dsErr) {
		return dsErr.Code == code
	}
	return false
}
