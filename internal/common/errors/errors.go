// Package errors provides standardized error handling for BPMN workflow integration.
package errors

import (
	"fmt"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

// Assignment / Geocoding / Territory Errors
const (
	ErrCodeNoAddressData          ErrorCode = "NO_ADDRESS_DATA"
	ErrCodeGeocodingUnavailable   ErrorCode = "GEOCODING_UNAVAILABLE"
	ErrCodeGeocodingTimeout       ErrorCode = "GEOCODING_TIMEOUT"
	ErrCodeNoCoverage             ErrorCode = "NO_COVERAGE"
	ErrCodeInvalidTerritoryConfig ErrorCode = "INVALID_TERRITORY_CONFIG"
	ErrCodeLocationNotFound       ErrorCode = "LOCATION_NOT_FOUND"
	ErrCodeRepresentativeNotFound ErrorCode = "REPRESENTATIVE_NOT_FOUND"
	ErrCodeResyncFailed           ErrorCode = "RESYNC_FAILED"

	ErrCodeDatabaseConnectionFailed ErrorCode = "DATABASE_CONNECTION_FAILED"
	ErrCodeQueryExecutionFailed     ErrorCode = "QUERY_EXECUTION_FAILED"
	ErrCodeQueryTimeout             ErrorCode = "QUERY_TIMEOUT"
	ErrCodeDatabaseInsertFailed     ErrorCode = "DATABASE_INSERT_FAILED"

	ErrCodeElasticsearchConnectionFailed ErrorCode = "ELASTICSEARCH_CONNECTION_FAILED"
	ErrCodeSearchQueryFailed             ErrorCode = "SEARCH_QUERY_FAILED"
	ErrCodeIndexNotFound                 ErrorCode = "INDEX_NOT_FOUND"

	ErrCodeNotificationSendFailed ErrorCode = "NOTIFICATION_SEND_FAILED"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// ==========================
// 2. BPMN Error Integration
// ==========================

// BPMNError represents an error that can be thrown to the Camunda workflow engine.
type BPMNError struct {
	Code           string                 `json:"code"`
	Message        string                 `json:"message"`
	Details        string                 `json:"details,omitempty"`
	Retryable      bool                   `json:"retryable"`
	Retries        int                    `json:"retries"`
	ErrorVariables map[string]interface{} `json:"errorVariables,omitempty"`
}

func (e *BPMNError) Error() string {
	return fmt.Sprintf("BPMNError[%s]: %s", e.Code, e.Message)
}

// ToErrorVariables returns a map suitable for setting Camunda job fail variables.
func (e *BPMNError) ToErrorVariables() map[string]interface{} {
	vars := map[string]interface{}{
		"errorCode":    e.Code,
		"errorMessage": e.Message,
		"errorDetails": e.Details,
		"retryable":    e.Retryable,
	}

	if e.ErrorVariables != nil {
		for k, v := range e.ErrorVariables {
			vars[k] = v
		}
	}

	return vars
}

// ==========================
// 3. Error Constructors
// ==========================

// NewNoAddressDataError creates a non-retryable error for locations without
// any geocodable address fields.
func NewNoAddressDataError(locationID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeNoAddressData,
		Message:   "Location has no city or postal code to resolve",
		Details:   fmt.Sprintf("locationId: %s", locationID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewGeocodingUnavailableError creates a retryable error for geocoding outages.
func NewGeocodingUnavailableError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeGeocodingUnavailable,
		Message:   "Geocoding service and static fallback both failed",
		Details:   details,
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewGeocodingTimeoutError creates a retryable geocoding timeout error.
func NewGeocodingTimeoutError() *StandardError {
	return &StandardError{
		Code:      ErrCodeGeocodingTimeout,
		Message:   "Geocoding service timeout",
		Details:   "Geocoding call exceeded timeout threshold",
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewNoCoverageError creates a non-retryable error for locations outside
// every representative's territory.
func NewNoCoverageError(locationID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeNoCoverage,
		Message:   "Location is outside all coverage areas",
		Details:   fmt.Sprintf("locationId: %s", locationID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewInvalidTerritoryConfigError creates a non-retryable territory definition error.
func NewInvalidTerritoryConfigError(repID string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidTerritoryConfig,
		Message:   "Representative territory definition is invalid",
		Details:   fmt.Sprintf("representativeId: %s, error: %s", repID, err.Error()),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewLocationNotFoundError creates a non-retryable location lookup error.
func NewLocationNotFoundError(locationID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeLocationNotFound,
		Message:   "Business location not found",
		Details:   fmt.Sprintf("locationId: %s", locationID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewRepresentativeNotFoundError creates a non-retryable representative lookup error.
func NewRepresentativeNotFoundError(repID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeRepresentativeNotFound,
		Message:   "Representative not found",
		Details:   fmt.Sprintf("representativeId: %s", repID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewResyncFailedError creates a retryable batch re-sync error.
func NewResyncFailedError(repID string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeResyncFailed,
		Message:   "Territory re-sync failed",
		Details:   fmt.Sprintf("representativeId: %s, error: %s", repID, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewDatabaseConnectionFailedError creates a retryable database connection error.
func NewDatabaseConnectionFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeDatabaseConnectionFailed,
		Message:   "Database connection error",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewQueryExecutionFailedError creates a retryable query execution error.
func NewQueryExecutionFailedError(queryType string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeQueryExecutionFailed,
		Message:   "Database query execution error",
		Details:   fmt.Sprintf("queryType: %s, error: %s", queryType, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewQueryTimeoutError creates a retryable query timeout error.
func NewQueryTimeoutError(queryType string) *StandardError {
	return &StandardError{
		Code:      ErrCodeQueryTimeout,
		Message:   "Database query timeout",
		Details:   fmt.Sprintf("queryType: %s", queryType),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewDatabaseInsertFailedError creates a retryable database insert error.
func NewDatabaseInsertFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeDatabaseInsertFailed,
		Message:   "Database insert operation failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewElasticsearchConnectionFailedError creates a retryable Elasticsearch connection error.
func NewElasticsearchConnectionFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeElasticsearchConnectionFailed,
		Message:   "Elasticsearch connection error",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewSearchQueryFailedError creates a retryable search query error.
func NewSearchQueryFailedError(queryType string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeSearchQueryFailed,
		Message:   "Elasticsearch query error",
		Details:   fmt.Sprintf("queryType: %s, error: %s", queryType, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewIndexNotFoundError creates a non-retryable index not found error.
func NewIndexNotFoundError(indexName string) *StandardError {
	return &StandardError{
		Code:      ErrCodeIndexNotFound,
		Message:   "Elasticsearch index not found",
		Details:   fmt.Sprintf("indexName: %s", indexName),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewNotificationSendFailedError creates a retryable notification send error.
func NewNotificationSendFailedError(notificationType string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeNotificationSendFailed,
		Message:   "Notification delivery failed",
		Details:   fmt.Sprintf("type: %s, error: %s", notificationType, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// Generic constructors

func NewBusinessRuleError(message, details string) *StandardError {
	return &StandardError{
		Code:      "BUSINESS_RULE_VIOLATION",
		Message:   message,
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func NewExternalServiceError(service string, err error) *StandardError {
	return &StandardError{
		Code:      "EXTERNAL_SERVICE_ERROR",
		Message:   fmt.Sprintf("External service '%s' error", service),
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

func NewTimeoutError(service string, err error) *StandardError {
	return &StandardError{
		Code:      "TIMEOUT_ERROR",
		Message:   fmt.Sprintf("Service '%s' timeout", service),
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

func NewResourceNotFoundError(service, details string) *StandardError {
	return &StandardError{
		Code:      "RESOURCE_NOT_FOUND",
		Message:   fmt.Sprintf("Resource not found in %s", service),
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// ==========================
// 4. Error Conversion to BPMN
// ==========================

// BPMNErrorMapping maps internal error codes to BPMN error codes (same as internal).
var BPMNErrorMapping = map[ErrorCode]string{
	ErrCodeNoAddressData:                 "NO_ADDRESS_DATA",
	ErrCodeGeocodingUnavailable:          "GEOCODING_UNAVAILABLE",
	ErrCodeGeocodingTimeout:              "GEOCODING_TIMEOUT",
	ErrCodeNoCoverage:                    "NO_COVERAGE",
	ErrCodeInvalidTerritoryConfig:        "INVALID_TERRITORY_CONFIG",
	ErrCodeLocationNotFound:              "LOCATION_NOT_FOUND",
	ErrCodeRepresentativeNotFound:        "REPRESENTATIVE_NOT_FOUND",
	ErrCodeResyncFailed:                  "RESYNC_FAILED",
	ErrCodeDatabaseConnectionFailed:      "DATABASE_CONNECTION_FAILED",
	ErrCodeQueryExecutionFailed:          "QUERY_EXECUTION_FAILED",
	ErrCodeQueryTimeout:                  "QUERY_TIMEOUT",
	ErrCodeDatabaseInsertFailed:          "DATABASE_INSERT_FAILED",
	ErrCodeElasticsearchConnectionFailed: "ELASTICSEARCH_CONNECTION_FAILED",
	ErrCodeSearchQueryFailed:             "SEARCH_QUERY_FAILED",
	ErrCodeIndexNotFound:                 "INDEX_NOT_FOUND",
	ErrCodeNotificationSendFailed:        "NOTIFICATION_SEND_FAILED",
}

// GetRetryCount returns the recommended retry count per error code.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeDatabaseConnectionFailed,
		ErrCodeQueryExecutionFailed,
		ErrCodeDatabaseInsertFailed,
		ErrCodeElasticsearchConnectionFailed,
		ErrCodeSearchQueryFailed,
		ErrCodeNotificationSendFailed,
		ErrCodeResyncFailed:
		return 3 // Retryable technical errors

	case ErrCodeQueryTimeout,
		ErrCodeGeocodingTimeout,
		ErrCodeGeocodingUnavailable:
		return 2 // Partial retry for timeouts and outages

	default:
		return 0 // Business errors: no retry
	}
}

// ConvertToBPMNError converts a StandardError to a BPMNError for Camunda.
func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	bpmnCode, exists := BPMNErrorMapping[stdErr.Code]
	if !exists {
		bpmnCode = string(stdErr.Code) // Fallback
	}

	retries := GetRetryCount(stdErr.Code)
	if !stdErr.Retryable {
		retries = 0
	}

	return &BPMNError{
		Code:      bpmnCode,
		Message:   stdErr.Message,
		Details:   stdErr.Details,
		Retryable: stdErr.Retryable,
		Retries:   retries,
		ErrorVariables: map[string]interface{}{
			"originalErrorCode": string(stdErr.Code),
			"timestamp":         stdErr.Timestamp.Format(time.RFC3339),
		},
	}
}

// ==========================
// 5. Utility Functions
// ==========================

// IsRetryableErrorCode checks if an error code is retryable.
func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "GEOCODING"):
		return "GEOCODING"
	case strings.Contains(codeStr, "TERRITORY") || strings.Contains(codeStr, "COVERAGE") || strings.Contains(codeStr, "RESYNC"):
		return "TERRITORY"
	case strings.Contains(codeStr, "DATABASE") || strings.Contains(codeStr, "QUERY"):
		return "DATABASE"
	case strings.Contains(codeStr, "ELASTICSEARCH") || strings.Contains(codeStr, "SEARCH") || strings.Contains(codeStr, "INDEX"):
		return "SEARCH"
	case strings.Contains(codeStr, "NOTIFICATION"):
		return "NOTIFICATION"
	case strings.Contains(codeStr, "NOT_FOUND") || strings.Contains(codeStr, "NO_ADDRESS"):
		return "LOOKUP"
	default:
		return "OTHER"
	}
}
