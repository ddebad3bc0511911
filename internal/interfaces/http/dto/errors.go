package dto

import (
	"net/http"
	"strings"
)

// Error code constants organized by category
// Format: ERR_<CATEGORY>_<DESCRIPTION>

// General error codes
const (
	// ErrCodeUnknown is used when the error type is unknown
	ErrCodeUnknown = "ERR_UNKNOWN"
	// ErrCodeInternal is used for internal server errors
	ErrCodeInternal = "ERR_INTERNAL"
	// ErrCodeUnavailable is used when an optional backend (storage, PDF) is not configured
	ErrCodeUnavailable = "ERR_UNAVAILABLE"
)

// Validation error codes
const (
	// ErrCodeValidation is the base code for validation errors
	ErrCodeValidation = "ERR_VALIDATION"
	// ErrCodeValidationRequired is used when a required field is missing
	ErrCodeValidationRequired = "ERR_VALIDATION_REQUIRED"
	// ErrCodeValidationFormat is used when a field has invalid format
	ErrCodeValidationFormat = "ERR_VALIDATION_FORMAT"
	// ErrCodeValidationRange is used when a value is out of range
	ErrCodeValidationRange = "ERR_VALIDATION_RANGE"
	// ErrCodeValidationLength is used when a field length is invalid
	ErrCodeValidationLength = "ERR_VALIDATION_LENGTH"
)

// Authentication error codes
const (
	// ErrCodeUnauthorized is used when authentication is required but missing/invalid
	ErrCodeUnauthorized = "ERR_UNAUTHORIZED"
	// ErrCodeForbidden is used when the user lacks permission
	ErrCodeForbidden = "ERR_FORBIDDEN"
	// ErrCodeTokenExpired is used when the auth token has expired
	ErrCodeTokenExpired = "ERR_TOKEN_EXPIRED"
	// ErrCodeTokenInvalid is used when the auth token is invalid
	ErrCodeTokenInvalid = "ERR_TOKEN_INVALID"
	// ErrCodeTokenRevoked is used when a logged-out token is presented again
	ErrCodeTokenRevoked = "ERR_TOKEN_REVOKED"
	// ErrCodeInvalidCredentials is used when a login fails
	ErrCodeInvalidCredentials = "ERR_INVALID_CREDENTIALS"
	// ErrCodeAccountLocked is used after too many failed logins
	ErrCodeAccountLocked = "ERR_ACCOUNT_LOCKED"
	// ErrCodeProfileNotLinked is used when a student or parent account has no profile record
	ErrCodeProfileNotLinked = "ERR_PROFILE_NOT_LINKED"
)

// Resource error codes
const (
	// ErrCodeNotFound is used when a resource is not found
	ErrCodeNotFound = "ERR_NOT_FOUND"
	// ErrCodeAlreadyExists is used when trying to create a duplicate resource
	ErrCodeAlreadyExists = "ERR_ALREADY_EXISTS"
	// ErrCodeConflict is used for general resource conflicts
	ErrCodeConflict = "ERR_CONFLICT"
	// ErrCodeConcurrencyConflict is used when optimistic locking fails
	ErrCodeConcurrencyConflict = "ERR_CONCURRENCY_CONFLICT"
	// ErrCodeInUse is used when a resource is still referenced
	ErrCodeInUse = "ERR_IN_USE"
)

// Business rule error codes
const (
	// ErrCodeInvalidState is used when an operation is invalid for current state
	ErrCodeInvalidState = "ERR_INVALID_STATE"
	// ErrCodeBusinessRule is used for generic business rule violations
	ErrCodeBusinessRule = "ERR_BUSINESS_RULE"
	// ErrCodeInsufficientStock is used when an adjustment would make stock negative
	ErrCodeInsufficientStock = "ERR_INSUFFICIENT_STOCK"
	// ErrCodePaymentExceedsBalance is used when a payment is larger than the invoice balance
	ErrCodePaymentExceedsBalance = "ERR_PAYMENT_EXCEEDS_BALANCE"
	// ErrCodeClassFull is used when a class has no remaining capacity
	ErrCodeClassFull = "ERR_CLASS_FULL"
)

// Input error codes
const (
	// ErrCodeBadRequest is used for malformed requests
	ErrCodeBadRequest = "ERR_BAD_REQUEST"
	// ErrCodeInvalidInput is used for invalid input data
	ErrCodeInvalidInput = "ERR_INVALID_INPUT"
	// ErrCodeInvalidJSON is used when JSON parsing fails
	ErrCodeInvalidJSON = "ERR_INVALID_JSON"
	// ErrCodePayloadTooLarge is used when the request body exceeds the limit
	ErrCodePayloadTooLarge = "ERR_PAYLOAD_TOO_LARGE"
)

// Rate limiting error codes
const (
	// ErrCodeRateLimited is used when rate limit is exceeded
	ErrCodeRateLimited = "ERR_RATE_LIMITED"
	// ErrCodeTooManyRequests is an alias for rate limiting
	ErrCodeTooManyRequests = "ERR_TOO_MANY_REQUESTS"
)

// Optional backend error codes
const (
	// ErrCodeStorageDisabled is used when object storage is not configured
	ErrCodeStorageDisabled = "ERR_STORAGE_DISABLED"
	// ErrCodePDFUnavailable is used when no browser is available to print PDFs
	ErrCodePDFUnavailable = "ERR_PDF_UNAVAILABLE"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	// General errors
	ErrCodeUnknown:     http.StatusInternalServerError,
	ErrCodeInternal:    http.StatusInternalServerError,
	ErrCodeUnavailable: http.StatusServiceUnavailable,

	// Validation errors -> 400 Bad Request
	ErrCodeValidation:         http.StatusBadRequest,
	ErrCodeValidationRequired: http.StatusBadRequest,
	ErrCodeValidationFormat:   http.StatusBadRequest,
	ErrCodeValidationRange:    http.StatusBadRequest,
	ErrCodeValidationLength:   http.StatusBadRequest,

	// Auth errors
	ErrCodeUnauthorized:       http.StatusUnauthorized,
	ErrCodeForbidden:          http.StatusForbidden,
	ErrCodeTokenExpired:       http.StatusUnauthorized,
	ErrCodeTokenInvalid:       http.StatusUnauthorized,
	ErrCodeTokenRevoked:       http.StatusUnauthorized,
	ErrCodeInvalidCredentials: http.StatusUnauthorized,
	ErrCodeAccountLocked:      http.StatusLocked,
	ErrCodeProfileNotLinked:   http.StatusForbidden,

	// Resource errors
	ErrCodeNotFound:            http.StatusNotFound,
	ErrCodeAlreadyExists:       http.StatusConflict,
	ErrCodeConflict:            http.StatusConflict,
	ErrCodeConcurrencyConflict: http.StatusConflict,
	ErrCodeInUse:               http.StatusConflict,

	// Business rule errors -> 422 Unprocessable Entity
	ErrCodeInvalidState:          http.StatusUnprocessableEntity,
	ErrCodeBusinessRule:          http.StatusUnprocessableEntity,
	ErrCodeInsufficientStock:     http.StatusUnprocessableEntity,
	ErrCodePaymentExceedsBalance: http.StatusUnprocessableEntity,
	ErrCodeClassFull:             http.StatusUnprocessableEntity,

	// Input errors -> 400 Bad Request
	ErrCodeBadRequest:      http.StatusBadRequest,
	ErrCodeInvalidInput:    http.StatusBadRequest,
	ErrCodeInvalidJSON:     http.StatusBadRequest,
	ErrCodePayloadTooLarge: http.StatusRequestEntityTooLarge,

	// Rate limiting -> 429 Too Many Requests
	ErrCodeRateLimited:     http.StatusTooManyRequests,
	ErrCodeTooManyRequests: http.StatusTooManyRequests,

	// Optional backends -> 503 Service Unavailable
	ErrCodeStorageDisabled: http.StatusServiceUnavailable,
	ErrCodePDFUnavailable:  http.StatusServiceUnavailable,
}

// Domain services raise specific codes (STUDENT_NOT_FOUND, INVALID_GENDER, ...).
// These families are resolved by prefix first, then by suffix.
var (
	prefixHTTPStatus = []codeRule{
		{"ERR_ALREADY_", http.StatusUnprocessableEntity},
		{"ERR_CANNOT_", http.StatusUnprocessableEntity},
		{"ERR_TOKEN_", http.StatusUnauthorized},
		{"ERR_ACCOUNT_", http.StatusForbidden},
		{"ERR_DUPLICATE_", http.StatusConflict},
		{"ERR_IMPORT_", http.StatusBadRequest},
		{"ERR_INVALID_", http.StatusBadRequest},
	}
	suffixHTTPStatus = []codeRule{
		{"_NOT_FOUND", http.StatusNotFound},
		{"_EXISTS", http.StatusConflict},
		{"_INACTIVE", http.StatusUnprocessableEntity},
		{"_REQUIRED", http.StatusBadRequest},
		{"_TOO_LARGE", http.StatusRequestEntityTooLarge},
	}
)

type codeRule struct {
	affix  string
	status int
}

// GetHTTPStatus returns the HTTP status code for an error code
// Returns 500 Internal Server Error if the error code is not found
func GetHTTPStatus(code string) int {
	if status, ok := lookupStatus(code); ok {
		return status
	}
	return http.StatusInternalServerError
}

// GetDomainHTTPStatus returns the status for a code raised by a domain rule.
// Codes outside every known family are business rule violations.
func GetDomainHTTPStatus(code string) int {
	if status, ok := lookupStatus(code); ok {
		return status
	}
	return http.StatusUnprocessableEntity
}

func lookupStatus(code string) (int, bool) {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status, true
	}
	for _, r := range prefixHTTPStatus {
		if strings.HasPrefix(code, r.affix) {
			return r.status, true
		}
	}
	for _, r := range suffixHTTPStatus {
		if strings.HasSuffix(code, r.affix) {
			return r.status, true
		}
	}
	return 0, false
}

// LegacyErrorCodeMapping maps bare domain codes whose API code differs from ERR_<code>
var LegacyErrorCodeMapping = map[string]string{
	"NOT_FOUND":            ErrCodeNotFound,
	"ALREADY_EXISTS":       ErrCodeAlreadyExists,
	"INVALID_INPUT":        ErrCodeInvalidInput,
	"INVALID_STATE":        ErrCodeInvalidState,
	"UNAUTHORIZED":         ErrCodeUnauthorized,
	"FORBIDDEN":            ErrCodeForbidden,
	"CONCURRENCY_CONFLICT": ErrCodeConcurrencyConflict,
	"VALIDATION_ERROR":     ErrCodeValidation,
	"VALIDATION_FAILED":    ErrCodeValidation,
	"BAD_REQUEST":          ErrCodeBadRequest,
	"INTERNAL_ERROR":       ErrCodeInternal,
	"DB_ERROR":             ErrCodeInternal,
	"NOT_RECIPIENT":        ErrCodeForbidden,
}

// NormalizeErrorCode converts a domain error code to the API format.
// Codes already carrying the ERR_ prefix are returned as-is.
func NormalizeErrorCode(code string) string {
	if newCode, ok := LegacyErrorCodeMapping[code]; ok {
		return newCode
	}
	if code == "" {
		return ErrCodeUnknown
	}
	if strings.HasPrefix(code, "ERR_") {
		return code
	}
	return "ERR_" + code
}
