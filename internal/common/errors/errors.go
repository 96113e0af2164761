package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"time"
)

type ErrorCode string

// Contract violations. The caller sent something the workers cannot act on;
// retrying the same job can never succeed.
const (
	ErrCodeInvalidInput            ErrorCode = "INVALID_INPUT"
	ErrCodeInvalidLookup           ErrorCode = "INVALID_LOOKUP"
	ErrCodeInvalidPlan             ErrorCode = "INVALID_PLAN"
	ErrCodeJobNotFound             ErrorCode = "JOB_NOT_FOUND"
	ErrCodeConversationNotFound    ErrorCode = "CONVERSATION_NOT_FOUND"
	ErrCodeNannyNotFound           ErrorCode = "NANNY_NOT_FOUND"
	ErrCodeFamilyNotFound          ErrorCode = "FAMILY_NOT_FOUND"
	ErrCodeNotificationTypeUnknown ErrorCode = "NOTIFICATION_TYPE_UNKNOWN"
)

// Infrastructure failures.
const (
	ErrCodeDatabaseConnectionFailed ErrorCode = "DATABASE_CONNECTION_FAILED"
	ErrCodeDatabaseQueryFailed      ErrorCode = "DATABASE_QUERY_FAILED"
	ErrCodeQueryTimeout             ErrorCode = "QUERY_TIMEOUT"
	ErrCodeSearchQueryFailed        ErrorCode = "SEARCH_QUERY_FAILED"
	ErrCodeSearchTimeout            ErrorCode = "SEARCH_TIMEOUT"
	ErrCodeNotificationSendFailed   ErrorCode = "NOTIFICATION_SEND_FAILED"
	ErrCodeCacheInvalidationFailed  ErrorCode = "CACHE_INVALIDATION_FAILED"
	ErrCodeInternal                 ErrorCode = "INTERNAL_ERROR"
)

type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
	cause     error
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

func (e *StandardError) Unwrap() error { return e.cause }

// WithMetadata attaches a key to the error's metadata and returns the error.
func (e *StandardError) WithMetadata(key string, value interface{}) *StandardError {
	if e.Metadata == nil {
		e.Metadata = make(map[string]interface{})
	}
	e.Metadata[key] = value
	return e
}

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

func (e *BPMNError) ToErrorVariables() map[string]interface{} {
	vars := map[string]interface{}{
		"errorCode":    e.Code,
		"errorMessage": e.Message,
		"errorDetails": e.Details,
		"retryable":    e.Retryable,
	}
	for k, v := range e.ErrorVariables {
		vars[k] = v
	}
	return vars
}

func newError(code ErrorCode, message, details string, retryable bool, cause error) *StandardError {
	return &StandardError{
		Code:      code,
		Message:   message,
		Details:   details,
		Retryable: retryable,
		Timestamp: time.Now().UTC(),
		cause:     cause,
	}
}

func NewInvalidInputError(details string) *StandardError {
	return newError(ErrCodeInvalidInput, "Invalid job variables", details, false, nil)
}

func NewInvalidLookupError(cause error) *StandardError {
	return newError(ErrCodeInvalidLookup, "Exactly one of nannyId or familyId is required", cause.Error(), false, cause)
}

func NewInvalidPlanError(cause error) *StandardError {
	return newError(ErrCodeInvalidPlan, "Unknown subscription plan", cause.Error(), false, cause)
}

func NewJobNotFoundError(jobID int64) *StandardError {
	return newError(ErrCodeJobNotFound, "Job posting not found", fmt.Sprintf("jobId: %d", jobID), false, nil)
}

func NewConversationNotFoundError(conversationID int64) *StandardError {
	return newError(ErrCodeConversationNotFound, "Conversation not found", fmt.Sprintf("conversationId: %d", conversationID), false, nil)
}

func NewNannyNotFoundError(nannyID int64) *StandardError {
	return newError(ErrCodeNannyNotFound, "Nanny profile not found", fmt.Sprintf("nannyId: %d", nannyID), false, nil)
}

func NewFamilyNotFoundError(familyID int64) *StandardError {
	return newError(ErrCodeFamilyNotFound, "Family profile not found", fmt.Sprintf("familyId: %d", familyID), false, nil)
}

func NewNotificationTypeUnknownError(notificationType string) *StandardError {
	return newError(ErrCodeNotificationTypeUnknown, "Unknown notification type", fmt.Sprintf("type: %s", notificationType), false, nil)
}

func NewDatabaseConnectionFailedError(err error) *StandardError {
	return newError(ErrCodeDatabaseConnectionFailed, "Database connection error", err.Error(), true, err)
}

func NewDatabaseQueryFailedError(operation string, err error) *StandardError {
	return newError(ErrCodeDatabaseQueryFailed, "Database query failed",
		fmt.Sprintf("operation: %s, error: %s", operation, err.Error()), true, err)
}

func NewQueryTimeoutError(operation string) *StandardError {
	return newError(ErrCodeQueryTimeout, "Database query timeout", fmt.Sprintf("operation: %s", operation), true, nil)
}

func NewSearchQueryFailedError(index string, err error) *StandardError {
	return newError(ErrCodeSearchQueryFailed, "Elasticsearch query error",
		fmt.Sprintf("index: %s, error: %s", index, err.Error()), true, err)
}

func NewSearchTimeoutError(index string) *StandardError {
	return newError(ErrCodeSearchTimeout, "Elasticsearch query timeout", fmt.Sprintf("index: %s", index), true, nil)
}

func NewNotificationSendFailedError(channel string, err error) *StandardError {
	return newError(ErrCodeNotificationSendFailed, "Notification delivery failed",
		fmt.Sprintf("channel: %s, error: %s", channel, err.Error()), true, err)
}

func NewCacheInvalidationFailedError(key string, err error) *StandardError {
	return newError(ErrCodeCacheInvalidationFailed, "Cache invalidation failed",
		fmt.Sprintf("key: %s, error: %s", key, err.Error()), true, err)
}

// AsStandardError unwraps err looking for a StandardError.
func AsStandardError(err error) (*StandardError, bool) {
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr, true
	}
	return nil, false
}

// BPMNErrorMapping is the set of codes modelled as boundary events in the
// process definitions. Codes outside it fall back to their own name.
var BPMNErrorMapping = map[ErrorCode]string{
	ErrCodeInvalidInput:             "INVALID_INPUT",
	ErrCodeInvalidLookup:            "INVALID_LOOKUP",
	ErrCodeInvalidPlan:              "INVALID_PLAN",
	ErrCodeJobNotFound:              "JOB_NOT_FOUND",
	ErrCodeConversationNotFound:     "CONVERSATION_NOT_FOUND",
	ErrCodeNannyNotFound:            "NANNY_NOT_FOUND",
	ErrCodeFamilyNotFound:           "FAMILY_NOT_FOUND",
	ErrCodeNotificationTypeUnknown:  "NOTIFICATION_TYPE_UNKNOWN",
	ErrCodeDatabaseConnectionFailed: "DATABASE_CONNECTION_FAILED",
	ErrCodeDatabaseQueryFailed:      "DATABASE_QUERY_FAILED",
	ErrCodeQueryTimeout:             "QUERY_TIMEOUT",
	ErrCodeSearchQueryFailed:        "SEARCH_QUERY_FAILED",
	ErrCodeSearchTimeout:            "SEARCH_TIMEOUT",
	ErrCodeNotificationSendFailed:   "NOTIFICATION_SEND_FAILED",
	ErrCodeCacheInvalidationFailed:  "CACHE_INVALIDATION_FAILED",
}

func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeDatabaseConnectionFailed,
		ErrCodeDatabaseQueryFailed,
		ErrCodeSearchQueryFailed,
		ErrCodeNotificationSendFailed,
		ErrCodeCacheInvalidationFailed:
		return 3
	case ErrCodeQueryTimeout,
		ErrCodeSearchTimeout:
		return 2
	default:
		return 0
	}
}

func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	bpmnCode, ok := BPMNErrorMapping[stdErr.Code]
	if !ok {
		bpmnCode = string(stdErr.Code)
	}

	retries := GetRetryCount(stdErr.Code)
	if !stdErr.Retryable {
		retries = 0
	}

	vars := map[string]interface{}{
		"originalErrorCode": string(stdErr.Code),
		"timestamp":         stdErr.Timestamp.Format(time.RFC3339),
	}
	for k, v := range stdErr.Metadata {
		vars[k] = v
	}

	return &BPMNError{
		Code:           bpmnCode,
		Message:        stdErr.Message,
		Details:        stdErr.Details,
		Retryable:      stdErr.Retryable,
		Retries:        retries,
		ErrorVariables: vars,
	}
}

func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

func GetErrorCategory(code ErrorCode) string {
	s := string(code)
	switch {
	case strings.HasPrefix(s, "INVALID"):
		return "CONTRACT"
	case strings.HasSuffix(s, "NOT_FOUND"):
		return "LOOKUP"
	case strings.Contains(s, "DATABASE") || strings.Contains(s, "QUERY_TIMEOUT"):
		return "DATABASE"
	case strings.Contains(s, "SEARCH"):
		return "SEARCH"
	case strings.Contains(s, "NOTIFICATION"):
		return "NOTIFICATION"
	case strings.HasPrefix(s, "CACHE"):
		return "CACHE"
	default:
		return "OTHER"
	}
}
