// Package httperror 는 도메인 오류를 API 오류 응답으로 바꾼다.
package httperror

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/park285/tig-search-go/internal/search"
	"github.com/park285/tig-search-go/internal/store"
	"github.com/park285/tig-search-go/internal/tigmorph"
)

// ErrorCode 는 API 오류 코드다.
type ErrorCode string

// API 오류 코드
const (
	ErrorCodeInternal       ErrorCode = "INTERNAL_ERROR"
	ErrorCodeValidation     ErrorCode = "VALIDATION_ERROR"
	ErrorCodeUnauthorized   ErrorCode = "UNAUTHORIZED"
	ErrorCodeHTTPRateLimit  ErrorCode = "HTTP_RATE_LIMIT"
	ErrorCodeInvalidInput   ErrorCode = "INVALID_INPUT"
	ErrorCodeMissingField   ErrorCode = "MISSING_FIELD"
	ErrorCodeIndexNotLoaded ErrorCode = "INDEX_NOT_LOADED"
	ErrorCodeIndexStore     ErrorCode = "INDEX_STORE_ERROR"
	ErrorCodeLexicon        ErrorCode = "LEXICON_ERROR"
	ErrorCodeTimeout        ErrorCode = "REQUEST_TIMEOUT"
)

// 코드별 기본 HTTP 상태와 오류 타입 이름
var codeMeta = map[ErrorCode]struct {
	status int
	kind   string
}{
	ErrorCodeInternal:       {http.StatusInternalServerError, "InternalError"},
	ErrorCodeValidation:     {http.StatusUnprocessableEntity, "ValidationError"},
	ErrorCodeUnauthorized:   {http.StatusUnauthorized, "UnauthorizedError"},
	ErrorCodeHTTPRateLimit:  {http.StatusTooManyRequests, "HTTPRateLimitExceededError"},
	ErrorCodeInvalidInput:   {http.StatusBadRequest, "InvalidInputError"},
	ErrorCodeMissingField:   {http.StatusBadRequest, "MissingFieldError"},
	ErrorCodeIndexNotLoaded: {http.StatusServiceUnavailable, "IndexNotLoadedError"},
	ErrorCodeIndexStore:     {http.StatusServiceUnavailable, "IndexStoreError"},
	ErrorCodeLexicon:        {http.StatusInternalServerError, "LexiconError"},
	ErrorCodeTimeout:        {http.StatusGatewayTimeout, "TimeoutError"},
}

// ErrorResponse 는 API 오류 응답 본문이다. request_id 는 없으면 null 이다.
type ErrorResponse struct {
	ErrorCode string         `json:"error_code"`
	ErrorType string         `json:"error_type"`
	Message   string         `json:"message"`
	RequestID *string        `json:"request_id"`
	Details   map[string]any `json:"details"`
}

// Error: API 로 노출되는 오류입니다. Cause 는 응답에 포함되지 않습니다.
type Error struct {
	Code    ErrorCode
	Status  int
	Type    string
	Message string
	Details map[string]any
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Cause }

// New 는 코드의 기본 상태와 타입으로 오류를 만든다.
func New(code ErrorCode, message string, details map[string]any) *Error {
	meta, ok := codeMeta[code]
	if !ok {
		meta = codeMeta[ErrorCodeInternal]
	}
	return &Error{Code: code, Status: meta.status, Type: meta.kind, Message: message, Details: details}
}

// WithStatus 는 기본 HTTP 상태를 바꾼 복사본을 반환한다.
func (e *Error) WithStatus(status int) *Error {
	cp := *e
	cp.Status = status
	return &cp
}

// Response 는 오류를 HTTP 상태와 응답 본문으로 바꾼다.
func Response(err error, requestID string) (int, ErrorResponse) {
	apiErr := FromError(err)
	if apiErr == nil {
		apiErr = NewInternalError("unknown error")
	}

	body := ErrorResponse{
		ErrorCode: string(apiErr.Code),
		ErrorType: apiErr.Type,
		Message:   apiErr.Message,
		Details:   apiErr.Details,
	}
	if requestID != "" {
		body.RequestID = &requestID
	}
	return apiErr.Status, body
}

// FromError 는 도메인 오류를 API 오류로 바꾼다. 모르는 오류는 500 이다.
func FromError(err error) *Error {
	if err == nil {
		return nil
	}

	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr
	}
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		return NewValidationError(err)
	}

	switch {
	case errors.Is(err, search.ErrEmptyQuery):
		return NewMissingField("query")
	case errors.Is(err, search.ErrIndexNotLoaded):
		return NewIndexNotLoaded()
	case errors.Is(err, search.ErrNoLoader):
		return NewIndexStoreError("Index store not configured", http.StatusServiceUnavailable)
	case errors.Is(err, store.ErrUnsupportedDriver):
		return NewIndexStoreError(err.Error(), http.StatusInternalServerError)
	case errors.Is(err, tigmorph.ErrEmptyLexicon):
		return New(ErrorCodeLexicon, err.Error(), nil)
	case errors.Is(err, context.DeadlineExceeded):
		return New(ErrorCodeTimeout, "Request timed out", nil)
	}

	internal := NewInternalError(err.Error())
	internal.Cause = err
	return internal
}

// NewInternalError 는 500 오류다.
func NewInternalError(message string) *Error {
	return New(ErrorCodeInternal, message, nil)
}

// NewValidationError 는 본문 검증 실패(422)다.
func NewValidationError(err error) *Error {
	return New(ErrorCodeValidation, "Input validation failed", validationDetails(err))
}

// NewMissingField 는 필수 필드 누락(400)이다.
func NewMissingField(field string) *Error {
	return New(ErrorCodeMissingField, fmt.Sprintf("Field '%s' required", field), map[string]any{"field": field})
}

// NewInvalidInput 는 해석할 수 없는 입력(400)이다.
func NewInvalidInput(message string) *Error {
	return New(ErrorCodeInvalidInput, message, nil)
}

// NewUnauthorized 는 API 키 불일치(401)다.
func NewUnauthorized(details map[string]any) *Error {
	return New(ErrorCodeUnauthorized, "Invalid API key", details)
}

// NewRateLimitExceeded 는 요청 제한 초과(429)다.
func NewRateLimitExceeded(details map[string]any) *Error {
	return New(ErrorCodeHTTPRateLimit, "Rate limit exceeded", details)
}

// NewIndexNotLoaded 는 색인 미로드(503)다.
func NewIndexNotLoaded() *Error {
	return New(ErrorCodeIndexNotLoaded, "Search index not loaded", nil)
}

// NewIndexStoreError 는 색인 저장소 오류다.
func NewIndexStoreError(message string, status int) *Error {
	return New(ErrorCodeIndexStore, message, nil).WithStatus(status)
}

// FieldError 는 필드 하나의 검증 실패 정보다.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Value   any    `json:"value"`
}

func validationDetails(err error) map[string]any {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return map[string]any{"errors": []FieldError{{Field: "body", Message: err.Error()}}}
	}

	fields := make([]FieldError, 0, len(validationErrors))
	for _, fe := range validationErrors {
		fields = append(fields, FieldError{Field: fe.Field(), Message: fe.Error(), Value: fe.Value()})
	}
	return map[string]any{"errors": fields}
}
