package errors

import (
	stdErrors "errors"
	"fmt"
	"net/http"
	"strings"
)

type Code string

const (
	CodeValidation      Code = "VALIDATION_ERROR"
	CodeAuthExpired     Code = "AUTH_EXPIRED"
	CodeAuthFailed      Code = "AUTH_FAILED"
	CodeInvalidQuantity Code = "INVALID_QUANTITY"
	CodeNotFound        Code = "NOT_FOUND"
	CodeNetwork         Code = "NETWORK_ERROR"
	CodeServer          Code = "SERVER_ERROR"
	CodeInternal        Code = "INTERNAL_ERROR"
)

// Metadata describes how a failure is surfaced to the person using the app.
// UserRetry means the action may be re-initiated by the user; nothing is
// ever retried automatically.
type Metadata struct {
	UserMessage  string
	UserRetry    bool
	ForcesLogout bool
	ShowsDetails bool
}

var metadataByCode = map[Code]Metadata{
	CodeValidation: {
		UserMessage:  "필수 항목을 입력해주세요.",
		UserRetry:    true,
		ShowsDetails: true,
	},
	CodeAuthExpired: {
		UserMessage:  "로그인이 만료되었습니다. 다시 로그인해주세요.",
		ForcesLogout: true,
	},
	CodeAuthFailed: {
		UserMessage: "로그인에 실패했습니다.",
		UserRetry:   true,
	},
	CodeInvalidQuantity: {
		UserMessage:  "수량이 올바르지 않습니다.",
		ShowsDetails: true,
	},
	CodeNotFound: {
		UserMessage: "요청한 정보를 찾을 수 없습니다.",
	},
	CodeNetwork: {
		UserMessage: "네트워크 연결을 확인해주세요.",
		UserRetry:   true,
	},
	CodeServer: {
		UserMessage:  "처리 중 문제가 발생했습니다.",
		UserRetry:    true,
		ShowsDetails: true,
	},
	CodeInternal: {
		UserMessage: "처리 중 문제가 발생했습니다.",
		UserRetry:   true,
	},
}

func MetadataFor(code Code) Metadata {
	if meta, ok := metadataByCode[code]; ok {
		return meta
	}
	return metadataByCode[CodeInternal]
}

type Error struct {
	code    Code
	message string
	details any
	cause   error
}

func New(code Code, message string) *Error {
	return &Error{code: code, message: message}
}

func Wrap(code Code, err error, message string) *Error {
	if err == nil {
		return New(code, message)
	}
	return &Error{code: code, message: message, cause: err}
}

func (e *Error) Code() Code {
	if e == nil {
		return CodeInternal
	}
	return e.code
}

func (e *Error) Message() string {
	if e == nil {
		return ""
	}
	return e.message
}

func (e *Error) Details() any {
	if e == nil {
		return nil
	}
	return e.details
}

func (e *Error) WithDetails(details any) *Error {
	if e == nil {
		return nil
	}
	e.details = details
	return e
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("%s: %s", e.code, e.message)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.cause
}

func As(err error) *Error {
	if err == nil {
		return nil
	}
	var typed *Error
	if stdErrors.As(err, &typed) {
		return typed
	}
	return nil
}

// CodeOf returns the typed code for err, CodeInternal for untyped errors.
func CodeOf(err error) Code {
	if typed := As(err); typed != nil {
		return typed.Code()
	}
	return CodeInternal
}

func IsAuthExpired(err error) bool {
	return err != nil && CodeOf(err) == CodeAuthExpired
}

func IsValidation(err error) bool {
	return err != nil && CodeOf(err) == CodeValidation
}

// FromStatus classifies a non-2xx backend response.
func FromStatus(status int, body string) *Error {
	body = strings.TrimSpace(body)
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return New(CodeAuthExpired, fmt.Sprintf("backend rejected credentials (status %d)", status))
	case status == http.StatusNotFound:
		return New(CodeNotFound, fallback(body, "resource not found"))
	case status >= 400 && status < 500:
		return New(CodeServer, fallback(body, fmt.Sprintf("request rejected (status %d)", status))).
			WithDetails(map[string]any{"status": status})
	default:
		return New(CodeServer, fmt.Sprintf("backend error (status %d)", status)).
			WithDetails(map[string]any{"status": status, "body": body})
	}
}

// UserMessage returns the text an alert should show for err.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	typed := As(err)
	if typed == nil {
		return MetadataFor(CodeInternal).UserMessage
	}
	meta := MetadataFor(typed.Code())
	if meta.ShowsDetails && typed.Message() != "" {
		return typed.Message()
	}
	return meta.UserMessage
}

func fallback(value, def string) string {
	if value == "" {
		return def
	}
	return value
}
