package service

import (
	"errors"
	"fmt"
)

const CodeValidation = "VALIDATION_ERROR"
const CodeNotFound = "NOT_FOUND"
const CodeTitleConflict = "TITLE_CONFLICT"
const CodeVersionConflict = "VERSION_CONFLICT"
const CodeNoUsers = "NO_USERS"
const CodeUserExists = "USER_EXISTS"
const CodeInvalidCredentials = "INVALID_CREDENTIALS"
const CodeUnauthorized = "UNAUTHORIZED"

// BusinessError - ошибка бизнес-логики.
// Message уходит клиенту как есть, Details - дополнительный контекст
type BusinessError struct {
	Code    string
	Message string
	Details map[string]any
	Err     error
}

type Detail struct {
	Key     string
	Payload any
}

func (b *BusinessError) Error() string {
	if b.Err != nil {
		return fmt.Sprintf("[%s] %s: %s", b.Code, b.Message, b.Err.Error())
	}
	return fmt.Sprintf("[%s] %s", b.Code, b.Message)
}

func (b *BusinessError) Unwrap() error {
	return b.Err
}

func AsBusinessError(err error) (*BusinessError, bool) {
	var busErr *BusinessError
	ok := errors.As(err, &busErr)
	return busErr, ok
}

func ToDetail(key string, payload any) Detail {
	return Detail{
		Key:     key,
		Payload: payload,
	}
}

func NewBusinessError(code string, message string, details ...Detail) *BusinessError {
	busErr := &BusinessError{
		Code:    code,
		Message: message,
		Details: make(map[string]any),
	}

	for _, detail := range details {
		busErr.Details[detail.Key] = detail.Payload
	}

	return busErr
}

func NewValidationError(message string, details ...Detail) *BusinessError {
	return NewBusinessError(CodeValidation, message, details...)
}

func NewNotFound(resource string) *BusinessError {
	return NewBusinessError(CodeNotFound, fmt.Sprintf("%s not found", resource))
}

func NewTitleConflict() *BusinessError {
	return NewBusinessError(CodeTitleConflict, "Task title must be unique")
}

// NewVersionConflict возвращает клиенту актуальное серверное состояние задачи,
// чтобы он мог разрешить конфликт сам
func NewVersionConflict(serverVersion any, lastModifiedBy string) *BusinessError {
	return NewBusinessError(CodeVersionConflict,
		"Conflict: Task has been modified by another user.",
		ToDetail("serverVersion", serverVersion),
		ToDetail("lastModifiedBy", lastModifiedBy),
	)
}

func NewNoUsers() *BusinessError {
	return NewBusinessError(CodeNoUsers, "No users available for assignment.")
}

func NewUserExists() *BusinessError {
	return NewBusinessError(CodeUserExists, "User already exists")
}

func NewInvalidCredentials() *BusinessError {
	return NewBusinessError(CodeInvalidCredentials, "Invalid credentials")
}

func NewUnauthorized() *BusinessError {
	return NewBusinessError(CodeUnauthorized, "Not authorized")
}
