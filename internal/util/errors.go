package util

import (
	"errors"
	"fmt"
)

var (
	ErrStudentNotFound  = errors.New("student not found")
	ErrSurveyNotFound   = errors.New("survey not found")
	ErrResponseNotFound = errors.New("survey response not found")
	ErrContentNotFound  = errors.New("content not found")
	ErrProfileNotFound  = errors.New("learning style profile not found")

	ErrResponseCompleted    = errors.New("survey response already completed")
	ErrResponseNotCompleted = errors.New("survey response not completed")
	ErrUnauthorized         = errors.New("unauthorized")
	ErrPermissionDenied     = errors.New("permission denied")
)

// ValidationError 请求数据校验错误，直接返回给调用方
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// ExternalServiceError AI 协作服务调用失败。服务层捕获后一律降级为
// 规则计算，不会向上抛出。
type ExternalServiceError struct {
	Op  string
	Err error
}

func (e *ExternalServiceError) Error() string {
	return fmt.Sprintf("external service %s: %v", e.Op, e.Err)
}

func (e *ExternalServiceError) Unwrap() error {
	return e.Err
}

func IsNotFound(err error) bool {
	return errors.Is(err, ErrStudentNotFound) ||
		errors.Is(err, ErrSurveyNotFound) ||
		errors.Is(err, ErrResponseNotFound) ||
		errors.Is(err, ErrContentNotFound) ||
		errors.Is(err, ErrProfileNotFound)
}
