// Package errdefs 定义跨服务层与 HTTP 层共享的错误类别.
// 服务层只返回这些哨兵错误（可带上下文包装），HTTP 层通过 Status 统一映射状态码.
package errdefs

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrValidation 输入不合法（空名称、非法父目录、超限等）.
	ErrValidation = errors.New("validation failed")
	// ErrNotFound 资源不存在或调用者无权看见.
	ErrNotFound = errors.New("not found")
	// ErrConflict 资源状态冲突（同级重名等）.
	ErrConflict = errors.New("conflict")
	// ErrGone 资源曾经存在但已失效（过期的公开链接）.
	ErrGone = errors.New("gone")
	// ErrUnauthenticated 请求缺少可信身份.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrTooLarge 请求体或上传内容超过大小上限.
	ErrTooLarge = errors.New("too large")
	// ErrUnsupportedType 上传内容类型不在白名单内.
	ErrUnsupportedType = errors.New("unsupported type")
	// ErrInternal 下游基础设施故障（DB、对象存储等）.
	ErrInternal = errors.New("internal error")
)

// Validationf 构造带说明的校验错误.
func Validationf(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrValidation}, args...)...)
}

// NotFoundf 构造带说明的未找到错误.
func NotFoundf(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrNotFound}, args...)...)
}

// Conflictf 构造带说明的冲突错误.
func Conflictf(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrConflict}, args...)...)
}

// Internalf 包装下游错误为内部错误，同时保留原因链.
func Internalf(err error, op string) error {
	return fmt.Errorf("%w: %s: %w", ErrInternal, op, err)
}

// Status 将错误映射为 HTTP 状态码；未识别的错误按 500 处理.
func Status(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrConflict):
		return http.StatusConflict
	case errors.Is(err, ErrGone):
		return http.StatusGone
	case errors.Is(err, ErrTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, ErrUnsupportedType):
		return http.StatusUnsupportedMediaType
	default:
		return http.StatusInternalServerError
	}
}
