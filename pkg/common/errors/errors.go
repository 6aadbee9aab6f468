// pkg/common/errors/errors.go

/*
  - 使用实例
    // 判断错误类别:
    if errors.Is(err, bizerr.ErrPostNotFound) {
    // ...
    }

    // 读取字段级校验信息:
    if fields := bizerr.FieldErrors(err); fields != nil {
    // ...
    }
*/
package errors

import (
	"errors"
	"fmt"

	hzte "github.com/cloudwego/hertz/pkg/common/errors"
)

// 业务错误类别
var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrBadRequest         = errors.New("malformed request")
	ErrDuplicateUsername  = errors.New("username already exists")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("password does not match")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrPostNotFound       = errors.New("post not found")
	ErrPasswordMismatch   = errors.New("post password does not match")
	ErrDatabaseInternal   = errors.New("database internal error")
)

// Public 包装成 Hertz 公开错误，meta 会随错误一起交给错误中间件
func Public(kind error, meta interface{}) *hzte.Error {
	return hzte.New(kind, hzte.ErrorTypePublic, meta)
}

// NewInvalidInput 携带字段级错误信息
func NewInvalidInput(fields map[string]string) *hzte.Error {
	return Public(ErrInvalidInput, fields)
}

func NewBadRequest(reason string) *hzte.Error {
	return Public(ErrBadRequest, reason)
}

func NewPostNotFound(id uint64) *hzte.Error {
	return Public(ErrPostNotFound, fmt.Sprintf("id %d", id))
}

// FieldErrors 取出 ErrInvalidInput 附带的字段信息
func FieldErrors(err error) map[string]string {
	var hzErr *hzte.Error
	if !errors.As(err, &hzErr) || !errors.Is(hzErr, ErrInvalidInput) {
		return nil
	}
	fields, _ := hzErr.Meta.(map[string]string)
	return fields
}
