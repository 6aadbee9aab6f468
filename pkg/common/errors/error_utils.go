package errors

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-sql-driver/mysql"
	"gorm.io/gorm"
)

// region 错误处理工具函数

// WrapGormError 将底层数据库错误转变为业务可识别错误
// 参数说明：
//   - rawErr: 原始GORM错误
//   - notFound: 记录不存在时返回的业务错误
//   - duplicate: 唯一约束冲突时返回的业务错误
//
// 返回值：
//   - error: 标准化错误类型
func WrapGormError(rawErr, notFound, duplicate error) error {
	if rawErr == nil {
		return nil
	}

	// 处理预定义的GORM错误
	switch {
	case errors.Is(rawErr, gorm.ErrRecordNotFound):
		return notFound
	case IsDuplicateError(rawErr):
		return duplicate
	case errors.Is(rawErr, context.DeadlineExceeded), errors.Is(rawErr, context.Canceled):
		return rawErr
	}

	// 处理MySQL驱动错误
	var mysqlErr *mysql.MySQLError
	if errors.As(rawErr, &mysqlErr) {
		switch mysqlErr.Number {
		case 1045, 1049, 1146: // 数据库连接、表不存在等错误
			return fmt.Errorf("%w: %s", ErrDatabaseInternal, mysqlErr.Message)
		}
	}

	if errors.Is(rawErr, gorm.ErrInvalidDB) ||
		errors.Is(rawErr, gorm.ErrInvalidTransaction) ||
		errors.Is(rawErr, gorm.ErrUnsupportedRelation) {
		return ErrDatabaseInternal
	}

	// 兜底处理：附加原始错误信息
	return fmt.Errorf("%w: %v", ErrDatabaseInternal, rawErr)
}

// IsDuplicateError 判断是否为重复记录错误
func IsDuplicateError(err error) bool {
	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) && mysqlErr.Number == 1062 {
		return true
	}
	return errors.Is(err, gorm.ErrDuplicatedKey)
}

// StatusOf 错误类别到 HTTP 状态码的映射
func StatusOf(err error) int {
	switch {
	case errors.Is(err, ErrInvalidInput),
		errors.Is(err, ErrBadRequest),
		errors.Is(err, ErrPasswordMismatch):
		return http.StatusBadRequest
	case errors.Is(err, ErrDuplicateUsername):
		return http.StatusConflict
	case errors.Is(err, ErrUserNotFound),
		errors.Is(err, ErrInvalidCredentials),
		errors.Is(err, ErrInvalidToken):
		return http.StatusUnauthorized
	case errors.Is(err, ErrPostNotFound):
		return http.StatusNotFound
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// Reason 与状态码对应的 error 字段
func Reason(err error) string {
	if errors.Is(err, ErrInvalidInput) {
		return "Validation Failed"
	}
	return http.StatusText(StatusOf(err))
}
