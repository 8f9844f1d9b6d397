package errors

import "errors"

// ========== 错误码常量定义 ==========

// CodeSuccess 成功码
const (
	CodeSuccess = 200
)

// HTTP层错误码 (400-599)
const (
	CodeInvalidParam = 400
	CodeUnauthorized = 401
	CodeForbidden    = 403
	CodeNotFound     = 404
	CodeConflict     = 409
	CodeServerError  = 500
)

// ========== 哨兵错误 ==========

// 业务层统一的可判别错误，处理器据此映射响应码
var (
	ErrNotFound = errors.New("记录不存在")
	ErrConflict = errors.New("记录已存在")
)

// IsNotFound 判断是否为未找到错误
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsConflict 判断是否为冲突错误
func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict)
}
