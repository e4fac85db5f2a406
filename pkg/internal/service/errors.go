// Package service 实现业务逻辑，处理登记与文档访问.
package service

import "errors"

// 业务哨兵错误，handler 边界统一映射为 HTTP 状态码.
var (
	ErrValidation = errors.New("service: validation failed")
	ErrNotFound   = errors.New("service: record not found")
	ErrStorage    = errors.New("service: storage failure")
)
