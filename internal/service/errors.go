// Package service 包含了应用的业务逻辑层。
package service

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// ErrEmptyMessage 表示 /chat 请求缺少或只包含空白的 message 字段。
// 校验在调用任何模型服务之前完成。
var ErrEmptyMessage = errors.New("message must not be empty")

// DelegateError 表示生成或分类模型服务调用失败。
// 该类错误必须区别于正常应答向上传播，绝不能被替换成一条看似正常的空回复。
type DelegateError struct {
	Delegate string // "generation" 或 "emotion"
	Err      error
}

func (e *DelegateError) Error() string {
	return fmt.Sprintf("%s delegate failed: %v", e.Delegate, e.Err)
}

func (e *DelegateError) Unwrap() error {
	return e.Err
}

// IsTimeout 判断失败原因是否为超时，供接口层区分 502 与 504。
func (e *DelegateError) IsTimeout() bool {
	if errors.Is(e.Err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(e.Err, &netErr) && netErr.Timeout() {
		return true
	}
	return false
}
