// Package token 生成文档访问令牌，令牌即访问凭证，泄露令牌等同泄露文档.
package token

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

// tokenBytes 令牌随机字节数，24 字节即 192 位熵.
const tokenBytes = 24

// New 生成 URL 安全的随机访问令牌.
func New() (string, error) {
	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}

	return base64.RawURLEncoding.EncodeToString(buf), nil
}
