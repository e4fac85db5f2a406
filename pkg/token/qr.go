package token

import (
	"fmt"

	qrcode "github.com/skip2/go-qrcode"
)

// EncodeQR 将访问链接编码为 PNG 二维码图片.
func EncodeQR(url string, size int) ([]byte, error) {
	png, err := qrcode.Encode(url, qrcode.Medium, size)
	if err != nil {
		return nil, fmt.Errorf("failed to encode qr code: %w", err)
	}

	return png, nil
}
