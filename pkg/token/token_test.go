package token

import (
	"bytes"
	"encoding/base64"
	"net/url"
	"testing"
)

func TestNewLength(t *testing.T) {
	tok, err := New()
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	raw, err := base64.RawURLEncoding.DecodeString(tok)
	if err != nil {
		t.Fatalf("token is not valid base64url: %v", err)
	}

	if len(raw) != tokenBytes {
		t.Fatalf("decoded token is %d bytes, want %d", len(raw), tokenBytes)
	}
}

func TestNewURLSafe(t *testing.T) {
	tok, err := New()
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	// 令牌直接嵌入路径段，转义后必须保持不变
	if escaped := url.PathEscape(tok); escaped != tok {
		t.Fatalf("token %q is not URL safe, escapes to %q", tok, escaped)
	}
}

func TestNewUnique(t *testing.T) {
	const n = 1000

	seen := make(map[string]struct{}, n)
	for range n {
		tok, err := New()
		if err != nil {
			t.Fatalf("New failed: %v", err)
		}

		if _, dup := seen[tok]; dup {
			t.Fatalf("duplicate token generated: %s", tok)
		}

		seen[tok] = struct{}{}
	}
}

func TestEncodeQR(t *testing.T) {
	png, err := EncodeQR("http://localhost:5000/d/abc123", 256)
	if err != nil {
		t.Fatalf("EncodeQR failed: %v", err)
	}

	magic := []byte{0x89, 'P', 'N', 'G', 0x0d, 0x0a, 0x1a, 0x0a}
	if !bytes.HasPrefix(png, magic) {
		t.Fatalf("EncodeQR output is not a PNG")
	}
}

func TestEncodeQRInvalidSize(t *testing.T) {
	// 负数尺寸表示按模块缩放，库仍应产出有效 PNG
	png, err := EncodeQR("http://localhost:5000/d/abc123", -1)
	if err != nil {
		t.Fatalf("EncodeQR failed: %v", err)
	}

	if len(png) == 0 {
		t.Fatal("EncodeQR returned empty output")
	}
}
