// Package files 处理本地磁盘文件存储操作，如保存上传文件、解析访问路径和删除文件.
package files

import (
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/oklog/ulid"

	"github.com/yeisme/docdrop/pkg/configs"
	nlog "github.com/yeisme/docdrop/pkg/log"
)

// 存储层哨兵错误，由 handler 边界映射为 HTTP 状态码.
var (
	ErrUnsupportedType = errors.New("files: unsupported file type")
	ErrTooLarge        = errors.New("files: file exceeds size limit")
	ErrNotExist        = errors.New("files: file does not exist")
)

// 扩展名到 http.DetectContentType 嗅探结果前缀的映射.
// 嗅探结果必须与扩展名声明一致，拒绝伪装扩展名的内容.
var sniffPrefixes = map[string][]string{
	".pdf":  {"application/pdf"},
	".jpg":  {"image/jpeg"},
	".jpeg": {"image/jpeg"},
	".png":  {"image/png"},
	".webp": {"image/webp"},
}

const (
	dirPerm  = 0o755
	filePerm = 0o644

	sniffLen = 512 // http.DetectContentType 最多读取的字节数

	maxStoredNameLen = 200
)

// Store 管理单个根目录下的文件读写.
type Store struct {
	root        string
	maxBytes    int64
	allowedExts map[string]struct{}
}

// New 创建文件存储并确保根目录存在.
// allowedExts 为空表示不限制扩展名，maxBytes 为 0 表示不限制大小.
func New(root string, maxBytes int64, allowedExts []string) (*Store, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve storage root: %w", err)
	}

	if err := os.MkdirAll(absRoot, dirPerm); err != nil {
		return nil, fmt.Errorf("failed to create storage root: %w", err)
	}

	exts := make(map[string]struct{}, len(allowedExts))
	for _, ext := range allowedExts {
		ext = strings.ToLower(strings.TrimPrefix(ext, "."))
		if ext == "" {
			continue
		}

		exts["."+ext] = struct{}{}
	}

	return &Store{
		root:        absRoot,
		maxBytes:    maxBytes,
		allowedExts: exts,
	}, nil
}

// NewUploadStore 按存储配置创建上传文件存储.
func NewUploadStore(cfg *configs.StoreConfig) (*Store, error) {
	return New(cfg.UploadDir, cfg.MaxUploadBytes(), cfg.AllowedExts)
}

// NewQRCodeStore 按存储配置创建二维码图片存储.
func NewQRCodeStore(cfg *configs.StoreConfig) (*Store, error) {
	return New(cfg.QRCodeDir, 0, []string{"png"})
}

// Root 返回存储根目录的绝对路径.
func (s *Store) Root() string {
	return s.root
}

// Save 校验并保存上传文件，返回存储文件名.
//
// declaredSize 来自 multipart 头，超限时在读取任何内容前即拒绝；
// 写入时仍以 LimitReader 兜底，防止声明与实际不符.
func (s *Store) Save(r io.Reader, originalName string, declaredSize int64) (string, error) {
	ext := strings.ToLower(filepath.Ext(originalName))
	if len(s.allowedExts) > 0 {
		if _, ok := s.allowedExts[ext]; !ok {
			return "", fmt.Errorf("%w: %q", ErrUnsupportedType, ext)
		}
	}

	if s.maxBytes > 0 && declaredSize > s.maxBytes {
		return "", fmt.Errorf("%w: %d bytes", ErrTooLarge, declaredSize)
	}

	// 嗅探开头字节确认内容与扩展名一致
	head := make([]byte, sniffLen)
	n, err := io.ReadFull(r, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("failed to read upload: %w", err)
	}

	head = head[:n]
	if prefixes, ok := sniffPrefixes[ext]; ok {
		detected := http.DetectContentType(head)
		if !matchesAny(detected, prefixes) {
			return "", fmt.Errorf("%w: content is %s", ErrUnsupportedType, detected)
		}
	}

	storedName := s.newStoredName(originalName)
	dst := filepath.Join(s.root, storedName)

	f, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, filePerm)
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}

	written := int64(len(head))
	if _, err := f.Write(head); err != nil {
		f.Close()
		s.remove(dst)

		return "", fmt.Errorf("failed to write file: %w", err)
	}

	// 剩余内容写入，限制总字节数兜底
	if s.maxBytes > 0 {
		remain := s.maxBytes - written + 1
		n, err := io.Copy(f, io.LimitReader(r, remain))
		if err != nil {
			f.Close()
			s.remove(dst)

			return "", fmt.Errorf("failed to write file: %w", err)
		}

		if written+n > s.maxBytes {
			f.Close()
			s.remove(dst)

			return "", fmt.Errorf("%w: exceeds %d bytes", ErrTooLarge, s.maxBytes)
		}
	} else {
		if _, err := io.Copy(f, r); err != nil {
			f.Close()
			s.remove(dst)

			return "", fmt.Errorf("failed to write file: %w", err)
		}
	}

	if err := f.Close(); err != nil {
		s.remove(dst)

		return "", fmt.Errorf("failed to close file: %w", err)
	}

	return storedName, nil
}

// WriteBytes 将给定内容整体写入存储目录，已存在时覆盖.
func (s *Store) WriteBytes(name string, data []byte) error {
	dst, err := s.safeJoin(name)
	if err != nil {
		return err
	}

	if err := os.WriteFile(dst, data, filePerm); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}

	return nil
}

// Resolve 将存储文件名解析为根目录下的绝对路径.
// 拒绝任何逃逸根目录的路径，文件不存在时返回 ErrNotExist.
func (s *Store) Resolve(name string) (string, error) {
	path, err := s.safeJoin(name)
	if err != nil {
		return "", err
	}

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%w: %s", ErrNotExist, name)
		}

		return "", fmt.Errorf("failed to stat file: %w", err)
	}

	if info.IsDir() {
		return "", fmt.Errorf("%w: %s", ErrNotExist, name)
	}

	return path, nil
}

// Remove 删除存储目录下的文件，用于记录写入失败后的孤儿清理.
func (s *Store) Remove(name string) error {
	path, err := s.safeJoin(name)
	if err != nil {
		return err
	}

	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove file: %w", err)
	}

	return nil
}

// safeJoin 拼接路径并确保结果仍位于根目录内.
func (s *Store) safeJoin(name string) (string, error) {
	if name == "" || name != filepath.Base(name) {
		return "", fmt.Errorf("%w: %s", ErrNotExist, name)
	}

	path := filepath.Join(s.root, name)
	if !strings.HasPrefix(path, s.root+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s", ErrNotExist, name)
	}

	return path, nil
}

// newStoredName 生成唯一存储文件名: ULID + 清洗后的原始文件名.
func (s *Store) newStoredName(originalName string) string {
	id := ulid.MustNew(ulid.Timestamp(time.Now()), rand.Reader)

	name := sanitizeFilename(filepath.Base(originalName))
	stored := id.String() + "_" + name
	if len(stored) > maxStoredNameLen {
		stored = stored[:maxStoredNameLen]
	}

	return stored
}

func (s *Store) remove(path string) {
	if err := os.Remove(path); err != nil {
		nlog.Logger().Warn().Err(err).Str("path", path).Msg("failed to remove partial file")
	}
}

// sanitizeFilename 将原始文件名清洗为安全的存储片段.
func sanitizeFilename(name string) string {
	var b strings.Builder

	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.' || r == '-' || r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}

	cleaned := strings.TrimLeft(b.String(), ".")
	if cleaned == "" {
		cleaned = "file"
	}

	return cleaned
}

func matchesAny(detected string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(detected, p) {
			return true
		}
	}

	return false
}
