// Package configs 管理应用程序配置，包括文件存储的配置信息.
package configs

import (
	"github.com/spf13/viper"
)

const (
	DefaultUploadDir    = "data/uploads" // 上传文件根目录
	DefaultQRCodeDir    = "data/qrcodes" // 二维码图片目录
	DefaultMaxUploadMB  = 10             // 单文件上传上限（MB）
	DefaultExternalBase = "http://localhost:5000"
	DefaultQRCodeSizePx = 256 // 二维码图片边长（像素）
	bytesPerMB          = 1 << 20
)

// StoreConfig 文件存储相关配置.
type StoreConfig struct {
	// UploadDir 用户上传文件的根目录，记录中的 file_path 相对于该目录
	UploadDir string `mapstructure:"upload_dir" rule:"required"`
	// QRCodeDir 生成的二维码 PNG 存放目录
	QRCodeDir string `mapstructure:"qrcode_dir" rule:"required"`
	// MaxUploadMB 单文件大小上限（MB）
	MaxUploadMB int `mapstructure:"max_upload_mb" rule:"min=1"`
	// AllowedExts 允许的文件扩展名（小写，不含点）
	AllowedExts []string `mapstructure:"allowed_exts"`
	// ExternalBase 对外可访问的基础 URL，用于二维码中的访问链接
	ExternalBase string `mapstructure:"external_base" rule:"url"`
	// QRCodeSize 二维码图片边长（像素）
	QRCodeSize int `mapstructure:"qrcode_size" rule:"min=64,max=1024"`
}

// MaxUploadBytes 返回以字节为单位的上传上限.
func (c *StoreConfig) MaxUploadBytes() int64 {
	return int64(c.MaxUploadMB) * bytesPerMB
}

// setDefaults 设置文件存储配置的默认值.
func (c *StoreConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("store.upload_dir", DefaultUploadDir)
	v.SetDefault("store.qrcode_dir", DefaultQRCodeDir)
	v.SetDefault("store.max_upload_mb", DefaultMaxUploadMB)
	v.SetDefault("store.allowed_exts", []string{"pdf", "jpg", "jpeg", "png", "webp"})
	v.SetDefault("store.external_base", DefaultExternalBase)
	v.SetDefault("store.qrcode_size", DefaultQRCodeSizePx)
}
