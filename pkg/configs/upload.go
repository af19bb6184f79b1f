package configs

import "github.com/spf13/viper"

const (
	// DefaultUploadMaxSize 单文件上传大小上限（15MB）.
	DefaultUploadMaxSize = 15 * 1024 * 1024
)

// defaultAllowedTypes 默认的 MIME 白名单.
var defaultAllowedTypes = []string{
	"image/jpeg",
	"image/png",
	"image/gif",
	"image/webp",
	"image/svg+xml",
	"application/pdf",
	"text/plain",
	"text/csv",
	"application/msword",
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	"application/vnd.ms-excel",
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	"application/vnd.ms-powerpoint",
	"application/vnd.openxmlformats-officedocument.presentationml.presentation",
	"application/zip",
	"video/mp4",
	"audio/mpeg",
}

// UploadConfig 上传边界校验配置：大小上限与 MIME 白名单.
type UploadConfig struct {
	MaxSizeBytes int64    `mapstructure:"max_size_bytes" rule:"min=1"`
	AllowedTypes []string `mapstructure:"allowed_types"`
}

// TypeAllowed 判断给定 MIME 是否在白名单内.
func (c *UploadConfig) TypeAllowed(mimeType string) bool {
	for _, t := range c.AllowedTypes {
		if t == mimeType {
			return true
		}
	}

	return false
}

func (c *UploadConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("upload.max_size_bytes", DefaultUploadMaxSize)
	v.SetDefault("upload.allowed_types", defaultAllowedTypes)
}
