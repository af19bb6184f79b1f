package model

import (
	"time"
)

// File 文件元数据模型：内容本体存放在对象存储，ObjectKey 指向其位置.
// FolderID 为 nil 表示位于根目录；同级重名约束在服务层写路径上保证.
type File struct {
	ID       string  `gorm:"primaryKey;size:36"                             json:"id"`
	OwnerID  string  `gorm:"size:36;index;index:idx_file_folder,priority:1" json:"owner_id"`
	FolderID *string `gorm:"size:36;index:idx_file_folder,priority:2"       json:"folder_id"`
	Name     string  `gorm:"size:255;index"                                 json:"name"`
	// OriginalName 上传时的原始文件名，改名后保持不变
	OriginalName string `gorm:"size:255;index" json:"original_name"`

	Size        int64  `gorm:"index"     json:"size"`
	ContentType string `gorm:"size:255"  json:"content_type"`
	ObjectKey   string `gorm:"size:1024" json:"-"`
	Bucket      string `gorm:"size:255"  json:"-"`
	ETag        string `gorm:"size:64"   json:"etag"`
	// Metadata 任意扩展属性，JSON 文本
	Metadata string `gorm:"type:text" json:"metadata,omitempty"`

	DownloadCount int64 `gorm:"default:0" json:"download_count"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// InRoot 返回该文件是否直接位于根目录下.
func (f *File) InRoot() bool {
	return f.FolderID == nil
}
