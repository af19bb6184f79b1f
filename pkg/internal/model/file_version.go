package model

import (
	"time"
)

// FileVersion 文件版本记录：每次上传产生一条，Version 从 1 递增.
// 对象存储中每个版本都有独立 ObjectKey，删除文件时一并清理.
type FileVersion struct {
	ID        string `gorm:"primaryKey;size:36"                              json:"id"`
	FileID    string `gorm:"size:36;index:idx_version_file,unique,priority:1" json:"file_id"`
	Version   int    `gorm:"index:idx_version_file,unique,priority:2"         json:"version"`
	Size      int64  `json:"size"`
	ObjectKey string `gorm:"size:1024" json:"-"`
	ETag      string `gorm:"size:64"   json:"etag"`

	CreatedAt time.Time `json:"created_at"`
}
