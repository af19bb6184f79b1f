package model

import (
	"time"
)

// Folder 文件夹模型：ParentID 为 nil 表示位于根目录（"My Drive"）.
// 同级重名约束在服务层写路径上保证，因为 SQL 的 NULL 不参与唯一索引比较.
type Folder struct {
	ID       string  `gorm:"primaryKey;size:36"              json:"id"`
	OwnerID  string  `gorm:"size:36;index;index:idx_folder_parent,priority:1" json:"owner_id"`
	ParentID *string `gorm:"size:36;index:idx_folder_parent,priority:2"       json:"parent_id"`
	Name     string  `gorm:"size:255;index"                  json:"name"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsRoot 返回该文件夹是否直接位于根目录下.
func (f *Folder) IsRoot() bool {
	return f.ParentID == nil
}
