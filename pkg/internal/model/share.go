package model

import (
	"time"
)

// ResourceType 被分享资源的类别.
type ResourceType string

const (
	ResourceFile   ResourceType = "file"
	ResourceFolder ResourceType = "folder"
)

// Share 定向分享：所有者将单个文件或文件夹授予某个具体用户.
// 同一 (资源, 受让人) 至多一行，重复授予走 upsert 更新权限.
type Share struct {
	ID           string       `gorm:"primaryKey;size:36" json:"id"`
	OwnerID      string       `gorm:"size:36;index"      json:"owner_id"`
	ResourceType ResourceType `gorm:"size:16;index:idx_share_target,unique,priority:1" json:"resource_type"`
	ResourceID   string       `gorm:"size:36;index:idx_share_target,unique,priority:2" json:"resource_id"`
	GranteeID    string       `gorm:"size:36;index;index:idx_share_target,unique,priority:3" json:"grantee_id"`
	// Permission 取值 view 或 edit
	Permission string `gorm:"size:16" json:"permission"`

	// ExpiresAt 为 nil 表示长期有效
	ExpiresAt *time.Time `gorm:"index" json:"expires_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Expired 返回该分享在 now 时刻是否已过期.
func (s *Share) Expired(now time.Time) bool {
	return s.ExpiresAt != nil && s.ExpiresAt.Before(now)
}

// 权限常量.
const (
	PermissionView = "view"
	PermissionEdit = "edit"
)
