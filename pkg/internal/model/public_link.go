package model

import (
	"time"
)

// PublicLink 公开分享链接：凭 Token 匿名访问单个文件或文件夹.
// 每个资源至多一条有效链接，重复创建时更新过期时间并轮换 Token.
type PublicLink struct {
	ID           string       `gorm:"primaryKey;size:36"   json:"id"`
	OwnerID      string       `gorm:"size:36;index"        json:"owner_id"`
	ResourceType ResourceType `gorm:"size:16;index:idx_link_target,unique,priority:1" json:"resource_type"`
	ResourceID   string       `gorm:"size:36;index:idx_link_target,unique,priority:2" json:"resource_id"`
	Token        string       `gorm:"size:64;uniqueIndex"  json:"token"`
	Permission   string       `gorm:"size:16;default:view" json:"permission"`
	// ExpiresAt 为空表示长期有效
	ExpiresAt   *time.Time `gorm:"index"     json:"expires_at,omitempty"`
	AccessCount int64      `gorm:"default:0" json:"access_count"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Expired 判断链接在给定时刻是否已过期；无过期时间视为永久有效.
func (l *PublicLink) Expired(now time.Time) bool {
	return l.ExpiresAt != nil && now.After(*l.ExpiresAt)
}
