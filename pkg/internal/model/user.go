package model

import (
	"time"
)

// User 用户模型：由认证代理注入的身份在首次请求时落库.
type User struct {
	ID string `gorm:"primaryKey;size:36" json:"id"`
	// ExternalID 上游认证系统的稳定标识（oauth2-proxy 注入）
	ExternalID string    `gorm:"size:255;uniqueIndex" json:"external_id"`
	Email      string    `gorm:"size:255;uniqueIndex" json:"email"`
	Name       string    `gorm:"size:255"             json:"name"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
