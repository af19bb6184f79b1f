package types

import "time"

// UserResponse 用户公开信息.
type UserResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// SearchUsersQuery 用户检索（分享对话框的收件人补全）.
type SearchUsersQuery struct {
	Q string `binding:"required" form:"q"`
	// Limit 最多返回条数
	Limit int `form:"limit" rule:"omitempty,min=1,max=50"`
}

// SearchUsersResponse 用户检索结果.
type SearchUsersResponse struct {
	Users []UserResponse `json:"users"`
}
