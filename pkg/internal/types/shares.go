package types

import "time"

// GrantShareRequest 定向分享请求：把资源授予具体用户.
// 同一 (资源, 受让人) 重复授予按更新权限处理.
// Users 非空时走批量路径：受让人有任何一个无法解析则整批拒绝.
type GrantShareRequest struct {
	// GranteeEmail 与 GranteeID 二选一
	GranteeEmail string `json:"grantee_email,omitempty" rule:"omitempty,email"`
	GranteeID    string `json:"grantee_id,omitempty"`
	Permission   string `json:"permission,omitempty"    rule:"omitempty,oneof=view edit"`
	// ExpiresInHours 可选的授权有效期，缺省长期有效
	ExpiresInHours int `json:"expires_in_hours,omitempty" rule:"omitempty,min=1,max=8760"`

	Users []ShareGrantee `json:"users,omitempty" rule:"omitempty,dive"`
}

// ShareGrantee 批量分享中的单个受让人.
type ShareGrantee struct {
	GranteeEmail string `json:"grantee_email,omitempty" rule:"omitempty,email"`
	GranteeID    string `json:"grantee_id,omitempty"`
	Permission   string `json:"permission,omitempty"    rule:"omitempty,oneof=view edit"`
}

// ShareResponse 分享记录.
type ShareResponse struct {
	ID           string    `json:"id"`
	ResourceType string    `json:"resource_type"`
	ResourceID   string    `json:"resource_id"`
	OwnerID      string    `json:"owner_id"`
	GranteeID    string    `json:"grantee_id"`
	GranteeEmail string     `json:"grantee_email,omitempty"`
	Permission   string     `json:"permission"`
	ExpiresAt    *time.Time `json:"expires_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

// RevokeShareRequest 撤销定向分享.
type RevokeShareRequest struct {
	GranteeID string `binding:"required" json:"grantee_id"`
}

// CreateLinkRequest 创建公开链接；ExpiresInHours 缺省长期有效.
type CreateLinkRequest struct {
	Permission     string `json:"permission,omitempty"       rule:"omitempty,oneof=view edit"`
	ExpiresInHours int    `json:"expires_in_hours,omitempty" rule:"omitempty,min=1,max=8760"`
}

// LinkResponse 公开链接信息.
type LinkResponse struct {
	ID           string     `json:"id"`
	ResourceType string     `json:"resource_type"`
	ResourceID   string     `json:"resource_id"`
	Token        string     `json:"token"`
	URL          string     `json:"url"`
	Permission   string     `json:"permission"`
	ExpiresAt    *time.Time `json:"expires_at,omitempty"`
	AccessCount  int64      `json:"access_count"`
	CreatedAt    time.Time  `json:"created_at"`
}

// ShareStateResponse 某资源的分享状态：全部定向分享 + 可选的公开链接.
type ShareStateResponse struct {
	Shares []ShareResponse `json:"shares"`
	Link   *LinkResponse   `json:"link,omitempty"`
}

// SharedItemResponse "共享给我"列表中的条目.
type SharedItemResponse struct {
	ShareID      string    `json:"share_id"`
	ResourceType string    `json:"resource_type"`
	Permission   string    `json:"permission"`
	OwnerID      string    `json:"owner_id"`
	OwnerEmail   string    `json:"owner_email,omitempty"`
	SharedAt     time.Time `json:"shared_at"`

	// 资源快照，按类型恰有一个非空
	File   *FileResponse   `json:"file,omitempty"`
	Folder *FolderResponse `json:"folder,omitempty"`
}

// ResolveLinkResponse 匿名访问公开链接的结果.
type ResolveLinkResponse struct {
	ResourceType string     `json:"resource_type"`
	Permission   string     `json:"permission"`
	ExpiresAt    *time.Time `json:"expires_at,omitempty"`

	File *FileResponse `json:"file,omitempty"`
	// Folder 场景包含文件夹信息及其直接子项
	Folder  *FolderResponse  `json:"folder,omitempty"`
	Folders []FolderResponse `json:"folders,omitempty"`
	Files   []FileResponse   `json:"files,omitempty"`
}
