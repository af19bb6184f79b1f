package types

import "time"

// FileResponse 文件元数据.
type FileResponse struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	OriginalName  string    `json:"original_name,omitempty"`
	FolderID      string    `json:"folder_id,omitempty"`
	OwnerID       string    `json:"owner_id"`
	Size          int64     `json:"size"`
	ContentType   string    `json:"content_type"`
	ETag          string    `json:"etag,omitempty"`
	Metadata      string    `json:"metadata,omitempty"`
	DownloadCount int64     `json:"download_count"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// FileDetailResponse 文件详情：自身信息 + 面包屑路径.
type FileDetailResponse struct {
	File FileResponse  `json:"file"`
	Path []PathSegment `json:"path"`
}

// UpdateFileRequest 文件更新请求：重命名和/或移动.
// 两个字段都可选，至少提供一个.
type UpdateFileRequest struct {
	Name string `json:"name,omitempty" rule:"omitempty,entryname"`
	// FolderID 目标文件夹；指针区分"未提供"与"移动到根目录"（空字符串）
	FolderID *string `json:"folder_id,omitempty"`
}

// ListFilesQuery 文件列表查询参数.
type ListFilesQuery struct {
	// FolderID 为空列根目录
	FolderID string `form:"folder_id"`
	// Search 按名称或 MIME 类型子串过滤（大小写不敏感）
	Search string `form:"search"`
	// Category 精确匹配 MIME 类型
	Category string `form:"category"`
	// SortBy 排序字段：name、size、created_at、updated_at
	SortBy string `form:"sort_by" rule:"omitempty,oneof=name size created_at updated_at"`
	// Order 排序方向：asc、desc
	Order string `form:"order" rule:"omitempty,oneof=asc desc"`

	Page     int `form:"page"      rule:"omitempty,min=1"`
	PageSize int `form:"page_size" rule:"omitempty,min=1,max=100"`
}

// ListFilesResponse 分页文件列表.
type ListFilesResponse struct {
	Files    []FileResponse `json:"files"`
	Total    int64          `json:"total"`
	Page     int            `json:"page"`
	PageSize int            `json:"page_size"`
	HasMore  bool           `json:"has_more"`
}

// FileVersionResponse 文件历史版本.
type FileVersionResponse struct {
	Version   int       `json:"version"`
	Size      int64     `json:"size"`
	ETag      string    `json:"etag,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// ListFileVersionsResponse 版本列表.
type ListFileVersionsResponse struct {
	FileID   string                `json:"file_id"`
	Versions []FileVersionResponse `json:"versions"`
}
