package types

// SearchQuery 全盘搜索查询参数.
type SearchQuery struct {
	Q string `binding:"required" form:"q"`
	// Type 限定结果类别：all、file、folder
	Type string `form:"type" rule:"omitempty,oneof=all file folder"`

	// SortBy 排序字段；文件与文件夹都具备的列才可排序
	SortBy string `form:"sort_by" rule:"omitempty,oneof=name created_at"`
	Order  string `form:"order"   rule:"omitempty,oneof=asc desc"`

	Page     int `form:"page"      rule:"omitempty,min=1"`
	PageSize int `form:"page_size" rule:"omitempty,min=1,max=200"`
}

// SearchHit 搜索结果条目，附带完整路径便于定位.
type SearchHit struct {
	Type string        `json:"type"` // file 或 folder
	Path []PathSegment `json:"path"`

	File   *FileResponse   `json:"file,omitempty"`
	Folder *FolderResponse `json:"folder,omitempty"`
}

// SearchResponse 搜索结果.
type SearchResponse struct {
	Hits     []SearchHit `json:"hits"`
	Total    int64       `json:"total"`
	Page     int         `json:"page"`
	PageSize int         `json:"page_size"`
}
