package types

import "time"

// CreateFolderRequest 新建文件夹请求.
type CreateFolderRequest struct {
	Name string `binding:"required" json:"name" rule:"entryname"`
	// ParentID 为空表示在根目录（"My Drive"）下创建
	ParentID string `json:"parent_id,omitempty"`
}

// RenameFolderRequest 文件夹重命名请求.
type RenameFolderRequest struct {
	Name string `binding:"required" json:"name" rule:"entryname"`
}

// FolderResponse 文件夹信息.
type FolderResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	ParentID  string    `json:"parent_id,omitempty"`
	OwnerID   string    `json:"owner_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PathSegment 路径面包屑中的一级.
type PathSegment struct {
	ID   string `json:"id,omitempty"` // 根（"My Drive"）无 ID
	Name string `json:"name"`
}

// FolderDetailResponse 文件夹详情：自身信息 + 面包屑路径.
type FolderDetailResponse struct {
	Folder FolderResponse `json:"folder"`
	Path   []PathSegment  `json:"path"`
}

// ListFoldersQuery 文件夹列表查询参数.
// All 为真时返回调用者的全部文件夹（移动对话框用），否则列 ParentID 的直接子级.
type ListFoldersQuery struct {
	ParentID string `form:"parent_id"`
	All      bool   `form:"all"`
}

// ListFoldersResponse 纯文件夹列表.
type ListFoldersResponse struct {
	Folders []FolderResponse `json:"folders"`
	Total   int64            `json:"total"`
}

// ListFolderResponse 文件夹内容列表：子文件夹与文件.
type ListFolderResponse struct {
	Folders []FolderResponse `json:"folders"`
	Files   []FileResponse   `json:"files"`
	Path    []PathSegment    `json:"path"`
	Total   int64            `json:"total"`
}
