package queue

import "time"

// FileRef 标识文件及其在对象存储中的位置.
type FileRef struct {
	FileID      string `json:"file_id"`
	OwnerID     string `json:"owner_id"`
	FolderID    string `json:"folder_id,omitempty"` // 空表示根目录
	Name        string `json:"name"`
	Bucket      string `json:"bucket,omitempty"`
	ObjectKey   string `json:"object_key,omitempty"`
	Size        int64  `json:"size,omitempty"`
	ETag        string `json:"etag,omitempty"`
	ContentType string `json:"content_type,omitempty"`
}

// FileStoredPayload 内容写入对象存储且元数据落库.
type FileStoredPayload struct {
	File    FileRef `json:"file"`
	Version int     `json:"version"`
	// Source 触发来源，如 upload/api.
	Source string `json:"source,omitempty"`
}

// FileDeletedPayload 文件被删除（含被清理的版本数）.
type FileDeletedPayload struct {
	File     FileRef `json:"file"`
	Versions int     `json:"versions,omitempty"`
}

// FileRenamedPayload 文件重命名.
type FileRenamedPayload struct {
	File    FileRef `json:"file"`
	OldName string  `json:"old_name"`
}

// FileMovedPayload 文件移动.
type FileMovedPayload struct {
	File        FileRef `json:"file"`
	OldFolderID string  `json:"old_folder_id,omitempty"`
}

// FileDownloadedPayload 文件被下载.
type FileDownloadedPayload struct {
	File FileRef `json:"file"`
	// Via 下载途径：api/public_link/bulk.
	Via string `json:"via,omitempty"`
}

// FolderPayload 文件夹创建/删除.
type FolderPayload struct {
	FolderID string `json:"folder_id"`
	OwnerID  string `json:"owner_id"`
	ParentID string `json:"parent_id,omitempty"` // 空表示根目录
	Name     string `json:"name"`
}

// SharePayload 定向分享授予/撤销.
type SharePayload struct {
	ShareID      string `json:"share_id"`
	OwnerID      string `json:"owner_id"`
	GranteeID    string `json:"grantee_id"`
	ResourceType string `json:"resource_type"`
	ResourceID   string `json:"resource_id"`
	Permission   string `json:"permission,omitempty"`
}

// LinkPayload 公开链接创建/访问.
type LinkPayload struct {
	LinkID       string     `json:"link_id"`
	OwnerID      string     `json:"owner_id"`
	ResourceType string     `json:"resource_type"`
	ResourceID   string     `json:"resource_id"`
	ExpiresAt    *time.Time `json:"expires_at,omitempty"`
	// AccessCount 仅在 accessed 事件中填充.
	AccessCount int64 `json:"access_count,omitempty"`
}
