package types

// StorageStatsResponse 当前用户的存储统计.
type StorageStatsResponse struct {
	FileCount   int64 `json:"file_count"`
	FolderCount int64 `json:"folder_count"`
	TotalBytes  int64 `json:"total_bytes"`
	ShareCount  int64 `json:"share_count"`
	LinkCount   int64 `json:"link_count"`
}
