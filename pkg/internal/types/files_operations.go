package types

// BulkDeleteRequest 批量删除文件请求.
type BulkDeleteRequest struct {
	FileIDs []string `binding:"required" json:"file_ids" rule:"min=1,dive,required"`
}

// BulkMoveRequest 批量移动文件请求.
type BulkMoveRequest struct {
	FileIDs []string `binding:"required" json:"file_ids" rule:"min=1,dive,required"`
	// TargetFolderID 为空表示移动到根目录
	TargetFolderID string `json:"target_folder_id,omitempty"`
}

// BulkItemResult 批量操作中单个条目的结果.
type BulkItemResult struct {
	FileID  string `json:"file_id"`
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// BulkOperationResponse 批量操作汇总.
type BulkOperationResponse struct {
	Results    []BulkItemResult `json:"results"`
	Total      int              `json:"total"`
	Successful int              `json:"successful"`
	Failed     int              `json:"failed"`
}

// BulkDownloadRequest 批量下载请求：文件打包为 zip.
type BulkDownloadRequest struct {
	FileIDs []string `binding:"required" json:"file_ids" rule:"min=1,dive,required"`
}
