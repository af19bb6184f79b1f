package types

// UploadFileResponse 单个文件上传响应.
type UploadFileResponse struct {
	File    *FileResponse `json:"file,omitempty"`
	Version int           `json:"version,omitempty"`
	Success bool          `json:"success"`
	Error   string        `json:"error,omitempty"`
}

// UploadBatchResponse 多文件上传响应.
type UploadBatchResponse struct {
	Results    []UploadFileResponse `json:"results"`
	Total      int                  `json:"total"`
	Successful int                  `json:"successful"`
	Failed     int                  `json:"failed"`
}
