package handle

import (
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yeisme/drivevault/pkg/configs"
	"github.com/yeisme/drivevault/pkg/internal/model"
	"github.com/yeisme/drivevault/pkg/internal/service"
	"github.com/yeisme/drivevault/pkg/internal/types"
	"github.com/yeisme/drivevault/pkg/log"
)

// UploadFiles 接收 multipart 表单上传，支持一次提交多个文件.
// 表单字段：file（可重复）、folder_id（可选，目标文件夹）.
// 单个文件失败不影响其余文件，逐条返回结果.
func UploadFiles(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		return
	}

	uploadCfg := configs.GetConfig().Upload

	// 预留表单自身的开销，避免边界 multipart 被整体拒绝
	if uploadCfg.MaxSizeBytes > 0 {
		const formOverhead = 1 << 20
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, uploadCfg.MaxSizeBytes+formOverhead)
	}

	form, err := c.MultipartForm()
	if err != nil {
		log.Logger().Warn().Err(err).Msg("invalid multipart form")
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid multipart form: " + err.Error()})

		return
	}

	files := form.File["file"]
	if len(files) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no files provided"})
		return
	}

	folderID := strings.TrimSpace(c.PostForm("folder_id"))
	svc := service.NewFileService(c.Request.Context())
	resp := &types.UploadBatchResponse{
		Results: make([]types.UploadFileResponse, 0, len(files)),
		Total:   len(files),
	}

	for _, fh := range files {
		result := uploadOne(c, svc, user, folderID, fh)
		resp.Results = append(resp.Results, result)

		if result.Success {
			resp.Successful++
		} else {
			resp.Failed++
		}
	}

	status := http.StatusOK
	if resp.Successful == 0 {
		status = http.StatusBadRequest
	}

	c.JSON(status, resp)
}

func uploadOne(c *gin.Context, svc *service.FileService, user *model.User, folderID string, fh *multipart.FileHeader) types.UploadFileResponse {
	src, err := fh.Open()
	if err != nil {
		return types.UploadFileResponse{Error: "open upload: " + err.Error()}
	}
	defer src.Close()

	contentType := fh.Header.Get("Content-Type")

	result, err := svc.Upload(c.Request.Context(), user, folderID, fh.Filename, contentType, fh.Size, src)
	if err != nil {
		return types.UploadFileResponse{Error: err.Error()}
	}

	return *result
}
