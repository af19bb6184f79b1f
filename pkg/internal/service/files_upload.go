package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	minio "github.com/minio/minio-go/v7"
	"gorm.io/gorm"

	"github.com/yeisme/drivevault/pkg/configs"
	"github.com/yeisme/drivevault/pkg/errdefs"
	"github.com/yeisme/drivevault/pkg/internal/model"
	"github.com/yeisme/drivevault/pkg/internal/types"
	"github.com/yeisme/drivevault/pkg/metrics"
	"github.com/yeisme/drivevault/pkg/queue"
	"github.com/yeisme/drivevault/pkg/rule"
)

// Upload 接收单个文件内容：校验大小与类型、写入对象存储、落库元数据.
// 目标目录已有同名文件时不报冲突，而是为该文件追加一个新版本.
func (fs *FileService) Upload(ctx context.Context, owner *model.User, folderID, name, contentType string, size int64, r io.Reader) (*types.UploadFileResponse, error) {
	uploadCfg := configs.GetConfig().Upload

	name = normalizeName(name)
	if !rule.ValidEntryName(name) {
		metrics.UploadRejected.WithLabelValues("name").Inc()
		return nil, errdefs.Validationf("invalid file name %q", name)
	}

	if size <= 0 {
		metrics.UploadRejected.WithLabelValues("size").Inc()
		return nil, errdefs.Validationf("missing content length")
	}

	if uploadCfg.MaxSizeBytes > 0 && size > uploadCfg.MaxSizeBytes {
		metrics.UploadRejected.WithLabelValues("size").Inc()
		return nil, fmt.Errorf("%w: %d bytes (limit %d)", errdefs.ErrTooLarge, size, uploadCfg.MaxSizeBytes)
	}

	if len(uploadCfg.AllowedTypes) > 0 && !uploadCfg.TypeAllowed(contentType) {
		metrics.UploadRejected.WithLabelValues("type").Inc()
		return nil, fmt.Errorf("%w: %s", errdefs.ErrUnsupportedType, contentType)
	}

	parentID := optionalID(folderID)
	if parentID != nil {
		if _, err := requireOwnedFolder(ctx, fs.dbClient, owner.ID, *parentID); err != nil {
			return nil, err
		}
	}

	if fs.s3Client == nil {
		return nil, errdefs.Internalf(fmt.Errorf("object storage unavailable"), "upload")
	}

	bucket := fs.s3Client.DefaultBucket()
	objectKey := buildObjectKey(owner.ID, name)

	info, err := fs.s3Client.PutObject(ctx, bucket, objectKey, r, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return nil, errdefs.Internalf(err, "store object")
	}

	metrics.UploadBytes.Add(float64(size))

	file, version, err := fs.saveUploadMetadata(ctx, owner.ID, parentID, name, contentType, size, bucket, objectKey, info.ETag)
	if err != nil {
		// 元数据失败时回收刚写入的对象
		fs.attemptRemove(ctx, bucket, objectKey)
		return nil, err
	}

	fs.publishFileEvent(queue.TopicFileStored, queue.FileStoredPayload{
		File:    fs.fileRef(file),
		Version: version,
		Source:  "upload",
	})

	resp := toFileResponse(file)

	return &types.UploadFileResponse{
		File:    &resp,
		Version: version,
		Success: true,
	}, nil
}

// saveUploadMetadata 在单个事务中写入文件与版本记录.
// 已存在同名文件则更新其当前内容指针并追加版本.
func (fs *FileService) saveUploadMetadata(ctx context.Context, ownerID string, folderID *string, name, contentType string, size int64, bucket, objectKey, etag string) (*model.File, int, error) {
	var (
		file    model.File
		version int
	)

	err := fs.dbClient.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := scopeParent(
			tx.Where("owner_id = ? AND name = ?", ownerID, name),
			"folder_id", folderID,
		).First(&file).Error

		switch {
		case err == nil:
			// 追加新版本
			var latest model.FileVersion
			if verr := tx.Where("file_id = ?", file.ID).
				Order("version DESC").
				First(&latest).Error; verr == nil {
				version = latest.Version + 1
			} else if errors.Is(verr, gorm.ErrRecordNotFound) {
				version = 1
			} else {
				return verr
			}

			file.Size = size
			file.ContentType = contentType
			file.ObjectKey = objectKey
			file.Bucket = bucket
			file.ETag = etag

			if uerr := tx.Model(&file).Updates(map[string]any{
				"size":         size,
				"content_type": contentType,
				"object_key":   objectKey,
				"bucket":       bucket,
				"etag":         etag,
			}).Error; uerr != nil {
				return uerr
			}

		case errors.Is(err, gorm.ErrRecordNotFound):
			version = 1
			file = model.File{
				ID:           newID(),
				OwnerID:      ownerID,
				FolderID:     folderID,
				Name:         name,
				OriginalName: name,
				Size:         size,
				ContentType:  contentType,
				ObjectKey:    objectKey,
				Bucket:       bucket,
				ETag:         etag,
			}

			if cerr := tx.Create(&file).Error; cerr != nil {
				return cerr
			}

		default:
			return err
		}

		return tx.Create(&model.FileVersion{
			ID:        newID(),
			FileID:    file.ID,
			Version:   version,
			Size:      size,
			ObjectKey: objectKey,
			ETag:      etag,
		}).Error
	})
	if err != nil {
		return nil, 0, errdefs.Internalf(err, "save upload metadata")
	}

	return &file, version, nil
}

// buildObjectKey 生成对象键：owner/年/月/uuid_文件名.
func buildObjectKey(ownerID, name string) string {
	now := time.Now().UTC()
	return fmt.Sprintf("%s/%s/%s_%s", ownerID, now.Format("2006/01"), newID(), name)
}
