package service

import (
	"context"

	minio "github.com/minio/minio-go/v7"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/yeisme/drivevault/pkg/cache"
	"github.com/yeisme/drivevault/pkg/configs"
	ctxPkg "github.com/yeisme/drivevault/pkg/context"
	"github.com/yeisme/drivevault/pkg/errdefs"
	"github.com/yeisme/drivevault/pkg/internal/model"
	"github.com/yeisme/drivevault/pkg/internal/storage/db"
	"github.com/yeisme/drivevault/pkg/internal/storage/kv"
	"github.com/yeisme/drivevault/pkg/internal/storage/mq"
	"github.com/yeisme/drivevault/pkg/internal/storage/s3"
	"github.com/yeisme/drivevault/pkg/internal/types"
	dlog "github.com/yeisme/drivevault/pkg/log"
	"github.com/yeisme/drivevault/pkg/queue"
	"github.com/yeisme/drivevault/pkg/rule"
)

// maxBlobConcurrency 对象存储批量操作的并发上限.
const maxBlobConcurrency = 4

// FileService 文件元数据与内容操作.
type FileService struct {
	s3Client *s3.Client
	dbClient *db.Client
	mqClient *mq.Client
	pathCC   *cache.Cache
}

func NewFileService(c context.Context) *FileService {
	fs := &FileService{
		s3Client: ctxPkg.GetS3Client(c),
		dbClient: ctxPkg.GetDBClient(c),
		mqClient: ctxPkg.GetMQClient(c),
	}

	if kvClient := ctxPkg.GetKVClient(c); kvClient != nil {
		fs.pathCC = cache.NewCache(kvClient.KVStore)
	}

	return fs
}

// NewFileServiceWith 直接注入依赖，供测试与任务使用.
func NewFileServiceWith(dbClient *db.Client, s3Client *s3.Client, kvStore kv.KVStore, mqClient *mq.Client) *FileService {
	fs := &FileService{dbClient: dbClient, s3Client: s3Client, mqClient: mqClient}
	if kvStore != nil {
		fs.pathCC = cache.NewCache(kvStore)
	}

	return fs
}

// Get 返回文件详情及所在目录的面包屑路径.
func (fs *FileService) Get(ctx context.Context, owner *model.User, fileID string) (*types.FileDetailResponse, error) {
	file, err := requireOwnedFile(ctx, fs.dbClient, owner.ID, fileID)
	if err != nil {
		return nil, err
	}

	return &types.FileDetailResponse{
		File: toFileResponse(file),
		Path: folderPath(ctx, fs.dbClient, fs.pathCC, owner.ID, file.FolderID),
	}, nil
}

// Update 重命名和/或移动文件.
// 目标文件夹必须存在且属于调用者；新位置的同级文件重名视为冲突.
func (fs *FileService) Update(ctx context.Context, owner *model.User, fileID string, req *types.UpdateFileRequest) (*types.FileResponse, error) {
	if req.Name == "" && req.FolderID == nil {
		return nil, errdefs.Validationf("nothing to update")
	}

	file, err := requireOwnedFile(ctx, fs.dbClient, owner.ID, fileID)
	if err != nil {
		return nil, err
	}

	newName := file.Name
	if req.Name != "" {
		newName = normalizeName(req.Name)
		if !rule.ValidEntryName(newName) {
			return nil, errdefs.Validationf("invalid file name %q", req.Name)
		}
	}

	newFolderID := file.FolderID

	if req.FolderID != nil {
		newFolderID = optionalID(*req.FolderID)
		if newFolderID != nil {
			if _, err := requireOwnedFolder(ctx, fs.dbClient, owner.ID, *newFolderID); err != nil {
				return nil, err
			}
		}
	}

	renamed := newName != file.Name
	moved := derefID(newFolderID) != derefID(file.FolderID)

	if !renamed && !moved {
		resp := toFileResponse(file)
		return &resp, nil
	}

	if err := fs.checkSiblingFileName(ctx, owner.ID, newFolderID, newName, file.ID); err != nil {
		return nil, err
	}

	oldName := file.Name
	oldFolderID := file.FolderID
	file.Name = newName
	file.FolderID = newFolderID

	updates := map[string]any{"name": newName, "folder_id": newFolderID}
	if err := fs.dbClient.WithContext(ctx).Model(file).Updates(updates).Error; err != nil {
		return nil, errdefs.Internalf(err, "update file")
	}

	if renamed {
		fs.publishFileEvent(queue.TopicFileRenamed, queue.FileRenamedPayload{
			File:    fs.fileRef(file),
			OldName: oldName,
		})
	}

	if moved {
		fs.publishFileEvent(queue.TopicFileMoved, queue.FileMovedPayload{
			File:        fs.fileRef(file),
			OldFolderID: derefID(oldFolderID),
		})
	}

	resp := toFileResponse(file)

	return &resp, nil
}

// Delete 删除文件：清理全部历史版本的对象、相关分享与链接，最后删除元数据.
// 对象存储清理是尽力而为，失败只记录日志.
func (fs *FileService) Delete(ctx context.Context, owner *model.User, fileID string) error {
	file, err := requireOwnedFile(ctx, fs.dbClient, owner.ID, fileID)
	if err != nil {
		return err
	}

	q := fs.dbClient.WithContext(ctx)

	var versions []model.FileVersion
	if err := q.Where("file_id = ?", file.ID).Find(&versions).Error; err != nil {
		return errdefs.Internalf(err, "list versions")
	}

	err = q.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("file_id = ?", file.ID).Delete(&model.FileVersion{}).Error; err != nil {
			return err
		}

		if err := tx.Where("resource_type = ? AND resource_id = ?", model.ResourceFile, file.ID).
			Delete(&model.Share{}).Error; err != nil {
			return err
		}

		if err := tx.Where("resource_type = ? AND resource_id = ?", model.ResourceFile, file.ID).
			Delete(&model.PublicLink{}).Error; err != nil {
			return err
		}

		return tx.Delete(file).Error
	})
	if err != nil {
		return errdefs.Internalf(err, "delete file")
	}

	// 版本对象与当前对象可能重叠，去重后清理
	keys := map[string]struct{}{}
	if file.ObjectKey != "" {
		keys[file.ObjectKey] = struct{}{}
	}

	for _, v := range versions {
		if v.ObjectKey != "" {
			keys[v.ObjectKey] = struct{}{}
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxBlobConcurrency)

	for key := range keys {
		g.Go(func() error {
			fs.attemptRemove(gctx, file.Bucket, key)
			return nil
		})
	}

	_ = g.Wait()

	fs.publishFileEvent(queue.TopicFileDeleted, queue.FileDeletedPayload{
		File:     fs.fileRef(file),
		Versions: len(versions),
	})

	return nil
}

// ListVersions 返回文件的历史版本，新版本在前.
func (fs *FileService) ListVersions(ctx context.Context, owner *model.User, fileID string) (*types.ListFileVersionsResponse, error) {
	file, err := requireOwnedFile(ctx, fs.dbClient, owner.ID, fileID)
	if err != nil {
		return nil, err
	}

	var versions []model.FileVersion
	if err := fs.dbClient.WithContext(ctx).
		Where("file_id = ?", file.ID).
		Order("version DESC").
		Find(&versions).Error; err != nil {
		return nil, errdefs.Internalf(err, "list versions")
	}

	resp := &types.ListFileVersionsResponse{
		FileID:   file.ID,
		Versions: make([]types.FileVersionResponse, 0, len(versions)),
	}

	for _, v := range versions {
		resp.Versions = append(resp.Versions, types.FileVersionResponse{
			Version:   v.Version,
			Size:      v.Size,
			ETag:      v.ETag,
			CreatedAt: v.CreatedAt,
		})
	}

	return resp, nil
}

// checkSiblingFileName 同级文件重名检查；excludeID 排除自身.
func (fs *FileService) checkSiblingFileName(ctx context.Context, ownerID string, folderID *string, name, excludeID string) error {
	q := scopeParent(
		fs.dbClient.WithContext(ctx).Model(&model.File{}).
			Where("owner_id = ? AND name = ?", ownerID, name),
		"folder_id", folderID,
	)
	if excludeID != "" {
		q = q.Where("id <> ?", excludeID)
	}

	var count int64
	if err := q.Count(&count).Error; err != nil {
		return errdefs.Internalf(err, "check sibling name")
	}

	if count > 0 {
		return errdefs.Conflictf("file %q already exists here", name)
	}

	return nil
}

// attemptRemove 尽力而为地删除对象，失败不阻塞调用方.
func (fs *FileService) attemptRemove(ctx context.Context, bucket, key string) {
	if fs.s3Client == nil || bucket == "" || key == "" {
		return
	}

	if err := fs.s3Client.RemoveObject(ctx, bucket, key, minio.RemoveObjectOptions{}); err != nil {
		dlog.Logger().Warn().Err(err).
			Str("bucket", bucket).
			Str("object_key", key).
			Msg("remove object failed")
	}
}

func (fs *FileService) fileRef(f *model.File) queue.FileRef {
	return queue.FileRef{
		FileID:      f.ID,
		OwnerID:     f.OwnerID,
		FolderID:    derefID(f.FolderID),
		Name:        f.Name,
		Bucket:      f.Bucket,
		ObjectKey:   f.ObjectKey,
		Size:        f.Size,
		ETag:        f.ETag,
		ContentType: f.ContentType,
	}
}

// publishFileEvent 按事件开关发布文件领域事件.
func (fs *FileService) publishFileEvent(topic string, payload any) {
	if fs.mqClient == nil {
		return
	}

	evCfg := configs.GetConfig().Events
	if !evCfg.Enabled {
		return
	}

	enabled := map[string]bool{
		queue.TopicFileStored:     evCfg.File.Stored,
		queue.TopicFileDeleted:    evCfg.File.Deleted,
		queue.TopicFileRenamed:    evCfg.File.Renamed,
		queue.TopicFileMoved:      evCfg.File.Moved,
		queue.TopicFileDownloaded: evCfg.File.Downloaded,
	}
	if !enabled[topic] {
		return
	}

	msg, err := queue.NewWatermillMessage(topic, payload, queue.WithProducer("drivevault"))
	if err != nil {
		logPublishErr(topic, err)
		return
	}

	logPublishErr(topic, fs.mqClient.Publish(context.Background(), topic, msg))
}
