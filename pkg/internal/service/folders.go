package service

import (
	"context"

	"gorm.io/gorm"

	"github.com/yeisme/drivevault/pkg/cache"
	"github.com/yeisme/drivevault/pkg/configs"
	ctxPkg "github.com/yeisme/drivevault/pkg/context"
	"github.com/yeisme/drivevault/pkg/errdefs"
	"github.com/yeisme/drivevault/pkg/internal/model"
	"github.com/yeisme/drivevault/pkg/internal/storage/db"
	"github.com/yeisme/drivevault/pkg/internal/storage/kv"
	"github.com/yeisme/drivevault/pkg/internal/storage/mq"
	"github.com/yeisme/drivevault/pkg/internal/types"
	"github.com/yeisme/drivevault/pkg/queue"
	"github.com/yeisme/drivevault/pkg/rule"
)

// FolderService 文件夹树的增删改查.
type FolderService struct {
	dbClient *db.Client
	mqClient *mq.Client
	pathCC   *cache.Cache
}

func NewFolderService(c context.Context) *FolderService {
	fs := &FolderService{
		dbClient: ctxPkg.GetDBClient(c),
		mqClient: ctxPkg.GetMQClient(c),
	}

	if kvClient := ctxPkg.GetKVClient(c); kvClient != nil {
		fs.pathCC = cache.NewCache(kvClient.KVStore)
	}

	return fs
}

// NewFolderServiceWith 直接注入依赖，供测试与任务使用.
func NewFolderServiceWith(dbClient *db.Client, kvStore kv.KVStore, mqClient *mq.Client) *FolderService {
	fs := &FolderService{dbClient: dbClient, mqClient: mqClient}
	if kvStore != nil {
		fs.pathCC = cache.NewCache(kvStore)
	}

	return fs
}

// Create 在指定父级（空为根目录）下创建文件夹，同级重名视为冲突.
func (fs *FolderService) Create(ctx context.Context, owner *model.User, req *types.CreateFolderRequest) (*types.FolderResponse, error) {
	name := normalizeName(req.Name)
	if !rule.ValidEntryName(name) {
		return nil, errdefs.Validationf("invalid folder name %q", req.Name)
	}

	parentID := optionalID(req.ParentID)
	if parentID != nil {
		if _, err := requireOwnedFolder(ctx, fs.dbClient, owner.ID, *parentID); err != nil {
			return nil, err
		}
	}

	if err := fs.checkSiblingName(ctx, owner.ID, parentID, name, ""); err != nil {
		return nil, err
	}

	folder := model.Folder{
		ID:       newID(),
		OwnerID:  owner.ID,
		ParentID: parentID,
		Name:     name,
	}

	if err := fs.dbClient.WithContext(ctx).Create(&folder).Error; err != nil {
		return nil, errdefs.Internalf(err, "create folder")
	}

	fs.publishFolderEvent(queue.TopicFolderCreated, &folder)

	resp := toFolderResponse(&folder)

	return &resp, nil
}

// Rename 重命名文件夹，新名字与同级文件夹冲突时拒绝.
func (fs *FolderService) Rename(ctx context.Context, owner *model.User, folderID string, req *types.RenameFolderRequest) (*types.FolderResponse, error) {
	name := normalizeName(req.Name)
	if !rule.ValidEntryName(name) {
		return nil, errdefs.Validationf("invalid folder name %q", req.Name)
	}

	folder, err := requireOwnedFolder(ctx, fs.dbClient, owner.ID, folderID)
	if err != nil {
		return nil, err
	}

	if name != folder.Name {
		if err := fs.checkSiblingName(ctx, owner.ID, folder.ParentID, name, folder.ID); err != nil {
			return nil, err
		}

		folder.Name = name
		if err := fs.dbClient.WithContext(ctx).Model(folder).Update("name", name).Error; err != nil {
			return nil, errdefs.Internalf(err, "rename folder")
		}

		// 重命名影响所有后代的面包屑
		fs.invalidatePathCache(ctx)
	}

	resp := toFolderResponse(folder)

	return &resp, nil
}

// Delete 删除空文件夹；仍有内容时拒绝.
// 同时清理指向它的分享与公开链接.
func (fs *FolderService) Delete(ctx context.Context, owner *model.User, folderID string) error {
	folder, err := requireOwnedFolder(ctx, fs.dbClient, owner.ID, folderID)
	if err != nil {
		return err
	}

	q := fs.dbClient.WithContext(ctx)

	var children int64
	if err := scopeParent(q.Model(&model.Folder{}).Where("owner_id = ?", owner.ID), "parent_id", &folder.ID).
		Count(&children).Error; err != nil {
		return errdefs.Internalf(err, "count subfolders")
	}

	var files int64
	if err := scopeParent(q.Model(&model.File{}).Where("owner_id = ?", owner.ID), "folder_id", &folder.ID).
		Count(&files).Error; err != nil {
		return errdefs.Internalf(err, "count files")
	}

	if children > 0 || files > 0 {
		return errdefs.Conflictf("folder %s is not empty", folderID)
	}

	err = q.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("resource_type = ? AND resource_id = ?", model.ResourceFolder, folder.ID).
			Delete(&model.Share{}).Error; err != nil {
			return err
		}

		if err := tx.Where("resource_type = ? AND resource_id = ?", model.ResourceFolder, folder.ID).
			Delete(&model.PublicLink{}).Error; err != nil {
			return err
		}

		return tx.Delete(folder).Error
	})
	if err != nil {
		return errdefs.Internalf(err, "delete folder")
	}

	fs.invalidatePathCache(ctx)
	fs.publishFolderEvent(queue.TopicFolderDeleted, folder)

	return nil
}

// Get 返回文件夹详情及面包屑路径.
func (fs *FolderService) Get(ctx context.Context, owner *model.User, folderID string) (*types.FolderDetailResponse, error) {
	folder, err := requireOwnedFolder(ctx, fs.dbClient, owner.ID, folderID)
	if err != nil {
		return nil, err
	}

	return &types.FolderDetailResponse{
		Folder: toFolderResponse(folder),
		Path:   folderPath(ctx, fs.dbClient, fs.pathCC, owner.ID, &folder.ID),
	}, nil
}

// ListContents 列出文件夹（空 ID 为根目录）下的子文件夹与文件.
func (fs *FolderService) ListContents(ctx context.Context, owner *model.User, folderID string) (*types.ListFolderResponse, error) {
	parentID := optionalID(folderID)
	if parentID != nil {
		if _, err := requireOwnedFolder(ctx, fs.dbClient, owner.ID, *parentID); err != nil {
			return nil, err
		}
	}

	q := fs.dbClient.WithContext(ctx)

	var folders []model.Folder
	if err := scopeParent(q.Where("owner_id = ?", owner.ID), "parent_id", parentID).
		Order("name ASC").
		Find(&folders).Error; err != nil {
		return nil, errdefs.Internalf(err, "list folders")
	}

	var files []model.File
	if err := scopeParent(q.Where("owner_id = ?", owner.ID), "folder_id", parentID).
		Order("name ASC").
		Find(&files).Error; err != nil {
		return nil, errdefs.Internalf(err, "list files")
	}

	resp := &types.ListFolderResponse{
		Folders: make([]types.FolderResponse, 0, len(folders)),
		Files:   make([]types.FileResponse, 0, len(files)),
		Path:    folderPath(ctx, fs.dbClient, fs.pathCC, owner.ID, parentID),
		Total:   int64(len(folders) + len(files)),
	}

	for i := range folders {
		resp.Folders = append(resp.Folders, toFolderResponse(&folders[i]))
	}

	for i := range files {
		resp.Files = append(resp.Files, toFileResponse(&files[i]))
	}

	return resp, nil
}

// List 列出文件夹本身（不含文件）：全部或某个父级的直接子级.
func (fs *FolderService) List(ctx context.Context, owner *model.User, query *types.ListFoldersQuery) (*types.ListFoldersResponse, error) {
	q := fs.dbClient.WithContext(ctx).Where("owner_id = ?", owner.ID)

	if !query.All {
		parentID := optionalID(query.ParentID)
		if parentID != nil {
			if _, err := requireOwnedFolder(ctx, fs.dbClient, owner.ID, *parentID); err != nil {
				return nil, err
			}
		}

		q = scopeParent(q, "parent_id", parentID)
	}

	var folders []model.Folder
	if err := q.Order("name ASC").Find(&folders).Error; err != nil {
		return nil, errdefs.Internalf(err, "list folders")
	}

	resp := &types.ListFoldersResponse{
		Folders: make([]types.FolderResponse, 0, len(folders)),
		Total:   int64(len(folders)),
	}

	for i := range folders {
		resp.Folders = append(resp.Folders, toFolderResponse(&folders[i]))
	}

	return resp, nil
}

// Path 返回文件夹（空 ID 为根目录）的面包屑路径.
func (fs *FolderService) Path(ctx context.Context, owner *model.User, folderID string) ([]types.PathSegment, error) {
	parentID := optionalID(folderID)
	if parentID != nil {
		if _, err := requireOwnedFolder(ctx, fs.dbClient, owner.ID, *parentID); err != nil {
			return nil, err
		}
	}

	return folderPath(ctx, fs.dbClient, fs.pathCC, owner.ID, parentID), nil
}

// checkSiblingName 同级文件夹重名检查；excludeID 排除自身（重命名场景）.
func (fs *FolderService) checkSiblingName(ctx context.Context, ownerID string, parentID *string, name, excludeID string) error {
	q := scopeParent(
		fs.dbClient.WithContext(ctx).Model(&model.Folder{}).
			Where("owner_id = ? AND name = ?", ownerID, name),
		"parent_id", parentID,
	)
	if excludeID != "" {
		q = q.Where("id <> ?", excludeID)
	}

	var count int64
	if err := q.Count(&count).Error; err != nil {
		return errdefs.Internalf(err, "check sibling name")
	}

	if count > 0 {
		return errdefs.Conflictf("folder %q already exists here", name)
	}

	return nil
}

// invalidatePathCache 丢弃全部面包屑缓存.
func (fs *FolderService) invalidatePathCache(ctx context.Context) {
	if fs.pathCC != nil {
		_ = fs.pathCC.DeletePrefix(ctx, "path")
	}
}

func (fs *FolderService) publishFolderEvent(topic string, folder *model.Folder) {
	if fs.mqClient == nil {
		return
	}

	evCfg := configs.GetConfig().Events
	if !evCfg.Enabled {
		return
	}

	switch topic {
	case queue.TopicFolderCreated:
		if !evCfg.Folder.Created {
			return
		}
	case queue.TopicFolderDeleted:
		if !evCfg.Folder.Deleted {
			return
		}
	}

	payload := queue.FolderPayload{
		FolderID: folder.ID,
		OwnerID:  folder.OwnerID,
		ParentID: derefID(folder.ParentID),
		Name:     folder.Name,
	}

	msg, err := queue.NewWatermillMessage(topic, payload, queue.WithProducer("drivevault"))
	if err != nil {
		logPublishErr(topic, err)
		return
	}

	logPublishErr(topic, fs.mqClient.Publish(context.Background(), topic, msg))
}
