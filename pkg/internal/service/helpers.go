package service

import (
	"context"
	"crypto/rand"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid"
	"gorm.io/gorm"

	"github.com/yeisme/drivevault/pkg/cache"
	"github.com/yeisme/drivevault/pkg/errdefs"
	"github.com/yeisme/drivevault/pkg/internal/model"
	dbc "github.com/yeisme/drivevault/pkg/internal/storage/db"
	"github.com/yeisme/drivevault/pkg/internal/types"
	dlog "github.com/yeisme/drivevault/pkg/log"
)

const (
	// RootFolderName 根目录的展示名称.
	RootFolderName = "My Drive"

	// maxPathDepth 路径回溯的上限，防御脏数据中的环.
	maxPathDepth = 1000

	// pathCacheTTL 面包屑路径缓存时长.
	pathCacheTTL = time.Minute
)

// newID 生成资源主键.
func newID() string {
	return uuid.NewString()
}

// newShareID 生成分享记录 ID，ULID 按时间有序便于排查.
func newShareID() string {
	return ulid.MustNew(ulid.Timestamp(time.Now()), ulid.Monotonic(rand.Reader, 0)).String()
}

// normalizeName 去除名称首尾空白.
func normalizeName(name string) string {
	return strings.TrimSpace(name)
}

// optionalID 把空字符串转换为 nil 指针，对应"根目录"语义.
func optionalID(id string) *string {
	if id == "" {
		return nil
	}

	return &id
}

// derefID 把 nil 指针转换回空字符串.
func derefID(id *string) string {
	if id == nil {
		return ""
	}

	return *id
}

// scopeParent 构造父级过滤条件：nil 匹配 NULL（根目录）.
func scopeParent(q *gorm.DB, column string, id *string) *gorm.DB {
	if id == nil {
		return q.Where(column + " IS NULL")
	}

	return q.Where(column+" = ?", *id)
}

// folderPath 构建文件夹的面包屑路径（从根到自身），结果短暂缓存.
// folderID 为 nil 时只返回根段.遇到环或悬空父级时在安全上限内终止.
func folderPath(ctx context.Context, dbClient *dbc.Client, c *cache.Cache, ownerID string, folderID *string) []types.PathSegment {
	root := types.PathSegment{Name: RootFolderName}
	if folderID == nil {
		return []types.PathSegment{root}
	}

	build := func() ([]types.PathSegment, error) {
		segments := make([]types.PathSegment, 0, 8)
		seen := make(map[string]struct{})
		cur := *folderID

		for range maxPathDepth {
			if _, dup := seen[cur]; dup {
				break
			}

			seen[cur] = struct{}{}

			var folder model.Folder
			err := dbClient.WithContext(ctx).
				Where("id = ? AND owner_id = ?", cur, ownerID).
				First(&folder).Error
			if err != nil {
				// 悬空父级：截断到已收集的部分
				break
			}

			segments = append(segments, types.PathSegment{ID: folder.ID, Name: folder.Name})

			if folder.ParentID == nil {
				break
			}

			cur = *folder.ParentID
		}

		// 反转为 根 → 叶 顺序
		out := make([]types.PathSegment, 0, len(segments)+1)
		out = append(out, root)

		for i := len(segments) - 1; i >= 0; i-- {
			out = append(out, segments[i])
		}

		return out, nil
	}

	if c == nil {
		segments, _ := build()
		return segments
	}

	key := cache.Key("path", ownerID, *folderID)

	segments, err := cache.GetOrSet(ctx, c, key, build, pathCacheTTL)
	if err != nil {
		segments, _ = build()
	}

	return segments
}

// requireOwnedFolder 取属于 owner 的文件夹；不可见即 not found.
func requireOwnedFolder(ctx context.Context, dbClient *dbc.Client, ownerID, folderID string) (*model.Folder, error) {
	var folder model.Folder

	err := dbClient.WithContext(ctx).
		Where("id = ? AND owner_id = ?", folderID, ownerID).
		First(&folder).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errdefs.NotFoundf("folder %s", folderID)
		}

		return nil, errdefs.Internalf(err, "lookup folder")
	}

	return &folder, nil
}

// requireOwnedFile 取属于 owner 的文件；不可见即 not found.
func requireOwnedFile(ctx context.Context, dbClient *dbc.Client, ownerID, fileID string) (*model.File, error) {
	var file model.File

	err := dbClient.WithContext(ctx).
		Where("id = ? AND owner_id = ?", fileID, ownerID).
		First(&file).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errdefs.NotFoundf("file %s", fileID)
		}

		return nil, errdefs.Internalf(err, "lookup file")
	}

	return &file, nil
}

// logPublishErr 事件发布失败只记录日志，不影响主流程.
func logPublishErr(topic string, err error) {
	if err != nil {
		dlog.Logger().Warn().Err(err).Str("topic", topic).Msg("publish event failed")
	}
}

// ---------- 模型到响应的转换 ----------

func toFolderResponse(f *model.Folder) types.FolderResponse {
	return types.FolderResponse{
		ID:        f.ID,
		Name:      f.Name,
		ParentID:  derefID(f.ParentID),
		OwnerID:   f.OwnerID,
		CreatedAt: f.CreatedAt,
		UpdatedAt: f.UpdatedAt,
	}
}

func toFileResponse(f *model.File) types.FileResponse {
	return types.FileResponse{
		ID:            f.ID,
		Name:          f.Name,
		OriginalName:  f.OriginalName,
		FolderID:      derefID(f.FolderID),
		OwnerID:       f.OwnerID,
		Size:          f.Size,
		ContentType:   f.ContentType,
		ETag:          f.ETag,
		Metadata:      f.Metadata,
		DownloadCount: f.DownloadCount,
		CreatedAt:     f.CreatedAt,
		UpdatedAt:     f.UpdatedAt,
	}
}

func toUserResponse(u *model.User) types.UserResponse {
	return types.UserResponse{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		CreatedAt: u.CreatedAt,
	}
}
