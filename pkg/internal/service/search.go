package service

import (
	"context"
	"strings"

	"github.com/yeisme/drivevault/pkg/cache"
	ctxPkg "github.com/yeisme/drivevault/pkg/context"
	"github.com/yeisme/drivevault/pkg/errdefs"
	"github.com/yeisme/drivevault/pkg/internal/model"
	"github.com/yeisme/drivevault/pkg/internal/storage/db"
	"github.com/yeisme/drivevault/pkg/internal/storage/kv"
	"github.com/yeisme/drivevault/pkg/internal/types"
)

// SearchService 全盘名称搜索，结果带面包屑路径.
type SearchService struct {
	dbClient *db.Client
	pathCC   *cache.Cache
}

func NewSearchService(c context.Context) *SearchService {
	ss := &SearchService{dbClient: ctxPkg.GetDBClient(c)}

	if kvClient := ctxPkg.GetKVClient(c); kvClient != nil {
		ss.pathCC = cache.NewCache(kvClient.KVStore)
	}

	return ss
}

// NewSearchServiceWith 直接注入依赖，供测试使用.
func NewSearchServiceWith(dbClient *db.Client, kvStore kv.KVStore) *SearchService {
	ss := &SearchService{dbClient: dbClient}
	if kvStore != nil {
		ss.pathCC = cache.NewCache(kvStore)
	}

	return ss
}

// Search 按名称子串搜索调用者的文件与文件夹，不区分大小写.
// 文件夹在前、文件在后，各自按名称排序；分页作用于合并后的序列.
func (ss *SearchService) Search(ctx context.Context, owner *model.User, q *types.SearchQuery) (*types.SearchResponse, error) {
	term := strings.TrimSpace(q.Q)
	if term == "" {
		return nil, errdefs.Validationf("empty search query")
	}

	page := q.Page
	if page < 1 {
		page = 1
	}

	pageSize := q.PageSize
	if pageSize < 1 {
		pageSize = defaultPageSize
	}

	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}

	kind := q.Type
	if kind == "" {
		kind = "all"
	}

	pattern := "%" + strings.ToLower(term) + "%"
	order := searchOrder(q.SortBy, q.Order)
	dbq := ss.dbClient.WithContext(ctx)

	var (
		folderTotal int64
		fileTotal   int64
	)

	if kind == "all" || kind == "folder" {
		err := dbq.Model(&model.Folder{}).
			Where("owner_id = ? AND LOWER(name) LIKE ?", owner.ID, pattern).
			Count(&folderTotal).Error
		if err != nil {
			return nil, errdefs.Internalf(err, "count folders")
		}
	}

	if kind == "all" || kind == "file" {
		err := dbq.Model(&model.File{}).
			Where("owner_id = ? AND LOWER(name) LIKE ?", owner.ID, pattern).
			Count(&fileTotal).Error
		if err != nil {
			return nil, errdefs.Internalf(err, "count files")
		}
	}

	resp := &types.SearchResponse{
		Hits:     make([]types.SearchHit, 0, pageSize),
		Total:    folderTotal + fileTotal,
		Page:     page,
		PageSize: pageSize,
	}

	offset := (page - 1) * pageSize
	remaining := pageSize

	// 文件夹段
	if offset < int(folderTotal) && remaining > 0 {
		var folders []model.Folder

		err := dbq.
			Where("owner_id = ? AND LOWER(name) LIKE ?", owner.ID, pattern).
			Order(order).
			Offset(offset).
			Limit(remaining).
			Find(&folders).Error
		if err != nil {
			return nil, errdefs.Internalf(err, "search folders")
		}

		for i := range folders {
			fr := toFolderResponse(&folders[i])
			resp.Hits = append(resp.Hits, types.SearchHit{
				Type:   "folder",
				Path:   folderPath(ctx, ss.dbClient, ss.pathCC, owner.ID, folders[i].ParentID),
				Folder: &fr,
			})
		}

		remaining -= len(folders)
		offset = 0
	} else {
		offset -= int(folderTotal)
		if offset < 0 {
			offset = 0
		}
	}

	// 文件段
	if remaining > 0 && fileTotal > 0 {
		var files []model.File

		err := dbq.
			Where("owner_id = ? AND LOWER(name) LIKE ?", owner.ID, pattern).
			Order(order).
			Offset(offset).
			Limit(remaining).
			Find(&files).Error
		if err != nil {
			return nil, errdefs.Internalf(err, "search files")
		}

		for i := range files {
			fr := toFileResponse(&files[i])
			resp.Hits = append(resp.Hits, types.SearchHit{
				Type: "file",
				Path: folderPath(ctx, ss.dbClient, ss.pathCC, owner.ID, files[i].FolderID),
				File: &fr,
			})
		}
	}

	return resp, nil
}

// searchOrder 文件与文件夹共有列的排序子句，非法输入回落到 name ASC.
func searchOrder(sortBy, order string) string {
	column := "name"
	if sortBy == "created_at" {
		column = "created_at"
	}

	direction := "ASC"
	if strings.EqualFold(order, "desc") {
		direction = "DESC"
	}

	return column + " " + direction
}
