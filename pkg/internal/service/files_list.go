package service

import (
	"context"
	"strings"

	"github.com/yeisme/drivevault/pkg/errdefs"
	"github.com/yeisme/drivevault/pkg/internal/model"
	"github.com/yeisme/drivevault/pkg/internal/types"
)

const (
	defaultPageSize = 50
	maxPageSize     = 100
)

// sortColumns 列表排序字段白名单，避免把用户输入拼进 ORDER BY.
var sortColumns = map[string]string{
	"name":       "name",
	"size":       "size",
	"created_at": "created_at",
	"updated_at": "updated_at",
}

// List 分页列出文件，支持目录过滤、名称子串搜索与排序.
func (fs *FileService) List(ctx context.Context, owner *model.User, query *types.ListFilesQuery) (*types.ListFilesResponse, error) {
	page := query.Page
	if page < 1 {
		page = 1
	}

	pageSize := query.PageSize
	if pageSize < 1 {
		pageSize = defaultPageSize
	}

	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}

	q := fs.dbClient.WithContext(ctx).Model(&model.File{}).Where("owner_id = ?", owner.ID)

	if category := strings.TrimSpace(query.Category); category != "" {
		q = q.Where("content_type = ?", category)
	}

	// 有搜索词时跨全盘搜索，否则按目录过滤
	search := strings.TrimSpace(query.Search)
	if search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		q = q.Where("LOWER(name) LIKE ? OR LOWER(original_name) LIKE ? OR LOWER(content_type) LIKE ?", pattern, pattern, pattern)
	} else {
		folderID := optionalID(query.FolderID)
		if folderID != nil {
			if _, err := requireOwnedFolder(ctx, fs.dbClient, owner.ID, *folderID); err != nil {
				return nil, err
			}
		}

		q = scopeParent(q, "folder_id", folderID)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, errdefs.Internalf(err, "count files")
	}

	q = q.Order(buildOrder(query.SortBy, query.Order))

	var files []model.File
	if err := q.Offset((page - 1) * pageSize).Limit(pageSize).Find(&files).Error; err != nil {
		return nil, errdefs.Internalf(err, "list files")
	}

	resp := &types.ListFilesResponse{
		Files:    make([]types.FileResponse, 0, len(files)),
		Total:    total,
		Page:     page,
		PageSize: pageSize,
		HasMore:  int64(page*pageSize) < total,
	}

	for i := range files {
		resp.Files = append(resp.Files, toFileResponse(&files[i]))
	}

	return resp, nil
}

// buildOrder 组合排序子句，非法输入回落到 name ASC.
func buildOrder(sortBy, order string) string {
	column, ok := sortColumns[sortBy]
	if !ok {
		column = "name"
	}

	direction := "ASC"
	if strings.EqualFold(order, "desc") {
		direction = "DESC"
	}

	return column + " " + direction
}
