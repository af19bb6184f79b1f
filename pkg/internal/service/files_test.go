package service_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/yeisme/drivevault/pkg/configs"
	"github.com/yeisme/drivevault/pkg/errdefs"
	"github.com/yeisme/drivevault/pkg/internal/model"
	"github.com/yeisme/drivevault/pkg/internal/service"
	"github.com/yeisme/drivevault/pkg/internal/types"
)

func strPtr(s string) *string { return &s }

func TestFileUpdateRenameAndMove(t *testing.T) {
	db := newTestDB(t)
	owner := newTestUser(t, db, "alice@example.com")
	svc := service.NewFileServiceWith(db, nil, nil, nil)
	ctx := context.Background()

	docs := seedFolder(t, db, owner, nil, "docs")
	file := seedFile(t, db, owner, nil, "report.pdf", 100)
	seedFile(t, db, owner, &docs.ID, "taken.pdf", 100)

	// 空请求
	if _, err := svc.Update(ctx, owner, file.ID, &types.UpdateFileRequest{}); !errors.Is(err, errdefs.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}

	// 重命名
	resp, err := svc.Update(ctx, owner, file.ID, &types.UpdateFileRequest{Name: "final.pdf"})
	if err != nil {
		t.Fatalf("rename: %v", err)
	}

	if resp.Name != "final.pdf" {
		t.Fatalf("expected final.pdf, got %q", resp.Name)
	}

	// 移动到 docs
	resp, err = svc.Update(ctx, owner, file.ID, &types.UpdateFileRequest{FolderID: strPtr(docs.ID)})
	if err != nil {
		t.Fatalf("move: %v", err)
	}

	if resp.FolderID != docs.ID {
		t.Fatalf("expected folder %s, got %q", docs.ID, resp.FolderID)
	}

	// 目标位置重名冲突
	if _, err := svc.Update(ctx, owner, file.ID, &types.UpdateFileRequest{Name: "taken.pdf"}); !errors.Is(err, errdefs.ErrConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}

	// 移回根目录：显式空字符串
	resp, err = svc.Update(ctx, owner, file.ID, &types.UpdateFileRequest{FolderID: strPtr("")})
	if err != nil {
		t.Fatalf("move to root: %v", err)
	}

	if resp.FolderID != "" {
		t.Fatalf("expected root, got %q", resp.FolderID)
	}

	// 目标文件夹必须存在
	if _, err := svc.Update(ctx, owner, file.ID, &types.UpdateFileRequest{FolderID: strPtr("missing")}); !errors.Is(err, errdefs.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestFileDeleteCleansRelatedRows(t *testing.T) {
	db := newTestDB(t)
	owner := newTestUser(t, db, "alice@example.com")
	grantee := newTestUser(t, db, "bob@example.com")
	svc := service.NewFileServiceWith(db, nil, nil, nil)
	shareSvc := service.NewShareServiceWith(db, nil, nil, nil)
	ctx := context.Background()

	file := seedFile(t, db, owner, nil, "doomed.txt", 10)

	if err := db.Create(&model.FileVersion{ID: "v1", FileID: file.ID, Version: 1, Size: 10, ObjectKey: file.ObjectKey}).Error; err != nil {
		t.Fatalf("seed version: %v", err)
	}

	if _, err := shareSvc.Grant(ctx, owner, model.ResourceFile, file.ID, &types.GrantShareRequest{GranteeID: grantee.ID}); err != nil {
		t.Fatalf("grant: %v", err)
	}

	if _, err := shareSvc.CreateLink(ctx, owner, model.ResourceFile, file.ID, nil); err != nil {
		t.Fatalf("create link: %v", err)
	}

	if err := svc.Delete(ctx, owner, file.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	var versions, shares, links int64

	db.Model(&model.FileVersion{}).Where("file_id = ?", file.ID).Count(&versions)
	db.Model(&model.Share{}).Where("resource_id = ?", file.ID).Count(&shares)
	db.Model(&model.PublicLink{}).Where("resource_id = ?", file.ID).Count(&links)

	if versions != 0 || shares != 0 || links != 0 {
		t.Fatalf("related rows not cleaned: versions=%d shares=%d links=%d", versions, shares, links)
	}

	if err := svc.Delete(ctx, owner, file.ID); !errors.Is(err, errdefs.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestFileListPaginationSearchSort(t *testing.T) {
	db := newTestDB(t)
	owner := newTestUser(t, db, "alice@example.com")
	other := newTestUser(t, db, "bob@example.com")
	svc := service.NewFileServiceWith(db, nil, nil, nil)
	ctx := context.Background()

	docs := seedFolder(t, db, owner, nil, "docs")
	seedFile(t, db, owner, nil, "alpha.txt", 3)
	seedFile(t, db, owner, nil, "beta.txt", 1)
	seedFile(t, db, owner, &docs.ID, "gamma report.txt", 2)
	seedFile(t, db, other, nil, "alpha.txt", 9)

	// 目录过滤：根目录
	resp, err := svc.List(ctx, owner, &types.ListFilesQuery{})
	if err != nil {
		t.Fatalf("list root: %v", err)
	}

	if resp.Total != 2 {
		t.Fatalf("expected 2 root files, got %d", resp.Total)
	}

	// 搜索跨全盘且大小写不敏感
	resp, err = svc.List(ctx, owner, &types.ListFilesQuery{Search: "REPORT"})
	if err != nil {
		t.Fatalf("search: %v", err)
	}

	if resp.Total != 1 || resp.Files[0].Name != "gamma report.txt" {
		t.Fatalf("unexpected search result: %+v", resp.Files)
	}

	// 排序：size desc
	resp, err = svc.List(ctx, owner, &types.ListFilesQuery{Search: "txt", SortBy: "size", Order: "desc"})
	if err != nil {
		t.Fatalf("sorted list: %v", err)
	}

	if resp.Files[0].Size != 3 {
		t.Fatalf("expected largest first, got %+v", resp.Files)
	}

	// 分页
	resp, err = svc.List(ctx, owner, &types.ListFilesQuery{Search: "txt", Page: 1, PageSize: 2})
	if err != nil {
		t.Fatalf("paged list: %v", err)
	}

	if resp.Total != 3 || len(resp.Files) != 2 || !resp.HasMore {
		t.Fatalf("expected total 3 with more pages, got total=%d len=%d hasMore=%v", resp.Total, len(resp.Files), resp.HasMore)
	}

	resp, err = svc.List(ctx, owner, &types.ListFilesQuery{Search: "txt", Page: 2, PageSize: 2})
	if err != nil {
		t.Fatalf("paged list: %v", err)
	}

	if resp.Total != 3 || len(resp.Files) != 1 || resp.HasMore {
		t.Fatalf("expected total 3 with 1 on last page, got total=%d len=%d hasMore=%v", resp.Total, len(resp.Files), resp.HasMore)
	}

	// 页大小封顶 100
	resp, err = svc.List(ctx, owner, &types.ListFilesQuery{Search: "txt", PageSize: 500})
	if err != nil {
		t.Fatalf("oversized page: %v", err)
	}

	if resp.PageSize != 100 {
		t.Fatalf("expected page size capped at 100, got %d", resp.PageSize)
	}

	// 非法排序字段回落而不是报错
	if _, err := svc.List(ctx, owner, &types.ListFilesQuery{SortBy: "drop table"}); err != nil {
		t.Fatalf("list with bogus sort: %v", err)
	}
}

func TestFileSearchMatchesOriginalName(t *testing.T) {
	db := newTestDB(t)
	owner := newTestUser(t, db, "alice@example.com")
	svc := service.NewFileServiceWith(db, nil, nil, nil)
	ctx := context.Background()

	file := seedFile(t, db, owner, nil, "scan-2024.pdf", 7)

	if _, err := svc.Update(ctx, owner, file.ID, &types.UpdateFileRequest{Name: "contract.pdf"}); err != nil {
		t.Fatalf("rename: %v", err)
	}

	// 原始文件名在改名后仍可被搜到
	resp, err := svc.List(ctx, owner, &types.ListFilesQuery{Search: "scan-2024"})
	if err != nil {
		t.Fatalf("search: %v", err)
	}

	if resp.Total != 1 || resp.Files[0].Name != "contract.pdf" {
		t.Fatalf("unexpected search result: %+v", resp.Files)
	}

	if resp.Files[0].OriginalName != "scan-2024.pdf" {
		t.Fatalf("original name lost: %+v", resp.Files[0])
	}
}

func TestFileListCategoryFilter(t *testing.T) {
	db := newTestDB(t)
	owner := newTestUser(t, db, "alice@example.com")
	svc := service.NewFileServiceWith(db, nil, nil, nil)
	ctx := context.Background()

	seedFile(t, db, owner, nil, "notes.txt", 1)
	img := seedFile(t, db, owner, nil, "photo.png", 1)

	if err := db.Model(&model.File{}).Where("id = ?", img.ID).Update("content_type", "image/png").Error; err != nil {
		t.Fatalf("set content type: %v", err)
	}

	resp, err := svc.List(ctx, owner, &types.ListFilesQuery{Category: "image/png"})
	if err != nil {
		t.Fatalf("list by category: %v", err)
	}

	if resp.Total != 1 || resp.Files[0].Name != "photo.png" {
		t.Fatalf("unexpected category result: %+v", resp.Files)
	}

	// 搜索词同时匹配 MIME 类型
	resp, err = svc.List(ctx, owner, &types.ListFilesQuery{Search: "image"})
	if err != nil {
		t.Fatalf("search by mime: %v", err)
	}

	if resp.Total != 1 || resp.Files[0].Name != "photo.png" {
		t.Fatalf("unexpected mime search result: %+v", resp.Files)
	}
}

func TestBulkMovePartialFailure(t *testing.T) {
	db := newTestDB(t)
	owner := newTestUser(t, db, "alice@example.com")
	other := newTestUser(t, db, "bob@example.com")
	svc := service.NewFileServiceWith(db, nil, nil, nil)
	ctx := context.Background()

	target := seedFolder(t, db, owner, nil, "target")
	mine := seedFile(t, db, owner, nil, "mine.txt", 1)
	clash := seedFile(t, db, owner, &target.ID, "dup.txt", 1)
	_ = clash
	dup := seedFile(t, db, owner, nil, "dup.txt", 1)
	theirs := seedFile(t, db, other, nil, "theirs.txt", 1)

	resp, err := svc.BulkMove(ctx, owner, &types.BulkMoveRequest{
		FileIDs:        []string{mine.ID, dup.ID, theirs.ID},
		TargetFolderID: target.ID,
	})
	if err != nil {
		t.Fatalf("bulk move: %v", err)
	}

	if resp.Successful != 1 || resp.Failed != 2 {
		t.Fatalf("expected 1 ok / 2 failed, got %d/%d", resp.Successful, resp.Failed)
	}

	var moved model.File
	if err := db.Where("id = ?", mine.ID).First(&moved).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}

	if moved.FolderID == nil || *moved.FolderID != target.ID {
		t.Fatalf("file not moved: %+v", moved.FolderID)
	}

	// 目标不存在时整个请求拒绝
	if _, err := svc.BulkMove(ctx, owner, &types.BulkMoveRequest{FileIDs: []string{mine.ID}, TargetFolderID: "missing"}); !errors.Is(err, errdefs.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestBulkDeleteSkipsForeignFiles(t *testing.T) {
	db := newTestDB(t)
	owner := newTestUser(t, db, "alice@example.com")
	other := newTestUser(t, db, "bob@example.com")
	svc := service.NewFileServiceWith(db, nil, nil, nil)
	ctx := context.Background()

	mine := seedFile(t, db, owner, nil, "mine.txt", 1)
	theirs := seedFile(t, db, other, nil, "theirs.txt", 1)

	resp, err := svc.BulkDelete(ctx, owner, &types.BulkDeleteRequest{FileIDs: []string{mine.ID, theirs.ID}})
	if err != nil {
		t.Fatalf("bulk delete: %v", err)
	}

	if resp.Successful != 1 || resp.Failed != 1 {
		t.Fatalf("expected 1 ok / 1 failed, got %d/%d", resp.Successful, resp.Failed)
	}

	// 别人的文件原样保留
	var count int64

	db.Model(&model.File{}).Where("id = ?", theirs.ID).Count(&count)

	if count != 1 {
		t.Fatalf("foreign file should survive")
	}
}

func TestBulkOpsRejectWhollyForeignBatch(t *testing.T) {
	db := newTestDB(t)
	owner := newTestUser(t, db, "alice@example.com")
	other := newTestUser(t, db, "bob@example.com")
	svc := service.NewFileServiceWith(db, nil, nil, nil)
	ctx := context.Background()

	theirs := seedFile(t, db, other, nil, "theirs.txt", 1)
	target := seedFolder(t, db, owner, nil, "target")

	// 整批都不属于调用者：按 not found 处理而不是返回全失败的结果
	ids := []string{theirs.ID, "no-such-id"}

	if _, err := svc.BulkDelete(ctx, owner, &types.BulkDeleteRequest{FileIDs: ids}); !errors.Is(err, errdefs.ErrNotFound) {
		t.Fatalf("expected not found for foreign bulk delete, got %v", err)
	}

	if _, err := svc.BulkMove(ctx, owner, &types.BulkMoveRequest{FileIDs: ids, TargetFolderID: target.ID}); !errors.Is(err, errdefs.ErrNotFound) {
		t.Fatalf("expected not found for foreign bulk move, got %v", err)
	}

	// 别人的文件不受影响
	var count int64

	db.Model(&model.File{}).Where("id = ?", theirs.ID).Count(&count)

	if count != 1 {
		t.Fatalf("foreign file should survive")
	}
}

func TestUploadValidation(t *testing.T) {
	db := newTestDB(t)
	owner := newTestUser(t, db, "alice@example.com")
	svc := service.NewFileServiceWith(db, nil, nil, nil)
	ctx := context.Background()

	cfg := configs.GetConfig()
	origUpload := cfg.Upload

	t.Cleanup(func() { cfg.Upload = origUpload })

	cfg.Upload = configs.UploadConfig{
		MaxSizeBytes: 64,
		AllowedTypes: []string{"text/plain"},
	}

	cases := []struct {
		name        string
		fileName    string
		contentType string
		size        int64
		wantErr     error
	}{
		{"bad name", "../escape", "text/plain", 10, errdefs.ErrValidation},
		{"zero size", "a.txt", "text/plain", 0, errdefs.ErrValidation},
		{"too large", "a.txt", "text/plain", 65, errdefs.ErrTooLarge},
		{"bad type", "a.bin", "application/octet-stream", 10, errdefs.ErrUnsupportedType},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Upload(ctx, owner, "", tc.fileName, tc.contentType, tc.size, strings.NewReader("x"))
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("expected %v, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestFileVersionsOrder(t *testing.T) {
	db := newTestDB(t)
	owner := newTestUser(t, db, "alice@example.com")
	svc := service.NewFileServiceWith(db, nil, nil, nil)
	ctx := context.Background()

	file := seedFile(t, db, owner, nil, "doc.txt", 30)

	for i := 1; i <= 3; i++ {
		v := &model.FileVersion{
			ID:        file.ID + "-v" + string(rune('0'+i)),
			FileID:    file.ID,
			Version:   i,
			Size:      int64(i * 10),
			ObjectKey: file.ObjectKey,
		}
		if err := db.Create(v).Error; err != nil {
			t.Fatalf("seed version %d: %v", i, err)
		}
	}

	resp, err := svc.ListVersions(ctx, owner, file.ID)
	if err != nil {
		t.Fatalf("list versions: %v", err)
	}

	if len(resp.Versions) != 3 {
		t.Fatalf("expected 3 versions, got %d", len(resp.Versions))
	}

	if resp.Versions[0].Version != 3 || resp.Versions[2].Version != 1 {
		t.Fatalf("versions not newest-first: %+v", resp.Versions)
	}
}
