package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/yeisme/drivevault/pkg/errdefs"
	"github.com/yeisme/drivevault/pkg/internal/model"
	"github.com/yeisme/drivevault/pkg/internal/service"
	"github.com/yeisme/drivevault/pkg/internal/types"
)

func TestShareGrantUpsert(t *testing.T) {
	db := newTestDB(t)
	owner := newTestUser(t, db, "alice@example.com")
	grantee := newTestUser(t, db, "bob@example.com")
	svc := service.NewShareServiceWith(db, nil, nil, nil)
	ctx := context.Background()

	file := seedFile(t, db, owner, nil, "plan.txt", 1)

	first, err := svc.Grant(ctx, owner, model.ResourceFile, file.ID, &types.GrantShareRequest{GranteeID: grantee.ID})
	if err != nil {
		t.Fatalf("grant: %v", err)
	}

	if first.Permission != model.PermissionView {
		t.Fatalf("expected default view permission, got %q", first.Permission)
	}

	// 重复授予按更新权限处理，不产生第二条记录
	second, err := svc.Grant(ctx, owner, model.ResourceFile, file.ID, &types.GrantShareRequest{
		GranteeEmail: "bob@example.com",
		Permission:   model.PermissionEdit,
	})
	if err != nil {
		t.Fatalf("re-grant: %v", err)
	}

	if second.ID != first.ID || second.Permission != model.PermissionEdit {
		t.Fatalf("expected upsert on same share, got %+v vs %+v", first, second)
	}

	var count int64

	db.Model(&model.Share{}).Where("resource_id = ?", file.ID).Count(&count)

	if count != 1 {
		t.Fatalf("expected single share row, got %d", count)
	}
}

func TestShareGrantRejectsSelfAndForeign(t *testing.T) {
	db := newTestDB(t)
	owner := newTestUser(t, db, "alice@example.com")
	other := newTestUser(t, db, "bob@example.com")
	svc := service.NewShareServiceWith(db, nil, nil, nil)
	ctx := context.Background()

	file := seedFile(t, db, owner, nil, "plan.txt", 1)

	if _, err := svc.Grant(ctx, owner, model.ResourceFile, file.ID, &types.GrantShareRequest{GranteeEmail: "alice@example.com"}); !errors.Is(err, errdefs.ErrValidation) {
		t.Fatalf("expected validation for self-share, got %v", err)
	}

	// 非所有者操作按不存在处理
	if _, err := svc.Grant(ctx, other, model.ResourceFile, file.ID, &types.GrantShareRequest{GranteeID: owner.ID}); !errors.Is(err, errdefs.ErrNotFound) {
		t.Fatalf("expected not found for foreign resource, got %v", err)
	}

	// 未知受让人
	if _, err := svc.Grant(ctx, owner, model.ResourceFile, file.ID, &types.GrantShareRequest{GranteeEmail: "ghost@example.com"}); !errors.Is(err, errdefs.ErrNotFound) {
		t.Fatalf("expected not found for unknown grantee, got %v", err)
	}
}

func TestShareRevoke(t *testing.T) {
	db := newTestDB(t)
	owner := newTestUser(t, db, "alice@example.com")
	grantee := newTestUser(t, db, "bob@example.com")
	svc := service.NewShareServiceWith(db, nil, nil, nil)
	ctx := context.Background()

	folder := seedFolder(t, db, owner, nil, "shared")

	if _, err := svc.Grant(ctx, owner, model.ResourceFolder, folder.ID, &types.GrantShareRequest{GranteeID: grantee.ID}); err != nil {
		t.Fatalf("grant: %v", err)
	}

	if err := svc.Revoke(ctx, owner, model.ResourceFolder, folder.ID, grantee.ID); err != nil {
		t.Fatalf("revoke: %v", err)
	}

	if err := svc.Revoke(ctx, owner, model.ResourceFolder, folder.ID, grantee.ID); !errors.Is(err, errdefs.ErrNotFound) {
		t.Fatalf("expected not found on second revoke, got %v", err)
	}
}

func TestShareLinkSingletonRotation(t *testing.T) {
	db := newTestDB(t)
	owner := newTestUser(t, db, "alice@example.com")
	svc := service.NewShareServiceWith(db, nil, nil, nil)
	ctx := context.Background()

	file := seedFile(t, db, owner, nil, "plan.txt", 1)

	first, err := svc.CreateLink(ctx, owner, model.ResourceFile, file.ID, nil)
	if err != nil {
		t.Fatalf("create link: %v", err)
	}

	if first.Token == "" {
		t.Fatal("empty token")
	}

	second, err := svc.CreateLink(ctx, owner, model.ResourceFile, file.ID, &types.CreateLinkRequest{ExpiresInHours: 1})
	if err != nil {
		t.Fatalf("recreate link: %v", err)
	}

	if second.ID != first.ID {
		t.Fatalf("expected same link row, got %s vs %s", first.ID, second.ID)
	}

	if second.Token == first.Token {
		t.Fatal("token not rotated")
	}

	var count int64

	db.Model(&model.PublicLink{}).Where("resource_id = ?", file.ID).Count(&count)

	if count != 1 {
		t.Fatalf("expected single link row, got %d", count)
	}

	// 旧 Token 随即失效
	if _, err := svc.ResolveLink(ctx, first.Token); !errors.Is(err, errdefs.ErrNotFound) {
		t.Fatalf("expected not found for rotated token, got %v", err)
	}
}

func TestResolveLink(t *testing.T) {
	db := newTestDB(t)
	owner := newTestUser(t, db, "alice@example.com")
	svc := service.NewShareServiceWith(db, nil, nil, nil)
	ctx := context.Background()

	folder := seedFolder(t, db, owner, nil, "public")
	seedFolder(t, db, owner, &folder.ID, "sub")
	seedFile(t, db, owner, &folder.ID, "readme.txt", 5)

	link, err := svc.CreateLink(ctx, owner, model.ResourceFolder, folder.ID, nil)
	if err != nil {
		t.Fatalf("create link: %v", err)
	}

	resp, err := svc.ResolveLink(ctx, link.Token)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}

	if resp.ResourceType != string(model.ResourceFolder) || resp.Folder == nil {
		t.Fatalf("unexpected resolve result: %+v", resp)
	}

	if len(resp.Folders) != 1 || len(resp.Files) != 1 {
		t.Fatalf("expected folder listing, got %d folders %d files", len(resp.Folders), len(resp.Files))
	}

	// 目录浏览不计入访问次数
	var stored model.PublicLink
	if err := db.Where("token = ?", link.Token).First(&stored).Error; err != nil {
		t.Fatalf("reload link: %v", err)
	}

	if stored.AccessCount != 0 {
		t.Fatalf("expected access count 0 after folder resolve, got %d", stored.AccessCount)
	}

	if _, err := svc.ResolveLink(ctx, "no-such-token"); !errors.Is(err, errdefs.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestResolveLinkCountsFileAccess(t *testing.T) {
	db := newTestDB(t)
	owner := newTestUser(t, db, "alice@example.com")
	svc := service.NewShareServiceWith(db, nil, nil, nil)
	ctx := context.Background()

	file := seedFile(t, db, owner, nil, "report.pdf", 9)

	link, err := svc.CreateLink(ctx, owner, model.ResourceFile, file.ID, nil)
	if err != nil {
		t.Fatalf("create link: %v", err)
	}

	for i := 0; i < 2; i++ {
		if _, err := svc.ResolveLink(ctx, link.Token); err != nil {
			t.Fatalf("resolve %d: %v", i, err)
		}
	}

	var stored model.PublicLink
	if err := db.Where("token = ?", link.Token).First(&stored).Error; err != nil {
		t.Fatalf("reload link: %v", err)
	}

	if stored.AccessCount != 2 {
		t.Fatalf("expected access count 2 after file resolves, got %d", stored.AccessCount)
	}
}

func TestLinkOptionalExpiryAndPermission(t *testing.T) {
	db := newTestDB(t)
	owner := newTestUser(t, db, "alice@example.com")
	svc := service.NewShareServiceWith(db, nil, nil, nil)
	ctx := context.Background()

	file := seedFile(t, db, owner, nil, "forever.txt", 1)

	// 缺省：长期有效、view 权限
	link, err := svc.CreateLink(ctx, owner, model.ResourceFile, file.ID, nil)
	if err != nil {
		t.Fatalf("create link: %v", err)
	}

	if link.ExpiresAt != nil {
		t.Fatalf("expected no expiry, got %v", link.ExpiresAt)
	}

	if link.Permission != model.PermissionView {
		t.Fatalf("expected view permission, got %q", link.Permission)
	}

	resp, err := svc.ResolveLink(ctx, link.Token)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}

	if resp.ExpiresAt != nil || resp.Permission != model.PermissionView {
		t.Fatalf("unexpected resolve result: %+v", resp)
	}

	// 长期有效的链接不会被清理任务删掉
	purged, err := svc.PurgeExpiredLinks(ctx)
	if err != nil {
		t.Fatalf("purge: %v", err)
	}

	if purged != 0 {
		t.Fatalf("expected nothing purged, got %d", purged)
	}

	// 重新创建可以指定权限与有效期
	rotated, err := svc.CreateLink(ctx, owner, model.ResourceFile, file.ID, &types.CreateLinkRequest{
		Permission:     model.PermissionEdit,
		ExpiresInHours: 24,
	})
	if err != nil {
		t.Fatalf("recreate link: %v", err)
	}

	if rotated.Permission != model.PermissionEdit || rotated.ExpiresAt == nil {
		t.Fatalf("unexpected rotated link: %+v", rotated)
	}
}

func TestResolveLinkExpired(t *testing.T) {
	db := newTestDB(t)
	owner := newTestUser(t, db, "alice@example.com")
	svc := service.NewShareServiceWith(db, nil, nil, nil)
	ctx := context.Background()

	file := seedFile(t, db, owner, nil, "old.txt", 1)

	link, err := svc.CreateLink(ctx, owner, model.ResourceFile, file.ID, nil)
	if err != nil {
		t.Fatalf("create link: %v", err)
	}

	expired := time.Now().UTC().Add(-time.Hour)
	if err := db.Model(&model.PublicLink{}).Where("token = ?", link.Token).Update("expires_at", expired).Error; err != nil {
		t.Fatalf("expire link: %v", err)
	}

	if _, err := svc.ResolveLink(ctx, link.Token); !errors.Is(err, errdefs.ErrGone) {
		t.Fatalf("expected gone, got %v", err)
	}
}

func TestPurgeExpiredLinksAndOrphanShares(t *testing.T) {
	db := newTestDB(t)
	owner := newTestUser(t, db, "alice@example.com")
	grantee := newTestUser(t, db, "bob@example.com")
	svc := service.NewShareServiceWith(db, nil, nil, nil)
	ctx := context.Background()

	live := seedFile(t, db, owner, nil, "live.txt", 1)
	doomed := seedFile(t, db, owner, nil, "doomed.txt", 1)

	if _, err := svc.CreateLink(ctx, owner, model.ResourceFile, live.ID, nil); err != nil {
		t.Fatalf("create live link: %v", err)
	}

	stale, err := svc.CreateLink(ctx, owner, model.ResourceFile, doomed.ID, nil)
	if err != nil {
		t.Fatalf("create stale link: %v", err)
	}

	expired := time.Now().UTC().Add(-time.Minute)
	if err := db.Model(&model.PublicLink{}).Where("token = ?", stale.Token).Update("expires_at", expired).Error; err != nil {
		t.Fatalf("expire link: %v", err)
	}

	purged, err := svc.PurgeExpiredLinks(ctx)
	if err != nil {
		t.Fatalf("purge links: %v", err)
	}

	if purged != 1 {
		t.Fatalf("expected 1 purged link, got %d", purged)
	}

	// 孤儿分享：资源删除后留下的记录
	if _, err := svc.Grant(ctx, owner, model.ResourceFile, doomed.ID, &types.GrantShareRequest{GranteeID: grantee.ID}); err != nil {
		t.Fatalf("grant: %v", err)
	}

	if _, err := svc.Grant(ctx, owner, model.ResourceFile, live.ID, &types.GrantShareRequest{GranteeID: grantee.ID}); err != nil {
		t.Fatalf("grant live: %v", err)
	}

	if err := db.Delete(doomed).Error; err != nil {
		t.Fatalf("drop file row: %v", err)
	}

	purged, err = svc.PurgeOrphanShares(ctx)
	if err != nil {
		t.Fatalf("purge shares: %v", err)
	}

	if purged != 1 {
		t.Fatalf("expected 1 orphan share purged, got %d", purged)
	}

	var remaining int64

	db.Model(&model.Share{}).Count(&remaining)

	if remaining != 1 {
		t.Fatalf("expected live share to survive, got %d rows", remaining)
	}
}

func TestSharedWithMeSkipsDangling(t *testing.T) {
	db := newTestDB(t)
	owner := newTestUser(t, db, "alice@example.com")
	grantee := newTestUser(t, db, "bob@example.com")
	svc := service.NewShareServiceWith(db, nil, nil, nil)
	ctx := context.Background()

	file := seedFile(t, db, owner, nil, "kept.txt", 1)
	gone := seedFile(t, db, owner, nil, "gone.txt", 1)
	folder := seedFolder(t, db, owner, nil, "dir")

	for _, target := range []struct {
		rt model.ResourceType
		id string
	}{
		{model.ResourceFile, file.ID},
		{model.ResourceFile, gone.ID},
		{model.ResourceFolder, folder.ID},
	} {
		if _, err := svc.Grant(ctx, owner, target.rt, target.id, &types.GrantShareRequest{GranteeID: grantee.ID}); err != nil {
			t.Fatalf("grant %s: %v", target.id, err)
		}
	}

	if err := db.Delete(gone).Error; err != nil {
		t.Fatalf("drop file: %v", err)
	}

	items, err := svc.SharedWithMe(ctx, grantee, "")
	if err != nil {
		t.Fatalf("shared with me: %v", err)
	}

	if len(items) != 2 {
		t.Fatalf("expected 2 visible items, got %d", len(items))
	}

	// 类别过滤
	folders, err := svc.SharedWithMe(ctx, grantee, "folder")
	if err != nil {
		t.Fatalf("shared folders: %v", err)
	}

	if len(folders) != 1 || folders[0].Folder == nil {
		t.Fatalf("expected single folder item, got %+v", folders)
	}

	for _, item := range items {
		if item.OwnerEmail != "alice@example.com" {
			t.Fatalf("missing owner email: %+v", item)
		}

		if item.File == nil && item.Folder == nil {
			t.Fatalf("item without resource snapshot: %+v", item)
		}
	}

	// 所有者视角：State 列出两条授权中的一条资源
	state, err := svc.State(ctx, owner, model.ResourceFile, file.ID)
	if err != nil {
		t.Fatalf("state: %v", err)
	}

	if len(state.Shares) != 1 || state.Shares[0].GranteeEmail != "bob@example.com" {
		t.Fatalf("unexpected state: %+v", state.Shares)
	}

	if state.Link != nil {
		t.Fatalf("expected no link, got %+v", state.Link)
	}
}

func TestGrantManyAllOrNothing(t *testing.T) {
	db := newTestDB(t)
	owner := newTestUser(t, db, "alice@example.com")
	bob := newTestUser(t, db, "bob@example.com")
	carol := newTestUser(t, db, "carol@example.com")
	svc := service.NewShareServiceWith(db, nil, nil, nil)
	ctx := context.Background()

	file := seedFile(t, db, owner, nil, "plan.txt", 1)

	shares, err := svc.GrantMany(ctx, owner, model.ResourceFile, file.ID, &types.GrantShareRequest{
		Users: []types.ShareGrantee{
			{GranteeID: bob.ID, Permission: "edit"},
			{GranteeEmail: "carol@example.com"},
		},
	})
	if err != nil {
		t.Fatalf("grant many: %v", err)
	}

	if len(shares) != 2 {
		t.Fatalf("expected 2 shares, got %d", len(shares))
	}

	if shares[0].Permission != "edit" || shares[1].Permission != "view" {
		t.Fatalf("unexpected permissions: %+v", shares)
	}

	// 任何一个受让人无法解析：整批拒绝，不产生部分结果
	if err := db.Where("resource_id = ?", file.ID).Delete(&model.Share{}).Error; err != nil {
		t.Fatalf("reset shares: %v", err)
	}

	_, err = svc.GrantMany(ctx, owner, model.ResourceFile, file.ID, &types.GrantShareRequest{
		Users: []types.ShareGrantee{
			{GranteeID: bob.ID},
			{GranteeEmail: "ghost@example.com"},
		},
	})
	if !errors.Is(err, errdefs.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	var count int64

	db.Model(&model.Share{}).Where("resource_id = ?", file.ID).Count(&count)

	if count != 0 {
		t.Fatalf("expected no shares after rejected batch, got %d", count)
	}

	// 批量中的自我分享同样整批拒绝
	_, err = svc.GrantMany(ctx, owner, model.ResourceFile, file.ID, &types.GrantShareRequest{
		Users: []types.ShareGrantee{
			{GranteeID: carol.ID},
			{GranteeID: owner.ID},
		},
	})
	if !errors.Is(err, errdefs.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestShareExpiry(t *testing.T) {
	db := newTestDB(t)
	owner := newTestUser(t, db, "alice@example.com")
	grantee := newTestUser(t, db, "bob@example.com")
	svc := service.NewShareServiceWith(db, nil, nil, nil)
	ctx := context.Background()

	keep := seedFile(t, db, owner, nil, "keep.txt", 1)
	fade := seedFile(t, db, owner, nil, "fade.txt", 1)

	if _, err := svc.Grant(ctx, owner, model.ResourceFile, keep.ID, &types.GrantShareRequest{GranteeID: grantee.ID}); err != nil {
		t.Fatalf("grant keep: %v", err)
	}

	resp, err := svc.Grant(ctx, owner, model.ResourceFile, fade.ID, &types.GrantShareRequest{
		GranteeID:      grantee.ID,
		ExpiresInHours: 1,
	})
	if err != nil {
		t.Fatalf("grant fade: %v", err)
	}

	if resp.ExpiresAt == nil {
		t.Fatalf("expected expiry on share")
	}

	// 把有效期改到过去
	past := time.Now().UTC().Add(-time.Hour)
	if err := db.Model(&model.Share{}).Where("id = ?", resp.ID).Update("expires_at", past).Error; err != nil {
		t.Fatalf("expire share: %v", err)
	}

	items, err := svc.SharedWithMe(ctx, grantee, "")
	if err != nil {
		t.Fatalf("shared with me: %v", err)
	}

	if len(items) != 1 || items[0].File == nil || items[0].File.Name != "keep.txt" {
		t.Fatalf("expected only unexpired share, got %+v", items)
	}

	purged, err := svc.PurgeExpiredShares(ctx)
	if err != nil {
		t.Fatalf("purge: %v", err)
	}

	if purged != 1 {
		t.Fatalf("expected 1 share purged, got %d", purged)
	}

	var remaining int64

	db.Model(&model.Share{}).Count(&remaining)

	if remaining != 1 {
		t.Fatalf("expected unexpired share to survive, got %d", remaining)
	}
}

func TestDeleteLink(t *testing.T) {
	db := newTestDB(t)
	owner := newTestUser(t, db, "alice@example.com")
	svc := service.NewShareServiceWith(db, nil, nil, nil)
	ctx := context.Background()

	file := seedFile(t, db, owner, nil, "x.txt", 1)

	if err := svc.DeleteLink(ctx, owner, model.ResourceFile, file.ID); !errors.Is(err, errdefs.ErrNotFound) {
		t.Fatalf("expected not found without link, got %v", err)
	}

	if _, err := svc.CreateLink(ctx, owner, model.ResourceFile, file.ID, nil); err != nil {
		t.Fatalf("create link: %v", err)
	}

	if err := svc.DeleteLink(ctx, owner, model.ResourceFile, file.ID); err != nil {
		t.Fatalf("delete link: %v", err)
	}
}
