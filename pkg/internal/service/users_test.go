package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/yeisme/drivevault/pkg/errdefs"
	"github.com/yeisme/drivevault/pkg/internal/model"
	"github.com/yeisme/drivevault/pkg/internal/service"
	"github.com/yeisme/drivevault/pkg/internal/types"
)

func TestUserResolveUpsert(t *testing.T) {
	db := newTestDB(t)
	svc := service.NewUserServiceWith(db)
	ctx := context.Background()

	first, err := svc.Resolve(ctx, "", "Alice@Example.com ", "Alice")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}

	if first.Email != "alice@example.com" {
		t.Fatalf("email not normalized: %q", first.Email)
	}

	// 再次出现同一邮箱不会新建用户
	second, err := svc.Resolve(ctx, "", "alice@example.com", "")
	if err != nil {
		t.Fatalf("re-resolve: %v", err)
	}

	if second.ID != first.ID {
		t.Fatalf("expected same user, got %s vs %s", first.ID, second.ID)
	}

	// 上游开始携带 external id 后回填
	third, err := svc.Resolve(ctx, "oidc|12345", "alice@example.com", "")
	if err != nil {
		t.Fatalf("resolve with external id: %v", err)
	}

	if third.ID != first.ID || third.ExternalID != "oidc|12345" {
		t.Fatalf("external id not backfilled: %+v", third)
	}

	// 之后仅凭 external id 也能命中
	fourth, err := svc.Resolve(ctx, "oidc|12345", "", "")
	if err != nil {
		t.Fatalf("resolve by external id: %v", err)
	}

	if fourth.ID != first.ID {
		t.Fatalf("expected same user by external id")
	}

	var count int64

	db.Model(&model.User{}).Count(&count)

	if count != 1 {
		t.Fatalf("expected single user row, got %d", count)
	}

	if _, err := svc.Resolve(ctx, "", "", ""); !errors.Is(err, errdefs.ErrUnauthenticated) {
		t.Fatalf("expected unauthenticated, got %v", err)
	}
}

func TestUserSearch(t *testing.T) {
	db := newTestDB(t)
	svc := service.NewUserServiceWith(db)
	ctx := context.Background()

	newTestUser(t, db, "alice@example.com")
	newTestUser(t, db, "bob@example.com")
	newTestUser(t, db, "carol@other.org")

	resp, err := svc.Search(ctx, &types.SearchUsersQuery{Q: "example"})
	if err != nil {
		t.Fatalf("search: %v", err)
	}

	if len(resp.Users) != 2 {
		t.Fatalf("expected 2 users, got %d", len(resp.Users))
	}

	resp, err = svc.Search(ctx, &types.SearchUsersQuery{Q: "example", Limit: 1})
	if err != nil {
		t.Fatalf("limited search: %v", err)
	}

	if len(resp.Users) != 1 {
		t.Fatalf("limit not applied: %d", len(resp.Users))
	}

	if _, err := svc.Search(ctx, &types.SearchUsersQuery{Q: "  "}); !errors.Is(err, errdefs.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestUserStats(t *testing.T) {
	db := newTestDB(t)
	owner := newTestUser(t, db, "alice@example.com")
	other := newTestUser(t, db, "bob@example.com")
	svc := service.NewUserServiceWith(db)
	shareSvc := service.NewShareServiceWith(db, nil, nil, nil)
	ctx := context.Background()

	folder := seedFolder(t, db, owner, nil, "docs")
	seedFile(t, db, owner, &folder.ID, "a.txt", 100)
	file := seedFile(t, db, owner, nil, "b.txt", 50)
	seedFile(t, db, other, nil, "their.txt", 999)

	if _, err := shareSvc.Grant(ctx, owner, model.ResourceFile, file.ID, &types.GrantShareRequest{GranteeID: other.ID}); err != nil {
		t.Fatalf("grant: %v", err)
	}

	if _, err := shareSvc.CreateLink(ctx, owner, model.ResourceFile, file.ID, nil); err != nil {
		t.Fatalf("link: %v", err)
	}

	stats, err := svc.Stats(ctx, owner.ID)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}

	if stats.FileCount != 2 || stats.FolderCount != 1 || stats.TotalBytes != 150 {
		t.Fatalf("unexpected stats: %+v", stats)
	}

	if stats.ShareCount != 1 || stats.LinkCount != 1 {
		t.Fatalf("unexpected share stats: %+v", stats)
	}
}
