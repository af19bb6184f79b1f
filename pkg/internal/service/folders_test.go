package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/yeisme/drivevault/pkg/errdefs"
	"github.com/yeisme/drivevault/pkg/internal/service"
	"github.com/yeisme/drivevault/pkg/internal/storage/kv"
	"github.com/yeisme/drivevault/pkg/internal/types"
)

func TestFolderCreateSiblingConflict(t *testing.T) {
	db := newTestDB(t)
	owner := newTestUser(t, db, "alice@example.com")
	svc := service.NewFolderServiceWith(db, nil, nil)
	ctx := context.Background()

	docs, err := svc.Create(ctx, owner, &types.CreateFolderRequest{Name: "Documents"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if docs.ParentID != "" {
		t.Fatalf("expected root parent, got %q", docs.ParentID)
	}

	// 根目录下同名冲突，含首尾空白归一化
	if _, err := svc.Create(ctx, owner, &types.CreateFolderRequest{Name: "  Documents  "}); !errors.Is(err, errdefs.ErrConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}

	// 不同父级下同名不冲突
	if _, err := svc.Create(ctx, owner, &types.CreateFolderRequest{Name: "Documents", ParentID: docs.ID}); err != nil {
		t.Fatalf("create nested: %v", err)
	}

	// 其他用户不受影响
	bob := newTestUser(t, db, "bob@example.com")
	if _, err := svc.Create(ctx, bob, &types.CreateFolderRequest{Name: "Documents"}); err != nil {
		t.Fatalf("create for other owner: %v", err)
	}
}

func TestFolderCreateInvalidNames(t *testing.T) {
	db := newTestDB(t)
	owner := newTestUser(t, db, "alice@example.com")
	svc := service.NewFolderServiceWith(db, nil, nil)
	ctx := context.Background()

	for _, name := range []string{"", "   ", ".", "..", "a/b", "a\\b"} {
		if _, err := svc.Create(ctx, owner, &types.CreateFolderRequest{Name: name}); !errors.Is(err, errdefs.ErrValidation) {
			t.Errorf("name %q: expected validation error, got %v", name, err)
		}
	}
}

func TestFolderCreateUnknownParent(t *testing.T) {
	db := newTestDB(t)
	owner := newTestUser(t, db, "alice@example.com")
	other := newTestUser(t, db, "bob@example.com")
	svc := service.NewFolderServiceWith(db, nil, nil)
	ctx := context.Background()

	if _, err := svc.Create(ctx, owner, &types.CreateFolderRequest{Name: "x", ParentID: "missing"}); !errors.Is(err, errdefs.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	// 别人的文件夹对调用者不可见
	theirs := seedFolder(t, db, other, nil, "theirs")
	if _, err := svc.Create(ctx, owner, &types.CreateFolderRequest{Name: "x", ParentID: theirs.ID}); !errors.Is(err, errdefs.ErrNotFound) {
		t.Fatalf("expected not found for foreign parent, got %v", err)
	}
}

func TestFolderRename(t *testing.T) {
	db := newTestDB(t)
	owner := newTestUser(t, db, "alice@example.com")
	svc := service.NewFolderServiceWith(db, nil, nil)
	ctx := context.Background()

	a := seedFolder(t, db, owner, nil, "a")
	seedFolder(t, db, owner, nil, "b")

	// 与同级重名冲突
	if _, err := svc.Rename(ctx, owner, a.ID, &types.RenameFolderRequest{Name: "b"}); !errors.Is(err, errdefs.ErrConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}

	// 改回自己的名字是幂等的
	if _, err := svc.Rename(ctx, owner, a.ID, &types.RenameFolderRequest{Name: "a"}); err != nil {
		t.Fatalf("rename to same name: %v", err)
	}

	resp, err := svc.Rename(ctx, owner, a.ID, &types.RenameFolderRequest{Name: "c"})
	if err != nil {
		t.Fatalf("rename: %v", err)
	}

	if resp.Name != "c" {
		t.Fatalf("expected name c, got %q", resp.Name)
	}
}

func TestFolderDeleteRequiresEmpty(t *testing.T) {
	db := newTestDB(t)
	owner := newTestUser(t, db, "alice@example.com")
	svc := service.NewFolderServiceWith(db, nil, nil)
	ctx := context.Background()

	parent := seedFolder(t, db, owner, nil, "parent")
	child := seedFolder(t, db, owner, &parent.ID, "child")

	if err := svc.Delete(ctx, owner, parent.ID); !errors.Is(err, errdefs.ErrConflict) {
		t.Fatalf("expected conflict for folder with subfolder, got %v", err)
	}

	if err := svc.Delete(ctx, owner, child.ID); err != nil {
		t.Fatalf("delete empty child: %v", err)
	}

	file := seedFile(t, db, owner, &parent.ID, "note.txt", 10)

	if err := svc.Delete(ctx, owner, parent.ID); !errors.Is(err, errdefs.ErrConflict) {
		t.Fatalf("expected conflict for folder with file, got %v", err)
	}

	if err := db.Delete(file).Error; err != nil {
		t.Fatalf("remove file: %v", err)
	}

	if err := svc.Delete(ctx, owner, parent.ID); err != nil {
		t.Fatalf("delete emptied folder: %v", err)
	}

	if err := svc.Delete(ctx, owner, parent.ID); !errors.Is(err, errdefs.ErrNotFound) {
		t.Fatalf("expected not found on second delete, got %v", err)
	}
}

func TestFolderPathBreadcrumbs(t *testing.T) {
	db := newTestDB(t)
	owner := newTestUser(t, db, "alice@example.com")

	store, err := kv.NewKVStore(context.Background(), kv.KVTypeMemory, nil)
	if err != nil {
		t.Fatalf("memory kv: %v", err)
	}

	svc := service.NewFolderServiceWith(db, store, nil)
	ctx := context.Background()

	a := seedFolder(t, db, owner, nil, "a")
	b := seedFolder(t, db, owner, &a.ID, "b")
	c := seedFolder(t, db, owner, &b.ID, "c")

	path, err := svc.Path(ctx, owner, c.ID)
	if err != nil {
		t.Fatalf("path: %v", err)
	}

	want := []string{service.RootFolderName, "a", "b", "c"}
	if len(path) != len(want) {
		t.Fatalf("expected %d segments, got %d: %+v", len(want), len(path), path)
	}

	for i, seg := range path {
		if seg.Name != want[i] {
			t.Fatalf("segment %d: expected %q, got %q", i, want[i], seg.Name)
		}
	}

	// 根目录只有根段
	rootPath, err := svc.Path(ctx, owner, "")
	if err != nil {
		t.Fatalf("root path: %v", err)
	}

	if len(rootPath) != 1 || rootPath[0].Name != service.RootFolderName {
		t.Fatalf("unexpected root path: %+v", rootPath)
	}
}

func TestFolderPathHandlesCorruptTree(t *testing.T) {
	db := newTestDB(t)
	owner := newTestUser(t, db, "alice@example.com")
	svc := service.NewFolderServiceWith(db, nil, nil)
	ctx := context.Background()

	// 悬空父级：路径截断而不是报错
	dangling := "does-not-exist"
	orphan := seedFolder(t, db, owner, &dangling, "orphan")

	path, err := svc.Path(ctx, owner, orphan.ID)
	if err != nil {
		t.Fatalf("path: %v", err)
	}

	if len(path) != 2 || path[1].Name != "orphan" {
		t.Fatalf("unexpected truncated path: %+v", path)
	}

	// 环：a → b → a 在安全上限内终止
	a := seedFolder(t, db, owner, nil, "loop-a")
	b := seedFolder(t, db, owner, &a.ID, "loop-b")

	if err := db.Model(a).Update("parent_id", b.ID).Error; err != nil {
		t.Fatalf("corrupt tree: %v", err)
	}

	if _, err := svc.Path(ctx, owner, b.ID); err != nil {
		t.Fatalf("path over cycle: %v", err)
	}
}

func TestFolderList(t *testing.T) {
	db := newTestDB(t)
	owner := newTestUser(t, db, "alice@example.com")
	other := newTestUser(t, db, "bob@example.com")
	svc := service.NewFolderServiceWith(db, nil, nil)
	ctx := context.Background()

	docs := seedFolder(t, db, owner, nil, "docs")
	seedFolder(t, db, owner, &docs.ID, "nested")
	seedFolder(t, db, owner, nil, "music")
	seedFolder(t, db, other, nil, "theirs")

	// 根目录的直接子级
	resp, err := svc.List(ctx, owner, &types.ListFoldersQuery{})
	if err != nil {
		t.Fatalf("list root: %v", err)
	}

	if resp.Total != 2 || resp.Folders[0].Name != "docs" || resp.Folders[1].Name != "music" {
		t.Fatalf("unexpected root folders: %+v", resp.Folders)
	}

	// 某个父级的子级
	resp, err = svc.List(ctx, owner, &types.ListFoldersQuery{ParentID: docs.ID})
	if err != nil {
		t.Fatalf("list children: %v", err)
	}

	if resp.Total != 1 || resp.Folders[0].Name != "nested" {
		t.Fatalf("unexpected children: %+v", resp.Folders)
	}

	// 全量列表，不含他人的文件夹
	resp, err = svc.List(ctx, owner, &types.ListFoldersQuery{All: true})
	if err != nil {
		t.Fatalf("list all: %v", err)
	}

	if resp.Total != 3 {
		t.Fatalf("expected 3 folders, got %d", resp.Total)
	}

	if _, err := svc.List(ctx, owner, &types.ListFoldersQuery{ParentID: "missing"}); !errors.Is(err, errdefs.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestFolderListContents(t *testing.T) {
	db := newTestDB(t)
	owner := newTestUser(t, db, "alice@example.com")
	svc := service.NewFolderServiceWith(db, nil, nil)
	ctx := context.Background()

	docs := seedFolder(t, db, owner, nil, "docs")
	seedFolder(t, db, owner, &docs.ID, "zeta")
	seedFolder(t, db, owner, &docs.ID, "alpha")
	seedFile(t, db, owner, &docs.ID, "b.txt", 1)
	seedFile(t, db, owner, &docs.ID, "a.txt", 1)

	resp, err := svc.ListContents(ctx, owner, docs.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}

	if resp.Total != 4 {
		t.Fatalf("expected total 4, got %d", resp.Total)
	}

	if resp.Folders[0].Name != "alpha" || resp.Folders[1].Name != "zeta" {
		t.Fatalf("folders not sorted: %+v", resp.Folders)
	}

	if resp.Files[0].Name != "a.txt" || resp.Files[1].Name != "b.txt" {
		t.Fatalf("files not sorted: %+v", resp.Files)
	}

	// 根目录只包含顶层条目
	root, err := svc.ListContents(ctx, owner, "")
	if err != nil {
		t.Fatalf("list root: %v", err)
	}

	if len(root.Folders) != 1 || root.Folders[0].Name != "docs" {
		t.Fatalf("unexpected root listing: %+v", root.Folders)
	}
}
