package service_test

import (
	"context"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/yeisme/drivevault/pkg/internal/model"
	"github.com/yeisme/drivevault/pkg/internal/service"
	dbc "github.com/yeisme/drivevault/pkg/internal/storage/db"
)

// newTestDB 打开一个独立的内存库并建表.
func newTestDB(t *testing.T) *dbc.Client {
	t.Helper()

	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	if err := model.AutoMigrate(gdb); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	return dbc.NewClient(gdb)
}

// newTestUser 经由身份解析路径落一个用户.
func newTestUser(t *testing.T, db *dbc.Client, email string) *model.User {
	t.Helper()

	user, err := service.NewUserServiceWith(db).Resolve(context.Background(), "", email, "")
	if err != nil {
		t.Fatalf("resolve user %s: %v", email, err)
	}

	return user
}

// seedFile 直接写一条文件记录，绕过对象存储.
func seedFile(t *testing.T, db *dbc.Client, owner *model.User, folderID *string, name string, size int64) *model.File {
	t.Helper()

	file := &model.File{
		ID:           uuid.NewString(),
		OwnerID:      owner.ID,
		FolderID:     folderID,
		Name:         name,
		OriginalName: name,
		Size:         size,
		ContentType:  "text/plain",
		ObjectKey:    "test/" + name,
		Bucket:       "test",
	}

	if err := db.Create(file).Error; err != nil {
		t.Fatalf("seed file %s: %v", name, err)
	}

	return file
}

// seedFolder 直接写一条文件夹记录.
func seedFolder(t *testing.T, db *dbc.Client, owner *model.User, parentID *string, name string) *model.Folder {
	t.Helper()

	folder := &model.Folder{
		ID:       uuid.NewString(),
		OwnerID:  owner.ID,
		ParentID: parentID,
		Name:     name,
	}

	if err := db.Create(folder).Error; err != nil {
		t.Fatalf("seed folder %s: %v", name, err)
	}

	return folder
}
