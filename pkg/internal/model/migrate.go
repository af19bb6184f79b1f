package model

import (
	"gorm.io/gorm"
)

// AllModels 返回需要迁移的全部模型，顺序兼顾外键依赖.
func AllModels() []any {
	return []any{
		&User{},
		&Folder{},
		&File{},
		&FileVersion{},
		&Share{},
		&PublicLink{},
	}
}

// AutoMigrate 执行全部模型的自动迁移.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(AllModels()...)
}
