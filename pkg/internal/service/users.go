package service

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	ctxPkg "github.com/yeisme/drivevault/pkg/context"
	"github.com/yeisme/drivevault/pkg/errdefs"
	"github.com/yeisme/drivevault/pkg/internal/model"
	"github.com/yeisme/drivevault/pkg/internal/storage/db"
	"github.com/yeisme/drivevault/pkg/internal/types"
)

const defaultUserSearchLimit = 10

// UserService 用户解析与检索.
type UserService struct {
	dbClient *db.Client
}

func NewUserService(c context.Context) *UserService {
	return &UserService{
		dbClient: ctxPkg.GetDBClient(c),
	}
}

// NewUserServiceWith 直接注入依赖，供测试与任务使用.
func NewUserServiceWith(dbClient *db.Client) *UserService {
	return &UserService{dbClient: dbClient}
}

// Resolve 按上游身份解析用户，首次出现时落库.
// 匹配顺序：ExternalID → Email；邮箱命中时回填 ExternalID.
func (us *UserService) Resolve(ctx context.Context, externalID, email, name string) (*model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if externalID == "" && email == "" {
		return nil, errdefs.ErrUnauthenticated
	}

	q := us.dbClient.WithContext(ctx)

	var user model.User

	if externalID != "" {
		if err := q.Where("external_id = ?", externalID).First(&user).Error; err == nil {
			return &user, nil
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errdefs.Internalf(err, "lookup user")
		}
	}

	if email != "" {
		err := q.Where("email = ?", email).First(&user).Error
		if err == nil {
			if externalID != "" && user.ExternalID != externalID {
				user.ExternalID = externalID
				if err := q.Model(&user).Update("external_id", externalID).Error; err != nil {
					return nil, errdefs.Internalf(err, "update user identity")
				}
			}

			return &user, nil
		}

		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errdefs.Internalf(err, "lookup user")
		}
	}

	user = model.User{
		ID:         newID(),
		ExternalID: externalID,
		Email:      email,
		Name:       name,
	}
	if user.ExternalID == "" {
		user.ExternalID = email
	}

	if err := q.Create(&user).Error; err != nil {
		return nil, errdefs.Internalf(err, "create user")
	}

	return &user, nil
}

// Get 按 ID 获取用户.
func (us *UserService) Get(ctx context.Context, id string) (*types.UserResponse, error) {
	var user model.User

	err := us.dbClient.WithContext(ctx).Where("id = ?", id).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errdefs.NotFoundf("user %s", id)
		}

		return nil, errdefs.Internalf(err, "lookup user")
	}

	resp := toUserResponse(&user)

	return &resp, nil
}

// GetByEmail 按邮箱获取用户.
func (us *UserService) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	var user model.User

	err := us.dbClient.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errdefs.NotFoundf("user %s", email)
		}

		return nil, errdefs.Internalf(err, "lookup user")
	}

	return &user, nil
}

// List 按邮箱升序列出用户.
func (us *UserService) List(ctx context.Context, limit int) (*types.SearchUsersResponse, error) {
	if limit <= 0 || limit > 100 {
		limit = 100
	}

	var users []model.User

	err := us.dbClient.WithContext(ctx).
		Order("email ASC").
		Limit(limit).
		Find(&users).Error
	if err != nil {
		return nil, errdefs.Internalf(err, "list users")
	}

	resp := &types.SearchUsersResponse{Users: make([]types.UserResponse, 0, len(users))}
	for i := range users {
		resp.Users = append(resp.Users, toUserResponse(&users[i]))
	}

	return resp, nil
}

// Search 按邮箱/名称子串检索用户，供分享收件人补全.
func (us *UserService) Search(ctx context.Context, query *types.SearchUsersQuery) (*types.SearchUsersResponse, error) {
	q := strings.ToLower(strings.TrimSpace(query.Q))
	if q == "" {
		return nil, errdefs.Validationf("empty query")
	}

	limit := query.Limit
	if limit <= 0 {
		limit = defaultUserSearchLimit
	}

	var users []model.User

	err := us.dbClient.WithContext(ctx).
		Where("LOWER(email) LIKE ? OR LOWER(name) LIKE ?", "%"+q+"%", "%"+q+"%").
		Order("email ASC").
		Limit(limit).
		Find(&users).Error
	if err != nil {
		return nil, errdefs.Internalf(err, "search users")
	}

	resp := &types.SearchUsersResponse{Users: make([]types.UserResponse, 0, len(users))}
	for i := range users {
		resp.Users = append(resp.Users, toUserResponse(&users[i]))
	}

	return resp, nil
}

// Stats 统计用户当前的存储占用与分享数量.
func (us *UserService) Stats(ctx context.Context, userID string) (*types.StorageStatsResponse, error) {
	q := us.dbClient.WithContext(ctx)
	stats := &types.StorageStatsResponse{}

	if err := q.Model(&model.File{}).Where("owner_id = ?", userID).Count(&stats.FileCount).Error; err != nil {
		return nil, errdefs.Internalf(err, "count files")
	}

	if err := q.Model(&model.Folder{}).Where("owner_id = ?", userID).Count(&stats.FolderCount).Error; err != nil {
		return nil, errdefs.Internalf(err, "count folders")
	}

	var total struct{ Total int64 }
	if err := q.Model(&model.File{}).
		Select("COALESCE(SUM(size), 0) AS total").
		Where("owner_id = ?", userID).
		Scan(&total).Error; err != nil {
		return nil, errdefs.Internalf(err, "sum sizes")
	}

	stats.TotalBytes = total.Total

	if err := q.Model(&model.Share{}).Where("owner_id = ?", userID).Count(&stats.ShareCount).Error; err != nil {
		return nil, errdefs.Internalf(err, "count shares")
	}

	if err := q.Model(&model.PublicLink{}).Where("owner_id = ?", userID).Count(&stats.LinkCount).Error; err != nil {
		return nil, errdefs.Internalf(err, "count links")
	}

	return stats, nil
}
