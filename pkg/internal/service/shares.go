package service

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"time"

	"gorm.io/gorm"

	"github.com/yeisme/drivevault/pkg/cache"
	"github.com/yeisme/drivevault/pkg/configs"
	ctxPkg "github.com/yeisme/drivevault/pkg/context"
	"github.com/yeisme/drivevault/pkg/errdefs"
	"github.com/yeisme/drivevault/pkg/internal/model"
	"github.com/yeisme/drivevault/pkg/internal/storage/db"
	"github.com/yeisme/drivevault/pkg/internal/storage/kv"
	"github.com/yeisme/drivevault/pkg/internal/storage/mq"
	"github.com/yeisme/drivevault/pkg/internal/storage/s3"
	"github.com/yeisme/drivevault/pkg/internal/types"
	"github.com/yeisme/drivevault/pkg/metrics"
	"github.com/yeisme/drivevault/pkg/queue"
)

// linkTokenBytes 链接 Token 的随机字节数.
const linkTokenBytes = 32

// ShareService 定向分享与公开链接.
type ShareService struct {
	dbClient *db.Client
	s3Client *s3.Client
	mqClient *mq.Client
	pathCC   *cache.Cache
}

func NewShareService(c context.Context) *ShareService {
	ss := &ShareService{
		dbClient: ctxPkg.GetDBClient(c),
		s3Client: ctxPkg.GetS3Client(c),
		mqClient: ctxPkg.GetMQClient(c),
	}

	if kvClient := ctxPkg.GetKVClient(c); kvClient != nil {
		ss.pathCC = cache.NewCache(kvClient.KVStore)
	}

	return ss
}

// NewShareServiceWith 直接注入依赖，供测试与任务使用.
func NewShareServiceWith(dbClient *db.Client, s3Client *s3.Client, kvStore kv.KVStore, mqClient *mq.Client) *ShareService {
	ss := &ShareService{dbClient: dbClient, s3Client: s3Client, mqClient: mqClient}
	if kvStore != nil {
		ss.pathCC = cache.NewCache(kvStore)
	}

	return ss
}

// ParseResourceType 解析资源类别字符串.
func ParseResourceType(s string) (model.ResourceType, error) {
	switch model.ResourceType(s) {
	case model.ResourceFile:
		return model.ResourceFile, nil
	case model.ResourceFolder:
		return model.ResourceFolder, nil
	default:
		return "", errdefs.Validationf("unknown resource type %q", s)
	}
}

// Grant 把资源授予指定用户；同一 (资源, 受让人) 重复授予按更新权限处理.
func (ss *ShareService) Grant(ctx context.Context, owner *model.User, rt model.ResourceType, resourceID string, req *types.GrantShareRequest) (*types.ShareResponse, error) {
	if err := ss.requireOwnedResource(ctx, owner.ID, rt, resourceID); err != nil {
		return nil, err
	}

	grantee, err := ss.resolveGrantee(ctx, req.GranteeID, req.GranteeEmail)
	if err != nil {
		return nil, err
	}

	if grantee.ID == owner.ID {
		return nil, errdefs.Validationf("cannot share with yourself")
	}

	share, err := ss.upsertShare(ss.dbClient.WithContext(ctx), owner, rt, resourceID, grantee.ID, req.Permission, shareExpiry(req.ExpiresInHours))
	if err != nil {
		return nil, err
	}

	ss.publishShareEvent(queue.TopicShareGranted, share)

	resp := ss.toShareResponse(share)
	resp.GranteeEmail = grantee.Email

	return &resp, nil
}

// GrantMany 把资源一次授予多个用户.整批原子：任何一个受让人无法解析，
// 或出现自我分享，则全部拒绝，不做部分生效.
func (ss *ShareService) GrantMany(ctx context.Context, owner *model.User, rt model.ResourceType, resourceID string, req *types.GrantShareRequest) ([]types.ShareResponse, error) {
	if len(req.Users) == 0 {
		return nil, errdefs.Validationf("no grantees")
	}

	if err := ss.requireOwnedResource(ctx, owner.ID, rt, resourceID); err != nil {
		return nil, err
	}

	grantees := make([]*model.User, 0, len(req.Users))

	for i := range req.Users {
		grantee, err := ss.resolveGrantee(ctx, req.Users[i].GranteeID, req.Users[i].GranteeEmail)
		if err != nil {
			return nil, err
		}

		if grantee.ID == owner.ID {
			return nil, errdefs.Validationf("cannot share with yourself")
		}

		grantees = append(grantees, grantee)
	}

	expiresAt := shareExpiry(req.ExpiresInHours)
	shares := make([]*model.Share, 0, len(grantees))

	err := ss.dbClient.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i, grantee := range grantees {
			share, err := ss.upsertShare(tx, owner, rt, resourceID, grantee.ID, req.Users[i].Permission, expiresAt)
			if err != nil {
				return err
			}

			shares = append(shares, share)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	resps := make([]types.ShareResponse, 0, len(shares))

	for i, share := range shares {
		ss.publishShareEvent(queue.TopicShareGranted, share)

		resp := ss.toShareResponse(share)
		resp.GranteeEmail = grantees[i].Email
		resps = append(resps, resp)
	}

	return resps, nil
}

// upsertShare 按 (资源, 受让人) 更新或新建授权记录.
func (ss *ShareService) upsertShare(q *gorm.DB, owner *model.User, rt model.ResourceType, resourceID, granteeID, permission string, expiresAt *time.Time) (*model.Share, error) {
	if permission == "" {
		permission = model.PermissionView
	}

	var share model.Share

	err := q.Where("resource_type = ? AND resource_id = ? AND grantee_id = ?", rt, resourceID, granteeID).
		First(&share).Error

	switch {
	case err == nil:
		share.Permission = permission
		share.ExpiresAt = expiresAt

		if uerr := q.Model(&share).Updates(map[string]any{
			"permission": permission,
			"expires_at": expiresAt,
		}).Error; uerr != nil {
			return nil, errdefs.Internalf(uerr, "update share")
		}

	case errors.Is(err, gorm.ErrRecordNotFound):
		share = model.Share{
			ID:           newShareID(),
			OwnerID:      owner.ID,
			ResourceType: rt,
			ResourceID:   resourceID,
			GranteeID:    granteeID,
			Permission:   permission,
			ExpiresAt:    expiresAt,
		}
		if cerr := q.Create(&share).Error; cerr != nil {
			return nil, errdefs.Internalf(cerr, "create share")
		}

	default:
		return nil, errdefs.Internalf(err, "lookup share")
	}

	return &share, nil
}

// shareExpiry 把可选的有效期小时数换算为绝对过期时间.
func shareExpiry(hours int) *time.Time {
	if hours <= 0 {
		return nil
	}

	t := time.Now().UTC().Add(time.Duration(hours) * time.Hour)

	return &t
}

// Revoke 撤销对某用户的授权.
func (ss *ShareService) Revoke(ctx context.Context, owner *model.User, rt model.ResourceType, resourceID, granteeID string) error {
	if err := ss.requireOwnedResource(ctx, owner.ID, rt, resourceID); err != nil {
		return err
	}

	q := ss.dbClient.WithContext(ctx)

	var share model.Share

	err := q.Where("resource_type = ? AND resource_id = ? AND grantee_id = ?", rt, resourceID, granteeID).
		First(&share).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errdefs.NotFoundf("share for grantee %s", granteeID)
		}

		return errdefs.Internalf(err, "lookup share")
	}

	if err := q.Delete(&share).Error; err != nil {
		return errdefs.Internalf(err, "delete share")
	}

	ss.publishShareEvent(queue.TopicShareRevoked, &share)

	return nil
}

// State 返回资源的分享状态：全部定向分享与可选的公开链接.仅所有者可见.
func (ss *ShareService) State(ctx context.Context, owner *model.User, rt model.ResourceType, resourceID string) (*types.ShareStateResponse, error) {
	if err := ss.requireOwnedResource(ctx, owner.ID, rt, resourceID); err != nil {
		return nil, err
	}

	q := ss.dbClient.WithContext(ctx)

	var shares []model.Share
	if err := q.Where("resource_type = ? AND resource_id = ?", rt, resourceID).
		Order("created_at ASC").
		Find(&shares).Error; err != nil {
		return nil, errdefs.Internalf(err, "list shares")
	}

	resp := &types.ShareStateResponse{Shares: make([]types.ShareResponse, 0, len(shares))}

	for i := range shares {
		sr := ss.toShareResponse(&shares[i])

		var grantee model.User
		if err := q.Where("id = ?", shares[i].GranteeID).First(&grantee).Error; err == nil {
			sr.GranteeEmail = grantee.Email
		}

		resp.Shares = append(resp.Shares, sr)
	}

	var link model.PublicLink

	err := q.Where("resource_type = ? AND resource_id = ?", rt, resourceID).First(&link).Error
	if err == nil {
		lr := ss.toLinkResponse(&link)
		resp.Link = &lr
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errdefs.Internalf(err, "lookup link")
	}

	return resp, nil
}

// SharedWithMe 列出分享给当前用户的资源；rtFilter 非空时只看该类别.
// 已过期的授权与已消失的资源条目被跳过.
func (ss *ShareService) SharedWithMe(ctx context.Context, user *model.User, rtFilter string) ([]types.SharedItemResponse, error) {
	q := ss.dbClient.WithContext(ctx)

	listQ := q.Where("grantee_id = ?", user.ID).
		Where("expires_at IS NULL OR expires_at > ?", time.Now().UTC())

	if rtFilter != "" {
		rt, err := ParseResourceType(rtFilter)
		if err != nil {
			return nil, err
		}

		listQ = listQ.Where("resource_type = ?", rt)
	}

	var shares []model.Share
	if err := listQ.Order("created_at DESC").Find(&shares).Error; err != nil {
		return nil, errdefs.Internalf(err, "list shares")
	}

	items := make([]types.SharedItemResponse, 0, len(shares))

	for i := range shares {
		share := &shares[i]
		item := types.SharedItemResponse{
			ShareID:      share.ID,
			ResourceType: string(share.ResourceType),
			Permission:   share.Permission,
			OwnerID:      share.OwnerID,
			SharedAt:     share.CreatedAt,
		}

		var shareOwner model.User
		if err := q.Where("id = ?", share.OwnerID).First(&shareOwner).Error; err == nil {
			item.OwnerEmail = shareOwner.Email
		}

		switch share.ResourceType {
		case model.ResourceFile:
			var file model.File
			if err := q.Where("id = ?", share.ResourceID).First(&file).Error; err != nil {
				continue
			}

			fr := toFileResponse(&file)
			item.File = &fr

		case model.ResourceFolder:
			var folder model.Folder
			if err := q.Where("id = ?", share.ResourceID).First(&folder).Error; err != nil {
				continue
			}

			fr := toFolderResponse(&folder)
			item.Folder = &fr
		}

		items = append(items, item)
	}

	return items, nil
}

// CreateLink 为资源创建公开链接.每个资源至多一条，重复创建轮换 Token 并更新权限与有效期.
// 未给出 ExpiresInHours 时链接长期有效.
func (ss *ShareService) CreateLink(ctx context.Context, owner *model.User, rt model.ResourceType, resourceID string, req *types.CreateLinkRequest) (*types.LinkResponse, error) {
	if err := ss.requireOwnedResource(ctx, owner.ID, rt, resourceID); err != nil {
		return nil, err
	}

	permission := model.PermissionView

	var expiresAt *time.Time

	if req != nil {
		if req.Permission != "" {
			permission = req.Permission
		}

		expiresAt = shareExpiry(req.ExpiresInHours)
	}

	token, err := newLinkToken()
	if err != nil {
		return nil, errdefs.Internalf(err, "generate token")
	}

	q := ss.dbClient.WithContext(ctx)

	var link model.PublicLink

	err = q.Where("resource_type = ? AND resource_id = ?", rt, resourceID).First(&link).Error

	switch {
	case err == nil:
		link.Token = token
		link.Permission = permission
		link.ExpiresAt = expiresAt

		if uerr := q.Model(&link).Updates(map[string]any{
			"token":      token,
			"permission": permission,
			"expires_at": expiresAt,
		}).Error; uerr != nil {
			return nil, errdefs.Internalf(uerr, "rotate link")
		}

	case errors.Is(err, gorm.ErrRecordNotFound):
		link = model.PublicLink{
			ID:           newID(),
			OwnerID:      owner.ID,
			ResourceType: rt,
			ResourceID:   resourceID,
			Token:        token,
			Permission:   permission,
			ExpiresAt:    expiresAt,
		}
		if cerr := q.Create(&link).Error; cerr != nil {
			return nil, errdefs.Internalf(cerr, "create link")
		}

	default:
		return nil, errdefs.Internalf(err, "lookup link")
	}

	ss.publishLinkEvent(queue.TopicLinkCreated, &link)

	resp := ss.toLinkResponse(&link)

	return &resp, nil
}

// DeleteLink 删除资源的公开链接.
func (ss *ShareService) DeleteLink(ctx context.Context, owner *model.User, rt model.ResourceType, resourceID string) error {
	if err := ss.requireOwnedResource(ctx, owner.ID, rt, resourceID); err != nil {
		return err
	}

	result := ss.dbClient.WithContext(ctx).
		Where("resource_type = ? AND resource_id = ?", rt, resourceID).
		Delete(&model.PublicLink{})
	if result.Error != nil {
		return errdefs.Internalf(result.Error, "delete link")
	}

	if result.RowsAffected == 0 {
		return errdefs.NotFoundf("link for %s %s", rt, resourceID)
	}

	return nil
}

// ResolveLink 匿名访问公开链接：返回资源快照.
// 未知 Token 为 not found；过期 Token 为 gone.
func (ss *ShareService) ResolveLink(ctx context.Context, token string) (*types.ResolveLinkResponse, error) {
	link, err := ss.lookupLink(ctx, token)
	if err != nil {
		return nil, err
	}

	q := ss.dbClient.WithContext(ctx)
	resp := &types.ResolveLinkResponse{
		ResourceType: string(link.ResourceType),
		Permission:   link.Permission,
		ExpiresAt:    link.ExpiresAt,
	}

	switch link.ResourceType {
	case model.ResourceFile:
		var file model.File
		if err := q.Where("id = ?", link.ResourceID).First(&file).Error; err != nil {
			return nil, errdefs.NotFoundf("shared file")
		}

		fr := toFileResponse(&file)
		resp.File = &fr

		// 只有文件资源计入访问次数，目录浏览不计.
		ss.touchLink(ctx, link)

	case model.ResourceFolder:
		var folder model.Folder
		if err := q.Where("id = ?", link.ResourceID).First(&folder).Error; err != nil {
			return nil, errdefs.NotFoundf("shared folder")
		}

		fr := toFolderResponse(&folder)
		resp.Folder = &fr

		var subfolders []model.Folder
		if err := q.Where("owner_id = ? AND parent_id = ?", folder.OwnerID, folder.ID).
			Order("name ASC").
			Find(&subfolders).Error; err != nil {
			return nil, errdefs.Internalf(err, "list shared folder")
		}

		var files []model.File
		if err := q.Where("owner_id = ? AND folder_id = ?", folder.OwnerID, folder.ID).
			Order("name ASC").
			Find(&files).Error; err != nil {
			return nil, errdefs.Internalf(err, "list shared folder")
		}

		for i := range subfolders {
			resp.Folders = append(resp.Folders, toFolderResponse(&subfolders[i]))
		}

		for i := range files {
			resp.Files = append(resp.Files, toFileResponse(&files[i]))
		}
	}

	return resp, nil
}

// OpenLinkFile 匿名下载公开链接指向的文件内容.
func (ss *ShareService) OpenLinkFile(ctx context.Context, token string) (io.ReadCloser, *model.File, error) {
	link, err := ss.lookupLink(ctx, token)
	if err != nil {
		return nil, nil, err
	}

	if link.ResourceType != model.ResourceFile {
		return nil, nil, errdefs.Validationf("link does not point to a file")
	}

	var file model.File
	if err := ss.dbClient.WithContext(ctx).Where("id = ?", link.ResourceID).First(&file).Error; err != nil {
		return nil, nil, errdefs.NotFoundf("shared file")
	}

	fileSvc := &FileService{s3Client: ss.s3Client, dbClient: ss.dbClient, mqClient: ss.mqClient}

	obj, err := fileSvc.openObject(ctx, &file)
	if err != nil {
		return nil, nil, err
	}

	fileSvc.recordDownload(ctx, &file, "public_link")
	ss.touchLink(ctx, link)

	return obj, &file, nil
}

// PurgeExpiredLinks 删除已过期的公开链接，返回清理数量.长期有效的链接不受影响.
func (ss *ShareService) PurgeExpiredLinks(ctx context.Context) (int64, error) {
	result := ss.dbClient.WithContext(ctx).
		Where("expires_at IS NOT NULL AND expires_at < ?", time.Now().UTC()).
		Delete(&model.PublicLink{})
	if result.Error != nil {
		return 0, errdefs.Internalf(result.Error, "purge links")
	}

	return result.RowsAffected, nil
}

// PurgeExpiredShares 删除已过期的定向分享，返回清理数量.
func (ss *ShareService) PurgeExpiredShares(ctx context.Context) (int64, error) {
	result := ss.dbClient.WithContext(ctx).
		Where("expires_at IS NOT NULL AND expires_at < ?", time.Now().UTC()).
		Delete(&model.Share{})
	if result.Error != nil {
		return 0, errdefs.Internalf(result.Error, "purge shares")
	}

	return result.RowsAffected, nil
}

// PurgeOrphanShares 删除指向已消失资源的分享记录，返回清理数量.
func (ss *ShareService) PurgeOrphanShares(ctx context.Context) (int64, error) {
	q := ss.dbClient.WithContext(ctx)

	fileOrphans := q.
		Where("resource_type = ?", model.ResourceFile).
		Where("resource_id NOT IN (?)", q.Session(&gorm.Session{NewDB: true}).Model(&model.File{}).Select("id")).
		Delete(&model.Share{})
	if fileOrphans.Error != nil {
		return 0, errdefs.Internalf(fileOrphans.Error, "purge file shares")
	}

	folderOrphans := q.
		Where("resource_type = ?", model.ResourceFolder).
		Where("resource_id NOT IN (?)", q.Session(&gorm.Session{NewDB: true}).Model(&model.Folder{}).Select("id")).
		Delete(&model.Share{})
	if folderOrphans.Error != nil {
		return 0, errdefs.Internalf(folderOrphans.Error, "purge folder shares")
	}

	return fileOrphans.RowsAffected + folderOrphans.RowsAffected, nil
}

// ---------- 内部辅助 ----------

// lookupLink 按 Token 取链接并判定有效期.
func (ss *ShareService) lookupLink(ctx context.Context, token string) (*model.PublicLink, error) {
	if token == "" {
		return nil, errdefs.Validationf("empty token")
	}

	var link model.PublicLink

	err := ss.dbClient.WithContext(ctx).Where("token = ?", token).First(&link).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			metrics.PublicLinkAccess.WithLabelValues("not_found").Inc()
			return nil, errdefs.NotFoundf("link")
		}

		return nil, errdefs.Internalf(err, "lookup link")
	}

	if link.Expired(time.Now().UTC()) {
		metrics.PublicLinkAccess.WithLabelValues("expired").Inc()
		return nil, fmt.Errorf("%w: link expired", errdefs.ErrGone)
	}

	metrics.PublicLinkAccess.WithLabelValues("ok").Inc()

	return &link, nil
}

// touchLink 递增访问计数并发布访问事件.
func (ss *ShareService) touchLink(ctx context.Context, link *model.PublicLink) {
	err := ss.dbClient.WithContext(ctx).Model(link).
		UpdateColumn("access_count", gorm.Expr("access_count + 1")).Error
	if err == nil {
		link.AccessCount++
	}

	ss.publishLinkEvent(queue.TopicLinkAccessed, link)
}

// requireOwnedResource 校验资源存在且属于 owner.
func (ss *ShareService) requireOwnedResource(ctx context.Context, ownerID string, rt model.ResourceType, resourceID string) error {
	switch rt {
	case model.ResourceFile:
		_, err := requireOwnedFile(ctx, ss.dbClient, ownerID, resourceID)
		return err
	case model.ResourceFolder:
		_, err := requireOwnedFolder(ctx, ss.dbClient, ownerID, resourceID)
		return err
	default:
		return errdefs.Validationf("unknown resource type %q", rt)
	}
}

// resolveGrantee 按 ID 或邮箱解析受让人.
func (ss *ShareService) resolveGrantee(ctx context.Context, granteeID, granteeEmail string) (*model.User, error) {
	if granteeID == "" && granteeEmail == "" {
		return nil, errdefs.Validationf("grantee required")
	}

	q := ss.dbClient.WithContext(ctx)

	var user model.User

	if granteeID != "" {
		if err := q.Where("id = ?", granteeID).First(&user).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, errdefs.NotFoundf("user %s", granteeID)
			}

			return nil, errdefs.Internalf(err, "lookup grantee")
		}

		return &user, nil
	}

	userSvc := &UserService{dbClient: ss.dbClient}

	return userSvc.GetByEmail(ctx, granteeEmail)
}

func (ss *ShareService) toShareResponse(s *model.Share) types.ShareResponse {
	return types.ShareResponse{
		ID:           s.ID,
		ResourceType: string(s.ResourceType),
		ResourceID:   s.ResourceID,
		OwnerID:      s.OwnerID,
		GranteeID:    s.GranteeID,
		Permission:   s.Permission,
		ExpiresAt:    s.ExpiresAt,
		CreatedAt:    s.CreatedAt,
	}
}

func (ss *ShareService) toLinkResponse(l *model.PublicLink) types.LinkResponse {
	return types.LinkResponse{
		ID:           l.ID,
		ResourceType: string(l.ResourceType),
		ResourceID:   l.ResourceID,
		Token:        l.Token,
		URL:          "/shared/" + l.Token,
		Permission:   l.Permission,
		ExpiresAt:    l.ExpiresAt,
		AccessCount:  l.AccessCount,
		CreatedAt:    l.CreatedAt,
	}
}

func (ss *ShareService) publishShareEvent(topic string, share *model.Share) {
	if ss.mqClient == nil {
		return
	}

	evCfg := configs.GetConfig().Events
	if !evCfg.Enabled {
		return
	}

	switch topic {
	case queue.TopicShareGranted:
		if !evCfg.Share.Granted {
			return
		}
	case queue.TopicShareRevoked:
		if !evCfg.Share.Revoked {
			return
		}
	}

	payload := queue.SharePayload{
		ShareID:      share.ID,
		OwnerID:      share.OwnerID,
		GranteeID:    share.GranteeID,
		ResourceType: string(share.ResourceType),
		ResourceID:   share.ResourceID,
		Permission:   share.Permission,
	}

	msg, err := queue.NewWatermillMessage(topic, payload, queue.WithProducer("drivevault"))
	if err != nil {
		logPublishErr(topic, err)
		return
	}

	logPublishErr(topic, ss.mqClient.Publish(context.Background(), topic, msg))
}

func (ss *ShareService) publishLinkEvent(topic string, link *model.PublicLink) {
	if ss.mqClient == nil {
		return
	}

	evCfg := configs.GetConfig().Events
	if !evCfg.Enabled {
		return
	}

	switch topic {
	case queue.TopicLinkCreated:
		if !evCfg.Share.LinkCreated {
			return
		}
	case queue.TopicLinkAccessed:
		if !evCfg.Share.LinkAccessed {
			return
		}
	}

	payload := queue.LinkPayload{
		LinkID:       link.ID,
		OwnerID:      link.OwnerID,
		ResourceType: string(link.ResourceType),
		ResourceID:   link.ResourceID,
		ExpiresAt:    link.ExpiresAt,
		AccessCount:  link.AccessCount,
	}

	msg, err := queue.NewWatermillMessage(topic, payload, queue.WithProducer("drivevault"))
	if err != nil {
		logPublishErr(topic, err)
		return
	}

	logPublishErr(topic, ss.mqClient.Publish(context.Background(), topic, msg))
}

// newLinkToken 生成 URL 安全的随机 Token.
func newLinkToken() (string, error) {
	buf := make([]byte, linkTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}

	return base64.RawURLEncoding.EncodeToString(buf), nil
}
