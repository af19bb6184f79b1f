package service

import (
	"context"
	"errors"

	"github.com/yeisme/drivevault/pkg/errdefs"
	"github.com/yeisme/drivevault/pkg/internal/model"
	"github.com/yeisme/drivevault/pkg/internal/types"
	"github.com/yeisme/drivevault/pkg/queue"
)

// BulkDelete 批量删除文件.
// 每个条目独立处理：不属于调用者的 ID 记为失败，不影响其余条目；
// 但整批没有任何一个条目属于调用者时整体按 not found 处理.
func (fs *FileService) BulkDelete(ctx context.Context, owner *model.User, req *types.BulkDeleteRequest) (*types.BulkOperationResponse, error) {
	if len(req.FileIDs) == 0 {
		return nil, errdefs.Validationf("no file ids")
	}

	resp := &types.BulkOperationResponse{
		Results: make([]types.BulkItemResult, 0, len(req.FileIDs)),
		Total:   len(req.FileIDs),
	}

	owned := 0

	for _, id := range req.FileIDs {
		result := types.BulkItemResult{FileID: id, Success: true}

		err := fs.Delete(ctx, owner, id)
		if err != nil {
			result.Success = false
			result.Error = err.Error()
		}

		if err == nil || !errors.Is(err, errdefs.ErrNotFound) {
			owned++
		}

		resp.Results = append(resp.Results, result)

		if result.Success {
			resp.Successful++
		} else {
			resp.Failed++
		}
	}

	if owned == 0 {
		return nil, errdefs.NotFoundf("no matching files")
	}

	return resp, nil
}

// BulkMove 批量移动文件到目标文件夹（空为根目录）.
// 目标文件夹必须存在且属于调用者；单个条目的重名冲突只影响该条目.
// 整批没有任何一个条目属于调用者时整体按 not found 处理.
func (fs *FileService) BulkMove(ctx context.Context, owner *model.User, req *types.BulkMoveRequest) (*types.BulkOperationResponse, error) {
	if len(req.FileIDs) == 0 {
		return nil, errdefs.Validationf("no file ids")
	}

	targetID := optionalID(req.TargetFolderID)
	if targetID != nil {
		if _, err := requireOwnedFolder(ctx, fs.dbClient, owner.ID, *targetID); err != nil {
			return nil, err
		}
	}

	resp := &types.BulkOperationResponse{
		Results: make([]types.BulkItemResult, 0, len(req.FileIDs)),
		Total:   len(req.FileIDs),
	}

	owned := 0

	for _, id := range req.FileIDs {
		result := types.BulkItemResult{FileID: id, Success: true}

		err := fs.moveOne(ctx, owner, id, targetID)
		if err != nil {
			result.Success = false
			result.Error = err.Error()
		}

		if err == nil || !errors.Is(err, errdefs.ErrNotFound) {
			owned++
		}

		resp.Results = append(resp.Results, result)

		if result.Success {
			resp.Successful++
		} else {
			resp.Failed++
		}
	}

	if owned == 0 {
		return nil, errdefs.NotFoundf("no matching files")
	}

	return resp, nil
}

func (fs *FileService) moveOne(ctx context.Context, owner *model.User, fileID string, targetID *string) error {
	file, err := requireOwnedFile(ctx, fs.dbClient, owner.ID, fileID)
	if err != nil {
		return err
	}

	if derefID(file.FolderID) == derefID(targetID) {
		return nil
	}

	if err := fs.checkSiblingFileName(ctx, owner.ID, targetID, file.Name, file.ID); err != nil {
		return err
	}

	oldFolderID := file.FolderID
	file.FolderID = targetID

	if err := fs.dbClient.WithContext(ctx).Model(file).
		Update("folder_id", targetID).Error; err != nil {
		return errdefs.Internalf(err, "move file")
	}

	fs.publishFileEvent(queue.TopicFileMoved, queue.FileMovedPayload{
		File:        fs.fileRef(file),
		OldFolderID: derefID(oldFolderID),
	})

	return nil
}
