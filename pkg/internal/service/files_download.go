package service

import (
	"archive/zip"
	"context"
	"fmt"
	"io"

	minio "github.com/minio/minio-go/v7"
	"gorm.io/gorm"

	"github.com/yeisme/drivevault/pkg/errdefs"
	"github.com/yeisme/drivevault/pkg/internal/model"
	"github.com/yeisme/drivevault/pkg/internal/types"
	"github.com/yeisme/drivevault/pkg/metrics"
	"github.com/yeisme/drivevault/pkg/queue"
)

// Download 打开文件内容流并原子递增下载计数.
// 调用方负责关闭返回的 ReadCloser.
func (fs *FileService) Download(ctx context.Context, owner *model.User, fileID string) (io.ReadCloser, *model.File, error) {
	file, err := requireOwnedFile(ctx, fs.dbClient, owner.ID, fileID)
	if err != nil {
		return nil, nil, err
	}

	obj, err := fs.openObject(ctx, file)
	if err != nil {
		return nil, nil, err
	}

	fs.recordDownload(ctx, file, "api")

	return obj, file, nil
}

// buildArchive 把多个文件打包为 zip 写入 w.
// 单个文件取流失败不中断打包，改写入一个说明性的占位条目.
func buildArchive(ctx context.Context, files []*model.File, fetch func(ctx context.Context, f *model.File) (io.ReadCloser, error), w io.Writer) error {
	zw := zip.NewWriter(w)

	used := make(map[string]int)
	for _, f := range files {
		name := archiveEntryName(f.Name, used)

		rc, err := fetch(ctx, f)
		if err != nil {
			ew, werr := zw.Create(name + ".error.txt")
			if werr != nil {
				return fmt.Errorf("create archive entry: %w", werr)
			}

			fmt.Fprintf(ew, "failed to fetch %s: %v\n", f.Name, err)

			continue
		}

		entry, err := zw.Create(name)
		if err != nil {
			rc.Close()
			return fmt.Errorf("create archive entry: %w", err)
		}

		_, copyErr := io.Copy(entry, rc)
		rc.Close()

		if copyErr != nil {
			return fmt.Errorf("write archive entry %s: %w", name, copyErr)
		}
	}

	return zw.Close()
}

// archiveEntryName 处理包内重名：第二个同名文件记为 "name (2)".
func archiveEntryName(name string, used map[string]int) string {
	used[name]++
	if used[name] == 1 {
		return name
	}

	return fmt.Sprintf("%s (%d)", name, used[name])
}

// BulkDownload 把多个文件打包为 zip 流式写入 w.
// 不属于调用者的 ID 直接跳过；全部无效时返回 not found.
func (fs *FileService) BulkDownload(ctx context.Context, owner *model.User, req *types.BulkDownloadRequest, w io.Writer) error {
	if len(req.FileIDs) == 0 {
		return errdefs.Validationf("no file ids")
	}

	files := make([]*model.File, 0, len(req.FileIDs))

	for _, id := range req.FileIDs {
		file, err := requireOwnedFile(ctx, fs.dbClient, owner.ID, id)
		if err != nil {
			continue
		}

		files = append(files, file)
	}

	if len(files) == 0 {
		return errdefs.NotFoundf("no downloadable files")
	}

	err := buildArchive(ctx, files, func(ctx context.Context, f *model.File) (io.ReadCloser, error) {
		return fs.openObject(ctx, f)
	}, w)
	if err != nil {
		return errdefs.Internalf(err, "build archive")
	}

	for _, f := range files {
		fs.recordDownload(ctx, f, "bulk")
	}

	return nil
}

// openObject 从对象存储打开文件内容.
func (fs *FileService) openObject(ctx context.Context, file *model.File) (io.ReadCloser, error) {
	if fs.s3Client == nil {
		return nil, errdefs.Internalf(fmt.Errorf("object storage unavailable"), "open object")
	}

	obj, err := fs.s3Client.GetObject(ctx, file.Bucket, file.ObjectKey, minio.GetObjectOptions{})
	if err != nil {
		return nil, errdefs.Internalf(err, "open object")
	}

	// GetObject 是惰性的，Stat 确认对象可读
	if _, err := obj.Stat(); err != nil {
		obj.Close()
		return nil, errdefs.Internalf(err, "stat object")
	}

	return obj, nil
}

// recordDownload 递增下载计数并发布事件；失败不影响下载本身.
func (fs *FileService) recordDownload(ctx context.Context, file *model.File, via string) {
	err := fs.dbClient.WithContext(ctx).Model(file).
		UpdateColumn("download_count", gorm.Expr("download_count + 1")).Error
	if err == nil {
		file.DownloadCount++
	}

	metrics.DownloadCounter.Inc()

	fs.publishFileEvent(queue.TopicFileDownloaded, queue.FileDownloadedPayload{
		File: fs.fileRef(file),
		Via:  via,
	})
}
