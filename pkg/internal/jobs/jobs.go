// Package jobs 注册后台维护任务：过期链接、过期分享与孤儿分享的定期清理.
package jobs

import (
	"context"

	"github.com/yeisme/drivevault/pkg/internal/service"
	"github.com/yeisme/drivevault/pkg/log"
	"github.com/yeisme/drivevault/pkg/scheduler"
)

const (
	// purgeExpiredLinksCron 每天凌晨清理过期公开链接.
	purgeExpiredLinksCron = "0 3 * * *"

	// purgeExpiredSharesCron 每天凌晨清理已过期的定向分享.
	purgeExpiredSharesCron = "15 3 * * *"

	// purgeOrphanSharesCron 每天凌晨清理指向已删除资源的分享.
	purgeOrphanSharesCron = "30 3 * * *"
)

// Register 把全部维护任务挂到调度器上.
// ctx 需携带存储管理器，任务执行时从中构造服务.
func Register(sched *scheduler.Scheduler, ctx context.Context) error {
	err := sched.AddCron("purge-expired-links", purgeExpiredLinksCron, func(jobCtx context.Context) {
		svc := service.NewShareService(jobCtx)

		n, err := svc.PurgeExpiredLinks(jobCtx)
		if err != nil {
			log.Logger().Error().Err(err).Msg("purge expired links failed")
			return
		}

		if n > 0 {
			log.Logger().Info().Int64("purged", n).Msg("expired public links removed")
		}
	}, ctx)
	if err != nil {
		return err
	}

	err = sched.AddCron("purge-expired-shares", purgeExpiredSharesCron, func(jobCtx context.Context) {
		svc := service.NewShareService(jobCtx)

		n, err := svc.PurgeExpiredShares(jobCtx)
		if err != nil {
			log.Logger().Error().Err(err).Msg("purge expired shares failed")
			return
		}

		if n > 0 {
			log.Logger().Info().Int64("purged", n).Msg("expired shares removed")
		}
	}, ctx)
	if err != nil {
		return err
	}

	return sched.AddCron("purge-orphan-shares", purgeOrphanSharesCron, func(jobCtx context.Context) {
		svc := service.NewShareService(jobCtx)

		n, err := svc.PurgeOrphanShares(jobCtx)
		if err != nil {
			log.Logger().Error().Err(err).Msg("purge orphan shares failed")
			return
		}

		if n > 0 {
			log.Logger().Info().Int64("purged", n).Msg("orphan shares removed")
		}
	}, ctx)
}
