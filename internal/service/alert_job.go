package service

import (
	"context"
	"time"

	"barriored/internal/model"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

type ActiveCommunityLister interface {
	ListActive(ctx context.Context) ([]model.Community, error)
}

type AlertExpirer interface {
	ExpireEnded(ctx context.Context, communityID uint64, now time.Time) (int64, error)
}

// JobLocker 为 nil 时不加锁，单实例部署使用
type JobLocker interface {
	Acquire(ctx context.Context, name, token string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, name, token string) error
}

const alertExpiryLock = "alert-expiry"

// AlertExpiryJob 定时停用已过结束时间的预警，逐个社区处理
type AlertExpiryJob struct {
	communities ActiveCommunityLister
	alerts      AlertExpirer
	spec        string
	locker      JobLocker
	now         func() time.Time
	logger      *zap.Logger
}

func NewAlertExpiryJob(communities ActiveCommunityLister, alerts AlertExpirer, spec string, logger *zap.Logger) *AlertExpiryJob {
	if spec == "" {
		spec = "*/5 * * * *"
	}
	return &AlertExpiryJob{communities: communities, alerts: alerts, spec: spec, now: time.Now, logger: logger}
}

// Run 阻塞到 ctx 结束，等待正在执行的任务完成后返回
func (j *AlertExpiryJob) Run(ctx context.Context) error {
	c := cron.New()
	if _, err := c.AddFunc(j.spec, func() { j.runLocked(ctx) }); err != nil {
		return err
	}
	c.Start()
	<-ctx.Done()
	<-c.Stop().Done()
	return nil
}

// WithLocker 多实例时同一轮只有拿到锁的实例执行
func (j *AlertExpiryJob) WithLocker(l JobLocker) *AlertExpiryJob {
	j.locker = l
	return j
}

func (j *AlertExpiryJob) runLocked(ctx context.Context) int64 {
	if j.locker == nil {
		return j.RunOnce(ctx)
	}
	token := uuid.NewString()
	ok, err := j.locker.Acquire(ctx, alertExpiryLock, token, time.Minute)
	if err != nil {
		j.logger.Warn("alert expiry: lock failed", zap.Error(err))
		return 0
	}
	if !ok {
		return 0
	}
	defer func() {
		if err := j.locker.Release(context.WithoutCancel(ctx), alertExpiryLock, token); err != nil {
			j.logger.Warn("alert expiry: unlock failed", zap.Error(err))
		}
	}()
	return j.RunOnce(ctx)
}

func (j *AlertExpiryJob) RunOnce(ctx context.Context) int64 {
	list, err := j.communities.ListActive(ctx)
	if err != nil {
		j.logger.Error("alert expiry: list communities failed", zap.Error(err))
		return 0
	}
	now := j.now()
	var total int64
	for _, c := range list {
		n, err := j.alerts.ExpireEnded(ctx, c.ID, now)
		if err != nil {
			j.logger.Error("alert expiry failed", zap.Uint64("community_id", c.ID), zap.Error(err))
			continue
		}
		total += n
	}
	if total > 0 {
		j.logger.Info("alerts expired", zap.Int64("count", total))
	}
	return total
}
