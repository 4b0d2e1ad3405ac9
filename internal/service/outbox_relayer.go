package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"time"

	"barriored/internal/model"
	"barriored/internal/moderation"
	"barriored/internal/pkg"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
)

type OutboxStore interface {
	List(ctx context.Context, batchSize int) ([]model.ModerationOutbox, error)
	RetryUpdate(ctx context.Context, id uint64) error
	SuccessUpdate(ctx context.Context, id uint64) error
}

// Sender 投递一条 outbox 事件
type Sender func(ctx context.Context, ob *model.ModerationOutbox) error

// OutboxRelayer 从 moderation_outbox 读取事件并异步投递
type OutboxRelayer struct {
	repo      OutboxStore
	batchSize int
	interval  time.Duration
	sender    Sender
	logger    *zap.Logger
}

func NewOutboxRelayer(repo OutboxStore, sender Sender, batchSize int, interval time.Duration, logger *zap.Logger) *OutboxRelayer {
	if batchSize <= 0 {
		batchSize = 200
	}
	if interval <= 0 {
		interval = time.Second
	}
	return &OutboxRelayer{repo: repo, batchSize: batchSize, interval: interval, sender: sender, logger: logger}
}

// Run outbox启动器
func (r *OutboxRelayer) Run(ctx context.Context) error {
	t := time.NewTicker(r.interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
			r.drainOnce(ctx)
		}
	}
}

func (r *OutboxRelayer) drainOnce(ctx context.Context) {
	rows, err := r.repo.List(ctx, r.batchSize)
	if err != nil {
		r.logger.Error("outbox query failed", zap.Error(err))
		return
	}
	for i := range rows {
		ob := rows[i]
		if err := r.sender(ctx, &ob); err != nil {
			pkg.OutboxDelivered.WithLabelValues("retry").Inc()
			r.logger.Warn("outbox delivery failed",
				zap.Uint64("id", ob.ID),
				zap.String("event", ob.EventType),
				zap.Int("retry", ob.Retry),
				zap.Error(err),
			)
			if err := r.repo.RetryUpdate(ctx, ob.ID); err != nil {
				r.logger.Error("outbox retry update failed", zap.Uint64("id", ob.ID), zap.Error(err))
			}
			continue
		}
		pkg.OutboxDelivered.WithLabelValues("sent").Inc()
		if err := r.repo.SuccessUpdate(ctx, ob.ID); err != nil {
			r.logger.Error("outbox success update failed", zap.Uint64("id", ob.ID), zap.Error(err))
		}
	}
}

// LogSender 未启用 kafka 时使用
func LogSender(logger *zap.Logger) Sender {
	return func(ctx context.Context, ob *model.ModerationOutbox) error {
		logger.Info("outbox event",
			zap.String("event", ob.EventType),
			zap.String("kind", string(ob.Kind)),
			zap.Uint64("record_id", ob.RecordID),
			zap.Uint64("community_id", ob.CommunityID),
			zap.String("payload", ob.Payload),
		)
		return nil
	}
}

type EventProducer interface {
	Send(ctx context.Context, key string, value []byte, headers map[string]string) error
}

// KafkaSender 以 kind:id 为 key，同一记录的事件保持顺序
func KafkaSender(producer EventProducer) Sender {
	return func(ctx context.Context, ob *model.ModerationOutbox) error {
		return producer.Send(ctx, pkg.RecordKey(string(ob.Kind), ob.RecordID), []byte(ob.Payload), map[string]string{
			"event_type": ob.EventType,
			"kind":       string(ob.Kind),
		})
	}
}

// ChainSenders 依次执行，任一失败整条事件重试。
// 重试时从失败的环节继续，已成功的环节本进程内不再重复；进程重启后仍可能重复投递。
func ChainSenders(senders ...Sender) Sender {
	var mu sync.Mutex
	done := map[uint64]int{} // outbox id -> 已完成的环节数
	return func(ctx context.Context, ob *model.ModerationOutbox) error {
		mu.Lock()
		start := done[ob.ID]
		mu.Unlock()
		for i := start; i < len(senders); i++ {
			if err := senders[i](ctx, ob); err != nil {
				mu.Lock()
				done[ob.ID] = i
				mu.Unlock()
				return err
			}
		}
		mu.Lock()
		delete(done, ob.ID)
		mu.Unlock()
		return nil
	}
}

type MailSender interface {
	Send(to, subject, htmlBody string) error
}

type UserFinder interface {
	FindByID(ctx context.Context, id uint64) (*model.User, error)
}

// Notifier 审核结果邮件通知
type Notifier struct {
	users             UserFinder
	mailer            MailSender
	placeholderDomain string
	newBackOff        func() backoff.BackOff
	logger            *zap.Logger
}

func NewNotifier(users UserFinder, mailer MailSender, placeholderDomain string, logger *zap.Logger) *Notifier {
	return &Notifier{
		users:             users,
		mailer:            mailer,
		placeholderDomain: placeholderDomain,
		newBackOff: func() backoff.BackOff {
			bo := backoff.NewExponentialBackOff()
			bo.MaxElapsedTime = 10 * time.Second
			return bo
		},
		logger: logger,
	}
}

// Sender 只处理 approved/rejected，占位邮箱的 WhatsApp 账号跳过
func (n *Notifier) Sender() Sender {
	return func(ctx context.Context, ob *model.ModerationOutbox) error {
		if ob.EventType != model.EventApproved && ob.EventType != model.EventRejected {
			return nil
		}
		user, err := n.users.FindByID(ctx, ob.OwnerID)
		if errors.Is(err, moderation.ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		if user.Email == "" || strings.HasSuffix(user.Email, "@"+n.placeholderDomain) {
			n.logger.Debug("decision mail skipped", zap.Uint64("user_id", user.ID), zap.Uint64("outbox_id", ob.ID))
			return nil
		}
		approved := ob.EventType == model.EventApproved
		body := pkg.DecisionHTML(user.FullName, kindLabel(ob.Kind), payloadTitle(ob.Payload), approved)
		return backoff.Retry(func() error {
			return n.mailer.Send(user.Email, pkg.DecisionSubject(approved), body)
		}, backoff.WithContext(backoff.WithMaxRetries(n.newBackOff(), 3), ctx))
	}
}

func kindLabel(k moderation.Kind) string {
	if k == moderation.KindBusiness {
		return "negocio"
	}
	return "publicacion"
}

func payloadTitle(payload string) string {
	var p struct {
		Title string `json:"title"`
	}
	_ = json.Unmarshal([]byte(payload), &p)
	return p.Title
}
