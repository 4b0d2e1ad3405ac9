package service

import (
	"context"
	"errors"
	"net/url"
	"sync"
	"time"

	"barriored/internal/model"
	"barriored/internal/moderation"
	"barriored/internal/pkg"
	"barriored/internal/repository/redis"
	"barriored/internal/validation"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// OTPProvider 发送和校验 WhatsApp 验证码
type OTPProvider interface {
	Send(ctx context.Context, phone string) (string, error)
	Check(ctx context.Context, requestID, code string) (bool, error)
}

type OTPStore interface {
	AcquireCooldown(ctx context.Context, phone string, ttl time.Duration) (bool, error)
	ReleaseCooldown(ctx context.Context, phone string) error
	SavePending(ctx context.Context, phone, requestID string, ttl time.Duration) error
	PendingRequest(ctx context.Context, phone string) (string, error)
	MarkConfirmed(ctx context.Context, phone, requestID string, ttl time.Duration) error
	DeleteConfirmed(ctx context.Context, phone string) error
}

// IdentityProvider 由 UserService 实现
type IdentityProvider interface {
	FindOrCreateByPhone(ctx context.Context, phone string) (*model.User, error)
	GenerateMagicLink(ctx context.Context, userID uint64) (string, error)
	RedeemLinkToken(ctx context.Context, token string) (*pkg.Pair, error)
}

type OTPConfig struct {
	Cooldown   time.Duration
	RequestTTL time.Duration
}

type OTPService struct {
	provider OTPProvider
	store    OTPStore
	identity IdentityProvider
	cfg      OTPConfig
	logger   *zap.Logger
}

func NewOTPService(provider OTPProvider, store OTPStore, identity IdentityProvider, cfg OTPConfig, logger *zap.Logger) *OTPService {
	if cfg.Cooldown <= 0 {
		cfg.Cooldown = time.Minute
	}
	if cfg.RequestTTL <= 0 {
		cfg.RequestTTL = 5 * time.Minute
	}
	return &OTPService{provider: provider, store: store, identity: identity, cfg: cfg, logger: logger}
}

// Send 同一手机号冷却期内只能发一次
func (s *OTPService) Send(ctx context.Context, raw []byte) (string, error) {
	in, err := validation.Decode[validation.OTPSendInput](raw)
	if err != nil {
		return "", err
	}
	ok, err := s.store.AcquireCooldown(ctx, in.Phone, s.cfg.Cooldown)
	if err != nil {
		return "", moderation.Upstream("otp cooldown", err)
	}
	if !ok {
		pkg.OTPRequests.WithLabelValues("send", "cooldown").Inc()
		return "", ErrOTPCooldown
	}
	requestID, err := s.provider.Send(ctx, in.Phone)
	if err != nil {
		_ = s.store.ReleaseCooldown(ctx, in.Phone)
		pkg.OTPRequests.WithLabelValues("send", "error").Inc()
		return "", moderation.Upstream("otp send", err)
	}
	if err := s.store.SavePending(ctx, in.Phone, requestID, s.cfg.RequestTTL); err != nil {
		return "", moderation.Upstream("otp save", err)
	}
	pkg.OTPRequests.WithLabelValues("send", "ok").Inc()
	return requestID, nil
}

// Verify 验证码正确后找到或创建用户，再通过一次性登录链接换取会话
func (s *OTPService) Verify(ctx context.Context, raw []byte) (*pkg.Pair, error) {
	in, err := validation.Decode[validation.OTPVerifyInput](raw)
	if err != nil {
		return nil, err
	}
	bound, err := s.store.PendingRequest(ctx, in.Phone)
	if errors.Is(err, redis.ErrOTPNotFound) {
		return nil, s.invalid()
	}
	if err != nil {
		return nil, moderation.Upstream("otp lookup", err)
	}
	// request_id 必须属于这个手机号
	if bound != in.RequestID {
		return nil, s.invalid()
	}
	valid, err := s.provider.Check(ctx, in.RequestID, in.OTP)
	if err != nil {
		pkg.OTPRequests.WithLabelValues("verify", "error").Inc()
		return nil, moderation.Upstream("otp check", err)
	}
	if !valid {
		return nil, s.invalid()
	}
	if err := s.store.MarkConfirmed(ctx, in.Phone, in.RequestID, s.cfg.RequestTTL); err != nil {
		if errors.Is(err, redis.ErrCodeConfirmedFailed) {
			return nil, s.invalid()
		}
		return nil, moderation.Upstream("otp confirm", err)
	}

	user, err := s.identity.FindOrCreateByPhone(ctx, in.Phone)
	if err != nil {
		return nil, s.sessionFailed("find or create user", 0, err)
	}
	// 以下步骤失败时已创建的用户不回滚，下次登录会复用
	link, err := s.identity.GenerateMagicLink(ctx, user.ID)
	if err != nil {
		return nil, s.sessionFailed("generate link", user.ID, err)
	}
	token, err := linkToken(link)
	if err != nil {
		return nil, s.sessionFailed("parse link", user.ID, err)
	}
	pair, err := s.identity.RedeemLinkToken(ctx, token)
	if err != nil {
		return nil, s.sessionFailed("redeem link", user.ID, err)
	}
	_ = s.store.DeleteConfirmed(ctx, in.Phone)
	pkg.OTPRequests.WithLabelValues("verify", "ok").Inc()
	return pair, nil
}

func (s *OTPService) invalid() error {
	pkg.OTPRequests.WithLabelValues("verify", "invalid").Inc()
	return ErrOTPInvalid
}

func (s *OTPService) sessionFailed(step string, userID uint64, err error) error {
	pkg.OTPRequests.WithLabelValues("verify", "session_error").Inc()
	s.logger.Warn("otp session bridge failed",
		zap.String("step", step),
		zap.Uint64("user_id", userID),
		zap.Error(err),
	)
	return errors.Join(ErrSessionIssue, err)
}

func linkToken(link string) (string, error) {
	u, err := url.Parse(link)
	if err != nil {
		return "", err
	}
	token := u.Query().Get("token")
	if token == "" {
		return "", errors.New("magic link without token")
	}
	return token, nil
}

// LocalOTPProvider 开发环境使用，验证码只打到日志里
type LocalOTPProvider struct {
	mu     sync.Mutex
	codes  map[string]localCode
	ttl    time.Duration
	logger *zap.Logger
}

type localCode struct {
	code      string
	expiresAt time.Time
}

func NewLocalOTPProvider(ttl time.Duration, logger *zap.Logger) *LocalOTPProvider {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &LocalOTPProvider{codes: map[string]localCode{}, ttl: ttl, logger: logger}
}

func (p *LocalOTPProvider) Send(_ context.Context, phone string) (string, error) {
	code, err := pkg.RandDigits(6)
	if err != nil {
		return "", err
	}
	requestID := uuid.NewString()
	p.mu.Lock()
	p.codes[requestID] = localCode{code: code, expiresAt: time.Now().Add(p.ttl)}
	p.mu.Unlock()
	p.logger.Info("local otp issued", zap.String("phone", phone), zap.String("request_id", requestID), zap.String("otp", code))
	return requestID, nil
}

func (p *LocalOTPProvider) Check(_ context.Context, requestID, code string) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	c, ok := p.codes[requestID]
	if !ok || time.Now().After(c.expiresAt) {
		delete(p.codes, requestID)
		return false, nil
	}
	if c.code != code {
		return false, nil
	}
	delete(p.codes, requestID)
	return true, nil
}
