package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"barriored/internal/model"
	"barriored/internal/moderation"
	"barriored/internal/pkg"
	"barriored/internal/repository/redis"
	"barriored/internal/validation"

	"golang.org/x/crypto/bcrypt"
)

type UserStore interface {
	Create(ctx context.Context, user *model.User) error
	FindByID(ctx context.Context, id uint64) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	FindOrCreateByPhone(ctx context.Context, phone, email string) (*model.User, bool, error)
}

type SessionStore interface {
	Save(ctx context.Context, userID uint64, access, refresh string, accessTTL, refreshTTL time.Duration) error
	GetAccess(ctx context.Context, userID uint64) (string, error)
	GetRefresh(ctx context.Context, userID uint64) (string, error)
	Extend(ctx context.Context, userID uint64, ttl time.Duration) error
	Delete(ctx context.Context, userID uint64) error
}

type LinkTokenStore interface {
	Save(ctx context.Context, token string, userID uint64, ttl time.Duration) error
	Redeem(ctx context.Context, token string) (uint64, error)
}

type CommunityFinder interface {
	FindByID(ctx context.Context, id uint64) (*model.Community, error)
}

type UserConfig struct {
	PublicBaseURL     string
	MagicLinkTTL      time.Duration
	PlaceholderDomain string // WhatsApp 账号的占位邮箱域名
}

// UserService 本地的认证与会话服务
type UserService struct {
	users       UserStore
	sessions    SessionStore
	links       LinkTokenStore
	communities CommunityFinder
	tokens      *pkg.TokenIssuer
	cfg         UserConfig
}

func NewUserService(users UserStore, sessions SessionStore, links LinkTokenStore, communities CommunityFinder,
	tokens *pkg.TokenIssuer, cfg UserConfig) *UserService {
	if cfg.MagicLinkTTL <= 0 {
		cfg.MagicLinkTTL = 5 * time.Minute
	}
	if cfg.PlaceholderDomain == "" {
		cfg.PlaceholderDomain = "whatsapp.barriored.co"
	}
	return &UserService{users: users, sessions: sessions, links: links, communities: communities, tokens: tokens, cfg: cfg}
}

func (s *UserService) Signup(ctx context.Context, raw []byte) (*model.User, *pkg.Pair, error) {
	in, err := validation.Decode[validation.SignupInput](raw)
	if err != nil {
		return nil, nil, err
	}
	if _, err := s.communities.FindByID(ctx, in.CommunityID); err != nil {
		if errors.Is(err, moderation.ErrNotFound) {
			return nil, nil, fieldError("community_id", "Comunidad no encontrada")
		}
		return nil, nil, storeErr("find community", err)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, nil, err
	}
	communityID := in.CommunityID
	user := &model.User{
		FullName:    in.FullName,
		Email:       strings.ToLower(in.Email),
		Password:    string(hash),
		Role:        moderation.RoleNeighbor,
		CommunityID: &communityID,
	}
	if in.Phone != "" {
		phone := in.Phone
		user.Phone = &phone
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, nil, storeErr("create user", err)
	}
	pair, err := s.issueSession(ctx, user)
	if err != nil {
		return nil, nil, err
	}
	return user, pair, nil
}

func (s *UserService) Login(ctx context.Context, raw []byte) (*pkg.Pair, error) {
	in, err := validation.Decode[validation.LoginInput](raw)
	if err != nil {
		return nil, err
	}
	user, err := s.users.FindByEmail(ctx, strings.ToLower(in.Email))
	if errors.Is(err, moderation.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, storeErr("find user", err)
	}
	if user.Password == "" || bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(in.Password)) != nil {
		return nil, ErrInvalidCredentials
	}
	return s.issueSession(ctx, user)
}

// Refresh refresh token 也会轮换，旧的立即失效
func (s *UserService) Refresh(ctx context.Context, raw []byte) (*pkg.Pair, error) {
	in, err := validation.Decode[validation.RefreshInput](raw)
	if err != nil {
		return nil, err
	}
	claims, err := s.tokens.ParseRefresh(in.RefreshToken)
	if err != nil {
		return nil, moderation.ErrUnauthenticated
	}
	stored, err := s.sessions.GetRefresh(ctx, claims.UserID)
	if errors.Is(err, redis.ErrTokenNotFound) || (err == nil && stored != in.RefreshToken) {
		return nil, moderation.ErrUnauthenticated
	}
	if err != nil {
		return nil, moderation.Upstream("get refresh token", err)
	}
	user, err := s.users.FindByID(ctx, claims.UserID)
	if errors.Is(err, moderation.ErrNotFound) {
		return nil, moderation.ErrUnauthenticated
	}
	if err != nil {
		return nil, storeErr("find user", err)
	}
	return s.issueSession(ctx, user)
}

func (s *UserService) Logout(ctx context.Context, actor *moderation.Actor) error {
	if !actor.Authenticated() {
		return moderation.ErrUnauthenticated
	}
	return moderation.Upstream("delete session", s.sessions.Delete(ctx, actor.ID))
}

func (s *UserService) Me(ctx context.Context, actor *moderation.Actor) (*model.User, error) {
	if !actor.Authenticated() {
		return nil, moderation.ErrUnauthenticated
	}
	user, err := s.users.FindByID(ctx, actor.ID)
	return user, storeErr("find user", err)
}

// ResolveActor access token → 当前用户；同一账号在别处登录后旧 token 失效
func (s *UserService) ResolveActor(ctx context.Context, accessToken string) (*moderation.Actor, error) {
	claims, err := s.tokens.ParseAccess(accessToken)
	if err != nil {
		return nil, moderation.ErrUnauthenticated
	}
	stored, err := s.sessions.GetAccess(ctx, claims.UserID)
	if errors.Is(err, redis.ErrTokenNotFound) {
		return nil, moderation.ErrUnauthenticated
	}
	if err != nil {
		return nil, moderation.Upstream("get session", err)
	}
	if stored != accessToken {
		return nil, moderation.ErrUnauthenticated
	}
	user, err := s.users.FindByID(ctx, claims.UserID)
	if errors.Is(err, moderation.ErrNotFound) {
		return nil, moderation.ErrUnauthenticated
	}
	if err != nil {
		return nil, storeErr("find user", err)
	}
	// 续期失败不影响本次请求
	_ = s.sessions.Extend(ctx, user.ID, s.tokens.AccessTTL())
	return user.Actor(), nil
}

// FindOrCreateByPhone WhatsApp 登录的账号使用占位邮箱
func (s *UserService) FindOrCreateByPhone(ctx context.Context, phone string) (*model.User, error) {
	email := fmt.Sprintf("%s@%s", phone, s.cfg.PlaceholderDomain)
	user, _, err := s.users.FindOrCreateByPhone(ctx, phone, email)
	return user, storeErr("find or create user", err)
}

// GenerateMagicLink 生成一次性登录链接
func (s *UserService) GenerateMagicLink(ctx context.Context, userID uint64) (string, error) {
	token, err := pkg.RandToken(32)
	if err != nil {
		return "", err
	}
	if err := s.links.Save(ctx, token, userID, s.cfg.MagicLinkTTL); err != nil {
		return "", moderation.Upstream("save link token", err)
	}
	base := strings.TrimRight(s.cfg.PublicBaseURL, "/")
	return fmt.Sprintf("%s/auth/v1/verify?token=%s&type=magiclink", base, url.QueryEscape(token)), nil
}

// RedeemLinkToken 兑换后令牌立即作废
func (s *UserService) RedeemLinkToken(ctx context.Context, token string) (*pkg.Pair, error) {
	userID, err := s.links.Redeem(ctx, token)
	if errors.Is(err, redis.ErrLinkTokenInvalid) {
		return nil, moderation.ErrUnauthenticated
	}
	if err != nil {
		return nil, moderation.Upstream("redeem link token", err)
	}
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, storeErr("find user", err)
	}
	return s.issueSession(ctx, user)
}

func (s *UserService) issueSession(ctx context.Context, user *model.User) (*pkg.Pair, error) {
	pair, err := s.tokens.GeneratePair(user.ID, string(user.Role))
	if err != nil {
		return nil, err
	}
	if err := s.sessions.Save(ctx, user.ID, pair.AccessToken, pair.RefreshToken, s.tokens.AccessTTL(), s.tokens.RefreshTTL()); err != nil {
		return nil, moderation.Upstream("save session", err)
	}
	return pair, nil
}
