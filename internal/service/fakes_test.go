package service

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"barriored/internal/model"
	"barriored/internal/moderation"
	"barriored/internal/pkg"
	"barriored/internal/repository/rdb"
	"barriored/internal/repository/redis"
)

// 内存实现，行为与 rdb 仓储保持一致：按 community_id 隔离，状态流转是条件更新

type memBusinesses struct {
	mu       sync.Mutex
	seq      uint64
	rows     map[uint64]*model.Business
	promoted map[uint64]moderation.Role
	events   []string
}

func newMemBusinesses() *memBusinesses {
	return &memBusinesses{rows: map[uint64]*model.Business{}, promoted: map[uint64]moderation.Role{}}
}

func (m *memBusinesses) Create(_ context.Context, b *model.Business, promoteTo moderation.Role) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.rows {
		if r.CommunityID == b.CommunityID && r.Slug == b.Slug {
			return moderation.ErrConflict
		}
	}
	m.seq++
	b.ID = m.seq
	b.CreatedAt = time.Now()
	cp := *b
	m.rows[b.ID] = &cp
	if promoteTo != "" {
		m.promoted[b.OwnerID] = promoteTo
	}
	m.events = append(m.events, model.EventSubmitted)
	return nil
}

func (m *memBusinesses) get(communityID, id uint64) (*model.Business, bool) {
	r, ok := m.rows[id]
	if !ok || r.CommunityID != communityID {
		return nil, false
	}
	return r, true
}

func (m *memBusinesses) FindByID(_ context.Context, communityID, id uint64) (*model.Business, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.get(communityID, id)
	if !ok {
		return nil, moderation.ErrNotFound
	}
	cp := *r
	return &cp, nil
}

func (m *memBusinesses) FindBySlug(_ context.Context, communityID uint64, slug string) (*model.Business, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.rows {
		if r.CommunityID == communityID && r.Slug == slug {
			cp := *r
			return &cp, nil
		}
	}
	return nil, moderation.ErrNotFound
}

func (m *memBusinesses) SlugExists(_ context.Context, communityID uint64, slug string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.rows {
		if r.CommunityID == communityID && r.Slug == slug {
			return true, nil
		}
	}
	return false, nil
}

func (m *memBusinesses) filter(keep func(*model.Business) bool) []model.Business {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []model.Business{}
	for _, r := range m.rows {
		if keep(r) {
			out = append(out, *r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out
}

func (m *memBusinesses) ListApproved(_ context.Context, communityID uint64, f rdb.BusinessFilter) ([]model.Business, error) {
	q := strings.ToLower(strings.TrimSpace(f.Query))
	return m.filter(func(b *model.Business) bool {
		if b.CommunityID != communityID || b.Status != moderation.StatusApproved || !b.IsActive {
			return false
		}
		if f.CategoryID > 0 && b.CategoryID != f.CategoryID {
			return false
		}
		return q == "" || strings.Contains(strings.ToLower(b.Name+" "+b.Description), q)
	}), nil
}

func (m *memBusinesses) ListMap(ctx context.Context, communityID uint64) ([]model.BusinessPin, error) {
	list, _ := m.ListApproved(ctx, communityID, rdb.BusinessFilter{})
	pins := make([]model.BusinessPin, 0, len(list))
	for _, b := range list {
		pins = append(pins, model.BusinessPin{ID: b.ID, Name: b.Name, Slug: b.Slug, Latitude: b.Latitude, Longitude: b.Longitude})
	}
	return pins, nil
}

func (m *memBusinesses) ListByCommunity(_ context.Context, communityID uint64, status moderation.Status) ([]model.Business, error) {
	return m.filter(func(b *model.Business) bool {
		return b.CommunityID == communityID && (status == "" || b.Status == status)
	}), nil
}

func (m *memBusinesses) ListByOwner(_ context.Context, communityID, ownerID uint64) ([]model.Business, error) {
	return m.filter(func(b *model.Business) bool {
		return b.CommunityID == communityID && b.OwnerID == ownerID
	}), nil
}

func (m *memBusinesses) Update(_ context.Context, b *model.Business, cols map[string]any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.get(b.CommunityID, b.ID)
	if !ok {
		return moderation.ErrNotFound
	}
	if v, ok := cols["name"]; ok {
		r.Name = v.(string)
	}
	if v, ok := cols["address"]; ok {
		r.Address = v.(string)
	}
	if v, ok := cols["description"]; ok {
		r.Description = v.(string)
	}
	if v, ok := cols["category_id"]; ok {
		r.CategoryID = v.(uint64)
	}
	return nil
}

func (m *memBusinesses) SetStatus(_ context.Context, b *model.Business, to moderation.Status, _ uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.get(b.CommunityID, b.ID)
	if !ok || r.Status != moderation.StatusPending {
		return moderation.ErrIllegalTransition
	}
	r.Status = to
	m.events = append(m.events, string(to))
	return nil
}

func (m *memBusinesses) Delete(_ context.Context, b *model.Business, _ uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.get(b.CommunityID, b.ID); !ok {
		return moderation.ErrNotFound
	}
	delete(m.rows, b.ID)
	m.events = append(m.events, model.EventDeleted)
	return nil
}

type memCategories struct {
	rows map[uint64]*model.Category
}

func newMemCategories(cats ...model.Category) *memCategories {
	m := &memCategories{rows: map[uint64]*model.Category{}}
	for i := range cats {
		c := cats[i]
		m.rows[c.ID] = &c
	}
	return m
}

func (m *memCategories) Create(_ context.Context, c *model.Category) error {
	for _, r := range m.rows {
		if r.Slug == c.Slug {
			return moderation.ErrConflict
		}
	}
	c.ID = uint64(len(m.rows) + 100)
	cp := *c
	m.rows[c.ID] = &cp
	return nil
}

func (m *memCategories) FindByID(_ context.Context, id uint64) (*model.Category, error) {
	r, ok := m.rows[id]
	if !ok {
		return nil, moderation.ErrNotFound
	}
	cp := *r
	return &cp, nil
}

func (m *memCategories) FindBySlug(_ context.Context, slug string) (*model.Category, error) {
	for _, r := range m.rows {
		if r.Slug == slug {
			cp := *r
			return &cp, nil
		}
	}
	return nil, moderation.ErrNotFound
}

func (m *memCategories) List(context.Context) ([]model.Category, error) {
	out := []model.Category{}
	for _, r := range m.rows {
		out = append(out, *r)
	}
	return out, nil
}

func (m *memCategories) Update(_ context.Context, id uint64, cols map[string]any) error {
	r, ok := m.rows[id]
	if !ok {
		return moderation.ErrNotFound
	}
	if v, ok := cols["name"].(string); ok {
		r.Name = v
	}
	if v, ok := cols["slug"].(string); ok {
		r.Slug = v
	}
	return nil
}

func (m *memCategories) Delete(_ context.Context, id uint64) error {
	if _, ok := m.rows[id]; !ok {
		return moderation.ErrNotFound
	}
	delete(m.rows, id)
	return nil
}

type memPosts struct {
	mu   sync.Mutex
	seq  uint64
	rows map[uint64]*model.CommunityPost
}

func newMemPosts() *memPosts {
	return &memPosts{rows: map[uint64]*model.CommunityPost{}}
}

func (m *memPosts) Create(_ context.Context, p *model.CommunityPost) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	p.ID = m.seq
	cp := *p
	m.rows[p.ID] = &cp
	return nil
}

func (m *memPosts) get(communityID, id uint64) (*model.CommunityPost, bool) {
	r, ok := m.rows[id]
	if !ok || r.CommunityID != communityID {
		return nil, false
	}
	return r, true
}

func (m *memPosts) FindByID(_ context.Context, communityID, id uint64) (*model.CommunityPost, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.get(communityID, id)
	if !ok {
		return nil, moderation.ErrNotFound
	}
	cp := *r
	return &cp, nil
}

func (m *memPosts) filter(keep func(*model.CommunityPost) bool) []model.CommunityPost {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []model.CommunityPost{}
	for _, r := range m.rows {
		if keep(r) {
			out = append(out, *r)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].IsPinned != out[j].IsPinned {
			return out[i].IsPinned
		}
		return out[i].ID > out[j].ID
	})
	return out
}

func (m *memPosts) ListApproved(_ context.Context, communityID uint64, typ model.PostType, _ int) ([]model.CommunityPost, error) {
	return m.filter(func(p *model.CommunityPost) bool {
		return p.CommunityID == communityID && p.Status == moderation.StatusApproved && (typ == "" || p.Type == typ)
	}), nil
}

func (m *memPosts) ListByCommunity(_ context.Context, communityID uint64, status moderation.Status) ([]model.CommunityPost, error) {
	return m.filter(func(p *model.CommunityPost) bool {
		return p.CommunityID == communityID && (status == "" || p.Status == status)
	}), nil
}

func (m *memPosts) ListByAuthor(_ context.Context, communityID, authorID uint64) ([]model.CommunityPost, error) {
	return m.filter(func(p *model.CommunityPost) bool {
		return p.CommunityID == communityID && p.AuthorID == authorID
	}), nil
}

func (m *memPosts) Update(_ context.Context, p *model.CommunityPost, cols map[string]any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.get(p.CommunityID, p.ID)
	if !ok {
		return moderation.ErrNotFound
	}
	if v, ok := cols["title"]; ok {
		r.Title = v.(string)
	}
	return nil
}

func (m *memPosts) SetPinned(_ context.Context, communityID, id uint64, pinned bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.get(communityID, id)
	if !ok {
		return moderation.ErrNotFound
	}
	r.IsPinned = pinned
	return nil
}

func (m *memPosts) SetStatus(_ context.Context, p *model.CommunityPost, to moderation.Status, _ uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.get(p.CommunityID, p.ID)
	if !ok || r.Status != moderation.StatusPending {
		return moderation.ErrIllegalTransition
	}
	r.Status = to
	return nil
}

func (m *memPosts) Delete(_ context.Context, p *model.CommunityPost, _ uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.get(p.CommunityID, p.ID); !ok {
		return moderation.ErrNotFound
	}
	delete(m.rows, p.ID)
	return nil
}

type memUsers struct {
	mu   sync.Mutex
	seq  uint64
	rows map[uint64]*model.User
}

func newMemUsers(users ...model.User) *memUsers {
	m := &memUsers{rows: map[uint64]*model.User{}}
	for i := range users {
		u := users[i]
		m.rows[u.ID] = &u
		if u.ID > m.seq {
			m.seq = u.ID
		}
	}
	return m
}

func (m *memUsers) Create(_ context.Context, u *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.rows {
		if r.Email == u.Email {
			return moderation.ErrConflict
		}
	}
	m.seq++
	u.ID = m.seq
	cp := *u
	m.rows[u.ID] = &cp
	return nil
}

func (m *memUsers) FindByID(_ context.Context, id uint64) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rows[id]
	if !ok {
		return nil, moderation.ErrNotFound
	}
	cp := *r
	return &cp, nil
}

func (m *memUsers) FindByEmail(_ context.Context, email string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.rows {
		if r.Email == email {
			cp := *r
			return &cp, nil
		}
	}
	return nil, moderation.ErrNotFound
}

func (m *memUsers) FindOrCreateByPhone(ctx context.Context, phone, email string) (*model.User, bool, error) {
	m.mu.Lock()
	for _, r := range m.rows {
		if r.Phone != nil && *r.Phone == phone {
			cp := *r
			m.mu.Unlock()
			return &cp, false, nil
		}
	}
	m.mu.Unlock()
	p := phone
	u := &model.User{Phone: &p, Email: email, Role: moderation.RoleNeighbor}
	if err := m.Create(ctx, u); err != nil {
		return nil, false, err
	}
	return u, true, nil
}

type memSessions struct {
	mu      sync.Mutex
	access  map[uint64]string
	refresh map[uint64]string
}

func newMemSessions() *memSessions {
	return &memSessions{access: map[uint64]string{}, refresh: map[uint64]string{}}
}

func (m *memSessions) Save(_ context.Context, userID uint64, access, refresh string, _, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.access[userID] = access
	m.refresh[userID] = refresh
	return nil
}

func (m *memSessions) GetAccess(_ context.Context, userID uint64) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.access[userID]
	if !ok {
		return "", redis.ErrTokenNotFound
	}
	return v, nil
}

func (m *memSessions) GetRefresh(_ context.Context, userID uint64) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.refresh[userID]
	if !ok {
		return "", redis.ErrTokenNotFound
	}
	return v, nil
}

func (m *memSessions) Extend(context.Context, uint64, time.Duration) error { return nil }

func (m *memSessions) Delete(_ context.Context, userID uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.access, userID)
	delete(m.refresh, userID)
	return nil
}

type memLinks struct {
	mu     sync.Mutex
	tokens map[string]uint64
}

func (m *memLinks) Save(_ context.Context, token string, userID uint64, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.tokens == nil {
		m.tokens = map[string]uint64{}
	}
	m.tokens[token] = userID
	return nil
}

func (m *memLinks) Redeem(_ context.Context, token string) (uint64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id, ok := m.tokens[token]
	if !ok {
		return 0, redis.ErrLinkTokenInvalid
	}
	delete(m.tokens, token)
	return id, nil
}

type memCommunities struct {
	rows []model.Community
}

func (m *memCommunities) Create(_ context.Context, c *model.Community) error {
	c.ID = uint64(len(m.rows) + 1)
	m.rows = append(m.rows, *c)
	return nil
}

func (m *memCommunities) FindByID(_ context.Context, id uint64) (*model.Community, error) {
	for i := range m.rows {
		if m.rows[i].ID == id {
			c := m.rows[i]
			return &c, nil
		}
	}
	return nil, moderation.ErrNotFound
}

func (m *memCommunities) FindBySlug(_ context.Context, slug string) (*model.Community, error) {
	for i := range m.rows {
		if m.rows[i].Slug == slug {
			c := m.rows[i]
			return &c, nil
		}
	}
	return nil, moderation.ErrNotFound
}

func (m *memCommunities) ListActive(context.Context) ([]model.Community, error) {
	return m.rows, nil
}

type memOTP struct {
	mu        sync.Mutex
	cooldown  map[string]bool
	pending   map[string]string
	confirmed map[string]string
}

func newMemOTP() *memOTP {
	return &memOTP{cooldown: map[string]bool{}, pending: map[string]string{}, confirmed: map[string]string{}}
}

func (m *memOTP) AcquireCooldown(_ context.Context, phone string, _ time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cooldown[phone] {
		return false, nil
	}
	m.cooldown[phone] = true
	return true, nil
}

func (m *memOTP) ReleaseCooldown(_ context.Context, phone string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.cooldown, phone)
	return nil
}

func (m *memOTP) SavePending(_ context.Context, phone, requestID string, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pending[phone] = requestID
	return nil
}

func (m *memOTP) PendingRequest(_ context.Context, phone string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.pending[phone]
	if !ok {
		return "", redis.ErrOTPNotFound
	}
	return v, nil
}

func (m *memOTP) MarkConfirmed(_ context.Context, phone, requestID string, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.pending[phone] != requestID {
		return redis.ErrCodeConfirmedFailed
	}
	delete(m.pending, phone)
	m.confirmed[phone] = requestID
	return nil
}

func (m *memOTP) DeleteConfirmed(_ context.Context, phone string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.confirmed, phone)
	return nil
}

func newTestIssuer() *pkg.TokenIssuer {
	return pkg.NewTokenIssuer(pkg.JWTConfig{
		AccessSecret:  "test-access",
		RefreshSecret: "test-refresh",
		AccessTTL:     time.Minute,
		RefreshTTL:    time.Hour,
	})
}

// issued 读取本地 provider 发出的验证码
func (p *LocalOTPProvider) issued(requestID string) string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.codes[requestID].code
}
