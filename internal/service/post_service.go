package service

import (
	"context"

	"barriored/internal/model"
	"barriored/internal/moderation"
	"barriored/internal/pkg"
	"barriored/internal/validation"
)

type PostStore interface {
	Create(ctx context.Context, p *model.CommunityPost) error
	FindByID(ctx context.Context, communityID, id uint64) (*model.CommunityPost, error)
	ListApproved(ctx context.Context, communityID uint64, typ model.PostType, limit int) ([]model.CommunityPost, error)
	ListByCommunity(ctx context.Context, communityID uint64, status moderation.Status) ([]model.CommunityPost, error)
	ListByAuthor(ctx context.Context, communityID, authorID uint64) ([]model.CommunityPost, error)
	Update(ctx context.Context, p *model.CommunityPost, cols map[string]any) error
	SetPinned(ctx context.Context, communityID, id uint64, pinned bool) error
	SetStatus(ctx context.Context, p *model.CommunityPost, to moderation.Status, actorID uint64) error
	Delete(ctx context.Context, p *model.CommunityPost, actorID uint64) error
}

type PostService struct {
	store PostStore
}

func NewPostService(store PostStore) *PostService {
	return &PostService{store: store}
}

func (s *PostService) Submit(ctx context.Context, actor *moderation.Actor, communityID uint64, raw []byte) (*model.CommunityPost, error) {
	if err := moderation.CanSubmit(actor); err != nil {
		return nil, err
	}
	in, err := validation.DecodePost(raw)
	if err != nil {
		return nil, err
	}
	p := in.Model()
	p.CommunityID = communityID
	p.AuthorID = actor.ID
	p.Status = moderation.StatusPending
	if err := s.store.Create(ctx, p); err != nil {
		return nil, storeErr("create post", err)
	}
	pkg.ModerationDecisions.WithLabelValues(string(moderation.KindPost), model.EventSubmitted).Inc()
	return p, nil
}

func (s *PostService) Get(ctx context.Context, viewer *moderation.Actor, communityID, id uint64) (*model.CommunityPost, error) {
	p, err := s.store.FindByID(ctx, communityID, id)
	if err != nil {
		return nil, storeErr("find post", err)
	}
	if !moderation.IsVisible(p, viewer) {
		return nil, moderation.ErrNotFound
	}
	return p, nil
}

// Update 类型不可改，metadata 按原类型校验
func (s *PostService) Update(ctx context.Context, actor *moderation.Actor, communityID, id uint64, raw []byte) (*model.CommunityPost, error) {
	if err := moderation.CanSubmit(actor); err != nil {
		return nil, err
	}
	p, err := s.store.FindByID(ctx, communityID, id)
	if err != nil {
		return nil, storeErr("find post", err)
	}
	if err := moderation.CanEdit(actor, p); err != nil {
		return nil, err
	}
	patch, err := validation.DecodePostPatch(raw, p.Type)
	if err != nil {
		return nil, err
	}
	if err := s.store.Update(ctx, p, patch.Columns()); err != nil {
		return nil, storeErr("update post", err)
	}
	updated, err := s.store.FindByID(ctx, communityID, id)
	return updated, storeErr("find post", err)
}

func (s *PostService) Approve(ctx context.Context, actor *moderation.Actor, communityID, id uint64) (*model.CommunityPost, error) {
	return s.decide(ctx, actor, communityID, id, moderation.Approve)
}

func (s *PostService) Reject(ctx context.Context, actor *moderation.Actor, communityID, id uint64) (*model.CommunityPost, error) {
	return s.decide(ctx, actor, communityID, id, moderation.Reject)
}

func (s *PostService) decide(ctx context.Context, actor *moderation.Actor, communityID, id uint64,
	rule func(*moderation.Actor, moderation.Record) (moderation.Status, error)) (*model.CommunityPost, error) {
	if err := moderation.CanModerate(actor); err != nil {
		return nil, err
	}
	p, err := s.store.FindByID(ctx, communityID, id)
	if err != nil {
		return nil, storeErr("find post", err)
	}
	to, err := rule(actor, p)
	if err != nil {
		return nil, err
	}
	if err := s.store.SetStatus(ctx, p, to, actor.ID); err != nil {
		return nil, storeErr("set post status", err)
	}
	p.Status = to
	pkg.ModerationDecisions.WithLabelValues(string(moderation.KindPost), string(to)).Inc()
	return p, nil
}

// Pin 置顶只影响排序，不改变审核状态
func (s *PostService) Pin(ctx context.Context, actor *moderation.Actor, communityID, id uint64, raw []byte) (*model.CommunityPost, error) {
	if err := moderation.RequireAdmin(actor); err != nil {
		return nil, err
	}
	p, err := s.store.FindByID(ctx, communityID, id)
	if err != nil {
		return nil, storeErr("find post", err)
	}
	in, err := validation.Decode[validation.PinInput](raw)
	if err != nil {
		return nil, err
	}
	if err := s.store.SetPinned(ctx, communityID, id, *in.Pinned); err != nil {
		return nil, storeErr("pin post", err)
	}
	p.IsPinned = *in.Pinned
	return p, nil
}

func (s *PostService) Delete(ctx context.Context, actor *moderation.Actor, communityID, id uint64) error {
	if err := moderation.CanSubmit(actor); err != nil {
		return err
	}
	p, err := s.store.FindByID(ctx, communityID, id)
	if err != nil {
		return storeErr("find post", err)
	}
	if err := moderation.CanDelete(actor, p); err != nil {
		return err
	}
	if err := s.store.Delete(ctx, p, actor.ID); err != nil {
		return storeErr("delete post", err)
	}
	pkg.ModerationDecisions.WithLabelValues(string(moderation.KindPost), model.EventDeleted).Inc()
	return nil
}

func (s *PostService) ListFeed(ctx context.Context, communityID uint64, typ string, limit int) ([]model.CommunityPost, error) {
	t := model.PostType(typ)
	switch t {
	case "", model.PostAnnouncement, model.PostEvent, model.PostJob:
	default:
		return nil, fieldError("type", "Debe ser uno de: announcement event job")
	}
	list, err := s.store.ListApproved(ctx, communityID, t, limit)
	return list, storeErr("list posts", err)
}

func (s *PostService) ListAdmin(ctx context.Context, actor *moderation.Actor, communityID uint64, status string) ([]model.CommunityPost, error) {
	if err := moderation.RequireAdmin(actor); err != nil {
		return nil, err
	}
	st, err := parseStatusFilter(status)
	if err != nil {
		return nil, err
	}
	list, err := s.store.ListByCommunity(ctx, communityID, st)
	return list, storeErr("list posts", err)
}

func (s *PostService) ListMine(ctx context.Context, actor *moderation.Actor, communityID uint64) ([]model.CommunityPost, error) {
	if err := moderation.CanSubmit(actor); err != nil {
		return nil, err
	}
	list, err := s.store.ListByAuthor(ctx, communityID, actor.ID)
	return list, storeErr("list posts", err)
}
