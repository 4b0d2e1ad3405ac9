package model

import (
	"time"

	"barriored/internal/moderation"

	"gorm.io/gorm"
)

type PostType string

const (
	PostAnnouncement PostType = "announcement"
	PostEvent        PostType = "event"
	PostJob          PostType = "job"
)

// CommunityPost 公告/活动/招聘，metadata 的结构由 Type 决定
type CommunityPost struct {
	ID          uint64            `gorm:"primaryKey;index:idx_post_feed,priority:4,sort:desc" json:"id"`
	CommunityID uint64            `gorm:"not null;index:idx_post_feed,priority:1" json:"community_id"`
	AuthorID    uint64            `gorm:"not null;index" json:"author_id"`
	Type        PostType          `gorm:"size:16;not null" json:"type"`
	Title       string            `gorm:"size:150;not null" json:"title"`
	Content     string            `gorm:"type:text" json:"content"`
	ImageURL    string            `gorm:"size:500" json:"image_url"`
	Metadata    map[string]any    `gorm:"serializer:json;type:text" json:"metadata"`
	Status      moderation.Status `gorm:"size:16;not null;default:pending;index:idx_post_feed,priority:2" json:"status"`
	IsPinned    bool              `gorm:"not null;default:false" json:"is_pinned"`
	CreatedAt   time.Time         `gorm:"index:idx_post_feed,priority:3,sort:desc" json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
	DeletedAt   gorm.DeletedAt    `gorm:"index" json:"-"`
}

func (CommunityPost) TableName() string { return "community_posts" }

func (p *CommunityPost) Kind() moderation.Kind              { return moderation.KindPost }
func (p *CommunityPost) Tenant() uint64                     { return p.CommunityID }
func (p *CommunityPost) Owner() uint64                      { return p.AuthorID }
func (p *CommunityPost) ModerationStatus() moderation.Status { return p.Status }
