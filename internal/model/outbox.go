package model

import (
	"time"

	"barriored/internal/moderation"
)

const (
	EventSubmitted = "submitted"
	EventApproved  = "approved"
	EventRejected  = "rejected"
	EventDeleted   = "deleted"
)

const (
	OutboxNew      = 0
	OutboxSent     = 1
	OutboxRetrying = 2
)

// ModerationOutbox 与状态变更同事务写入，由 relayer 异步投递
type ModerationOutbox struct {
	ID          uint64          `gorm:"primaryKey"`
	EventType   string          `gorm:"size:16;not null"`
	Kind        moderation.Kind `gorm:"size:16;not null"`
	RecordID    uint64          `gorm:"not null;index"`
	CommunityID uint64          `gorm:"not null"`
	ActorID     uint64          `gorm:"not null"`
	OwnerID     uint64          `gorm:"not null"`
	Payload     string          `gorm:"type:text"`
	Status      int             `gorm:"not null;default:0;index"` // 0=new 1=sent 2=retrying
	Retry       int             `gorm:"not null;default:0"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (ModerationOutbox) TableName() string { return "moderation_outbox" }
