package model

import "time"

type Alert struct {
	ID          uint64     `gorm:"primaryKey" json:"id"`
	CommunityID uint64     `gorm:"not null;index:idx_alert_comm_active,priority:1" json:"community_id"`
	AuthorID    uint64     `gorm:"not null" json:"author_id"`
	Type        string     `gorm:"size:16;not null" json:"type"`
	Title       string     `gorm:"size:150;not null" json:"title"`
	Description string     `gorm:"size:500" json:"description"`
	Severity    string     `gorm:"size:16;not null" json:"severity"`
	IsActive    bool       `gorm:"not null;default:true;index:idx_alert_comm_active,priority:2" json:"is_active"`
	StartsAt    *time.Time `json:"starts_at"`
	EndsAt      *time.Time `gorm:"index" json:"ends_at"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func (Alert) TableName() string { return "community_alerts" }

type PublicService struct {
	ID          uint64    `gorm:"primaryKey" json:"id"`
	CommunityID uint64    `gorm:"not null;index:idx_svc_comm,priority:1" json:"community_id"`
	Category    string    `gorm:"size:16;not null;index:idx_svc_comm,priority:2" json:"category"`
	Name        string    `gorm:"size:100;not null" json:"name"`
	Description string    `gorm:"size:300" json:"description"`
	Phone       string    `gorm:"size:20" json:"phone"`
	Address     string    `gorm:"size:200" json:"address"`
	Hours       string    `gorm:"size:100" json:"hours"`
	SortOrder   int       `gorm:"not null;default:0" json:"sort_order"`
	IsActive    bool      `gorm:"not null;default:true" json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
