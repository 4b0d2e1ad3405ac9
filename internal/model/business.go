package model

import (
	"time"

	"barriored/internal/moderation"

	"gorm.io/gorm"
)

type DayHours struct {
	Open  string `json:"open"`
	Close string `json:"close"`
}

type Business struct {
	ID          uint64              `gorm:"primaryKey" json:"id"`
	CommunityID uint64              `gorm:"not null;index:idx_biz_comm_status,priority:1;uniqueIndex:uk_biz_comm_slug,priority:1" json:"community_id"`
	OwnerID     uint64              `gorm:"not null;index" json:"owner_id"`
	CategoryID  uint64              `gorm:"not null;index" json:"category_id"`
	Name        string              `gorm:"size:100;not null" json:"name"`
	Slug        string              `gorm:"size:120;not null;uniqueIndex:uk_biz_comm_slug,priority:2" json:"slug"`
	Description string              `gorm:"size:500" json:"description"`
	Address     string              `gorm:"size:200;not null" json:"address"`
	Latitude    float64             `gorm:"not null" json:"latitude"`
	Longitude   float64             `gorm:"not null" json:"longitude"`
	Phone       string              `gorm:"size:20" json:"phone"`
	WhatsApp    string              `gorm:"column:whatsapp;size:12;not null" json:"whatsapp"`
	Email       string              `gorm:"size:128" json:"email"`
	Website     string              `gorm:"size:255" json:"website"`
	Hours       map[string]DayHours `gorm:"serializer:json;type:text" json:"hours"`
	Photos      []string            `gorm:"serializer:json;type:text" json:"photos"`
	IsVerified  bool                `gorm:"not null;default:false" json:"is_verified"`
	IsActive    bool                `gorm:"not null;default:true" json:"is_active"`
	Status      moderation.Status   `gorm:"size:16;not null;default:pending;index:idx_biz_comm_status,priority:2" json:"status"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`
	DeletedAt   gorm.DeletedAt      `gorm:"index" json:"-"`
}

func (b *Business) Kind() moderation.Kind              { return moderation.KindBusiness }
func (b *Business) Tenant() uint64                     { return b.CommunityID }
func (b *Business) Owner() uint64                      { return b.OwnerID }
func (b *Business) ModerationStatus() moderation.Status { return b.Status }
func (b *Business) Active() bool                       { return b.IsActive }

// BusinessPin 地图只需要坐标和名称
type BusinessPin struct {
	ID         uint64  `json:"id"`
	Name       string  `json:"name"`
	Slug       string  `json:"slug"`
	CategoryID uint64  `json:"category_id"`
	Latitude   float64 `json:"latitude"`
	Longitude  float64 `json:"longitude"`
}
