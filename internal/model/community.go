package model

import "time"

// Community 租户，所有内容按 community_id 隔离
type Community struct {
	ID            uint64    `gorm:"primaryKey" json:"id"`
	Name          string    `gorm:"size:100;not null" json:"name"`
	Slug          string    `gorm:"uniqueIndex;size:120;not null" json:"slug"`
	Municipality  string    `gorm:"size:100" json:"municipality"`
	Department    string    `gorm:"size:100" json:"department"`
	Description   string    `gorm:"type:text" json:"description"`
	LogoURL       string    `gorm:"size:500" json:"logo_url"`
	PrimaryColor  string    `gorm:"size:7" json:"primary_color"`
	CoverImageURL string    `gorm:"size:500" json:"cover_image_url"`
	IsActive      bool      `gorm:"not null;default:true;index" json:"is_active"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Category 商家分类，全局共享
type Category struct {
	ID        uint64    `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:100;not null" json:"name"`
	Slug      string    `gorm:"uniqueIndex;size:120;not null" json:"slug"`
	Icon      string    `gorm:"size:64" json:"icon"`
	ParentID  *uint64   `gorm:"index" json:"parent_id"`
	SortOrder int       `gorm:"not null;default:0" json:"sort_order"`
	CreatedAt time.Time `json:"created_at"`
}
