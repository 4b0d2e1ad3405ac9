package model

import (
	"time"

	"barriored/internal/moderation"
)

type User struct {
	ID          uint64          `gorm:"primaryKey" json:"id"`
	FullName    string          `gorm:"size:100" json:"full_name"`
	Email       string          `gorm:"uniqueIndex;size:128;not null" json:"email"`
	Phone       *string         `gorm:"uniqueIndex;size:20" json:"phone"`
	Password    string          `gorm:"size:255" json:"-"` // OTP 登录的账号没有密码
	Role        moderation.Role `gorm:"size:16;not null;default:neighbor" json:"role"`
	CommunityID *uint64         `gorm:"index" json:"community_id"`
	AvatarURL   string          `gorm:"size:500" json:"avatar_url"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

func (u *User) Actor() *moderation.Actor {
	return &moderation.Actor{ID: u.ID, Role: u.Role, CommunityID: u.CommunityID}
}
