package validation

import (
	"time"

	"barriored/internal/model"
)

type AlertInput struct {
	Type        string     `json:"type" validate:"required,oneof=water power security construction general"`
	Title       string     `json:"title" validate:"required,min=3,max=150"`
	Description string     `json:"description" validate:"max=500"`
	Severity    string     `json:"severity" validate:"required,oneof=info warning critical"`
	StartsAt    *time.Time `json:"starts_at"`
	EndsAt      *time.Time `json:"ends_at"`
}

func DecodeAlert(raw []byte) (*AlertInput, error) {
	var in AlertInput
	if verr := decodeJSON(raw, &in); verr.Err() != nil {
		return nil, verr
	}
	verr := Struct(&in, "")
	if in.StartsAt != nil && in.EndsAt != nil && !in.EndsAt.After(*in.StartsAt) {
		verr.Add("ends_at", "Debe ser posterior a la fecha de inicio")
	}
	if err := verr.Err(); err != nil {
		return nil, err
	}
	return &in, nil
}

func (in *AlertInput) Model() *model.Alert {
	return &model.Alert{
		Type:        in.Type,
		Title:       in.Title,
		Description: in.Description,
		Severity:    in.Severity,
		IsActive:    true,
		StartsAt:    in.StartsAt,
		EndsAt:      in.EndsAt,
	}
}

type AlertPatch struct {
	Type        *string    `json:"type" validate:"omitnil,oneof=water power security construction general"`
	Title       *string    `json:"title" validate:"omitnil,min=3,max=150"`
	Description *string    `json:"description" validate:"omitnil,max=500"`
	Severity    *string    `json:"severity" validate:"omitnil,oneof=info warning critical"`
	StartsAt    *time.Time `json:"starts_at"`
	EndsAt      *time.Time `json:"ends_at"`
	IsActive    *bool      `json:"is_active"`
}

func DecodeAlertPatch(raw []byte) (*AlertPatch, error) {
	var in AlertPatch
	if verr := decodeJSON(raw, &in); verr.Err() != nil {
		return nil, verr
	}
	verr := Struct(&in, "")
	if in.StartsAt != nil && in.EndsAt != nil && !in.EndsAt.After(*in.StartsAt) {
		verr.Add("ends_at", "Debe ser posterior a la fecha de inicio")
	}
	if err := verr.Err(); err != nil {
		return nil, err
	}
	return &in, nil
}

func (p *AlertPatch) Columns() map[string]any {
	cols := map[string]any{}
	if p.Type != nil {
		cols["type"] = *p.Type
	}
	if p.Title != nil {
		cols["title"] = *p.Title
	}
	if p.Description != nil {
		cols["description"] = *p.Description
	}
	if p.Severity != nil {
		cols["severity"] = *p.Severity
	}
	if p.StartsAt != nil {
		cols["starts_at"] = *p.StartsAt
	}
	if p.EndsAt != nil {
		cols["ends_at"] = *p.EndsAt
	}
	if p.IsActive != nil {
		cols["is_active"] = *p.IsActive
	}
	return cols
}

type PublicServiceInput struct {
	Category    string `json:"category" validate:"required,oneof=emergency health government transport utilities"`
	Name        string `json:"name" validate:"required,min=2,max=100"`
	Description string `json:"description" validate:"max=300"`
	Phone       string `json:"phone" validate:"max=20"`
	Address     string `json:"address" validate:"max=200"`
	Hours       string `json:"hours" validate:"max=100"`
	SortOrder   int    `json:"sort_order"`
}

func DecodePublicService(raw []byte) (*PublicServiceInput, error) {
	return Decode[PublicServiceInput](raw)
}

func (in *PublicServiceInput) Model() *model.PublicService {
	return &model.PublicService{
		Category:    in.Category,
		Name:        in.Name,
		Description: in.Description,
		Phone:       in.Phone,
		Address:     in.Address,
		Hours:       in.Hours,
		SortOrder:   in.SortOrder,
		IsActive:    true,
	}
}

type PublicServicePatch struct {
	Category    *string `json:"category" validate:"omitnil,oneof=emergency health government transport utilities"`
	Name        *string `json:"name" validate:"omitnil,min=2,max=100"`
	Description *string `json:"description" validate:"omitnil,max=300"`
	Phone       *string `json:"phone" validate:"omitnil,max=20"`
	Address     *string `json:"address" validate:"omitnil,max=200"`
	Hours       *string `json:"hours" validate:"omitnil,max=100"`
	SortOrder   *int    `json:"sort_order"`
	IsActive    *bool   `json:"is_active"`
}

func DecodePublicServicePatch(raw []byte) (*PublicServicePatch, error) {
	return Decode[PublicServicePatch](raw)
}

func (p *PublicServicePatch) Columns() map[string]any {
	cols := map[string]any{}
	if p.Category != nil {
		cols["category"] = *p.Category
	}
	if p.Name != nil {
		cols["name"] = *p.Name
	}
	if p.Description != nil {
		cols["description"] = *p.Description
	}
	if p.Phone != nil {
		cols["phone"] = *p.Phone
	}
	if p.Address != nil {
		cols["address"] = *p.Address
	}
	if p.Hours != nil {
		cols["hours"] = *p.Hours
	}
	if p.SortOrder != nil {
		cols["sort_order"] = *p.SortOrder
	}
	if p.IsActive != nil {
		cols["is_active"] = *p.IsActive
	}
	return cols
}

type CategoryInput struct {
	Name      string  `json:"name" validate:"required,min=2,max=100"`
	Slug      string  `json:"slug" validate:"omitempty,max=120"`
	Icon      string  `json:"icon" validate:"max=64"`
	ParentID  *uint64 `json:"parent_id"`
	SortOrder int     `json:"sort_order"`
}

func DecodeCategory(raw []byte) (*CategoryInput, error) {
	return Decode[CategoryInput](raw)
}

type CommunityInput struct {
	Name          string `json:"name" validate:"required,min=2,max=100"`
	Slug          string `json:"slug" validate:"omitempty,max=120"`
	Municipality  string `json:"municipality" validate:"required,max=100"`
	Department    string `json:"department" validate:"required,max=100"`
	Description   string `json:"description"`
	LogoURL       string `json:"logo_url" validate:"omitempty,url"`
	PrimaryColor  string `json:"primary_color" validate:"omitempty,hexcolor"`
	CoverImageURL string `json:"cover_image_url" validate:"omitempty,url"`
}

func DecodeCommunity(raw []byte) (*CommunityInput, error) {
	return Decode[CommunityInput](raw)
}

func (in *CommunityInput) Model() *model.Community {
	return &model.Community{
		Name:          in.Name,
		Slug:          in.Slug,
		Municipality:  in.Municipality,
		Department:    in.Department,
		Description:   in.Description,
		LogoURL:       in.LogoURL,
		PrimaryColor:  in.PrimaryColor,
		CoverImageURL: in.CoverImageURL,
		IsActive:      true,
	}
}
