package validation

import (
	"encoding/json"

	"barriored/internal/model"
)

type DayHours struct {
	Open  string `json:"open" validate:"required"`
	Close string `json:"close" validate:"required"`
}

type BusinessInput struct {
	CategoryID  uint64              `json:"category_id" validate:"required"`
	Name        string              `json:"name" validate:"required,min=2,max=100"`
	Description string              `json:"description" validate:"max=500"`
	Address     string              `json:"address" validate:"required,min=5,max=200"`
	Latitude    *float64            `json:"latitude" validate:"required,min=-90,max=90"`
	Longitude   *float64            `json:"longitude" validate:"required,min=-180,max=180"`
	Phone       string              `json:"phone" validate:"omitempty,max=20"`
	WhatsApp    string              `json:"whatsapp" validate:"required,colphone"`
	Email       string              `json:"email" validate:"omitempty,email"`
	Website     string              `json:"website" validate:"omitempty,url"`
	Hours       map[string]DayHours `json:"hours" validate:"omitempty,dive"`
	Photos      []string            `json:"photos" validate:"max=5,dive,url"`
}

// DecodeBusiness 解析并校验商家注册请求
func DecodeBusiness(raw []byte) (*BusinessInput, error) {
	var in BusinessInput
	if verr := decodeJSON(raw, &in); verr.Err() != nil {
		return nil, verr
	}
	if verr := Struct(&in, ""); verr.Err() != nil {
		return nil, verr
	}
	return &in, nil
}

func (in *BusinessInput) Model() *model.Business {
	b := &model.Business{
		CategoryID:  in.CategoryID,
		Name:        in.Name,
		Description: in.Description,
		Address:     in.Address,
		Latitude:    *in.Latitude,
		Longitude:   *in.Longitude,
		Phone:       in.Phone,
		WhatsApp:    in.WhatsApp,
		Email:       in.Email,
		Website:     in.Website,
		Hours:       toModelHours(in.Hours),
		Photos:      in.Photos,
	}
	if b.Photos == nil {
		b.Photos = []string{}
	}
	return b
}

func toModelHours(in map[string]DayHours) map[string]model.DayHours {
	out := make(map[string]model.DayHours, len(in))
	for day, h := range in {
		out[day] = model.DayHours{Open: h.Open, Close: h.Close}
	}
	return out
}

// BusinessPatch 部分更新，不包含 status/community_id/owner_id
type BusinessPatch struct {
	CategoryID  *uint64              `json:"category_id" validate:"omitnil,gt=0"`
	Name        *string              `json:"name" validate:"omitnil,min=2,max=100"`
	Description *string              `json:"description" validate:"omitnil,max=500"`
	Address     *string              `json:"address" validate:"omitnil,min=5,max=200"`
	Latitude    *float64             `json:"latitude" validate:"omitnil,min=-90,max=90"`
	Longitude   *float64             `json:"longitude" validate:"omitnil,min=-180,max=180"`
	Phone       *string              `json:"phone" validate:"omitnil,max=20"`
	WhatsApp    *string              `json:"whatsapp" validate:"omitnil,colphone"`
	Email       *string              `json:"email" validate:"omitnil,email_or_empty"`
	Website     *string              `json:"website" validate:"omitnil,url_or_empty"`
	Hours       *map[string]DayHours `json:"hours" validate:"omitnil,dive"`
	Photos      *[]string            `json:"photos" validate:"omitnil,max=5,dive,url"`
}

func DecodeBusinessPatch(raw []byte) (*BusinessPatch, error) {
	var in BusinessPatch
	if verr := decodeJSON(raw, &in); verr.Err() != nil {
		return nil, verr
	}
	verr := Struct(&in, "")
	// 坐标必须成对修改
	if (in.Latitude == nil) != (in.Longitude == nil) {
		if in.Latitude == nil {
			verr.Add("latitude", "Latitud y longitud deben enviarse juntas")
		} else {
			verr.Add("longitude", "Latitud y longitud deben enviarse juntas")
		}
	}
	if err := verr.Err(); err != nil {
		return nil, err
	}
	return &in, nil
}

// Columns 转成允许更新的列
func (p *BusinessPatch) Columns() map[string]any {
	cols := map[string]any{}
	if p.CategoryID != nil {
		cols["category_id"] = *p.CategoryID
	}
	if p.Name != nil {
		cols["name"] = *p.Name
	}
	if p.Description != nil {
		cols["description"] = *p.Description
	}
	if p.Address != nil {
		cols["address"] = *p.Address
	}
	if p.Latitude != nil && p.Longitude != nil {
		cols["latitude"] = *p.Latitude
		cols["longitude"] = *p.Longitude
	}
	if p.Phone != nil {
		cols["phone"] = *p.Phone
	}
	if p.WhatsApp != nil {
		cols["whatsapp"] = *p.WhatsApp
	}
	if p.Email != nil {
		cols["email"] = *p.Email
	}
	if p.Website != nil {
		cols["website"] = *p.Website
	}
	// map 更新不会经过 serializer，这里直接写 JSON 文本
	if p.Hours != nil {
		b, _ := json.Marshal(toModelHours(*p.Hours))
		cols["hours"] = string(b)
	}
	if p.Photos != nil {
		b, _ := json.Marshal(*p.Photos)
		cols["photos"] = string(b)
	}
	return cols
}
