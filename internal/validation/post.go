package validation

import (
	"encoding/json"

	"barriored/internal/model"
	"barriored/internal/moderation"
)

// PostPayload 帖子的元数据，三选一
type PostPayload interface {
	PostType() model.PostType
	Metadata() map[string]any
}

type Announcement struct{}

type Coords struct {
	Lat float64 `json:"lat" validate:"min=-90,max=90"`
	Lng float64 `json:"lng" validate:"min=-180,max=180"`
}

type Event struct {
	Date           string  `json:"date" validate:"required"`
	EndDate        string  `json:"end_date,omitempty"`
	Location       string  `json:"location" validate:"required,min=3"`
	LocationCoords *Coords `json:"location_coords,omitempty"`
}

type Job struct {
	Category      string `json:"category" validate:"required"`
	SalaryRange   string `json:"salary_range,omitempty"`
	ContactMethod string `json:"contact_method" validate:"required,oneof=whatsapp phone email"`
	ContactValue  string `json:"contact_value" validate:"required"`
}

func (Announcement) PostType() model.PostType { return model.PostAnnouncement }
func (Event) PostType() model.PostType        { return model.PostEvent }
func (Job) PostType() model.PostType          { return model.PostJob }

func (Announcement) Metadata() map[string]any { return map[string]any{} }
func (e Event) Metadata() map[string]any      { return toMap(e) }
func (j Job) Metadata() map[string]any        { return toMap(j) }

func toMap(v any) map[string]any {
	b, _ := json.Marshal(v)
	out := map[string]any{}
	_ = json.Unmarshal(b, &out)
	return out
}

type postEnvelope struct {
	Type     model.PostType  `json:"type" validate:"required,oneof=announcement event job"`
	Title    string          `json:"title" validate:"required,min=3,max=150"`
	Content  string          `json:"content" validate:"required,min=10,max=2000"`
	ImageURL string          `json:"image_url" validate:"omitempty,url"`
	Metadata json.RawMessage `json:"metadata" validate:"-"`
}

type PostInput struct {
	Title    string
	Content  string
	ImageURL string
	Payload  PostPayload
}

func (in *PostInput) Model() *model.CommunityPost {
	return &model.CommunityPost{
		Type:     in.Payload.PostType(),
		Title:    in.Title,
		Content:  in.Content,
		ImageURL: in.ImageURL,
		Metadata: in.Payload.Metadata(),
	}
}

// DecodePost 先校验公共字段，再按 type 精确匹配元数据
func DecodePost(raw []byte) (*PostInput, error) {
	var env postEnvelope
	if verr := decodeJSON(raw, &env); verr.Err() != nil {
		return nil, verr
	}
	verr := Struct(&env, "")
	if verr.Has("type") {
		return nil, verr
	}
	payload, mverr := decodeMetadata(env.Type, env.Metadata)
	for field, msgs := range mverr.Fields {
		for _, m := range msgs {
			verr.Add(field, m)
		}
	}
	if err := verr.Err(); err != nil {
		return nil, err
	}
	return &PostInput{
		Title:    env.Title,
		Content:  env.Content,
		ImageURL: env.ImageURL,
		Payload:  payload,
	}, nil
}

func decodeMetadata(t model.PostType, raw json.RawMessage) (PostPayload, *moderation.ValidationError) {
	switch t {
	case model.PostAnnouncement:
		return Announcement{}, moderation.NewValidationError()
	case model.PostEvent:
		var e Event
		if verr := decodeMetadataJSON(raw, &e); verr.Err() != nil {
			return nil, verr
		}
		return e, Struct(&e, "metadata.")
	case model.PostJob:
		var j Job
		if verr := decodeMetadataJSON(raw, &j); verr.Err() != nil {
			return nil, verr
		}
		return j, Struct(&j, "metadata.")
	default:
		verr := moderation.NewValidationError()
		verr.Add("type", "Tipo de publicacion invalido")
		return nil, verr
	}
}

// decodeMetadataJSON metadata 缺省时按空对象处理，交给必填规则报错
func decodeMetadataJSON(raw json.RawMessage, dst any) *moderation.ValidationError {
	out := moderation.NewValidationError()
	if len(raw) == 0 || string(raw) == "null" {
		return out
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		out.Add("metadata", "Metadatos invalidos")
	}
	return out
}

type postPatchEnvelope struct {
	Title    *string         `json:"title" validate:"omitnil,min=3,max=150"`
	Content  *string         `json:"content" validate:"omitnil,min=10,max=2000"`
	ImageURL *string         `json:"image_url" validate:"omitnil,url_or_empty"`
	Metadata json.RawMessage `json:"metadata" validate:"-"`
}

// PostPatch 只允许 title/content/image_url/metadata
type PostPatch struct {
	Title    *string
	Content  *string
	ImageURL *string
	Payload  PostPayload
}

// DecodePostPatch metadata 按已存帖子的类型校验，type 本身不可改
func DecodePostPatch(raw []byte, current model.PostType) (*PostPatch, error) {
	var env postPatchEnvelope
	if verr := decodeJSON(raw, &env); verr.Err() != nil {
		return nil, verr
	}
	verr := Struct(&env, "")
	patch := &PostPatch{Title: env.Title, Content: env.Content, ImageURL: env.ImageURL}
	if len(env.Metadata) > 0 && string(env.Metadata) != "null" {
		payload, mverr := decodeMetadata(current, env.Metadata)
		for field, msgs := range mverr.Fields {
			for _, m := range msgs {
				verr.Add(field, m)
			}
		}
		patch.Payload = payload
	}
	if err := verr.Err(); err != nil {
		return nil, err
	}
	return patch, nil
}

func (p *PostPatch) Columns() map[string]any {
	cols := map[string]any{}
	if p.Title != nil {
		cols["title"] = *p.Title
	}
	if p.Content != nil {
		cols["content"] = *p.Content
	}
	if p.ImageURL != nil {
		cols["image_url"] = *p.ImageURL
	}
	if p.Payload != nil {
		b, _ := json.Marshal(p.Payload.Metadata())
		cols["metadata"] = string(b)
	}
	return cols
}

type PinInput struct {
	Pinned *bool `json:"pinned" validate:"required"`
}
