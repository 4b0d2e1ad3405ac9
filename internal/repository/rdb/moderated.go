package rdb

import (
	"encoding/json"
	"time"

	"barriored/internal/model"
	"barriored/internal/moderation"

	"gorm.io/gorm"
)

// 商家和帖子共用的状态流转、删除和 outbox 写入

type moderatedRef struct {
	kind        moderation.Kind
	id          uint64
	communityID uint64
	ownerID     uint64
	title       string
}

// transition 条件更新：只有仍是 from 状态的行会被修改，并发的第二次审核拿到 ErrIllegalTransition
func transition(tx *gorm.DB, m any, ref moderatedRef, from, to moderation.Status, actorID uint64) error {
	res := tx.Model(m).
		Where("community_id = ? AND id = ? AND status = ?", ref.communityID, ref.id, from).
		Updates(map[string]any{"status": to, "updated_at": time.Now()})
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return moderation.ErrIllegalTransition
	}
	event := model.EventApproved
	if to == moderation.StatusRejected {
		event = model.EventRejected
	}
	return insertOutbox(tx, event, ref, actorID)
}

func remove(tx *gorm.DB, m any, ref moderatedRef, actorID uint64) error {
	res := tx.Where("community_id = ? AND id = ?", ref.communityID, ref.id).Delete(m)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return moderation.ErrNotFound
	}
	return insertOutbox(tx, model.EventDeleted, ref, actorID)
}

// insertOutbox 与业务写入同一事务
func insertOutbox(tx *gorm.DB, event string, ref moderatedRef, actorID uint64) error {
	payload, _ := json.Marshal(map[string]any{
		"event_time":   time.Now().UTC().Format(time.RFC3339Nano),
		"event":        event,
		"kind":         ref.kind,
		"record_id":    ref.id,
		"community_id": ref.communityID,
		"owner_id":     ref.ownerID,
		"actor_id":     actorID,
		"title":        ref.title,
	})
	ob := &model.ModerationOutbox{
		EventType:   event,
		Kind:        ref.kind,
		RecordID:    ref.id,
		CommunityID: ref.communityID,
		ActorID:     actorID,
		OwnerID:     ref.ownerID,
		Payload:     string(payload),
		Status:      model.OutboxNew,
	}
	return tx.Create(ob).Error
}
