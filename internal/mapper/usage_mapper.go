package mapper

import (
	"encoding/json"

	"rentora-be/internal/entity"
	"rentora-be/internal/model"

	"gorm.io/datatypes"
)

type UsageMapper struct{}

func NewUsageMapper() *UsageMapper {
	return &UsageMapper{}
}

func (m *UsageMapper) ToEntity(u *model.UsageLogEntry) *entity.UsageLogEntry {
	if u == nil {
		return nil
	}
	var meta map[string]interface{}
	if len(u.Metadata) > 0 {
		_ = json.Unmarshal(u.Metadata, &meta)
	}
	return &entity.UsageLogEntry{
		Id:             u.Id,
		SubscriptionId: u.SubscriptionId,
		UserId:         u.UserId,
		Feature:        entity.Feature(u.Feature),
		ResourceId:     u.ResourceId,
		Action:         u.Action,
		Count:          u.Count,
		WasGated:       u.WasGated,
		GateType:       entity.GateType(u.GateType),
		OverrideReason: u.OverrideReason,
		IPAddress:      u.IPAddress,
		UserAgent:      u.UserAgent,
		Metadata:       meta,
		CreatedAt:      u.CreatedAt,
	}
}

func (m *UsageMapper) ToModel(u *entity.UsageLogEntry) *model.UsageLogEntry {
	if u == nil {
		return nil
	}
	var meta datatypes.JSON
	if u.Metadata != nil {
		raw, _ := json.Marshal(u.Metadata)
		meta = datatypes.JSON(raw)
	}
	return &model.UsageLogEntry{
		Id:             u.Id,
		SubscriptionId: u.SubscriptionId,
		UserId:         u.UserId,
		Feature:        string(u.Feature),
		ResourceId:     u.ResourceId,
		Action:         u.Action,
		Count:          u.Count,
		WasGated:       u.WasGated,
		GateType:       string(u.GateType),
		OverrideReason: u.OverrideReason,
		IPAddress:      u.IPAddress,
		UserAgent:      u.UserAgent,
		Metadata:       meta,
		CreatedAt:      u.CreatedAt,
	}
}
