package mapper

import (
	"rentora-be/internal/entity"
	"rentora-be/internal/model"
)

type PropertyMapper struct{}

func NewPropertyMapper() *PropertyMapper {
	return &PropertyMapper{}
}

func (m *PropertyMapper) ToEntity(p *model.Property) *entity.Property {
	if p == nil {
		return nil
	}
	return &entity.Property{
		Id:        p.Id,
		UserId:    p.UserId,
		Title:     p.Title,
		Status:    p.Status,
		IsBoosted: p.IsBoosted,
		BoostedAt: p.BoostedAt,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

func (m *PropertyMapper) ToModel(p *entity.Property) *model.Property {
	if p == nil {
		return nil
	}
	return &model.Property{
		Id:        p.Id,
		UserId:    p.UserId,
		Title:     p.Title,
		Status:    p.Status,
		IsBoosted: p.IsBoosted,
		BoostedAt: p.BoostedAt,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

func (m *PropertyMapper) VisitToEntity(v *model.Visit) *entity.Visit {
	if v == nil {
		return nil
	}
	return &entity.Visit{
		Id:          v.Id,
		PropertyId:  v.PropertyId,
		UserId:      v.UserId,
		ScheduledAt: v.ScheduledAt,
		Status:      v.Status,
		CreatedAt:   v.CreatedAt,
	}
}

func (m *PropertyMapper) VisitToModel(v *entity.Visit) *model.Visit {
	if v == nil {
		return nil
	}
	return &model.Visit{
		Id:          v.Id,
		PropertyId:  v.PropertyId,
		UserId:      v.UserId,
		ScheduledAt: v.ScheduledAt,
		Status:      v.Status,
		CreatedAt:   v.CreatedAt,
	}
}
