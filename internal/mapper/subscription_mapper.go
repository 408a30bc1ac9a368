package mapper

import (
	"encoding/json"

	"rentora-be/internal/entity"
	"rentora-be/internal/model"

	"gorm.io/datatypes"
)

type SubscriptionMapper struct{}

func NewSubscriptionMapper() *SubscriptionMapper {
	return &SubscriptionMapper{}
}

func (m *SubscriptionMapper) PlanToEntity(p *model.SubscriptionPlan) *entity.SubscriptionPlan {
	if p == nil {
		return nil
	}
	return &entity.SubscriptionPlan{
		Id:                      p.Id,
		Name:                    p.Name,
		Slug:                    p.Slug,
		Description:             p.Description,
		Tagline:                 p.Tagline,
		Price:                   p.Price,
		Currency:                p.Currency,
		BillingCycle:            entity.BillingCycle(p.BillingCycle),
		TrialDays:               p.TrialDays,
		MaxProperties:           p.MaxProperties,
		MaxVisitsPerMonth:       p.MaxVisitsPerMonth,
		MaxBoostsPerMonth:       p.MaxBoostsPerMonth,
		MaxMediaPerProperty:     p.MaxMediaPerProperty,
		MaxAmenitiesPerProperty: p.MaxAmenitiesPerProperty,
		BoostEnabled:            p.BoostEnabled,
		PremiumSupport:          p.PremiumSupport,
		AdvancedAnalytics:       p.AdvancedAnalytics,
		BulkOperations:          p.BulkOperations,
		IsMostPopular:           p.IsMostPopular,
		IsVisible:               p.IsVisible,
		IsActive:                p.IsActive,
		SortOrder:               p.SortOrder,
		CreatedAt:               p.CreatedAt,
		UpdatedAt:               p.UpdatedAt,
	}
}

func (m *SubscriptionMapper) PlanToModel(p *entity.SubscriptionPlan) *model.SubscriptionPlan {
	if p == nil {
		return nil
	}
	return &model.SubscriptionPlan{
		Id:                      p.Id,
		Name:                    p.Name,
		Slug:                    p.Slug,
		Description:             p.Description,
		Tagline:                 p.Tagline,
		Price:                   p.Price,
		Currency:                p.Currency,
		BillingCycle:            string(p.BillingCycle),
		TrialDays:               p.TrialDays,
		MaxProperties:           p.MaxProperties,
		MaxVisitsPerMonth:       p.MaxVisitsPerMonth,
		MaxBoostsPerMonth:       p.MaxBoostsPerMonth,
		MaxMediaPerProperty:     p.MaxMediaPerProperty,
		MaxAmenitiesPerProperty: p.MaxAmenitiesPerProperty,
		BoostEnabled:            p.BoostEnabled,
		PremiumSupport:          p.PremiumSupport,
		AdvancedAnalytics:       p.AdvancedAnalytics,
		BulkOperations:          p.BulkOperations,
		IsMostPopular:           p.IsMostPopular,
		IsVisible:               p.IsVisible,
		IsActive:                p.IsActive,
		SortOrder:               p.SortOrder,
		CreatedAt:               p.CreatedAt,
		UpdatedAt:               p.UpdatedAt,
	}
}

func (m *SubscriptionMapper) SubscriptionToEntity(s *model.Subscription) *entity.Subscription {
	if s == nil {
		return nil
	}
	return &entity.Subscription{
		Id:                 s.Id,
		UserId:             s.UserId,
		PlanId:             s.PlanId,
		Price:              s.Price,
		Currency:           s.Currency,
		BillingCycle:       entity.BillingCycle(s.BillingCycle),
		Status:             entity.SubscriptionStatus(s.Status),
		StartDate:          s.StartDate,
		EndDate:            s.EndDate,
		TrialEndDate:       s.TrialEndDate,
		AutoRenew:          s.AutoRenew,
		CancelAtPeriodEnd:  s.CancelAtPeriodEnd,
		CancelledDate:      s.CancelledDate,
		PropertiesUsed:     s.PropertiesUsed,
		VisitsUsed:         s.VisitsUsed,
		BoostsUsed:         s.BoostsUsed,
		MediaUsed:          s.MediaUsed,
		AmenitiesUsed:      s.AmenitiesUsed,
		LastReset:          s.LastReset,
		NextReset:          s.NextReset,
		RenewalAttempts:    s.RenewalAttempts,
		LastRenewalAttempt: s.LastRenewalAttempt,
		LastNotifiedAt:     s.LastNotifiedAt,
		LastPaymentId:      s.LastPaymentId,
		CreatedAt:          s.CreatedAt,
		UpdatedAt:          s.UpdatedAt,
	}
}

func (m *SubscriptionMapper) SubscriptionToModel(s *entity.Subscription) *model.Subscription {
	if s == nil {
		return nil
	}
	return &model.Subscription{
		Id:                 s.Id,
		UserId:             s.UserId,
		PlanId:             s.PlanId,
		Price:              s.Price,
		Currency:           s.Currency,
		BillingCycle:       string(s.BillingCycle),
		Status:             string(s.Status),
		StartDate:          s.StartDate,
		EndDate:            s.EndDate,
		TrialEndDate:       s.TrialEndDate,
		AutoRenew:          s.AutoRenew,
		CancelAtPeriodEnd:  s.CancelAtPeriodEnd,
		CancelledDate:      s.CancelledDate,
		PropertiesUsed:     s.PropertiesUsed,
		VisitsUsed:         s.VisitsUsed,
		BoostsUsed:         s.BoostsUsed,
		MediaUsed:          s.MediaUsed,
		AmenitiesUsed:      s.AmenitiesUsed,
		LastReset:          s.LastReset,
		NextReset:          s.NextReset,
		RenewalAttempts:    s.RenewalAttempts,
		LastRenewalAttempt: s.LastRenewalAttempt,
		LastNotifiedAt:     s.LastNotifiedAt,
		LastPaymentId:      s.LastPaymentId,
		CreatedAt:          s.CreatedAt,
		UpdatedAt:          s.UpdatedAt,
	}
}

func (m *SubscriptionMapper) EventToEntity(e *model.SubscriptionEvent) *entity.SubscriptionEvent {
	if e == nil {
		return nil
	}
	var payload map[string]interface{}
	if len(e.Payload) > 0 {
		_ = json.Unmarshal(e.Payload, &payload)
	}
	return &entity.SubscriptionEvent{
		Id:             e.Id,
		SubscriptionId: e.SubscriptionId,
		UserId:         e.UserId,
		EventType:      entity.SubscriptionEventType(e.EventType),
		Payload:        payload,
		CreatedAt:      e.CreatedAt,
	}
}

func (m *SubscriptionMapper) EventToModel(e *entity.SubscriptionEvent) *model.SubscriptionEvent {
	if e == nil {
		return nil
	}
	var payload datatypes.JSON
	if e.Payload != nil {
		raw, _ := json.Marshal(e.Payload)
		payload = datatypes.JSON(raw)
	}
	return &model.SubscriptionEvent{
		Id:             e.Id,
		SubscriptionId: e.SubscriptionId,
		UserId:         e.UserId,
		EventType:      string(e.EventType),
		Payload:        payload,
		CreatedAt:      e.CreatedAt,
	}
}
