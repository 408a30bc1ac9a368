package implementation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"rentora-be/internal/entity"
	"rentora-be/internal/mapper"
	"rentora-be/internal/model"
	"rentora-be/internal/repository/contract"
	"rentora-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// usageColumns maps each gated feature to its counter column.
var usageColumns = map[entity.Feature]string{
	entity.FeaturePropertyCreate: "properties_used",
	entity.FeatureVisitSchedule:  "visits_used",
	entity.FeatureBoost:          "boosts_used",
	entity.FeatureMediaUpload:    "media_used",
	entity.FeatureAmenityAdd:     "amenities_used",
}

type SubscriptionRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.SubscriptionMapper
}

func NewSubscriptionRepository(db *gorm.DB) contract.SubscriptionRepository {
	return &SubscriptionRepositoryImpl{
		db:     db,
		mapper: mapper.NewSubscriptionMapper(),
	}
}

func (r *SubscriptionRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

// Plan Implementation

func (r *SubscriptionRepositoryImpl) CreatePlan(ctx context.Context, plan *entity.SubscriptionPlan) error {
	m := r.mapper.PlanToModel(plan)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*plan = *r.mapper.PlanToEntity(m)
	return nil
}

func (r *SubscriptionRepositoryImpl) UpdatePlan(ctx context.Context, plan *entity.SubscriptionPlan) error {
	m := r.mapper.PlanToModel(plan)
	if err := r.db.WithContext(ctx).Save(m).Error; err != nil {
		return err
	}
	*plan = *r.mapper.PlanToEntity(m)
	return nil
}

func (r *SubscriptionRepositoryImpl) FindOnePlan(ctx context.Context, specs ...specification.Specification) (*entity.SubscriptionPlan, error) {
	var m model.SubscriptionPlan
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.PlanToEntity(&m), nil
}

func (r *SubscriptionRepositoryImpl) FindAllPlans(ctx context.Context, specs ...specification.Specification) ([]*entity.SubscriptionPlan, error) {
	var models []*model.SubscriptionPlan
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Order("sort_order ASC").Find(&models).Error; err != nil {
		return nil, err
	}
	entities := make([]*entity.SubscriptionPlan, len(models))
	for i, m := range models {
		entities[i] = r.mapper.PlanToEntity(m)
	}
	return entities, nil
}

func (r *SubscriptionRepositoryImpl) FindPlanBySlug(ctx context.Context, slug string) (*entity.SubscriptionPlan, error) {
	var m model.SubscriptionPlan
	if err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.PlanToEntity(&m), nil
}

// Subscription Implementation

func (r *SubscriptionRepositoryImpl) CreateSubscription(ctx context.Context, subscription *entity.Subscription) error {
	m := r.mapper.SubscriptionToModel(subscription)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*subscription = *r.mapper.SubscriptionToEntity(m)
	return nil
}

func (r *SubscriptionRepositoryImpl) UpdateSubscription(ctx context.Context, subscription *entity.Subscription) error {
	m := r.mapper.SubscriptionToModel(subscription)
	if err := r.db.WithContext(ctx).Save(m).Error; err != nil {
		return err
	}
	*subscription = *r.mapper.SubscriptionToEntity(m)
	return nil
}

func (r *SubscriptionRepositoryImpl) FindOneSubscription(ctx context.Context, specs ...specification.Specification) (*entity.Subscription, error) {
	var m model.Subscription
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.SubscriptionToEntity(&m), nil
}

func (r *SubscriptionRepositoryImpl) FindAllSubscriptions(ctx context.Context, specs ...specification.Specification) ([]*entity.Subscription, error) {
	var models []*model.Subscription
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	entities := make([]*entity.Subscription, len(models))
	for i, m := range models {
		entities[i] = r.mapper.SubscriptionToEntity(m)
	}
	return entities, nil
}

func (r *SubscriptionRepositoryImpl) CountSubscriptions(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.Subscription{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Counter mutations

func (r *SubscriptionRepositoryImpl) IncrementUsage(ctx context.Context, subscriptionId uuid.UUID, feature entity.Feature, delta int) error {
	column, ok := usageColumns[feature]
	if !ok {
		return fmt.Errorf("no usage counter for feature %q", feature)
	}
	return r.db.WithContext(ctx).
		Model(&model.Subscription{}).
		Where("id = ?", subscriptionId).
		UpdateColumn(column, gorm.Expr(column+" + ?", delta)).Error
}

// TryIncrementIfBelowLimit performs a conditional atomic increment: the
// counter only advances while the post-increment value stays within limit.
// Returns false when the guard lost (no row updated). A negative limit is
// unlimited and degrades to a plain increment.
func (r *SubscriptionRepositoryImpl) TryIncrementIfBelowLimit(ctx context.Context, subscriptionId uuid.UUID, feature entity.Feature, delta, limit int) (bool, error) {
	if limit < 0 {
		if err := r.IncrementUsage(ctx, subscriptionId, feature, delta); err != nil {
			return false, err
		}
		return true, nil
	}
	column, ok := usageColumns[feature]
	if !ok {
		return false, fmt.Errorf("no usage counter for feature %q", feature)
	}
	res := r.db.WithContext(ctx).
		Model(&model.Subscription{}).
		Where("id = ? AND "+column+" + ? <= ?", subscriptionId, delta, limit).
		UpdateColumn(column, gorm.Expr(column+" + ?", delta))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *SubscriptionRepositoryImpl) ResetUsageCounters(ctx context.Context, subscriptionId uuid.UUID, lastReset, nextReset time.Time) error {
	return r.db.WithContext(ctx).
		Model(&model.Subscription{}).
		Where("id = ?", subscriptionId).
		Updates(map[string]interface{}{
			"properties_used": 0,
			"visits_used":     0,
			"boosts_used":     0,
			"media_used":      0,
			"amenities_used":  0,
			"last_reset":      lastReset,
			"next_reset":      nextReset,
		}).Error
}

func (r *SubscriptionRepositoryImpl) TouchLastNotified(ctx context.Context, subscriptionId uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&model.Subscription{}).
		Where("id = ?", subscriptionId).
		UpdateColumn("last_notified_at", time.Now()).Error
}

// Events

func (r *SubscriptionRepositoryImpl) AppendEvent(ctx context.Context, event *entity.SubscriptionEvent) error {
	m := r.mapper.EventToModel(event)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*event = *r.mapper.EventToEntity(m)
	return nil
}

func (r *SubscriptionRepositoryImpl) FindEvents(ctx context.Context, specs ...specification.Specification) ([]*entity.SubscriptionEvent, error) {
	var models []*model.SubscriptionEvent
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Order("created_at DESC").Find(&models).Error; err != nil {
		return nil, err
	}
	entities := make([]*entity.SubscriptionEvent, len(models))
	for i, m := range models {
		entities[i] = r.mapper.EventToEntity(m)
	}
	return entities, nil
}

// Dashboard / Admin Stats

func (r *SubscriptionRepositoryImpl) SumActiveRevenue(ctx context.Context) (float64, error) {
	var total float64
	err := r.db.WithContext(ctx).
		Model(&model.Subscription{}).
		Where("status = ?", string(entity.SubscriptionStatusActive)).
		Select("COALESCE(SUM(price), 0)").
		Scan(&total).Error
	return total, err
}

func (r *SubscriptionRepositoryImpl) CountByStatus(ctx context.Context, status entity.SubscriptionStatus) (int, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.Subscription{}).
		Where("status = ?", string(status)).
		Count(&count).Error
	return int(count), err
}
