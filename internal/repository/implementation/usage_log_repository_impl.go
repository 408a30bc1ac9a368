package implementation

import (
	"context"
	"time"

	"rentora-be/internal/entity"
	"rentora-be/internal/mapper"
	"rentora-be/internal/model"
	"rentora-be/internal/repository/contract"
	"rentora-be/internal/repository/specification"

	"gorm.io/gorm"
)

type UsageLogRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.UsageMapper
}

func NewUsageLogRepository(db *gorm.DB) contract.UsageLogRepository {
	return &UsageLogRepositoryImpl{
		db:     db,
		mapper: mapper.NewUsageMapper(),
	}
}

func (r *UsageLogRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *UsageLogRepositoryImpl) Append(ctx context.Context, entry *entity.UsageLogEntry) error {
	m := r.mapper.ToModel(entry)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*entry = *r.mapper.ToEntity(m)
	return nil
}

func (r *UsageLogRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.UsageLogEntry, error) {
	var models []*model.UsageLogEntry
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Order("created_at DESC").Find(&models).Error; err != nil {
		return nil, err
	}
	entries := make([]*entity.UsageLogEntry, len(models))
	for i, m := range models {
		entries[i] = r.mapper.ToEntity(m)
	}
	return entries, nil
}

func (r *UsageLogRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.UsageLogEntry{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *UsageLogRepositoryImpl) SumCount(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var total int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.UsageLogEntry{}), specs...)
	if err := query.Select("COALESCE(SUM(count), 0)").Scan(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}

func (r *UsageLogRepositoryImpl) AggregateByFeatureAndDay(ctx context.Context, from, to time.Time) ([]*entity.UsageStat, error) {
	type row struct {
		Feature string
		Day     time.Time
		Total   int
	}
	var rows []row
	err := r.db.WithContext(ctx).
		Model(&model.UsageLogEntry{}).
		Select("feature, date_trunc('day', created_at) AS day, SUM(count) AS total").
		Where("created_at >= ? AND created_at < ? AND was_gated = ?", from, to, false).
		Group("feature, date_trunc('day', created_at)").
		Order("day ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	stats := make([]*entity.UsageStat, len(rows))
	for i, rw := range rows {
		stats[i] = &entity.UsageStat{
			Feature: entity.Feature(rw.Feature),
			Day:     rw.Day,
			Total:   rw.Total,
		}
	}
	return stats, nil
}

func (r *UsageLogRepositoryImpl) PurgeOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("created_at < ?", cutoff).
		Delete(&model.UsageLogEntry{})
	return res.RowsAffected, res.Error
}
