package specification

import (
	"time"

	"gorm.io/gorm"
)

// CurrentSubscription matches rows that grant access right now: trial or
// active status with the period end still in the future.
type CurrentSubscription struct {
	Now time.Time
}

func (s CurrentSubscription) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("status IN ? AND end_date > ?", []string{"trial", "active"}, s.Now)
}

type StatusIn struct {
	Statuses []string
}

func (s StatusIn) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("status IN ?", s.Statuses)
}

type EndDateBetween struct {
	From time.Time
	To   time.Time
}

func (s EndDateBetween) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("end_date BETWEEN ? AND ?", s.From, s.To)
}

type EndDateBefore struct {
	T time.Time
}

func (s EndDateBefore) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("end_date < ?", s.T)
}

type TrialEndBetween struct {
	From time.Time
	To   time.Time
}

func (s TrialEndBetween) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("trial_end_date IS NOT NULL AND trial_end_date BETWEEN ? AND ?", s.From, s.To)
}

type TrialEndBefore struct {
	T time.Time
}

func (s TrialEndBefore) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("trial_end_date IS NOT NULL AND trial_end_date < ?", s.T)
}

// ResetDue matches subscriptions whose monthly counter window has lapsed.
// The reset sweep relies on this guard for idempotence.
type ResetDue struct {
	Now time.Time
}

func (s ResetDue) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("next_reset <= ?", s.Now)
}

// NotNotifiedSince guards reminder sweeps against duplicate notifications
// within the same lookahead window.
type NotNotifiedSince struct {
	Since time.Time
}

func (s NotNotifiedSince) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("last_notified_at IS NULL OR last_notified_at < ?", s.Since)
}

type CreatedBefore struct {
	T time.Time
}

func (s CreatedBefore) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("created_at < ?", s.T)
}

type CreatedBetween struct {
	From time.Time
	To   time.Time
}

func (s CreatedBetween) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("created_at >= ? AND created_at < ?", s.From, s.To)
}

type ScheduledBetween struct {
	From time.Time
	To   time.Time
}

func (s ScheduledBetween) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("scheduled_at >= ? AND scheduled_at < ?", s.From, s.To)
}

type BoostedBetween struct {
	From time.Time
	To   time.Time
}

func (s BoostedBetween) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("is_boosted = ? AND boosted_at >= ? AND boosted_at < ?", true, s.From, s.To)
}

type ByFeature struct {
	Feature string
}

func (s ByFeature) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("feature = ?", s.Feature)
}

// Ungated excludes denied attempts, which are logged but delivered nothing.
type Ungated struct{}

func (s Ungated) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("was_gated = ?", false)
}
