package service

import (
	"context"
	"time"

	"rentora-be/internal/entity"
	"rentora-be/internal/repository/contract"
	"rentora-be/internal/repository/specification"
	"rentora-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

// In-memory stubs for the repository layer. Specifications carry GORM
// clauses, so stubs return configured values instead of interpreting them;
// each test arranges exactly the rows its code path will see.

type nopLogger struct{}

func (nopLogger) Debug(module, message string, details map[string]interface{}) {}
func (nopLogger) Info(module, message string, details map[string]interface{})  {}
func (nopLogger) Warn(module, message string, details map[string]interface{})  {}
func (nopLogger) Error(module, message string, details map[string]interface{}) {}
func (nopLogger) Sync() error                                                  { return nil }

type incrementCall struct {
	subscriptionId uuid.UUID
	feature        entity.Feature
	delta          int
	limit          int
}

type resetCall struct {
	subscriptionId uuid.UUID
	lastReset      time.Time
	nextReset      time.Time
}

type subscriptionRepoStub struct {
	plan          *entity.SubscriptionPlan
	planBySlug    *entity.SubscriptionPlan
	subscription  *entity.Subscription
	subscriptions []*entity.Subscription

	createdSubscriptions []*entity.Subscription
	updatedSubscriptions []*entity.Subscription
	createdPlans         []*entity.SubscriptionPlan
	updatedPlans         []*entity.SubscriptionPlan
	events               []*entity.SubscriptionEvent
	increments           []incrementCall
	tryIncrements        []incrementCall
	tryIncrementOK       bool
	resets               []resetCall
	touched              []uuid.UUID

	revenue       float64
	statusCounts  map[entity.SubscriptionStatus]int
	findOneErr    error
	updateErr     error
	tryIncrementErr error
}

func newSubscriptionRepoStub() *subscriptionRepoStub {
	return &subscriptionRepoStub{tryIncrementOK: true}
}

func (s *subscriptionRepoStub) CreatePlan(ctx context.Context, plan *entity.SubscriptionPlan) error {
	s.createdPlans = append(s.createdPlans, plan)
	return nil
}

func (s *subscriptionRepoStub) UpdatePlan(ctx context.Context, plan *entity.SubscriptionPlan) error {
	s.updatedPlans = append(s.updatedPlans, plan)
	return nil
}

func (s *subscriptionRepoStub) FindOnePlan(ctx context.Context, specs ...specification.Specification) (*entity.SubscriptionPlan, error) {
	return s.plan, nil
}

func (s *subscriptionRepoStub) FindAllPlans(ctx context.Context, specs ...specification.Specification) ([]*entity.SubscriptionPlan, error) {
	if s.plan == nil {
		return nil, nil
	}
	return []*entity.SubscriptionPlan{s.plan}, nil
}

func (s *subscriptionRepoStub) FindPlanBySlug(ctx context.Context, slug string) (*entity.SubscriptionPlan, error) {
	return s.planBySlug, nil
}

func (s *subscriptionRepoStub) CreateSubscription(ctx context.Context, subscription *entity.Subscription) error {
	s.createdSubscriptions = append(s.createdSubscriptions, subscription)
	return nil
}

func (s *subscriptionRepoStub) UpdateSubscription(ctx context.Context, subscription *entity.Subscription) error {
	if s.updateErr != nil {
		return s.updateErr
	}
	s.updatedSubscriptions = append(s.updatedSubscriptions, subscription)
	return nil
}

func (s *subscriptionRepoStub) FindOneSubscription(ctx context.Context, specs ...specification.Specification) (*entity.Subscription, error) {
	if s.findOneErr != nil {
		return nil, s.findOneErr
	}
	if s.subscription == nil {
		return nil, nil
	}
	// The one clause worth honoring: current-subscription lookups must not
	// return lapsed or terminal rows.
	for _, sp := range specs {
		if cur, ok := sp.(specification.CurrentSubscription); ok {
			if !s.subscription.IsCurrent(cur.Now) {
				return nil, nil
			}
		}
	}
	return s.subscription, nil
}

func (s *subscriptionRepoStub) FindAllSubscriptions(ctx context.Context, specs ...specification.Specification) ([]*entity.Subscription, error) {
	// Sweeps issue several queries over the same seeded rows, so status and
	// trial-window clauses are honored to keep them apart.
	out := make([]*entity.Subscription, 0, len(s.subscriptions))
	for _, sub := range s.subscriptions {
		match := true
		for _, sp := range specs {
			switch c := sp.(type) {
			case specification.StatusIn:
				found := false
				for _, status := range c.Statuses {
					if string(sub.Status) == status {
						found = true
					}
				}
				if !found {
					match = false
				}
			case specification.TrialEndBefore:
				if sub.TrialEndDate == nil || !sub.TrialEndDate.Before(c.T) {
					match = false
				}
			}
		}
		if match {
			out = append(out, sub)
		}
	}
	return out, nil
}

func (s *subscriptionRepoStub) CountSubscriptions(ctx context.Context, specs ...specification.Specification) (int64, error) {
	return int64(len(s.subscriptions)), nil
}

func (s *subscriptionRepoStub) IncrementUsage(ctx context.Context, subscriptionId uuid.UUID, feature entity.Feature, delta int) error {
	s.increments = append(s.increments, incrementCall{subscriptionId: subscriptionId, feature: feature, delta: delta})
	return nil
}

func (s *subscriptionRepoStub) TryIncrementIfBelowLimit(ctx context.Context, subscriptionId uuid.UUID, feature entity.Feature, delta, limit int) (bool, error) {
	if s.tryIncrementErr != nil {
		return false, s.tryIncrementErr
	}
	s.tryIncrements = append(s.tryIncrements, incrementCall{subscriptionId: subscriptionId, feature: feature, delta: delta, limit: limit})
	return s.tryIncrementOK, nil
}

func (s *subscriptionRepoStub) ResetUsageCounters(ctx context.Context, subscriptionId uuid.UUID, lastReset, nextReset time.Time) error {
	s.resets = append(s.resets, resetCall{subscriptionId: subscriptionId, lastReset: lastReset, nextReset: nextReset})
	return nil
}

func (s *subscriptionRepoStub) TouchLastNotified(ctx context.Context, subscriptionId uuid.UUID) error {
	s.touched = append(s.touched, subscriptionId)
	return nil
}

func (s *subscriptionRepoStub) AppendEvent(ctx context.Context, event *entity.SubscriptionEvent) error {
	s.events = append(s.events, event)
	return nil
}

func (s *subscriptionRepoStub) FindEvents(ctx context.Context, specs ...specification.Specification) ([]*entity.SubscriptionEvent, error) {
	return s.events, nil
}

func (s *subscriptionRepoStub) SumActiveRevenue(ctx context.Context) (float64, error) {
	return s.revenue, nil
}

func (s *subscriptionRepoStub) CountByStatus(ctx context.Context, status entity.SubscriptionStatus) (int, error) {
	return s.statusCounts[status], nil
}

type userRepoStub struct {
	user *entity.User
}

func (s *userRepoStub) Create(ctx context.Context, user *entity.User) error { return nil }
func (s *userRepoStub) Update(ctx context.Context, user *entity.User) error { return nil }
func (s *userRepoStub) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.User, error) {
	return s.user, nil
}
func (s *userRepoStub) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.User, error) {
	if s.user == nil {
		return nil, nil
	}
	return []*entity.User{s.user}, nil
}
func (s *userRepoStub) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	return 0, nil
}
func (s *userRepoStub) UpdateStatus(ctx context.Context, id uuid.UUID, status entity.UserStatus) error {
	return nil
}

type usageLogRepoStub struct {
	appended []*entity.UsageLogEntry
	count    int64
	sum      int64
	stats    []*entity.UsageStat
	purged   int64
}

func (s *usageLogRepoStub) Append(ctx context.Context, entry *entity.UsageLogEntry) error {
	s.appended = append(s.appended, entry)
	return nil
}
func (s *usageLogRepoStub) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.UsageLogEntry, error) {
	return s.appended, nil
}
func (s *usageLogRepoStub) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	return s.count, nil
}
func (s *usageLogRepoStub) SumCount(ctx context.Context, specs ...specification.Specification) (int64, error) {
	return s.sum, nil
}
func (s *usageLogRepoStub) AggregateByFeatureAndDay(ctx context.Context, from, to time.Time) ([]*entity.UsageStat, error) {
	return s.stats, nil
}
func (s *usageLogRepoStub) PurgeOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	return s.purged, nil
}

type propertyRepoStub struct {
	count int64
}

func (s *propertyRepoStub) Create(ctx context.Context, property *entity.Property) error { return nil }
func (s *propertyRepoStub) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Property, error) {
	return nil, nil
}
func (s *propertyRepoStub) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	return s.count, nil
}

type visitRepoStub struct {
	count int64
}

func (s *visitRepoStub) Create(ctx context.Context, visit *entity.Visit) error { return nil }
func (s *visitRepoStub) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Visit, error) {
	return nil, nil
}
func (s *visitRepoStub) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	return s.count, nil
}

type uowStub struct {
	users      *userRepoStub
	subs       *subscriptionRepoStub
	usageLogs  *usageLogRepoStub
	properties *propertyRepoStub
	visits     *visitRepoStub

	begun      int
	committed  int
	rolledBack int
}

func newUowStub() *uowStub {
	return &uowStub{
		users:      &userRepoStub{},
		subs:       newSubscriptionRepoStub(),
		usageLogs:  &usageLogRepoStub{},
		properties: &propertyRepoStub{},
		visits:     &visitRepoStub{},
	}
}

func (u *uowStub) Begin(ctx context.Context) error { u.begun++; return nil }
func (u *uowStub) Commit() error                   { u.committed++; return nil }
func (u *uowStub) Rollback() error                 { u.rolledBack++; return nil }

func (u *uowStub) UserRepository() contract.UserRepository                 { return u.users }
func (u *uowStub) SubscriptionRepository() contract.SubscriptionRepository { return u.subs }
func (u *uowStub) UsageLogRepository() contract.UsageLogRepository         { return u.usageLogs }
func (u *uowStub) PropertyRepository() contract.PropertyRepository         { return u.properties }
func (u *uowStub) VisitRepository() contract.VisitRepository               { return u.visits }

type uowFactoryStub struct {
	uow *uowStub
}

func (f *uowFactoryStub) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork { return f.uow }

type notifierStub struct {
	notices []notifierCall
	err     error
}

type notifierCall struct {
	userId    uuid.UUID
	eventType string
	payload   map[string]interface{}
}

func (n *notifierStub) Notify(ctx context.Context, userId uuid.UUID, eventType string, payload map[string]interface{}) error {
	if n.err != nil {
		return n.err
	}
	n.notices = append(n.notices, notifierCall{userId: userId, eventType: eventType, payload: payload})
	return nil
}

type paymentStub struct {
	paymentId string
	err       error
	charges   []uuid.UUID
}

func (p *paymentStub) Charge(ctx context.Context, subscriptionId uuid.UUID, amount float64, currency string, paymentMethodRef string) (string, error) {
	p.charges = append(p.charges, subscriptionId)
	if p.err != nil {
		return "", p.err
	}
	return p.paymentId, nil
}
