// FILE: internal/pkg/billingcycle/billingcycle.go
// Pure date arithmetic for billing periods. Calendar cycles use
// time.Time.AddDate, which normalizes month overflow (Jan 31 + 1 month
// lands on Mar 2/3, not the last day of Feb) — pinned by tests.
package billingcycle

import (
	"fmt"
	"time"

	"rentora-be/internal/entity"
)

// ComputeEndDate returns the period end for a subscription starting at start.
// Unknown cycle types are a programming error and panic.
func ComputeEndDate(start time.Time, cycle entity.BillingCycle) time.Time {
	switch cycle {
	case entity.BillingCycleDaily:
		return start.AddDate(0, 0, 1)
	case entity.BillingCycleWeekly:
		return start.AddDate(0, 0, 7)
	case entity.BillingCycleMonthly:
		return start.AddDate(0, 1, 0)
	case entity.BillingCycleQuarterly:
		return start.AddDate(0, 3, 0)
	case entity.BillingCycleAnnually:
		return start.AddDate(1, 0, 0)
	default:
		panic(fmt.Sprintf("billingcycle: unknown cycle type %q", cycle))
	}
}

// ComputeTrialEnd returns the trial end for a trial of the given length,
// or nil when the plan carries no trial.
func ComputeTrialEnd(start time.Time, trialDays int) *time.Time {
	if trialDays <= 0 {
		return nil
	}
	end := start.AddDate(0, 0, trialDays)
	return &end
}

// NextResetTime advances the usage-counter reset anchor by one month.
func NextResetTime(from time.Time) time.Time {
	return from.AddDate(0, 1, 0)
}

// MonthWindow returns the start and end of the calendar month containing t,
// used when recomputing monthly usage from resource rows.
func MonthWindow(t time.Time) (time.Time, time.Time) {
	start := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
	return start, start.AddDate(0, 1, 0)
}
