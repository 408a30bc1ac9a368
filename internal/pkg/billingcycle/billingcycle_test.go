package billingcycle

import (
	"testing"
	"time"

	"rentora-be/internal/entity"

	"github.com/stretchr/testify/assert"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestComputeEndDate(t *testing.T) {
	start := date(2025, time.March, 15)

	assert.Equal(t, date(2025, time.March, 16), ComputeEndDate(start, entity.BillingCycleDaily))
	assert.Equal(t, date(2025, time.March, 22), ComputeEndDate(start, entity.BillingCycleWeekly))
	assert.Equal(t, date(2025, time.April, 15), ComputeEndDate(start, entity.BillingCycleMonthly))
	assert.Equal(t, date(2025, time.June, 15), ComputeEndDate(start, entity.BillingCycleQuarterly))
	assert.Equal(t, date(2026, time.March, 15), ComputeEndDate(start, entity.BillingCycleAnnually))
}

// AddDate normalizes overflow rather than clamping to the last day of the
// month. This test pins that convention.
func TestComputeEndDateMonthOverflow(t *testing.T) {
	// Jan 31 + 1 month = Feb 31 = Mar 3 (non-leap year)
	assert.Equal(t, date(2025, time.March, 3), ComputeEndDate(date(2025, time.January, 31), entity.BillingCycleMonthly))
	// Jan 31 + 1 month = Mar 2 in a leap year
	assert.Equal(t, date(2024, time.March, 2), ComputeEndDate(date(2024, time.January, 31), entity.BillingCycleMonthly))
	// Quarterly from Nov 30 crosses the year boundary cleanly
	assert.Equal(t, date(2026, time.March, 2), ComputeEndDate(date(2025, time.November, 30), entity.BillingCycleQuarterly))
}

func TestComputeEndDateUnknownCyclePanics(t *testing.T) {
	assert.Panics(t, func() {
		ComputeEndDate(time.Now(), entity.BillingCycle("biweekly"))
	})
}

func TestComputeTrialEnd(t *testing.T) {
	start := date(2025, time.June, 1)

	end := ComputeTrialEnd(start, 14)
	assert.NotNil(t, end)
	assert.Equal(t, date(2025, time.June, 15), *end)

	assert.Nil(t, ComputeTrialEnd(start, 0))
	assert.Nil(t, ComputeTrialEnd(start, -1))
}

func TestNextResetTime(t *testing.T) {
	assert.Equal(t, date(2025, time.August, 1), NextResetTime(date(2025, time.July, 1)))
}

func TestMonthWindow(t *testing.T) {
	start, end := MonthWindow(date(2025, time.February, 17))
	assert.Equal(t, date(2025, time.February, 1), start)
	assert.Equal(t, date(2025, time.March, 1), end)
}
