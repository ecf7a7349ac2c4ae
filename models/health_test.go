// ABOUTME: Tests for contact health scoring
// ABOUTME: Covers the cadence bands, exact tie-breaks and the never-contacted case
package models

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func intPtr(v int) *int { return &v }

func epoch(t time.Time) *int64 {
	v := t.Unix()
	return &v
}

func TestComputeHealthNoRule(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	assert.Equal(t, HealthNoRule, ComputeHealth(nil, nil, now))
	assert.Equal(t, HealthNoRule, ComputeHealth(epoch(now), nil, now))
	assert.Equal(t, HealthNoRule, ComputeHealth(epoch(now.AddDate(-3, 0, 0)), nil, now))
}

func TestComputeHealthBands(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	day := 24 * time.Hour

	tests := []struct {
		name      string
		frequency int
		elapsed   time.Duration
		want      HealthState
	}{
		{"just contacted", 30, 0, HealthHealthy},
		{"well inside cadence", 30, 10 * day, HealthHealthy},
		{"exactly 0.8f is healthy", 10, 8 * day, HealthHealthy},
		{"one second past 0.8f", 10, 8*day + time.Second, HealthDueSoon},
		{"0.9f", 10, 9 * day, HealthDueSoon},
		{"exactly f is due soon", 10, 10 * day, HealthDueSoon},
		{"one second past f", 10, 10*day + time.Second, HealthOverdue},
		{"1.1f", 10, 11 * day, HealthOverdue},
		{"zero cadence, no time elapsed", 0, 0, HealthHealthy},
		{"zero cadence, any time elapsed", 0, time.Second, HealthOverdue},
		{"interaction in the future", 30, -2 * day, HealthHealthy},
		{"huge cadence, just contacted", 1e14, 0, HealthHealthy},
		{"larger cadence, just contacted", 2e14, 0, HealthHealthy},
		{"cadence capped at the maximum", 1e14, time.Duration(MaxFrequencyDays) * day, HealthDueSoon},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			last := epoch(now.Add(-tt.elapsed))
			assert.Equal(t, tt.want, ComputeHealth(last, intPtr(tt.frequency), now))
		})
	}
}

func TestComputeHealthNeverContacted(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	for _, f := range []int{0, 1, 30, 365} {
		assert.Equal(t, HealthOverdue, ComputeHealth(nil, intPtr(f), now), "frequency %d", f)
	}
}

func TestOverdueSeconds(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	assert.Equal(t, int64(math.MaxInt64), OverdueSeconds(nil, intPtr(7), now))
	assert.Equal(t, int64(math.MinInt64), OverdueSeconds(nil, nil, now))
	assert.Equal(t, int64(3*86400), OverdueSeconds(epoch(now.AddDate(0, 0, -10)), intPtr(7), now))
	assert.Equal(t, int64(-2*86400), OverdueSeconds(epoch(now.AddDate(0, 0, -5)), intPtr(7), now))
}

func TestHealthClampsExtremeTimestamps(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	future := int64(math.MaxInt64)
	past := int64(math.MinInt64)

	assert.Equal(t, HealthHealthy, ComputeHealth(&future, intPtr(30), now))
	assert.Equal(t, HealthOverdue, ComputeHealth(&past, intPtr(30), now))
	assert.Equal(t, HealthOverdue, ComputeHealth(&past, intPtr(math.MaxInt), now))
	assert.Less(t, OverdueSeconds(&future, intPtr(math.MaxInt), now), int64(0))
	assert.Greater(t, OverdueSeconds(&past, intPtr(30), now), int64(0))
}

func TestDaysSince(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	assert.Equal(t, -1, DaysSince(nil, now))
	assert.Equal(t, 0, DaysSince(epoch(now.Add(-23*time.Hour)), now))
	assert.Equal(t, 12, DaysSince(epoch(now.AddDate(0, 0, -12)), now))
}

func TestPersonApplyHealth(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	p := &Person{Name: "Ada", FrequencyDays: intPtr(30)}
	p.ApplyHealth(now)
	assert.Equal(t, HealthOverdue, p.Health)

	p.LastInteraction = epoch(now)
	p.ApplyHealth(now)
	assert.Equal(t, HealthHealthy, p.Health)
}
