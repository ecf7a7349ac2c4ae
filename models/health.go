// ABOUTME: Contact health scoring from last interaction and desired cadence
// ABOUTME: Pure functions; callers always pass the current time in
package models

import (
	"math"
	"time"
)

// HealthState classifies how stale a relationship is relative to its cadence.
type HealthState string

const (
	HealthNoRule  HealthState = "no_rule"
	HealthHealthy HealthState = "healthy"
	HealthDueSoon HealthState = "due_soon"
	HealthOverdue HealthState = "overdue"
)

const secondsPerDay int64 = 24 * 60 * 60

// MaxFrequencyDays is the longest accepted contact cadence (100 years).
const MaxFrequencyDays = 36500

// MaxTimestamp is the latest accepted interaction date, 9999-12-31T23:59:59Z.
const MaxTimestamp int64 = 253402300799

// The due-soon band starts at dueSoonNum/dueSoonDen of the cadence.
const (
	dueSoonNum int64 = 4
	dueSoonDen int64 = 5
)

// ComputeHealth returns the health state of a contact.
//
// A nil frequencyDays means there is no cadence rule. A nil lastInteraction means the
// person was never contacted, which is always overdue when a rule exists. Boundaries are
// inclusive on the healthier side: elapsed == 0.8f is healthy, elapsed == f is due soon.
func ComputeHealth(lastInteraction *int64, frequencyDays *int, now time.Time) HealthState {
	if frequencyDays == nil {
		return HealthNoRule
	}
	if lastInteraction == nil {
		return HealthOverdue
	}

	elapsed := elapsedSince(*lastInteraction, now)
	cadence := cadenceSeconds(*frequencyDays)

	// elapsed <= 0.8 * cadence, kept in integers so the boundary is exact
	if elapsed*dueSoonDen <= cadence*dueSoonNum {
		return HealthHealthy
	}
	if elapsed <= cadence {
		return HealthDueSoon
	}
	return HealthOverdue
}

// OverdueSeconds returns how far past the cadence a contact is (negative when not yet due).
// Never-contacted people with a rule rank above everyone else.
func OverdueSeconds(lastInteraction *int64, frequencyDays *int, now time.Time) int64 {
	if frequencyDays == nil {
		return math.MinInt64
	}
	if lastInteraction == nil {
		return math.MaxInt64
	}
	return elapsedSince(*lastInteraction, now) - cadenceSeconds(*frequencyDays)
}

// cadenceSeconds clamps the cadence to [0, MaxFrequencyDays] so the band math cannot overflow.
func cadenceSeconds(frequencyDays int) int64 {
	days := int64(frequencyDays)
	if days < 0 {
		days = 0
	}
	if days > MaxFrequencyDays {
		days = MaxFrequencyDays
	}
	return days * secondsPerDay
}

func elapsedSince(lastInteraction int64, now time.Time) int64 {
	if lastInteraction > MaxTimestamp {
		lastInteraction = MaxTimestamp
	}
	if lastInteraction < -MaxTimestamp {
		lastInteraction = -MaxTimestamp
	}
	return now.Unix() - lastInteraction
}

// DaysSince returns whole days since the last interaction, or -1 if never contacted.
func DaysSince(lastInteraction *int64, now time.Time) int {
	if lastInteraction == nil {
		return -1
	}
	return int(elapsedSince(*lastInteraction, now) / secondsPerDay)
}

// ApplyHealth fills the derived health field of a person.
func (p *Person) ApplyHealth(now time.Time) {
	p.Health = ComputeHealth(p.LastInteraction, p.FrequencyDays, now)
}
