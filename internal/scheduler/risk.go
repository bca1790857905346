package scheduler

import (
	"math"
	"time"

	"github.com/alexanderramin/polylearner/internal/domain"
)

type LoadRiskInput struct {
	Now           time.Time
	WeekStart     time.Time
	PlannedHours  float64
	MaxDailyHours float64
	// BufferPct inflates planned work to leave room for overruns.
	BufferPct float64
}

type LoadRiskResult struct {
	Level              domain.RiskLevel `json:"level"`
	WorkdaysLeft       int              `json:"workdays_left"`
	RemainingHours     float64          `json:"remaining_hours"`
	RequiredDailyHours float64          `json:"required_daily_hours"`
	SlackHoursPerDay   float64          `json:"slack_hours_per_day"`
}

// ComputeLoadRisk compares the hours planned for the week against the
// weekday capacity left between now and the end of the week.
func ComputeLoadRisk(input LoadRiskInput) LoadRiskResult {
	remaining := math.Max(0, input.PlannedHours*(1+input.BufferPct))
	days := WorkdaysLeft(input.Now, input.WeekStart)

	result := LoadRiskResult{
		WorkdaysLeft:   days,
		RemainingHours: roundTo(remaining, 2),
	}

	if remaining == 0 {
		result.Level = domain.RiskOnTrack
		result.SlackHoursPerDay = input.MaxDailyHours
		return result
	}

	// Week is over with work left.
	if days == 0 {
		result.Level = domain.RiskCritical
		result.RequiredDailyHours = roundTo(remaining, 2)
		result.SlackHoursPerDay = roundTo(-remaining, 2)
		return result
	}

	required := remaining / float64(days)
	result.RequiredDailyHours = roundTo(required, 2)
	result.SlackHoursPerDay = roundTo(input.MaxDailyHours-required, 2)

	ratio := required / math.Max(input.MaxDailyHours, 0.5)
	switch {
	case ratio > 1.5:
		result.Level = domain.RiskCritical
	case ratio > 1.0:
		result.Level = domain.RiskAtRisk
	case days <= 2 && ratio > 0.8:
		result.Level = domain.RiskAtRisk
	default:
		result.Level = domain.RiskOnTrack
	}
	return result
}

// WorkdaysLeft counts weekdays from now's date through the Friday of the
// week starting at weekStart. Days before weekStart are not counted.
func WorkdaysLeft(now, weekStart time.Time) int {
	day := atHour(now, 0)
	if start := atHour(weekStart, 0); day.Before(start) {
		day = start
	}
	end := atHour(weekStart, 0).AddDate(0, 0, 7)
	n := 0
	for ; day.Before(end); day = nextDayAt(day, 0) {
		if !isWeekend(day) {
			n++
		}
	}
	return n
}
