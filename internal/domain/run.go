package domain

import "time"

// SchedulingRun is the audit record of one calendar auto-scheduling run.
type SchedulingRun struct {
	ID         int       `json:"id"`
	RunID      string    `json:"run_id"`
	Trigger    string    `json:"trigger"`
	TaskIDs    []int     `json:"task_ids"`
	Placed     int       `json:"placed"`
	Unplaced   int       `json:"unplaced"`
	Outcome    string    `json:"outcome"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
}

// Run outcomes.
const (
	RunOutcomeOK               = "ok"
	RunOutcomePartial          = "partial"
	RunOutcomePermissionDenied = "calendar_permission_denied"
	RunOutcomeNoAccess         = "no_calendar_access"
)
