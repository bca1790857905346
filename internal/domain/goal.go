package domain

import (
	"fmt"
	"strings"
	"time"
)

type WeeklyGoal struct {
	ID           int       `json:"id"`
	WeekNumber   int       `json:"week_number"`
	Goal         string    `json:"goal"`
	TaskIDs      []int     `json:"task_ids"`
	WeeklyReview *Review   `json:"weekly_review,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

func (g *WeeklyGoal) Validate() error {
	if g.WeekNumber < 1 || g.WeekNumber > 53 {
		return fmt.Errorf("%w: week_number must be between 1 and 53, got %d", ErrInvalidTask, g.WeekNumber)
	}
	if strings.TrimSpace(g.Goal) == "" {
		return fmt.Errorf("%w: goal is required", ErrInvalidTask)
	}
	return nil
}

// WeeklyReviewRecord is the standalone copy of a weekly review kept for history.
type WeeklyReviewRecord struct {
	ID           int       `json:"id"`
	WeeklyGoalID int       `json:"weekly_goal_id"`
	Review       Review    `json:"review"`
	CreatedAt    time.Time `json:"created_at"`
}

// GoalValidation is a SMART assessment of a free-text goal.
type GoalValidation struct {
	IsValid         bool          `json:"is_valid"`
	IsSpecific      bool          `json:"is_specific"`
	IsMeasurable    bool          `json:"is_measurable"`
	IsAchievable    bool          `json:"is_achievable"`
	IsRelevant      bool          `json:"is_relevant"`
	IsTimeBound     bool          `json:"is_time_bound"`
	Feedback        string        `json:"feedback"`
	Suggestions     []string      `json:"suggestions"`
	RefinedVersions []RefinedGoal `json:"refined_versions"`
	// Source is "llm" or "basic".
	Source string `json:"source"`
}

type RefinedGoal struct {
	Goal        string `json:"goal"`
	Improvement string `json:"improvement"`
	WhyBetter   string `json:"why_better"`
}

type OnboardingGoal struct {
	ID         int            `json:"id"`
	Goal       string         `json:"goal"`
	Validation GoalValidation `json:"validation"`
	CreatedAt  time.Time      `json:"created_at"`
}
