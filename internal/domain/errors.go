package domain

import "errors"

var (
	// ErrInvalidTask indicates a task failed validation before any scheduling work.
	ErrInvalidTask = errors.New("invalid task")

	// ErrInvalidWindow indicates daily_start/daily_end do not describe a usable window.
	ErrInvalidWindow = errors.New("invalid daily window")

	// ErrInvalidReview indicates a review payload is out of range.
	ErrInvalidReview = errors.New("invalid review")

	// ErrNotFound indicates the requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrCalendarPermissionDenied indicates the calendar provider refused the
	// operation (HTTP 403). Scheduling runs abort when they see it.
	ErrCalendarPermissionDenied = errors.New("calendar permission denied")

	// ErrNoCalendarAccess indicates no calendar credentials are configured.
	ErrNoCalendarAccess = errors.New("calendar access not configured")
)
