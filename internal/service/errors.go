package service

import "errors"

// Common service errors
var (
	// ErrNotFound is returned when a resource is not found
	ErrNotFound = errors.New("resource not found")

	// ErrInvalidInput is returned when input validation fails
	ErrInvalidInput = errors.New("invalid input")

	// ErrConflict is returned when there's a conflict (e.g., duplicate)
	ErrConflict = errors.New("resource conflict")

	// ErrProjectNotFound is returned when a project is not found
	ErrProjectNotFound = errors.New("project not found")

	// ErrStakeholderNotFound is returned when a stakeholder does not belong to the project
	ErrStakeholderNotFound = errors.New("stakeholder not found")

	// ErrFeedbackNotFound is returned when a feedback item is not found
	ErrFeedbackNotFound = errors.New("feedback not found")

	// ErrSessionNotFound is returned when a response desk session does not exist or expired
	ErrSessionNotFound = errors.New("desk session not found")

	// ErrSelectionChanged is returned when the selection moved while a draft request was being prepared
	ErrSelectionChanged = errors.New("selection changed while preparing draft request")

	// ErrDataWarehouseUnavailable is returned when payment sync runs without a warehouse connection
	ErrDataWarehouseUnavailable = errors.New("data warehouse not configured")

	// ErrSnapshotsUnavailable is returned when no snapshot storage is configured
	ErrSnapshotsUnavailable = errors.New("snapshot storage not configured")
)
