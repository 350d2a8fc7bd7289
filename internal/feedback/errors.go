package feedback

import "errors"

// Response workflow errors
var (
	// ErrNoSelection is returned when an operation needs a selected feedback item
	ErrNoSelection = errors.New("no feedback selected")

	// ErrEmptyFeedbackID is returned when selecting with an empty identifier
	ErrEmptyFeedbackID = errors.New("feedback id is required")

	// ErrGenerationInFlight is returned when a draft is requested while one is already being generated
	ErrGenerationInFlight = errors.New("draft generation already in progress")

	// ErrEmptyDraft is returned when saving without any draft text
	ErrEmptyDraft = errors.New("draft is empty")

	// ErrFeedbackNotFound is returned when the selected feedback no longer exists
	ErrFeedbackNotFound = errors.New("feedback not found")
)
