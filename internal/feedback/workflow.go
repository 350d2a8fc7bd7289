package feedback

import (
	"context"
	"fmt"
	"sync"

	"github.com/straye-as/project-desk-api/internal/domain"
)

// Phase is the externally visible state of a workflow
type Phase string

const (
	PhaseIdle       Phase = "idle"
	PhaseDetail     Phase = "detail"
	PhaseGenerating Phase = "generating"
	PhaseDraftReady Phase = "draft_ready"
)

// Ticket identifies one draft generation request.
// A completion is applied only if its ticket is still the one in flight.
type Ticket struct {
	FeedbackID string
	seq        uint64
}

// Snapshot is a consistent copy of the workflow state
type Snapshot struct {
	Phase      Phase
	FeedbackID string
	Draft      string
	Generating bool
}

// HasSelection reports whether a feedback item is selected
func (s Snapshot) HasSelection() bool {
	return s.Phase != PhaseIdle
}

// Records is the persistence collaborator used by Save
type Records interface {
	// Find resolves a feedback item; the boolean is false when it does not exist
	Find(ctx context.Context, id string) (domain.Feedback, bool, error)
	// OnUpdate receives the updated record exactly once per successful save
	OnUpdate(ctx context.Context, fb domain.Feedback) error
}

// detail is the only non-idle state. Generating and draft-ready are derived
// from it, so a generation without a selection cannot be represented.
type detail struct {
	feedbackID string
	draft      string
	inflight   *Ticket
}

// Workflow is the response drafting state machine for a single user.
// All transitions are serialized by a mutex so late generation results
// and user events cannot interleave.
type Workflow struct {
	mu       sync.Mutex
	selected *detail
	nextSeq  uint64
}

// NewWorkflow returns a workflow in the idle state
func NewWorkflow() *Workflow {
	return &Workflow{}
}

// Snapshot returns the current state
func (w *Workflow) Snapshot() Snapshot {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.snapshotLocked()
}

func (w *Workflow) snapshotLocked() Snapshot {
	if w.selected == nil {
		return Snapshot{Phase: PhaseIdle}
	}
	s := Snapshot{
		FeedbackID: w.selected.feedbackID,
		Draft:      w.selected.draft,
		Generating: w.selected.inflight != nil,
	}
	switch {
	case s.Generating:
		s.Phase = PhaseGenerating
	case s.Draft != "":
		s.Phase = PhaseDraftReady
	default:
		s.Phase = PhaseDetail
	}
	return s
}

// Select opens a feedback item with an empty draft.
// Any generation still running for the previous selection becomes stale.
func (w *Workflow) Select(feedbackID string) (Snapshot, error) {
	if feedbackID == "" {
		return Snapshot{}, ErrEmptyFeedbackID
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.selected = &detail{feedbackID: feedbackID}
	return w.snapshotLocked(), nil
}

// Cancel returns to idle from any state
func (w *Workflow) Cancel() Snapshot {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.selected = nil
	return w.snapshotLocked()
}

// BeginGeneration marks a draft request as in flight and returns its ticket.
// A second request while one is running is rejected.
func (w *Workflow) BeginGeneration() (Ticket, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.selected == nil {
		return Ticket{}, ErrNoSelection
	}
	if w.selected.inflight != nil {
		return Ticket{}, ErrGenerationInFlight
	}
	w.nextSeq++
	t := Ticket{FeedbackID: w.selected.feedbackID, seq: w.nextSeq}
	w.selected.inflight = &t
	return t, nil
}

// CompleteGeneration applies a generation result if the ticket is still current.
// On failure the draft is left untouched. Returns false for a stale result.
func (w *Workflow) CompleteGeneration(t Ticket, text string, genErr error) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.selected == nil || w.selected.inflight == nil || *w.selected.inflight != t {
		return false
	}
	w.selected.inflight = nil
	if genErr == nil {
		w.selected.draft = text
	}
	return true
}

// EditDraft replaces the draft text of the current selection
func (w *Workflow) EditDraft(text string) (Snapshot, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.selected == nil {
		return Snapshot{}, ErrNoSelection
	}
	w.selected.draft = text
	return w.snapshotLocked(), nil
}

// Save writes the draft as the response of the selected feedback and returns to idle.
// If the collaborator fails the selection and draft are kept so the save can be retried.
func (w *Workflow) Save(ctx context.Context, records Records) (domain.Feedback, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.selected == nil {
		return domain.Feedback{}, ErrNoSelection
	}
	if w.selected.draft == "" {
		return domain.Feedback{}, ErrEmptyDraft
	}

	fb, found, err := records.Find(ctx, w.selected.feedbackID)
	if err != nil {
		return domain.Feedback{}, fmt.Errorf("failed to load feedback: %w", err)
	}
	if !found {
		return domain.Feedback{}, ErrFeedbackNotFound
	}

	updated := ApplyResponse(fb, w.selected.draft)
	if err := records.OnUpdate(ctx, updated); err != nil {
		return domain.Feedback{}, fmt.Errorf("failed to update feedback: %w", err)
	}

	w.selected = nil
	return updated, nil
}

// ApplyResponse returns a copy of fb carrying the response.
// Saving a response always moves the item to in progress, whatever its prior status.
func ApplyResponse(fb domain.Feedback, response string) domain.Feedback {
	updated := fb
	r := response
	updated.Response = &r
	updated.Status = domain.FeedbackStatusInProgress
	return updated
}
