package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/straye-as/project-desk-api/internal/domain"
	"github.com/straye-as/project-desk-api/internal/drafting"
	"github.com/straye-as/project-desk-api/internal/feedback"
	"github.com/straye-as/project-desk-api/internal/logger"
	"github.com/straye-as/project-desk-api/internal/mapper"
	"github.com/straye-as/project-desk-api/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const defaultGenerationTimeout = 60 * time.Second

type deskSession struct {
	workflow   *feedback.Workflow
	lastActive time.Time
}

// ResponseDeskService hosts one drafting workflow per open session
type ResponseDeskService struct {
	feedbackRepo *repository.FeedbackRepository
	projectRepo  *repository.ProjectRepository
	generator    drafting.Generator
	logger       *zap.Logger

	generationTimeout time.Duration

	mu       sync.RWMutex
	sessions map[string]*deskSession
	pending  sync.WaitGroup
	now      func() time.Time
}

// NewResponseDeskService creates a new ResponseDeskService.
// generationTimeout bounds each background generation; zero selects the default.
func NewResponseDeskService(
	feedbackRepo *repository.FeedbackRepository,
	projectRepo *repository.ProjectRepository,
	generator drafting.Generator,
	generationTimeout time.Duration,
	logger *zap.Logger,
) *ResponseDeskService {
	if generationTimeout <= 0 {
		generationTimeout = defaultGenerationTimeout
	}
	return &ResponseDeskService{
		feedbackRepo:      feedbackRepo,
		projectRepo:       projectRepo,
		generator:         generator,
		logger:            logger,
		generationTimeout: generationTimeout,
		sessions:          make(map[string]*deskSession),
		now:               time.Now,
	}
}

// OpenSession starts a new idle session
func (s *ResponseDeskService) OpenSession(ctx context.Context) (*domain.DeskSessionDTO, error) {
	id := uuid.New().String()
	wf := feedback.NewWorkflow()

	s.mu.Lock()
	s.sessions[id] = &deskSession{workflow: wf, lastActive: s.now()}
	s.mu.Unlock()

	s.logger.Info("Desk session opened", zap.String("session_id", id))
	dto := mapper.ToDeskSessionDTO(id, wf.Snapshot(), nil)
	return &dto, nil
}

// GetSession returns the session state with the selected feedback resolved
func (s *ResponseDeskService) GetSession(ctx context.Context, sessionID string) (*domain.DeskSessionDTO, error) {
	wf, err := s.workflow(sessionID)
	if err != nil {
		return nil, err
	}
	return s.view(ctx, sessionID, wf.Snapshot())
}

// CloseSession discards a session. A generation still running for it is ignored on completion.
func (s *ResponseDeskService) CloseSession(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[sessionID]; !ok {
		return ErrSessionNotFound
	}
	delete(s.sessions, sessionID)
	s.logger.Info("Desk session closed", zap.String("session_id", sessionID))
	return nil
}

// Select opens a feedback item in the session
func (s *ResponseDeskService) Select(ctx context.Context, sessionID, feedbackID string) (*domain.DeskSessionDTO, error) {
	wf, err := s.workflow(sessionID)
	if err != nil {
		return nil, err
	}
	if feedbackID == "" {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, feedback.ErrEmptyFeedbackID)
	}
	if _, err := s.feedbackRepo.GetByID(ctx, feedbackID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrFeedbackNotFound
		}
		return nil, fmt.Errorf("failed to get feedback: %w", err)
	}

	snap, err := wf.Select(feedbackID)
	if err != nil {
		return nil, err
	}
	logger.WithSession(s.logger, sessionID, feedbackID).Debug("Feedback selected")
	return s.view(ctx, sessionID, snap)
}

// Cancel returns the session to idle
func (s *ResponseDeskService) Cancel(ctx context.Context, sessionID string) (*domain.DeskSessionDTO, error) {
	wf, err := s.workflow(sessionID)
	if err != nil {
		return nil, err
	}
	snap := wf.Cancel()
	dto := mapper.ToDeskSessionDTO(sessionID, snap, nil)
	return &dto, nil
}

// RequestGeneration starts drafting a response in the background and returns immediately.
// The result lands in the session only if the same request is still current when it arrives.
func (s *ResponseDeskService) RequestGeneration(ctx context.Context, sessionID string) (*domain.DeskSessionDTO, error) {
	wf, err := s.workflow(sessionID)
	if err != nil {
		return nil, err
	}

	current := wf.Snapshot()
	if !current.HasSelection() {
		return nil, feedback.ErrNoSelection
	}

	fb, err := s.feedbackRepo.GetByID(ctx, current.FeedbackID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrFeedbackNotFound
		}
		return nil, fmt.Errorf("failed to get feedback: %w", err)
	}
	dir, err := directoryFor(ctx, s.projectRepo, fb.ProjectID)
	if err != nil {
		return nil, err
	}
	req := drafting.Request{
		ContextSummary:   dir.ContextSummary(fb.ProjectID),
		FeedbackContent:  fb.Content,
		StakeholderLabel: dir.StakeholderLabel(fb.ProjectID, fb.StakeholderID),
	}

	ticket, err := wf.BeginGeneration()
	if err != nil {
		return nil, err
	}
	if ticket.FeedbackID != fb.ID {
		// the selection moved while the feedback was loading
		wf.CompleteGeneration(ticket, "", ErrSelectionChanged)
		return nil, ErrSelectionChanged
	}

	log := logger.WithSession(s.logger, sessionID, fb.ID)
	genCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.generationTimeout)

	s.pending.Add(1)
	go func() {
		defer s.pending.Done()
		defer cancel()

		start := s.now()
		text, genErr := s.generator.GenerateDraft(genCtx, req)
		applied := wf.CompleteGeneration(ticket, text, genErr)

		switch {
		case genErr != nil:
			log.Warn("Draft generation failed",
				zap.Error(genErr),
				zap.Bool("applied", applied),
				zap.Duration("duration", s.now().Sub(start)),
			)
		case !applied:
			log.Debug("Discarded stale draft")
		default:
			log.Info("Draft generated",
				zap.Int("length", len(text)),
				zap.Duration("duration", s.now().Sub(start)),
			)
		}
	}()

	s.touch(sessionID)
	dto := mapper.ToDeskSessionDTO(sessionID, wf.Snapshot(), nil)
	return &dto, nil
}

// EditDraft replaces the draft text
func (s *ResponseDeskService) EditDraft(ctx context.Context, sessionID, text string) (*domain.DeskSessionDTO, error) {
	wf, err := s.workflow(sessionID)
	if err != nil {
		return nil, err
	}
	snap, err := wf.EditDraft(text)
	if err != nil {
		return nil, err
	}
	return s.view(ctx, sessionID, snap)
}

// Save commits the draft as the feedback response and returns the session to idle
func (s *ResponseDeskService) Save(ctx context.Context, sessionID string) (*domain.DeskSaveResponse, error) {
	wf, err := s.workflow(sessionID)
	if err != nil {
		return nil, err
	}

	updated, err := wf.Save(ctx, &feedbackRecords{repo: s.feedbackRepo})
	if err != nil {
		return nil, err
	}

	logger.WithSession(s.logger, sessionID, updated.ID).Info("Response saved",
		zap.String("status", string(updated.Status)),
	)

	dir, err := directoryFor(ctx, s.projectRepo, updated.ProjectID)
	if err != nil {
		return nil, err
	}
	return &domain.DeskSaveResponse{
		Session:  mapper.ToDeskSessionDTO(sessionID, wf.Snapshot(), nil),
		Feedback: mapper.ToFeedbackDTO(&updated, dir),
	}, nil
}

// SweepIdle closes sessions inactive for longer than ttl and returns how many were closed
func (s *ResponseDeskService) SweepIdle(ttl time.Duration) int {
	cutoff := s.now().Add(-ttl)

	s.mu.Lock()
	defer s.mu.Unlock()
	closed := 0
	for id, sess := range s.sessions {
		if sess.lastActive.Before(cutoff) {
			delete(s.sessions, id)
			closed++
		}
	}
	return closed
}

// SessionCount returns the number of open sessions
func (s *ResponseDeskService) SessionCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Wait blocks until all background generations have finished
func (s *ResponseDeskService) Wait() {
	s.pending.Wait()
}

func (s *ResponseDeskService) workflow(sessionID string) (*feedback.Workflow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[sessionID]
	if !ok {
		return nil, ErrSessionNotFound
	}
	sess.lastActive = s.now()
	return sess.workflow, nil
}

func (s *ResponseDeskService) touch(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok := s.sessions[sessionID]; ok {
		sess.lastActive = s.now()
	}
}

func (s *ResponseDeskService) view(ctx context.Context, sessionID string, snap feedback.Snapshot) (*domain.DeskSessionDTO, error) {
	var detail *domain.FeedbackDTO
	if snap.HasSelection() {
		fb, err := s.feedbackRepo.GetByID(ctx, snap.FeedbackID)
		switch {
		case err == nil:
			dir, err := directoryFor(ctx, s.projectRepo, fb.ProjectID)
			if err != nil {
				return nil, err
			}
			dto := mapper.ToFeedbackDTO(fb, dir)
			detail = &dto
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return nil, fmt.Errorf("failed to get feedback: %w", err)
		}
	}
	dto := mapper.ToDeskSessionDTO(sessionID, snap, detail)
	return &dto, nil
}

// feedbackRecords adapts the feedback repository to the workflow's persistence collaborator
type feedbackRecords struct {
	repo *repository.FeedbackRepository
}

func (r *feedbackRecords) Find(ctx context.Context, id string) (domain.Feedback, bool, error) {
	fb, err := r.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Feedback{}, false, nil
		}
		return domain.Feedback{}, false, err
	}
	return *fb, true, nil
}

func (r *feedbackRecords) OnUpdate(ctx context.Context, fb domain.Feedback) error {
	return r.repo.Update(ctx, &fb)
}
