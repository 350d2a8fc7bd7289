package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/straye-as/project-desk-api/internal/domain"
	"github.com/straye-as/project-desk-api/internal/repository"
	"github.com/straye-as/project-desk-api/internal/service"
	"go.uber.org/zap"
)

type FeedbackHandler struct {
	feedbackService *service.FeedbackService
	logger          *zap.Logger
}

func NewFeedbackHandler(feedbackService *service.FeedbackService, logger *zap.Logger) *FeedbackHandler {
	return &FeedbackHandler{
		feedbackService: feedbackService,
		logger:          logger,
	}
}

// List godoc
// @Summary List feedback
// @Description Pending items first, then the rest; newest first within each group
// @Tags Feedback
// @Produce json
// @Param projectId query string false "Filter by project"
// @Param status query string false "Filter by status" Enums(pending, in_progress, assigned, resolved)
// @Success 200 {object} domain.ListResponse{data=[]domain.FeedbackDTO}
// @Failure 400 {object} domain.APIError
// @Failure 500 {object} domain.APIError
// @Router /feedback [get]
func (h *FeedbackHandler) List(w http.ResponseWriter, r *http.Request) {
	filter := &repository.FeedbackFilter{ProjectID: r.URL.Query().Get("projectId")}
	if s := r.URL.Query().Get("status"); s != "" {
		status := domain.FeedbackStatus(s)
		if !status.IsValid() {
			respondWithError(w, http.StatusBadRequest, "Invalid feedback status")
			return
		}
		filter.Status = &status
	}

	items, err := h.feedbackService.List(r.Context(), filter)
	if err != nil {
		h.logger.Error("failed to list feedback", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to list feedback")
		return
	}

	respondJSON(w, http.StatusOK, domain.ListResponse{Data: items, Total: len(items)})
}

// Create godoc
// @Summary Record feedback
// @Tags Feedback
// @Accept json
// @Produce json
// @Param request body domain.CreateFeedbackRequest true "Feedback data"
// @Success 201 {object} domain.FeedbackDTO
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Router /feedback [post]
func (h *FeedbackHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateFeedbackRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	fb, err := h.feedbackService.Create(r.Context(), &req)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	w.Header().Set("Location", "/api/v1/feedback/"+fb.ID)
	respondJSON(w, http.StatusCreated, fb)
}

// GetByID godoc
// @Summary Get feedback by ID
// @Tags Feedback
// @Produce json
// @Param id path string true "Feedback ID"
// @Success 200 {object} domain.FeedbackDTO
// @Failure 404 {object} domain.APIError
// @Router /feedback/{id} [get]
func (h *FeedbackHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	fb, err := h.feedbackService.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, fb)
}

// Update godoc
// @Summary Update feedback status or assignee
// @Tags Feedback
// @Accept json
// @Produce json
// @Param id path string true "Feedback ID"
// @Param request body domain.UpdateFeedbackRequest true "Status and assignee"
// @Success 200 {object} domain.FeedbackDTO
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Router /feedback/{id} [put]
func (h *FeedbackHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req domain.UpdateFeedbackRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	fb, err := h.feedbackService.Update(r.Context(), chi.URLParam(r, "id"), &req)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, fb)
}
