package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/straye-as/project-desk-api/internal/domain"
	"github.com/straye-as/project-desk-api/internal/service"
	"go.uber.org/zap"
)

// DeskHandler exposes the response drafting workflow
type DeskHandler struct {
	deskService *service.ResponseDeskService
	logger      *zap.Logger
}

func NewDeskHandler(deskService *service.ResponseDeskService, logger *zap.Logger) *DeskHandler {
	return &DeskHandler{
		deskService: deskService,
		logger:      logger,
	}
}

// OpenSession godoc
// @Summary Open a desk session
// @Tags Desk
// @Produce json
// @Success 201 {object} domain.DeskSessionDTO
// @Router /desk/sessions [post]
func (h *DeskHandler) OpenSession(w http.ResponseWriter, r *http.Request) {
	session, err := h.deskService.OpenSession(r.Context())
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	w.Header().Set("Location", "/api/v1/desk/sessions/"+session.ID)
	respondJSON(w, http.StatusCreated, session)
}

// GetSession godoc
// @Summary Get desk session state
// @Description Poll this while `generating` is true
// @Tags Desk
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} domain.DeskSessionDTO
// @Failure 404 {object} domain.APIError
// @Router /desk/sessions/{id} [get]
func (h *DeskHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	session, err := h.deskService.GetSession(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, session)
}

// CloseSession godoc
// @Summary Close a desk session
// @Tags Desk
// @Param id path string true "Session ID"
// @Success 204
// @Failure 404 {object} domain.APIError
// @Router /desk/sessions/{id} [delete]
func (h *DeskHandler) CloseSession(w http.ResponseWriter, r *http.Request) {
	if err := h.deskService.CloseSession(r.Context(), chi.URLParam(r, "id")); err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Select godoc
// @Summary Select feedback
// @Description Opens a feedback item with an empty draft, discarding any previous draft
// @Tags Desk
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param request body domain.SelectFeedbackRequest true "Feedback to open"
// @Success 200 {object} domain.DeskSessionDTO
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Router /desk/sessions/{id}/select [post]
func (h *DeskHandler) Select(w http.ResponseWriter, r *http.Request) {
	var req domain.SelectFeedbackRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	session, err := h.deskService.Select(r.Context(), chi.URLParam(r, "id"), req.FeedbackID)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, session)
}

// Cancel godoc
// @Summary Return to idle
// @Description Drops the selection and draft; a running generation is ignored when it finishes
// @Tags Desk
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} domain.DeskSessionDTO
// @Failure 404 {object} domain.APIError
// @Router /desk/sessions/{id}/cancel [post]
func (h *DeskHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	session, err := h.deskService.Cancel(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, session)
}

// Generate godoc
// @Summary Request a draft response
// @Description Starts generation in the background. Poll the session for the result.
// @Tags Desk
// @Produce json
// @Param id path string true "Session ID"
// @Success 202 {object} domain.DeskSessionDTO
// @Failure 404 {object} domain.APIError
// @Failure 409 {object} domain.APIError
// @Router /desk/sessions/{id}/generate [post]
func (h *DeskHandler) Generate(w http.ResponseWriter, r *http.Request) {
	session, err := h.deskService.RequestGeneration(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	respondJSON(w, http.StatusAccepted, session)
}

// EditDraft godoc
// @Summary Replace the draft text
// @Tags Desk
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param request body domain.EditDraftRequest true "Draft text"
// @Success 200 {object} domain.DeskSessionDTO
// @Failure 404 {object} domain.APIError
// @Failure 409 {object} domain.APIError
// @Router /desk/sessions/{id}/draft [put]
func (h *DeskHandler) EditDraft(w http.ResponseWriter, r *http.Request) {
	var req domain.EditDraftRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	session, err := h.deskService.EditDraft(r.Context(), chi.URLParam(r, "id"), req.Text)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, session)
}

// Save godoc
// @Summary Save the draft as the response
// @Description Stores the draft on the feedback, sets it to in_progress and returns the session to idle
// @Tags Desk
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} domain.DeskSaveResponse
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Failure 409 {object} domain.APIError
// @Router /desk/sessions/{id}/save [post]
func (h *DeskHandler) Save(w http.ResponseWriter, r *http.Request) {
	result, err := h.deskService.Save(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}
