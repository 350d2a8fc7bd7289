package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/straye-as/project-desk-api/internal/domain"
	"github.com/straye-as/project-desk-api/internal/service"
	"go.uber.org/zap"
)

type FavoriteHandler struct {
	favoriteService *service.FavoriteService
	logger          *zap.Logger
}

func NewFavoriteHandler(favoriteService *service.FavoriteService, logger *zap.Logger) *FavoriteHandler {
	return &FavoriteHandler{
		favoriteService: favoriteService,
		logger:          logger,
	}
}

// List godoc
// @Summary List favorite projects
// @Tags Favorites
// @Produce json
// @Success 200 {object} domain.ListResponse{data=[]domain.ProjectDTO}
// @Router /favorites [get]
func (h *FavoriteHandler) List(w http.ResponseWriter, r *http.Request) {
	projects, err := h.favoriteService.List(r.Context())
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, domain.ListResponse{Data: projects, Total: len(projects)})
}

// Add godoc
// @Summary Pin a project
// @Tags Favorites
// @Param projectId path string true "Project ID"
// @Success 204
// @Failure 404 {object} domain.APIError
// @Router /favorites/{projectId} [put]
func (h *FavoriteHandler) Add(w http.ResponseWriter, r *http.Request) {
	if err := h.favoriteService.Add(r.Context(), chi.URLParam(r, "projectId")); err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Remove godoc
// @Summary Unpin a project
// @Tags Favorites
// @Param projectId path string true "Project ID"
// @Success 204
// @Router /favorites/{projectId} [delete]
func (h *FavoriteHandler) Remove(w http.ResponseWriter, r *http.Request) {
	if err := h.favoriteService.Remove(r.Context(), chi.URLParam(r, "projectId")); err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
