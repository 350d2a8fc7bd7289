package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/straye-as/project-desk-api/internal/domain"
	"github.com/straye-as/project-desk-api/internal/repository"
	"github.com/straye-as/project-desk-api/internal/service"
	"go.uber.org/zap"
)

type ProjectHandler struct {
	projectService *service.ProjectService
	logger         *zap.Logger
}

func NewProjectHandler(projectService *service.ProjectService, logger *zap.Logger) *ProjectHandler {
	return &ProjectHandler{
		projectService: projectService,
		logger:         logger,
	}
}

// List godoc
// @Summary List projects
// @Description List projects in creation order with optional filters
// @Tags Projects
// @Produce json
// @Param type query string false "Filter by type" Enums(generation, grid, new_energy, international, municipal, environment, survey, digital, green_chem)
// @Param status query string false "Filter by status" Enums(planning, construction, acceptance, completed)
// @Param active query bool false "Only running (true) or only finished (false) projects"
// @Param q query string false "Search name, number or manager"
// @Success 200 {object} domain.ListResponse{data=[]domain.ProjectDTO}
// @Failure 400 {object} domain.APIError
// @Failure 500 {object} domain.APIError
// @Router /projects [get]
func (h *ProjectHandler) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	if q := query.Get("q"); q != "" {
		limit, _ := strconv.Atoi(query.Get("limit"))
		projects, err := h.projectService.Search(r.Context(), q, limit)
		if err != nil {
			handleServiceError(w, h.logger, err)
			return
		}
		respondJSON(w, http.StatusOK, domain.ListResponse{Data: projects, Total: len(projects)})
		return
	}

	filter := &repository.ProjectFilter{}
	if t := query.Get("type"); t != "" {
		pt := domain.ProjectType(t)
		if !pt.IsValid() {
			respondWithError(w, http.StatusBadRequest, "Invalid project type")
			return
		}
		filter.Type = &pt
	}
	if s := query.Get("status"); s != "" {
		ps := domain.ProjectStatus(s)
		if !ps.IsValid() {
			respondWithError(w, http.StatusBadRequest, "Invalid project status")
			return
		}
		filter.Status = &ps
	}
	if a := query.Get("active"); a != "" {
		active, err := strconv.ParseBool(a)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid active flag")
			return
		}
		filter.Active = &active
	}

	projects, err := h.projectService.List(r.Context(), filter)
	if err != nil {
		h.logger.Error("failed to list projects", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to list projects")
		return
	}

	respondJSON(w, http.StatusOK, domain.ListResponse{Data: projects, Total: len(projects)})
}

// Create godoc
// @Summary Create project
// @Tags Projects
// @Accept json
// @Produce json
// @Param request body domain.CreateProjectRequest true "Project data"
// @Success 201 {object} domain.ProjectDTO
// @Failure 400 {object} domain.APIError
// @Failure 500 {object} domain.APIError
// @Router /projects [post]
func (h *ProjectHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateProjectRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	project, err := h.projectService.Create(r.Context(), &req)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	w.Header().Set("Location", "/api/v1/projects/"+project.ID)
	respondJSON(w, http.StatusCreated, project)
}

// GetByID godoc
// @Summary Get project by ID
// @Tags Projects
// @Produce json
// @Param id path string true "Project ID"
// @Success 200 {object} domain.ProjectDTO
// @Failure 404 {object} domain.APIError
// @Failure 500 {object} domain.APIError
// @Router /projects/{id} [get]
func (h *ProjectHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	project, err := h.projectService.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, project)
}

// Update godoc
// @Summary Update project
// @Tags Projects
// @Accept json
// @Produce json
// @Param id path string true "Project ID"
// @Param request body domain.UpdateProjectRequest true "Project data"
// @Success 200 {object} domain.ProjectDTO
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Failure 500 {object} domain.APIError
// @Router /projects/{id} [put]
func (h *ProjectHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req domain.UpdateProjectRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	project, err := h.projectService.Update(r.Context(), chi.URLParam(r, "id"), &req)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, project)
}

// Delete godoc
// @Summary Delete project
// @Description Removes the project and its stakeholders. Feedback referencing it is kept.
// @Tags Projects
// @Param id path string true "Project ID"
// @Success 204
// @Failure 404 {object} domain.APIError
// @Failure 500 {object} domain.APIError
// @Router /projects/{id} [delete]
func (h *ProjectHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.projectService.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListStakeholders godoc
// @Summary List project stakeholders
// @Tags Projects
// @Produce json
// @Param id path string true "Project ID"
// @Success 200 {object} domain.ListResponse{data=[]domain.StakeholderDTO}
// @Failure 404 {object} domain.APIError
// @Router /projects/{id}/stakeholders [get]
func (h *ProjectHandler) ListStakeholders(w http.ResponseWriter, r *http.Request) {
	stakeholders, err := h.projectService.ListStakeholders(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, domain.ListResponse{Data: stakeholders, Total: len(stakeholders)})
}

// AddStakeholder godoc
// @Summary Add stakeholder to project
// @Tags Projects
// @Accept json
// @Produce json
// @Param id path string true "Project ID"
// @Param request body domain.CreateStakeholderRequest true "Stakeholder data"
// @Success 201 {object} domain.StakeholderDTO
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Failure 409 {object} domain.APIError
// @Router /projects/{id}/stakeholders [post]
func (h *ProjectHandler) AddStakeholder(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateStakeholderRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	stakeholder, err := h.projectService.AddStakeholder(r.Context(), chi.URLParam(r, "id"), &req)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	respondJSON(w, http.StatusCreated, stakeholder)
}
