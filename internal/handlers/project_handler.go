package handlers

import (
	"fmt"
	"net/http"

	"me-platform/internal/middleware"
	"me-platform/internal/service"
)

// ProjectHandler serves project records
type ProjectHandler struct {
	projects *service.ProjectService
	auditMw  *middleware.AuditMiddleware
}

// NewProjectHandler creates a new project handler
func NewProjectHandler(projects *service.ProjectService, auditMw *middleware.AuditMiddleware) *ProjectHandler {
	return &ProjectHandler{projects: projects, auditMw: auditMw}
}

// Create records a project
// @Summary Create project
// @Tags Projects
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body service.CreateProjectInput true "Project"
// @Success 201 {object} models.Project
// @Failure 400 {object} ErrorResponse "Invalid request"
// @Failure 403 {object} ErrorResponse "Not allowed"
// @Router /projects [post]
func (h *ProjectHandler) Create(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	var in service.CreateProjectInput
	if !decodeJSON(w, r, &in) {
		return
	}
	project, err := h.projects.Create(r.Context(), p, in)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}
	h.auditMw.LogAction(r, service.AuditProjectCreate, "projects", fmt.Sprintf("project_id=%d", project.ID))
	respondWithJSON(w, r, http.StatusCreated, project)
}

// List returns projects visible to the caller
// @Summary List projects
// @Tags Projects
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.Project
// @Router /projects [get]
func (h *ProjectHandler) List(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	projects, err := h.projects.List(r.Context(), p)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}
	respondWithJSON(w, r, http.StatusOK, projects)
}

// Mine returns the caller's projects
// @Summary My projects
// @Tags Projects
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.Project
// @Router /projects/mine [get]
func (h *ProjectHandler) Mine(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	projects, err := h.projects.ListMine(r.Context(), p)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}
	respondWithJSON(w, r, http.StatusOK, projects)
}

// Get returns one project
// @Summary Get project
// @Tags Projects
// @Produce json
// @Security BearerAuth
// @Param id path int true "Project ID"
// @Success 200 {object} models.Project
// @Failure 403 {object} ErrorResponse "Project belongs to another organisation"
// @Failure 404 {object} ErrorResponse "Project not found"
// @Router /projects/{id} [get]
func (h *ProjectHandler) Get(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	project, err := h.projects.Get(r.Context(), p, id)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}
	respondWithJSON(w, r, http.StatusOK, project)
}

// Delete removes a project
// @Summary Delete project
// @Tags Projects
// @Security BearerAuth
// @Param id path int true "Project ID"
// @Success 204
// @Failure 403 {object} ErrorResponse "Only the creator or an admin may delete"
// @Failure 404 {object} ErrorResponse "Project not found"
// @Router /projects/{id} [delete]
func (h *ProjectHandler) Delete(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.projects.Delete(r.Context(), p, id); err != nil {
		respondWithServiceError(w, r, err)
		return
	}
	h.auditMw.LogAction(r, service.AuditProjectDelete, "projects", fmt.Sprintf("project_id=%d", id))
	w.WriteHeader(http.StatusNoContent)
}
