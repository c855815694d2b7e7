package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/atdaga/skrm-server/pkg/response"
	"github.com/atdaga/skrm-server/tracker-service/internal/domain"
)

func (h *Handler) CreateProject(c *gin.Context) {
	a, orgID, ok := orgScope(c)
	if !ok {
		return
	}
	var req domain.CreateProjectRequest
	if !bindJSON(c, &req) {
		return
	}

	project, err := h.svc.Projects.CreateProject(c.Request.Context(), a, orgID, &req)
	if err != nil {
		writeError(c, err, "failed to create project")
		return
	}
	response.Created(c, project)
}

func (h *Handler) ListProjects(c *gin.Context) {
	a, orgID, ok := orgScope(c)
	if !ok {
		return
	}
	var req domain.ListRequest
	if !bindQuery(c, &req) {
		return
	}

	result, err := h.svc.Projects.ListProjects(c.Request.Context(), a, orgID, req)
	if err != nil {
		writeError(c, err, "failed to list projects")
		return
	}
	response.Success(c, result)
}

func (h *Handler) GetProject(c *gin.Context) {
	a, orgID, ok := orgScope(c)
	if !ok {
		return
	}
	project, err := h.svc.Projects.GetProject(c.Request.Context(), a, orgID, c.Param("project_id"))
	if err != nil {
		writeError(c, err, "failed to get project")
		return
	}
	response.Success(c, project)
}

func (h *Handler) UpdateProject(c *gin.Context) {
	a, orgID, ok := orgScope(c)
	if !ok {
		return
	}
	var req domain.UpdateProjectRequest
	if !bindJSON(c, &req) {
		return
	}

	project, err := h.svc.Projects.UpdateProject(c.Request.Context(), a, orgID, c.Param("project_id"), &req)
	if err != nil {
		writeError(c, err, "failed to update project")
		return
	}
	response.Success(c, project)
}

func (h *Handler) DeleteProject(c *gin.Context) {
	a, orgID, ok := orgScope(c)
	if !ok {
		return
	}
	hard, ok := hardDelete(c)
	if !ok {
		return
	}
	if err := h.svc.Projects.DeleteProject(c.Request.Context(), a, orgID, c.Param("project_id"), hard); err != nil {
		writeError(c, err, "failed to delete project")
		return
	}
	response.NoContent(c)
}
