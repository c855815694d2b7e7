package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/atdaga/skrm-server/pkg/response"
	"github.com/atdaga/skrm-server/tracker-service/internal/domain"
)

func (h *Handler) CreateSprint(c *gin.Context) {
	a, orgID, ok := orgScope(c)
	if !ok {
		return
	}
	var req domain.CreateSprintRequest
	if !bindJSON(c, &req) {
		return
	}

	sprint, err := h.svc.Sprints.CreateSprint(c.Request.Context(), a, orgID, &req)
	if err != nil {
		writeError(c, err, "failed to create sprint")
		return
	}
	response.Created(c, sprint)
}

func (h *Handler) ListSprints(c *gin.Context) {
	a, orgID, ok := orgScope(c)
	if !ok {
		return
	}
	var req domain.ListRequest
	if !bindQuery(c, &req) {
		return
	}

	result, err := h.svc.Sprints.ListSprints(c.Request.Context(), a, orgID, req)
	if err != nil {
		writeError(c, err, "failed to list sprints")
		return
	}
	response.Success(c, result)
}

func (h *Handler) GetSprint(c *gin.Context) {
	a, orgID, ok := orgScope(c)
	if !ok {
		return
	}
	sprint, err := h.svc.Sprints.GetSprint(c.Request.Context(), a, orgID, c.Param("sprint_id"))
	if err != nil {
		writeError(c, err, "failed to get sprint")
		return
	}
	response.Success(c, sprint)
}

func (h *Handler) UpdateSprint(c *gin.Context) {
	a, orgID, ok := orgScope(c)
	if !ok {
		return
	}
	var req domain.UpdateSprintRequest
	if !bindJSON(c, &req) {
		return
	}

	sprint, err := h.svc.Sprints.UpdateSprint(c.Request.Context(), a, orgID, c.Param("sprint_id"), &req)
	if err != nil {
		writeError(c, err, "failed to update sprint")
		return
	}
	response.Success(c, sprint)
}

func (h *Handler) DeleteSprint(c *gin.Context) {
	a, orgID, ok := orgScope(c)
	if !ok {
		return
	}
	hard, ok := hardDelete(c)
	if !ok {
		return
	}
	if err := h.svc.Sprints.DeleteSprint(c.Request.Context(), a, orgID, c.Param("sprint_id"), hard); err != nil {
		writeError(c, err, "failed to delete sprint")
		return
	}
	response.NoContent(c)
}

// ListSprintTasks lists the tasks linked to a sprint in number order.
func (h *Handler) ListSprintTasks(c *gin.Context) {
	a, orgID, ok := orgScope(c)
	if !ok {
		return
	}
	tasks, err := h.svc.Sprints.ListTasks(c.Request.Context(), a, orgID, c.Param("sprint_id"))
	if err != nil {
		writeError(c, err, "failed to list sprint tasks")
		return
	}
	response.Success(c, tasks)
}

func (h *Handler) AddSprintTask(c *gin.Context) {
	a, orgID, ok := orgScope(c)
	if !ok {
		return
	}
	if err := h.svc.Sprints.AddTask(c.Request.Context(), a, orgID, c.Param("sprint_id"), c.Param("task_id")); err != nil {
		writeError(c, err, "failed to link task to sprint")
		return
	}
	response.NoContent(c)
}

func (h *Handler) RemoveSprintTask(c *gin.Context) {
	a, orgID, ok := orgScope(c)
	if !ok {
		return
	}
	if err := h.svc.Sprints.RemoveTask(c.Request.Context(), a, orgID, c.Param("sprint_id"), c.Param("task_id")); err != nil {
		writeError(c, err, "failed to unlink task from sprint")
		return
	}
	response.NoContent(c)
}
