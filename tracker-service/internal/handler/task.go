package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/atdaga/skrm-server/pkg/response"
	"github.com/atdaga/skrm-server/tracker-service/internal/domain"
)

// CreateTask creates a task under the organization's next task number.
func (h *Handler) CreateTask(c *gin.Context) {
	a, orgID, ok := orgScope(c)
	if !ok {
		return
	}
	var req domain.CreateTaskRequest
	if !bindJSON(c, &req) {
		return
	}

	task, err := h.svc.Tasks.CreateTask(c.Request.Context(), a, orgID, &req)
	if err != nil {
		writeError(c, err, "failed to create task")
		return
	}
	response.Created(c, task)
}

// ListTasks lists tasks in number order, optionally filtered by status
// and project.
func (h *Handler) ListTasks(c *gin.Context) {
	a, orgID, ok := orgScope(c)
	if !ok {
		return
	}
	var req domain.ListTasksRequest
	if !bindQuery(c, &req) {
		return
	}

	result, err := h.svc.Tasks.ListTasks(c.Request.Context(), a, orgID, req)
	if err != nil {
		writeError(c, err, "failed to list tasks")
		return
	}
	response.Success(c, result)
}

func (h *Handler) GetTask(c *gin.Context) {
	a, orgID, ok := orgScope(c)
	if !ok {
		return
	}
	task, err := h.svc.Tasks.GetTask(c.Request.Context(), a, orgID, c.Param("task_id"))
	if err != nil {
		writeError(c, err, "failed to get task")
		return
	}
	response.Success(c, task)
}

func (h *Handler) UpdateTask(c *gin.Context) {
	a, orgID, ok := orgScope(c)
	if !ok {
		return
	}
	var req domain.UpdateTaskRequest
	if !bindJSON(c, &req) {
		return
	}

	task, err := h.svc.Tasks.UpdateTask(c.Request.Context(), a, orgID, c.Param("task_id"), &req)
	if err != nil {
		writeError(c, err, "failed to update task")
		return
	}
	response.Success(c, task)
}

func (h *Handler) DeleteTask(c *gin.Context) {
	a, orgID, ok := orgScope(c)
	if !ok {
		return
	}
	hard, ok := hardDelete(c)
	if !ok {
		return
	}
	if err := h.svc.Tasks.DeleteTask(c.Request.Context(), a, orgID, c.Param("task_id"), hard); err != nil {
		writeError(c, err, "failed to delete task")
		return
	}
	response.NoContent(c)
}
