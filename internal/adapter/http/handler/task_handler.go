package handler

import (
	"context"

	"runnerhub/internal/adapter/http/dto"
	"runnerhub/internal/core/domain"
	"runnerhub/internal/core/ports"
	"runnerhub/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// TaskHandler drives the task lifecycle over HTTP.
type TaskHandler struct {
	taskSvc ports.TaskService
}

func NewTaskHandler(taskSvc ports.TaskService) *TaskHandler {
	return &TaskHandler{taskSvc: taskSvc}
}

// Post handles POST /api/v1/tasks.
func (h *TaskHandler) Post(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	var req dto.PostTaskRequest
	if !bindJSON(c, &req) {
		return
	}

	task, err := h.taskSvc.Post(c.Request.Context(), ports.PostTaskRequest{
		ClientID:    a.UserID,
		Title:       req.Title,
		Description: req.Description,
		Budget:      req.Budget,
		Location:    req.Location.GeoPoint(),
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, task)
}

// Get handles GET /api/v1/tasks/:id.
func (h *TaskHandler) Get(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	task, err := h.taskSvc.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, task)
}

// List handles GET /api/v1/tasks.
func (h *TaskHandler) List(c *gin.Context) {
	var q dto.TaskListQuery
	if !bindQuery(c, &q) {
		return
	}
	q.Normalize()

	params := ports.TaskListParams{
		ClientID: optionalUUID(q.ClientID),
		RunnerID: optionalUUID(q.RunnerID),
		Page:     q.Page,
		PageSize: q.PageSize,
	}
	if q.Status != "" {
		status := domain.TaskStatus(q.Status)
		params.Status = &status
	}

	tasks, total, err := h.taskSvc.List(c.Request.Context(), params)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Page(c, tasks, q.Page, q.PageSize, total)
}

// Accept handles PUT /api/v1/tasks/:id/accept.
func (h *TaskHandler) Accept(c *gin.Context) {
	h.runnerAction(c, h.taskSvc.Accept)
}

// Complete handles PUT /api/v1/tasks/:id/complete.
func (h *TaskHandler) Complete(c *gin.Context) {
	h.runnerAction(c, h.taskSvc.Complete)
}

func (h *TaskHandler) runnerAction(c *gin.Context, fn func(ctx context.Context, runnerID, taskID uuid.UUID) (*domain.Task, error)) {
	a, ok := actor(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	task, err := fn(c.Request.Context(), a.UserID, id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, task)
}

// Cancel handles PUT /api/v1/tasks/:id/cancel.
func (h *TaskHandler) Cancel(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	task, err := h.taskSvc.Cancel(c.Request.Context(), a, id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, task)
}

// MarkPaid handles PUT /api/v1/tasks/:id/paid.
func (h *TaskHandler) MarkPaid(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	task, err := h.taskSvc.MarkPaid(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, task)
}
