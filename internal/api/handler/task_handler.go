package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/despi4/secure-todo-api/internal/api/metrics"
	"github.com/despi4/secure-todo-api/internal/core/domain"
	"github.com/despi4/secure-todo-api/internal/core/ports"
)

// TaskHandler handles HTTP requests for task operations.
type TaskHandler struct {
	service ports.TaskService
	metrics *metrics.Metrics
}

// NewTaskHandler wires the task routes. m may be nil.
func NewTaskHandler(service ports.TaskService, m *metrics.Metrics) *TaskHandler {
	return &TaskHandler{service: service, metrics: m}
}

// Create handles POST /tasks.
//
// @Summary      Create a task
// @Tags         tasks
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createTaskRequest  true  "Task title and description"
// @Success      201   {object}  taskEnvelope
// @Failure      400   {object}  map[string]any
// @Failure      401   {object}  map[string]string
// @Router       /tasks [post]
func (h *TaskHandler) Create(c echo.Context) error {
	identity, err := currentIdentity(c)
	if err != nil {
		return err
	}

	var req createTaskRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	task, err := h.service.Create(c.Request().Context(), identity, ports.CreateTaskInput{
		Title:       req.Title,
		Description: req.Description,
	})
	if err != nil {
		return err
	}

	h.metrics.TaskMutation(string(domain.ActionCreated))
	return c.JSON(http.StatusCreated, taskEnvelope{Task: toTaskResponse(task)})
}

// List handles GET /tasks and returns only the caller's tasks, newest first.
//
// @Summary      List my tasks
// @Tags         tasks
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  taskListEnvelope
// @Failure      401  {object}  map[string]string
// @Router       /tasks [get]
func (h *TaskHandler) List(c echo.Context) error {
	identity, err := currentIdentity(c)
	if err != nil {
		return err
	}

	tasks, err := h.service.ListMine(c.Request().Context(), identity)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, taskListEnvelope{Tasks: toTaskList(tasks)})
}

// Get handles GET /tasks/:id. Reading a single task is public.
//
// @Summary      Get a task by id
// @Tags         tasks
// @Produce      json
// @Param        id   path      string  true  "Task id"
// @Success      200  {object}  taskEnvelope
// @Failure      404  {object}  map[string]string
// @Router       /tasks/{id} [get]
func (h *TaskHandler) Get(c echo.Context) error {
	task, err := h.service.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, taskEnvelope{Task: toTaskResponse(task)})
}

// Patch handles PATCH /tasks/:id. Only the author or an admin may change the status.
//
// @Summary      Update task status
// @Tags         tasks
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string              true  "Task id"
// @Param        body  body      patchStatusRequest  true  "New status"
// @Success      200   {object}  taskEnvelope
// @Failure      400   {object}  map[string]any
// @Failure      401   {object}  map[string]string
// @Failure      403   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /tasks/{id} [patch]
func (h *TaskHandler) Patch(c echo.Context) error {
	identity, err := currentIdentity(c)
	if err != nil {
		return err
	}

	var req patchStatusRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	task, err := h.service.UpdateStatus(c.Request().Context(), identity, c.Param("id"), domain.TaskStatus(req.Status))
	if err != nil {
		return err
	}

	h.metrics.TaskMutation(string(domain.ActionStatusChanged))
	return c.JSON(http.StatusOK, taskEnvelope{Task: toTaskResponse(task)})
}

// Delete handles DELETE /tasks/:id. Only the author or an admin may delete.
//
// @Summary      Delete a task
// @Tags         tasks
// @Security     BearerAuth
// @Param        id   path  string  true  "Task id"
// @Success      204
// @Failure      401  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /tasks/{id} [delete]
func (h *TaskHandler) Delete(c echo.Context) error {
	identity, err := currentIdentity(c)
	if err != nil {
		return err
	}

	if err := h.service.Delete(c.Request().Context(), identity, c.Param("id")); err != nil {
		return err
	}

	h.metrics.TaskMutation(string(domain.ActionDeleted))
	return c.NoContent(http.StatusNoContent)
}
