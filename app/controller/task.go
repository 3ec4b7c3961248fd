package controller

import (
	"errors"
	"net/http"

	httpdto "github.com/taskhub-io/ms-go-taskhub/app/dto/http"
	"github.com/taskhub-io/ms-go-taskhub/app/middleware"
	"github.com/taskhub-io/ms-go-taskhub/app/service"

	"github.com/labstack/echo/v4"
)

type TaskController struct {
	tasks *service.TaskService
}

func NewTaskController(tasks *service.TaskService) *TaskController {
	return &TaskController{tasks: tasks}
}

func (c *TaskController) ListByProject(ctx echo.Context) error {
	projectID, err := idParam(ctx, "projectId")
	if err != nil {
		return err
	}

	tasks, err := c.tasks.ListByProject(ctx.Request().Context(), projectID)
	if err != nil {
		return err
	}

	return ctx.JSON(http.StatusOK, httpdto.NewEnvelope(
		http.StatusOK,
		"tasks fetched successfully",
		httpdto.NewTaskListResponse(tasks),
	))
}

func (c *TaskController) Get(ctx echo.Context) error {
	user, ok := middleware.CurrentUser(ctx)
	if !ok {
		return httpdto.NewAPIError(http.StatusUnauthorized, "unauthorized access")
	}
	taskID, err := idParam(ctx, "taskId")
	if err != nil {
		return err
	}

	task, err := c.tasks.Get(ctx.Request().Context(), user.ID, taskID)
	if err != nil {
		return taskError(err)
	}

	return ctx.JSON(http.StatusOK, httpdto.NewEnvelope(
		http.StatusOK,
		"task fetched successfully",
		httpdto.NewTaskResponse(task),
	))
}

func (c *TaskController) Create(ctx echo.Context) error {
	user, ok := middleware.CurrentUser(ctx)
	if !ok {
		return httpdto.NewAPIError(http.StatusUnauthorized, "unauthorized access")
	}
	projectID, err := idParam(ctx, "projectId")
	if err != nil {
		return err
	}

	var req httpdto.TaskRequest
	if err := ctx.Bind(&req); err != nil {
		return httpdto.NewAPIError(http.StatusBadRequest, "invalid request body")
	}
	if err := ctx.Validate(&req); err != nil {
		return err
	}

	task, err := c.tasks.Create(ctx.Request().Context(), user.ID, projectID, req.Title, req.Description, req.AssignedTo, req.Status)
	if err != nil {
		return taskError(err)
	}

	return ctx.JSON(http.StatusCreated, httpdto.NewEnvelope(
		http.StatusCreated,
		"task created successfully",
		httpdto.NewTaskResponse(task),
	))
}

func (c *TaskController) Update(ctx echo.Context) error {
	user, ok := middleware.CurrentUser(ctx)
	if !ok {
		return httpdto.NewAPIError(http.StatusUnauthorized, "unauthorized access")
	}
	taskID, err := idParam(ctx, "taskId")
	if err != nil {
		return err
	}

	var req httpdto.TaskRequest
	if err := ctx.Bind(&req); err != nil {
		return httpdto.NewAPIError(http.StatusBadRequest, "invalid request body")
	}
	if err := ctx.Validate(&req); err != nil {
		return err
	}

	task, err := c.tasks.Update(ctx.Request().Context(), user.ID, taskID, req.Title, req.Description, req.AssignedTo, req.Status)
	if err != nil {
		return taskError(err)
	}

	return ctx.JSON(http.StatusOK, httpdto.NewEnvelope(
		http.StatusOK,
		"task updated successfully",
		httpdto.NewTaskResponse(task),
	))
}

func (c *TaskController) Delete(ctx echo.Context) error {
	user, ok := middleware.CurrentUser(ctx)
	if !ok {
		return httpdto.NewAPIError(http.StatusUnauthorized, "unauthorized access")
	}
	taskID, err := idParam(ctx, "taskId")
	if err != nil {
		return err
	}

	if err := c.tasks.Delete(ctx.Request().Context(), user.ID, taskID); err != nil {
		return taskError(err)
	}

	return ctx.JSON(http.StatusOK, httpdto.NewEnvelope(http.StatusOK, "task deleted successfully", nil))
}

func (c *TaskController) ListSubTasks(ctx echo.Context) error {
	user, ok := middleware.CurrentUser(ctx)
	if !ok {
		return httpdto.NewAPIError(http.StatusUnauthorized, "unauthorized access")
	}
	taskID, err := idParam(ctx, "taskId")
	if err != nil {
		return err
	}

	subTasks, err := c.tasks.ListSubTasks(ctx.Request().Context(), user.ID, taskID)
	if err != nil {
		return taskError(err)
	}

	out := make([]httpdto.SubTaskResponse, 0, len(subTasks))
	for _, st := range subTasks {
		out = append(out, httpdto.NewSubTaskResponse(st))
	}
	return ctx.JSON(http.StatusOK, httpdto.NewEnvelope(http.StatusOK, "subtasks fetched successfully", out))
}

func (c *TaskController) CreateSubTask(ctx echo.Context) error {
	user, ok := middleware.CurrentUser(ctx)
	if !ok {
		return httpdto.NewAPIError(http.StatusUnauthorized, "unauthorized access")
	}
	taskID, err := idParam(ctx, "taskId")
	if err != nil {
		return err
	}

	var req httpdto.SubTaskRequest
	if err := ctx.Bind(&req); err != nil {
		return httpdto.NewAPIError(http.StatusBadRequest, "invalid request body")
	}
	if err := ctx.Validate(&req); err != nil {
		return err
	}

	subTask, err := c.tasks.CreateSubTask(ctx.Request().Context(), user.ID, taskID, req.Title, *req.IsCompleted)
	if err != nil {
		return taskError(err)
	}

	return ctx.JSON(http.StatusCreated, httpdto.NewEnvelope(
		http.StatusCreated,
		"subtask created successfully",
		httpdto.NewSubTaskResponse(subTask),
	))
}

func (c *TaskController) UpdateSubTask(ctx echo.Context) error {
	user, ok := middleware.CurrentUser(ctx)
	if !ok {
		return httpdto.NewAPIError(http.StatusUnauthorized, "unauthorized access")
	}
	subTaskID, err := idParam(ctx, "subTaskId")
	if err != nil {
		return err
	}

	var req httpdto.SubTaskRequest
	if err := ctx.Bind(&req); err != nil {
		return httpdto.NewAPIError(http.StatusBadRequest, "invalid request body")
	}
	if err := ctx.Validate(&req); err != nil {
		return err
	}

	subTask, err := c.tasks.UpdateSubTask(ctx.Request().Context(), user.ID, subTaskID, req.Title, *req.IsCompleted)
	if err != nil {
		return taskError(err)
	}

	return ctx.JSON(http.StatusOK, httpdto.NewEnvelope(
		http.StatusOK,
		"subtask updated successfully",
		httpdto.NewSubTaskResponse(subTask),
	))
}

func (c *TaskController) DeleteSubTask(ctx echo.Context) error {
	user, ok := middleware.CurrentUser(ctx)
	if !ok {
		return httpdto.NewAPIError(http.StatusUnauthorized, "unauthorized access")
	}
	subTaskID, err := idParam(ctx, "subTaskId")
	if err != nil {
		return err
	}

	if err := c.tasks.DeleteSubTask(ctx.Request().Context(), user.ID, subTaskID); err != nil {
		return taskError(err)
	}

	return ctx.JSON(http.StatusOK, httpdto.NewEnvelope(http.StatusOK, "subtask deleted successfully", nil))
}

func taskError(err error) error {
	switch {
	case errors.Is(err, service.ErrTaskNotFound):
		return httpdto.NewAPIError(http.StatusNotFound, "task not found")
	case errors.Is(err, service.ErrSubTaskNotFound):
		return httpdto.NewAPIError(http.StatusNotFound, "subtask not found")
	case errors.Is(err, service.ErrAssigneeNotFound):
		return httpdto.NewAPIError(http.StatusBadRequest, "username does not exist")
	case errors.Is(err, service.ErrNoMembership):
		return httpdto.NewAPIError(http.StatusForbidden, "no membership for this project")
	case errors.Is(err, service.ErrInsufficientRole):
		return httpdto.NewAPIError(http.StatusForbidden, "you don't have access to perform this action")
	default:
		return err
	}
}
