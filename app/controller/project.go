package controller

import (
	"errors"
	"net/http"

	httpdto "github.com/taskhub-io/ms-go-taskhub/app/dto/http"
	"github.com/taskhub-io/ms-go-taskhub/app/middleware"
	"github.com/taskhub-io/ms-go-taskhub/app/service"

	"github.com/labstack/echo/v4"
)

type ProjectController struct {
	projects *service.ProjectService
}

func NewProjectController(projects *service.ProjectService) *ProjectController {
	return &ProjectController{projects: projects}
}

func (c *ProjectController) List(ctx echo.Context) error {
	user, ok := middleware.CurrentUser(ctx)
	if !ok {
		return httpdto.NewAPIError(http.StatusUnauthorized, "unauthorized access")
	}

	projects, err := c.projects.List(ctx.Request().Context(), user.ID)
	if err != nil {
		return err
	}

	return ctx.JSON(http.StatusOK, httpdto.NewEnvelope(
		http.StatusOK,
		"projects fetched successfully",
		httpdto.NewProjectListResponse(projects),
	))
}

func (c *ProjectController) Get(ctx echo.Context) error {
	projectID, err := idParam(ctx, "projectId")
	if err != nil {
		return err
	}

	project, err := c.projects.Get(ctx.Request().Context(), projectID)
	if err != nil {
		if errors.Is(err, service.ErrProjectNotFound) {
			return httpdto.NewAPIError(http.StatusNotFound, "project not found")
		}
		return err
	}

	return ctx.JSON(http.StatusOK, httpdto.NewEnvelope(
		http.StatusOK,
		"project fetched successfully",
		httpdto.NewProjectResponse(project),
	))
}

func (c *ProjectController) Create(ctx echo.Context) error {
	user, ok := middleware.CurrentUser(ctx)
	if !ok {
		return httpdto.NewAPIError(http.StatusUnauthorized, "unauthorized access")
	}

	var req httpdto.ProjectRequest
	if err := ctx.Bind(&req); err != nil {
		return httpdto.NewAPIError(http.StatusBadRequest, "invalid request body")
	}
	if err := ctx.Validate(&req); err != nil {
		return err
	}

	project, err := c.projects.Create(ctx.Request().Context(), user.ID, req.Name, req.Description)
	if err != nil {
		return err
	}

	return ctx.JSON(http.StatusCreated, httpdto.NewEnvelope(
		http.StatusCreated,
		"project created successfully",
		httpdto.NewProjectResponse(project),
	))
}

func (c *ProjectController) Update(ctx echo.Context) error {
	projectID, err := idParam(ctx, "projectId")
	if err != nil {
		return err
	}

	var req httpdto.ProjectRequest
	if err := ctx.Bind(&req); err != nil {
		return httpdto.NewAPIError(http.StatusBadRequest, "invalid request body")
	}
	if err := ctx.Validate(&req); err != nil {
		return err
	}

	project, err := c.projects.Update(ctx.Request().Context(), projectID, req.Name, req.Description)
	if err != nil {
		if errors.Is(err, service.ErrProjectNotFound) {
			return httpdto.NewAPIError(http.StatusNotFound, "project not found")
		}
		return err
	}

	return ctx.JSON(http.StatusOK, httpdto.NewEnvelope(
		http.StatusOK,
		"project updated successfully",
		httpdto.NewProjectResponse(project),
	))
}

func (c *ProjectController) Delete(ctx echo.Context) error {
	projectID, err := idParam(ctx, "projectId")
	if err != nil {
		return err
	}

	if err := c.projects.Delete(ctx.Request().Context(), projectID); err != nil {
		if errors.Is(err, service.ErrProjectNotFound) {
			return httpdto.NewAPIError(http.StatusNotFound, "project not found")
		}
		return err
	}

	return ctx.JSON(http.StatusOK, httpdto.NewEnvelope(http.StatusOK, "project deleted successfully", nil))
}

func (c *ProjectController) ListMembers(ctx echo.Context) error {
	projectID, err := idParam(ctx, "projectId")
	if err != nil {
		return err
	}

	members, err := c.projects.ListMembers(ctx.Request().Context(), projectID)
	if err != nil {
		return err
	}

	return ctx.JSON(http.StatusOK, httpdto.NewEnvelope(
		http.StatusOK,
		"project members fetched successfully",
		httpdto.NewMemberListResponse(members),
	))
}

func (c *ProjectController) AddMember(ctx echo.Context) error {
	projectID, err := idParam(ctx, "projectId")
	if err != nil {
		return err
	}

	var req httpdto.AddMemberRequest
	if err := ctx.Bind(&req); err != nil {
		return httpdto.NewAPIError(http.StatusBadRequest, "invalid request body")
	}
	if err := ctx.Validate(&req); err != nil {
		return err
	}

	member, err := c.projects.AddMember(ctx.Request().Context(), projectID, req.Username, req.Role)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			return httpdto.NewAPIError(http.StatusBadRequest, "username does not exist")
		}
		if errors.Is(err, service.ErrMemberExists) {
			return httpdto.NewAPIError(http.StatusConflict, "user is already a member of this project")
		}
		if errors.Is(err, service.ErrInvalidRole) {
			return httpdto.NewAPIError(http.StatusBadRequest, "role is not a valid project role")
		}
		return err
	}

	return ctx.JSON(http.StatusCreated, httpdto.NewEnvelope(
		http.StatusCreated,
		"member added to project successfully",
		map[string]any{"id": member.ID, "userId": member.UserID, "role": member.Role},
	))
}

func (c *ProjectController) UpdateMemberRole(ctx echo.Context) error {
	projectID, err := idParam(ctx, "projectId")
	if err != nil {
		return err
	}
	memberID, err := idParam(ctx, "memberId")
	if err != nil {
		return err
	}

	var req httpdto.UpdateMemberRoleRequest
	if err := ctx.Bind(&req); err != nil {
		return httpdto.NewAPIError(http.StatusBadRequest, "invalid request body")
	}
	if err := ctx.Validate(&req); err != nil {
		return err
	}

	member, err := c.projects.UpdateMemberRole(ctx.Request().Context(), projectID, memberID, req.Role)
	if err != nil {
		if errors.Is(err, service.ErrMemberNotFound) {
			return httpdto.NewAPIError(http.StatusNotFound, "project member not found")
		}
		if errors.Is(err, service.ErrInvalidRole) {
			return httpdto.NewAPIError(http.StatusBadRequest, "role is not a valid project role")
		}
		return err
	}

	return ctx.JSON(http.StatusOK, httpdto.NewEnvelope(
		http.StatusOK,
		"member role updated successfully",
		map[string]any{"id": member.ID, "userId": member.UserID, "role": member.Role},
	))
}

func (c *ProjectController) RemoveMember(ctx echo.Context) error {
	projectID, err := idParam(ctx, "projectId")
	if err != nil {
		return err
	}
	memberID, err := idParam(ctx, "memberId")
	if err != nil {
		return err
	}

	if err := c.projects.RemoveMember(ctx.Request().Context(), projectID, memberID); err != nil {
		if errors.Is(err, service.ErrMemberNotFound) {
			return httpdto.NewAPIError(http.StatusNotFound, "project member not found")
		}
		return err
	}

	return ctx.JSON(http.StatusOK, httpdto.NewEnvelope(http.StatusOK, "member removed from project successfully", nil))
}
