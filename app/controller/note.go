package controller

import (
	"errors"
	"net/http"

	httpdto "github.com/taskhub-io/ms-go-taskhub/app/dto/http"
	"github.com/taskhub-io/ms-go-taskhub/app/middleware"
	"github.com/taskhub-io/ms-go-taskhub/app/service"

	"github.com/labstack/echo/v4"
)

type NoteController struct {
	notes *service.NoteService
}

func NewNoteController(notes *service.NoteService) *NoteController {
	return &NoteController{notes: notes}
}

func (c *NoteController) List(ctx echo.Context) error {
	user, ok := middleware.CurrentUser(ctx)
	if !ok {
		return httpdto.NewAPIError(http.StatusUnauthorized, "unauthorized access")
	}
	projectID, err := idParam(ctx, "projectId")
	if err != nil {
		return err
	}

	notes, err := c.notes.List(ctx.Request().Context(), projectID, user.ID)
	if err != nil {
		return err
	}

	return ctx.JSON(http.StatusOK, httpdto.NewEnvelope(
		http.StatusOK,
		"notes fetched successfully",
		httpdto.NewNoteListResponse(notes),
	))
}

func (c *NoteController) Get(ctx echo.Context) error {
	projectID, err := idParam(ctx, "projectId")
	if err != nil {
		return err
	}
	noteID, err := idParam(ctx, "noteId")
	if err != nil {
		return err
	}

	note, err := c.notes.Get(ctx.Request().Context(), projectID, noteID)
	if err != nil {
		if errors.Is(err, service.ErrNoteNotFound) {
			return httpdto.NewAPIError(http.StatusNotFound, "note not found")
		}
		return err
	}

	return ctx.JSON(http.StatusOK, httpdto.NewEnvelope(
		http.StatusOK,
		"note fetched successfully",
		httpdto.NewNoteResponse(note),
	))
}

func (c *NoteController) Create(ctx echo.Context) error {
	user, ok := middleware.CurrentUser(ctx)
	if !ok {
		return httpdto.NewAPIError(http.StatusUnauthorized, "unauthorized access")
	}
	projectID, err := idParam(ctx, "projectId")
	if err != nil {
		return err
	}

	var req httpdto.NoteRequest
	if err := ctx.Bind(&req); err != nil {
		return httpdto.NewAPIError(http.StatusBadRequest, "invalid request body")
	}
	if err := ctx.Validate(&req); err != nil {
		return err
	}

	note, err := c.notes.Create(ctx.Request().Context(), projectID, user.ID, req.Content)
	if err != nil {
		return err
	}

	return ctx.JSON(http.StatusCreated, httpdto.NewEnvelope(
		http.StatusCreated,
		"note created successfully",
		httpdto.NewNoteResponse(note),
	))
}

func (c *NoteController) Update(ctx echo.Context) error {
	projectID, err := idParam(ctx, "projectId")
	if err != nil {
		return err
	}
	noteID, err := idParam(ctx, "noteId")
	if err != nil {
		return err
	}

	var req httpdto.NoteRequest
	if err := ctx.Bind(&req); err != nil {
		return httpdto.NewAPIError(http.StatusBadRequest, "invalid request body")
	}
	if err := ctx.Validate(&req); err != nil {
		return err
	}

	note, err := c.notes.Update(ctx.Request().Context(), projectID, noteID, req.Content)
	if err != nil {
		if errors.Is(err, service.ErrNoteNotFound) {
			return httpdto.NewAPIError(http.StatusNotFound, "note not found")
		}
		return err
	}

	return ctx.JSON(http.StatusOK, httpdto.NewEnvelope(
		http.StatusOK,
		"note updated successfully",
		httpdto.NewNoteResponse(note),
	))
}

func (c *NoteController) Delete(ctx echo.Context) error {
	projectID, err := idParam(ctx, "projectId")
	if err != nil {
		return err
	}
	noteID, err := idParam(ctx, "noteId")
	if err != nil {
		return err
	}

	if err := c.notes.Delete(ctx.Request().Context(), projectID, noteID); err != nil {
		if errors.Is(err, service.ErrNoteNotFound) {
			return httpdto.NewAPIError(http.StatusNotFound, "note not found")
		}
		return err
	}

	return ctx.JSON(http.StatusOK, httpdto.NewEnvelope(http.StatusOK, "note deleted successfully", nil))
}
