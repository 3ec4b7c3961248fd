package controller

import (
	"database/sql"
	"net/http"

	httpdto "github.com/taskhub-io/ms-go-taskhub/app/dto/http"

	"github.com/labstack/echo/v4"
)

type HealthController struct {
	db *sql.DB
}

func NewHealthController(db *sql.DB) *HealthController {
	return &HealthController{db: db}
}

func (c *HealthController) Check(ctx echo.Context) error {
	if err := c.db.PingContext(ctx.Request().Context()); err != nil {
		return httpdto.NewAPIError(http.StatusServiceUnavailable, "database is not reachable")
	}

	return ctx.JSON(http.StatusOK, httpdto.NewEnvelope(http.StatusOK, "service is healthy", nil))
}
