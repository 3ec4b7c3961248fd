package controller

import (
	"fmt"
	"net/http"
	"strconv"

	httpdto "github.com/taskhub-io/ms-go-taskhub/app/dto/http"

	"github.com/labstack/echo/v4"
)

func idParam(ctx echo.Context, name string) (uint64, error) {
	id, err := strconv.ParseUint(ctx.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, httpdto.NewAPIError(http.StatusBadRequest, fmt.Sprintf("invalid %s", name))
	}
	return id, nil
}
