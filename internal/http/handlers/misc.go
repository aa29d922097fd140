package handlers

import (
	"net/http"

	"github.com/labstack/echo/v5"
)

func (h *Handlers) HandleRoot(c *echo.Context) error {
	return c.Redirect(http.StatusSeeOther, "/activities")
}

func (h *Handlers) HandleHealthz(c *echo.Context) error {
	return c.String(http.StatusOK, "ok")
}
