package handlers

import (
	"encoding/json"
	"strings"

	"github.com/fleet-console/fleet-console/internal/http/viewmodels"
	"github.com/labstack/echo/v5"
)

const sessionKeyFlashToast = "flash.toast"

// pushToast stores toast in the session for the next rendered page. A later
// toast replaces an unread one.
func (h *Handlers) pushToast(c *echo.Context, toast viewmodels.ToastViewData) {
	if h.Sessions == nil {
		return
	}
	toast, ok := cleanToast(toast)
	if !ok {
		return
	}
	payload, err := json.Marshal(toast)
	if err != nil {
		return
	}
	h.Sessions.Put(c.Request().Context(), sessionKeyFlashToast, string(payload))
}

// popToast returns and clears the pending toast, if any.
func (h *Handlers) popToast(c *echo.Context) *viewmodels.ToastViewData {
	if h.Sessions == nil {
		return nil
	}
	raw := h.Sessions.PopString(c.Request().Context(), sessionKeyFlashToast)
	if raw == "" {
		return nil
	}
	var toast viewmodels.ToastViewData
	if err := json.Unmarshal([]byte(raw), &toast); err != nil {
		return nil
	}
	toast, ok := cleanToast(toast)
	if !ok {
		return nil
	}
	return &toast
}

func cleanToast(toast viewmodels.ToastViewData) (viewmodels.ToastViewData, bool) {
	toast.Title = strings.TrimSpace(toast.Title)
	toast.Description = strings.TrimSpace(toast.Description)
	switch category := strings.ToLower(strings.TrimSpace(toast.Category)); category {
	case "success", "error", "warning":
		toast.Category = category
	default:
		toast.Category = "info"
	}
	return toast, toast.Title != "" || toast.Description != ""
}

func (h *Handlers) flashSuccess(c *echo.Context, title string) {
	h.pushToast(c, viewmodels.ToastViewData{Category: "success", Title: title})
}

func (h *Handlers) flashError(c *echo.Context, title, description string) {
	h.pushToast(c, viewmodels.ToastViewData{Category: "error", Title: title, Description: description})
}
