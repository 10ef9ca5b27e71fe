package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

func (h *Handler) ListActivities(c echo.Context) error {
	page, err := pageParams(c)
	if err != nil {
		return err
	}
	activities, err := h.svc.ListActivities(c.Request().Context(), page)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, activities)
}

func (h *Handler) ListUserActivities(c echo.Context) error {
	userID, err := idParam(c, "userId")
	if err != nil {
		return err
	}
	page, err := pageParams(c)
	if err != nil {
		return err
	}
	activities, err := h.svc.ListUserActivities(c.Request().Context(), userID, page)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, activities)
}
