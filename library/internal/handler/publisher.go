package handler

import (
	"net/http"

	"github.com/Astemirdum/library-catalog/library/internal/model"
	"github.com/labstack/echo/v4"
)

func (h *Handler) ListPublishers(c echo.Context) error {
	publishers, err := h.svc.ListPublishers(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, publishers)
}

func (h *Handler) SearchPublishers(c echo.Context) error {
	name := c.QueryParam("name")
	if name == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "name is required")
	}
	publishers, err := h.svc.SearchPublishers(c.Request().Context(), name)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, publishers)
}

func (h *Handler) GetPublisher(c echo.Context) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	publisher, err := h.svc.GetPublisher(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, publisher)
}

func (h *Handler) CreatePublisher(c echo.Context) error {
	var in model.PublisherInput
	if err := bind(c, &in); err != nil {
		return err
	}
	publisher, err := h.svc.CreatePublisher(c.Request().Context(), in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, publisher)
}

func (h *Handler) UpdatePublisher(c echo.Context) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	var in model.PublisherInput
	if err := bind(c, &in); err != nil {
		return err
	}
	publisher, err := h.svc.UpdatePublisher(c.Request().Context(), id, in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, publisher)
}

func (h *Handler) DeletePublisher(c echo.Context) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	if err := h.svc.DeletePublisher(c.Request().Context(), id); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "Publisher deleted successfully"})
}
