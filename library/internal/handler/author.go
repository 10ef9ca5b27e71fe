package handler

import (
	"net/http"

	"github.com/Astemirdum/library-catalog/library/internal/model"
	"github.com/labstack/echo/v4"
)

func (h *Handler) ListAuthors(c echo.Context) error {
	page, err := pageParams(c)
	if err != nil {
		return err
	}
	authors, err := h.svc.ListAuthors(c.Request().Context(), page)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, authors)
}

func (h *Handler) SearchAuthors(c echo.Context) error {
	query := c.QueryParam("query")
	if query == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "query is required")
	}
	authors, err := h.svc.SearchAuthors(c.Request().Context(), query)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, authors)
}

func (h *Handler) GetAuthor(c echo.Context) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	author, err := h.svc.GetAuthor(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, author)
}

func (h *Handler) CreateAuthor(c echo.Context) error {
	var in model.AuthorInput
	if err := bind(c, &in); err != nil {
		return err
	}
	author, err := h.svc.CreateAuthor(c.Request().Context(), in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, author)
}

func (h *Handler) UpdateAuthor(c echo.Context) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	var in model.AuthorInput
	if err := bind(c, &in); err != nil {
		return err
	}
	author, err := h.svc.UpdateAuthor(c.Request().Context(), id, in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, author)
}

func (h *Handler) DeleteAuthor(c echo.Context) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	if err := h.svc.DeleteAuthor(c.Request().Context(), id); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "Author deleted successfully"})
}
