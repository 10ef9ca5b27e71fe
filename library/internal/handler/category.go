package handler

import (
	"net/http"

	"github.com/Astemirdum/library-catalog/library/internal/model"
	"github.com/labstack/echo/v4"
)

func (h *Handler) ListCategories(c echo.Context) error {
	categories, err := h.svc.ListCategories(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, categories)
}

func (h *Handler) CategoryTree(c echo.Context) error {
	tree, err := h.svc.CategoryTree(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, tree)
}

func (h *Handler) GetCategory(c echo.Context) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	category, err := h.svc.GetCategory(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, category)
}

func (h *Handler) ListChildCategories(c echo.Context) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	children, err := h.svc.ListChildCategories(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, children)
}

func (h *Handler) CreateCategory(c echo.Context) error {
	var in model.CategoryInput
	if err := bind(c, &in); err != nil {
		return err
	}
	category, err := h.svc.CreateCategory(c.Request().Context(), in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, category)
}

func (h *Handler) UpdateCategory(c echo.Context) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	var in model.CategoryInput
	if err := bind(c, &in); err != nil {
		return err
	}
	category, err := h.svc.UpdateCategory(c.Request().Context(), id, in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, category)
}

func (h *Handler) DeleteCategory(c echo.Context) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	if err := h.svc.DeleteCategory(c.Request().Context(), id); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "Category deleted successfully"})
}
