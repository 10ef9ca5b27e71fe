package handler

import (
	"net/http"

	"github.com/Astemirdum/library-catalog/library/internal/model"
	"github.com/labstack/echo/v4"
)

func (h *Handler) ListMembers(c echo.Context) error {
	page, err := pageParams(c)
	if err != nil {
		return err
	}
	members, err := h.svc.ListMembers(c.Request().Context(), page)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, members)
}

func (h *Handler) GetMember(c echo.Context) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	member, err := h.svc.GetMember(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, member)
}

func (h *Handler) CreateMember(c echo.Context) error {
	var in model.MemberInput
	if err := bind(c, &in); err != nil {
		return err
	}
	member, err := h.svc.CreateMember(c.Request().Context(), in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, member)
}

func (h *Handler) UpdateMember(c echo.Context) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	var in model.MemberInput
	if err := bind(c, &in); err != nil {
		return err
	}
	member, err := h.svc.UpdateMember(c.Request().Context(), id, in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, member)
}

func (h *Handler) DeleteMember(c echo.Context) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	if err := h.svc.DeleteMember(c.Request().Context(), id); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "Member deleted successfully"})
}

func (h *Handler) DeactivateMember(c echo.Context) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	member, err := h.svc.DeactivateMember(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, member)
}

func (h *Handler) CountActiveMembers(c echo.Context) error {
	n, err := h.svc.CountActiveMembers(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, countResponse{Count: n})
}
