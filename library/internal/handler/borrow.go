package handler

import (
	"net/http"
	"strings"

	"github.com/Astemirdum/library-catalog/library/internal/model"
	"github.com/labstack/echo/v4"
)

func (h *Handler) ListBorrows(c echo.Context) error {
	page, err := pageParams(c)
	if err != nil {
		return err
	}
	var filter model.BorrowFilter
	if status := c.QueryParam("status"); status != "" {
		filter.Status = model.BorrowStatus(strings.ToUpper(status))
		switch filter.Status {
		case model.StatusBorrowed, model.StatusReturned, model.StatusOverdue:
		default:
			return echo.NewHTTPError(http.StatusBadRequest, "status is invalid")
		}
	}
	records, err := h.svc.ListBorrows(c.Request().Context(), filter, page)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, records)
}

func (h *Handler) GetBorrow(c echo.Context) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	record, err := h.svc.GetBorrow(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, record)
}

func (h *Handler) ListMemberBorrows(c echo.Context) error {
	memberID, err := idParam(c, "memberId")
	if err != nil {
		return err
	}
	page, err := pageParams(c)
	if err != nil {
		return err
	}
	records, err := h.svc.ListMemberBorrows(c.Request().Context(), memberID, page)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, records)
}

func (h *Handler) ListOverdue(c echo.Context) error {
	records, err := h.svc.ListOverdue(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, records)
}

func (h *Handler) BorrowBook(c echo.Context) error {
	var req model.BorrowRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	record, err := h.svc.BorrowBook(c.Request().Context(), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, record)
}

func (h *Handler) ReturnBook(c echo.Context) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	record, err := h.svc.ReturnBook(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, record)
}

type overdueResponse struct {
	Message      string `json:"message"`
	UpdatedCount int64  `json:"updatedCount"`
}

func (h *Handler) UpdateOverdue(c echo.Context) error {
	n, err := h.svc.UpdateOverdue(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, overdueResponse{Message: "Overdue status updated successfully", UpdatedCount: n})
}
