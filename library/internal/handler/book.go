package handler

import (
	"net/http"

	"github.com/Astemirdum/library-catalog/library/internal/model"
	"github.com/Astemirdum/library-catalog/library/internal/service"
	"github.com/labstack/echo/v4"
)

func (h *Handler) ListBooks(c echo.Context) error {
	page, err := pageParams(c)
	if err != nil {
		return err
	}
	books, err := h.svc.ListBooks(c.Request().Context(), page)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, books)
}

func (h *Handler) SearchBooks(c echo.Context) error {
	query := c.QueryParam("query")
	if query == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "query is required")
	}
	page, err := pageParams(c)
	if err != nil {
		return err
	}
	books, err := h.svc.SearchBooks(c.Request().Context(), query, page)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, books)
}

func (h *Handler) ListAvailableBooks(c echo.Context) error {
	page, err := pageParams(c)
	if err != nil {
		return err
	}
	books, err := h.svc.ListAvailableBooks(c.Request().Context(), page)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, books)
}

func (h *Handler) ListBooksByCategory(c echo.Context) error {
	categoryID, err := idParam(c, "categoryId")
	if err != nil {
		return err
	}
	page, err := pageParams(c)
	if err != nil {
		return err
	}
	books, err := h.svc.ListBooksByCategory(c.Request().Context(), categoryID, page)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, books)
}

func (h *Handler) ListBooksByAuthor(c echo.Context) error {
	authorID, err := idParam(c, "authorId")
	if err != nil {
		return err
	}
	page, err := pageParams(c)
	if err != nil {
		return err
	}
	books, err := h.svc.ListBooksByAuthor(c.Request().Context(), authorID, page)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, books)
}

func (h *Handler) GetBook(c echo.Context) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	book, err := h.svc.GetBook(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, book)
}

func (h *Handler) CreateBook(c echo.Context) error {
	var in model.BookInput
	if err := bind(c, &in); err != nil {
		return err
	}
	book, err := h.svc.CreateBook(c.Request().Context(), in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, book)
}

func (h *Handler) UpdateBook(c echo.Context) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	var in model.BookInput
	if err := bind(c, &in); err != nil {
		return err
	}
	book, err := h.svc.UpdateBook(c.Request().Context(), id, in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, book)
}

func (h *Handler) DeleteBook(c echo.Context) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	if err := h.svc.DeleteBook(c.Request().Context(), id); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "Book deleted successfully"})
}

type coverResponse struct {
	Message  string `json:"message"`
	ImageURL string `json:"imageUrl"`
}

func (h *Handler) UploadCover(c echo.Context) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	fh, err := c.FormFile("file")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Please select a file to upload")
	}
	f, err := fh.Open()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Could not read uploaded file")
	}
	defer f.Close()

	book, err := h.svc.UploadCover(c.Request().Context(), id, service.CoverUpload{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get(echo.HeaderContentType),
		Size:        fh.Size,
		Body:        f,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, coverResponse{Message: "Cover uploaded successfully", ImageURL: book.CoverImageURL})
}

func (h *Handler) BookStatistics(c echo.Context) error {
	stats, err := h.svc.BookStatistics(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, stats)
}
