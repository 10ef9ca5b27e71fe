package handler

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/Astemirdum/library-catalog/library/internal/errs"
	"github.com/Astemirdum/library-catalog/library/internal/model"
	"github.com/Astemirdum/library-catalog/pkg/auth"
	md "github.com/Astemirdum/library-catalog/pkg/middleware"
	"github.com/Astemirdum/library-catalog/pkg/validate"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

type Handler struct {
	svc    LibraryService
	tokens *auth.TokenManager
	log    *zap.Logger
	opts   options
}

type options struct {
	allowOrigins []string
	apiRPS       rate.Limit
	uploadPath   string
	uploadDir    string
	now          func() time.Time
}

type Option func(*options)

func WithAllowOrigins(origins []string) Option {
	return func(o *options) {
		if len(origins) > 0 {
			o.allowOrigins = origins
		}
	}
}

func WithRateLimit(rps float64) Option {
	return func(o *options) {
		if rps > 0 {
			o.apiRPS = rate.Limit(rps)
		}
	}
}

// WithStaticUploads serves files stored on local disk under path.
func WithStaticUploads(path, dir string) Option {
	return func(o *options) {
		o.uploadPath = path
		o.uploadDir = dir
	}
}

func WithClock(now func() time.Time) Option {
	return func(o *options) {
		o.now = now
	}
}

func New(svc LibraryService, tokens *auth.TokenManager, log *zap.Logger, opts ...Option) *Handler {
	h := &Handler{
		svc:    svc,
		tokens: tokens,
		log:    log.Named("handler"),
		opts: options{
			allowOrigins: []string{"*"},
			apiRPS:       100,
			now:          time.Now,
		},
	}
	for _, opt := range opts {
		opt(&h.opts)
	}
	return h
}

func (h *Handler) NewRouter() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = h.errorHandler
	e.Validator = validate.NewCustomValidator()

	const baseRPS = 10
	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		StackSize: 4 << 10, // 4 KB
	}))
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     h.opts.allowOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodOptions, http.MethodHead, http.MethodPut, http.MethodPatch, http.MethodPost, http.MethodDelete},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		AllowCredentials: true,
	}))

	base := e.Group("", md.NewRateLimiter(baseRPS))
	base.GET("/manage/health", h.Health)
	if h.opts.uploadDir != "" {
		base.Static(h.opts.uploadPath, h.opts.uploadDir)
	}

	api := e.Group("/api/v1",
		middleware.RequestLoggerWithConfig(md.RequestLoggerConfig(h.log)),
		middleware.RequestID(),
		md.NewRateLimiter(h.opts.apiRPS),
		md.ClientInfo,
	)

	api.POST("/auth/login", h.Login)
	api.POST("/auth/refresh", h.Refresh)

	var (
		authn   = md.JwtAuthentication(h.tokens)
		anyRole = md.RequireRoles(auth.RoleAdmin, auth.RoleLibrarian, auth.RoleStaff)
		staff   = md.RequireRoles(auth.RoleAdmin, auth.RoleLibrarian)
		admin   = md.RequireRoles(auth.RoleAdmin)
	)

	books := api.Group("/books", authn)
	books.GET("", h.ListBooks, anyRole)
	books.GET("/search", h.SearchBooks, anyRole)
	books.GET("/available", h.ListAvailableBooks, anyRole)
	books.GET("/statistics", h.BookStatistics, staff)
	books.GET("/category/:categoryId", h.ListBooksByCategory, anyRole)
	books.GET("/author/:authorId", h.ListBooksByAuthor, anyRole)
	books.GET("/:id", h.GetBook, anyRole)
	books.POST("", h.CreateBook, staff)
	books.PUT("/:id", h.UpdateBook, staff)
	books.POST("/:id/cover", h.UploadCover, staff)
	books.POST("/:id/upload-cover", h.UploadCover, staff)
	books.DELETE("/:id", h.DeleteBook, admin)

	authors := api.Group("/authors", authn)
	authors.GET("", h.ListAuthors, anyRole)
	authors.GET("/search", h.SearchAuthors, anyRole)
	authors.GET("/:id", h.GetAuthor, anyRole)
	authors.POST("", h.CreateAuthor, staff)
	authors.PUT("/:id", h.UpdateAuthor, staff)
	authors.DELETE("/:id", h.DeleteAuthor, admin)

	categories := api.Group("/categories", authn)
	categories.GET("", h.ListCategories, anyRole)
	categories.GET("/tree", h.CategoryTree, anyRole)
	categories.GET("/:id", h.GetCategory, anyRole)
	categories.GET("/:id/children", h.ListChildCategories, anyRole)
	categories.POST("", h.CreateCategory, staff)
	categories.PUT("/:id", h.UpdateCategory, staff)
	categories.DELETE("/:id", h.DeleteCategory, admin)

	publishers := api.Group("/publishers", authn)
	publishers.GET("", h.ListPublishers, anyRole)
	publishers.GET("/search", h.SearchPublishers, anyRole)
	publishers.GET("/:id", h.GetPublisher, anyRole)
	publishers.POST("", h.CreatePublisher, staff)
	publishers.PUT("/:id", h.UpdatePublisher, staff)
	publishers.DELETE("/:id", h.DeletePublisher, admin)

	members := api.Group("/members", authn)
	members.GET("", h.ListMembers, staff)
	members.GET("/count/active", h.CountActiveMembers, staff)
	members.GET("/:id", h.GetMember, staff)
	members.POST("", h.CreateMember, staff)
	members.PUT("/:id", h.UpdateMember, staff)
	members.PUT("/:id/deactivate", h.DeactivateMember, staff)
	members.DELETE("/:id", h.DeleteMember, admin)

	borrow := api.Group("/borrow", authn)
	borrow.GET("", h.ListBorrows, staff)
	borrow.GET("/overdue", h.ListOverdue, staff)
	borrow.GET("/member/:memberId", h.ListMemberBorrows, staff)
	borrow.GET("/:id", h.GetBorrow, staff)
	borrow.POST("/book", h.BorrowBook, staff)
	borrow.PUT("/:id/return", h.ReturnBook, staff)
	borrow.POST("/update-overdue", h.UpdateOverdue, admin)

	users := api.Group("/users", authn, admin)
	users.GET("", h.ListUsers)
	users.GET("/:id", h.GetUser)
	users.POST("", h.CreateUser)
	users.PUT("/:id", h.UpdateUser)
	users.PUT("/:id/deactivate", h.DeactivateUser)
	users.DELETE("/:id", h.DeleteUser)

	activities := api.Group("/activities", authn, staff)
	activities.GET("", h.ListActivities)
	activities.GET("/user/:userId", h.ListUserActivities)

	return e
}

func (h *Handler) Health(c echo.Context) error {
	return c.String(http.StatusOK, "OK")
}

type errorResponse struct {
	ErrorCode   string            `json:"errorCode"`
	Message     string            `json:"message"`
	Status      int               `json:"status"`
	Timestamp   time.Time         `json:"timestamp"`
	Path        string            `json:"path"`
	FieldErrors map[string]string `json:"fieldErrors,omitempty"`
}

func (h *Handler) errorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	resp := errorResponse{
		Timestamp: h.opts.now().UTC(),
		Path:      c.Request().URL.Path,
	}

	var he *echo.HTTPError
	switch {
	case validate.FieldErrors(err) != nil:
		resp.Status, resp.ErrorCode = http.StatusBadRequest, errs.CodeValidation
		resp.Message = "Validation failed"
		resp.FieldErrors = validate.FieldErrors(err)
	case errors.As(err, &he):
		resp.Status, resp.ErrorCode = he.Code, errs.CodeForStatus(he.Code)
		resp.Message = fmt.Sprint(he.Message)
	default:
		resp.Status, resp.ErrorCode = errs.Classify(err)
		resp.Message = err.Error()
		if resp.Status == http.StatusInternalServerError {
			h.log.Error("unhandled error", zap.String("path", resp.Path), zap.Error(err))
			resp.Message = "An unexpected error occurred"
		}
	}

	if c.Request().Method == http.MethodHead {
		err = c.NoContent(resp.Status)
	} else {
		err = c.JSON(resp.Status, resp)
	}
	if err != nil {
		h.log.Error("write error response", zap.Error(err))
	}
}

// bind decodes the body into v and runs the struct validator.
func bind(c echo.Context, v any) error {
	if err := c.Bind(v); err != nil {
		var he *echo.HTTPError
		if errors.As(err, &he) {
			return echo.NewHTTPError(http.StatusBadRequest, "Malformed JSON request")
		}
		return err
	}
	return c.Validate(v)
}

func idParam(c echo.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, name+" is invalid")
	}
	return id, nil
}

func pageParams(c echo.Context) (model.PageRequest, error) {
	var (
		req model.PageRequest
		err error
	)
	if pageParam := c.QueryParam("page"); pageParam != "" {
		if req.Page, err = strconv.Atoi(pageParam); err != nil {
			return req, echo.NewHTTPError(http.StatusBadRequest, "page is invalid")
		}
	}
	if sizeParam := c.QueryParam("size"); sizeParam != "" {
		if req.Size, err = strconv.Atoi(sizeParam); err != nil {
			return req, echo.NewHTTPError(http.StatusBadRequest, "size is invalid")
		}
	}
	req.SortBy = c.QueryParam("sortBy")
	switch strings.ToUpper(c.QueryParam("sortDirection")) {
	case "", "ASC":
	case "DESC":
		req.Desc = true
	default:
		return req, echo.NewHTTPError(http.StatusBadRequest, "sortDirection is invalid")
	}
	return req, nil
}

type countResponse struct {
	Count int64 `json:"count"`
}

type messageResponse struct {
	Message string `json:"message"`
}
