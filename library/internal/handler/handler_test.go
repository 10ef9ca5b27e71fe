package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"github.com/Astemirdum/library-catalog/library/internal/errs"
	"github.com/Astemirdum/library-catalog/library/internal/handler"
	"github.com/Astemirdum/library-catalog/library/internal/model"
	"github.com/Astemirdum/library-catalog/library/internal/service"
	"github.com/Astemirdum/library-catalog/pkg/auth"
	"github.com/golang/mock/gomock"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	service_mocks "github.com/Astemirdum/library-catalog/library/internal/handler/mocks"
)

var fixedNow = time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

type testEnv struct {
	svc    *service_mocks.MockLibraryService
	router *echo.Echo
	tokens map[auth.Role]auth.Pair
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	c := gomock.NewController(t)
	svc := service_mocks.NewMockLibraryService(c)
	tm := auth.NewTokenManager(auth.Config{
		Secret:     "test",
		AccessTTL:  time.Hour,
		RefreshTTL: 2 * time.Hour,
		Issuer:     "library-catalog",
	})
	tokens := make(map[auth.Role]auth.Pair)
	for id, role := range []auth.Role{auth.RoleAdmin, auth.RoleLibrarian, auth.RoleStaff} {
		pair, err := tm.IssuePair(int64(id+1), strings.ToLower(string(role)), role)
		require.NoError(t, err)
		tokens[role] = pair
	}
	h := handler.New(svc, tm, zap.NewNop(), handler.WithClock(func() time.Time { return fixedNow }))
	return &testEnv{svc: svc, router: h.NewRouter(), tokens: tokens}
}

// do sends a JSON request authenticated as role; an empty role sends no token.
func (env *testEnv) do(method, target, body string, role auth.Role) *httptest.ResponseRecorder {
	var rd io.Reader = http.NoBody
	if body != "" {
		rd = strings.NewReader(body)
	}
	r := httptest.NewRequest(method, target, rd)
	r.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if role != "" {
		r.Header.Set(echo.HeaderAuthorization, "Bearer "+env.tokens[role].AccessToken)
	}
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, r)
	return w
}

type errorBody struct {
	ErrorCode   string            `json:"errorCode"`
	Message     string            `json:"message"`
	Status      int               `json:"status"`
	Timestamp   time.Time         `json:"timestamp"`
	Path        string            `json:"path"`
	FieldErrors map[string]string `json:"fieldErrors"`
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) errorBody {
	t.Helper()
	var body errorBody
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Equal(t, w.Code, body.Status)
	return body
}

func ptr[T any](v T) *T { return &v }

func TestHandler_Health(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	w := env.do(http.MethodGet, "/manage/health", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "OK", w.Body.String())
}

func TestHandler_BorrowBook(t *testing.T) {
	t.Parallel()
	type response struct {
		expectedCode int
		errorCode    string
		fieldErrors  map[string]string
	}
	type mockBehavior func(r *service_mocks.MockLibraryService)

	var tests = []struct {
		name         string
		body         string
		role         auth.Role
		mockBehavior mockBehavior
		response     response
	}{
		{
			name: "ok",
			body: `{"bookId":1,"memberId":1,"days":14}`,
			role: auth.RoleLibrarian,
			mockBehavior: func(r *service_mocks.MockLibraryService) {
				r.EXPECT().
					BorrowBook(gomock.Any(), model.BorrowRequest{BookID: 1, MemberID: 1, Days: ptr(14)}).
					DoAndReturn(func(ctx context.Context, req model.BorrowRequest) (model.BorrowRecord, error) {
						p, ok := auth.GetAuthContext(ctx)
						require.True(t, ok)
						require.Equal(t, int64(2), p.UserID)
						return model.BorrowRecord{
							ID:       10,
							BookID:   1,
							MemberID: 1,
							UserID:   2,
							DueDate:  model.DateOf(fixedNow).AddDays(14),
							Status:   model.StatusBorrowed,
						}, nil
					})
			},
			response: response{expectedCode: http.StatusCreated},
		},
		{
			name:         "err. days out of range",
			body:         `{"bookId":1,"memberId":1,"days":31}`,
			role:         auth.RoleAdmin,
			mockBehavior: func(r *service_mocks.MockLibraryService) {},
			response: response{
				expectedCode: http.StatusBadRequest,
				errorCode:    errs.CodeValidation,
				fieldErrors:  map[string]string{"days": "days cannot exceed 30"},
			},
		},
		{
			name:         "err. book required",
			body:         `{"memberId":1}`,
			role:         auth.RoleAdmin,
			mockBehavior: func(r *service_mocks.MockLibraryService) {},
			response: response{
				expectedCode: http.StatusBadRequest,
				errorCode:    errs.CodeValidation,
				fieldErrors:  map[string]string{"bookId": "bookId is required"},
			},
		},
		{
			name:         "err. malformed json",
			body:         `{"bookId":`,
			role:         auth.RoleAdmin,
			mockBehavior: func(r *service_mocks.MockLibraryService) {},
			response:     response{expectedCode: http.StatusBadRequest, errorCode: errs.CodeValidation},
		},
		{
			name: "err. book unavailable",
			body: `{"bookId":1,"memberId":1}`,
			role: auth.RoleAdmin,
			mockBehavior: func(r *service_mocks.MockLibraryService) {
				r.EXPECT().
					BorrowBook(gomock.Any(), model.BorrowRequest{BookID: 1, MemberID: 1}).
					Return(model.BorrowRecord{}, errs.ErrBookUnavailable)
			},
			response: response{expectedCode: http.StatusConflict, errorCode: errs.CodeBusiness},
		},
		{
			name:         "err. staff forbidden",
			body:         `{"bookId":1,"memberId":1}`,
			role:         auth.RoleStaff,
			mockBehavior: func(r *service_mocks.MockLibraryService) {},
			response:     response{expectedCode: http.StatusForbidden, errorCode: errs.CodeAuthorization},
		},
		{
			name:         "err. no token",
			body:         `{"bookId":1,"memberId":1}`,
			mockBehavior: func(r *service_mocks.MockLibraryService) {},
			response:     response{expectedCode: http.StatusUnauthorized, errorCode: errs.CodeAuthentication},
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			env := newTestEnv(t)
			tt.mockBehavior(env.svc)

			w := env.do(http.MethodPost, "/api/v1/borrow/book", tt.body, tt.role)

			require.Equal(t, tt.response.expectedCode, w.Code)
			if tt.response.errorCode == "" {
				var record model.BorrowRecord
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &record))
				require.Equal(t, model.StatusBorrowed, record.Status)
				require.Equal(t, "2024-03-15", record.DueDate.String())
				return
			}
			body := decodeError(t, w)
			require.Equal(t, tt.response.errorCode, body.ErrorCode)
			require.Equal(t, "/api/v1/borrow/book", body.Path)
			require.Equal(t, tt.response.fieldErrors, body.FieldErrors)
		})
	}
}

func TestHandler_ListBooks(t *testing.T) {
	t.Parallel()
	var tests = []struct {
		name         string
		query        string
		mockBehavior func(r *service_mocks.MockLibraryService)
		expectedCode int
	}{
		{
			name:  "ok",
			query: "?page=1&size=5&sortBy=isbn&sortDirection=desc",
			mockBehavior: func(r *service_mocks.MockLibraryService) {
				r.EXPECT().
					ListBooks(gomock.Any(), model.PageRequest{Page: 1, Size: 5, SortBy: "isbn", Desc: true}).
					Return(model.NewPage([]model.Book{{ID: 1, Title: "Dune", ISBN: "9780441013593"}}, model.PageRequest{Page: 1, Size: 5}, 6), nil)
			},
			expectedCode: http.StatusOK,
		},
		{
			name:         "err. page invalid",
			query:        "?page=abc",
			mockBehavior: func(r *service_mocks.MockLibraryService) {},
			expectedCode: http.StatusBadRequest,
		},
		{
			name:         "err. sort direction invalid",
			query:        "?sortDirection=up",
			mockBehavior: func(r *service_mocks.MockLibraryService) {},
			expectedCode: http.StatusBadRequest,
		},
		{
			name:  "err. internal",
			query: "",
			mockBehavior: func(r *service_mocks.MockLibraryService) {
				r.EXPECT().
					ListBooks(gomock.Any(), model.PageRequest{}).
					Return(model.Page[model.Book]{}, errors.New("db internal"))
			},
			expectedCode: http.StatusInternalServerError,
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			env := newTestEnv(t)
			tt.mockBehavior(env.svc)

			w := env.do(http.MethodGet, "/api/v1/books"+tt.query, "", auth.RoleStaff)
			require.Equal(t, tt.expectedCode, w.Code)
			if w.Code != http.StatusOK {
				return
			}
			var page model.Page[model.Book]
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
			require.Equal(t, int64(6), page.TotalElements)
			require.Equal(t, 2, page.TotalPages)
			require.Len(t, page.Items, 1)
			require.Equal(t, "Dune", page.Items[0].Title)
		})
	}
}

func TestHandler_ErrorBody(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	env.svc.EXPECT().GetBook(gomock.Any(), int64(9)).Return(model.Book{}, errs.NotFound("Book", int64(9)))
	env.svc.EXPECT().GetBook(gomock.Any(), int64(10)).Return(model.Book{}, errors.New("connection reset"))

	w := env.do(http.MethodGet, "/api/v1/books/9", "", auth.RoleStaff)
	require.Equal(t, http.StatusNotFound, w.Code)
	body := decodeError(t, w)
	require.Equal(t, errs.CodeNotFound, body.ErrorCode)
	require.Equal(t, "Book not found with id: 9", body.Message)
	require.Equal(t, "/api/v1/books/9", body.Path)
	require.True(t, fixedNow.Equal(body.Timestamp))
	require.Nil(t, body.FieldErrors)

	w = env.do(http.MethodGet, "/api/v1/books/10", "", auth.RoleStaff)
	body = decodeError(t, w)
	require.Equal(t, errs.CodeInternal, body.ErrorCode)
	require.Equal(t, "An unexpected error occurred", body.Message)

	w = env.do(http.MethodGet, "/api/v1/books/zero", "", auth.RoleStaff)
	body = decodeError(t, w)
	require.Equal(t, http.StatusBadRequest, body.Status)
	require.Equal(t, "id is invalid", body.Message)
}

func TestHandler_BookRoles(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	body := `{"title":"Dune","isbn":"9780441013593"}`

	w := env.do(http.MethodPost, "/api/v1/books", body, auth.RoleStaff)
	require.Equal(t, http.StatusForbidden, w.Code)
	require.Equal(t, "Access denied", decodeError(t, w).Message)

	env.svc.EXPECT().
		CreateBook(gomock.Any(), model.BookInput{Title: "Dune", ISBN: "9780441013593"}).
		Return(model.Book{ID: 5, Title: "Dune", ISBN: "9780441013593", IsAvailable: true}, nil)
	w = env.do(http.MethodPost, "/api/v1/books", body, auth.RoleLibrarian)
	require.Equal(t, http.StatusCreated, w.Code)

	w = env.do(http.MethodDelete, "/api/v1/books/5", "", auth.RoleLibrarian)
	require.Equal(t, http.StatusForbidden, w.Code)

	env.svc.EXPECT().DeleteBook(gomock.Any(), int64(5)).Return(nil)
	w = env.do(http.MethodDelete, "/api/v1/books/5", "", auth.RoleAdmin)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, `{"message":"Book deleted successfully"}`, strings.Trim(w.Body.String(), "\n"))
}

func TestHandler_Refresh(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	refresh := env.tokens[auth.RoleAdmin].RefreshToken

	env.svc.EXPECT().
		Refresh(gomock.Any(), refresh).
		Return(model.LoginResponse{AccessToken: "a", RefreshToken: "r", TokenType: "Bearer", Username: "admin"}, nil)

	r := httptest.NewRequest(http.MethodPost, "/api/v1/auth/refresh", http.NoBody)
	r.Header.Set(echo.HeaderAuthorization, "Bearer "+refresh)
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, r)
	require.Equal(t, http.StatusOK, w.Code)

	var resp model.LoginResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, "admin", resp.Username)

	w = env.do(http.MethodPost, "/api/v1/auth/refresh", "", "")
	require.Equal(t, http.StatusUnauthorized, w.Code)
	require.Equal(t, "No Authorization Header", decodeError(t, w).Message)

	// a refresh token is not an access token
	r = httptest.NewRequest(http.MethodGet, "/api/v1/books", http.NoBody)
	r.Header.Set(echo.HeaderAuthorization, "Bearer "+refresh)
	w = httptest.NewRecorder()
	env.router.ServeHTTP(w, r)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestHandler_Login(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	env.svc.EXPECT().
		Login(gomock.Any(), model.LoginRequest{Username: "admin", Password: "bad"}).
		Return(model.LoginResponse{}, errs.ErrBadCredentials)

	w := env.do(http.MethodPost, "/api/v1/auth/login", `{"username":"admin","password":"bad"}`, "")
	require.Equal(t, http.StatusUnauthorized, w.Code)
	body := decodeError(t, w)
	require.Equal(t, errs.CodeAuthentication, body.ErrorCode)
	require.Equal(t, "invalid username or password", body.Message)

	w = env.do(http.MethodPost, "/api/v1/auth/login", `{"username":"admin"}`, "")
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Equal(t, map[string]string{"password": "password is required"}, decodeError(t, w).FieldErrors)
}

func TestHandler_UpdateOverdue(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	w := env.do(http.MethodPost, "/api/v1/borrow/update-overdue", "", auth.RoleLibrarian)
	require.Equal(t, http.StatusForbidden, w.Code)

	env.svc.EXPECT().UpdateOverdue(gomock.Any()).Return(int64(3), nil)
	w = env.do(http.MethodPost, "/api/v1/borrow/update-overdue", "", auth.RoleAdmin)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, `{"message":"Overdue status updated successfully","updatedCount":3}`, strings.Trim(w.Body.String(), "\n"))
}

func TestHandler_ListBorrows(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	env.svc.EXPECT().
		ListBorrows(gomock.Any(), model.BorrowFilter{Status: model.StatusOverdue}, model.PageRequest{Size: 20}).
		Return(model.Page[model.BorrowRecord]{}, nil)
	w := env.do(http.MethodGet, "/api/v1/borrow?status=overdue&size=20", "", auth.RoleLibrarian)
	require.Equal(t, http.StatusOK, w.Code)

	w = env.do(http.MethodGet, "/api/v1/borrow?status=LOST", "", auth.RoleLibrarian)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandler_CountActiveMembers(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	env.svc.EXPECT().CountActiveMembers(gomock.Any()).Return(int64(7), nil)
	w := env.do(http.MethodGet, "/api/v1/members/count/active", "", auth.RoleAdmin)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, `{"count":7}`, strings.Trim(w.Body.String(), "\n"))

	w = env.do(http.MethodGet, "/api/v1/members/count/active", "", auth.RoleStaff)
	require.Equal(t, http.StatusForbidden, w.Code)
}

func TestHandler_Users(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	w := env.do(http.MethodGet, "/api/v1/users", "", auth.RoleLibrarian)
	require.Equal(t, http.StatusForbidden, w.Code)

	env.svc.EXPECT().
		ListUsers(gomock.Any(), auth.RoleStaff).
		Return([]model.User{{ID: 3, Username: "staff", PasswordHash: "hash", Role: auth.RoleStaff}}, nil)
	w = env.do(http.MethodGet, "/api/v1/users?role=staff", "", auth.RoleAdmin)
	require.Equal(t, http.StatusOK, w.Code)
	require.NotContains(t, w.Body.String(), "hash")

	env.svc.EXPECT().
		DeleteUser(gomock.Any(), int64(1)).
		Return(errs.Business("You cannot delete your own account"))
	w = env.do(http.MethodDelete, "/api/v1/users/1", "", auth.RoleAdmin)
	require.Equal(t, http.StatusConflict, w.Code)
	require.Equal(t, errs.CodeBusiness, decodeError(t, w).ErrorCode)
}

func TestHandler_UploadCover(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	hdr := make(textproto.MIMEHeader)
	hdr.Set("Content-Disposition", `form-data; name="file"; filename="front.png"`)
	hdr.Set(echo.HeaderContentType, "image/png")
	part, err := mw.CreatePart(hdr)
	require.NoError(t, err)
	_, err = part.Write([]byte("png-bytes"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	env.svc.EXPECT().
		UploadCover(gomock.Any(), int64(4), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ int64, upload service.CoverUpload) (model.Book, error) {
			require.Equal(t, "front.png", upload.Filename)
			require.Equal(t, "image/png", upload.ContentType)
			require.Equal(t, int64(9), upload.Size)
			data, err := io.ReadAll(upload.Body)
			require.NoError(t, err)
			require.Equal(t, "png-bytes", string(data))
			return model.Book{ID: 4, CoverImageURL: "/uploads/covers/4/x.png"}, nil
		})

	r := httptest.NewRequest(http.MethodPost, "/api/v1/books/4/cover", &buf)
	r.Header.Set(echo.HeaderContentType, mw.FormDataContentType())
	r.Header.Set(echo.HeaderAuthorization, "Bearer "+env.tokens[auth.RoleLibrarian].AccessToken)
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, r)

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, `{"message":"Cover uploaded successfully","imageUrl":"/uploads/covers/4/x.png"}`, strings.Trim(w.Body.String(), "\n"))

	w = env.do(http.MethodPost, "/api/v1/books/4/upload-cover", "", auth.RoleLibrarian)
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Equal(t, "Please select a file to upload", decodeError(t, w).Message)
}
