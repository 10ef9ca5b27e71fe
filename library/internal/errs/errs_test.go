package errs

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"not found", NotFound("Book", 1), http.StatusNotFound, CodeNotFound},
		{"wrapped not found", errors.Wrap(NotFound("Member", 2), "borrow"), http.StatusNotFound, CodeNotFound},
		{"conflict", Conflict("isbn exists"), http.StatusConflict, CodeConflict},
		{"business", ErrBorrowLimit, http.StatusConflict, CodeBusiness},
		{"fmt wrapped business", fmt.Errorf("tx: %w", ErrAlreadyReturned), http.StatusConflict, CodeBusiness},
		{"validation", Validation("bad"), http.StatusBadRequest, CodeValidation},
		{"auth", ErrBadCredentials, http.StatusUnauthorized, CodeAuthentication},
		{"forbidden", ErrForbidden, http.StatusForbidden, CodeAuthorization},
		{"other", errors.New("boom"), http.StatusInternalServerError, CodeInternal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, code := Classify(tt.err)
			require.Equal(t, tt.status, status)
			require.Equal(t, tt.code, code)
		})
	}
}

func TestError(t *testing.T) {
	err := NotFound("Book", 5)
	require.Equal(t, "Book not found with id: 5", err.Error())
	require.ErrorIs(t, err, ErrNotFound)
	require.NotErrorIs(t, err, ErrConflict)
}
