package response

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zaptest"

	"user-access-api/internal/domain"
)

func TestResolve(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code int
		msg  string
	}{
		{"validation", fmt.Errorf("%w: bad", domain.ErrValidation), 400, "Validation failed: bad"},
		{"no token", domain.ErrAuthenticationRequired, 401, "Authentication required"},
		{"bad token", fmt.Errorf("%w: expired", domain.ErrInvalidToken), 401, "Authentication failed"},
		{"not owner", domain.ErrNotOwnerOrAdmin, 403, "You can only modify your own profile unless you are an admin"},
		{"role change", domain.ErrRoleChangeNeedAdmin, 403, "Only admins can change user roles"},
		{"forbidden", domain.ErrForbidden, 403, "Forbidden"},
		{"missing", domain.ErrNotFound, 404, "User not found"},
		{"conflict", domain.ErrEmailConflict, 409, "Email already in use"},
		{"deadline", context.DeadlineExceeded, 504, "Request timeout"},
		{"unknown", errors.New("dial tcp: connection refused"), 500, "internal server error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, out := Resolve(tt.err)
			assert.Equal(t, tt.code, code)
			assert.Equal(t, tt.code, out.Code)
			assert.Equal(t, tt.msg, out.Message)
		})
	}
}

func TestFail_HidesInternalError(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/users", nil)

	Fail(c, zaptest.NewLogger(t), errors.New("pq: password authentication failed for user app"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"code":500,"message":"internal server error"}`, rec.Body.String())
}

func TestOK_MergesPayload(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)

	OK(c, "Users retrieved successfully", gin.H{"users": []int{}, "count": 0})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message":"Users retrieved successfully","users":[],"count":0}`, rec.Body.String())
}
