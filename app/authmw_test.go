package app

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"Gin_postgres_redis_invent_tool/models"

	"github.com/gin-gonic/gin"
)

func gateCtx(role string, isAdmin bool) (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	c.Set("role", role)
	c.Set("isAdmin", isAdmin)
	return c, w
}

func TestClerkOnly(t *testing.T) {
	cases := []struct {
		role    string
		isAdmin bool
		allowed bool
	}{
		{models.RoleRequestor, false, false},
		{models.RoleClerk, false, true},
		{models.RoleBranchAdmin, false, true},
		{models.RoleRequestor, true, true}, // global admin bypass
	}
	mw := ClerkOnly()
	for _, tc := range cases {
		c, w := gateCtx(tc.role, tc.isAdmin)
		mw(c)
		if got := !c.IsAborted(); got != tc.allowed {
			t.Errorf("ClerkOnly(role=%s admin=%v) allowed = %v, want %v", tc.role, tc.isAdmin, got, tc.allowed)
		}
		if !tc.allowed && w.Code != http.StatusForbidden {
			t.Errorf("ClerkOnly(role=%s) status = %d, want 403", tc.role, w.Code)
		}
	}
}

func TestAdminOnly(t *testing.T) {
	cases := []struct {
		role    string
		isAdmin bool
		allowed bool
	}{
		{models.RoleRequestor, false, false},
		{models.RoleClerk, false, false},
		{models.RoleBranchAdmin, false, true},
		{models.RoleClerk, true, true}, // global admin bypass
	}
	mw := AdminOnly()
	for _, tc := range cases {
		c, _ := gateCtx(tc.role, tc.isAdmin)
		mw(c)
		if got := !c.IsAborted(); got != tc.allowed {
			t.Errorf("AdminOnly(role=%s admin=%v) allowed = %v, want %v", tc.role, tc.isAdmin, got, tc.allowed)
		}
	}
}
