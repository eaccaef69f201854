package app

import (
	"Gin_postgres_redis_invent_tool/db"
	"Gin_postgres_redis_invent_tool/models"
	"Gin_postgres_redis_invent_tool/session"
	"net/http"

	"github.com/gin-gonic/gin"
)

const AppSessionCookie = "app_session"

// AuthRequired resolves the session cookie to a live user and stashes the
// principal plus its branch scope into the gin context (one DB hit per
// request).
func AuthRequired(appSess *session.AppSessionStore, repo *db.Repo) gin.HandlerFunc {
	return func(c *gin.Context) {
		ck, err := c.Request.Cookie(AppSessionCookie)
		if err != nil || ck.Value == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, H{"error": "unauthorized"})
			return
		}
		as, err := appSess.Get(c.Request.Context(), ck.Value)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, H{"error": "invalid session"})
			return
		}

		u, err := repo.FindUserByID(c.Request.Context(), as.UserID)
		if err != nil {
			_ = appSess.Delete(c.Request.Context(), ck.Value)
			c.AbortWithStatusJSON(http.StatusUnauthorized, H{"error": "unauthorized"})
			return
		}

		c.Set("userID", u.ID)
		c.Set("username", u.Username)
		c.Set("role", u.Role)
		c.Set("isAdmin", u.IsAdmin)
		c.Set("scope", models.ScopeFor(u))

		c.Next()
	}
}

// ClerkOnly gates the clerk side of the workflow（店员或以上）
func ClerkOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !principal(c).CanReview() {
			c.AbortWithStatusJSON(http.StatusForbidden, H{"error": "forbidden"})
			return
		}
		c.Next()
	}
}

// AdminOnly gates branch-admin decisions.
func AdminOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !principal(c).CanApprove() {
			c.AbortWithStatusJSON(http.StatusForbidden, H{"error": "forbidden"})
			return
		}
		c.Next()
	}
}

// principal rebuilds the role-bearing view of the user AuthRequired stashed,
// so the gates share the model's role logic.
func principal(c *gin.Context) *models.User {
	u := &models.User{}
	if v, ok := c.Get("role"); ok {
		u.Role, _ = v.(string)
	}
	if v, ok := c.Get("isAdmin"); ok {
		u.IsAdmin, _ = v.(bool)
	}
	return u
}

// ScopeFrom pulls the branch scope set by AuthRequired.
func ScopeFrom(c *gin.Context) models.Scope {
	if v, ok := c.Get("scope"); ok {
		if s, ok := v.(models.Scope); ok {
			return s
		}
	}
	return models.Scope{}
}

// UserID pulls the acting principal's id set by AuthRequired.
func UserID(c *gin.Context) string {
	v, _ := c.Get("userID")
	id, _ := v.(string)
	return id
}
