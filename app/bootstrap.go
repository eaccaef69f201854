// app/bootstrap.go
package app

import (
	"context"
	"log"

	"Gin_postgres_redis_invent_tool/db"
	"Gin_postgres_redis_invent_tool/models"

	"github.com/google/uuid"
)

// BootstrapFirstAdmin creates the first branch admin so a fresh deployment
// is usable. No-op once any admin exists.
func BootstrapFirstAdmin(ctx context.Context, cfg Config, repo *db.Repo) {
	if cfg.BootstrapUser == "" {
		return
	}
	n, err := repo.CountAdmins(ctx)
	if err != nil {
		log.Printf("bootstrap: count admins: %v", err)
		return
	}
	if n > 0 {
		return
	}

	u := &models.User{
		ID:          uuid.NewString(),
		Username:    cfg.BootstrapUser,
		DisplayName: cfg.BootstrapUser,
		Role:        models.RoleBranchAdmin,
		IsAdmin:     true,
	}
	if err := repo.CreateUser(ctx, u); err != nil {
		log.Printf("bootstrap: create admin: %v", err)
		return
	}
	log.Printf("[BOOTSTRAP] created first branch admin %q (%s)", u.Username, u.ID)
}
