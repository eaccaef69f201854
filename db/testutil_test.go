package db

import (
	"context"
	"testing"

	"Gin_postgres_redis_invent_tool/models"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestRepo spins up an in-memory SQLite database with the full schema.
// One connection only: every pool connection would otherwise get its own
// private :memory: database.
func newTestRepo(t *testing.T) *Repo {
	t.Helper()
	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	if err := Migrate(gdb); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return NewRepo(gdb)
}

func seedUser(t *testing.T, r *Repo, role string) *models.User {
	t.Helper()
	u := &models.User{
		ID:          uuid.NewString(),
		Username:    role + "-" + uuid.NewString()[:8],
		DisplayName: role,
		Role:        role,
	}
	if err := r.CreateUser(context.Background(), u); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return u
}

func seedClient(t *testing.T, r *Repo) *models.Client {
	t.Helper()
	c := &models.Client{ID: uuid.NewString(), Name: "Acme Telecom"}
	if err := r.CreateClient(context.Background(), c); err != nil {
		t.Fatalf("seed client: %v", err)
	}
	return c
}

func seedProduct(t *testing.T, r *Repo, branchID *string) *models.Product {
	t.Helper()
	p := &models.Product{
		ID:       uuid.NewString(),
		Name:     "Teltonika FMB920",
		Category: "GPS Tracker",
		BranchID: branchID,
	}
	if err := r.CreateProduct(context.Background(), p); err != nil {
		t.Fatalf("seed product: %v", err)
	}
	return p
}

// seedUnits registers n available units and returns them in IMEI order.
func seedUnits(t *testing.T, r *Repo, productID string, n int) []models.Unit {
	t.Helper()
	rows := make([]UnitIntake, 0, n)
	for i := 0; i < n; i++ {
		rows = append(rows, UnitIntake{IMEI: "35600000000" + uuid.NewString()[:8]})
	}
	res, err := r.IntakeUnits(context.Background(), productID, rows)
	if err != nil {
		t.Fatalf("seed units: %v", err)
	}
	if res.Created != n {
		t.Fatalf("seed units: created %d, want %d", res.Created, n)
	}
	units, err := r.ListAvailableUnits(context.Background(), productID)
	if err != nil {
		t.Fatalf("list units: %v", err)
	}
	return units
}

func unitIDs(units []models.Unit) []string {
	ids := make([]string, 0, len(units))
	for _, u := range units {
		ids = append(ids, u.ID)
	}
	return ids
}

func mustAvailable(t *testing.T, r *Repo, productID string, want int64) {
	t.Helper()
	n, err := r.AvailableCount(context.Background(), productID)
	if err != nil {
		t.Fatalf("available count: %v", err)
	}
	if n != want {
		t.Fatalf("available count = %d, want %d", n, want)
	}
}

func mustStatus(t *testing.T, r *Repo, requestID string, want models.RequestStatus) {
	t.Helper()
	req, err := r.FindRequestByID(context.Background(), requestID)
	if err != nil {
		t.Fatalf("find request: %v", err)
	}
	if req.Status != want {
		t.Fatalf("request status = %q, want %q", req.Status, want)
	}
}
