package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"Gin_postgres_redis_invent_tool/db"
	"Gin_postgres_redis_invent_tool/models"
	"Gin_postgres_redis_invent_tool/notify"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// recordingNotifier captures events so tests can assert what each handler
// emitted.
type recordingNotifier struct{ events []notify.Event }

func (r *recordingNotifier) Notify(_ context.Context, ev notify.Event) {
	r.events = append(r.events, ev)
}

func newTestSrv(t *testing.T) (*Srv, *recordingNotifier) {
	t.Helper()
	gin.SetMode(gin.TestMode)
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
	if err := db.Migrate(gdb); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	rec := &recordingNotifier{}
	return &Srv{Repo: db.NewRepo(gdb), Notify: rec}, rec
}

// testCtx builds a handler-level gin context with an optional JSON body.
func testCtx(t *testing.T, method, body string) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	if body != "" {
		c.Request = httptest.NewRequest(method, "/", strings.NewReader(body))
		c.Request.Header.Set("Content-Type", "application/json")
	} else {
		c.Request = httptest.NewRequest(method, "/", nil)
	}
	return c, w
}

func mustSeedUser(t *testing.T, s *Srv, role string) *models.User {
	t.Helper()
	u := &models.User{ID: uuid.NewString(), Username: role + "-" + uuid.NewString()[:8], Role: role}
	if err := s.Repo.CreateUser(context.Background(), u); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return u
}

func mustSeedProduct(t *testing.T, s *Srv, branchID *string) *models.Product {
	t.Helper()
	p := &models.Product{ID: uuid.NewString(), Name: "Quectel EC25", BranchID: branchID}
	if err := s.Repo.CreateProduct(context.Background(), p); err != nil {
		t.Fatalf("seed product: %v", err)
	}
	return p
}

// Every clerk-side transition toward approval notifies the requestor: the
// review claim and the selection submission each produce an event addressed
// to the request owner.
func TestReviewAndSelectionNotifyRequestor(t *testing.T) {
	ctx := context.Background()
	s, rec := newTestSrv(t)
	clerk := mustSeedUser(t, s, models.RoleClerk)
	reqtor := mustSeedUser(t, s, models.RoleRequestor)
	product := mustSeedProduct(t, s, nil)
	if _, err := s.Repo.IntakeUnits(ctx, product.ID, []db.UnitIntake{
		{IMEI: "356000000000101"}, {IMEI: "356000000000102"},
	}); err != nil {
		t.Fatalf("intake: %v", err)
	}
	req, err := s.Repo.CreateRequest(ctx, db.CreateRequestInput{
		ProductID: product.ID, RequestorID: reqtor.ID, Quantity: 2,
	})
	if err != nil {
		t.Fatalf("create request: %v", err)
	}

	sc := NewSelectionController(s)

	c, w := testCtx(t, http.MethodPost, "")
	c.Params = gin.Params{{Key: "id", Value: req.ID}}
	c.Set("userID", clerk.ID)
	sc.StartReview(c)
	if w.Code != http.StatusOK {
		t.Fatalf("start review status = %d: %s", w.Code, w.Body.String())
	}

	units, err := s.Repo.ListAvailableUnits(ctx, product.ID)
	if err != nil {
		t.Fatalf("list units: %v", err)
	}
	body, _ := json.Marshal(map[string][]string{"unitIds": {units[0].ID, units[1].ID}})
	c, w = testCtx(t, http.MethodPost, string(body))
	c.Params = gin.Params{{Key: "id", Value: req.ID}}
	c.Set("userID", clerk.ID)
	sc.SubmitSelection(c)
	if w.Code != http.StatusCreated {
		t.Fatalf("submit status = %d: %s", w.Code, w.Body.String())
	}

	if len(rec.events) != 2 {
		t.Fatalf("events = %d, want 2", len(rec.events))
	}
	review, submit := rec.events[0], rec.events[1]
	if review.EventType != notify.EventRequestUnderReview {
		t.Fatalf("first event = %q, want %q", review.EventType, notify.EventRequestUnderReview)
	}
	if review.NewStatus != string(models.StatusUnderReview) {
		t.Fatalf("first event new status = %q", review.NewStatus)
	}
	if submit.EventType != notify.EventRequestAwaitingApproval {
		t.Fatalf("second event = %q, want %q", submit.EventType, notify.EventRequestAwaitingApproval)
	}
	if submit.NewStatus != string(models.StatusWaitingApproval) {
		t.Fatalf("second event new status = %q", submit.NewStatus)
	}
	for _, ev := range rec.events {
		if ev.RecipientID != reqtor.ID {
			t.Fatalf("event %q addressed to %q, want requestor %q", ev.EventType, ev.RecipientID, reqtor.ID)
		}
	}
}

// A request is visible to its owner regardless of scope, and to staff only
// when their branch scope covers the product.
func TestGetRequestBranchVisibility(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestSrv(t)
	reqtor := mustSeedUser(t, s, models.RoleRequestor)
	clerk := mustSeedUser(t, s, models.RoleClerk)

	nairobi := &models.Branch{ID: uuid.NewString(), Name: "Nairobi"}
	dar := &models.Branch{ID: uuid.NewString(), Name: "Dar es Salaam"}
	if err := s.Repo.CreateBranch(ctx, nairobi); err != nil {
		t.Fatalf("branch: %v", err)
	}
	if err := s.Repo.CreateBranch(ctx, dar); err != nil {
		t.Fatalf("branch: %v", err)
	}
	product := mustSeedProduct(t, s, &nairobi.ID)
	req, err := s.Repo.CreateRequest(ctx, db.CreateRequestInput{
		ProductID: product.ID, RequestorID: reqtor.ID, Quantity: 1,
	})
	if err != nil {
		t.Fatalf("create request: %v", err)
	}

	rc := NewRequestController(s)

	// clerk in another branch does not see it
	c, w := testCtx(t, http.MethodGet, "")
	c.Params = gin.Params{{Key: "id", Value: req.ID}}
	c.Set("userID", clerk.ID)
	c.Set("scope", models.Scope{BranchID: dar.ID})
	rc.GetRequest(c)
	if w.Code != http.StatusNotFound {
		t.Fatalf("foreign clerk status = %d, want 404", w.Code)
	}

	// clerk in the owning branch does
	c, w = testCtx(t, http.MethodGet, "")
	c.Params = gin.Params{{Key: "id", Value: req.ID}}
	c.Set("userID", clerk.ID)
	c.Set("scope", models.Scope{BranchID: nairobi.ID})
	rc.GetRequest(c)
	if w.Code != http.StatusOK {
		t.Fatalf("own-branch clerk status = %d, want 200", w.Code)
	}

	// the owner always does, even with a foreign scope
	c, w = testCtx(t, http.MethodGet, "")
	c.Params = gin.Params{{Key: "id", Value: req.ID}}
	c.Set("userID", reqtor.ID)
	c.Set("scope", models.Scope{BranchID: dar.ID})
	rc.GetRequest(c)
	if w.Code != http.StatusOK {
		t.Fatalf("owner status = %d, want 200", w.Code)
	}
}
