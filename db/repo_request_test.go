package db

import (
	"context"
	"testing"

	"Gin_postgres_redis_invent_tool/models"

	"github.com/google/uuid"
)

// A from-state list naming an edge the model table does not have is refused
// before any row is touched.
func TestTransitionTableEnforced(t *testing.T) {
	f := newWorkflow(t, 1)
	req := f.newRequest(t, 1)

	err := transitionRequest(f.repo.DB, req.ID,
		[]models.RequestStatus{models.StatusPending},
		models.StatusIssued, nil)
	if err == nil {
		t.Fatal("want error for an edge outside the transition table")
	}
	mustStatus(t, f.repo, req.ID, models.StatusPending)

	// terminal states have no outgoing edges at all
	err = transitionRequest(f.repo.DB, req.ID,
		[]models.RequestStatus{models.StatusCancelled},
		models.StatusPending, nil)
	if err == nil {
		t.Fatal("want error for a transition out of a terminal state")
	}
}

// Branch scope on request listings follows the product's branch; branchless
// products are visible everywhere.
func TestScopedRequestListing(t *testing.T) {
	ctx := context.Background()
	r := newTestRepo(t)
	reqtor := seedUser(t, r, models.RoleRequestor)

	nairobi := &models.Branch{ID: uuid.NewString(), Name: "Nairobi"}
	dar := &models.Branch{ID: uuid.NewString(), Name: "Dar es Salaam"}
	if err := r.CreateBranch(ctx, nairobi); err != nil {
		t.Fatalf("branch: %v", err)
	}
	if err := r.CreateBranch(ctx, dar); err != nil {
		t.Fatalf("branch: %v", err)
	}

	for _, branchID := range []*string{&nairobi.ID, &dar.ID, nil} {
		p := seedProduct(t, r, branchID)
		if _, err := r.CreateRequest(ctx, CreateRequestInput{
			ProductID: p.ID, RequestorID: reqtor.ID, Quantity: 1,
		}); err != nil {
			t.Fatalf("create request: %v", err)
		}
	}

	all, err := r.ListRequests(ctx, models.Scope{All: true}, RequestsQuery{})
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	if all.Total != 3 {
		t.Fatalf("all total = %d, want 3", all.Total)
	}

	scoped, err := r.ListRequests(ctx, models.Scope{BranchID: nairobi.ID}, RequestsQuery{})
	if err != nil {
		t.Fatalf("list scoped: %v", err)
	}
	// own branch + global
	if scoped.Total != 2 {
		t.Fatalf("scoped total = %d, want 2", scoped.Total)
	}

	n, err := r.PendingRequestCount(ctx, models.Scope{BranchID: nairobi.ID})
	if err != nil {
		t.Fatalf("pending count: %v", err)
	}
	if n != 2 {
		t.Fatalf("scoped pending = %d, want 2", n)
	}
}
