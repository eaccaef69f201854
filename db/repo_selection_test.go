package db

import (
	"context"
	"errors"
	"testing"

	"Gin_postgres_redis_invent_tool/models"
)

type workflowFixture struct {
	repo    *Repo
	clerk   *models.User
	admin   *models.User
	reqtor  *models.User
	client  *models.Client
	product *models.Product
	units   []models.Unit
}

func newWorkflow(t *testing.T, unitCount int) *workflowFixture {
	t.Helper()
	r := newTestRepo(t)
	f := &workflowFixture{
		repo:   r,
		clerk:  seedUser(t, r, models.RoleClerk),
		admin:  seedUser(t, r, models.RoleBranchAdmin),
		reqtor: seedUser(t, r, models.RoleRequestor),
		client: seedClient(t, r),
	}
	f.product = seedProduct(t, r, nil)
	f.units = seedUnits(t, r, f.product.ID, unitCount)
	return f
}

func (f *workflowFixture) newRequest(t *testing.T, qty int) *models.Request {
	t.Helper()
	req, err := f.repo.CreateRequest(context.Background(), CreateRequestInput{
		ProductID:   f.product.ID,
		RequestorID: f.reqtor.ID,
		ClientID:    &f.client.ID,
		Quantity:    qty,
	})
	if err != nil {
		t.Fatalf("create request: %v", err)
	}
	return req
}

// Scenario: 3 units in stock, request for 2, clerk selects 2, admin approves,
// clerk issues.
func TestSelectionApproveAndIssue(t *testing.T) {
	ctx := context.Background()
	f := newWorkflow(t, 3)
	req := f.newRequest(t, 2)

	if _, err := f.repo.StartReview(ctx, req.ID, f.clerk.ID); err != nil {
		t.Fatalf("start review: %v", err)
	}
	mustStatus(t, f.repo, req.ID, models.StatusUnderReview)

	sel, err := f.repo.SubmitSelection(ctx, SubmitSelectionInput{
		RequestID: req.ID,
		ClerkID:   f.clerk.ID,
		UnitIDs:   unitIDs(f.units[:2]),
	})
	if err != nil {
		t.Fatalf("submit selection: %v", err)
	}
	if sel.Status != models.SelectionPending {
		t.Fatalf("selection status = %q, want Pending", sel.Status)
	}
	if len(sel.Units) != 2 {
		t.Fatalf("selection has %d units, want 2", len(sel.Units))
	}
	mustStatus(t, f.repo, req.ID, models.StatusWaitingApproval)
	mustAvailable(t, f.repo, f.product.ID, 1)

	sel, err = f.repo.ResolveSelection(ctx, sel.ID, f.admin.ID, true)
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if sel.Status != models.SelectionApproved {
		t.Fatalf("selection status = %q, want Approved", sel.Status)
	}
	if sel.ReviewedBy == nil || *sel.ReviewedBy != f.admin.ID {
		t.Fatalf("reviewer not recorded")
	}
	mustStatus(t, f.repo, req.ID, models.StatusApproved)
	mustAvailable(t, f.repo, f.product.ID, 1) // approval itself touches no units

	issued, err := f.repo.IssueSelection(ctx, IssueInput{RequestID: req.ID, ActorID: f.clerk.ID})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if issued.Status != models.StatusIssued {
		t.Fatalf("request status = %q, want Issued", issued.Status)
	}
	if issued.DateIssued == nil {
		t.Fatal("date_issued not set")
	}

	recs, err := f.repo.ListIssuanceRecords(ctx, req.ID, 1, 50)
	if err != nil {
		t.Fatalf("list issuances: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("issuance records = %d, want 2", len(recs))
	}
	for _, rec := range recs {
		if rec.ClientID != f.client.ID {
			t.Fatalf("issuance client = %q, want %q", rec.ClientID, f.client.ID)
		}
	}
}

// Scenario: rejecting the selection releases the units and reopens the
// request for re-selection.
func TestSelectionRejectReopensRequest(t *testing.T) {
	ctx := context.Background()
	f := newWorkflow(t, 3)
	req := f.newRequest(t, 2)

	if _, err := f.repo.StartReview(ctx, req.ID, f.clerk.ID); err != nil {
		t.Fatalf("start review: %v", err)
	}
	sel, err := f.repo.SubmitSelection(ctx, SubmitSelectionInput{
		RequestID: req.ID, ClerkID: f.clerk.ID, UnitIDs: unitIDs(f.units[:2]),
	})
	if err != nil {
		t.Fatalf("submit selection: %v", err)
	}
	mustAvailable(t, f.repo, f.product.ID, 1)

	sel, err = f.repo.ResolveSelection(ctx, sel.ID, f.admin.ID, false)
	if err != nil {
		t.Fatalf("reject: %v", err)
	}
	if sel.Status != models.SelectionRejected {
		t.Fatalf("selection status = %q, want Rejected", sel.Status)
	}
	mustStatus(t, f.repo, req.ID, models.StatusPending)
	mustAvailable(t, f.repo, f.product.ID, 3)
}

// Scenario: selecting fewer units than requested is rejected outright with
// nothing reserved.
func TestSubmitSelectionQuantityMismatch(t *testing.T) {
	ctx := context.Background()
	f := newWorkflow(t, 3)
	req := f.newRequest(t, 5)

	if _, err := f.repo.StartReview(ctx, req.ID, f.clerk.ID); err != nil {
		t.Fatalf("start review: %v", err)
	}
	_, err := f.repo.SubmitSelection(ctx, SubmitSelectionInput{
		RequestID: req.ID, ClerkID: f.clerk.ID, UnitIDs: unitIDs(f.units),
	})
	if !errors.Is(err, ErrQuantityMismatch) {
		t.Fatalf("err = %v, want ErrQuantityMismatch", err)
	}
	mustStatus(t, f.repo, req.ID, models.StatusUnderReview)
	mustAvailable(t, f.repo, f.product.ID, 3)
}

func TestSubmitSelectionWrongProduct(t *testing.T) {
	ctx := context.Background()
	f := newWorkflow(t, 2)
	other := seedProduct(t, f.repo, nil)
	otherUnits := seedUnits(t, f.repo, other.ID, 1)

	req := f.newRequest(t, 2)
	if _, err := f.repo.StartReview(ctx, req.ID, f.clerk.ID); err != nil {
		t.Fatalf("start review: %v", err)
	}
	_, err := f.repo.SubmitSelection(ctx, SubmitSelectionInput{
		RequestID: req.ID,
		ClerkID:   f.clerk.ID,
		UnitIDs:   []string{f.units[0].ID, otherUnits[0].ID},
	})
	if !errors.Is(err, ErrUnitWrongProduct) {
		t.Fatalf("err = %v, want ErrUnitWrongProduct", err)
	}
	mustAvailable(t, f.repo, f.product.ID, 2)
	mustAvailable(t, f.repo, other.ID, 1)
}

// Concurrency property: two selections racing over an overlapping unit set —
// the first reservation wins, the second fails whole with nothing reserved.
func TestSubmitSelectionOverlapConflict(t *testing.T) {
	ctx := context.Background()
	f := newWorkflow(t, 3)
	req1 := f.newRequest(t, 2)
	req2 := f.newRequest(t, 2)

	if _, err := f.repo.StartReview(ctx, req1.ID, f.clerk.ID); err != nil {
		t.Fatalf("start review 1: %v", err)
	}
	if _, err := f.repo.StartReview(ctx, req2.ID, f.clerk.ID); err != nil {
		t.Fatalf("start review 2: %v", err)
	}

	if _, err := f.repo.SubmitSelection(ctx, SubmitSelectionInput{
		RequestID: req1.ID, ClerkID: f.clerk.ID, UnitIDs: unitIDs(f.units[:2]),
	}); err != nil {
		t.Fatalf("first submit: %v", err)
	}

	// overlaps on units[1]
	_, err := f.repo.SubmitSelection(ctx, SubmitSelectionInput{
		RequestID: req2.ID, ClerkID: f.clerk.ID, UnitIDs: unitIDs(f.units[1:3]),
	})
	if !errors.Is(err, ErrUnitUnavailable) {
		t.Fatalf("err = %v, want ErrUnitUnavailable", err)
	}
	// loser left nothing behind: units[2] still free, req2 still under review
	mustAvailable(t, f.repo, f.product.ID, 1)
	mustStatus(t, f.repo, req2.ID, models.StatusUnderReview)
}

// Idempotence: a second resolve on a terminal selection is a no-op error and
// never double-applies side effects.
func TestResolveSelectionTwice(t *testing.T) {
	ctx := context.Background()
	f := newWorkflow(t, 2)
	req := f.newRequest(t, 2)

	if _, err := f.repo.StartReview(ctx, req.ID, f.clerk.ID); err != nil {
		t.Fatalf("start review: %v", err)
	}
	sel, err := f.repo.SubmitSelection(ctx, SubmitSelectionInput{
		RequestID: req.ID, ClerkID: f.clerk.ID, UnitIDs: unitIDs(f.units),
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if _, err := f.repo.ResolveSelection(ctx, sel.ID, f.admin.ID, true); err != nil {
		t.Fatalf("first resolve: %v", err)
	}

	if _, err := f.repo.ResolveSelection(ctx, sel.ID, f.admin.ID, true); !errors.Is(err, ErrAlreadyResolved) {
		t.Fatalf("second resolve err = %v, want ErrAlreadyResolved", err)
	}
	// a flipped decision is refused the same way
	if _, err := f.repo.ResolveSelection(ctx, sel.ID, f.admin.ID, false); !errors.Is(err, ErrAlreadyResolved) {
		t.Fatalf("flipped resolve err = %v, want ErrAlreadyResolved", err)
	}
	mustStatus(t, f.repo, req.ID, models.StatusApproved)
	mustAvailable(t, f.repo, f.product.ID, 0)
}

func TestStartReviewRequiresPending(t *testing.T) {
	ctx := context.Background()
	f := newWorkflow(t, 2)
	req := f.newRequest(t, 1)

	if _, err := f.repo.StartReview(ctx, req.ID, f.clerk.ID); err != nil {
		t.Fatalf("start review: %v", err)
	}
	if _, err := f.repo.StartReview(ctx, req.ID, f.clerk.ID); !errors.Is(err, ErrStatusConflict) {
		t.Fatalf("err = %v, want ErrStatusConflict", err)
	}
}

// Cancelling a request that has a pending selection must release the
// reserved units.
func TestCancelReleasesReservation(t *testing.T) {
	ctx := context.Background()
	f := newWorkflow(t, 2)
	req := f.newRequest(t, 2)

	if _, err := f.repo.StartReview(ctx, req.ID, f.clerk.ID); err != nil {
		t.Fatalf("start review: %v", err)
	}
	sel, err := f.repo.SubmitSelection(ctx, SubmitSelectionInput{
		RequestID: req.ID, ClerkID: f.clerk.ID, UnitIDs: unitIDs(f.units),
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	mustAvailable(t, f.repo, f.product.ID, 0)

	cancelled, err := f.repo.CancelRequest(ctx, req.ID, f.reqtor.ID)
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if cancelled.Status != models.StatusCancelled {
		t.Fatalf("status = %q, want Cancelled", cancelled.Status)
	}
	mustAvailable(t, f.repo, f.product.ID, 2)

	got, err := f.repo.FindSelectionByID(ctx, sel.ID)
	if err != nil {
		t.Fatalf("find selection: %v", err)
	}
	if got.Status != models.SelectionRejected {
		t.Fatalf("selection status = %q, want Rejected", got.Status)
	}
}

func TestCancelAfterIssueRefused(t *testing.T) {
	ctx := context.Background()
	f := newWorkflow(t, 2)
	req := f.newRequest(t, 2)

	mustIssueRequest(t, f, req)

	if _, err := f.repo.CancelRequest(ctx, req.ID, f.reqtor.ID); !errors.Is(err, ErrStatusConflict) {
		t.Fatalf("err = %v, want ErrStatusConflict", err)
	}
}

func TestRejectRequestTerminal(t *testing.T) {
	ctx := context.Background()
	f := newWorkflow(t, 1)
	req := f.newRequest(t, 1)

	got, err := f.repo.RejectRequest(ctx, req.ID, f.admin.ID)
	if err != nil {
		t.Fatalf("reject: %v", err)
	}
	if got.Status != models.StatusRejected {
		t.Fatalf("status = %q, want Rejected", got.Status)
	}
	// terminal: no further clerk action possible
	if _, err := f.repo.StartReview(ctx, req.ID, f.clerk.ID); !errors.Is(err, ErrStatusConflict) {
		t.Fatalf("err = %v, want ErrStatusConflict", err)
	}
}

// mustIssueRequest drives a request through the full happy path.
func mustIssueRequest(t *testing.T, f *workflowFixture, req *models.Request) {
	t.Helper()
	ctx := context.Background()
	if _, err := f.repo.StartReview(ctx, req.ID, f.clerk.ID); err != nil {
		t.Fatalf("start review: %v", err)
	}
	sel, err := f.repo.SubmitSelection(ctx, SubmitSelectionInput{
		RequestID: req.ID, ClerkID: f.clerk.ID, UnitIDs: unitIDs(f.units[:req.Quantity]),
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if _, err := f.repo.ResolveSelection(ctx, sel.ID, f.admin.ID, true); err != nil {
		t.Fatalf("approve: %v", err)
	}
	if _, err := f.repo.IssueSelection(ctx, IssueInput{RequestID: req.ID, ActorID: f.clerk.ID}); err != nil {
		t.Fatalf("issue: %v", err)
	}
}
