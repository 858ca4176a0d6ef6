package db_test

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"

	"frontdesk/internal/db"
	"frontdesk/internal/models"
	"frontdesk/internal/testutil"
)

func setupDB(t *testing.T) (*db.DB, func()) {
	t.Helper()
	if os.Getenv("TEST_DATABASE_URL") == "" {
		t.Skip("TEST_DATABASE_URL not set; skipping integration test")
	}
	return testutil.TestDB(t)
}

func TestCreateHelpRequest(t *testing.T) {
	database, cleanup := setupDB(t)
	defer cleanup()

	ctx := context.Background()
	conversationID := "conv-123"
	req, err := database.CreateHelpRequest(ctx, "What are your hours?", &conversationID, 2*time.Minute)
	if err != nil {
		t.Fatalf("CreateHelpRequest() error = %v", err)
	}

	if req.Question != "What are your hours?" {
		t.Errorf("Question = %q, want %q", req.Question, "What are your hours?")
	}
	if req.ConversationID == nil || *req.ConversationID != "conv-123" {
		t.Errorf("ConversationID = %v, want conv-123", req.ConversationID)
	}
	if req.Status != models.StatusPending {
		t.Errorf("Status = %q, want %q", req.Status, models.StatusPending)
	}
	if req.Notified {
		t.Error("Notified = true for new request, want false")
	}
	if req.TimeoutAt == nil {
		t.Fatal("TimeoutAt = nil, want deadline set")
	}
	ttl := req.TimeoutAt.Sub(req.CreatedAt)
	if ttl < time.Minute || ttl > 3*time.Minute {
		t.Errorf("deadline is %v after creation, want about 2m", ttl)
	}
}

func TestCreateHelpRequest_NoConversation(t *testing.T) {
	database, cleanup := setupDB(t)
	defer cleanup()

	req, err := database.CreateHelpRequest(context.Background(), "Do you deliver?", nil, 2*time.Minute)
	if err != nil {
		t.Fatalf("CreateHelpRequest() error = %v", err)
	}
	if req.ConversationID != nil {
		t.Errorf("ConversationID = %v, want nil", req.ConversationID)
	}
	if got, want := req.SessionToken(), "default_"+req.ID.String(); got != want {
		t.Errorf("SessionToken() = %q, want %q", got, want)
	}
}

func TestGetHelpRequestByID(t *testing.T) {
	database, cleanup := setupDB(t)
	defer cleanup()

	ctx := context.Background()
	id := testutil.CreateTestRequest(t, database, "Is there parking?", nil, 2*time.Minute)

	req, err := database.GetHelpRequestByID(ctx, uuid.MustParse(id))
	if err != nil {
		t.Fatalf("GetHelpRequestByID() error = %v", err)
	}
	if req.Question != "Is there parking?" {
		t.Errorf("Question = %q, want %q", req.Question, "Is there parking?")
	}

	_, err = database.GetHelpRequestByID(ctx, uuid.New())
	if !errors.Is(err, db.ErrRequestNotFound) {
		t.Errorf("GetHelpRequestByID() error = %v, want ErrRequestNotFound", err)
	}
}

func TestResolveHelpRequest(t *testing.T) {
	database, cleanup := setupDB(t)
	defer cleanup()

	ctx := context.Background()
	id := uuid.MustParse(testutil.CreateTestRequest(t, database, "Do you take cards?", nil, 2*time.Minute))

	req, err := database.ResolveHelpRequest(ctx, id, "Yes, all major cards")
	if err != nil {
		t.Fatalf("ResolveHelpRequest() error = %v", err)
	}
	if req.Status != models.StatusResolved {
		t.Errorf("Status = %q, want %q", req.Status, models.StatusResolved)
	}
	if req.Answer == nil || *req.Answer != "Yes, all major cards" {
		t.Errorf("Answer = %v, want %q", req.Answer, "Yes, all major cards")
	}
	if req.ResolvedAt == nil {
		t.Error("ResolvedAt = nil, want timestamp")
	}
}

func TestResolveHelpRequest_AlreadyResolved(t *testing.T) {
	database, cleanup := setupDB(t)
	defer cleanup()

	ctx := context.Background()
	id := uuid.MustParse(testutil.CreateTestRequest(t, database, "q", nil, 2*time.Minute))

	if _, err := database.ResolveHelpRequest(ctx, id, "first answer"); err != nil {
		t.Fatalf("ResolveHelpRequest() error = %v", err)
	}
	_, err := database.ResolveHelpRequest(ctx, id, "second answer")
	if !errors.Is(err, db.ErrRequestAlreadyTerminal) {
		t.Errorf("ResolveHelpRequest() error = %v, want ErrRequestAlreadyTerminal", err)
	}

	// The first answer stands.
	req, err := database.GetHelpRequestByID(ctx, id)
	if err != nil {
		t.Fatalf("GetHelpRequestByID() error = %v", err)
	}
	if req.Answer == nil || *req.Answer != "first answer" {
		t.Errorf("Answer = %v, want %q", req.Answer, "first answer")
	}
}

func TestResolveHelpRequest_Expired(t *testing.T) {
	database, cleanup := setupDB(t)
	defer cleanup()

	ctx := context.Background()
	id := uuid.MustParse(testutil.CreateTestRequest(t, database, "q", nil, -time.Minute))

	_, err := database.ResolveHelpRequest(ctx, id, "too late")
	if !errors.Is(err, db.ErrRequestTimedOut) {
		t.Fatalf("ResolveHelpRequest() error = %v, want ErrRequestTimedOut", err)
	}

	// The rejected resolve finishes the overdue expiry itself.
	req, err := database.GetHelpRequestByID(ctx, id)
	if err != nil {
		t.Fatalf("GetHelpRequestByID() error = %v", err)
	}
	if req.Status != models.StatusUnresolved {
		t.Errorf("Status = %q, want %q", req.Status, models.StatusUnresolved)
	}
	if req.UnresolvedReason == nil || *req.UnresolvedReason != models.ReasonSupervisorTimeout {
		t.Errorf("UnresolvedReason = %v, want %q", req.UnresolvedReason, models.ReasonSupervisorTimeout)
	}
}

func TestExpireHelpRequestIfDue(t *testing.T) {
	database, cleanup := setupDB(t)
	defer cleanup()

	ctx := context.Background()
	live := uuid.MustParse(testutil.CreateTestRequest(t, database, "live", nil, 2*time.Minute))
	overdue := uuid.MustParse(testutil.CreateTestRequest(t, database, "overdue", nil, -time.Minute))

	expired, err := database.ExpireHelpRequestIfDue(ctx, live)
	if err != nil {
		t.Fatalf("ExpireHelpRequestIfDue() error = %v", err)
	}
	if expired {
		t.Error("ExpireHelpRequestIfDue() expired a request before its deadline")
	}

	expired, err = database.ExpireHelpRequestIfDue(ctx, overdue)
	if err != nil {
		t.Fatalf("ExpireHelpRequestIfDue() error = %v", err)
	}
	if !expired {
		t.Error("ExpireHelpRequestIfDue() = false for overdue request, want true")
	}

	// Second expiry is a no-op.
	expired, err = database.ExpireHelpRequestIfDue(ctx, overdue)
	if err != nil {
		t.Fatalf("ExpireHelpRequestIfDue() error = %v", err)
	}
	if expired {
		t.Error("ExpireHelpRequestIfDue() = true on second call, want false")
	}
}

func TestExpireHelpRequestIfDue_ResolvedUntouched(t *testing.T) {
	database, cleanup := setupDB(t)
	defer cleanup()

	ctx := context.Background()
	id := uuid.MustParse(testutil.CreateTestRequest(t, database, "q", nil, 2*time.Minute))
	if _, err := database.ResolveHelpRequest(ctx, id, "answer"); err != nil {
		t.Fatalf("ResolveHelpRequest() error = %v", err)
	}

	expired, err := database.ExpireHelpRequestIfDue(ctx, id)
	if err != nil {
		t.Fatalf("ExpireHelpRequestIfDue() error = %v", err)
	}
	if expired {
		t.Error("ExpireHelpRequestIfDue() touched a resolved request")
	}

	req, _ := database.GetHelpRequestByID(ctx, id)
	if req.Status != models.StatusResolved {
		t.Errorf("Status = %q after expiry attempt, want %q", req.Status, models.StatusResolved)
	}
}

func TestSweepExpiredRequests(t *testing.T) {
	database, cleanup := setupDB(t)
	defer cleanup()

	ctx := context.Background()
	testutil.CreateTestRequest(t, database, "overdue one", nil, -time.Minute)
	testutil.CreateTestRequest(t, database, "overdue two", nil, -time.Minute)
	live := uuid.MustParse(testutil.CreateTestRequest(t, database, "live", nil, 2*time.Minute))

	n, err := database.SweepExpiredRequests(ctx)
	if err != nil {
		t.Fatalf("SweepExpiredRequests() error = %v", err)
	}
	if n != 2 {
		t.Errorf("SweepExpiredRequests() = %d, want 2", n)
	}

	n, err = database.SweepExpiredRequests(ctx)
	if err != nil {
		t.Fatalf("SweepExpiredRequests() error = %v", err)
	}
	if n != 0 {
		t.Errorf("second SweepExpiredRequests() = %d, want 0", n)
	}

	req, err := database.GetHelpRequestByID(ctx, live)
	if err != nil {
		t.Fatalf("GetHelpRequestByID() error = %v", err)
	}
	if req.Status != models.StatusPending {
		t.Errorf("live request status = %q after sweep, want %q", req.Status, models.StatusPending)
	}

	unresolved, err := database.GetRequestsByStatus(ctx, models.StatusUnresolved)
	if err != nil {
		t.Fatalf("GetRequestsByStatus() error = %v", err)
	}
	for _, r := range unresolved {
		if r.UnresolvedReason == nil || *r.UnresolvedReason != models.ReasonSupervisorTimeout {
			t.Errorf("swept request %s reason = %v, want %q", r.ID, r.UnresolvedReason, models.ReasonSupervisorTimeout)
		}
		if r.UnresolvedAt == nil {
			t.Errorf("swept request %s has no unresolved_at", r.ID)
		}
	}
}

func TestSweepExpiredRequests_NullDeadline(t *testing.T) {
	database, cleanup := setupDB(t)
	defer cleanup()

	ctx := context.Background()
	// A row with no deadline should never sit pending forever.
	var id uuid.UUID
	err := database.Pool.QueryRow(ctx, `
		INSERT INTO help_requests (question, timeout_at) VALUES ('no deadline', NULL) RETURNING id
	`).Scan(&id)
	if err != nil {
		t.Fatalf("insert error = %v", err)
	}

	expired, err := database.ExpireHelpRequestIfDue(ctx, id)
	if err != nil {
		t.Fatalf("ExpireHelpRequestIfDue() error = %v", err)
	}
	if !expired {
		t.Error("ExpireHelpRequestIfDue() = false for NULL deadline, want true")
	}
}

func TestGetRequestsByStatus_PendingExcludesOverdue(t *testing.T) {
	database, cleanup := setupDB(t)
	defer cleanup()

	ctx := context.Background()
	live := uuid.MustParse(testutil.CreateTestRequest(t, database, "live", nil, 2*time.Minute))
	testutil.CreateTestRequest(t, database, "overdue but unswept", nil, -time.Minute)

	pending, err := database.GetRequestsByStatus(ctx, models.StatusPending)
	if err != nil {
		t.Fatalf("GetRequestsByStatus() error = %v", err)
	}
	if len(pending) != 1 {
		t.Fatalf("pending count = %d, want 1", len(pending))
	}
	if pending[0].ID != live {
		t.Errorf("pending[0].ID = %s, want %s", pending[0].ID, live)
	}
}

func TestGetRequestHistory(t *testing.T) {
	database, cleanup := setupDB(t)
	defer cleanup()

	ctx := context.Background()
	testutil.CreateTestRequest(t, database, "first", nil, 2*time.Minute)
	time.Sleep(10 * time.Millisecond)
	testutil.CreateTestRequest(t, database, "second", nil, 2*time.Minute)
	time.Sleep(10 * time.Millisecond)
	third := uuid.MustParse(testutil.CreateTestRequest(t, database, "third", nil, 2*time.Minute))

	history, err := database.GetRequestHistory(ctx, 2)
	if err != nil {
		t.Fatalf("GetRequestHistory() error = %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("history length = %d, want 2", len(history))
	}
	if history[0].ID != third {
		t.Errorf("history[0].ID = %s, want newest request %s", history[0].ID, third)
	}
}

func TestGetRequestStats(t *testing.T) {
	database, cleanup := setupDB(t)
	defer cleanup()

	ctx := context.Background()
	testutil.CreateTestRequest(t, database, "pending", nil, 2*time.Minute)
	testutil.CreateTestRequest(t, database, "overdue", nil, -time.Minute)
	resolved := uuid.MustParse(testutil.CreateTestRequest(t, database, "resolved", nil, 2*time.Minute))
	if _, err := database.ResolveHelpRequest(ctx, resolved, "answer"); err != nil {
		t.Fatalf("ResolveHelpRequest() error = %v", err)
	}

	stats, err := database.GetRequestStats(ctx)
	if err != nil {
		t.Fatalf("GetRequestStats() error = %v", err)
	}
	// The overdue request counts as neither pending nor unresolved until swept.
	if stats.Pending != 1 {
		t.Errorf("Pending = %d, want 1", stats.Pending)
	}
	if stats.Resolved != 1 {
		t.Errorf("Resolved = %d, want 1", stats.Resolved)
	}

	if _, err := database.SweepExpiredRequests(ctx); err != nil {
		t.Fatalf("SweepExpiredRequests() error = %v", err)
	}
	stats, err = database.GetRequestStats(ctx)
	if err != nil {
		t.Fatalf("GetRequestStats() error = %v", err)
	}
	if stats.Unresolved != 1 {
		t.Errorf("Unresolved = %d after sweep, want 1", stats.Unresolved)
	}
}

func TestMarkRequestNotified(t *testing.T) {
	database, cleanup := setupDB(t)
	defer cleanup()

	ctx := context.Background()
	id := uuid.MustParse(testutil.CreateTestRequest(t, database, "q", nil, 2*time.Minute))

	if err := database.MarkRequestNotified(ctx, id); err != nil {
		t.Fatalf("MarkRequestNotified() error = %v", err)
	}
	req, err := database.GetHelpRequestByID(ctx, id)
	if err != nil {
		t.Fatalf("GetHelpRequestByID() error = %v", err)
	}
	if !req.Notified {
		t.Error("Notified = false after MarkRequestNotified, want true")
	}

	err = database.MarkRequestNotified(ctx, uuid.New())
	if !errors.Is(err, db.ErrRequestNotFound) {
		t.Errorf("MarkRequestNotified() error = %v, want ErrRequestNotFound", err)
	}
}
