package db

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"frontdesk/internal/models"
)

// helpRequestColumns is the canonical column list scanned by scanHelpRequest.
const helpRequestColumns = `id, question, conversation_id, status, answer, unresolved_reason, notified, created_at, timeout_at, resolved_at, unresolved_at`

func scanHelpRequest(row pgx.Row) (*models.HelpRequest, error) {
	var req models.HelpRequest
	err := row.Scan(
		&req.ID, &req.Question, &req.ConversationID, &req.Status, &req.Answer,
		&req.UnresolvedReason, &req.Notified, &req.CreatedAt, &req.TimeoutAt,
		&req.ResolvedAt, &req.UnresolvedAt,
	)
	if err != nil {
		return nil, err
	}
	return &req, nil
}

// CreateHelpRequest inserts a new pending request with a deadline of now + ttl.
// The deadline is fixed at creation and never extended.
func (d *DB) CreateHelpRequest(ctx context.Context, question string, conversationID *string, ttl time.Duration) (*models.HelpRequest, error) {
	query := `
		INSERT INTO help_requests (question, conversation_id, timeout_at)
		VALUES ($1, $2, NOW() + make_interval(secs => $3))
		RETURNING ` + helpRequestColumns
	return scanHelpRequest(d.Pool.QueryRow(ctx, query, question, conversationID, ttl.Seconds()))
}

// GetHelpRequestByID retrieves a request by its ID.
func (d *DB) GetHelpRequestByID(ctx context.Context, id uuid.UUID) (*models.HelpRequest, error) {
	query := `SELECT ` + helpRequestColumns + ` FROM help_requests WHERE id = $1`
	req, err := scanHelpRequest(d.Pool.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrRequestNotFound
	}
	if err != nil {
		return nil, err
	}
	return req, nil
}

// ResolveHelpRequest transitions a pending request to resolved with the given
// answer. The update is conditional on the current status and deadline, so a
// resolve racing a concurrent expiry (or another resolve) has exactly one
// winner. Returns ErrRequestTimedOut when the deadline has passed, even if the
// request was never explicitly expired, and ErrRequestAlreadyTerminal when the
// request was already resolved.
func (d *DB) ResolveHelpRequest(ctx context.Context, id uuid.UUID, answer string) (*models.HelpRequest, error) {
	query := `
		UPDATE help_requests
		SET status = $2, answer = $3, resolved_at = NOW(), notified = FALSE
		WHERE id = $1 AND status = $4 AND timeout_at IS NOT NULL AND timeout_at > NOW()
		RETURNING ` + helpRequestColumns
	req, err := scanHelpRequest(d.Pool.QueryRow(ctx, query, id, models.StatusResolved, answer, models.StatusPending))
	if err == nil {
		return req, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	// The conditional update matched nothing; fetch the row to say why.
	current, getErr := d.GetHelpRequestByID(ctx, id)
	if getErr != nil {
		return nil, getErr
	}
	switch current.Status {
	case models.StatusResolved:
		return nil, ErrRequestAlreadyTerminal
	case models.StatusUnresolved:
		return nil, ErrRequestTimedOut
	default:
		// Still nominally pending but past its deadline. Finish the expiry
		// the sweep has not gotten to yet, then reject.
		if _, expErr := d.ExpireHelpRequestIfDue(ctx, id); expErr != nil {
			return nil, expErr
		}
		return nil, ErrRequestTimedOut
	}
}

// ExpireHelpRequestIfDue transitions a pending request whose deadline has
// passed (or was never set) to unresolved. Idempotent: expiring an already
// terminal request reports false with no effect.
func (d *DB) ExpireHelpRequestIfDue(ctx context.Context, id uuid.UUID) (bool, error) {
	result, err := d.Pool.Exec(ctx, `
		UPDATE help_requests
		SET status = $2, unresolved_reason = $3, unresolved_at = NOW(), notified = FALSE
		WHERE id = $1 AND status = $4 AND (timeout_at IS NULL OR timeout_at <= NOW())
	`, id, models.StatusUnresolved, models.ReasonSupervisorTimeout, models.StatusPending)
	if err != nil {
		return false, err
	}
	return result.RowsAffected() > 0, nil
}

// SweepExpiredRequests expires every pending request whose deadline has
// passed. Called lazily at the head of read-heavy queries and periodically by
// the background sweeper; redundant sweeps are safe.
func (d *DB) SweepExpiredRequests(ctx context.Context) (int64, error) {
	result, err := d.Pool.Exec(ctx, `
		UPDATE help_requests
		SET status = $1, unresolved_reason = $2, unresolved_at = NOW(), notified = FALSE
		WHERE status = $3 AND (timeout_at IS NULL OR timeout_at <= NOW())
	`, models.StatusUnresolved, models.ReasonSupervisorTimeout, models.StatusPending)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

// GetRequestsByStatus returns requests in the given status, newest first.
// Pending results exclude requests whose deadline has passed even if the
// sweep has not caught them yet.
func (d *DB) GetRequestsByStatus(ctx context.Context, status string) ([]models.HelpRequest, error) {
	query := `SELECT ` + helpRequestColumns + ` FROM help_requests WHERE status = $1`
	if status == models.StatusPending {
		query += ` AND timeout_at > NOW()`
	}
	query += ` ORDER BY created_at DESC`

	rows, err := d.Pool.Query(ctx, query, status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectHelpRequests(rows)
}

// GetRequestHistory returns the most recent requests across all statuses,
// newest first, capped at limit.
func (d *DB) GetRequestHistory(ctx context.Context, limit int) ([]models.HelpRequest, error) {
	query := `SELECT ` + helpRequestColumns + ` FROM help_requests ORDER BY created_at DESC LIMIT $1`
	rows, err := d.Pool.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectHelpRequests(rows)
}

func collectHelpRequests(rows pgx.Rows) ([]models.HelpRequest, error) {
	var requests []models.HelpRequest
	for rows.Next() {
		var req models.HelpRequest
		if err := rows.Scan(
			&req.ID, &req.Question, &req.ConversationID, &req.Status, &req.Answer,
			&req.UnresolvedReason, &req.Notified, &req.CreatedAt, &req.TimeoutAt,
			&req.ResolvedAt, &req.UnresolvedAt,
		); err != nil {
			return nil, err
		}
		requests = append(requests, req)
	}
	return requests, rows.Err()
}

// GetRequestStats returns request counts by status. Pending counts only
// requests that have not passed their deadline.
func (d *DB) GetRequestStats(ctx context.Context) (*models.RequestStats, error) {
	var stats models.RequestStats
	err := d.Pool.QueryRow(ctx, `
		SELECT
			COUNT(*) FILTER (WHERE status = $1 AND timeout_at > NOW()),
			COUNT(*) FILTER (WHERE status = $2),
			COUNT(*) FILTER (WHERE status = $3)
		FROM help_requests
	`, models.StatusPending, models.StatusResolved, models.StatusUnresolved).Scan(
		&stats.Pending, &stats.Resolved, &stats.Unresolved,
	)
	if err != nil {
		return nil, err
	}
	return &stats, nil
}

// MarkRequestNotified records that the resolution was pushed to the live
// conversation. It does not change the request status.
func (d *DB) MarkRequestNotified(ctx context.Context, id uuid.UUID) error {
	result, err := d.Pool.Exec(ctx, `UPDATE help_requests SET notified = TRUE WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrRequestNotFound
	}
	return nil
}
