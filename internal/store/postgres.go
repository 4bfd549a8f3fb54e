package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"traveldesk-backend/internal/models"
)

// Postgres stores every entity as a JSONB document next to the columns
// that are filtered or updated atomically (owner, editor set, status).
type Postgres struct {
	db           *pgxpool.Pool
	queryTimeout time.Duration
}

var _ Store = (*Postgres)(nil)

func NewPostgres(db *pgxpool.Pool, queryTimeout time.Duration) *Postgres {
	if queryTimeout <= 0 {
		queryTimeout = 5 * time.Second
	}
	return &Postgres{db: db, queryTimeout: queryTimeout}
}

// Migrate creates the tables and indexes if they do not exist yet
func (p *Postgres) Migrate(ctx context.Context) error {
	for i, stmt := range schema {
		if _, err := p.db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migration step %d: %w", i+1, err)
		}
	}
	return nil
}

func (p *Postgres) Ping(ctx context.Context) error { return p.db.Ping(ctx) }

func (p *Postgres) Close() { p.db.Close() }

func (p *Postgres) timeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, p.queryTimeout)
}

const bookingColumns = `id, owner_id, approved_editors, doc, created_at, updated_at`

func scanBooking(row pgx.Row) (*models.Booking, error) {
	var (
		b       models.Booking
		id      uuid.UUID
		owner   string
		editors []string
		doc     []byte
		created time.Time
		updated time.Time
	)
	if err := row.Scan(&id, &owner, &editors, &doc, &created, &updated); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if err := json.Unmarshal(doc, &b); err != nil {
		return nil, fmt.Errorf("decode booking %s: %w", id, err)
	}
	// columns are authoritative over the copy inside the document
	b.ID = id
	b.UserID = owner
	b.ApprovedEditors = editors
	if b.ApprovedEditors == nil {
		b.ApprovedEditors = []string{}
	}
	b.CreatedAt = created
	b.UpdatedAt = updated
	return &b, nil
}

func (p *Postgres) CreateBooking(ctx context.Context, b *models.Booking) error {
	ctx, cancel := p.timeout(ctx)
	defer cancel()

	doc, err := json.Marshal(b)
	if err != nil {
		return fmt.Errorf("encode booking: %w", err)
	}
	editors := b.ApprovedEditors
	if editors == nil {
		editors = []string{}
	}
	_, err = p.db.Exec(ctx, `
		INSERT INTO bookings (id, owner_id, approved_editors, type, status, doc, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6::jsonb, $7, $8)`,
		b.ID, b.UserID, editors, string(b.Type), string(b.Status), string(doc), b.CreatedAt, b.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrConflict
		}
		return fmt.Errorf("insert booking: %w", err)
	}
	return nil
}

func (p *Postgres) GetBooking(ctx context.Context, id uuid.UUID) (*models.Booking, error) {
	ctx, cancel := p.timeout(ctx)
	defer cancel()
	return scanBooking(p.db.QueryRow(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id = $1`, id))
}

func (p *Postgres) ListBookings(ctx context.Context, f BookingFilter) ([]models.Booking, error) {
	ctx, cancel := p.timeout(ctx)
	defer cancel()

	rows, err := p.db.Query(ctx, `
		SELECT `+bookingColumns+`
		  FROM bookings
		 WHERE ($1 = '' OR type = $1)
		   AND ($2 = '' OR status = $2)
		 ORDER BY created_at DESC`, string(f.Type), string(f.Status))
	if err != nil {
		return nil, fmt.Errorf("query bookings: %w", err)
	}
	defer rows.Close()

	out := make([]models.Booking, 0)
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate bookings: %w", err)
	}
	return out, nil
}

func (p *Postgres) UpdateBooking(ctx context.Context, b *models.Booking) error {
	ctx, cancel := p.timeout(ctx)
	defer cancel()

	doc, err := json.Marshal(b)
	if err != nil {
		return fmt.Errorf("encode booking: %w", err)
	}
	cmd, err := p.db.Exec(ctx, `
		UPDATE bookings
		   SET type = $2, status = $3, doc = $4::jsonb, updated_at = $5
		 WHERE id = $1`,
		b.ID, string(b.Type), string(b.Status), string(doc), b.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update booking: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (p *Postgres) DeleteBooking(ctx context.Context, id uuid.UUID) error {
	ctx, cancel := p.timeout(ctx)
	defer cancel()

	cmd, err := p.db.Exec(ctx, `DELETE FROM bookings WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete booking: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (p *Postgres) AddApprovedEditor(ctx context.Context, bookingID uuid.UUID, userID string) (*models.Booking, error) {
	ctx, cancel := p.timeout(ctx)
	defer cancel()

	// add-to-set: the array is only appended to when the id is absent
	return scanBooking(p.db.QueryRow(ctx, `
		UPDATE bookings
		   SET approved_editors = CASE
		           WHEN $2 = ANY(approved_editors) THEN approved_editors
		           ELSE array_append(approved_editors, $2)
		       END,
		       updated_at = CASE
		           WHEN $2 = ANY(approved_editors) THEN updated_at
		           ELSE now()
		       END
		 WHERE id = $1
		RETURNING `+bookingColumns, bookingID, userID))
}

const editRequestColumns = `id, booking_id, requester_id, owner_id, status, reason, created_at, updated_at`

func scanEditRequest(row pgx.Row) (*models.EditRequest, error) {
	var (
		r      models.EditRequest
		status string
		reason *string
	)
	if err := row.Scan(&r.ID, &r.BookingID, &r.RequesterID, &r.OwnerID, &status, &reason, &r.CreatedAt, &r.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	r.Status = models.EditRequestStatus(status)
	if reason != nil {
		r.Reason = *reason
	}
	return &r, nil
}

func (p *Postgres) CreateEditRequest(ctx context.Context, r *models.EditRequest) error {
	ctx, cancel := p.timeout(ctx)
	defer cancel()

	var reason *string
	if r.Reason != "" {
		reason = &r.Reason
	}
	_, err := p.db.Exec(ctx, `
		INSERT INTO booking_edit_requests (`+editRequestColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		r.ID, r.BookingID, r.RequesterID, r.OwnerID, string(r.Status), reason, r.CreatedAt, r.UpdatedAt)
	if err != nil {
		// the partial unique index only covers pending rows
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrConflict
		}
		return fmt.Errorf("insert edit request: %w", err)
	}
	return nil
}

func (p *Postgres) GetEditRequest(ctx context.Context, id uuid.UUID) (*models.EditRequest, error) {
	ctx, cancel := p.timeout(ctx)
	defer cancel()
	return scanEditRequest(p.db.QueryRow(ctx,
		`SELECT `+editRequestColumns+` FROM booking_edit_requests WHERE id = $1`, id))
}

func (p *Postgres) FindPendingEditRequest(ctx context.Context, bookingID uuid.UUID, requesterID string) (*models.EditRequest, error) {
	ctx, cancel := p.timeout(ctx)
	defer cancel()
	return scanEditRequest(p.db.QueryRow(ctx, `
		SELECT `+editRequestColumns+`
		  FROM booking_edit_requests
		 WHERE booking_id = $1 AND requester_id = $2 AND status = 'pending'
		 LIMIT 1`, bookingID, requesterID))
}

func (p *Postgres) ResolveEditRequest(ctx context.Context, id uuid.UUID, status models.EditRequestStatus) (*models.EditRequest, error) {
	ctx, cancel := p.timeout(ctx)
	defer cancel()

	r, err := scanEditRequest(p.db.QueryRow(ctx, `
		UPDATE booking_edit_requests
		   SET status = $2, updated_at = now()
		 WHERE id = $1 AND status = 'pending'
		RETURNING `+editRequestColumns, id, string(status)))
	if !errors.Is(err, ErrNotFound) {
		return r, err
	}

	// no row updated: either missing or already resolved
	var exists bool
	if err := p.db.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM booking_edit_requests WHERE id = $1)`, id,
	).Scan(&exists); err != nil {
		return nil, fmt.Errorf("check edit request: %w", err)
	}
	if exists {
		return nil, ErrConflict
	}
	return nil, ErrNotFound
}

func (p *Postgres) CreateNotification(ctx context.Context, n *models.Notification) error {
	ctx, cancel := p.timeout(ctx)
	defer cancel()

	metadata := n.Metadata
	if metadata == nil {
		metadata = map[string]any{}
	}
	metaJSON, err := json.Marshal(metadata)
	if err != nil {
		return fmt.Errorf("failed to marshal notification metadata: %w", err)
	}

	cmdTag, err := p.db.Exec(ctx, `
		INSERT INTO notifications (id, user_id, type, title, message, booking_id, booking_edit_request_id,
		                           requester_id, requester_name, is_read, metadata, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11::jsonb, $12)`,
		n.ID, n.UserID, string(n.Type), n.Title, n.Message, n.BookingID, n.BookingEditRequestID,
		n.RequesterID, n.RequesterName, n.IsRead, string(metaJSON), n.CreatedAt)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return fmt.Errorf("notification creation timeout: %w", err)
		}
		return fmt.Errorf("failed to insert notification: %w", err)
	}
	if cmdTag.RowsAffected() != 1 {
		log.Printf("Warning: Notification insert affected %d rows instead of 1 (user_id=%s, type=%s)",
			cmdTag.RowsAffected(), n.UserID, n.Type)
		return errors.New("unexpected number of rows affected")
	}
	return nil
}

func (p *Postgres) ListNotifications(ctx context.Context, userID string, limit int) ([]models.Notification, error) {
	ctx, cancel := p.timeout(ctx)
	defer cancel()

	rows, err := p.db.Query(ctx, `
		SELECT id, user_id, type, title, message, booking_id, booking_edit_request_id,
		       requester_id, requester_name, is_read, metadata, created_at
		  FROM notifications
		 WHERE user_id = $1
		 ORDER BY created_at DESC
		 LIMIT $2`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("query notifications: %w", err)
	}
	defer rows.Close()

	items := make([]models.Notification, 0, limit)
	for rows.Next() {
		var (
			n       models.Notification
			typ     string
			metaRaw []byte
		)
		if err := rows.Scan(&n.ID, &n.UserID, &typ, &n.Title, &n.Message, &n.BookingID, &n.BookingEditRequestID,
			&n.RequesterID, &n.RequesterName, &n.IsRead, &metaRaw, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		n.Type = models.NotificationType(typ)
		if len(metaRaw) > 0 && string(metaRaw) != "null" {
			if err := json.Unmarshal(metaRaw, &n.Metadata); err != nil {
				log.Printf("Warning: Failed to unmarshal notification metadata: %v (notification_id=%s)", err, n.ID)
				n.Metadata = nil
			}
		}
		if n.Metadata == nil {
			n.Metadata = map[string]any{}
		}
		items = append(items, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate notifications: %w", err)
	}
	return items, nil
}

func (p *Postgres) MarkNotificationsRead(ctx context.Context, userID string, ids []uuid.UUID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	ctx, cancel := p.timeout(ctx)
	defer cancel()

	// []pgtype.UUID encodes as uuid[] in every exec mode
	arg := make([]pgtype.UUID, len(ids))
	for i, id := range ids {
		arg[i] = pgtype.UUID{Bytes: id, Valid: true}
	}
	// only the caller's own notifications among ids are touched
	cmd, err := p.db.Exec(ctx,
		`UPDATE notifications SET is_read = true WHERE user_id = $1 AND id = ANY($2) AND is_read = false`,
		userID, arg)
	if err != nil {
		return 0, fmt.Errorf("mark notifications read: %w", err)
	}
	return cmd.RowsAffected(), nil
}

func (p *Postgres) MarkAllNotificationsRead(ctx context.Context, userID string) (int64, error) {
	ctx, cancel := p.timeout(ctx)
	defer cancel()

	cmd, err := p.db.Exec(ctx,
		`UPDATE notifications SET is_read = true WHERE user_id = $1 AND is_read = false`, userID)
	if err != nil {
		return 0, fmt.Errorf("mark all notifications read: %w", err)
	}
	return cmd.RowsAffected(), nil
}

func (p *Postgres) AppendActivity(ctx context.Context, a *models.BookingActivity) error {
	ctx, cancel := p.timeout(ctx)
	defer cancel()

	details, err := json.Marshal(a.Details)
	if err != nil {
		return fmt.Errorf("encode activity details: %w", err)
	}
	_, err = p.db.Exec(ctx, `
		INSERT INTO booking_activities (id, booking_id, user_id, action, details, created_at)
		VALUES ($1, $2, $3, $4, $5::jsonb, $6)`,
		a.ID, a.BookingID, a.UserID, string(a.Action), string(details), a.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert activity: %w", err)
	}
	return nil
}

func (p *Postgres) ListActivities(ctx context.Context, bookingID uuid.UUID) ([]models.BookingActivity, error) {
	ctx, cancel := p.timeout(ctx)
	defer cancel()

	rows, err := p.db.Query(ctx, `
		SELECT id, booking_id, user_id, action, details, created_at
		  FROM booking_activities
		 WHERE booking_id = $1
		 ORDER BY created_at DESC`, bookingID)
	if err != nil {
		return nil, fmt.Errorf("query activities: %w", err)
	}
	defer rows.Close()

	out := make([]models.BookingActivity, 0)
	for rows.Next() {
		var (
			a      models.BookingActivity
			action string
			raw    []byte
		)
		if err := rows.Scan(&a.ID, &a.BookingID, &a.UserID, &action, &raw, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan activity: %w", err)
		}
		a.Action = models.ActivityAction(action)
		details, err := models.DecodeActivityDetails(a.Action, raw)
		if err != nil {
			log.Printf("Warning: skipping undecodable activity details: %v (activity_id=%s)", err, a.ID)
			continue
		}
		a.Details = details
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate activities: %w", err)
	}
	return out, nil
}
