package store

// schema is applied in order by Postgres.Migrate. Every statement is
// idempotent.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS bookings (
		id               UUID PRIMARY KEY,
		owner_id         TEXT NOT NULL,
		approved_editors TEXT[] NOT NULL DEFAULT '{}',
		type             TEXT NOT NULL,
		status           TEXT NOT NULL,
		doc              JSONB NOT NULL,
		created_at       TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at       TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS bookings_owner_id_idx ON bookings (owner_id)`,
	`CREATE INDEX IF NOT EXISTS bookings_created_at_idx ON bookings (created_at DESC)`,

	`CREATE TABLE IF NOT EXISTS booking_edit_requests (
		id           UUID PRIMARY KEY,
		booking_id   UUID NOT NULL,
		requester_id TEXT NOT NULL,
		owner_id     TEXT NOT NULL,
		status       TEXT NOT NULL DEFAULT 'pending',
		reason       TEXT,
		created_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at   TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS booking_edit_requests_one_pending
		ON booking_edit_requests (booking_id, requester_id) WHERE status = 'pending'`,
	`CREATE INDEX IF NOT EXISTS booking_edit_requests_owner_idx ON booking_edit_requests (owner_id)`,

	`CREATE TABLE IF NOT EXISTS notifications (
		id                      UUID PRIMARY KEY,
		user_id                 TEXT NOT NULL,
		type                    TEXT NOT NULL,
		title                   TEXT NOT NULL,
		message                 TEXT NOT NULL,
		booking_id              UUID NOT NULL,
		booking_edit_request_id UUID,
		requester_id            TEXT NOT NULL DEFAULT '',
		requester_name          TEXT NOT NULL DEFAULT '',
		is_read                 BOOLEAN NOT NULL DEFAULT false,
		metadata                JSONB NOT NULL DEFAULT '{}',
		created_at              TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS notifications_user_created_idx ON notifications (user_id, created_at DESC)`,

	`CREATE TABLE IF NOT EXISTS booking_activities (
		id         UUID PRIMARY KEY,
		booking_id UUID NOT NULL,
		user_id    TEXT NOT NULL,
		action     TEXT NOT NULL,
		details    JSONB,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS booking_activities_booking_idx ON booking_activities (booking_id, created_at DESC)`,
}
