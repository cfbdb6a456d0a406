package database

import (
	"context"
	"fmt"
)

// schema creates the tables and constraints the repositories expect. The
// partial unique index on requests is the storage-level guard against two
// concurrent PENDING requests for the same (tenant, property) pair.
const schema = `
CREATE TABLE IF NOT EXISTS users (
	id            TEXT PRIMARY KEY,
	name          TEXT NOT NULL,
	phone         TEXT NOT NULL UNIQUE,
	role          TEXT NOT NULL CHECK (role IN ('ADMIN', 'COMMISSIONER', 'LANDLORD', 'TENANT')),
	password_hash TEXT NOT NULL,
	national_id   TEXT NOT NULL DEFAULT '',
	verified      BOOLEAN NOT NULL DEFAULT FALSE,
	created_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS properties (
	id         TEXT PRIMARY KEY,
	title      TEXT NOT NULL,
	type       TEXT NOT NULL CHECK (type IN ('HOUSE', 'APARTMENT', 'PLOT', 'ROOM')),
	price      BIGINT NOT NULL CHECK (price >= 0),
	location   TEXT NOT NULL,
	rooms      INTEGER NOT NULL DEFAULT 0 CHECK (rooms >= 0),
	status     TEXT NOT NULL DEFAULT 'AVAILABLE' CHECK (status IN ('AVAILABLE', 'RENTED', 'SOLD')),
	verified   BOOLEAN NOT NULL DEFAULT FALSE,
	owner_id   TEXT NOT NULL REFERENCES users(id),
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS property_media (
	id          TEXT PRIMARY KEY,
	property_id TEXT NOT NULL REFERENCES properties(id) ON DELETE CASCADE,
	url         TEXT NOT NULL,
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS requests (
	id          TEXT PRIMARY KEY,
	tenant_id   TEXT NOT NULL REFERENCES users(id),
	property_id TEXT NOT NULL REFERENCES properties(id),
	admin_id    TEXT REFERENCES users(id),
	status      TEXT NOT NULL DEFAULT 'PENDING' CHECK (status IN ('PENDING', 'CONNECTED', 'COMPLETED')),
	message     TEXT NOT NULL DEFAULT '',
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE UNIQUE INDEX IF NOT EXISTS requests_one_pending_per_tenant_property
	ON requests (tenant_id, property_id) WHERE status = 'PENDING';

CREATE TABLE IF NOT EXISTS commissions (
	id              TEXT PRIMARY KEY,
	property_id     TEXT NOT NULL REFERENCES properties(id),
	commissioner_id TEXT NOT NULL REFERENCES users(id),
	amount          BIGINT NOT NULL CHECK (amount >= 0),
	fee             BIGINT NOT NULL CHECK (fee >= 0),
	created_at      TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS properties_created_at_idx ON properties (created_at DESC);
CREATE INDEX IF NOT EXISTS requests_created_at_idx ON requests (created_at DESC);
`

// Migrate applies the schema idempotently.
func (cp *ConnectionPool) Migrate(ctx context.Context) error {
	if _, err := cp.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	cp.logger.Info("database schema up to date")
	return nil
}
