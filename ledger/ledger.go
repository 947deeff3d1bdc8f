// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/danielhkuo/tuvoto/db"
)

var ErrDuplicateIdentity = errors.New("identity has already voted")

// Ballot is validated ballot content. Optional fields are nil when absent.
type Ballot struct {
	Candidate      string
	Country        string
	City           string
	Latitude       *float64
	Longitude      *float64
	DocumentNumber *string
	BirthYear      *int
}

// VoteRecord is one recorded vote
type VoteRecord struct {
	ID          string
	Identity    string
	Ballot      Ballot
	Origin      string
	SubmittedAt time.Time
}

// Ledger stores one vote per identity
type Ledger struct {
	db      *sql.DB
	dialect db.Dialect
	now     func() time.Time
}

func New(conn *sql.DB, dialect db.Dialect) *Ledger {
	return &Ledger{db: conn, dialect: dialect, now: time.Now}
}

// HasVoted reports whether a vote exists for identity
func (l *Ledger) HasVoted(ctx context.Context, identity string) (bool, error) {
	var exists bool
	err := l.db.QueryRowContext(ctx, l.dialect.Rebind(`
		SELECT EXISTS(SELECT 1 FROM vote WHERE identity = ?)
	`), identity).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check vote: %w", err)
	}
	return exists, nil
}

// CountByOrigin counts recorded votes whose origin matches exactly
func (l *Ledger) CountByOrigin(ctx context.Context, origin string) (int, error) {
	var n int
	err := l.db.QueryRowContext(ctx, l.dialect.Rebind(`
		SELECT COUNT(*) FROM vote WHERE origin = ?
	`), origin).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count votes by origin: %w", err)
	}
	return n, nil
}

// Record inserts the vote. The UNIQUE constraint on identity decides
// concurrent inserts; the loser gets ErrDuplicateIdentity.
func (l *Ledger) Record(ctx context.Context, identity string, ballot Ballot, origin string) (VoteRecord, error) {
	rec := VoteRecord{
		ID:          uuid.NewString(),
		Identity:    identity,
		Ballot:      ballot,
		Origin:      origin,
		SubmittedAt: l.now().UTC(),
	}

	_, err := l.db.ExecContext(ctx, l.dialect.Rebind(`
		INSERT INTO vote (id, identity, candidate, country, city, latitude, longitude,
			document_number, birth_year, origin, submitted_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`), rec.ID, identity, ballot.Candidate, ballot.Country, ballot.City,
		ballot.Latitude, ballot.Longitude, ballot.DocumentNumber, ballot.BirthYear,
		origin, rec.SubmittedAt)

	if db.IsUniqueViolation(err) {
		return VoteRecord{}, ErrDuplicateIdentity
	}
	if err != nil {
		return VoteRecord{}, fmt.Errorf("failed to insert vote: %w", err)
	}

	return rec, nil
}

// Get loads the vote recorded for identity, or sql.ErrNoRows
func (l *Ledger) Get(ctx context.Context, identity string) (VoteRecord, error) {
	var (
		rec       VoteRecord
		lat, lng  sql.NullFloat64
		doc       sql.NullString
		birthYear sql.NullInt64
	)
	err := l.db.QueryRowContext(ctx, l.dialect.Rebind(`
		SELECT id, identity, candidate, country, city, latitude, longitude,
			document_number, birth_year, origin, submitted_at
		FROM vote WHERE identity = ?
	`), identity).Scan(&rec.ID, &rec.Identity, &rec.Ballot.Candidate, &rec.Ballot.Country,
		&rec.Ballot.City, &lat, &lng, &doc, &birthYear, &rec.Origin, &rec.SubmittedAt)
	if err != nil {
		return VoteRecord{}, err
	}

	if lat.Valid {
		rec.Ballot.Latitude = &lat.Float64
	}
	if lng.Valid {
		rec.Ballot.Longitude = &lng.Float64
	}
	if doc.Valid {
		rec.Ballot.DocumentNumber = &doc.String
	}
	if birthYear.Valid {
		y := int(birthYear.Int64)
		rec.Ballot.BirthYear = &y
	}

	return rec, nil
}
