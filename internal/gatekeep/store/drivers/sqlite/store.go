package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/aussiebroadwan/gatekeep/internal/gatekeep/domain"
	"github.com/aussiebroadwan/gatekeep/internal/gatekeep/store"

	_ "modernc.org/sqlite"
)

type Store struct {
	db  *sql.DB
	dsn string
}

func NewStore(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}

	// Enforce FKs
	if _, err := db.ExecContext(context.Background(), `PRAGMA foreign_keys = ON;`); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{db: db, dsn: dsn}, nil
}

func (s *Store) Close() error { return s.db.Close() }

// Ping verifies the database connection is still alive.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) LoginAttempts() store.LoginAttempts { return &loginAttemptsRepo{db: s.db} }

func mapNotFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return store.ErrNotFound
	}
	return err
}

func mapNullStringPtr(ns sql.NullString) *string {
	if ns.Valid {
		val := ns.String
		return &val
	}
	return nil
}

func mapNullTimePtr(nt sql.NullTime) *time.Time {
	if nt.Valid {
		val := nt.Time
		return &val
	}
	return nil
}

func mapOptionalTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{Valid: false}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func mapOptionalString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{Valid: false}
	}
	return sql.NullString{String: *s, Valid: true}
}

func mapAttempt(
	id, rawIdentity, family, os, device, source, verdict string,
	otpCode sql.NullString,
	otpIssuedAt, otpConsumedAt sql.NullTime,
	createdAt time.Time,
) domain.LoginAttempt {
	return domain.LoginAttempt{
		ID:          id,
		RawIdentity: rawIdentity,
		Classification: domain.ClientClassification{
			SoftwareFamily:  family,
			OperatingSystem: os,
			DeviceClass:     domain.DeviceClass(device),
		},
		SourceAddress: source,
		Verdict:       domain.Verdict(verdict),
		OTPCode:       mapNullStringPtr(otpCode),
		OTPIssuedAt:   mapNullTimePtr(otpIssuedAt),
		OTPConsumedAt: mapNullTimePtr(otpConsumedAt),
		CreatedAt:     createdAt,
	}
}
