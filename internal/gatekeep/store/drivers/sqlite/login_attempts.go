package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/aussiebroadwan/gatekeep/internal/gatekeep/domain"
	"github.com/aussiebroadwan/gatekeep/internal/gatekeep/store"
)

type loginAttemptsRepo struct {
	db *sql.DB
}

const attemptColumns = `id, raw_identity, software_family, operating_system, device_class,
	source_address, verdict, otp_code, otp_issued_at, otp_consumed_at, created_at`

func (r *loginAttemptsRepo) CreateAttempt(ctx context.Context, a domain.LoginAttempt) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO login_attempts (
			id, raw_identity, software_family, operating_system, device_class,
			source_address, verdict, otp_code, otp_issued_at, otp_consumed_at, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID,
		a.RawIdentity,
		a.Classification.SoftwareFamily,
		a.Classification.OperatingSystem,
		string(a.Classification.DeviceClass),
		a.SourceAddress,
		string(a.Verdict),
		mapOptionalString(a.OTPCode),
		mapOptionalTime(a.OTPIssuedAt),
		mapOptionalTime(a.OTPConsumedAt),
		a.CreatedAt,
	)
	return err
}

func (r *loginAttemptsRepo) GetAttemptByID(ctx context.Context, id string) (domain.LoginAttempt, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+attemptColumns+`
		FROM login_attempts
		WHERE id = ?`, id)

	return scanAttempt(row)
}

func (r *loginAttemptsRepo) AttachOTP(ctx context.Context, attemptID, code string, issuedAt time.Time) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE login_attempts
		SET otp_code = ?, otp_issued_at = ?, otp_consumed_at = NULL
		WHERE id = ?`,
		code, issuedAt, attemptID)
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}

// ConsumeOTP is a single conditional update so that two concurrent calls
// carrying the same code cannot both observe it as live: the subquery
// selects the newest unexpired holder and the update clears it in the same
// statement. RETURNING gives us the winner's id without a second read.
func (r *loginAttemptsRepo) ConsumeOTP(ctx context.Context, code string, notBefore, consumedAt time.Time) (string, error) {
	row := r.db.QueryRowContext(ctx, `
		UPDATE login_attempts
		SET otp_code = NULL, otp_consumed_at = ?
		WHERE id = (
			SELECT id FROM login_attempts
			WHERE otp_code = ? AND otp_issued_at > ?
			ORDER BY created_at DESC, id DESC
			LIMIT 1
		)
		RETURNING id`,
		consumedAt, code, notBefore)

	var id string
	if err := row.Scan(&id); err != nil {
		return "", mapNotFound(err)
	}
	return id, nil
}

func (r *loginAttemptsRepo) ListRecentAttempts(ctx context.Context, limit int) ([]domain.LoginAttempt, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+attemptColumns+`
		FROM login_attempts
		ORDER BY created_at DESC, id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var attempts []domain.LoginAttempt
	for rows.Next() {
		a, err := scanAttempt(rows)
		if err != nil {
			return nil, err
		}
		attempts = append(attempts, a)
	}
	return attempts, rows.Err()
}

func (r *loginAttemptsRepo) ClearExpiredOTPCodes(ctx context.Context, cutoff time.Time) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE login_attempts
		SET otp_code = NULL
		WHERE otp_code IS NOT NULL AND otp_issued_at <= ?`,
		cutoff)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAttempt(row rowScanner) (domain.LoginAttempt, error) {
	var (
		id, rawIdentity, family, os, device, source, verdict string
		otpCode                                              sql.NullString
		otpIssuedAt, otpConsumedAt                           sql.NullTime
		createdAt                                            time.Time
	)

	err := row.Scan(
		&id, &rawIdentity, &family, &os, &device,
		&source, &verdict, &otpCode, &otpIssuedAt, &otpConsumedAt, &createdAt,
	)
	if err != nil {
		return domain.LoginAttempt{}, mapNotFound(err)
	}

	return mapAttempt(id, rawIdentity, family, os, device, source, verdict,
		otpCode, otpIssuedAt, otpConsumedAt, createdAt), nil
}
