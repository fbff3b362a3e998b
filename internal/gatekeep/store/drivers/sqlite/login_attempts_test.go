package sqlite_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/gatekeep/internal/gatekeep/domain"
	"github.com/aussiebroadwan/gatekeep/internal/gatekeep/store"
	"github.com/aussiebroadwan/gatekeep/internal/gatekeep/store/drivers/sqlite"
	"github.com/aussiebroadwan/gatekeep/pkg/idx"
)

func newTestStore(t *testing.T) *sqlite.Store {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	require.NoError(t, st.ApplyMigrations())
	return st
}

func newAttempt(createdAt time.Time) domain.LoginAttempt {
	return domain.LoginAttempt{
		ID:          idx.NewAt(createdAt).String(),
		RawIdentity: "Mozilla/5.0 test",
		Classification: domain.ClientClassification{
			SoftwareFamily:  domain.FamilyChrome,
			OperatingSystem: "Windows",
			DeviceClass:     domain.DeviceDesktop,
		},
		SourceAddress: "203.0.113.7",
		Verdict:       domain.VerdictChallenge,
		CreatedAt:     createdAt,
	}
}

func TestCreateAndGetAttempt(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	a := newAttempt(time.Now().UTC().Truncate(time.Second))
	require.NoError(t, st.LoginAttempts().CreateAttempt(ctx, a))

	got, err := st.LoginAttempts().GetAttemptByID(ctx, a.ID)
	require.NoError(t, err)
	require.Equal(t, a.ID, got.ID)
	require.Equal(t, a.Classification, got.Classification)
	require.Equal(t, a.Verdict, got.Verdict)
	require.Nil(t, got.OTPCode)
	require.Nil(t, got.OTPConsumedAt)

	_, err = st.LoginAttempts().GetAttemptByID(ctx, "missing")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestAttachOTP(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	a := newAttempt(now)
	require.NoError(t, st.LoginAttempts().CreateAttempt(ctx, a))

	require.NoError(t, st.LoginAttempts().AttachOTP(ctx, a.ID, "123456", now))

	got, err := st.LoginAttempts().GetAttemptByID(ctx, a.ID)
	require.NoError(t, err)
	require.NotNil(t, got.OTPCode)
	require.Equal(t, "123456", *got.OTPCode)
	require.NotNil(t, got.OTPIssuedAt)

	t.Run("missing attempt", func(t *testing.T) {
		err := st.LoginAttempts().AttachOTP(ctx, "missing", "654321", now)
		require.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("supersedes previous code", func(t *testing.T) {
		require.NoError(t, st.LoginAttempts().AttachOTP(ctx, a.ID, "999999", now))

		got, err := st.LoginAttempts().GetAttemptByID(ctx, a.ID)
		require.NoError(t, err)
		require.Equal(t, "999999", *got.OTPCode)

		// The superseded code no longer matches anything.
		_, err = st.LoginAttempts().ConsumeOTP(ctx, "123456", now.Add(-time.Minute), now)
		require.ErrorIs(t, err, store.ErrNotFound)
	})
}

func TestConsumeOTP(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	a := newAttempt(now)
	require.NoError(t, st.LoginAttempts().CreateAttempt(ctx, a))
	require.NoError(t, st.LoginAttempts().AttachOTP(ctx, a.ID, "314159", now))

	id, err := st.LoginAttempts().ConsumeOTP(ctx, "314159", now.Add(-15*time.Minute), now)
	require.NoError(t, err)
	require.Equal(t, a.ID, id)

	got, err := st.LoginAttempts().GetAttemptByID(ctx, a.ID)
	require.NoError(t, err)
	require.Nil(t, got.OTPCode, "consumption clears the code")
	require.NotNil(t, got.OTPConsumedAt)

	// Exactly-once: the same code is gone now.
	_, err = st.LoginAttempts().ConsumeOTP(ctx, "314159", now.Add(-15*time.Minute), now)
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestConsumeOTPRespectsValidityWindow(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	a := newAttempt(now.Add(-time.Hour))
	require.NoError(t, st.LoginAttempts().CreateAttempt(ctx, a))
	require.NoError(t, st.LoginAttempts().AttachOTP(ctx, a.ID, "271828", now.Add(-16*time.Minute)))

	_, err := st.LoginAttempts().ConsumeOTP(ctx, "271828", now.Add(-15*time.Minute), now)
	require.ErrorIs(t, err, store.ErrNotFound)

	// The stale code is still attached; only verification refuses it.
	got, err := st.LoginAttempts().GetAttemptByID(ctx, a.ID)
	require.NoError(t, err)
	require.NotNil(t, got.OTPCode)
}

func TestConsumeOTPTieBreaksOnNewestAttempt(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	older := newAttempt(now.Add(-2 * time.Minute))
	newer := newAttempt(now.Add(-1 * time.Minute))
	require.NoError(t, st.LoginAttempts().CreateAttempt(ctx, older))
	require.NoError(t, st.LoginAttempts().CreateAttempt(ctx, newer))

	// Pathological collision: both attempts hold the same live code.
	require.NoError(t, st.LoginAttempts().AttachOTP(ctx, older.ID, "555555", now))
	require.NoError(t, st.LoginAttempts().AttachOTP(ctx, newer.ID, "555555", now))

	id, err := st.LoginAttempts().ConsumeOTP(ctx, "555555", now.Add(-15*time.Minute), now)
	require.NoError(t, err)
	require.Equal(t, newer.ID, id, "most recently created attempt wins")

	// The older holder is untouched and can still be consumed.
	id, err = st.LoginAttempts().ConsumeOTP(ctx, "555555", now.Add(-15*time.Minute), now)
	require.NoError(t, err)
	require.Equal(t, older.ID, id)
}

func TestListRecentAttempts(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	base := time.Now().UTC().Add(-time.Hour)

	var ids []string
	for i := range 5 {
		a := newAttempt(base.Add(time.Duration(i) * time.Minute))
		require.NoError(t, st.LoginAttempts().CreateAttempt(ctx, a))
		ids = append(ids, a.ID)
	}

	attempts, err := st.LoginAttempts().ListRecentAttempts(ctx, 3)
	require.NoError(t, err)
	require.Len(t, attempts, 3)
	require.Equal(t, ids[4], attempts[0].ID, "newest first")
	require.Equal(t, ids[3], attempts[1].ID)
	require.Equal(t, ids[2], attempts[2].ID)
}

func TestClearExpiredOTPCodes(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	stale := newAttempt(now.Add(-time.Hour))
	fresh := newAttempt(now)
	require.NoError(t, st.LoginAttempts().CreateAttempt(ctx, stale))
	require.NoError(t, st.LoginAttempts().CreateAttempt(ctx, fresh))
	require.NoError(t, st.LoginAttempts().AttachOTP(ctx, stale.ID, "111111", now.Add(-time.Hour)))
	require.NoError(t, st.LoginAttempts().AttachOTP(ctx, fresh.ID, "222222", now))

	require.NoError(t, st.LoginAttempts().ClearExpiredOTPCodes(ctx, now.Add(-15*time.Minute)))

	got, err := st.LoginAttempts().GetAttemptByID(ctx, stale.ID)
	require.NoError(t, err)
	require.Nil(t, got.OTPCode, "stale code cleared")

	got, err = st.LoginAttempts().GetAttemptByID(ctx, fresh.ID)
	require.NoError(t, err)
	require.NotNil(t, got.OTPCode, "live code untouched")
}
