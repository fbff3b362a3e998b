package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	httpapi "github.com/aussiebroadwan/gatekeep/internal/gatekeep/http"
	"github.com/aussiebroadwan/gatekeep/internal/gatekeep/service"
	"github.com/aussiebroadwan/gatekeep/internal/gatekeep/store/drivers/sqlite"
)

const (
	uaChromeDesktop = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	uaEdgeDesktop   = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36 Edg/120.0.0.0"
	uaFirefoxPhone  = "Mozilla/5.0 (Android 13; Mobile; rv:121.0) Gecko/121.0 Firefox/121.0"
	uaFirefoxLinux  = "Mozilla/5.0 (X11; Linux x86_64; rv:121.0) Gecko/20100101 Firefox/121.0"
)

type capturingNotifier struct {
	codes []string
}

func (c *capturingNotifier) SendOTP(_ context.Context, _, code string) error {
	c.codes = append(c.codes, code)
	return nil
}

type testGate struct {
	router   *httpapi.Router
	notifier *capturingNotifier
	svc      *service.LoginService
}

func newTestGate(t *testing.T, now time.Time) *testGate {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	notifier := &capturingNotifier{}
	clock := func() time.Time { return now }
	svc := &service.LoginService{
		Store: st,
		Challenges: &service.ChallengeService{
			Store:       st,
			Notifier:    notifier,
			Destination: "user@example.com",
			Now:         clock,
		},
		Now: clock,
	}

	router := httpapi.NewRouter("test", st, slog.Default())
	router.LoginService = svc
	router.ApplyRoutes()

	return &testGate{router: router, notifier: notifier, svc: svc}
}

func (g *testGate) login(t *testing.T, userAgent string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/login", nil)
	req.Header.Set("User-Agent", userAgent)
	req.RemoteAddr = "203.0.113.7:50000"

	rec := httptest.NewRecorder()
	g.router.ServeHTTP(rec, req)
	return rec
}

func (g *testGate) verify(t *testing.T, otp string) *httptest.ResponseRecorder {
	t.Helper()

	body, err := json.Marshal(map[string]string{"otp": otp})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/verify-otp", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	g.router.ServeHTTP(rec, req)
	return rec
}

func decodeLogin(t *testing.T, rec *httptest.ResponseRecorder) httpapi.LoginResponse {
	t.Helper()

	var resp httpapi.LoginResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp
}

func TestLoginChromeTriggersOTPFlow(t *testing.T) {
	gate := newTestGate(t, time.Date(2024, 3, 5, 12, 0, 0, 0, time.UTC))

	rec := gate.login(t, uaChromeDesktop)
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decodeLogin(t, rec)
	require.True(t, resp.OTPRequired)

	// Complete the round trip with the delivered code.
	require.Len(t, gate.notifier.codes, 1)
	vrec := gate.verify(t, gate.notifier.codes[0])
	require.Equal(t, http.StatusOK, vrec.Code)

	var vresp httpapi.VerifyResponse
	require.NoError(t, json.NewDecoder(vrec.Body).Decode(&vresp))
	require.Equal(t, "Login successful", vresp.Message)

	// The code is spent now.
	require.Equal(t, http.StatusUnauthorized, gate.verify(t, gate.notifier.codes[0]).Code)
}

func TestLoginEdgeExemptAtNight(t *testing.T) {
	gate := newTestGate(t, time.Date(2024, 3, 5, 2, 0, 0, 0, time.UTC))

	rec := gate.login(t, uaEdgeDesktop)
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decodeLogin(t, rec)
	require.False(t, resp.OTPRequired)
	require.Equal(t, "Login successful", resp.Message)
}

func TestLoginMobileOutsideWindowForbidden(t *testing.T) {
	gate := newTestGate(t, time.Date(2024, 3, 5, 8, 0, 0, 0, time.UTC))

	rec := gate.login(t, uaFirefoxPhone)
	require.Equal(t, http.StatusForbidden, rec.Code)
}

func TestLoginDesktopDefaultAllow(t *testing.T) {
	gate := newTestGate(t, time.Date(2024, 3, 5, 23, 0, 0, 0, time.UTC))

	rec := gate.login(t, uaFirefoxLinux)
	require.Equal(t, http.StatusOK, rec.Code)
	require.False(t, decodeLogin(t, rec).OTPRequired)
}

func TestVerifyRejectsMalformedShapes(t *testing.T) {
	gate := newTestGate(t, time.Date(2024, 3, 5, 12, 0, 0, 0, time.UTC))

	for _, otp := range []string{"", "123", "abcdef1"} {
		rec := gate.verify(t, otp)
		require.Equal(t, http.StatusBadRequest, rec.Code, "otp %q", otp)
	}
}

func TestVerifyUnknownCodeUnauthorized(t *testing.T) {
	gate := newTestGate(t, time.Date(2024, 3, 5, 12, 0, 0, 0, time.UTC))

	rec := gate.verify(t, "000000")
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAttemptsListsAuditTrail(t *testing.T) {
	gate := newTestGate(t, time.Date(2024, 3, 5, 8, 0, 0, 0, time.UTC))

	// One denied, one allowed; both must show up.
	gate.login(t, uaFirefoxPhone)
	gate.login(t, uaFirefoxLinux)

	req := httptest.NewRequest(http.MethodGet, "/v1/attempts", nil)
	rec := httptest.NewRecorder()
	gate.router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp httpapi.AttemptsResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Len(t, resp.Attempts, 2)

	verdicts := []string{resp.Attempts[0].Verdict, resp.Attempts[1].Verdict}
	require.Contains(t, verdicts, "deny")
	require.Contains(t, verdicts, "allow")
}

func TestHealthEndpoints(t *testing.T) {
	gate := newTestGate(t, time.Date(2024, 3, 5, 12, 0, 0, 0, time.UTC))

	for _, path := range []string{"/livez", "/readyz"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		gate.router.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, "path %s", path)
	}
}
