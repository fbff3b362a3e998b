package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/aussiebroadwan/gatekeep/internal/gatekeep/domain"
	"github.com/aussiebroadwan/gatekeep/internal/gatekeep/service"
	"github.com/aussiebroadwan/gatekeep/pkg/httpx"
	"github.com/aussiebroadwan/gatekeep/pkg/slogx"
)

const (
	defaultAttemptsLimit = 50
	maxAttemptsLimit     = 500
)

// AttemptRecord is the wire shape of one audit trail entry. OTP material is
// never exposed, only whether a challenge is outstanding.
type AttemptRecord struct {
	ID              string     `json:"id"`
	SoftwareFamily  string     `json:"softwareFamily"`
	OperatingSystem string     `json:"operatingSystem"`
	DeviceClass     string     `json:"deviceClass"`
	SourceAddress   string     `json:"sourceAddress"`
	Verdict         string     `json:"verdict"`
	OTPOutstanding  bool       `json:"otpOutstanding"`
	OTPConsumedAt   *time.Time `json:"otpConsumedAt,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
}

type AttemptsResponse struct {
	Attempts []AttemptRecord `json:"attempts"`
}

// AttemptsHandler handles GET /v1/attempts?limit=N, newest first.
type AttemptsHandler struct {
	LoginService *service.LoginService
}

func (h *AttemptsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	limit := defaultAttemptsLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			httpx.WriteError(w, http.StatusBadRequest, "invalid_limit", "limit must be a positive integer")
			return
		}
		limit = min(n, maxAttemptsLimit)
	}

	attempts, err := h.LoginService.RecentAttempts(ctx, limit)
	if err != nil {
		log.Error("failed to list attempts", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "Error listing attempts")
		return
	}

	records := make([]AttemptRecord, 0, len(attempts))
	for _, a := range attempts {
		records = append(records, mapAttemptRecord(a))
	}

	httpx.WriteJSON(w, http.StatusOK, AttemptsResponse{Attempts: records})
}

func mapAttemptRecord(a domain.LoginAttempt) AttemptRecord {
	return AttemptRecord{
		ID:              a.ID,
		SoftwareFamily:  a.Classification.SoftwareFamily,
		OperatingSystem: a.Classification.OperatingSystem,
		DeviceClass:     string(a.Classification.DeviceClass),
		SourceAddress:   a.SourceAddress,
		Verdict:         string(a.Verdict),
		OTPOutstanding:  a.OTPCode != nil,
		OTPConsumedAt:   a.OTPConsumedAt,
		CreatedAt:       a.CreatedAt,
	}
}
