package http

import (
	"errors"
	"net/http"

	"github.com/aussiebroadwan/gatekeep/internal/gatekeep/domain"
	"github.com/aussiebroadwan/gatekeep/internal/gatekeep/service"
	"github.com/aussiebroadwan/gatekeep/pkg/httpx"
	"github.com/aussiebroadwan/gatekeep/pkg/slogx"
)

// LoginResponse is the wire shape for a login decision.
type LoginResponse struct {
	OTPRequired bool   `json:"otpRequired"`
	Message     string `json:"message"`
}

// LoginHandler handles POST /login. The request needs no body: the client
// identity comes from the User-Agent header and the network origin from
// X-Forwarded-For / RemoteAddr.
type LoginHandler struct {
	LoginService *service.LoginService
}

func (h *LoginHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	rawIdentity := r.Header.Get("User-Agent")
	sourceAddress := httpx.ClientIP(r)

	result, err := h.LoginService.HandleLogin(ctx, rawIdentity, sourceAddress)
	if err != nil {
		if errors.Is(err, service.ErrNotificationFailed) {
			log.Error("otp delivery failed", "err", err)
			httpx.WriteError(w, http.StatusInternalServerError, "notification_failed", "Error sending OTP")
			return
		}
		log.Error("login handling failed", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "Error logging in")
		return
	}

	if result.Verdict == domain.VerdictDeny {
		log.Info("login denied", "attempt_id", result.AttemptID, "source", sourceAddress)
		httpx.WriteError(w, http.StatusForbidden, "access_restricted", result.Message)
		return
	}

	log.Info("login decided",
		"attempt_id", result.AttemptID,
		"verdict", result.Verdict,
		"otp_required", result.OTPRequired,
	)
	httpx.WriteJSON(w, http.StatusOK, LoginResponse{
		OTPRequired: result.OTPRequired,
		Message:     result.Message,
	})
}
