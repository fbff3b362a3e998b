package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/aussiebroadwan/gatekeep/internal/gatekeep/service"
	"github.com/aussiebroadwan/gatekeep/pkg/httpx"
	"github.com/aussiebroadwan/gatekeep/pkg/slogx"
)

// VerifyRequest is the wire shape for an OTP submission.
type VerifyRequest struct {
	OTP string `json:"otp"`
}

// VerifyResponse is returned on successful consumption.
type VerifyResponse struct {
	Message string `json:"message"`
}

// VerifyHandler handles POST /verify-otp.
type VerifyHandler struct {
	LoginService *service.LoginService
}

func (h *VerifyHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req VerifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Warn("failed to parse verify request", "err", err)
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON body")
		return
	}

	attemptID, err := h.LoginService.VerifyOTP(ctx, req.OTP)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrMalformedCode):
			httpx.WriteError(w, http.StatusBadRequest, "malformed_otp", "OTP must be exactly 6 characters")
		case errors.Is(err, service.ErrCodeInvalidOrExpired):
			log.Info("otp verification rejected")
			httpx.WriteError(w, http.StatusUnauthorized, "invalid_otp", "Invalid or expired OTP")
		default:
			log.Error("otp verification failed", "err", err)
			httpx.WriteError(w, http.StatusInternalServerError, "server_error", "Error verifying OTP")
		}
		return
	}

	log.Info("otp consumed", "attempt_id", attemptID)
	httpx.WriteJSON(w, http.StatusOK, VerifyResponse{Message: service.MsgLoginSuccessful})
}
