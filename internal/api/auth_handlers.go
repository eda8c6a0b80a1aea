/**
 * @description
 * HTTP handlers for the account lifecycle: registration, email
 * verification, password reset and JWT login/refresh. Error translation
 * lives here — services return sentinel errors, handlers map them to status
 * codes and the exact messages the frontend was built against.
 */
package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/bhupen98/dhukuti/internal/app"
	"github.com/bhupen98/dhukuti/internal/auth"
	"github.com/bhupen98/dhukuti/internal/domain"
	"github.com/bhupen98/dhukuti/internal/store"
)

// resetRequestMessage is returned whether or not the email is registered, so
// the endpoint cannot be used to enumerate accounts.
const resetRequestMessage = "If an account with that email exists, a password reset link has been sent."

// handleRegister creates a new inactive account and queues its verification
// email.
func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req domain.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	if err := h.accounts.Register(r.Context(), req); err != nil {
		switch {
		case errors.Is(err, app.ErrCredentialsRequired):
			respondWithError(w, http.StatusBadRequest, "Username and password are required.")
		case errors.Is(err, app.ErrInvalidEmail):
			respondWithError(w, http.StatusBadRequest, "Enter a valid email address.")
		case errors.Is(err, store.ErrDuplicateUsername):
			respondWithError(w, http.StatusBadRequest, "Username already exists.")
		case errors.Is(err, store.ErrDuplicateEmail):
			respondWithError(w, http.StatusBadRequest, "Email already exists.")
		default:
			respondWithError(w, http.StatusInternalServerError, "Internal server error.")
		}
		return
	}

	respondWithMessage(w, http.StatusCreated, "User registered successfully.")
}

// handleVerifyEmail consumes an emailed verification link and redirects the
// browser to the frontend confirmation page.
func (h *Handler) handleVerifyEmail(w http.ResponseWriter, r *http.Request) {
	uid := r.URL.Query().Get("uid")
	token := r.URL.Query().Get("token")

	redirectURL, err := h.accounts.VerifyEmail(r.Context(), uid, token)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			respondWithError(w, http.StatusNotFound, "Not found.")
		case errors.Is(err, auth.ErrInvalidActionToken):
			respondWithError(w, http.StatusBadRequest, "Verification link is invalid or has expired.")
		default:
			respondWithError(w, http.StatusInternalServerError, "Internal server error.")
		}
		return
	}

	http.Redirect(w, r, redirectURL, http.StatusFound)
}

// handlePasswordReset queues a reset email. The response is identical for
// known and unknown addresses.
func (h *Handler) handlePasswordReset(w http.ResponseWriter, r *http.Request) {
	var req domain.PasswordResetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	if err := h.accounts.RequestPasswordReset(r.Context(), req.Email); err != nil {
		respondWithError(w, http.StatusInternalServerError, "Internal server error.")
		return
	}

	respondWithMessage(w, http.StatusOK, resetRequestMessage)
}

// handlePasswordResetConfirm validates the reset token and stores the new
// password.
func (h *Handler) handlePasswordResetConfirm(w http.ResponseWriter, r *http.Request) {
	var req domain.PasswordResetConfirmRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	uid := r.URL.Query().Get("uid")
	token := r.URL.Query().Get("token")

	if err := h.accounts.ConfirmPasswordReset(r.Context(), uid, token, req.NewPassword); err != nil {
		switch {
		case errors.Is(err, app.ErrNewPasswordRequired):
			respondWithError(w, http.StatusBadRequest, "New password is required.")
		case errors.Is(err, store.ErrNotFound):
			respondWithError(w, http.StatusNotFound, "Not found.")
		case errors.Is(err, auth.ErrInvalidActionToken):
			respondWithError(w, http.StatusBadRequest, "Reset link is invalid or has expired.")
		default:
			respondWithError(w, http.StatusInternalServerError, "Internal server error.")
		}
		return
	}

	respondWithMessage(w, http.StatusOK, "Password has been reset successfully.")
}

// handleLogin issues an access/refresh token pair for valid credentials on
// an active account.
func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req domain.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	pair, err := h.accounts.Login(r.Context(), req)
	if err != nil {
		respondWithError(w, http.StatusUnauthorized, "No active account found with the given credentials")
		return
	}

	respondWithJSON(w, http.StatusOK, pair)
}

// handleRefresh exchanges a refresh token for a new access token.
func (h *Handler) handleRefresh(w http.ResponseWriter, r *http.Request) {
	var req domain.RefreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	access, err := h.accounts.Refresh(req.Refresh)
	if err != nil {
		respondWithError(w, http.StatusUnauthorized, "Token is invalid or expired")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"access": access})
}
