package handlers

import (
	"crypto/subtle"
	"encoding/base64"
	"log/slog"
	"net/http"

	"github.com/pquerna/otp/totp"
	qrcode "github.com/skip2/go-qrcode"

	"newsroom/internal/middleware"
	"newsroom/internal/models"
	"newsroom/internal/session"
	"newsroom/internal/store"
)

// totpIssuer is the issuer label shown in authenticator apps.
const totpIssuer = "Newsroom"

// Auth groups all authentication-related HTTP handlers. The administrator
// identity comes from configuration and is checked before the account
// store; it is never persisted.
type Auth struct {
	sessions      *session.Store
	accounts      *store.AccountStore
	adminEmail    string
	adminPassword string
}

// NewAuth creates a new Auth handler group.
func NewAuth(sessions *session.Store, accounts *store.AccountStore, adminEmail, adminPassword string) *Auth {
	return &Auth{
		sessions:      sessions,
		accounts:      accounts,
		adminEmail:    adminEmail,
		adminPassword: adminPassword,
	}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	AccountID     int16       `json:"account_id"`
	Name          string      `json:"name"`
	Email         string      `json:"email"`
	Role          models.Role `json:"role"`
	TwoFARequired bool        `json:"two_fa_required"`
}

// Login authenticates by email and password. The configured administrator
// matches first; everyone else is looked up in the account store. When
// the account has 2FA enabled the session stays unverified until
// TwoFAVerify succeeds.
func (h *Auth) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}

	data := h.adminLogin(req.Email, req.Password)
	if data == nil {
		account, err := h.accounts.Authenticate(req.Email, req.Password)
		if err != nil {
			respondError(w, err)
			return
		}
		if account == nil {
			respondJSON(w, http.StatusUnauthorized, errorBody{Error: "invalid email or password"})
			return
		}
		data = &session.Data{
			AccountID: account.ID,
			Email:     account.Email,
			Name:      account.Name,
			Role:      account.Role,
			TwoFADone: !account.TOTPEnabled,
		}
	}

	if _, err := h.sessions.Create(r.Context(), w, data); err != nil {
		slog.Error("session create failed", "error", err)
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, loginResponse{
		AccountID:     data.AccountID,
		Name:          data.Name,
		Email:         data.Email,
		Role:          data.Role,
		TwoFARequired: !data.TwoFADone,
	})
}

// adminLogin returns a fully verified administrator session when the
// credentials match the configured admin identity, nil otherwise.
func (h *Auth) adminLogin(email, password string) *session.Data {
	emailOK := subtle.ConstantTimeCompare([]byte(email), []byte(h.adminEmail)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(password), []byte(h.adminPassword)) == 1
	if !emailOK || !passOK {
		return nil
	}
	return &session.Data{
		AccountID: 0,
		Email:     h.adminEmail,
		Name:      "Administrator",
		Role:      models.RoleAdmin,
		TwoFADone: true,
	}
}

// Logout destroys the session and clears the cookie.
func (h *Auth) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Destroy(r.Context(), w, r); err != nil {
		slog.Error("session destroy failed", "error", err)
	}
	respondJSON(w, http.StatusNoContent, nil)
}

type twoFASetupResponse struct {
	Secret     string `json:"secret"`
	OtpauthURL string `json:"otpauth_url"`
	QRPNG      string `json:"qr_png_base64"`
}

// TwoFASetup generates a TOTP secret for the logged-in account, stores
// it, and returns the provisioning URL with a QR code image. 2FA stays
// disabled until TwoFAActivate verifies a code.
func (h *Auth) TwoFASetup(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())
	if sess == nil || sess.IsAdmin() {
		respondJSON(w, http.StatusForbidden, errorBody{Error: "2FA is only available for stored accounts"})
		return
	}

	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      totpIssuer,
		AccountName: sess.Email,
	})
	if err != nil {
		slog.Error("totp generate failed", "error", err)
		respondError(w, err)
		return
	}

	if err := h.accounts.SetTOTPSecret(sess.AccountID, key.Secret()); err != nil {
		respondError(w, err)
		return
	}

	png, err := qrcode.Encode(key.URL(), qrcode.Medium, 256)
	if err != nil {
		slog.Error("qr encode failed", "error", err)
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, twoFASetupResponse{
		Secret:     key.Secret(),
		OtpauthURL: key.URL(),
		QRPNG:      base64.StdEncoding.EncodeToString(png),
	})
}

type twoFACodeRequest struct {
	Code string `json:"code"`
}

// TwoFAActivate verifies the first code against the pending secret and
// switches 2FA on for the account.
func (h *Auth) TwoFAActivate(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())
	if sess == nil || sess.IsAdmin() {
		respondJSON(w, http.StatusForbidden, errorBody{Error: "2FA is only available for stored accounts"})
		return
	}

	var req twoFACodeRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}

	account, err := h.accounts.FindByID(sess.AccountID)
	if err != nil {
		respondError(w, err)
		return
	}
	if account == nil || account.TOTPSecret == nil {
		respondJSON(w, http.StatusConflict, errorBody{Error: "no pending 2FA setup"})
		return
	}

	if !totp.Validate(req.Code, *account.TOTPSecret) {
		respondJSON(w, http.StatusUnauthorized, errorBody{Error: "invalid code"})
		return
	}

	if err := h.accounts.EnableTOTP(sess.AccountID); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}

// TwoFAVerify checks a login-time code and marks the session verified.
func (h *Auth) TwoFAVerify(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())
	if sess == nil {
		respondJSON(w, http.StatusUnauthorized, errorBody{Error: "not logged in"})
		return
	}
	if sess.TwoFADone {
		respondJSON(w, http.StatusNoContent, nil)
		return
	}

	var req twoFACodeRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}

	account, err := h.accounts.FindByID(sess.AccountID)
	if err != nil {
		respondError(w, err)
		return
	}
	if account == nil || account.TOTPSecret == nil {
		respondJSON(w, http.StatusConflict, errorBody{Error: "2FA is not set up"})
		return
	}

	if !totp.Validate(req.Code, *account.TOTPSecret) {
		respondJSON(w, http.StatusUnauthorized, errorBody{Error: "invalid code"})
		return
	}

	sess.TwoFADone = true
	if err := h.sessions.Update(r.Context(), r, sess); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}

// Profile returns the logged-in account.
func (h *Auth) Profile(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())
	if sess.IsAdmin() {
		respondJSON(w, http.StatusOK, models.Account{
			ID:    0,
			Name:  sess.Name,
			Email: sess.Email,
			Role:  models.RoleAdmin,
		})
		return
	}

	account, err := h.accounts.FindByID(sess.AccountID)
	if err != nil {
		respondError(w, err)
		return
	}
	if account == nil {
		respondNotFound(w)
		return
	}
	respondJSON(w, http.StatusOK, account)
}

type profileRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// UpdateProfile changes the logged-in account's display name and email.
// The role cannot be changed here.
func (h *Auth) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())
	if sess.IsAdmin() {
		respondJSON(w, http.StatusForbidden, errorBody{Error: "the administrator profile is configured, not stored"})
		return
	}

	var req profileRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}

	account, err := h.accounts.FindByID(sess.AccountID)
	if err != nil {
		respondError(w, err)
		return
	}
	if account == nil {
		respondNotFound(w)
		return
	}

	account.Name = req.Name
	account.Email = req.Email
	if err := h.accounts.Update(account); err != nil {
		respondError(w, err)
		return
	}

	sess.Name = account.Name
	sess.Email = account.Email
	if err := h.sessions.Update(r.Context(), r, sess); err != nil {
		slog.Error("session refresh failed", "error", err)
	}
	respondJSON(w, http.StatusOK, account)
}

type changePasswordRequest struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

// ChangePassword verifies the old password before storing the new one.
func (h *Auth) ChangePassword(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())
	if sess.IsAdmin() {
		respondJSON(w, http.StatusForbidden, errorBody{Error: "the administrator password is configured, not stored"})
		return
	}

	var req changePasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}

	if err := h.accounts.ChangePassword(sess.AccountID, req.OldPassword, req.NewPassword); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}
