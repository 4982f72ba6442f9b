package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/yndnr/tokgate/internal/core/domain"
	"github.com/yndnr/tokgate/internal/core/service"
	"github.com/yndnr/tokgate/internal/telemetry/logger"
)

// TokenCookie is the cookie carrying the session token.
const TokenCookie = "token"

const msgSuccess = "success"

// handleSignIn handles /auth/sign_in.
func (h *Handler) handleSignIn(w http.ResponseWriter, r *http.Request) {
	var body CredentialsRequest
	if !h.decodeCredentials(w, r, &body) {
		return
	}

	res, err := h.authSvc.SignIn(r.Context(), &service.SignInRequest{
		Method:   r.Method,
		Username: body.Username,
		Password: body.Password,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	if res.AppErr != nil {
		h.writeJSON(w, r, http.StatusOK, Response{Code: res.AppErr.Code, Data: "", Msg: res.AppErr.Message})
		return
	}

	setTokenCookie(w, res.Token)
	h.writeJSON(w, r, http.StatusOK, Response{Code: 0, Data: res.Token, Msg: msgSuccess})
}

// handleSignUp handles /auth/sign_up.
func (h *Handler) handleSignUp(w http.ResponseWriter, r *http.Request) {
	var body CredentialsRequest
	if !h.decodeCredentials(w, r, &body) {
		return
	}

	user, err := h.authSvc.SignUp(r.Context(), &service.SignUpRequest{
		Method:   r.Method,
		Username: body.Username,
		Password: body.Password,
		Email:    body.Email,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, r, http.StatusOK, Response{Code: 0, Data: user, Msg: "sign_up success"})
}

// handleRefreshToken handles POST /auth/refresh_token.
func (h *Handler) handleRefreshToken(w http.ResponseWriter, r *http.Request) {
	tok, err := h.authSvc.RefreshToken(r.Context(), tokenFromCookie(r))
	if err != nil {
		if errorCodeToHTTPStatus(domain.GetErrorCode(err)) == http.StatusUnauthorized {
			writeUnauthorized(w)
			return
		}
		writeStatus(w, err)
		return
	}

	setTokenCookie(w, tok)
	h.writeJSON(w, r, http.StatusOK, Response{Code: 0, Data: tok, Msg: msgSuccess})
}

// handleCheckLogin handles /auth/check_login. Every failure is a bare 401.
func (h *Handler) handleCheckLogin(w http.ResponseWriter, r *http.Request) {
	user, err := h.authSvc.CheckLogin(r.Context(), tokenFromCookie(r))
	if err != nil {
		writeUnauthorized(w)
		return
	}

	h.writeJSON(w, r, http.StatusOK, CheckLoginResponse{Msg: msgSuccess, Data: user})
}

// decodeCredentials reads the JSON body of a POST. Other methods carry no body
// and are left for the service to reject.
func (h *Handler) decodeCredentials(w http.ResponseWriter, r *http.Request, dst *CredentialsRequest) bool {
	if r.Method != http.MethodPost {
		return true
	}
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		logger.L(r.Context()).Debug("malformed credentials body", "error", err)
		h.writeError(w, r, domain.ErrBadRequest.WithCause(err))
		return false
	}
	return true
}

func tokenFromCookie(r *http.Request) string {
	c, err := r.Cookie(TokenCookie)
	if errors.Is(err, http.ErrNoCookie) {
		return ""
	}
	return c.Value
}

func setTokenCookie(w http.ResponseWriter, tok string) {
	http.SetCookie(w, &http.Cookie{
		Name:     TokenCookie,
		Value:    tok,
		Path:     "/",
		Secure:   true,
		HttpOnly: true,
	})
}
