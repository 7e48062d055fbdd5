package controllers

import (
	"context"
	"net/http"

	"github.com/angelmondragon/gearmarket-web/api/middleware"
	"github.com/angelmondragon/gearmarket-web/api/responses"
	"github.com/angelmondragon/gearmarket-web/api/validators"
	"github.com/angelmondragon/gearmarket-web/internal/auth"
	pkgerrors "github.com/angelmondragon/gearmarket-web/pkg/errors"
	"github.com/angelmondragon/gearmarket-web/pkg/logger"
)

// AuthHandlers exposes the auth flows. Only the session id cookie reaches the
// browser; tokens stay in the session store.
type AuthHandlers struct {
	svc    auth.Service
	cookie middleware.SessionCookie
	logg   *logger.Logger
}

func NewAuthHandlers(svc auth.Service, cookie middleware.SessionCookie, logg *logger.Logger) *AuthHandlers {
	return &AuthHandlers{svc: svc, cookie: cookie, logg: logg}
}

func (h *AuthHandlers) Login(w http.ResponseWriter, r *http.Request) {
	var body auth.LoginRequest
	if err := validators.DecodeJSONBody(r, &body); err != nil {
		responses.WriteError(r.Context(), h.logg, w, err)
		return
	}
	result, err := h.svc.Login(r.Context(), body)
	if err != nil {
		responses.WriteError(r.Context(), h.logg, w, err)
		return
	}
	h.cookie.Set(w, result.SessionID)
	responses.WriteSuccess(w, result)
}

func (h *AuthHandlers) LoginWithToken(w http.ResponseWriter, r *http.Request) {
	var body auth.LoginWithTokenRequest
	if err := validators.DecodeJSONBody(r, &body); err != nil {
		responses.WriteError(r.Context(), h.logg, w, err)
		return
	}
	result, err := h.svc.LoginWithToken(r.Context(), body)
	if err != nil {
		responses.WriteError(r.Context(), h.logg, w, err)
		return
	}
	h.cookie.Set(w, result.SessionID)
	responses.WriteSuccess(w, result)
}

// Logout always clears the cookie, even for sessions that are already gone.
func (h *AuthHandlers) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Logout(r.Context(), middleware.SessionIDFromContext(r.Context())); err != nil {
		responses.WriteError(r.Context(), h.logg, w, err)
		return
	}
	h.cookie.Clear(w)
	responses.WriteSuccess(w, map[string]string{"status": "logged_out"})
}

func (h *AuthHandlers) Refresh(w http.ResponseWriter, r *http.Request) {
	h.sessionView(w, r, h.svc.Refresh)
}

func (h *AuthHandlers) Me(w http.ResponseWriter, r *http.Request) {
	h.sessionView(w, r, h.svc.Current)
}

func (h *AuthHandlers) sessionView(w http.ResponseWriter, r *http.Request, fn func(ctx context.Context, sessionID string) (*auth.UserView, error)) {
	view, err := fn(r.Context(), middleware.SessionIDFromContext(r.Context()))
	if err != nil {
		if pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized) {
			h.cookie.Clear(w)
		}
		responses.WriteError(r.Context(), h.logg, w, err)
		return
	}
	responses.WriteSuccess(w, view)
}

func (h *AuthHandlers) Register(w http.ResponseWriter, r *http.Request) {
	handleJSON(w, r, h.logg, h.svc.Register)
}

func (h *AuthHandlers) CheckEmail(w http.ResponseWriter, r *http.Request) {
	handleJSON(w, r, h.logg, h.svc.CheckEmail)
}

func (h *AuthHandlers) CheckNickname(w http.ResponseWriter, r *http.Request) {
	handleJSON(w, r, h.logg, h.svc.CheckNickname)
}

func (h *AuthHandlers) VerificationInfo(w http.ResponseWriter, r *http.Request) {
	handleJSON(w, r, h.logg, h.svc.VerificationInfo)
}

func (h *AuthHandlers) ResendVerification(w http.ResponseWriter, r *http.Request) {
	handleJSON(w, r, h.logg, h.svc.ResendVerification)
}

func (h *AuthHandlers) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	handleJSON(w, r, h.logg, h.svc.ForgotPassword)
}

func (h *AuthHandlers) VerifyResetToken(w http.ResponseWriter, r *http.Request) {
	handleJSON(w, r, h.logg, h.svc.VerifyResetToken)
}

func (h *AuthHandlers) ResetPassword(w http.ResponseWriter, r *http.Request) {
	handleJSON(w, r, h.logg, h.svc.ResetPassword)
}

// VerifyEmail takes the token from the link in the verification mail.
func (h *AuthHandlers) VerifyEmail(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		responses.WriteError(r.Context(), h.logg, w, pkgerrors.New(pkgerrors.CodeValidation, "유효하지 않은 인증 링크입니다.").WithDetails(map[string]any{"field": "token"}))
		return
	}
	resp, err := h.svc.VerifyEmail(r.Context(), token)
	if err != nil {
		responses.WriteError(r.Context(), h.logg, w, err)
		return
	}
	responses.WriteSuccess(w, resp)
}

func handleJSON[Req any, Resp any](w http.ResponseWriter, r *http.Request, logg *logger.Logger, call func(context.Context, Req) (*Resp, error)) {
	var body Req
	if err := validators.DecodeJSONBody(r, &body); err != nil {
		responses.WriteError(r.Context(), logg, w, err)
		return
	}
	resp, err := call(r.Context(), body)
	if err != nil {
		responses.WriteError(r.Context(), logg, w, err)
		return
	}
	responses.WriteSuccess(w, resp)
}
