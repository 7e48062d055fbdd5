package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/angelmondragon/gearmarket-web/pkg/apiclient"
	"github.com/angelmondragon/gearmarket-web/pkg/auth/session"
	pkgerrors "github.com/angelmondragon/gearmarket-web/pkg/errors"
	"github.com/angelmondragon/gearmarket-web/pkg/logger"
)

const (
	loginRequiredMessage     = "로그인이 필요합니다."
	invalidCredentialMessage = "이메일 또는 비밀번호가 올바르지 않습니다."
	unverifiedMessage        = "이메일 인증이 완료되지 않았습니다. 이메일을 확인해주세요."
)

// Service signs browsers in and out and hands out the upstream token behind a session.
type Service interface {
	Login(ctx context.Context, req LoginRequest) (*LoginResult, error)
	LoginWithToken(ctx context.Context, req LoginWithTokenRequest) (*LoginResult, error)
	Logout(ctx context.Context, sessionID string) error
	Refresh(ctx context.Context, sessionID string) (*UserView, error)
	Current(ctx context.Context, sessionID string) (*UserView, error)
	AccessToken(ctx context.Context, sessionID string) (string, error)

	Register(ctx context.Context, req RegisterRequest) (*RegisterResponse, error)
	CheckEmail(ctx context.Context, req CheckEmailRequest) (*CheckEmailResponse, error)
	CheckNickname(ctx context.Context, req CheckNicknameRequest) (*CheckNicknameResponse, error)
	VerificationInfo(ctx context.Context, req VerificationInfoRequest) (*VerificationInfoResponse, error)
	ResendVerification(ctx context.Context, req ResendVerificationRequest) (*MessageResponse, error)
	VerifyEmail(ctx context.Context, token string) (*VerifyEmailResponse, error)
	ForgotPassword(ctx context.Context, req ForgotPasswordRequest) (*ResultResponse, error)
	VerifyResetToken(ctx context.Context, req VerifyResetTokenRequest) (*ResultResponse, error)
	ResetPassword(ctx context.Context, req ResetPasswordRequest) (*ResultResponse, error)
}

type sessionManager interface {
	Create(ctx context.Context, tokens session.Tokens, user session.User) (*session.Session, error)
	Get(ctx context.Context, sessionID string) (*session.Session, error)
	Revoke(ctx context.Context, sessionID string) error
	Rotate(ctx context.Context, sessionID string, refresh session.RefreshFunc) (*session.Session, error)
	Refresh(ctx context.Context, sessionID string, refresh session.RefreshFunc) (*session.Session, error)
}

// ServiceParams bundles the dependencies required to build an auth service.
type ServiceParams struct {
	API      API
	Sessions sessionManager
	Logger   *logger.Logger
}

type service struct {
	api      API
	sessions sessionManager
	logg     *logger.Logger
}

func NewService(params ServiceParams) (Service, error) {
	if params.API == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "auth api is required")
	}
	if params.Sessions == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "session manager is required")
	}
	if params.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "logger is required")
	}
	return &service{api: params.API, sessions: params.Sessions, logg: params.Logger}, nil
}

func (s *service) Login(ctx context.Context, req LoginRequest) (*LoginResult, error) {
	email := strings.TrimSpace(req.Email)
	if email == "" || req.Password == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, invalidCredentialMessage)
	}

	resp, err := s.api.Login(ctx, email, req.Password)
	if err != nil {
		return nil, localizeLoginError(err)
	}
	if !resp.Verified {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, unverifiedMessage)
	}
	if resp.Token == "" {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "login response is missing a token")
	}

	sess, err := s.sessions.Create(ctx, session.Tokens{
		AccessToken:  resp.Token,
		RefreshToken: resp.RefreshToken,
		ExpiresAt:    parseTime(resp.ExpiresAt),
	}, session.User{ID: resp.UserID, Email: resp.Email, Nickname: resp.Nickname})
	if err != nil {
		return nil, err
	}
	s.logg.Info(s.logg.WithUserID(s.logg.WithSessionID(ctx, sess.ID), sess.UserID), "auth.login")
	return &LoginResult{SessionID: sess.ID, User: viewOf(sess), RedirectTo: SafeRedirect(req.RedirectTo)}, nil
}

// LoginWithToken redeems the one-time token issued after email verification.
func (s *service) LoginWithToken(ctx context.Context, req LoginWithTokenRequest) (*LoginResult, error) {
	if strings.TrimSpace(req.AutoLoginToken) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "autoLoginToken is required")
	}
	resp, err := s.api.LoginWithToken(ctx, req.AutoLoginToken)
	if err != nil {
		return nil, err
	}
	if resp.AccessToken == "" {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "login response is missing a token")
	}

	sess, err := s.sessions.Create(ctx, session.Tokens{
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
	}, session.User{ID: resp.User.ID, Email: resp.User.Email, Nickname: resp.User.Nickname})
	if err != nil {
		return nil, err
	}
	s.logg.Info(s.logg.WithUserID(s.logg.WithSessionID(ctx, sess.ID), sess.UserID), "auth.login_with_token")
	return &LoginResult{SessionID: sess.ID, User: viewOf(sess), RedirectTo: "/"}, nil
}

// Logout revokes the session even when the upstream call fails. Unknown sessions are
// already logged out.
func (s *service) Logout(ctx context.Context, sessionID string) error {
	sess, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			return nil
		}
		return err
	}
	ctx = s.logg.WithUserID(s.logg.WithSessionID(ctx, sess.ID), sess.UserID)
	if err := s.api.Logout(ctx, sess.AccessToken, sess.RefreshToken); err != nil {
		s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "auth.logout.upstream_failed")
	}
	if err := s.sessions.Revoke(ctx, sess.ID); err != nil {
		return err
	}
	s.logg.Info(ctx, "auth.logout")
	return nil
}

func (s *service) Refresh(ctx context.Context, sessionID string) (*UserView, error) {
	sess, err := s.sessions.Refresh(ctx, sessionID, s.refresh)
	if err != nil {
		return nil, sessionError(err)
	}
	view := viewOf(sess)
	return &view, nil
}

func (s *service) Current(ctx context.Context, sessionID string) (*UserView, error) {
	sess, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, sessionError(err)
	}
	view := viewOf(sess)
	return &view, nil
}

// AccessToken returns the session's upstream token, refreshed first when it is about
// to expire.
func (s *service) AccessToken(ctx context.Context, sessionID string) (string, error) {
	sess, err := s.sessions.Rotate(ctx, sessionID, s.refresh)
	if err != nil {
		return "", sessionError(err)
	}
	return sess.AccessToken, nil
}

func (s *service) refresh(ctx context.Context, refreshToken string) (session.Tokens, error) {
	resp, err := s.api.Refresh(ctx, refreshToken)
	if err != nil {
		return session.Tokens{}, err
	}
	if resp.Token == "" {
		return session.Tokens{}, pkgerrors.New(pkgerrors.CodeDependency, "refresh response is missing a token")
	}
	s.logg.Debug(ctx, "auth.refresh")
	return session.Tokens{
		AccessToken:  resp.Token,
		RefreshToken: resp.RefreshToken,
		ExpiresAt:    parseTime(resp.ExpiresAt),
	}, nil
}

func (s *service) Register(ctx context.Context, req RegisterRequest) (*RegisterResponse, error) {
	if !req.TermsOfServiceAgreed || !req.PrivacyPolicyAgreed {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "필수 약관에 동의해주세요.")
	}
	resp, err := s.api.Register(ctx, req)
	if err != nil {
		return nil, err
	}
	s.logg.Info(s.logg.WithUserID(ctx, resp.UserID), "auth.register")
	return resp, nil
}

func (s *service) CheckEmail(ctx context.Context, req CheckEmailRequest) (*CheckEmailResponse, error) {
	return s.api.CheckEmail(ctx, strings.TrimSpace(req.Email))
}

func (s *service) CheckNickname(ctx context.Context, req CheckNicknameRequest) (*CheckNicknameResponse, error) {
	return s.api.CheckNickname(ctx, strings.TrimSpace(req.Nickname))
}

func (s *service) VerificationInfo(ctx context.Context, req VerificationInfoRequest) (*VerificationInfoResponse, error) {
	return s.api.VerificationInfo(ctx, req.VerificationToken)
}

func (s *service) ResendVerification(ctx context.Context, req ResendVerificationRequest) (*MessageResponse, error) {
	return s.api.ResendVerification(ctx, req)
}

func (s *service) VerifyEmail(ctx context.Context, token string) (*VerifyEmailResponse, error) {
	if strings.TrimSpace(token) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "token is required")
	}
	return s.api.VerifyEmail(ctx, token)
}

func (s *service) ForgotPassword(ctx context.Context, req ForgotPasswordRequest) (*ResultResponse, error) {
	req.Email = strings.TrimSpace(req.Email)
	return s.api.ForgotPassword(ctx, req)
}

func (s *service) VerifyResetToken(ctx context.Context, req VerifyResetTokenRequest) (*ResultResponse, error) {
	return s.api.VerifyResetToken(ctx, req.Token)
}

func (s *service) ResetPassword(ctx context.Context, req ResetPasswordRequest) (*ResultResponse, error) {
	return s.api.ResetPassword(ctx, req)
}

func viewOf(sess *session.Session) UserView {
	return UserView{
		UserID:    sess.UserID,
		Email:     sess.Email,
		Nickname:  sess.Nickname,
		ExpiresAt: sess.ExpiresAt,
	}
}

// sessionError turns a missing session into UNAUTHORIZED.
func sessionError(err error) error {
	if errors.Is(err, session.ErrNotFound) {
		return pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, loginRequiredMessage)
	}
	return err
}

// localizeLoginError keeps the upstream's verification token and blocked-account
// message and replaces credential failures with one generic message.
func localizeLoginError(err error) error {
	up, ok := apiclient.AsUpstream(err)
	if !ok {
		return err
	}
	typed := pkgerrors.As(err)
	switch {
	case up.VerificationToken != "":
		return pkgerrors.Wrap(pkgerrors.CodeForbidden, err, unverifiedMessage).WithDetails(typed.Details())
	case strings.Contains(strings.ToLower(up.Message), "blocked"):
		return err
	case up.Status == http.StatusUnauthorized:
		return pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, invalidCredentialMessage)
	}
	return err
}

func parseTime(raw string) time.Time {
	if raw = strings.TrimSpace(raw); raw == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}
	}
	return t
}
