package auth

import (
	"context"
	"net/http"

	"github.com/angelmondragon/gearmarket-web/pkg/apiclient"
	pkgerrors "github.com/angelmondragon/gearmarket-web/pkg/errors"
)

// API is the upstream auth surface.
type API interface {
	Login(ctx context.Context, email, password string) (*AuthResponse, error)
	Logout(ctx context.Context, token, refreshToken string) error
	Refresh(ctx context.Context, refreshToken string) (*AuthResponse, error)
	Register(ctx context.Context, req RegisterRequest) (*RegisterResponse, error)
	CheckEmail(ctx context.Context, email string) (*CheckEmailResponse, error)
	CheckNickname(ctx context.Context, nickname string) (*CheckNicknameResponse, error)
	VerificationInfo(ctx context.Context, verificationToken string) (*VerificationInfoResponse, error)
	ResendVerification(ctx context.Context, req ResendVerificationRequest) (*MessageResponse, error)
	VerifyEmail(ctx context.Context, token string) (*VerifyEmailResponse, error)
	LoginWithToken(ctx context.Context, autoLoginToken string) (*LoginWithTokenResponse, error)
	ForgotPassword(ctx context.Context, req ForgotPasswordRequest) (*ResultResponse, error)
	VerifyResetToken(ctx context.Context, token string) (*ResultResponse, error)
	ResetPassword(ctx context.Context, req ResetPasswordRequest) (*ResultResponse, error)
}

// Client talks to the upstream /auth endpoints.
type Client struct {
	api *apiclient.Client
}

func NewClient(api *apiclient.Client) (*Client, error) {
	if api == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "api client is required")
	}
	return &Client{api: api}, nil
}

func (c *Client) post(ctx context.Context, operation, path, token string, body, out any) error {
	req := c.api.R(ctx, token).SetBody(body)
	return c.api.Do(ctx, operation, req, http.MethodPost, path, out)
}

func (c *Client) Login(ctx context.Context, email, password string) (*AuthResponse, error) {
	var out AuthResponse
	body := map[string]string{"email": email, "password": password}
	if err := c.post(ctx, "auth.login", "/auth/login", "", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Logout tells the upstream to drop the refresh token. The refresh token may be empty.
func (c *Client) Logout(ctx context.Context, token, refreshToken string) error {
	body := map[string]string{}
	if refreshToken != "" {
		body["refreshToken"] = refreshToken
	}
	return c.post(ctx, "auth.logout", "/auth/logout", token, body, nil)
}

func (c *Client) Refresh(ctx context.Context, refreshToken string) (*AuthResponse, error) {
	var out AuthResponse
	body := map[string]string{"refreshToken": refreshToken}
	if err := c.post(ctx, "auth.refresh", "/auth/refresh", "", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Register(ctx context.Context, req RegisterRequest) (*RegisterResponse, error) {
	var out RegisterResponse
	if err := c.post(ctx, "auth.register", "/auth/register", "", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CheckEmail(ctx context.Context, email string) (*CheckEmailResponse, error) {
	var out CheckEmailResponse
	if err := c.post(ctx, "auth.check_email", "/auth/check-email", "", CheckEmailRequest{Email: email}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CheckNickname(ctx context.Context, nickname string) (*CheckNicknameResponse, error) {
	var out CheckNicknameResponse
	if err := c.post(ctx, "auth.check_nickname", "/auth/check-nickname", "", CheckNicknameRequest{Nickname: nickname}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) VerificationInfo(ctx context.Context, verificationToken string) (*VerificationInfoResponse, error) {
	var out VerificationInfoResponse
	body := VerificationInfoRequest{VerificationToken: verificationToken}
	if err := c.post(ctx, "auth.verification_info", "/auth/verification-info", "", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ResendVerification(ctx context.Context, req ResendVerificationRequest) (*MessageResponse, error) {
	var out MessageResponse
	if err := c.post(ctx, "auth.resend_verification", "/auth/resend-verification", "", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) VerifyEmail(ctx context.Context, token string) (*VerifyEmailResponse, error) {
	var out VerifyEmailResponse
	req := c.api.R(ctx, "").SetQueryParam("token", token)
	if err := c.api.Do(ctx, "auth.verify_email", req, http.MethodGet, "/auth/verify-email", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) LoginWithToken(ctx context.Context, autoLoginToken string) (*LoginWithTokenResponse, error) {
	var out LoginWithTokenResponse
	body := LoginWithTokenRequest{AutoLoginToken: autoLoginToken}
	if err := c.post(ctx, "auth.login_with_token", "/auth/login-with-token", "", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ForgotPassword(ctx context.Context, req ForgotPasswordRequest) (*ResultResponse, error) {
	var out ResultResponse
	if err := c.post(ctx, "auth.forgot_password", "/auth/forgot-password", "", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) VerifyResetToken(ctx context.Context, token string) (*ResultResponse, error) {
	var out ResultResponse
	body := VerifyResetTokenRequest{Token: token}
	if err := c.post(ctx, "auth.verify_reset_token", "/auth/verify-reset-token", "", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ResetPassword(ctx context.Context, req ResetPasswordRequest) (*ResultResponse, error) {
	var out ResultResponse
	if err := c.post(ctx, "auth.reset_password", "/auth/reset-password", "", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
