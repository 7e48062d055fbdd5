package auth

import "time"

// LoginRequest captures the credentials posted to the login endpoint. RedirectTo is
// the page the browser came from and is echoed back after SafeRedirect.
type LoginRequest struct {
	Email      string `json:"email" validate:"required,email"`
	Password   string `json:"password" validate:"required"`
	RedirectTo string `json:"redirectTo,omitempty"`
}

// AuthResponse is the upstream login and refresh payload.
type AuthResponse struct {
	UserID       string `json:"userId"`
	Email        string `json:"email"`
	Token        string `json:"token,omitempty"`
	Nickname     string `json:"nickname"`
	Verified     bool   `json:"verified"`
	RefreshToken string `json:"refreshToken,omitempty"`
	ExpiresAt    string `json:"expiresAt,omitempty"`
}

type RegisterRequest struct {
	Email                string `json:"email" validate:"required,email"`
	Password             string `json:"password" validate:"required,min=8"`
	PasswordConfirm      string `json:"passwordConfirm" validate:"required,eqfield=Password"`
	Nickname             string `json:"nickname" validate:"required,min=2,max=20"`
	TermsOfServiceAgreed bool   `json:"termsOfServiceAgreed"`
	PrivacyPolicyAgreed  bool   `json:"privacyPolicyAgreed"`
	MarketingAgreed      bool   `json:"marketingAgreed"`
}

type RegisterResponse struct {
	UserID            string `json:"userId"`
	Email             string `json:"email"`
	Message           string `json:"message"`
	VerificationToken string `json:"verificationToken,omitempty"`
}

type CheckEmailRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type CheckEmailResponse struct {
	Available bool   `json:"available"`
	Message   string `json:"message"`
}

type CheckNicknameRequest struct {
	Nickname string `json:"nickname" validate:"required"`
}

type CheckNicknameResponse struct {
	Available bool `json:"available"`
}

type VerificationInfoRequest struct {
	VerificationToken string `json:"verificationToken" validate:"required"`
}

type VerificationInfoResponse struct {
	Email             string     `json:"email"`
	SentAt            *time.Time `json:"sentAt,omitempty"`
	RemainingCooldown int        `json:"remainingCooldown,omitempty"`
}

type ResendVerificationRequest struct {
	VerificationToken string `json:"verificationToken" validate:"required"`
	CaptchaToken      string `json:"captchaToken,omitempty"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type VerifyEmailResponse struct {
	Verified       bool   `json:"verified"`
	Message        string `json:"message"`
	AutoLoginToken string `json:"autoLoginToken,omitempty"`
	RedirectURL    string `json:"redirectUrl,omitempty"`
}

type LoginWithTokenRequest struct {
	AutoLoginToken string `json:"autoLoginToken" validate:"required"`
}

type LoginWithTokenResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	User         struct {
		ID       string `json:"id"`
		Email    string `json:"email"`
		Nickname string `json:"nickname"`
	} `json:"user"`
}

type ForgotPasswordRequest struct {
	Email        string `json:"email" validate:"required,email"`
	CaptchaToken string `json:"captchaToken,omitempty"`
}

type VerifyResetTokenRequest struct {
	Token string `json:"token" validate:"required"`
}

type ResetPasswordRequest struct {
	ResetToken  string `json:"resetToken" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required,min=8"`
}

// ResultResponse is shared by the password reset endpoints.
type ResultResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Email   string `json:"email,omitempty"`
}

// UserView is the signed-in user as the browser sees it. Tokens never leave the server.
type UserView struct {
	UserID    string    `json:"userId"`
	Email     string    `json:"email"`
	Nickname  string    `json:"nickname"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// LoginResult is a created session plus where the browser should go next.
type LoginResult struct {
	SessionID  string   `json:"-"`
	User       UserView `json:"user"`
	RedirectTo string   `json:"redirectTo"`
}
