package models

// SignupRequest represents the request body for account creation.
type SignupRequest struct {
	Email    string  `json:"email" binding:"required,email"`
	Password string  `json:"password" binding:"required,min=6"`
	Name     *string `json:"name,omitempty"`
}

// LoginRequest represents the request body for password login.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// VerifyOTPRequest represents the request body for one-time code verification.
// Purpose distinguishes signup confirmation from password reset codes.
type VerifyOTPRequest struct {
	Email   string `json:"email" binding:"required,email"`
	Code    string `json:"code" binding:"required,len=6,numeric"`
	Purpose string `json:"purpose" binding:"required,oneof=signup reset"`
}

// ResendOTPRequest represents the request body for re-sending a code.
type ResendOTPRequest struct {
	Email   string `json:"email" binding:"required,email"`
	Purpose string `json:"purpose" binding:"required,oneof=signup reset"`
}

// ForgotPasswordRequest asks for a reset mail. RedirectTo is the frontend URL
// the mailed link should point at.
type ForgotPasswordRequest struct {
	Email      string `json:"email" binding:"required,email"`
	RedirectTo string `json:"redirect_to,omitempty"`
}

// ResetPasswordRequest consumes a reset token from the mailed link.
type ResetPasswordRequest struct {
	Token    string `json:"token" binding:"required"`
	Password string `json:"password" binding:"required,min=6"`
}

// UpdateProfileRequest represents the request body for profile edits.
type UpdateProfileRequest struct {
	Name      *string `json:"name,omitempty"`
	AvatarURL *string `json:"avatar,omitempty"`
}
