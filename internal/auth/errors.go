package auth

import "errors"

var (
	// ErrInvalidCredentials is shown to end users and must not enable
	// account enumeration.
	ErrInvalidCredentials = errors.New("incorrect email address or password")

	ErrEmailAndPasswordRequired = errors.New("email and password required")
	ErrEmailAlreadyExists       = errors.New("email already exists")
	ErrEmailNotConfirmed        = errors.New("confirm your email address before signing in")
	ErrUserDisabled             = errors.New("user disabled")

	ErrInvalidConfirmToken  = errors.New("invalid or expired confirmation token")
	ErrInvalidRecoveryToken = errors.New("invalid or expired recovery token")
	ErrNewPasswordRequired  = errors.New("new password required")
)
