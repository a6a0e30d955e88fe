package services

import "errors"

var (
	ErrUserNotFound = errors.New("user not found")
	ErrEmailTaken   = errors.New("user with this email already exists")

	// ErrInvalidCredentials covers both unknown email and wrong password
	// so login failures cannot be used to enumerate accounts.
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrAccountDisabled    = errors.New("your account has been deactivated")

	ErrSelfDelete = errors.New("you cannot delete your own account")
)
