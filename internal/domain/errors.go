package domain

import (
	"errors"
	"fmt"
)

var (
	ErrValidation             = errors.New("validation failed")
	ErrAuthenticationRequired = errors.New("authentication required")
	ErrInvalidToken           = errors.New("invalid or expired token")
	ErrInvalidCredentials     = errors.New("invalid email or password")
	ErrForbidden              = errors.New("forbidden")
	ErrNotFound               = errors.New("user not found")
	ErrEmailConflict          = errors.New("email already in use")
)

// 两种越权场景，都可以 errors.Is(err, ErrForbidden)
var (
	ErrNotOwnerOrAdmin     = fmt.Errorf("%w: you can only modify your own profile unless you are an admin", ErrForbidden)
	ErrRoleChangeNeedAdmin = fmt.Errorf("%w: only admins can change user roles", ErrForbidden)
)
