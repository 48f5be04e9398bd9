package domain

import "errors"

var (
	ErrUserNotFound    = errors.New("user not found")
	ErrEmailTaken      = errors.New("email already registered")
	ErrSessionNotFound = errors.New("session not found")
	ErrTodoNotFound    = errors.New("todo not found")
)

// Auth event actions recorded in the auth_events audit table.
const (
	AuthEventSignUp  = "sign_up"
	AuthEventSignIn  = "sign_in"
	AuthEventSignOut = "sign_out"
	AuthEventRefresh = "refresh"
)
