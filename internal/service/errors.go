package service

import (
	"errors"

	"pocket-coach/internal/repository"
)

var (
	ErrNotFound           = repository.ErrNotFound
	ErrForbidden          = errors.New("forbidden")
	ErrInvalidInput       = errors.New("invalid input")
	ErrUserExists         = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrVisionUnavailable  = errors.New("receipt vision is not configured")
	ErrLastPlanner        = errors.New("cannot delete the last planner")
)
