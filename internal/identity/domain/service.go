package domain

import (
	"context"
	"errors"
)

type CreateIdentityRequest struct {
	Kind  string
	Name  string
	Email string
}

type GetIdentityRequest struct {
	ID string
}

type ListIdentityRequest struct {
	Kind string
}

type Service interface {
	Create(context.Context, CreateIdentityRequest) (Identity, error)
	GetByID(context.Context, GetIdentityRequest) (Identity, error)
	List(context.Context, ListIdentityRequest) ([]Identity, error)
}

var (
	ErrInvalidKind  = errors.New("invalid_kind")
	ErrInvalidName  = errors.New("invalid_name")
	ErrInvalidEmail = errors.New("invalid_email")
	ErrInvalidID    = errors.New("invalid_id")
	ErrNotFound     = errors.New("not_found")
)
