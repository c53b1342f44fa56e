package domain

import (
	"context"
	"errors"
)

type CreateLeadRequest struct {
	Name         string
	OriginatorID string
}

type GetLeadRequest struct {
	ID string
}

type Service interface {
	Create(context.Context, CreateLeadRequest) (Lead, error)
	GetByID(context.Context, GetLeadRequest) (Lead, error)
	List(context.Context) ([]Lead, error)
}

var (
	ErrInvalidName       = errors.New("invalid_name")
	ErrInvalidID         = errors.New("invalid_id")
	ErrInvalidOriginator = errors.New("invalid_originator")
	ErrNotFound          = errors.New("not_found")
)
