package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/sellside/closedesk/internal/identity/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Repo  domain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	repo  domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("identity.service"),
		genID: p.GenID,
		repo:  p.Repo,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateIdentityRequest) (domain.Identity, error) {
	kind, err := normalizeKind(req.Kind)
	if err != nil {
		return domain.Identity{}, err
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.Identity{}, domain.ErrInvalidName
	}

	email := strings.TrimSpace(req.Email)
	if email == "" || !strings.Contains(email, "@") {
		return domain.Identity{}, domain.ErrInvalidEmail
	}

	identity := domain.Identity{
		ID:        s.genID.Generate(),
		Kind:      kind,
		Name:      name,
		Email:     email,
		Active:    true,
		CreatedAt: time.Now().UTC(),
	}

	if err := s.repo.Insert(ctx, s.db, &identity); err != nil {
		return domain.Identity{}, err
	}
	return identity, nil
}

func (s *Service) GetByID(ctx context.Context, req domain.GetIdentityRequest) (domain.Identity, error) {
	id, err := s.parseID(req.ID)
	if err != nil {
		return domain.Identity{}, err
	}

	item, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.Identity{}, err
	}
	if item == nil {
		return domain.Identity{}, domain.ErrNotFound
	}
	return *item, nil
}

func (s *Service) List(ctx context.Context, req domain.ListIdentityRequest) ([]domain.Identity, error) {
	var kind domain.IdentityKind
	if trimmed := strings.TrimSpace(req.Kind); trimmed != "" {
		normalized, err := normalizeKind(trimmed)
		if err != nil {
			return nil, err
		}
		kind = normalized
	}

	items, err := s.repo.List(ctx, s.db, kind)
	if err != nil {
		return nil, err
	}

	identities := make([]domain.Identity, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		identities = append(identities, *item)
	}
	return identities, nil
}

func (s *Service) parseID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, domain.ErrInvalidID
	}
	return id, nil
}

func normalizeKind(raw string) (domain.IdentityKind, error) {
	switch domain.IdentityKind(strings.ToLower(strings.TrimSpace(raw))) {
	case domain.IdentityKindAdmin:
		return domain.IdentityKindAdmin, nil
	case domain.IdentityKindSales:
		return domain.IdentityKindSales, nil
	default:
		return "", domain.ErrInvalidKind
	}
}
