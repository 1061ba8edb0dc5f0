package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gosimple/slug"
	"github.com/smallbiznis/siftbridge/internal/catalog/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
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
		log:   p.Log.Named("catalog.service"),
		genID: p.GenID,
		repo:  p.Repo,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateProductRequest) (domain.Product, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return domain.Product{}, domain.ErrInvalidTitle
	}
	if req.Price < 0 {
		return domain.Product{}, domain.ErrInvalidPrice
	}

	var parentID snowflake.ID
	if strings.TrimSpace(req.ParentID) != "" {
		parsed, err := snowflake.ParseString(strings.TrimSpace(req.ParentID))
		if err != nil {
			return domain.Product{}, domain.ErrNotFound
		}
		parentID = parsed
	}

	now := time.Now().UTC()
	product := domain.Product{
		ID:         s.genID.Generate(),
		ParentID:   parentID,
		Title:      title,
		Slug:       slug.Make(title),
		SKU:        strings.TrimSpace(req.SKU),
		Price:      req.Price,
		Attributes: datatypes.JSONMap{},
		Categories: terms(s.genID, req.Categories, func(id snowflake.ID, name, sl string) domain.Category {
			return domain.Category{ID: id, Name: name, Slug: sl}
		}),
		Tags: terms(s.genID, req.Tags, func(id snowflake.ID, name, sl string) domain.Tag {
			return domain.Tag{ID: id, Name: name, Slug: sl}
		}),
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Insert(ctx, s.db, &product); err != nil {
		return domain.Product{}, err
	}

	return product, nil
}

func (s *Service) GetByID(ctx context.Context, id snowflake.ID) (domain.Product, error) {
	product, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.Product{}, err
	}
	if product == nil {
		return domain.Product{}, domain.ErrNotFound
	}
	return *product, nil
}

func terms[T any](genID *snowflake.Node, names []string, build func(snowflake.ID, string, string) T) []T {
	out := make([]T, 0, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		out = append(out, build(genID.Generate(), name, slug.Make(name)))
	}
	return out
}
