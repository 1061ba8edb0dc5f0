package service

import (
	"context"

	"github.com/smallbiznis/siftbridge/internal/config"
	"github.com/smallbiznis/siftbridge/internal/settings/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Params struct {
	fx.In

	Cfg  config.Config
	Log  *zap.Logger
	Repo domain.Repository
}

type Service struct {
	cfg  config.Config
	log  *zap.Logger
	repo domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		cfg:  p.Cfg,
		log:  p.Log.Named("settings.service"),
		repo: p.Repo,
	}
}

func (s *Service) JSKey(ctx context.Context) (string, error) {
	return s.Get(ctx, domain.KeyJSKey)
}

func (s *Service) APIKey(ctx context.Context) (string, error) {
	return s.Get(ctx, domain.KeyAPIKey)
}

func (s *Service) Get(ctx context.Context, key string) (string, error) {
	if v := s.constant(key); v != "" {
		return v, nil
	}
	return s.repo.Get(ctx, key)
}

func (s *Service) Set(ctx context.Context, key, value string) error {
	return s.repo.Set(ctx, key, value)
}

func (s *Service) Locked(key string) bool {
	return s.constant(key) != ""
}

func (s *Service) constant(key string) string {
	switch key {
	case domain.KeyJSKey:
		return s.cfg.SiftJSKey
	case domain.KeyAPIKey:
		return s.cfg.SiftAPIKey
	default:
		return ""
	}
}
