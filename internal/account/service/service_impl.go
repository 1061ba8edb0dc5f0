package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/siftbridge/internal/account/domain"
	"github.com/smallbiznis/siftbridge/internal/events"
	"github.com/smallbiznis/siftbridge/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Repo  domain.Repository
	Bus   *events.Bus
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	repo  domain.Repository
	bus   *events.Bus
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("account.service"),
		genID: p.GenID,
		repo:  p.Repo,
		bus:   p.Bus,
	}
}

func (s *Service) Register(ctx context.Context, req domain.RegisterRequest) (domain.User, error) {
	email := strings.TrimSpace(req.Email)
	if email == "" || !strings.Contains(email, "@") {
		return domain.User{}, domain.ErrInvalidEmail
	}

	login := strings.TrimSpace(req.Login)
	if login == "" {
		login = email
	}

	if len(req.Password) < 8 {
		return domain.User{}, domain.ErrInvalidPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return domain.User{}, err
	}

	meta := datatypes.JSONMap{}
	for k, v := range req.Meta {
		meta[k] = v
	}

	now := time.Now().UTC()
	user := domain.User{
		ID:           s.genID.Generate(),
		Email:        email,
		Login:        login,
		PasswordHash: string(hash),
		Meta:         meta,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.repo.Insert(ctx, s.db, &user); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return domain.User{}, domain.ErrAlreadyExists
		}
		return domain.User{}, err
	}

	s.bus.PublishAccountCreated(ctx, events.AccountCreated{UserID: user.ID})

	return user, nil
}

func (s *Service) Authenticate(ctx context.Context, login, password string) (domain.User, error) {
	login = strings.TrimSpace(login)

	user, err := s.find(ctx, login)
	if err != nil {
		return domain.User{}, err
	}
	if user == nil {
		s.bus.PublishLoginFailed(ctx, events.LoginFailed{Login: login})
		return domain.User{}, domain.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		s.bus.PublishLoginFailed(ctx, events.LoginFailed{Login: login})
		return domain.User{}, domain.ErrInvalidCredentials
	}

	s.bus.PublishLoginSucceeded(ctx, events.LoginSucceeded{User: user})

	return *user, nil
}

func (s *Service) UpdateProfile(ctx context.Context, id snowflake.ID, req domain.UpdateProfileRequest) (domain.User, error) {
	user, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.User{}, err
	}
	if user == nil {
		return domain.User{}, domain.ErrNotFound
	}

	priorHash := user.PasswordHash

	if email := strings.TrimSpace(req.Email); email != "" {
		if !strings.Contains(email, "@") {
			return domain.User{}, domain.ErrInvalidEmail
		}
		user.Email = email
	}

	if req.NewPassword != "" {
		if len(req.NewPassword) < 8 {
			return domain.User{}, domain.ErrInvalidPassword
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
		if err != nil {
			return domain.User{}, err
		}
		user.PasswordHash = string(hash)
	}

	if req.Meta != nil {
		if user.Meta == nil {
			user.Meta = datatypes.JSONMap{}
		}
		for k, v := range req.Meta {
			user.Meta[k] = v
		}
	}

	user.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, s.db, user); err != nil {
		return domain.User{}, err
	}

	s.bus.PublishAccountUpdated(ctx, events.AccountUpdated{
		UserID:            user.ID,
		PriorPasswordHash: priorHash,
	})

	return *user, nil
}

func (s *Service) GetByID(ctx context.Context, id snowflake.ID) (domain.User, error) {
	user, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.User{}, err
	}
	if user == nil {
		return domain.User{}, domain.ErrNotFound
	}
	return *user, nil
}

// find mirrors the login form: an input that looks like an email address is
// looked up by email, anything else by login name.
func (s *Service) find(ctx context.Context, login string) (*domain.User, error) {
	if strings.Contains(login, "@") {
		return s.repo.FindByEmail(ctx, s.db, login)
	}
	return s.repo.FindByLogin(ctx, s.db, login)
}
