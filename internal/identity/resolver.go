package identity

import (
	"context"
	"strings"

	accountdomain "github.com/smallbiznis/siftbridge/internal/account/domain"
	"github.com/smallbiznis/siftbridge/internal/session"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB   *gorm.DB
	Log  *zap.Logger
	Repo accountdomain.Repository
}

// Resolver maps a UserRef to the identifier the scoring API keys accounts
// by: the account's lowercase email address. Guest checkout and multi-site
// installs share email, so it is more stable than the numeric id.
type Resolver struct {
	db   *gorm.DB
	log  *zap.Logger
	repo accountdomain.Repository
}

func NewResolver(p Params) *Resolver {
	return &Resolver{
		db:   p.DB,
		log:  p.Log.Named("identity.resolver"),
		repo: p.Repo,
	}
}

// UserID resolves ref to a lowercase email address, or "" when the reference
// does not match an account. Unresolvable input is not an error.
func (r *Resolver) UserID(ctx context.Context, ref UserRef) string {
	user := r.lookup(ctx, ref)
	if user == nil {
		return ""
	}
	return strings.ToLower(user.Email)
}

func (r *Resolver) lookup(ctx context.Context, ref UserRef) *accountdomain.User {
	var (
		user *accountdomain.User
		err  error
	)

	switch ref.kind {
	case refCurrent:
		user, err = r.currentUser(ctx)
	case refByID:
		user, err = r.repo.FindByID(ctx, r.db, ref.id)
	case refByEmail:
		user, err = r.repo.FindByEmail(ctx, r.db, ref.str)
	case refByLogin:
		user, err = r.repo.FindByLogin(ctx, r.db, ref.str)
	case refByRecord:
		user = ref.user
	}

	if err != nil {
		r.log.Warn("user lookup failed", zap.Error(err))
		return nil
	}
	return user
}

func (r *Resolver) currentUser(ctx context.Context) (*accountdomain.User, error) {
	h, ok := session.FromContext(ctx)
	if !ok || h.Data().UserID == 0 {
		return nil, nil
	}
	return r.repo.FindByID(ctx, r.db, h.Data().UserID)
}
