package notifier

import (
	"context"

	accountdomain "github.com/smallbiznis/siftbridge/internal/account/domain"
	catalogdomain "github.com/smallbiznis/siftbridge/internal/catalog/domain"
	"github.com/smallbiznis/siftbridge/internal/config"
	"github.com/smallbiznis/siftbridge/internal/events"
	"github.com/smallbiznis/siftbridge/internal/identity"
	"github.com/smallbiznis/siftbridge/internal/observability/metrics"
	"github.com/smallbiznis/siftbridge/internal/session"
	"github.com/smallbiznis/siftbridge/internal/sift"
	settingsdomain "github.com/smallbiznis/siftbridge/internal/settings/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// CartReader looks cart lines up by key on the request session. The remove
// handler needs it because the event only carries the line key.
type CartReader interface {
	Line(ctx context.Context, key string) (session.CartLine, bool)
}

type Params struct {
	fx.In

	Cfg      config.Config
	Log      *zap.Logger
	Forward  *config.ForwardConfigHolder
	DB       *gorm.DB
	Users    *identity.Resolver
	Sessions *session.Resolver
	Accounts accountdomain.Repository
	Catalog  catalogdomain.Repository
	Settings settingsdomain.Service
	Cart     CartReader
	Metrics  *metrics.Metrics
}

// Notifier maps storefront lifecycle events onto scoring-API calls. Each
// handler resolves identity and session, assembles the payload, dispatches
// once, and returns; a failed dispatch never fails the triggering action.
type Notifier struct {
	cfg      config.Config
	log      *zap.Logger
	forward  *config.ForwardConfigHolder
	db       *gorm.DB
	users    *identity.Resolver
	sessions *session.Resolver
	accounts accountdomain.Repository
	catalog  catalogdomain.Repository
	settings settingsdomain.Service
	cart     CartReader
	metrics  *metrics.Metrics
}

func New(p Params) *Notifier {
	return &Notifier{
		cfg:      p.Cfg,
		log:      p.Log.Named("notifier"),
		forward:  p.Forward,
		db:       p.DB,
		users:    p.Users,
		sessions: p.Sessions,
		accounts: p.Accounts,
		catalog:  p.Catalog,
		settings: p.Settings,
		cart:     p.Cart,
		metrics:  p.Metrics,
	}
}

// Register subscribes the notifier to every event kind it forwards.
func (n *Notifier) Register(src events.Source) {
	src.OnLoginSucceeded(n.handleLoginSucceeded)
	src.OnLoginFailed(n.handleLoginFailed)
	src.OnLoggedOut(n.handleLoggedOut)
	src.OnAccountCreated(n.handleAccountCreated)
	src.OnAccountUpdated(n.handleAccountUpdated)
	src.OnItemAddedToCart(n.handleItemAddedToCart)
	src.OnItemRemovedFromCart(n.handleItemRemovedFromCart)
}

// dispatch performs one tracking call. Transport failures and API-reported
// errors are written to the log once and swallowed; the caller always
// continues.
func (n *Notifier) dispatch(ctx context.Context, event string, properties map[string]any, wantScore bool) *sift.Response {
	if !n.forward.Enabled(event) {
		return nil
	}

	apiKey, err := n.settings.APIKey(ctx)
	if err != nil || apiKey == "" {
		n.log.Warn("sift api key unavailable", zap.String("event", event), zap.Error(err))
		return nil
	}

	client := sift.NewClient(apiKey, n.cfg.SiftBaseURL)

	n.metrics.EventsDispatched.WithLabelValues(event).Inc()

	resp, err := client.Track(ctx, event, properties, wantScore)
	if err != nil {
		n.metrics.DispatchErrors.WithLabelValues(event).Inc()
		n.log.Error("sift track failed", zap.String("event", event), zap.Error(err))
		return nil
	}
	if !resp.OK() {
		n.metrics.DispatchErrors.WithLabelValues(event).Inc()
		n.log.Error("sift api error",
			zap.String("event", event),
			zap.Int("status", resp.Status),
			zap.String("error_message", resp.ErrorMessage),
		)
	}

	return resp
}

// sessionID resolves the site-scoped session id, logging and returning false
// when the request has no session provider attached.
func (n *Notifier) sessionID(ctx context.Context) (string, bool) {
	sid, err := n.sessions.SessionID(ctx)
	if err != nil {
		n.log.Error("session resolve failed", zap.Error(err))
		return "", false
	}
	return sid, true
}
