package cart

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/oklog/ulid/v2"
	catalogdomain "github.com/smallbiznis/siftbridge/internal/catalog/domain"
	"github.com/smallbiznis/siftbridge/internal/events"
	"github.com/smallbiznis/siftbridge/internal/session"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	ErrNoSession    = errors.New("no session handle in request context")
	ErrLineNotFound = errors.New("cart line not found")
)

type Params struct {
	fx.In

	DB      *gorm.DB
	Log     *zap.Logger
	Catalog catalogdomain.Repository
	Bus     *events.Bus
}

// Service keeps the visitor cart inside the session record, the way the
// commerce layer does. Line keys are opaque and stable for the life of the
// line.
type Service struct {
	db      *gorm.DB
	log     *zap.Logger
	catalog catalogdomain.Repository
	bus     *events.Bus
}

func New(p Params) *Service {
	return &Service{
		db:      p.DB,
		log:     p.Log.Named("cart.service"),
		catalog: p.Catalog,
		bus:     p.Bus,
	}
}

// Add writes a line to the session cart and publishes the add event. The
// variation id, when set, names a variation row of the product.
func (s *Service) Add(ctx context.Context, productID, variationID snowflake.ID, quantity int) (session.CartLine, error) {
	h, ok := session.FromContext(ctx)
	if !ok {
		return session.CartLine{}, ErrNoSession
	}

	if quantity <= 0 {
		quantity = 1
	}

	lookupID := productID
	if variationID != 0 {
		lookupID = variationID
	}
	product, err := s.catalog.FindByID(ctx, s.db, lookupID)
	if err != nil {
		return session.CartLine{}, err
	}
	if product == nil {
		return session.CartLine{}, catalogdomain.ErrNotFound
	}

	line := session.CartLine{
		Key:         ulid.Make().String(),
		ProductID:   productID,
		VariationID: variationID,
		Quantity:    quantity,
	}

	data := h.Data()
	if data.Cart == nil {
		data.Cart = map[string]session.CartLine{}
	}
	data.Cart[line.Key] = line

	if err := h.Save(ctx); err != nil {
		return session.CartLine{}, err
	}

	s.bus.PublishItemAddedToCart(ctx, events.ItemAddedToCart{
		LineKey:     line.Key,
		ProductID:   productID,
		VariationID: variationID,
		Quantity:    quantity,
	})

	return line, nil
}

// Remove publishes the remove event while the line is still in the cart so
// subscribers can look it up by key, then deletes it.
func (s *Service) Remove(ctx context.Context, key string) error {
	h, ok := session.FromContext(ctx)
	if !ok {
		return ErrNoSession
	}

	data := h.Data()
	if _, exists := data.Cart[key]; !exists {
		return ErrLineNotFound
	}

	s.bus.PublishItemRemovedFromCart(ctx, events.ItemRemovedFromCart{LineKey: key})

	delete(data.Cart, key)
	return h.Save(ctx)
}

// Line returns the cart line for key on the request session.
func (s *Service) Line(ctx context.Context, key string) (session.CartLine, bool) {
	h, ok := session.FromContext(ctx)
	if !ok {
		return session.CartLine{}, false
	}
	line, exists := h.Data().Cart[key]
	return line, exists
}

// Lines returns the full cart for the request session.
func (s *Service) Lines(ctx context.Context) map[string]session.CartLine {
	h, ok := session.FromContext(ctx)
	if !ok {
		return nil
	}
	return h.Data().Cart
}
