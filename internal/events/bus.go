package events

import "context"

// Source exposes typed subscriptions per event kind. Subscribers register
// during startup, before the HTTP server accepts traffic.
type Source interface {
	OnLoginSucceeded(h func(ctx context.Context, e LoginSucceeded))
	OnLoginFailed(h func(ctx context.Context, e LoginFailed))
	OnLoggedOut(h func(ctx context.Context, e LoggedOut))
	OnAccountCreated(h func(ctx context.Context, e AccountCreated))
	OnAccountUpdated(h func(ctx context.Context, e AccountUpdated))
	OnItemAddedToCart(h func(ctx context.Context, e ItemAddedToCart))
	OnItemRemovedFromCart(h func(ctx context.Context, e ItemRemovedFromCart))
}

// Bus is a synchronous in-process event bus. Publishing runs every handler to
// completion inside the publishing request; there is no buffering and no
// redelivery.
type Bus struct {
	loginSucceeded      []func(context.Context, LoginSucceeded)
	loginFailed         []func(context.Context, LoginFailed)
	loggedOut           []func(context.Context, LoggedOut)
	accountCreated      []func(context.Context, AccountCreated)
	accountUpdated      []func(context.Context, AccountUpdated)
	itemAddedToCart     []func(context.Context, ItemAddedToCart)
	itemRemovedFromCart []func(context.Context, ItemRemovedFromCart)
}

func NewBus() *Bus {
	return &Bus{}
}

func (b *Bus) OnLoginSucceeded(h func(ctx context.Context, e LoginSucceeded)) {
	b.loginSucceeded = append(b.loginSucceeded, h)
}

func (b *Bus) OnLoginFailed(h func(ctx context.Context, e LoginFailed)) {
	b.loginFailed = append(b.loginFailed, h)
}

func (b *Bus) OnLoggedOut(h func(ctx context.Context, e LoggedOut)) {
	b.loggedOut = append(b.loggedOut, h)
}

func (b *Bus) OnAccountCreated(h func(ctx context.Context, e AccountCreated)) {
	b.accountCreated = append(b.accountCreated, h)
}

func (b *Bus) OnAccountUpdated(h func(ctx context.Context, e AccountUpdated)) {
	b.accountUpdated = append(b.accountUpdated, h)
}

func (b *Bus) OnItemAddedToCart(h func(ctx context.Context, e ItemAddedToCart)) {
	b.itemAddedToCart = append(b.itemAddedToCart, h)
}

func (b *Bus) OnItemRemovedFromCart(h func(ctx context.Context, e ItemRemovedFromCart)) {
	b.itemRemovedFromCart = append(b.itemRemovedFromCart, h)
}

func (b *Bus) PublishLoginSucceeded(ctx context.Context, e LoginSucceeded) {
	for _, h := range b.loginSucceeded {
		h(ctx, e)
	}
}

func (b *Bus) PublishLoginFailed(ctx context.Context, e LoginFailed) {
	for _, h := range b.loginFailed {
		h(ctx, e)
	}
}

func (b *Bus) PublishLoggedOut(ctx context.Context, e LoggedOut) {
	for _, h := range b.loggedOut {
		h(ctx, e)
	}
}

func (b *Bus) PublishAccountCreated(ctx context.Context, e AccountCreated) {
	for _, h := range b.accountCreated {
		h(ctx, e)
	}
}

func (b *Bus) PublishAccountUpdated(ctx context.Context, e AccountUpdated) {
	for _, h := range b.accountUpdated {
		h(ctx, e)
	}
}

func (b *Bus) PublishItemAddedToCart(ctx context.Context, e ItemAddedToCart) {
	for _, h := range b.itemAddedToCart {
		h(ctx, e)
	}
}

func (b *Bus) PublishItemRemovedFromCart(ctx context.Context, e ItemRemovedFromCart) {
	for _, h := range b.itemRemovedFromCart {
		h(ctx, e)
	}
}
