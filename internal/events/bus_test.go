package events

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBusRunsHandlersInOrder(t *testing.T) {
	bus := NewBus()

	var order []int
	bus.OnLoginFailed(func(ctx context.Context, e LoginFailed) {
		order = append(order, 1)
	})
	bus.OnLoginFailed(func(ctx context.Context, e LoginFailed) {
		order = append(order, 2)
	})

	bus.PublishLoginFailed(context.Background(), LoginFailed{Login: "bob"})

	require.Len(t, order, 2)
	assert.Equal(t, []int{1, 2}, order)
}

func TestBusDeliversPayload(t *testing.T) {
	bus := NewBus()

	var got ItemAddedToCart
	bus.OnItemAddedToCart(func(ctx context.Context, e ItemAddedToCart) {
		got = e
	})

	sent := ItemAddedToCart{LineKey: "k1", Quantity: 3}
	bus.PublishItemAddedToCart(context.Background(), sent)

	assert.Equal(t, sent, got)
}

func TestBusWithoutSubscribersIsNoop(t *testing.T) {
	bus := NewBus()

	require.NotPanics(t, func() {
		bus.PublishLoggedOut(context.Background(), LoggedOut{})
		bus.PublishAccountCreated(context.Background(), AccountCreated{})
		bus.PublishItemRemovedFromCart(context.Background(), ItemRemovedFromCart{LineKey: "k"})
	})
}

func TestBusSatisfiesSource(t *testing.T) {
	var src Source = NewBus()
	assert.NotNil(t, src)
}
