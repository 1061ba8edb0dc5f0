package notifier

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/siftbridge/internal/events"
	"github.com/smallbiznis/siftbridge/internal/identity"
	"github.com/smallbiznis/siftbridge/internal/sift"
	"go.uber.org/zap"
)

func (n *Notifier) loginEvent(ctx context.Context, status string, ref identity.UserRef) {
	sid, ok := n.sessionID(ctx)
	if !ok {
		return
	}

	n.dispatch(ctx, sift.EventLogin, map[string]any{
		"$user_id":      n.users.UserID(ctx, ref),
		"$session_id":   sid,
		"$login_status": status,
	}, false)
}

func (n *Notifier) handleLoginSucceeded(ctx context.Context, e events.LoginSucceeded) {
	n.loginEvent(ctx, sift.LoginStatusSuccess, identity.ByRecord(e.User))
}

func (n *Notifier) handleLoginFailed(ctx context.Context, e events.LoginFailed) {
	n.loginEvent(ctx, sift.LoginStatusFailure, identity.ByString(e.Login))
}

func (n *Notifier) handleLoggedOut(ctx context.Context, _ events.LoggedOut) {
	sid, ok := n.sessionID(ctx)
	if !ok {
		return
	}

	n.dispatch(ctx, sift.EventLogout, map[string]any{
		"$user_id":    n.users.UserID(ctx, identity.Current()),
		"$session_id": sid,
	}, false)
}

func (n *Notifier) handleAccountCreated(ctx context.Context, e events.AccountCreated) {
	n.accountEvent(ctx, sift.EventCreateAccount, e.UserID, nil)
}

func (n *Notifier) handleAccountUpdated(ctx context.Context, e events.AccountUpdated) {
	n.accountEvent(ctx, sift.EventUpdateAccount, e.UserID, func(data map[string]any, passwordHash string) {
		data["$changed_password"] = e.PriorPasswordHash != "" && passwordHash != e.PriorPasswordHash
	})
}

func (n *Notifier) accountEvent(ctx context.Context, event string, userID snowflake.ID, extend func(map[string]any, string)) {
	sid, ok := n.sessionID(ctx)
	if !ok {
		return
	}

	data := map[string]any{
		"$user_id":    n.users.UserID(ctx, identity.ByID(userID)),
		"$session_id": sid,
	}
	data["$user_email"] = data["$user_id"]

	user, err := n.accounts.FindByID(ctx, n.db, userID)
	if err != nil {
		n.log.Warn("user meta lookup failed", zap.Error(err))
	}
	if user != nil {
		if extend != nil {
			extend(data, user.PasswordHash)
		}
		data = ApplyConditionalFields(data, user.Meta)
	} else if extend != nil {
		extend(data, "")
	}

	n.dispatch(ctx, event, data, false)
}

func (n *Notifier) handleItemAddedToCart(ctx context.Context, e events.ItemAddedToCart) {
	productID := e.ProductID
	if e.VariationID != 0 {
		productID = e.VariationID
	}
	n.cartEvent(ctx, sift.EventAddItemToCart, productID, e.Quantity)
}

func (n *Notifier) handleItemRemovedFromCart(ctx context.Context, e events.ItemRemovedFromCart) {
	line, ok := n.cart.Line(ctx, e.LineKey)
	if !ok {
		n.log.Warn("removed cart line not found", zap.String("line_key", e.LineKey))
		return
	}
	productID := line.ProductID
	if line.VariationID != 0 {
		productID = line.VariationID
	}
	n.cartEvent(ctx, sift.EventRemoveItemFromCart, productID, line.Quantity)
}

func (n *Notifier) cartEvent(ctx context.Context, event string, productID snowflake.ID, quantity int) {
	sid, ok := n.sessionID(ctx)
	if !ok {
		return
	}

	item, err := n.BuildItemFields(ctx, productID, quantity)
	if err != nil {
		n.log.Warn("item lookup failed",
			zap.String("event", event),
			zap.String("product_id", productID.String()),
			zap.Error(err),
		)
		return
	}

	n.dispatch(ctx, event, map[string]any{
		"$user_id":    n.users.UserID(ctx, identity.Current()),
		"$session_id": sid,
		"$item":       item,
	}, false)
}
