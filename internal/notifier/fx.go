package notifier

import (
	"github.com/smallbiznis/siftbridge/internal/cart"
	"github.com/smallbiznis/siftbridge/internal/events"
	"go.uber.org/fx"
)

var Module = fx.Module("notifier",
	fx.Provide(func(svc *cart.Service) CartReader { return svc }),
	fx.Provide(New),
	fx.Invoke(func(n *Notifier, src events.Source) {
		n.Register(src)
	}),
)
