package events

import "go.uber.org/fx"

var Module = fx.Module("events",
	fx.Provide(NewBus),
	fx.Provide(func(b *Bus) Source { return b }),
)
