package components

import (
	"context"

	"circulation/internal/handler"
	"circulation/internal/handler/api"
	"circulation/internal/usecase/commands"

	"go.uber.org/fx"
)

var HandlerModule = fx.Module("handler",
	fx.Provide(
		api.NewCirculationHandler,
		api.NewReservationHandler,
		api.NewFeeHandler,
		api.NewRuleHandler,
		api.NewCopyHandler,
	),
	fx.Invoke(
		seedRules,
		handler.NewRouter,
	),
)

// seedRules makes sure every recognized policy rule exists before the first
// request is served. Existing values are never overwritten.
func seedRules(lc fx.Lifecycle, rules commands.RuleCommands) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return rules.SeedDefaults(ctx)
		},
	})
}
