package components

import (
	"circulation/internal/pkg/clock"
	"circulation/internal/usecase/commands"
	"circulation/internal/usecase/queries"

	"go.uber.org/fx"
)

var UseCaseModule = fx.Module("usecase",
	usecaseBaseOption,
	usecaseCommandsModule,
	usecaseQueriesModule,
)

var usecaseBaseOption = fx.Provide(
	clock.NewRealClock,
)

var usecaseCommandsModule = fx.Module("usecase/commands",
	fx.Provide(
		commands.NewCirculationCommands,
		commands.NewReservationCommands,
		commands.NewFeeCommands,
		commands.NewRuleCommands,
		commands.NewCopyCommands,
	),
)

var usecaseQueriesModule = fx.Module("usecase/queries",
	fx.Provide(
		queries.NewLoanQueries,
		queries.NewReservationQueries,
		queries.NewRuleQueries,
	),
)
