package components

import (
	"circulation/internal/infra/notify"
	"circulation/internal/infra/readstore"
	"circulation/internal/infra/uow"
	"circulation/internal/usecase/commands"
	"circulation/internal/usecase/queries"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/fx"
)

var PersistenceModule = fx.Module("persistence",
	fx.Provide(
		NewReadDB,
		// Write side: one unit of work, repositories bound per transaction
		uow.NewPostgresUoW,
		// Read side
		fx.Annotate(
			readstore.NewLoanReadStore,
			fx.As(new(queries.LoanViewRepo)),
		),
		fx.Annotate(
			readstore.NewReservationReadStore,
			fx.As(new(queries.ReservationViewRepo)),
		),
		fx.Annotate(
			readstore.NewAvailabilityReadStore,
			fx.As(new(queries.AvailabilityViewRepo)),
		),
		fx.Annotate(
			readstore.NewRuleReadStore,
			fx.As(new(queries.RuleViewRepo)),
		),
		fx.Annotate(
			readstore.NewCatalogReadStore,
			fx.As(new(commands.CatalogReads)),
		),
		fx.Annotate(
			notify.NewLogNotifier,
			fx.As(new(commands.Notifier)),
		),
	),
)

func NewReadDB(pool *pgxpool.Pool) readstore.DB {
	return pool
}
