package components

import (
	repo_impl "storefront/internal/infra/repository"
	"storefront/internal/pkg/config"
	"storefront/internal/usecase/commands"
	"storefront/internal/usecase/queries"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
)

var RepositoryModule = fx.Module("repository",
	fx.Provide(
		fx.Annotate(
			NewCartSnapshotRepository,
			fx.As(new(commands.CartRepository)),
			fx.As(new(queries.CartReader)),
		),
		fx.Annotate(
			NewCheckoutSessionRepository,
			fx.As(new(commands.CheckoutSessionRepository)),
			fx.As(new(queries.SessionReader)),
		),
		fx.Annotate(
			repo_impl.NewIdempotencyRepository,
			fx.As(new(commands.IdempotencyRepository)),
		),
		fx.Annotate(
			repo_impl.NewPromotionRepository,
			fx.As(new(commands.PromotionRepository)),
			fx.As(new(queries.PromotionReader)),
		),
		fx.Annotate(
			repo_impl.NewCatalogRepository,
			fx.As(new(commands.CatalogRepository)),
		),
		fx.Annotate(
			repo_impl.NewOrderRepository,
			fx.As(new(commands.OrderRepository)),
			fx.As(new(queries.OrderViewRepo)),
		),
		NewTxStarter,
	),
)

func NewTxStarter(pool *pgxpool.Pool) commands.TxStarter {
	return pool
}

func NewCartSnapshotRepository(client *redis.Client, cfg config.Config) *repo_impl.CartSnapshotRepository {
	return repo_impl.NewCartSnapshotRepository(client, cfg.Cart.SnapshotTTL)
}

func NewCheckoutSessionRepository(client *redis.Client, cfg config.Config) *repo_impl.CheckoutSessionRepository {
	return repo_impl.NewCheckoutSessionRepository(client, cfg.Cart.SessionTTL)
}
