// Package di wires the application graph: repositories, engines, the
// currency oracle and the application services.
package di

import (
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"

	domainrepos "github.com/j50301m/wallet-server/internal/domain/repositories"
	"github.com/j50301m/wallet-server/internal/domain/services/currency"
	"github.com/j50301m/wallet-server/internal/domain/services/gamewallet"
	"github.com/j50301m/wallet-server/internal/domain/services/playerwallet"
	"github.com/j50301m/wallet-server/internal/domain/services/rollover"
	"github.com/j50301m/wallet-server/internal/domain/services/wallet"
	"github.com/j50301m/wallet-server/internal/infrastructure/config"
	"github.com/j50301m/wallet-server/internal/infrastructure/oracle"
	"github.com/j50301m/wallet-server/internal/infrastructure/repositories"
	"github.com/j50301m/wallet-server/pkg/logger"
)

// Container holds every constructed component of the service.
type Container struct {
	Config *config.Config
	Logger *logger.Logger
	DB     *sqlx.DB
	Redis  *redis.Client

	UserWalletRepo     domainrepos.UserWalletRepository
	WalletTxnRepo      domainrepos.WalletTransactionRepository
	RolloverMainRepo   domainrepos.RolloverMainRepository
	RolloverRecordRepo domainrepos.RolloverRecordRepository
	WalletSourceRepo   domainrepos.WalletSourceRepository

	WalletService   *wallet.Service
	RolloverService *rollover.Service
	CurrencyService currency.Service

	GameWalletService   *gamewallet.Service
	PlayerWalletService *playerwallet.Service
}

// NewContainer builds the full dependency graph.
func NewContainer(cfg *config.Config, log *logger.Logger, db *sqlx.DB) *Container {
	c := &Container{
		Config: cfg,
		Logger: log,
		DB:     db,
	}

	c.Redis = redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
		PoolSize: cfg.Redis.PoolSize,
	})

	c.UserWalletRepo = repositories.NewUserWalletRepository(db)
	c.WalletTxnRepo = repositories.NewWalletTransactionRepository(db)
	c.RolloverMainRepo = repositories.NewRolloverMainRepository(db)
	c.RolloverRecordRepo = repositories.NewRolloverRecordRepository(db)
	c.WalletSourceRepo = repositories.NewWalletSourceRepository(db)

	c.WalletService = wallet.NewService(c.UserWalletRepo, c.WalletTxnRepo, log)
	c.RolloverService = rollover.NewService(c.RolloverMainRepo, c.RolloverRecordRepo, log)

	oracleClient := oracle.NewClient(cfg.Oracle, c.Redis, log)
	c.CurrencyService = currency.NewService(oracleClient)

	c.GameWalletService = gamewallet.NewService(db,
		c.WalletService, c.RolloverService, c.CurrencyService, c.WalletSourceRepo, log)
	c.PlayerWalletService = playerwallet.NewService(db,
		c.UserWalletRepo, c.WalletSourceRepo,
		c.WalletService, c.RolloverService, c.CurrencyService, log)

	return c
}

// Close releases the container's own resources. The database pool is
// closed by the shutdown manager.
func (c *Container) Close() error {
	if c.Redis != nil {
		return c.Redis.Close()
	}
	return nil
}
