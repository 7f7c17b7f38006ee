// Package repositories declares the persistence contracts the domain layer
// depends on. Implementations live in internal/infrastructure/repositories.
package repositories

import (
	"context"

	"github.com/j50301m/wallet-server/internal/domain/entities"
)

// UserWalletRepository persists player wallets.
type UserWalletRepository interface {
	// Get returns the wallet for the given identity, or nil when absent.
	Get(ctx context.Context, info *entities.WalletInfo) (*entities.UserWallet, error)
	// GetForUpdate is Get with a row lock, for use inside the ambient
	// transaction of a mutating sequence.
	GetForUpdate(ctx context.Context, info *entities.WalletInfo) (*entities.UserWallet, error)
	Insert(ctx context.Context, wallet *entities.UserWallet) error
	Update(ctx context.Context, wallet *entities.UserWallet) error
	// GetListWithRollover returns the paginated wallet listing joined to the
	// wagering ledger, newest updates first.
	GetListWithRollover(ctx context.Context, query *entities.SelectWalletsQuery) ([]*entities.UserWalletWithRollover, error)
}

// WalletTransactionRepository persists the immutable ledger entries.
type WalletTransactionRepository interface {
	Insert(ctx context.Context, txn *entities.WalletTransaction) error
	// GetListBySourceID returns every entry recorded against one external
	// source transaction id, unordered.
	GetListBySourceID(ctx context.Context, clientID, userID, sourceTxnID int64) ([]*entities.WalletTransaction, error)
}

// RolloverMainRepository persists the per-wallet wagering ledger totals.
type RolloverMainRepository interface {
	Get(ctx context.Context, info *entities.WalletInfo) (*entities.RolloverMain, error)
	Insert(ctx context.Context, main *entities.RolloverMain) error
	Update(ctx context.Context, main *entities.RolloverMain) error
}

// RolloverRecordRepository persists the ledger's signed delta records.
type RolloverRecordRepository interface {
	Get(ctx context.Context, id int64) (*entities.RolloverRecord, error)
	// GetByWalletTxnID returns the record pinned to the given wallet
	// transaction, or nil when the transaction produced none.
	GetByWalletTxnID(ctx context.Context, walletTxnID int64) (*entities.RolloverRecord, error)
	Insert(ctx context.Context, record *entities.RolloverRecord) error
}

// WalletSourceRepository reads the wallet_source lookup table.
type WalletSourceRepository interface {
	Get(ctx context.Context, id int64) (*entities.WalletSource, error)
}
