package repositories

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/j50301m/wallet-server/internal/domain/entities"
	domainerrors "github.com/j50301m/wallet-server/internal/domain/errors"
	"github.com/j50301m/wallet-server/internal/domain/repositories"
	"github.com/j50301m/wallet-server/internal/infrastructure/database"
)

type walletTransactionRepository struct {
	db *sqlx.DB
}

// NewWalletTransactionRepository creates the postgres ledger repository.
func NewWalletTransactionRepository(db *sqlx.DB) repositories.WalletTransactionRepository {
	return &walletTransactionRepository{db: db}
}

func (r *walletTransactionRepository) ext(ctx context.Context) sqlx.ExtContext {
	if tx, ok := database.TxFromContext(ctx); ok {
		return tx
	}
	return r.db
}

func (r *walletTransactionRepository) Insert(ctx context.Context, txn *entities.WalletTransaction) error {
	query := `
		INSERT INTO wallet_transaction (id, parent_id, client_id, user_id, currency_id,
			wallet_source_id, action, transaction_source_id, before_amount, change_amount,
			after_amount, status, create_at, update_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`

	_, err := r.ext(ctx).ExecContext(ctx, query,
		txn.ID, txn.ParentID, txn.ClientID, txn.UserID, txn.CurrencyID,
		txn.WalletSourceID, txn.Action, txn.TransactionSourceID, txn.BeforeAmount,
		txn.ChangeAmount, txn.AfterAmount, txn.Status, txn.CreateAt, txn.UpdateAt)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return domainerrors.ValidationError("transaction", "transaction already exists")
		}
		return fmt.Errorf("failed to insert wallet transaction: %w", err)
	}
	return nil
}

func (r *walletTransactionRepository) GetListBySourceID(ctx context.Context, clientID, userID, sourceTxnID int64) ([]*entities.WalletTransaction, error) {
	query := `
		SELECT id, parent_id, client_id, user_id, currency_id, wallet_source_id,
			action, transaction_source_id, before_amount, change_amount, after_amount,
			status, create_at, update_at
		FROM wallet_transaction
		WHERE client_id = $1 AND user_id = $2 AND transaction_source_id = $3`

	txns := make([]*entities.WalletTransaction, 0)
	if err := sqlx.SelectContext(ctx, r.ext(ctx), &txns, query, clientID, userID, sourceTxnID); err != nil {
		return nil, fmt.Errorf("failed to list wallet transactions: %w", err)
	}
	return txns, nil
}
