// Package repositories contains the sqlx-backed implementations of the
// domain persistence contracts. Mutating methods run on the ambient
// transaction when one is present in the context.
package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/j50301m/wallet-server/internal/domain/entities"
	domainerrors "github.com/j50301m/wallet-server/internal/domain/errors"
	"github.com/j50301m/wallet-server/internal/domain/repositories"
	"github.com/j50301m/wallet-server/internal/infrastructure/database"
)

type userWalletRepository struct {
	db *sqlx.DB
}

// NewUserWalletRepository creates the postgres wallet repository.
func NewUserWalletRepository(db *sqlx.DB) repositories.UserWalletRepository {
	return &userWalletRepository{db: db}
}

// ext returns the ambient transaction when one is present, the pool
// otherwise.
func (r *userWalletRepository) ext(ctx context.Context) sqlx.ExtContext {
	if tx, ok := database.TxFromContext(ctx); ok {
		return tx
	}
	return r.db
}

const userWalletColumns = `id, client_id, user_id, currency_id, currency_name,
	wallet_source_id, wallet_source_name, amount, create_at, update_at`

func (r *userWalletRepository) Get(ctx context.Context, info *entities.WalletInfo) (*entities.UserWallet, error) {
	return r.get(ctx, info, false)
}

func (r *userWalletRepository) GetForUpdate(ctx context.Context, info *entities.WalletInfo) (*entities.UserWallet, error) {
	if _, ok := database.TxFromContext(ctx); !ok {
		return nil, domainerrors.InternalError("row lock requested outside a transaction", nil)
	}
	return r.get(ctx, info, true)
}

func (r *userWalletRepository) get(ctx context.Context, info *entities.WalletInfo, forUpdate bool) (*entities.UserWallet, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM user_wallet
		WHERE client_id = $1 AND user_id = $2 AND currency_id = $3 AND wallet_source_id = $4`,
		userWalletColumns)
	if forUpdate {
		query += " FOR UPDATE"
	}

	var wallet entities.UserWallet
	err := sqlx.GetContext(ctx, r.ext(ctx), &wallet, query,
		info.ClientID, info.UserID, info.Currency.ID, info.WalletSource.ID())
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user wallet: %w", err)
	}
	return &wallet, nil
}

func (r *userWalletRepository) Insert(ctx context.Context, wallet *entities.UserWallet) error {
	query := `
		INSERT INTO user_wallet (id, client_id, user_id, currency_id, currency_name,
			wallet_source_id, wallet_source_name, amount, create_at, update_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := r.ext(ctx).ExecContext(ctx, query,
		wallet.ID, wallet.ClientID, wallet.UserID, wallet.CurrencyID, wallet.CurrencyName,
		wallet.WalletSourceID, wallet.WalletSourceName, wallet.Amount, wallet.CreateAt, wallet.UpdateAt)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return domainerrors.ValidationError("wallet", "wallet already exists")
		}
		return fmt.Errorf("failed to insert user wallet: %w", err)
	}
	return nil
}

func (r *userWalletRepository) Update(ctx context.Context, wallet *entities.UserWallet) error {
	query := `
		UPDATE user_wallet
		SET amount = $1, update_at = $2
		WHERE id = $3`

	result, err := r.ext(ctx).ExecContext(ctx, query, wallet.Amount, wallet.UpdateAt, wallet.ID)
	if err != nil {
		return fmt.Errorf("failed to update user wallet: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if rows == 0 {
		return domainerrors.NotFoundError("user wallet")
	}
	return nil
}

func (r *userWalletRepository) GetListWithRollover(ctx context.Context, query *entities.SelectWalletsQuery) ([]*entities.UserWalletWithRollover, error) {
	query.Normalize()

	conditions := []string{"w.client_id = $1"}
	args := []interface{}{query.ClientID}

	if len(query.PlayerIDs) > 0 {
		args = append(args, pq.Array(query.PlayerIDs))
		conditions = append(conditions, fmt.Sprintf("w.user_id = ANY($%d)", len(args)))
	}
	if len(query.CurrencyIDs) > 0 {
		args = append(args, pq.Array(query.CurrencyIDs))
		conditions = append(conditions, fmt.Sprintf("w.currency_id = ANY($%d)", len(args)))
	}
	if len(query.WalletSourceIDs) > 0 {
		args = append(args, pq.Array(query.WalletSourceIDs))
		conditions = append(conditions, fmt.Sprintf("w.wallet_source_id = ANY($%d)", len(args)))
	}

	args = append(args, query.PageSize)
	limitPos := len(args)
	args = append(args, query.Offset())
	offsetPos := len(args)

	sqlQuery := fmt.Sprintf(`
		SELECT w.id, w.client_id, w.user_id, w.currency_id, w.currency_name,
			w.wallet_source_id, w.wallet_source_name, w.amount,
			r.requirement_rollover, r.achievement_rollover, w.update_at
		FROM user_wallet w
		INNER JOIN rollover_main r ON r.user_wallet_id = w.id
		WHERE %s
		ORDER BY w.update_at DESC
		LIMIT $%d OFFSET $%d`,
		strings.Join(conditions, " AND "), limitPos, offsetPos)

	wallets := make([]*entities.UserWalletWithRollover, 0)
	if err := sqlx.SelectContext(ctx, r.ext(ctx), &wallets, sqlQuery, args...); err != nil {
		return nil, fmt.Errorf("failed to list user wallets: %w", err)
	}
	return wallets, nil
}
