package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/j50301m/wallet-server/internal/domain/entities"
	domainerrors "github.com/j50301m/wallet-server/internal/domain/errors"
	"github.com/j50301m/wallet-server/internal/domain/repositories"
)

type walletSourceRepository struct {
	db *sqlx.DB
}

// NewWalletSourceRepository creates the wallet_source lookup repository.
func NewWalletSourceRepository(db *sqlx.DB) repositories.WalletSourceRepository {
	return &walletSourceRepository{db: db}
}

func (r *walletSourceRepository) Get(ctx context.Context, id int64) (*entities.WalletSource, error) {
	query := `SELECT id, name, create_at FROM wallet_source WHERE id = $1`

	var source entities.WalletSource
	err := r.db.GetContext(ctx, &source, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domainerrors.NotFoundError("wallet source")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get wallet source: %w", err)
	}
	return &source, nil
}
