package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/j50301m/wallet-server/internal/domain/entities"
	domainerrors "github.com/j50301m/wallet-server/internal/domain/errors"
	"github.com/j50301m/wallet-server/internal/domain/repositories"
	"github.com/j50301m/wallet-server/internal/infrastructure/database"
)

type rolloverMainRepository struct {
	db *sqlx.DB
}

// NewRolloverMainRepository creates the postgres wagering ledger repository.
func NewRolloverMainRepository(db *sqlx.DB) repositories.RolloverMainRepository {
	return &rolloverMainRepository{db: db}
}

func (r *rolloverMainRepository) ext(ctx context.Context) sqlx.ExtContext {
	if tx, ok := database.TxFromContext(ctx); ok {
		return tx
	}
	return r.db
}

func (r *rolloverMainRepository) Get(ctx context.Context, info *entities.WalletInfo) (*entities.RolloverMain, error) {
	query := `
		SELECT id, user_wallet_id, client_id, user_id, currency_id, currency_name,
			wallet_source_id, requirement_rollover, achievement_rollover, create_at, update_at
		FROM rollover_main
		WHERE client_id = $1 AND user_id = $2 AND currency_id = $3 AND wallet_source_id = $4`

	var main entities.RolloverMain
	err := sqlx.GetContext(ctx, r.ext(ctx), &main, query,
		info.ClientID, info.UserID, info.Currency.ID, info.WalletSource.ID())
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get rollover main: %w", err)
	}
	return &main, nil
}

func (r *rolloverMainRepository) Insert(ctx context.Context, main *entities.RolloverMain) error {
	query := `
		INSERT INTO rollover_main (id, user_wallet_id, client_id, user_id, currency_id,
			currency_name, wallet_source_id, requirement_rollover, achievement_rollover,
			create_at, update_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	_, err := r.ext(ctx).ExecContext(ctx, query,
		main.ID, main.UserWalletID, main.ClientID, main.UserID, main.CurrencyID,
		main.CurrencyName, main.WalletSourceID, main.RequirementRollover,
		main.AchievementRollover, main.CreateAt, main.UpdateAt)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return domainerrors.ValidationError("rollover", "rollover ledger already exists")
		}
		return fmt.Errorf("failed to insert rollover main: %w", err)
	}
	return nil
}

func (r *rolloverMainRepository) Update(ctx context.Context, main *entities.RolloverMain) error {
	query := `
		UPDATE rollover_main
		SET requirement_rollover = $1, achievement_rollover = $2, update_at = $3
		WHERE id = $4`

	result, err := r.ext(ctx).ExecContext(ctx, query,
		main.RequirementRollover, main.AchievementRollover, main.UpdateAt, main.ID)
	if err != nil {
		return fmt.Errorf("failed to update rollover main: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if rows == 0 {
		return domainerrors.NotFoundError("rollover main")
	}
	return nil
}

type rolloverRecordRepository struct {
	db *sqlx.DB
}

// NewRolloverRecordRepository creates the postgres rollover record repository.
func NewRolloverRecordRepository(db *sqlx.DB) repositories.RolloverRecordRepository {
	return &rolloverRecordRepository{db: db}
}

func (r *rolloverRecordRepository) ext(ctx context.Context) sqlx.ExtContext {
	if tx, ok := database.TxFromContext(ctx); ok {
		return tx
	}
	return r.db
}

const rolloverRecordColumns = `id, main_id, client_id, user_id, requirement_rollover,
	requirement_rollover_rate, achievement_rollover, achievement_rollover_rate,
	create_by, wallet_txn_id, create_at`

func (r *rolloverRecordRepository) Get(ctx context.Context, id int64) (*entities.RolloverRecord, error) {
	query := fmt.Sprintf(`SELECT %s FROM rollover_record WHERE id = $1`, rolloverRecordColumns)

	var record entities.RolloverRecord
	err := sqlx.GetContext(ctx, r.ext(ctx), &record, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get rollover record: %w", err)
	}
	return &record, nil
}

func (r *rolloverRecordRepository) GetByWalletTxnID(ctx context.Context, walletTxnID int64) (*entities.RolloverRecord, error) {
	query := fmt.Sprintf(`SELECT %s FROM rollover_record WHERE wallet_txn_id = $1`, rolloverRecordColumns)

	var record entities.RolloverRecord
	err := sqlx.GetContext(ctx, r.ext(ctx), &record, query, walletTxnID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get rollover record by wallet txn: %w", err)
	}
	return &record, nil
}

func (r *rolloverRecordRepository) Insert(ctx context.Context, record *entities.RolloverRecord) error {
	query := `
		INSERT INTO rollover_record (id, main_id, client_id, user_id, requirement_rollover,
			requirement_rollover_rate, achievement_rollover, achievement_rollover_rate,
			create_by, wallet_txn_id, create_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	_, err := r.ext(ctx).ExecContext(ctx, query,
		record.ID, record.MainID, record.ClientID, record.UserID,
		record.RequirementRollover, record.RequirementRolloverRate,
		record.AchievementRollover, record.AchievementRolloverRate,
		record.CreateBy, record.WalletTxnID, record.CreateAt)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return domainerrors.ValidationError("rollover_record", "rollover record already exists")
		}
		return fmt.Errorf("failed to insert rollover record: %w", err)
	}
	return nil
}
