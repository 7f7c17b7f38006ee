// Package gamewallet is the application service behind the game-facing
// operations: balance, bet settlement, rollback and in-place correction.
// Every operation runs inside one database transaction.
package gamewallet

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/j50301m/wallet-server/internal/domain/entities"
	"github.com/j50301m/wallet-server/internal/domain/errors"
	"github.com/j50301m/wallet-server/internal/domain/repositories"
	"github.com/j50301m/wallet-server/internal/domain/services/currency"
	"github.com/j50301m/wallet-server/internal/domain/services/rollover"
	"github.com/j50301m/wallet-server/internal/domain/services/strategy"
	"github.com/j50301m/wallet-server/internal/domain/services/wallet"
	"github.com/j50301m/wallet-server/internal/infrastructure/database"
	"github.com/j50301m/wallet-server/pkg/logger"
)

// WalletRef identifies the wallet a game operation targets.
type WalletRef struct {
	ClientID       int64
	UserID         int64
	CurrencyName   string
	WalletSourceID int64
}

// DepositParams settles a win onto the wallet.
type DepositParams struct {
	WalletRef
	TransactionID int64
	Amount        decimal.Decimal
	EffectiveBet  decimal.Decimal
	RolloverRate  decimal.Decimal
}

// WithdrawParams places a bet against the wallet.
type WithdrawParams struct {
	WalletRef
	TransactionID int64
	Amount        decimal.Decimal
}

// RollbackParams reverses a batch of settled transactions.
type RollbackParams struct {
	WalletRef
	TransactionIDs []int64
}

// UpdateParams corrects a settled transaction in place.
type UpdateParams struct {
	WalletRef
	TransactionID int64
	OldAmount     decimal.Decimal
	NewAmount     decimal.Decimal
	EffectiveBet  decimal.Decimal
	RolloverRate  decimal.Decimal
}

type Service struct {
	db          *sqlx.DB
	walletSvc   *wallet.Service
	rolloverSvc *rollover.Service
	currencySvc currency.Service
	sourceRepo  repositories.WalletSourceRepository
	logger      *logger.Logger
}

func NewService(
	db *sqlx.DB,
	walletSvc *wallet.Service,
	rolloverSvc *rollover.Service,
	currencySvc currency.Service,
	sourceRepo repositories.WalletSourceRepository,
	logger *logger.Logger,
) *Service {
	return &Service{
		db:          db,
		walletSvc:   walletSvc,
		rolloverSvc: rolloverSvc,
		currencySvc: currencySvc,
		sourceRepo:  sourceRepo,
		logger:      logger,
	}
}

// resolveWalletInfo validates the currency against the oracle and the wallet
// source against the lookup table.
func (s *Service) resolveWalletInfo(ctx context.Context, ref WalletRef) (*entities.WalletInfo, error) {
	cur, err := s.currencySvc.GetEnabledCurrency(ctx, ref.ClientID, ref.CurrencyName)
	if err != nil {
		return nil, err
	}

	source, err := s.sourceRepo.Get(ctx, ref.WalletSourceID)
	if err != nil {
		return nil, err
	}
	kind, err := entities.WalletSourceFromID(source.ID)
	if err != nil {
		return nil, err
	}

	return &entities.WalletInfo{
		ClientID:     ref.ClientID,
		UserID:       ref.UserID,
		Currency:     cur,
		WalletSource: kind,
	}, nil
}

// GetBalance returns the wallet balance, creating the wallet when absent.
func (s *Service) GetBalance(ctx context.Context, ref WalletRef) (decimal.Decimal, error) {
	info, err := s.resolveWalletInfo(ctx, ref)
	if err != nil {
		return decimal.Zero, err
	}

	var balance decimal.Decimal
	err = database.WithTransaction(ctx, s.db, func(ctx context.Context) error {
		userWallet, err := s.walletSvc.GetOrCreate(ctx, info)
		if err != nil {
			return err
		}
		balance = userWallet.Amount
		return nil
	})
	return balance, err
}

// Deposit credits a game win and records the achieved turnover at the
// given rate.
func (s *Service) Deposit(ctx context.Context, params DepositParams) (decimal.Decimal, error) {
	info, err := s.resolveWalletInfo(ctx, params.WalletRef)
	if err != nil {
		return decimal.Zero, err
	}

	var balance decimal.Decimal
	err = database.WithTransaction(ctx, s.db, func(ctx context.Context) error {
		userWallet, txn, err := s.walletSvc.ChangeAmount(ctx, info,
			entities.RootParentID, params.TransactionID, params.Amount, entities.ActionGameDeposit)
		if err != nil {
			return err
		}

		if _, _, err := s.rolloverSvc.Change(ctx, userWallet.ID, info, txn.ID,
			params.EffectiveBet, params.RolloverRate, entities.ActionGameDeposit, info.UserID); err != nil {
			return err
		}

		balance = userWallet.Amount
		return nil
	})
	return balance, err
}

// Withdraw debits a bet. Fails with the insufficient-balance error before
// touching the wallet when the balance cannot cover the amount.
func (s *Service) Withdraw(ctx context.Context, params WithdrawParams) (decimal.Decimal, error) {
	info, err := s.resolveWalletInfo(ctx, params.WalletRef)
	if err != nil {
		return decimal.Zero, err
	}

	var balance decimal.Decimal
	err = database.WithTransaction(ctx, s.db, func(ctx context.Context) error {
		enough, err := s.walletSvc.IsEnough(ctx, info, params.Amount)
		if err != nil {
			return err
		}
		if !enough {
			return errors.AmountNotEnoughError()
		}

		userWallet, txn, err := s.walletSvc.ChangeAmount(ctx, info,
			entities.RootParentID, params.TransactionID, params.Amount, entities.ActionGameWithdraw)
		if err != nil {
			return err
		}

		if _, _, err := s.rolloverSvc.Change(ctx, userWallet.ID, info, txn.ID,
			params.Amount, decimal.Zero, entities.ActionGameWithdraw, info.UserID); err != nil {
			return err
		}

		balance = userWallet.Amount
		return nil
	})
	return balance, err
}

// Rollback reverses the chain tails of the given transactions and returns
// the balance of the requested wallet afterwards.
func (s *Service) Rollback(ctx context.Context, params RollbackParams) (decimal.Decimal, error) {
	info, err := s.resolveWalletInfo(ctx, params.WalletRef)
	if err != nil {
		return decimal.Zero, err
	}

	rollbackStrategy, err := strategy.NewGameRollback(info.WalletSource,
		s.walletSvc, s.rolloverSvc, s.sourceRepo)
	if err != nil {
		return decimal.Zero, err
	}

	var balance decimal.Decimal
	err = database.WithTransaction(ctx, s.db, func(ctx context.Context) error {
		if err := rollbackStrategy.Apply(ctx, info, params.TransactionIDs); err != nil {
			return err
		}

		userWallet, err := s.walletSvc.GetOrCreate(ctx, info)
		if err != nil {
			return err
		}
		balance = userWallet.Amount
		return nil
	})
	return balance, err
}

// Update corrects the settled amount of one transaction in place and
// returns the balance of the requested wallet afterwards.
func (s *Service) Update(ctx context.Context, params UpdateParams) (decimal.Decimal, error) {
	info, err := s.resolveWalletInfo(ctx, params.WalletRef)
	if err != nil {
		return decimal.Zero, err
	}

	updateStrategy, err := strategy.NewGameUpdate(info.WalletSource,
		s.walletSvc, s.rolloverSvc, s.sourceRepo)
	if err != nil {
		return decimal.Zero, err
	}

	var balance decimal.Decimal
	err = database.WithTransaction(ctx, s.db, func(ctx context.Context) error {
		err := updateStrategy.Apply(ctx, info, &strategy.UpdateParams{
			SourceTxnID:  params.TransactionID,
			OldAmount:    params.OldAmount,
			NewAmount:    params.NewAmount,
			EffectiveBet: params.EffectiveBet,
			RolloverRate: params.RolloverRate,
		})
		if err != nil {
			return err
		}

		userWallet, err := s.walletSvc.GetOrCreate(ctx, info)
		if err != nil {
			return err
		}
		balance = userWallet.Amount
		return nil
	})
	return balance, err
}
