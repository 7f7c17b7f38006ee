// Package playerwallet is the application service behind the payment-facing
// operations: wallet lookup, listing, deposits, rollover-gated withdrawals
// and payment rollbacks. Every operation runs inside one database
// transaction.
package playerwallet

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

// WalletRef identifies the wallet a payment operation targets.
type WalletRef struct {
	ClientID       int64
	UserID         int64
	CurrencyName   string
	WalletSourceID int64
}

// ChangeParams credits or debits a wallet through the payment pipeline.
type ChangeParams struct {
	WalletRef
	TransactionID int64
	Amount        decimal.Decimal
	RolloverRate  decimal.Decimal
}

// ListParams filters the wallet listing for one client.
type ListParams struct {
	ClientID        int64
	PlayerIDs       []int64
	CurrencyNames   []string
	WalletSourceIDs []int64
	Page            uint64
	PageSize        uint64
}

// RollbackParams reverses one payment transaction.
type RollbackParams struct {
	ClientID            int64
	UserID              int64
	SourceTransactionID int64
}

// WalletState is a wallet together with its wagering ledger totals.
type WalletState struct {
	Wallet   *entities.UserWallet
	Rollover *entities.RolloverMain
}

type Service struct {
	db          *sqlx.DB
	walletRepo  repositories.UserWalletRepository
	sourceRepo  repositories.WalletSourceRepository
	walletSvc   *wallet.Service
	rolloverSvc *rollover.Service
	currencySvc currency.Service
	logger      *logger.Logger
}

func NewService(
	db *sqlx.DB,
	walletRepo repositories.UserWalletRepository,
	sourceRepo repositories.WalletSourceRepository,
	walletSvc *wallet.Service,
	rolloverSvc *rollover.Service,
	currencySvc currency.Service,
	logger *logger.Logger,
) *Service {
	return &Service{
		db:          db,
		walletRepo:  walletRepo,
		sourceRepo:  sourceRepo,
		walletSvc:   walletSvc,
		rolloverSvc: rolloverSvc,
		currencySvc: currencySvc,
		logger:      logger,
	}
}

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

// Get returns the wallet and its ledger, creating both when absent.
func (s *Service) Get(ctx context.Context, ref WalletRef) (*WalletState, error) {
	info, err := s.resolveWalletInfo(ctx, ref)
	if err != nil {
		return nil, err
	}

	var state WalletState
	err = database.WithTransaction(ctx, s.db, func(ctx context.Context) error {
		userWallet, err := s.walletSvc.GetOrCreate(ctx, info)
		if err != nil {
			return err
		}
		main, err := s.rolloverSvc.GetOrCreate(ctx, userWallet.ID, info)
		if err != nil {
			return err
		}
		state = WalletState{Wallet: userWallet, Rollover: main}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &state, nil
}

// GetList returns the paginated wallet listing for one client. Currency
// names are resolved to ids through the oracle before filtering.
func (s *Service) GetList(ctx context.Context, params ListParams) ([]*entities.UserWalletWithRollover, error) {
	currencies, err := s.currencySvc.GetEnabledCurrencies(ctx, params.ClientID, params.CurrencyNames)
	if err != nil {
		return nil, err
	}
	currencyIDs := make([]int64, 0, len(currencies))
	for _, c := range currencies {
		currencyIDs = append(currencyIDs, c.ID)
	}

	query := &entities.SelectWalletsQuery{
		ClientID:        params.ClientID,
		PlayerIDs:       params.PlayerIDs,
		CurrencyIDs:     currencyIDs,
		WalletSourceIDs: params.WalletSourceIDs,
		Page:            params.Page,
		PageSize:        params.PageSize,
	}
	return s.walletRepo.GetListWithRollover(ctx, query)
}

// Deposit credits a payment and raises the turnover requirement at the
// given rate.
func (s *Service) Deposit(ctx context.Context, params ChangeParams) (*WalletState, error) {
	info, err := s.resolveWalletInfo(ctx, params.WalletRef)
	if err != nil {
		return nil, err
	}

	var state WalletState
	err = database.WithTransaction(ctx, s.db, func(ctx context.Context) error {
		userWallet, txn, err := s.walletSvc.ChangeAmount(ctx, info,
			entities.RootParentID, params.TransactionID, params.Amount, entities.ActionPaymentDeposit)
		if err != nil {
			return err
		}

		main, _, err := s.rolloverSvc.Change(ctx, userWallet.ID, info, txn.ID,
			params.Amount, params.RolloverRate, entities.ActionPaymentDeposit, info.UserID)
		if err != nil {
			return err
		}

		state = WalletState{Wallet: userWallet, Rollover: main}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &state, nil
}

// Withdraw debits a payout. The wagering requirement must be achieved
// first; the withdrawal then clears the ledger.
func (s *Service) Withdraw(ctx context.Context, params ChangeParams) (*WalletState, error) {
	info, err := s.resolveWalletInfo(ctx, params.WalletRef)
	if err != nil {
		return nil, err
	}

	var state WalletState
	err = database.WithTransaction(ctx, s.db, func(ctx context.Context) error {
		achieved, err := s.rolloverSvc.IsAchieved(ctx, info)
		if err != nil {
			return err
		}
		if !achieved {
			return errors.RolloverNotAchievedError()
		}

		enough, err := s.walletSvc.IsEnough(ctx, info, params.Amount)
		if err != nil {
			return err
		}
		if !enough {
			return errors.AmountNotEnoughError()
		}

		userWallet, txn, err := s.walletSvc.ChangeAmount(ctx, info,
			entities.RootParentID, params.TransactionID, params.Amount, entities.ActionPaymentWithdraw)
		if err != nil {
			return err
		}

		main, _, err := s.rolloverSvc.Change(ctx, userWallet.ID, info, txn.ID,
			params.Amount, params.RolloverRate, entities.ActionPaymentWithdraw, info.UserID)
		if err != nil {
			return err
		}

		state = WalletState{Wallet: userWallet, Rollover: main}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &state, nil
}

// Rollback reverses one payment transaction onto the principal wallet,
// re-validating the currency from the chain tail.
func (s *Service) Rollback(ctx context.Context, params RollbackParams) (*WalletState, error) {
	source, err := s.sourceRepo.Get(ctx, entities.SourceNormal.ID())
	if err != nil {
		return nil, err
	}
	kind, err := entities.WalletSourceFromID(source.ID)
	if err != nil {
		return nil, err
	}

	rollbackStrategy, err := strategy.NewPaymentRollback(kind,
		s.currencySvc, s.walletSvc, s.rolloverSvc, s.sourceRepo)
	if err != nil {
		return nil, err
	}

	var state WalletState
	err = database.WithTransaction(ctx, s.db, func(ctx context.Context) error {
		userWallet, main, err := rollbackStrategy.Apply(ctx,
			params.ClientID, params.UserID, kind, params.SourceTransactionID)
		if err != nil {
			return err
		}
		state = WalletState{Wallet: userWallet, Rollover: main}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &state, nil
}
