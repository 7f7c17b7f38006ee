package strategy

import (
	"context"

	"github.com/j50301m/wallet-server/internal/domain/entities"
	"github.com/j50301m/wallet-server/internal/domain/errors"
	"github.com/j50301m/wallet-server/internal/domain/repositories"
	"github.com/j50301m/wallet-server/internal/domain/services/currency"
	"github.com/j50301m/wallet-server/internal/domain/services/rollover"
	"github.com/j50301m/wallet-server/internal/domain/services/wallet"
)

// PaymentRollback reverses the chain tail of one payment transaction. The
// currency is re-validated against the oracle from the tail itself, so a
// currency disabled since the original payment blocks the rollback.
type PaymentRollback interface {
	Apply(ctx context.Context, clientID, userID int64, source entities.WalletSourceKind, sourceTxnID int64) (*entities.UserWallet, *entities.RolloverMain, error)
}

// NewPaymentRollback selects the payment rollback behavior for the wallet
// source.
func NewPaymentRollback(
	source entities.WalletSourceKind,
	currencySvc currency.Service,
	walletSvc *wallet.Service,
	rolloverSvc *rollover.Service,
	sourceRepo repositories.WalletSourceRepository,
) (PaymentRollback, error) {
	switch source {
	case entities.SourceNormal:
		return &normalPaymentRollback{
			currencySvc: currencySvc,
			walletSvc:   walletSvc,
			rolloverSvc: rolloverSvc,
		}, nil
	case entities.SourceBonus:
		return &bonusPaymentRollback{
			currencySvc: currencySvc,
			walletSvc:   walletSvc,
			rolloverSvc: rolloverSvc,
			sourceRepo:  sourceRepo,
		}, nil
	default:
		return nil, errors.ValidationError("wallet_source_id", "unknown wallet source")
	}
}

type normalPaymentRollback struct {
	currencySvc currency.Service
	walletSvc   *wallet.Service
	rolloverSvc *rollover.Service
}

func (s *normalPaymentRollback) Apply(ctx context.Context, clientID, userID int64, source entities.WalletSourceKind, sourceTxnID int64) (*entities.UserWallet, *entities.RolloverMain, error) {
	lastTxn, info, err := resolvePaymentTail(ctx, s.walletSvc, s.currencySvc, clientID, userID, source, sourceTxnID)
	if err != nil {
		return nil, nil, err
	}

	return rollbackPayment(ctx, s.walletSvc, s.rolloverSvc, info, lastTxn)
}

type bonusPaymentRollback struct {
	currencySvc currency.Service
	walletSvc   *wallet.Service
	rolloverSvc *rollover.Service
	sourceRepo  repositories.WalletSourceRepository
}

func (s *bonusPaymentRollback) Apply(ctx context.Context, clientID, userID int64, source entities.WalletSourceKind, sourceTxnID int64) (*entities.UserWallet, *entities.RolloverMain, error) {
	lastTxn, info, err := resolvePaymentTail(ctx, s.walletSvc, s.currencySvc, clientID, userID, source, sourceTxnID)
	if err != nil {
		return nil, nil, err
	}

	info, err = spillToNormalIfShort(ctx, s.walletSvc, s.sourceRepo, info, lastTxn.ChangeAmount)
	if err != nil {
		return nil, nil, err
	}

	return rollbackPayment(ctx, s.walletSvc, s.rolloverSvc, info, lastTxn)
}

// resolvePaymentTail finds the chain tail and rebuilds the wallet identity
// from it, validating the tail's currency through the oracle.
func resolvePaymentTail(
	ctx context.Context,
	walletSvc *wallet.Service,
	currencySvc currency.Service,
	clientID, userID int64,
	source entities.WalletSourceKind,
	sourceTxnID int64,
) (*entities.WalletTransaction, *entities.WalletInfo, error) {
	lastTxn, err := walletSvc.GetLastBySource(ctx, clientID, userID, sourceTxnID)
	if err != nil {
		return nil, nil, err
	}

	cur, err := currencySvc.GetEnabledCurrencyByID(ctx, clientID, lastTxn.CurrencyID)
	if err != nil {
		return nil, nil, err
	}

	info := &entities.WalletInfo{
		ClientID:     clientID,
		UserID:       userID,
		Currency:     cur,
		WalletSource: source,
	}
	return lastTxn, info, nil
}

func rollbackPayment(
	ctx context.Context,
	walletSvc *wallet.Service,
	rolloverSvc *rollover.Service,
	info *entities.WalletInfo,
	lastTxn *entities.WalletTransaction,
) (*entities.UserWallet, *entities.RolloverMain, error) {
	userWallet, rollbackTxn, err := walletSvc.Rollback(ctx, info, lastTxn)
	if err != nil {
		return nil, nil, err
	}

	main, _, err := rolloverSvc.Rollback(ctx, userWallet.ID, info,
		rollbackTxn.ParentID, rollbackTxn.ID, info.UserID)
	if err != nil {
		return nil, nil, err
	}
	return userWallet, main, nil
}
