package strategy

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/j50301m/wallet-server/internal/domain/entities"
	"github.com/j50301m/wallet-server/internal/domain/errors"
	"github.com/j50301m/wallet-server/internal/domain/repositories"
	"github.com/j50301m/wallet-server/internal/domain/services/rollover"
	"github.com/j50301m/wallet-server/internal/domain/services/wallet"
)

// GameUpdate replaces the settled amount of a game transaction in place:
// the chain tail is reversed and a fresh entry for the new amount is
// appended, with the wagering ledger adjusted for the new effective bet.
type GameUpdate interface {
	Apply(ctx context.Context, info *entities.WalletInfo, params *UpdateParams) error
}

// UpdateParams carries one in-place amount correction. OldAmount and
// NewAmount are signed: positive means the player was credited.
type UpdateParams struct {
	SourceTxnID  int64
	OldAmount    decimal.Decimal
	NewAmount    decimal.Decimal
	EffectiveBet decimal.Decimal
	RolloverRate decimal.Decimal
}

// NewGameUpdate selects the update behavior for the wallet source.
func NewGameUpdate(
	source entities.WalletSourceKind,
	walletSvc *wallet.Service,
	rolloverSvc *rollover.Service,
	sourceRepo repositories.WalletSourceRepository,
) (GameUpdate, error) {
	switch source {
	case entities.SourceNormal:
		return &normalGameUpdate{walletSvc: walletSvc, rolloverSvc: rolloverSvc}, nil
	case entities.SourceBonus:
		return &bonusGameUpdate{
			walletSvc:   walletSvc,
			rolloverSvc: rolloverSvc,
			sourceRepo:  sourceRepo,
		}, nil
	default:
		return nil, errors.ValidationError("wallet_source_id", "unknown wallet source")
	}
}

type normalGameUpdate struct {
	walletSvc   *wallet.Service
	rolloverSvc *rollover.Service
}

func (s *normalGameUpdate) Apply(ctx context.Context, info *entities.WalletInfo, params *UpdateParams) error {
	originTxn, err := validateTail(ctx, s.walletSvc, info, params)
	if err != nil {
		return err
	}

	return applyUpdate(ctx, s.walletSvc, s.rolloverSvc, info, originTxn, params)
}

type bonusGameUpdate struct {
	walletSvc   *wallet.Service
	rolloverSvc *rollover.Service
	sourceRepo  repositories.WalletSourceRepository
}

func (s *bonusGameUpdate) Apply(ctx context.Context, info *entities.WalletInfo, params *UpdateParams) error {
	originTxn, err := validateTail(ctx, s.walletSvc, info, params)
	if err != nil {
		return err
	}

	// Rolling back the old amount and applying the new one nets out to a
	// debit of old minus new; spill to the principal wallet when the bonus
	// balance cannot absorb it.
	diff := params.OldAmount.Sub(params.NewAmount)
	info, err = spillToNormalIfShort(ctx, s.walletSvc, s.sourceRepo, info, diff)
	if err != nil {
		return err
	}

	return applyUpdate(ctx, s.walletSvc, s.rolloverSvc, info, originTxn, params)
}

// validateTail resolves the chain tail and checks its signed amount matches
// the caller's view of the old amount.
func validateTail(ctx context.Context, walletSvc *wallet.Service, info *entities.WalletInfo, params *UpdateParams) (*entities.WalletTransaction, error) {
	originTxn, err := walletSvc.GetLastBySource(ctx, info.ClientID, info.UserID, params.SourceTxnID)
	if err != nil {
		return nil, err
	}

	signed := originTxn.SignedAmount()
	if !signed.Equal(params.OldAmount) {
		return nil, errors.RollbackAmountError(signed.String(), params.OldAmount.String())
	}
	return originTxn, nil
}

func applyUpdate(
	ctx context.Context,
	walletSvc *wallet.Service,
	rolloverSvc *rollover.Service,
	info *entities.WalletInfo,
	originTxn *entities.WalletTransaction,
	params *UpdateParams,
) error {
	userWallet, rollbackTxn, err := walletSvc.Rollback(ctx, info, originTxn)
	if err != nil {
		return err
	}

	if _, _, err := rolloverSvc.Rollback(ctx, userWallet.ID, info,
		rollbackTxn.ParentID, rollbackTxn.ID, userWallet.UserID); err != nil {
		return err
	}

	// Re-derive the action inside the origin's family from the sign of the
	// corrected amount.
	originAction, err := entities.WalletActionFromID(originTxn.Action)
	if err != nil {
		return err
	}
	var action entities.WalletAction
	switch originAction {
	case entities.ActionGameDeposit, entities.ActionGameWithdraw:
		if params.NewAmount.IsPositive() {
			action = entities.ActionGameDeposit
		} else {
			action = entities.ActionGameWithdraw
		}
	default:
		if params.NewAmount.IsPositive() {
			action = entities.ActionPaymentDeposit
		} else {
			action = entities.ActionPaymentWithdraw
		}
	}

	userWallet, newTxn, err := walletSvc.ChangeAmount(ctx, info,
		rollbackTxn.ID, rollbackTxn.TransactionSourceID, params.NewAmount.Abs(), action)
	if err != nil {
		return err
	}

	_, _, err = rolloverSvc.Change(ctx, userWallet.ID, info, newTxn.ID,
		params.EffectiveBet.Abs(), params.RolloverRate, action, userWallet.UserID)
	return err
}
