// Package strategy implements the per-wallet-source behavior of game
// rollbacks, game updates and payment rollbacks. Normal wallets apply the
// operation directly; bonus wallets spill over to the principal wallet when
// the bonus balance cannot absorb the net effect.
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

// GameRollback reverses the chain tails of a batch of game transactions.
type GameRollback interface {
	Apply(ctx context.Context, info *entities.WalletInfo, sourceTxnIDs []int64) error
}

// NewGameRollback selects the rollback behavior for the wallet source.
func NewGameRollback(
	source entities.WalletSourceKind,
	walletSvc *wallet.Service,
	rolloverSvc *rollover.Service,
	sourceRepo repositories.WalletSourceRepository,
) (GameRollback, error) {
	switch source {
	case entities.SourceNormal:
		return &normalGameRollback{walletSvc: walletSvc, rolloverSvc: rolloverSvc}, nil
	case entities.SourceBonus:
		return &bonusGameRollback{
			walletSvc:   walletSvc,
			rolloverSvc: rolloverSvc,
			sourceRepo:  sourceRepo,
		}, nil
	default:
		return nil, errors.ValidationError("wallet_source_id", "unknown wallet source")
	}
}

type normalGameRollback struct {
	walletSvc   *wallet.Service
	rolloverSvc *rollover.Service
}

func (s *normalGameRollback) Apply(ctx context.Context, info *entities.WalletInfo, sourceTxnIDs []int64) error {
	tails, err := resolveTails(ctx, s.walletSvc, info, sourceTxnIDs)
	if err != nil {
		return err
	}

	return rollbackAll(ctx, s.walletSvc, s.rolloverSvc, info, tails)
}

type bonusGameRollback struct {
	walletSvc   *wallet.Service
	rolloverSvc *rollover.Service
	sourceRepo  repositories.WalletSourceRepository
}

func (s *bonusGameRollback) Apply(ctx context.Context, info *entities.WalletInfo, sourceTxnIDs []int64) error {
	tails, err := resolveTails(ctx, s.walletSvc, info, sourceTxnIDs)
	if err != nil {
		return err
	}

	// Net amount the wallet must give back: reversing a deposit debits the
	// wallet by its amount, reversing a withdrawal credits it back.
	need := decimal.Zero
	for _, txn := range tails {
		action, err := entities.WalletActionFromID(txn.Action)
		if err != nil {
			return err
		}
		if action.IsDeposit() {
			need = need.Add(txn.ChangeAmount)
		} else {
			need = need.Sub(txn.ChangeAmount)
		}
	}

	info, err = spillToNormalIfShort(ctx, s.walletSvc, s.sourceRepo, info, need)
	if err != nil {
		return err
	}

	return rollbackAll(ctx, s.walletSvc, s.rolloverSvc, info, tails)
}

// resolveTails finds the chain tail of every source transaction before any
// mutation happens, so one missing chain fails the whole batch.
func resolveTails(ctx context.Context, walletSvc *wallet.Service, info *entities.WalletInfo, sourceTxnIDs []int64) ([]*entities.WalletTransaction, error) {
	tails := make([]*entities.WalletTransaction, 0, len(sourceTxnIDs))
	for _, sourceTxnID := range sourceTxnIDs {
		txn, err := walletSvc.GetLastBySource(ctx, info.ClientID, info.UserID, sourceTxnID)
		if err != nil {
			return nil, err
		}
		tails = append(tails, txn)
	}
	return tails, nil
}

func rollbackAll(
	ctx context.Context,
	walletSvc *wallet.Service,
	rolloverSvc *rollover.Service,
	info *entities.WalletInfo,
	tails []*entities.WalletTransaction,
) error {
	for _, txn := range tails {
		userWallet, rollbackTxn, err := walletSvc.Rollback(ctx, info, txn)
		if err != nil {
			return err
		}

		if _, _, err := rolloverSvc.Rollback(ctx, userWallet.ID, info,
			rollbackTxn.ParentID, rollbackTxn.ID, userWallet.UserID); err != nil {
			return err
		}
	}
	return nil
}

// spillToNormalIfShort re-binds info to the principal wallet when the
// current wallet cannot cover need.
func spillToNormalIfShort(
	ctx context.Context,
	walletSvc *wallet.Service,
	sourceRepo repositories.WalletSourceRepository,
	info *entities.WalletInfo,
	need decimal.Decimal,
) (*entities.WalletInfo, error) {
	enough, err := walletSvc.IsEnough(ctx, info, need)
	if err != nil {
		return nil, err
	}
	if enough {
		return info, nil
	}

	source, err := sourceRepo.Get(ctx, entities.SourceNormal.ID())
	if err != nil {
		return nil, err
	}
	return &entities.WalletInfo{
		ClientID:     info.ClientID,
		UserID:       info.UserID,
		Currency:     info.Currency,
		WalletSource: entities.WalletSourceKind(source.ID),
	}, nil
}
