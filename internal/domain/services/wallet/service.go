// Package wallet implements the balance engine: it mutates player wallets
// and appends the immutable ledger entries describing each mutation.
package wallet

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/j50301m/wallet-server/internal/domain/entities"
	"github.com/j50301m/wallet-server/internal/domain/errors"
	"github.com/j50301m/wallet-server/internal/domain/repositories"
	"github.com/j50301m/wallet-server/pkg/logger"
)

// Service is the wallet balance engine. All mutating methods expect to run
// inside the caller's database transaction.
type Service struct {
	walletRepo repositories.UserWalletRepository
	txnRepo    repositories.WalletTransactionRepository
	logger     *logger.Logger
}

func NewService(
	walletRepo repositories.UserWalletRepository,
	txnRepo repositories.WalletTransactionRepository,
	logger *logger.Logger,
) *Service {
	return &Service{
		walletRepo: walletRepo,
		txnRepo:    txnRepo,
		logger:     logger,
	}
}

// GetOrCreate returns the wallet for info, creating a zero-balance one when
// none exists.
func (s *Service) GetOrCreate(ctx context.Context, info *entities.WalletInfo) (*entities.UserWallet, error) {
	wallet, err := s.walletRepo.Get(ctx, info)
	if err != nil {
		return nil, err
	}
	if wallet != nil {
		return wallet, nil
	}

	wallet = entities.NewUserWallet(info)
	if err := s.walletRepo.Insert(ctx, wallet); err != nil {
		return nil, err
	}
	return wallet, nil
}

// getOrCreateLocked is GetOrCreate with a row lock on the existing wallet.
func (s *Service) getOrCreateLocked(ctx context.Context, info *entities.WalletInfo) (*entities.UserWallet, error) {
	wallet, err := s.walletRepo.GetForUpdate(ctx, info)
	if err != nil {
		return nil, err
	}
	if wallet != nil {
		return wallet, nil
	}

	wallet = entities.NewUserWallet(info)
	if err := s.walletRepo.Insert(ctx, wallet); err != nil {
		return nil, err
	}
	return wallet, nil
}

// ChangeAmount applies amount to the wallet in the direction of action and
// appends the ledger entry linking parentTxnID and sourceTxnID. Returns the
// updated wallet and the new entry. The balance can never go below zero:
// callers pre-check withdrawals, so an overdraw reaching this point fails
// without mutating anything.
func (s *Service) ChangeAmount(
	ctx context.Context,
	info *entities.WalletInfo,
	parentTxnID int64,
	sourceTxnID int64,
	amount decimal.Decimal,
	action entities.WalletAction,
) (*entities.UserWallet, *entities.WalletTransaction, error) {
	userWallet, err := s.getOrCreateLocked(ctx, info)
	if err != nil {
		return nil, nil, err
	}

	if !action.IsDeposit() && userWallet.Amount.LessThan(amount) {
		s.logger.Error("withdrawal would overdraw the wallet",
			"source_txn_id", sourceTxnID,
			"balance", userWallet.Amount.String(),
			"amount", amount.String())
		return nil, nil, errors.InternalError("wallet balance cannot go negative", nil)
	}

	txn := entities.NewTransactionBeforeChange(userWallet, parentTxnID, sourceTxnID, action, amount)

	if action.IsDeposit() {
		userWallet.Deposit(amount)
	} else {
		userWallet.Withdraw(amount)
	}

	if err := s.walletRepo.Update(ctx, userWallet); err != nil {
		return nil, nil, err
	}
	if err := s.txnRepo.Insert(ctx, txn); err != nil {
		return nil, nil, err
	}

	return userWallet, txn, nil
}

// IsEnough reports whether the wallet balance covers withdrawAmount,
// creating the wallet when absent.
func (s *Service) IsEnough(ctx context.Context, info *entities.WalletInfo, withdrawAmount decimal.Decimal) (bool, error) {
	userWallet, err := s.GetOrCreate(ctx, info)
	if err != nil {
		return false, err
	}
	return userWallet.Amount.GreaterThanOrEqual(withdrawAmount), nil
}

// GetLastBySource returns the tail of the transaction chain recorded against
// sourceTxnID. The chain is reconstructed from parent links: the entry with
// parent id 0 is the head, each later entry points at its predecessor.
func (s *Service) GetLastBySource(ctx context.Context, clientID, userID, sourceTxnID int64) (*entities.WalletTransaction, error) {
	list, err := s.txnRepo.GetListBySourceID(ctx, clientID, userID, sourceTxnID)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		s.logger.Warn("no transactions for source", "source_txn_id", sourceTxnID)
		return nil, errors.NotFoundError("wallet transaction")
	}

	byParent := make(map[int64]*entities.WalletTransaction, len(list))
	var root *entities.WalletTransaction
	for _, txn := range list {
		if txn.IsRoot() {
			if root != nil {
				s.logger.Warn("transaction chain has multiple roots", "source_txn_id", sourceTxnID)
				return nil, errors.InternalError("malformed transaction chain", nil)
			}
			root = txn
			continue
		}
		if _, dup := byParent[txn.ParentID]; dup {
			s.logger.Warn("transaction chain forks", "source_txn_id", sourceTxnID)
			return nil, errors.InternalError("malformed transaction chain", nil)
		}
		byParent[txn.ParentID] = txn
	}
	if root == nil {
		s.logger.Warn("transaction chain has no root", "source_txn_id", sourceTxnID)
		return nil, errors.InternalError("malformed transaction chain", nil)
	}

	// The walk from the root must visit every entry exactly once; a short
	// walk means a dangling parent link or a cycle off the main path.
	tail := root
	visited := 1
	for visited <= len(list) {
		next, ok := byParent[tail.ID]
		if !ok {
			break
		}
		tail = next
		visited++
	}
	if visited != len(list) {
		s.logger.Warn("transaction chain does not link every entry", "source_txn_id", sourceTxnID)
		return nil, errors.InternalError("malformed transaction chain", nil)
	}
	return tail, nil
}

// Rollback appends the compensating entry for txn onto info's wallet: the
// inverse action with the absolute change amount, chained under txn's id and
// recorded against the same external source.
func (s *Service) Rollback(ctx context.Context, info *entities.WalletInfo, txn *entities.WalletTransaction) (*entities.UserWallet, *entities.WalletTransaction, error) {
	action, err := entities.WalletActionFromID(txn.Action)
	if err != nil {
		return nil, nil, err
	}
	inverse, err := action.Inverse()
	if err != nil {
		return nil, nil, err
	}

	return s.ChangeAmount(ctx, info, txn.ID, txn.TransactionSourceID, txn.ChangeAmount.Abs(), inverse)
}
