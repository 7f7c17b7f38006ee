// Package rollover implements the wagering ledger engine. Payment deposits
// raise the turnover requirement, game deposits credit achievement, payment
// withdrawals clear the ledger. Every change is recorded as a signed delta
// pinned to the wallet transaction that caused it.
package rollover

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/j50301m/wallet-server/internal/domain/entities"
	"github.com/j50301m/wallet-server/internal/domain/errors"
	"github.com/j50301m/wallet-server/internal/domain/repositories"
	"github.com/j50301m/wallet-server/pkg/logger"
)

// Service is the wagering ledger engine. Mutating methods expect to run
// inside the caller's database transaction.
type Service struct {
	mainRepo   repositories.RolloverMainRepository
	recordRepo repositories.RolloverRecordRepository
	logger     *logger.Logger
}

func NewService(
	mainRepo repositories.RolloverMainRepository,
	recordRepo repositories.RolloverRecordRepository,
	logger *logger.Logger,
) *Service {
	return &Service{
		mainRepo:   mainRepo,
		recordRepo: recordRepo,
		logger:     logger,
	}
}

// GetOrCreate returns the ledger for info, creating an empty one bound to
// userWalletID when none exists.
func (s *Service) GetOrCreate(ctx context.Context, userWalletID int64, info *entities.WalletInfo) (*entities.RolloverMain, error) {
	main, err := s.mainRepo.Get(ctx, info)
	if err != nil {
		return nil, err
	}
	if main != nil {
		return main, nil
	}

	main = entities.NewRolloverMain(info, userWalletID)
	if err := s.mainRepo.Insert(ctx, main); err != nil {
		return nil, err
	}
	return main, nil
}

// Change updates the ledger for one wallet transaction. The effect depends
// on the action: game deposits credit achievement, payment deposits raise
// the requirement, payment withdrawals clear both totals, game withdrawals
// leave the ledger untouched. Returns the updated ledger and the delta
// record when the action produced one.
func (s *Service) Change(
	ctx context.Context,
	userWalletID int64,
	info *entities.WalletInfo,
	walletTxnID int64,
	amount decimal.Decimal,
	rate decimal.Decimal,
	action entities.WalletAction,
	changeBy int64,
) (*entities.RolloverMain, *entities.RolloverRecord, error) {
	switch action {
	case entities.ActionGameDeposit:
		return s.gameDeposit(ctx, userWalletID, info, walletTxnID, amount, rate, changeBy)
	case entities.ActionGameWithdraw:
		return s.gameWithdraw(ctx, userWalletID, info)
	case entities.ActionPaymentDeposit:
		return s.paymentDeposit(ctx, userWalletID, info, walletTxnID, amount, rate, changeBy)
	case entities.ActionPaymentWithdraw:
		return s.paymentWithdraw(ctx, userWalletID, info, walletTxnID, changeBy)
	default:
		return nil, nil, errors.ValidationError("action", "action does not affect rollover")
	}
}

// Rollback negates the ledger delta pinned to originTxnID, recording the
// negation against rollbackTxnID. A transaction that produced no delta rolls
// back to a no-op.
func (s *Service) Rollback(
	ctx context.Context,
	userWalletID int64,
	info *entities.WalletInfo,
	originTxnID int64,
	rollbackTxnID int64,
	createBy int64,
) (*entities.RolloverMain, *entities.RolloverRecord, error) {
	record, err := s.recordRepo.GetByWalletTxnID(ctx, originTxnID)
	if err != nil {
		return nil, nil, err
	}
	if record == nil {
		main, err := s.GetOrCreate(ctx, userWalletID, info)
		return main, nil, err
	}

	rollbackRecord := entities.NewRollbackRolloverRecord(record, rollbackTxnID, createBy)
	if err := s.recordRepo.Insert(ctx, rollbackRecord); err != nil {
		return nil, nil, err
	}

	main, err := s.applyDelta(ctx, userWalletID, info,
		rollbackRecord.RequirementRollover, rollbackRecord.AchievementRollover)
	if err != nil {
		return nil, nil, err
	}
	return main, rollbackRecord, nil
}

// IsAchieved reports whether the completed turnover covers the requirement.
// Errors with not-found when the wallet has no ledger yet.
func (s *Service) IsAchieved(ctx context.Context, info *entities.WalletInfo) (bool, error) {
	main, err := s.mainRepo.Get(ctx, info)
	if err != nil {
		return false, err
	}
	if main == nil {
		s.logger.Warn("rollover ledger missing",
			"client_id", info.ClientID, "user_id", info.UserID)
		return false, errors.NotFoundError("rollover main")
	}
	return main.IsAchieved(), nil
}

func (s *Service) gameDeposit(
	ctx context.Context,
	userWalletID int64,
	info *entities.WalletInfo,
	walletTxnID int64,
	amount, rate decimal.Decimal,
	changeBy int64,
) (*entities.RolloverMain, *entities.RolloverRecord, error) {
	main, err := s.GetOrCreate(ctx, userWalletID, info)
	if err != nil {
		return nil, nil, err
	}

	record := entities.NewRolloverRecord(main.ID, walletTxnID, info,
		entities.RolloverAchievement, amount, rate, changeBy)
	main.AddAchievementByAmount(amount, rate)

	if err := s.recordRepo.Insert(ctx, record); err != nil {
		return nil, nil, err
	}
	if err := s.mainRepo.Update(ctx, main); err != nil {
		return nil, nil, err
	}
	return main, record, nil
}

// gameWithdraw leaves the ledger untouched: placing a bet is not turnover
// until it settles as a deposit.
func (s *Service) gameWithdraw(ctx context.Context, userWalletID int64, info *entities.WalletInfo) (*entities.RolloverMain, *entities.RolloverRecord, error) {
	main, err := s.GetOrCreate(ctx, userWalletID, info)
	if err != nil {
		return nil, nil, err
	}
	return main, nil, nil
}

func (s *Service) paymentDeposit(
	ctx context.Context,
	userWalletID int64,
	info *entities.WalletInfo,
	walletTxnID int64,
	amount, rate decimal.Decimal,
	changeBy int64,
) (*entities.RolloverMain, *entities.RolloverRecord, error) {
	main, err := s.GetOrCreate(ctx, userWalletID, info)
	if err != nil {
		return nil, nil, err
	}

	record := entities.NewRolloverRecord(main.ID, walletTxnID, info,
		entities.RolloverRequirement, amount, rate, changeBy)
	main.AddRequirementByAmount(amount, rate)

	if err := s.recordRepo.Insert(ctx, record); err != nil {
		return nil, nil, err
	}
	if err := s.mainRepo.Update(ctx, main); err != nil {
		return nil, nil, err
	}
	return main, record, nil
}

func (s *Service) paymentWithdraw(
	ctx context.Context,
	userWalletID int64,
	info *entities.WalletInfo,
	walletTxnID int64,
	changeBy int64,
) (*entities.RolloverMain, *entities.RolloverRecord, error) {
	main, err := s.GetOrCreate(ctx, userWalletID, info)
	if err != nil {
		return nil, nil, err
	}

	record := entities.NewClearRolloverRecord(main, walletTxnID, changeBy)
	main.Clear()

	if err := s.recordRepo.Insert(ctx, record); err != nil {
		return nil, nil, err
	}
	if err := s.mainRepo.Update(ctx, main); err != nil {
		return nil, nil, err
	}
	return main, record, nil
}

func (s *Service) applyDelta(
	ctx context.Context,
	userWalletID int64,
	info *entities.WalletInfo,
	requirementDelta, achievementDelta decimal.Decimal,
) (*entities.RolloverMain, error) {
	main, err := s.GetOrCreate(ctx, userWalletID, info)
	if err != nil {
		return nil, err
	}

	main.AddRequirement(requirementDelta)
	main.AddAchievement(achievementDelta)

	if err := s.mainRepo.Update(ctx, main); err != nil {
		return nil, err
	}
	return main, nil
}
