package strategy

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/j50301m/wallet-server/internal/domain/entities"
)

// Full game session: first win, a bet, a second win.
func TestScenarioBetAndWin(t *testing.T) {
	f := newFixture()
	info := f.info(entities.SourceNormal)
	one := decimal.NewFromInt(1)

	first := f.change(t, info, 100, decimal.NewFromInt(50), entities.ActionGameDeposit,
		decimal.NewFromInt(50), one)
	assert.True(t, first.IsRoot())
	assert.True(t, f.balance(t, info).Equal(decimal.NewFromInt(50)))
	assert.True(t, f.ledger(t, info).AchievementRollover.Equal(decimal.NewFromInt(50)))

	f.change(t, info, 101, decimal.NewFromInt(20), entities.ActionGameWithdraw,
		decimal.Zero, decimal.Zero)
	assert.True(t, f.balance(t, info).Equal(decimal.NewFromInt(30)))

	f.change(t, info, 102, decimal.NewFromInt(15), entities.ActionGameDeposit,
		decimal.NewFromInt(15), one)
	assert.True(t, f.balance(t, info).Equal(decimal.NewFromInt(45)))
	assert.True(t, f.ledger(t, info).AchievementRollover.Equal(decimal.NewFromInt(65)))
}

// Rolling back the only win returns the wallet and the ledger to zero,
// leaving the full audit trail behind.
func TestScenarioRollbackFirstWin(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	info := f.info(entities.SourceNormal)

	f.change(t, info, 100, decimal.NewFromInt(50), entities.ActionGameDeposit,
		decimal.NewFromInt(50), decimal.NewFromInt(1))

	rb, err := NewGameRollback(entities.SourceNormal, f.walletSvc, f.rolloverSvc, f.sourceRepo)
	require.NoError(t, err)
	require.NoError(t, rb.Apply(ctx, info, []int64{100}))

	assert.True(t, f.balance(t, info).IsZero())
	assert.Len(t, f.txnRepo.txns, 2)

	require.Len(t, f.recordRepo.records, 2)
	assert.True(t, f.recordRepo.records[0].AchievementRollover.Equal(decimal.NewFromInt(50)))
	assert.True(t, f.recordRepo.records[1].AchievementRollover.Equal(decimal.NewFromInt(-50)))

	main := f.ledger(t, info)
	assert.True(t, main.RequirementRollover.IsZero())
	assert.True(t, main.AchievementRollover.IsZero())
}

// A payment deposit at rate 2 leaves the requirement unmet until wagering
// catches up.
func TestScenarioWithdrawGate(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	info := f.info(entities.SourceNormal)

	f.change(t, info, 300, decimal.NewFromInt(100), entities.ActionPaymentDeposit,
		decimal.NewFromInt(100), decimal.NewFromInt(2))

	main := f.ledger(t, info)
	assert.True(t, main.RequirementRollover.Equal(decimal.NewFromInt(200)))
	assert.True(t, main.AchievementRollover.IsZero())

	achieved, err := f.rolloverSvc.IsAchieved(ctx, info)
	require.NoError(t, err)
	assert.False(t, achieved)
}

// Once achievement covers the requirement a payment withdrawal goes through
// and clears both totals.
func TestScenarioWithdrawClearsLedger(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	info := f.info(entities.SourceNormal)
	one := decimal.NewFromInt(1)

	f.change(t, info, 300, decimal.NewFromInt(100), entities.ActionPaymentDeposit,
		decimal.NewFromInt(100), one)
	f.change(t, info, 301, decimal.NewFromInt(100), entities.ActionGameWithdraw,
		decimal.Zero, decimal.Zero)
	f.change(t, info, 302, decimal.NewFromInt(100), entities.ActionGameDeposit,
		decimal.NewFromInt(100), one)

	main := f.ledger(t, info)
	require.True(t, main.RequirementRollover.Equal(decimal.NewFromInt(100)))
	require.True(t, main.AchievementRollover.Equal(decimal.NewFromInt(100)))

	achieved, err := f.rolloverSvc.IsAchieved(ctx, info)
	require.NoError(t, err)
	require.True(t, achieved)

	f.change(t, info, 303, decimal.NewFromInt(40), entities.ActionPaymentWithdraw,
		decimal.Zero, decimal.Zero)

	assert.True(t, f.balance(t, info).Equal(decimal.NewFromInt(60)))
	main = f.ledger(t, info)
	assert.True(t, main.RequirementRollover.IsZero())
	assert.True(t, main.AchievementRollover.IsZero())
}
