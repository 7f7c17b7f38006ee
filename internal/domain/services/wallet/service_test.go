package wallet

import (
	"context"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/j50301m/wallet-server/internal/domain/entities"
	"github.com/j50301m/wallet-server/internal/domain/errors"
	"github.com/j50301m/wallet-server/pkg/logger"
)

type memWalletRepo struct {
	wallets map[string]*entities.UserWallet
}

func newMemWalletRepo() *memWalletRepo {
	return &memWalletRepo{wallets: make(map[string]*entities.UserWallet)}
}

func walletKey(clientID, userID, sourceID, currencyID int64) string {
	return fmt.Sprintf("%d/%d/%d/%d", clientID, userID, sourceID, currencyID)
}

func (r *memWalletRepo) Get(_ context.Context, info *entities.WalletInfo) (*entities.UserWallet, error) {
	w := r.wallets[walletKey(info.ClientID, info.UserID, info.WalletSource.ID(), info.Currency.ID)]
	return w, nil
}

func (r *memWalletRepo) GetForUpdate(ctx context.Context, info *entities.WalletInfo) (*entities.UserWallet, error) {
	return r.Get(ctx, info)
}

func (r *memWalletRepo) Insert(_ context.Context, wallet *entities.UserWallet) error {
	key := walletKey(wallet.ClientID, wallet.UserID, wallet.WalletSourceID, wallet.CurrencyID)
	if _, ok := r.wallets[key]; ok {
		return errors.ValidationError("user_wallet", "wallet already exists")
	}
	r.wallets[key] = wallet
	return nil
}

func (r *memWalletRepo) Update(_ context.Context, wallet *entities.UserWallet) error {
	key := walletKey(wallet.ClientID, wallet.UserID, wallet.WalletSourceID, wallet.CurrencyID)
	if _, ok := r.wallets[key]; !ok {
		return errors.NotFoundError("user wallet")
	}
	r.wallets[key] = wallet
	return nil
}

func (r *memWalletRepo) GetListWithRollover(_ context.Context, _ *entities.SelectWalletsQuery) ([]*entities.UserWalletWithRollover, error) {
	return nil, nil
}

type memTxnRepo struct {
	txns []*entities.WalletTransaction
}

func (r *memTxnRepo) Insert(_ context.Context, txn *entities.WalletTransaction) error {
	r.txns = append(r.txns, txn)
	return nil
}

func (r *memTxnRepo) GetListBySourceID(_ context.Context, clientID, userID, sourceTxnID int64) ([]*entities.WalletTransaction, error) {
	var out []*entities.WalletTransaction
	for _, txn := range r.txns {
		if txn.ClientID == clientID && txn.UserID == userID && txn.TransactionSourceID == sourceTxnID {
			out = append(out, txn)
		}
	}
	return out, nil
}

func testInfo() *entities.WalletInfo {
	return &entities.WalletInfo{
		ClientID:     100,
		UserID:       200,
		Currency:     entities.Currency{ID: 1, Name: "USD"},
		WalletSource: entities.SourceNormal,
	}
}

func newTestService() (*Service, *memWalletRepo, *memTxnRepo) {
	walletRepo := newMemWalletRepo()
	txnRepo := &memTxnRepo{}
	return NewService(walletRepo, txnRepo, logger.NewNop()), walletRepo, txnRepo
}

func TestGetOrCreate(t *testing.T) {
	ctx := context.Background()
	svc, repo, _ := newTestService()

	wallet, err := svc.GetOrCreate(ctx, testInfo())
	require.NoError(t, err)
	assert.True(t, wallet.Amount.IsZero())
	assert.Len(t, repo.wallets, 1)

	again, err := svc.GetOrCreate(ctx, testInfo())
	require.NoError(t, err)
	assert.Equal(t, wallet.ID, again.ID)
	assert.Len(t, repo.wallets, 1)
}

func TestChangeAmountDeposit(t *testing.T) {
	ctx := context.Background()
	svc, _, txnRepo := newTestService()
	info := testInfo()

	wallet, txn, err := svc.ChangeAmount(ctx, info, entities.RootParentID, 5001,
		decimal.NewFromInt(100), entities.ActionGameDeposit)
	require.NoError(t, err)

	assert.True(t, wallet.Amount.Equal(decimal.NewFromInt(100)))
	assert.True(t, txn.BeforeAmount.IsZero())
	assert.True(t, txn.AfterAmount.Equal(decimal.NewFromInt(100)))
	assert.EqualValues(t, 5001, txn.TransactionSourceID)
	assert.True(t, txn.IsRoot())
	assert.Len(t, txnRepo.txns, 1)
}

func TestChangeAmountWithdraw(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService()
	info := testInfo()

	_, _, err := svc.ChangeAmount(ctx, info, entities.RootParentID, 5001,
		decimal.NewFromInt(100), entities.ActionGameDeposit)
	require.NoError(t, err)

	wallet, txn, err := svc.ChangeAmount(ctx, info, entities.RootParentID, 5002,
		decimal.NewFromInt(40), entities.ActionGameWithdraw)
	require.NoError(t, err)

	assert.True(t, wallet.Amount.Equal(decimal.NewFromInt(60)))
	assert.True(t, txn.BeforeAmount.Equal(decimal.NewFromInt(100)))
	assert.True(t, txn.AfterAmount.Equal(decimal.NewFromInt(60)))
}

func TestChangeAmountRejectsOverdraw(t *testing.T) {
	ctx := context.Background()
	svc, _, txnRepo := newTestService()
	info := testInfo()

	_, _, err := svc.ChangeAmount(ctx, info, entities.RootParentID, 5001,
		decimal.NewFromInt(10), entities.ActionPaymentDeposit)
	require.NoError(t, err)

	_, _, err = svc.ChangeAmount(ctx, info, entities.RootParentID, 5002,
		decimal.NewFromInt(100), entities.ActionPaymentWithdraw)
	assert.ErrorIs(t, err, errors.ErrInternal)

	// Neither the balance nor the ledger moved.
	wallet, err := svc.GetOrCreate(ctx, info)
	require.NoError(t, err)
	assert.True(t, wallet.Amount.Equal(decimal.NewFromInt(10)))
	assert.Len(t, txnRepo.txns, 1)
}

func TestIsEnough(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService()
	info := testInfo()

	enough, err := svc.IsEnough(ctx, info, decimal.NewFromInt(10))
	require.NoError(t, err)
	assert.False(t, enough)

	_, _, err = svc.ChangeAmount(ctx, info, entities.RootParentID, 5001,
		decimal.NewFromInt(10), entities.ActionPaymentDeposit)
	require.NoError(t, err)

	enough, err = svc.IsEnough(ctx, info, decimal.NewFromInt(10))
	require.NoError(t, err)
	assert.True(t, enough)

	enough, err = svc.IsEnough(ctx, info, decimal.NewFromInt(11))
	require.NoError(t, err)
	assert.False(t, enough)
}

func TestGetLastBySourceSingle(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService()
	info := testInfo()

	_, txn, err := svc.ChangeAmount(ctx, info, entities.RootParentID, 5001,
		decimal.NewFromInt(10), entities.ActionGameDeposit)
	require.NoError(t, err)

	tail, err := svc.GetLastBySource(ctx, info.ClientID, info.UserID, 5001)
	require.NoError(t, err)
	assert.Equal(t, txn.ID, tail.ID)
}

func TestGetLastBySourceChain(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService()
	info := testInfo()

	_, first, err := svc.ChangeAmount(ctx, info, entities.RootParentID, 5001,
		decimal.NewFromInt(10), entities.ActionGameDeposit)
	require.NoError(t, err)
	_, second, err := svc.ChangeAmount(ctx, info, first.ID, 5001,
		decimal.NewFromInt(10), entities.ActionGameWithdraw)
	require.NoError(t, err)
	_, third, err := svc.ChangeAmount(ctx, info, second.ID, 5001,
		decimal.NewFromInt(15), entities.ActionGameDeposit)
	require.NoError(t, err)

	tail, err := svc.GetLastBySource(ctx, info.ClientID, info.UserID, 5001)
	require.NoError(t, err)
	assert.Equal(t, third.ID, tail.ID)
}

func TestGetLastBySourceNotFound(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService()

	_, err := svc.GetLastBySource(ctx, 100, 200, 404404)
	assert.True(t, errors.IsNotFound(err))
}

func TestGetLastBySourceMalformedChains(t *testing.T) {
	ctx := context.Background()
	info := testInfo()

	seed := func(txns ...*entities.WalletTransaction) *Service {
		svc, _, txnRepo := newTestService()
		txnRepo.txns = txns
		return svc
	}

	mk := func(id, parentID int64) *entities.WalletTransaction {
		return &entities.WalletTransaction{
			ID:                  id,
			ParentID:            parentID,
			ClientID:            info.ClientID,
			UserID:              info.UserID,
			Action:              entities.ActionGameDeposit.ID(),
			TransactionSourceID: 5001,
		}
	}

	t.Run("multiple roots", func(t *testing.T) {
		svc := seed(mk(1, entities.RootParentID), mk(2, entities.RootParentID))
		_, err := svc.GetLastBySource(ctx, info.ClientID, info.UserID, 5001)
		assert.ErrorIs(t, err, errors.ErrInternal)
	})

	t.Run("no root", func(t *testing.T) {
		svc := seed(mk(2, 1), mk(3, 2))
		_, err := svc.GetLastBySource(ctx, info.ClientID, info.UserID, 5001)
		assert.ErrorIs(t, err, errors.ErrInternal)
	})

	t.Run("fork", func(t *testing.T) {
		svc := seed(mk(1, entities.RootParentID), mk(2, 1), mk(3, 1))
		_, err := svc.GetLastBySource(ctx, info.ClientID, info.UserID, 5001)
		assert.ErrorIs(t, err, errors.ErrInternal)
	})

	t.Run("cycle", func(t *testing.T) {
		svc := seed(mk(1, entities.RootParentID), mk(2, 3), mk(3, 2))
		_, err := svc.GetLastBySource(ctx, info.ClientID, info.UserID, 5001)
		assert.ErrorIs(t, err, errors.ErrInternal)
	})

	t.Run("dangling parent", func(t *testing.T) {
		svc := seed(mk(1, entities.RootParentID), mk(5, 999))
		_, err := svc.GetLastBySource(ctx, info.ClientID, info.UserID, 5001)
		assert.ErrorIs(t, err, errors.ErrInternal)
	})
}

func TestRollback(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService()
	info := testInfo()

	wallet, origin, err := svc.ChangeAmount(ctx, info, entities.RootParentID, 5001,
		decimal.NewFromInt(100), entities.ActionGameDeposit)
	require.NoError(t, err)
	require.True(t, wallet.Amount.Equal(decimal.NewFromInt(100)))

	wallet, rollbackTxn, err := svc.Rollback(ctx, info, origin)
	require.NoError(t, err)

	assert.True(t, wallet.Amount.IsZero())
	assert.Equal(t, origin.ID, rollbackTxn.ParentID)
	assert.Equal(t, origin.TransactionSourceID, rollbackTxn.TransactionSourceID)
	assert.Equal(t, entities.ActionGameWithdraw.ID(), rollbackTxn.Action)
	assert.True(t, rollbackTxn.ChangeAmount.Equal(origin.ChangeAmount))

	tail, err := svc.GetLastBySource(ctx, info.ClientID, info.UserID, 5001)
	require.NoError(t, err)
	assert.Equal(t, rollbackTxn.ID, tail.ID)
}

func TestRollbackRejectHasNoInverse(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService()
	info := testInfo()

	txn := &entities.WalletTransaction{
		ID:                  1,
		ClientID:            info.ClientID,
		UserID:              info.UserID,
		Action:              entities.ActionPaymentWithdrawReject.ID(),
		TransactionSourceID: 5001,
		ChangeAmount:        decimal.NewFromInt(10),
	}

	_, _, err := svc.Rollback(ctx, info, txn)
	assert.True(t, errors.IsInvalidInput(err))
}
