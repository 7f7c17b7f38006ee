package playerwallet

import (
	"context"
	"fmt"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/j50301m/wallet-server/internal/domain/entities"
	"github.com/j50301m/wallet-server/internal/domain/errors"
	"github.com/j50301m/wallet-server/internal/domain/services/currency"
	"github.com/j50301m/wallet-server/internal/domain/services/rollover"
	"github.com/j50301m/wallet-server/internal/domain/services/wallet"
	"github.com/j50301m/wallet-server/pkg/logger"
)

const (
	testClientID   = 100
	testUserID     = 200
	testCurrencyID = 1
)

type memWalletRepo struct {
	wallets map[string]*entities.UserWallet
}

func walletKey(clientID, userID, sourceID, currencyID int64) string {
	return fmt.Sprintf("%d/%d/%d/%d", clientID, userID, sourceID, currencyID)
}

func (r *memWalletRepo) Get(_ context.Context, info *entities.WalletInfo) (*entities.UserWallet, error) {
	return r.wallets[walletKey(info.ClientID, info.UserID, info.WalletSource.ID(), info.Currency.ID)], nil
}

func (r *memWalletRepo) GetForUpdate(ctx context.Context, info *entities.WalletInfo) (*entities.UserWallet, error) {
	return r.Get(ctx, info)
}

func (r *memWalletRepo) Insert(_ context.Context, w *entities.UserWallet) error {
	r.wallets[walletKey(w.ClientID, w.UserID, w.WalletSourceID, w.CurrencyID)] = w
	return nil
}

func (r *memWalletRepo) Update(_ context.Context, w *entities.UserWallet) error {
	key := walletKey(w.ClientID, w.UserID, w.WalletSourceID, w.CurrencyID)
	if _, ok := r.wallets[key]; !ok {
		return errors.NotFoundError("user wallet")
	}
	r.wallets[key] = w
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

type memMainRepo struct {
	mains map[string]*entities.RolloverMain
}

func mainKey(clientID, userID, currencyID, sourceID int64) string {
	return fmt.Sprintf("%d/%d/%d/%d", clientID, userID, currencyID, sourceID)
}

func (r *memMainRepo) Get(_ context.Context, info *entities.WalletInfo) (*entities.RolloverMain, error) {
	return r.mains[mainKey(info.ClientID, info.UserID, info.Currency.ID, info.WalletSource.ID())], nil
}

func (r *memMainRepo) Insert(_ context.Context, main *entities.RolloverMain) error {
	r.mains[mainKey(main.ClientID, main.UserID, main.CurrencyID, main.WalletSourceID)] = main
	return nil
}

func (r *memMainRepo) Update(_ context.Context, main *entities.RolloverMain) error {
	key := mainKey(main.ClientID, main.UserID, main.CurrencyID, main.WalletSourceID)
	if _, ok := r.mains[key]; !ok {
		return errors.NotFoundError("rollover main")
	}
	r.mains[key] = main
	return nil
}

type memRecordRepo struct {
	records []*entities.RolloverRecord
}

func (r *memRecordRepo) Get(_ context.Context, id int64) (*entities.RolloverRecord, error) {
	for _, rec := range r.records {
		if rec.ID == id {
			return rec, nil
		}
	}
	return nil, nil
}

func (r *memRecordRepo) GetByWalletTxnID(_ context.Context, walletTxnID int64) (*entities.RolloverRecord, error) {
	for _, rec := range r.records {
		if rec.WalletTxnID == walletTxnID {
			return rec, nil
		}
	}
	return nil, nil
}

func (r *memRecordRepo) Insert(_ context.Context, record *entities.RolloverRecord) error {
	r.records = append(r.records, record)
	return nil
}

type memSourceRepo struct{}

func (memSourceRepo) Get(_ context.Context, id int64) (*entities.WalletSource, error) {
	switch id {
	case entities.SourceNormal.ID():
		return &entities.WalletSource{ID: id, Name: entities.SourceNormalName}, nil
	case entities.SourceBonus.ID():
		return &entities.WalletSource{ID: id, Name: entities.SourceBonusName}, nil
	default:
		return nil, errors.NotFoundError("wallet source")
	}
}

type stubOracle struct {
	currencies []currency.ClientCurrency
}

func (o *stubOracle) GetClientCurrencies(_ context.Context, _ int64, names []string) ([]entities.Currency, error) {
	var out []entities.Currency
	for _, c := range o.currencies {
		if !c.Enabled {
			continue
		}
		if len(names) == 0 {
			out = append(out, entities.Currency{ID: c.ID, Name: c.Name})
			continue
		}
		for _, name := range names {
			if name == c.Name {
				out = append(out, entities.Currency{ID: c.ID, Name: c.Name})
				break
			}
		}
	}
	return out, nil
}

func (o *stubOracle) GetClientCurrencyByID(_ context.Context, _ int64, currencyID int64) (*currency.ClientCurrency, error) {
	for i := range o.currencies {
		if o.currencies[i].ID == currencyID {
			c := o.currencies[i]
			return &c, nil
		}
	}
	return nil, nil
}

// fixture runs the service against in-memory repositories; the database
// handle only carries the transaction boundary, mocked per test.
type fixture struct {
	svc         *Service
	mock        sqlmock.Sqlmock
	walletSvc   *wallet.Service
	rolloverSvc *rollover.Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { mockDB.Close() })
	db := sqlx.NewDb(mockDB, "sqlmock")

	walletRepo := &memWalletRepo{wallets: make(map[string]*entities.UserWallet)}
	txnRepo := &memTxnRepo{}
	mainRepo := &memMainRepo{mains: make(map[string]*entities.RolloverMain)}
	recordRepo := &memRecordRepo{}
	oracle := &stubOracle{currencies: []currency.ClientCurrency{
		{ID: testCurrencyID, Name: "USD", Enabled: true},
	}}

	log := logger.NewNop()
	walletSvc := wallet.NewService(walletRepo, txnRepo, log)
	rolloverSvc := rollover.NewService(mainRepo, recordRepo, log)
	currencySvc := currency.NewService(oracle)

	return &fixture{
		svc: NewService(db, walletRepo, memSourceRepo{},
			walletSvc, rolloverSvc, currencySvc, log),
		mock:        mock,
		walletSvc:   walletSvc,
		rolloverSvc: rolloverSvc,
	}
}

func testRef() WalletRef {
	return WalletRef{
		ClientID:       testClientID,
		UserID:         testUserID,
		CurrencyName:   "USD",
		WalletSourceID: entities.SourceNormal.ID(),
	}
}

func testInfo() *entities.WalletInfo {
	return &entities.WalletInfo{
		ClientID:     testClientID,
		UserID:       testUserID,
		Currency:     entities.Currency{ID: testCurrencyID, Name: "USD"},
		WalletSource: entities.SourceNormal,
	}
}

// wager settles one bet as a break-even round so achievement catches up with
// the requirement without moving the balance.
func (f *fixture) wager(t *testing.T, amount decimal.Decimal) {
	t.Helper()
	ctx := context.Background()
	info := testInfo()

	w, txn, err := f.walletSvc.ChangeAmount(ctx, info,
		entities.RootParentID, 8001, amount, entities.ActionGameWithdraw)
	require.NoError(t, err)
	_, _, err = f.rolloverSvc.Change(ctx, w.ID, info, txn.ID,
		decimal.Zero, decimal.Zero, entities.ActionGameWithdraw, w.UserID)
	require.NoError(t, err)

	w, txn, err = f.walletSvc.ChangeAmount(ctx, info,
		entities.RootParentID, 8002, amount, entities.ActionGameDeposit)
	require.NoError(t, err)
	_, _, err = f.rolloverSvc.Change(ctx, w.ID, info, txn.ID,
		amount, decimal.NewFromInt(1), entities.ActionGameDeposit, w.UserID)
	require.NoError(t, err)
}

func TestGetCreatesWalletAndLedger(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	f.mock.ExpectBegin()
	f.mock.ExpectCommit()

	state, err := f.svc.Get(ctx, testRef())
	require.NoError(t, err)
	assert.True(t, state.Wallet.Amount.IsZero())
	assert.True(t, state.Rollover.RequirementRollover.IsZero())
	require.NoError(t, f.mock.ExpectationsWereMet())
}

func TestDepositRaisesRequirement(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	f.mock.ExpectBegin()
	f.mock.ExpectCommit()

	state, err := f.svc.Deposit(ctx, ChangeParams{
		WalletRef:     testRef(),
		TransactionID: 9001,
		Amount:        decimal.NewFromInt(100),
		RolloverRate:  decimal.NewFromInt(2),
	})
	require.NoError(t, err)

	assert.True(t, state.Wallet.Amount.Equal(decimal.NewFromInt(100)))
	assert.True(t, state.Rollover.RequirementRollover.Equal(decimal.NewFromInt(200)))
	assert.True(t, state.Rollover.AchievementRollover.IsZero())
}

func TestWithdrawRequiresAchievedRollover(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	f.mock.ExpectBegin()
	f.mock.ExpectCommit()
	_, err := f.svc.Deposit(ctx, ChangeParams{
		WalletRef:     testRef(),
		TransactionID: 9001,
		Amount:        decimal.NewFromInt(100),
		RolloverRate:  decimal.NewFromInt(2),
	})
	require.NoError(t, err)

	f.mock.ExpectBegin()
	f.mock.ExpectRollback()
	_, err = f.svc.Withdraw(ctx, ChangeParams{
		WalletRef:     testRef(),
		TransactionID: 9002,
		Amount:        decimal.NewFromInt(50),
		RolloverRate:  decimal.NewFromInt(1),
	})
	assert.ErrorIs(t, err, errors.ErrRolloverNotAchieved)
	require.NoError(t, f.mock.ExpectationsWereMet())
}

func TestWithdrawRejectsInsufficientBalance(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	f.mock.ExpectBegin()
	f.mock.ExpectCommit()
	_, err := f.svc.Deposit(ctx, ChangeParams{
		WalletRef:     testRef(),
		TransactionID: 9001,
		Amount:        decimal.NewFromInt(100),
		RolloverRate:  decimal.NewFromInt(1),
	})
	require.NoError(t, err)

	f.wager(t, decimal.NewFromInt(100))

	// The wagering gate is open but the balance does not cover the payout.
	f.mock.ExpectBegin()
	f.mock.ExpectRollback()
	_, err = f.svc.Withdraw(ctx, ChangeParams{
		WalletRef:     testRef(),
		TransactionID: 9002,
		Amount:        decimal.NewFromInt(150),
		RolloverRate:  decimal.NewFromInt(1),
	})
	assert.ErrorIs(t, err, errors.ErrWalletAmountNotEnough)

	w, err := f.walletSvc.GetOrCreate(ctx, testInfo())
	require.NoError(t, err)
	assert.True(t, w.Amount.Equal(decimal.NewFromInt(100)))
}

func TestWithdrawClearsLedger(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	f.mock.ExpectBegin()
	f.mock.ExpectCommit()
	_, err := f.svc.Deposit(ctx, ChangeParams{
		WalletRef:     testRef(),
		TransactionID: 9001,
		Amount:        decimal.NewFromInt(100),
		RolloverRate:  decimal.NewFromInt(1),
	})
	require.NoError(t, err)

	f.wager(t, decimal.NewFromInt(100))

	f.mock.ExpectBegin()
	f.mock.ExpectCommit()
	state, err := f.svc.Withdraw(ctx, ChangeParams{
		WalletRef:     testRef(),
		TransactionID: 9002,
		Amount:        decimal.NewFromInt(40),
		RolloverRate:  decimal.NewFromInt(1),
	})
	require.NoError(t, err)

	assert.True(t, state.Wallet.Amount.Equal(decimal.NewFromInt(60)))
	assert.True(t, state.Rollover.RequirementRollover.IsZero())
	assert.True(t, state.Rollover.AchievementRollover.IsZero())
}
