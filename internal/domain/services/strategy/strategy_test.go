package strategy

import (
	"context"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
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

type fixture struct {
	walletRepo  *memWalletRepo
	txnRepo     *memTxnRepo
	mainRepo    *memMainRepo
	recordRepo  *memRecordRepo
	sourceRepo  memSourceRepo
	oracle      *stubOracle
	walletSvc   *wallet.Service
	rolloverSvc *rollover.Service
	currencySvc currency.Service
}

func newFixture() *fixture {
	f := &fixture{
		walletRepo: &memWalletRepo{wallets: make(map[string]*entities.UserWallet)},
		txnRepo:    &memTxnRepo{},
		mainRepo:   &memMainRepo{mains: make(map[string]*entities.RolloverMain)},
		recordRepo: &memRecordRepo{},
		oracle: &stubOracle{currencies: []currency.ClientCurrency{
			{ID: testCurrencyID, Name: "USD", Enabled: true},
		}},
	}
	log := logger.NewNop()
	f.walletSvc = wallet.NewService(f.walletRepo, f.txnRepo, log)
	f.rolloverSvc = rollover.NewService(f.mainRepo, f.recordRepo, log)
	f.currencySvc = currency.NewService(f.oracle)
	return f
}

func (f *fixture) info(source entities.WalletSourceKind) *entities.WalletInfo {
	return &entities.WalletInfo{
		ClientID:     testClientID,
		UserID:       testUserID,
		Currency:     entities.Currency{ID: testCurrencyID, Name: "USD"},
		WalletSource: source,
	}
}

// change seeds one settled transaction with its rollover effect, the way the
// application services record deposits and withdrawals.
func (f *fixture) change(
	t *testing.T,
	info *entities.WalletInfo,
	sourceTxnID int64,
	amount decimal.Decimal,
	action entities.WalletAction,
	bet, rate decimal.Decimal,
) *entities.WalletTransaction {
	t.Helper()
	ctx := context.Background()

	w, txn, err := f.walletSvc.ChangeAmount(ctx, info, entities.RootParentID, sourceTxnID, amount, action)
	require.NoError(t, err)
	_, _, err = f.rolloverSvc.Change(ctx, w.ID, info, txn.ID, bet, rate, action, w.UserID)
	require.NoError(t, err)
	return txn
}

func (f *fixture) balance(t *testing.T, info *entities.WalletInfo) decimal.Decimal {
	t.Helper()
	w, err := f.walletSvc.GetOrCreate(context.Background(), info)
	require.NoError(t, err)
	return w.Amount
}

func (f *fixture) ledger(t *testing.T, info *entities.WalletInfo) *entities.RolloverMain {
	t.Helper()
	main, err := f.mainRepo.Get(context.Background(), info)
	require.NoError(t, err)
	require.NotNil(t, main)
	return main
}
