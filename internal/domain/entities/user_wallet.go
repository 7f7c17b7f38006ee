package entities

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/j50301m/wallet-server/pkg/snowflake"
)

// UserWallet is one player balance: a (client, user, currency, source) row.
type UserWallet struct {
	ID               int64           `db:"id"`
	ClientID         int64           `db:"client_id"`
	UserID           int64           `db:"user_id"`
	CurrencyID       int64           `db:"currency_id"`
	CurrencyName     string          `db:"currency_name"`
	WalletSourceID   int64           `db:"wallet_source_id"`
	WalletSourceName string          `db:"wallet_source_name"`
	Amount           decimal.Decimal `db:"amount"`
	CreateAt         time.Time       `db:"create_at"`
	UpdateAt         time.Time       `db:"update_at"`
}

// NewUserWallet creates a zero-balance wallet for the given identity.
func NewUserWallet(info *WalletInfo) *UserWallet {
	now := time.Now().UTC()
	return &UserWallet{
		ID:               snowflake.Generate(),
		ClientID:         info.ClientID,
		UserID:           info.UserID,
		CurrencyID:       info.Currency.ID,
		CurrencyName:     info.Currency.Name,
		WalletSourceID:   info.WalletSource.ID(),
		WalletSourceName: info.WalletSource.Name(),
		Amount:           decimal.Zero,
		CreateAt:         now,
		UpdateAt:         now,
	}
}

// Deposit adds amount to the balance.
func (w *UserWallet) Deposit(amount decimal.Decimal) {
	w.Amount = w.Amount.Add(amount)
	w.UpdateAt = time.Now().UTC()
}

// Withdraw subtracts amount from the balance. Callers enforce sufficiency
// where the operation requires it.
func (w *UserWallet) Withdraw(amount decimal.Decimal) {
	w.Amount = w.Amount.Sub(amount)
	w.UpdateAt = time.Now().UTC()
}

// Info rebuilds the wallet identity from a stored row.
func (w *UserWallet) Info() *WalletInfo {
	return &WalletInfo{
		ClientID:     w.ClientID,
		UserID:       w.UserID,
		Currency:     Currency{ID: w.CurrencyID, Name: w.CurrencyName},
		WalletSource: WalletSourceKind(w.WalletSourceID),
	}
}
