package entities

import (
	"time"

	"github.com/shopspring/decimal"
)

// Currency is the oracle-validated currency a wallet is denominated in.
type Currency struct {
	ID   int64
	Name string
}

// WalletSource is a row of the wallet_source lookup table.
type WalletSource struct {
	ID       int64     `db:"id"`
	Name     string    `db:"name"`
	CreateAt time.Time `db:"create_at"`
}

// WalletInfo identifies one wallet: a player, a client, a currency and a
// wallet source. Every engine operation keys off of it.
type WalletInfo struct {
	ClientID     int64
	UserID       int64
	Currency     Currency
	WalletSource WalletSourceKind
}

// SelectWalletsQuery filters the paginated wallet listing. Empty slices mean
// no filter on that dimension.
type SelectWalletsQuery struct {
	ClientID        int64
	PlayerIDs       []int64
	CurrencyIDs     []int64
	WalletSourceIDs []int64
	Page            uint64
	PageSize        uint64
}

const (
	defaultPage     = 1
	defaultPageSize = 25
)

// Normalize floors page and page_size to their minimums.
func (q *SelectWalletsQuery) Normalize() {
	if q.Page < defaultPage {
		q.Page = defaultPage
	}
	if q.PageSize < defaultPageSize {
		q.PageSize = defaultPageSize
	}
}

// Offset returns the row offset for the normalized page.
func (q *SelectWalletsQuery) Offset() uint64 {
	return (q.Page - 1) * q.PageSize
}

// UserWalletWithRollover is the listing row joining a wallet to its wagering
// ledger totals.
type UserWalletWithRollover struct {
	ID                  int64           `db:"id"`
	ClientID            int64           `db:"client_id"`
	UserID              int64           `db:"user_id"`
	CurrencyID          int64           `db:"currency_id"`
	CurrencyName        string          `db:"currency_name"`
	WalletSourceID      int64           `db:"wallet_source_id"`
	WalletSourceName    string          `db:"wallet_source_name"`
	Amount              decimal.Decimal `db:"amount"`
	RequirementRollover decimal.Decimal `db:"requirement_rollover"`
	AchievementRollover decimal.Decimal `db:"achievement_rollover"`
	UpdateAt            time.Time       `db:"update_at"`
}
