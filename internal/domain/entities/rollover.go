package entities

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/j50301m/wallet-server/pkg/snowflake"
)

// RolloverMain is the running wagering ledger for one wallet. Requirement is
// the turnover a player owes before withdrawing, achievement is the turnover
// completed so far. Both are signed running totals.
type RolloverMain struct {
	ID                  int64           `db:"id"`
	UserWalletID        int64           `db:"user_wallet_id"`
	ClientID            int64           `db:"client_id"`
	UserID              int64           `db:"user_id"`
	CurrencyID          int64           `db:"currency_id"`
	CurrencyName        string          `db:"currency_name"`
	WalletSourceID      int64           `db:"wallet_source_id"`
	RequirementRollover decimal.Decimal `db:"requirement_rollover"`
	AchievementRollover decimal.Decimal `db:"achievement_rollover"`
	CreateAt            time.Time       `db:"create_at"`
	UpdateAt            time.Time       `db:"update_at"`
}

// NewRolloverMain creates an empty ledger bound to the given wallet.
func NewRolloverMain(info *WalletInfo, userWalletID int64) *RolloverMain {
	now := time.Now().UTC()
	return &RolloverMain{
		ID:                  snowflake.Generate(),
		UserWalletID:        userWalletID,
		ClientID:            info.ClientID,
		UserID:              info.UserID,
		CurrencyID:          info.Currency.ID,
		CurrencyName:        info.Currency.Name,
		WalletSourceID:      info.WalletSource.ID(),
		RequirementRollover: decimal.Zero,
		AchievementRollover: decimal.Zero,
		CreateAt:            now,
		UpdateAt:            now,
	}
}

// AddRequirement adds delta to the requirement total.
func (m *RolloverMain) AddRequirement(delta decimal.Decimal) {
	m.RequirementRollover = m.RequirementRollover.Add(delta)
	m.UpdateAt = time.Now().UTC()
}

// AddAchievement adds delta to the achievement total.
func (m *RolloverMain) AddAchievement(delta decimal.Decimal) {
	m.AchievementRollover = m.AchievementRollover.Add(delta)
	m.UpdateAt = time.Now().UTC()
}

// AddRequirementByAmount adds amount scaled by the rate in force.
func (m *RolloverMain) AddRequirementByAmount(amount, rate decimal.Decimal) {
	m.AddRequirement(amount.Mul(rate))
}

// AddAchievementByAmount adds amount scaled by the rate in force.
func (m *RolloverMain) AddAchievementByAmount(amount, rate decimal.Decimal) {
	m.AddAchievement(amount.Mul(rate))
}

// Clear zeroes both totals.
func (m *RolloverMain) Clear() {
	m.RequirementRollover = decimal.Zero
	m.AchievementRollover = decimal.Zero
	m.UpdateAt = time.Now().UTC()
}

// IsAchieved reports whether the completed turnover covers the requirement.
func (m *RolloverMain) IsAchieved() bool {
	return m.AchievementRollover.GreaterThanOrEqual(m.RequirementRollover)
}

// RolloverRecord is one signed delta applied to a ledger, pinned to the
// wallet transaction that caused it. Rates are captured per record because
// the configured rate can change over time.
type RolloverRecord struct {
	ID                      int64           `db:"id"`
	MainID                  int64           `db:"main_id"`
	ClientID                int64           `db:"client_id"`
	UserID                  int64           `db:"user_id"`
	RequirementRollover     decimal.Decimal `db:"requirement_rollover"`
	RequirementRolloverRate decimal.Decimal `db:"requirement_rollover_rate"`
	AchievementRollover     decimal.Decimal `db:"achievement_rollover"`
	AchievementRolloverRate decimal.Decimal `db:"achievement_rollover_rate"`
	CreateBy                int64           `db:"create_by"`
	WalletTxnID             int64           `db:"wallet_txn_id"`
	CreateAt                time.Time       `db:"create_at"`
}

// NewRolloverRecord builds a record crediting one side of the ledger with
// amount scaled by rate. The untouched side stays zero with a zero rate.
func NewRolloverRecord(
	mainID int64,
	walletTxnID int64,
	info *WalletInfo,
	rolloverType RolloverType,
	amount decimal.Decimal,
	rate decimal.Decimal,
	createBy int64,
) *RolloverRecord {
	rec := &RolloverRecord{
		ID:                      snowflake.Generate(),
		MainID:                  mainID,
		ClientID:                info.ClientID,
		UserID:                  info.UserID,
		RequirementRollover:     decimal.Zero,
		RequirementRolloverRate: decimal.Zero,
		AchievementRollover:     decimal.Zero,
		AchievementRolloverRate: decimal.Zero,
		CreateBy:                createBy,
		WalletTxnID:             walletTxnID,
		CreateAt:                time.Now().UTC(),
	}
	switch rolloverType {
	case RolloverRequirement:
		rec.RequirementRollover = amount.Mul(rate)
		rec.RequirementRolloverRate = rate
	case RolloverAchievement:
		rec.AchievementRollover = amount.Mul(rate)
		rec.AchievementRolloverRate = rate
	}
	return rec
}

// NewClearRolloverRecord builds the record that cancels the current totals
// of main, at unit rate.
func NewClearRolloverRecord(main *RolloverMain, walletTxnID, createBy int64) *RolloverRecord {
	one := decimal.NewFromInt(1)
	return &RolloverRecord{
		ID:                      snowflake.Generate(),
		MainID:                  main.ID,
		ClientID:                main.ClientID,
		UserID:                  main.UserID,
		RequirementRollover:     main.RequirementRollover.Neg(),
		RequirementRolloverRate: one,
		AchievementRollover:     main.AchievementRollover.Neg(),
		AchievementRolloverRate: one,
		CreateBy:                createBy,
		WalletTxnID:             walletTxnID,
		CreateAt:                time.Now().UTC(),
	}
}

// NewRollbackRolloverRecord builds the negation of r, keeping the original
// rates and pointing at the compensating wallet transaction.
func NewRollbackRolloverRecord(r *RolloverRecord, walletTxnID, createBy int64) *RolloverRecord {
	return &RolloverRecord{
		ID:                      snowflake.Generate(),
		MainID:                  r.MainID,
		ClientID:                r.ClientID,
		UserID:                  r.UserID,
		RequirementRollover:     r.RequirementRollover.Neg(),
		RequirementRolloverRate: r.RequirementRolloverRate,
		AchievementRollover:     r.AchievementRollover.Neg(),
		AchievementRolloverRate: r.AchievementRolloverRate,
		CreateBy:                createBy,
		WalletTxnID:             walletTxnID,
		CreateAt:                time.Now().UTC(),
	}
}
