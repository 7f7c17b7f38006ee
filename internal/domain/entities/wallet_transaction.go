package entities

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/j50301m/wallet-server/pkg/snowflake"
)

// RootParentID marks the head of a transaction chain.
const RootParentID = 0

// WalletTransaction is one immutable ledger entry. Entries on the same
// external source id form a parent-linked chain: the head has parent_id 0,
// each later entry points at the one it supersedes.
type WalletTransaction struct {
	ID                  int64           `db:"id"`
	ParentID            int64           `db:"parent_id"`
	ClientID            int64           `db:"client_id"`
	UserID              int64           `db:"user_id"`
	CurrencyID          int64           `db:"currency_id"`
	WalletSourceID      int64           `db:"wallet_source_id"`
	Action              int32           `db:"action"`
	TransactionSourceID int64           `db:"transaction_source_id"`
	BeforeAmount        decimal.Decimal `db:"before_amount"`
	ChangeAmount        decimal.Decimal `db:"change_amount"`
	AfterAmount         decimal.Decimal `db:"after_amount"`
	Status              int32           `db:"status"`
	CreateAt            time.Time       `db:"create_at"`
	UpdateAt            time.Time       `db:"update_at"`
}

// NewTransactionBeforeChange builds the ledger entry for a wallet that has
// not been mutated yet: before_amount is the current balance, after_amount
// is derived from the action direction.
func NewTransactionBeforeChange(
	wallet *UserWallet,
	parentTxnID int64,
	sourceTxnID int64,
	action WalletAction,
	changeAmount decimal.Decimal,
) *WalletTransaction {
	before := wallet.Amount
	var after decimal.Decimal
	if action.IsDeposit() {
		after = before.Add(changeAmount)
	} else {
		after = before.Sub(changeAmount)
	}
	now := time.Now().UTC()

	return &WalletTransaction{
		ID:                  snowflake.Generate(),
		ParentID:            parentTxnID,
		ClientID:            wallet.ClientID,
		UserID:              wallet.UserID,
		CurrencyID:          wallet.CurrencyID,
		WalletSourceID:      wallet.WalletSourceID,
		Action:              action.ID(),
		TransactionSourceID: sourceTxnID,
		BeforeAmount:        before,
		ChangeAmount:        changeAmount,
		AfterAmount:         after,
		Status:              StatusSuccess.ID(),
		CreateAt:            now,
		UpdateAt:            now,
	}
}

// IsRoot reports whether this entry is the head of its chain.
func (t *WalletTransaction) IsRoot() bool { return t.ParentID == RootParentID }

// SignedAmount returns the balance delta this entry applied: positive for
// deposits, negative for withdrawals.
func (t *WalletTransaction) SignedAmount() decimal.Decimal {
	if WalletAction(t.Action).IsDeposit() {
		return t.ChangeAmount
	}
	return t.ChangeAmount.Neg()
}
