package entities

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testWalletInfo() *WalletInfo {
	return &WalletInfo{
		ClientID:     100,
		UserID:       200,
		Currency:     Currency{ID: 1, Name: "USD"},
		WalletSource: SourceNormal,
	}
}

func TestNewTransactionBeforeChangeDeposit(t *testing.T) {
	wallet := NewUserWallet(testWalletInfo())
	wallet.Amount = decimal.NewFromInt(50)

	txn := NewTransactionBeforeChange(wallet, RootParentID, 9001, ActionGameDeposit, decimal.NewFromInt(30))

	require.NotZero(t, txn.ID)
	assert.EqualValues(t, RootParentID, txn.ParentID)
	assert.Equal(t, wallet.ClientID, txn.ClientID)
	assert.Equal(t, wallet.UserID, txn.UserID)
	assert.Equal(t, wallet.CurrencyID, txn.CurrencyID)
	assert.Equal(t, wallet.WalletSourceID, txn.WalletSourceID)
	assert.EqualValues(t, 9001, txn.TransactionSourceID)
	assert.Equal(t, ActionGameDeposit.ID(), txn.Action)
	assert.Equal(t, StatusSuccess.ID(), txn.Status)
	assert.True(t, txn.BeforeAmount.Equal(decimal.NewFromInt(50)))
	assert.True(t, txn.ChangeAmount.Equal(decimal.NewFromInt(30)))
	assert.True(t, txn.AfterAmount.Equal(decimal.NewFromInt(80)))
	assert.True(t, txn.IsRoot())
}

func TestNewTransactionBeforeChangeWithdraw(t *testing.T) {
	wallet := NewUserWallet(testWalletInfo())
	wallet.Amount = decimal.NewFromInt(50)

	txn := NewTransactionBeforeChange(wallet, 777, 9002, ActionPaymentWithdraw, decimal.NewFromInt(20))

	assert.EqualValues(t, 777, txn.ParentID)
	assert.False(t, txn.IsRoot())
	assert.True(t, txn.BeforeAmount.Equal(decimal.NewFromInt(50)))
	assert.True(t, txn.AfterAmount.Equal(decimal.NewFromInt(30)))
}

func TestSignedAmount(t *testing.T) {
	wallet := NewUserWallet(testWalletInfo())
	amount := decimal.NewFromInt(25)

	deposit := NewTransactionBeforeChange(wallet, RootParentID, 1, ActionGameDeposit, amount)
	assert.True(t, deposit.SignedAmount().Equal(amount))

	withdraw := NewTransactionBeforeChange(wallet, RootParentID, 2, ActionGameWithdraw, amount)
	assert.True(t, withdraw.SignedAmount().Equal(amount.Neg()))

	reject := NewTransactionBeforeChange(wallet, RootParentID, 3, ActionPaymentWithdrawReject, amount)
	assert.True(t, reject.SignedAmount().Equal(amount))
}
