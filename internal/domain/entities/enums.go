package entities

import (
	"github.com/j50301m/wallet-server/internal/domain/errors"
)

// WalletAction identifies the business operation behind a wallet transaction.
type WalletAction int32

const (
	ActionGameDeposit           WalletAction = 1
	ActionGameWithdraw          WalletAction = 2
	ActionPaymentDeposit        WalletAction = 3
	ActionPaymentWithdraw       WalletAction = 4
	ActionPaymentWithdrawReject WalletAction = 5
)

// WalletActionFromID parses a wire-level action id.
func WalletActionFromID(v int32) (WalletAction, error) {
	switch v {
	case 1, 2, 3, 4, 5:
		return WalletAction(v), nil
	default:
		return 0, errors.ValidationError("action", "unknown wallet action")
	}
}

func (a WalletAction) ID() int32 { return int32(a) }

func (a WalletAction) String() string {
	switch a {
	case ActionGameDeposit:
		return "game_deposit"
	case ActionGameWithdraw:
		return "game_withdraw"
	case ActionPaymentDeposit:
		return "payment_deposit"
	case ActionPaymentWithdraw:
		return "payment_withdraw"
	case ActionPaymentWithdrawReject:
		return "payment_withdraw_reject"
	default:
		return "unknown"
	}
}

// IsDeposit reports whether the action increases the wallet balance.
func (a WalletAction) IsDeposit() bool {
	switch a {
	case ActionGameDeposit, ActionPaymentDeposit, ActionPaymentWithdrawReject:
		return true
	default:
		return false
	}
}

// Inverse returns the compensating action used by rollbacks. A withdraw
// reject has no inverse: it is itself a compensation.
func (a WalletAction) Inverse() (WalletAction, error) {
	switch a {
	case ActionGameDeposit:
		return ActionGameWithdraw, nil
	case ActionGameWithdraw:
		return ActionGameDeposit, nil
	case ActionPaymentDeposit:
		return ActionPaymentWithdraw, nil
	case ActionPaymentWithdraw:
		return ActionPaymentDeposit, nil
	default:
		return 0, errors.ValidationError("action", "action has no inverse")
	}
}

// WalletStatus is the settlement state of a wallet transaction.
type WalletStatus int32

const (
	StatusPending WalletStatus = 0
	StatusSuccess WalletStatus = 1
	StatusCancel  WalletStatus = 2
)

// WalletStatusFromID parses a wire-level status id.
func WalletStatusFromID(v int32) (WalletStatus, error) {
	switch v {
	case 0, 1, 2:
		return WalletStatus(v), nil
	default:
		return 0, errors.ValidationError("status", "unknown wallet status")
	}
}

func (s WalletStatus) ID() int32 { return int32(s) }

// WalletSourceKind distinguishes the principal wallet from the bonus wallet.
type WalletSourceKind int64

const (
	SourceNormal WalletSourceKind = 1
	SourceBonus  WalletSourceKind = 2
)

const (
	SourceNormalName = "normal_wallet"
	SourceBonusName  = "bonus_wallet"
)

// WalletSourceFromID parses a wallet source id.
func WalletSourceFromID(v int64) (WalletSourceKind, error) {
	switch v {
	case 1:
		return SourceNormal, nil
	case 2:
		return SourceBonus, nil
	default:
		return 0, errors.ValidationError("wallet_source_id", "unknown wallet source")
	}
}

func (k WalletSourceKind) ID() int64 { return int64(k) }

func (k WalletSourceKind) Name() string {
	switch k {
	case SourceNormal:
		return SourceNormalName
	case SourceBonus:
		return SourceBonusName
	default:
		return "unknown"
	}
}

// RolloverType selects which side of the wagering ledger a record credits.
type RolloverType int

const (
	// RolloverRequirement raises the turnover a player still owes.
	RolloverRequirement RolloverType = iota
	// RolloverAchievement credits turnover the player has completed.
	RolloverAchievement
)
