package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/j50301m/wallet-server/internal/domain/services/gamewallet"
	"github.com/j50301m/wallet-server/pkg/logger"
)

// GameWalletHandlers serves the game-facing wallet endpoints.
type GameWalletHandlers struct {
	service   *gamewallet.Service
	validator *validator.Validate
	logger    *logger.Logger
}

func NewGameWalletHandlers(service *gamewallet.Service, logger *logger.Logger) *GameWalletHandlers {
	return &GameWalletHandlers{
		service:   service,
		validator: validator.New(),
		logger:    logger,
	}
}

// walletRefRequest is the wallet identity shared by every game request.
type walletRefRequest struct {
	ClientID       int64  `json:"client_id" validate:"required"`
	UserID         int64  `json:"user_id" validate:"required"`
	Currency       string `json:"currency" validate:"required"`
	WalletSourceID int64  `json:"wallet_source_id" validate:"required"`
}

func (r *walletRefRequest) toRef() gamewallet.WalletRef {
	return gamewallet.WalletRef{
		ClientID:       r.ClientID,
		UserID:         r.UserID,
		CurrencyName:   r.Currency,
		WalletSourceID: r.WalletSourceID,
	}
}

// BalanceResponse carries the wallet balance as a decimal string.
type BalanceResponse struct {
	Balance string `json:"balance"`
}

type balanceRequest struct {
	walletRefRequest
}

// GetBalance handles POST /game-wallet/balance.
func (h *GameWalletHandlers) GetBalance(c *gin.Context) {
	var req balanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		SendBadRequest(c, "invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		SendBadRequest(c, err.Error())
		return
	}

	balance, err := h.service.GetBalance(c.Request.Context(), req.toRef())
	if err != nil {
		RespondError(c, h.logger, err)
		return
	}

	SendSuccess(c, BalanceResponse{Balance: balance.String()})
}

type gameDepositRequest struct {
	walletRefRequest
	TransactionID int64  `json:"transaction_id" validate:"required"`
	Amount        string `json:"amount" validate:"required"`
	EffectiveBet  string `json:"effective_bet" validate:"required"`
	RolloverRate  string `json:"rollover_rate" validate:"required"`
}

// Deposit handles POST /game-wallet/deposit.
func (h *GameWalletHandlers) Deposit(c *gin.Context) {
	var req gameDepositRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		SendBadRequest(c, "invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		SendBadRequest(c, err.Error())
		return
	}

	amount, ok := parsePositiveAmount(c, "amount", req.Amount)
	if !ok {
		return
	}
	effectiveBet, ok := parseNonNegativeAmount(c, "effective_bet", req.EffectiveBet)
	if !ok {
		return
	}
	rate, ok := parseNonNegativeAmount(c, "rollover_rate", req.RolloverRate)
	if !ok {
		return
	}

	balance, err := h.service.Deposit(c.Request.Context(), gamewallet.DepositParams{
		WalletRef:     req.toRef(),
		TransactionID: req.TransactionID,
		Amount:        amount,
		EffectiveBet:  effectiveBet,
		RolloverRate:  rate,
	})
	if err != nil {
		RespondError(c, h.logger, err)
		return
	}

	SendSuccess(c, BalanceResponse{Balance: balance.String()})
}

type gameWithdrawRequest struct {
	walletRefRequest
	TransactionID int64  `json:"transaction_id" validate:"required"`
	Amount        string `json:"amount" validate:"required"`
}

// Withdraw handles POST /game-wallet/withdraw.
func (h *GameWalletHandlers) Withdraw(c *gin.Context) {
	var req gameWithdrawRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		SendBadRequest(c, "invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		SendBadRequest(c, err.Error())
		return
	}

	amount, ok := parsePositiveAmount(c, "amount", req.Amount)
	if !ok {
		return
	}

	balance, err := h.service.Withdraw(c.Request.Context(), gamewallet.WithdrawParams{
		WalletRef:     req.toRef(),
		TransactionID: req.TransactionID,
		Amount:        amount,
	})
	if err != nil {
		RespondError(c, h.logger, err)
		return
	}

	SendSuccess(c, BalanceResponse{Balance: balance.String()})
}

type gameRollbackRequest struct {
	walletRefRequest
	TransactionIDs []int64 `json:"transaction_ids" validate:"required,min=1"`
}

// Rollback handles POST /game-wallet/rollback.
func (h *GameWalletHandlers) Rollback(c *gin.Context) {
	var req gameRollbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		SendBadRequest(c, "invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		SendBadRequest(c, err.Error())
		return
	}

	balance, err := h.service.Rollback(c.Request.Context(), gamewallet.RollbackParams{
		WalletRef:      req.toRef(),
		TransactionIDs: req.TransactionIDs,
	})
	if err != nil {
		RespondError(c, h.logger, err)
		return
	}

	SendSuccess(c, BalanceResponse{Balance: balance.String()})
}

type gameUpdateRequest struct {
	walletRefRequest
	TransactionID int64  `json:"transaction_id" validate:"required"`
	OldAmount     string `json:"old_amount" validate:"required"`
	NewAmount     string `json:"new_amount" validate:"required"`
	EffectiveBet  string `json:"effective_bet" validate:"required"`
	RolloverRate  string `json:"rollover_rate" validate:"required"`
}

// Update handles POST /game-wallet/update.
func (h *GameWalletHandlers) Update(c *gin.Context) {
	var req gameUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		SendBadRequest(c, "invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		SendBadRequest(c, err.Error())
		return
	}

	oldAmount, ok := parseAmount(c, "old_amount", req.OldAmount)
	if !ok {
		return
	}
	newAmount, ok := parseAmount(c, "new_amount", req.NewAmount)
	if !ok {
		return
	}
	effectiveBet, ok := parseAmount(c, "effective_bet", req.EffectiveBet)
	if !ok {
		return
	}
	rate, ok := parseNonNegativeAmount(c, "rollover_rate", req.RolloverRate)
	if !ok {
		return
	}

	balance, err := h.service.Update(c.Request.Context(), gamewallet.UpdateParams{
		WalletRef:     req.toRef(),
		TransactionID: req.TransactionID,
		OldAmount:     oldAmount,
		NewAmount:     newAmount,
		EffectiveBet:  effectiveBet,
		RolloverRate:  rate,
	})
	if err != nil {
		RespondError(c, h.logger, err)
		return
	}

	SendSuccess(c, BalanceResponse{Balance: balance.String()})
}
