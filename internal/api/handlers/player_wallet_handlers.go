package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/j50301m/wallet-server/internal/domain/entities"
	"github.com/j50301m/wallet-server/internal/domain/services/playerwallet"
	"github.com/j50301m/wallet-server/pkg/logger"
)

// PlayerWalletHandlers serves the payment-facing wallet endpoints.
type PlayerWalletHandlers struct {
	service   *playerwallet.Service
	validator *validator.Validate
	logger    *logger.Logger
}

func NewPlayerWalletHandlers(service *playerwallet.Service, logger *logger.Logger) *PlayerWalletHandlers {
	return &PlayerWalletHandlers{
		service:   service,
		validator: validator.New(),
		logger:    logger,
	}
}

// WalletModel is the wallet representation returned by the player
// endpoints. Amounts travel as decimal strings.
type WalletModel struct {
	ClientID            int64  `json:"client_id"`
	UserID              int64  `json:"user_id"`
	Currency            string `json:"currency"`
	WalletSourceID      int64  `json:"wallet_source_id"`
	WalletSourceName    string `json:"wallet_source_name"`
	Amount              string `json:"amount"`
	RequirementRollover string `json:"requirement_rollover"`
	AchievementRollover string `json:"achievement_rollover"`
}

func toWalletModel(state *playerwallet.WalletState) WalletModel {
	return WalletModel{
		ClientID:            state.Wallet.ClientID,
		UserID:              state.Wallet.UserID,
		Currency:            state.Wallet.CurrencyName,
		WalletSourceID:      state.Wallet.WalletSourceID,
		WalletSourceName:    state.Wallet.WalletSourceName,
		Amount:              state.Wallet.Amount.String(),
		RequirementRollover: state.Rollover.RequirementRollover.String(),
		AchievementRollover: state.Rollover.AchievementRollover.String(),
	}
}

func toListedWalletModel(row *entities.UserWalletWithRollover) WalletModel {
	return WalletModel{
		ClientID:            row.ClientID,
		UserID:              row.UserID,
		Currency:            row.CurrencyName,
		WalletSourceID:      row.WalletSourceID,
		WalletSourceName:    row.WalletSourceName,
		Amount:              row.Amount.String(),
		RequirementRollover: row.RequirementRollover.String(),
		AchievementRollover: row.AchievementRollover.String(),
	}
}

type playerWalletRequest struct {
	ClientID       int64  `json:"client_id" validate:"required"`
	UserID         int64  `json:"user_id" validate:"required"`
	Currency       string `json:"currency" validate:"required"`
	WalletSourceID int64  `json:"wallet_source_id" validate:"required"`
}

func (r *playerWalletRequest) toRef() playerwallet.WalletRef {
	return playerwallet.WalletRef{
		ClientID:       r.ClientID,
		UserID:         r.UserID,
		CurrencyName:   r.Currency,
		WalletSourceID: r.WalletSourceID,
	}
}

// Get handles POST /player-wallet/get.
func (h *PlayerWalletHandlers) Get(c *gin.Context) {
	var req playerWalletRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		SendBadRequest(c, "invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		SendBadRequest(c, err.Error())
		return
	}

	state, err := h.service.Get(c.Request.Context(), req.toRef())
	if err != nil {
		RespondError(c, h.logger, err)
		return
	}

	SendSuccess(c, toWalletModel(state))
}

type playerWalletListRequest struct {
	ClientID      int64    `json:"client_id" validate:"required"`
	PlayerIDs     []int64  `json:"player_ids"`
	Currencies    []string `json:"currencies"`
	WalletSources []int64  `json:"wallet_sources"`
	Page          uint64   `json:"page"`
	PageSize      uint64   `json:"page_size"`
}

// PlayerWalletListResponse is the paginated listing reply.
type PlayerWalletListResponse struct {
	Wallets []WalletModel `json:"wallets"`
}

// GetList handles POST /player-wallet/list.
func (h *PlayerWalletHandlers) GetList(c *gin.Context) {
	var req playerWalletListRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		SendBadRequest(c, "invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		SendBadRequest(c, err.Error())
		return
	}

	rows, err := h.service.GetList(c.Request.Context(), playerwallet.ListParams{
		ClientID:        req.ClientID,
		PlayerIDs:       req.PlayerIDs,
		CurrencyNames:   req.Currencies,
		WalletSourceIDs: req.WalletSources,
		Page:            req.Page,
		PageSize:        req.PageSize,
	})
	if err != nil {
		RespondError(c, h.logger, err)
		return
	}

	wallets := make([]WalletModel, 0, len(rows))
	for _, row := range rows {
		wallets = append(wallets, toListedWalletModel(row))
	}
	SendSuccess(c, PlayerWalletListResponse{Wallets: wallets})
}

type playerWalletChangeRequest struct {
	playerWalletRequest
	TransactionID int64  `json:"transaction_id" validate:"required"`
	Amount        string `json:"amount" validate:"required"`
	RolloverRate  string `json:"rollover_rate" validate:"required"`
}

// Deposit handles POST /player-wallet/deposit.
func (h *PlayerWalletHandlers) Deposit(c *gin.Context) {
	var req playerWalletChangeRequest
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
	rate, ok := parseNonNegativeAmount(c, "rollover_rate", req.RolloverRate)
	if !ok {
		return
	}

	state, err := h.service.Deposit(c.Request.Context(), playerwallet.ChangeParams{
		WalletRef:     req.toRef(),
		TransactionID: req.TransactionID,
		Amount:        amount,
		RolloverRate:  rate,
	})
	if err != nil {
		RespondError(c, h.logger, err)
		return
	}

	SendSuccess(c, toWalletModel(state))
}

// Withdraw handles POST /player-wallet/withdraw.
func (h *PlayerWalletHandlers) Withdraw(c *gin.Context) {
	var req playerWalletChangeRequest
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
	rate, ok := parseNonNegativeAmount(c, "rollover_rate", req.RolloverRate)
	if !ok {
		return
	}

	state, err := h.service.Withdraw(c.Request.Context(), playerwallet.ChangeParams{
		WalletRef:     req.toRef(),
		TransactionID: req.TransactionID,
		Amount:        amount,
		RolloverRate:  rate,
	})
	if err != nil {
		RespondError(c, h.logger, err)
		return
	}

	SendSuccess(c, toWalletModel(state))
}

type playerRollbackRequest struct {
	ClientID            int64 `json:"client_id" validate:"required"`
	UserID              int64 `json:"user_id" validate:"required"`
	SourceTransactionID int64 `json:"source_transaction_id" validate:"required"`
}

// Rollback handles POST /player-wallet/rollback.
func (h *PlayerWalletHandlers) Rollback(c *gin.Context) {
	var req playerRollbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		SendBadRequest(c, "invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		SendBadRequest(c, err.Error())
		return
	}

	state, err := h.service.Rollback(c.Request.Context(), playerwallet.RollbackParams{
		ClientID:            req.ClientID,
		UserID:              req.UserID,
		SourceTransactionID: req.SourceTransactionID,
	})
	if err != nil {
		RespondError(c, h.logger, err)
		return
	}

	SendSuccess(c, toWalletModel(state))
}
