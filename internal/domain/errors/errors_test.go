package errors

import (
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCategoryMatching(t *testing.T) {
	assert.True(t, IsNotFound(NotFoundError("currency")))
	assert.True(t, IsInvalidInput(ValidationError("amount", "bad")))
	assert.True(t, stderrors.Is(AmountNotEnoughError(), ErrWalletAmountNotEnough))
	assert.True(t, stderrors.Is(RolloverNotAchievedError(), ErrRolloverNotAchieved))
	assert.True(t, stderrors.Is(RollbackAmountError("1", "2"), ErrRollbackAmountMismatch))
	assert.True(t, stderrors.Is(InternalError("boom", nil), ErrInternal))

	assert.False(t, IsNotFound(ValidationError("amount", "bad")))
}

func TestWrapPreservesCategory(t *testing.T) {
	err := Wrap(NotFoundError("wallet transaction"), "resolve chain tail")
	assert.True(t, IsNotFound(err))
	assert.Contains(t, err.Error(), "resolve chain tail")

	assert.Nil(t, Wrap(nil, "noop"))
}

func TestGetErrorCode(t *testing.T) {
	assert.Equal(t, "NOT_FOUND", GetErrorCode(NotFoundError("x")))
	assert.Equal(t, "NOT_FOUND", GetErrorCode(Wrap(NotFoundError("x"), "outer")))
	assert.Equal(t, "UNKNOWN_ERROR", GetErrorCode(stderrors.New("plain")))
}

func TestWithDetails(t *testing.T) {
	err := NotFoundError("currency").WithDetails(map[string]interface{}{"name": "USD"})
	assert.Equal(t, "USD", err.Details["name"])
}
