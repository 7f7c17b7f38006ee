// Package currency validates client currencies against the currency oracle.
package currency

import (
	"context"

	"github.com/j50301m/wallet-server/internal/domain/entities"
	"github.com/j50301m/wallet-server/internal/domain/errors"
)

// Oracle is the upstream source of truth for client currencies. The
// infrastructure layer provides the HTTP implementation.
type Oracle interface {
	// GetClientCurrencies returns the enabled currencies matching names.
	// An empty names slice matches every enabled currency.
	GetClientCurrencies(ctx context.Context, clientID int64, names []string) ([]entities.Currency, error)
	// GetClientCurrencyByID returns the currency with the given id, enabled
	// or not. Disabled currencies come back with Enabled false.
	GetClientCurrencyByID(ctx context.Context, clientID, currencyID int64) (*ClientCurrency, error)
}

// ClientCurrency is the oracle's view of one currency.
type ClientCurrency struct {
	ID      int64
	Name    string
	Enabled bool
}

// Service resolves and validates currencies for wallet operations.
type Service interface {
	GetEnabledCurrencies(ctx context.Context, clientID int64, names []string) ([]entities.Currency, error)
	GetEnabledCurrency(ctx context.Context, clientID int64, name string) (entities.Currency, error)
	GetEnabledCurrencyByID(ctx context.Context, clientID, currencyID int64) (entities.Currency, error)
}

type service struct {
	oracle Oracle
}

// NewService creates a currency service backed by the given oracle.
func NewService(oracle Oracle) Service {
	return &service{oracle: oracle}
}

func (s *service) GetEnabledCurrencies(ctx context.Context, clientID int64, names []string) ([]entities.Currency, error) {
	return s.oracle.GetClientCurrencies(ctx, clientID, names)
}

func (s *service) GetEnabledCurrency(ctx context.Context, clientID int64, name string) (entities.Currency, error) {
	currencies, err := s.oracle.GetClientCurrencies(ctx, clientID, []string{name})
	if err != nil {
		return entities.Currency{}, err
	}
	if len(currencies) == 0 {
		return entities.Currency{}, errors.NotFoundError("currency")
	}
	return currencies[0], nil
}

func (s *service) GetEnabledCurrencyByID(ctx context.Context, clientID, currencyID int64) (entities.Currency, error) {
	cc, err := s.oracle.GetClientCurrencyByID(ctx, clientID, currencyID)
	if err != nil {
		return entities.Currency{}, err
	}
	if cc == nil || !cc.Enabled {
		return entities.Currency{}, errors.NotFoundError("currency")
	}
	return entities.Currency{ID: cc.ID, Name: cc.Name}, nil
}
