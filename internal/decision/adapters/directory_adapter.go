package adapters

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"payrecon/internal/decision/ports"
	"payrecon/internal/directory"
	dErrors "payrecon/pkg/domain-errors"
	"payrecon/pkg/platform/sentinel"
)

// DirectoryAdapter is an in-process adapter that implements ports.DirectoryPort
// by calling the CRM service directly. The httpclient package carries the
// remote variant; the decision service cannot tell them apart.
type DirectoryAdapter struct {
	service *directory.Service
}

// NewDirectoryAdapter creates a new in-process directory adapter.
func NewDirectoryAdapter(service *directory.Service) ports.DirectoryPort {
	return &DirectoryAdapter{service: service}
}

// GetByAccountReference returns nil without error when no customer owns ref.
func (a *DirectoryAdapter) GetByAccountReference(ctx context.Context, ref string) (*ports.Customer, error) {
	c, err := a.service.GetByAccountNumber(ctx, ref)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeNotFound) {
			return nil, nil
		}
		return nil, unavailable("directory", err)
	}
	return &ports.Customer{
		ID:               c.ID,
		Name:             c.Name,
		Email:            c.Email,
		AccountReference: c.AccountNumber,
		Status:           ports.CustomerStatus(c.Status),
		CreditLimit:      c.CreditLimit,
		CurrentBalance:   c.CurrentBalance,
	}, nil
}

func (a *DirectoryAdapter) CreditCheck(ctx context.Context, customerID string, amount decimal.Decimal) (*ports.CreditCheck, error) {
	result, err := a.service.CreditCheck(ctx, customerID, amount)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeNotFound) {
			return nil, sentinel.ErrNotFound
		}
		return nil, unavailable("directory", err)
	}
	return &ports.CreditCheck{
		CustomerID:      result.CustomerID,
		AvailableCredit: result.AvailableCredit,
		Approved:        result.Approved,
	}, nil
}

// unavailable marks a collaborator failure so callers can test it with
// errors.Is(err, sentinel.ErrUnavailable).
func unavailable(collaborator string, err error) error {
	if errors.Is(err, sentinel.ErrUnavailable) {
		return err
	}
	return fmt.Errorf("%s: %w: %w", collaborator, sentinel.ErrUnavailable, err)
}
