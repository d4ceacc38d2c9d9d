package decision

import (
	"context"
	"errors"
	"strings"

	"payrecon/internal/decision/ports"
	"payrecon/pkg/platform/sentinel"
)

// Resolution tells whether an account reference maps to a customer.
type Resolution string

const (
	ResolutionFound    Resolution = "found"
	ResolutionNotFound Resolution = "not_found"
)

// Resolver maps account references to customers.
// Not finding a customer is a result, not an error; errors mean the
// directory could not answer.
type Resolver struct {
	directory ports.DirectoryPort
}

// NewResolver creates a resolver over the directory port.
func NewResolver(directory ports.DirectoryPort) *Resolver {
	return &Resolver{directory: directory}
}

// Resolve looks up the customer that owns accountReference.
func (r *Resolver) Resolve(ctx context.Context, accountReference string) (*ports.Customer, Resolution, error) {
	ref := strings.TrimSpace(accountReference)
	if ref == "" {
		return nil, ResolutionNotFound, nil
	}

	customer, err := r.directory.GetByAccountReference(ctx, ref)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, ResolutionNotFound, nil
		}
		return nil, "", err
	}
	if customer == nil {
		return nil, ResolutionNotFound, nil
	}
	return customer, ResolutionFound, nil
}
