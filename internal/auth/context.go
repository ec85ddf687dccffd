// Package auth provides authentication context helpers.
//
// This package is designed to be imported by both middleware and handler
// packages without causing import cycles.
package auth

import (
	"context"
	"net/http"

	"github.com/oleawatch/oleawatch/internal/domain"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

const (
	// operatorContextKey is the key used to store the authenticated operator
	// in context.
	operatorContextKey contextKey = "operator"
)

// GetOperator retrieves the authenticated operator from the context.
//
// Returns nil if no operator is authenticated.
//
// Usage:
//
//	op := auth.GetOperator(r.Context())
//	if op == nil {
//	    // Handle unauthenticated request
//	}
func GetOperator(ctx context.Context) *domain.Operator {
	op, ok := ctx.Value(operatorContextKey).(*domain.Operator)
	if !ok {
		return nil
	}
	return op
}

// GetOperatorFromRequest retrieves the authenticated operator from the
// request context.
//
// This is a convenience wrapper around GetOperator that takes the request
// directly.
func GetOperatorFromRequest(r *http.Request) *domain.Operator {
	return GetOperator(r.Context())
}

// SetOperator stores an operator in the context.
//
// This is typically called by authentication middleware after validating a
// bearer token.
func SetOperator(ctx context.Context, op *domain.Operator) context.Context {
	return context.WithValue(ctx, operatorContextKey, op)
}
