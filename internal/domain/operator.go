// Package domain contains core business types and interfaces.
//
// This file defines the Operator domain type: the actor identity behind every
// workflow operation. Operators authenticate with bearer API tokens.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// OperatorRole controls what an operator may do.
type OperatorRole string

const (
	// OperatorRoleInvestigator can run the full workflow on reports.
	OperatorRoleInvestigator OperatorRole = "investigator"

	// OperatorRoleAdmin can additionally manage operators.
	OperatorRoleAdmin OperatorRole = "admin"
)

// String returns the string representation of the role.
func (r OperatorRole) String() string {
	return string(r)
}

// IsValid returns true if the role is a recognized value.
func (r OperatorRole) IsValid() bool {
	return r == OperatorRoleInvestigator || r == OperatorRoleAdmin
}

// Operator represents an authenticated consortium operator.
type Operator struct {
	ID        uuid.UUID    // Unique identifier
	Name      string       // Display name
	Email     string       // Contact email
	TokenHash string       // bcrypt hash of the API token (never exposed)
	Role      OperatorRole // What the operator may do
	CreatedAt time.Time    // When the operator was created
}

// IsAdmin returns true for administrators.
func (o *Operator) IsAdmin() bool {
	return o.Role == OperatorRoleAdmin
}
