package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/oleawatch/oleawatch/internal/domain"
)

const operatorColumns = `id, name, email, token_hash, role, created_at`

func scanOperator(row interface{ Scan(...interface{}) error }) (*domain.Operator, error) {
	var o domain.Operator
	err := row.Scan(&o.ID, &o.Name, &o.Email, &o.TokenHash, &o.Role, &o.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// CreateOperatorParams are the column values for a new operators row.
type CreateOperatorParams struct {
	ID        uuid.UUID
	Name      string
	Email     string
	TokenHash string
	Role      domain.OperatorRole
}

// CreateOperator inserts an operator and returns it.
func (q *Queries) CreateOperator(ctx context.Context, params CreateOperatorParams) (*domain.Operator, error) {
	row := q.db.QueryRowContext(ctx, `
		INSERT INTO operators (id, name, email, token_hash, role)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+operatorColumns,
		params.ID, params.Name, params.Email, params.TokenHash, params.Role,
	)
	return scanOperator(row)
}

// GetOperator retrieves an operator by ID.
func (q *Queries) GetOperator(ctx context.Context, id uuid.UUID) (*domain.Operator, error) {
	row := q.db.QueryRowContext(ctx, `
		SELECT `+operatorColumns+` FROM operators WHERE id = $1`, id)
	return scanOperator(row)
}

// GetOperatorByEmail retrieves an operator by email.
func (q *Queries) GetOperatorByEmail(ctx context.Context, email string) (*domain.Operator, error) {
	row := q.db.QueryRowContext(ctx, `
		SELECT `+operatorColumns+` FROM operators WHERE email = $1`, email)
	return scanOperator(row)
}
