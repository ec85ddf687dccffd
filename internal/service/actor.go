// Package service contains the business logic layer.
//
// This file implements the actor service: operator identity and API token
// authentication. Tokens are "<operator id>.<secret>"; only a bcrypt hash of
// the secret is stored.
package service

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"errors"
	"log/slog"
	"net/mail"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/oleawatch/oleawatch/internal/domain"
	"github.com/oleawatch/oleawatch/internal/repository"
)

// =============================================================================
// Interface Definition
// =============================================================================

// ActorService defines the interface for operator management and
// authentication.
type ActorService interface {
	// Authenticate resolves a bearer token to an operator.
	// Returns domain.EUNAUTHORIZED for unknown or malformed tokens.
	Authenticate(ctx context.Context, token string) (*domain.Operator, error)

	// CreateOperator registers an operator and mints their API token. The
	// plaintext token is returned exactly once.
	// Returns domain.ECONFLICT if the email is already registered.
	CreateOperator(ctx context.Context, params CreateOperatorParams) (*domain.Operator, string, error)

	// GetOperator retrieves an operator by ID.
	// Returns domain.ENOTFOUND if the operator does not exist.
	GetOperator(ctx context.Context, id uuid.UUID) (*domain.Operator, error)
}

// CreateOperatorParams contains validated parameters for registering an
// operator.
type CreateOperatorParams struct {
	Name  string
	Email string
	Role  domain.OperatorRole
}

// =============================================================================
// Implementation
// =============================================================================

// actorService implements the ActorService interface.
type actorService struct {
	store  Store
	logger *slog.Logger
}

// NewActorService creates a new ActorService.
func NewActorService(store Store, logger *slog.Logger) ActorService {
	return &actorService{
		store:  store,
		logger: logger,
	}
}

// tokenSecretBytes is the entropy of the random token secret.
const tokenSecretBytes = 24

func (s *actorService) Authenticate(ctx context.Context, token string) (*domain.Operator, error) {
	const op = "actor.Authenticate"

	idPart, secret, found := strings.Cut(strings.TrimSpace(token), ".")
	if !found || secret == "" {
		return nil, domain.Unauthorized(op, "malformed API token")
	}

	operatorID, err := uuid.Parse(idPart)
	if err != nil {
		return nil, domain.Unauthorized(op, "malformed API token")
	}

	operator, err := s.store.GetOperator(ctx, operatorID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.Unauthorized(op, "invalid API token")
		}
		return nil, domain.Internal(err, op, "failed to load operator")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(operator.TokenHash), []byte(secret)); err != nil {
		return nil, domain.Unauthorized(op, "invalid API token")
	}
	return operator, nil
}

func (s *actorService) CreateOperator(ctx context.Context, params CreateOperatorParams) (*domain.Operator, string, error) {
	const op = "actor.CreateOperator"

	name := strings.TrimSpace(params.Name)
	if name == "" {
		return nil, "", domain.MissingField(op, "name")
	}
	email := strings.ToLower(strings.TrimSpace(params.Email))
	if email == "" {
		return nil, "", domain.MissingField(op, "email")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, "", domain.Invalid(op, "invalid email address")
	}
	role := params.Role
	if role == "" {
		role = domain.OperatorRoleInvestigator
	}
	if !role.IsValid() {
		return nil, "", domain.Invalid(op, "invalid role: "+role.String())
	}

	if existing, err := s.store.GetOperatorByEmail(ctx, email); err == nil && existing != nil {
		return nil, "", domain.Conflict(op, "email is already registered")
	} else if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, "", domain.Internal(err, op, "failed to check existing operator")
	}

	secretRaw := make([]byte, tokenSecretBytes)
	if _, err := rand.Read(secretRaw); err != nil {
		return nil, "", domain.Internal(err, op, "failed to generate token")
	}
	secret := hex.EncodeToString(secretRaw)

	hash, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", domain.Internal(err, op, "failed to hash token")
	}

	operator, err := s.store.CreateOperator(ctx, repository.CreateOperatorParams{
		ID:        uuid.New(),
		Name:      name,
		Email:     email,
		TokenHash: string(hash),
		Role:      role,
	})
	if err != nil {
		return nil, "", domain.Internal(err, op, "failed to create operator")
	}

	s.logger.Info("operator created",
		slog.String("operator_id", operator.ID.String()),
		slog.String("role", role.String()))
	return operator, operator.ID.String() + "." + secret, nil
}

func (s *actorService) GetOperator(ctx context.Context, id uuid.UUID) (*domain.Operator, error) {
	const op = "actor.GetOperator"

	operator, err := s.store.GetOperator(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NotFound(op, "operator", id.String())
		}
		return nil, domain.Internal(err, op, "failed to load operator")
	}
	return operator, nil
}
