// Package services holds the business rules between HTTP handlers and the
// repositories. Services validate input, enforce ownership and lifecycle
// rules and translate store errors into the apperr taxonomy. Each service
// depends on small store interfaces so the rules can be tested against
// in-memory fakes.
package services

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"rechnung-backend/internal/apperr"
	"rechnung-backend/internal/auth"
	"rechnung-backend/internal/models"
)

type userStore interface {
	Create(ctx context.Context, email, passwordHash string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
}

type UserService struct {
	users userStore
	jwt   *auth.JWTManager
}

func NewUserService(users userStore, jwt *auth.JWTManager) *UserService {
	return &UserService{users: users, jwt: jwt}
}

// Signup registers a new owner account and returns it with a signed token.
func (s *UserService) Signup(ctx context.Context, req *models.SignupRequest) (*models.User, string, error) {
	if err := req.Validate(); err != nil {
		return nil, "", err
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, "", apperr.Persistence("Fehler bei der Registrierung", err)
	}

	user, err := s.users.Create(ctx, req.Email, hash)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, "", apperr.Conflict("E-Mail-Adresse wird bereits verwendet")
		}
		return nil, "", apperr.Persistence("Fehler bei der Registrierung", err)
	}

	token, err := s.jwt.GenerateToken(user)
	if err != nil {
		return nil, "", apperr.Persistence("Fehler bei der Registrierung", err)
	}
	return user, token, nil
}

// Login verifies credentials and returns the account with a signed token.
// Unknown email and wrong password are indistinguishable to the caller.
func (s *UserService) Login(ctx context.Context, req *models.LoginRequest) (*models.User, string, error) {
	user, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, "", apperr.ErrInvalidCredentials
		}
		return nil, "", apperr.Persistence("Fehler bei der Anmeldung", err)
	}

	if !auth.VerifyPassword(user.PasswordHash, req.Password) {
		return nil, "", apperr.ErrInvalidCredentials
	}

	token, err := s.jwt.GenerateToken(user)
	if err != nil {
		return nil, "", apperr.Persistence("Fehler bei der Anmeldung", err)
	}
	return user, token, nil
}
