package models

import (
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"rechnung-backend/internal/apperr"
)

// User is an owner account. Every customer, invoice and settings record is
// scoped to exactly one user.
type User struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// SignupRequest is the payload for creating an owner account.
type SignupRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest is the payload for obtaining a token.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

func (r *SignupRequest) Validate() error {
	r.Email = strings.TrimSpace(r.Email)
	if !emailPattern.MatchString(r.Email) {
		return apperr.Validation("Ungültige E-Mail-Adresse")
	}
	if len(r.Password) < 8 {
		return apperr.Validation("Passwort muss mindestens 8 Zeichen lang sein")
	}
	return nil
}
