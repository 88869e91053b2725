package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"rechnung-backend/internal/apperr"
	"rechnung-backend/internal/auth"
	"rechnung-backend/internal/models"
	"rechnung-backend/pkg/utils"
)

type contextKey string

const ownerIDKey contextKey = "ownerID"

type userGetter interface {
	Get(ctx context.Context, id uuid.UUID) (*models.User, error)
}

type AuthMiddleware struct {
	jwt   *auth.JWTManager
	users userGetter
}

func NewAuthMiddleware(jwt *auth.JWTManager, users userGetter) *AuthMiddleware {
	return &AuthMiddleware{jwt: jwt, users: users}
}

// Authenticate requires a valid bearer token and attaches the owner id to
// the request context. The account must still exist; deleted accounts keep
// a valid token until expiry but lose access immediately.
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			utils.Error(w, apperr.ErrUnauthenticated)
			return
		}

		userID, err := m.jwt.ValidateToken(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			utils.Error(w, apperr.ErrUnauthenticated)
			return
		}

		if _, err := m.users.Get(r.Context(), userID); err != nil {
			utils.Error(w, apperr.ErrUnauthenticated)
			return
		}

		ctx := context.WithValue(r.Context(), ownerIDKey, userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetOwnerID returns the authenticated owner from the request context.
func GetOwnerID(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(ownerIDKey).(uuid.UUID)
	return id, ok
}
