//go:build unit

package jwt_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/domain/identity"
	"storefront/internal/pkg/jwt"
)

func TestTokenRoundTrip(t *testing.T) {
	t.Parallel()

	svc := jwt.NewService("test-secret-key", time.Hour)
	userID := uuid.New()

	t.Run("issued token validates with its claims intact", func(t *testing.T) {
		t.Parallel()
		token, err := svc.GenerateToken(userID, identity.RoleStaff)
		require.NoError(t, err)

		claims, err := svc.ValidateToken(token)
		require.NoError(t, err)
		assert.Equal(t, userID, claims.UserID)
		assert.Equal(t, identity.RoleStaff.String(), claims.Role)
	})

	t.Run("expired token is rejected", func(t *testing.T) {
		t.Parallel()
		expired := jwt.NewService("test-secret-key", -time.Minute)
		token, err := expired.GenerateToken(userID, identity.RoleCustomer)
		require.NoError(t, err)

		_, err = svc.ValidateToken(token)
		assert.ErrorIs(t, err, jwt.ErrExpiredToken)
	})

	t.Run("token signed with another secret is rejected", func(t *testing.T) {
		t.Parallel()
		other := jwt.NewService("another-secret", time.Hour)
		token, err := other.GenerateToken(userID, identity.RoleCustomer)
		require.NoError(t, err)

		_, err = svc.ValidateToken(token)
		assert.ErrorIs(t, err, jwt.ErrInvalidToken)
	})

	t.Run("garbage is rejected", func(t *testing.T) {
		t.Parallel()
		_, err := svc.ValidateToken("not-a-token")
		assert.ErrorIs(t, err, jwt.ErrInvalidToken)
	})
}
