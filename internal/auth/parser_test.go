package auth

import (
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/veeduria/obras-service/internal/model"
)

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func TestParserRoundTrip(t *testing.T) {
	parser := NewParser("test-secret")
	userID := uuid.New()
	orgID := uuid.New()

	signed := signToken(t, "test-secret", jwt.MapClaims{
		"user_id": userID.String(),
		"org_id":  orgID.String(),
		"role":    "SUPERVISOR",
	})

	principal, err := parser.Parse(signed)
	require.NoError(t, err)
	require.Equal(t, userID, principal.UserID)
	require.Equal(t, orgID, principal.OrgID)
	require.Equal(t, model.RoleSupervisor, principal.Role)
}

func TestParserRejectsBadTokens(t *testing.T) {
	parser := NewParser("test-secret")

	_, err := parser.Parse("not-a-token")
	require.Error(t, err)

	// wrong secret
	signed := signToken(t, "other-secret", jwt.MapClaims{
		"user_id": uuid.New().String(),
		"org_id":  uuid.New().String(),
		"role":    "ADMIN",
	})
	_, err = parser.Parse(signed)
	require.Error(t, err)

	// missing role claim
	signed = signToken(t, "test-secret", jwt.MapClaims{
		"user_id": uuid.New().String(),
		"org_id":  uuid.New().String(),
	})
	_, err = parser.Parse(signed)
	require.Error(t, err)
}
