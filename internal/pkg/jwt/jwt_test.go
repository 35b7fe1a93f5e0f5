package jwt

import (
	"testing"

	"github.com/cmlabs-hris/readiness-backend-go/internal/domain/user"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAccessToken_RoundTripsClaims(t *testing.T) {
	svc := NewJWTService("test-secret", "1h")

	token, expiresAt, err := svc.GenerateAccessToken(user.Actor{UserID: "u-1", CompanyID: "c-1", Role: user.RoleTeamLead})
	require.NoError(t, err)
	assert.NotZero(t, expiresAt)

	decoded, err := svc.JWTAuth().Decode(token)
	require.NoError(t, err)

	role, ok := decoded.Get("role")
	assert.True(t, ok)
	assert.Equal(t, "TEAM_LEAD", role)
	tokenType, _ := decoded.Get("type")
	assert.Equal(t, "access", tokenType)
	companyID, _ := decoded.Get("company_id")
	assert.Equal(t, "c-1", companyID)
}

func TestGenerateAccessToken_InvalidExpiration(t *testing.T) {
	svc := NewJWTService("test-secret", "soon")

	_, _, err := svc.GenerateAccessToken(user.Actor{UserID: "u-1"})
	assert.Error(t, err)
}
