package jwt

import (
	"testing"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndValidate(t *testing.T) {
	SetSecretKey("test-secret")
	tenant := uuid.New()

	token, err := GenerateToken(tenant, "u-1", "ACCOUNTANT", []string{"document:view"}, time.Hour)
	require.NoError(t, err)

	claims, err := ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, tenant, claims.TenantID)
	assert.Equal(t, "u-1", claims.UserID)
	assert.Equal(t, "ACCOUNTANT", claims.Role)
	assert.Equal(t, []string{"document:view"}, claims.Privileges)
}

func TestValidateTokenRejects(t *testing.T) {
	SetSecretKey("test-secret")

	signed, err := GenerateToken(uuid.New(), "u-1", "CLERK", nil, time.Hour)
	require.NoError(t, err)
	SetSecretKey("rotated")
	_, err = ValidateToken(signed)
	assert.ErrorIs(t, err, ErrInvalidToken, "wrong secret")
	SetSecretKey("test-secret")

	noTenant, err := GenerateToken(uuid.Nil, "u-1", "CLERK", nil, time.Hour)
	require.NoError(t, err)
	_, err = ValidateToken(noTenant)
	assert.ErrorIs(t, err, ErrNoTenant)

	_, err = ValidateToken("")
	assert.ErrorIs(t, err, ErrMissingToken)

	_, err = ValidateToken("not.a.token")
	assert.ErrorIs(t, err, ErrInvalidToken)

	none := gojwt.NewWithClaims(gojwt.SigningMethodNone, &Claims{TenantID: uuid.New(), UserID: "u"})
	unsigned, err := none.SignedString(gojwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = ValidateToken(unsigned)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
