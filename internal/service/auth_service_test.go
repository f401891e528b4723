package service

import (
	"net/http"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/event-calendar-api/internal/models"
	appErrors "github.com/noah-isme/event-calendar-api/pkg/errors"
)

func newAuthServiceForTest() *AuthService {
	return NewAuthService(nil, zap.NewNop(), AuthConfig{
		AccessTokenSecret: "secret",
		AccessTokenExpiry: time.Hour,
		Issuer:            "event-calendar",
	})
}

func TestAuthServiceIssueAndValidate(t *testing.T) {
	svc := newAuthServiceForTest()

	issued, err := svc.IssueToken(TokenRequest{Subject: "ops", Role: models.RoleEditor})
	require.NoError(t, err)
	assert.NotEmpty(t, issued.AccessToken)

	claims, err := svc.ValidateToken(issued.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "ops", claims.UserID)
	assert.Equal(t, models.RoleEditor, claims.Role)
}

func TestAuthServiceIssueValidation(t *testing.T) {
	svc := newAuthServiceForTest()
	_, err := svc.IssueToken(TokenRequest{Subject: "ops", Role: "ROOT"})
	assert.Equal(t, http.StatusBadRequest, appErrors.FromError(err).Status)

	noSecret := NewAuthService(nil, nil, AuthConfig{})
	_, err = noSecret.IssueToken(TokenRequest{Subject: "ops", Role: models.RoleAdmin})
	assert.Equal(t, http.StatusInternalServerError, appErrors.FromError(err).Status)
}

func TestAuthServiceRejectsExpiredToken(t *testing.T) {
	svc := newAuthServiceForTest()
	issued, err := svc.IssueToken(TokenRequest{Subject: "ops", Role: models.RoleAdmin})
	require.NoError(t, err)

	svc.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = svc.ValidateToken(issued.AccessToken)
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, http.StatusUnauthorized, appErr.Status)
	assert.Equal(t, "token expired", appErr.Message)
}

func TestAuthServiceRejectsForeignTokens(t *testing.T) {
	svc := newAuthServiceForTest()

	other := NewAuthService(nil, nil, AuthConfig{AccessTokenSecret: "other", Issuer: "event-calendar"})
	issued, err := other.IssueToken(TokenRequest{Subject: "ops", Role: models.RoleAdmin})
	require.NoError(t, err)
	_, err = svc.ValidateToken(issued.AccessToken)
	assert.Equal(t, http.StatusUnauthorized, appErrors.FromError(err).Status)

	wrongIssuer := NewAuthService(nil, nil, AuthConfig{AccessTokenSecret: "secret", Issuer: "someone-else"})
	issued, err = wrongIssuer.IssueToken(TokenRequest{Subject: "ops", Role: models.RoleAdmin})
	require.NoError(t, err)
	_, err = svc.ValidateToken(issued.AccessToken)
	assert.Equal(t, "unexpected token issuer", appErrors.FromError(err).Message)

	none := jwt.NewWithClaims(jwt.SigningMethodNone, &models.JWTClaims{UserID: "x", Role: models.RoleAdmin})
	unsigned, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = svc.ValidateToken(unsigned)
	assert.Error(t, err)
}
