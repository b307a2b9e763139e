package token

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
	"github.com/tumbleweedd/two_services_system/order_inventory/internal/config"
	"github.com/tumbleweedd/two_services_system/order_inventory/internal/domain/models"
	internalErrors "github.com/tumbleweedd/two_services_system/order_inventory/internal/lib/errors"
)

var testCfg = config.JWTConfig{
	Key:      "super-secret-key-for-tests",
	Issuer:   "api-gateway",
	Audience: "api-clients",
	TTL:      2 * time.Hour,
}

func fixedClock(t time.Time) Option {
	return WithClock(func() time.Time { return t })
}

func TestVerifyIssuedToken(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	tCases := []struct {
		name     string
		identity models.Identity
	}{
		{name: "administrator", identity: models.Identity{Name: "admin", Role: models.RoleAdministrator}},
		{name: "customer", identity: models.Identity{Name: "cliente", Role: models.RoleCustomer}},
	}

	issuer := NewIssuer(testCfg, fixedClock(now))
	verifier := NewVerifier(testCfg, fixedClock(now.Add(time.Hour)))

	for _, tCase := range tCases {
		t.Run(tCase.name, func(t *testing.T) {
			signed, expiresAt, err := issuer.Issue(tCase.identity)
			require.NoError(t, err)
			require.Equal(t, now.Add(2*time.Hour), expiresAt)

			identity, err := verifier.Verify(signed)
			require.NoError(t, err)
			require.Equal(t, tCase.identity, identity)
		})
	}
}

func TestVerifyRejects(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	admin := models.Identity{Name: "admin", Role: models.RoleAdministrator}

	sign := func(t *testing.T, cfg config.JWTConfig, issuedAt time.Time) string {
		t.Helper()
		signed, _, err := NewIssuer(cfg, fixedClock(issuedAt)).Issue(admin)
		require.NoError(t, err)
		return signed
	}

	otherKey := testCfg
	otherKey.Key = "another-key"

	otherIssuer := testCfg
	otherIssuer.Issuer = "somebody-else"

	otherAudience := testCfg
	otherAudience.Audience = "internal"

	hs384, err := jwt.NewWithClaims(jwt.SigningMethodHS384, Claims{
		Name: "admin",
		Role: string(models.RoleAdministrator),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    testCfg.Issuer,
			Audience:  jwt.ClaimStrings{testCfg.Audience},
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
	}).SignedString([]byte(testCfg.Key))
	require.NoError(t, err)

	noExpiry, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Name: "admin",
		Role: string(models.RoleAdministrator),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:   testCfg.Issuer,
			Audience: jwt.ClaimStrings{testCfg.Audience},
		},
	}).SignedString([]byte(testCfg.Key))
	require.NoError(t, err)

	noRole, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Name: "admin",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    testCfg.Issuer,
			Audience:  jwt.ClaimStrings{testCfg.Audience},
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
	}).SignedString([]byte(testCfg.Key))
	require.NoError(t, err)

	valid := sign(t, testCfg, now)
	sigStart := strings.LastIndex(valid, ".") + 1
	replacement := "A"
	if valid[sigStart] == 'A' {
		replacement = "B"
	}
	tampered := valid[:sigStart] + replacement + valid[sigStart+1:]

	tCases := []struct {
		name  string
		token string
	}{
		{name: "empty", token: ""},
		{name: "garbage", token: "not-a-jwt"},
		{name: "expired", token: sign(t, testCfg, now.Add(-3*time.Hour))},
		{name: "wrong_key", token: sign(t, otherKey, now)},
		{name: "wrong_issuer", token: sign(t, otherIssuer, now)},
		{name: "wrong_audience", token: sign(t, otherAudience, now)},
		{name: "unexpected_algorithm", token: hs384},
		{name: "no_expiry", token: noExpiry},
		{name: "no_role_claim", token: noRole},
		{name: "tampered_signature", token: tampered},
	}

	verifier := NewVerifier(testCfg, fixedClock(now))

	for _, tCase := range tCases {
		t.Run(tCase.name, func(t *testing.T) {
			identity, err := verifier.Verify(tCase.token)
			require.ErrorIs(t, err, internalErrors.ErrUnauthenticated)
			require.True(t, identity.IsZero())
		})
	}
}
