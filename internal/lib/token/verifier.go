package token

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
	"github.com/tumbleweedd/two_services_system/order_inventory/internal/config"
	"github.com/tumbleweedd/two_services_system/order_inventory/internal/domain/models"
	internalErrors "github.com/tumbleweedd/two_services_system/order_inventory/internal/lib/errors"
)

var errMissingIdentityClaims = errors.New("token has no name or role claim")

// Verifier checks signature, issuer, audience and expiry. It has no side
// effects, so one instance is shared by all requests.
type Verifier struct {
	key    []byte
	parser *jwt.Parser
}

func NewVerifier(cfg config.JWTConfig, opts ...Option) *Verifier {
	s := applyOptions(opts)

	return &Verifier{
		key: []byte(cfg.Key),
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithIssuer(cfg.Issuer),
			jwt.WithAudience(cfg.Audience),
			jwt.WithExpirationRequired(),
			jwt.WithTimeFunc(s.now),
		),
	}
}

func (v *Verifier) Verify(tokenString string) (models.Identity, error) {
	if tokenString == "" {
		return models.Identity{}, internalErrors.ErrUnauthenticated
	}

	var claims Claims
	if _, err := v.parser.ParseWithClaims(tokenString, &claims, v.keyFunc); err != nil {
		return models.Identity{}, fmt.Errorf("%w: %v", internalErrors.ErrUnauthenticated, err)
	}

	if claims.Name == "" || claims.Role == "" {
		return models.Identity{}, fmt.Errorf("%w: %v", internalErrors.ErrUnauthenticated, errMissingIdentityClaims)
	}

	return models.Identity{Name: claims.Name, Role: models.Role(claims.Role)}, nil
}

func (v *Verifier) keyFunc(*jwt.Token) (any, error) {
	return v.key, nil
}
