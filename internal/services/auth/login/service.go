package login

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/tumbleweedd/two_services_system/order_inventory/internal/config"
	"github.com/tumbleweedd/two_services_system/order_inventory/internal/domain/models"
	internalErrors "github.com/tumbleweedd/two_services_system/order_inventory/internal/lib/errors"
	"github.com/tumbleweedd/two_services_system/order_inventory/pkg/logger"
	"golang.org/x/crypto/bcrypt"
)

//go:generate mockgen -source=service.go -destination=mocks/mock_service.go -package=mocks

type TokenIssuer interface {
	Issue(identity models.Identity) (string, time.Time, error)
}

type user struct {
	hash []byte
	role models.Role
}

type Service struct {
	log    logger.Logger
	issuer TokenIssuer

	users map[string]user
	// dummy is compared against for unknown usernames so both paths cost
	// one bcrypt comparison.
	dummy []byte
}

func New(log logger.Logger, users []config.UserConfig, issuer TokenIssuer) (*Service, error) {
	const op = "services.auth.New"

	byName := make(map[string]user, len(users))
	cost := bcrypt.MinCost

	for _, u := range users {
		role := models.Role(u.Role)
		if !role.Valid() {
			return nil, fmt.Errorf("%s: user %q: unknown role %q", op, u.Username, u.Role)
		}

		c, err := bcrypt.Cost([]byte(u.PasswordHash))
		if err != nil {
			return nil, fmt.Errorf("%s: user %q: %w", op, u.Username, err)
		}
		cost = max(cost, c)

		byName[u.Username] = user{hash: []byte(u.PasswordHash), role: role}
	}

	dummy, err := bcrypt.GenerateFromPassword([]byte("not-a-real-password"), cost)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Service{
		log:    log,
		issuer: issuer,
		users:  byName,
		dummy:  dummy,
	}, nil
}

// Login checks the password and issues a token carrying the user's name and
// role. Unknown users and wrong passwords are indistinguishable to callers.
func (s *Service) Login(ctx context.Context, username, password string) (string, time.Time, error) {
	const op = "services.auth.Login"

	u, ok := s.users[username]
	hash := u.hash
	if !ok {
		hash = s.dummy
	}

	err := bcrypt.CompareHashAndPassword(hash, []byte(password))
	if !ok || err != nil {
		if err != nil && !errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			s.log.ErrorContext(ctx, "failed to compare password", slog.String("op", op), logger.Err(err))
		}

		s.log.InfoContext(ctx, "login rejected", slog.String("op", op), slog.String("username", username))

		return "", time.Time{}, fmt.Errorf("%s: %w", op, internalErrors.ErrInvalidCredentials)
	}

	token, expiresAt, err := s.issuer.Issue(models.Identity{Name: username, Role: u.role})
	if err != nil {
		return "", time.Time{}, fmt.Errorf("%s: %w", op, err)
	}

	s.log.InfoContext(ctx, "token issued",
		slog.String("op", op),
		slog.String("username", username),
		slog.String("role", string(u.role)),
	)

	return token, expiresAt, nil
}
