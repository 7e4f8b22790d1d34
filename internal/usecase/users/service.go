// Package users owns the single default account that stands in for authentication.
package users

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"poolkeeper/internal/bootstrap/logging"
	"poolkeeper/internal/domain/pool"
	"poolkeeper/internal/errs"
	"poolkeeper/internal/ports"
)

type Service struct {
	repo ports.UserRepository
}

func NewService(repo ports.UserRepository) *Service {
	return &Service{repo: repo}
}

// EnsureDefault creates the account when it does not exist yet. An existing account
// keeps its password.
func (s *Service) EnsureDefault(ctx context.Context, email, password string) (pool.User, bool, error) {
	if err := s.check(ctx); err != nil {
		return pool.User{}, false, err
	}

	email = normalizeEmail(email)
	if email == "" {
		return pool.User{}, false, errs.Invalid("default user email is required")
	}

	existing, err := s.repo.GetUserByEmail(ctx, email)
	if err == nil {
		return existing, false, nil
	}
	if !errs.IsNotFound(err) {
		return pool.User{}, false, err
	}

	if password == "" {
		return pool.User{}, false, errs.Invalid("default user password is required")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return pool.User{}, false, errs.Wrap(err, "hash default user password")
	}

	created, err := s.repo.CreateUser(ctx, pool.User{
		Email:          email,
		HashedPassword: string(hash),
		IsActive:       true,
	})
	if err != nil {
		return pool.User{}, false, err
	}

	logging.Info(logging.With(ctx, "usecase.users"), "default user created", slog.String("email", email))
	return created, true, nil
}

// Resolve maps a request identity to its owner record. Inactive users are not found.
func (s *Service) Resolve(ctx context.Context, email string) (pool.User, error) {
	if err := s.check(ctx); err != nil {
		return pool.User{}, err
	}

	user, err := s.repo.GetUserByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return pool.User{}, err
	}
	if !user.IsActive {
		return pool.User{}, errs.NotFound("user %q not found", user.Email)
	}
	return user, nil
}

// CheckPassword reports whether password matches the user's stored hash.
func CheckPassword(user pool.User, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(password)) == nil
}

// Delete removes the user and everything the user owns.
func (s *Service) Delete(ctx context.Context, email string) error {
	if err := s.check(ctx); err != nil {
		return err
	}

	user, err := s.repo.GetUserByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return err
	}
	if err := s.repo.DeleteUser(ctx, user.ID); err != nil {
		return err
	}

	logging.Info(logging.With(ctx, "usecase.users"), "user deleted", slog.String("email", user.Email))
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *Service) check(ctx context.Context) error {
	if ctx == nil {
		return errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return errs.Wrap(err, "check context")
	}
	if s.repo == nil {
		return errors.New("user repository is required")
	}
	return nil
}
