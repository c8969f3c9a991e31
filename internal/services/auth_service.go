package services

import (
	"database/sql"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"snackstack/internal/domain"
	"snackstack/internal/repos"
)

type AuthService struct {
	Users *repos.UserRepo
}

func NewAuthService(users *repos.UserRepo) *AuthService { return &AuthService{Users: users} }

// absentHash is compared against when the email is unknown so both failure
// paths pay for one bcrypt comparison.
var absentHash, _ = bcrypt.GenerateFromPassword([]byte("snackstack-absent-user"), bcrypt.MinCost)

// Login checks the password and, when sid is set, binds the browser session
// to the user. Unknown emails and wrong passwords both return ErrBadCreds.
func (s *AuthService) Login(sid, email, password string) (*domain.User, error) {
	u, err := s.Users.ByEmail(email)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		_ = bcrypt.CompareHashAndPassword(absentHash, []byte(password))
		return nil, ErrBadCreds
	case err != nil:
		return nil, fmt.Errorf("load user: %w", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(u.Hash), []byte(password)) != nil {
		return nil, ErrBadCreds
	}
	if sid == "" {
		return u, nil
	}
	if err := s.Users.BindSession(sid, u.ID); err != nil {
		return nil, fmt.Errorf("bind session: %w", err)
	}
	return u, nil
}

func (s *AuthService) Logout(sid string) error {
	if err := s.Users.UnbindSession(sid); err != nil {
		return fmt.Errorf("unbind session: %w", err)
	}
	return nil
}

// CurrentUser returns ErrNotFound for anonymous sessions.
func (s *AuthService) CurrentUser(sid string) (*domain.User, error) {
	u, err := s.Users.SessionUser(sid)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("session user: %w", err)
	}
	return u, nil
}

func (s *AuthService) Profile(email string) (domain.Profile, error) {
	u, err := s.Users.ByEmail(email)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Profile{}, ErrNotFound
	}
	if err != nil {
		return domain.Profile{}, fmt.Errorf("load user: %w", err)
	}
	return u.Profile(), nil
}
