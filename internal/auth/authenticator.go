package auth

import (
	"errors"
	"tsubame/internal/apperror"
	"tsubame/internal/models"
	"tsubame/internal/repository"
)

// Authenticator verifies email/password credentials against stored users.
// It holds no mutable state; writing the user into the session on success
// is the caller's job.
type Authenticator struct {
	users *repository.UserRepository
}

func NewAuthenticator(users *repository.UserRepository) *Authenticator {
	return &Authenticator{users: users}
}

// Authenticate returns the user for the credentials, or InvalidCredentials
// for an unknown email or a password mismatch. The two cases are not
// distinguished to the caller.
func (a *Authenticator) Authenticate(email, password string) (*models.User, error) {
	if email == "" || password == "" {
		return nil, apperror.InvalidCredentials()
	}

	user, err := a.users.FindByEmail(email)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, apperror.InvalidCredentials()
		}
		return nil, err
	}

	if !CheckPasswordHash(password, user.Password) {
		return nil, apperror.InvalidCredentials()
	}
	return user, nil
}
