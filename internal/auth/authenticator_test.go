package auth

import (
	"testing"
	"tsubame/internal/apperror"
	"tsubame/internal/db"
	"tsubame/internal/repository"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestAuthenticator(t *testing.T) (*Authenticator, *repository.UserRepository) {
	t.Helper()
	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.Migrate(gdb))

	users := repository.NewUserRepository(gdb)
	return NewAuthenticator(users), users
}

func TestAuthenticate(t *testing.T) {
	a, users := newTestAuthenticator(t)

	hash, err := HashPassword("correct horse")
	require.NoError(t, err)
	created, err := users.Create("alice", "alice@example.com", hash)
	require.NoError(t, err)

	t.Run("valid credentials", func(t *testing.T) {
		user, err := a.Authenticate("alice@example.com", "correct horse")
		require.NoError(t, err)
		assert.Equal(t, created.ID, user.ID)
	})
	t.Run("wrong password", func(t *testing.T) {
		_, err := a.Authenticate("alice@example.com", "battery staple")
		assert.ErrorIs(t, err, apperror.ErrInvalidCredentials)
	})
	t.Run("unknown email", func(t *testing.T) {
		_, err := a.Authenticate("ghost@example.com", "correct horse")
		assert.ErrorIs(t, err, apperror.ErrInvalidCredentials)
	})
	t.Run("empty credentials", func(t *testing.T) {
		_, err := a.Authenticate("", "")
		assert.ErrorIs(t, err, apperror.ErrInvalidCredentials)
	})
}
