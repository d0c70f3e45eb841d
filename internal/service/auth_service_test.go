package service

import (
	"testing"

	"quizhub_backend/internal/model"
	"quizhub_backend/internal/repository"
	"quizhub_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAuthService(t *testing.T) *AuthService {
	t.Helper()
	db := newTestDB(t)
	return NewAuthService(repository.NewUserRepository(db), newTestConfig())
}

func TestRegisterNormalizesEmailAndIssuesToken(t *testing.T) {
	svc := newAuthService(t)

	user := &model.User{
		Name:     "Ada",
		Email:    "  Ada@Example.COM ",
		Password: "secret123",
		Role:     model.Teacher,
	}
	token, err := svc.Register(user)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	assert.Equal(t, "ada@example.com", user.Email)
	// 密码已被哈希替换
	assert.NotEqual(t, "secret123", user.Password)

	claims, err := util.ParseJWT(token, svc.Cfg.JWT.Secret)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, model.Teacher, claims.Role)
}

func TestRegisterRejectsMalformedEmail(t *testing.T) {
	svc := newAuthService(t)

	_, err := svc.Register(&model.User{
		Name:     "Bob",
		Email:    "a@b",
		Password: "secret123",
		Role:     model.Student,
	})
	assert.ErrorIs(t, err, ErrInvalidEmail)
}

func TestRegisterDuplicateEmailCaseInsensitive(t *testing.T) {
	svc := newAuthService(t)

	_, err := svc.Register(&model.User{
		Name:     "Ada",
		Email:    "ada@example.com",
		Password: "secret123",
		Role:     model.Student,
	})
	require.NoError(t, err)

	_, err = svc.Register(&model.User{
		Name:     "Imposter",
		Email:    "ADA@EXAMPLE.COM",
		Password: "another123",
		Role:     model.Student,
	})
	assert.ErrorIs(t, err, util.ErrEmailRegistered)
}

func TestLogin(t *testing.T) {
	svc := newAuthService(t)

	registered := &model.User{
		Name:     "Ada",
		Email:    "ada@example.com",
		Password: "secret123",
		Role:     model.Student,
	}
	_, err := svc.Register(registered)
	require.NoError(t, err)

	token, user, err := svc.Login("Ada@Example.com", "secret123")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, registered.ID, user.ID)

	_, _, err = svc.Login("ada@example.com", "wrong-password")
	assert.ErrorIs(t, err, util.ErrInvalidCredentials)

	_, _, err = svc.Login("nobody@example.com", "secret123")
	assert.ErrorIs(t, err, util.ErrInvalidCredentials)
}
