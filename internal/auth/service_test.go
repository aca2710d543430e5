package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"whisperwall/backend/internal/domain"
	"whisperwall/backend/internal/storage/memory"
)

func registerVerified(t *testing.T, svc *Service, email, username, password string) *domain.User {
	t.Helper()
	user, err := svc.Register(RegisterInput{Email: email, Username: username, Password: password})
	require.NoError(t, err)
	require.NoError(t, svc.VerifyCode(username, user.VerifyCode))
	return user
}

func TestRegister(t *testing.T) {
	svc := NewService(memory.NewStore())

	user, err := svc.Register(RegisterInput{
		Email:    "alice@example.com",
		Username: "alice",
		Password: "password123",
	})
	require.NoError(t, err)
	assert.False(t, user.IsVerified)
	assert.Len(t, user.VerifyCode, 6)
	assert.True(t, user.VerifyCodeExpiry.After(time.Now()))
	assert.True(t, user.IsAcceptingMessages)
	assert.True(t, user.IsSendingAnonymously)
	assert.NotEqual(t, "password123", user.PasswordHash)
}

func TestRegisterValidation(t *testing.T) {
	svc := NewService(memory.NewStore())

	_, err := svc.Register(RegisterInput{Email: "not-an-email", Username: "bob", Password: "password123"})
	assert.ErrorIs(t, err, domain.ErrInvalidEmail)

	_, err = svc.Register(RegisterInput{Email: "bob@example.com", Username: "ab", Password: "password123"})
	assert.ErrorIs(t, err, domain.ErrUsernameTooShort)

	_, err = svc.Register(RegisterInput{Email: "bob@example.com", Username: "bob", Password: "short"})
	assert.ErrorIs(t, err, domain.ErrPasswordTooShort)
}

func TestRegisterConflicts(t *testing.T) {
	svc := NewService(memory.NewStore())

	registerVerified(t, svc, "carol@example.com", "carol", "password123")

	// Verified email cannot be re-registered
	_, err := svc.Register(RegisterInput{Email: "carol@example.com", Username: "carol2", Password: "password123"})
	assert.ErrorIs(t, err, ErrEmailExists)

	// Verified username cannot be taken
	_, err = svc.Register(RegisterInput{Email: "other@example.com", Username: "carol", Password: "password123"})
	assert.ErrorIs(t, err, ErrUsernameExists)
}

func TestRegisterUnverifiedReRegister(t *testing.T) {
	svc := NewService(memory.NewStore())

	first, err := svc.Register(RegisterInput{Email: "dave@example.com", Username: "dave", Password: "password123"})
	require.NoError(t, err)

	// Same email, still unverified: registration replaces password and code
	second, err := svc.Register(RegisterInput{Email: "dave@example.com", Username: "dave", Password: "newpassword"})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.True(t, CheckPassword("newpassword", second.PasswordHash))
}

func TestVerifyCode(t *testing.T) {
	svc := NewService(memory.NewStore())

	user, err := svc.Register(RegisterInput{Email: "erin@example.com", Username: "erin", Password: "password123"})
	require.NoError(t, err)

	err = svc.VerifyCode("erin", "000000")
	assert.ErrorIs(t, err, ErrInvalidVerifyCode)

	require.NoError(t, svc.VerifyCode("erin", user.VerifyCode))

	got, err := svc.GetUserByID(user.ID)
	require.NoError(t, err)
	assert.True(t, got.IsVerified)

	// Verifying again is a no-op
	assert.NoError(t, svc.VerifyCode("erin", "anything"))

	err = svc.VerifyCode("nobody", "123456")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestLogin(t *testing.T) {
	svc := NewService(memory.NewStore())

	registerVerified(t, svc, "frank@example.com", "frank", "password123")

	// By email
	user, err := svc.Login(LoginInput{Identifier: "frank@example.com", Password: "password123"})
	require.NoError(t, err)
	assert.Equal(t, "frank", user.Username)
	assert.NotNil(t, user.LastLoginAt)

	// By username
	_, err = svc.Login(LoginInput{Identifier: "frank", Password: "password123"})
	require.NoError(t, err)

	// Wrong password
	_, err = svc.Login(LoginInput{Identifier: "frank", Password: "wrongpass"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	// Unknown user
	_, err = svc.Login(LoginInput{Identifier: "nobody", Password: "password123"})
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestLoginUnverified(t *testing.T) {
	svc := NewService(memory.NewStore())

	_, err := svc.Register(RegisterInput{Email: "grace@example.com", Username: "grace", Password: "password123"})
	require.NoError(t, err)

	_, err = svc.Login(LoginInput{Identifier: "grace", Password: "password123"})
	assert.ErrorIs(t, err, ErrUserNotVerified)
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("secret-password")
	require.NoError(t, err)
	assert.True(t, CheckPassword("secret-password", hash))
	assert.False(t, CheckPassword("wrong-password", hash))
}
