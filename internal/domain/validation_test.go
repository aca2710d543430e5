package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateEmail(t *testing.T) {
	tests := []struct {
		name     string
		email    string
		expected bool
	}{
		{"Valid email", "test@example.com", true},
		{"Valid email with subdomain", "user@mail.example.com", true},
		{"Valid email with numbers", "user123@example.com", true},
		{"Valid email with dots", "user.name@example.com", true},
		{"Valid email with plus", "user+tag@example.com", true},
		{"Invalid email - no @", "testexample.com", false},
		{"Invalid email - no domain", "test@", false},
		{"Invalid email - no local part", "@example.com", false},
		{"Invalid email - multiple @", "test@@example.com", false},
		{"Invalid email - empty", "", false},
		{"Invalid email - too long", strings.Repeat("a", 250) + "@example.com", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateEmail(tt.email)
			if tt.expected {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestValidateUsername(t *testing.T) {
	tests := []struct {
		name     string
		username string
		expected bool
	}{
		{"Valid username", "testuser", true},
		{"Valid username with numbers", "user123", true},
		{"Valid username with underscore", "test_user", true},
		{"Valid username with dash", "test-user", true},
		{"Valid username with dot", "test.user", true},
		{"Valid minimum length", "abc", true},
		{"Valid maximum length", "abcdefghijklmnopqrstuvwxyz123456", true},
		{"Invalid - too short", "ab", false},
		{"Invalid - too long", "abcdefghijklmnopqrstuvwxyz1234567", false},
		{"Invalid - empty", "", false},
		{"Invalid - spaces", "test user", false},
		{"Invalid - special characters", "test@user", false},
		{"Invalid - starts with number", "123user", false},
		{"Invalid - starts with dash", "-testuser", false},
		{"Invalid - ends with dash", "testuser-", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateUsername(tt.username)
			if tt.expected {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		expected bool
	}{
		{"Valid password", "Password123!", true},
		{"Valid password - minimum length", "Pass123!", true},
		{"Valid password - maximum length", strings.Repeat("a", 72), true},
		{"Invalid - too short", "Pass1!", false},
		{"Invalid - over bcrypt limit", strings.Repeat("a", 73), false},
		{"Invalid - empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePassword(tt.password)
			if tt.expected {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestValidateMessageContent(t *testing.T) {
	tests := []struct {
		name      string
		content   string
		maxLength int
		expected  error
	}{
		{"Valid content", "Hello, how are you?", 1000, nil},
		{"Valid content with newlines", "Line 1\nLine 2", 1000, nil},
		{"Valid content at limit", strings.Repeat("a", 100), 100, nil},
		{"Valid multibyte content at limit", strings.Repeat("你", 100), 100, nil},
		{"Invalid - empty", "", 1000, ErrContentEmpty},
		{"Invalid - only whitespace", "   \t\n  ", 1000, ErrContentEmpty},
		{"Invalid - too long", strings.Repeat("a", 101), 100, ErrContentTooLong},
		{"Default limit applies when zero", strings.Repeat("a", 1001), 0, ErrContentTooLong},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateMessageContent(tt.content, tt.maxLength)
			if tt.expected == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.expected)
			}
		})
	}
}

func TestUserPublicProfile(t *testing.T) {
	user := &User{
		ID:                   "user-1",
		Email:                "test@example.com",
		Username:             "testuser",
		PasswordHash:         "secret-hash",
		IsAcceptingMessages:  true,
		IsSendingAnonymously: false,
	}

	profile := user.PublicProfile()

	assert.Equal(t, "testuser", profile.Username)
	assert.True(t, profile.IsAcceptingMessages)
	assert.False(t, profile.IsSendingAnonymously)
}

func TestMessageIsAnonymous(t *testing.T) {
	anonymous := &Message{Author: AnonymousAuthor}
	identified := &Message{Author: "user-123"}

	assert.True(t, anonymous.IsAnonymous())
	assert.False(t, identified.IsAnonymous())
}
