package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/bhupen98/dhukuti/internal/domain"
)

func testUser() *domain.User {
	return &domain.User{
		ID:           "5a3c9f6e-8d21-4f0b-9c4d-1f2e3a4b5c6d",
		Username:     "alice",
		Email:        "alice@x.com",
		PasswordHash: "$2a$10$abcdefghijklmnopqrstuv",
		IsActive:     false,
	}
}

func TestActionToken_RoundTrip(t *testing.T) {
	m := NewActionTokenManager("test-secret", time.Hour)
	user := testUser()

	token := m.Generate(PurposeVerifyEmail, user)
	if err := m.Validate(PurposeVerifyEmail, user, token); err != nil {
		t.Fatalf("expected fresh token to validate, got %v", err)
	}
}

func TestActionToken_WrongPurposeRejected(t *testing.T) {
	m := NewActionTokenManager("test-secret", time.Hour)
	user := testUser()

	token := m.Generate(PurposeResetPassword, user)
	if err := m.Validate(PurposeVerifyEmail, user, token); err != ErrInvalidActionToken {
		t.Fatalf("expected reset token to fail email verification, got %v", err)
	}
}

func TestActionToken_InvalidatedByStateChange(t *testing.T) {
	m := NewActionTokenManager("test-secret", time.Hour)

	tests := []struct {
		name   string
		mutate func(u *domain.User)
	}{
		{name: "account activated", mutate: func(u *domain.User) { u.IsActive = true }},
		{name: "password changed", mutate: func(u *domain.User) { u.PasswordHash = "$2a$10$different" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user := testUser()
			token := m.Generate(PurposeVerifyEmail, user)
			tt.mutate(user)
			if err := m.Validate(PurposeVerifyEmail, user, token); err != ErrInvalidActionToken {
				t.Fatalf("expected token to be invalidated, got %v", err)
			}
		})
	}
}

func TestActionToken_ExpiredRejected(t *testing.T) {
	m := NewActionTokenManager("test-secret", time.Second)
	user := testUser()

	// Re-mint the token with an old timestamp by backdating via a second
	// manager with a negative clock is not possible, so mint and validate
	// against a zero TTL manager instead.
	zero := NewActionTokenManager("test-secret", -time.Second)
	token := m.Generate(PurposeVerifyEmail, user)
	if err := zero.Validate(PurposeVerifyEmail, user, token); err != ErrInvalidActionToken {
		t.Fatalf("expected expired token to be rejected, got %v", err)
	}
}

func TestActionToken_TamperedRejected(t *testing.T) {
	m := NewActionTokenManager("test-secret", time.Hour)
	user := testUser()
	token := m.Generate(PurposeVerifyEmail, user)

	tests := []struct {
		name  string
		token string
	}{
		{name: "garbage", token: "not-a-token"},
		{name: "missing separator", token: strings.ReplaceAll(token, "-", "")},
		{name: "flipped mac byte", token: token[:len(token)-1] + flipHexDigit(token[len(token)-1])},
		{name: "other secret", token: NewActionTokenManager("other-secret", time.Hour).Generate(PurposeVerifyEmail, user)},
		{name: "empty", token: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := m.Validate(PurposeVerifyEmail, user, tt.token); err != ErrInvalidActionToken {
				t.Fatalf("expected %q to be rejected, got %v", tt.token, err)
			}
		})
	}
}

func flipHexDigit(b byte) string {
	if b == 'a' {
		return "b"
	}
	return "a"
}
