/**
 * @description
 * Business logic for the account lifecycle: registration, email
 * verification, password reset and credential login. Registration and reset
 * requests never send email inline — they write the composed message to the
 * transactional outbox, and the dispatcher hands it to the mailer worker.
 *
 * Verification and reset links carry single-use action tokens bound to the
 * account's current state (see internal/auth): activating the account or
 * replacing the password invalidates every outstanding token.
 */
package app

import (
	"context"
	"fmt"
	"log"
	"net/mail"
	"net/url"
	"strings"

	"github.com/google/uuid"

	"github.com/bhupen98/dhukuti/internal/auth"
	"github.com/bhupen98/dhukuti/internal/domain"
	"github.com/bhupen98/dhukuti/internal/mailer"
	"github.com/bhupen98/dhukuti/internal/store"
)

// Email events flow through this exchange; the mailer worker binds to the
// routing key.
const (
	EmailExchange            = "email_events"
	RoutingKeyEmailRequested = "email.requested"
)

// AccountService implements the account lifecycle workflow.
type AccountService struct {
	users  store.UserRepository
	tokens *auth.ActionTokenManager
	jwt    *auth.JWTManager

	publicBaseURL   string // where /verify-email/ lives
	frontendBaseURL string // where the reset-password page lives
	verifiedURL     string // where a verified user lands
}

// NewAccountService wires the account workflow.
func NewAccountService(
	users store.UserRepository,
	tokens *auth.ActionTokenManager,
	jwt *auth.JWTManager,
	publicBaseURL, frontendBaseURL, verifiedURL string,
) *AccountService {
	return &AccountService{
		users:           users,
		tokens:          tokens,
		jwt:             jwt,
		publicBaseURL:   strings.TrimRight(publicBaseURL, "/"),
		frontendBaseURL: strings.TrimRight(frontendBaseURL, "/"),
		verifiedURL:     verifiedURL,
	}
}

// Register creates an inactive account and queues its verification email in
// the same transaction. Uniqueness of username and email is enforced by the
// database; violations surface as store.ErrDuplicateUsername /
// store.ErrDuplicateEmail.
func (s *AccountService) Register(ctx context.Context, req domain.RegisterRequest) error {
	username := strings.TrimSpace(req.Username)
	email := strings.ToLower(strings.TrimSpace(req.Email))

	if username == "" || req.Password == "" {
		return ErrCredentialsRequired
	}
	if !isValidEmail(email) {
		return ErrInvalidEmail
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return err
	}

	user := &domain.User{
		ID:           uuid.NewString(),
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		IsActive:     false,
	}

	token := s.tokens.Generate(auth.PurposeVerifyEmail, user)
	link := fmt.Sprintf("%s/verify-email/?uid=%s&token=%s", s.publicBaseURL, user.ID, url.QueryEscape(token))
	msg := mailer.BuildVerificationEmail(user.Email, user.Username, link)

	if err := s.users.CreateUserAndEnqueueEvent(ctx, user, EmailExchange, RoutingKeyEmailRequested, msg); err != nil {
		return err
	}

	log.Printf("User registered: id=%s username=%s", user.ID, user.Username)
	return nil
}

// VerifyEmail validates an emailed token and activates the account. It
// returns the URL the caller should be redirected to. An already-active
// account fails token validation, so a consumed link cannot be replayed.
func (s *AccountService) VerifyEmail(ctx context.Context, uid, token string) (string, error) {
	user, err := s.lookupUser(ctx, uid)
	if err != nil {
		return "", err
	}

	if err := s.tokens.Validate(auth.PurposeVerifyEmail, user, token); err != nil {
		return "", err
	}

	if err := s.users.ActivateUser(ctx, user.ID); err != nil {
		return "", err
	}

	log.Printf("Email verified: user=%s", user.ID)
	return s.verifiedURL, nil
}

// RequestPasswordReset queues a reset email when the address is registered.
// It reports nothing about whether the address exists; unknown addresses are
// a silent no-op.
func (s *AccountService) RequestPasswordReset(ctx context.Context, email string) error {
	user, err := s.users.GetUserByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if err == store.ErrNotFound {
			return nil
		}
		return err
	}

	token := s.tokens.Generate(auth.PurposeResetPassword, user)
	link := fmt.Sprintf("%s/reset-password?uid=%s&token=%s", s.frontendBaseURL, user.ID, url.QueryEscape(token))
	msg := mailer.BuildPasswordResetEmail(user.Email, user.Username, link)

	if err := s.users.EnqueueEvent(ctx, EmailExchange, RoutingKeyEmailRequested, msg); err != nil {
		return err
	}

	log.Printf("Password reset requested: user=%s", user.ID)
	return nil
}

// ConfirmPasswordReset validates the reset token and stores the new
// password. Rehashing rebinds the account state, which invalidates the used
// token and any other outstanding verification or reset token.
func (s *AccountService) ConfirmPasswordReset(ctx context.Context, uid, token, newPassword string) error {
	if strings.TrimSpace(newPassword) == "" {
		return ErrNewPasswordRequired
	}

	user, err := s.lookupUser(ctx, uid)
	if err != nil {
		return err
	}

	if err := s.tokens.Validate(auth.PurposeResetPassword, user, token); err != nil {
		return err
	}

	hash, err := auth.HashPassword(newPassword)
	if err != nil {
		return err
	}
	if err := s.users.UpdatePassword(ctx, user.ID, hash); err != nil {
		return err
	}

	log.Printf("Password reset completed: user=%s", user.ID)
	return nil
}

// Login verifies credentials against an active account and issues a token
// pair. Every failure mode returns the same error.
func (s *AccountService) Login(ctx context.Context, req domain.LoginRequest) (auth.TokenPair, error) {
	user, err := s.users.GetUserByUsername(ctx, strings.TrimSpace(req.Username))
	if err != nil || !user.IsActive {
		return auth.TokenPair{}, auth.ErrInvalidCredentials
	}
	if err := auth.CheckPassword(user.PasswordHash, req.Password); err != nil {
		return auth.TokenPair{}, auth.ErrInvalidCredentials
	}
	return s.jwt.GeneratePair(user)
}

// Refresh exchanges a valid refresh token for a new access token.
func (s *AccountService) Refresh(refreshToken string) (string, error) {
	return s.jwt.Refresh(refreshToken)
}

// lookupUser resolves a uid query parameter to an account. Malformed uids
// are indistinguishable from absent accounts.
func (s *AccountService) lookupUser(ctx context.Context, uid string) (*domain.User, error) {
	if _, err := uuid.Parse(strings.TrimSpace(uid)); err != nil {
		return nil, store.ErrNotFound
	}
	return s.users.GetUserByID(ctx, strings.TrimSpace(uid))
}

func isValidEmail(email string) bool {
	if email == "" {
		return false
	}
	addr, err := mail.ParseAddress(email)
	return err == nil && addr.Address == email
}
