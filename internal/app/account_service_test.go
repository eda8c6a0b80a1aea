package app

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/bhupen98/dhukuti/internal/auth"
	"github.com/bhupen98/dhukuti/internal/domain"
	"github.com/bhupen98/dhukuti/internal/store"
)

type enqueuedEvent struct {
	exchange   string
	routingKey string
	payload    interface{}
}

// userRepoStub is an in-memory UserRepository that records enqueued events.
type userRepoStub struct {
	users  []*domain.User
	events []enqueuedEvent
}

func (s *userRepoStub) CreateUserAndEnqueueEvent(ctx context.Context, user *domain.User, exchange, routingKey string, payload interface{}) error {
	for _, u := range s.users {
		if u.Username == user.Username {
			return store.ErrDuplicateUsername
		}
		if u.Email == user.Email {
			return store.ErrDuplicateEmail
		}
	}
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now
	stored := *user
	s.users = append(s.users, &stored)
	s.events = append(s.events, enqueuedEvent{exchange: exchange, routingKey: routingKey, payload: payload})
	return nil
}

func (s *userRepoStub) GetUserByID(ctx context.Context, id string) (*domain.User, error) {
	return s.find(func(u *domain.User) bool { return u.ID == id })
}

func (s *userRepoStub) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	return s.find(func(u *domain.User) bool { return u.Username == username })
}

func (s *userRepoStub) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	return s.find(func(u *domain.User) bool { return u.Email == email })
}

func (s *userRepoStub) ActivateUser(ctx context.Context, id string) error {
	for _, u := range s.users {
		if u.ID == id {
			u.IsActive = true
			return nil
		}
	}
	return store.ErrNotFound
}

func (s *userRepoStub) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	for _, u := range s.users {
		if u.ID == id {
			u.PasswordHash = passwordHash
			return nil
		}
	}
	return store.ErrNotFound
}

func (s *userRepoStub) EnqueueEvent(ctx context.Context, exchange, routingKey string, payload interface{}) error {
	s.events = append(s.events, enqueuedEvent{exchange: exchange, routingKey: routingKey, payload: payload})
	return nil
}

func (s *userRepoStub) find(match func(*domain.User) bool) (*domain.User, error) {
	for _, u := range s.users {
		if match(u) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, store.ErrNotFound
}

func newAccountFixture() (*AccountService, *userRepoStub, *auth.ActionTokenManager) {
	repo := &userRepoStub{}
	tokens := auth.NewActionTokenManager("test-secret", time.Hour)
	jwtManager := auth.NewJWTManager("test-secret", 15*time.Minute, 24*time.Hour)
	svc := NewAccountService(
		repo,
		tokens,
		jwtManager,
		"http://localhost:8080",
		"http://localhost:3000",
		"http://localhost:3000/email-verified",
	)
	return svc, repo, tokens
}

func registerAlice(t *testing.T, svc *AccountService) {
	t.Helper()
	err := svc.Register(context.Background(), domain.RegisterRequest{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "pw123",
	})
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
}

func TestAccountService_RegisterQueuesVerificationEmail(t *testing.T) {
	svc, repo, _ := newAccountFixture()
	registerAlice(t, svc)

	if len(repo.users) != 1 {
		t.Fatalf("expected 1 stored user, got %d", len(repo.users))
	}
	user := repo.users[0]
	if user.IsActive {
		t.Error("new accounts must start inactive")
	}
	if err := auth.CheckPassword(user.PasswordHash, "pw123"); err != nil {
		t.Errorf("stored hash does not match password: %v", err)
	}

	if len(repo.events) != 1 {
		t.Fatalf("expected 1 queued event, got %d", len(repo.events))
	}
	event := repo.events[0]
	if event.exchange != EmailExchange || event.routingKey != RoutingKeyEmailRequested {
		t.Errorf("unexpected event routing: %s/%s", event.exchange, event.routingKey)
	}
	msg, ok := event.payload.(domain.EmailRequestedEvent)
	if !ok {
		t.Fatalf("expected EmailRequestedEvent payload, got %T", event.payload)
	}
	if msg.Recipient != "alice@example.com" {
		t.Errorf("expected recipient alice@example.com, got %q", msg.Recipient)
	}
	wantLink := "http://localhost:8080/verify-email/?uid=" + user.ID
	if !strings.Contains(msg.TextBody, wantLink) {
		t.Errorf("expected verification link %q in body:\n%s", wantLink, msg.TextBody)
	}
}

func TestAccountService_RegisterValidation(t *testing.T) {
	tests := []struct {
		name string
		req  domain.RegisterRequest
		want error
	}{
		{
			name: "missing username",
			req:  domain.RegisterRequest{Email: "a@x.com", Password: "pw"},
			want: ErrCredentialsRequired,
		},
		{
			name: "missing password",
			req:  domain.RegisterRequest{Username: "a", Email: "a@x.com"},
			want: ErrCredentialsRequired,
		},
		{
			name: "missing email",
			req:  domain.RegisterRequest{Username: "a", Password: "pw"},
			want: ErrInvalidEmail,
		},
		{
			name: "malformed email",
			req:  domain.RegisterRequest{Username: "a", Email: "not-an-email", Password: "pw"},
			want: ErrInvalidEmail,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, repo, _ := newAccountFixture()
			if err := svc.Register(context.Background(), tt.req); err != tt.want {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
			if len(repo.users) != 0 || len(repo.events) != 0 {
				t.Error("rejected registration must not store anything")
			}
		})
	}
}

func TestAccountService_RegisterDuplicates(t *testing.T) {
	svc, _, _ := newAccountFixture()
	registerAlice(t, svc)

	err := svc.Register(context.Background(), domain.RegisterRequest{
		Username: "alice",
		Email:    "other@example.com",
		Password: "pw",
	})
	if err != store.ErrDuplicateUsername {
		t.Fatalf("expected ErrDuplicateUsername, got %v", err)
	}

	err = svc.Register(context.Background(), domain.RegisterRequest{
		Username: "bob",
		Email:    "Alice@Example.com", // emails are normalized to lower case
		Password: "pw",
	})
	if err != store.ErrDuplicateEmail {
		t.Fatalf("expected ErrDuplicateEmail, got %v", err)
	}
}

func TestAccountService_VerifyEmailActivatesOnce(t *testing.T) {
	svc, repo, tokens := newAccountFixture()
	registerAlice(t, svc)
	user := repo.users[0]

	token := tokens.Generate(auth.PurposeVerifyEmail, user)

	redirect, err := svc.VerifyEmail(context.Background(), user.ID, token)
	if err != nil {
		t.Fatalf("VerifyEmail failed: %v", err)
	}
	if redirect != "http://localhost:3000/email-verified" {
		t.Errorf("unexpected redirect URL %q", redirect)
	}
	if !repo.users[0].IsActive {
		t.Fatal("expected account to be activated")
	}

	// Activation changed the token's bound state, so the same link is dead.
	if _, err := svc.VerifyEmail(context.Background(), user.ID, token); err != auth.ErrInvalidActionToken {
		t.Fatalf("expected replayed link to be rejected, got %v", err)
	}
}

func TestAccountService_VerifyEmailUnknownUser(t *testing.T) {
	svc, _, _ := newAccountFixture()

	tests := []string{
		"b2f4e9d1-7c3a-4e5f-8a9b-0c1d2e3f4a5b", // valid uuid, no account
		"not-a-uuid",
		"",
	}
	for _, uid := range tests {
		if _, err := svc.VerifyEmail(context.Background(), uid, "whatever"); err != store.ErrNotFound {
			t.Errorf("uid %q: expected ErrNotFound, got %v", uid, err)
		}
	}
}

func TestAccountService_RequestPasswordReset(t *testing.T) {
	svc, repo, _ := newAccountFixture()
	registerAlice(t, svc)
	queuedBefore := len(repo.events)

	// Unknown address is a silent no-op.
	if err := svc.RequestPasswordReset(context.Background(), "nobody@example.com"); err != nil {
		t.Fatalf("expected silent success for unknown email, got %v", err)
	}
	if len(repo.events) != queuedBefore {
		t.Fatal("unknown email must not queue an event")
	}

	if err := svc.RequestPasswordReset(context.Background(), "Alice@Example.com "); err != nil {
		t.Fatalf("RequestPasswordReset failed: %v", err)
	}
	if len(repo.events) != queuedBefore+1 {
		t.Fatalf("expected a queued reset event, got %d events", len(repo.events))
	}
	msg, ok := repo.events[len(repo.events)-1].payload.(domain.EmailRequestedEvent)
	if !ok {
		t.Fatalf("expected EmailRequestedEvent payload, got %T", repo.events[len(repo.events)-1].payload)
	}
	wantLink := "http://localhost:3000/reset-password?uid=" + repo.users[0].ID
	if !strings.Contains(msg.TextBody, wantLink) {
		t.Errorf("expected reset link %q in body:\n%s", wantLink, msg.TextBody)
	}
}

func TestAccountService_ConfirmPasswordReset(t *testing.T) {
	svc, repo, tokens := newAccountFixture()
	registerAlice(t, svc)
	user := repo.users[0]

	token := tokens.Generate(auth.PurposeResetPassword, user)

	if err := svc.ConfirmPasswordReset(context.Background(), user.ID, token, "  "); err != ErrNewPasswordRequired {
		t.Fatalf("expected ErrNewPasswordRequired for blank password, got %v", err)
	}

	if err := svc.ConfirmPasswordReset(context.Background(), user.ID, token, "newpass"); err != nil {
		t.Fatalf("ConfirmPasswordReset failed: %v", err)
	}
	if err := auth.CheckPassword(repo.users[0].PasswordHash, "newpass"); err != nil {
		t.Errorf("new password does not verify: %v", err)
	}

	// The rehash rebinds the account state; the used token is now dead.
	if err := svc.ConfirmPasswordReset(context.Background(), user.ID, token, "again"); err != auth.ErrInvalidActionToken {
		t.Fatalf("expected consumed token to be rejected, got %v", err)
	}
}

func TestAccountService_LoginAndRefresh(t *testing.T) {
	svc, repo, _ := newAccountFixture()
	registerAlice(t, svc)
	ctx := context.Background()

	// Inactive accounts cannot log in, even with correct credentials.
	_, err := svc.Login(ctx, domain.LoginRequest{Username: "alice", Password: "pw123"})
	if err != auth.ErrInvalidCredentials {
		t.Fatalf("expected inactive account to be rejected, got %v", err)
	}

	if err := repo.ActivateUser(ctx, repo.users[0].ID); err != nil {
		t.Fatalf("ActivateUser failed: %v", err)
	}

	_, err = svc.Login(ctx, domain.LoginRequest{Username: "alice", Password: "wrong"})
	if err != auth.ErrInvalidCredentials {
		t.Fatalf("expected wrong password to be rejected, got %v", err)
	}
	_, err = svc.Login(ctx, domain.LoginRequest{Username: "nobody", Password: "pw123"})
	if err != auth.ErrInvalidCredentials {
		t.Fatalf("expected unknown username to be rejected, got %v", err)
	}

	pair, err := svc.Login(ctx, domain.LoginRequest{Username: "alice", Password: "pw123"})
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if pair.Access == "" || pair.Refresh == "" {
		t.Fatal("expected a full token pair")
	}

	access, err := svc.Refresh(pair.Refresh)
	if err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}
	if access == "" {
		t.Fatal("expected a new access token")
	}

	if _, err := svc.Refresh(pair.Access); err != auth.ErrInvalidToken {
		t.Fatalf("expected access token to be rejected as refresh, got %v", err)
	}
}
