package mailer

import (
	"strings"
	"testing"

	"github.com/bhupen98/dhukuti/internal/domain"
)

func TestBuildVerificationEmail(t *testing.T) {
	msg := BuildVerificationEmail("alice@example.com", "alice", "http://localhost:8080/verify-email/?uid=u1&token=t1")

	if msg.Recipient != "alice@example.com" {
		t.Errorf("unexpected recipient %q", msg.Recipient)
	}
	if msg.Subject != "Verify your Dhukuti account" {
		t.Errorf("unexpected subject %q", msg.Subject)
	}
	for _, body := range []string{msg.HTMLBody, msg.TextBody} {
		if !strings.Contains(body, "http://localhost:8080/verify-email/?uid=u1&token=t1") {
			t.Error("expected verification link in body")
		}
	}
}

func TestBuildPasswordResetEmail(t *testing.T) {
	msg := BuildPasswordResetEmail("alice@example.com", "alice", "http://localhost:3000/reset-password?uid=u1&token=t1")

	if msg.Subject != "Reset your Dhukuti password" {
		t.Errorf("unexpected subject %q", msg.Subject)
	}
	if !strings.Contains(msg.TextBody, "http://localhost:3000/reset-password?uid=u1&token=t1") {
		t.Error("expected reset link in text body")
	}
}

func TestEmailBodies_EscapeUsernameInHTML(t *testing.T) {
	username := `<img src=x onerror=alert(1)>`

	tests := []struct {
		name  string
		build func() domain.EmailRequestedEvent
	}{
		{name: "verification", build: func() domain.EmailRequestedEvent {
			return BuildVerificationEmail("a@x.com", username, "http://localhost/link")
		}},
		{name: "password reset", build: func() domain.EmailRequestedEvent {
			return BuildPasswordResetEmail("a@x.com", username, "http://localhost/link")
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := tt.build()
			if strings.Contains(msg.HTMLBody, username) {
				t.Error("raw username must not appear as markup in the HTML body")
			}
			if !strings.Contains(msg.HTMLBody, "&lt;img src=x onerror=alert(1)&gt;") {
				t.Error("expected escaped username in the HTML body")
			}
			// The plain-text alternative is not markup; it stays verbatim.
			if !strings.Contains(msg.TextBody, username) {
				t.Error("expected raw username in the text body")
			}
		})
	}
}
