package mailer

import (
	"fmt"
	"html"

	"github.com/bhupen98/dhukuti/internal/domain"
)

// BuildVerificationEmail composes the account-activation message. The link
// points at the API's verify-email endpoint with the uid and token embedded.
func BuildVerificationEmail(recipient, username, link string) domain.EmailRequestedEvent {
	return domain.EmailRequestedEvent{
		Recipient: recipient,
		Subject:   "Verify your Dhukuti account",
		HTMLBody: fmt.Sprintf(
			`<p>Hi %s,</p>
<p>Welcome to Dhukuti! Please confirm your email address to activate your account:</p>
<p><a href="%s">Verify my email</a></p>
<p>If the button does not work, copy this link into your browser:<br>%s</p>
<p>If you did not create this account, you can ignore this email.</p>`,
			html.EscapeString(username), link, link,
		),
		TextBody: fmt.Sprintf(
			"Hi %s,\n\nWelcome to Dhukuti! Open the link below to verify your email address and activate your account:\n\n%s\n\nIf you did not create this account, you can ignore this email.\n",
			username, link,
		),
	}
}

// BuildPasswordResetEmail composes the reset-link message. The link points
// at the frontend's reset page, which collects the new password and posts it
// back with the uid and token.
func BuildPasswordResetEmail(recipient, username, link string) domain.EmailRequestedEvent {
	return domain.EmailRequestedEvent{
		Recipient: recipient,
		Subject:   "Reset your Dhukuti password",
		HTMLBody: fmt.Sprintf(
			`<p>Hi %s,</p>
<p>We received a request to reset your password. Use the link below to choose a new one:</p>
<p><a href="%s">Reset my password</a></p>
<p>If the button does not work, copy this link into your browser:<br>%s</p>
<p>If you did not request a reset, no action is needed; your password is unchanged.</p>`,
			html.EscapeString(username), link, link,
		),
		TextBody: fmt.Sprintf(
			"Hi %s,\n\nWe received a request to reset your password. Open the link below to choose a new one:\n\n%s\n\nIf you did not request a reset, no action is needed; your password is unchanged.\n",
			username, link,
		),
	}
}
