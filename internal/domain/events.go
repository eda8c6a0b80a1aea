package domain

// EmailRequestedEvent is the payload published to the message broker when an
// account email is due. The mailer worker consumes these and performs the
// actual delivery, keeping email transport out of the request path.
type EmailRequestedEvent struct {
	Recipient string `json:"recipient"`
	Subject   string `json:"subject"`
	HTMLBody  string `json:"html_body"`
	TextBody  string `json:"text_body"`
}
