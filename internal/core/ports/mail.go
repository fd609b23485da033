package ports

import "context"

// Email is an outbound message. Text and HTML are alternative bodies; either
// may be empty. Kind labels the message for metrics and logs ("activation",
// "two_factor").
type Email struct {
	To      string
	Subject string
	Text    string
	HTML    string
	Kind    string
}

// MailSender delivers a single email synchronously. The transport behind it
// is an opaque collaborator (SMTP in production, a logger in development).
type MailSender interface {
	Send(ctx context.Context, email Email) error
}

// MailDispatcher accepts emails for asynchronous, best-effort delivery.
// Enqueue never reports delivery errors to the caller: a failed send must
// not fail the registration or login that triggered it.
type MailDispatcher interface {
	Enqueue(email Email)
}
