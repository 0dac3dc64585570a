package mailer

import (
	"context"
	"fmt"

	"github.com/prastiyo12/userhub_api/internal/telemetry"
)

// Message is a fully composed outbound mail.
type Message struct {
	To      string
	Subject string
	Body    string
}

type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// LogSender records messages in the log instead of delivering them. Used
// when SMTP is not configured.
type LogSender struct{}

func (LogSender) Send(ctx context.Context, msg Message) error {
	telemetry.LogInfo(ctx, "mail suppressed, smtp not configured",
		telemetry.LogString("mail.to", msg.To),
		telemetry.LogString("mail.subject", msg.Subject),
	)
	return nil
}

func WelcomeMessage(to, name string) Message {
	return Message{
		To:      to,
		Subject: "Welcome",
		Body:    fmt.Sprintf("Hi %s,\n\nYour account has been created. Welcome aboard!\n", name),
	}
}

func AdminNewUserMessage(to, userEmail, userName string) Message {
	return Message{
		To:      to,
		Subject: "New user registered",
		Body:    fmt.Sprintf("A new user registered:\n\n  name:  %s\n  email: %s\n", userName, userEmail),
	}
}
