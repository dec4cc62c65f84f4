package mailer

import (
	"context"

	"github.com/sirupsen/logrus"
)

// Message is one outbound email. HTML is optional; Text is the fallback.
type Message struct {
	To      string
	Subject string
	Text    string
	HTML    string
}

// Sender delivers a message or reports why it could not.
type Sender interface {
	Send(ctx context.Context, m Message) error
}

// LogSender only logs messages. It is used when MAIL_SEND_ENABLED is false.
type LogSender struct {
	Logger logrus.FieldLogger
}

func (s LogSender) Send(_ context.Context, m Message) error {
	s.Logger.WithFields(logrus.Fields{"to": m.To, "subject": m.Subject}).Info("mail sending disabled; message dropped")
	return nil
}
