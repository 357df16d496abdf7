// Package mail delivers transactional email.  Handlers and services depend
// on the Mailer interface; cmd/server picks the transport from MAIL_TRANSPORT.
package mail

import (
	"context"
	"errors"
	"fmt"
	"strings"

	gomail "github.com/wneessen/go-mail"
)

// Message is a plain text email.
type Message struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// Mailer sends a message or returns an error.
type Mailer interface {
	Send(ctx context.Context, m Message) error
}

// ErrNoRecipient is returned for a message without To address.
var ErrNoRecipient = errors.New("mail: message has no recipient")

func (m Message) validate() error {
	if strings.TrimSpace(m.To) == "" {
		return ErrNoRecipient
	}
	if strings.ContainsAny(m.To+m.Subject, "\r\n") {
		return errors.New("mail: header contains a line break")
	}
	return nil
}

// build turns m into a go-mail message sent from from.
func (m Message) build(from string) (*gomail.Msg, error) {
	msg := gomail.NewMsg()
	if err := msg.From(from); err != nil {
		return nil, fmt.Errorf("mail: from address: %w", err)
	}
	if err := msg.To(m.To); err != nil {
		return nil, fmt.Errorf("mail: to address: %w", err)
	}
	msg.Subject(m.Subject)
	msg.SetBodyString(gomail.TypeTextPlain, m.Body)
	return msg, nil
}
