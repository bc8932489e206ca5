package service

import (
	"context"
	"fmt"
	"strings"

	"gopkg.in/gomail.v2"
)

// SMTPNotifier отправляет коды входа через обычный SMTP-сервер.
// Альтернатива ResendNotifier для инсталляций без внешнего почтового API.
type SMTPNotifier struct {
	dialer *gomail.Dialer
	from   string
}

func NewSMTPNotifier(host string, port int, username, password, from string) (*SMTPNotifier, error) {
	if host == "" || port == 0 {
		return nil, fmt.Errorf("smtp host and port are required")
	}
	if from == "" {
		return nil, fmt.Errorf("email from is required")
	}
	return &SMTPNotifier{
		dialer: gomail.NewDialer(host, port, username, password),
		from:   from,
	}, nil
}

func (n *SMTPNotifier) SendCode(ctx context.Context, identity, displayName, code string) error {
	if identity == "" || code == "" {
		return fmt.Errorf("identity and code are required")
	}

	greeting := "Hello"
	if strings.TrimSpace(displayName) != "" {
		greeting = "Hello, " + strings.TrimSpace(displayName)
	}

	m := gomail.NewMessage()
	m.SetHeader("From", n.from)
	m.SetHeader("To", identity)
	m.SetHeader("Subject", "Your sign-in code")
	m.SetBody("text/html", fmt.Sprintf(
		"<p>%s!</p><p>Your sign-in code is <strong>%s</strong>.</p><p>It expires in 10 minutes.</p>",
		greeting, code,
	))

	// gomail не принимает контекст; проверяем отмену хотя бы перед отправкой
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := n.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("smtp send failed: %w", err)
	}
	return nil
}
