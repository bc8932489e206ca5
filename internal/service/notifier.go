package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/resend/resend-go/v2"
)

// Notifier доставляет одноразовый код входа получателю. Для TwoFactorService
// любая ошибка доставки — мягкая: выдача кода считается успешной независимо
// от результата отправки.
type Notifier interface {
	SendCode(ctx context.Context, identity, displayName, code string) error
}

// NoopNotifier используется в разработке и тестовых окружениях
type NoopNotifier struct{}

func NewNoopNotifier() *NoopNotifier {
	return &NoopNotifier{}
}

func (n *NoopNotifier) SendCode(ctx context.Context, identity, displayName, code string) error {
	log.Printf("[Notifier] noop send login code to=%s", identity)
	return nil
}

// ResendNotifier отправляет коды через Resend REST API
type ResendNotifier struct {
	from   string
	client *resend.Client
}

func NewResendNotifier(apiKey, from string) (*ResendNotifier, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("resend api key is required")
	}
	if from == "" {
		return nil, fmt.Errorf("email from is required")
	}
	return &ResendNotifier{
		from:   from,
		client: resend.NewClient(apiKey),
	}, nil
}

func (n *ResendNotifier) SendCode(ctx context.Context, identity, displayName, code string) error {
	if identity == "" || code == "" {
		return fmt.Errorf("identity and code are required")
	}

	greeting := "Hello"
	if strings.TrimSpace(displayName) != "" {
		greeting = "Hello, " + strings.TrimSpace(displayName)
	}

	params := &resend.SendEmailRequest{
		From:    n.from,
		To:      []string{identity},
		Subject: "Your sign-in code",
		Text: fmt.Sprintf("%s!\n\nYour sign-in code is %s. It expires in 10 minutes.",
			greeting, code),
		Html: fmt.Sprintf("<p>%s!</p><p>Your sign-in code is <strong>%s</strong>.</p><p>It expires in 10 minutes.</p>",
			greeting, code),
	}

	options := &resend.SendEmailOptions{}

	var lastErr error
	for attempt := 0; attempt < 3; attempt++ {
		_, err := n.client.Emails.SendWithOptions(ctx, params, options)
		if err == nil {
			return nil
		}
		lastErr = err

		if wait, ok := resendRetryDelay(err, attempt); ok {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(wait):
				continue
			}
		}

		return fmt.Errorf("resend send failed: %w", err)
	}

	return fmt.Errorf("resend send failed after retries: %w", lastErr)
}

func resendRetryDelay(err error, attempt int) (time.Duration, bool) {
	var rateLimitErr *resend.RateLimitError
	if errors.As(err, &rateLimitErr) {
		if seconds, convErr := strconv.Atoi(strings.TrimSpace(rateLimitErr.RetryAfter)); convErr == nil && seconds > 0 {
			if seconds > 30 {
				seconds = 30
			}
			return time.Duration(seconds) * time.Second, true
		}
		return time.Duration(attempt+1) * time.Second, true
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return time.Duration(attempt+1) * 500 * time.Millisecond, true
	}

	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "timeout") || strings.Contains(msg, "temporar") {
		return time.Duration(attempt+1) * 500 * time.Millisecond, true
	}

	return 0, false
}
