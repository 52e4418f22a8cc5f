package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/yasinhessnawi1/taskmanager/internal/config"
	"github.com/yasinhessnawi1/taskmanager/internal/constants"
	"github.com/yasinhessnawi1/taskmanager/internal/utils"
)

// EmailNotifier sends the transactional emails of the account lifecycle.
type EmailNotifier interface {
	SendWelcome(ctx context.Context, email, name string) error
	SendCancellation(ctx context.Context, email, name string) error
}

// SendGridNotifier handles sending emails through SendGrid.
// Outside production, or without an API key, messages are only logged.
type SendGridNotifier struct {
	fromEmail string
	fromName  string
	enabled   bool
	send      func(message *mail.SGMailV3) (int, error)
}

// NewSendGridNotifier creates a new SendGridNotifier.
//
// Parameters:
//   - cfg: The email settings holding the API key and sender
//   - app: The application settings, used to detect production
//
// Returns:
//   - A notifier that delivers only in production with an API key set
func NewSendGridNotifier(cfg *config.EmailSettings, app *config.AppSettings) *SendGridNotifier {
	fromEmail := cfg.SenderEmail
	if fromEmail == "" {
		fromEmail = constants.DefaultSenderEmail
	}
	fromName := cfg.SenderName
	if fromName == "" {
		fromName = constants.DefaultSenderName
	}

	client := sendgrid.NewSendClient(cfg.SendGridAPIKey)

	return &SendGridNotifier{
		fromEmail: fromEmail,
		fromName:  fromName,
		enabled:   app.IsProduction() && cfg.SendGridAPIKey != "",
		send: func(message *mail.SGMailV3) (int, error) {
			response, err := client.Send(message)
			if err != nil {
				return 0, err
			}
			return response.StatusCode, nil
		},
	}
}

// Enabled reports whether messages are actually delivered
func (n *SendGridNotifier) Enabled() bool {
	return n.enabled
}

// SendWelcome sends the welcome email after a signup.
func (n *SendGridNotifier) SendWelcome(ctx context.Context, email, name string) error {
	return n.deliver(ctx, email, name, constants.WelcomeSubject, fmt.Sprintf(constants.WelcomeBody, name))
}

// SendCancellation sends the goodbye email after an account deletion.
func (n *SendGridNotifier) SendCancellation(ctx context.Context, email, name string) error {
	return n.deliver(ctx, email, name, constants.CancellationSubject, fmt.Sprintf(constants.CancellationBody, name))
}

func (n *SendGridNotifier) deliver(ctx context.Context, email, name, subject, body string) error {
	logger := log.With().
		Str("category", constants.LogCategoryEmail).
		Str("to", utils.MaskEmail(email)).
		Str("subject", subject).
		Logger()

	if !n.enabled {
		logger.Debug().Msg("Email delivery disabled, skipping")
		return nil
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	from := mail.NewEmail(n.fromName, n.fromEmail)
	to := mail.NewEmail(name, email)
	message := mail.NewSingleEmail(from, subject, to, body, "")

	status, err := n.send(message)
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	if status >= 400 {
		return fmt.Errorf("email provider answered status %d", status)
	}

	logger.Info().Int("status_code", status).Msg("Email sent")
	return nil
}

// NoopNotifier drops every message.
type NoopNotifier struct{}

// SendWelcome implements EmailNotifier.
func (NoopNotifier) SendWelcome(context.Context, string, string) error { return nil }

// SendCancellation implements EmailNotifier.
func (NoopNotifier) SendCancellation(context.Context, string, string) error { return nil }

// notifyAsync runs send on its own goroutine with its own deadline.
// The outcome is logged and never reaches the request that triggered it.
// The returned channel is closed once send has finished.
func notifyAsync(kind string, send func(ctx context.Context) error) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		defer func() {
			if r := recover(); r != nil {
				log.Error().Interface("panic", r).Str("kind", kind).Msg("Email notification panicked")
			}
		}()

		ctx, cancel := context.WithTimeout(context.Background(), constants.NotificationTimeout)
		defer cancel()

		if err := send(ctx); err != nil {
			log.Warn().
				Err(err).
				Str("category", constants.LogCategoryEmail).
				Str("kind", kind).
				Msg("Email notification failed")
		}
	}()
	return done
}
