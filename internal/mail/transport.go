package mail

import (
	"context"
	"fmt"

	"github.com/aman-churiwal/mailing-lists/internal/config"
	"go.uber.org/zap"
)

// Message is one outbound HTML email.
type Message struct {
	FromName    string
	FromAddress string
	To          string
	Subject     string
	HTML        string
}

// Transport delivers a single message. Send blocks until the provider accepts or rejects it.
type Transport interface {
	Send(ctx context.Context, msg Message) error
}

// NewTransport builds the configured provider wrapped in a circuit breaker.
func NewTransport(cfg config.MailConfig, logger *zap.Logger) (*GuardedTransport, error) {
	provider := cfg.Provider
	if provider == "" {
		provider = "smtp"
	}

	var inner Transport
	switch provider {
	case "resend":
		if cfg.Resend.APIKey == "" {
			return nil, fmt.Errorf("resend api key is required")
		}
		inner = NewResendTransport(cfg.Resend.APIKey)
	case "smtp":
		inner = NewSMTPTransport(cfg.SMTP)
	default:
		return nil, fmt.Errorf("unknown mail provider %q", cfg.Provider)
	}

	logger.Info("mail transport configured",
		zap.String("provider", provider),
		zap.Int("breaker_max_failures", cfg.Breaker.MaxFailures),
		zap.Duration("breaker_timeout", cfg.Breaker.Timeout))

	return NewGuardedTransport(provider, inner, BreakerConfig{
		MaxFailures: cfg.Breaker.MaxFailures,
		Timeout:     cfg.Breaker.Timeout,
	}), nil
}
