package mail

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aman-churiwal/mailing-lists/internal/config"
	"github.com/resend/resend-go/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
)

type stubTransport struct {
	err   error
	calls int
}

func (s *stubTransport) Send(ctx context.Context, msg Message) error {
	s.calls++
	return s.err
}

func TestPersonalize(t *testing.T) {
	body := "<p>Ola {{nome}} {{apelido}}, escribímosche a {{correo}}. {{nome}}!</p>"
	got := Personalize(body, Recipient{Name: "Ana", Surname: "Pérez", Email: "ana@example.org"})

	assert.Equal(t, "<p>Ola Ana Pérez, escribímosche a ana@example.org. Ana!</p>", got)
	assert.Equal(t, "no placeholders", Personalize("no placeholders", Recipient{Name: "Ana"}))
	assert.Equal(t, "Hi !", Personalize("Hi {{nome}}!", Recipient{}))
}

func TestRenderBody(t *testing.T) {
	html, err := RenderBody("<p>raw</p>", FormatHTML)
	require.NoError(t, err)
	assert.Equal(t, "<p>raw</p>", html)

	html, err = RenderBody("# Hola {{nome}}\n\n**news**", FormatMarkdown)
	require.NoError(t, err)
	assert.Contains(t, html, "<h1>Hola {{nome}}</h1>")
	assert.Contains(t, html, "<strong>news</strong>")

	_, err = RenderBody("x", "pdf")
	assert.Error(t, err)
}

func TestGuardedTransport_OpensAfterConsecutiveFailures(t *testing.T) {
	inner := &stubTransport{err: errors.New("relay down")}
	guarded := NewGuardedTransport("stub", inner, BreakerConfig{MaxFailures: 2, Timeout: time.Minute})
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	guarded.now = func() time.Time { return now }
	ctx := context.Background()

	assert.ErrorContains(t, guarded.Send(ctx, Message{}), "relay down")
	assert.Equal(t, BreakerClosed, guarded.State())
	assert.ErrorContains(t, guarded.Send(ctx, Message{}), "relay down")
	assert.Equal(t, BreakerOpen, guarded.State())

	assert.ErrorIs(t, guarded.Send(ctx, Message{}), ErrCircuitOpen)
	assert.Equal(t, 2, inner.calls, "open breaker does not call the provider")

	now = now.Add(2 * time.Minute)
	inner.err = nil
	assert.NoError(t, guarded.Send(ctx, Message{}))
	assert.Equal(t, BreakerClosed, guarded.State())
	assert.Equal(t, 3, inner.calls)
}

func TestGuardedTransport_FailedProbeReopens(t *testing.T) {
	inner := &stubTransport{err: errors.New("relay down")}
	guarded := NewGuardedTransport("stub", inner, BreakerConfig{MaxFailures: 1, Timeout: time.Second})
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	guarded.now = func() time.Time { return now }
	ctx := context.Background()

	require.Error(t, guarded.Send(ctx, Message{}))
	now = now.Add(2 * time.Second)
	require.Error(t, guarded.Send(ctx, Message{}))

	assert.Equal(t, BreakerOpen, guarded.State())
	assert.ErrorIs(t, guarded.Send(ctx, Message{}), ErrCircuitOpen)
}

func TestGuardedTransport_SuccessResetsCount(t *testing.T) {
	inner := &stubTransport{}
	guarded := NewGuardedTransport("stub", inner, BreakerConfig{MaxFailures: 2})
	ctx := context.Background()

	inner.err = errors.New("flaky")
	_ = guarded.Send(ctx, Message{})
	inner.err = nil
	require.NoError(t, guarded.Send(ctx, Message{}))
	inner.err = errors.New("flaky")
	_ = guarded.Send(ctx, Message{})

	assert.Equal(t, BreakerClosed, guarded.State())
}

type blockingTransport struct {
	entered chan struct{}
	release chan struct{}
}

func (b *blockingTransport) Send(ctx context.Context, msg Message) error {
	b.entered <- struct{}{}
	<-b.release
	return nil
}

func TestGuardedTransport_HalfOpenAdmitsOneSend(t *testing.T) {
	inner := &blockingTransport{entered: make(chan struct{}, 1), release: make(chan struct{})}
	guarded := NewGuardedTransport("stub", inner, BreakerConfig{MaxFailures: 1, Timeout: time.Second})
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	guarded.now = func() time.Time { return now }
	guarded.state = BreakerOpen
	guarded.lastFailureTime = now.Add(-2 * time.Second)

	done := make(chan error, 1)
	go func() {
		done <- guarded.Send(context.Background(), Message{})
	}()
	<-inner.entered

	assert.Equal(t, BreakerHalfOpen, guarded.State())
	assert.ErrorIs(t, guarded.Send(context.Background(), Message{}), ErrCircuitOpen)

	close(inner.release)
	require.NoError(t, <-done)
	assert.Equal(t, BreakerClosed, guarded.State())
}

type recordingDialer struct {
	sent []*gomail.Message
}

func (d *recordingDialer) DialAndSend(m ...*gomail.Message) error {
	d.sent = append(d.sent, m...)
	return nil
}

func TestSMTPTransport_Send(t *testing.T) {
	d := &recordingDialer{}
	transport := &SMTPTransport{dialer: d, host: "smtp.example.org"}

	err := transport.Send(context.Background(), Message{
		FromName:    "Boletín",
		FromAddress: "news@example.org",
		To:          "ana@example.org",
		Subject:     "Novas",
		HTML:        "<p>Ola</p>",
	})
	require.NoError(t, err)
	require.Len(t, d.sent, 1)
	assert.Equal(t, []string{"ana@example.org"}, d.sent[0].GetHeader("To"))
	assert.Equal(t, []string{"Novas"}, d.sent[0].GetHeader("Subject"))
}

func TestSMTPTransport_CancelledContext(t *testing.T) {
	d := &recordingDialer{}
	transport := &SMTPTransport{dialer: d}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, transport.Send(ctx, Message{To: "a@example.org"}), context.Canceled)
	assert.Empty(t, d.sent)
}

type recordingEmails struct {
	req *resend.SendEmailRequest
	err error
}

func (r *recordingEmails) SendWithContext(ctx context.Context, params *resend.SendEmailRequest) (*resend.SendEmailResponse, error) {
	r.req = params
	if r.err != nil {
		return nil, r.err
	}
	return &resend.SendEmailResponse{Id: "msg_1"}, nil
}

func TestResendTransport_Send(t *testing.T) {
	emails := &recordingEmails{}
	transport := &ResendTransport{emails: emails}

	err := transport.Send(context.Background(), Message{
		FromName:    "News",
		FromAddress: "news@example.org",
		To:          "ana@example.org",
		Subject:     "Hello",
		HTML:        "<p>hi</p>",
	})
	require.NoError(t, err)
	assert.Equal(t, `"News" <news@example.org>`, emails.req.From)
	assert.Equal(t, []string{"ana@example.org"}, emails.req.To)
	assert.Equal(t, "<p>hi</p>", emails.req.Html)

	emails.err = errors.New("rate limited")
	assert.ErrorContains(t, transport.Send(context.Background(), Message{To: "a@example.org"}), "rate limited")
}

func TestNewTransport(t *testing.T) {
	_, err := NewTransport(config.MailConfig{Provider: "pigeon"}, zap.NewNop())
	assert.Error(t, err)

	_, err = NewTransport(config.MailConfig{Provider: "resend"}, zap.NewNop())
	assert.Error(t, err, "api key required")

	transport, err := NewTransport(config.MailConfig{Provider: "smtp", SMTP: config.SMTPConfig{Host: "localhost", Port: 25}}, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, BreakerClosed, transport.State())
}
