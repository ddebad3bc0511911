// Package notification delivers e-mail. Sends happen in the background and
// are drained when the server shuts down.
package notification

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/schoolhub/backend/internal/infrastructure/config"
	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
	"go.uber.org/zap"
)

// Recipient of an e-mail
type Recipient struct {
	Name    string
	Address string
}

// Email is one outgoing message. Every recipient gets their own copy.
type Email struct {
	To       []Recipient
	Subject  string
	TextBody string
	HTMLBody string
}

// EmailSender delivers e-mail
type EmailSender interface {
	Send(ctx context.Context, email *Email) error
}

// ErrNoRecipients is returned when an e-mail has nobody to go to
var ErrNoRecipients = errors.New("email has no recipients")

const (
	sendGridHost     = "https://api.sendgrid.com"
	sendGridEndpoint = "/v3/mail/send"

	// MaxPersonalizations is the SendGrid v3 limit per request
	MaxPersonalizations = 1000
)

// SendGridSender sends through the SendGrid v3 API
type SendGridSender struct {
	apiKey     string
	from       *sgmail.Email
	subjPrefix string
}

// NewSendGridSender creates a SendGrid sender
func NewSendGridSender(cfg config.EmailConfig) *SendGridSender {
	return &SendGridSender{
		apiKey:     cfg.SendGridAPIKey,
		from:       sgmail.NewEmail(cfg.FromName, cfg.FromAddress),
		subjPrefix: "[" + cfg.FromName + "] ",
	}
}

// Send delivers the e-mail, one request per MaxPersonalizations recipients.
// A rejected batch does not stop the remaining ones.
func (s *SendGridSender) Send(ctx context.Context, email *Email) error {
	if len(email.To) == 0 {
		return ErrNoRecipients
	}

	var errs []error
	for i, m := range s.build(email) {
		if err := s.post(ctx, m); err != nil {
			errs = append(errs, fmt.Errorf("batch %d: %w", i+1, err))
		}
	}
	return errors.Join(errs...)
}

func (s *SendGridSender) post(ctx context.Context, m *sgmail.SGMailV3) error {
	req := sendgrid.GetRequest(s.apiKey, sendGridEndpoint, sendGridHost)
	req.Method = http.MethodPost
	req.Body = sgmail.GetRequestBody(m)

	res, err := sendgrid.MakeRequestWithContext(ctx, req)
	if err != nil {
		return fmt.Errorf("sendgrid request failed: %w", err)
	}
	if res.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("sendgrid rejected message: status %d: %s", res.StatusCode, res.Body)
	}
	return nil
}

func (s *SendGridSender) build(email *Email) []*sgmail.SGMailV3 {
	batches := make([]*sgmail.SGMailV3, 0, (len(email.To)+MaxPersonalizations-1)/MaxPersonalizations)
	for start := 0; start < len(email.To); start += MaxPersonalizations {
		end := min(start+MaxPersonalizations, len(email.To))
		batches = append(batches, s.message(email, email.To[start:end]))
	}
	return batches
}

func (s *SendGridSender) message(email *Email, to []Recipient) *sgmail.SGMailV3 {
	m := sgmail.NewV3Mail()
	m.SetFrom(s.from)
	m.Subject = s.subjPrefix + email.Subject

	for _, r := range to {
		p := sgmail.NewPersonalization()
		p.AddTos(sgmail.NewEmail(r.Name, r.Address))
		m.AddPersonalizations(p)
	}

	text := email.TextBody
	if text == "" {
		text = email.Subject
	}
	m.AddContent(sgmail.NewContent("text/plain", text))
	if email.HTMLBody != "" {
		m.AddContent(sgmail.NewContent("text/html", email.HTMLBody))
	}
	return m
}

// LogSender only logs e-mails. Used when no SendGrid key is configured.
type LogSender struct {
	logger *zap.Logger
}

// NewLogSender creates a log-only sender
func NewLogSender(logger *zap.Logger) *LogSender {
	return &LogSender{logger: logger}
}

// Send logs the e-mail
func (s *LogSender) Send(_ context.Context, email *Email) error {
	if len(email.To) == 0 {
		return ErrNoRecipients
	}
	addrs := make([]string, len(email.To))
	for i, r := range email.To {
		addrs[i] = r.Address
	}
	s.logger.Info("email (not delivered, no provider configured)",
		zap.Strings("to", addrs),
		zap.String("subject", email.Subject))
	return nil
}

// NewEmailSender picks SendGrid when an API key is configured
func NewEmailSender(cfg config.EmailConfig, logger *zap.Logger) EmailSender {
	if strings.TrimSpace(cfg.SendGridAPIKey) == "" {
		logger.Info("SendGrid API key not set, e-mails will only be logged")
		return NewLogSender(logger)
	}
	return NewSendGridSender(cfg)
}

// Dispatcher sends e-mails in the background
type Dispatcher struct {
	sender  EmailSender
	logger  *zap.Logger
	timeout time.Duration

	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup
}

// NewDispatcher creates a dispatcher. Each send gets its own timeout.
func NewDispatcher(sender EmailSender, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{sender: sender, logger: logger, timeout: 30 * time.Second}
}

// Dispatch queues the e-mail. It returns false after Shutdown.
func (d *Dispatcher) Dispatch(email *Email) bool {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		d.logger.Warn("dropping e-mail after shutdown", zap.String("subject", email.Subject))
		return false
	}
	d.wg.Add(1)
	d.mu.Unlock()

	go func() {
		defer d.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				d.logger.Error("panic while sending e-mail", zap.Any("panic", r))
			}
		}()

		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		defer cancel()
		if err := d.sender.Send(ctx, email); err != nil {
			d.logger.Error("failed to send e-mail",
				zap.String("subject", email.Subject),
				zap.Int("recipients", len(email.To)),
				zap.Error(err))
		}
	}()
	return true
}

// Shutdown stops accepting e-mails and waits for in-flight sends
func (d *Dispatcher) Shutdown(ctx context.Context) error {
	d.mu.Lock()
	d.closed = true
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("e-mail dispatcher shutdown: %w", ctx.Err())
	}
}
