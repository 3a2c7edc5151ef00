package mailer

import (
	"context"
	"fmt"
	"log"
	"net/smtp"
	"strings"

	"soalku_backend/internals/configs"
)

type Sender interface {
	Send(ctx context.Context, to, subject, html string) error
}

type SMTPConfig struct {
	Host string
	Port int
	User string
	Pass string
	From string
}

type SMTPSender struct {
	cfg SMTPConfig
}

// NoopSender dipakai saat SMTP tidak dikonfigurasi; email hanya dicatat.
type NoopSender struct{}

func (NoopSender) Send(_ context.Context, to, subject, _ string) error {
	log.Printf("[MAIL] SMTP tidak dikonfigurasi, skip kirim ke=%s subject=%q", to, subject)
	return nil
}

// NewSender SMTP kalau host/port/from lengkap, selain itu NoopSender.
func NewSender(cfg SMTPConfig) Sender {
	if strings.TrimSpace(cfg.Host) == "" || cfg.Port <= 0 || strings.TrimSpace(cfg.From) == "" {
		return NoopSender{}
	}
	cfg.Host = strings.TrimSpace(cfg.Host)
	cfg.User = strings.TrimSpace(cfg.User)
	cfg.From = strings.TrimSpace(cfg.From)
	return &SMTPSender{cfg: cfg}
}

func NewSenderFromConfig(cfg *configs.Config) Sender {
	return NewSender(SMTPConfig{
		Host: cfg.SMTPHost,
		Port: cfg.SMTPPort,
		User: cfg.SMTPUser,
		Pass: cfg.SMTPPassword,
		From: cfg.SMTPFrom,
	})
}

func buildMessage(from, to, subject, html string) []byte {
	var b strings.Builder
	b.WriteString("From: " + from + "\r\n")
	b.WriteString("To: " + to + "\r\n")
	b.WriteString("Subject: " + subject + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=UTF-8\r\n\r\n")
	b.WriteString(html)
	b.WriteString("\r\n")
	return []byte(b.String())
}

func (s *SMTPSender) Send(ctx context.Context, to, subject, html string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if strings.ContainsAny(to, "\r\n") || strings.ContainsAny(subject, "\r\n") {
		return fmt.Errorf("header email tidak valid")
	}
	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)

	var auth smtp.Auth
	if s.cfg.User != "" {
		auth = smtp.PlainAuth("", s.cfg.User, s.cfg.Pass, s.cfg.Host)
	}
	if err := smtp.SendMail(addr, auth, s.cfg.From, []string{to}, buildMessage(s.cfg.From, to, subject, html)); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}

// InvoiceMailer render invoice lalu kirim lewat Sender.
type InvoiceMailer struct {
	Sender Sender
}

func NewInvoiceMailer(s Sender) *InvoiceMailer { return &InvoiceMailer{Sender: s} }

func (m *InvoiceMailer) SendInvoice(ctx context.Context, inv Invoice) error {
	if strings.TrimSpace(inv.CustomerEmail) == "" {
		return fmt.Errorf("email customer kosong (invoice %s)", inv.InvoiceNo)
	}
	subject, html, err := RenderInvoice(inv)
	if err != nil {
		return fmt.Errorf("render invoice: %w", err)
	}
	if err := m.Sender.Send(ctx, inv.CustomerEmail, subject, html); err != nil {
		return err
	}
	log.Printf("[MAIL] invoice %s terkirim ke %s", inv.InvoiceNo, inv.CustomerEmail)
	return nil
}
