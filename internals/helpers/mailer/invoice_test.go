package mailer

import (
	"context"
	"strings"
	"testing"
	"time"
)

func TestFormatIDR(t *testing.T) {
	cases := map[int]string{
		0:         "Rp 0",
		500:       "Rp 500",
		1000:      "Rp 1.000",
		50000:     "Rp 50.000",
		1500000:   "Rp 1.500.000",
		123456789: "Rp 123.456.789",
		-25000:    "-Rp 25.000",
	}
	for in, want := range cases {
		if got := FormatIDR(in); got != want {
			t.Errorf("FormatIDR(%d) = %q, want %q", in, got, want)
		}
	}
}

func TestFormatTanggal(t *testing.T) {
	if got := FormatTanggal(time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC)); got != "29 Februari 2024" {
		t.Fatalf("got %q", got)
	}
}

func sampleInvoice() Invoice {
	return Invoice{
		InvoiceNo:     "SOAL-20240131-101500-ABCD1234",
		CustomerName:  "Budi <script>",
		CustomerEmail: "budi@example.com",
		PackageName:   "UTBK Intensif",
		PriceIDR:      150000,
		DiscountIDR:   50000,
		TotalIDR:      100000,
		PaymentMethod: "bank_transfer",
		ValidFrom:     time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC),
		ValidUntil:    time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC),
	}
}

func TestRenderInvoice(t *testing.T) {
	subject, html, err := RenderInvoice(sampleInvoice())
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(subject, "SOAL-20240131-101500-ABCD1234") {
		t.Fatalf("subject %q", subject)
	}
	for _, want := range []string{"Rp 150.000", "-Rp 50.000", "Rp 100.000", "bank_transfer", "31 Januari 2024 s/d 29 Februari 2024"} {
		if !strings.Contains(html, want) {
			t.Errorf("html missing %q", want)
		}
	}
	if strings.Contains(html, "<script>") {
		t.Fatal("customer name must be escaped")
	}

	inv := sampleInvoice()
	inv.DiscountIDR = 0
	_, html, _ = RenderInvoice(inv)
	if strings.Contains(html, "Diskon") {
		t.Fatal("discount row should be hidden when zero")
	}
}

type captureSender struct {
	to, subject, html string
}

func (c *captureSender) Send(_ context.Context, to, subject, html string) error {
	c.to, c.subject, c.html = to, subject, html
	return nil
}

func TestInvoiceMailer(t *testing.T) {
	cs := &captureSender{}
	m := NewInvoiceMailer(cs)
	if err := m.SendInvoice(context.Background(), sampleInvoice()); err != nil {
		t.Fatal(err)
	}
	if cs.to != "budi@example.com" || !strings.Contains(cs.html, "UTBK Intensif") {
		t.Fatalf("unexpected send %+v", cs)
	}

	inv := sampleInvoice()
	inv.CustomerEmail = ""
	if err := m.SendInvoice(context.Background(), inv); err == nil {
		t.Fatal("expected error for empty email")
	}
}

func TestNewSender_UnconfiguredIsNoop(t *testing.T) {
	if _, ok := NewSender(SMTPConfig{Host: "smtp.example.com"}).(NoopSender); !ok {
		t.Fatal("missing port/from should give NoopSender")
	}
	if _, ok := NewSender(SMTPConfig{Host: "smtp.example.com", Port: 587, From: "no-reply@example.com"}).(*SMTPSender); !ok {
		t.Fatal("complete config should give SMTPSender")
	}
	msg := string(buildMessage("a@x", "b@y", "Hi", "<p>x</p>"))
	if !strings.Contains(msg, "Content-Type: text/html; charset=UTF-8\r\n\r\n<p>x</p>") {
		t.Fatalf("message %q", msg)
	}
}
