package mailer

import (
	"bytes"
	"html/template"
	"strconv"
	"strings"
	"time"
)

// Invoice data yang dirender ke email; juga payload antrian invoice.send.
type Invoice struct {
	InvoiceNo     string    `json:"invoice_no"`
	CustomerName  string    `json:"customer_name"`
	CustomerEmail string    `json:"customer_email"`
	PackageName   string    `json:"package_name"`
	PriceIDR      int       `json:"price_idr"`
	DiscountIDR   int       `json:"discount_idr"`
	TotalIDR      int       `json:"total_idr"`
	PaymentMethod string    `json:"payment_method"`
	PaidAt        time.Time `json:"paid_at"`
	ValidFrom     time.Time `json:"valid_from"`
	ValidUntil    time.Time `json:"valid_until"`
}

// FormatIDR 1500000 -> "Rp 1.500.000"
func FormatIDR(n int) string {
	neg := n < 0
	if neg {
		n = -n
	}
	s := strconv.Itoa(n)
	var b strings.Builder
	pre := len(s) % 3
	if pre > 0 {
		b.WriteString(s[:pre])
	}
	for i := pre; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteByte('.')
		}
		b.WriteString(s[i : i+3])
	}
	if neg {
		return "-Rp " + b.String()
	}
	return "Rp " + b.String()
}

var bulan = [...]string{"Januari", "Februari", "Maret", "April", "Mei", "Juni", "Juli", "Agustus", "September", "Oktober", "November", "Desember"}

// FormatTanggal 2024-02-29 -> "29 Februari 2024"
func FormatTanggal(t time.Time) string {
	return strconv.Itoa(t.Day()) + " " + bulan[t.Month()-1] + " " + strconv.Itoa(t.Year())
}

var invoiceTmpl = template.Must(template.New("invoice").Funcs(template.FuncMap{
	"idr":     FormatIDR,
	"tanggal": FormatTanggal,
}).Parse(`<!DOCTYPE html>
<html lang="id">
<head><meta charset="UTF-8"><title>Invoice {{.InvoiceNo}}</title></head>
<body style="font-family:Arial,sans-serif;color:#222">
  <h2>Terima kasih, {{.CustomerName}}!</h2>
  <p>Pembayaran Anda sudah kami terima. Berikut rincian langganan Anda:</p>
  <table cellpadding="6" style="border-collapse:collapse">
    <tr><td>No. Invoice</td><td><b>{{.InvoiceNo}}</b></td></tr>
    <tr><td>Paket</td><td>{{.PackageName}}</td></tr>
    <tr><td>Harga</td><td>{{idr .PriceIDR}}</td></tr>
    {{if gt .DiscountIDR 0}}<tr><td>Diskon</td><td>-{{idr .DiscountIDR}}</td></tr>{{end}}
    <tr><td>Total</td><td><b>{{idr .TotalIDR}}</b></td></tr>
    {{if .PaymentMethod}}<tr><td>Metode</td><td>{{.PaymentMethod}}</td></tr>{{end}}
    <tr><td>Masa aktif</td><td>{{tanggal .ValidFrom}} s/d {{tanggal .ValidUntil}}</td></tr>
  </table>
  <p style="font-size:12px;color:#777">Email ini dikirim otomatis, mohon tidak membalas.</p>
</body>
</html>`))

// RenderInvoice menghasilkan subject + body HTML.
func RenderInvoice(inv Invoice) (string, string, error) {
	var buf bytes.Buffer
	if err := invoiceTmpl.Execute(&buf, inv); err != nil {
		return "", "", err
	}
	return "Invoice " + inv.InvoiceNo + " - " + inv.PackageName, buf.String(), nil
}
