package email

import (
	"bytes"
	"context"
	"fmt"
	"html/template"

	"gopkg.in/gomail.v2"

	"couponhub/internal/config"
	"couponhub/internal/logger"
)

type SMTPProvider struct {
	dialer  *gomail.Dialer
	from    string
	baseURL string
}

func NewSMTPProvider(cfg config.EmailConfig) *SMTPProvider {
	return &SMTPProvider{
		dialer:  gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword),
		from:    fmt.Sprintf("%s <%s>", cfg.FromName, cfg.FromEmail),
		baseURL: cfg.BaseURL,
	}
}

func (p *SMTPProvider) send(to, subject, htmlBody string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", p.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", htmlBody)
	return p.dialer.DialAndSend(m)
}

func (p *SMTPProvider) SendVerificationEmail(ctx context.Context, to, username, token string) error {
	body, err := render(verificationTmpl, map[string]string{
		"Username": username,
		"Link":     fmt.Sprintf("%s/verify-email?token=%s", p.baseURL, token),
	})
	if err != nil {
		return err
	}
	return p.send(to, "Confirm your CouponHub account", body)
}

func (p *SMTPProvider) SendPasswordResetEmail(ctx context.Context, to, username, token string) error {
	body, err := render(resetTmpl, map[string]string{
		"Username": username,
		"Link":     fmt.Sprintf("%s/reset-password?token=%s", p.baseURL, token),
	})
	if err != nil {
		return err
	}
	return p.send(to, "Reset your CouponHub password", body)
}

func (p *SMTPProvider) SendPremiumReceiptEmail(ctx context.Context, to, username, planName string, amount float64, currency string) error {
	body, err := render(receiptTmpl, map[string]string{
		"Username": username,
		"Plan":     planName,
		"Amount":   fmt.Sprintf("%.2f %s", amount, currency),
	})
	if err != nil {
		return err
	}
	return p.send(to, "Your CouponHub Premium receipt", body)
}

func render(t *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

var verificationTmpl = template.Must(template.New("verification").Parse(`
<h2>Welcome to CouponHub, {{.Username}}!</h2>
<p>Confirm your email address to start sharing and claiming coupons:</p>
<p><a href="{{.Link}}">Verify my email</a></p>
<p>If you did not create this account, ignore this message.</p>
`))

var resetTmpl = template.Must(template.New("reset").Parse(`
<h2>Hi {{.Username}},</h2>
<p>We received a request to reset your password. The link below is valid for one hour:</p>
<p><a href="{{.Link}}">Reset my password</a></p>
<p>If you did not request this, your account is safe and no action is needed.</p>
`))

var receiptTmpl = template.Must(template.New("receipt").Parse(`
<h2>Thanks for going Premium, {{.Username}}!</h2>
<p>Your payment was received.</p>
<ul>
  <li>Plan: {{.Plan}}</li>
  <li>Amount: {{.Amount}}</li>
</ul>
<p>Exclusive deals are now unlocked on your account.</p>
`))

// NoopProvider logs instead of sending. Used when SMTP is not configured.
type NoopProvider struct{}

func (NoopProvider) SendVerificationEmail(ctx context.Context, to, username, token string) error {
	logger.CtxInfo(ctx, "email disabled, skipping verification mail", "to", to)
	return nil
}

func (NoopProvider) SendPasswordResetEmail(ctx context.Context, to, username, token string) error {
	logger.CtxInfo(ctx, "email disabled, skipping password reset mail", "to", to)
	return nil
}

func (NoopProvider) SendPremiumReceiptEmail(ctx context.Context, to, username, planName string, amount float64, currency string) error {
	logger.CtxInfo(ctx, "email disabled, skipping receipt mail", "to", to)
	return nil
}
