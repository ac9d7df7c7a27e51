package emails

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
)

const brevoAPI = "https://api.brevo.com/v3/smtp/email"

// BrevoSendRequest is the Brevo API v3 transactional email body.
type BrevoSendRequest struct {
	Sender      BrevoSender `json:"sender"`
	To          []BrevoTo   `json:"to"`
	Subject     string      `json:"subject"`
	HTMLContent string      `json:"htmlContent"`
}

type BrevoSender struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

type BrevoTo struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

// Allotment is the content of an IPO allotment email.
type Allotment struct {
	Symbol         string
	CompanyName    string
	AllottedShares int
	IssuePrice     decimal.Decimal
}

// Sender sends transactional emails.
type Sender interface {
	SendWelcome(ctx context.Context, toEmail, fullname string) error
	SendIpoAllotted(ctx context.Context, toEmail, fullname string, a Allotment) error
}

// BrevoClient sends emails via the Brevo (Sendinblue) API. An empty APIKey turns every send into a no-op.
type BrevoClient struct {
	APIKey   string
	MailFrom string
	Endpoint string
	Client   *http.Client
}

func (c *BrevoClient) from() string {
	if c.MailFrom != "" {
		return c.MailFrom
	}
	return "noreply@stockex.local"
}

func (c *BrevoClient) endpoint() string {
	if c.Endpoint != "" {
		return c.Endpoint
	}
	return brevoAPI
}

func (c *BrevoClient) send(ctx context.Context, toEmail, subject, html string) error {
	if c.APIKey == "" {
		return nil
	}
	body := BrevoSendRequest{
		Sender:      BrevoSender{Email: c.from(), Name: "StockEx"},
		To:          []BrevoTo{{Email: toEmail}},
		Subject:     subject,
		HTMLContent: html,
	}
	bodyBytes, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(), bytes.NewReader(bodyBytes))
	if err != nil {
		return err
	}
	req.Header.Set("api-key", c.APIKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.Client == nil {
		c.Client = &http.Client{Timeout: 15 * time.Second}
	}
	resp, err := c.Client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("brevo send failed: status %d", resp.StatusCode)
	}
	return nil
}

// SendWelcome sends the welcome email after registration.
func (c *BrevoClient) SendWelcome(ctx context.Context, toEmail, fullname string) error {
	if fullname == "" {
		fullname = "there"
	}
	return c.send(ctx, toEmail, "Welcome to StockEx", EmailLayout(welcomeContent(fullname)))
}

// SendIpoAllotted tells an applicant how many shares they received.
func (c *BrevoClient) SendIpoAllotted(ctx context.Context, toEmail, fullname string, a Allotment) error {
	if fullname == "" {
		fullname = "there"
	}
	subject := fmt.Sprintf("You were allotted %d shares of %s", a.AllottedShares, a.Symbol)
	return c.send(ctx, toEmail, subject, EmailLayout(allottedContent(fullname, a)))
}

func welcomeContent(name string) string {
	return fmt.Sprintf(`
    <h1>Welcome, %s!</h1>
    <p>Your StockEx account is ready and your portfolio has been funded with starting cash.</p>
    <p>Browse upcoming IPOs, apply while a round is open, and trade listed stocks from your dashboard.</p>
`, EscapeHTML(name))
}

func allottedContent(name string, a Allotment) string {
	cost := a.IssuePrice.Mul(decimal.NewFromInt(int64(a.AllottedShares)))
	return fmt.Sprintf(`
    <h1>IPO allotment: %s</h1>
    <p>Hi %s,</p>
    <p>You have been allotted <strong>%d</strong> shares of <strong>%s</strong> at the issue price of %s.</p>
    <p>%s has been debited from your cash balance and the shares are now in your portfolio.</p>
`, EscapeHTML(a.Symbol), EscapeHTML(name), a.AllottedShares, EscapeHTML(a.CompanyName), a.IssuePrice.StringFixed(2), cost.StringFixed(2))
}
