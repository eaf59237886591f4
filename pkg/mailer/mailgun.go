/**
 * @description
 * This file provides a small client for the Mailgun messages API, used to
 * deliver verification codes. Failures are returned to the caller, which
 * logs and swallows them: a stored code is still usable once delivered
 * through any channel.
 */
package mailer

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// MailgunClient sends email through the Mailgun HTTP API.
type MailgunClient struct {
	apiKey     string
	domain     string
	baseURL    string
	httpClient *http.Client
}

// NewMailgunClient creates a Mailgun client for the given domain. It
// returns nil when the API key or domain is not configured, which callers
// treat as "no sender available".
func NewMailgunClient(apiKey, domain string) *MailgunClient {
	if strings.TrimSpace(apiKey) == "" || strings.TrimSpace(domain) == "" {
		return nil
	}
	return &MailgunClient{
		apiKey:  apiKey,
		domain:  domain,
		baseURL: "https://api.mailgun.net/v3",
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Send delivers the verification code to the recipient.
func (c *MailgunClient) Send(ctx context.Context, to, code string) error {
	form := url.Values{}
	form.Set("from", fmt.Sprintf("Reckon <noreply@%s>", c.domain))
	form.Set("to", to)
	form.Set("subject", "Your Verification Code for Reckon")
	form.Set("html", codeEmailHTML(code))

	endpoint := fmt.Sprintf("%s/%s/messages", c.baseURL, c.domain)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("failed to create mailgun request: %w", err)
	}
	req.SetBasicAuth("api", c.apiKey)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call mailgun: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("mailgun returned status %d: %s", resp.StatusCode, string(body))
	}
	return nil
}

func codeEmailHTML(code string) string {
	return fmt.Sprintf(`
<body style="font-family: 'Segoe UI', Tahoma, sans-serif; background-color: #f9f9f9; margin: 0; padding: 20px;">
  <table width="100%%" style="max-width: 600px; margin: 0 auto; background: #ffffff; border-radius: 8px;">
    <tr>
      <td style="background: linear-gradient(135deg, #6366F1 0%%, #8B5CF6 100%%); padding: 30px 20px; text-align: center;">
        <h1 style="color: white; margin: 0;">RECKON</h1>
        <p style="color: rgba(255,255,255,0.9); margin: 5px 0 0 0;">Be Smart With Your Money</p>
      </td>
    </tr>
    <tr>
      <td style="padding: 40px 30px;">
        <p style="color: #4B5563; font-size: 16px;">Use this verification code to complete your registration:</p>
        <div style="background: #F3F4F6; border-left: 4px solid #6366F1; padding: 20px; text-align: center;">
          <span style="font-size: 32px; font-weight: 700; letter-spacing: 8px;">%s</span>
        </div>
        <p style="color: #6B7280; font-size: 14px;">This code will expire in 10 minutes.</p>
        <p style="color: #6B7280; font-size: 13px;">If you didn't request this code, you can safely ignore this email.</p>
      </td>
    </tr>
  </table>
</body>`, code)
}
