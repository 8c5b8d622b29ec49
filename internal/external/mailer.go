package external

import (
    "context"
    "errors"
    "fmt"
    "log"
    "time"

    "github.com/go-resty/resty/v2"
)

// ErrMailUnconfigured is returned when no Mailtrap token is set.  OTP
// issuance swallows it like any other delivery failure: the stored code
// stays valid even when the email never goes out.
var ErrMailUnconfigured = errors.New("mail sender not configured")

// Mailer delivers transactional mail through the Mailtrap send API.
type Mailer struct {
    http  *resty.Client
    token string
    from  string
}

func NewMailer(token, from string) *Mailer {
    if token == "" {
        log.Printf("mail: MAILTRAP_API_TOKEN not set, delivery disabled")
    }
    c := resty.New().
        SetBaseURL("https://send.api.mailtrap.io").
        SetTimeout(15 * time.Second).
        SetHeader("Content-Type", "application/json")
    if token != "" {
        c.SetAuthToken(token)
    }
    return &Mailer{http: c, token: token, from: from}
}

type mailAddress struct {
    Email string `json:"email"`
}

type sendRequest struct {
    From    mailAddress   `json:"from"`
    To      []mailAddress `json:"to"`
    Subject string        `json:"subject"`
    Text    string        `json:"text"`
    HTML    string        `json:"html"`
}

// Send posts one email to the Mailtrap API.  Non-2xx responses are
// returned as errors; the caller decides whether the failure matters.
func (m *Mailer) Send(ctx context.Context, to, subject, html, text string) error {
    if m.token == "" {
        return ErrMailUnconfigured
    }
    if html == "" {
        html = text
    }
    resp, err := m.http.R().
        SetContext(ctx).
        SetBody(sendRequest{
            From:    mailAddress{Email: m.from},
            To:      []mailAddress{{Email: to}},
            Subject: subject,
            Text:    text,
            HTML:    html,
        }).
        Post("/api/send")
    if err != nil {
        return fmt.Errorf("mailtrap request failed: %w", err)
    }
    if resp.IsError() {
        return fmt.Errorf("mailtrap returned status %d: %s", resp.StatusCode(), resp.String())
    }
    return nil
}

// SendOTP renders the verification-code template and delivers it.
func (m *Mailer) SendOTP(ctx context.Context, email, code string, expiresInMinutes int) error {
    return m.Send(ctx,
        email,
        "Your ila26 Verification Code",
        otpEmailHTML(code, expiresInMinutes),
        otpEmailText(code, expiresInMinutes),
    )
}

func otpEmailHTML(code string, minutes int) string {
    return fmt.Sprintf(`<!DOCTYPE html>
<html>
  <body style="font-family: Arial, sans-serif; background-color: #f4f4f4; margin: 0; padding: 24px;">
    <div style="max-width: 480px; margin: 0 auto; background: #ffffff; border-radius: 8px; padding: 32px;">
      <h2 style="color: #1a1a2e; margin-top: 0;">Verify your email</h2>
      <p>Use the code below to confirm your email address. It expires in %d minutes.</p>
      <p style="font-size: 32px; font-weight: bold; letter-spacing: 8px; text-align: center; color: #1a1a2e;">%s</p>
      <p style="color: #888; font-size: 12px;">If you did not request this code, you can ignore this email.</p>
    </div>
  </body>
</html>`, minutes, code)
}

func otpEmailText(code string, minutes int) string {
    return fmt.Sprintf("Your verification code is %s. It expires in %d minutes.\nIf you did not request this code, ignore this email.", code, minutes)
}
