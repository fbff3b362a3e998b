package notify

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// SendGridNotifier delivers OTP codes over email via the SendGrid API.
type SendGridNotifier struct {
	Client   *sendgrid.Client
	From     string        // sender address
	FromName string        // display name on the sender address
	CodeTTL  time.Duration // validity window quoted in the mail body
}

func NewSendGridNotifier(apiKey, from, fromName string, codeTTL time.Duration) *SendGridNotifier {
	return &SendGridNotifier{
		Client:   sendgrid.NewSendClient(apiKey),
		From:     from,
		FromName: fromName,
		CodeTTL:  codeTTL,
	}
}

// otpMessageBody renders the plain-text mail body, quoting the actual
// validity window the verifier enforces.
func otpMessageBody(code string, ttl time.Duration) string {
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	if minutes := int(ttl.Minutes()); minutes >= 1 {
		return fmt.Sprintf("Your OTP is %s. It expires in %d minutes.", code, minutes)
	}
	return fmt.Sprintf("Your OTP is %s. It expires in %s.", code, ttl)
}

func (n *SendGridNotifier) SendOTP(ctx context.Context, destination, code string) error {
	from := mail.NewEmail(n.FromName, n.From)
	to := mail.NewEmail("", destination)
	subject := "Your login verification code"
	plain := otpMessageBody(code, n.CodeTTL)
	message := mail.NewSingleEmail(from, subject, to, plain, "")

	resp, err := n.Client.SendWithContext(ctx, message)
	if err != nil {
		return fmt.Errorf("sendgrid send failed: %w", err)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("sendgrid rejected message: status %d", resp.StatusCode)
	}
	return nil
}
