package notify

import (
	"context"
	"log/slog"
)

// LogNotifier writes codes to the log instead of a real side channel. Used
// when no SendGrid API key is configured so the service still runs locally.
type LogNotifier struct {
	Logger *slog.Logger
}

func (n *LogNotifier) SendOTP(ctx context.Context, destination, code string) error {
	n.Logger.Info("otp delivery (log transport)", "destination", destination, "code", code)
	return nil
}
