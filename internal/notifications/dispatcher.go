package notifications

import (
	"context"
	"log/slog"
	"time"

	"reclaimit/internal/middleware"
	"reclaimit/internal/models"
	"reclaimit/internal/observability"
)

const sendTimeout = 15 * time.Second

// Dispatcher sends claim-review emails on detached goroutines. A nil mailer
// downgrades to log-only mode, which keeps local development and tests free
// of SMTP requirements.
type Dispatcher struct {
	mailer Mailer
	logger *slog.Logger
}

// NewDispatcher builds a dispatcher around the given mailer. mailer may be
// nil or a typed-nil *SMTPMailer.
func NewDispatcher(mailer Mailer) *Dispatcher {
	if m, ok := mailer.(*SMTPMailer); ok && m == nil {
		mailer = nil
	}
	return &Dispatcher{mailer: mailer, logger: middleware.Logger}
}

// NotifyClaimReviewed emails the claimant about an approval or decline.
// Returns immediately; the send runs on its own goroutine with its own
// timeout, detached from the request that triggered it.
func (d *Dispatcher) NotifyClaimReviewed(user *models.User, item *models.Item, claim *models.Claim, approved bool) {
	if user == nil || user.Email == "" || item == nil || claim == nil {
		observability.NotificationOutcomes.WithLabelValues("skipped").Inc()
		return
	}

	go func() {
		defer func() {
			if r := recover(); r != nil {
				d.logger.Error("Notification goroutine panicked", slog.Any("panic", r))
			}
		}()

		subject, body, err := renderReviewEmail(user, item, claim, approved)
		if err != nil {
			observability.NotificationOutcomes.WithLabelValues("failed").Inc()
			d.logger.Error("Failed to render claim email",
				slog.Uint64("claim_id", uint64(claim.ID)),
				slog.String("error", err.Error()),
			)
			return
		}

		if d.mailer == nil {
			observability.NotificationOutcomes.WithLabelValues("skipped").Inc()
			d.logger.Info("SMTP not configured, claim notification logged only",
				slog.Uint64("claim_id", uint64(claim.ID)),
				slog.String("to", user.Email),
				slog.String("subject", subject),
			)
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
		defer cancel()

		if err := d.mailer.Send(ctx, user.Email, subject, body); err != nil {
			observability.NotificationOutcomes.WithLabelValues("failed").Inc()
			d.logger.Error("Failed to send claim notification",
				slog.Uint64("claim_id", uint64(claim.ID)),
				slog.String("to", user.Email),
				slog.String("error", err.Error()),
			)
			return
		}

		observability.NotificationOutcomes.WithLabelValues("sent").Inc()
		d.logger.Info("Claim notification sent",
			slog.Uint64("claim_id", uint64(claim.ID)),
			slog.String("to", user.Email),
		)
	}()
}
