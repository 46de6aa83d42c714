package notification

import (
	"context"

	"github.com/retreathub/booking-service/config"
	"github.com/retreathub/booking-service/internal/models"
	"github.com/retreathub/booking-service/internal/repository"
	"github.com/retreathub/booking-service/pkg/mailer"
	"go.uber.org/zap"
)

// Dispatcher fans out one notification event. Implementations never return
// an error: losing an email must not roll back the state change that
// triggered it, so failures are audit-logged and swallowed.
type Dispatcher interface {
	Dispatch(ctx context.Context, ev Event)
}

type EmailDispatcher struct {
	repo   repository.NotificationRepository
	sender mailer.Sender
	cfg    *config.Config
	logger *zap.Logger
}

func NewEmailDispatcher(repo repository.NotificationRepository, sender mailer.Sender, cfg *config.Config, logger *zap.Logger) *EmailDispatcher {
	return &EmailDispatcher{repo: repo, sender: sender, cfg: cfg, logger: logger}
}

// Dispatch resolves the template (database override first, hardcoded
// fallback second), renders it, sends the email and appends an audit log
// entry for the attempt, whatever its outcome.
func (d *EmailDispatcher) Dispatch(ctx context.Context, ev Event) {
	fallback, ok := fallbackTemplates[ev.Type]
	if !ok {
		d.logger.Error("no template registered for event type", zap.String("type", string(ev.Type)))
		return
	}

	to := ev.To
	if category, isAdmin := adminCategory(ev.Type); isAdmin {
		if !d.cfg.AdminCategoryEnabled(category) {
			d.appendLog(ctx, ev, "", "", models.EmailSkipped, "", "admin notifications disabled for category "+category)
			return
		}
		to = d.cfg.AdminRecipient(category)
		if to == "" {
			d.logger.Info("no admin email configured", zap.String("category", category), zap.String("type", string(ev.Type)))
			d.appendLog(ctx, ev, "", "", models.EmailSkipped, "", "no admin email configured")
			return
		}
	}

	subject := fallback.Subject
	body := fallback.BodyHTML
	if lang := ev.Language; lang != "" {
		if tpl, err := d.repo.FindTemplate(ctx, string(ev.Type), lang); err == nil {
			subject = tpl.Subject
			body = tpl.BodyHTML
		}
	}

	// Escape policy follows the hardcoded allow-list even for DB overrides.
	subject = Render(subject, ev.Vars, fallback.RawKeys)
	body = Render(body, ev.Vars, fallback.RawKeys)

	messageID, err := d.sender.Send(ctx, mailer.Message{
		To:      to,
		Subject: subject,
		HTML:    body,
		ReplyTo: d.cfg.EmailReplyTo,
	})
	if err != nil {
		d.logger.Error("email send failed",
			zap.String("type", string(ev.Type)),
			zap.String("to", to),
			zap.Error(err))
		d.appendLog(ctx, ev, to, subject, models.EmailFailed, "", err.Error())
		return
	}

	d.appendLog(ctx, ev, to, subject, models.EmailSent, messageID, "")
}

func (d *EmailDispatcher) appendLog(ctx context.Context, ev Event, to, subject string, status models.EmailSendStatus, messageID, errText string) {
	entry := &models.EmailAuditLogEntry{
		EmailType:         string(ev.Type),
		Recipient:         to,
		Subject:           subject,
		Status:            status,
		BookingID:         ev.BookingID,
		PaymentID:         ev.PaymentID,
		ProviderMessageID: messageID,
		Error:             errText,
	}
	if err := d.repo.AppendLog(ctx, entry); err != nil {
		d.logger.Error("failed to append email audit log", zap.Error(err))
	}
}
