package notification

import (
	"context"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/blueprint-hub/hub-server/account"
)

// ModeratorNotifier sends a notice to every administrator.
type ModeratorNotifier struct {
	log      *zap.Logger
	accounts account.Store
	sender   Notifier
}

func NewModeratorNotifier(log *zap.Logger, accounts account.Store, sender Notifier) *ModeratorNotifier {
	return &ModeratorNotifier{
		log:      log,
		accounts: accounts,
		sender:   sender,
	}
}

// NotifyModerators sends one message per administrator. A failed delivery does
// not stop the others; all failures are returned together.
func (m *ModeratorNotifier) NotifyModerators(ctx context.Context, notice *Notice) error {
	admins, err := m.accounts.GetAdmins(ctx)
	if err != nil {
		return err
	}

	if len(admins) == 0 {
		m.log.Debug("No administrators to notify", zap.String("content_type", notice.ContentType))
		return nil
	}

	var errs error
	for _, admin := range admins {
		if err := m.sender.Send(ctx, admin, notice); err != nil {
			m.log.Warn("Failed to notify administrator", zap.Error(err), zap.String("admin", admin.Username))
			errs = multierr.Append(errs, err)
		}
	}
	return errs
}
