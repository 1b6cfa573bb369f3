package notification

import (
	"context"

	"go.uber.org/zap"

	"github.com/blueprint-hub/hub-server/account"
	"github.com/blueprint-hub/hub-server/moderation"
)

// Notice tells an administrator that content was flagged by moderation and
// needs a manual decision.
type Notice struct {
	ContentType  string
	ContentTitle string

	// Author is nil for anonymous content.
	Author *account.User

	FlaggedTexts  []moderation.FlaggedText
	FlaggedImages []moderation.FlaggedImage

	// ReviewURL links to the content in the admin panel. Empty when the
	// content has no review page.
	ReviewURL string
}

// AuthorName returns the author's username, or "Anonymous".
func (n *Notice) AuthorName() string {
	if n.Author == nil {
		return "Anonymous"
	}
	return n.Author.Username
}

type Notifier interface {
	// Send delivers a notice to a single recipient.
	Send(ctx context.Context, recipient *account.User, notice *Notice) error
}

// LogNotifier writes notices to the log. It is used when no delivery channel
// is configured.
type LogNotifier struct {
	log *zap.Logger
}

func NewLogNotifier(log *zap.Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

func (n *LogNotifier) Send(_ context.Context, recipient *account.User, notice *Notice) error {
	n.log.Info("Content flagged for review",
		zap.String("recipient", recipient.Username),
		zap.String("content_type", notice.ContentType),
		zap.String("content_title", notice.ContentTitle),
		zap.String("author", notice.AuthorName()),
		zap.Int("flagged_texts", len(notice.FlaggedTexts)),
		zap.Int("flagged_images", len(notice.FlaggedImages)),
		zap.String("review_url", notice.ReviewURL),
	)
	return nil
}
