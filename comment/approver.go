package comment

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/blueprint-hub/hub-server/account"
	"github.com/blueprint-hub/hub-server/blueprint"
	"github.com/blueprint-hub/hub-server/event"
	"github.com/blueprint-hub/hub-server/gate"
	"github.com/blueprint-hub/hub-server/model"
	"github.com/blueprint-hub/hub-server/moderation"
)

const defaultApprovalTimeout = 30 * time.Second

// Approver moderates new comments off the request path. Comments that pass
// are approved; comments that fail stay unapproved and administrators are
// notified. With moderation disabled every comment is approved.
type Approver struct {
	log *zap.Logger

	gate       *gate.Gate
	comments   Store
	blueprints blueprint.Store
	accounts   account.Store

	timeout time.Duration
}

func NewApprover(log *zap.Logger, g *gate.Gate, comments Store, blueprints blueprint.Store, accounts account.Store) *Approver {
	return &Approver{
		log:        log,
		gate:       g,
		comments:   comments,
		blueprints: blueprints,
		accounts:   accounts,
		timeout:    defaultApprovalTimeout,
	}
}

// OnEvent implements event.Handler.
func (a *Approver) OnEvent(_ model.BlueprintID, e *event.CommentEvent) {
	ctx, cancel := context.WithTimeout(context.Background(), a.timeout)
	defer cancel()

	if err := a.Approve(ctx, e.CommentID); err != nil {
		a.log.Warn("Failed to moderate comment",
			zap.Error(err),
			zap.String("comment_id", e.CommentID.String()),
			zap.String("blueprint_id", e.BlueprintID.String()),
		)
	}
}

// Approve moderates a single comment.
func (a *Approver) Approve(ctx context.Context, id model.CommentID) error {
	c, err := a.comments.GetComment(ctx, id)
	if err != nil {
		return err
	}
	if c.IsApproved {
		return nil
	}

	log := a.log.With(zap.String("comment_id", id.String()))

	decision, err := a.gate.Screen(ctx, gate.ContentTypeComment, moderation.NewRequest().AddText(c.Body, "Comment"))

	var rejection *gate.RejectionError
	switch {
	case errors.As(err, &rejection):
		// A rejected comment was already written, so it is held like any
		// other flagged comment.
		decision = &gate.Decision{Action: gate.ActionReview, Verdict: rejection.Verdict}
	case err != nil:
		return err
	}

	if decision.Action == gate.ActionAllow {
		if err := a.comments.SetApproved(ctx, id, true); err != nil {
			return err
		}
		log.Debug("Approved comment", zap.Bool("skipped", decision.Skipped))
		return nil
	}

	log.Debug("Holding comment for review")
	a.gate.NotifyModerators(ctx, gate.Subject{
		ContentType: gate.ContentTypeComment,
		ID:          id.String(),
		Title:       a.blueprintTitle(ctx, c.BlueprintID),
		Author:      a.author(ctx, c.AuthorID),
	}, decision.Verdict)
	return nil
}

func (a *Approver) blueprintTitle(ctx context.Context, id model.BlueprintID) string {
	b, err := a.blueprints.GetBlueprint(ctx, id)
	if err != nil {
		a.log.Warn("Failed to load commented blueprint", zap.Error(err), zap.String("blueprint_id", id.String()))
		return ""
	}
	return b.Title
}

func (a *Approver) author(ctx context.Context, id *model.UserID) *account.User {
	if id == nil {
		return nil
	}

	user, err := a.accounts.GetUser(ctx, *id)
	if err != nil {
		a.log.Warn("Failed to load comment author", zap.Error(err), zap.String("user_id", id.String()))
		return nil
	}
	return user
}
