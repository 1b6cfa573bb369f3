package comment

import (
	"context"
	"strings"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/blueprint-hub/hub-server/account"
	"github.com/blueprint-hub/hub-server/blueprint"
	"github.com/blueprint-hub/hub-server/event"
	"github.com/blueprint-hub/hub-server/model"
	"github.com/blueprint-hub/hub-server/query"
	"github.com/blueprint-hub/hub-server/ratelimit"
)

var ErrBodyRequired = errors.New("comment body is required")

// Publisher is implemented by *event.Bus.
type Publisher interface {
	OnEvent(key model.BlueprintID, e *event.CommentEvent) error
}

type Server struct {
	log *zap.Logger

	comments   Store
	blueprints blueprint.Store
	limiter    ratelimit.Limiter
	publisher  Publisher
}

func NewServer(log *zap.Logger, comments Store, blueprints blueprint.Store, limiter ratelimit.Limiter, publisher Publisher) *Server {
	return &Server{
		log:        log,
		comments:   comments,
		blueprints: blueprints,
		limiter:    limiter,
		publisher:  publisher,
	}
}

// Create stores an unapproved comment and publishes a CommentEvent so it can
// be moderated in the background. author is nil for anonymous comments, which
// are rate limited by remoteAddr.
func (s *Server) Create(ctx context.Context, author *account.User, blueprintID model.BlueprintID, body, remoteAddr string) (*Comment, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, ErrBodyRequired
	}

	if _, err := s.blueprints.GetBlueprint(ctx, blueprintID); err != nil {
		return nil, err
	}

	var authorID *model.UserID
	var subjectUser string
	if author != nil {
		id := author.ID
		authorID = &id
		subjectUser = author.ID.String()
	}

	log := s.log.With(
		zap.String("blueprint_id", blueprintID.String()),
		zap.String("subject", ratelimit.Subject(subjectUser, remoteAddr)),
	)

	if err := ratelimit.Check(ctx, s.limiter, ratelimit.CommentRule, ratelimit.Subject(subjectUser, remoteAddr)); err != nil {
		if !errors.Is(err, ratelimit.ErrRateLimited) {
			log.Warn("Failed to check comment rate limit", zap.Error(err))
		}
		return nil, err
	}

	id, err := model.GenerateCommentID()
	if err != nil {
		return nil, err
	}

	c := &Comment{
		ID:          id,
		BlueprintID: blueprintID,
		AuthorID:    authorID,
		Body:        body,
		IsApproved:  false,
		CreatedAt:   time.Now(),
	}
	if err := s.comments.CreateComment(ctx, c); err != nil {
		log.Warn("Failed to create comment", zap.Error(err))
		return nil, err
	}

	if err := s.publisher.OnEvent(blueprintID, &event.CommentEvent{
		CommentID:   c.ID,
		BlueprintID: blueprintID,
		Timestamp:   c.CreatedAt,
	}); err != nil {
		log.Warn("Failed to publish comment event", zap.Error(err), zap.String("comment_id", c.ID.String()))
	}

	return c, nil
}

// List returns the comments on a blueprint. Administrators also see
// unapproved comments. caller may be nil.
func (s *Server) List(ctx context.Context, caller *account.User, blueprintID model.BlueprintID, opts ...query.Option) ([]*Comment, error) {
	approvedOnly := caller == nil || !caller.IsAdmin
	return s.comments.GetComments(ctx, blueprintID, approvedOnly, opts...)
}

// Approve makes a held comment public.
func (s *Server) Approve(ctx context.Context, admin *account.User, id model.CommentID) error {
	if !admin.IsAdmin {
		return account.ErrPermissionDenied
	}
	return s.comments.SetApproved(ctx, id, true)
}
