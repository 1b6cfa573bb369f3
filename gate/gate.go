package gate

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/blueprint-hub/hub-server/account"
	"github.com/blueprint-hub/hub-server/moderation"
	"github.com/blueprint-hub/hub-server/notification"
)

type ContentType string

const (
	ContentTypeBlueprint  ContentType = "blueprint"
	ContentTypeCollection ContentType = "collection"
	ContentTypeComment    ContentType = "comment"
)

// Policy decides what happens to content that fails moderation.
type Policy string

const (
	// PolicyReview persists the content hidden from the public and asks
	// administrators to decide.
	PolicyReview Policy = "review"

	// PolicyReject blocks the write.
	PolicyReject Policy = "reject"
)

func ParsePolicy(s string) (Policy, error) {
	switch p := Policy(strings.ToLower(strings.TrimSpace(s))); p {
	case PolicyReview, PolicyReject:
		return p, nil
	default:
		return "", fmt.Errorf("unknown moderation policy: %q", s)
	}
}

func DefaultPolicies() map[ContentType]Policy {
	return map[ContentType]Policy{
		ContentTypeBlueprint:  PolicyReview,
		ContentTypeCollection: PolicyReject,
		ContentTypeComment:    PolicyReview,
	}
}

type Config struct {
	Enabled bool

	// Policies per content type. Missing entries use PolicyReview.
	Policies map[ContentType]Policy

	// ReviewURLBase is the admin panel root used to build review links, e.g.
	// "https://hub.example.com/admin". Empty disables links.
	ReviewURLBase string
}

type Action int

const (
	ActionAllow Action = iota
	ActionReview
)

func (a Action) String() string {
	switch a {
	case ActionAllow:
		return "allow"
	case ActionReview:
		return "review"
	default:
		return "unknown"
	}
}

// Decision is the outcome of screening content.
type Decision struct {
	Action Action

	// Skipped is set when moderation is disabled and nothing was checked.
	Skipped bool

	// Verdict is nil when Skipped.
	Verdict *moderation.Verdict
}

// Evaluator is implemented by *moderation.AutoMod.
type Evaluator interface {
	Validate(ctx context.Context, req *moderation.Request) (*moderation.Verdict, error)
}

// ModeratorNotifier is implemented by *notification.ModeratorNotifier.
type ModeratorNotifier interface {
	NotifyModerators(ctx context.Context, notice *notification.Notice) error
}

// NotifyTimeout bounds the delivery of one notice to every administrator.
const NotifyTimeout = 2 * time.Minute

// Gate applies moderation policy to content writes.
type Gate struct {
	log      *zap.Logger
	cfg      Config
	automod  Evaluator
	notifier ModeratorNotifier

	inflight sync.WaitGroup
}

func New(log *zap.Logger, cfg Config, automod Evaluator, notifier ModeratorNotifier) *Gate {
	policies := DefaultPolicies()
	for contentType, policy := range cfg.Policies {
		policies[contentType] = policy
	}
	cfg.Policies = policies
	cfg.ReviewURLBase = strings.TrimSuffix(cfg.ReviewURLBase, "/")

	return &Gate{
		log:      log,
		cfg:      cfg,
		automod:  automod,
		notifier: notifier,
	}
}

func (g *Gate) Enabled() bool {
	return g.cfg.Enabled
}

func (g *Gate) Policy(contentType ContentType) Policy {
	if policy, ok := g.cfg.Policies[contentType]; ok {
		return policy
	}
	return PolicyReview
}

// Screen moderates req as content of the given type.
//
// Content that fails under PolicyReject returns a *RejectionError. Under
// PolicyReview it returns ActionReview; the caller persists the content in
// its review state and then calls NotifyModerators.
//
// The only other error is *moderation.ImageNotFoundError.
func (g *Gate) Screen(ctx context.Context, contentType ContentType, req *moderation.Request) (*Decision, error) {
	if !g.cfg.Enabled {
		return &Decision{Action: ActionAllow, Skipped: true}, nil
	}

	verdict, err := g.automod.Validate(ctx, req)
	if err != nil {
		return nil, err
	}

	if verdict.Passed {
		return &Decision{Action: ActionAllow, Verdict: verdict}, nil
	}

	log := g.log.With(zap.String("content_type", string(contentType)))

	if g.Policy(contentType) == PolicyReject {
		log.Debug("Rejecting flagged content")
		return nil, &RejectionError{ContentType: contentType, Verdict: verdict}
	}

	log.Debug("Holding flagged content for review")
	return &Decision{Action: ActionReview, Verdict: verdict}, nil
}

// Subject identifies flagged content in a notification.
type Subject struct {
	ContentType ContentType
	ID          string
	Title       string

	// Author is nil for anonymous content.
	Author *account.User
}

// NotifyModerators tells every administrator about flagged content. The
// notice is delivered in the background so the content write is not held up
// by slow senders, and outlives the cancellation of ctx. Delivery failures
// are logged.
func (g *Gate) NotifyModerators(ctx context.Context, subject Subject, verdict *moderation.Verdict) {
	notice := &notification.Notice{
		ContentType:  string(subject.ContentType),
		ContentTitle: subject.Title,
		Author:       subject.Author,
		ReviewURL:    g.ReviewURL(subject.ContentType, subject.ID),
	}
	if verdict != nil {
		notice.FlaggedTexts = verdict.FlaggedTexts
		notice.FlaggedImages = verdict.FlaggedImages
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), NotifyTimeout)

	g.inflight.Add(1)
	go func() {
		defer g.inflight.Done()
		defer cancel()

		if err := g.notifier.NotifyModerators(ctx, notice); err != nil {
			g.log.Warn("Failed to notify moderators",
				zap.Error(err),
				zap.String("content_type", string(subject.ContentType)),
				zap.String("content_id", subject.ID),
			)
		}
	}()
}

// Wait blocks until every pending notice has been delivered or given up on.
// It is used on shutdown and in tests.
func (g *Gate) Wait() {
	g.inflight.Wait()
}

// ReviewURL returns the admin page for a piece of content, or an empty string
// if there is none. Comments are reviewed on their blueprint's page, so they
// have no page of their own.
func (g *Gate) ReviewURL(contentType ContentType, id string) string {
	if g.cfg.ReviewURLBase == "" || id == "" {
		return ""
	}

	switch contentType {
	case ContentTypeBlueprint:
		return g.cfg.ReviewURLBase + "/blueprints/" + id
	case ContentTypeCollection:
		return g.cfg.ReviewURLBase + "/collections/" + id
	default:
		return ""
	}
}
