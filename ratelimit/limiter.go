package ratelimit

import (
	"context"
	"errors"
	"time"
)

var ErrRateLimited = errors.New("rate limited")

// Rule is a fixed window limit: at most Limit actions per subject per Window.
type Rule struct {
	Name   string
	Limit  int
	Window time.Duration
}

var (
	// CommentRule allows one comment per user (or IP, for anonymous
	// comments) per minute.
	CommentRule = Rule{Name: "comment", Limit: 1, Window: time.Minute}

	// RegistrationRule allows five registrations per IP per hour.
	RegistrationRule = Rule{Name: "registration", Limit: 5, Window: time.Hour}
)

// Key returns the counter key for subject.
func (r Rule) Key(subject string) string {
	return "ratelimit:" + r.Name + ":" + subject
}

type Limiter interface {
	// Allow records an attempt by subject and reports whether it is within
	// the rule's limit.
	Allow(ctx context.Context, rule Rule, subject string) (bool, error)
}

// Subject identifies the actor of a request: the user when authenticated,
// otherwise the client address.
func Subject(userID string, remoteAddr string) string {
	if userID != "" {
		return "user:" + userID
	}
	return "ip:" + remoteAddr
}

// Check is Allow that returns ErrRateLimited when the limit is exceeded.
func Check(ctx context.Context, l Limiter, rule Rule, subject string) error {
	allowed, err := l.Allow(ctx, rule, subject)
	if err != nil {
		return err
	}
	if !allowed {
		return ErrRateLimited
	}
	return nil
}
