package moderation

import (
	"context"
	"time"

	"go.uber.org/zap"
)

const DefaultTimeout = 10 * time.Second

// AutoMod runs moderation passes against a Client. It holds no per-request
// state and is safe for concurrent use.
type AutoMod struct {
	log     *zap.Logger
	client  Client
	timeout time.Duration
}

type Option func(*AutoMod)

// WithTimeout bounds each moderation call. A call that times out is treated
// like any other service failure.
func WithTimeout(timeout time.Duration) Option {
	return func(a *AutoMod) {
		if timeout > 0 {
			a.timeout = timeout
		}
	}
}

func New(log *zap.Logger, client Client, opts ...Option) *AutoMod {
	a := &AutoMod{
		log:     log,
		client:  client,
		timeout: DefaultTimeout,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Validate runs a single moderation pass over req.
//
// An empty request passes without calling the service. If the service fails,
// the failure is logged and the request passes. The only error returned is
// *ImageNotFoundError when an image cannot be read.
func (a *AutoMod) Validate(ctx context.Context, req *Request) (*Verdict, error) {
	if req == nil || req.IsEmpty() {
		checksTotal.WithLabelValues(outcomeSkipped).Inc()
		return passedVerdict(), nil
	}

	inputs, err := req.payload(ctx)
	if err != nil {
		return nil, err
	}

	callCtx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	start := time.Now()
	results, err := a.client.Moderate(callCtx, inputs)
	checkDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		a.log.Warn("Moderation service unavailable, allowing content", zap.Error(err))
		checksTotal.WithLabelValues(outcomeError).Inc()
		return passedVerdict(), nil
	}

	verdict := evaluate(req.texts, req.images, inputs, results)
	if verdict.Passed {
		checksTotal.WithLabelValues(outcomePassed).Inc()
	} else {
		checksTotal.WithLabelValues(outcomeFlagged).Inc()
		a.log.Debug("Content flagged",
			zap.Int("flagged_texts", len(verdict.FlaggedTexts)),
			zap.Int("flagged_images", len(verdict.FlaggedImages)),
		)
	}

	return verdict, nil
}

// Evaluate is Validate over a list of texts and images.
func (a *AutoMod) Evaluate(ctx context.Context, texts []Text, images []Image) (*Verdict, error) {
	req := NewRequest()
	for _, t := range texts {
		req.AddText(t.Text, t.Label)
	}
	req.AddImages(images...)

	return a.Validate(ctx, req)
}

// Fails reports whether req fails moderation.
func (a *AutoMod) Fails(ctx context.Context, req *Request) (bool, *Verdict, error) {
	verdict, err := a.Validate(ctx, req)
	if err != nil {
		return false, nil, err
	}
	return verdict.Fails(), verdict, nil
}
