package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/blueprint-hub/hub-server/moderation"
)

const (
	defaultAPIURL  = "https://api.openai.com/v1/moderations"
	defaultTimeout = 10 * time.Second
	model          = "omni-moderation-latest"
)

// Client moderates content with the OpenAI moderation endpoint. All inputs of
// a call are sent in one request.
type Client struct {
	apiKey  string
	baseURL string
	http    *retryablehttp.Client
}

type Option func(*options)

type options struct {
	baseURL  string
	timeout  time.Duration
	retryMax int
	log      *zap.Logger
}

func WithBaseURL(url string) Option {
	return func(o *options) {
		o.baseURL = url
	}
}

func WithTimeout(timeout time.Duration) Option {
	return func(o *options) {
		o.timeout = timeout
	}
}

func WithRetryMax(retryMax int) Option {
	return func(o *options) {
		o.retryMax = retryMax
	}
}

func WithLogger(log *zap.Logger) Option {
	return func(o *options) {
		o.log = log
	}
}

// NewClient returns a *moderation.ConfigurationError if apiKey is empty.
func NewClient(apiKey string, opts ...Option) (*Client, error) {
	if apiKey == "" {
		return nil, &moderation.ConfigurationError{Setting: "automod.api_key", Reason: "is required"}
	}

	o := options{
		baseURL:  defaultAPIURL,
		timeout:  defaultTimeout,
		retryMax: 2,
		log:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(&o)
	}

	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = o.retryMax
	retryClient.RetryWaitMin = 250 * time.Millisecond
	retryClient.RetryWaitMax = 2 * time.Second
	retryClient.HTTPClient.Timeout = o.timeout
	retryClient.Logger = retryablehttp.LeveledLogger(leveledZap{o.log.Sugar()})

	return &Client{
		apiKey:  apiKey,
		baseURL: o.baseURL,
		http:    retryClient,
	}, nil
}

type requestInput struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *imageURL `json:"image_url,omitempty"`
}

type imageURL struct {
	URL string `json:"url"`
}

type moderationRequest struct {
	Model string         `json:"model"`
	Input []requestInput `json:"input"`
}

type moderationResponse struct {
	ID      string `json:"id"`
	Model   string `json:"model"`
	Results []struct {
		Flagged        bool               `json:"flagged"`
		Categories     map[string]bool    `json:"categories"`
		CategoryScores map[string]float64 `json:"category_scores"`
	} `json:"results"`
}

func (c *Client) Moderate(ctx context.Context, inputs []moderation.Input) ([]moderation.Result, error) {
	body := moderationRequest{
		Model: model,
		Input: make([]requestInput, 0, len(inputs)),
	}
	for _, in := range inputs {
		switch in.Type {
		case moderation.InputTypeText:
			body.Input = append(body.Input, requestInput{Type: string(in.Type), Text: in.Text})
		case moderation.InputTypeImageURL:
			body.Input = append(body.Input, requestInput{Type: string(in.Type), ImageURL: &imageURL{URL: in.ImageURL}})
		default:
			return nil, fmt.Errorf("unsupported input type: %s", in.Type)
		}
	}

	jsonData, err := json.Marshal(body)
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal request")
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, jsonData)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, moderation.NewServiceError(0, errors.Wrap(err, "failed to send request"))
	}
	defer resp.Body.Close()

	responseBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, moderation.NewServiceError(resp.StatusCode, errors.Wrap(err, "failed to read response body"))
	}

	if resp.StatusCode != http.StatusOK {
		return nil, moderation.NewServiceError(resp.StatusCode, fmt.Errorf("unexpected response: %s", string(responseBody)))
	}

	var parsed moderationResponse
	if err := json.Unmarshal(responseBody, &parsed); err != nil {
		return nil, moderation.NewServiceError(resp.StatusCode, errors.Wrap(err, "failed to unmarshal response"))
	}
	if len(parsed.Results) == 0 {
		return nil, moderation.NewServiceError(resp.StatusCode, errors.New("no results in response"))
	}

	results := make([]moderation.Result, len(parsed.Results))
	for i, r := range parsed.Results {
		results[i] = moderation.Result{
			Flagged:    r.Flagged,
			Categories: toCategories(r.Categories, r.CategoryScores),
		}
	}
	return results, nil
}

// toCategories merges the violation and score maps into a list sorted by name.
func toCategories(violated map[string]bool, scores map[string]float64) []moderation.Category {
	names := make(map[string]struct{}, len(scores))
	for name := range violated {
		names[name] = struct{}{}
	}
	for name := range scores {
		names[name] = struct{}{}
	}

	categories := make([]moderation.Category, 0, len(names))
	for name := range names {
		categories = append(categories, moderation.Category{
			Name:     name,
			Violated: violated[name],
			Score:    scores[name],
		})
	}
	sort.Slice(categories, func(i, j int) bool {
		return categories[i].Name < categories[j].Name
	})
	return categories
}

// leveledZap routes retryablehttp logging to zap. Intermediate request
// failures are retried, so they are logged as warnings.
type leveledZap struct {
	inner *zap.SugaredLogger
}

func (l leveledZap) Error(msg string, keysAndValues ...interface{}) {
	l.inner.Warnw(msg, keysAndValues...)
}

func (l leveledZap) Warn(msg string, keysAndValues ...interface{}) {
	l.inner.Warnw(msg, keysAndValues...)
}

func (l leveledZap) Info(msg string, keysAndValues ...interface{}) {
	l.inner.Infow(msg, keysAndValues...)
}

func (l leveledZap) Debug(msg string, keysAndValues ...interface{}) {
	l.inner.Debugw(msg, keysAndValues...)
}
