package memory

import (
	"context"
	"sync"

	"github.com/blueprint-hub/hub-server/moderation"
)

// Client is an in-memory moderation backend with predetermined responses. It
// records every call so tests can assert on batching.
type Client struct {
	mu sync.Mutex

	flagged bool
	results []moderation.Result
	err     error

	calls [][]moderation.Input
}

// NewClient creates a client that returns one result per input, all flagged
// or all unflagged.
func NewClient(flagged bool) *Client {
	return &Client{flagged: flagged}
}

// NewClientWithResults creates a client that returns results verbatim,
// regardless of how many inputs were submitted.
func NewClientWithResults(results ...moderation.Result) *Client {
	if results == nil {
		results = []moderation.Result{}
	}
	return &Client{results: results}
}

// NewFailingClient creates a client whose calls always fail with err.
func NewFailingClient(err error) *Client {
	return &Client{err: err}
}

func (c *Client) Moderate(_ context.Context, inputs []moderation.Input) ([]moderation.Result, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.calls = append(c.calls, append([]moderation.Input(nil), inputs...))

	if c.err != nil {
		return nil, c.err
	}

	if c.results != nil {
		return append([]moderation.Result(nil), c.results...), nil
	}

	results := make([]moderation.Result, len(inputs))
	for i := range inputs {
		results[i] = moderation.Result{
			Flagged: c.flagged,
			Categories: []moderation.Category{
				{Name: "harassment", Violated: false, Score: 0.01},
				{Name: "violence", Violated: c.flagged, Score: score(c.flagged)},
			},
		}
	}
	return results, nil
}

// Calls returns the number of Moderate calls made so far.
func (c *Client) Calls() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.calls)
}

// Inputs returns the inputs of every call, in call order.
func (c *Client) Inputs() [][]moderation.Input {
	c.mu.Lock()
	defer c.mu.Unlock()

	cloned := make([][]moderation.Input, len(c.calls))
	for i, call := range c.calls {
		cloned[i] = append([]moderation.Input(nil), call...)
	}
	return cloned
}

func (c *Client) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.calls = nil
}

func score(flagged bool) float64 {
	if flagged {
		return 0.97
	}
	return 0.02
}
