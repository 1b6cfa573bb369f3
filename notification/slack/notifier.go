package slack

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"go.uber.org/zap"

	"github.com/blueprint-hub/hub-server/account"
	"github.com/blueprint-hub/hub-server/notification"
)

// Notifier posts notices to a Slack channel via an incoming webhook. The
// webhook must already be configured in the Slack workspace.
type Notifier struct {
	log        *zap.Logger
	webhookURL string
	client     *http.Client
}

func NewNotifier(log *zap.Logger, webhookURL string) *Notifier {
	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = 3
	retryClient.RetryWaitMin = 1 * time.Second
	retryClient.RetryWaitMax = 10 * time.Second
	retryClient.Logger = retryablehttp.LeveledLogger(leveledZap{log.Sugar()})

	client := retryClient.StandardClient()
	client.Timeout = 20 * time.Second

	return &Notifier{
		log:        log,
		webhookURL: webhookURL,
		client:     client,
	}
}

type webhookBody struct {
	Text string `json:"text"`
}

func (n *Notifier) Send(ctx context.Context, recipient *account.User, notice *notification.Notice) error {
	msg := fmt.Sprintf("@%s *%s*\n%s", recipient.Username, notification.Subject(notice), notification.Body(notice))

	body, err := json.Marshal(webhookBody{Text: msg})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.webhookURL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Add("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK || string(respBody) != "ok" {
		return fmt.Errorf("failed slack webhook POST request. status=%d", resp.StatusCode)
	}

	n.log.Debug("Sent slack notification", zap.String("recipient", recipient.Username))
	return nil
}

type leveledZap struct {
	inner *zap.SugaredLogger
}

// re-writes HTTP client ERROR to WARN level (because of retries)
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
