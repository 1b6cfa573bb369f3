package memory

import (
	"context"
	"sync"

	"github.com/blueprint-hub/hub-server/account"
	"github.com/blueprint-hub/hub-server/notification"
)

type Sent struct {
	Recipient *account.User
	Notice    *notification.Notice
}

// Notifier records sent notices.
type Notifier struct {
	mu   sync.Mutex
	sent []Sent
	err  error
}

func NewNotifier() *Notifier {
	return &Notifier{}
}

// NewFailingNotifier creates a notifier whose sends fail with err. Attempts
// are still recorded.
func NewFailingNotifier(err error) *Notifier {
	return &Notifier{err: err}
}

func (n *Notifier) Send(_ context.Context, recipient *account.User, notice *notification.Notice) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.sent = append(n.sent, Sent{Recipient: recipient.Clone(), Notice: notice})
	return n.err
}

func (n *Notifier) Sent() []Sent {
	n.mu.Lock()
	defer n.mu.Unlock()

	return append([]Sent(nil), n.sent...)
}

func (n *Notifier) Reset() {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.sent = nil
}
