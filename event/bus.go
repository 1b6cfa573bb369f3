package event

import (
	"sync"
	"time"

	"github.com/blueprint-hub/hub-server/model"
)

// CommentEvent is published after a comment is written.
type CommentEvent struct {
	CommentID   model.CommentID
	BlueprintID model.BlueprintID
	Timestamp   time.Time
}

type Handler[Key, Event any] interface {
	OnEvent(key Key, e Event)
}

// HandlerFunc is an adapter to allow the use of ordinary
// functions as Handlers.
type HandlerFunc[Key, Event any] func(Key, Event)

// OnEvent calls f(key, e).
func (f HandlerFunc[Key, Event]) OnEvent(key Key, e Event) {
	f(key, e)
}

// Bus dispatches events to every handler on its own goroutine. Delivery is
// in-process only; events published before shutdown may be lost.
type Bus[Key, Event any] struct {
	handlersMu sync.RWMutex
	handlers   []Handler[Key, Event]

	inflight sync.WaitGroup
}

func NewBus[Key, Event any]() *Bus[Key, Event] {
	return &Bus[Key, Event]{
		handlersMu: sync.RWMutex{},
		handlers:   nil,
	}
}

// NewCommentBus returns a bus keyed by the comment's blueprint.
func NewCommentBus() *Bus[model.BlueprintID, *CommentEvent] {
	return NewBus[model.BlueprintID, *CommentEvent]()
}

func (b *Bus[Key, Event]) AddHandler(h Handler[Key, Event]) {
	b.handlersMu.Lock()
	b.handlers = append(b.handlers, h)
	b.handlersMu.Unlock()
}

func (b *Bus[Key, Event]) OnEvent(key Key, e Event) error {
	b.handlersMu.RLock()
	// Copy handlers to prevent race conditions
	handlers := make([]Handler[Key, Event], len(b.handlers))
	copy(handlers, b.handlers)
	b.handlersMu.RUnlock()

	// Execute handlers outside the lock
	b.inflight.Add(len(handlers))
	for _, h := range handlers {
		go func(h Handler[Key, Event]) {
			defer b.inflight.Done()
			h.OnEvent(key, e)
		}(h)
	}

	return nil
}

// Wait blocks until every dispatched handler has returned. It is used on
// shutdown and in tests.
func (b *Bus[Key, Event]) Wait() {
	b.inflight.Wait()
}
