package event

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/blueprint-hub/hub-server/model"
)

func TestBus_DispatchesToEveryHandler(t *testing.T) {
	bus := NewCommentBus()

	var mu sync.Mutex
	var received []string

	for _, name := range []string{"a", "b"} {
		name := name
		bus.AddHandler(HandlerFunc[model.BlueprintID, *CommentEvent](func(_ model.BlueprintID, e *CommentEvent) {
			mu.Lock()
			defer mu.Unlock()
			received = append(received, name+":"+e.CommentID.String())
		}))
	}

	commentID := model.MustGenerateCommentID()
	blueprintID := model.MustGenerateBlueprintID()
	require.NoError(t, bus.OnEvent(blueprintID, &CommentEvent{
		CommentID:   commentID,
		BlueprintID: blueprintID,
		Timestamp:   time.Now(),
	}))
	bus.Wait()

	require.ElementsMatch(t, []string{"a:" + commentID.String(), "b:" + commentID.String()}, received)
}

func TestBus_NoHandlers(t *testing.T) {
	bus := NewCommentBus()
	require.NoError(t, bus.OnEvent(model.MustGenerateBlueprintID(), &CommentEvent{}))
	bus.Wait()
}
