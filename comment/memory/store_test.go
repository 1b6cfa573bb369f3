package memory

import (
	"testing"

	"github.com/blueprint-hub/hub-server/comment/tests"
)

func TestComment_MemoryStore(t *testing.T) {
	testStore := NewInMemory()
	teardown := func() {
		testStore.(*store).reset()
	}
	tests.RunStoreTests(t, testStore, teardown)
}
