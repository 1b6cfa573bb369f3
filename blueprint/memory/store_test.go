package memory

import (
	"testing"

	"github.com/blueprint-hub/hub-server/blueprint/tests"
)

func TestBlueprint_MemoryStore(t *testing.T) {
	testStore := NewInMemory()
	teardown := func() {
		testStore.(*store).reset()
	}
	tests.RunStoreTests(t, testStore, teardown)
}
