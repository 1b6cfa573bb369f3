package tests

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/blueprint-hub/hub-server/moderation"
)

// A 1x1 transparent PNG.
const testImageURL = "data:image/png;base64,iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAQAAAC1HAwCAAAAC0lEQVR42mNkYAAAAAYAAjCB0C8AAAAASUVORK5CYII="

func RunFlaggedModerationTests(t *testing.T, client moderation.Client, teardown func()) {
	for _, tf := range []func(t *testing.T, client moderation.Client){
		testFlaggedTextClassification,
		testFlaggedBatchClassification,
	} {
		tf(t, client)
		teardown()
	}
}

func RunUnflaggedModerationTests(t *testing.T, client moderation.Client, teardown func()) {
	for _, tf := range []func(t *testing.T, client moderation.Client){
		testUnflaggedTextClassification,
		testUnflaggedBatchClassification,
	} {
		tf(t, client)
		teardown()
	}
}

func testFlaggedTextClassification(t *testing.T, client moderation.Client) {
	t.Run("Flagged text", func(t *testing.T) {
		results, err := client.Moderate(context.Background(), []moderation.Input{
			{Type: moderation.InputTypeText, Text: `"Title: I will hurt you and everyone you love."`},
		})
		require.NoError(t, err)
		require.Len(t, results, 1)
		require.True(t, results[0].Flagged)
		requireViolation(t, results[0])
	})
}

func testUnflaggedTextClassification(t *testing.T, client moderation.Client) {
	t.Run("Non-flagged text", func(t *testing.T) {
		results, err := client.Moderate(context.Background(), []moderation.Input{
			{Type: moderation.InputTypeText, Text: `"Title: Compact smelting array\nDescription: 48 furnaces, belt fed."`},
		})
		require.NoError(t, err)
		require.Len(t, results, 1)
		require.False(t, results[0].Flagged)
	})
}

func testFlaggedBatchClassification(t *testing.T, client moderation.Client) {
	t.Run("Flagged batch", func(t *testing.T) {
		results, err := client.Moderate(context.Background(), []moderation.Input{
			{Type: moderation.InputTypeText, Text: `"Title: I will hurt you and everyone you love."`},
			{Type: moderation.InputTypeImageURL, ImageURL: testImageURL},
		})
		require.NoError(t, err)
		require.Len(t, results, 2)
		require.True(t, results[0].Flagged)
	})
}

func testUnflaggedBatchClassification(t *testing.T, client moderation.Client) {
	t.Run("Non-flagged batch", func(t *testing.T) {
		results, err := client.Moderate(context.Background(), []moderation.Input{
			{Type: moderation.InputTypeText, Text: `"Title: Compact smelting array"`},
			{Type: moderation.InputTypeImageURL, ImageURL: testImageURL},
		})
		require.NoError(t, err)
		require.Len(t, results, 2)
		for _, result := range results {
			require.False(t, result.Flagged)
		}
	})
}

func requireViolation(t *testing.T, result moderation.Result) {
	for _, category := range result.Categories {
		if category.Violated {
			return
		}
	}
	t.Fatalf("expected at least one violated category, got %+v", result.Categories)
}
