package moderation_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/blueprint-hub/hub-server/moderation"
	"github.com/blueprint-hub/hub-server/moderation/memory"
)

func TestAutoMod_EmptyInputSkipsService(t *testing.T) {
	client := memory.NewClient(true)
	automod := moderation.New(zap.NewNop(), client)

	verdict, err := automod.Evaluate(context.Background(), nil, nil)
	require.NoError(t, err)
	require.True(t, verdict.Passed)
	require.Empty(t, verdict.FlaggedTexts)
	require.Empty(t, verdict.FlaggedImages)

	verdict, err = automod.Validate(context.Background(), moderation.NewRequest().AddText("", "Title"))
	require.NoError(t, err)
	require.True(t, verdict.Passed)

	require.Equal(t, 0, client.Calls())
}

func TestAutoMod_SingleBatchedCall(t *testing.T) {
	client := memory.NewClient(false)
	automod := moderation.New(zap.NewNop(), client)

	req := moderation.NewRequest().
		AddText("My Blueprint", "Title").
		AddText("A compact smelter", "Description").
		AddImages(
			&moderation.Upload{Filename: "a.jpg", ContentType: "image/jpeg", Data: []byte{0xff, 0xd8}},
			&moderation.Upload{Filename: "b.jpg", ContentType: "image/jpeg", Data: []byte{0xff, 0xd8}},
		)

	verdict, err := automod.Validate(context.Background(), req)
	require.NoError(t, err)
	require.True(t, verdict.Passed)

	require.Equal(t, 1, client.Calls())
	inputs := client.Inputs()[0]
	require.Len(t, inputs, 2)
	require.Equal(t, moderation.InputTypeText, inputs[0].Type)
	require.Equal(t, moderation.InputTypeImageURL, inputs[1].Type)
}

func TestAutoMod_Idempotent(t *testing.T) {
	client := memory.NewClientWithResults(moderation.Result{
		Flagged:    true,
		Categories: []moderation.Category{{Name: "hate", Violated: true, Score: 0.95}},
	})
	automod := moderation.New(zap.NewNop(), client)

	texts := []moderation.Text{{Text: "Bad", Label: "Title"}}

	first, err := automod.Evaluate(context.Background(), texts, nil)
	require.NoError(t, err)
	second, err := automod.Evaluate(context.Background(), texts, nil)
	require.NoError(t, err)

	require.Equal(t, first, second)
	require.Equal(t, client.Inputs()[0], client.Inputs()[1])
}

func TestAutoMod_PassingText(t *testing.T) {
	client := memory.NewClientWithResults(moderation.Result{Flagged: false})
	automod := moderation.New(zap.NewNop(), client)

	verdict, err := automod.Evaluate(context.Background(), []moderation.Text{{Text: "Hello world", Label: "Title"}}, nil)
	require.NoError(t, err)
	require.True(t, verdict.Passed)
	require.Empty(t, verdict.FlaggedTexts)
	require.Empty(t, verdict.FlaggedImages)
}

func TestAutoMod_FlaggedText(t *testing.T) {
	client := memory.NewClientWithResults(moderation.Result{
		Flagged:    true,
		Categories: []moderation.Category{{Name: "hate", Violated: true, Score: 0.95}},
	})
	automod := moderation.New(zap.NewNop(), client)

	verdict, err := automod.Evaluate(context.Background(), []moderation.Text{{Text: "Bad", Label: "Title"}}, nil)
	require.NoError(t, err)
	require.False(t, verdict.Passed)
	require.True(t, verdict.Fails())
	require.Equal(t, []moderation.FlaggedText{{
		Text:           moderation.Text{Text: "Bad", Label: "Title"},
		Categories:     map[string]bool{"hate": true},
		CategoryScores: map[string]float64{"hate": 0.95},
	}}, verdict.FlaggedTexts)
	require.Empty(t, verdict.FlaggedImages)
}

func TestAutoMod_FlaggedImage(t *testing.T) {
	client := memory.NewClientWithResults(moderation.Result{
		Flagged: true,
		Categories: []moderation.Category{
			{Name: "sexual", Violated: true, Score: 0.9},
			{Name: "violence", Violated: false, Score: 0.1},
		},
	})
	automod := moderation.New(zap.NewNop(), client)

	image := &moderation.Upload{Filename: "image.jpg", ContentType: "image/jpeg", Data: []byte{0xff, 0xd8, 0xff}}

	verdict, err := automod.Evaluate(context.Background(), nil, []moderation.Image{image})
	require.NoError(t, err)
	require.False(t, verdict.Passed)
	require.Empty(t, verdict.FlaggedTexts)
	require.Equal(t, []moderation.FlaggedImage{{
		Image:          "image.jpg",
		Categories:     map[string]bool{"sexual": true, "violence": false},
		CategoryScores: map[string]float64{"sexual": 0.9, "violence": 0.1},
	}}, verdict.FlaggedImages)

	require.Len(t, client.Inputs()[0], 1)
}

func TestAutoMod_ServiceErrorFailsOpen(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	client := memory.NewFailingClient(moderation.NewServiceError(503, errors.New("unavailable")))
	automod := moderation.New(zap.New(core), client)

	verdict, err := automod.Evaluate(context.Background(), []moderation.Text{{Text: "Bad", Label: "Title"}}, nil)
	require.NoError(t, err)
	require.True(t, verdict.Passed)
	require.Empty(t, verdict.FlaggedTexts)
	require.Empty(t, verdict.FlaggedImages)

	entries := logs.FilterMessage("Moderation service unavailable, allowing content").All()
	require.Len(t, entries, 1)
	require.Equal(t, zapcore.WarnLevel, entries[0].Level)
	require.Contains(t, entries[0].ContextMap()["error"], "unavailable")
}

func TestAutoMod_TimeoutFailsOpen(t *testing.T) {
	automod := moderation.New(zap.NewNop(), blockingClient{}, moderation.WithTimeout(10*time.Millisecond))

	verdict, err := automod.Evaluate(context.Background(), []moderation.Text{{Text: "Hello", Label: "Title"}}, nil)
	require.NoError(t, err)
	require.True(t, verdict.Passed)
}

func TestAutoMod_DanglingFlaggedResult(t *testing.T) {
	client := memory.NewClientWithResults(
		moderation.Result{Flagged: false},
		moderation.Result{Flagged: true},
	)
	automod := moderation.New(zap.NewNop(), client)

	verdict, err := automod.Evaluate(context.Background(), []moderation.Text{{Text: "Hello", Label: "Title"}}, nil)
	require.NoError(t, err)
	require.False(t, verdict.Passed)
	require.Empty(t, verdict.FlaggedTexts)
	require.Empty(t, verdict.FlaggedImages)
}

func TestAutoMod_ImageNotFoundPropagates(t *testing.T) {
	client := memory.NewClient(false)
	automod := moderation.New(zap.NewNop(), client)

	_, err := automod.Evaluate(context.Background(), nil, []moderation.Image{moderation.File("/does/not/exist.png")})

	var notFound *moderation.ImageNotFoundError
	require.True(t, errors.As(err, &notFound))
	require.Equal(t, 0, client.Calls())
}

func TestAutoMod_Fails(t *testing.T) {
	automod := moderation.New(zap.NewNop(), memory.NewClient(true))

	fails, verdict, err := automod.Fails(context.Background(), moderation.NewRequest().AddText("Bad", "Title"))
	require.NoError(t, err)
	require.True(t, fails)
	require.Len(t, verdict.FlaggedTexts, 1)
}

type blockingClient struct{}

func (blockingClient) Moderate(ctx context.Context, _ []moderation.Input) ([]moderation.Result, error) {
	<-ctx.Done()
	return nil, moderation.NewServiceError(0, ctx.Err())
}
