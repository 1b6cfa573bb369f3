package moderation

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEvaluate_CursorsAdvanceIndependently(t *testing.T) {
	texts := []Text{{Text: "Bad", Label: "Title"}}
	images := []Image{&Upload{Filename: "image.jpg"}}
	inputs := []Input{{Type: InputTypeText}, {Type: InputTypeImageURL}}

	verdict := evaluate(texts, images, inputs, []Result{
		{Flagged: false},
		{Flagged: true, Categories: []Category{{Name: "sexual", Violated: true, Score: 0.9}}},
	})

	require.False(t, verdict.Passed)
	require.Empty(t, verdict.FlaggedTexts)
	require.Equal(t, []FlaggedImage{{
		Image:          "image.jpg",
		Categories:     map[string]bool{"sexual": true},
		CategoryScores: map[string]float64{"sexual": 0.9},
	}}, verdict.FlaggedImages)
}

func TestEvaluate_DanglingIndex(t *testing.T) {
	texts := []Text{{Text: "Hello", Label: "Title"}}
	inputs := []Input{{Type: InputTypeText}}

	verdict := evaluate(texts, nil, inputs, []Result{{Flagged: false}, {Flagged: true}})
	require.False(t, verdict.Passed)
	require.Empty(t, verdict.FlaggedTexts)
	require.Empty(t, verdict.FlaggedImages)

	verdict = evaluate(texts, nil, inputs, []Result{{Flagged: false}, {Flagged: false}})
	require.True(t, verdict.Passed)
}

func TestEvaluate_FlaggedImageWithoutImage(t *testing.T) {
	verdict := evaluate(nil, nil, []Input{{Type: InputTypeImageURL}}, []Result{{Flagged: true}})
	require.False(t, verdict.Passed)
	require.Empty(t, verdict.FlaggedImages)
}

func TestEvaluate_TextFallsBackToFirst(t *testing.T) {
	texts := []Text{{Text: "one", Label: "Title"}}
	inputs := []Input{{Type: InputTypeText}, {Type: InputTypeText}}

	verdict := evaluate(texts, nil, inputs, []Result{{Flagged: false}, {Flagged: true}})
	require.Len(t, verdict.FlaggedTexts, 1)
	require.Equal(t, texts[0], verdict.FlaggedTexts[0].Text)

	verdict = evaluate(nil, nil, inputs[:1], []Result{{Flagged: true}})
	require.Len(t, verdict.FlaggedTexts, 1)
	require.Equal(t, Text{}, verdict.FlaggedTexts[0].Text)
}
