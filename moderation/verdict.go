package moderation

// FlaggedText is a text fragment the moderation service flagged.
type FlaggedText struct {
	Text           Text               `json:"text"`
	Categories     map[string]bool    `json:"categories"`
	CategoryScores map[string]float64 `json:"category_scores"`
}

// FlaggedImage is an image the moderation service flagged.
type FlaggedImage struct {
	Image          string             `json:"image"`
	Categories     map[string]bool    `json:"categories"`
	CategoryScores map[string]float64 `json:"category_scores"`
}

// Verdict is the outcome of a moderation pass.
type Verdict struct {
	Passed        bool           `json:"passed"`
	FlaggedTexts  []FlaggedText  `json:"flagged_texts"`
	FlaggedImages []FlaggedImage `json:"flagged_images"`
}

func (v *Verdict) Fails() bool {
	return !v.Passed
}

func passedVerdict() *Verdict {
	return &Verdict{
		Passed:        true,
		FlaggedTexts:  []FlaggedText{},
		FlaggedImages: []FlaggedImage{},
	}
}

// evaluate reconciles raw results with the submitted inputs and the original
// texts and images they were built from.
//
// Each input type has its own cursor into the originals. Since all texts are
// merged into one input, a flagged text entry is attributed to the text at the
// cursor (in practice the first text), not to the fragment that triggered it.
func evaluate(texts []Text, images []Image, inputs []Input, results []Result) *Verdict {
	verdict := passedVerdict()

	var textCursor, imageCursor int
	var unattributed bool

	for i, result := range results {
		if i >= len(inputs) {
			if result.Flagged {
				unattributed = true
			}
			continue
		}

		switch inputs[i].Type {
		case InputTypeText:
			if result.Flagged {
				categories, scores := splitCategories(result.Categories)
				verdict.FlaggedTexts = append(verdict.FlaggedTexts, FlaggedText{
					Text:           textAt(texts, textCursor),
					Categories:     categories,
					CategoryScores: scores,
				})
			}
			textCursor++

		case InputTypeImageURL:
			if result.Flagged {
				name, ok := imageAt(images, imageCursor)
				if ok {
					categories, scores := splitCategories(result.Categories)
					verdict.FlaggedImages = append(verdict.FlaggedImages, FlaggedImage{
						Image:          name,
						Categories:     categories,
						CategoryScores: scores,
					})
				} else {
					unattributed = true
				}
			}
			imageCursor++
		}
	}

	verdict.Passed = len(verdict.FlaggedTexts) == 0 && len(verdict.FlaggedImages) == 0 && !unattributed
	return verdict
}

func splitCategories(categories []Category) (map[string]bool, map[string]float64) {
	violated := make(map[string]bool, len(categories))
	scores := make(map[string]float64, len(categories))
	for _, c := range categories {
		violated[c.Name] = c.Violated
		scores[c.Name] = c.Score
	}
	return violated, scores
}

func textAt(texts []Text, i int) Text {
	if i < len(texts) {
		return texts[i]
	}
	if len(texts) > 0 {
		return texts[0]
	}
	return Text{}
}

func imageAt(images []Image, i int) (string, bool) {
	if i < len(images) {
		return images[i].Name(), true
	}
	if len(images) > 0 {
		return images[0].Name(), true
	}
	return "", false
}
