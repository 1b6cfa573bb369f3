package notification

import (
	"fmt"
	"sort"
	"strings"
)

// Subject returns the one-line summary of a notice.
func Subject(n *Notice) string {
	return fmt.Sprintf("Flagged %s: %s", n.ContentType, n.ContentTitle)
}

// Body renders a notice as plain text. Each flagged item is listed with the
// categories it violated.
func Body(n *Notice) string {
	var b strings.Builder

	fmt.Fprintf(&b, "A %s by %s was flagged by automated moderation.\n", n.ContentType, n.AuthorName())
	fmt.Fprintf(&b, "Title: %s\n", n.ContentTitle)

	if len(n.FlaggedTexts) > 0 {
		b.WriteString("\nFlagged text:\n")
		for _, ft := range n.FlaggedTexts {
			label := ft.Text.Label
			if label == "" {
				label = "Text"
			}
			fmt.Fprintf(&b, "- %s: %q (%s)\n", label, ft.Text.Text, violations(ft.Categories, ft.CategoryScores))
		}
	}

	if len(n.FlaggedImages) > 0 {
		b.WriteString("\nFlagged images:\n")
		for _, fi := range n.FlaggedImages {
			fmt.Fprintf(&b, "- %s (%s)\n", fi.Image, violations(fi.Categories, fi.CategoryScores))
		}
	}

	if n.ReviewURL != "" {
		fmt.Fprintf(&b, "\nReview: %s\n", n.ReviewURL)
	}

	return b.String()
}

func violations(categories map[string]bool, scores map[string]float64) string {
	var names []string
	for name, violated := range categories {
		if violated {
			names = append(names, name)
		}
	}
	if len(names) == 0 {
		return "no category reported"
	}

	sort.Strings(names)
	for i, name := range names {
		names[i] = fmt.Sprintf("%s %.2f", name, scores[name])
	}
	return strings.Join(names, ", ")
}
