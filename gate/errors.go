package gate

import (
	"fmt"

	"github.com/blueprint-hub/hub-server/moderation"
)

// RejectionError is returned when content fails moderation under
// PolicyReject. Nothing was written.
type RejectionError struct {
	ContentType ContentType
	Verdict     *moderation.Verdict
}

func (e *RejectionError) Error() string {
	return fmt.Sprintf("%s failed moderation: %d flagged texts, %d flagged images",
		e.ContentType, len(e.Verdict.FlaggedTexts), len(e.Verdict.FlaggedImages))
}
