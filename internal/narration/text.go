package narration

import (
	"fmt"

	"github.com/five82/readout/internal/reddit"
)

// IntroLine announces how many threads follow.
func IntroLine(total int) string {
	return fmt.Sprintf("Hello! Here are the top %d threads from Reddit.", total)
}

// ThreadLine is the utterance for the thread at 1-based position.
func ThreadLine(position int, post reddit.Post) string {
	return fmt.Sprintf("%d: %s. Posted by %s.", position, post.Title, post.Author)
}

// OutroLine closes a completed run.
func OutroLine(total int) string {
	return fmt.Sprintf("That's all for now. You have heard the top %d threads from Reddit. Goodbye!", total)
}
