package ui

import (
	"path/filepath"
	"strings"

	"github.com/five82/readout/internal/paths"
)

// thumbnailSentinels are values reddit puts in the thumbnail field when a
// post has no real image.
var thumbnailSentinels = map[string]struct{}{
	"":        {},
	"self":    {},
	"default": {},
	"nsfw":    {},
	"spoiler": {},
	"image":   {},
	"null":    {},
}

// thumbnailLabel returns the file name to show for a thumbnail reference,
// or "" when the reference is a sentinel or does not name an existing file.
// resolve maps a reference to a local path.
func thumbnailLabel(ref string, resolve func(string) string) string {
	ref = strings.TrimSpace(ref)
	if _, ok := thumbnailSentinels[strings.ToLower(ref)]; ok {
		return ""
	}
	path := ref
	if resolve != nil {
		path = resolve(ref)
	}
	if !paths.Exists(path) {
		return ""
	}
	return filepath.Base(path)
}
