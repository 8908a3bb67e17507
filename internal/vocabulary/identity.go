package vocabulary

import (
	"strings"

	"github.com/google/uuid"
)

// entryNamespace scopes the name-based entry IDs
var entryNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/example/vocabdrill/entries"))

// Normalize folds a source text into its comparison form: trimmed, lower-cased, single spaces
func Normalize(text string) string {
	return strings.Join(strings.Fields(strings.ToLower(text)), " ")
}

// EntryID derives the stable ID of a word from its source text.
// The same word always maps to the same ID regardless of case or spacing.
func EntryID(sourceText string) string {
	return uuid.NewSHA1(entryNamespace, []byte(Normalize(sourceText))).String()
}
