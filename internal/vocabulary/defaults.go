package vocabulary

import "github.com/example/vocabdrill/pkg/models"

var defaultWords = []struct{ english, hindi string }{
	{"Hello", "नमस्ते"},
	{"Goodbye", "अलविदा"},
	{"Thank you", "धन्यवाद"},
	{"Please", "कृपया"},
	{"Sorry", "माफ कीजिए"},
	{"Yes", "हाँ"},
	{"No", "नहीं"},
	{"Water", "पानी"},
	{"Food", "भोजन"},
	{"Friend", "दोस्त"},
	{"House", "घर"},
	{"Book", "किताब"},
	{"School", "स्कूल"},
	{"Teacher", "शिक्षक"},
	{"Student", "छात्र"},
	{"Mother", "माँ"},
	{"Father", "पिता"},
	{"Sister", "बहन"},
	{"Brother", "भाई"},
	{"Family", "परिवार"},
}

// Defaults returns the built-in word list used when no word files are found
func Defaults() []*models.VocabularyEntry {
	entries := make([]*models.VocabularyEntry, 0, len(defaultWords))
	for _, w := range defaultWords {
		entries = append(entries, newEntry(rawEntry{Source: w.english, Target: w.hindi, Category: "basics"}))
	}
	return entries
}
