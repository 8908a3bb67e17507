package vocabulary

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/sirupsen/logrus"

	"github.com/example/vocabdrill/internal/logger"
	"github.com/example/vocabdrill/pkg/models"
)

// Keys that may wrap the word list inside a JSON object, in lookup order
var listKeys = []string{"content", "words", "data", "vocabulary", "items"}

var (
	sourceKeys   = []string{"english", "English", "word", "Word", "en", "text", "source", "source_text"}
	targetKeys   = []string{"hindi", "Hindi", "translation", "Translation", "meaning", "hi", "target", "target_text"}
	phoneticKeys = []string{"phonetic", "pronunciation", "transcription"}
	hintKeys     = []string{"hint", "mnemonic", "tip"}
	iconKeys     = []string{"emoji", "icon"}
)

// rawEntry holds the fields extracted from a loosely structured source
type rawEntry struct {
	ID         string
	Source     string
	Target     string
	Phonetic   string
	Category   string
	Difficulty string
	Example    string
	Hint       string
	Icon       string
}

// LoadFile reads a word list from a JSON file.
// The top level may be a list, an object wrapping a list under one of the
// listKeys, or a flat {"word": "translation"} object.
func LoadFile(path string) ([]*models.VocabularyEntry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read word list %s: %w", path, err)
	}
	entries, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse word list %s: %w", path, err)
	}
	return entries, nil
}

// Parse extracts entries from JSON data
func Parse(data []byte) ([]*models.VocabularyEntry, error) {
	var doc interface{}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}

	var raws []rawEntry
	switch v := doc.(type) {
	case []interface{}:
		raws = fromList(v)
	case map[string]interface{}:
		if list, ok := findList(v); ok {
			raws = fromList(list)
		} else {
			raws = fromMap(v)
		}
	default:
		return nil, fmt.Errorf("unsupported top-level JSON type %T", doc)
	}

	entries := make([]*models.VocabularyEntry, 0, len(raws))
	for _, r := range raws {
		if strings.TrimSpace(r.Source) == "" {
			continue
		}
		entries = append(entries, newEntry(r))
	}
	return entries, nil
}

// LoadDir loads every *.json word list in dir, skipping files named in exclude.
// Files that cannot be parsed are logged and skipped.
func LoadDir(dir string, exclude ...string) ([]*models.VocabularyEntry, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return nil, fmt.Errorf("failed to list word files in %s: %w", dir, err)
	}
	sort.Strings(paths)

	skip := make(map[string]bool, len(exclude))
	for _, name := range exclude {
		skip[name] = true
	}

	log := logger.New("vocabulary")
	var all []*models.VocabularyEntry
	for _, path := range paths {
		if skip[filepath.Base(path)] {
			continue
		}
		entries, err := LoadFile(path)
		if err != nil {
			log.WithError(err).WithField("file", path).Warn("Skipping word list")
			continue
		}
		log.WithField("file", path).WithField("words", len(entries)).Debug("Loaded word list")
		all = append(all, entries...)
	}

	// An explicit ID reused by another file for a different word
	owner := make(map[string]string, len(all))
	for _, e := range all {
		word := Normalize(e.SourceText)
		if prev, ok := owner[e.ID]; ok && prev != word {
			id := EntryID(e.SourceText)
			log.WithFields(logrus.Fields{"id": e.ID, "word": e.SourceText}).Warn("Word ID already used by another word, deriving a new one")
			e.ID = id
		}
		if _, ok := owner[e.ID]; !ok {
			owner[e.ID] = word
		}
	}
	return Dedupe(all), nil
}

// Dedupe keeps the first entry for every ID and every word, preserving order
func Dedupe(entries []*models.VocabularyEntry) []*models.VocabularyEntry {
	seenID := make(map[string]bool, len(entries))
	seenWord := make(map[string]bool, len(entries))
	out := make([]*models.VocabularyEntry, 0, len(entries))
	for _, e := range entries {
		if e == nil {
			continue
		}
		word := Normalize(e.SourceText)
		if seenID[e.ID] || seenWord[word] {
			continue
		}
		seenID[e.ID] = true
		seenWord[word] = true
		out = append(out, e)
	}
	return out
}

func findList(obj map[string]interface{}) ([]interface{}, bool) {
	for _, key := range listKeys {
		if list, ok := obj[key].([]interface{}); ok {
			return list, true
		}
	}
	return nil, false
}

func fromList(list []interface{}) []rawEntry {
	raws := make([]rawEntry, 0, len(list))
	for _, item := range list {
		switch v := item.(type) {
		case string:
			raws = append(raws, rawEntry{Source: v})
		case map[string]interface{}:
			raws = append(raws, fromObject(v))
		}
	}
	return raws
}

// fromMap handles {"Hello": "नमस्ते"} style files
func fromMap(obj map[string]interface{}) []rawEntry {
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	raws := make([]rawEntry, 0, len(keys))
	for _, k := range keys {
		if target, ok := obj[k].(string); ok {
			raws = append(raws, rawEntry{Source: k, Target: target})
		}
	}
	return raws
}

func fromObject(obj map[string]interface{}) rawEntry {
	return rawEntry{
		ID:         explicitID(obj),
		Source:     field(obj, sourceKeys...),
		Target:     field(obj, targetKeys...),
		Phonetic:   field(obj, phoneticKeys...),
		Category:   field(obj, "category", "Category", "topic"),
		Difficulty: field(obj, "difficulty", "level"),
		Example:    field(obj, "example", "Example", "sentence"),
		Hint:       field(obj, hintKeys...),
		Icon:       field(obj, iconKeys...),
	}
}

// explicitID returns the "id" value when it names the word itself.
// Numeric ids are positions inside one file and are dropped so the ID is
// derived from the source text instead.
func explicitID(obj map[string]interface{}) string {
	id, ok := obj["id"].(string)
	if !ok {
		return ""
	}
	id = strings.TrimSpace(id)
	if _, err := strconv.ParseFloat(id, 64); err == nil {
		return ""
	}
	return id
}

// field returns the first non-empty value stored under one of keys
func field(obj map[string]interface{}, keys ...string) string {
	for _, key := range keys {
		switch v := obj[key].(type) {
		case string:
			if s := strings.TrimSpace(v); s != "" {
				return s
			}
		case float64:
			return strconv.FormatFloat(v, 'f', -1, 64)
		}
	}
	return ""
}

func newEntry(r rawEntry) *models.VocabularyEntry {
	source := strings.TrimSpace(r.Source)
	e := &models.VocabularyEntry{
		ID:         r.ID,
		SourceText: source,
		TargetText: strings.TrimSpace(r.Target),
		Phonetic:   r.Phonetic,
		Category:   r.Category,
		Difficulty: r.Difficulty,
		Example:    r.Example,
		Hint:       r.Hint,
		Icon:       r.Icon,
	}
	if e.ID == "" {
		e.ID = EntryID(source)
	}
	if e.Icon == "" {
		e.Icon = firstLetter(source)
	}
	if e.Phonetic == "" {
		e.Phonetic = "/" + strings.ReplaceAll(strings.ToLower(source), " ", "_") + "/"
	}
	return e
}

func firstLetter(s string) string {
	r, _ := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return ""
	}
	return string(unicode.ToUpper(r))
}

// NewEntry builds an entry for source and target, deriving the ID, icon and
// phonetic placeholder the same way word files do
func NewEntry(source, target string) *models.VocabularyEntry {
	return newEntry(rawEntry{Source: source, Target: target})
}
