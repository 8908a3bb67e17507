package excel

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/example/vocabdrill/internal/vocabulary"
	"github.com/example/vocabdrill/pkg/models"
)

var errBlankRow = errors.New("blank row")

// ImportConfig defines the import configuration
type ImportConfig struct {
	FilePath         string // Path to the Excel or CSV file
	SourceColumn     string // Column with the word
	TargetColumn     string // Column with the translation
	PhoneticColumn   string // Column with the pronunciation
	CategoryColumn   string // Column with the category
	DifficultyColumn string // Column with the difficulty
	ExampleColumn    string // Column with an example sentence
	HintColumn       string // Column with a hint
	SheetName        string // Name of the sheet to import, first sheet when empty
	StartRow         int    // The row to start importing from (1-based index)
	DefaultCategory  string // Category used until a header row sets one
}

// DefaultImportConfig returns the default import configuration
func DefaultImportConfig() ImportConfig {
	return ImportConfig{
		SourceColumn:     "A",
		TargetColumn:     "B",
		PhoneticColumn:   "C",
		CategoryColumn:   "D",
		DifficultyColumn: "E",
		ExampleColumn:    "F",
		HintColumn:       "G",
		StartRow:         2, // skip header
	}
}

// ImportResult holds the result of an import operation
type ImportResult struct {
	TotalProcessed int
	Created        int
	Skipped        int
	Errors         []string
}

// Import reads words from an Excel or CSV file
func Import(config ImportConfig) ([]*models.VocabularyEntry, *ImportResult, error) {
	var (
		rows [][]string
		err  error
	)
	if strings.ToLower(filepath.Ext(config.FilePath)) == ".csv" {
		rows, err = readCSV(config.FilePath)
	} else {
		rows, err = readExcel(config.FilePath, config.SheetName)
	}
	if err != nil {
		return nil, nil, err
	}
	entries, result := importRows(rows, config)
	return entries, result, nil
}

func readExcel(path, sheet string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to get rows: %w", err)
	}
	return rows, nil
}

func readCSV(path string) ([][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1 // Allow variable number of fields
	reader.LazyQuotes = true

	var rows [][]string
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error reading CSV: %w", err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func importRows(rows [][]string, config ImportConfig) ([]*models.VocabularyEntry, *ImportResult) {
	result := &ImportResult{Errors: make([]string, 0)}
	entries := make([]*models.VocabularyEntry, 0, len(rows))
	seen := make(map[string]bool)
	currentCategory := config.DefaultCategory

	for i, row := range rows {
		rowNum := i + 1
		if rowNum < config.StartRow {
			continue
		}

		// A row with only its first cell set (e.g. "Animals,,") starts a new category
		if category, ok := categoryHeader(row); ok {
			currentCategory = category
			continue
		}

		entry, err := processRow(row, config, currentCategory)
		if errors.Is(err, errBlankRow) {
			continue
		}
		result.TotalProcessed++
		if err != nil {
			result.Skipped++
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: %v", rowNum, err))
			continue
		}
		if seen[entry.ID] {
			result.Skipped++
			continue
		}
		seen[entry.ID] = true
		entries = append(entries, entry)
		result.Created++
	}
	return entries, result
}

func categoryHeader(row []string) (string, bool) {
	if len(row) == 0 {
		return "", false
	}
	first := strings.Trim(strings.TrimSpace(row[0]), "\"")
	if first == "" {
		return "", false
	}
	for _, cell := range row[1:] {
		if strings.TrimSpace(cell) != "" {
			return "", false
		}
	}
	return first, true
}

// processRow turns a single row into an entry
func processRow(row []string, config ImportConfig, category string) (*models.VocabularyEntry, error) {
	source := cleanWord(cell(row, config.SourceColumn))
	target := cleanWord(cell(row, config.TargetColumn))

	if source == "" && target == "" {
		return nil, errBlankRow
	}
	if source == "" {
		return nil, fmt.Errorf("word cannot be empty")
	}
	if target == "" {
		return nil, fmt.Errorf("translation cannot be empty")
	}

	entry := vocabulary.NewEntry(source, target)
	if phonetic := strings.TrimSpace(cell(row, config.PhoneticColumn)); phonetic != "" {
		entry.Phonetic = phonetic
	}
	entry.Category = category
	if c := strings.TrimSpace(cell(row, config.CategoryColumn)); c != "" {
		entry.Category = c
	}
	if d := strings.TrimSpace(cell(row, config.DifficultyColumn)); d != "" {
		entry.Difficulty = strconv.Itoa(parseIntOrDefault(d, 1, 5, 3))
	}
	entry.Example = strings.TrimSpace(cell(row, config.ExampleColumn))
	entry.Hint = strings.TrimSpace(cell(row, config.HintColumn))
	return entry, nil
}

func cell(row []string, column string) string {
	if column == "" {
		return ""
	}
	if idx := columnToIndex(column); idx >= 0 && idx < len(row) {
		return row[idx]
	}
	return ""
}

// cleanWord drops trailing notes in parentheses, e.g. "go (went, gone)"
func cleanWord(word string) string {
	if i := strings.Index(word, "("); i > 0 {
		return strings.TrimSpace(word[:i])
	}
	return strings.TrimSpace(word)
}

// Helper function to convert Excel column letter to index
func columnToIndex(column string) int {
	column = strings.ToUpper(column)
	index := 0
	for i := 0; i < len(column); i++ {
		index = index*26 + int(column[i]-'A'+1)
	}
	return index - 1
}

// Helper function to parse integer with default value
func parseIntOrDefault(s string, min, max, defaultVal int) int {
	val, err := strconv.Atoi(s)
	if err != nil {
		return defaultVal
	}
	if val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
}
