package excel

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"
)

func TestImportCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "words.csv")
	csv := "English,Hindi,Phonetic\n" +
		"Family,,\n" +
		"Mother,माँ,/ˈmʌðər/\n" +
		"Father,पिता,\n" +
		",,\n" +
		"Verbs,,\n" +
		"go (went; gone),जाना,\n" +
		"eat,,/iːt/\n" +
		"Mother,माँ,\n"
	if err := os.WriteFile(path, []byte(csv), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := DefaultImportConfig()
	cfg.FilePath = path
	entries, result, err := Import(cfg)
	if err != nil {
		t.Fatalf("Import() = %v", err)
	}

	if len(entries) != 3 {
		t.Fatalf("got %d entries, want 3", len(entries))
	}
	if result.TotalProcessed != 5 || result.Created != 3 || result.Skipped != 2 {
		t.Errorf("result = %+v", result)
	}
	if len(result.Errors) != 1 {
		t.Errorf("errors = %v, want one missing-translation error", result.Errors)
	}

	mother := entries[0]
	if mother.SourceText != "Mother" || mother.Category != "Family" || mother.Phonetic != "/ˈmʌðər/" {
		t.Errorf("mother = %+v", mother)
	}
	if entries[1].Phonetic != "/father/" {
		t.Errorf("missing phonetic should fall back, got %q", entries[1].Phonetic)
	}
	if entries[2].SourceText != "go" || entries[2].Category != "Verbs" {
		t.Errorf("go = %+v", entries[2])
	}
}

func TestImportExcel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "words.xlsx")
	f := excelize.NewFile()
	rows := [][]interface{}{
		{"English", "Hindi", "Phonetic", "Category", "Difficulty", "Example", "Hint"},
		{"Water", "पानी", "", "nature", "9", "Drink water.", "paa-nee"},
		{"Book", "किताब", "/bʊk/", "", "x", "", ""},
	}
	for i, row := range rows {
		cellName, _ := excelize.CoordinatesToCellName(1, i+1)
		r := row
		if err := f.SetSheetRow("Sheet1", cellName, &r); err != nil {
			t.Fatal(err)
		}
	}
	if err := f.SaveAs(path); err != nil {
		t.Fatal(err)
	}
	f.Close()

	cfg := DefaultImportConfig()
	cfg.FilePath = path
	cfg.DefaultCategory = "general"
	entries, result, err := Import(cfg)
	if err != nil {
		t.Fatalf("Import() = %v", err)
	}
	if result.Created != 2 || len(entries) != 2 {
		t.Fatalf("result = %+v", result)
	}

	water := entries[0]
	if water.Category != "nature" || water.Difficulty != "5" || water.Example != "Drink water." || water.Hint != "paa-nee" {
		t.Errorf("water = %+v", water)
	}
	book := entries[1]
	if book.Category != "general" || book.Difficulty != "3" || book.Phonetic != "/bʊk/" {
		t.Errorf("book = %+v", book)
	}
}

func TestImportMissingFile(t *testing.T) {
	cfg := DefaultImportConfig()
	cfg.FilePath = filepath.Join(t.TempDir(), "absent.xlsx")
	if _, _, err := Import(cfg); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestColumnToIndex(t *testing.T) {
	cases := map[string]int{"A": 0, "b": 1, "G": 6, "Z": 25, "AA": 26}
	for col, want := range cases {
		if got := columnToIndex(col); got != want {
			t.Errorf("columnToIndex(%q) = %d, want %d", col, got, want)
		}
	}
}
