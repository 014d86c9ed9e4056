package importer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/lexigo/reviewd/internal/models"
	"github.com/xuri/excelize/v2"
)

// MaxRows bounds the number of data rows accepted from one file.
const MaxRows = 5000

var (
	ErrEmptyFile       = errors.New("file contains no vocabulary rows")
	ErrTooManyRows     = fmt.Errorf("file has more than %d rows", MaxRows)
	ErrUnsupportedFile = errors.New("unsupported file type, expected .xlsx or .csv")
)

// Row is one parsed spreadsheet line. Line is 1-based as shown by spreadsheet tools.
type Row struct {
	Line  int
	Input models.VocabularyInput
}

type field int

const (
	fieldWord field = iota
	fieldTranslation
	fieldPhonetic
	fieldWordType
	fieldEnglishDefinition
	fieldVietnameseDefinition
	fieldExamples
	fieldVietnameseExample
	fieldSynonyms
	fieldAntonyms
	fieldDifficulty
	fieldNotes
	fieldAudioURL
	fieldImageURL
)

var headerAliases = map[string]field{
	"word":                  fieldWord,
	"từ":                    fieldWord,
	"translation":           fieldTranslation,
	"nghĩa":                 fieldTranslation,
	"meaning":               fieldTranslation,
	"phonetic":              fieldPhonetic,
	"ipa":                   fieldPhonetic,
	"type":                  fieldWordType,
	"wordtype":              fieldWordType,
	"loại từ":               fieldWordType,
	"definition":            fieldEnglishDefinition,
	"englishdefinition":     fieldEnglishDefinition,
	"vietnamesedefinition":  fieldVietnameseDefinition,
	"examples":              fieldExamples,
	"example":               fieldExamples,
	"vietnameseexample":     fieldVietnameseExample,
	"synonyms":              fieldSynonyms,
	"antonyms":              fieldAntonyms,
	"difficulty":            fieldDifficulty,
	"độ khó":                fieldDifficulty,
	"notes":                 fieldNotes,
	"audiourl":              fieldAudioURL,
	"imageurl":              fieldImageURL,
}

// positional is the column layout used when the first row is not a header.
var positional = []field{fieldWord, fieldTranslation, fieldPhonetic, fieldEnglishDefinition, fieldExamples}

// Parse reads vocabulary rows from an .xlsx or .csv file. Rows without a word
// are skipped.
func Parse(name string, r io.Reader) ([]Row, error) {
	var (
		records [][]string
		err     error
	)
	switch strings.ToLower(filepath.Ext(name)) {
	case ".xlsx", ".xlsm":
		records, err = readExcel(r)
	case ".csv":
		records, err = readCSV(r)
	default:
		return nil, ErrUnsupportedFile
	}
	if err != nil {
		return nil, err
	}
	return parseRecords(records)
}

func readExcel(r io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrEmptyFile
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to get rows: %w", err)
	}
	return rows, nil
}

func readCSV(r io.Reader) ([][]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("error reading CSV: %w", err)
	}
	return records, nil
}

func parseRecords(records [][]string) ([]Row, error) {
	if len(records) == 0 {
		return nil, ErrEmptyFile
	}

	columns, hasHeader := detectColumns(records[0])
	start := 0
	if hasHeader {
		start = 1
	}

	var out []Row
	for i := start; i < len(records); i++ {
		row := buildRow(records[i], columns)
		if row.Word == "" {
			continue
		}
		if len(out) == MaxRows {
			return nil, ErrTooManyRows
		}
		out = append(out, Row{Line: i + 1, Input: row})
	}
	if len(out) == 0 {
		return nil, ErrEmptyFile
	}
	return out, nil
}

func headerKey(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if _, ok := headerAliases[s]; ok {
		return s
	}
	return strings.NewReplacer(" ", "", "_", "", "-", "").Replace(s)
}

// detectColumns maps column indexes to fields. A first row naming a word
// column is treated as a header.
func detectColumns(first []string) (map[int]field, bool) {
	columns := make(map[int]field)
	for i, cell := range first {
		if f, ok := headerAliases[headerKey(cell)]; ok {
			columns[i] = f
		}
	}
	for _, f := range columns {
		if f == fieldWord {
			return columns, true
		}
	}

	columns = make(map[int]field, len(positional))
	for i, f := range positional {
		columns[i] = f
	}
	return columns, false
}

func buildRow(cells []string, columns map[int]field) models.VocabularyInput {
	var in models.VocabularyInput
	for i, cell := range cells {
		f, ok := columns[i]
		if !ok {
			continue
		}
		value := strings.TrimSpace(cell)
		switch f {
		case fieldWord:
			in.Word = value
		case fieldTranslation:
			in.Translation = value
		case fieldPhonetic:
			in.Phonetic = value
		case fieldWordType:
			in.WordType = value
		case fieldEnglishDefinition:
			in.EnglishDefinition = value
		case fieldVietnameseDefinition:
			in.VietnameseDefinition = value
		case fieldExamples:
			in.Examples = splitList(value)
		case fieldVietnameseExample:
			in.VietnameseExample = value
		case fieldSynonyms:
			in.Synonyms = splitList(value)
		case fieldAntonyms:
			in.Antonyms = splitList(value)
		case fieldDifficulty:
			if models.ValidDifficulty(value) {
				in.Difficulty = value
			}
		case fieldNotes:
			in.Notes = value
		case fieldAudioURL:
			in.AudioURL = value
		case fieldImageURL:
			in.ImageURL = value
		}
	}
	return in
}

// splitList splits a cell holding several values separated by semicolons or newlines.
func splitList(cell string) []string {
	parts := strings.FieldsFunc(cell, func(r rune) bool { return r == ';' || r == '\n' })
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
