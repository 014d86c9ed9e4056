package importer_test

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/lexigo/reviewd/internal/importer"
	"github.com/lexigo/reviewd/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func workbook(t *testing.T, rows ...[]any) *bytes.Buffer {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &row))
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf
}

func TestParse_ExcelWithHeader(t *testing.T) {
	buf := workbook(t,
		[]any{"Word", "Nghĩa", "IPA", "English Definition", "Examples", "Difficulty"},
		[]any{"resilient", "kiên cường", "/rɪˈzɪliənt/", "able to recover", "She is resilient.; Resilient kids", "Khó"},
		[]any{"", "bỏ trống"},
		[]any{"apple", "quả táo", "", "", "", "very hard"},
	)

	rows, err := importer.Parse("words.xlsx", buf)

	require.NoError(t, err)
	require.Len(t, rows, 2)
	first := rows[0]
	assert.Equal(t, 2, first.Line)
	assert.Equal(t, "resilient", first.Input.Word)
	assert.Equal(t, "kiên cường", first.Input.Translation)
	assert.Equal(t, "/rɪˈzɪliənt/", first.Input.Phonetic)
	assert.Equal(t, "able to recover", first.Input.EnglishDefinition)
	assert.Equal(t, []string{"She is resilient.", "Resilient kids"}, first.Input.Examples)
	assert.Equal(t, models.DifficultyHard, first.Input.Difficulty)

	assert.Equal(t, 4, rows[1].Line)
	assert.Equal(t, "", rows[1].Input.Difficulty, "unknown labels are dropped")
}

func TestParse_ExcelPositional(t *testing.T) {
	buf := workbook(t,
		[]any{"apple", "quả táo", "/ˈæp.əl/"},
		[]any{"cat", "con mèo"},
	)

	rows, err := importer.Parse("WORDS.XLSX", buf)

	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, 1, rows[0].Line)
	assert.Equal(t, "apple", rows[0].Input.Word)
	assert.Equal(t, "/ˈæp.əl/", rows[0].Input.Phonetic)
	assert.Equal(t, "con mèo", rows[1].Input.Translation)
}

func TestParse_CSV(t *testing.T) {
	data := "word,translation,synonyms\nhappy,vui,glad;joyful\n"

	rows, err := importer.Parse("list.csv", strings.NewReader(data))

	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "happy", rows[0].Input.Word)
	assert.Equal(t, []string{"glad", "joyful"}, rows[0].Input.Synonyms)
}

func TestParse_Errors(t *testing.T) {
	_, err := importer.Parse("notes.txt", strings.NewReader("x"))
	assert.ErrorIs(t, err, importer.ErrUnsupportedFile)

	_, err = importer.Parse("empty.csv", strings.NewReader("word,translation\n"))
	assert.ErrorIs(t, err, importer.ErrEmptyFile)

	_, err = importer.Parse("broken.xlsx", strings.NewReader("not a zip"))
	assert.Error(t, err)

	var b strings.Builder
	b.WriteString("word\n")
	for i := 0; i <= importer.MaxRows; i++ {
		fmt.Fprintf(&b, "w%d\n", i)
	}
	_, err = importer.Parse("big.csv", strings.NewReader(b.String()))
	assert.ErrorIs(t, err, importer.ErrTooManyRows)
}
