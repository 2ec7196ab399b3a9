package provisionservice

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/GlebRadaev/tokenwallet/internal/domain"
)

func fixedDigits() string { return "0420" }

func TestDeriveUsername(t *testing.T) {
	assert.Equal(t, "annasmith", DeriveUsername("  Anna Smith "))
	assert.Equal(t, "jeanlucpicard", DeriveUsername("Jean Luc  Picard"))
}

func TestRandomDigits(t *testing.T) {
	for i := 0; i < 20; i++ {
		d := RandomDigits()
		assert.Len(t, d, 4)
		assert.Empty(t, strings.Trim(d, "0123456789"))
	}
}

func TestParseCSV(t *testing.T) {
	upload := "\ufeffName,Email\nAnna Smith,anna@example.com\n,ghost@example.com\nBob Stone\n  Carl  ,  carl@example.com \n"

	participants, err := Parse("people.CSV", strings.NewReader(upload), fixedDigits)
	require.NoError(t, err)
	assert.Equal(t, []domain.Participant{
		{Name: "Anna Smith", Email: "anna@example.com", Username: "annasmith", Password: "annasmith0420"},
		{Name: "Bob Stone", Username: "bobstone", Password: "bobstone0420"},
		{Name: "Carl", Email: "carl@example.com", Username: "carl", Password: "carl0420"},
	}, participants)
}

func TestParseXLSX(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(f.GetActiveSheetIndex())
	require.NoError(t, f.SetSheetRow(sheet, "A1", &[]interface{}{"Name", "Email"}))
	require.NoError(t, f.SetSheetRow(sheet, "A2", &[]interface{}{"Dana Lee", "dana@example.com"}))
	require.NoError(t, f.SetSheetRow(sheet, "A3", &[]interface{}{"Eve"}))
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	require.NoError(t, f.Close())

	participants, err := Parse("people.xlsx", bytes.NewReader(buf.Bytes()), fixedDigits)
	require.NoError(t, err)
	require.Len(t, participants, 2)
	assert.Equal(t, "danalee", participants[0].Username)
	assert.Equal(t, "dana@example.com", participants[0].Email)
	assert.Equal(t, "eve0420", participants[1].Password)
	assert.Empty(t, participants[1].Email)
}

func TestParseRejectsBadUploads(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		body     string
	}{
		{name: "Unsupported extension", filename: "people.xls", body: "Name,Email"},
		{name: "Broken workbook", filename: "people.xlsx", body: "definitely not a zip"},
		{name: "Broken csv", filename: "people.csv", body: "Name,Email\n\"unterminated,quote\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.filename, strings.NewReader(tt.body), fixedDigits)
			var invalid *domain.ValidationError
			assert.True(t, errors.As(err, &invalid))
		})
	}
}
