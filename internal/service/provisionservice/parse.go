package provisionservice

import (
	"crypto/rand"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math/big"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/GlebRadaev/tokenwallet/internal/domain"
)

// DeriveUsername lower-cases the name and drops every space.
func DeriveUsername(name string) string {
	return strings.ToLower(strings.ReplaceAll(strings.TrimSpace(name), " ", ""))
}

// RandomDigits returns four decimal digits from crypto/rand.
func RandomDigits() string {
	n, err := rand.Int(rand.Reader, big.NewInt(10000))
	if err != nil {
		panic(fmt.Sprintf("crypto/rand unavailable: %v", err))
	}
	return fmt.Sprintf("%04d", n.Int64())
}

// Parse reads a name,email table from a .csv or .xlsx upload. The first row
// is a header and rows without a name are skipped.
func Parse(filename string, r io.Reader, digits func() string) ([]domain.Participant, error) {
	var (
		rows [][]string
		err  error
	)
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv":
		rows, err = readCSV(r)
	case ".xlsx":
		rows, err = readXLSX(r)
	default:
		return nil, domain.ErrValidation("Unsupported file type %q, expected .csv or .xlsx", filepath.Ext(filename))
	}
	if err != nil {
		return nil, domain.ErrValidation("Can't read %s: %v", filename, err)
	}

	var participants []domain.Participant
	for i, row := range rows {
		if i == 0 || len(row) == 0 {
			continue
		}
		name := strings.TrimSpace(row[0])
		if name == "" {
			continue
		}
		var email string
		if len(row) > 1 {
			email = strings.TrimSpace(row[1])
		}
		username := DeriveUsername(name)
		participants = append(participants, domain.Participant{
			Name:     name,
			Email:    email,
			Username: username,
			Password: username + digits(),
		})
	}
	return participants, nil
}

func readCSV(r io.Reader) ([][]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	var rows [][]string
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		if len(rows) == 0 && len(record) > 0 {
			record[0] = strings.TrimPrefix(record[0], "\ufeff")
		}
		rows = append(rows, record)
	}
	return rows, nil
}

// readXLSX returns the rows of the workbook's active sheet.
func readXLSX(r io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return f.GetRows(f.GetSheetName(f.GetActiveSheetIndex()))
}
