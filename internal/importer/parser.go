package importer

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/shivajik/prodtracking-sub000/internal/models"
)

// Row is one parsed data row: a mapping from normalized header label to the
// raw cell value, plus the 1-based position of the row in the source file
// (header row included, so the first data row is number 2).
type Row struct {
	Number int
	Cells  map[string]string
}

// Parse converts the raw upload into the canonical header list and an ordered,
// fully materialized sequence of rows. The sequence is materialized rather
// than streamed because error messages report positional row numbers.
func Parse(r io.Reader, format models.ImportFormat) ([]string, []Row, error) {
	if format == models.ImportFormatCSV {
		return parseCSV(r)
	}
	return parseXLSX(r)
}

func parseCSV(r io.Reader) ([]string, []Row, error) {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	headerRecord, err := reader.Read()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read CSV header: %w", err)
	}
	headers := normalizeHeaders(headerRecord)

	var rows []Row
	rowNum := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("error reading line %d: %w", rowNum+1, err)
		}
		rowNum++

		cells := make(map[string]string, len(headers))
		for i, value := range record {
			if i < len(headers) {
				cells[headers[i]] = strings.TrimSpace(value)
			}
		}
		rows = append(rows, Row{Number: rowNum, Cells: cells})
	}

	return headers, rows, nil
}

func parseXLSX(r io.Reader) ([]string, []Row, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil, fmt.Errorf("no sheets found in workbook")
	}

	// Only the first sheet is processed. RawCellValue keeps date cells as
	// their serial numbers so the mapper applies one consistent format
	// instead of whatever display format the workbook happened to carry.
	excelRows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read sheet: %w", err)
	}
	if len(excelRows) == 0 {
		return nil, nil, nil
	}

	headers := normalizeHeaders(excelRows[0])
	for i, h := range headers {
		if h == "" {
			// Blank header cells still need to be addressable.
			headers[i] = fmt.Sprintf("column_%d", i+1)
		}
	}

	var rows []Row
	for idx, excelRow := range excelRows[1:] {
		cells := make(map[string]string, len(headers))
		for i, value := range excelRow {
			if i < len(headers) {
				cells[headers[i]] = strings.TrimSpace(value)
			}
		}
		rows = append(rows, Row{Number: idx + 2, Cells: cells})
	}

	return headers, rows, nil
}

// normalizeHeaders lowercases and trims header labels so alias matching is
// case- and spacing-insensitive. A UTF-8 BOM on the first cell and the
// template's required marker are stripped.
func normalizeHeaders(record []string) []string {
	headers := make([]string, len(record))
	for i, h := range record {
		h = strings.TrimPrefix(h, "\uFEFF")
		h = strings.TrimSpace(strings.ToLower(h))
		h = strings.TrimSuffix(h, " *")
		headers[i] = h
	}
	return headers
}
