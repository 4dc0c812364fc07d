package importer

import (
	"errors"
	"path/filepath"
	"strings"

	"github.com/shivajik/prodtracking-sub000/internal/models"
)

var (
	// ErrUnsupportedFormat is returned when neither the declared MIME type nor
	// the filename extension identifies a supported tabular format.
	ErrUnsupportedFormat = errors.New("unsupported file format: only CSV and Excel files are accepted")

	// ErrEmptyFile is returned when parsing produced zero data rows.
	ErrEmptyFile = errors.New("the file contains no data rows")
)

var csvMIMETypes = map[string]bool{
	"text/csv":        true,
	"application/csv": true,
	"text/plain":      false, // extension decides
}

var spreadsheetMIMETypes = map[string]bool{
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet": true,
	"application/vnd.ms-excel": true,
}

// DetectFormat chooses the parser branch from the declared MIME type and the
// filename. MIME type wins when recognized, otherwise the extension decides.
func DetectFormat(contentType, filename string) (models.ImportFormat, error) {
	mime := strings.TrimSpace(strings.ToLower(contentType))
	if i := strings.Index(mime, ";"); i >= 0 {
		mime = strings.TrimSpace(mime[:i])
	}
	ext := strings.ToLower(filepath.Ext(filename))

	if csvMIMETypes[mime] || ext == ".csv" {
		return models.ImportFormatCSV, nil
	}
	if spreadsheetMIMETypes[mime] || ext == ".xlsx" || ext == ".xls" {
		return models.ImportFormatXLSX, nil
	}
	return "", ErrUnsupportedFormat
}
