// Package importer implements the tabular import pipeline: file type
// detection, CSV/workbook parsing, alias-driven column mapping, per-row
// validation and persistence, and outcome aggregation.
package importer

import (
	"context"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"

	"github.com/shivajik/prodtracking-sub000/internal/models"
)

// maxReportedErrors caps the error list in the outcome. Errors beyond the cap
// are dropped from the report but still counted in Skipped.
const maxReportedErrors = 10

// RecordStore is the persistence collaborator. One insert per validated row,
// assumed atomic at the store level.
type RecordStore interface {
	CreateProduct(ctx context.Context, product *models.SeedProduct) error
}

// TrackingGenerator hands out fresh tracking ids. The importer is the sole
// authority for id assignment; ids supplied in the file never survive.
type TrackingGenerator interface {
	Next(ctx context.Context) (string, error)
}

// Outcome is the summary returned to the caller of one import invocation.
type Outcome struct {
	Message  string   `json:"message"`
	Imported int      `json:"imported"`
	Skipped  int      `json:"skipped"`
	Total    int      `json:"total"`
	Errors   []string `json:"errors"`
}

// Report wraps the outcome with run metadata the handler persists.
type Report struct {
	Outcome   Outcome
	Format    models.ImportFormat
	ColumnMap map[string]string
}

type Importer struct {
	store  RecordStore
	ids    TrackingGenerator
	mapper *Mapper
	logger *logrus.Entry
}

func New(store RecordStore, ids TrackingGenerator, mapper *Mapper, logger *logrus.Logger) *Importer {
	if logger == nil {
		logger = logrus.New()
	}
	return &Importer{
		store:  store,
		ids:    ids,
		mapper: mapper,
		logger: logger.WithField("component", "importer"),
	}
}

// accumulator threads the run counters through the row loop so the pipeline
// stays a function of (rows, collaborators) with no shared mutable state.
type accumulator struct {
	imported int
	skipped  int
	errors   []string
}

func (a *accumulator) skip(rowNum int, err error) {
	a.skipped++
	if len(a.errors) < maxReportedErrors {
		a.errors = append(a.errors, fmt.Sprintf("Row %d: %s", rowNum, err.Error()))
	}
}

// Run executes the full pipeline on one uploaded file. Operation-level
// failures (unsupported format, empty file, malformed bytes) return an error
// and no report; per-row failures are recovered locally and only surface in
// the outcome summary. Rows are processed strictly in order, one at a time,
// and already-inserted rows stay persisted when later rows fail.
func (imp *Importer) Run(ctx context.Context, file io.Reader, contentType, filename string) (*Report, error) {
	format, err := DetectFormat(contentType, filename)
	if err != nil {
		return nil, err
	}

	headers, rows, err := Parse(file, format)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrEmptyFile
	}

	acc := accumulator{}
	for _, row := range rows {
		product := imp.mapper.MapRow(row)

		trackingID, err := imp.ids.Next(ctx)
		if err != nil {
			acc.skip(row.Number, err)
			continue
		}
		product.TrackingID = trackingID
		product.Status = models.ProductStatusPending

		// Mapping fallbacks guarantee a name; this guards the store contract.
		if product.ProductName == "" {
			acc.skip(row.Number, fmt.Errorf("product name is required"))
			continue
		}

		if err := imp.store.CreateProduct(ctx, product); err != nil {
			// A persistence failure is a row skip, never a batch abort.
			acc.skip(row.Number, err)
			continue
		}
		acc.imported++
	}

	imp.logger.WithFields(logrus.Fields{
		"file":     filename,
		"format":   format,
		"total":    len(rows),
		"imported": acc.imported,
		"skipped":  acc.skipped,
	}).Info("import completed")

	return &Report{
		Outcome: Outcome{
			Message:  "Import completed",
			Imported: acc.imported,
			Skipped:  acc.skipped,
			Total:    len(rows),
			Errors:   acc.errors,
		},
		Format:    format,
		ColumnMap: ResolveColumns(headers),
	}, nil
}
