package importer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/shivajik/prodtracking-sub000/internal/models"
)

// fakeStore records created products and can fail selected rows.
type fakeStore struct {
	created []*models.SeedProduct
	failOn  func(p *models.SeedProduct) error
}

func (s *fakeStore) CreateProduct(ctx context.Context, p *models.SeedProduct) error {
	if s.failOn != nil {
		if err := s.failOn(p); err != nil {
			return err
		}
	}
	s.created = append(s.created, p)
	return nil
}

// fakeGenerator hands out deterministic sequential ids.
type fakeGenerator struct {
	n int
}

func (g *fakeGenerator) Next(ctx context.Context) (string, error) {
	g.n++
	return fmt.Sprintf("SEED2024%06d", g.n), nil
}

func newTestImporter(store RecordStore) *Importer {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return New(store, &fakeGenerator{}, NewMapper(testOrg), logger)
}

func runCSV(t *testing.T, imp *Importer, csvData string) (*Report, error) {
	t.Helper()
	return imp.Run(context.Background(), strings.NewReader(csvData), "text/csv", "products.csv")
}

func TestRunImportsAllValidRows(t *testing.T) {
	store := &fakeStore{}
	imp := newTestImporter(store)

	report, err := runCSV(t, imp, "Product,MRP\nMaize Gold,450\nPaddy King,300\nCotton Star,520\n")
	require.NoError(t, err)

	assert.Equal(t, "Import completed", report.Outcome.Message)
	assert.Equal(t, 3, report.Outcome.Imported)
	assert.Equal(t, 0, report.Outcome.Skipped)
	assert.Equal(t, 3, report.Outcome.Total)
	assert.Empty(t, report.Outcome.Errors)
	require.Len(t, store.created, 3)
	assert.Equal(t, models.ProductStatusPending, store.created[0].Status)
}

// Scenario: a row with an empty product cell and no crop column still imports
// under a positional placeholder name.
func TestRunMissingNameGetsPlaceholder(t *testing.T) {
	store := &fakeStore{}
	imp := newTestImporter(store)

	report, err := runCSV(t, imp, "Product,MRP\nMaize Gold,450\n,300\nCotton Star,520\n")
	require.NoError(t, err)

	assert.Equal(t, 3, report.Outcome.Imported)
	assert.Equal(t, 0, report.Outcome.Skipped)
	require.Len(t, store.created, 3)
	assert.Equal(t, "Product 3", store.created[1].ProductName)
}

// Scenario: ids supplied in the file never survive; the generator always wins.
func TestRunOverwritesSuppliedIDs(t *testing.T) {
	store := &fakeStore{}
	imp := newTestImporter(store)

	_, err := runCSV(t, imp, "Product,Tracking ID\nMaize Gold,CUSTOM-001\n")
	require.NoError(t, err)

	require.Len(t, store.created, 1)
	assert.NotEqual(t, "CUSTOM-001", store.created[0].TrackingID)
	assert.True(t, strings.HasPrefix(store.created[0].TrackingID, "SEED2024"))
}

// Scenario: a workbook MRP cell holding "Ask Store" maps to null and the row
// still imports.
func TestRunWorkbookNonNumericMRP(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	f.SetCellValue(sheet, "A1", "Product")
	f.SetCellValue(sheet, "B1", "MRP")
	f.SetCellValue(sheet, "A2", "Maize Gold")
	f.SetCellValue(sheet, "B2", "Ask Store")
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	store := &fakeStore{}
	imp := newTestImporter(store)

	report, err := imp.Run(context.Background(), bytes.NewReader(buf.Bytes()),
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", "products.xlsx")
	require.NoError(t, err)

	assert.Equal(t, 1, report.Outcome.Imported)
	assert.Equal(t, 0, report.Outcome.Skipped)
	require.Len(t, store.created, 1)
	assert.Nil(t, store.created[0].MRP)
}

func TestRunUnsupportedFormat(t *testing.T) {
	imp := newTestImporter(&fakeStore{})

	report, err := imp.Run(context.Background(), strings.NewReader("whatever"), "text/plain", "notes.txt")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
	assert.Nil(t, report)
}

func TestRunEmptyFile(t *testing.T) {
	imp := newTestImporter(&fakeStore{})

	report, err := runCSV(t, imp, "Product,MRP\n")
	assert.ErrorIs(t, err, ErrEmptyFile)
	assert.Nil(t, report)
}

// A persistence failure skips the row and the batch continues; earlier inserts
// stay persisted.
func TestRunPersistenceFailureSkipsRow(t *testing.T) {
	store := &fakeStore{
		failOn: func(p *models.SeedProduct) error {
			if p.ProductName == "Paddy King" {
				return errors.New("duplicate key value violates unique constraint")
			}
			return nil
		},
	}
	imp := newTestImporter(store)

	report, err := runCSV(t, imp, "Product\nMaize Gold\nPaddy King\nCotton Star\n")
	require.NoError(t, err)

	assert.Equal(t, 2, report.Outcome.Imported)
	assert.Equal(t, 1, report.Outcome.Skipped)
	assert.Equal(t, 3, report.Outcome.Total)
	require.Len(t, report.Outcome.Errors, 1)
	assert.Equal(t, "Row 3: duplicate key value violates unique constraint", report.Outcome.Errors[0])
	require.Len(t, store.created, 2)
}

// The reported error list is capped at ten entries; Skipped keeps the true
// failure count.
func TestRunErrorListCapped(t *testing.T) {
	store := &fakeStore{
		failOn: func(p *models.SeedProduct) error {
			return errors.New("store unavailable")
		},
	}
	imp := newTestImporter(store)

	var sb strings.Builder
	sb.WriteString("Product\n")
	for i := 0; i < 15; i++ {
		fmt.Fprintf(&sb, "Product %d\n", i)
	}

	report, err := runCSV(t, imp, sb.String())
	require.NoError(t, err)

	assert.Equal(t, 0, report.Outcome.Imported)
	assert.Equal(t, 15, report.Outcome.Skipped)
	assert.Equal(t, 15, report.Outcome.Total)
	assert.Len(t, report.Outcome.Errors, 10)
	assert.Equal(t, "Row 2: store unavailable", report.Outcome.Errors[0])
}

func TestRunReportsColumnMap(t *testing.T) {
	store := &fakeStore{}
	imp := newTestImporter(store)

	report, err := runCSV(t, imp, "Product,MRP (₹),Lot No.\nMaize Gold,450,OCT-24-1\n")
	require.NoError(t, err)

	assert.Equal(t, models.ImportFormatCSV, report.Format)
	assert.Equal(t, "product", report.ColumnMap["productName"])
	assert.Equal(t, "mrp (₹)", report.ColumnMap["mrp"])
	assert.Equal(t, "lot no.", report.ColumnMap["lotNumber"])
}
