package handlers

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/shivajik/prodtracking-sub000/internal/models"
)

type stubExportStore struct {
	products []models.SeedProduct
	err      error
}

func (s *stubExportStore) GetProductsForExport(ctx context.Context, req *models.ExportProductsRequest) ([]models.SeedProduct, error) {
	return s.products, s.err
}

func strPtr(s string) *string { return &s }

func TestExportProductsWorkbook(t *testing.T) {
	gin.SetMode(gin.TestMode)
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)

	store := &stubExportStore{
		products: []models.SeedProduct{
			{
				TrackingID:  "SEED2024000001",
				ProductName: "Research Hybrid Maize",
				CropName:    strPtr("Maize"),
				Company:     "Shivaji Seeds Pvt Ltd",
				Brand:       "Shivaji Seeds Pvt Ltd",
				MRP:         strPtr("450"),
				LotNumber:   strPtr("OCT-24-1"),
				Status:      models.ProductStatusApproved,
			},
			{
				TrackingID:  "SEED2024000002",
				ProductName: "Paddy King",
				Company:     "Shivaji Seeds Pvt Ltd",
				Brand:       "Shivaji Seeds Pvt Ltd",
				Status:      models.ProductStatusPending,
			},
		},
	}
	h := NewExportHandler(store, "https://track.example.com", logger)

	router := gin.New()
	router.POST("/api/v1/products/export", h.ExportProducts)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/products/export", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "seed_products_report.xlsx")

	f, err := excelize.OpenReader(bytes.NewReader(w.Body.Bytes()))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(exportSheetName)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Tracking ID", rows[0][0])
	assert.Equal(t, "SEED2024000001", rows[1][0])
	assert.Equal(t, "Research Hybrid Maize", rows[1][1])
	assert.Equal(t, "Maize", rows[1][2])
	assert.Equal(t, string(models.ProductStatusApproved), rows[1][11])
	assert.Equal(t, "SEED2024000002", rows[2][0])

	// Each data row carries an embedded QR picture.
	pics, err := f.GetPictures(exportSheetName, "M2")
	require.NoError(t, err)
	assert.NotEmpty(t, pics)
}

func TestExportProductsStoreFailure(t *testing.T) {
	gin.SetMode(gin.TestMode)
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)

	h := NewExportHandler(&stubExportStore{err: errors.New("db down")}, "https://track.example.com", logger)

	router := gin.New()
	router.POST("/api/v1/products/export", h.ExportProducts)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/products/export", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "EXPORT_FAILED")
}
