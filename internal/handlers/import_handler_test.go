package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shivajik/prodtracking-sub000/internal/importer"
	"github.com/shivajik/prodtracking-sub000/internal/models"
	"github.com/shivajik/prodtracking-sub000/internal/tracking"
)

type stubRecordStore struct {
	created []*models.SeedProduct
}

func (s *stubRecordStore) CreateProduct(ctx context.Context, p *models.SeedProduct) error {
	s.created = append(s.created, p)
	return nil
}

type stubImportStore struct {
	runs []*models.ImportRun
}

func (s *stubImportStore) CreateImportRun(ctx context.Context, run *models.ImportRun) error {
	s.runs = append(s.runs, run)
	return nil
}

func (s *stubImportStore) ListImportRuns(ctx context.Context, page, limit int) ([]models.ImportRun, int64, error) {
	out := make([]models.ImportRun, len(s.runs))
	for i, r := range s.runs {
		out[i] = *r
	}
	return out, int64(len(out)), nil
}

func newImportTestServer(records *stubRecordStore, runs *stubImportStore) *gin.Engine {
	gin.SetMode(gin.TestMode)

	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)

	imp := importer.New(records, tracking.NewGenerator("SEED", nil), importer.NewMapper("Shivaji Seeds Pvt Ltd"), logger)
	h := NewImportHandler(imp, runs, nil, logger)

	router := gin.New()
	router.POST("/api/v1/products/import", h.ImportProducts)
	router.GET("/api/v1/products/import/history", h.ImportHistory)
	router.GET("/api/v1/products/import/template", h.GetImportTemplate)
	return router
}

func uploadFile(t *testing.T, router *gin.Engine, filename, contents string) *httptest.ResponseRecorder {
	t.Helper()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write([]byte(contents))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/products/import", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestImportProductsSuccess(t *testing.T) {
	records := &stubRecordStore{}
	runs := &stubImportStore{}
	router := newImportTestServer(records, runs)

	w := uploadFile(t, router, "products.csv", "Product,MRP\nMaize Gold,450\nPaddy King,300\n")

	require.Equal(t, http.StatusOK, w.Code)

	var outcome importer.Outcome
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &outcome))
	assert.Equal(t, "Import completed", outcome.Message)
	assert.Equal(t, 2, outcome.Imported)
	assert.Equal(t, 0, outcome.Skipped)
	assert.Equal(t, 2, outcome.Total)

	require.Len(t, records.created, 2)
	require.Len(t, runs.runs, 1)
	assert.Equal(t, "products.csv", runs.runs[0].FileName)
	assert.Equal(t, models.ImportFormatCSV, runs.runs[0].Format)
	assert.Equal(t, 2, runs.runs[0].ImportedCount)
}

func TestImportProductsUnsupportedFormat(t *testing.T) {
	records := &stubRecordStore{}
	runs := &stubImportStore{}
	router := newImportTestServer(records, runs)

	w := uploadFile(t, router, "notes.txt", "plain text, not a table")

	require.Equal(t, http.StatusBadRequest, w.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	errObj, ok := resp["error"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "UNSUPPORTED_FORMAT", errObj["code"])

	// A rejected file produces no partial-import summary and no audit record.
	assert.NotContains(t, resp, "imported")
	assert.Empty(t, records.created)
	assert.Empty(t, runs.runs)
}

func TestImportProductsEmptyFile(t *testing.T) {
	router := newImportTestServer(&stubRecordStore{}, &stubImportStore{})

	w := uploadFile(t, router, "products.csv", "Product,MRP\n")

	require.Equal(t, http.StatusBadRequest, w.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	errObj := resp["error"].(map[string]interface{})
	assert.Equal(t, "EMPTY_FILE", errObj["code"])
}

func TestImportProductsMissingFile(t *testing.T) {
	router := newImportTestServer(&stubRecordStore{}, &stubImportStore{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/products/import", strings.NewReader(""))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	errObj := resp["error"].(map[string]interface{})
	assert.Equal(t, "FILE_REQUIRED", errObj["code"])
}

func TestImportHistory(t *testing.T) {
	runs := &stubImportStore{}
	router := newImportTestServer(&stubRecordStore{}, runs)

	for i := 0; i < 3; i++ {
		runs.runs = append(runs.runs, &models.ImportRun{FileName: fmt.Sprintf("batch-%d.csv", i)})
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/products/import/history", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Success    bool                  `json:"success"`
		Data       []models.ImportRun    `json:"data"`
		Pagination models.PaginationInfo `json:"pagination"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Len(t, resp.Data, 3)
	assert.Equal(t, int64(3), resp.Pagination.Total)
}

func TestGetImportTemplateJSON(t *testing.T) {
	router := newImportTestServer(&stubRecordStore{}, &stubImportStore{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/products/import/template", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Success  bool                  `json:"success"`
		Template models.ImportTemplate `json:"template"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.NotEmpty(t, resp.Template.Columns)
}

func TestGetImportTemplateCSV(t *testing.T) {
	router := newImportTestServer(&stubRecordStore{}, &stubImportStore{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/products/import/template?format=csv", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "seed_products_import_template.csv")
	assert.Contains(t, w.Body.String(), "Product")
	assert.Contains(t, w.Body.String(), "Expiry Date")
}
