package handlers

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/lib/pq"
	"github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"
	"gorm.io/datatypes"

	"github.com/shivajik/prodtracking-sub000/internal/events"
	"github.com/shivajik/prodtracking-sub000/internal/importer"
	"github.com/shivajik/prodtracking-sub000/internal/middleware"
	"github.com/shivajik/prodtracking-sub000/internal/models"
)

// ImportStore is the slice of the repository the import handler needs.
type ImportStore interface {
	CreateImportRun(ctx context.Context, run *models.ImportRun) error
	ListImportRuns(ctx context.Context, page, limit int) ([]models.ImportRun, int64, error)
}

type ImportHandler struct {
	imp       *importer.Importer
	store     ImportStore
	publisher *events.Publisher
	logger    *logrus.Entry
}

func NewImportHandler(imp *importer.Importer, store ImportStore, publisher *events.Publisher, logger *logrus.Logger) *ImportHandler {
	if logger == nil {
		logger = logrus.New()
	}
	return &ImportHandler{
		imp:       imp,
		store:     store,
		publisher: publisher,
		logger:    logger.WithField("component", "import_handler"),
	}
}

// ImportProducts runs the tabular import pipeline on an uploaded file.
// POST /api/v1/products/import
func (h *ImportHandler) ImportProducts(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		respondError(c, http.StatusBadRequest, "FILE_REQUIRED", "Please upload a CSV or Excel file")
		return
	}
	defer file.Close()

	report, err := h.imp.Run(c.Request.Context(), file, header.Header.Get("Content-Type"), header.Filename)
	if err != nil {
		switch {
		case errors.Is(err, importer.ErrUnsupportedFormat):
			respondError(c, http.StatusBadRequest, "UNSUPPORTED_FORMAT", err.Error())
		case errors.Is(err, importer.ErrEmptyFile):
			respondError(c, http.StatusBadRequest, "EMPTY_FILE", err.Error())
		default:
			respondError(c, http.StatusBadRequest, "PARSE_ERROR", err.Error())
		}
		return
	}

	userID := middleware.GetUserID(c)
	run := &models.ImportRun{
		FileName:      header.Filename,
		Format:        report.Format,
		TotalRows:     report.Outcome.Total,
		ImportedCount: report.Outcome.Imported,
		SkippedCount:  report.Outcome.Skipped,
		Errors:        pq.StringArray(report.Outcome.Errors),
		CreatedBy:     &userID,
	}
	if columnMap, err := json.Marshal(report.ColumnMap); err == nil {
		run.ColumnMap = datatypes.JSON(columnMap)
	}

	// The import already happened row by row; failing to write the audit
	// record must not turn a completed run into an error response.
	if err := h.store.CreateImportRun(c.Request.Context(), run); err != nil {
		h.logger.WithError(err).Error("Failed to persist import run")
	}
	h.publisher.PublishImportCompleted(run, userID)

	c.JSON(http.StatusOK, report.Outcome)
}

// ImportHistory lists past import runs, newest first.
// GET /api/v1/products/import/history
func (h *ImportHandler) ImportHistory(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	runs, total, err := h.store.ListImportRuns(c.Request.Context(), page, limit)
	if err != nil {
		h.logger.WithError(err).Error("Failed to list import runs")
		respondError(c, http.StatusInternalServerError, "LIST_FAILED", "Failed to list import history")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    runs,
		"pagination": models.PaginationInfo{
			Page:  page,
			Limit: limit,
			Total: total,
		},
	})
}

// GetImportTemplate returns the import template definition or file.
// GET /api/v1/products/import/template
func (h *ImportHandler) GetImportTemplate(c *gin.Context) {
	format := c.DefaultQuery("format", "json")

	template := models.SeedProductImportTemplate()

	switch format {
	case "csv":
		h.generateCSVTemplate(c, template)
	case "xlsx":
		h.generateXLSXTemplate(c, template)
	default:
		c.JSON(http.StatusOK, gin.H{
			"success":  true,
			"template": template,
		})
	}
}

func (h *ImportHandler) generateCSVTemplate(c *gin.Context, template models.ImportTemplate) {
	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", "attachment; filename=seed_products_import_template.csv")

	writer := csv.NewWriter(c.Writer)
	defer writer.Flush()

	headers := make([]string, len(template.Columns))
	for i, col := range template.Columns {
		headers[i] = col.Name
	}
	writer.Write(headers)
}

func (h *ImportHandler) generateXLSXTemplate(c *gin.Context, template models.ImportTemplate) {
	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Seed Products"
	f.SetSheetName("Sheet1", sheetName)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
		Border: []excelize.Border{
			{Type: "bottom", Color: "000000", Style: 1},
		},
	})

	for i, col := range template.Columns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheetName, cell, col.Name)
		f.SetCellStyle(sheetName, cell, cell, headerStyle)

		colName, _ := excelize.ColumnNumberToName(i + 1)
		f.SetColWidth(sheetName, colName, colName, 20)
	}

	f.NewSheet("Instructions")
	f.SetCellValue("Instructions", "A1", "Seed Product Import Instructions")
	f.SetCellValue("Instructions", "A3", "Every column is optional. Missing company and brand default to the registered organization;")
	f.SetCellValue("Instructions", "A4", "a missing product name falls back to the crop name. Tracking ids are always assigned by the")
	f.SetCellValue("Instructions", "A5", "system, so any id column in the file is ignored.")

	f.SetCellValue("Instructions", "A7", "Column")
	f.SetCellValue("Instructions", "B7", "Description")
	f.SetCellValue("Instructions", "C7", "Type")
	f.SetCellValue("Instructions", "D7", "Example")
	for i, col := range template.Columns {
		row := strconv.Itoa(i + 8)
		f.SetCellValue("Instructions", "A"+row, col.Name)
		f.SetCellValue("Instructions", "B"+row, col.Description)
		f.SetCellValue("Instructions", "C"+row, col.Type)
		f.SetCellValue("Instructions", "D"+row, col.Example)
	}
	f.SetColWidth("Instructions", "A", "A", 25)
	f.SetColWidth("Instructions", "B", "B", 70)
	f.SetColWidth("Instructions", "C", "C", 12)
	f.SetColWidth("Instructions", "D", "D", 30)

	sheetIdx, _ := f.GetSheetIndex(sheetName)
	f.SetActiveSheet(sheetIdx)

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", "attachment; filename=seed_products_import_template.xlsx")

	f.Write(c.Writer)
}
