package handlers

import (
	"bytes"
	"context"
	"fmt"
	"image/png"
	"io"
	"net/http"

	"github.com/boombuler/barcode"
	"github.com/boombuler/barcode/qr"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"

	"github.com/shivajik/prodtracking-sub000/internal/models"
)

const exportSheetName = "Seed Products"

// ExportStore is the slice of the repository the export handler needs.
type ExportStore interface {
	GetProductsForExport(ctx context.Context, req *models.ExportProductsRequest) ([]models.SeedProduct, error)
}

type ExportHandler struct {
	store         ExportStore
	publicBaseURL string
	logger        *logrus.Entry
}

func NewExportHandler(store ExportStore, publicBaseURL string, logger *logrus.Logger) *ExportHandler {
	if logger == nil {
		logger = logrus.New()
	}
	return &ExportHandler{
		store:         store,
		publicBaseURL: publicBaseURL,
		logger:        logger.WithField("component", "export_handler"),
	}
}

// ExportProducts generates an XLSX report with one row per record and an
// embedded QR code carrying the public tracking URL.
// POST /api/v1/products/export
func (h *ExportHandler) ExportProducts(c *gin.Context) {
	var req models.ExportProductsRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil && err != io.EOF {
			respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
			return
		}
	}

	products, err := h.store.GetProductsForExport(c.Request.Context(), &req)
	if err != nil {
		h.logger.WithError(err).Error("Failed to load products for export")
		respondError(c, http.StatusInternalServerError, "EXPORT_FAILED", "Failed to load product records")
		return
	}

	f, err := h.buildWorkbook(products)
	if err != nil {
		h.logger.WithError(err).Error("Failed to build export workbook")
		respondError(c, http.StatusInternalServerError, "EXPORT_FAILED", "Failed to generate report")
		return
	}
	defer f.Close()

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", "attachment; filename=seed_products_report.xlsx")
	f.Write(c.Writer)
}

func (h *ExportHandler) buildWorkbook(products []models.SeedProduct) (*excelize.File, error) {
	f := excelize.NewFile()
	f.SetSheetName("Sheet1", exportSheetName)

	headers := []string{
		"Tracking ID", "Product", "Crop Name", "Company", "Brand",
		"MRP", "Unit Sale Price", "Lot Number", "Date of Manufacture",
		"Expiry Date", "Date of Test", "Status", "QR Code",
	}

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
		Border: []excelize.Border{
			{Type: "bottom", Color: "000000", Style: 1},
		},
	})
	for i, hdr := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(exportSheetName, cell, hdr)
		f.SetCellStyle(exportSheetName, cell, cell, headerStyle)
		colName, _ := excelize.ColumnNumberToName(i + 1)
		f.SetColWidth(exportSheetName, colName, colName, 18)
	}
	qrCol, _ := excelize.ColumnNumberToName(len(headers))
	f.SetColWidth(exportSheetName, qrCol, qrCol, 14)

	for i, p := range products {
		rowNum := i + 2
		values := []interface{}{
			p.TrackingID, p.ProductName, deref(p.CropName), p.Company, p.Brand,
			deref(p.MRP), deref(p.UnitSalePrice), deref(p.LotNumber), deref(p.ManufacturingDate),
			deref(p.ExpiryDate), deref(p.TestDate), string(p.Status),
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, rowNum)
			f.SetCellValue(exportSheetName, cell, v)
		}

		qrBytes, err := h.trackingQR(p.TrackingID)
		if err != nil {
			return nil, fmt.Errorf("row %d: failed to render QR code: %w", rowNum, err)
		}
		qrCell, _ := excelize.CoordinatesToCellName(len(headers), rowNum)
		if err := f.AddPictureFromBytes(exportSheetName, qrCell, &excelize.Picture{
			Extension: ".png",
			File:      qrBytes,
			Format:    &excelize.GraphicOptions{OffsetX: 4, OffsetY: 4},
		}); err != nil {
			return nil, fmt.Errorf("row %d: failed to embed QR code: %w", rowNum, err)
		}
		f.SetRowHeight(exportSheetName, rowNum, 72)
	}

	return f, nil
}

// trackingQR renders the public tracking URL as a PNG QR code.
func (h *ExportHandler) trackingQR(trackingID string) ([]byte, error) {
	url := fmt.Sprintf("%s/api/v1/track/%s", h.publicBaseURL, trackingID)

	code, err := qr.Encode(url, qr.M, qr.Auto)
	if err != nil {
		return nil, err
	}
	code, err = barcode.Scale(code, 88, 88)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, code); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func deref(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}
