package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/shivajik/prodtracking-sub000/internal/events"
	"github.com/shivajik/prodtracking-sub000/internal/middleware"
	"github.com/shivajik/prodtracking-sub000/internal/models"
	"github.com/shivajik/prodtracking-sub000/internal/repository"
	"github.com/shivajik/prodtracking-sub000/internal/tracking"
)

type ProductsHandler struct {
	repo         *repository.ProductsRepository
	ids          *tracking.Generator
	publisher    *events.Publisher
	organization string
	maxPageSize  int
	logger       *logrus.Entry
}

func NewProductsHandler(repo *repository.ProductsRepository, ids *tracking.Generator, publisher *events.Publisher, organization string, maxPageSize int, logger *logrus.Logger) *ProductsHandler {
	if logger == nil {
		logger = logrus.New()
	}
	return &ProductsHandler{
		repo:         repo,
		ids:          ids,
		publisher:    publisher,
		organization: organization,
		maxPageSize:  maxPageSize,
		logger:       logger.WithField("component", "products_handler"),
	}
}

func respondError(c *gin.Context, status int, code, message string) {
	c.JSON(status, models.ErrorResponse{
		Success: false,
		Error: models.Error{
			Code:    code,
			Message: message,
		},
	})
}

// CreateProduct submits a new record for review.
// POST /api/v1/products
func (h *ProductsHandler) CreateProduct(c *gin.Context) {
	var req models.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	company := req.Company
	if company == "" {
		company = h.organization
	}
	brand := req.Brand
	if brand == "" {
		brand = h.organization
	}

	trackingID, err := h.ids.Next(c.Request.Context())
	if err != nil {
		h.logger.WithError(err).Error("Failed to generate tracking id")
		respondError(c, http.StatusInternalServerError, "TRACKING_ID_ERROR", "Could not assign a tracking id")
		return
	}

	userID := middleware.GetUserID(c)
	product := &models.SeedProduct{
		TrackingID:        trackingID,
		Company:           company,
		Brand:             brand,
		ProductName:       req.ProductName,
		CropName:          req.CropName,
		Description:       req.Description,
		MRP:               req.MRP,
		UnitSalePrice:     req.UnitSalePrice,
		NetQuantity:       req.NetQuantity,
		PackSize:          req.PackSize,
		PacketCount:       req.PacketCount,
		RemainingQuantity: req.RemainingQuantity,
		LotNumber:         req.LotNumber,
		BatchCode:         req.BatchCode,
		StackNumber:       req.StackNumber,
		ManufacturingDate: req.ManufacturingDate,
		ExpiryDate:        req.ExpiryDate,
		TestDate:          req.TestDate,
		CustomerCare:      req.CustomerCare,
		Email:             req.Email,
		Address:           req.Address,
		MarketedBy:        req.MarketedBy,
		MarketCode:        req.MarketCode,
		ProductCode:       req.ProductCode,
		UnitCode:          req.UnitCode,
		StageCode:         req.StageCode,
		Status:            models.ProductStatusPending,
		CreatedBy:         &userID,
	}

	if err := h.repo.CreateProduct(c.Request.Context(), product); err != nil {
		h.logger.WithError(err).Error("Failed to create product")
		respondError(c, http.StatusInternalServerError, "CREATE_FAILED", "Failed to create product record")
		return
	}

	h.publisher.PublishProductCreated(product, userID)

	c.JSON(http.StatusCreated, models.ProductResponse{Success: true, Data: *product})
}

// GetProducts lists records with pagination and filters.
// GET /api/v1/products
func (h *ProductsHandler) GetProducts(c *gin.Context) {
	var req models.ListProductsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}
	if h.maxPageSize > 0 && req.Limit > h.maxPageSize {
		req.Limit = h.maxPageSize
	}

	products, total, err := h.repo.ListProducts(c.Request.Context(), &req)
	if err != nil {
		h.logger.WithError(err).Error("Failed to list products")
		respondError(c, http.StatusInternalServerError, "LIST_FAILED", "Failed to list product records")
		return
	}

	totalPages := 0
	if req.Limit > 0 {
		totalPages = int((total + int64(req.Limit) - 1) / int64(req.Limit))
	}

	c.JSON(http.StatusOK, models.ProductListResponse{
		Success: true,
		Data:    products,
		Pagination: models.PaginationInfo{
			Page:       req.Page,
			Limit:      req.Limit,
			Total:      total,
			TotalPages: totalPages,
		},
	})
}

// GetProduct returns one record by id.
// GET /api/v1/products/:id
func (h *ProductsHandler) GetProduct(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_ID", "Product id must be a UUID")
		return
	}

	product, err := h.repo.GetProductByID(c.Request.Context(), id)
	if err != nil {
		if repository.IsNotFound(err) {
			respondError(c, http.StatusNotFound, "PRODUCT_NOT_FOUND", "Product record not found")
			return
		}
		respondError(c, http.StatusInternalServerError, "GET_FAILED", "Failed to load product record")
		return
	}

	c.JSON(http.StatusOK, models.ProductResponse{Success: true, Data: *product})
}

// UpdateProduct applies a partial update to one record. The tracking id and
// status are not updatable here.
// PUT /api/v1/products/:id
func (h *ProductsHandler) UpdateProduct(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_ID", "Product id must be a UUID")
		return
	}

	var req models.UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	product, err := h.repo.GetProductByID(c.Request.Context(), id)
	if err != nil {
		if repository.IsNotFound(err) {
			respondError(c, http.StatusNotFound, "PRODUCT_NOT_FOUND", "Product record not found")
			return
		}
		respondError(c, http.StatusInternalServerError, "GET_FAILED", "Failed to load product record")
		return
	}

	applyUpdates(product, &req)
	userID := middleware.GetUserID(c)
	product.UpdatedBy = &userID

	if err := h.repo.SaveProduct(c.Request.Context(), product); err != nil {
		h.logger.WithError(err).Error("Failed to update product")
		respondError(c, http.StatusInternalServerError, "UPDATE_FAILED", "Failed to update product record")
		return
	}

	c.JSON(http.StatusOK, models.ProductResponse{Success: true, Data: *product})
}

// DeleteProduct soft-deletes a record.
// DELETE /api/v1/products/:id
func (h *ProductsHandler) DeleteProduct(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_ID", "Product id must be a UUID")
		return
	}

	if err := h.repo.DeleteProduct(c.Request.Context(), id); err != nil {
		if repository.IsNotFound(err) {
			respondError(c, http.StatusNotFound, "PRODUCT_NOT_FOUND", "Product record not found")
			return
		}
		h.logger.WithError(err).Error("Failed to delete product")
		respondError(c, http.StatusInternalServerError, "DELETE_FAILED", "Failed to delete product record")
		return
	}

	msg := "Product record deleted"
	c.JSON(http.StatusOK, models.SuccessResponse{Success: true, Message: &msg})
}

// UpdateProductStatus approves or rejects a pending record.
// PUT /api/v1/products/:id/status
func (h *ProductsHandler) UpdateProductStatus(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_ID", "Product id must be a UUID")
		return
	}

	var req models.UpdateProductStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	userID := middleware.GetUserID(c)
	product, err := h.repo.UpdateProductStatus(c.Request.Context(), id, req.Status, req.Notes, userID)
	if err != nil {
		if repository.IsNotFound(err) {
			respondError(c, http.StatusNotFound, "PRODUCT_NOT_FOUND", "Product record not found")
			return
		}
		h.logger.WithError(err).Error("Failed to update product status")
		respondError(c, http.StatusInternalServerError, "STATUS_UPDATE_FAILED", "Failed to update product status")
		return
	}

	h.publisher.PublishStatusChanged(product, userID)

	c.JSON(http.StatusOK, models.ProductResponse{Success: true, Data: *product})
}

// TrackProduct is the public lookup of an approved record by tracking code.
// GET /api/v1/track/:code
func (h *ProductsHandler) TrackProduct(c *gin.Context) {
	code := c.Param("code")

	product, err := h.repo.GetProductByTrackingID(c.Request.Context(), code, true)
	if err != nil {
		if repository.IsNotFound(err) {
			respondError(c, http.StatusNotFound, "PRODUCT_NOT_FOUND", "No approved product found for this tracking code")
			return
		}
		h.logger.WithError(err).Error("Tracking lookup failed")
		respondError(c, http.StatusInternalServerError, "LOOKUP_FAILED", "Failed to look up tracking code")
		return
	}

	c.JSON(http.StatusOK, models.ProductResponse{Success: true, Data: *product})
}

func applyUpdates(product *models.SeedProduct, req *models.UpdateProductRequest) {
	if req.Company != nil {
		product.Company = *req.Company
	}
	if req.Brand != nil {
		product.Brand = *req.Brand
	}
	if req.ProductName != nil {
		product.ProductName = *req.ProductName
	}
	if req.CropName != nil {
		product.CropName = req.CropName
	}
	if req.Description != nil {
		product.Description = req.Description
	}
	if req.MRP != nil {
		product.MRP = req.MRP
	}
	if req.UnitSalePrice != nil {
		product.UnitSalePrice = req.UnitSalePrice
	}
	if req.NetQuantity != nil {
		product.NetQuantity = req.NetQuantity
	}
	if req.PackSize != nil {
		product.PackSize = req.PackSize
	}
	if req.PacketCount != nil {
		product.PacketCount = req.PacketCount
	}
	if req.RemainingQuantity != nil {
		product.RemainingQuantity = req.RemainingQuantity
	}
	if req.LotNumber != nil {
		product.LotNumber = req.LotNumber
	}
	if req.BatchCode != nil {
		product.BatchCode = req.BatchCode
	}
	if req.StackNumber != nil {
		product.StackNumber = req.StackNumber
	}
	if req.ManufacturingDate != nil {
		product.ManufacturingDate = req.ManufacturingDate
	}
	if req.ExpiryDate != nil {
		product.ExpiryDate = req.ExpiryDate
	}
	if req.TestDate != nil {
		product.TestDate = req.TestDate
	}
	if req.CustomerCare != nil {
		product.CustomerCare = req.CustomerCare
	}
	if req.Email != nil {
		product.Email = req.Email
	}
	if req.Address != nil {
		product.Address = req.Address
	}
	if req.MarketedBy != nil {
		product.MarketedBy = req.MarketedBy
	}
	if req.MarketCode != nil {
		product.MarketCode = req.MarketCode
	}
	if req.ProductCode != nil {
		product.ProductCode = req.ProductCode
	}
	if req.UnitCode != nil {
		product.UnitCode = req.UnitCode
	}
	if req.StageCode != nil {
		product.StageCode = req.StageCode
	}
}
