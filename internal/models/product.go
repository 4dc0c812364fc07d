package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ProductStatus represents the review status of a seed product record
type ProductStatus string

const (
	ProductStatusPending  ProductStatus = "PENDING"
	ProductStatusApproved ProductStatus = "APPROVED"
	ProductStatusRejected ProductStatus = "REJECTED"
)

// SeedProduct represents one regulatory seed product record.
//
// Pricing and quantity fields are stored as decimal-as-string to match the
// label values printed on packaging; date fields are opaque display strings
// because regulatory labels are not necessarily Gregorian-clean and are never
// computed on.
type SeedProduct struct {
	ID         uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	TrackingID string    `json:"trackingId" gorm:"not null;uniqueIndex:idx_seed_products_tracking_id"`

	// Identity
	Company     string  `json:"company" gorm:"not null"`
	Brand       string  `json:"brand" gorm:"not null"`
	ProductName string  `json:"productName" gorm:"not null;index"`
	CropName    *string `json:"cropName,omitempty"`
	Description *string `json:"description,omitempty"`

	// Pricing
	MRP           *string `json:"mrp,omitempty" gorm:"column:mrp"`
	UnitSalePrice *string `json:"unitSalePrice,omitempty"`

	// Packaging
	NetQuantity       *string `json:"netQuantity,omitempty"`
	PackSize          *string `json:"packSize,omitempty"`
	PacketCount       *string `json:"packetCount,omitempty"`
	RemainingQuantity *string `json:"remainingQuantity,omitempty"`

	// Lot / batch identifiers
	LotNumber   *string `json:"lotNumber,omitempty" gorm:"index"`
	BatchCode   *string `json:"batchCode,omitempty"`
	StackNumber *string `json:"stackNumber,omitempty"`

	// Dates (display strings, never parsed)
	ManufacturingDate *string `json:"manufacturingDate,omitempty"`
	ExpiryDate        *string `json:"expiryDate,omitempty"`
	TestDate          *string `json:"testDate,omitempty"`

	// Contact / marketing
	CustomerCare *string `json:"customerCare,omitempty"`
	Email        *string `json:"email,omitempty"`
	Address      *string `json:"address,omitempty"`
	MarketedBy   *string `json:"marketedBy,omitempty"`

	// Classification codes
	MarketCode  *string `json:"marketCode,omitempty"`
	ProductCode *string `json:"productCode,omitempty"`
	UnitCode    *string `json:"unitCode,omitempty"`
	StageCode   *string `json:"stageCode,omitempty"`

	Status      ProductStatus `json:"status" gorm:"not null;default:'PENDING';index:idx_seed_products_status"`
	StatusNotes *string       `json:"statusNotes,omitempty"`
	ReviewedBy  *string       `json:"reviewedBy,omitempty"`
	ReviewedAt  *time.Time    `json:"reviewedAt,omitempty"`

	CreatedBy *string         `json:"createdBy,omitempty"`
	UpdatedBy *string         `json:"updatedBy,omitempty"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
	DeletedAt *gorm.DeletedAt `json:"deletedAt,omitempty" gorm:"index"`
}

// TableName returns the table name for the SeedProduct model
func (SeedProduct) TableName() string {
	return "seed_products"
}

type CreateProductRequest struct {
	Company           string  `json:"company"`
	Brand             string  `json:"brand"`
	ProductName       string  `json:"productName" binding:"required"`
	CropName          *string `json:"cropName,omitempty"`
	Description       *string `json:"description,omitempty"`
	MRP               *string `json:"mrp,omitempty"`
	UnitSalePrice     *string `json:"unitSalePrice,omitempty"`
	NetQuantity       *string `json:"netQuantity,omitempty"`
	PackSize          *string `json:"packSize,omitempty"`
	PacketCount       *string `json:"packetCount,omitempty"`
	RemainingQuantity *string `json:"remainingQuantity,omitempty"`
	LotNumber         *string `json:"lotNumber,omitempty"`
	BatchCode         *string `json:"batchCode,omitempty"`
	StackNumber       *string `json:"stackNumber,omitempty"`
	ManufacturingDate *string `json:"manufacturingDate,omitempty"`
	ExpiryDate        *string `json:"expiryDate,omitempty"`
	TestDate          *string `json:"testDate,omitempty"`
	CustomerCare      *string `json:"customerCare,omitempty"`
	Email             *string `json:"email,omitempty"`
	Address           *string `json:"address,omitempty"`
	MarketedBy        *string `json:"marketedBy,omitempty"`
	MarketCode        *string `json:"marketCode,omitempty"`
	ProductCode       *string `json:"productCode,omitempty"`
	UnitCode          *string `json:"unitCode,omitempty"`
	StageCode         *string `json:"stageCode,omitempty"`
}

type UpdateProductRequest struct {
	Company           *string `json:"company,omitempty"`
	Brand             *string `json:"brand,omitempty"`
	ProductName       *string `json:"productName,omitempty"`
	CropName          *string `json:"cropName,omitempty"`
	Description       *string `json:"description,omitempty"`
	MRP               *string `json:"mrp,omitempty"`
	UnitSalePrice     *string `json:"unitSalePrice,omitempty"`
	NetQuantity       *string `json:"netQuantity,omitempty"`
	PackSize          *string `json:"packSize,omitempty"`
	PacketCount       *string `json:"packetCount,omitempty"`
	RemainingQuantity *string `json:"remainingQuantity,omitempty"`
	LotNumber         *string `json:"lotNumber,omitempty"`
	BatchCode         *string `json:"batchCode,omitempty"`
	StackNumber       *string `json:"stackNumber,omitempty"`
	ManufacturingDate *string `json:"manufacturingDate,omitempty"`
	ExpiryDate        *string `json:"expiryDate,omitempty"`
	TestDate          *string `json:"testDate,omitempty"`
	CustomerCare      *string `json:"customerCare,omitempty"`
	Email             *string `json:"email,omitempty"`
	Address           *string `json:"address,omitempty"`
	MarketedBy        *string `json:"marketedBy,omitempty"`
	MarketCode        *string `json:"marketCode,omitempty"`
	ProductCode       *string `json:"productCode,omitempty"`
	UnitCode          *string `json:"unitCode,omitempty"`
	StageCode         *string `json:"stageCode,omitempty"`
}

type UpdateProductStatusRequest struct {
	Status ProductStatus `json:"status" binding:"required,oneof=APPROVED REJECTED PENDING"`
	Notes  *string       `json:"notes,omitempty"`
}

type ListProductsRequest struct {
	Page     int           `form:"page,default=1"`
	Limit    int           `form:"limit,default=20"`
	Status   ProductStatus `form:"status"`
	Search   string        `form:"search"`
	CropName string        `form:"cropName"`
}

type ExportProductsRequest struct {
	Status ProductStatus `json:"status,omitempty"`
	Search string        `json:"search,omitempty"`
}

type PaginationInfo struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
}

type ProductResponse struct {
	Success bool        `json:"success"`
	Data    SeedProduct `json:"data"`
}

type ProductListResponse struct {
	Success    bool           `json:"success"`
	Data       []SeedProduct  `json:"data"`
	Pagination PaginationInfo `json:"pagination"`
}

type ErrorResponse struct {
	Success bool  `json:"success"`
	Error   Error `json:"error"`
}

type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

type SuccessResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Message *string     `json:"message,omitempty"`
}
