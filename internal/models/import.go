package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/datatypes"
)

// ImportFormat represents the file format for import
type ImportFormat string

const (
	ImportFormatCSV  ImportFormat = "csv"
	ImportFormatXLSX ImportFormat = "xlsx"
)

// ImportTemplateColumn defines a column in the import template
type ImportTemplateColumn struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Required    bool   `json:"required"`
	Type        string `json:"type"` // string, number, date
	Example     string `json:"example"`
}

// ImportTemplate defines the structure of an import template
type ImportTemplate struct {
	Entity  string                 `json:"entity"`
	Version string                 `json:"version"`
	Columns []ImportTemplateColumn `json:"columns"`
}

// ImportRun is the persisted audit record of one import invocation.
// Errors holds at most the first ten captured row errors; SkippedCount
// reflects the true failure count.
type ImportRun struct {
	ID            uuid.UUID      `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	FileName      string         `json:"fileName" gorm:"not null"`
	Format        ImportFormat   `json:"format" gorm:"not null"`
	TotalRows     int            `json:"totalRows" gorm:"not null"`
	ImportedCount int            `json:"importedCount" gorm:"not null"`
	SkippedCount  int            `json:"skippedCount" gorm:"not null"`
	Errors        pq.StringArray `json:"errors,omitempty" gorm:"type:text[]"`
	ColumnMap     datatypes.JSON `json:"columnMap,omitempty" gorm:"type:jsonb"`
	CreatedBy     *string        `json:"createdBy,omitempty"`
	CreatedAt     time.Time      `json:"createdAt"`
}

// TableName returns the table name for the ImportRun model
func (ImportRun) TableName() string {
	return "import_runs"
}

// SeedProductImportColumns returns the column definitions for product import.
// These are the canonical headers of the downloadable template; the importer
// additionally accepts the header aliases in internal/importer.
func SeedProductImportColumns() []ImportTemplateColumn {
	return []ImportTemplateColumn{
		{Name: "Product", Description: "Product name (falls back to Crop Name, then a positional placeholder)", Required: false, Type: "string", Example: "Research Hybrid Maize"},
		{Name: "Crop Name", Description: "Crop the seed lot belongs to", Required: false, Type: "string", Example: "Maize"},
		{Name: "Company", Description: "Producing company (defaults to the registered organization)", Required: false, Type: "string", Example: ""},
		{Name: "Brand", Description: "Brand name (defaults to the registered organization)", Required: false, Type: "string", Example: ""},
		{Name: "Description", Description: "Free text; synthesized from other fields when absent", Required: false, Type: "string", Example: ""},
		{Name: "MRP", Description: "Maximum retail price", Required: false, Type: "number", Example: "450"},
		{Name: "Unit Sale Price", Description: "Per-unit sale price", Required: false, Type: "number", Example: "430"},
		{Name: "Net Quantity", Description: "Net quantity per pack", Required: false, Type: "number", Example: "4"},
		{Name: "Pack Size", Description: "Pack size with unit", Required: false, Type: "string", Example: "4 kg"},
		{Name: "Packet Count", Description: "Number of packets", Required: false, Type: "number", Example: "50"},
		{Name: "Remaining Quantity", Description: "Remaining stock quantity", Required: false, Type: "number", Example: ""},
		{Name: "Lot Number", Description: "Seed lot number", Required: false, Type: "string", Example: "OCT-24-1-8-5077"},
		{Name: "Batch Code", Description: "Batch / lot code", Required: false, Type: "string", Example: "B-2024-113"},
		{Name: "Stack Number", Description: "Warehouse stack number", Required: false, Type: "string", Example: "ST-12"},
		{Name: "Date of Manufacture", Description: "Manufacturing date as printed on the label", Required: false, Type: "date", Example: "05/10/2024"},
		{Name: "Expiry Date", Description: "Use-before date as printed on the label", Required: false, Type: "date", Example: "04/07/2025"},
		{Name: "Date of Test", Description: "Germination test date", Required: false, Type: "date", Example: "01/10/2024"},
		{Name: "Customer Care", Description: "Customer care phone number", Required: false, Type: "string", Example: ""},
		{Name: "Email", Description: "Contact email", Required: false, Type: "string", Example: ""},
		{Name: "Address", Description: "Registered address", Required: false, Type: "string", Example: ""},
		{Name: "Marketed By", Description: "Marketing entity", Required: false, Type: "string", Example: ""},
		{Name: "Market Code", Description: "Market classification code", Required: false, Type: "string", Example: ""},
		{Name: "Product Code", Description: "Internal product code", Required: false, Type: "string", Example: ""},
		{Name: "Unit Code", Description: "Unit-of-measure code", Required: false, Type: "string", Example: "KG"},
		{Name: "Stage Code", Description: "Certification stage code", Required: false, Type: "string", Example: ""},
	}
}

// SeedProductImportTemplate returns the template definition for seed products
func SeedProductImportTemplate() ImportTemplate {
	return ImportTemplate{
		Entity:  "seed-products",
		Version: "1.0",
		Columns: SeedProductImportColumns(),
	}
}
