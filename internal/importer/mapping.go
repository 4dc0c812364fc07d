package importer

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shivajik/prodtracking-sub000/internal/models"
)

type coercionKind int

const (
	coerceText coercionKind = iota
	coerceDecimal
	coerceDate
	coerceIgnore
)

// fieldSpec binds one canonical product field to its accepted source header
// aliases, in priority order, and the coercion applied to the raw value.
// Aliases are stored pre-normalized (lowercase, trimmed) to match parser
// header keys.
type fieldSpec struct {
	field   string
	aliases []string
	kind    coercionKind
}

var fieldSpecs = []fieldSpec{
	{"productName", []string{"product", "product name", "productname", "name", "variety", "variety name"}, coerceText},
	{"cropName", []string{"crop name", "crop", "cropname"}, coerceText},
	{"company", []string{"company", "company name", "producer", "produced by"}, coerceText},
	{"brand", []string{"brand", "brand name"}, coerceText},
	{"description", []string{"description", "details", "remarks"}, coerceText},
	{"mrp", []string{"mrp", "mrp (₹)", "mrp(₹)", "mrp (rs)", "mrp (rs.)", "maximum retail price", "price"}, coerceDecimal},
	{"unitSalePrice", []string{"unit sale price", "unit sale price (₹)", "sale price", "unit price", "usp"}, coerceDecimal},
	{"netQuantity", []string{"net quantity", "net qty", "net quantity (kg)", "net wt", "net weight"}, coerceDecimal},
	{"packSize", []string{"pack size", "packing size", "packing"}, coerceText},
	{"packetCount", []string{"packet count", "packets", "no. of packets", "number of packets", "packets count"}, coerceDecimal},
	{"remainingQuantity", []string{"remaining quantity", "remaining qty", "balance quantity", "balance qty"}, coerceDecimal},
	{"lotNumber", []string{"lot number", "lot no", "lot no.", "lot"}, coerceText},
	{"batchCode", []string{"batch code", "lot/batch code", "batch no", "batch no.", "batch"}, coerceText},
	{"stackNumber", []string{"stack number", "stack no", "stack no.", "stack"}, coerceText},
	{"manufacturingDate", []string{"date of manufacture", "manufacturing date", "mfg date", "mfg. date", "dom"}, coerceDate},
	{"expiryDate", []string{"expiry date", "use before", "valid upto", "expiry", "exp date"}, coerceDate},
	{"testDate", []string{"date of test", "test date", "date of testing"}, coerceDate},
	{"customerCare", []string{"customer care", "customer care no", "customer care no.", "helpline"}, coerceText},
	{"email", []string{"email", "e-mail", "email id"}, coerceText},
	{"address", []string{"address", "registered address"}, coerceText},
	{"marketedBy", []string{"marketed by", "marketing company"}, coerceText},
	{"marketCode", []string{"market code"}, coerceText},
	{"productCode", []string{"product code", "prod code"}, coerceText},
	{"unitCode", []string{"unit code", "uom", "uom code", "unit of measure"}, coerceText},
	{"stageCode", []string{"stage code", "seed class", "class"}, coerceText},
	// The importer is the sole authority for id assignment; ids present in
	// the source file are always discarded.
	{"trackingId", []string{"tracking id", "tracking code", "unique id", "qr code", "id"}, coerceIgnore},
}

// Spreadsheet day-zero for date-serial numbers.
var spreadsheetEpoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

// Numeric values below this are left as free text rather than treated as a
// date serial. Keeps small counts and codes from turning into 19th-century
// dates.
const minDateSerial = 25568

// Mapper produces a SeedProduct-shaped record from one row-record.
type Mapper struct {
	// Organization is the fallback for company and brand when the source
	// file carries neither.
	Organization string
}

func NewMapper(organization string) *Mapper {
	return &Mapper{Organization: organization}
}

// MapRow resolves every canonical field of the row through the alias table
// and applies the coercion and fallback rules. It never fails: malformed
// numeric cells degrade to nil and a missing product name degrades to a
// placeholder, so mapping alone can never cause a row skip.
func (m *Mapper) MapRow(row Row) *models.SeedProduct {
	values := make(map[string]*string, len(fieldSpecs))
	for _, spec := range fieldSpecs {
		if spec.kind == coerceIgnore {
			continue
		}
		raw, ok := resolve(row, spec.aliases)
		if !ok {
			continue
		}
		switch spec.kind {
		case coerceDecimal:
			values[spec.field] = coerceDecimalValue(raw)
		case coerceDate:
			v := formatDisplayDate(raw)
			values[spec.field] = &v
		default:
			v := raw
			values[spec.field] = &v
		}
	}

	p := &models.SeedProduct{
		Company:           stringOr(values["company"], m.Organization),
		Brand:             stringOr(values["brand"], m.Organization),
		ProductName:       m.productName(values, row.Number),
		CropName:          values["cropName"],
		Description:       values["description"],
		MRP:               values["mrp"],
		UnitSalePrice:     values["unitSalePrice"],
		NetQuantity:       values["netQuantity"],
		PackSize:          values["packSize"],
		PacketCount:       values["packetCount"],
		RemainingQuantity: values["remainingQuantity"],
		LotNumber:         values["lotNumber"],
		BatchCode:         values["batchCode"],
		StackNumber:       values["stackNumber"],
		ManufacturingDate: values["manufacturingDate"],
		ExpiryDate:        values["expiryDate"],
		TestDate:          values["testDate"],
		CustomerCare:      values["customerCare"],
		Email:             values["email"],
		Address:           values["address"],
		MarketedBy:        values["marketedBy"],
		MarketCode:        values["marketCode"],
		ProductCode:       values["productCode"],
		UnitCode:          values["unitCode"],
		StageCode:         values["stageCode"],
	}

	if p.Description == nil {
		if desc := synthesizeDescription(p); desc != "" {
			p.Description = &desc
		}
	}

	return p
}

// productName applies the name fallback chain: product aliases, then the crop
// name, then a positional placeholder. A row is never skipped solely for a
// missing name.
func (m *Mapper) productName(values map[string]*string, rowNum int) string {
	if v := values["productName"]; v != nil && *v != "" {
		return *v
	}
	if v := values["cropName"]; v != nil && *v != "" {
		return *v
	}
	return fmt.Sprintf("Product %d", rowNum)
}

// ResolveColumns reports which source header each canonical field was matched
// from, for import-run diagnostics. Fields with no matching header are absent.
func ResolveColumns(headers []string) map[string]string {
	present := make(map[string]bool, len(headers))
	for _, h := range headers {
		present[h] = true
	}
	resolved := make(map[string]string)
	for _, spec := range fieldSpecs {
		if spec.kind == coerceIgnore {
			continue
		}
		for _, alias := range spec.aliases {
			if present[alias] {
				resolved[spec.field] = alias
				break
			}
		}
	}
	return resolved
}

// resolve tries the aliases in priority order and takes the first present,
// non-blank value.
func resolve(row Row, aliases []string) (string, bool) {
	for _, alias := range aliases {
		if v, ok := row.Cells[alias]; ok {
			if trimmed := strings.TrimSpace(v); trimmed != "" {
				return trimmed, true
			}
		}
	}
	return "", false
}

// coerceDecimalValue returns nil for blank or unparseable numeric cells.
// Silent degradation to nil is deliberate: downstream consumers expect null
// rather than rejection for malformed numeric label values like "Ask Store".
func coerceDecimalValue(raw string) *string {
	cleaned := strings.ReplaceAll(strings.TrimSpace(raw), ",", "")
	if cleaned == "" {
		return nil
	}
	if _, err := strconv.ParseFloat(cleaned, 64); err != nil {
		return nil
	}
	return &cleaned
}

// formatDisplayDate converts a spreadsheet date serial to a dd/mm/yyyy display
// string. Anything that is not a plausible serial passes through unchanged:
// dates stay free text in this system, matching the regulatory labels they
// are transcribed from.
func formatDisplayDate(raw string) string {
	serial, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || serial < minDateSerial {
		return raw
	}
	return spreadsheetEpoch.AddDate(0, 0, int(serial)).Format("02/01/2006")
}

func synthesizeDescription(p *models.SeedProduct) string {
	parts := []string{p.ProductName}
	if p.CropName != nil && *p.CropName != "" && *p.CropName != p.ProductName {
		parts = append(parts, fmt.Sprintf("(%s)", *p.CropName))
	}
	if p.LotNumber != nil && *p.LotNumber != "" {
		parts = append(parts, "lot "+*p.LotNumber)
	}
	if p.Company != "" {
		parts = append(parts, "by "+p.Company)
	}
	return strings.Join(parts, " ")
}

func stringOr(v *string, fallback string) string {
	if v != nil && *v != "" {
		return *v
	}
	return fallback
}
