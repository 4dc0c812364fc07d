package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/shivajik/prodtracking-sub000/internal/models"
)

// Public tracking lookups are the hot path.
const trackingCacheTTL = 10 * time.Minute

var ErrNotFound = gorm.ErrRecordNotFound

type ProductsRepository struct {
	db    *gorm.DB
	redis *redis.Client
}

func NewProductsRepository(db *gorm.DB, redisClient *redis.Client) *ProductsRepository {
	return &ProductsRepository{
		db:    db,
		redis: redisClient,
	}
}

func trackingCacheKey(code string) string {
	return fmt.Sprintf("prodtracking:track:%s", code)
}

func (r *ProductsRepository) invalidateTrackingCache(ctx context.Context, code string) {
	if r.redis == nil || code == "" {
		return
	}
	_ = r.redis.Del(ctx, trackingCacheKey(code)).Err()
}

// CreateProduct inserts a new seed product record.
func (r *ProductsRepository) CreateProduct(ctx context.Context, product *models.SeedProduct) error {
	if product.ID == uuid.Nil {
		product.ID = uuid.New()
	}
	product.CreatedAt = time.Now()
	product.UpdatedAt = time.Now()
	if product.Status == "" {
		product.Status = models.ProductStatusPending
	}
	return r.db.WithContext(ctx).Create(product).Error
}

func (r *ProductsRepository) GetProductByID(ctx context.Context, id uuid.UUID) (*models.SeedProduct, error) {
	var product models.SeedProduct
	err := r.db.WithContext(ctx).First(&product, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// GetProductByTrackingID resolves a record by its public tracking code.
// Approved-only lookups go through a redis read-through cache; the approval
// filter is applied after the cache so one cached copy serves both paths.
func (r *ProductsRepository) GetProductByTrackingID(ctx context.Context, code string, approvedOnly bool) (*models.SeedProduct, error) {
	if r.redis != nil {
		if cached, err := r.redis.Get(ctx, trackingCacheKey(code)).Result(); err == nil {
			var product models.SeedProduct
			if err := json.Unmarshal([]byte(cached), &product); err == nil {
				if approvedOnly && product.Status != models.ProductStatusApproved {
					return nil, ErrNotFound
				}
				return &product, nil
			}
		}
	}

	var product models.SeedProduct
	err := r.db.WithContext(ctx).First(&product, "tracking_id = ?", code).Error
	if err != nil {
		return nil, err
	}

	if r.redis != nil {
		if data, err := json.Marshal(&product); err == nil {
			_ = r.redis.Set(ctx, trackingCacheKey(code), data, trackingCacheTTL).Err()
		}
	}

	if approvedOnly && product.Status != models.ProductStatusApproved {
		return nil, ErrNotFound
	}
	return &product, nil
}

// ListProducts returns a page of records with optional status, crop and
// free-text filters.
func (r *ProductsRepository) ListProducts(ctx context.Context, req *models.ListProductsRequest) ([]models.SeedProduct, int64, error) {
	query := r.applyFilters(r.db.WithContext(ctx).Model(&models.SeedProduct{}), req.Status, req.Search, req.CropName)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page := req.Page
	if page < 1 {
		page = 1
	}
	limit := req.Limit
	if limit < 1 {
		limit = 20
	}

	var products []models.SeedProduct
	err := query.
		Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&products).Error
	if err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

// GetProductsForExport returns every matching record, unpaginated, ordered by
// creation time so report rows are stable across exports.
func (r *ProductsRepository) GetProductsForExport(ctx context.Context, req *models.ExportProductsRequest) ([]models.SeedProduct, error) {
	query := r.applyFilters(r.db.WithContext(ctx).Model(&models.SeedProduct{}), req.Status, req.Search, "")

	var products []models.SeedProduct
	if err := query.Order("created_at ASC").Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

func (r *ProductsRepository) applyFilters(query *gorm.DB, status models.ProductStatus, search, cropName string) *gorm.DB {
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if cropName != "" {
		query = query.Where("crop_name ILIKE ?", cropName)
	}
	if search != "" {
		pattern := "%" + search + "%"
		query = query.Where(
			"product_name ILIKE ? OR brand ILIKE ? OR lot_number ILIKE ? OR tracking_id ILIKE ?",
			pattern, pattern, pattern, pattern,
		)
	}
	return query
}

// SaveProduct persists mutations made by the handler on a loaded record.
func (r *ProductsRepository) SaveProduct(ctx context.Context, product *models.SeedProduct) error {
	product.UpdatedAt = time.Now()
	err := r.db.WithContext(ctx).Save(product).Error
	if err == nil {
		r.invalidateTrackingCache(ctx, product.TrackingID)
	}
	return err
}

// UpdateProductStatus applies an approve/reject decision.
func (r *ProductsRepository) UpdateProductStatus(ctx context.Context, id uuid.UUID, status models.ProductStatus, notes *string, reviewer string) (*models.SeedProduct, error) {
	product, err := r.GetProductByID(ctx, id)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	product.Status = status
	product.StatusNotes = notes
	product.ReviewedBy = &reviewer
	product.ReviewedAt = &now
	product.UpdatedAt = now

	if err := r.db.WithContext(ctx).Save(product).Error; err != nil {
		return nil, err
	}
	r.invalidateTrackingCache(ctx, product.TrackingID)
	return product, nil
}

// DeleteProduct soft-deletes a record.
func (r *ProductsRepository) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	product, err := r.GetProductByID(ctx, id)
	if err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Delete(product).Error; err != nil {
		return err
	}
	r.invalidateTrackingCache(ctx, product.TrackingID)
	return nil
}

// TrackingIDExists reports whether a tracking code is already assigned,
// deleted records included so codes are never reused.
func (r *ProductsRepository) TrackingIDExists(ctx context.Context, code string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Unscoped().
		Model(&models.SeedProduct{}).
		Where("tracking_id = ?", code).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// CreateImportRun persists the audit record of one import invocation.
func (r *ProductsRepository) CreateImportRun(ctx context.Context, run *models.ImportRun) error {
	if run.ID == uuid.Nil {
		run.ID = uuid.New()
	}
	run.CreatedAt = time.Now()
	return r.db.WithContext(ctx).Create(run).Error
}

// ListImportRuns returns import history, newest first.
func (r *ProductsRepository) ListImportRuns(ctx context.Context, page, limit int) ([]models.ImportRun, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}

	var total int64
	if err := r.db.WithContext(ctx).Model(&models.ImportRun{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var runs []models.ImportRun
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&runs).Error
	if err != nil {
		return nil, 0, err
	}
	return runs, total, nil
}

// IsNotFound reports whether err is the repository not-found error.
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
