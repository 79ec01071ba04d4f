package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"
	"github.com/kahvecikaan/probagno/internal/domain"
	"github.com/kahvecikaan/probagno/internal/events"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// PostgresRepository stores the catalog in PostgreSQL through gorm.
// Change signals are published for mutations made through this process only.
type PostgresRepository struct {
	db  *gorm.DB
	bus *events.ChangeBus
	log hclog.Logger
}

// OpenPostgres connects to the database at dsn
func OpenPostgres(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Warn),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("unable to open database: %w", err)
	}
	return db, nil
}

// NewPostgresRepository migrates the schema and returns the repository
func NewPostgresRepository(db *gorm.DB, bus *events.ChangeBus, log hclog.Logger) (*PostgresRepository, error) {
	if err := db.AutoMigrate(&productRow{}, &categoryRow{}, &settingRow{}); err != nil {
		return nil, fmt.Errorf("unable to migrate schema: %w", err)
	}
	if log == nil {
		log = hclog.NewNullLogger()
	}
	return &PostgresRepository{db: db, bus: bus, log: log}, nil
}

func (r *PostgresRepository) publish(c events.Change) {
	r.log.Debug("Publishing change", "table", c.Table, "slug", c.Slug, "key", c.Key)
	if r.bus != nil {
		r.bus.Publish(c)
	}
}

func (r *PostgresRepository) ListProducts(ctx context.Context) (domain.Products, error) {
	var rows []productRow
	if err := r.db.WithContext(ctx).Order("created_at desc").Find(&rows).Error; err != nil {
		return nil, err
	}

	products := make(domain.Products, 0, len(rows))
	for _, row := range rows {
		products = append(products, row.toDomain())
	}
	return products, nil
}

// validID reports whether id fits the uuid primary key columns. Other ids
// cannot match a row.
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

func (r *PostgresRepository) GetProductByID(ctx context.Context, id string) (*domain.Product, error) {
	if !validID(id) {
		return nil, domain.ErrProductNotFound
	}
	return r.findProduct(ctx, "id = ?", id)
}

func (r *PostgresRepository) GetProductBySlug(ctx context.Context, slug string) (*domain.Product, error) {
	return r.findProduct(ctx, "slug = ?", slug)
}

func (r *PostgresRepository) findProduct(ctx context.Context, query string, arg any) (*domain.Product, error) {
	var row productRow
	err := r.db.WithContext(ctx).Where(query, arg).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrProductNotFound
	}
	if err != nil {
		return nil, err
	}
	return row.toDomain(), nil
}

func (r *PostgresRepository) CreateProduct(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	row := toProductRow(product)
	if row.ID == "" {
		row.ID = uuid.New().String()
	}
	row.CreatedAt = time.Now().UTC()
	row.UpdatedAt = row.CreatedAt

	err := r.db.WithContext(ctx).Create(&row).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return nil, domain.ErrDuplicateSlug
	}
	if err != nil {
		return nil, err
	}

	r.publish(events.Change{Table: domain.KindProducts, Slug: row.Slug})
	return row.toDomain(), nil
}

func (r *PostgresRepository) UpdateProduct(ctx context.Context, id string, patch domain.ProductPatch) (*domain.Product, error) {
	if !validID(id) {
		return nil, domain.ErrProductNotFound
	}
	cols, err := storageValues(patch.Columns())
	if err != nil {
		return nil, err
	}
	cols["updated_at"] = time.Now().UTC()

	res := r.db.WithContext(ctx).Model(&productRow{}).Where("id = ?", id).Updates(cols)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, domain.ErrProductNotFound
	}

	updated, err := r.GetProductByID(ctx, id)
	if err != nil {
		return nil, err
	}

	r.publish(events.Change{Table: domain.KindProducts, Slug: updated.Slug})
	return updated, nil
}

func (r *PostgresRepository) DeleteProduct(ctx context.Context, id string) error {
	if !validID(id) {
		return domain.ErrProductNotFound
	}
	var deleted []productRow
	res := r.db.WithContext(ctx).Clauses(clause.Returning{Columns: []clause.Column{{Name: "slug"}}}).
		Where("id = ?", id).Delete(&deleted)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrProductNotFound
	}

	change := events.Change{Table: domain.KindProducts}
	if len(deleted) == 1 {
		change.Slug = deleted[0].Slug
	}
	r.publish(change)
	return nil
}

func (r *PostgresRepository) UpsertProductBySlug(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	row := toProductRow(product)
	row.ID = uuid.New().String()
	row.CreatedAt = time.Now().UTC()
	row.UpdatedAt = row.CreatedAt

	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "slug"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"name", "name_en", "description", "description_en", "category", "subcategory",
			"tags", "base_price", "sale_price", "images", "dimensions", "materials",
			"colors", "features", "in_stock", "featured", "best_seller", "updated_at",
		}),
	}).Create(&row).Error
	if err != nil {
		return nil, err
	}

	stored, err := r.GetProductBySlug(ctx, row.Slug)
	if err != nil {
		return nil, err
	}

	r.publish(events.Change{Table: domain.KindProducts, Slug: stored.Slug})
	return stored, nil
}

func (r *PostgresRepository) ListCategories(ctx context.Context) ([]*domain.Category, error) {
	var rows []categoryRow
	if err := r.db.WithContext(ctx).Order("name").Find(&rows).Error; err != nil {
		return nil, err
	}

	categories := make([]*domain.Category, 0, len(rows))
	for _, row := range rows {
		categories = append(categories, row.toDomain())
	}
	return categories, nil
}

func (r *PostgresRepository) CreateCategory(ctx context.Context, category *domain.Category) (*domain.Category, error) {
	row := toCategoryRow(category)
	if row.ID == "" {
		row.ID = uuid.New().String()
	}
	row.CreatedAt = time.Now().UTC()
	row.UpdatedAt = row.CreatedAt

	err := r.db.WithContext(ctx).Create(&row).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return nil, domain.ErrDuplicateSlug
	}
	if err != nil {
		return nil, err
	}

	r.publish(events.Change{Table: domain.KindCategories, Slug: row.Slug})
	return row.toDomain(), nil
}

func (r *PostgresRepository) UpdateCategory(ctx context.Context, id string, patch domain.CategoryPatch) (*domain.Category, error) {
	if !validID(id) {
		return nil, domain.ErrCategoryNotFound
	}
	cols := patch.Columns()
	cols["updated_at"] = time.Now().UTC()

	res := r.db.WithContext(ctx).Model(&categoryRow{}).Where("id = ?", id).Updates(cols)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, domain.ErrCategoryNotFound
	}

	var row categoryRow
	if err := r.db.WithContext(ctx).Where("id = ?", id).Take(&row).Error; err != nil {
		return nil, err
	}

	r.publish(events.Change{Table: domain.KindCategories, Slug: row.Slug})
	return row.toDomain(), nil
}

func (r *PostgresRepository) DeleteCategory(ctx context.Context, id string) error {
	if !validID(id) {
		return domain.ErrCategoryNotFound
	}
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&categoryRow{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrCategoryNotFound
	}

	r.publish(events.Change{Table: domain.KindCategories})
	return nil
}

func (r *PostgresRepository) UpsertCategoryBySlug(ctx context.Context, category *domain.Category) (*domain.Category, error) {
	row := toCategoryRow(category)
	row.ID = uuid.New().String()
	row.CreatedAt = time.Now().UTC()
	row.UpdatedAt = row.CreatedAt

	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "slug"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "name_en", "description", "image", "product_count", "updated_at"}),
	}).Create(&row).Error
	if err != nil {
		return nil, err
	}

	var stored categoryRow
	if err := r.db.WithContext(ctx).Where("slug = ?", row.Slug).Take(&stored).Error; err != nil {
		return nil, err
	}

	r.publish(events.Change{Table: domain.KindCategories, Slug: stored.Slug})
	return stored.toDomain(), nil
}

func (r *PostgresRepository) GetSetting(ctx context.Context, key string) (json.RawMessage, bool, error) {
	var row settingRow
	err := r.db.WithContext(ctx).Where("key = ?", key).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return json.RawMessage(row.Value), true, nil
}

func (r *PostgresRepository) UpsertSetting(ctx context.Context, key string, value json.RawMessage) error {
	row := settingRow{Key: key, Value: string(value), UpdatedAt: time.Now().UTC()}

	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&row).Error
	if err != nil {
		return err
	}

	r.publish(events.Change{Table: domain.KindSettings, Key: key})
	return nil
}

// storageValues encodes patch values for columns stored as JSON documents.
// Map updates bypass the gorm field serializer.
func storageValues(cols map[string]any) (map[string]any, error) {
	out := make(map[string]any, len(cols)+1)
	for col, v := range cols {
		switch v.(type) {
		case []string, []domain.ProductImage, []domain.ProductDimension:
			b, err := json.Marshal(v)
			if err != nil {
				return nil, fmt.Errorf("unable to encode column %s: %w", col, err)
			}
			out[col] = string(b)
		default:
			out[col] = v
		}
	}
	return out, nil
}
