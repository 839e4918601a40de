package restaurant

import (
	"context"
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"

	"github.com/kailas-cloud/qeats/internal/domain"
	"github.com/kailas-cloud/qeats/internal/domain/menu"
	domrest "github.com/kailas-cloud/qeats/internal/domain/restaurant"
)

const orderByID = "restaurant_id"

// Repo is the PostgreSQL restaurant catalogue.
// Implements usecase/restaurant.Store and usecase/menu.Store.
type Repo struct {
	db *gorm.DB
}

// Open connects to PostgreSQL.
func Open(dsn string) (*Repo, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	return New(db), nil
}

// New wraps an existing gorm handle.
func New(db *gorm.DB) *Repo {
	return &Repo{db: db}
}

// Migrate creates or updates the catalogue tables.
func (r *Repo) Migrate(ctx context.Context) error {
	if err := r.db.WithContext(ctx).AutoMigrate(&restaurantRow{}, &itemRow{}, &menuItemRow{}); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}

// Seed inserts the catalogue in one transaction. Existing rows are kept.
func (r *Repo) Seed(ctx context.Context, restaurants []domrest.Snapshot, items []menu.Item, menus []menu.Menu) error {
	rRows := make([]restaurantRow, len(restaurants))
	for i := range restaurants {
		rRows[i] = rowFromSnapshot(&restaurants[i])
	}
	iRows := make([]itemRow, len(items))
	for i := range items {
		iRows[i] = rowFromItem(&items[i])
	}
	var mRows []menuItemRow
	for _, m := range menus {
		for pos, it := range m.Items {
			mRows = append(mRows, menuItemRow{RestaurantID: m.RestaurantID, ItemID: it.ID, Position: pos})
		}
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		tx = tx.Clauses(clause.OnConflict{DoNothing: true})
		if len(rRows) > 0 {
			if err := tx.Create(&rRows).Error; err != nil {
				return fmt.Errorf("insert restaurants: %w", err)
			}
		}
		if len(iRows) > 0 {
			if err := tx.Create(&iRows).Error; err != nil {
				return fmt.Errorf("insert items: %w", err)
			}
		}
		if len(mRows) > 0 {
			if err := tx.Create(&mRows).Error; err != nil {
				return fmt.Errorf("insert menu items: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("seed catalogue: %w", err)
	}
	return nil
}

// Ping checks database connectivity.
func (r *Repo) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return fmt.Errorf("get sql db: %w", err)
	}
	return sqlDB.PingContext(ctx)
}

// Close releases the connection pool.
func (r *Repo) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return fmt.Errorf("get sql db: %w", err)
	}
	return sqlDB.Close()
}

// AllRestaurants scans the whole restaurants table.
func (r *Repo) AllRestaurants(ctx context.Context) ([]domrest.Snapshot, error) {
	return r.findRestaurants(ctx, "all restaurants")
}

// ByExactName matches names case-sensitively.
func (r *Repo) ByExactName(ctx context.Context, name string) ([]domrest.Snapshot, error) {
	return r.findRestaurants(ctx, "restaurants by exact name", nameEquals(name))
}

// ByPartialName matches names containing name, ignoring case.
func (r *Repo) ByPartialName(ctx context.Context, name string) ([]domrest.Snapshot, error) {
	return r.findRestaurants(ctx, "restaurants by partial name", nameContains(name))
}

// ByAttribute matches restaurants with an attribute containing attr, ignoring case.
func (r *Repo) ByAttribute(ctx context.Context, attr string) ([]domrest.Snapshot, error) {
	return r.findRestaurants(ctx, "restaurants by attribute", attributeContains(attr))
}

// RestaurantsByIDs loads restaurants by id.
func (r *Repo) RestaurantsByIDs(ctx context.Context, ids []string) ([]domrest.Snapshot, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	return r.findRestaurants(ctx, "restaurants by ids", func(db *gorm.DB) *gorm.DB {
		return db.Where("restaurant_id IN ?", ids)
	})
}

// ItemsByExactName matches item names case-sensitively.
func (r *Repo) ItemsByExactName(ctx context.Context, name string) ([]menu.Item, error) {
	return r.findItems(ctx, "items by exact name", nameEquals(name))
}

// ItemsByNameTokens matches items whose name contains any token, ignoring case.
func (r *Repo) ItemsByNameTokens(ctx context.Context, tokens []string) ([]menu.Item, error) {
	if len(tokens) == 0 {
		return nil, nil
	}
	return r.findItems(ctx, "items by name tokens", nameMatchesAny(tokens))
}

// ItemsByAttributeTokens matches items where every token is found in some attribute.
func (r *Repo) ItemsByAttributeTokens(ctx context.Context, tokens []string) ([]menu.Item, error) {
	if len(tokens) == 0 {
		return nil, nil
	}
	return r.findItems(ctx, "items by attribute tokens", attributesContainAll(tokens))
}

// RestaurantIDsServingItems returns distinct ids of restaurants whose menu holds any of itemIDs.
func (r *Repo) RestaurantIDsServingItems(ctx context.Context, itemIDs []string) ([]string, error) {
	if len(itemIDs) == 0 {
		return nil, nil
	}
	var ids []string
	err := r.db.WithContext(ctx).
		Model(&menuItemRow{}).
		Distinct("restaurant_id").
		Where("item_id IN ?", itemIDs).
		Order(orderByID).
		Pluck("restaurant_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("query restaurants serving items: %w", err)
	}
	return ids, nil
}

// MenuByRestaurantID returns a restaurant's items in menu order.
func (r *Repo) MenuByRestaurantID(ctx context.Context, restaurantID string) (menu.Menu, error) {
	var rows []itemRow
	err := r.db.WithContext(ctx).
		Table("menu_items").
		Select("items.*").
		Joins("JOIN items ON items.item_id = menu_items.item_id").
		Where("menu_items.restaurant_id = ?", restaurantID).
		Order("menu_items.position").
		Scan(&rows).Error
	if err != nil {
		return menu.Menu{}, fmt.Errorf("query menu %s: %w", restaurantID, err)
	}
	if len(rows) == 0 {
		return menu.Menu{}, domain.ErrMenuNotFound
	}
	return menu.Menu{RestaurantID: restaurantID, Items: itemsFromRows(rows)}, nil
}

func (r *Repo) findRestaurants(
	ctx context.Context, what string, scopes ...func(*gorm.DB) *gorm.DB,
) ([]domrest.Snapshot, error) {
	var rows []restaurantRow
	if err := r.db.WithContext(ctx).Scopes(scopes...).Order(orderByID).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("query %s: %w", what, err)
	}
	return snapshotsFromRows(rows)
}

func (r *Repo) findItems(ctx context.Context, what string, scopes ...func(*gorm.DB) *gorm.DB) ([]menu.Item, error) {
	var rows []itemRow
	if err := r.db.WithContext(ctx).Scopes(scopes...).Order("item_id").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("query %s: %w", what, err)
	}
	return itemsFromRows(rows), nil
}
