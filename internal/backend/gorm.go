package backend

import (
	"context"
	"fmt"
	"github.com/kahvecikaan/catalog-admin/internal/domain"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Store is a Backend over a SQL database, used when the products table is
// self-hosted instead of behind the hosted data API.
type Store struct {
	db    *gorm.DB
	table string
}

// OpenStore opens a postgres or sqlite database and migrates the table
func OpenStore(driver, dsn, table string) (*Store, error) {
	var dialector gorm.Dialector
	switch driver {
	case "postgres":
		dialector = postgres.Open(dsn)
	case "sqlite":
		dialector = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		return nil, fmt.Errorf("failed to connect database: %w", err)
	}

	return NewStore(db, table)
}

// NewStore wraps db and auto-migrates the table
func NewStore(db *gorm.DB, table string) (*Store, error) {
	if err := db.Table(table).AutoMigrate(&domain.Product{}); err != nil {
		return nil, fmt.Errorf("failed to migrate %s: %w", table, err)
	}
	return &Store{db: db, table: table}, nil
}

func (s *Store) List(ctx context.Context) ([]domain.Product, error) {
	products := []domain.Product{}
	if err := s.db.WithContext(ctx).Table(s.table).Order("id asc").Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	return products, nil
}

func (s *Store) Insert(ctx context.Context, fields domain.Fields) (int, error) {
	var p domain.Product
	p.Apply(fields)
	if err := s.db.WithContext(ctx).Table(s.table).Create(&p).Error; err != nil {
		return 0, fmt.Errorf("failed to create product: %w", err)
	}
	return p.ID, nil
}

func (s *Store) Update(ctx context.Context, id int, fields domain.Fields) error {
	res := s.db.WithContext(ctx).Table(s.table).Where("id = ?", id).Updates(map[string]interface{}(fields))
	if res.Error != nil {
		return fmt.Errorf("failed to update product: %w", res.Error)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, id int) error {
	res := s.db.WithContext(ctx).Table(s.table).Where("id = ?", id).Delete(&domain.Product{})
	if res.Error != nil {
		return fmt.Errorf("failed to delete product: %w", res.Error)
	}
	return nil
}

// Close releases the underlying connection pool
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
