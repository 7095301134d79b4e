package backend

import (
	"context"
	"testing"

	"github.com/kahvecikaan/catalog-admin/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)

	// every new connection to :memory: is a fresh database
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	s, err := NewStore(db, DefaultTable)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStoreCRUD(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	products, err := s.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, products)

	first, err := s.Insert(ctx, domain.Draft{Name: "Latte", Price: 2.45, Stock: 12}.Fields())
	require.NoError(t, err)
	second, err := s.Insert(ctx, domain.Draft{Name: "Mug", Price: 5, Stock: 1, ImageURL: "https://x/m.png"}.Fields())
	require.NoError(t, err)
	assert.Greater(t, second, first)

	products, err = s.List(ctx)
	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, first, products[0].ID)
	assert.Nil(t, products[0].ImageURL)
	assert.Equal(t, "https://x/m.png", products[1].Image())

	require.NoError(t, s.Update(ctx, second, domain.Draft{Name: "Mug XL", Price: 6, Stock: 2}.Fields()))
	products, err = s.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Mug XL", products[1].Name)
	assert.Nil(t, products[1].ImageURL, "a blank image url clears the column")

	require.NoError(t, s.Delete(ctx, first))
	products, err = s.List(ctx)
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, second, products[0].ID)
}

func TestStoreMissingRow(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	require.NoError(t, s.Update(ctx, 99, domain.Fields{domain.ColumnName: "x"}))
	require.NoError(t, s.Delete(ctx, 99))

	products, err := s.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, products)
}

func TestOpenStoreRejectsUnknownDriver(t *testing.T) {
	_, err := OpenStore("mysql", "dsn", DefaultTable)
	assert.Error(t, err)
}
