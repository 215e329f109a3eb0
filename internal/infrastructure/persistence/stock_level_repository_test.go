package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/scentpos/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func stockLevelColumns() []string {
	return []string{
		"id", "created_at", "updated_at", "variant_id", "store_id",
		"quantity", "min_stock",
	}
}

func TestGormStockLevelRepository_FindByPair(t *testing.T) {
	t.Run("finds existing stock level", func(t *testing.T) {
		db, mock, mockDB := newMockDB(t)
		defer mockDB.Close()
		repo := NewGormStockLevelRepository(db)

		variantID := uuid.New()
		storeID := uuid.New()
		now := time.Now()

		rows := sqlmock.NewRows(stockLevelColumns()).
			AddRow(uuid.New(), now, now, variantID, storeID, int64(42), int64(5))

		mock.ExpectQuery(`SELECT \* FROM "stock_levels" WHERE store_id = \$1 AND variant_id = \$2`).
			WithArgs(storeID, variantID, 1).
			WillReturnRows(rows)

		level, err := repo.FindByPair(context.Background(), storeID, variantID)

		assert.NoError(t, err)
		require.NotNil(t, level)
		assert.Equal(t, int64(42), level.Quantity)
		assert.Equal(t, int64(5), level.MinStock)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("maps missing pair to not found", func(t *testing.T) {
		db, mock, mockDB := newMockDB(t)
		defer mockDB.Close()
		repo := NewGormStockLevelRepository(db)

		storeID := uuid.New()
		variantID := uuid.New()
		mock.ExpectQuery(`SELECT \* FROM "stock_levels" WHERE store_id = \$1 AND variant_id = \$2`).
			WithArgs(storeID, variantID, 1).
			WillReturnError(gorm.ErrRecordNotFound)

		level, err := repo.FindByPair(context.Background(), storeID, variantID)

		assert.Nil(t, level)
		assert.Equal(t, shared.ErrNotFound, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormStockLevelRepository_FindByPairForUpdate(t *testing.T) {
	t.Run("locks the row", func(t *testing.T) {
		db, mock, mockDB := newMockDB(t)
		defer mockDB.Close()
		repo := NewGormStockLevelRepository(db)

		variantID := uuid.New()
		storeID := uuid.New()
		now := time.Now()

		rows := sqlmock.NewRows(stockLevelColumns()).
			AddRow(uuid.New(), now, now, variantID, storeID, int64(8), int64(5))

		mock.ExpectQuery(`SELECT \* FROM "stock_levels" WHERE store_id = \$1 AND variant_id = \$2 ORDER BY "stock_levels"\."id" LIMIT \$3 FOR UPDATE`).
			WithArgs(storeID, variantID, 1).
			WillReturnRows(rows)

		level, err := repo.FindByPairForUpdate(context.Background(), storeID, variantID)

		assert.NoError(t, err)
		require.NotNil(t, level)
		assert.Equal(t, int64(8), level.Quantity)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormStockLevelRepository_FindBelowMinimum(t *testing.T) {
	t.Run("returns rows at or below their threshold", func(t *testing.T) {
		db, mock, mockDB := newMockDB(t)
		defer mockDB.Close()
		repo := NewGormStockLevelRepository(db)

		storeID := uuid.New()
		now := time.Now()

		rows := sqlmock.NewRows(stockLevelColumns()).
			AddRow(uuid.New(), now, now, uuid.New(), storeID, int64(0), int64(5)).
			AddRow(uuid.New(), now, now, uuid.New(), storeID, int64(3), int64(5))

		mock.ExpectQuery(`SELECT \* FROM "stock_levels" WHERE store_id = \$1 AND min_stock > 0 AND quantity <= min_stock ORDER BY quantity ASC`).
			WithArgs(storeID).
			WillReturnRows(rows)

		levels, err := repo.FindBelowMinimum(context.Background(), storeID)

		assert.NoError(t, err)
		require.Len(t, levels, 2)
		assert.Equal(t, int64(0), levels[0].Quantity)
		assert.Equal(t, int64(3), levels[1].Quantity)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormStockLevelRepository_RecomputeQuantity(t *testing.T) {
	t.Run("sums remaining batch quantities", func(t *testing.T) {
		db, mock, mockDB := newMockDB(t)
		defer mockDB.Close()
		repo := NewGormStockLevelRepository(db)

		storeID := uuid.New()
		variantID := uuid.New()
		mock.ExpectQuery(`SELECT COALESCE\(SUM\(remaining_qty\), 0\) FROM "batches" WHERE store_id = \$1 AND variant_id = \$2`).
			WithArgs(storeID, variantID).
			WillReturnRows(sqlmock.NewRows([]string{"coalesce"}).AddRow(int64(17)))

		sum, err := repo.RecomputeQuantity(context.Background(), storeID, variantID)

		assert.NoError(t, err)
		assert.Equal(t, int64(17), sum)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
