package inventory

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStockLevel(t *testing.T) {
	t.Run("starts at zero", func(t *testing.T) {
		s, err := NewStockLevel(uuid.New(), uuid.New(), DefaultMinStock)
		require.NoError(t, err)
		assert.Equal(t, int64(0), s.Quantity)
	})

	t.Run("increase and decrease", func(t *testing.T) {
		s, err := NewStockLevel(uuid.New(), uuid.New(), 0)
		require.NoError(t, err)

		require.NoError(t, s.Increase(10))
		require.NoError(t, s.Decrease(4))
		assert.Equal(t, int64(6), s.Quantity)
	})

	t.Run("cannot go negative", func(t *testing.T) {
		s, err := NewStockLevel(uuid.New(), uuid.New(), 0)
		require.NoError(t, err)
		require.NoError(t, s.Increase(3))

		err = s.Decrease(4)

		require.Error(t, err)
		assert.Equal(t, int64(3), s.Quantity)
	})

	t.Run("adjust applies signed delta", func(t *testing.T) {
		s, err := NewStockLevel(uuid.New(), uuid.New(), 0)
		require.NoError(t, err)
		require.NoError(t, s.Increase(10))

		require.NoError(t, s.Adjust(5))
		assert.Equal(t, int64(15), s.Quantity)

		require.NoError(t, s.Adjust(-3))
		assert.Equal(t, int64(12), s.Quantity)

		require.NoError(t, s.Adjust(0))
		assert.Equal(t, int64(12), s.Quantity)
	})

	t.Run("below minimum detection", func(t *testing.T) {
		s, err := NewStockLevel(uuid.New(), uuid.New(), 5)
		require.NoError(t, err)
		require.NoError(t, s.Increase(3))

		assert.True(t, s.IsBelowMinimum())

		require.NoError(t, s.Increase(10))
		assert.False(t, s.IsBelowMinimum())
	})

	t.Run("zero threshold never alerts", func(t *testing.T) {
		s, err := NewStockLevel(uuid.New(), uuid.New(), 0)
		require.NoError(t, err)
		assert.False(t, s.IsBelowMinimum())
	})
}
