package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueryState_FilterChangeResetsPage(t *testing.T) {
	q := NewQueryState().WithPage(3)
	require.Equal(t, 3, q.Page)

	assert.Equal(t, 1, q.WithSearch("rope").Page)
	assert.Equal(t, 1, q.WithShop("s1").Page)
	assert.Equal(t, 1, q.WithStock(StockLowStock).Page)
	assert.Equal(t, 1, q.WithSort(SortByPrice).Page)

	// Paging alone keeps the filters.
	moved := q.WithSearch("rope").WithPage(2)
	assert.Equal(t, 2, moved.Page)
	assert.Equal(t, "rope", moved.Criteria.Search)
}

func TestQueryState_Immutable(t *testing.T) {
	q := NewQueryState()
	_ = q.WithSearch("tote").WithSort(SortByStock).WithPage(9)

	assert.Equal(t, NewQueryState(), q)
}

func TestQueryState_Apply(t *testing.T) {
	shops := testShops()

	t.Run("defaults paginate the full sorted view", func(t *testing.T) {
		res := NewQueryState().Apply(shops)
		assert.Equal(t, 5, res.TotalRows)
		assert.Equal(t, 1, res.TotalPages)
		assert.Len(t, res.Rows, 5)
		assert.Equal(t, "Brass Compass", res.Rows[0].Name) // name sort
	})

	t.Run("filter then page", func(t *testing.T) {
		q := NewQueryState().WithShop("s1").WithSort(SortByStock)
		q.PageSize = 2

		res := q.Apply(shops)
		assert.Equal(t, 3, res.TotalRows)
		assert.Equal(t, 2, res.TotalPages)
		require.Len(t, res.Rows, 2)
		assert.Equal(t, "p1", res.Rows[0].ID) // stock 12 first
		assert.Equal(t, "p2", res.Rows[1].ID)

		last := q.WithPage(2).Apply(shops)
		require.Len(t, last.Rows, 1)
		assert.Equal(t, "p3", last.Rows[0].ID)
	})

	t.Run("empty snapshot still renders page 1 of 1", func(t *testing.T) {
		res := NewQueryState().Apply(nil)
		assert.Empty(t, res.Rows)
		assert.Equal(t, 1, res.Page)
		assert.Equal(t, 1, res.TotalPages)
	})
}
