package fooditems

import (
	"context"
	"database/sql"
	"testing"

	"github.com/distincto/journal/internal/journal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`
CREATE TABLE food_items (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  child_name TEXT NOT NULL DEFAULT '',
  timestamp INTEGER NOT NULL DEFAULT 0,
  date TEXT NOT NULL DEFAULT '',
  name TEXT NOT NULL DEFAULT '',
  category TEXT NOT NULL DEFAULT 'new',
  notes TEXT NOT NULL DEFAULT '',
  image_file TEXT NOT NULL DEFAULT '',
  synced INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX idx_food_items_child_name ON food_items(child_name);
CREATE INDEX idx_food_items_synced ON food_items(synced);
`)
	require.NoError(t, err)

	return db
}

func TestSave_CategoryUpdateKeepsOtherFields(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	item := &models.FoodItem{
		ChildName: "Emma",
		Timestamp: 1709681400000,
		Name:      "Broccoli",
		Category:  models.FoodCategoryNew,
	}
	id, err := r.Save(ctx, item)
	require.NoError(t, err)

	item.Category = models.FoodCategorySafe
	item.Synced = false
	_, err = r.Save(ctx, item)
	require.NoError(t, err)

	got, err := r.GetByID(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, models.FoodCategorySafe, got.Category)
	assert.Equal(t, "Broccoli", got.Name)
	assert.False(t, got.Synced)
}

func TestSave_DerivesDate(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)

	item := &models.FoodItem{ChildName: "Emma", Timestamp: 1709681400000, Name: "Pear", Category: models.FoodCategoryNew}
	_, err := r.Save(context.Background(), item)
	require.NoError(t, err)
	assert.Equal(t, "2024-03-05", item.Date)
}

func TestGetByID_NotFoundReturnsNilNil(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)

	got, err := r.GetByID(context.Background(), 99)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestGetAllByChild_WithoutIndex(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	for _, name := range []string{"Emma", "Emma", "Noah"} {
		_, err := r.Save(ctx, &models.FoodItem{ChildName: name, Timestamp: 1709681400000, Name: "x", Category: models.FoodCategoryNew})
		require.NoError(t, err)
	}

	_, err := db.Exec(`DROP INDEX idx_food_items_child_name`)
	require.NoError(t, err)

	got, err := r.GetAllByChild(ctx, "Noah")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Noah", got[0].ChildName)
}

func TestUnsyncedLifecycle(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	item := &models.FoodItem{ChildName: "Emma", Timestamp: 1709681400000, Name: "Broccoli", Category: models.FoodCategoryNew}
	id, err := r.Save(ctx, item)
	require.NoError(t, err)

	pending, err := r.GetAllUnsynced(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1)

	require.NoError(t, r.MarkSynced(ctx, id))

	pending, err = r.GetAllUnsynced(ctx)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestDeleteByID_Idempotent(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	require.NoError(t, r.DeleteByID(ctx, 12345))

	item := &models.FoodItem{ChildName: "Emma", Timestamp: 1709681400000, Name: "Broccoli", Category: models.FoodCategoryNew}
	id, err := r.Save(ctx, item)
	require.NoError(t, err)
	require.NoError(t, r.DeleteByID(ctx, id))
	require.NoError(t, r.DeleteByID(ctx, id))
}
