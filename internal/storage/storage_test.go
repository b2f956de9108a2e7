package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/lukman83/skinscout/internal/favorites"
	"github.com/lukman83/skinscout/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	_ favorites.Persister = (*FavoritesRepository)(nil)
	_ favorites.Source    = (*FavoritesRepository)(nil)
)

func openTestDB(t *testing.T) (*DB, *FavoritesRepository) {
	t.Helper()
	db, err := Open(context.Background(), filepath.Join(t.TempDir(), "data", "products.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, NewFavoritesRepository(db, nil)
}

func TestOpenIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "products.db")

	db, err := Open(context.Background(), path, nil)
	require.NoError(t, err)
	repo := NewFavoritesRepository(db, nil)
	require.NoError(t, repo.UpsertAll(context.Background(), []models.FavoriteRecord{{ID: "1", Name: "Toner", IsFavorite: true}}))
	require.NoError(t, db.Close())

	db, err = Open(context.Background(), path, nil)
	require.NoError(t, err)
	defer db.Close()

	got, err := NewFavoritesRepository(db, nil).All(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Toner", got[0].Name)
}

func TestUpsertAllReplacesById(t *testing.T) {
	ctx := context.Background()
	_, repo := openTestDB(t)

	require.NoError(t, repo.UpsertAll(ctx, []models.FavoriteRecord{
		{ID: "42", Name: "Serum", ProductType: "serum", Price: 10, IsFavorite: true, Rating: 4},
	}))
	require.NoError(t, repo.UpsertAll(ctx, []models.FavoriteRecord{
		{ID: "42", Name: "Serum v2", ProductType: "serum", Price: 12.5, IsFavorite: false, ImageURL: "https://img/x.png", Rating: 4.5},
	}))

	all, err := repo.All(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, models.FavoriteRecord{
		ID: "42", Name: "Serum v2", ProductType: "serum", Price: 12.5,
		IsFavorite: false, ImageURL: "https://img/x.png", Rating: 4.5,
	}, all[0])
}

func TestUpsertAllEmptyAndCanceled(t *testing.T) {
	_, repo := openTestDB(t)

	require.NoError(t, repo.UpsertAll(context.Background(), nil))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := repo.UpsertAll(ctx, []models.FavoriteRecord{{ID: "1"}})
	require.ErrorIs(t, err, context.Canceled)
}

func TestFavoritesAndUpdate(t *testing.T) {
	ctx := context.Background()
	_, repo := openTestDB(t)

	require.NoError(t, repo.UpsertAll(ctx, []models.FavoriteRecord{
		{ID: "1", Name: "Cleanser", IsFavorite: true},
		{ID: "2", Name: "Mask", IsFavorite: false},
		{ID: "3", Name: "Balm", IsFavorite: true},
	}))

	favs, err := repo.Favorites(ctx)
	require.NoError(t, err)
	require.Len(t, favs, 2)
	assert.Equal(t, "1", favs[0].ID)
	assert.Equal(t, "3", favs[1].ID)

	require.NoError(t, repo.UpdateFavorite(ctx, "1", false))
	require.NoError(t, repo.UpdateFavorite(ctx, "2", true))
	require.ErrorIs(t, repo.UpdateFavorite(ctx, "404", true), ErrNotFound)

	favs, err = repo.Favorites(ctx)
	require.NoError(t, err)
	require.Len(t, favs, 2)
	assert.Equal(t, "2", favs[0].ID)
	assert.Equal(t, "3", favs[1].ID)
}

func TestFilterByTypeAndPrice(t *testing.T) {
	ctx := context.Background()
	_, repo := openTestDB(t)

	require.NoError(t, repo.UpsertAll(ctx, []models.FavoriteRecord{
		{ID: "a", Name: "A", ProductType: "serum", Price: 5},
		{ID: "b", Name: "B", ProductType: "serum", Price: 15},
		{ID: "c", Name: "C", ProductType: "serum", Price: 30},
		{ID: "d", Name: "D", ProductType: "toner", Price: 15},
	}))

	got, err := repo.FilterByTypeAndPrice(ctx, "serum", 5, 15)
	require.NoError(t, err)
	ids := make([]string, 0, len(got))
	for _, r := range got {
		ids = append(ids, r.ID)
	}
	assert.Equal(t, []string{"a", "b"}, ids)
}

func TestDeleteAll(t *testing.T) {
	ctx := context.Background()
	_, repo := openTestDB(t)

	require.NoError(t, repo.UpsertAll(ctx, []models.FavoriteRecord{{ID: "1"}, {ID: "2"}}))
	require.NoError(t, repo.DeleteAll(ctx))

	all, err := repo.All(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestWriterPersistsThroughRepository(t *testing.T) {
	ctx := context.Background()
	_, repo := openTestDB(t)

	w := favorites.NewWriter(repo, nil)
	store := favorites.NewStore(w)
	p := models.NewProduct(models.Source{ID: "9", Name: "Night Cream", Type: "moisturizer"})

	store.Toggle(p, true)
	store.Toggle(p, false)
	store.Toggle(p, true)
	require.NoError(t, w.Close(ctx))

	favs, err := repo.Favorites(ctx)
	require.NoError(t, err)
	require.Len(t, favs, 1)
	assert.Equal(t, "Night Cream", favs[0].Name)

	reloaded := favorites.NewStore(nil)
	require.NoError(t, reloaded.Load(ctx, repo))
	assert.True(t, reloaded.Contains("9"))
}
