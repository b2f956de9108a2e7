package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lukman83/skinscout/internal/models"
	"go.uber.org/zap"
)

var ErrNotFound = errors.New("not found")

type sqldb interface {
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// FavoritesRepository reads and writes the products table.
type FavoritesRepository struct {
	db     sqldb
	logger *zap.Logger
}

func NewFavoritesRepository(db sqldb, logger *zap.Logger) *FavoritesRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FavoritesRepository{db: db, logger: logger}
}

const selectColumns = `SELECT id, name, product_type, price, is_favorite, image_url, rating FROM products`

// UpsertAll replaces rows by id inside one transaction.
func (r *FavoritesRepository) UpsertAll(ctx context.Context, records []models.FavoriteRecord) (storeErr error) {
	const op = "FavoritesRepository.UpsertAll"

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if len(records) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: failed to begin tx: %w", op, err)
	}
	defer func() {
		if storeErr == nil {
			if err := tx.Commit(); err != nil {
				storeErr = fmt.Errorf("%s: failed to commit: %w", op, err)
			}
			return
		}
		if err := tx.Rollback(); err != nil {
			r.logger.Error("failed to rollback tx", zap.String("op", op), zap.Error(err))
		}
	}()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR REPLACE INTO products (id, name, product_type, price, is_favorite, image_url, rating)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("%s: failed to prepare stmt: %w", op, err)
	}
	defer func() {
		if err := stmt.Close(); err != nil {
			r.logger.Error("failed to close prepared stmt", zap.String("op", op), zap.Error(err))
		}
	}()

	for _, v := range records {
		_, err := stmt.ExecContext(ctx, v.ID, v.Name, v.ProductType, v.Price, v.IsFavorite, v.ImageURL, v.Rating)
		if err != nil {
			return fmt.Errorf("%s: failed to exec: %w", op, err)
		}
	}
	return nil
}

// UpdateFavorite flips the flag of an existing row.
func (r *FavoritesRepository) UpdateFavorite(ctx context.Context, id string, isFavorite bool) error {
	const op = "FavoritesRepository.UpdateFavorite"

	res, err := r.db.ExecContext(ctx, `UPDATE products SET is_favorite = ? WHERE id = ?`, isFavorite, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %q: %w", op, id, ErrNotFound)
	}
	return nil
}

func (r *FavoritesRepository) All(ctx context.Context) ([]models.FavoriteRecord, error) {
	return r.query(ctx, "FavoritesRepository.All", selectColumns+` ORDER BY rowid`)
}

func (r *FavoritesRepository) Favorites(ctx context.Context) ([]models.FavoriteRecord, error) {
	return r.query(ctx, "FavoritesRepository.Favorites", selectColumns+` WHERE is_favorite = 1 ORDER BY rowid`)
}

// FilterByTypeAndPrice returns rows of the given type priced within [min, max].
func (r *FavoritesRepository) FilterByTypeAndPrice(ctx context.Context, productType string, min, max float64) ([]models.FavoriteRecord, error) {
	return r.query(ctx, "FavoritesRepository.FilterByTypeAndPrice",
		selectColumns+` WHERE product_type = ? AND price BETWEEN ? AND ? ORDER BY rowid`,
		productType, min, max)
}

func (r *FavoritesRepository) DeleteAll(ctx context.Context) error {
	const op = "FavoritesRepository.DeleteAll"
	if _, err := r.db.ExecContext(ctx, `DELETE FROM products`); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (r *FavoritesRepository) query(ctx context.Context, op, query string, args ...any) ([]models.FavoriteRecord, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var out []models.FavoriteRecord
	for rows.Next() {
		var v models.FavoriteRecord
		if err := rows.Scan(&v.ID, &v.Name, &v.ProductType, &v.Price, &v.IsFavorite, &v.ImageURL, &v.Rating); err != nil {
			return nil, fmt.Errorf("%s: scan: %w", op, err)
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return out, nil
}
