package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"favorites-api/internal/domain"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrFavoriteNotFound  = errors.New("favorite product not found")
	ErrDuplicateFavorite = errors.New("favorite already exists for this user and product")
)

// FavoriteRepository defines the interface for favorite product data access
type FavoriteRepository interface {
	ListByUser(ctx context.Context, userID int64) ([]*domain.FavoriteProduct, error)
	FindByUserAndProduct(ctx context.Context, userID, productID int64) (*domain.FavoriteProduct, error)
	Create(ctx context.Context, favorite *domain.FavoriteProduct) error
	Delete(ctx context.Context, userID, productID int64) error
}

type favoriteRepository struct {
	db *sql.DB
}

// NewFavoriteRepository creates a new instance of FavoriteRepository
func NewFavoriteRepository(db *sql.DB) FavoriteRepository {
	return &favoriteRepository{db: db}
}

// ListByUser retrieves all favorite products owned by a user
func (r *favoriteRepository) ListByUser(ctx context.Context, userID int64) ([]*domain.FavoriteProduct, error) {
	query := `
		SELECT id, user_id, product_id, title, price, image, review, created_at, updated_at
		FROM favorite_products
		WHERE user_id = $1
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list favorites: %w", err)
	}
	defer rows.Close()

	favorites := []*domain.FavoriteProduct{}
	for rows.Next() {
		favorite := &domain.FavoriteProduct{}
		err := rows.Scan(
			&favorite.ID,
			&favorite.UserID,
			&favorite.ProductID,
			&favorite.Title,
			&favorite.Price,
			&favorite.Image,
			&favorite.Review,
			&favorite.CreatedAt,
			&favorite.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan favorite: %w", err)
		}
		favorites = append(favorites, favorite)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating favorites: %w", err)
	}

	return favorites, nil
}

// FindByUserAndProduct retrieves a favorite by its (user, product) key
func (r *favoriteRepository) FindByUserAndProduct(ctx context.Context, userID, productID int64) (*domain.FavoriteProduct, error) {
	query := `
		SELECT id, user_id, product_id, title, price, image, review, created_at, updated_at
		FROM favorite_products
		WHERE user_id = $1 AND product_id = $2
	`

	favorite := &domain.FavoriteProduct{}
	err := r.db.QueryRowContext(ctx, query, userID, productID).Scan(
		&favorite.ID,
		&favorite.UserID,
		&favorite.ProductID,
		&favorite.Title,
		&favorite.Price,
		&favorite.Image,
		&favorite.Review,
		&favorite.CreatedAt,
		&favorite.UpdatedAt,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrFavoriteNotFound
		}
		return nil, fmt.Errorf("failed to find favorite: %w", err)
	}

	return favorite, nil
}

// Create inserts a new favorite product and fills in its generated id and
// timestamps. A unique-constraint violation on (user_id, product_id) is
// reported as ErrDuplicateFavorite so concurrent inserts surface the same
// error a pre-check would have produced.
func (r *favoriteRepository) Create(ctx context.Context, favorite *domain.FavoriteProduct) error {
	query := `
		INSERT INTO favorite_products (user_id, product_id, title, price, image, review)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`

	err := r.db.QueryRowContext(
		ctx,
		query,
		favorite.UserID,
		favorite.ProductID,
		favorite.Title,
		favorite.Price,
		favorite.Image,
		favorite.Review,
	).Scan(
		&favorite.ID,
		&favorite.CreatedAt,
		&favorite.UpdatedAt,
	)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return ErrDuplicateFavorite
		}
		return fmt.Errorf("failed to create favorite: %w", err)
	}

	return nil
}

// Delete removes a favorite by its (user, product) key
func (r *favoriteRepository) Delete(ctx context.Context, userID, productID int64) error {
	query := `DELETE FROM favorite_products WHERE user_id = $1 AND product_id = $2`

	result, err := r.db.ExecContext(ctx, query, userID, productID)
	if err != nil {
		return fmt.Errorf("failed to delete favorite: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrFavoriteNotFound
	}

	return nil
}
