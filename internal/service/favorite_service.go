package service

import (
	"context"
	"errors"
	"fmt"

	"favorites-api/internal/catalog"
	"favorites-api/internal/domain"
	"favorites-api/internal/repository"
)

var (
	ErrAlreadyFavorited = errors.New("this product is already in your favorites")
	ErrProductNotFound  = errors.New("product not found")
	ErrFavoriteNotFound = errors.New("favorite product not found")
)

// FavoriteService defines the business rules for favoriting catalog products
type FavoriteService interface {
	ListFavorites(ctx context.Context, userID int64) ([]*domain.FavoriteProduct, error)
	AddFavorite(ctx context.Context, userID, productID int64) (*domain.FavoriteProduct, error)
	RemoveFavorite(ctx context.Context, userID, productID int64) error
}

type favoriteService struct {
	favoriteRepo  repository.FavoriteRepository
	productLookup catalog.ProductLookup
}

// NewFavoriteService creates a new instance of FavoriteService
func NewFavoriteService(
	favoriteRepo repository.FavoriteRepository,
	productLookup catalog.ProductLookup,
) FavoriteService {
	return &favoriteService{
		favoriteRepo:  favoriteRepo,
		productLookup: productLookup,
	}
}

// ListFavorites returns all favorites owned by the user, empty slice if none
func (s *favoriteService) ListFavorites(ctx context.Context, userID int64) ([]*domain.FavoriteProduct, error) {
	favorites, err := s.favoriteRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list favorites: %w", err)
	}
	return favorites, nil
}

// AddFavorite pins an external catalog product to the user's favorites. The
// product must exist in the catalog and must not already be favorited by this
// user. On success the stored favorite carries a snapshot of the product's
// title, price, image and rating taken at this moment.
func (s *favoriteService) AddFavorite(ctx context.Context, userID, productID int64) (*domain.FavoriteProduct, error) {
	existing, err := s.favoriteRepo.FindByUserAndProduct(ctx, userID, productID)
	if err != nil && err != repository.ErrFavoriteNotFound {
		return nil, fmt.Errorf("failed to check existing favorite: %w", err)
	}
	if existing != nil {
		return nil, ErrAlreadyFavorited
	}

	product, err := s.productLookup.GetProduct(ctx, productID)
	if err != nil {
		// Lookup failures and genuine absence are indistinguishable here
		return nil, ErrProductNotFound
	}

	favorite := &domain.FavoriteProduct{
		UserID:    userID,
		ProductID: productID,
		Title:     product.Title,
		Price:     product.Price,
		Image:     product.Image,
	}
	if product.Rating != nil {
		rate := product.Rating.Rate
		favorite.Review = &rate
	}

	if err := s.favoriteRepo.Create(ctx, favorite); err != nil {
		// The check above and the insert are not atomic. A concurrent add for
		// the same (user, product) pair can slip past the check and lose the
		// race on the unique constraint; surface that as the same duplicate
		// error the pre-check produces.
		if err == repository.ErrDuplicateFavorite {
			return nil, ErrAlreadyFavorited
		}
		return nil, fmt.Errorf("failed to create favorite: %w", err)
	}

	return favorite, nil
}

// RemoveFavorite deletes the user's favorite for the given product
func (s *favoriteService) RemoveFavorite(ctx context.Context, userID, productID int64) error {
	if err := s.favoriteRepo.Delete(ctx, userID, productID); err != nil {
		if err == repository.ErrFavoriteNotFound {
			return ErrFavoriteNotFound
		}
		return fmt.Errorf("failed to remove favorite: %w", err)
	}
	return nil
}
