package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/giovannicg/INMEDT/internal/domain"
	"github.com/giovannicg/INMEDT/internal/repository"
	apperrors "github.com/giovannicg/INMEDT/pkg/errors"
)

// FavoriteService implements the business logic for saved products.
type FavoriteService struct {
	favoriteRepo repository.FavoriteRepository
	productRepo  repository.ProductRepository
	logger       *slog.Logger
}

// NewFavoriteService creates a new favorite service.
func NewFavoriteService(
	favoriteRepo repository.FavoriteRepository,
	productRepo repository.ProductRepository,
	logger *slog.Logger,
) *FavoriteService {
	return &FavoriteService{
		favoriteRepo: favoriteRepo,
		productRepo:  productRepo,
		logger:       logger,
	}
}

// AddFavorite saves an active product to the user's favorites. Adding a
// product that is already saved is not an error.
func (s *FavoriteService) AddFavorite(ctx context.Context, userID, productID string) error {
	product, err := s.productRepo.GetByID(ctx, productID)
	if err != nil {
		return fmt.Errorf("get product for favorite: %w", err)
	}
	if !product.IsActive {
		return apperrors.NotFound("product", productID)
	}

	if err := s.favoriteRepo.Add(ctx, userID, productID); err != nil {
		if errors.Is(err, apperrors.ErrAlreadyExists) {
			return nil
		}
		return fmt.Errorf("add favorite: %w", err)
	}

	s.logger.InfoContext(ctx, "favorite added",
		slog.String("user_id", userID),
		slog.String("product_id", productID),
	)

	return nil
}

// RemoveFavorite deletes a product from the user's favorites.
func (s *FavoriteService) RemoveFavorite(ctx context.Context, userID, productID string) error {
	if err := s.favoriteRepo.Remove(ctx, userID, productID); err != nil {
		return fmt.Errorf("remove favorite: %w", err)
	}

	s.logger.InfoContext(ctx, "favorite removed",
		slog.String("user_id", userID),
		slog.String("product_id", productID),
	)

	return nil
}

// ListFavorites returns the user's saved products with display data.
func (s *FavoriteService) ListFavorites(ctx context.Context, userID string) ([]domain.FavoriteProduct, error) {
	favorites, err := s.favoriteRepo.List(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list favorites: %w", err)
	}
	return favorites, nil
}

// IsFavorite reports whether the user has saved the product.
func (s *FavoriteService) IsFavorite(ctx context.Context, userID, productID string) (bool, error) {
	exists, err := s.favoriteRepo.Exists(ctx, userID, productID)
	if err != nil {
		return false, fmt.Errorf("check favorite: %w", err)
	}
	return exists, nil
}
