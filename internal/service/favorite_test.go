package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/giovannicg/INMEDT/internal/domain"
	apperrors "github.com/giovannicg/INMEDT/pkg/errors"
)

func newTestFavoriteService(favoriteRepo *mockFavoriteRepository, productRepo *mockProductRepository) *FavoriteService {
	return NewFavoriteService(favoriteRepo, productRepo, newTestLogger())
}

func TestFavoriteService_AddFavorite(t *testing.T) {
	favoriteRepo := new(mockFavoriteRepository)
	productRepo := new(mockProductRepository)
	svc := newTestFavoriteService(favoriteRepo, productRepo)

	productRepo.On("GetByID", mock.Anything, "prod-1").Return(&domain.Product{ID: "prod-1", IsActive: true}, nil)
	favoriteRepo.On("Add", mock.Anything, "user-1", "prod-1").Return(nil)

	err := svc.AddFavorite(context.Background(), "user-1", "prod-1")
	require.NoError(t, err)
	favoriteRepo.AssertExpectations(t)
}

func TestFavoriteService_AddFavorite_AlreadySaved(t *testing.T) {
	favoriteRepo := new(mockFavoriteRepository)
	productRepo := new(mockProductRepository)
	svc := newTestFavoriteService(favoriteRepo, productRepo)

	productRepo.On("GetByID", mock.Anything, "prod-1").Return(&domain.Product{ID: "prod-1", IsActive: true}, nil)
	favoriteRepo.On("Add", mock.Anything, "user-1", "prod-1").
		Return(apperrors.AlreadyExists("favorite", "product_id", "prod-1"))

	// Saving twice is idempotent, not an error.
	err := svc.AddFavorite(context.Background(), "user-1", "prod-1")
	assert.NoError(t, err)
}

func TestFavoriteService_AddFavorite_InactiveProduct(t *testing.T) {
	favoriteRepo := new(mockFavoriteRepository)
	productRepo := new(mockProductRepository)
	svc := newTestFavoriteService(favoriteRepo, productRepo)

	productRepo.On("GetByID", mock.Anything, "prod-1").Return(&domain.Product{ID: "prod-1", IsActive: false}, nil)

	err := svc.AddFavorite(context.Background(), "user-1", "prod-1")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	favoriteRepo.AssertNotCalled(t, "Add", mock.Anything, mock.Anything, mock.Anything)
}

func TestFavoriteService_RemoveFavorite(t *testing.T) {
	favoriteRepo := new(mockFavoriteRepository)
	svc := newTestFavoriteService(favoriteRepo, new(mockProductRepository))

	favoriteRepo.On("Remove", mock.Anything, "user-1", "prod-1").Return(nil)

	err := svc.RemoveFavorite(context.Background(), "user-1", "prod-1")
	require.NoError(t, err)
}

func TestFavoriteService_ListFavorites(t *testing.T) {
	favoriteRepo := new(mockFavoriteRepository)
	svc := newTestFavoriteService(favoriteRepo, new(mockProductRepository))

	favoriteRepo.On("List", mock.Anything, "user-1").Return([]domain.FavoriteProduct{
		{ProductID: "prod-1", Name: "Cola Tropical", AddedAt: time.Now().UTC()},
	}, nil)

	favorites, err := svc.ListFavorites(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Len(t, favorites, 1)
}

func TestFavoriteService_IsFavorite(t *testing.T) {
	favoriteRepo := new(mockFavoriteRepository)
	svc := newTestFavoriteService(favoriteRepo, new(mockProductRepository))

	favoriteRepo.On("Exists", mock.Anything, "user-1", "prod-1").Return(true, nil)

	saved, err := svc.IsFavorite(context.Background(), "user-1", "prod-1")
	require.NoError(t, err)
	assert.True(t, saved)
}
