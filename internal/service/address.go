package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/giovannicg/INMEDT/internal/domain"
	"github.com/giovannicg/INMEDT/internal/repository"
	apperrors "github.com/giovannicg/INMEDT/pkg/errors"
)

// AddressService implements the business logic for saved delivery addresses.
type AddressService struct {
	addressRepo repository.AddressRepository
	logger      *slog.Logger
}

// NewAddressService creates a new address service.
func NewAddressService(addressRepo repository.AddressRepository, logger *slog.Logger) *AddressService {
	return &AddressService{
		addressRepo: addressRepo,
		logger:      logger,
	}
}

// CreateAddressInput holds the parameters for creating a new address.
type CreateAddressInput struct {
	Label       string
	AddressLine string
	City        string
	Sector      string
	Phone       string
	Notes       string
	IsDefault   bool
}

// UpdateAddressInput holds the parameters for updating an address.
type UpdateAddressInput struct {
	Label       *string
	AddressLine *string
	City        *string
	Sector      *string
	Phone       *string
	Notes       *string
}

// CreateAddress creates a new address for the user.
func (s *AddressService) CreateAddress(ctx context.Context, userID string, input CreateAddressInput) (*domain.Address, error) {
	if input.AddressLine == "" {
		return nil, apperrors.InvalidInput("address line is required")
	}
	if input.City == "" {
		return nil, apperrors.InvalidInput("city is required")
	}
	if input.Sector == "" {
		return nil, apperrors.InvalidInput("sector is required")
	}

	now := time.Now().UTC()
	address := &domain.Address{
		ID:          uuid.New().String(),
		UserID:      userID,
		Label:       input.Label,
		AddressLine: input.AddressLine,
		City:        input.City,
		Sector:      input.Sector,
		Phone:       input.Phone,
		Notes:       input.Notes,
		IsDefault:   input.IsDefault,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.addressRepo.Create(ctx, address); err != nil {
		return nil, fmt.Errorf("create address: %w", err)
	}

	if input.IsDefault {
		if err := s.addressRepo.SetDefault(ctx, userID, address.ID); err != nil {
			s.logger.ErrorContext(ctx, "failed to set default address",
				slog.String("address_id", address.ID),
				slog.String("error", err.Error()),
			)
		}
	}

	s.logger.InfoContext(ctx, "address created",
		slog.String("user_id", userID),
		slog.String("address_id", address.ID),
	)

	return address, nil
}

// ListAddresses returns all active addresses for the given user.
func (s *AddressService) ListAddresses(ctx context.Context, userID string) ([]domain.Address, error) {
	addresses, err := s.addressRepo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list addresses: %w", err)
	}
	return addresses, nil
}

// GetAddress retrieves an address owned by the user.
func (s *AddressService) GetAddress(ctx context.Context, userID, addressID string) (*domain.Address, error) {
	address, err := s.addressRepo.GetByID(ctx, addressID)
	if err != nil {
		return nil, fmt.Errorf("get address: %w", err)
	}

	if address.UserID != userID {
		return nil, apperrors.Forbidden("address does not belong to the requesting user")
	}

	return address, nil
}

// UpdateAddress updates an existing address owned by the user.
func (s *AddressService) UpdateAddress(ctx context.Context, userID, addressID string, input UpdateAddressInput) (*domain.Address, error) {
	address, err := s.GetAddress(ctx, userID, addressID)
	if err != nil {
		return nil, err
	}

	if input.Label != nil {
		address.Label = *input.Label
	}
	if input.AddressLine != nil {
		if *input.AddressLine == "" {
			return nil, apperrors.InvalidInput("address line must not be empty")
		}
		address.AddressLine = *input.AddressLine
	}
	if input.City != nil {
		if *input.City == "" {
			return nil, apperrors.InvalidInput("city must not be empty")
		}
		address.City = *input.City
	}
	if input.Sector != nil {
		if *input.Sector == "" {
			return nil, apperrors.InvalidInput("sector must not be empty")
		}
		address.Sector = *input.Sector
	}
	if input.Phone != nil {
		address.Phone = *input.Phone
	}
	if input.Notes != nil {
		address.Notes = *input.Notes
	}
	address.UpdatedAt = time.Now().UTC()

	if err := s.addressRepo.Update(ctx, address); err != nil {
		return nil, fmt.Errorf("update address: %w", err)
	}

	s.logger.InfoContext(ctx, "address updated",
		slog.String("user_id", userID),
		slog.String("address_id", addressID),
	)

	return address, nil
}

// DeleteAddress soft-deletes an address owned by the user.
func (s *AddressService) DeleteAddress(ctx context.Context, userID, addressID string) error {
	if _, err := s.GetAddress(ctx, userID, addressID); err != nil {
		return err
	}

	if err := s.addressRepo.Deactivate(ctx, addressID); err != nil {
		return fmt.Errorf("deactivate address: %w", err)
	}

	s.logger.InfoContext(ctx, "address deleted",
		slog.String("user_id", userID),
		slog.String("address_id", addressID),
	)

	return nil
}

// SetDefaultAddress marks the specified address as the user's default.
func (s *AddressService) SetDefaultAddress(ctx context.Context, userID, addressID string) error {
	if _, err := s.GetAddress(ctx, userID, addressID); err != nil {
		return err
	}

	if err := s.addressRepo.SetDefault(ctx, userID, addressID); err != nil {
		return fmt.Errorf("set default address: %w", err)
	}

	s.logger.InfoContext(ctx, "default address updated",
		slog.String("user_id", userID),
		slog.String("address_id", addressID),
	)

	return nil
}
