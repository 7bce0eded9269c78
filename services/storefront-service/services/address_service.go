package services

import (
	"context"
	"strings"

	"go.uber.org/zap"

	apperrors "github.com/rayhanbeg/Sajbela-sub000/services/common/errors"
	"github.com/rayhanbeg/Sajbela-sub000/services/common/logger"
	"github.com/rayhanbeg/Sajbela-sub000/services/storefront-service/models"
	"github.com/rayhanbeg/Sajbela-sub000/services/storefront-service/repository"
)

type AddressService struct {
	repo   repository.AddressRepository
	logger *zap.Logger
}

func NewAddressService(repo repository.AddressRepository, l *zap.Logger) *AddressService {
	if l == nil {
		l = zap.NewNop()
	}
	return &AddressService{repo: repo, logger: l}
}

func (s *AddressService) List(ctx context.Context, userID string) ([]models.Address, error) {
	list, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, "Failed to list addresses", err)
	}
	return list, nil
}

// Create stores a trimmed copy of in for userID.
func (s *AddressService) Create(ctx context.Context, userID string, in models.Address) (*models.Address, error) {
	addr := models.Address{
		UserID:    userID,
		FullName:  strings.TrimSpace(in.FullName),
		Phone:     strings.TrimSpace(in.Phone),
		Address:   strings.TrimSpace(in.Address),
		District:  strings.TrimSpace(in.District),
		Thana:     strings.TrimSpace(in.Thana),
		Country:   strings.TrimSpace(in.Country),
		IsDefault: in.IsDefault,
	}
	if addr.Country == "" {
		addr.Country = models.DefaultCountry
	}
	if err := s.repo.Create(ctx, &addr); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, "Failed to save address", err)
	}
	logger.For(ctx, s.logger).Info("address saved",
		zap.String("user_id", userID), zap.String("address_id", addr.ID), zap.Bool("default", addr.IsDefault))
	return &addr, nil
}

func (s *AddressService) SetDefault(ctx context.Context, userID, id string) error {
	if err := s.repo.SetDefault(ctx, userID, id); err != nil {
		return NotFound(err, "Address not found")
	}
	return nil
}
