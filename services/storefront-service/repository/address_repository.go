package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rayhanbeg/Sajbela-sub000/services/storefront-service/models"
)

// AddressRepository keeps saved addresses. Every write leaves at most one
// default address per user.
type AddressRepository interface {
	ListByUser(ctx context.Context, userID string) ([]models.Address, error)
	Create(ctx context.Context, addr *models.Address) error
	SetDefault(ctx context.Context, userID, id string) error
}

type GormAddressRepository struct {
	db *gorm.DB
}

func NewGormAddressRepository(db *gorm.DB) AddressRepository {
	return &GormAddressRepository{db: db}
}

// ListByUser returns the user's addresses, default first, then oldest first.
func (r *GormAddressRepository) ListByUser(ctx context.Context, userID string) ([]models.Address, error) {
	list := []models.Address{}
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("is_default DESC").
		Order("created_at ASC").
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

// Create saves addr. The first address of a user becomes the default.
func (r *GormAddressRepository) Create(ctx context.Context, addr *models.Address) error {
	if addr.ID == "" {
		addr.ID = uuid.NewString()
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Address{}).Where("user_id = ?", addr.UserID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			addr.IsDefault = true
		}
		if addr.IsDefault {
			if err := tx.Model(&models.Address{}).
				Where("user_id = ? AND is_default = ?", addr.UserID, true).
				Update("is_default", false).Error; err != nil {
				return err
			}
		}
		return tx.Create(addr).Error
	})
}

// SetDefault marks id as the user's default and clears the flag elsewhere.
// It returns gorm.ErrRecordNotFound when the user has no such address.
func (r *GormAddressRepository) SetDefault(ctx context.Context, userID, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Address{}).
			Where("id = ? AND user_id = ?", id, userID).
			Update("is_default", true)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return tx.Model(&models.Address{}).
			Where("user_id = ? AND id <> ?", userID, id).
			Update("is_default", false).Error
	})
}
