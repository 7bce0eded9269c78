package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	apperrors "github.com/rayhanbeg/Sajbela-sub000/services/common/errors"
	"github.com/rayhanbeg/Sajbela-sub000/services/common/logger"
	"github.com/rayhanbeg/Sajbela-sub000/services/storefront-service/models"
	"github.com/rayhanbeg/Sajbela-sub000/services/storefront-service/repository"
)

// CartService applies cart changes for one user at a time. Every response
// carries totals computed from the stored items.
type CartService struct {
	carts    repository.CartRepository
	products repository.ProductRepository
	logger   *zap.Logger
	locks    *keyedMutex
}

func NewCartService(carts repository.CartRepository, products repository.ProductRepository, l *zap.Logger) *CartService {
	if l == nil {
		l = zap.NewNop()
	}
	return &CartService{carts: carts, products: products, logger: l, locks: newKeyedMutex()}
}

func (s *CartService) load(ctx context.Context, userID string) (*models.Cart, error) {
	cart, err := s.carts.GetCart(ctx, userID)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, "Failed to get cart", err)
	}
	if cart == nil {
		cart = &models.Cart{UserID: userID, Items: []models.CartItem{}}
	}
	return cart, nil
}

func (s *CartService) save(ctx context.Context, cart *models.Cart) (models.CartView, error) {
	if err := s.carts.SaveCart(ctx, cart); err != nil {
		return models.CartView{}, apperrors.Wrap(apperrors.ErrInternalServer, "Failed to save cart", err)
	}
	return cart.View(), nil
}

func (s *CartService) Get(ctx context.Context, userID string) (models.CartView, error) {
	cart, err := s.load(ctx, userID)
	if err != nil {
		return models.CartView{}, err
	}
	return cart.View(), nil
}

// stockFor checks that quantity of the selected variant is available.
func (s *CartService) stockFor(ctx context.Context, productID, size, color string, quantity int) (*models.Product, error) {
	p, err := s.products.FindByID(ctx, productID)
	if err != nil {
		return nil, NotFound(err, "Product not found")
	}
	return p, admit(p, size, color, quantity)
}

func admit(p *models.Product, size, color string, quantity int) error {
	stock, ok := p.StockFor(size, color)
	if !ok {
		return apperrors.OnField(apperrors.ErrValidation, p.VariantField(), "Selected variant is not offered")
	}
	if quantity > stock {
		return apperrors.Wrap(apperrors.ErrOutOfStock, fmt.Sprintf("Only %d left in stock", stock), nil)
	}
	return nil
}

// Add puts req into the cart, merging with an existing line of the same
// product and variant. Variants are stored as the product spells them, and
// the merged quantity must be in stock.
func (s *CartService) Add(ctx context.Context, userID string, req models.AddItemRequest) (models.CartView, error) {
	if req.Quantity < 1 {
		return models.CartView{}, apperrors.OnField(apperrors.ErrValidation, "quantity", "Quantity must be at least 1")
	}
	p, err := s.products.FindByID(ctx, req.ProductID)
	if err != nil {
		return models.CartView{}, NotFound(err, "Product not found")
	}
	req.SelectedSize, req.SelectedColor = p.Variant(req.SelectedSize, req.SelectedColor)

	unlock := s.locks.Lock(userID)
	defer unlock()

	cart, err := s.load(ctx, userID)
	if err != nil {
		return models.CartView{}, err
	}

	idx := -1
	for i, it := range cart.Items {
		if it.ProductID == p.ID &&
			strings.EqualFold(it.SelectedSize, req.SelectedSize) &&
			strings.EqualFold(it.SelectedColor, req.SelectedColor) {
			idx = i
			break
		}
	}
	quantity := req.Quantity
	if idx >= 0 {
		quantity += cart.Items[idx].Quantity
	}

	if err := admit(p, req.SelectedSize, req.SelectedColor, quantity); err != nil {
		return cart.View(), err
	}

	if idx >= 0 {
		cart.Items[idx].Quantity = quantity
		cart.Items[idx].UnitPrice = p.Price
	} else {
		cart.Items = append(cart.Items, models.CartItem{
			ItemID:        uuid.NewString(),
			ProductID:     p.ID,
			Quantity:      quantity,
			SelectedSize:  req.SelectedSize,
			SelectedColor: req.SelectedColor,
			UnitPrice:     p.Price,
			Product:       models.ProductSnapshot{Name: p.Name, Image: p.Image},
		})
	}

	logger.For(ctx, s.logger).Info("cart item added",
		zap.String("user_id", userID), zap.String("product_id", p.ID), zap.Int("quantity", quantity))
	return s.save(ctx, cart)
}

// Update sets the quantity of an item; zero or less removes it.
func (s *CartService) Update(ctx context.Context, userID string, req models.UpdateItemRequest) (models.CartView, error) {
	if req.Quantity <= 0 {
		return s.Remove(ctx, userID, req.ItemID)
	}

	unlock := s.locks.Lock(userID)
	defer unlock()

	cart, err := s.load(ctx, userID)
	if err != nil {
		return models.CartView{}, err
	}
	idx := indexOf(cart.Items, req.ItemID)
	if idx < 0 {
		return cart.View(), apperrors.Wrap(apperrors.ErrNotFound, "Cart item not found", nil)
	}
	it := cart.Items[idx]
	p, err := s.stockFor(ctx, it.ProductID, it.SelectedSize, it.SelectedColor, req.Quantity)
	if err != nil {
		return cart.View(), err
	}
	cart.Items[idx].Quantity = req.Quantity
	cart.Items[idx].UnitPrice = p.Price
	return s.save(ctx, cart)
}

func (s *CartService) Remove(ctx context.Context, userID, itemID string) (models.CartView, error) {
	unlock := s.locks.Lock(userID)
	defer unlock()

	cart, err := s.load(ctx, userID)
	if err != nil {
		return models.CartView{}, err
	}
	idx := indexOf(cart.Items, itemID)
	if idx < 0 {
		return cart.View(), apperrors.Wrap(apperrors.ErrNotFound, "Cart item not found", nil)
	}
	cart.Items = append(cart.Items[:idx], cart.Items[idx+1:]...)
	return s.save(ctx, cart)
}

func (s *CartService) Clear(ctx context.Context, userID string) (models.CartView, error) {
	unlock := s.locks.Lock(userID)
	defer unlock()

	if err := s.carts.DeleteCart(ctx, userID); err != nil {
		return models.CartView{}, apperrors.Wrap(apperrors.ErrInternalServer, "Failed to clear cart", err)
	}
	empty := models.Cart{UserID: userID}
	return empty.View(), nil
}

func indexOf(items []models.CartItem, itemID string) int {
	for i, it := range items {
		if it.ItemID == itemID {
			return i
		}
	}
	return -1
}
