// Package cart holds the shopper's cart in either guest mode (in process) or
// authenticated mode (mirrored to the storefront service).
package cart

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/rayhanbeg/Sajbela-sub000/services/checkout-service/models"
	"github.com/rayhanbeg/Sajbela-sub000/services/checkout-service/variant"
	apperrors "github.com/rayhanbeg/Sajbela-sub000/services/common/errors"
	"github.com/rayhanbeg/Sajbela-sub000/services/common/logger"
)

// Catalog reads products for stock checks.
type Catalog interface {
	GetProduct(ctx context.Context, productID string) (*models.Product, error)
}

// Backend is the storefront cart API of one authenticated shopper.
type Backend interface {
	GetCart(ctx context.Context) (*models.RemoteCart, error)
	AddToCart(ctx context.Context, req models.AddItemRequest) (*models.RemoteCart, error)
	UpdateCartItem(ctx context.Context, req models.UpdateItemRequest) (*models.RemoteCart, error)
	RemoveCartItem(ctx context.Context, itemID string) (*models.RemoteCart, error)
	ClearCart(ctx context.Context) (*models.RemoteCart, error)
}

// AddInput is one add-to-cart request.
type AddInput struct {
	ProductID string `json:"productId" binding:"required"`
	Quantity  int    `json:"quantity"`
	variant.Selection
}

// Store is a single shopper's cart. All mutations are serialized: a write
// in authenticated mode holds the lock until the storefront has answered.
type Store struct {
	mu      sync.Mutex
	catalog Catalog
	backend Backend
	logger  *zap.Logger

	items       []models.CartItem
	mode        models.CartMode
	initialized bool
	status      models.CartStatus
	lastErr     string
}

// NewStore returns an empty, initialized guest cart.
func NewStore(catalog Catalog, l *zap.Logger) *Store {
	if l == nil {
		l = zap.NewNop()
	}
	return &Store{
		catalog:     catalog,
		logger:      l,
		mode:        models.CartModeGuest,
		initialized: true,
		status:      models.CartStatusReady,
	}
}

// Snapshot returns a copy of the cart.
func (s *Store) Snapshot() models.Cart {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot()
}

// Mode reports whether the cart is guest or authenticated.
func (s *Store) Mode() models.CartMode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode
}

// AddItem adds in.Quantity units of a product variant, merging with an
// existing line for the same variant. The variant is stored under the
// product's own spelling, and the merged quantity must be in stock.
func (s *Store) AddItem(ctx context.Context, in AddInput) (models.Cart, error) {
	if in.Quantity < 1 {
		return s.Snapshot(), apperrors.OnField(apperrors.ErrValidation, "quantity", "Quantity must be at least 1")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	product, err := s.catalog.GetProduct(ctx, in.ProductID)
	if err != nil {
		return s.snapshot(), err
	}

	axis := variant.AxisOf(product)
	sel := axis.Normalize(in.Selection)

	merged := in.Quantity
	idx := s.indexOfLine(product.ID, sel)
	if idx >= 0 {
		merged += s.items[idx].Quantity
	}
	if err := variant.Resolve(product, sel).Admit(merged); err != nil {
		return s.snapshot(), err
	}

	if s.mode == models.CartModeAuthenticated {
		remote, err := s.backend.AddToCart(ctx, models.AddItemRequest{
			ProductID:     product.ID,
			Quantity:      in.Quantity,
			SelectedSize:  sel.Size,
			SelectedColor: sel.Color,
		})
		if err != nil {
			return s.snapshot(), err
		}
		s.replace(remote)
		return s.snapshot(), nil
	}

	if idx >= 0 {
		s.items[idx].Quantity = merged
	} else {
		s.items = append(s.items, models.CartItem{
			LocalID:       uuid.NewString(),
			ProductID:     product.ID,
			Quantity:      in.Quantity,
			SelectedSize:  sel.Size,
			SelectedColor: sel.Color,
			UnitPrice:     product.Price,
			Product:       models.ProductSnapshot{Name: product.Name, Image: product.Image},
		})
	}
	logger.For(ctx, s.logger).Debug("guest cart item added",
		zap.String("product_id", product.ID), zap.Int("quantity", merged))
	return s.snapshot(), nil
}

// UpdateQuantity sets the quantity of the item with key. A quantity of zero
// or less removes the item. The new quantity is checked against stock.
func (s *Store) UpdateQuantity(ctx context.Context, key string, quantity int) (models.Cart, error) {
	if quantity <= 0 {
		return s.RemoveItem(ctx, key)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOfKey(key)
	if idx < 0 {
		return s.snapshot(), apperrors.Wrap(apperrors.ErrNotFound, "Cart item not found", nil)
	}
	item := s.items[idx]

	product, err := s.catalog.GetProduct(ctx, item.ProductID)
	if err != nil {
		return s.snapshot(), err
	}
	sel := variant.Selection{Size: item.SelectedSize, Color: item.SelectedColor}
	if err := variant.Resolve(product, sel).Admit(quantity); err != nil {
		return s.snapshot(), err
	}

	if s.mode == models.CartModeAuthenticated {
		remote, err := s.backend.UpdateCartItem(ctx, models.UpdateItemRequest{ItemID: item.ItemID, Quantity: quantity})
		if err != nil {
			return s.snapshot(), err
		}
		s.replace(remote)
		return s.snapshot(), nil
	}

	s.items[idx].Quantity = quantity
	return s.snapshot(), nil
}

// RemoveItem drops the item with key.
func (s *Store) RemoveItem(ctx context.Context, key string) (models.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOfKey(key)
	if idx < 0 {
		return s.snapshot(), apperrors.Wrap(apperrors.ErrNotFound, "Cart item not found", nil)
	}

	if s.mode == models.CartModeAuthenticated {
		remote, err := s.backend.RemoveCartItem(ctx, s.items[idx].ItemID)
		if err != nil {
			return s.snapshot(), err
		}
		s.replace(remote)
		return s.snapshot(), nil
	}

	s.items = append(s.items[:idx:idx], s.items[idx+1:]...)
	return s.snapshot(), nil
}

// Clear empties the cart.
func (s *Store) Clear(ctx context.Context) (models.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.mode == models.CartModeAuthenticated {
		remote, err := s.backend.ClearCart(ctx)
		if err != nil {
			return s.snapshot(), err
		}
		s.replace(remote)
		return s.snapshot(), nil
	}

	s.items = nil
	return s.snapshot(), nil
}

// Load fetches the authenticated cart from the storefront. A guest cart has
// nothing to fetch. On failure the cart is marked as errored and keeps its
// last known items.
func (s *Store) Load(ctx context.Context) (models.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(ctx)
}

// OnAuthenticate switches the cart to authenticated mode against backend.
// Guest items are discarded, not merged, and the server cart is loaded.
func (s *Store) OnAuthenticate(ctx context.Context, backend Backend) (models.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if n := len(s.items); n > 0 && s.mode == models.CartModeGuest {
		logger.For(ctx, s.logger).Info("discarding guest cart on login", zap.Int("items", n))
	}
	s.backend = backend
	s.mode = models.CartModeAuthenticated
	s.items = nil
	s.initialized = false
	s.status = models.CartStatusReady
	s.lastErr = ""
	return s.load(ctx)
}

// OnLogout returns the cart to an empty guest cart.
func (s *Store) OnLogout() models.Cart {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.backend = nil
	s.mode = models.CartModeGuest
	s.items = nil
	s.initialized = true
	s.status = models.CartStatusReady
	s.lastErr = ""
	return s.snapshot()
}

func (s *Store) load(ctx context.Context) (models.Cart, error) {
	if s.mode == models.CartModeGuest {
		s.initialized = true
		return s.snapshot(), nil
	}

	remote, err := s.backend.GetCart(ctx)
	if err != nil {
		s.status = models.CartStatusError
		s.lastErr = apperrors.As(err).Message
		logger.For(ctx, s.logger).Warn("cart load failed, keeping last known items",
			zap.Int("items", len(s.items)), zap.Error(err))
		return s.snapshot(), fmt.Errorf("load cart: %w", err)
	}
	s.replace(remote)
	s.initialized = true
	s.status = models.CartStatusReady
	s.lastErr = ""
	return s.snapshot(), nil
}

func (s *Store) replace(remote *models.RemoteCart) {
	if remote == nil {
		s.items = nil
		return
	}
	s.items = append([]models.CartItem(nil), remote.Items...)
}

func (s *Store) indexOfKey(key string) int {
	for i, it := range s.items {
		if it.Key() == key {
			return i
		}
	}
	return -1
}

func (s *Store) indexOfLine(productID string, sel variant.Selection) int {
	for i, it := range s.items {
		if it.SameLine(productID, sel.Size, sel.Color) {
			return i
		}
	}
	return -1
}

func (s *Store) snapshot() models.Cart {
	items := make([]models.CartItem, len(s.items))
	copy(items, s.items)
	amount, count := models.Totals(items)
	return models.Cart{
		Items:       items,
		TotalAmount: amount,
		TotalItems:  count,
		Mode:        s.mode,
		Initialized: s.initialized,
		Status:      s.status,
		LastError:   s.lastErr,
	}
}
