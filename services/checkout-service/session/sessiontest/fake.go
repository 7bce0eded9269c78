// Package sessiontest provides an in-memory storefront for tests of the
// session layer and the handlers above it.
package sessiontest

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rayhanbeg/Sajbela-sub000/services/checkout-service/models"
	"github.com/rayhanbeg/Sajbela-sub000/services/checkout-service/session"
	"github.com/rayhanbeg/Sajbela-sub000/services/common/auth"
	apperrors "github.com/rayhanbeg/Sajbela-sub000/services/common/errors"
)

// Secret signs the tokens handed out by Token.
const Secret = "sessiontest-secret"

// Storefront is a fake catalog plus per-user carts, addresses and orders.
type Storefront struct {
	mu        sync.Mutex
	products  map[string]*models.Product
	carts     map[string][]models.CartItem
	addresses map[string][]models.Address
	orders    []*models.OrderRequest
	nextID    int

	// FailOrders makes CreateOrder fail with a network error.
	FailOrders bool
	// FailCart makes every cart call fail with a network error.
	FailCart bool
	// FailAddressSave makes SetDefaultAddress and CreateAddress fail.
	FailAddressSave bool
	// DefaultSaved is signalled after each address save attempt.
	DefaultSaved chan string

	Tokens *auth.TokenParser
}

func NewStorefront(products ...*models.Product) *Storefront {
	sf := &Storefront{
		products:     make(map[string]*models.Product),
		carts:        make(map[string][]models.CartItem),
		addresses:    make(map[string][]models.Address),
		DefaultSaved: make(chan string, 16),
		Tokens:       auth.NewTokenParser(Secret),
	}
	for _, p := range products {
		sf.products[p.ID] = p
	}
	return sf
}

// Catalog returns a few products covering each variant axis.
func Catalog() []*models.Product {
	return []*models.Product{
		{
			ID: "p1", Name: "Glass Bangle", Price: 450, Category: "bangles",
			Sizes: []models.Size{{Size: "M", Stock: 3, Available: true}, {Size: "L", Stock: 0, Available: true}},
		},
		{
			ID: "p2", Name: "Pearl Necklace", Price: 1200, Category: "necklaces",
			Colors: []models.Color{{Name: "Red", HexCode: "#ff0000", Stock: 5, Available: true}, {Name: "White", Stock: 1, Available: true}},
		},
		{ID: "p3", Name: "Silver Ring", Price: 300, Category: "rings", InStock: true, Stock: 10},
	}
}

func (f *Storefront) GetProduct(_ context.Context, id string) (*models.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.products[id]
	if !ok {
		return nil, apperrors.Wrap(apperrors.ErrNotFound, "Product not found", nil)
	}
	cp := *p
	return &cp, nil
}

// SetAddresses replaces the saved addresses of user.
func (f *Storefront) SetAddresses(user string, list ...models.Address) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.addresses[user] = append([]models.Address(nil), list...)
}

// Addresses returns a copy of user's saved addresses.
func (f *Storefront) Addresses(user string) []models.Address {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.Address(nil), f.addresses[user]...)
}

// ServerCart returns a copy of user's server cart.
func (f *Storefront) ServerCart(user string) []models.CartItem {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.CartItem(nil), f.carts[user]...)
}

// SetServerCart replaces user's server cart.
func (f *Storefront) SetServerCart(user string, items ...models.CartItem) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.carts[user] = append([]models.CartItem(nil), items...)
}

// Orders returns the submitted orders.
func (f *Storefront) Orders() []*models.OrderRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*models.OrderRequest(nil), f.orders...)
}

// Token issues an access token for userID.
func (f *Storefront) Token(userID string) string {
	tok, err := f.Tokens.Issue(userID, time.Hour)
	if err != nil {
		panic(err)
	}
	return tok
}

// Users returns a factory keying carts and addresses by the token subject.
func (f *Storefront) Users() session.UserFactory {
	return func(token string) session.UserAPI {
		id, _ := f.Tokens.UserID(token)
		return &user{sf: f, id: id}
	}
}

// Deps wires f into session dependencies.
func (f *Storefront) Deps() session.Deps {
	return session.Deps{Catalog: f, Users: f.Users(), Tokens: f.Tokens}
}

type user struct {
	sf *Storefront
	id string
}

func (u *user) remote() (*models.RemoteCart, error) {
	items := append([]models.CartItem(nil), u.sf.carts[u.id]...)
	amount, count := models.Totals(items)
	return &models.RemoteCart{Items: items, TotalAmount: amount, TotalItems: count}, nil
}

func (u *user) check() error {
	if u.sf.FailCart {
		return apperrors.Wrap(apperrors.ErrNetwork, "", fmt.Errorf("storefront unreachable"))
	}
	return nil
}

func (u *user) GetCart(context.Context) (*models.RemoteCart, error) {
	u.sf.mu.Lock()
	defer u.sf.mu.Unlock()
	if err := u.check(); err != nil {
		return nil, err
	}
	return u.remote()
}

func (u *user) AddToCart(_ context.Context, req models.AddItemRequest) (*models.RemoteCart, error) {
	u.sf.mu.Lock()
	defer u.sf.mu.Unlock()
	if err := u.check(); err != nil {
		return nil, err
	}
	items := u.sf.carts[u.id]
	for i := range items {
		if items[i].SameLine(req.ProductID, req.SelectedSize, req.SelectedColor) {
			items[i].Quantity += req.Quantity
			return u.remote()
		}
	}
	p := u.sf.products[req.ProductID]
	u.sf.nextID++
	u.sf.carts[u.id] = append(items, models.CartItem{
		ItemID:        fmt.Sprintf("item-%d", u.sf.nextID),
		ProductID:     req.ProductID,
		Quantity:      req.Quantity,
		SelectedSize:  req.SelectedSize,
		SelectedColor: req.SelectedColor,
		UnitPrice:     p.Price,
		Product:       models.ProductSnapshot{Name: p.Name, Image: p.Image},
	})
	return u.remote()
}

func (u *user) UpdateCartItem(_ context.Context, req models.UpdateItemRequest) (*models.RemoteCart, error) {
	u.sf.mu.Lock()
	defer u.sf.mu.Unlock()
	if err := u.check(); err != nil {
		return nil, err
	}
	for i, it := range u.sf.carts[u.id] {
		if it.ItemID == req.ItemID {
			u.sf.carts[u.id][i].Quantity = req.Quantity
		}
	}
	return u.remote()
}

func (u *user) RemoveCartItem(_ context.Context, itemID string) (*models.RemoteCart, error) {
	u.sf.mu.Lock()
	defer u.sf.mu.Unlock()
	if err := u.check(); err != nil {
		return nil, err
	}
	var kept []models.CartItem
	for _, it := range u.sf.carts[u.id] {
		if it.ItemID != itemID {
			kept = append(kept, it)
		}
	}
	u.sf.carts[u.id] = kept
	return u.remote()
}

func (u *user) ClearCart(context.Context) (*models.RemoteCart, error) {
	u.sf.mu.Lock()
	defer u.sf.mu.Unlock()
	if err := u.check(); err != nil {
		return nil, err
	}
	delete(u.sf.carts, u.id)
	return u.remote()
}

func (u *user) ListAddresses(context.Context) ([]models.Address, error) {
	u.sf.mu.Lock()
	defer u.sf.mu.Unlock()
	return append([]models.Address(nil), u.sf.addresses[u.id]...), nil
}

func (u *user) CreateAddress(_ context.Context, a models.Address) (*models.Address, error) {
	u.sf.mu.Lock()
	defer func() {
		u.sf.mu.Unlock()
		u.sf.DefaultSaved <- a.ID
	}()
	if u.sf.FailAddressSave {
		return nil, apperrors.Wrap(apperrors.ErrNetwork, "", nil)
	}
	u.sf.nextID++
	a.ID = fmt.Sprintf("addr-%d", u.sf.nextID)
	list := u.sf.addresses[u.id]
	if a.IsDefault {
		for i := range list {
			list[i].IsDefault = false
		}
	}
	u.sf.addresses[u.id] = append(list, a)
	return &a, nil
}

func (u *user) SetDefaultAddress(_ context.Context, id string) error {
	u.sf.mu.Lock()
	defer func() {
		u.sf.mu.Unlock()
		u.sf.DefaultSaved <- id
	}()
	if u.sf.FailAddressSave {
		return apperrors.Wrap(apperrors.ErrNetwork, "", nil)
	}
	list := u.sf.addresses[u.id]
	for i := range list {
		list[i].IsDefault = list[i].ID == id
	}
	return nil
}

func (u *user) CreateOrder(_ context.Context, req *models.OrderRequest) (*models.Order, error) {
	u.sf.mu.Lock()
	defer u.sf.mu.Unlock()
	if u.sf.FailOrders {
		return nil, apperrors.Wrap(apperrors.ErrNetwork, "", fmt.Errorf("timeout"))
	}
	u.sf.orders = append(u.sf.orders, req)
	return &models.Order{ID: fmt.Sprintf("order-%d", len(u.sf.orders)), Status: "pending", TotalPrice: req.TotalPrice}, nil
}
