package services_test

import (
	"context"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/rayhanbeg/Sajbela-sub000/services/storefront-service/models"
)

type fakeProducts struct {
	byID map[string]*models.Product
}

func newFakeProducts() *fakeProducts {
	return &fakeProducts{byID: map[string]*models.Product{
		"p1": {ID: "p1", Name: "Glass Bangle", Price: 450, Category: "bangles",
			Sizes: []models.Size{{Size: "M", Stock: 3, Available: true}, {Size: "L", Stock: 0, Available: true}}},
		"p2": {ID: "p2", Name: "Pearl Necklace", Price: 1200, Category: "necklaces",
			Colors: []models.Color{{Name: "Red", HexCode: "#ff0000", Stock: 5, Available: true}}},
		"p3": {ID: "p3", Name: "Silver Ring", Price: 300, Category: "rings", InStock: true, Stock: 10},
	}}
}

func (f *fakeProducts) FindByID(_ context.Context, id string) (*models.Product, error) {
	p, ok := f.byID[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *fakeProducts) FindByIDs(ctx context.Context, ids []string) (map[string]*models.Product, error) {
	out := map[string]*models.Product{}
	for _, id := range ids {
		if p, err := f.FindByID(ctx, id); err == nil {
			out[id] = p
		}
	}
	return out, nil
}

type fakeOrders struct {
	mu      sync.Mutex
	byID    map[string]*models.Order
	created int
	err     error
}

func newFakeOrders() *fakeOrders {
	return &fakeOrders{byID: map[string]*models.Order{}}
}

func (f *fakeOrders) Create(_ context.Context, o *models.Order) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	cp := *o
	f.byID[o.ID] = &cp
	f.created++
	return nil
}

func (f *fakeOrders) FindByID(_ context.Context, id string) (*models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.byID[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *o
	return &cp, nil
}

func (f *fakeOrders) FindByIdempotencyKey(_ context.Context, key string) (*models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, o := range f.byID {
		if o.IdempotencyKey != nil && *o.IdempotencyKey == key {
			cp := *o
			return &cp, nil
		}
	}
	return nil, nil
}

type fakeIdem struct {
	mu   sync.Mutex
	keys map[string]string
}

func (f *fakeIdem) GetIdempotency(_ context.Context, key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.keys[key], nil
}

func (f *fakeIdem) SetIdempotency(_ context.Context, key, orderID string, _ time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.keys == nil {
		f.keys = map[string]string{}
	}
	f.keys[key] = orderID
	return nil
}

type fakeSNS struct {
	mu       sync.Mutex
	messages [][]byte
}

func (f *fakeSNS) Publish(_ context.Context, _ string, message []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages = append(f.messages, message)
	return nil
}
